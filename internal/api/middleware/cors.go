package middleware

import (
	"github.com/go-chi/cors"
)

// NewCORS creates the CORS middleware for the browser frontend. The
// surface only uses GET, POST and PUT, so everything else stays blocked.
func NewCORS(allowedOrigins []string) *cors.Cors {
	return cors.New(cors.Options{
		AllowedOrigins:   allowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "OPTIONS"},
		AllowedHeaders:   []string{"Content-Type"},
		ExposedHeaders:   []string{"Content-Type"},
		AllowCredentials: true,
		MaxAge:           300,
	})
}
