package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/cryptofolio/backend/internal/api/handlers"
	custommiddleware "github.com/cryptofolio/backend/internal/api/middleware"
	"github.com/cryptofolio/backend/internal/config"
	"github.com/cryptofolio/backend/internal/repository"
	"github.com/cryptofolio/backend/internal/service"
)

// NewRouter creates and configures the HTTP router
func NewRouter(
	systemService *service.SystemService,
	portfolioService *service.PortfolioService,
	historyService *service.HistoryService,
	transactionService *service.TransactionService,
	providerRepo *repository.ProviderRepository,
	cfg *config.Config,
) http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(custommiddleware.Logger)
	r.Use(middleware.Recoverer)

	// CORS middleware
	corsMiddleware := custommiddleware.NewCORS(cfg.CORS.AllowedOrigins)
	r.Use(corsMiddleware.Handler)

	// API routes
	r.Route("/api", func(r chi.Router) {
		// System namespace
		r.Route("/system", func(r chi.Router) {
			systemHandler := handlers.NewSystemHandler(systemService)
			r.Get("/health", systemHandler.Health)
			r.Get("/version", systemHandler.Version)
		})

		r.Route("/portfolio", func(r chi.Router) {
			portfolioHandler := handlers.NewPortfolioHandler(portfolioService, historyService)
			r.Get("/current", portfolioHandler.Current)
			r.Get("/history", portfolioHandler.History)
		})

		r.Route("/transactions", func(r chi.Router) {
			transactionHandler := handlers.NewTransactionHandler(transactionService)
			r.Get("/", transactionHandler.List)
			r.Post("/", transactionHandler.Create)
			r.Post("/bulk", transactionHandler.BulkImport)
			r.Get("/{id}", transactionHandler.Get)
		})

		r.Route("/developer", func(r chi.Router) {
			developerHandler := handlers.NewDeveloperHandler(providerRepo, cfg.Pricing.Provider)
			r.Put("/provider-key", developerHandler.StoreProviderKey)
			r.Get("/provider-key/status", developerHandler.ProviderKeyStatus)
		})
	})

	return r
}
