package service

import (
	"database/sql"
	"runtime"

	"github.com/cryptofolio/backend/internal/database"
	"github.com/cryptofolio/backend/internal/model"
	"github.com/cryptofolio/backend/internal/version"
)

// SystemService handles system-related operations
type SystemService struct {
	db *sql.DB
}

// NewSystemService creates a new SystemService
func NewSystemService(db *sql.DB) *SystemService {
	return &SystemService{
		db: db,
	}
}

// CheckHealth checks the health of the system
func (s *SystemService) CheckHealth() error {
	return database.HealthCheck(s.db)
}

// VersionInfo returns the application and runtime version information.
func (s *SystemService) VersionInfo() model.VersionResponse {
	return model.VersionResponse{
		Version:   version.Version,
		GoVersion: runtime.Version(),
	}
}
