package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

// Config holds all configuration for the application
type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	CORS     CORSConfig
	Pricing  PricingConfig
	Worker   WorkerConfig
}

// ServerConfig holds server-specific configuration
type ServerConfig struct {
	Port string
	Host string
	Addr string // Combined host:port for convenience
}

// DatabaseConfig holds database-specific configuration
type DatabaseConfig struct {
	Path string
}

// CORSConfig holds CORS-specific configuration
type CORSConfig struct {
	AllowedOrigins []string
}

// PricingConfig selects and configures the upstream price provider.
type PricingConfig struct {
	// Provider is the price source implementation to use: "llama" or "gecko".
	Provider string
	// FernetKey is the base64 fernet key used to encrypt the provider API key
	// at rest. Empty disables the developer provider-key endpoints.
	FernetKey string
}

// WorkerConfig holds background worker configuration
type WorkerConfig struct {
	// PoolSize is the number of goroutines draining the job queue.
	PoolSize int
	// QueueSize is the job queue buffer; enqueues beyond it are dropped.
	QueueSize int
	// RefreshSchedule is the cron expression for the nightly snapshot refresh.
	RefreshSchedule string
}

// Load reads configuration from environment variables and .env file
func Load() (*Config, error) {
	// Try to load .env file (ignore error if it doesn't exist)
	_ = godotenv.Load()

	config := &Config{
		Server: ServerConfig{
			Port: getEnv("SERVER_PORT", "5001"),
			Host: getEnv("SERVER_HOST", "localhost"),
		},
		Database: DatabaseConfig{
			Path: getEnv("DB_PATH", "./data/cryptofolio.db"),
		},
		CORS: CORSConfig{
			AllowedOrigins: []string{
				"http://localhost:3000",
				"http://localhost",
			},
		},
		Pricing: PricingConfig{
			Provider:  getEnv("PRICE_PROVIDER", "llama"),
			FernetKey: getEnv("FERNET_KEY", ""),
		},
		Worker: WorkerConfig{
			PoolSize:        getEnvInt("WORKER_POOL_SIZE", 2),
			QueueSize:       getEnvInt("WORKER_QUEUE_SIZE", 64),
			RefreshSchedule: getEnv("SNAPSHOT_REFRESH_SCHEDULE", "0 3 * * *"),
		},
	}

	// Combine host and port
	config.Server.Addr = fmt.Sprintf("%s:%s", config.Server.Host, config.Server.Port)

	return config, nil
}

// getEnv gets an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

// getEnvInt gets an integer environment variable or returns a default value
func getEnvInt(key string, defaultValue int) int {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		return defaultValue
	}
	return n
}
