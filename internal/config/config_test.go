package config

import (
	"testing"
)

func TestLoad(t *testing.T) {
	t.Run("defaults", func(t *testing.T) {
		cfg, err := Load()
		if err != nil {
			t.Fatalf("Unexpected error: %v", err)
		}

		if cfg.Server.Addr != "localhost:5001" {
			t.Errorf("Expected default addr localhost:5001, got %q", cfg.Server.Addr)
		}
		if cfg.Pricing.Provider != "llama" {
			t.Errorf("Expected default provider llama, got %q", cfg.Pricing.Provider)
		}
		if cfg.Worker.PoolSize != 2 || cfg.Worker.QueueSize != 64 {
			t.Errorf("Unexpected worker defaults: %+v", cfg.Worker)
		}
		if cfg.Worker.RefreshSchedule != "0 3 * * *" {
			t.Errorf("Unexpected refresh schedule: %q", cfg.Worker.RefreshSchedule)
		}
	})

	t.Run("environment overrides", func(t *testing.T) {
		t.Setenv("SERVER_PORT", "8080")
		t.Setenv("SERVER_HOST", "0.0.0.0")
		t.Setenv("PRICE_PROVIDER", "gecko")
		t.Setenv("WORKER_POOL_SIZE", "4")

		cfg, err := Load()
		if err != nil {
			t.Fatalf("Unexpected error: %v", err)
		}

		if cfg.Server.Addr != "0.0.0.0:8080" {
			t.Errorf("Expected addr 0.0.0.0:8080, got %q", cfg.Server.Addr)
		}
		if cfg.Pricing.Provider != "gecko" {
			t.Errorf("Expected provider gecko, got %q", cfg.Pricing.Provider)
		}
		if cfg.Worker.PoolSize != 4 {
			t.Errorf("Expected pool size 4, got %d", cfg.Worker.PoolSize)
		}
	})

	t.Run("malformed integers fall back to defaults", func(t *testing.T) {
		t.Setenv("WORKER_QUEUE_SIZE", "many")

		cfg, err := Load()
		if err != nil {
			t.Fatalf("Unexpected error: %v", err)
		}
		if cfg.Worker.QueueSize != 64 {
			t.Errorf("Expected fallback queue size 64, got %d", cfg.Worker.QueueSize)
		}
	})
}
