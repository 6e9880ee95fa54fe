package handlers

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/cryptofolio/backend/internal/model"
	"github.com/cryptofolio/backend/internal/service"
	"github.com/cryptofolio/backend/internal/testutil"
)

func TestSystemHandler_Health(t *testing.T) {
	t.Run("healthy database", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		handler := NewSystemHandler(service.NewSystemService(db))

		req := httptest.NewRequest(http.MethodGet, "/api/system/health", nil)
		w := httptest.NewRecorder()
		handler.Health(w, req)

		if w.Code != http.StatusOK {
			t.Fatalf("Expected status 200, got %d", w.Code)
		}

		var health HealthResponse
		testutil.DecodeJSONResponse(t, w, &health)
		if health.Status != "healthy" || health.Database != "connected" {
			t.Errorf("Unexpected health response: %+v", health)
		}
	})

	t.Run("closed database reports unhealthy", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		handler := NewSystemHandler(service.NewSystemService(db))
		db.Close()

		req := httptest.NewRequest(http.MethodGet, "/api/system/health", nil)
		w := httptest.NewRecorder()
		handler.Health(w, req)

		if w.Code != http.StatusServiceUnavailable {
			t.Fatalf("Expected status 503, got %d", w.Code)
		}

		var health HealthResponse
		testutil.DecodeJSONResponse(t, w, &health)
		if health.Status != "unhealthy" {
			t.Errorf("Unexpected health response: %+v", health)
		}
	})
}

func TestSystemHandler_Version(t *testing.T) {
	db := testutil.SetupTestDB(t)
	handler := NewSystemHandler(service.NewSystemService(db))

	req := httptest.NewRequest(http.MethodGet, "/api/system/version", nil)
	w := httptest.NewRecorder()
	handler.Version(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d", w.Code)
	}

	var version model.VersionResponse
	testutil.DecodeJSONResponse(t, w, &version)
	if version.Version == "" {
		t.Error("Expected a version string")
	}
	if version.GoVersion == "" {
		t.Error("Expected a Go version string")
	}
}
