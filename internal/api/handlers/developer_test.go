package handlers

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/cryptofolio/backend/internal/model"
	"github.com/cryptofolio/backend/internal/repository"
	"github.com/cryptofolio/backend/internal/testutil"
)

// testFernetKey is a fixed base64url-encoded 256-bit key, valid for tests only.
const testFernetKey = "AAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAA="

func newDeveloperHandler(t *testing.T, fernetKey string) *DeveloperHandler {
	t.Helper()

	db := testutil.SetupTestDB(t)
	providerRepo, err := repository.NewProviderRepository(db, fernetKey)
	if err != nil {
		t.Fatalf("Failed to create provider repository: %v", err)
	}
	return NewDeveloperHandler(providerRepo, "gecko")
}

func TestDeveloperHandler_StoreProviderKey(t *testing.T) {
	t.Run("stores the key", func(t *testing.T) {
		handler := newDeveloperHandler(t, testFernetKey)

		req := testutil.NewJSONRequest(t, http.MethodPut, "/api/developer/provider-key", map[string]string{
			"apiKey": "demo-key-123",
		})
		w := httptest.NewRecorder()
		handler.StoreProviderKey(w, req)

		if w.Code != http.StatusNoContent {
			t.Errorf("Expected status 204, got %d: %s", w.Code, w.Body.String())
		}
	})

	t.Run("empty key returns 400", func(t *testing.T) {
		handler := newDeveloperHandler(t, testFernetKey)

		req := testutil.NewJSONRequest(t, http.MethodPut, "/api/developer/provider-key", map[string]string{
			"apiKey": "  ",
		})
		w := httptest.NewRecorder()
		handler.StoreProviderKey(w, req)

		if w.Code != http.StatusBadRequest {
			t.Errorf("Expected status 400, got %d", w.Code)
		}
	})

	t.Run("no encryption key returns 503", func(t *testing.T) {
		handler := newDeveloperHandler(t, "")

		req := testutil.NewJSONRequest(t, http.MethodPut, "/api/developer/provider-key", map[string]string{
			"apiKey": "demo-key-123",
		})
		w := httptest.NewRecorder()
		handler.StoreProviderKey(w, req)

		if w.Code != http.StatusServiceUnavailable {
			t.Errorf("Expected status 503, got %d", w.Code)
		}
	})
}

func TestDeveloperHandler_ProviderKeyStatus(t *testing.T) {
	t.Run("unconfigured provider", func(t *testing.T) {
		handler := newDeveloperHandler(t, testFernetKey)

		req := httptest.NewRequest(http.MethodGet, "/api/developer/provider-key/status", nil)
		w := httptest.NewRecorder()
		handler.ProviderKeyStatus(w, req)

		if w.Code != http.StatusOK {
			t.Fatalf("Expected status 200, got %d", w.Code)
		}

		var status model.ProviderKeyStatus
		testutil.DecodeJSONResponse(t, w, &status)
		if status.Configured {
			t.Error("Expected unconfigured status")
		}
	})

	t.Run("configured provider reports without exposing the key", func(t *testing.T) {
		handler := newDeveloperHandler(t, testFernetKey)

		store := testutil.NewJSONRequest(t, http.MethodPut, "/api/developer/provider-key", map[string]string{
			"apiKey": "secret-key",
		})
		handler.StoreProviderKey(httptest.NewRecorder(), store)

		req := httptest.NewRequest(http.MethodGet, "/api/developer/provider-key/status", nil)
		w := httptest.NewRecorder()
		handler.ProviderKeyStatus(w, req)

		if w.Code != http.StatusOK {
			t.Fatalf("Expected status 200, got %d", w.Code)
		}

		var status model.ProviderKeyStatus
		testutil.DecodeJSONResponse(t, w, &status)
		if !status.Configured {
			t.Error("Expected configured status")
		}
		if status.UpdatedAt == "" {
			t.Error("Expected an updatedAt timestamp")
		}

		if status.Provider != "gecko" {
			t.Errorf("Expected provider gecko, got %q", status.Provider)
		}
		if strings.Contains(w.Body.String(), "secret-key") {
			t.Error("Status response must not expose the stored key")
		}
	})
}
