package handlers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/cryptofolio/backend/internal/api/request"
	"github.com/cryptofolio/backend/internal/api/response"
	"github.com/cryptofolio/backend/internal/apperrors"
	"github.com/cryptofolio/backend/internal/repository"
)

// DeveloperHandler handles operational endpoints that are not part of the
// user-facing surface: managing the stored price-provider API key.
type DeveloperHandler struct {
	providerRepo *repository.ProviderRepository
	provider     string
}

// NewDeveloperHandler creates a new DeveloperHandler for the configured provider.
func NewDeveloperHandler(providerRepo *repository.ProviderRepository, provider string) *DeveloperHandler {
	return &DeveloperHandler{
		providerRepo: providerRepo,
		provider:     provider,
	}
}

// StoreProviderKey handles PUT requests to store the provider API key,
// encrypted at rest.
//
// Endpoint: PUT /api/developer/provider-key
// Response: 204 No Content
// Error: 400 Bad Request if the key is empty
// Error: 503 Service Unavailable if no encryption key is configured
func (h *DeveloperHandler) StoreProviderKey(w http.ResponseWriter, r *http.Request) {
	req, err := parseJSON[request.StoreProviderKeyRequest](r)
	if err != nil {
		response.RespondError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	if strings.TrimSpace(req.APIKey) == "" {
		response.RespondError(w, http.StatusBadRequest, "apiKey is required", nil)
		return
	}

	if err := h.providerRepo.StoreKey(h.provider, req.APIKey); err != nil {
		if errors.Is(err, apperrors.ErrEncryptionUnavailable) {
			response.RespondError(w, http.StatusServiceUnavailable, apperrors.ErrEncryptionUnavailable.Error(), nil)
			return
		}
		response.RespondError(w, http.StatusInternalServerError, apperrors.ErrFailedToStoreProviderKey.Error(), err.Error())
		return
	}

	response.RespondJSON(w, http.StatusNoContent, nil)
}

// ProviderKeyStatus handles GET requests for the stored key's status.
// The key itself is never returned.
//
// Endpoint: GET /api/developer/provider-key/status
// Response: 200 OK with ProviderKeyStatus
func (h *DeveloperHandler) ProviderKeyStatus(w http.ResponseWriter, _ *http.Request) {
	status, err := h.providerRepo.KeyStatus(h.provider)
	if err != nil {
		response.RespondError(w, http.StatusInternalServerError, "failed to get provider key status", err.Error())
		return
	}

	response.RespondJSON(w, http.StatusOK, status)
}
