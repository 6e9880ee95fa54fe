package repository

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/fernet/fernet-go"
	"github.com/google/uuid"

	"github.com/cryptofolio/backend/internal/apperrors"
	"github.com/cryptofolio/backend/internal/model"
)

// ProviderRepository stores per-provider API keys in the provider_config
// table, fernet-encrypted at rest. A nil key disables storage entirely.
type ProviderRepository struct {
	db  *sql.DB
	key *fernet.Key
}

// NewProviderRepository creates a repository instance. fernetKey is the
// base64url-encoded fernet key; empty string disables encryption and with
// it all key storage operations.
func NewProviderRepository(db *sql.DB, fernetKey string) (*ProviderRepository, error) {
	r := &ProviderRepository{db: db}

	if fernetKey != "" {
		key, err := fernet.DecodeKey(fernetKey)
		if err != nil {
			return nil, fmt.Errorf("failed to decode fernet key: %w", err)
		}
		r.key = key
	}

	return r, nil
}

// StoreKey encrypts and upserts the API key for a provider.
func (r *ProviderRepository) StoreKey(provider, apiKey string) error {
	if r.key == nil {
		return apperrors.ErrEncryptionUnavailable
	}

	encrypted, err := fernet.EncryptAndSign([]byte(apiKey), r.key)
	if err != nil {
		return fmt.Errorf("failed to encrypt provider key: %w", err)
	}

	query := `
		INSERT INTO provider_config (id, provider, api_key_encrypted, updated_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(provider) DO UPDATE SET
			api_key_encrypted = excluded.api_key_encrypted,
			updated_at = excluded.updated_at
	`

	_, err = r.db.Exec(query,
		uuid.New().String(),
		provider,
		string(encrypted),
		time.Now().UTC().Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("failed to store provider key: %w", err)
	}
	return nil
}

// GetKey returns the decrypted API key for a provider.
// Returns apperrors.ErrProviderKeyNotFound when none is stored.
func (r *ProviderRepository) GetKey(provider string) (string, error) {
	if r.key == nil {
		return "", apperrors.ErrEncryptionUnavailable
	}

	var encrypted string
	err := r.db.QueryRow(
		`SELECT api_key_encrypted FROM provider_config WHERE provider = ?`,
		provider,
	).Scan(&encrypted)
	if err == sql.ErrNoRows {
		return "", apperrors.ErrProviderKeyNotFound
	}
	if err != nil {
		return "", fmt.Errorf("failed to query provider_config table: %w", err)
	}

	// Stored keys do not expire, hence zero TTL.
	decrypted := fernet.VerifyAndDecrypt([]byte(encrypted), 0, []*fernet.Key{r.key})
	if decrypted == nil {
		return "", fmt.Errorf("failed to decrypt provider key for %s", provider)
	}

	return string(decrypted), nil
}

// KeyStatus reports whether a key is stored for the provider, without
// exposing the key itself.
func (r *ProviderRepository) KeyStatus(provider string) (model.ProviderKeyStatus, error) {
	status := model.ProviderKeyStatus{Provider: provider}

	var updatedAt string
	err := r.db.QueryRow(
		`SELECT updated_at FROM provider_config WHERE provider = ?`,
		provider,
	).Scan(&updatedAt)
	if err == sql.ErrNoRows {
		return status, nil
	}
	if err != nil {
		return status, fmt.Errorf("failed to query provider_config table: %w", err)
	}

	status.Configured = true
	status.UpdatedAt = updatedAt
	return status, nil
}
