package request

// StoreProviderKeyRequest is the body of PUT /api/developer/provider-key.
type StoreProviderKeyRequest struct {
	APIKey string `json:"apiKey"`
}
