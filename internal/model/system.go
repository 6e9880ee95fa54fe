package model

// VersionResponse represents the version information response
type VersionResponse struct {
	Version   string `json:"version"`
	GoVersion string `json:"goVersion"`
}

// ProviderKeyStatus reports whether an API key is stored for a provider.
type ProviderKeyStatus struct {
	Provider   string `json:"provider"`
	Configured bool   `json:"configured"`
	UpdatedAt  string `json:"updatedAt,omitempty"`
}
