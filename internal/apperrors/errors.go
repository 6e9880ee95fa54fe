package apperrors

import "errors"

// Domain entity errors represent missing or invalid entities in the system.
// These errors indicate that a requested resource does not exist.
var (
	// ErrTransactionNotFound indicates that a transaction with the given ID does not exist.
	ErrTransactionNotFound = errors.New("transaction not found")

	// ErrSnapshotNotFound indicates no snapshot exists for a user/date combination.
	ErrSnapshotNotFound = errors.New("snapshot not found")

	// ErrPriceNotFound indicates no historical price row for a symbol/date combination.
	ErrPriceNotFound = errors.New("historical price not found")

	// ErrSymbolNotFound indicates that a symbol lookup returned no results.
	ErrSymbolNotFound = errors.New("symbol not found")

	// ErrProviderKeyNotFound indicates no API key has been stored for the provider.
	ErrProviderKeyNotFound = errors.New("provider key not found")
)

// Business logic errors represent validation failures or constraint violations.
// These errors indicate that an operation cannot be completed due to business rules.
var (
	// ErrInvalidRange indicates a history range token other than 7d, 30d or 1y.
	ErrInvalidRange = errors.New("invalid range: must be one of 7d, 30d, 1y")

	// ErrInvalidSide indicates a transaction side other than BUY, SELL or TRANSFER.
	ErrInvalidSide = errors.New("invalid side: must be one of BUY, SELL, TRANSFER")

	// ErrInvalidQuantity indicates a zero or negative transaction quantity.
	ErrInvalidQuantity = errors.New("quantity must be positive")

	// ErrMissingUserID indicates that the required userId parameter is empty.
	ErrMissingUserID = errors.New("userId is required")

	// ErrMissingSymbol indicates that the required symbol field is empty.
	ErrMissingSymbol = errors.New("symbol is required")

	// ErrEncryptionUnavailable indicates no fernet key is configured, so the
	// provider API key cannot be stored.
	ErrEncryptionUnavailable = errors.New("encryption key not configured")
)

// Upstream errors represent failures of external collaborators.
var (
	// ErrPriceSourceUnavailable indicates the upstream price API could not be
	// reached or returned an unusable payload. Callers degrade rather than fail.
	ErrPriceSourceUnavailable = errors.New("price source unavailable")
)

// Operation failure errors represent system-level failures when retrieving or
// processing data. These wrap lower-level causes for consistent API messages.
var (
	ErrFailedToRetrieveTransactions = errors.New("failed to retrieve transactions")
	ErrFailedToRetrieveTransaction  = errors.New("failed to retrieve transaction")
	ErrFailedToCreateTransaction    = errors.New("failed to create transaction")
	ErrFailedToImportTransactions   = errors.New("failed to import transactions")
	ErrFailedToGetPortfolio         = errors.New("failed to get portfolio")
	ErrFailedToGetPortfolioHistory  = errors.New("failed to get portfolio history")
	ErrFailedToStoreProviderKey     = errors.New("failed to store provider key")
	ErrFailedToGetVersionInfo       = errors.New("failed to get version information")
)
