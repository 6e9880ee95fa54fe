package repository

import (
	"database/sql"
	"fmt"
	"strings"
)

// AssetRepository resolves ticker symbols to the provider-specific asset ids
// used by the upstream price APIs, backed by the asset_mapping table.
type AssetRepository struct {
	db *sql.DB
}

// NewAssetRepository creates a new repository instance.
func NewAssetRepository(db *sql.DB) *AssetRepository {
	return &AssetRepository{db: db}
}

// ResolveProviderIDs maps each symbol to its provider asset id. Symbols
// without a mapping row fall back to the lowercased symbol, which is the
// common convention for minor assets on the upstream APIs. A held symbol
// is therefore always resolvable to something priceable-or-skippable.
func (r *AssetRepository) ResolveProviderIDs(symbols []string) (map[string]string, error) {
	resolved := make(map[string]string, len(symbols))
	for _, s := range symbols {
		resolved[s] = strings.ToLower(s)
	}
	if len(symbols) == 0 {
		return resolved, nil
	}

	placeholders := make([]string, len(symbols))
	for i := range placeholders {
		placeholders[i] = "?"
	}

	query := `
		SELECT symbol, provider_id
		FROM asset_mapping
		WHERE symbol IN (` + strings.Join(placeholders, ",") + `)
	`

	args := make([]any, len(symbols))
	for i, s := range symbols {
		args[i] = s
	}

	rows, err := r.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query asset_mapping table: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var symbol, providerID string
		if err := rows.Scan(&symbol, &providerID); err != nil {
			return nil, fmt.Errorf("failed to scan asset_mapping results: %w", err)
		}
		resolved[symbol] = providerID
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating asset_mapping table: %w", err)
	}

	return resolved, nil
}

// UpsertMapping stores or replaces the provider id for a symbol.
func (r *AssetRepository) UpsertMapping(symbol, providerID, name string) error {
	query := `
		INSERT INTO asset_mapping (symbol, provider_id, name)
		VALUES (?, ?, ?)
		ON CONFLICT(symbol) DO UPDATE SET
			provider_id = excluded.provider_id,
			name = excluded.name
	`
	if _, err := r.db.Exec(query, symbol, providerID, name); err != nil {
		return fmt.Errorf("failed to upsert asset mapping: %w", err)
	}
	return nil
}
