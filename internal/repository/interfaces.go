package repository

import (
	"context"

	"catalog-sync-api/internal/model"
)

// ProductRepository is the canonical record store. Every write is keyed by SKU
// with upsert semantics; pagination is keyset-based on SKU so runs walk records
// in a stable order.
type ProductRepository interface {
	// UpsertRaw replaces the stored raw listing for its SKU.
	UpsertRaw(ctx context.Context, listing *model.RawListing) error

	// ListRaw returns up to limit raw listings with SKU > afterSKU, SKU-sorted.
	ListRaw(ctx context.Context, afterSKU string, limit int) ([]model.RawListing, error)

	// GetProduct returns the canonical product for a SKU, or nil if absent.
	GetProduct(ctx context.Context, sku string) (*model.CanonicalProduct, error)

	// UpsertProduct inserts or fully replaces a canonical product.
	UpsertProduct(ctx context.Context, p *model.CanonicalProduct) error

	// ListProducts returns up to limit products with SKU > afterSKU, SKU-sorted.
	ListProducts(ctx context.Context, afterSKU string, limit int) ([]model.CanonicalProduct, error)

	// SetDownstreamLink stores the ids returned by a downstream create, plus
	// the hash that was synced.
	SetDownstreamLink(ctx context.Context, sku string, productID, variantID int64, syncedHash string) error

	// SetSyncedHash records the hash persisted by a downstream update.
	SetSyncedHash(ctx context.Context, sku, hash string) error

	// ResetLinks clears downstream linkage for one SKU, or for every product
	// when sku is empty. Returns the number of records touched.
	ResetLinks(ctx context.Context, sku string) (int64, error)

	// AttributeKeys returns a census of raw attribute keys across all products.
	AttributeKeys(ctx context.Context) (map[string]int, error)

	// Stats returns store statistics for the status endpoint.
	Stats(ctx context.Context) (map[string]interface{}, error)

	// Close closes the repository connection.
	Close() error
}

// SyncLogRepository persists run and webhook summaries.
type SyncLogRepository interface {
	// Append stores one log entry.
	Append(ctx context.Context, entry *model.SyncLogEntry) error

	// Recent returns the most recent entries, newest first.
	Recent(ctx context.Context, limit int) ([]model.SyncLogEntry, error)

	// Close closes the repository connection.
	Close() error
}
