package client

import (
	"context"

	"catalog-sync-api/internal/model"
)

// Variant is the subset of a downstream variant the pipeline reads.
type Variant struct {
	ID                int64 `json:"id"`
	InventoryQuantity int   `json:"inventory_quantity"`
	InventoryItemID   int64 `json:"inventory_item_id"`
}

// Location is a downstream stock location.
type Location struct {
	ID     int64  `json:"id"`
	Name   string `json:"name"`
	Active bool   `json:"active"`
}

// Downstream product statuses.
const (
	StatusActive = "active"
	StatusDraft  = "draft"
)

// StoreClient is the downstream storefront API. Every call may fail with a
// transport error; callers convert failures into per-item outcomes and never
// let them abort a run.
type StoreClient interface {
	// CreateProduct sends the full canonical representation downstream and
	// returns the generated product and variant ids.
	CreateProduct(ctx context.Context, p *model.CanonicalProduct) (productID, variantID int64, err error)

	// UpdateProduct sends only the mutable fields (title, description, tags,
	// price) for an already-linked product.
	UpdateProduct(ctx context.Context, productID, variantID int64, p *model.CanonicalProduct) error

	// GetVariant fetches a variant, or nil if the store does not know it.
	GetVariant(ctx context.Context, variantID int64) (*Variant, error)

	// SetVariantQuantity tries a direct variant-level quantity update and
	// reports whether the store confirmed it.
	SetVariantQuantity(ctx context.Context, variantID int64, qty int) (bool, error)

	// ListLocations returns the store's stock locations.
	ListLocations(ctx context.Context) ([]Location, error)

	// SetInventoryLevel sets available stock for an inventory item at a location.
	SetInventoryLevel(ctx context.Context, inventoryItemID, locationID int64, qty int) error

	// SetProductStatus publishes or unpublishes a product.
	SetProductStatus(ctx context.Context, productID int64, status string) error
}

// ListingClient is the marketplace source of raw listings.
type ListingClient interface {
	// FetchListings pulls the seller's complete active listing set.
	FetchListings(ctx context.Context) ([]model.RawListing, error)
}
