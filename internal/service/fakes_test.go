package service

import (
	"context"
	"fmt"
	"sort"

	"catalog-sync-api/internal/client"
	"catalog-sync-api/internal/model"
)

// fakeRepo is an in-memory ProductRepository for service tests.
type fakeRepo struct {
	raw      map[string]model.RawListing
	products map[string]*model.CanonicalProduct
	logs     []model.SyncLogEntry
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{
		raw:      map[string]model.RawListing{},
		products: map[string]*model.CanonicalProduct{},
	}
}

func (f *fakeRepo) UpsertRaw(ctx context.Context, listing *model.RawListing) error {
	f.raw[listing.SKU] = *listing
	return nil
}

func (f *fakeRepo) ListRaw(ctx context.Context, afterSKU string, limit int) ([]model.RawListing, error) {
	var skus []string
	for sku := range f.raw {
		if sku > afterSKU {
			skus = append(skus, sku)
		}
	}
	sort.Strings(skus)
	if len(skus) > limit {
		skus = skus[:limit]
	}
	out := make([]model.RawListing, 0, len(skus))
	for _, sku := range skus {
		out = append(out, f.raw[sku])
	}
	return out, nil
}

func (f *fakeRepo) GetProduct(ctx context.Context, sku string) (*model.CanonicalProduct, error) {
	p, ok := f.products[sku]
	if !ok {
		return nil, nil
	}
	cp := *p
	return &cp, nil
}

func (f *fakeRepo) UpsertProduct(ctx context.Context, p *model.CanonicalProduct) error {
	cp := *p
	f.products[p.SKU] = &cp
	return nil
}

func (f *fakeRepo) ListProducts(ctx context.Context, afterSKU string, limit int) ([]model.CanonicalProduct, error) {
	var skus []string
	for sku := range f.products {
		if sku > afterSKU {
			skus = append(skus, sku)
		}
	}
	sort.Strings(skus)
	if len(skus) > limit {
		skus = skus[:limit]
	}
	out := make([]model.CanonicalProduct, 0, len(skus))
	for _, sku := range skus {
		out = append(out, *f.products[sku])
	}
	return out, nil
}

func (f *fakeRepo) SetDownstreamLink(ctx context.Context, sku string, productID, variantID int64, syncedHash string) error {
	p, ok := f.products[sku]
	if !ok {
		return fmt.Errorf("no product %s", sku)
	}
	p.ShopifyID = productID
	p.ShopifyVariantID = variantID
	p.LastSyncedHash = syncedHash
	return nil
}

func (f *fakeRepo) SetSyncedHash(ctx context.Context, sku, hash string) error {
	p, ok := f.products[sku]
	if !ok {
		return fmt.Errorf("no product %s", sku)
	}
	p.LastSyncedHash = hash
	return nil
}

func (f *fakeRepo) ResetLinks(ctx context.Context, sku string) (int64, error) {
	var count int64
	for _, p := range f.products {
		if sku != "" && p.SKU != sku {
			continue
		}
		p.ShopifyID = 0
		p.ShopifyVariantID = 0
		p.LastSyncedHash = ""
		count++
	}
	return count, nil
}

func (f *fakeRepo) AttributeKeys(ctx context.Context) (map[string]int, error) {
	counts := map[string]int{}
	for _, p := range f.products {
		for k := range p.RawAttributes {
			counts[k]++
		}
	}
	return counts, nil
}

func (f *fakeRepo) Stats(ctx context.Context) (map[string]interface{}, error) {
	return map[string]interface{}{"products": len(f.products)}, nil
}

func (f *fakeRepo) Close() error { return nil }

// fakeSyncLog collects appended entries.
type fakeSyncLog struct {
	entries []model.SyncLogEntry
}

func (f *fakeSyncLog) Append(ctx context.Context, entry *model.SyncLogEntry) error {
	f.entries = append(f.entries, *entry)
	return nil
}

func (f *fakeSyncLog) Recent(ctx context.Context, limit int) ([]model.SyncLogEntry, error) {
	out := make([]model.SyncLogEntry, 0, len(f.entries))
	for i := len(f.entries) - 1; i >= 0 && len(out) < limit; i-- {
		out = append(out, f.entries[i])
	}
	return out, nil
}

func (f *fakeSyncLog) Close() error { return nil }

// fakeStore is a scriptable StoreClient.
type fakeStore struct {
	nextID int64

	createErr       error
	updateErr       error
	variantOK       bool
	variantErr      error
	variants        map[int64]*client.Variant
	locations       []client.Location
	statusErr       error
	inventoryLevels map[int64]int // inventoryItemID -> qty

	createCalls   int
	updateCalls   int
	statusCalls   []string
	levelCalls    int
	quantityCalls int
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		nextID:          1000,
		variantOK:       true,
		variants:        map[int64]*client.Variant{},
		inventoryLevels: map[int64]int{},
	}
}

func (f *fakeStore) CreateProduct(ctx context.Context, p *model.CanonicalProduct) (int64, int64, error) {
	f.createCalls++
	if f.createErr != nil {
		return 0, 0, f.createErr
	}
	f.nextID++
	productID := f.nextID
	f.nextID++
	variantID := f.nextID
	f.variants[variantID] = &client.Variant{ID: variantID, InventoryQuantity: p.Quantity, InventoryItemID: variantID + 5000}
	return productID, variantID, nil
}

func (f *fakeStore) UpdateProduct(ctx context.Context, productID, variantID int64, p *model.CanonicalProduct) error {
	f.updateCalls++
	return f.updateErr
}

func (f *fakeStore) GetVariant(ctx context.Context, variantID int64) (*client.Variant, error) {
	if f.variantErr != nil {
		return nil, f.variantErr
	}
	return f.variants[variantID], nil
}

func (f *fakeStore) SetVariantQuantity(ctx context.Context, variantID int64, qty int) (bool, error) {
	f.quantityCalls++
	if !f.variantOK {
		return false, nil
	}
	if v := f.variants[variantID]; v != nil {
		v.InventoryQuantity = qty
	}
	return true, nil
}

func (f *fakeStore) ListLocations(ctx context.Context) ([]client.Location, error) {
	return f.locations, nil
}

func (f *fakeStore) SetInventoryLevel(ctx context.Context, inventoryItemID, locationID int64, qty int) error {
	f.levelCalls++
	f.inventoryLevels[inventoryItemID] = qty
	return nil
}

func (f *fakeStore) SetProductStatus(ctx context.Context, productID int64, status string) error {
	f.statusCalls = append(f.statusCalls, status)
	return f.statusErr
}
