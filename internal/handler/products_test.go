package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sort"
	"testing"

	"catalog-sync-api/internal/model"

	"github.com/go-chi/chi/v5"
)

// stubRepo is a minimal in-memory ProductRepository for handler tests.
type stubRepo struct {
	products map[string]*model.CanonicalProduct
	reset    int64
}

func newStubRepo() *stubRepo {
	return &stubRepo{products: map[string]*model.CanonicalProduct{}}
}

func (s *stubRepo) UpsertRaw(ctx context.Context, listing *model.RawListing) error { return nil }
func (s *stubRepo) ListRaw(ctx context.Context, afterSKU string, limit int) ([]model.RawListing, error) {
	return nil, nil
}

func (s *stubRepo) GetProduct(ctx context.Context, sku string) (*model.CanonicalProduct, error) {
	return s.products[sku], nil
}

func (s *stubRepo) UpsertProduct(ctx context.Context, p *model.CanonicalProduct) error {
	s.products[p.SKU] = p
	return nil
}

func (s *stubRepo) ListProducts(ctx context.Context, afterSKU string, limit int) ([]model.CanonicalProduct, error) {
	var skus []string
	for sku := range s.products {
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
		out = append(out, *s.products[sku])
	}
	return out, nil
}

func (s *stubRepo) SetDownstreamLink(ctx context.Context, sku string, productID, variantID int64, syncedHash string) error {
	return nil
}
func (s *stubRepo) SetSyncedHash(ctx context.Context, sku, hash string) error { return nil }

func (s *stubRepo) ResetLinks(ctx context.Context, sku string) (int64, error) {
	return s.reset, nil
}

func (s *stubRepo) AttributeKeys(ctx context.Context) (map[string]int, error) {
	return map[string]int{"Material": 2}, nil
}

func (s *stubRepo) Stats(ctx context.Context) (map[string]interface{}, error) {
	return map[string]interface{}{"status": "connected"}, nil
}

func (s *stubRepo) Close() error { return nil }

func productRouter(repo *stubRepo) *chi.Mux {
	h := NewProductHandler(repo)
	r := chi.NewRouter()
	r.Get("/products", h.List)
	r.Get("/products/attributes", h.AttributeKeys)
	r.Post("/products/reset-links", h.ResetLinks)
	r.Get("/products/{sku}", h.Get)
	return r
}

func TestProductGet(t *testing.T) {
	repo := newStubRepo()
	repo.products["A"] = &model.CanonicalProduct{SKU: "A", Title: "Eagle Bookends"}
	r := productRouter(repo)

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/products/A", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body.String())
	}
	var resp struct {
		Success bool                   `json:"success"`
		Data    model.CanonicalProduct `json:"data"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if !resp.Success || resp.Data.Title != "Eagle Bookends" {
		t.Errorf("resp = %+v", resp)
	}
}

func TestProductGetNotFound(t *testing.T) {
	r := productRouter(newStubRepo())

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/products/MISSING", nil))

	if rec.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", rec.Code)
	}
}

func TestProductList(t *testing.T) {
	repo := newStubRepo()
	for _, sku := range []string{"A", "B", "C"} {
		repo.products[sku] = &model.CanonicalProduct{SKU: sku}
	}
	r := productRouter(repo)

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/products?after=A&limit=1", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	var resp struct {
		Data []model.CanonicalProduct `json:"data"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(resp.Data) != 1 || resp.Data[0].SKU != "B" {
		t.Errorf("data = %+v", resp.Data)
	}
}

func TestProductResetLinks(t *testing.T) {
	repo := newStubRepo()
	repo.reset = 7
	r := productRouter(repo)

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/products/reset-links", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	var resp struct {
		Data map[string]int64 `json:"data"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.Data["reset"] != 7 {
		t.Errorf("reset = %d, want 7", resp.Data["reset"])
	}
}

func TestProductAttributeKeys(t *testing.T) {
	r := productRouter(newStubRepo())

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/products/attributes", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	var resp struct {
		Data map[string]int `json:"data"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.Data["Material"] != 2 {
		t.Errorf("data = %v", resp.Data)
	}
}
