package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"sort"
	"strings"
	"time"

	"catalog-sync-api/internal/model"

	"golang.org/x/time/rate"
)

// ShopifyClient talks to the Shopify Admin REST API. All calls go through a
// client-side rate limiter so bulk runs stay under the per-store request cap.
type ShopifyClient struct {
	baseURL     string
	accessToken string
	httpClient  *http.Client
	limiter     *rate.Limiter
}

// ShopifyConfig holds the settings for a store connection.
type ShopifyConfig struct {
	StoreURL    string // e.g. my-store.myshopify.com
	AccessToken string
	APIVersion  string
	Timeout     time.Duration
	RateLimit   float64 // requests per second
	RateBurst   int
}

// NewShopifyClient creates a Shopify Admin API client.
func NewShopifyClient(cfg ShopifyConfig) *ShopifyClient {
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = 30 * time.Second
	}
	limit := cfg.RateLimit
	if limit == 0 {
		limit = 2
	}
	burst := cfg.RateBurst
	if burst == 0 {
		burst = 4
	}

	return &ShopifyClient{
		baseURL:     fmt.Sprintf("https://%s/admin/api/%s", strings.TrimSuffix(cfg.StoreURL, "/"), cfg.APIVersion),
		accessToken: cfg.AccessToken,
		httpClient:  &http.Client{Timeout: timeout},
		limiter:     rate.NewLimiter(rate.Limit(limit), burst),
	}
}

// do performs one rate-limited API call, decoding the response into out when
// out is non-nil.
func (c *ShopifyClient) do(ctx context.Context, method, path string, body, out interface{}) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return err
	}

	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to encode request: %w", err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+"/"+path, reader)
	if err != nil {
		return err
	}
	req.Header.Set("X-Shopify-Access-Token", c.accessToken)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("shopify %s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		data, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
		return fmt.Errorf("shopify %s %s: status %d: %s", method, path, resp.StatusCode, strings.TrimSpace(string(data)))
	}

	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return fmt.Errorf("shopify %s %s: decode: %w", method, path, err)
		}
	}
	return nil
}

// TagString builds the downstream tag string: category plus tag set, sorted,
// deduplicated, comma-joined.
func TagString(p *model.CanonicalProduct) string {
	set := make(map[string]bool)
	if p.Category != "" {
		set[p.Category] = true
	}
	for _, t := range p.Tags {
		set[t] = true
	}

	tags := make([]string, 0, len(set))
	for t := range set {
		tags = append(tags, t)
	}
	sort.Strings(tags)
	return strings.Join(tags, ", ")
}

// CreateProduct sends the full canonical representation downstream.
func (c *ShopifyClient) CreateProduct(ctx context.Context, p *model.CanonicalProduct) (int64, int64, error) {
	images := make([]map[string]string, 0, len(p.Images))
	for _, src := range p.Images {
		images = append(images, map[string]string{"src": src})
	}

	price := p.Price
	if price == "" {
		price = "0"
	}

	payload := map[string]interface{}{
		"product": map[string]interface{}{
			"title":     p.Title,
			"body_html": p.Description,
			"tags":      TagString(p),
			"images":    images,
			"variants": []map[string]interface{}{{
				"sku":                  p.SKU,
				"price":                price,
				"inventory_management": "shopify",
				"inventory_quantity":   p.Quantity,
			}},
		},
	}

	var resp struct {
		Product struct {
			ID       int64 `json:"id"`
			Variants []struct {
				ID int64 `json:"id"`
			} `json:"variants"`
		} `json:"product"`
	}
	if err := c.do(ctx, http.MethodPost, "products.json", payload, &resp); err != nil {
		return 0, 0, err
	}
	if resp.Product.ID == 0 || len(resp.Product.Variants) == 0 {
		return 0, 0, fmt.Errorf("shopify create returned no product for %s", p.SKU)
	}
	return resp.Product.ID, resp.Product.Variants[0].ID, nil
}

// UpdateProduct sends only the mutable fields for a linked product.
func (c *ShopifyClient) UpdateProduct(ctx context.Context, productID, variantID int64, p *model.CanonicalProduct) error {
	productPayload := map[string]interface{}{
		"product": map[string]interface{}{
			"id":        productID,
			"title":     p.Title,
			"body_html": p.Description,
			"tags":      TagString(p),
		},
	}
	if err := c.do(ctx, http.MethodPut, fmt.Sprintf("products/%d.json", productID), productPayload, nil); err != nil {
		return err
	}

	price := p.Price
	if price == "" {
		price = "0"
	}
	variantPayload := map[string]interface{}{
		"variant": map[string]interface{}{
			"id":    variantID,
			"price": price,
		},
	}
	return c.do(ctx, http.MethodPut, fmt.Sprintf("variants/%d.json", variantID), variantPayload, nil)
}

// GetVariant fetches a variant, or nil if the store does not know it.
func (c *ShopifyClient) GetVariant(ctx context.Context, variantID int64) (*Variant, error) {
	var resp struct {
		Variant *Variant `json:"variant"`
	}
	err := c.do(ctx, http.MethodGet, fmt.Sprintf("variants/%d.json", variantID), nil, &resp)
	if err != nil {
		if strings.Contains(err.Error(), "status 404") {
			return nil, nil
		}
		return nil, err
	}
	return resp.Variant, nil
}

// SetVariantQuantity tries a direct variant-level quantity update.
func (c *ShopifyClient) SetVariantQuantity(ctx context.Context, variantID int64, qty int) (bool, error) {
	payload := map[string]interface{}{
		"variant": map[string]interface{}{
			"id":                 variantID,
			"inventory_quantity": qty,
		},
	}
	var resp struct {
		Variant *Variant `json:"variant"`
	}
	if err := c.do(ctx, http.MethodPut, fmt.Sprintf("variants/%d.json", variantID), payload, &resp); err != nil {
		return false, err
	}
	return resp.Variant != nil, nil
}

// ListLocations returns the store's stock locations.
func (c *ShopifyClient) ListLocations(ctx context.Context) ([]Location, error) {
	var resp struct {
		Locations []Location `json:"locations"`
	}
	if err := c.do(ctx, http.MethodGet, "locations.json", nil, &resp); err != nil {
		return nil, err
	}
	return resp.Locations, nil
}

// SetInventoryLevel sets available stock for an inventory item at a location.
func (c *ShopifyClient) SetInventoryLevel(ctx context.Context, inventoryItemID, locationID int64, qty int) error {
	payload := map[string]interface{}{
		"location_id":       locationID,
		"inventory_item_id": inventoryItemID,
		"available":         qty,
	}
	return c.do(ctx, http.MethodPost, "inventory_levels/set.json", payload, nil)
}

// SetProductStatus publishes or unpublishes a product.
func (c *ShopifyClient) SetProductStatus(ctx context.Context, productID int64, status string) error {
	payload := map[string]interface{}{
		"product": map[string]interface{}{
			"id":     productID,
			"status": status,
		},
	}
	return c.do(ctx, http.MethodPut, fmt.Sprintf("products/%d.json", productID), payload, nil)
}
