package client

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"strings"
	"time"

	"catalog-sync-api/internal/model"
)

// EbayClient pulls the seller's active listings from the marketplace API,
// following pagination until the set is exhausted.
type EbayClient struct {
	baseURL    string
	oauthToken string
	pageSize   int
	httpClient *http.Client
}

// EbayConfig holds the marketplace API settings.
type EbayConfig struct {
	BaseURL    string
	OAuthToken string
	PageSize   int
	Timeout    time.Duration
}

// NewEbayClient creates a marketplace listing client.
func NewEbayClient(cfg EbayConfig) *EbayClient {
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = 30 * time.Second
	}
	pageSize := cfg.PageSize
	if pageSize == 0 {
		pageSize = 100
	}

	return &EbayClient{
		baseURL:    strings.TrimSuffix(cfg.BaseURL, "/"),
		oauthToken: cfg.OAuthToken,
		pageSize:   pageSize,
		httpClient: &http.Client{Timeout: timeout},
	}
}

// listingPage matches the inventory items response shape.
type listingPage struct {
	Total int `json:"total"`
	Items []struct {
		SKU       string `json:"sku"`
		ItemID    string `json:"itemId"`
		Title     string `json:"title"`
		Product   struct {
			Description string              `json:"description"`
			ImageUrls   []string            `json:"imageUrls"`
			Aspects     map[string][]string `json:"aspects"`
		} `json:"product"`
		Availability struct {
			ShipToLocationAvailability struct {
				Quantity int `json:"quantity"`
			} `json:"shipToLocationAvailability"`
		} `json:"availability"`
		Price struct {
			Value string `json:"value"`
		} `json:"price"`
		CategoryID   string `json:"categoryId"`
		CategoryPath string `json:"categoryPath"`
	} `json:"inventoryItems"`
}

// FetchListings pulls the complete active listing set, page by page.
func (c *EbayClient) FetchListings(ctx context.Context) ([]model.RawListing, error) {
	var listings []model.RawListing

	for offset := 0; ; offset += c.pageSize {
		page, err := c.fetchPage(ctx, offset)
		if err != nil {
			return nil, err
		}

		for _, item := range page.Items {
			sku := strings.TrimSpace(item.SKU)
			if sku == "" {
				// Seller never set a custom label; the item id is stable too.
				sku = strings.TrimSpace(item.ItemID)
			}
			if sku == "" {
				log.Printf("[Ebay] Skipping listing with no SKU or item id (%q)", item.Title)
				continue
			}

			listings = append(listings, model.RawListing{
				SKU:          sku,
				ItemID:       item.ItemID,
				Title:        item.Title,
				Description:  item.Product.Description,
				Images:       item.Product.ImageUrls,
				Price:        item.Price.Value,
				Quantity:     item.Availability.ShipToLocationAvailability.Quantity,
				CategoryID:   item.CategoryID,
				CategoryPath: item.CategoryPath,
				Specifics:    item.Product.Aspects,
			})
		}

		if len(page.Items) < c.pageSize || offset+c.pageSize >= page.Total {
			break
		}
	}

	log.Printf("[Ebay] Fetched %d listings", len(listings))
	return listings, nil
}

func (c *EbayClient) fetchPage(ctx context.Context, offset int) (*listingPage, error) {
	url := fmt.Sprintf("%s/sell/inventory/v1/inventory_item?limit=%d&offset=%d", c.baseURL, c.pageSize, offset)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+c.oauthToken)
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("ebay listings fetch: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		data, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
		return nil, fmt.Errorf("ebay listings fetch: status %d: %s", resp.StatusCode, strings.TrimSpace(string(data)))
	}

	var page listingPage
	if err := json.NewDecoder(resp.Body).Decode(&page); err != nil {
		return nil, fmt.Errorf("ebay listings fetch: decode: %w", err)
	}
	return &page, nil
}
