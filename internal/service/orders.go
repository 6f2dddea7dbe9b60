package service

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"strings"
	"time"

	"catalog-sync-api/internal/client"
	"catalog-sync-api/internal/metrics"
	"catalog-sync-api/internal/model"
	"catalog-sync-api/internal/repository"
)

// OrderReactor handles marketplace order events by zeroing (or setting)
// downstream inventory for each sold SKU. One line item failing never aborts
// the others; only an unparseable event is an error.
type OrderReactor struct {
	repo    repository.ProductRepository
	store   client.StoreClient
	syncLog repository.SyncLogRepository
}

// NewOrderReactor creates an order reactor. syncLog may be nil.
func NewOrderReactor(repo repository.ProductRepository, store client.StoreClient, syncLog repository.SyncLogRepository) *OrderReactor {
	return &OrderReactor{repo: repo, store: store, syncLog: syncLog}
}

// OrderOptions control how an order event is applied.
type OrderOptions struct {
	// TargetQuantity is the downstream quantity to set; default 0 (sold out).
	TargetQuantity int
	// MakeUnavailable additionally unpublishes the downstream product after a
	// successful quantity change.
	MakeUnavailable bool
}

// HandleOrder processes one order event payload. The payload parser tolerates
// the historical webhook shapes; line items whose SKU cannot be extracted are
// recorded as no_product so processed_count covers every line item.
func (r *OrderReactor) HandleOrder(ctx context.Context, payload []byte, opts OrderOptions) (*model.OrderResult, error) {
	orderID, skus, err := parseOrderEvent(payload)
	if err != nil {
		return nil, err
	}

	result := &model.OrderResult{OrderID: orderID}

	for _, sku := range skus {
		outcome := r.handleLineItem(ctx, sku, opts)
		if outcome.Status == model.LineStatusError {
			result.Errors++
		}
		metrics.RecordOrderLine(outcome.Status)
		result.Details = append(result.Details, outcome)
	}
	result.ProcessedCount = len(result.Details)

	if r.syncLog != nil {
		entry := &model.SyncLogEntry{Kind: LogKindOrder, Detail: result, CreatedAt: time.Now().UTC()}
		if err := r.syncLog.Append(ctx, entry); err != nil {
			log.Printf("[Orders] Failed to append webhook log: %v", err)
		}
	}

	return result, nil
}

func (r *OrderReactor) handleLineItem(ctx context.Context, sku string, opts OrderOptions) model.LineItemResult {
	if sku == "" {
		return model.LineItemResult{Status: model.LineStatusNoProduct}
	}

	p, err := r.repo.GetProduct(ctx, sku)
	if err != nil {
		log.Printf("[Orders] Failed to load product %s: %v", sku, err)
		return model.LineItemResult{SKU: sku, Status: model.LineStatusError, Error: err.Error()}
	}
	if p == nil {
		return model.LineItemResult{SKU: sku, Status: model.LineStatusNoProduct}
	}
	if p.ShopifyVariantID == 0 {
		return model.LineItemResult{SKU: sku, Status: model.LineStatusNoVariant}
	}

	if err := r.setQuantity(ctx, p.ShopifyVariantID, opts.TargetQuantity); err != nil {
		log.Printf("[Orders] Failed to set inventory for %s: %v", sku, err)
		return model.LineItemResult{
			SKU:       sku,
			Status:    model.LineStatusError,
			VariantID: p.ShopifyVariantID,
			Error:     err.Error(),
		}
	}

	outcome := model.LineItemResult{
		SKU:            sku,
		Status:         model.LineStatusOK,
		VariantID:      p.ShopifyVariantID,
		InventorySetTo: opts.TargetQuantity,
	}

	// Unpublishing is secondary: its failure is recorded but never reverts
	// the inventory change.
	if opts.MakeUnavailable && p.ShopifyID != 0 {
		unpublished := true
		if err := r.store.SetProductStatus(ctx, p.ShopifyID, client.StatusDraft); err != nil {
			log.Printf("[Orders] Failed to unpublish product %d (%s): %v", p.ShopifyID, sku, err)
			unpublished = false
		}
		outcome.ProductUnpublished = &unpublished
	}

	return outcome
}

// setQuantity drives the downstream variant to the target quantity. It tries
// the direct variant update first and falls back to setting the inventory
// level at an available location.
func (r *OrderReactor) setQuantity(ctx context.Context, variantID int64, qty int) error {
	variant, err := r.store.GetVariant(ctx, variantID)
	if err != nil {
		return err
	}
	if variant == nil {
		return fmt.Errorf("variant %d not found downstream", variantID)
	}

	ok, err := r.store.SetVariantQuantity(ctx, variantID, qty)
	if err != nil {
		log.Printf("[Orders] Variant-level update failed for %d, falling back: %v", variantID, err)
	} else if ok {
		return nil
	}

	if variant.InventoryItemID == 0 {
		return fmt.Errorf("variant %d has no inventory item id", variantID)
	}

	locations, err := r.store.ListLocations(ctx)
	if err != nil {
		return err
	}
	locationID := int64(0)
	for _, loc := range locations {
		if loc.Active {
			locationID = loc.ID
			break
		}
	}
	if locationID == 0 && len(locations) > 0 {
		locationID = locations[0].ID
	}
	if locationID == 0 {
		return fmt.Errorf("no stock locations available")
	}

	return r.store.SetInventoryLevel(ctx, variant.InventoryItemID, locationID, qty)
}

// parseOrderEvent extracts the order id and line item SKUs from a webhook
// payload. Observed shapes: the order at the top level or under "order";
// line items as an array or wrapped in {"lineItem": [...]}; the SKU at the
// line item root, under "lineItem", or under "item". A line item without an
// extractable SKU yields an empty entry so no line item goes uncounted.
func parseOrderEvent(payload []byte) (string, []string, error) {
	var root map[string]interface{}
	if err := json.Unmarshal(payload, &root); err != nil {
		return "", nil, fmt.Errorf("unparseable order event: %w", err)
	}

	order := root
	if nested, ok := root["order"].(map[string]interface{}); ok {
		order = nested
	}

	orderID := firstString(order, "orderId", "legacyOrderId", "orderIdReference", "id")

	items := order["lineItems"]
	if wrapper, ok := items.(map[string]interface{}); ok {
		items = wrapper["lineItem"]
	}

	list, ok := items.([]interface{})
	if !ok {
		// An order with no recognizable line items is still a valid event.
		return orderID, nil, nil
	}

	var skus []string
	for _, entry := range list {
		li, ok := entry.(map[string]interface{})
		if !ok {
			continue
		}
		sku := firstString(li, "sku", "SKU")
		if sku == "" {
			if nested, ok := li["lineItem"].(map[string]interface{}); ok {
				sku = firstString(nested, "sku", "SKU")
			}
		}
		if sku == "" {
			if nested, ok := li["item"].(map[string]interface{}); ok {
				sku = firstString(nested, "sku", "SKU")
			}
		}
		skus = append(skus, sku)
	}
	return orderID, skus, nil
}

func firstString(m map[string]interface{}, keys ...string) string {
	for _, k := range keys {
		if v, ok := m[k].(string); ok && strings.TrimSpace(v) != "" {
			return strings.TrimSpace(v)
		}
	}
	return ""
}
