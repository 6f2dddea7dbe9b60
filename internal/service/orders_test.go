package service

import (
	"context"
	"reflect"
	"testing"

	"catalog-sync-api/internal/client"
	"catalog-sync-api/internal/model"
)

func TestParseOrderEvent(t *testing.T) {
	tests := []struct {
		name        string
		payload     string
		wantOrderID string
		wantSKUs    []string
	}{
		{
			name:        "order wrapper with array line items",
			payload:     `{"order":{"orderId":"O-1","lineItems":[{"sku":"A"},{"sku":"B"}]}}`,
			wantOrderID: "O-1",
			wantSKUs:    []string{"A", "B"},
		},
		{
			name:        "bare order",
			payload:     `{"orderId":"O-2","lineItems":[{"sku":"A"}]}`,
			wantOrderID: "O-2",
			wantSKUs:    []string{"A"},
		},
		{
			name:        "wrapped lineItem object",
			payload:     `{"order":{"legacyOrderId":"O-3","lineItems":{"lineItem":[{"sku":"A"}]}}}`,
			wantOrderID: "O-3",
			wantSKUs:    []string{"A"},
		},
		{
			name:        "sku nested under lineItem",
			payload:     `{"lineItems":[{"lineItem":{"sku":"A"}}]}`,
			wantSKUs:    []string{"A"},
		},
		{
			name:        "sku nested under item",
			payload:     `{"lineItems":[{"item":{"SKU":"A"}}]}`,
			wantSKUs:    []string{"A"},
		},
		{
			name:        "no line items is still a valid event",
			payload:     `{"orderId":"O-4"}`,
			wantOrderID: "O-4",
		},
		{
			name:     "line item without sku yields empty entry",
			payload:  `{"lineItems":[{"title":"mystery"},{"sku":"B"}]}`,
			wantSKUs: []string{"", "B"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			orderID, skus, err := parseOrderEvent([]byte(tt.payload))
			if err != nil {
				t.Fatalf("parseOrderEvent: %v", err)
			}
			if orderID != tt.wantOrderID {
				t.Errorf("orderID = %q, want %q", orderID, tt.wantOrderID)
			}
			if !reflect.DeepEqual(skus, tt.wantSKUs) {
				t.Errorf("skus = %v, want %v", skus, tt.wantSKUs)
			}
		})
	}
}

func TestParseOrderEventGarbled(t *testing.T) {
	if _, _, err := parseOrderEvent([]byte("not json")); err == nil {
		t.Error("garbled payload must be an error")
	}
}

func TestHandleOrderOutcomes(t *testing.T) {
	repo := newFakeRepo()
	store := newFakeStore()

	// Linked product with a live variant.
	store.variants[7] = &client.Variant{ID: 7, InventoryQuantity: 1, InventoryItemID: 5007}
	repo.products["SOLD"] = &model.CanonicalProduct{SKU: "SOLD", ShopifyID: 3, ShopifyVariantID: 7}

	// Normalized but never reconciled.
	repo.products["UNLINKED"] = &model.CanonicalProduct{SKU: "UNLINKED"}

	syncLog := &fakeSyncLog{}
	reactor := NewOrderReactor(repo, store, syncLog)

	payload := `{"order":{"orderId":"O-9","lineItems":[{"sku":"SOLD"},{"sku":"UNLINKED"},{"sku":"GHOST"}]}}`
	result, err := reactor.HandleOrder(context.Background(), []byte(payload), OrderOptions{MakeUnavailable: true})
	if err != nil {
		t.Fatalf("HandleOrder: %v", err)
	}

	if result.OrderID != "O-9" {
		t.Errorf("order id = %q", result.OrderID)
	}
	if result.ProcessedCount != 3 || result.Errors != 0 {
		t.Errorf("processed = %d, errors = %d", result.ProcessedCount, result.Errors)
	}

	bySKU := map[string]model.LineItemResult{}
	for _, d := range result.Details {
		bySKU[d.SKU] = d
	}

	if got := bySKU["SOLD"]; got.Status != model.LineStatusOK || got.InventorySetTo != 0 {
		t.Errorf("SOLD = %+v", got)
	}
	if got := bySKU["UNLINKED"]; got.Status != model.LineStatusNoVariant {
		t.Errorf("UNLINKED = %+v", got)
	}
	if got := bySKU["GHOST"]; got.Status != model.LineStatusNoProduct {
		t.Errorf("GHOST = %+v", got)
	}

	if store.variants[7].InventoryQuantity != 0 {
		t.Errorf("variant quantity = %d, want 0", store.variants[7].InventoryQuantity)
	}
	if !reflect.DeepEqual(store.statusCalls, []string{client.StatusDraft}) {
		t.Errorf("status calls = %v, want one draft", store.statusCalls)
	}
	unpub := bySKU["SOLD"].ProductUnpublished
	if unpub == nil || !*unpub {
		t.Error("SOLD must report product_unpublished=true")
	}

	if len(syncLog.entries) != 1 || syncLog.entries[0].Kind != LogKindOrder {
		t.Errorf("sync log entries = %+v", syncLog.entries)
	}
}

func TestHandleOrderSkulessLineItemCounted(t *testing.T) {
	reactor := NewOrderReactor(newFakeRepo(), newFakeStore(), nil)

	result, err := reactor.HandleOrder(context.Background(),
		[]byte(`{"orderId":"O-5","lineItems":[{"title":"mystery"},{"sku":"GHOST"}]}`), OrderOptions{})
	if err != nil {
		t.Fatalf("HandleOrder: %v", err)
	}

	if result.ProcessedCount != 2 {
		t.Errorf("processed = %d, want 2", result.ProcessedCount)
	}
	if got := result.Details[0]; got.SKU != "" || got.Status != model.LineStatusNoProduct {
		t.Errorf("skuless line item = %+v, want no_product", got)
	}
	if got := result.Details[1]; got.Status != model.LineStatusNoProduct {
		t.Errorf("unknown sku = %+v, want no_product", got)
	}
}

func TestHandleOrderKeepsPublishedWhenAsked(t *testing.T) {
	repo := newFakeRepo()
	store := newFakeStore()
	store.variants[7] = &client.Variant{ID: 7, InventoryItemID: 5007}
	repo.products["SOLD"] = &model.CanonicalProduct{SKU: "SOLD", ShopifyID: 3, ShopifyVariantID: 7}

	reactor := NewOrderReactor(repo, store, nil)
	result, err := reactor.HandleOrder(context.Background(),
		[]byte(`{"lineItems":[{"sku":"SOLD"}]}`), OrderOptions{MakeUnavailable: false})
	if err != nil {
		t.Fatalf("HandleOrder: %v", err)
	}

	if len(store.statusCalls) != 0 {
		t.Errorf("unexpected status calls: %v", store.statusCalls)
	}
	if result.Details[0].ProductUnpublished != nil {
		t.Error("product_unpublished must be absent when unpublishing is off")
	}
}

func TestSetQuantityFallsBackToInventoryLevel(t *testing.T) {
	repo := newFakeRepo()
	store := newFakeStore()
	store.variantOK = false // variant-level update not honored
	store.variants[7] = &client.Variant{ID: 7, InventoryItemID: 5007}
	store.locations = []client.Location{
		{ID: 1, Name: "Closed", Active: false},
		{ID: 2, Name: "Warehouse", Active: true},
	}
	repo.products["SOLD"] = &model.CanonicalProduct{SKU: "SOLD", ShopifyID: 3, ShopifyVariantID: 7}

	reactor := NewOrderReactor(repo, store, nil)
	result, err := reactor.HandleOrder(context.Background(),
		[]byte(`{"lineItems":[{"sku":"SOLD"}]}`), OrderOptions{})
	if err != nil {
		t.Fatalf("HandleOrder: %v", err)
	}

	if result.Details[0].Status != model.LineStatusOK {
		t.Errorf("status = %+v", result.Details[0])
	}
	if store.levelCalls != 1 {
		t.Errorf("inventory level calls = %d, want 1", store.levelCalls)
	}
	if got := store.inventoryLevels[5007]; got != 0 {
		t.Errorf("inventory level = %d, want 0", got)
	}
}

func TestHandleOrderUnknownVariantIsError(t *testing.T) {
	repo := newFakeRepo()
	store := newFakeStore()
	// Variant 7 is linked locally but the store no longer knows it.
	repo.products["SOLD"] = &model.CanonicalProduct{SKU: "SOLD", ShopifyID: 3, ShopifyVariantID: 7}

	reactor := NewOrderReactor(repo, store, nil)
	result, err := reactor.HandleOrder(context.Background(),
		[]byte(`{"lineItems":[{"sku":"SOLD"}]}`), OrderOptions{})
	if err != nil {
		t.Fatalf("HandleOrder: %v", err)
	}

	if result.Errors != 1 || result.Details[0].Status != model.LineStatusError {
		t.Errorf("result = %+v", result)
	}
}
