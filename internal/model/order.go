package model

// Line item outcome statuses recorded by the order reactor.
const (
	LineStatusOK        = "ok"
	LineStatusNoProduct = "no_product"
	LineStatusNoVariant = "no_variant"
	LineStatusError     = "error"
)

// LineItemResult is the per-line-item outcome of processing an order event.
type LineItemResult struct {
	SKU                string `json:"sku"`
	Status             string `json:"status"`
	VariantID          int64  `json:"variant_id,omitempty"`
	InventorySetTo     int    `json:"inventory_set_to,omitempty"`
	ProductUnpublished *bool  `json:"product_unpublished,omitempty"`
	Error              string `json:"error,omitempty"`
}

// OrderResult summarizes one processed order event.
type OrderResult struct {
	OrderID        string           `json:"order_id,omitempty"`
	ProcessedCount int              `json:"processed_count"`
	Errors         int              `json:"errors"`
	Details        []LineItemResult `json:"details"`
}
