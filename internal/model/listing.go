package model

// RawListing is a marketplace listing as fetched, untouched. The SKU is the
// seller's custom label; the listing client falls back to the marketplace item
// ID when the seller never set one.
type RawListing struct {
	SKU          string              `json:"sku" bson:"_id"`
	ItemID       string              `json:"item_id" bson:"item_id"`
	Title        string              `json:"title" bson:"title"`
	Description  string              `json:"description" bson:"description"`
	Images       []string            `json:"images" bson:"images"`
	Price        string              `json:"price" bson:"price"`
	Quantity     int                 `json:"quantity" bson:"quantity"`
	CategoryID   string              `json:"category_id" bson:"category_id"`
	CategoryPath string              `json:"category_path" bson:"category_path"`
	Specifics    map[string][]string `json:"specifics" bson:"specifics"`
}
