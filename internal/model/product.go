package model

import "time"

// Taxonomy is the parsed breakdown of a marketplace category path.
type Taxonomy struct {
	ID        string   `json:"id,omitempty" bson:"id,omitempty"`
	FullPath  string   `json:"full_path,omitempty" bson:"full_path,omitempty"`
	Root      string   `json:"root,omitempty" bson:"root,omitempty"`
	Leaf      string   `json:"leaf,omitempty" bson:"leaf,omitempty"`
	Ancestors []string `json:"ancestors,omitempty" bson:"ancestors,omitempty"`
}

// Attributes maps namespace -> field key -> coerced value.
type Attributes map[string]map[string]interface{}

// CanonicalProduct is the normalized representation of one marketplace listing,
// keyed by SKU. It is the durable contract between runs: the normalizer upserts
// it, the reconciler reads it and fills in the downstream linkage.
type CanonicalProduct struct {
	SKU           string            `json:"sku" bson:"_id"`
	Title         string            `json:"title" bson:"title"`
	Description   string            `json:"description" bson:"description"`
	Images        []string          `json:"images" bson:"images"`
	Price         string            `json:"price" bson:"price"`
	Quantity      int               `json:"quantity" bson:"quantity"`
	Category      string            `json:"category" bson:"category"`
	RawAttributes map[string]string `json:"raw_attributes" bson:"raw_attributes"`
	Metadata      Attributes        `json:"metadata" bson:"metadata"`
	Tags          []string          `json:"tags" bson:"tags"`
	Taxonomy      Taxonomy          `json:"taxonomy" bson:"taxonomy"`

	FirstSeenAt      time.Time `json:"first_seen_at" bson:"first_seen_at"`
	LastNormalizedAt time.Time `json:"last_normalized_at" bson:"last_normalized_at"`

	ContentHash           string `json:"content_hash" bson:"content_hash"`
	CollectionKey         string `json:"collection_key,omitempty" bson:"collection_key,omitempty"`
	CollectionFingerprint string `json:"collection_fingerprint,omitempty" bson:"collection_fingerprint,omitempty"`

	// Downstream linkage, set only after a successful create.
	ShopifyID        int64  `json:"shopify_id,omitempty" bson:"shopify_id,omitempty"`
	ShopifyVariantID int64  `json:"shopify_variant_id,omitempty" bson:"shopify_variant_id,omitempty"`
	LastSyncedHash   string `json:"last_synced_hash,omitempty" bson:"last_synced_hash,omitempty"`
}

// Linked reports whether the product has been created downstream.
func (p *CanonicalProduct) Linked() bool {
	return p.ShopifyID != 0
}
