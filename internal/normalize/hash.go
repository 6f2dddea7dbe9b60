package normalize

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"

	"catalog-sync-api/internal/model"
)

// contentProjection is the explicit, ordered set of fields that affect the
// downstream representation. Anything outside this projection (raw attribute
// leftovers, timestamps, linkage) must not move the hash.
type contentProjection struct {
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Images      []string `json:"images"`
	Price       string   `json:"price"`
	Quantity    int      `json:"quantity"`
	Category    string   `json:"category"`
	Tags        []string `json:"tags"`
}

// ContentHash computes the stable fingerprint the reconciler compares against
// last_synced_hash. Tags are assumed sorted (the synthesizer guarantees it),
// so identical records always hash identically.
func ContentHash(p *model.CanonicalProduct) string {
	proj := contentProjection{
		Title:       p.Title,
		Description: p.Description,
		Images:      p.Images,
		Price:       p.Price,
		Quantity:    p.Quantity,
		Category:    p.Category,
		Tags:        p.Tags,
	}

	// Struct field order is fixed and json.Marshal emits keys in that order,
	// so the byte stream is deterministic.
	data, _ := json.Marshal(proj)
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}
