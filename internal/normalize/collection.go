package normalize

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"log"
	"sort"
	"strings"
	"unicode/utf8"

	"catalog-sync-api/internal/model"
)

// CollectionPrefix marks the single merchandising collection tag on a product.
const CollectionPrefix = "SC:"

// NoMatch is the answer an external classifier returns when no allowed label
// applies. It is a valid outcome, not an error.
const NoMatch = "no match"

// fingerprintTitleLimit bounds how much of the title feeds the fingerprint.
const fingerprintTitleLimit = 120

// SemanticClassifier is the external fallback used when the deterministic
// mapping misses. Implementations must tolerate being asked for labels outside
// their training set; callers discard anything not in the allowed vocabulary.
type SemanticClassifier interface {
	Classify(ctx context.Context, signals ClassifierSignals, allowed []string) (string, error)
}

// ClassifierSignals are the structured inputs handed to the external classifier.
type ClassifierSignals struct {
	Title         string            `json:"title"`
	Category      string            `json:"category"`
	Tags          []string          `json:"tags"`
	AttributeKeys []string          `json:"attribute_keys"`
	System        map[string]string `json:"system"`
}

// CollectionMapping maps category names to collection labels. Matching is
// exact first, then substring, case-insensitive.
type CollectionMapping struct {
	Name  string
	Label string
}

// DefaultCollectionMappings cover the categories with a fixed merchandising home.
var DefaultCollectionMappings = []CollectionMapping{
	{Name: "Sculptures & Figurines", Label: "SC: Sculpture & Figurines"},
	{Name: "Figurines", Label: "SC: Sculpture & Figurines"},
	{Name: "Bookends", Label: "SC: Library & Study"},
	{Name: "Books", Label: "SC: Library & Study"},
	{Name: "Militaria", Label: "SC: Militaria"},
	{Name: "Clocks", Label: "SC: Clocks & Instruments"},
	{Name: "Barometers", Label: "SC: Clocks & Instruments"},
	{Name: "Knives", Label: "SC: Blades & Arms"},
	{Name: "Swords", Label: "SC: Blades & Arms"},
	{Name: "Bells", Label: "SC: Decorative Objects"},
	{Name: "Paintings", Label: "SC: Fine Art"},
	{Name: "Art Prints", Label: "SC: Fine Art"},
	{Name: "Jewelry", Label: "SC: Jewelry & Adornment"},
}

// CollectionConfig supplies the classifier's vocabulary and mapping table.
type CollectionConfig struct {
	Mappings []CollectionMapping
	// Identity names the external classifier (model/vocabulary version).
	// It feeds the fingerprint so swapping classifiers re-opens re-classification.
	Identity string
}

// CollectionClassifier assigns at most one collection label per product.
type CollectionClassifier struct {
	mappings []CollectionMapping
	allowed  []string
	identity string
	external SemanticClassifier
}

// NewCollectionClassifier creates a classifier. external may be nil, in which
// case only the sticky/fingerprint/mapping tiers run.
func NewCollectionClassifier(cfg CollectionConfig, external SemanticClassifier) *CollectionClassifier {
	mappings := cfg.Mappings
	if mappings == nil {
		mappings = DefaultCollectionMappings
	}

	seen := make(map[string]bool)
	var allowed []string
	for _, m := range mappings {
		if !seen[m.Label] {
			seen[m.Label] = true
			allowed = append(allowed, m.Label)
		}
	}
	sort.Strings(allowed)

	return &CollectionClassifier{
		mappings: mappings,
		allowed:  allowed,
		identity: cfg.Identity,
		external: external,
	}
}

// Assign decides the collection label for a product. prev is the stored record
// from the previous run (nil on first sight). The returned fingerprint must be
// persisted with the label so the reuse tier stays reproducible.
//
// Tiers, in order: sticky existing tag, unchanged fingerprint, deterministic
// category mapping, external classifier. Classifier errors and malformed
// answers resolve to no label, never to a failure.
func (c *CollectionClassifier) Assign(ctx context.Context, prev *model.CanonicalProduct, p *model.CanonicalProduct) (label, fingerprint string) {
	fingerprint = c.Fingerprint(p)

	// Tier 1: a label already carried in the tag set is never overridden.
	if prev != nil {
		for _, t := range prev.Tags {
			if strings.HasPrefix(t, CollectionPrefix) {
				return t, fingerprint
			}
		}

		// Tier 2: unchanged inputs reuse the previous answer, avoiding an
		// external call on every run.
		if prev.CollectionKey != "" && prev.CollectionFingerprint == fingerprint {
			return prev.CollectionKey, fingerprint
		}
	}

	// Tier 3: deterministic category mapping.
	if label := c.mapCategory(p.Category); label != "" {
		return label, fingerprint
	}

	// Tier 4: external classifier, if configured.
	if c.external == nil {
		return "", fingerprint
	}

	answer, err := c.external.Classify(ctx, c.signals(p), c.allowed)
	if err != nil {
		log.Printf("[Collection] classifier error for %s: %v", p.SKU, err)
		return "", fingerprint
	}

	answer = strings.TrimSpace(answer)
	if answer == "" || strings.EqualFold(answer, NoMatch) {
		return "", fingerprint
	}
	for _, a := range c.allowed {
		if answer == a {
			return answer, fingerprint
		}
	}

	log.Printf("[Collection] discarding unrecognized classifier answer %q for %s", answer, p.SKU)
	return "", fingerprint
}

func (c *CollectionClassifier) mapCategory(category string) string {
	lc := strings.ToLower(category)
	for _, m := range c.mappings {
		if strings.EqualFold(m.Name, category) {
			return m.Label
		}
	}
	for _, m := range c.mappings {
		if strings.Contains(lc, strings.ToLower(m.Name)) {
			return m.Label
		}
	}
	return ""
}

func (c *CollectionClassifier) signals(p *model.CanonicalProduct) ClassifierSignals {
	return ClassifierSignals{
		Title:         truncate(p.Title, fingerprintTitleLimit),
		Category:      p.Category,
		Tags:          classifierTags(p.Tags),
		AttributeKeys: sortedAttributeKeys(p.RawAttributes),
		System:        systemNamespace(p.Metadata),
	}
}

// Fingerprint hashes the subset of inputs the external classifier sees, plus
// the classifier identity. A product whose fingerprint is unchanged since the
// last run keeps its previous label without a new external call.
func (c *CollectionClassifier) Fingerprint(p *model.CanonicalProduct) string {
	h := sha256.New()
	write := func(parts ...string) {
		for _, s := range parts {
			h.Write([]byte(s))
			h.Write([]byte{0})
		}
	}

	write("v1", c.identity)
	write(truncate(p.Title, fingerprintTitleLimit), p.Category)
	write(classifierTags(p.Tags)...)
	write(sortedAttributeKeys(p.RawAttributes)...)

	system := systemNamespace(p.Metadata)
	keys := make([]string, 0, len(system))
	for k := range system {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		write(k, system[k])
	}

	return hex.EncodeToString(h.Sum(nil))
}

// classifierTags filters the tag set down to the taxonomy, material and domain
// dimensions the classifier cares about. Volatile tags (recency, one-off
// features) stay out so they cannot churn the fingerprint.
func classifierTags(tags []string) []string {
	var out []string
	for _, t := range tags {
		if strings.HasPrefix(t, "Domain:") ||
			strings.HasPrefix(t, "Category:") ||
			strings.HasPrefix(t, "Material:") {
			out = append(out, t)
		}
	}
	sort.Strings(out)
	return out
}

func sortedAttributeKeys(attrs map[string]string) []string {
	keys := make([]string, 0, len(attrs))
	for k := range attrs {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func systemNamespace(meta model.Attributes) map[string]string {
	out := map[string]string{}
	for k, v := range meta[NamespaceSystem] {
		if s, ok := v.(string); ok {
			out[k] = s
		}
	}
	return out
}

// truncate cuts s to at most limit bytes without splitting a rune.
func truncate(s string, limit int) string {
	if len(s) <= limit {
		return s
	}
	for limit > 0 && !utf8.RuneStart(s[limit]) {
		limit--
	}
	return s[:limit]
}
