package normalize

import (
	"context"
	"sort"
	"strings"
	"time"

	"catalog-sync-api/internal/model"
)

// Normalizer composes the taxonomy resolver, attribute classifier, tag
// synthesizer, collection classifier and change detector into one canonical
// record per listing.
type Normalizer struct {
	resolver    *Resolver
	attributes  *AttributeClassifier
	tags        *TagSynthesizer
	collections *CollectionClassifier

	// Now is swappable for tests.
	Now func() time.Time
}

// NewNormalizer wires up a normalizer from its components.
func NewNormalizer(resolver *Resolver, attributes *AttributeClassifier, tags *TagSynthesizer, collections *CollectionClassifier) *Normalizer {
	return &Normalizer{
		resolver:    resolver,
		attributes:  attributes,
		tags:        tags,
		collections: collections,
		Now:         time.Now,
	}
}

// NewDefaultNormalizer builds a normalizer on the default tables.
func NewDefaultNormalizer(external SemanticClassifier, classifierIdentity string) *Normalizer {
	return NewNormalizer(
		NewResolver(TaxonomyConfig{}),
		NewAttributeClassifier(ClassifierTables{}),
		NewTagSynthesizer(TagConfig{}),
		NewCollectionClassifier(CollectionConfig{Identity: classifierIdentity}, external),
	)
}

// Normalize converts a raw listing into a canonical product. prev is the
// stored record from an earlier run (nil on first sight); it supplies the
// first-seen timestamp, the sticky collection label and the downstream linkage,
// all of which survive re-normalization.
func (n *Normalizer) Normalize(ctx context.Context, raw *model.RawListing, prev *model.CanonicalProduct) *model.CanonicalProduct {
	now := n.Now().UTC()

	firstSeen := now
	if prev != nil && !prev.FirstSeenAt.IsZero() {
		firstSeen = prev.FirstSeenAt
	}

	tax := n.resolver.Resolve(raw.CategoryPath)
	tax.ID = raw.CategoryID
	category := n.resolver.Category(tax, raw.CategoryID)

	p := &model.CanonicalProduct{
		SKU:              raw.SKU,
		Title:            strings.TrimSpace(raw.Title),
		Description:      strings.TrimSpace(raw.Description),
		Images:           raw.Images,
		Price:            raw.Price,
		Quantity:         maxInt(raw.Quantity, 0),
		Category:         category,
		RawAttributes:    flattenSpecifics(raw.Specifics),
		Metadata:         n.attributes.Classify(category, raw.Specifics),
		Taxonomy:         tax,
		FirstSeenAt:      firstSeen,
		LastNormalizedAt: now,
	}

	p.Tags = n.tags.Synthesize(raw.Specifics, tax, firstSeen, now)

	label, fingerprint := n.collections.Assign(ctx, prev, p)
	p.CollectionKey = label
	p.CollectionFingerprint = fingerprint
	if label != "" {
		p.Tags = appendTag(p.Tags, label)
	}

	if prev != nil {
		p.ShopifyID = prev.ShopifyID
		p.ShopifyVariantID = prev.ShopifyVariantID
		p.LastSyncedHash = prev.LastSyncedHash
	}

	p.ContentHash = ContentHash(p)
	return p
}

// flattenSpecifics keeps the original key/value map for audit, joining
// multi-values the way the marketplace displays them.
func flattenSpecifics(specifics map[string][]string) map[string]string {
	out := make(map[string]string, len(specifics))
	for k, values := range specifics {
		out[strings.TrimSpace(k)] = strings.Join(values, "; ")
	}
	return out
}

func appendTag(tags []string, tag string) []string {
	for _, t := range tags {
		if t == tag {
			return tags
		}
	}
	tags = append(tags, tag)
	sort.Strings(tags)
	return tags
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}
