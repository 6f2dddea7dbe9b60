package normalize

import (
	"strings"

	"catalog-sync-api/internal/model"
)

// Delimiters seen in marketplace category paths. Everything is normalized to
// one separator before splitting.
var pathDelimiters = []string{">", "/", "|", ":"}

// DefaultDenylist holds leaf names too generic to serve as a category.
var DefaultDenylist = []string{"Other", "Miscellaneous", "Lot", "More", "Other Items"}

// DefaultCategoryIDTable maps marketplace category IDs to canonical names for
// listings whose path never resolves. Extend via TaxonomyConfig.
var DefaultCategoryIDTable = map[string]string{
	"37908": "Sculptures & Figurines",
	"28025": "Bookends",
}

// FallbackCategory is the category of last resort.
const FallbackCategory = "Miscellaneous"

// TaxonomyConfig supplies the lookup tables for category resolution. Explicit
// construction keeps tests free to supply alternate tables.
type TaxonomyConfig struct {
	Denylist        []string
	CategoryIDTable map[string]string
}

// Resolver parses raw category paths and chooses canonical categories.
type Resolver struct {
	denylist map[string]bool
	idTable  map[string]string
}

// NewResolver creates a resolver. Nil config fields fall back to the defaults.
func NewResolver(cfg TaxonomyConfig) *Resolver {
	denylist := cfg.Denylist
	if denylist == nil {
		denylist = DefaultDenylist
	}
	idTable := cfg.CategoryIDTable
	if idTable == nil {
		idTable = DefaultCategoryIDTable
	}

	deny := make(map[string]bool, len(denylist))
	for _, d := range denylist {
		deny[strings.ToLower(d)] = true
	}

	return &Resolver{denylist: deny, idTable: idTable}
}

// Resolve splits a raw category path into (full path, root, ancestors, leaf).
// An empty or unsplittable path yields a zero Taxonomy.
func (r *Resolver) Resolve(path string) model.Taxonomy {
	normalized := path
	for _, d := range pathDelimiters[1:] {
		normalized = strings.ReplaceAll(normalized, d, pathDelimiters[0])
	}

	var segments []string
	for _, seg := range strings.Split(normalized, pathDelimiters[0]) {
		seg = strings.TrimSpace(seg)
		if seg != "" {
			segments = append(segments, seg)
		}
	}

	if len(segments) == 0 {
		return model.Taxonomy{}
	}

	// Single-segment paths have no ancestors; keep the slice nil so the
	// empty case is canonical in json/bson output.
	var ancestors []string
	if len(segments) > 1 {
		ancestors = segments[:len(segments)-1]
	}

	return model.Taxonomy{
		FullPath:  strings.Join(segments, " > "),
		Root:      segments[0],
		Leaf:      segments[len(segments)-1],
		Ancestors: ancestors,
	}
}

// Category chooses the canonical category for a taxonomy. Specificity is
// preferred, but some category always comes out:
//  1. the leaf, unless it is denylisted and an ancestor exists
//  2. the last ancestor, unless it is also denylisted
//  3. the category-id lookup table
//  4. the literal fallback
func (r *Resolver) Category(tax model.Taxonomy, categoryID string) string {
	if tax.Leaf != "" {
		if !r.denied(tax.Leaf) || len(tax.Ancestors) == 0 {
			return tax.Leaf
		}
		last := tax.Ancestors[len(tax.Ancestors)-1]
		if !r.denied(last) {
			return last
		}
	}

	if name, ok := r.idTable[categoryID]; ok {
		return name
	}

	return FallbackCategory
}

func (r *Resolver) denied(segment string) bool {
	return r.denylist[strings.ToLower(segment)]
}
