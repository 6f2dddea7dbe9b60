package normalize

import (
	"reflect"
	"testing"

	"catalog-sync-api/internal/model"
)

func TestResolve(t *testing.T) {
	r := NewResolver(TaxonomyConfig{})

	tests := []struct {
		name string
		path string
		want model.Taxonomy
	}{
		{
			name: "standard path",
			path: "Collectibles > Militaria > WW II (1939-45)",
			want: model.Taxonomy{
				FullPath:  "Collectibles > Militaria > WW II (1939-45)",
				Root:      "Collectibles",
				Leaf:      "WW II (1939-45)",
				Ancestors: []string{"Collectibles", "Militaria"},
			},
		},
		{
			name: "mixed delimiters",
			path: "Antiques/Decorative Arts|Lamps",
			want: model.Taxonomy{
				FullPath:  "Antiques > Decorative Arts > Lamps",
				Root:      "Antiques",
				Leaf:      "Lamps",
				Ancestors: []string{"Antiques", "Decorative Arts"},
			},
		},
		{
			name: "single segment",
			path: "Widgets",
			want: model.Taxonomy{
				FullPath: "Widgets",
				Root:     "Widgets",
				Leaf:     "Widgets",
			},
		},
		{
			name: "empty path",
			path: "",
			want: model.Taxonomy{},
		},
		{
			name: "whitespace only segments",
			path: " > > ",
			want: model.Taxonomy{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := r.Resolve(tt.path)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("Resolve(%q) = %+v, want %+v", tt.path, got, tt.want)
			}
		})
	}
}

func TestCategory(t *testing.T) {
	r := NewResolver(TaxonomyConfig{})

	tests := []struct {
		name       string
		path       string
		categoryID string
		want       string
	}{
		{name: "specific leaf wins", path: "Collectibles > Militaria > Medals", want: "Medals"},
		{name: "denylisted leaf backs up to ancestor", path: "Collectibles > Militaria > Other", want: "Militaria"},
		{name: "single denylisted segment is kept", path: "Other", want: "Other"},
		{name: "denylisted leaf and ancestor fall to fallback", path: "Other > Lot", want: FallbackCategory},
		{name: "id table resolves empty path", path: "", categoryID: "37908", want: "Sculptures & Figurines"},
		{name: "unknown id falls back", path: "", categoryID: "99999", want: FallbackCategory},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tax := r.Resolve(tt.path)
			got := r.Category(tax, tt.categoryID)
			if got != tt.want {
				t.Errorf("Category(%q, %q) = %q, want %q", tt.path, tt.categoryID, got, tt.want)
			}
		})
	}
}
