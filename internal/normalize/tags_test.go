package normalize

import (
	"reflect"
	"testing"
	"time"

	"catalog-sync-api/internal/model"
)

func TestSynthesize(t *testing.T) {
	s := NewTagSynthesizer(TagConfig{})
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	old := now.Add(-90 * 24 * time.Hour)

	tax := model.Taxonomy{
		Root:      "Collectibles",
		Leaf:      "Wristwatches",
		Ancestors: []string{"Collectibles", "Watches"},
	}

	specifics := map[string][]string{
		"Brand":      {"Rado"},
		"Dial Color": {"Black"},
		"Material":   {"No"},      // ignored value
		"Junk Key":   {"ignored"}, // ungrouped key
	}

	got := s.Synthesize(specifics, tax, old, now)
	want := []string{
		"Brand:Rado",
		"Category:Collectibles",
		"Category:Watches",
		"Color:Black",
		"Domain:Collectibles",
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Synthesize = %v, want %v", got, want)
	}
}

func TestSynthesizeRecentlyAdded(t *testing.T) {
	s := NewTagSynthesizer(TagConfig{RecentWindow: 7 * 24 * time.Hour})
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	inside := s.Synthesize(nil, model.Taxonomy{}, now.Add(-24*time.Hour), now)
	if !reflect.DeepEqual(inside, []string{RecentlyAddedTag}) {
		t.Errorf("inside window: got %v", inside)
	}

	outside := s.Synthesize(nil, model.Taxonomy{}, now.Add(-8*24*time.Hour), now)
	if len(outside) != 0 {
		t.Errorf("outside window: got %v", outside)
	}

	zero := s.Synthesize(nil, model.Taxonomy{}, time.Time{}, now)
	if len(zero) != 0 {
		t.Errorf("zero first-seen: got %v", zero)
	}
}

func TestSynthesizeDeterministic(t *testing.T) {
	s := NewTagSynthesizer(TagConfig{})
	now := time.Now().UTC()
	tax := model.Taxonomy{Root: "Antiques", Ancestors: []string{"Antiques", "Metalware"}}
	specifics := map[string][]string{
		"Brand":    {"Bradley & Hubbard"},
		"Material": {"Cast Iron", "Bronze"},
		"Features": {"Signed"},
	}

	first := s.Synthesize(specifics, tax, now, now)
	for i := 0; i < 10; i++ {
		if got := s.Synthesize(specifics, tax, now, now); !reflect.DeepEqual(got, first) {
			t.Fatalf("run %d produced different tags: %v vs %v", i, got, first)
		}
	}
}

func TestEraGroupHistoricalPeriodKeys(t *testing.T) {
	s := NewTagSynthesizer(TagConfig{})

	got := s.Synthesize(map[string][]string{
		"Victorian": {"1880s"},
		"Post-WWII": {"1950s"},
	}, model.Taxonomy{}, time.Time{}, time.Now().UTC())
	want := []string{"Era:1880s", "Era:1950s"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Synthesize = %v, want %v", got, want)
	}
}

func TestFirstGroupClaimsKey(t *testing.T) {
	s := NewTagSynthesizer(TagConfig{})

	// "Room" appears in both the Style and Room groups; Style is declared
	// first and must win.
	got := s.Synthesize(map[string][]string{"Room": {"Library"}}, model.Taxonomy{}, time.Time{}, time.Now())
	want := []string{"Style:Library"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Synthesize = %v, want %v", got, want)
	}
}
