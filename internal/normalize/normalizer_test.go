package normalize

import (
	"context"
	"reflect"
	"testing"
	"time"

	"catalog-sync-api/internal/model"
)

func rawFixture() *model.RawListing {
	return &model.RawListing{
		SKU:          "SKU-100",
		Title:        "  Bronze Eagle Bookends  ",
		Description:  "A fine pair.",
		Images:       []string{"https://img/1.jpg"},
		Price:        "149.99",
		Quantity:     1,
		CategoryID:   "28025",
		CategoryPath: "Antiques > Bookends",
		Specifics: map[string][]string{
			"Material": {"Bronze"},
		},
	}
}

func TestNormalizeFirstSight(t *testing.T) {
	n := NewDefaultNormalizer(nil, "")
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	n.Now = func() time.Time { return now }

	p := n.Normalize(context.Background(), rawFixture(), nil)

	if p.Title != "Bronze Eagle Bookends" {
		t.Errorf("title not trimmed: %q", p.Title)
	}
	if p.Category != "Bookends" {
		t.Errorf("category = %q, want Bookends", p.Category)
	}
	if !p.FirstSeenAt.Equal(now) {
		t.Errorf("first seen = %v, want %v", p.FirstSeenAt, now)
	}
	if !p.LastNormalizedAt.Equal(now) {
		t.Errorf("last normalized = %v, want %v", p.LastNormalizedAt, now)
	}
	if p.CollectionKey != "SC: Library & Study" {
		t.Errorf("collection = %q, want SC: Library & Study", p.CollectionKey)
	}
	if p.ContentHash == "" {
		t.Error("content hash missing")
	}

	wantTags := []string{
		"Category:Antiques",
		"Domain:Antiques",
		"Material:Bronze",
		RecentlyAddedTag,
		"SC: Library & Study",
	}
	if !reflect.DeepEqual(p.Tags, wantTags) {
		t.Errorf("tags = %v, want %v", p.Tags, wantTags)
	}
}

func TestNormalizePreservesFirstSeenAndLinkage(t *testing.T) {
	n := NewDefaultNormalizer(nil, "")
	first := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	n.Now = func() time.Time { return first }

	prev := n.Normalize(context.Background(), rawFixture(), nil)
	prev.ShopifyID = 99
	prev.ShopifyVariantID = 77
	prev.LastSyncedHash = prev.ContentHash

	second := first.Add(time.Hour)
	n.Now = func() time.Time { return second }

	p := n.Normalize(context.Background(), rawFixture(), prev)

	if !p.FirstSeenAt.Equal(first) {
		t.Errorf("first seen = %v, want preserved %v", p.FirstSeenAt, first)
	}
	if !p.LastNormalizedAt.Equal(second) {
		t.Errorf("last normalized = %v, want %v", p.LastNormalizedAt, second)
	}
	if p.ShopifyID != 99 || p.ShopifyVariantID != 77 {
		t.Error("downstream linkage must survive re-normalization")
	}
	if p.LastSyncedHash != prev.LastSyncedHash {
		t.Error("last synced hash must survive re-normalization")
	}
	if p.ContentHash != prev.ContentHash {
		t.Error("re-normalizing identical input must not move the content hash")
	}
}

func TestNormalizeClampsNegativeQuantity(t *testing.T) {
	n := NewDefaultNormalizer(nil, "")

	raw := rawFixture()
	raw.Quantity = -3

	p := n.Normalize(context.Background(), raw, nil)
	if p.Quantity != 0 {
		t.Errorf("quantity = %d, want 0", p.Quantity)
	}
}
