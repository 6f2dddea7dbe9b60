package service

import (
	"context"
	"errors"
	"testing"

	"catalog-sync-api/internal/model"
)

func seedProduct(repo *fakeRepo, sku, hash string) {
	repo.products[sku] = &model.CanonicalProduct{
		SKU:         sku,
		Title:       "Item " + sku,
		Price:       "10.00",
		Quantity:    1,
		ContentHash: hash,
	}
}

func TestReconcileCreatesUnlinked(t *testing.T) {
	repo := newFakeRepo()
	store := newFakeStore()
	seedProduct(repo, "A", "h1")
	seedProduct(repo, "B", "h2")

	r := NewReconciler(repo, store, 10, 0)
	summary, err := r.Reconcile(context.Background())
	if err != nil {
		t.Fatalf("Reconcile: %v", err)
	}

	want := model.SyncSummary{Created: 2}
	if summary != want {
		t.Errorf("summary = %+v, want %+v", summary, want)
	}

	for _, sku := range []string{"A", "B"} {
		p := repo.products[sku]
		if p.ShopifyID == 0 || p.ShopifyVariantID == 0 {
			t.Errorf("%s not linked after create: %+v", sku, p)
		}
		if p.LastSyncedHash != p.ContentHash {
			t.Errorf("%s synced hash not recorded", sku)
		}
	}
}

func TestReconcileSecondRunSkipsEverything(t *testing.T) {
	repo := newFakeRepo()
	store := newFakeStore()
	seedProduct(repo, "A", "h1")
	seedProduct(repo, "B", "h2")

	r := NewReconciler(repo, store, 10, 0)
	if _, err := r.Reconcile(context.Background()); err != nil {
		t.Fatalf("first run: %v", err)
	}

	summary, err := r.Reconcile(context.Background())
	if err != nil {
		t.Fatalf("second run: %v", err)
	}

	want := model.SyncSummary{Skipped: 2}
	if summary != want {
		t.Errorf("second run = %+v, want %+v", summary, want)
	}
	if store.createCalls != 2 || store.updateCalls != 0 {
		t.Errorf("store calls: %d creates, %d updates", store.createCalls, store.updateCalls)
	}
}

func TestReconcileUpdatesChangedHash(t *testing.T) {
	repo := newFakeRepo()
	store := newFakeStore()
	seedProduct(repo, "A", "h1")
	seedProduct(repo, "B", "h2")

	r := NewReconciler(repo, store, 10, 0)
	if _, err := r.Reconcile(context.Background()); err != nil {
		t.Fatalf("first run: %v", err)
	}

	// Re-normalization moved A's content.
	repo.products["A"].ContentHash = "h1-changed"

	summary, err := r.Reconcile(context.Background())
	if err != nil {
		t.Fatalf("second run: %v", err)
	}

	want := model.SyncSummary{Updated: 1, Skipped: 1}
	if summary != want {
		t.Errorf("summary = %+v, want %+v", summary, want)
	}
	if repo.products["A"].LastSyncedHash != "h1-changed" {
		t.Error("updated hash not recorded")
	}
}

func TestReconcileCreateFailureDoesNotAbortRun(t *testing.T) {
	repo := newFakeRepo()
	store := newFakeStore()
	store.createErr = errors.New("downstream down")
	seedProduct(repo, "A", "h1")
	seedProduct(repo, "B", "h2")

	r := NewReconciler(repo, store, 10, 0)
	summary, err := r.Reconcile(context.Background())
	if err != nil {
		t.Fatalf("Reconcile: %v", err)
	}

	want := model.SyncSummary{Failed: 2}
	if summary != want {
		t.Errorf("summary = %+v, want %+v", summary, want)
	}
	if repo.products["A"].Linked() {
		t.Error("failed create must leave the product unlinked")
	}
}

func TestReconcileMaxWritesCap(t *testing.T) {
	repo := newFakeRepo()
	store := newFakeStore()
	seedProduct(repo, "A", "h1")
	seedProduct(repo, "B", "h2")
	seedProduct(repo, "C", "h3")

	r := NewReconciler(repo, store, 10, 2)
	summary, err := r.Reconcile(context.Background())
	if err != nil {
		t.Fatalf("Reconcile: %v", err)
	}

	if summary.Created != 2 {
		t.Errorf("created = %d, want 2", summary.Created)
	}
	if store.createCalls != 2 {
		t.Errorf("store create calls = %d, want 2", store.createCalls)
	}

	// The capped record is untouched and picked up next run.
	summary, err = r.Reconcile(context.Background())
	if err != nil {
		t.Fatalf("second run: %v", err)
	}
	if summary.Created != 1 || summary.Skipped != 2 {
		t.Errorf("second run = %+v", summary)
	}
}

func TestReconcilePagination(t *testing.T) {
	repo := newFakeRepo()
	store := newFakeStore()
	for _, sku := range []string{"A", "B", "C", "D", "E"} {
		seedProduct(repo, sku, "h-"+sku)
	}

	r := NewReconciler(repo, store, 2, 0)
	summary, err := r.Reconcile(context.Background())
	if err != nil {
		t.Fatalf("Reconcile: %v", err)
	}
	if summary.Created != 5 {
		t.Errorf("created = %d, want 5 across pages", summary.Created)
	}
}

func TestReconcileCancelledBetweenPages(t *testing.T) {
	repo := newFakeRepo()
	store := newFakeStore()
	seedProduct(repo, "A", "h1")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	r := NewReconciler(repo, store, 10, 0)
	if _, err := r.Reconcile(ctx); err == nil {
		t.Error("cancelled context must surface an error")
	}
	if store.createCalls != 0 {
		t.Error("no writes may happen after cancellation")
	}
}
