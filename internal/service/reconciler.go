package service

import (
	"context"
	"log"

	"catalog-sync-api/internal/client"
	"catalog-sync-api/internal/metrics"
	"catalog-sync-api/internal/model"
	"catalog-sync-api/internal/repository"
)

// Reconciler walks canonical products in stable SKU order and drives the
// downstream store to match: create when unlinked, update when the content
// hash moved, skip otherwise. Per-product failures are counted, never fatal.
type Reconciler struct {
	repo     repository.ProductRepository
	store    client.StoreClient
	pageSize int
	// maxWrites caps non-skip operations per invocation, counted across
	// pages. Zero means unlimited.
	maxWrites int
}

// NewReconciler creates a reconciler.
func NewReconciler(repo repository.ProductRepository, store client.StoreClient, pageSize, maxWrites int) *Reconciler {
	if pageSize <= 0 {
		pageSize = 100
	}
	return &Reconciler{
		repo:      repo,
		store:     store,
		pageSize:  pageSize,
		maxWrites: maxWrites,
	}
}

// Reconcile runs one full pass. It processes records sequentially within a
// page and pages sequentially, preserving per-SKU ordering: a SKU's create is
// persisted before any later update can see it. The run can be cancelled
// between pages; applied writes stay applied and the next run resumes via
// hash comparison.
func (r *Reconciler) Reconcile(ctx context.Context) (model.SyncSummary, error) {
	var summary model.SyncSummary
	writes := 0
	after := ""

	for {
		if err := ctx.Err(); err != nil {
			log.Printf("[Reconciler] Run aborted between pages: %v", err)
			return summary, err
		}

		page, err := r.repo.ListProducts(ctx, after, r.pageSize)
		if err != nil {
			return summary, err
		}
		if len(page) == 0 {
			break
		}

		for i := range page {
			p := &page[i]

			if !p.Linked() {
				if r.maxWrites > 0 && writes >= r.maxWrites {
					continue
				}
				writes++
				if r.create(ctx, p) {
					summary.Created++
				} else {
					summary.Failed++
				}
				continue
			}

			if p.ContentHash == p.LastSyncedHash {
				summary.Skipped++
				continue
			}

			if r.maxWrites > 0 && writes >= r.maxWrites {
				continue
			}
			writes++
			if r.update(ctx, p) {
				summary.Updated++
			} else {
				summary.Failed++
			}
		}

		after = page[len(page)-1].SKU
	}

	metrics.RecordReconcile(summary.Created, summary.Updated, summary.Skipped, summary.Failed)
	log.Printf("[Reconciler] Done: %d created, %d updated, %d skipped, %d failed",
		summary.Created, summary.Updated, summary.Skipped, summary.Failed)
	return summary, nil
}

// create sends the full record downstream and persists the returned ids plus
// the hash that was synced. Returns false on failure; the page continues.
func (r *Reconciler) create(ctx context.Context, p *model.CanonicalProduct) bool {
	productID, variantID, err := r.store.CreateProduct(ctx, p)
	if err != nil {
		log.Printf("[Reconciler] Create failed for %s: %v", p.SKU, err)
		return false
	}

	if err := r.repo.SetDownstreamLink(ctx, p.SKU, productID, variantID, p.ContentHash); err != nil {
		// The downstream record exists but the link is lost; the next run
		// would create a duplicate. Surface loudly.
		log.Printf("[Reconciler] CRITICAL: created %s downstream (%d) but failed to store link: %v",
			p.SKU, productID, err)
		return false
	}

	log.Printf("[Reconciler] Created %s -> %d", p.SKU, productID)
	return true
}

// update sends only the mutable fields, then persists the new synced hash.
// Returns false on failure; nothing already applied in the page is rolled back.
func (r *Reconciler) update(ctx context.Context, p *model.CanonicalProduct) bool {
	if err := r.store.UpdateProduct(ctx, p.ShopifyID, p.ShopifyVariantID, p); err != nil {
		log.Printf("[Reconciler] Update failed for %s: %v", p.SKU, err)
		return false
	}

	if err := r.repo.SetSyncedHash(ctx, p.SKU, p.ContentHash); err != nil {
		// Update applied but hash not recorded; the next run re-sends the
		// same fields, which is harmless.
		log.Printf("[Reconciler] Updated %s but failed to store hash: %v", p.SKU, err)
		return false
	}

	log.Printf("[Reconciler] Updated %s (%d)", p.SKU, p.ShopifyID)
	return true
}
