package service

import (
	"context"
	"log"
	"time"

	"catalog-sync-api/internal/client"
	"catalog-sync-api/internal/metrics"
	"catalog-sync-api/internal/model"
	"catalog-sync-api/internal/normalize"
	"catalog-sync-api/internal/repository"
	"catalog-sync-api/pkg/apierror"
)

// Sync log entry kinds.
const (
	LogKindIngest    = "ingest"
	LogKindNormalize = "normalize"
	LogKindReconcile = "reconcile"
	LogKindFullRun   = "full_run"
	LogKindOrder     = "ebay_order"
)

// SyncService owns the pipeline runs: raw ingest, normalization and the
// composed full run. Each stage is idempotent, so a partial run is safe to
// repeat.
type SyncService struct {
	listings   client.ListingClient
	repo       repository.ProductRepository
	normalizer *normalize.Normalizer
	reconciler *Reconciler
	syncLog    repository.SyncLogRepository
	pageSize   int
}

// NewSyncService creates the pipeline service. listings and syncLog may be nil
// (ingest disabled / logging skipped).
func NewSyncService(
	listings client.ListingClient,
	repo repository.ProductRepository,
	normalizer *normalize.Normalizer,
	reconciler *Reconciler,
	syncLog repository.SyncLogRepository,
	pageSize int,
) *SyncService {
	if pageSize <= 0 {
		pageSize = 100
	}
	return &SyncService{
		listings:   listings,
		repo:       repo,
		normalizer: normalizer,
		reconciler: reconciler,
		syncLog:    syncLog,
		pageSize:   pageSize,
	}
}

// IngestRaw pulls the current listing set and replaces the stored raw
// documents wholesale, keyed by SKU.
func (s *SyncService) IngestRaw(ctx context.Context) (model.IngestSummary, error) {
	var summary model.IngestSummary

	if s.listings == nil {
		log.Println("[Sync] No listing client configured; skipping ingest")
		return summary, nil
	}

	items, err := s.listings.FetchListings(ctx)
	if err != nil {
		return summary, err
	}

	for i := range items {
		listing := &items[i]
		if listing.SKU == "" {
			summary.Skipped++
			continue
		}
		if err := s.repo.UpsertRaw(ctx, listing); err != nil {
			log.Printf("[Sync] Failed to store raw listing %s: %v", listing.SKU, err)
			summary.Skipped++
			continue
		}
		summary.Upserted++
	}

	s.appendLog(ctx, LogKindIngest, summary)
	log.Printf("[Sync] Ingested %d raw listings (%d skipped)", summary.Upserted, summary.Skipped)
	return summary, nil
}

// NormalizeAll re-normalizes every stored raw listing into its canonical
// record. A store failure is fatal to that item only; the pass continues.
func (s *SyncService) NormalizeAll(ctx context.Context) (model.NormalizeSummary, error) {
	var summary model.NormalizeSummary
	after := ""

	for {
		if err := ctx.Err(); err != nil {
			return summary, err
		}

		page, err := s.repo.ListRaw(ctx, after, s.pageSize)
		if err != nil {
			return summary, err
		}
		if len(page) == 0 {
			break
		}

		for i := range page {
			raw := &page[i]

			prev, err := s.repo.GetProduct(ctx, raw.SKU)
			if err != nil {
				log.Printf("[Sync] Failed to load product %s: %v", raw.SKU, err)
				summary.Failed++
				continue
			}

			p := s.normalizer.Normalize(ctx, raw, prev)

			if err := s.repo.UpsertProduct(ctx, p); err != nil {
				log.Printf("[Sync] Failed to store product %s: %v", raw.SKU, err)
				summary.Failed++
				continue
			}
			summary.Normalized++
		}

		after = page[len(page)-1].SKU
	}

	metrics.RecordNormalize(summary.Normalized, summary.Failed)
	s.appendLog(ctx, LogKindNormalize, summary)
	log.Printf("[Sync] Normalized %d products (%d failed)", summary.Normalized, summary.Failed)
	return summary, nil
}

// Reconcile runs the downstream reconciliation pass and logs the outcome.
func (s *SyncService) Reconcile(ctx context.Context) (model.SyncSummary, error) {
	if s.reconciler == nil {
		return model.SyncSummary{}, apierror.ServiceUnavailable("downstream store client not configured")
	}
	summary, err := s.reconciler.Reconcile(ctx)
	if err == nil {
		s.appendLog(ctx, LogKindReconcile, summary)
	}
	return summary, err
}

// RunFull composes ingest, normalization and reconciliation into one run.
func (s *SyncService) RunFull(ctx context.Context) (model.RunSummary, error) {
	var run model.RunSummary
	var err error

	started := time.Now()
	log.Println("[Sync] Starting full run")

	if run.Ingest, err = s.IngestRaw(ctx); err != nil {
		return run, err
	}
	if run.Normalize, err = s.NormalizeAll(ctx); err != nil {
		return run, err
	}
	if s.reconciler != nil {
		if run.Sync, err = s.reconciler.Reconcile(ctx); err != nil {
			return run, err
		}
	} else {
		log.Println("[Sync] No downstream store client configured; skipping reconciliation")
	}

	s.appendLog(ctx, LogKindFullRun, run)
	log.Printf("[Sync] Full run finished in %v", time.Since(started).Round(time.Millisecond))
	return run, nil
}

// RecentLog returns the most recent run/webhook records.
func (s *SyncService) RecentLog(ctx context.Context, limit int) ([]model.SyncLogEntry, error) {
	if s.syncLog == nil {
		return nil, nil
	}
	return s.syncLog.Recent(ctx, limit)
}

func (s *SyncService) appendLog(ctx context.Context, kind string, detail interface{}) {
	if s.syncLog == nil {
		return
	}
	entry := &model.SyncLogEntry{Kind: kind, Detail: detail, CreatedAt: time.Now().UTC()}
	if err := s.syncLog.Append(ctx, entry); err != nil {
		log.Printf("[Sync] Failed to append sync log (%s): %v", kind, err)
	}
}
