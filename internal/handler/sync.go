package handler

import (
	"net/http"
	"strconv"

	"catalog-sync-api/internal/service"
	"catalog-sync-api/pkg/response"
)

// SyncHandler exposes the pipeline run triggers.
type SyncHandler struct {
	syncService *service.SyncService
}

// NewSyncHandler creates a sync handler.
func NewSyncHandler(syncService *service.SyncService) *SyncHandler {
	return &SyncHandler{syncService: syncService}
}

// RunRaw handles POST /api/v1/sync/raw
func (h *SyncHandler) RunRaw(w http.ResponseWriter, r *http.Request) {
	summary, err := h.syncService.IngestRaw(r.Context())
	if err != nil {
		response.Error(w, err)
		return
	}
	response.OK(w, summary)
}

// RunNormalize handles POST /api/v1/sync/normalize
func (h *SyncHandler) RunNormalize(w http.ResponseWriter, r *http.Request) {
	summary, err := h.syncService.NormalizeAll(r.Context())
	if err != nil {
		response.Error(w, err)
		return
	}
	response.OK(w, summary)
}

// RunReconcile handles POST /api/v1/sync/reconcile
func (h *SyncHandler) RunReconcile(w http.ResponseWriter, r *http.Request) {
	summary, err := h.syncService.Reconcile(r.Context())
	if err != nil {
		response.Error(w, err)
		return
	}
	response.OK(w, summary)
}

// RunFull handles POST /api/v1/sync/full
func (h *SyncHandler) RunFull(w http.ResponseWriter, r *http.Request) {
	summary, err := h.syncService.RunFull(r.Context())
	if err != nil {
		response.Error(w, err)
		return
	}
	response.OK(w, summary)
}

// GetLog handles GET /api/v1/sync/log
func (h *SyncHandler) GetLog(w http.ResponseWriter, r *http.Request) {
	limit := 50
	if v := r.URL.Query().Get("limit"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 && n <= 500 {
			limit = n
		}
	}

	entries, err := h.syncService.RecentLog(r.Context(), limit)
	if err != nil {
		response.Error(w, err)
		return
	}
	response.OK(w, entries)
}
