package handler

import (
	"net/http"
	"runtime"
	"time"

	"catalog-sync-api/internal/repository"
	"catalog-sync-api/pkg/response"
)

// StartTime tracks when the server started for uptime calculation
var StartTime = time.Now()

// Handler contains the shared health/status HTTP handlers.
type Handler struct {
	version string
	repo    repository.ProductRepository
}

// New creates a health handler. repo may be nil (store check reports unknown).
func New(version string, repo repository.ProductRepository) *Handler {
	return &Handler{version: version, repo: repo}
}

// HealthResponse represents the health check response.
type HealthResponse struct {
	Status    string    `json:"status"`
	Timestamp time.Time `json:"timestamp"`
	Version   string    `json:"version"`
}

// Health handles GET /api/v1/health
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	resp := HealthResponse{
		Status:    "healthy",
		Timestamp: time.Now().UTC(),
		Version:   h.version,
	}
	response.OK(w, resp)
}

// StatusResponse represents the unified status response for monitoring.
type StatusResponse struct {
	Service       string                 `json:"service"`
	Status        string                 `json:"status"`
	Timestamp     string                 `json:"timestamp"`
	UptimeSeconds int64                  `json:"uptime_seconds"`
	MemoryMB      float64                `json:"memory_mb"`
	Store         map[string]interface{} `json:"store"`
}

// Status handles GET /api/status - unified health check for monitoring
func (h *Handler) Status(w http.ResponseWriter, r *http.Request) {
	var memStats runtime.MemStats
	runtime.ReadMemStats(&memStats)
	memoryMB := float64(memStats.Alloc) / 1024 / 1024

	store := map[string]interface{}{"status": "unknown"}
	if h.repo != nil {
		if stats, err := h.repo.Stats(r.Context()); err == nil {
			store = stats
		} else {
			store = map[string]interface{}{"status": "error", "error": err.Error()}
		}
	}

	resp := StatusResponse{
		Service:       "catalog-sync-api",
		Status:        "ok",
		Timestamp:     time.Now().UTC().Format(time.RFC3339),
		UptimeSeconds: int64(time.Since(StartTime).Seconds()),
		MemoryMB:      float64(int(memoryMB*100)) / 100,
		Store:         store,
	}

	w.Header().Set("Cache-Control", "no-store, no-cache, must-revalidate")
	response.OK(w, resp)
}
