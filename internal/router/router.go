package router

import (
	"net/http"

	"catalog-sync-api/internal/handler"
	"catalog-sync-api/internal/middleware"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
)

// Config holds the configuration for creating a router.
type Config struct {
	Handler        *handler.Handler
	SyncHandler    *handler.SyncHandler
	ProductHandler *handler.ProductHandler
	WebhookHandler *handler.WebhookHandler
	MetricsHandler http.Handler
	AuthMiddleware func(http.Handler) http.Handler
}

// New creates and configures the HTTP router.
func New(cfg Config) *chi.Mux {
	r := chi.NewRouter()

	// Global middleware stack (applies to ALL routes)
	r.Use(middleware.Recovery)
	r.Use(middleware.RequestID)
	r.Use(middleware.Logging)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Content-Type", "X-Request-ID", "X-API-Key"},
		ExposedHeaders:   []string{"X-Request-ID"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	// PUBLIC routes (no auth required)
	if cfg.Handler != nil {
		r.Get("/api/status", cfg.Handler.Status)
	}
	if cfg.MetricsHandler != nil {
		r.Handle("/metrics", cfg.MetricsHandler)
	}

	// AUTHENTICATED routes (use Group to apply auth middleware only to these)
	r.Group(func(r chi.Router) {
		if cfg.AuthMiddleware != nil {
			r.Use(cfg.AuthMiddleware)
		}

		r.Route("/api/v1", func(r chi.Router) {
			if cfg.Handler != nil {
				r.Get("/health", cfg.Handler.Health)
			}

			if cfg.SyncHandler != nil {
				r.Route("/sync", func(r chi.Router) {
					r.Post("/raw", cfg.SyncHandler.RunRaw)
					r.Post("/normalize", cfg.SyncHandler.RunNormalize)
					r.Post("/reconcile", cfg.SyncHandler.RunReconcile)
					r.Post("/full", cfg.SyncHandler.RunFull)
					r.Get("/log", cfg.SyncHandler.GetLog)
				})
			}

			if cfg.ProductHandler != nil {
				r.Route("/products", func(r chi.Router) {
					r.Get("/", cfg.ProductHandler.List)
					r.Get("/attributes", cfg.ProductHandler.AttributeKeys)
					r.Post("/reset-links", cfg.ProductHandler.ResetLinks)
					r.Get("/{sku}", cfg.ProductHandler.Get)
				})
			}

			if cfg.WebhookHandler != nil {
				r.Post("/webhooks/ebay/order", cfg.WebhookHandler.EbayOrder)
			}
		})
	})

	return r
}
