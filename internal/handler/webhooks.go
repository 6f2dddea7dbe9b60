package handler

import (
	"io"
	"net/http"

	"catalog-sync-api/internal/service"
	"catalog-sync-api/pkg/apierror"
	"catalog-sync-api/pkg/response"
)

// WebhookHandler receives marketplace event callbacks.
type WebhookHandler struct {
	reactor *service.OrderReactor
}

// NewWebhookHandler creates a webhook handler.
func NewWebhookHandler(reactor *service.OrderReactor) *WebhookHandler {
	return &WebhookHandler{reactor: reactor}
}

// EbayOrder handles POST /api/v1/webhooks/ebay/order
// Query param make_unavailable=false keeps the product published after its
// inventory is zeroed.
func (h *WebhookHandler) EbayOrder(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(io.LimitReader(r.Body, 1<<20))
	if err != nil {
		response.Error(w, apierror.BadRequest("failed to read request body"))
		return
	}
	defer r.Body.Close()

	opts := service.OrderOptions{MakeUnavailable: true}
	if r.URL.Query().Get("make_unavailable") == "false" {
		opts.MakeUnavailable = false
	}

	result, err := h.reactor.HandleOrder(r.Context(), body, opts)
	if err != nil {
		response.Error(w, apierror.BadRequest(err.Error()))
		return
	}
	response.OK(w, result)
}
