package handler

import (
	"net/http"
	"strconv"

	"catalog-sync-api/internal/repository"
	"catalog-sync-api/pkg/apierror"
	"catalog-sync-api/pkg/response"

	"github.com/go-chi/chi/v5"
)

// ProductHandler serves canonical products and the admin operations on them.
type ProductHandler struct {
	repo repository.ProductRepository
}

// NewProductHandler creates a product handler.
func NewProductHandler(repo repository.ProductRepository) *ProductHandler {
	return &ProductHandler{repo: repo}
}

// List handles GET /api/v1/products?after=&limit=
func (h *ProductHandler) List(w http.ResponseWriter, r *http.Request) {
	after := r.URL.Query().Get("after")
	limit := 50
	if v := r.URL.Query().Get("limit"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 && n <= 500 {
			limit = n
		}
	}

	products, err := h.repo.ListProducts(r.Context(), after, limit)
	if err != nil {
		response.Error(w, err)
		return
	}
	response.OK(w, products)
}

// Get handles GET /api/v1/products/{sku}
func (h *ProductHandler) Get(w http.ResponseWriter, r *http.Request) {
	sku := chi.URLParam(r, "sku")
	if sku == "" {
		response.Error(w, apierror.BadRequest("sku is required"))
		return
	}

	p, err := h.repo.GetProduct(r.Context(), sku)
	if err != nil {
		response.Error(w, err)
		return
	}
	if p == nil {
		response.Error(w, apierror.NotFound("product not found"))
		return
	}
	response.OK(w, p)
}

// AttributeKeys handles GET /api/v1/products/attributes - a census of raw
// attribute keys, used to curate the routing tables.
func (h *ProductHandler) AttributeKeys(w http.ResponseWriter, r *http.Request) {
	counts, err := h.repo.AttributeKeys(r.Context())
	if err != nil {
		response.Error(w, err)
		return
	}
	response.OK(w, counts)
}

// ResetLinks handles POST /api/v1/products/reset-links?sku=
// Without a sku it clears the downstream linkage of every product, forcing
// the next reconciliation to re-create everything.
func (h *ProductHandler) ResetLinks(w http.ResponseWriter, r *http.Request) {
	sku := r.URL.Query().Get("sku")

	reset, err := h.repo.ResetLinks(r.Context(), sku)
	if err != nil {
		response.Error(w, err)
		return
	}
	response.OK(w, map[string]interface{}{"reset": reset})
}
