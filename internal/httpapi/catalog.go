package httpapi

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-faster/errors"

	"github.com/raihanetx/submonth-backend/internal/domain/catalog"
)

// ListProducts returns the whole catalog with pricing variants.
func (h *Handler) ListProducts(w http.ResponseWriter, r *http.Request) {
	products, err := h.products.List(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to list products")
		return
	}

	resp := make([]ProductResponse, len(products))
	for i := range products {
		resp[i] = h.toProductResponse(&products[i])
	}
	writeJSON(w, http.StatusOK, resp)
}

// GetProduct returns a single product by ID.
func (h *Handler) GetProduct(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, "product id must be an integer")
		return
	}

	p, err := h.products.GetByID(r.Context(), id)
	if err != nil {
		if errors.Is(err, catalog.ErrNotFound) {
			writeError(w, http.StatusNotFound, "product not found")
			return
		}
		writeError(w, http.StatusInternalServerError, "failed to get product")
		return
	}

	writeJSON(w, http.StatusOK, h.toProductResponse(p))
}

func (h *Handler) toProductResponse(p *catalog.Product) ProductResponse {
	pricing := make([]ItemPricingDTO, len(p.Variants))
	for i, v := range p.Variants {
		pricing[i] = ItemPricingDTO{Duration: v.Duration, Price: v.Price}
	}
	return ProductResponse{
		ID:              p.ID,
		Category:        p.Category,
		Name:            p.Name,
		Slug:            p.Slug,
		Description:     p.Description,
		LongDescription: p.LongDescription,
		Image:           h.imageURL(p.Image),
		StockOut:        p.StockOut,
		Featured:        p.Featured,
		Pricing:         pricing,
	}
}

// imageURL prepends the configured base URL to relative image paths.
func (h *Handler) imageURL(path string) string {
	if path == "" || h.imageBaseURL == "" || strings.HasPrefix(path, "http") {
		return path
	}
	return strings.TrimSuffix(h.imageBaseURL, "/") + "/" + strings.TrimPrefix(path, "/")
}
