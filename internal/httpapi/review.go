package httpapi

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-faster/errors"

	"github.com/raihanetx/submonth-backend/internal/domain/catalog"
	"github.com/raihanetx/submonth-backend/internal/domain/review"
)

// AddReview accepts a public review submission for a product.
func (h *Handler) AddReview(w http.ResponseWriter, r *http.Request) {
	productID, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, "product id must be an integer")
		return
	}

	var req AddReviewRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if _, err := h.products.GetByID(r.Context(), productID); err != nil {
		if errors.Is(err, catalog.ErrNotFound) {
			writeError(w, http.StatusNotFound, "product not found")
			return
		}
		writeError(w, http.StatusInternalServerError, "failed to get product")
		return
	}

	rv := review.Review{
		ProductID: productID,
		Name:      req.Name,
		Rating:    req.Rating,
		Comment:   req.Comment,
	}
	if err := rv.Validate(); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	if err := h.reviews.Create(r.Context(), &rv); err != nil {
		writeError(w, http.StatusInternalServerError, "failed to create review")
		return
	}

	writeJSON(w, http.StatusCreated, toReviewResponse(&rv))
}

// ListReviews returns all reviews for a product, newest first.
func (h *Handler) ListReviews(w http.ResponseWriter, r *http.Request) {
	productID, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, "product id must be an integer")
		return
	}

	reviews, err := h.reviews.ListByProduct(r.Context(), productID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to list reviews")
		return
	}

	resp := make([]ReviewResponse, len(reviews))
	for i := range reviews {
		resp[i] = toReviewResponse(&reviews[i])
	}
	writeJSON(w, http.StatusOK, resp)
}

// DeleteReview removes a review. Moderation is deletion; there is no
// approve or reject state to manage.
func (h *Handler) DeleteReview(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "reviewID"), 10, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, "review id must be an integer")
		return
	}

	if err := h.reviews.Delete(r.Context(), id); err != nil {
		if errors.Is(err, review.ErrNotFound) {
			writeError(w, http.StatusNotFound, "review not found")
			return
		}
		writeError(w, http.StatusInternalServerError, "failed to delete review")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func toReviewResponse(rv *review.Review) ReviewResponse {
	return ReviewResponse{
		ID:        rv.ID,
		ProductID: rv.ProductID,
		Name:      rv.Name,
		Rating:    rv.Rating,
		Comment:   rv.Comment,
		CreatedAt: rv.CreatedAt,
	}
}
