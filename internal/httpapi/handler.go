// Package httpapi exposes the storefront API over HTTP.
package httpapi

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/raihanetx/submonth-backend/internal/domain/catalog"
	"github.com/raihanetx/submonth-backend/internal/domain/order"
	"github.com/raihanetx/submonth-backend/internal/domain/review"
	"github.com/raihanetx/submonth-backend/internal/domain/settings"
)

// HandlerConfig holds non-dependency configuration for the Handler.
type HandlerConfig struct {
	// ImageBaseURL is prepended to relative image paths in product responses.
	// When empty, image paths are returned as stored in the database.
	ImageBaseURL string
}

// Handler serves the public and admin API, delegating business logic to
// the order service and the repositories.
type Handler struct {
	products     catalog.Repository
	orderService *order.Service
	reviews      review.Repository
	settings     settings.Repository
	imageBaseURL string
}

// NewHandler constructs a Handler with the required domain dependencies.
func NewHandler(
	cfg HandlerConfig,
	products catalog.Repository,
	orderService *order.Service,
	reviews review.Repository,
	settingsRepo settings.Repository,
) *Handler {
	return &Handler{
		products:     products,
		orderService: orderService,
		reviews:      reviews,
		settings:     settingsRepo,
		imageBaseURL: cfg.ImageBaseURL,
	}
}

// NewRouter mounts all API routes. Admin routes sit behind the API key
// check; everything else is public.
func NewRouter(h *Handler, requireAPIKey func(http.Handler) http.Handler) http.Handler {
	r := chi.NewRouter()

	r.Route("/api", func(r chi.Router) {
		r.Get("/products", h.ListProducts)
		r.Get("/products/{id}", h.GetProduct)
		r.Get("/products/{id}/reviews", h.ListReviews)
		r.Post("/products/{id}/reviews", h.AddReview)

		r.Post("/orders", h.PlaceOrder)
		r.Get("/orders", h.GetOrders)

		r.Group(func(r chi.Router) {
			r.Use(requireAPIKey)
			r.Patch("/orders/{orderNumber}/status", h.UpdateOrderStatus)
			r.Post("/orders/{orderNumber}/access-email", h.SendAccessEmail)
			r.Delete("/reviews/{reviewID}", h.DeleteReview)
			r.Get("/admin/settings", h.GetSettings)
			r.Put("/admin/settings", h.UpdateSettings)
		})
	})

	return r
}
