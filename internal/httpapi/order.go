package httpapi

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-faster/errors"

	"github.com/raihanetx/submonth-backend/internal/domain/order"
)

// PlaceOrder decodes the checkout payload, delegates to the order service,
// and returns the persisted order with server-computed totals.
func (h *Handler) PlaceOrder(w http.ResponseWriter, r *http.Request) {
	var req PlaceOrderRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON payload")
		return
	}

	items := make([]order.CartItem, len(req.Items))
	for i, it := range req.Items {
		items[i] = order.CartItem{
			ProductID: it.ProductID,
			Duration:  it.Duration,
			Quantity:  it.Quantity,
		}
	}

	var clientTotals *order.ClientTotals
	if req.Totals != nil {
		clientTotals = &order.ClientTotals{
			Subtotal: req.Totals.Subtotal,
			Discount: req.Totals.Discount,
			Total:    req.Totals.Total,
		}
	}

	o, err := h.orderService.PlaceOrder(r.Context(), order.PlaceOrderRequest{
		Customer: order.Customer{
			Name:  req.Customer.Name,
			Phone: req.Customer.Phone,
			Email: req.Customer.Email,
		},
		Payment: order.Payment{
			Method: req.Payment.Method,
			TrxID:  req.Payment.TrxID,
		},
		CouponCode:   req.CouponCode,
		Items:        items,
		ClientTotals: clientTotals,
	})
	if err != nil {
		h.writeOrderError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, toOrderResponse(o))
}

// GetOrders returns full order records for a comma-separated list of order
// numbers, newest first. The storefront keeps order numbers client-side
// and uses this for the order history page.
func (h *Handler) GetOrders(w http.ResponseWriter, r *http.Request) {
	raw := r.URL.Query().Get("ids")
	if raw == "" {
		writeError(w, http.StatusBadRequest, "ids query parameter is required")
		return
	}

	var numbers []string
	for _, n := range strings.Split(raw, ",") {
		if n = strings.TrimSpace(n); n != "" {
			numbers = append(numbers, n)
		}
	}

	orders, err := h.orderService.GetByNumbers(r.Context(), numbers)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to get orders")
		return
	}

	resp := make([]OrderResponse, len(orders))
	for i := range orders {
		resp[i] = toOrderResponse(&orders[i])
	}
	writeJSON(w, http.StatusOK, resp)
}

// UpdateOrderStatus moves an order through the status lifecycle.
func (h *Handler) UpdateOrderStatus(w http.ResponseWriter, r *http.Request) {
	number := chi.URLParam(r, "orderNumber")

	var req UpdateStatusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON payload")
		return
	}

	status, err := order.ParseStatus(req.Status)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	if err := h.orderService.UpdateStatus(r.Context(), number, status); err != nil {
		switch {
		case errors.Is(err, order.ErrNotFound):
			writeError(w, http.StatusNotFound, "order not found")
		case errors.Is(err, order.ErrStatusConflict):
			writeError(w, http.StatusConflict, "order status changed concurrently, retry")
		default:
			var ite *order.InvalidTransitionError
			if errors.As(err, &ite) {
				writeError(w, http.StatusUnprocessableEntity, ite.Error())
				return
			}
			writeError(w, http.StatusInternalServerError, "failed to update status")
		}
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// SendAccessEmail delivers the access-details email for an order.
func (h *Handler) SendAccessEmail(w http.ResponseWriter, r *http.Request) {
	number := chi.URLParam(r, "orderNumber")

	var req SendAccessEmailRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON payload")
		return
	}
	if req.AccessDetails == "" {
		writeError(w, http.StatusBadRequest, "access_details is required")
		return
	}

	if err := h.orderService.SendAccessEmail(r.Context(), number, req.AccessDetails); err != nil {
		switch {
		case errors.Is(err, order.ErrNotFound):
			writeError(w, http.StatusNotFound, "order not found")
		default:
			var de *order.DeliveryError
			if errors.As(err, &de) {
				writeError(w, http.StatusBadGateway, "email delivery failed, retry later")
				return
			}
			writeError(w, http.StatusInternalServerError, "failed to send access email")
		}
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// writeOrderError maps placement errors to HTTP responses. Validation
// failures are the client's fault; anything else is a 500.
func (h *Handler) writeOrderError(w http.ResponseWriter, err error) {
	var (
		pnf *order.ProductNotFoundError
		iq  *order.InvalidQuantityError
		ud  *order.UnknownDurationError
		ic  *order.InvalidCustomerError
	)
	switch {
	case errors.Is(err, order.ErrEmptyItems):
		writeError(w, http.StatusBadRequest, err.Error())
	case errors.As(err, &ic):
		writeError(w, http.StatusBadRequest, ic.Error())
	case errors.As(err, &iq):
		writeError(w, http.StatusUnprocessableEntity, iq.Error())
	case errors.As(err, &pnf):
		writeError(w, http.StatusUnprocessableEntity, pnf.Error())
	case errors.As(err, &ud):
		writeError(w, http.StatusUnprocessableEntity, ud.Error())
	default:
		writeError(w, http.StatusInternalServerError, "failed to place order")
	}
}

func toOrderResponse(o *order.Order) OrderResponse {
	items := make([]OrderItemResponseDTO, len(o.Items))
	for i, it := range o.Items {
		items[i] = OrderItemResponseDTO{
			ProductID:   it.ProductID,
			ProductName: it.ProductName,
			Quantity:    it.Quantity,
			Pricing:     ItemPricingDTO{Duration: it.Duration, Price: it.UnitPrice},
		}
	}
	return OrderResponse{
		OrderNumber: o.Number,
		Status:      string(o.Status),
		Customer: CustomerDTO{
			Name:  o.Customer.Name,
			Phone: o.Customer.Phone,
			Email: o.Customer.Email,
		},
		Payment: PaymentDTO{
			Method: o.Payment.Method,
			TrxID:  o.Payment.TrxID,
		},
		CouponCode: o.CouponCode,
		Totals: OrderTotalsDTO{
			Subtotal: o.Subtotal,
			Discount: o.Discount,
			Total:    o.Total,
		},
		Items:           items,
		AccessEmailSent: o.AccessEmailSent,
		CreatedAt:       o.CreatedAt,
	}
}
