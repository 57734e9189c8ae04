//go:build integration

package integration

import (
	"context"
	"fmt"
	"net/http"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

func findProduct(t *testing.T, slug string) productResponse {
	t.Helper()

	resp := doGet(t, "/api/products")
	defer resp.Body.Close()

	products := decodeJSON[[]productResponse](t, resp)
	for _, p := range products {
		if p.Slug == slug {
			return p
		}
	}
	t.Fatalf("product %q not seeded", slug)
	return productResponse{}
}

func placeOrder(t *testing.T, req orderRequest) orderResponse {
	t.Helper()

	resp := doPost(t, "/api/orders", req)
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusCreated {
		errResp := decodeJSON[errorResponse](t, resp)
		t.Fatalf("place order: got status %d (%s), want %d", resp.StatusCode, errResp.Message, http.StatusCreated)
	}
	return decodeJSON[orderResponse](t, resp)
}

func validOrderRequest(items ...orderItemRequest) orderRequest {
	return orderRequest{
		Customer: customerBlock{Name: "Rahim Uddin", Phone: "+8801712345678", Email: "rahim@example.com"},
		Payment:  paymentBlock{Method: "bkash", TrxID: "TRX123456"},
		Items:    items,
	}
}

func TestPlaceOrder(t *testing.T) {
	netflix := findProduct(t, "netflix-premium")

	order := placeOrder(t, validOrderRequest(
		orderItemRequest{ProductID: netflix.ID, Duration: "1 Month", Quantity: 2},
	))

	if order.OrderNumber == "" {
		t.Fatal("empty order number")
	}
	if order.Status != "Pending" {
		t.Errorf("got status %q, want %q", order.Status, "Pending")
	}
	if order.Totals.Subtotal != "7" {
		t.Errorf("got subtotal %q, want %q", order.Totals.Subtotal, "7")
	}
	if order.Totals.Discount != "0" {
		t.Errorf("got discount %q, want %q", order.Totals.Discount, "0")
	}
	if order.Totals.Total != "7" {
		t.Errorf("got total %q, want %q", order.Totals.Total, "7")
	}
	if len(order.Items) != 1 {
		t.Fatalf("got %d items, want 1", len(order.Items))
	}
	if order.Items[0].Pricing.Price != "3.5" {
		t.Errorf("got unit price %q, want %q", order.Items[0].Pricing.Price, "3.5")
	}
	if order.AccessEmailSent {
		t.Error("access_email_sent should start false")
	}
}

func TestPlaceOrderWithCoupon(t *testing.T) {
	spotify := findProduct(t, "spotify-premium")

	req := validOrderRequest(
		orderItemRequest{ProductID: spotify.ID, Duration: "1 Year", Quantity: 1},
	)
	req.CouponCode = "welcome10"

	order := placeOrder(t, req)

	if order.CouponCode != "WELCOME10" {
		t.Errorf("got coupon %q, want %q", order.CouponCode, "WELCOME10")
	}
	if order.Totals.Subtotal != "14" {
		t.Errorf("got subtotal %q, want %q", order.Totals.Subtotal, "14")
	}
	if order.Totals.Discount != "1.4" {
		t.Errorf("got discount %q, want %q", order.Totals.Discount, "1.4")
	}
	if order.Totals.Total != "12.6" {
		t.Errorf("got total %q, want %q", order.Totals.Total, "12.6")
	}
}

func TestPlaceOrderScopedCoupon(t *testing.T) {
	netflix := findProduct(t, "netflix-premium")
	canva := findProduct(t, "canva-pro")

	t.Run("all items in scope", func(t *testing.T) {
		req := validOrderRequest(
			orderItemRequest{ProductID: netflix.ID, Duration: "1 Year", Quantity: 1},
		)
		req.CouponCode = "STREAM15"

		order := placeOrder(t, req)
		if order.Totals.Discount != "5.25" {
			t.Errorf("got discount %q, want %q", order.Totals.Discount, "5.25")
		}
	})

	t.Run("item outside scope voids the coupon", func(t *testing.T) {
		req := validOrderRequest(
			orderItemRequest{ProductID: netflix.ID, Duration: "1 Year", Quantity: 1},
			orderItemRequest{ProductID: canva.ID, Duration: "1 Year", Quantity: 1},
		)
		req.CouponCode = "STREAM15"

		order := placeOrder(t, req)
		if order.Totals.Discount != "0" {
			t.Errorf("got discount %q, want %q", order.Totals.Discount, "0")
		}
		if order.Totals.Total != "39" {
			t.Errorf("got total %q, want %q", order.Totals.Total, "39")
		}
	})
}

func TestPlaceOrderInactiveCouponStillPlaces(t *testing.T) {
	netflix := findProduct(t, "netflix-premium")

	req := validOrderRequest(
		orderItemRequest{ProductID: netflix.ID, Duration: "1 Month", Quantity: 1},
	)
	req.CouponCode = "EXPIRED20"

	order := placeOrder(t, req)
	if order.Totals.Discount != "0" {
		t.Errorf("got discount %q, want %q", order.Totals.Discount, "0")
	}
	if order.Status != "Pending" {
		t.Errorf("got status %q, want %q", order.Status, "Pending")
	}
}

func TestPlaceOrderValidationFailures(t *testing.T) {
	netflix := findProduct(t, "netflix-premium")

	tests := []struct {
		name       string
		mutate     func(*orderRequest)
		wantStatus int
	}{
		{
			name:       "no items",
			mutate:     func(r *orderRequest) { r.Items = nil },
			wantStatus: http.StatusBadRequest,
		},
		{
			name:       "missing customer email",
			mutate:     func(r *orderRequest) { r.Customer.Email = "" },
			wantStatus: http.StatusBadRequest,
		},
		{
			name:       "zero quantity",
			mutate:     func(r *orderRequest) { r.Items[0].Quantity = 0 },
			wantStatus: http.StatusUnprocessableEntity,
		},
		{
			name:       "unknown product",
			mutate:     func(r *orderRequest) { r.Items[0].ProductID = 999999 },
			wantStatus: http.StatusUnprocessableEntity,
		},
		{
			name:       "unknown duration",
			mutate:     func(r *orderRequest) { r.Items[0].Duration = "99 Years" },
			wantStatus: http.StatusUnprocessableEntity,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := validOrderRequest(
				orderItemRequest{ProductID: netflix.ID, Duration: "1 Month", Quantity: 1},
			)
			tt.mutate(&req)

			resp := doPost(t, "/api/orders", req)
			defer resp.Body.Close()

			if resp.StatusCode != tt.wantStatus {
				t.Fatalf("got status %d, want %d", resp.StatusCode, tt.wantStatus)
			}
		})
	}
}

func TestPlaceOrderRollsBackOnItemFailure(t *testing.T) {
	netflix := findProduct(t, "netflix-premium")

	// Unique email so the database checks below see only this attempt.
	email := fmt.Sprintf("rollback-%d@example.com", time.Now().UnixNano())
	req := orderRequest{
		Customer: customerBlock{Name: "Rahim Uddin", Phone: "+8801712345678", Email: email},
		Payment:  paymentBlock{Method: "bkash"},
		Items: []orderItemRequest{
			{ProductID: netflix.ID, Duration: "1 Month", Quantity: 1},
			// Positive, so validation accepts it, but too large for the
			// INT quantity column: the second item insert fails after the
			// header and first item are already written in the transaction.
			{ProductID: netflix.ID, Duration: "3 Months", Quantity: 1 << 31},
		},
	}

	resp := doPost(t, "/api/orders", req)
	resp.Body.Close()
	if resp.StatusCode != http.StatusInternalServerError {
		t.Fatalf("got status %d, want %d", resp.StatusCode, http.StatusInternalServerError)
	}

	ctx := context.Background()
	pool, err := pgxpool.New(ctx, dbURL)
	if err != nil {
		t.Fatalf("connect to database: %v", err)
	}
	defer pool.Close()

	var headers int
	err = pool.QueryRow(ctx,
		`SELECT count(*) FROM orders WHERE customer_email = $1`, email,
	).Scan(&headers)
	if err != nil {
		t.Fatalf("count orders: %v", err)
	}
	if headers != 0 {
		t.Errorf("found %d order headers after failed placement, want 0", headers)
	}

	var items int
	err = pool.QueryRow(ctx,
		`SELECT count(*) FROM order_items oi
		 JOIN orders o ON o.id = oi.order_id
		 WHERE o.customer_email = $1`, email,
	).Scan(&items)
	if err != nil {
		t.Fatalf("count order items: %v", err)
	}
	if items != 0 {
		t.Errorf("found %d order items after failed placement, want 0", items)
	}
}

func TestGetOrdersByNumbers(t *testing.T) {
	netflix := findProduct(t, "netflix-premium")

	first := placeOrder(t, validOrderRequest(
		orderItemRequest{ProductID: netflix.ID, Duration: "1 Month", Quantity: 1},
	))
	second := placeOrder(t, validOrderRequest(
		orderItemRequest{ProductID: netflix.ID, Duration: "3 Months", Quantity: 1},
	))

	path := fmt.Sprintf("/api/orders?ids=%s,%s,no-such-order", first.OrderNumber, second.OrderNumber)
	resp := doGet(t, path)
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("got status %d, want %d", resp.StatusCode, http.StatusOK)
	}

	orders := decodeJSON[[]orderResponse](t, resp)
	if len(orders) != 2 {
		t.Fatalf("got %d orders, want 2", len(orders))
	}
}

func TestOrderStatusLifecycle(t *testing.T) {
	netflix := findProduct(t, "netflix-premium")
	order := placeOrder(t, validOrderRequest(
		orderItemRequest{ProductID: netflix.ID, Duration: "1 Month", Quantity: 1},
	))

	statusPath := "/api/orders/" + order.OrderNumber + "/status"

	resp := doWithAuth(t, http.MethodPatch, statusPath, map[string]string{"status": "Confirmed"})
	resp.Body.Close()
	if resp.StatusCode != http.StatusNoContent {
		t.Fatalf("confirm: got status %d, want %d", resp.StatusCode, http.StatusNoContent)
	}

	resp = doWithAuth(t, http.MethodPatch, statusPath, map[string]string{"status": "Completed"})
	resp.Body.Close()
	if resp.StatusCode != http.StatusNoContent {
		t.Fatalf("complete: got status %d, want %d", resp.StatusCode, http.StatusNoContent)
	}

	// Completed is terminal.
	resp = doWithAuth(t, http.MethodPatch, statusPath, map[string]string{"status": "Cancelled"})
	resp.Body.Close()
	if resp.StatusCode != http.StatusUnprocessableEntity {
		t.Fatalf("cancel completed: got status %d, want %d", resp.StatusCode, http.StatusUnprocessableEntity)
	}

	getResp := doGet(t, "/api/orders?ids="+order.OrderNumber)
	defer getResp.Body.Close()
	orders := decodeJSON[[]orderResponse](t, getResp)
	if len(orders) != 1 {
		t.Fatalf("got %d orders, want 1", len(orders))
	}
	if orders[0].Status != "Completed" {
		t.Errorf("got status %q, want %q", orders[0].Status, "Completed")
	}
}

func TestOrderStatusRequiresAPIKey(t *testing.T) {
	netflix := findProduct(t, "netflix-premium")
	order := placeOrder(t, validOrderRequest(
		orderItemRequest{ProductID: netflix.ID, Duration: "1 Month", Quantity: 1},
	))

	resp := doRequest(t, http.MethodPatch, "/api/orders/"+order.OrderNumber+"/status",
		map[string]string{"status": "Confirmed"}, "wrong-key")
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("got status %d, want %d", resp.StatusCode, http.StatusUnauthorized)
	}
}

func TestSendAccessEmailWithoutSMTP(t *testing.T) {
	netflix := findProduct(t, "netflix-premium")
	order := placeOrder(t, validOrderRequest(
		orderItemRequest{ProductID: netflix.ID, Duration: "1 Month", Quantity: 1},
	))

	// The test stack runs without an SMTP relay, so delivery must fail
	// upstream and the sent flag must stay unset.
	resp := doWithAuth(t, http.MethodPost, "/api/orders/"+order.OrderNumber+"/access-email",
		map[string]string{"access_details": "user: a@b.c\npass: secret"})
	resp.Body.Close()
	if resp.StatusCode != http.StatusBadGateway {
		t.Fatalf("got status %d, want %d", resp.StatusCode, http.StatusBadGateway)
	}

	getResp := doGet(t, "/api/orders?ids="+order.OrderNumber)
	defer getResp.Body.Close()
	orders := decodeJSON[[]orderResponse](t, getResp)
	if len(orders) != 1 || orders[0].AccessEmailSent {
		t.Error("access_email_sent must remain false after failed delivery")
	}
}
