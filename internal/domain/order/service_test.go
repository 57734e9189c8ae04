package order

import (
	"context"
	"testing"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/raihanetx/submonth-backend/internal/domain/catalog"
	"github.com/raihanetx/submonth-backend/internal/domain/coupon"
)

// --- Mock implementations ---

type mockCatalogRepo struct {
	byID   map[int64]catalog.Product
	getErr error
}

func (m *mockCatalogRepo) List(_ context.Context) ([]catalog.Product, error) { return nil, nil }

func (m *mockCatalogRepo) GetByID(_ context.Context, id int64) (*catalog.Product, error) {
	p, ok := m.byID[id]
	if !ok {
		return nil, catalog.ErrNotFound
	}
	return &p, nil
}

func (m *mockCatalogRepo) GetByIDs(_ context.Context, ids []int64) ([]catalog.Product, error) {
	if m.getErr != nil {
		return nil, m.getErr
	}
	var out []catalog.Product
	seen := make(map[int64]bool)
	for _, id := range ids {
		if p, ok := m.byID[id]; ok && !seen[id] {
			out = append(out, p)
			seen[id] = true
		}
	}
	return out, nil
}

type mockResolver struct {
	res coupon.Resolution
	err error
}

func (m *mockResolver) Resolve(_ context.Context, _ string, _ []coupon.CartLine) (coupon.Resolution, error) {
	return m.res, m.err
}

type mockOrderRepo struct {
	lastCreated *Order
	createErr   error

	byNumber map[string]*Order

	statusFrom, statusTo Status
	updateErr            error

	emailMarked bool
	markErr     error
}

func (m *mockOrderRepo) Create(_ context.Context, o *Order) error {
	m.lastCreated = o
	return m.createErr
}

func (m *mockOrderRepo) GetByNumber(_ context.Context, number string) (*Order, error) {
	o, ok := m.byNumber[number]
	if !ok {
		return nil, ErrNotFound
	}
	return o, nil
}

func (m *mockOrderRepo) GetByNumbers(_ context.Context, numbers []string) ([]Order, error) {
	var out []Order
	for _, n := range numbers {
		if o, ok := m.byNumber[n]; ok {
			out = append(out, *o)
		}
	}
	return out, nil
}

func (m *mockOrderRepo) UpdateStatus(_ context.Context, _ string, from, to Status) error {
	m.statusFrom, m.statusTo = from, to
	return m.updateErr
}

func (m *mockOrderRepo) MarkAccessEmailSent(_ context.Context, _ string) error {
	if m.markErr != nil {
		return m.markErr
	}
	m.emailMarked = true
	return nil
}

type mockSender struct {
	err      error
	lastTo   string
	lastSubj string
	lastBody string
	calls    int
}

func (m *mockSender) Send(_ context.Context, to, subject, body string) error {
	m.calls++
	m.lastTo, m.lastSubj, m.lastBody = to, subject, body
	return m.err
}

// --- Helpers ---

func testProduct(id int64, name, category string, price string) catalog.Product {
	return catalog.Product{
		ID:       id,
		Name:     name,
		Category: category,
		Variants: []catalog.PriceVariant{
			{Duration: "1 Month", Price: decimal.RequireFromString(price)},
			{Duration: "1 Year", Price: decimal.RequireFromString(price).Mul(decimal.NewFromInt(10))},
		},
	}
}

func newCatalog(products ...catalog.Product) *mockCatalogRepo {
	byID := make(map[int64]catalog.Product, len(products))
	for _, p := range products {
		byID[p.ID] = p
	}
	return &mockCatalogRepo{byID: byID}
}

func testCustomer() Customer {
	return Customer{Name: "Rahim", Phone: "+8801700000000", Email: "rahim@example.com"}
}

func placeReq(items ...CartItem) PlaceOrderRequest {
	return PlaceOrderRequest{
		Customer: testCustomer(),
		Payment:  Payment{Method: "bKash", TrxID: "TX12345"},
		Items:    items,
	}
}

// --- Placement tests ---

func TestPlaceOrder_NoCoupon(t *testing.T) {
	repo := &mockOrderRepo{}
	svc := NewService(
		newCatalog(testProduct(1, "Netflix", "Streaming", "10.00")),
		&mockResolver{},
		repo,
		&mockSender{},
	)

	o, err := svc.PlaceOrder(context.Background(), placeReq(
		CartItem{ProductID: 1, Duration: "1 Month", Quantity: 2},
	))

	require.NoError(t, err)
	assert.True(t, decimal.RequireFromString("20.00").Equal(o.Subtotal))
	assert.True(t, decimal.Zero.Equal(o.Discount))
	assert.True(t, decimal.RequireFromString("20.00").Equal(o.Total))
	assert.Equal(t, StatusPending, o.Status)
	assert.NotEmpty(t, o.Number)
	assert.Same(t, o, repo.lastCreated)

	require.Len(t, o.Items, 1)
	assert.Equal(t, "Netflix", o.Items[0].ProductName)
	assert.Equal(t, "1 Month", o.Items[0].Duration)
	assert.True(t, decimal.RequireFromString("10.00").Equal(o.Items[0].UnitPrice))
}

func TestPlaceOrder_WithCoupon(t *testing.T) {
	svc := NewService(
		newCatalog(testProduct(1, "Netflix", "Streaming", "10.00")),
		&mockResolver{res: coupon.Resolution{Applies: true, Percent: 10, Code: "SAVE10"}},
		&mockOrderRepo{},
		&mockSender{},
	)

	o, err := svc.PlaceOrder(context.Background(), PlaceOrderRequest{
		Customer:   testCustomer(),
		Payment:    Payment{Method: "bKash", TrxID: "TX12345"},
		CouponCode: "save10",
		Items:      []CartItem{{ProductID: 1, Duration: "1 Month", Quantity: 2}},
	})

	require.NoError(t, err)
	assert.Equal(t, "SAVE10", o.CouponCode)
	assert.True(t, decimal.RequireFromString("2.00").Equal(o.Discount))
	assert.True(t, decimal.RequireFromString("18.00").Equal(o.Total))
}

// An invalid coupon must never block checkout: the order still places
// with no discount and no recorded code.
func TestPlaceOrder_NonApplyingCouponStillPlaces(t *testing.T) {
	repo := &mockOrderRepo{}
	svc := NewService(
		newCatalog(testProduct(1, "Netflix", "Streaming", "10.00")),
		&mockResolver{res: coupon.Resolution{Applies: false, Reason: coupon.ReasonOutOfScope}},
		repo,
		&mockSender{},
	)

	o, err := svc.PlaceOrder(context.Background(), PlaceOrderRequest{
		Customer:   testCustomer(),
		Payment:    Payment{Method: "Nagad"},
		CouponCode: "GAMING50",
		Items:      []CartItem{{ProductID: 1, Duration: "1 Month", Quantity: 1}},
	})

	require.NoError(t, err)
	assert.Empty(t, o.CouponCode)
	assert.True(t, decimal.Zero.Equal(o.Discount))
	assert.True(t, decimal.RequireFromString("10.00").Equal(o.Total))
	assert.NotNil(t, repo.lastCreated)
}

func TestPlaceOrder_ValidationErrors(t *testing.T) {
	cat := newCatalog(testProduct(1, "Netflix", "Streaming", "10.00"))

	tests := []struct {
		name  string
		req   PlaceOrderRequest
		check func(t *testing.T, err error)
	}{
		{
			name: "empty items",
			req:  placeReq(),
			check: func(t *testing.T, err error) {
				require.ErrorIs(t, err, ErrEmptyItems)
			},
		},
		{
			name: "zero quantity",
			req:  placeReq(CartItem{ProductID: 1, Duration: "1 Month", Quantity: 0}),
			check: func(t *testing.T, err error) {
				var iq *InvalidQuantityError
				require.ErrorAs(t, err, &iq)
				assert.Equal(t, int64(1), iq.ProductID)
			},
		},
		{
			name: "unknown product",
			req:  placeReq(CartItem{ProductID: 99, Duration: "1 Month", Quantity: 1}),
			check: func(t *testing.T, err error) {
				var pnf *ProductNotFoundError
				require.ErrorAs(t, err, &pnf)
				assert.Equal(t, int64(99), pnf.ProductID)
			},
		},
		{
			name: "unknown duration",
			req:  placeReq(CartItem{ProductID: 1, Duration: "3 Months", Quantity: 1}),
			check: func(t *testing.T, err error) {
				var ud *UnknownDurationError
				require.ErrorAs(t, err, &ud)
				assert.Equal(t, "3 Months", ud.Duration)
			},
		},
		{
			name: "missing customer name",
			req: PlaceOrderRequest{
				Customer: Customer{Phone: "01700", Email: "a@b.com"},
				Items:    []CartItem{{ProductID: 1, Duration: "1 Month", Quantity: 1}},
			},
			check: func(t *testing.T, err error) {
				var ic *InvalidCustomerError
				require.ErrorAs(t, err, &ic)
				assert.Equal(t, "name", ic.Field)
			},
		},
		{
			name: "malformed email",
			req: PlaceOrderRequest{
				Customer: Customer{Name: "Rahim", Phone: "01700", Email: "not-an-email"},
				Items:    []CartItem{{ProductID: 1, Duration: "1 Month", Quantity: 1}},
			},
			check: func(t *testing.T, err error) {
				var ic *InvalidCustomerError
				require.ErrorAs(t, err, &ic)
				assert.Equal(t, "email", ic.Field)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := &mockOrderRepo{}
			svc := NewService(cat, &mockResolver{}, repo, &mockSender{})

			_, err := svc.PlaceOrder(context.Background(), tt.req)
			tt.check(t, err)
			assert.Nil(t, repo.lastCreated, "no order may be persisted on validation failure")
		})
	}
}

func TestPlaceOrder_StorageError(t *testing.T) {
	svc := NewService(
		newCatalog(testProduct(1, "Netflix", "Streaming", "10.00")),
		&mockResolver{},
		&mockOrderRepo{createErr: errors.New("db write failed")},
		&mockSender{},
	)

	_, err := svc.PlaceOrder(context.Background(), placeReq(
		CartItem{ProductID: 1, Duration: "1 Month", Quantity: 1},
	))

	require.Error(t, err)
	assert.Contains(t, err.Error(), "create order")
}

func TestPlaceOrder_CouponStorageErrorFailsPlacement(t *testing.T) {
	svc := NewService(
		newCatalog(testProduct(1, "Netflix", "Streaming", "10.00")),
		&mockResolver{err: errors.New("connection reset")},
		&mockOrderRepo{},
		&mockSender{},
	)

	_, err := svc.PlaceOrder(context.Background(), PlaceOrderRequest{
		Customer:   testCustomer(),
		Payment:    Payment{Method: "bKash"},
		CouponCode: "SAVE10",
		Items:      []CartItem{{ProductID: 1, Duration: "1 Month", Quantity: 1}},
	})

	require.Error(t, err)
	assert.Contains(t, err.Error(), "resolve coupon")
}

// --- Status lifecycle tests ---

func TestUpdateStatus(t *testing.T) {
	tests := []struct {
		name    string
		current Status
		to      Status
		wantErr bool
		wantCAS bool
	}{
		{name: "pending to confirmed", current: StatusPending, to: StatusConfirmed, wantCAS: true},
		{name: "confirmed to completed", current: StatusConfirmed, to: StatusCompleted, wantCAS: true},
		{name: "same status is a no-op", current: StatusPending, to: StatusPending},
		{name: "cancelled cannot revive", current: StatusCancelled, to: StatusPending, wantErr: true},
		{name: "pending cannot skip to completed", current: StatusPending, to: StatusCompleted, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := &mockOrderRepo{byNumber: map[string]*Order{
				"1749988800-ABCDE": {Number: "1749988800-ABCDE", Status: tt.current},
			}}
			svc := NewService(newCatalog(), &mockResolver{}, repo, &mockSender{})

			err := svc.UpdateStatus(context.Background(), "1749988800-ABCDE", tt.to)

			if tt.wantErr {
				var ite *InvalidTransitionError
				require.ErrorAs(t, err, &ite)
				return
			}
			require.NoError(t, err)
			if tt.wantCAS {
				assert.Equal(t, tt.current, repo.statusFrom)
				assert.Equal(t, tt.to, repo.statusTo)
			} else {
				assert.Empty(t, repo.statusTo, "no-op must not hit storage")
			}
		})
	}
}

func TestUpdateStatus_UnknownOrder(t *testing.T) {
	svc := NewService(newCatalog(), &mockResolver{}, &mockOrderRepo{}, &mockSender{})

	err := svc.UpdateStatus(context.Background(), "missing", StatusConfirmed)
	require.ErrorIs(t, err, ErrNotFound)
}

func TestUpdateStatus_ConflictSurfaces(t *testing.T) {
	repo := &mockOrderRepo{
		byNumber:  map[string]*Order{"N1": {Number: "N1", Status: StatusPending}},
		updateErr: ErrStatusConflict,
	}
	svc := NewService(newCatalog(), &mockResolver{}, repo, &mockSender{})

	err := svc.UpdateStatus(context.Background(), "N1", StatusConfirmed)
	require.ErrorIs(t, err, ErrStatusConflict)
}

// --- Access email tests ---

func accessEmailOrder() *Order {
	return &Order{
		Number:   "1749988800-ABCDE",
		Customer: testCustomer(),
		Status:   StatusConfirmed,
		Items: []LineItem{{
			ProductID:   1,
			ProductName: "Netflix",
			Duration:    "1 Month",
			Quantity:    1,
			UnitPrice:   decimal.RequireFromString("10.00"),
		}},
	}
}

func TestSendAccessEmail_Success(t *testing.T) {
	repo := &mockOrderRepo{byNumber: map[string]*Order{"1749988800-ABCDE": accessEmailOrder()}}
	sender := &mockSender{}
	svc := NewService(newCatalog(), &mockResolver{}, repo, sender)

	err := svc.SendAccessEmail(context.Background(), "1749988800-ABCDE", "user: x\npass: y")

	require.NoError(t, err)
	assert.True(t, repo.emailMarked)
	assert.Equal(t, "rahim@example.com", sender.lastTo)
	assert.Contains(t, sender.lastSubj, "1749988800-ABCDE")
	assert.Contains(t, sender.lastBody, "user: x<br>pass: y")
}

func TestSendAccessEmail_TransportFailureLeavesFlagUnset(t *testing.T) {
	repo := &mockOrderRepo{byNumber: map[string]*Order{"1749988800-ABCDE": accessEmailOrder()}}
	sender := &mockSender{err: errors.New("smtp timeout")}
	svc := NewService(newCatalog(), &mockResolver{}, repo, sender)

	err := svc.SendAccessEmail(context.Background(), "1749988800-ABCDE", "details")

	var de *DeliveryError
	require.ErrorAs(t, err, &de)
	assert.False(t, repo.emailMarked)

	// Retry after transport recovery succeeds.
	sender.err = nil
	require.NoError(t, svc.SendAccessEmail(context.Background(), "1749988800-ABCDE", "details"))
	assert.True(t, repo.emailMarked)
	assert.Equal(t, 2, sender.calls)
}

func TestSendAccessEmail_UnknownOrder(t *testing.T) {
	sender := &mockSender{}
	svc := NewService(newCatalog(), &mockResolver{}, &mockOrderRepo{}, sender)

	err := svc.SendAccessEmail(context.Background(), "missing", "details")
	require.ErrorIs(t, err, ErrNotFound)
	assert.Zero(t, sender.calls)
}

// --- Lookup tests ---

func TestGetByNumbers(t *testing.T) {
	repo := &mockOrderRepo{byNumber: map[string]*Order{
		"N1": {Number: "N1", Status: StatusPending},
		"N2": {Number: "N2", Status: StatusConfirmed},
	}}
	svc := NewService(newCatalog(), &mockResolver{}, repo, &mockSender{})

	got, err := svc.GetByNumbers(context.Background(), []string{"N1", "unknown", "N2"})
	require.NoError(t, err)
	assert.Len(t, got, 2)

	got, err = svc.GetByNumbers(context.Background(), nil)
	require.NoError(t, err)
	assert.Empty(t, got)
}
