package order

import (
	"context"
	"fmt"
	netmail "net/mail"
	"time"

	"github.com/go-faster/errors"
	"github.com/go-faster/sdk/zctx"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/raihanetx/submonth-backend/internal/domain/catalog"
	"github.com/raihanetx/submonth-backend/internal/domain/coupon"
	"github.com/raihanetx/submonth-backend/internal/mail"
)

// Sentinel errors for placement validation.
var ErrEmptyItems = errors.New("items required")

// ProductNotFoundError indicates a requested product does not exist.
type ProductNotFoundError struct {
	ProductID int64
}

func (e *ProductNotFoundError) Error() string {
	return fmt.Sprintf("product %d not found", e.ProductID)
}

// InvalidQuantityError indicates a line item has a non-positive quantity.
type InvalidQuantityError struct {
	ProductID int64
}

func (e *InvalidQuantityError) Error() string {
	return fmt.Sprintf("quantity must be greater than 0 for product %d", e.ProductID)
}

// UnknownDurationError indicates the requested duration variant does not
// exist for the product.
type UnknownDurationError struct {
	ProductID int64
	Duration  string
}

func (e *UnknownDurationError) Error() string {
	return fmt.Sprintf("product %d has no %q pricing variant", e.ProductID, e.Duration)
}

// InvalidCustomerError indicates a missing or malformed customer field.
type InvalidCustomerError struct {
	Field string
}

func (e *InvalidCustomerError) Error() string {
	return fmt.Sprintf("customer %s is missing or invalid", e.Field)
}

// DeliveryError wraps an email transport failure. The order state is
// untouched and the operation may be retried.
type DeliveryError struct {
	Err error
}

func (e *DeliveryError) Error() string {
	return fmt.Sprintf("access email delivery failed: %v", e.Err)
}

func (e *DeliveryError) Unwrap() error { return e.Err }

// CartItem is one requested cart entry as submitted by the client.
type CartItem struct {
	ProductID int64
	Duration  string
	Quantity  int
}

// ClientTotals carries the totals the client displayed at checkout. They
// are a cross-check hint only; the engine always recomputes from the
// catalog and logs a warning on mismatch.
type ClientTotals struct {
	Subtotal decimal.Decimal
	Discount decimal.Decimal
	Total    decimal.Decimal
}

// PlaceOrderRequest holds the input for placing an order.
type PlaceOrderRequest struct {
	Customer     Customer
	Payment      Payment
	CouponCode   string
	Items        []CartItem
	ClientTotals *ClientTotals
}

// Service orchestrates order placement, the status lifecycle, and the
// manual access email.
type Service struct {
	catalog catalog.Repository
	coupons coupon.Resolver
	orders  Repository
	mailer  mail.Sender

	now       func() time.Time
	newNumber func(time.Time) string
}

// NewService creates an order Service with the required collaborators.
func NewService(
	catalogRepo catalog.Repository,
	coupons coupon.Resolver,
	orders Repository,
	mailer mail.Sender,
) *Service {
	return &Service{
		catalog:   catalogRepo,
		coupons:   coupons,
		orders:    orders,
		mailer:    mailer,
		now:       time.Now,
		newNumber: NewNumber,
	}
}

// PlaceOrder validates the cart against the catalog, resolves the coupon,
// recomputes totals server-side, and persists the order header plus line
// items as one atomic unit. Duplicate submissions are not deduplicated:
// each call creates a distinct order with a distinct number.
func (s *Service) PlaceOrder(ctx context.Context, req PlaceOrderRequest) (*Order, error) {
	if err := validateCustomer(req.Customer); err != nil {
		return nil, err
	}
	if len(req.Items) == 0 {
		return nil, ErrEmptyItems
	}

	ids := make([]int64, len(req.Items))
	for i, item := range req.Items {
		if item.Quantity <= 0 {
			return nil, &InvalidQuantityError{ProductID: item.ProductID}
		}
		ids[i] = item.ProductID
	}

	// Batch fetch all products in a single query.
	fetched, err := s.catalog.GetByIDs(ctx, ids)
	if err != nil {
		return nil, errors.Wrap(err, "get products")
	}
	productMap := make(map[int64]catalog.Product, len(fetched))
	for _, p := range fetched {
		productMap[p.ID] = p
	}

	// Freeze the price snapshot for every line and collect scope inputs.
	items := make([]LineItem, len(req.Items))
	cartLines := make([]coupon.CartLine, len(req.Items))
	for i, item := range req.Items {
		p, ok := productMap[item.ProductID]
		if !ok {
			return nil, &ProductNotFoundError{ProductID: item.ProductID}
		}
		price, ok := p.PriceFor(item.Duration)
		if !ok {
			return nil, &UnknownDurationError{ProductID: item.ProductID, Duration: item.Duration}
		}
		items[i] = LineItem{
			ProductID:   p.ID,
			ProductName: p.Name,
			Quantity:    item.Quantity,
			Duration:    item.Duration,
			UnitPrice:   price,
		}
		cartLines[i] = coupon.CartLine{ProductID: p.ID, Category: p.Category}
	}

	// An invalid or out-of-scope coupon never blocks checkout: the order
	// places with zero discount.
	discountPercent := 0
	couponCode := ""
	if req.CouponCode != "" {
		res, err := s.coupons.Resolve(ctx, req.CouponCode, cartLines)
		if err != nil {
			return nil, errors.Wrap(err, "resolve coupon")
		}
		if res.Applies {
			discountPercent = res.Percent
			couponCode = res.Code
		} else {
			zctx.From(ctx).Info("coupon not applied",
				zap.String("code", req.CouponCode),
				zap.String("reason", string(res.Reason)),
			)
		}
	}

	totals, clamped := ComputeTotals(items, discountPercent)
	if clamped {
		zctx.From(ctx).Warn("discount clamped to subtotal",
			zap.Int("discount_percent", discountPercent),
			zap.String("subtotal", totals.Subtotal.String()),
		)
	}
	s.checkClientTotals(ctx, req.ClientTotals, totals)

	o := &Order{
		ID:         uuid.New(),
		Number:     s.newNumber(s.now()),
		Customer:   req.Customer,
		Payment:    req.Payment,
		CouponCode: couponCode,
		Subtotal:   totals.Subtotal,
		Discount:   totals.Discount,
		Total:      totals.Total,
		Status:     StatusPending,
		Items:      items,
	}
	if err := s.orders.Create(ctx, o); err != nil {
		return nil, errors.Wrap(err, "create order")
	}

	zctx.From(ctx).Info("order placed",
		zap.String("order_number", o.Number),
		zap.String("total", o.Total.String()),
		zap.Int("items", len(o.Items)),
	)
	return o, nil
}

// UpdateStatus moves an order through the lifecycle. Repeating the current
// status is a no-op; anything outside the transition table is rejected.
func (s *Service) UpdateStatus(ctx context.Context, number string, to Status) error {
	o, err := s.orders.GetByNumber(ctx, number)
	if err != nil {
		return err
	}
	if o.Status == to {
		return nil
	}
	if !o.Status.CanTransitionTo(to) {
		return &InvalidTransitionError{From: o.Status, To: to}
	}
	return s.orders.UpdateStatus(ctx, number, o.Status, to)
}

// SendAccessEmail renders and delivers the access-details email for an
// order, then marks it sent. The flag is only set after the transport
// reports success, so a failed delivery stays retriable.
func (s *Service) SendAccessEmail(ctx context.Context, number, accessDetails string) error {
	o, err := s.orders.GetByNumber(ctx, number)
	if err != nil {
		return err
	}

	emailItems := make([]mail.AccessEmailItem, len(o.Items))
	for i, it := range o.Items {
		emailItems[i] = mail.AccessEmailItem{
			Name:     it.ProductName,
			Duration: it.Duration,
			Quantity: it.Quantity,
		}
	}
	body, err := mail.RenderAccessEmail(mail.AccessEmailData{
		OrderNumber:   o.Number,
		CustomerName:  o.Customer.Name,
		AccessDetails: accessDetails,
		Items:         emailItems,
	})
	if err != nil {
		return err
	}

	subject := fmt.Sprintf("Your Submonth Order #%s is Confirmed!", o.Number)
	if err := s.mailer.Send(ctx, o.Customer.Email, subject, body); err != nil {
		zctx.From(ctx).Error("access email delivery failed",
			zap.String("order_number", o.Number),
			zap.Error(err),
		)
		return &DeliveryError{Err: err}
	}

	if err := s.orders.MarkAccessEmailSent(ctx, number); err != nil {
		// The mail went out; resending from a retry only duplicates the
		// email, which is acceptable per the delivery contract.
		return errors.Wrap(err, "mark access email sent")
	}
	return nil
}

// GetByNumbers returns full order records for a batch of order numbers,
// newest first. Unknown numbers are silently omitted.
func (s *Service) GetByNumbers(ctx context.Context, numbers []string) ([]Order, error) {
	if len(numbers) == 0 {
		return nil, nil
	}
	return s.orders.GetByNumbers(ctx, numbers)
}

// checkClientTotals compares client-displayed totals with the computed
// ones and logs any divergence. The computed totals always win.
func (s *Service) checkClientTotals(ctx context.Context, client *ClientTotals, computed Totals) {
	if client == nil {
		return
	}
	if client.Subtotal.Equal(computed.Subtotal) &&
		client.Discount.Equal(computed.Discount) &&
		client.Total.Equal(computed.Total) {
		return
	}
	zctx.From(ctx).Warn("client totals mismatch",
		zap.String("client_total", client.Total.String()),
		zap.String("computed_total", computed.Total.String()),
	)
}

func validateCustomer(c Customer) error {
	if c.Name == "" {
		return &InvalidCustomerError{Field: "name"}
	}
	if c.Phone == "" {
		return &InvalidCustomerError{Field: "phone"}
	}
	if _, err := netmail.ParseAddress(c.Email); err != nil {
		return &InvalidCustomerError{Field: "email"}
	}
	return nil
}
