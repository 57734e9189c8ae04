package order

import (
	"context"
	"time"

	"github.com/go-faster/errors"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

var (
	// ErrNotFound is returned when no order matches an order number.
	ErrNotFound = errors.New("order not found")
	// ErrStatusConflict is returned when a status update loses a race
	// against a concurrent update and should be retried by the operator.
	ErrStatusConflict = errors.New("order status changed concurrently")
)

// Customer holds the contact details captured at checkout.
type Customer struct {
	Name  string
	Phone string
	Email string
}

// Payment records the customer-declared payment method and transaction
// reference. The reference is opaque metadata; it is never verified.
type Payment struct {
	Method string
	TrxID  string
}

// LineItem is one purchased (product, duration, quantity) entry. Name,
// duration and unit price are snapshots taken at purchase time and are
// never recomputed from the live catalog.
type LineItem struct {
	ProductID   int64
	ProductName string
	Quantity    int
	Duration    string
	UnitPrice   decimal.Decimal
}

// Order is a placed customer order. ID is the internal storage key;
// Number is the externally visible identifier.
type Order struct {
	ID              uuid.UUID
	Number          string
	Customer        Customer
	Payment         Payment
	CouponCode      string
	Subtotal        decimal.Decimal
	Discount        decimal.Decimal
	Total           decimal.Decimal
	Status          Status
	AccessEmailSent bool
	CreatedAt       time.Time
	Items           []LineItem
}

// Repository defines persistence operations for orders.
//
// Create must persist the order header and all line items as a single
// atomic unit: either every row becomes visible or none do.
// UpdateStatus is compare-and-set on the previously observed status and
// returns ErrStatusConflict when zero rows match.
type Repository interface {
	Create(ctx context.Context, o *Order) error
	GetByNumber(ctx context.Context, number string) (*Order, error)
	GetByNumbers(ctx context.Context, numbers []string) ([]Order, error)
	UpdateStatus(ctx context.Context, number string, from, to Status) error
	MarkAccessEmailSent(ctx context.Context, number string) error
}
