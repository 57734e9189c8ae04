package coupon

import (
	"context"

	"github.com/go-faster/errors"
)

// Scope enumerates the catalog subsets a coupon may discount.
type Scope string

const (
	// ScopeAllProducts applies to every product in the catalog.
	ScopeAllProducts Scope = "all_products"
	// ScopeCategory applies only to products in one named category.
	ScopeCategory Scope = "category"
	// ScopeSingleProduct applies only to one product.
	ScopeSingleProduct Scope = "single_product"
)

// ErrNotFound is returned by Repository when no coupon matches a code.
var ErrNotFound = errors.New("coupon not found")

// Coupon is an operator-managed discount rule. Codes are stored uppercase;
// lookups are case-insensitive.
type Coupon struct {
	Code               string
	DiscountPercentage int
	Active             bool
	Scope              Scope
	// ScopeValue holds the category name or the product id (as text)
	// when Scope is narrower than all_products.
	ScopeValue string
}

// Repository provides coupon lookup. FindByCode must match codes
// case-insensitively and return ErrNotFound when no coupon exists,
// regardless of the active flag; the resolver distinguishes inactive
// from missing.
type Repository interface {
	FindByCode(ctx context.Context, code string) (*Coupon, error)
}
