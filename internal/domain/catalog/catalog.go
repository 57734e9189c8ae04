package catalog

import (
	"context"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"
)

// ErrNotFound is returned when a requested product does not exist.
var ErrNotFound = errors.New("product not found")

// Product represents a catalog item available for purchase. Products are
// read-only from the order engine's perspective.
type Product struct {
	ID              int64
	Category        string
	Name            string
	Slug            string
	Description     string
	LongDescription string
	Image           string
	StockOut        bool
	Featured        bool
	Variants        []PriceVariant
}

// PriceVariant is one purchasable (duration, price) option of a product.
// Every product has at least one variant.
type PriceVariant struct {
	Duration string
	Price    decimal.Decimal
}

// PriceFor returns the price for the given duration label.
func (p *Product) PriceFor(duration string) (decimal.Decimal, bool) {
	for _, v := range p.Variants {
		if v.Duration == duration {
			return v.Price, true
		}
	}
	return decimal.Zero, false
}

// Repository defines read operations for the product catalog.
type Repository interface {
	List(ctx context.Context) ([]Product, error)
	GetByID(ctx context.Context, id int64) (*Product, error)
	GetByIDs(ctx context.Context, ids []int64) ([]Product, error)
}
