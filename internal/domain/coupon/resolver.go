package coupon

import (
	"context"
	"strconv"
	"strings"

	"github.com/go-faster/errors"
)

// CartLine carries the product identity needed for scope evaluation.
type CartLine struct {
	ProductID int64
	Category  string
}

// NonApplyReason explains why a coupon did not apply to a cart.
type NonApplyReason string

const (
	ReasonNotFound   NonApplyReason = "not_found"
	ReasonInactive   NonApplyReason = "inactive"
	ReasonOutOfScope NonApplyReason = "out_of_scope"
)

// Resolution is the outcome of resolving a coupon code against a cart.
// When Applies is false, Percent is zero and Reason is set.
type Resolution struct {
	Applies bool
	Percent int
	Code    string
	Reason  NonApplyReason
}

// Resolver decides whether a coupon code legally discounts a cart.
type Resolver interface {
	Resolve(ctx context.Context, code string, lines []CartLine) (Resolution, error)
}

// RepoResolver implements Resolver against a Repository.
//
// It fails closed but never blocks checkout: an unknown, inactive, or
// out-of-scope coupon resolves to a zero-percent non-applying Resolution
// rather than an error. Only storage faults surface as errors.
type RepoResolver struct {
	repo Repository
}

// NewRepoResolver creates a RepoResolver backed by the given Repository.
func NewRepoResolver(repo Repository) *RepoResolver {
	return &RepoResolver{repo: repo}
}

// Resolve looks up the code and evaluates the coupon's scope against the
// whole cart. Scope is cart-wide: every line must fall inside the scope
// or the coupon does not apply at all.
func (r *RepoResolver) Resolve(ctx context.Context, code string, lines []CartLine) (Resolution, error) {
	c, err := r.repo.FindByCode(ctx, code)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return Resolution{Reason: ReasonNotFound}, nil
		}
		return Resolution{}, errors.Wrap(err, "lookup coupon")
	}

	if !c.Active {
		return Resolution{Reason: ReasonInactive}, nil
	}

	if !inScope(c, lines) {
		return Resolution{Reason: ReasonOutOfScope}, nil
	}

	return Resolution{
		Applies: true,
		Percent: c.DiscountPercentage,
		Code:    strings.ToUpper(c.Code),
	}, nil
}

// inScope reports whether every cart line falls within the coupon's scope.
func inScope(c *Coupon, lines []CartLine) bool {
	switch c.Scope {
	case ScopeAllProducts:
		return true
	case ScopeCategory:
		for _, l := range lines {
			if l.Category != c.ScopeValue {
				return false
			}
		}
		return true
	case ScopeSingleProduct:
		for _, l := range lines {
			if strconv.FormatInt(l.ProductID, 10) != c.ScopeValue {
				return false
			}
		}
		return true
	default:
		return false
	}
}
