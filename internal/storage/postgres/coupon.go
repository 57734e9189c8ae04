package postgres

import (
	"context"
	"fmt"

	"github.com/go-faster/errors"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/raihanetx/submonth-backend/internal/domain/coupon"
)

const (
	// The active flag is fetched rather than filtered on so the resolver
	// can tell an inactive coupon apart from an unknown one.
	getCouponByCodeSQL = `SELECT code, discount_percentage, is_active, scope, scope_value
	FROM coupons WHERE UPPER(code) = UPPER($1)`

	upsertCouponSQL = `INSERT INTO coupons (code, discount_percentage, is_active, scope, scope_value)
	VALUES (UPPER($1), $2, $3, $4, $5)
	ON CONFLICT (code) DO UPDATE SET
		discount_percentage = EXCLUDED.discount_percentage,
		is_active = EXCLUDED.is_active,
		scope = EXCLUDED.scope,
		scope_value = EXCLUDED.scope_value`
)

var _ coupon.Repository = (*CouponRepository)(nil)

// CouponRepository implements coupon.Repository backed by PostgreSQL.
type CouponRepository struct {
	pool *pgxpool.Pool
}

// NewCouponRepository returns a CouponRepository that uses the given pool.
func NewCouponRepository(pool *pgxpool.Pool) *CouponRepository {
	return &CouponRepository{pool: pool}
}

// FindByCode looks up a coupon by its code (case-insensitive).
// Returns coupon.ErrNotFound when no such code exists.
func (r *CouponRepository) FindByCode(ctx context.Context, code string) (*coupon.Coupon, error) {
	rows, err := r.pool.Query(ctx, getCouponByCodeSQL, code)
	if err != nil {
		return nil, fmt.Errorf("finding coupon by code %q: %w", code, err)
	}

	c, err := pgx.CollectExactlyOneRow(rows, scanCoupon)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, coupon.ErrNotFound
		}
		return nil, fmt.Errorf("finding coupon by code %q: %w", code, err)
	}
	return &c, nil
}

// Upsert inserts or replaces a coupon rule. Used by the seed and import
// tools; the order engine itself never writes coupons.
func (r *CouponRepository) Upsert(ctx context.Context, c *coupon.Coupon) error {
	_, err := r.pool.Exec(ctx, upsertCouponSQL,
		c.Code, c.DiscountPercentage, c.Active, string(c.Scope), nullable(c.ScopeValue),
	)
	if err != nil {
		return fmt.Errorf("upserting coupon %q: %w", c.Code, err)
	}
	return nil
}

func scanCoupon(row pgx.CollectableRow) (coupon.Coupon, error) {
	var (
		c          coupon.Coupon
		scope      string
		scopeValue *string
	)
	err := row.Scan(&c.Code, &c.DiscountPercentage, &c.Active, &scope, &scopeValue)
	c.Scope = coupon.Scope(scope)
	if scopeValue != nil {
		c.ScopeValue = *scopeValue
	}
	return c, err
}
