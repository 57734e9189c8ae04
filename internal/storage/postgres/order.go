package postgres

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/raihanetx/submonth-backend/internal/domain/order"
)

const (
	createOrderSQL = `INSERT INTO orders (id, order_number, customer_name, customer_phone, customer_email,
		payment_method, payment_trx_id, coupon_code, subtotal, discount, total, status, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, now())
		RETURNING created_at`

	createOrderItemSQL = `INSERT INTO order_items (order_id, product_id, product_name, quantity, duration, price_at_purchase)
		VALUES ($1, $2, $3, $4, $5, $6)`

	getOrdersByNumbersSQL = `SELECT id, order_number, customer_name, customer_phone, customer_email,
		payment_method, payment_trx_id, coupon_code, subtotal, discount, total,
		status, access_email_sent, created_at
		FROM orders WHERE order_number = ANY($1) ORDER BY created_at DESC`

	getOrderItemsSQL = `SELECT order_id, product_id, product_name, quantity, duration, price_at_purchase
		FROM order_items WHERE order_id = ANY($1) ORDER BY id`

	updateOrderStatusSQL = `UPDATE orders SET status = $3
		WHERE order_number = $1 AND status = $2`

	orderExistsSQL = `SELECT EXISTS (SELECT 1 FROM orders WHERE order_number = $1)`

	markAccessEmailSentSQL = `UPDATE orders SET access_email_sent = TRUE
		WHERE order_number = $1`
)

var _ order.Repository = (*OrderRepository)(nil)

// OrderRepository implements order.Repository backed by PostgreSQL.
type OrderRepository struct {
	pool *pgxpool.Pool
}

// NewOrderRepository returns an OrderRepository that uses the given pool.
func NewOrderRepository(pool *pgxpool.Pool) *OrderRepository {
	return &OrderRepository{pool: pool}
}

// Create persists the order header and its line items in one transaction.
// Either everything is written or nothing is.
func (r *OrderRepository) Create(ctx context.Context, o *order.Order) error {
	err := pgx.BeginFunc(ctx, r.pool, func(tx pgx.Tx) error {
		err := tx.QueryRow(ctx, createOrderSQL,
			o.ID, o.Number, o.Customer.Name, o.Customer.Phone, o.Customer.Email,
			o.Payment.Method, o.Payment.TrxID, nullable(o.CouponCode),
			o.Subtotal, o.Discount, o.Total, string(o.Status),
		).Scan(&o.CreatedAt)
		if err != nil {
			return fmt.Errorf("inserting order header: %w", err)
		}

		for _, it := range o.Items {
			_, err := tx.Exec(ctx, createOrderItemSQL,
				o.ID, it.ProductID, it.ProductName, it.Quantity, it.Duration, it.UnitPrice,
			)
			if err != nil {
				return fmt.Errorf("inserting order item for product %d: %w", it.ProductID, err)
			}
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("creating order %q: %w", o.Number, err)
	}
	return nil
}

// GetByNumber returns a single order with its line items.
func (r *OrderRepository) GetByNumber(ctx context.Context, number string) (*order.Order, error) {
	orders, err := r.GetByNumbers(ctx, []string{number})
	if err != nil {
		return nil, err
	}
	if len(orders) == 0 {
		return nil, order.ErrNotFound
	}
	return &orders[0], nil
}

// GetByNumbers returns full order records for the given order numbers,
// newest first. Unknown numbers are silently omitted.
func (r *OrderRepository) GetByNumbers(ctx context.Context, numbers []string) ([]order.Order, error) {
	rows, err := r.pool.Query(ctx, getOrdersByNumbersSQL, numbers)
	if err != nil {
		return nil, fmt.Errorf("getting orders by numbers: %w", err)
	}
	orders, err := pgx.CollectRows(rows, scanOrder)
	if err != nil {
		return nil, fmt.Errorf("getting orders by numbers: %w", err)
	}
	if err := r.attachItems(ctx, orders); err != nil {
		return nil, err
	}
	return orders, nil
}

// UpdateStatus moves an order from one status to another with a
// compare-and-set on the current status. Returns order.ErrStatusConflict
// when the stored status no longer matches from, and order.ErrNotFound
// when the order does not exist.
func (r *OrderRepository) UpdateStatus(ctx context.Context, number string, from, to order.Status) error {
	tag, err := r.pool.Exec(ctx, updateOrderStatusSQL, number, string(from), string(to))
	if err != nil {
		return fmt.Errorf("updating status for order %q: %w", number, err)
	}
	if tag.RowsAffected() > 0 {
		return nil
	}

	var exists bool
	if err := r.pool.QueryRow(ctx, orderExistsSQL, number).Scan(&exists); err != nil {
		return fmt.Errorf("checking order %q: %w", number, err)
	}
	if !exists {
		return order.ErrNotFound
	}
	return order.ErrStatusConflict
}

// MarkAccessEmailSent sets the access email flag for the given order.
func (r *OrderRepository) MarkAccessEmailSent(ctx context.Context, number string) error {
	tag, err := r.pool.Exec(ctx, markAccessEmailSentSQL, number)
	if err != nil {
		return fmt.Errorf("marking access email sent for order %q: %w", number, err)
	}
	if tag.RowsAffected() == 0 {
		return order.ErrNotFound
	}
	return nil
}

// attachItems loads line items for the given orders in one query and
// attaches them in place.
func (r *OrderRepository) attachItems(ctx context.Context, orders []order.Order) error {
	if len(orders) == 0 {
		return nil
	}

	ids := make([]uuid.UUID, len(orders))
	index := make(map[uuid.UUID]*order.Order, len(orders))
	for i := range orders {
		ids[i] = orders[i].ID
		index[orders[i].ID] = &orders[i]
	}

	rows, err := r.pool.Query(ctx, getOrderItemsSQL, ids)
	if err != nil {
		return fmt.Errorf("getting order items: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			orderID uuid.UUID
			it      order.LineItem
		)
		err := rows.Scan(&orderID, &it.ProductID, &it.ProductName, &it.Quantity, &it.Duration, &it.UnitPrice)
		if err != nil {
			return fmt.Errorf("scanning order item: %w", err)
		}
		if o, ok := index[orderID]; ok {
			o.Items = append(o.Items, it)
		}
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("getting order items: %w", err)
	}
	return nil
}

func scanOrder(row pgx.CollectableRow) (order.Order, error) {
	var (
		o          order.Order
		status     string
		couponCode *string
	)
	err := row.Scan(
		&o.ID, &o.Number, &o.Customer.Name, &o.Customer.Phone, &o.Customer.Email,
		&o.Payment.Method, &o.Payment.TrxID, &couponCode,
		&o.Subtotal, &o.Discount, &o.Total,
		&status, &o.AccessEmailSent, &o.CreatedAt,
	)
	o.Status = order.Status(status)
	if couponCode != nil {
		o.CouponCode = *couponCode
	}
	return o, err
}

// nullable maps an empty string to SQL NULL.
func nullable(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
