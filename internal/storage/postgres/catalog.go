package postgres

import (
	"context"
	"fmt"

	"github.com/go-faster/errors"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/raihanetx/submonth-backend/internal/domain/catalog"
)

const (
	listProductsSQL = `SELECT p.id, c.name, p.name, p.slug, p.description,
		COALESCE(p.long_description, ''), COALESCE(p.image, ''), p.stock_out, p.featured
		FROM products p JOIN categories c ON c.id = p.category_id
		ORDER BY p.id`

	getProductByIDSQL = `SELECT p.id, c.name, p.name, p.slug, p.description,
		COALESCE(p.long_description, ''), COALESCE(p.image, ''), p.stock_out, p.featured
		FROM products p JOIN categories c ON c.id = p.category_id
		WHERE p.id = $1`

	getProductsByIDsSQL = `SELECT p.id, c.name, p.name, p.slug, p.description,
		COALESCE(p.long_description, ''), COALESCE(p.image, ''), p.stock_out, p.featured
		FROM products p JOIN categories c ON c.id = p.category_id
		WHERE p.id = ANY($1) ORDER BY p.id`

	getPricingSQL = `SELECT product_id, duration, price
		FROM product_pricing WHERE product_id = ANY($1) ORDER BY id`
)

var _ catalog.Repository = (*CatalogRepository)(nil)

// CatalogRepository implements catalog.Repository backed by PostgreSQL.
// Products and their pricing variants live in separate tables and are
// stitched together here.
type CatalogRepository struct {
	pool *pgxpool.Pool
}

// NewCatalogRepository returns a CatalogRepository that uses the given pool.
func NewCatalogRepository(pool *pgxpool.Pool) *CatalogRepository {
	return &CatalogRepository{pool: pool}
}

// List returns all products with their pricing variants ordered by ID.
func (r *CatalogRepository) List(ctx context.Context) ([]catalog.Product, error) {
	rows, err := r.pool.Query(ctx, listProductsSQL)
	if err != nil {
		return nil, fmt.Errorf("listing products: %w", err)
	}
	products, err := pgx.CollectRows(rows, scanProduct)
	if err != nil {
		return nil, fmt.Errorf("listing products: %w", err)
	}
	if err := r.attachVariants(ctx, products); err != nil {
		return nil, err
	}
	return products, nil
}

// GetByID returns a single product with its pricing variants.
func (r *CatalogRepository) GetByID(ctx context.Context, id int64) (*catalog.Product, error) {
	rows, err := r.pool.Query(ctx, getProductByIDSQL, id)
	if err != nil {
		return nil, fmt.Errorf("getting product %d: %w", id, err)
	}

	p, err := pgx.CollectExactlyOneRow(rows, scanProduct)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, catalog.ErrNotFound
		}
		return nil, fmt.Errorf("getting product %d: %w", id, err)
	}

	products := []catalog.Product{p}
	if err := r.attachVariants(ctx, products); err != nil {
		return nil, err
	}
	return &products[0], nil
}

// GetByIDs returns products matching any of the given IDs. Unknown IDs are
// silently omitted.
func (r *CatalogRepository) GetByIDs(ctx context.Context, ids []int64) ([]catalog.Product, error) {
	rows, err := r.pool.Query(ctx, getProductsByIDsSQL, ids)
	if err != nil {
		return nil, fmt.Errorf("getting products by ids: %w", err)
	}
	products, err := pgx.CollectRows(rows, scanProduct)
	if err != nil {
		return nil, fmt.Errorf("getting products by ids: %w", err)
	}
	if err := r.attachVariants(ctx, products); err != nil {
		return nil, err
	}
	return products, nil
}

// attachVariants loads pricing variants for the given products in one query
// and attaches them in place.
func (r *CatalogRepository) attachVariants(ctx context.Context, products []catalog.Product) error {
	if len(products) == 0 {
		return nil
	}

	ids := make([]int64, len(products))
	index := make(map[int64]*catalog.Product, len(products))
	for i := range products {
		ids[i] = products[i].ID
		index[products[i].ID] = &products[i]
	}

	rows, err := r.pool.Query(ctx, getPricingSQL, ids)
	if err != nil {
		return fmt.Errorf("getting product pricing: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			productID int64
			v         catalog.PriceVariant
		)
		if err := rows.Scan(&productID, &v.Duration, &v.Price); err != nil {
			return fmt.Errorf("scanning product pricing: %w", err)
		}
		if p, ok := index[productID]; ok {
			p.Variants = append(p.Variants, v)
		}
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("getting product pricing: %w", err)
	}
	return nil
}

func scanProduct(row pgx.CollectableRow) (catalog.Product, error) {
	var p catalog.Product
	err := row.Scan(
		&p.ID, &p.Category, &p.Name, &p.Slug, &p.Description,
		&p.LongDescription, &p.Image, &p.StockOut, &p.Featured,
	)
	return p, err
}
