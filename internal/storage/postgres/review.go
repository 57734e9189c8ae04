package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/raihanetx/submonth-backend/internal/domain/review"
)

const (
	createReviewSQL = `INSERT INTO product_reviews (product_id, name, rating, comment)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at`

	listReviewsByProductSQL = `SELECT id, product_id, name, rating, comment, created_at
		FROM product_reviews
		WHERE product_id = $1
		ORDER BY created_at DESC`

	deleteReviewSQL = `DELETE FROM product_reviews WHERE id = $1`
)

var _ review.Repository = (*ReviewRepository)(nil)

// ReviewRepository implements review.Repository backed by PostgreSQL.
type ReviewRepository struct {
	pool *pgxpool.Pool
}

// NewReviewRepository returns a ReviewRepository that uses the given pool.
func NewReviewRepository(pool *pgxpool.Pool) *ReviewRepository {
	return &ReviewRepository{pool: pool}
}

// Create inserts r and fills in its generated ID and creation time.
func (r *ReviewRepository) Create(ctx context.Context, rv *review.Review) error {
	err := r.pool.QueryRow(ctx, createReviewSQL,
		rv.ProductID, rv.Name, rv.Rating, rv.Comment,
	).Scan(&rv.ID, &rv.CreatedAt)
	if err != nil {
		return fmt.Errorf("creating review: %w", err)
	}
	return nil
}

// ListByProduct returns all reviews for a product, newest first.
func (r *ReviewRepository) ListByProduct(ctx context.Context, productID int64) ([]review.Review, error) {
	rows, err := r.pool.Query(ctx, listReviewsByProductSQL, productID)
	if err != nil {
		return nil, fmt.Errorf("listing reviews: %w", err)
	}

	reviews, err := pgx.CollectRows(rows, scanReview)
	if err != nil {
		return nil, fmt.Errorf("scanning reviews: %w", err)
	}
	return reviews, nil
}

// Delete removes a review. Returns review.ErrNotFound when no row matches.
func (r *ReviewRepository) Delete(ctx context.Context, id int64) error {
	tag, err := r.pool.Exec(ctx, deleteReviewSQL, id)
	if err != nil {
		return fmt.Errorf("deleting review: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return review.ErrNotFound
	}
	return nil
}

func scanReview(row pgx.CollectableRow) (review.Review, error) {
	var rv review.Review
	err := row.Scan(&rv.ID, &rv.ProductID, &rv.Name, &rv.Rating, &rv.Comment, &rv.CreatedAt)
	return rv, err
}
