// Package review holds customer product reviews. Reviews are submitted
// publicly and moderated by deletion; there is no approval workflow.
package review

import (
	"context"
	"fmt"
	"time"

	"github.com/go-faster/errors"
)

// ErrNotFound is returned when a requested review does not exist.
var ErrNotFound = errors.New("review not found")

// Review is one customer rating of a product.
type Review struct {
	ID        int64
	ProductID int64
	Name      string
	Rating    int
	Comment   string
	CreatedAt time.Time
}

// InvalidReviewError indicates a missing or out-of-range review field.
type InvalidReviewError struct {
	Field string
}

func (e *InvalidReviewError) Error() string {
	return fmt.Sprintf("review %s is missing or invalid", e.Field)
}

// Validate checks the submitted fields. Ratings are a 1-5 star scale.
func (r *Review) Validate() error {
	if r.Name == "" {
		return &InvalidReviewError{Field: "name"}
	}
	if r.Rating < 1 || r.Rating > 5 {
		return &InvalidReviewError{Field: "rating"}
	}
	return nil
}

// Repository defines persistence operations for reviews.
type Repository interface {
	Create(ctx context.Context, r *Review) error
	ListByProduct(ctx context.Context, productID int64) ([]Review, error)
	Delete(ctx context.Context, id int64) error
}
