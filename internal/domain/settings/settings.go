// Package settings holds the storefront's mutable site configuration.
package settings

import (
	"context"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"
)

// ErrVersionConflict is returned when an update carries a stale version.
var ErrVersionConflict = errors.New("settings version conflict")

// Settings is the single versioned site configuration record. Version
// increments on every successful update and guards concurrent admin
// writes optimistically.
type Settings struct {
	Version         int64
	USDToBDTRate    decimal.Decimal
	ContactPhone    string
	ContactWhatsapp string
	ContactEmail    string
}

// Validate checks field-level constraints before an update is accepted.
func (s *Settings) Validate() error {
	if s.USDToBDTRate.LessThanOrEqual(decimal.Zero) {
		return errors.New("usd_to_bdt_rate must be positive")
	}
	return nil
}

// Repository provides access to the settings record.
type Repository interface {
	Get(ctx context.Context) (*Settings, error)
	// Update persists s only if the stored version still equals
	// s.Version, then bumps it. Returns ErrVersionConflict otherwise.
	Update(ctx context.Context, s *Settings) error
}
