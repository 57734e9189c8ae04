package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/raihanetx/submonth-backend/internal/domain/settings"
)

const (
	getSettingsSQL = `SELECT version, usd_to_bdt_rate, contact_phone, contact_whatsapp, contact_email
		FROM site_settings WHERE id = 1`

	updateSettingsSQL = `UPDATE site_settings
		SET version = version + 1, usd_to_bdt_rate = $2, contact_phone = $3,
		    contact_whatsapp = $4, contact_email = $5, updated_at = now()
		WHERE id = 1 AND version = $1`
)

var _ settings.Repository = (*SettingsRepository)(nil)

// SettingsRepository implements settings.Repository backed by PostgreSQL.
// The settings live in a single fixed row seeded by the schema migration.
type SettingsRepository struct {
	pool *pgxpool.Pool
}

// NewSettingsRepository returns a SettingsRepository that uses the given pool.
func NewSettingsRepository(pool *pgxpool.Pool) *SettingsRepository {
	return &SettingsRepository{pool: pool}
}

// Get returns the current settings record.
func (r *SettingsRepository) Get(ctx context.Context) (*settings.Settings, error) {
	var s settings.Settings
	err := r.pool.QueryRow(ctx, getSettingsSQL).Scan(
		&s.Version, &s.USDToBDTRate, &s.ContactPhone, &s.ContactWhatsapp, &s.ContactEmail,
	)
	if err != nil {
		return nil, fmt.Errorf("getting settings: %w", err)
	}
	return &s, nil
}

// Update persists s with a compare-and-set on the version and bumps it on
// success. Returns settings.ErrVersionConflict on a stale version.
func (r *SettingsRepository) Update(ctx context.Context, s *settings.Settings) error {
	tag, err := r.pool.Exec(ctx, updateSettingsSQL,
		s.Version, s.USDToBDTRate, s.ContactPhone, s.ContactWhatsapp, s.ContactEmail,
	)
	if err != nil {
		return fmt.Errorf("updating settings: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return settings.ErrVersionConflict
	}
	s.Version++
	return nil
}
