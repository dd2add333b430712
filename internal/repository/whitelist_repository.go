package repository

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"freightdesk/api/internal/models"
)

var ErrWhitelistEntryNotFound = errors.New("whitelist entry not found")

type WhitelistRepository struct {
	pool *pgxpool.Pool
}

func NewWhitelistRepository(pool *pgxpool.Pool) *WhitelistRepository {
	return &WhitelistRepository{pool: pool}
}

// Upsert adds or re-enables a whitelist entry. is_bootstrap is never
// touched here; only the seed path sets it.
func (r *WhitelistRepository) Upsert(ctx context.Context, deviceID string, notes string) error {
	const query = `
		INSERT INTO admin_whitelist (
			device_id, notes, is_bootstrap, revoked, created_at, updated_at
		) VALUES (
			$1, $2, FALSE, FALSE, NOW(), NOW()
		)
		ON CONFLICT (device_id) DO UPDATE
			SET notes = EXCLUDED.notes, revoked = FALSE, updated_at = NOW()
	`
	_, err := r.pool.Exec(ctx, query, deviceID, notes)
	return err
}

// SeedBootstrap provisions the bootstrap admin device. It is called from
// process startup only; the management endpoints cannot reach it.
func (r *WhitelistRepository) SeedBootstrap(ctx context.Context, deviceID string, notes string) error {
	const query = `
		INSERT INTO admin_whitelist (
			device_id, notes, is_bootstrap, revoked, created_at, updated_at
		) VALUES (
			$1, $2, TRUE, FALSE, NOW(), NOW()
		)
		ON CONFLICT (device_id) DO UPDATE
			SET is_bootstrap = TRUE, revoked = FALSE, updated_at = NOW()
	`
	_, err := r.pool.Exec(ctx, query, deviceID, notes)
	return err
}

func (r *WhitelistRepository) GetByDeviceID(ctx context.Context, deviceID string) (models.AdminWhitelistEntry, error) {
	const query = `
		SELECT device_id, notes, is_bootstrap, revoked, created_at, updated_at
		FROM admin_whitelist
		WHERE device_id = $1
	`

	var entry models.AdminWhitelistEntry
	if err := r.pool.QueryRow(ctx, query, deviceID).Scan(
		&entry.DeviceID,
		&entry.Notes,
		&entry.IsBootstrap,
		&entry.Revoked,
		&entry.CreatedAt,
		&entry.UpdatedAt,
	); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return models.AdminWhitelistEntry{}, ErrWhitelistEntryNotFound
		}
		return models.AdminWhitelistEntry{}, err
	}
	return entry, nil
}

func (r *WhitelistRepository) List(ctx context.Context) ([]models.AdminWhitelistEntry, error) {
	const query = `
		SELECT device_id, notes, is_bootstrap, revoked, created_at, updated_at
		FROM admin_whitelist
		ORDER BY created_at
	`

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []models.AdminWhitelistEntry
	for rows.Next() {
		var entry models.AdminWhitelistEntry
		if err := rows.Scan(
			&entry.DeviceID,
			&entry.Notes,
			&entry.IsBootstrap,
			&entry.Revoked,
			&entry.CreatedAt,
			&entry.UpdatedAt,
		); err != nil {
			return nil, err
		}
		entries = append(entries, entry)
	}
	return entries, rows.Err()
}

// Revoke soft-deletes an entry. Bootstrap entries cannot be revoked
// through this path; removing the bootstrap device is a seed-level
// operation.
func (r *WhitelistRepository) Revoke(ctx context.Context, deviceID string) error {
	const query = `
		UPDATE admin_whitelist
		SET revoked = TRUE, updated_at = NOW()
		WHERE device_id = $1 AND is_bootstrap = FALSE
	`
	cmd, err := r.pool.Exec(ctx, query, deviceID)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return ErrWhitelistEntryNotFound
	}
	return nil
}
