package repository

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"freightdesk/api/internal/models"
)

var (
	ErrLicenseNotFound = errors.New("license not found")
	ErrAlreadyRevoked  = errors.New("license already revoked")
)

type LicenseRepository struct {
	pool *pgxpool.Pool
}

func NewLicenseRepository(pool *pgxpool.Pool) *LicenseRepository {
	return &LicenseRepository{pool: pool}
}

const licenseColumns = `id, license_key, user_id, type, max_devices, expires_at, revoked, revoke_reason, created_at, updated_at`

func (r *LicenseRepository) Create(ctx context.Context, license models.License) error {
	const query = `
		INSERT INTO licenses (
			id, license_key, user_id, type, max_devices, expires_at, revoked, revoke_reason, created_at, updated_at
		) VALUES (
			$1, $2, $3, $4, $5, $6, FALSE, '', NOW(), NOW()
		)
	`

	_, err := r.pool.Exec(ctx, query,
		license.ID,
		license.Key,
		license.UserID,
		license.Type,
		license.MaxDevices,
		license.ExpiresAt,
	)
	return err
}

func (r *LicenseRepository) GetByKey(ctx context.Context, key string) (models.License, error) {
	const query = `SELECT ` + licenseColumns + ` FROM licenses WHERE license_key = $1`
	return r.scanLicense(r.pool.QueryRow(ctx, query, key))
}

func (r *LicenseRepository) GetByID(ctx context.Context, id string) (models.License, error) {
	const query = `SELECT ` + licenseColumns + ` FROM licenses WHERE id = $1`
	return r.scanLicense(r.pool.QueryRow(ctx, query, id))
}

func (r *LicenseRepository) GetByUserID(ctx context.Context, userID string) (models.License, error) {
	const query = `
		SELECT ` + licenseColumns + ` FROM licenses
		WHERE user_id = $1
		ORDER BY created_at DESC
		LIMIT 1
	`
	return r.scanLicense(r.pool.QueryRow(ctx, query, userID))
}

// Revoke marks the license revoked with the given reason. Revocation is
// terminal; revoking an already-revoked license returns ErrAlreadyRevoked
// and leaves the original reason untouched.
func (r *LicenseRepository) Revoke(ctx context.Context, id string, reason string) (models.License, error) {
	const query = `
		UPDATE licenses
		SET revoked = TRUE, revoke_reason = $2, updated_at = NOW()
		WHERE id = $1 AND revoked = FALSE
		RETURNING ` + licenseColumns

	license, err := r.scanLicense(r.pool.QueryRow(ctx, query, id, reason))
	if err == nil {
		return license, nil
	}
	if !errors.Is(err, ErrLicenseNotFound) {
		return models.License{}, err
	}

	// No row updated: either the license does not exist or it is already
	// revoked. Distinguish with a plain read.
	existing, lookupErr := r.GetByID(ctx, id)
	if lookupErr != nil {
		return models.License{}, lookupErr
	}
	if existing.Revoked {
		return existing, ErrAlreadyRevoked
	}
	return models.License{}, ErrLicenseNotFound
}

// RevokedSince lists licenses revoked after the cutoff. The revocation
// reconciliation job uses it to re-seed the redis revocation list.
func (r *LicenseRepository) RevokedSince(ctx context.Context, cutoff time.Time) ([]models.License, error) {
	const query = `
		SELECT ` + licenseColumns + ` FROM licenses
		WHERE revoked = TRUE AND updated_at >= $1
	`
	return r.queryLicenses(ctx, query, cutoff)
}

// ExpiringBefore lists non-revoked licenses whose expiry falls between now
// and the deadline.
func (r *LicenseRepository) ExpiringBefore(ctx context.Context, deadline time.Time) ([]models.License, error) {
	const query = `
		SELECT ` + licenseColumns + ` FROM licenses
		WHERE revoked = FALSE
		  AND expires_at IS NOT NULL
		  AND expires_at > NOW()
		  AND expires_at <= $1
	`
	return r.queryLicenses(ctx, query, deadline)
}

func (r *LicenseRepository) queryLicenses(ctx context.Context, query string, args ...any) ([]models.License, error) {
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var licenses []models.License
	for rows.Next() {
		license, err := r.scanLicense(rows)
		if err != nil {
			return nil, err
		}
		licenses = append(licenses, license)
	}
	return licenses, rows.Err()
}

func (r *LicenseRepository) scanLicense(row pgx.Row) (models.License, error) {
	var license models.License
	if err := row.Scan(
		&license.ID,
		&license.Key,
		&license.UserID,
		&license.Type,
		&license.MaxDevices,
		&license.ExpiresAt,
		&license.Revoked,
		&license.RevokeReason,
		&license.CreatedAt,
		&license.UpdatedAt,
	); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return models.License{}, ErrLicenseNotFound
		}
		return models.License{}, err
	}
	return license, nil
}
