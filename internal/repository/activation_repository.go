package repository

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"freightdesk/api/internal/models"
)

var ErrActivationNotFound = errors.New("device activation not found")

type BindResult string

const (
	BindResultNew      BindResult = "BOUND_NEW"
	BindResultMatch    BindResult = "BOUND_MATCH"
	BindResultMismatch BindResult = "BOUND_MISMATCH"
)

// BindOutcome reports how a bind attempt resolved. On BOUND_MISMATCH the
// Activation describes the device that holds the binding, not the caller's.
type BindOutcome struct {
	Result     BindResult
	Activation models.DeviceActivation
}

type ActivationRepository struct {
	pool *pgxpool.Pool
}

func NewActivationRepository(pool *pgxpool.Pool) *ActivationRepository {
	return &ActivationRepository{pool: pool}
}

// BindDevice atomically binds the device to the license on first use, or
// refreshes last_seen when the same device returns. The whole decision is a
// single INSERT guarded by the primary key on license_key, so two
// concurrent first logins can never both bind: the loser's insert conflicts,
// its conditional update matches no row, and it resolves to BOUND_MISMATCH.
// (xmax = 0) distinguishes a fresh insert from a refreshed row.
func (r *ActivationRepository) BindDevice(ctx context.Context, licenseKey string, deviceID string, deviceName string, osInfo string) (BindOutcome, error) {
	const query = `
		INSERT INTO device_activations (
			license_key, device_id, device_name, os_info, activated_at, last_seen_at
		) VALUES (
			$1, $2, $3, $4, NOW(), NOW()
		)
		ON CONFLICT (license_key) DO UPDATE
			SET last_seen_at = NOW()
			WHERE device_activations.device_id = EXCLUDED.device_id
		RETURNING license_key, device_id, device_name, os_info, activated_at, last_seen_at, (xmax = 0) AS inserted
	`

	var (
		activation models.DeviceActivation
		inserted   bool
	)
	err := r.pool.QueryRow(ctx, query, licenseKey, deviceID, deviceName, osInfo).Scan(
		&activation.LicenseKey,
		&activation.DeviceID,
		&activation.DeviceName,
		&activation.OSInfo,
		&activation.ActivatedAt,
		&activation.LastSeenAt,
		&inserted,
	)
	if err == nil {
		result := BindResultMatch
		if inserted {
			result = BindResultNew
		}
		return BindOutcome{Result: result, Activation: activation}, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return BindOutcome{}, err
	}

	// The row exists and belongs to a different device. Re-read it so the
	// rejection can name the bound device.
	bound, err := r.GetByLicenseKey(ctx, licenseKey)
	if err != nil {
		return BindOutcome{}, err
	}
	return BindOutcome{Result: BindResultMismatch, Activation: bound}, nil
}

func (r *ActivationRepository) GetByLicenseKey(ctx context.Context, licenseKey string) (models.DeviceActivation, error) {
	const query = `
		SELECT license_key, device_id, device_name, os_info, activated_at, last_seen_at
		FROM device_activations
		WHERE license_key = $1
	`

	var activation models.DeviceActivation
	if err := r.pool.QueryRow(ctx, query, licenseKey).Scan(
		&activation.LicenseKey,
		&activation.DeviceID,
		&activation.DeviceName,
		&activation.OSInfo,
		&activation.ActivatedAt,
		&activation.LastSeenAt,
	); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return models.DeviceActivation{}, ErrActivationNotFound
		}
		return models.DeviceActivation{}, err
	}
	return activation, nil
}

// DeleteByLicenseKey is the admin "reset device" path: it clears the
// binding so the next successful login rebinds the license.
func (r *ActivationRepository) DeleteByLicenseKey(ctx context.Context, licenseKey string) error {
	const query = `DELETE FROM device_activations WHERE license_key = $1`
	cmd, err := r.pool.Exec(ctx, query, licenseKey)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return ErrActivationNotFound
	}
	return nil
}
