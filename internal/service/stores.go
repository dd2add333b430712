package service

import (
	"context"
	"time"

	"freightdesk/api/internal/models"
	"freightdesk/api/internal/repository"
)

// Narrow views of the pgx repositories, so the pipeline logic is testable
// against in-memory fakes. The concrete repositories satisfy these
// unchanged.

type UserStore interface {
	Create(ctx context.Context, user models.User) error
	FindByEmail(ctx context.Context, email string) (models.User, error)
	GetByID(ctx context.Context, id string) (models.User, error)
	UpdateStatus(ctx context.Context, id string, status models.UserStatus) error
}

type LicenseStore interface {
	Create(ctx context.Context, license models.License) error
	GetByKey(ctx context.Context, key string) (models.License, error)
	GetByID(ctx context.Context, id string) (models.License, error)
	GetByUserID(ctx context.Context, userID string) (models.License, error)
	Revoke(ctx context.Context, id string, reason string) (models.License, error)
	RevokedSince(ctx context.Context, cutoff time.Time) ([]models.License, error)
	ExpiringBefore(ctx context.Context, deadline time.Time) ([]models.License, error)
}

type ActivationStore interface {
	BindDevice(ctx context.Context, licenseKey string, deviceID string, deviceName string, osInfo string) (repository.BindOutcome, error)
	GetByLicenseKey(ctx context.Context, licenseKey string) (models.DeviceActivation, error)
	DeleteByLicenseKey(ctx context.Context, licenseKey string) error
}

type WhitelistStore interface {
	Upsert(ctx context.Context, deviceID string, notes string) error
	SeedBootstrap(ctx context.Context, deviceID string, notes string) error
	GetByDeviceID(ctx context.Context, deviceID string) (models.AdminWhitelistEntry, error)
	List(ctx context.Context) ([]models.AdminWhitelistEntry, error)
	Revoke(ctx context.Context, deviceID string) error
}

// RateLimiter gates login attempts per caller key. Implementations fail
// open: an unreachable backend must not lock everyone out. Reset clears
// the caller's quota after a successful login.
type RateLimiter interface {
	Allow(ctx context.Context, key string) (bool, error)
	Reset(ctx context.Context, key string)
}

// EventPublisher hands security-relevant events to external consumers.
// Publishing is best-effort; failures are logged, never surfaced.
type EventPublisher interface {
	Publish(ctx context.Context, event string, fields map[string]any)
}
