package service

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"freightdesk/api/internal/autherr"
	"freightdesk/api/internal/cache"
	"freightdesk/api/internal/config"
	"freightdesk/api/internal/models"
	"freightdesk/api/internal/repository"
	"freightdesk/api/internal/security"
)

const validationCacheTTL = 30 * time.Second

// LicenseService covers the license lifecycle endpoints: issue, validate,
// revoke, and the admin device-binding reset.
type LicenseService struct {
	licenses    LicenseStore
	activations ActivationStore
	users       UserStore
	revocations *cache.RevocationList
	rdb         *redis.Client
	events      EventPublisher
	cfg         *config.AppConfig
	log         zerolog.Logger
}

func NewLicenseService(
	licenses LicenseStore,
	activations ActivationStore,
	users UserStore,
	revocations *cache.RevocationList,
	rdb *redis.Client,
	events EventPublisher,
	cfg *config.AppConfig,
	log zerolog.Logger,
) *LicenseService {
	return &LicenseService{
		licenses:    licenses,
		activations: activations,
		users:       users,
		revocations: revocations,
		rdb:         rdb,
		events:      events,
		cfg:         cfg,
		log:         log,
	}
}

type IssueInput struct {
	UserID     string
	Type       models.LicenseType
	MaxDevices int
	ExpiresAt  *time.Time
}

func (s *LicenseService) Issue(ctx context.Context, input IssueInput) (models.License, error) {
	if input.UserID == "" {
		return models.License{}, autherr.Validation("userId is required")
	}
	if input.Type == "" {
		input.Type = models.LicenseTypeStandard
	}
	if input.Type != models.LicenseTypeStandard && input.Type != models.LicenseTypePremium {
		return models.License{}, autherr.Validation("type must be STANDARD or PREMIUM")
	}
	if input.MaxDevices <= 0 {
		input.MaxDevices = 1
	}

	if _, err := s.users.GetByID(ctx, input.UserID); err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return models.License{}, autherr.Validation("unknown userId")
		}
		return models.License{}, autherr.Internal(err)
	}

	key, err := security.GenerateLicenseKey()
	if err != nil {
		return models.License{}, autherr.Internal(err)
	}

	license := models.License{
		ID:         uuid.NewString(),
		Key:        key,
		UserID:     input.UserID,
		Type:       input.Type,
		MaxDevices: input.MaxDevices,
		ExpiresAt:  input.ExpiresAt,
	}

	if err := s.licenses.Create(ctx, license); err != nil {
		return models.License{}, autherr.Internal(err)
	}
	return license, nil
}

// ValidationResult is the read-only answer other services consume. It
// never exposes the owning user.
type ValidationResult struct {
	Valid     bool                `json:"valid"`
	State     models.LicenseState `json:"state"`
	Type      models.LicenseType  `json:"type"`
	ExpiresAt *time.Time          `json:"expiresAt,omitempty"`
	Reason    string              `json:"reason,omitempty"`
}

func (s *LicenseService) Validate(ctx context.Context, key string) (ValidationResult, error) {
	if key == "" {
		return ValidationResult{}, autherr.Validation("license key is required")
	}

	// Seeded keys predate the generated XXXX-XXXX-XXXX-XXXX format, so
	// non-canonical keys go through the lookup rather than being rejected.
	cacheKey := "license:validate:" + key
	if s.rdb != nil {
		if raw, err := s.rdb.Get(ctx, cacheKey).Result(); err == nil {
			var cached ValidationResult
			if json.Unmarshal([]byte(raw), &cached) == nil {
				return cached, nil
			}
		}
	}

	license, err := s.licenses.GetByKey(ctx, key)
	if err != nil {
		if errors.Is(err, repository.ErrLicenseNotFound) {
			return ValidationResult{}, repository.ErrLicenseNotFound
		}
		return ValidationResult{}, autherr.Internal(err)
	}

	state := license.StateAt(time.Now())
	result := ValidationResult{
		Valid:     state == models.LicenseStateActive,
		State:     state,
		Type:      license.Type,
		ExpiresAt: license.ExpiresAt,
	}
	switch state {
	case models.LicenseStateRevoked:
		result.Reason = license.RevokeReason
	case models.LicenseStateExpired:
		result.Reason = "expired"
	}

	if s.rdb != nil {
		if raw, err := json.Marshal(result); err == nil {
			if err := s.rdb.Set(ctx, cacheKey, raw, validationCacheTTL).Err(); err != nil {
				s.log.Warn().Err(err).Msg("cache validation result failed")
			}
		}
	}

	return result, nil
}

func (s *LicenseService) Revoke(ctx context.Context, id string, reason string) (models.License, error) {
	if reason == "" {
		return models.License{}, autherr.Validation("reason is required")
	}

	license, err := s.licenses.Revoke(ctx, id, reason)
	if err != nil {
		if errors.Is(err, repository.ErrAlreadyRevoked) || errors.Is(err, repository.ErrLicenseNotFound) {
			return license, err
		}
		return models.License{}, autherr.Internal(err)
	}

	if err := s.revocations.Add(ctx, license.Key, reason); err != nil {
		s.log.Error().Err(err).Str("license_key", license.Key).Msg("revocation list write failed")
	}
	if s.events != nil {
		s.events.Publish(ctx, "license_revoked", map[string]any{
			"license_key": license.Key,
			"reason":      reason,
		})
	}
	return license, nil
}

// ResetDevice clears a license's device binding. This is the only path
// that ever unbinds a device; the next successful login rebinds.
func (s *LicenseService) ResetDevice(ctx context.Context, licenseKey string) error {
	if err := s.activations.DeleteByLicenseKey(ctx, licenseKey); err != nil {
		return err
	}
	if s.events != nil {
		s.events.Publish(ctx, "device_binding_reset", map[string]any{
			"license_key": licenseKey,
		})
	}
	return nil
}
