package service

import (
	"context"
	"errors"

	"github.com/rs/zerolog"

	"freightdesk/api/internal/autherr"
	"freightdesk/api/internal/models"
	"freightdesk/api/internal/repository"
)

// legacyBootstrapMarker is the notes string older deployments used to flag
// the seed admin device before the explicit is_bootstrap column existed.
// Rows carrying it are still honored at gate time, but the management
// endpoints refuse to write it so free-text notes can never mint a
// bootstrap device.
const legacyBootstrapMarker = "Primary Admin Device"

// WhitelistService answers the admin access gate: whether a given device
// may exercise administrator privileges. Privilege is a device property,
// checked on top of the user's role claim.
type WhitelistService struct {
	entries WhitelistStore
	log     zerolog.Logger
}

func NewWhitelistService(entries WhitelistStore, log zerolog.Logger) *WhitelistService {
	return &WhitelistService{entries: entries, log: log}
}

func (s *WhitelistService) IsDeviceAuthorized(ctx context.Context, deviceID string) (bool, error) {
	entry, err := s.entries.GetByDeviceID(ctx, deviceID)
	if err != nil {
		if errors.Is(err, repository.ErrWhitelistEntryNotFound) {
			return false, nil
		}
		return false, err
	}

	if entry.IsBootstrap || entry.Notes == legacyBootstrapMarker {
		return true, nil
	}
	return !entry.Revoked, nil
}

func (s *WhitelistService) Add(ctx context.Context, deviceID string, notes string) error {
	if deviceID == "" {
		return autherr.Validation("deviceId is required")
	}
	if notes == legacyBootstrapMarker {
		return autherr.Validation("reserved notes value")
	}
	return s.entries.Upsert(ctx, deviceID, notes)
}

func (s *WhitelistService) Remove(ctx context.Context, deviceID string) error {
	return s.entries.Revoke(ctx, deviceID)
}

func (s *WhitelistService) List(ctx context.Context) ([]models.AdminWhitelistEntry, error) {
	return s.entries.List(ctx)
}

// EnsureBootstrap seeds the first administrative device at process start,
// breaking the chicken-and-egg of needing an admin device to whitelist
// the first admin device.
func (s *WhitelistService) EnsureBootstrap(ctx context.Context, deviceID string) error {
	if deviceID == "" {
		return nil
	}
	if err := s.entries.SeedBootstrap(ctx, deviceID, "bootstrap admin device"); err != nil {
		return err
	}
	s.log.Info().Str("device_id", deviceID).Msg("bootstrap admin device ensured")
	return nil
}
