package service

import (
	"context"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"freightdesk/api/internal/autherr"
	"freightdesk/api/internal/models"
)

func TestIsDeviceAuthorized(t *testing.T) {
	store := newFakeWhitelistStore(
		models.AdminWhitelistEntry{DeviceID: "plain", Notes: "ops laptop"},
		models.AdminWhitelistEntry{DeviceID: "revoked", Revoked: true},
		models.AdminWhitelistEntry{DeviceID: "bootstrap", IsBootstrap: true},
		models.AdminWhitelistEntry{DeviceID: "legacy", Notes: "Primary Admin Device"},
		models.AdminWhitelistEntry{DeviceID: "legacy-revoked", Notes: "Primary Admin Device", Revoked: true},
	)
	svc := NewWhitelistService(store, zerolog.Nop())

	tests := []struct {
		deviceID string
		want     bool
	}{
		{"plain", true},
		{"revoked", false},
		{"bootstrap", true},
		{"legacy", true},
		{"legacy-revoked", true}, // bootstrap status overrides the revoked flag
		{"absent", false},
	}

	for _, tt := range tests {
		got, err := svc.IsDeviceAuthorized(context.Background(), tt.deviceID)
		require.NoError(t, err)
		assert.Equal(t, tt.want, got, "device %q", tt.deviceID)
	}
}

func TestAddRejectsReservedNotes(t *testing.T) {
	svc := NewWhitelistService(newFakeWhitelistStore(), zerolog.Nop())

	err := svc.Add(context.Background(), "some-device", "Primary Admin Device")
	var authErr *autherr.Error
	require.ErrorAs(t, err, &authErr)
	assert.Equal(t, autherr.CodeValidation, authErr.Code)

	require.NoError(t, svc.Add(context.Background(), "some-device", "warehouse kiosk"))
	ok, err := svc.IsDeviceAuthorized(context.Background(), "some-device")
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestRemoveRevokesEntry(t *testing.T) {
	store := newFakeWhitelistStore(models.AdminWhitelistEntry{DeviceID: "d1"})
	svc := NewWhitelistService(store, zerolog.Nop())

	require.NoError(t, svc.Remove(context.Background(), "d1"))

	ok, err := svc.IsDeviceAuthorized(context.Background(), "d1")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestEnsureBootstrap(t *testing.T) {
	store := newFakeWhitelistStore()
	svc := NewWhitelistService(store, zerolog.Nop())

	require.NoError(t, svc.EnsureBootstrap(context.Background(), "seed-device"))

	ok, err := svc.IsDeviceAuthorized(context.Background(), "seed-device")
	require.NoError(t, err)
	assert.True(t, ok)

	// Bootstrap devices are not removable through the management path.
	assert.Error(t, svc.Remove(context.Background(), "seed-device"))

	// Empty device id is a no-op, not an error.
	require.NoError(t, svc.EnsureBootstrap(context.Background(), ""))
}
