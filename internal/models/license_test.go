package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLicenseStateAt(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	yesterday := now.Add(-24 * time.Hour)
	tomorrow := now.Add(24 * time.Hour)

	tests := []struct {
		name    string
		license License
		want    LicenseState
	}{
		{
			name:    "active with future expiry",
			license: License{ExpiresAt: &tomorrow},
			want:    LicenseStateActive,
		},
		{
			name:    "active with no expiry",
			license: License{},
			want:    LicenseStateActive,
		},
		{
			name:    "expired",
			license: License{ExpiresAt: &yesterday},
			want:    LicenseStateExpired,
		},
		{
			name:    "revoked dominates future expiry",
			license: License{Revoked: true, ExpiresAt: &tomorrow},
			want:    LicenseStateRevoked,
		},
		{
			name:    "revoked dominates past expiry",
			license: License{Revoked: true, ExpiresAt: &yesterday},
			want:    LicenseStateRevoked,
		},
		{
			name:    "revoked with no expiry",
			license: License{Revoked: true},
			want:    LicenseStateRevoked,
		},
		{
			name:    "expiry exactly now is still active",
			license: License{ExpiresAt: &now},
			want:    LicenseStateActive,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.license.StateAt(now))
		})
	}
}
