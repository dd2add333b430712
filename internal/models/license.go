package models

import "time"

type LicenseType string

const (
	LicenseTypeStandard LicenseType = "STANDARD"
	LicenseTypePremium  LicenseType = "PREMIUM"
)

type LicenseState string

const (
	LicenseStateActive  LicenseState = "ACTIVE"
	LicenseStateExpired LicenseState = "EXPIRED"
	LicenseStateRevoked LicenseState = "REVOKED"
)

type License struct {
	ID           string
	Key          string
	UserID       string
	Type         LicenseType
	MaxDevices   int
	ExpiresAt    *time.Time
	Revoked      bool
	RevokeReason string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// StateAt computes the lifecycle state of the license at the given
// instant. Revocation is terminal and dominates expiry; a nil ExpiresAt
// means the license never expires.
func (l License) StateAt(now time.Time) LicenseState {
	if l.Revoked {
		return LicenseStateRevoked
	}
	if l.ExpiresAt != nil && l.ExpiresAt.Before(now) {
		return LicenseStateExpired
	}
	return LicenseStateActive
}

// DeviceActivation is the write-once binding between a license key and a
// device fingerprint. At most one row exists per license key; rebinding
// happens only through the admin reset path, which deletes the row.
type DeviceActivation struct {
	LicenseKey  string
	DeviceID    string
	DeviceName  string
	OSInfo      string
	ActivatedAt time.Time
	LastSeenAt  time.Time
}

// AdminWhitelistEntry authorizes a device to exercise administrator
// privileges. It is keyed by device id and independent of any license or
// user. IsBootstrap is set only by the seed path, never by the
// whitelist-management endpoints.
type AdminWhitelistEntry struct {
	DeviceID    string
	Notes       string
	IsBootstrap bool
	Revoked     bool
	CreatedAt   time.Time
	UpdatedAt   time.Time
}
