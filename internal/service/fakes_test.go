package service

import (
	"context"
	"sync"
	"time"

	"freightdesk/api/internal/models"
	"freightdesk/api/internal/repository"
)

type fakeUserStore struct {
	mu    sync.Mutex
	users map[string]models.User // by id
}

func newFakeUserStore(users ...models.User) *fakeUserStore {
	s := &fakeUserStore{users: make(map[string]models.User)}
	for _, u := range users {
		s.users[u.ID] = u
	}
	return s
}

func (s *fakeUserStore) Create(_ context.Context, user models.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, existing := range s.users {
		if existing.Email == user.Email {
			return repository.ErrDuplicateEmail
		}
	}
	s.users[user.ID] = user
	return nil
}

func (s *fakeUserStore) FindByEmail(_ context.Context, email string) (models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, user := range s.users {
		if user.Email == email {
			return user, nil
		}
	}
	return models.User{}, repository.ErrUserNotFound
}

func (s *fakeUserStore) GetByID(_ context.Context, id string) (models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if user, ok := s.users[id]; ok {
		return user, nil
	}
	return models.User{}, repository.ErrUserNotFound
}

func (s *fakeUserStore) UpdateStatus(_ context.Context, id string, status models.UserStatus) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	user, ok := s.users[id]
	if !ok {
		return repository.ErrUserNotFound
	}
	user.Status = status
	s.users[id] = user
	return nil
}

type fakeLicenseStore struct {
	mu       sync.Mutex
	licenses map[string]models.License // by id
}

func newFakeLicenseStore(licenses ...models.License) *fakeLicenseStore {
	s := &fakeLicenseStore{licenses: make(map[string]models.License)}
	for _, l := range licenses {
		s.licenses[l.ID] = l
	}
	return s
}

func (s *fakeLicenseStore) Create(_ context.Context, license models.License) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.licenses[license.ID] = license
	return nil
}

func (s *fakeLicenseStore) GetByKey(_ context.Context, key string) (models.License, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, license := range s.licenses {
		if license.Key == key {
			return license, nil
		}
	}
	return models.License{}, repository.ErrLicenseNotFound
}

func (s *fakeLicenseStore) GetByID(_ context.Context, id string) (models.License, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if license, ok := s.licenses[id]; ok {
		return license, nil
	}
	return models.License{}, repository.ErrLicenseNotFound
}

func (s *fakeLicenseStore) GetByUserID(_ context.Context, userID string) (models.License, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, license := range s.licenses {
		if license.UserID == userID {
			return license, nil
		}
	}
	return models.License{}, repository.ErrLicenseNotFound
}

func (s *fakeLicenseStore) Revoke(_ context.Context, id string, reason string) (models.License, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	license, ok := s.licenses[id]
	if !ok {
		return models.License{}, repository.ErrLicenseNotFound
	}
	if license.Revoked {
		return license, repository.ErrAlreadyRevoked
	}
	license.Revoked = true
	license.RevokeReason = reason
	license.UpdatedAt = time.Now()
	s.licenses[id] = license
	return license, nil
}

func (s *fakeLicenseStore) RevokedSince(_ context.Context, cutoff time.Time) ([]models.License, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []models.License
	for _, license := range s.licenses {
		if license.Revoked && !license.UpdatedAt.Before(cutoff) {
			out = append(out, license)
		}
	}
	return out, nil
}

func (s *fakeLicenseStore) ExpiringBefore(_ context.Context, deadline time.Time) ([]models.License, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []models.License
	now := time.Now()
	for _, license := range s.licenses {
		if !license.Revoked && license.ExpiresAt != nil && license.ExpiresAt.After(now) && license.ExpiresAt.Before(deadline) {
			out = append(out, license)
		}
	}
	return out, nil
}

// fakeActivationStore mirrors the single-statement bind semantics of the
// pgx repository: the map key on license key stands in for the primary
// key constraint.
type fakeActivationStore struct {
	mu   sync.Mutex
	rows map[string]models.DeviceActivation
}

func newFakeActivationStore() *fakeActivationStore {
	return &fakeActivationStore{rows: make(map[string]models.DeviceActivation)}
}

func (s *fakeActivationStore) BindDevice(_ context.Context, licenseKey, deviceID, deviceName, osInfo string) (repository.BindOutcome, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	existing, ok := s.rows[licenseKey]
	if !ok {
		activation := models.DeviceActivation{
			LicenseKey:  licenseKey,
			DeviceID:    deviceID,
			DeviceName:  deviceName,
			OSInfo:      osInfo,
			ActivatedAt: time.Now(),
			LastSeenAt:  time.Now(),
		}
		s.rows[licenseKey] = activation
		return repository.BindOutcome{Result: repository.BindResultNew, Activation: activation}, nil
	}

	if existing.DeviceID == deviceID {
		existing.LastSeenAt = time.Now()
		s.rows[licenseKey] = existing
		return repository.BindOutcome{Result: repository.BindResultMatch, Activation: existing}, nil
	}

	return repository.BindOutcome{Result: repository.BindResultMismatch, Activation: existing}, nil
}

func (s *fakeActivationStore) GetByLicenseKey(_ context.Context, licenseKey string) (models.DeviceActivation, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if activation, ok := s.rows[licenseKey]; ok {
		return activation, nil
	}
	return models.DeviceActivation{}, repository.ErrActivationNotFound
}

func (s *fakeActivationStore) DeleteByLicenseKey(_ context.Context, licenseKey string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.rows[licenseKey]; !ok {
		return repository.ErrActivationNotFound
	}
	delete(s.rows, licenseKey)
	return nil
}

func (s *fakeActivationStore) count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.rows)
}

type fakeWhitelistStore struct {
	mu      sync.Mutex
	entries map[string]models.AdminWhitelistEntry
}

func newFakeWhitelistStore(entries ...models.AdminWhitelistEntry) *fakeWhitelistStore {
	s := &fakeWhitelistStore{entries: make(map[string]models.AdminWhitelistEntry)}
	for _, e := range entries {
		s.entries[e.DeviceID] = e
	}
	return s
}

func (s *fakeWhitelistStore) Upsert(_ context.Context, deviceID string, notes string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	entry := s.entries[deviceID]
	entry.DeviceID = deviceID
	entry.Notes = notes
	entry.Revoked = false
	s.entries[deviceID] = entry
	return nil
}

func (s *fakeWhitelistStore) SeedBootstrap(_ context.Context, deviceID string, notes string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	entry := s.entries[deviceID]
	entry.DeviceID = deviceID
	entry.Notes = notes
	entry.IsBootstrap = true
	entry.Revoked = false
	s.entries[deviceID] = entry
	return nil
}

func (s *fakeWhitelistStore) GetByDeviceID(_ context.Context, deviceID string) (models.AdminWhitelistEntry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if entry, ok := s.entries[deviceID]; ok {
		return entry, nil
	}
	return models.AdminWhitelistEntry{}, repository.ErrWhitelistEntryNotFound
}

func (s *fakeWhitelistStore) List(_ context.Context) ([]models.AdminWhitelistEntry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]models.AdminWhitelistEntry, 0, len(s.entries))
	for _, entry := range s.entries {
		out = append(out, entry)
	}
	return out, nil
}

func (s *fakeWhitelistStore) Revoke(_ context.Context, deviceID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	entry, ok := s.entries[deviceID]
	if !ok || entry.IsBootstrap {
		return repository.ErrWhitelistEntryNotFound
	}
	entry.Revoked = true
	s.entries[deviceID] = entry
	return nil
}

type fakeLimiter struct {
	mu        sync.Mutex
	allow     bool
	resetKeys []string
}

func (l *fakeLimiter) Allow(context.Context, string) (bool, error) { return l.allow, nil }

func (l *fakeLimiter) Reset(_ context.Context, key string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.resetKeys = append(l.resetKeys, key)
}

func (l *fakeLimiter) resets() []string {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]string(nil), l.resetKeys...)
}

type recordingPublisher struct {
	mu     sync.Mutex
	events []string
}

func (p *recordingPublisher) Publish(_ context.Context, event string, _ map[string]any) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, event)
}

func (p *recordingPublisher) seen(event string) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	for _, e := range p.events {
		if e == event {
			return true
		}
	}
	return false
}
