package jobs

import (
	"context"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"

	"freightdesk/api/internal/cache"
	"freightdesk/api/internal/config"
	"freightdesk/api/internal/repository"
	"freightdesk/api/internal/service"
)

const expiryNoticeWindow = 7 * 24 * time.Hour

// Scheduler runs the background maintenance the auth core needs: keeping
// the redis revocation list consistent with postgres (redis restarts lose
// it) and publishing expiring-license events for external consumers.
type Scheduler struct {
	cron        *cron.Cron
	licenses    *repository.LicenseRepository
	revocations *cache.RevocationList
	events      service.EventPublisher
	tokenTTL    time.Duration
	log         zerolog.Logger
}

func NewScheduler(
	licenses *repository.LicenseRepository,
	revocations *cache.RevocationList,
	events service.EventPublisher,
	cfg *config.AppConfig,
	log zerolog.Logger,
) *Scheduler {
	return &Scheduler{
		cron:        cron.New(cron.WithSeconds()),
		licenses:    licenses,
		revocations: revocations,
		events:      events,
		tokenTTL:    cfg.Security.TokenTTL,
		log:         log,
	}
}

func (s *Scheduler) Start() error {
	if _, err := s.cron.AddFunc("0 0 * * * *", s.reconcileRevocations); err != nil { // hourly
		return err
	}
	if _, err := s.cron.AddFunc("0 0 6 * * *", s.sweepExpiring); err != nil { // daily
		return err
	}

	s.cron.Start()
	return nil
}

// Stop waits for running jobs to finish, up to five seconds.
func (s *Scheduler) Stop() {
	select {
	case <-s.cron.Stop().Done():
	case <-time.After(5 * time.Second):
		s.log.Warn().Msg("scheduler stop timed out")
	}
}

// reconcileRevocations re-seeds the revocation list from postgres. Only
// licenses revoked inside the token lifetime window matter: older
// revocations have no live tokens left to reject.
func (s *Scheduler) reconcileRevocations() {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	cutoff := time.Now().Add(-s.tokenTTL)
	revoked, err := s.licenses.RevokedSince(ctx, cutoff)
	if err != nil {
		s.log.Error().Err(err).Msg("revocation reconciliation query failed")
		return
	}

	for _, license := range revoked {
		if err := s.revocations.Add(ctx, license.Key, license.RevokeReason); err != nil {
			s.log.Error().Err(err).Str("license_key", license.Key).Msg("revocation list re-seed failed")
		}
	}

	if len(revoked) > 0 {
		s.log.Info().Int("count", len(revoked)).Msg("revocation list reconciled")
	}
}

func (s *Scheduler) sweepExpiring() {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	expiring, err := s.licenses.ExpiringBefore(ctx, time.Now().Add(expiryNoticeWindow))
	if err != nil {
		s.log.Error().Err(err).Msg("expiring license sweep failed")
		return
	}

	for _, license := range expiring {
		s.events.Publish(ctx, "license_expiring", map[string]any{
			"license_key": license.Key,
			"expires_at":  license.ExpiresAt.UTC().Format(time.RFC3339),
		})
	}
}
