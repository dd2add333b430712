package service

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"freightdesk/api/internal/config"
)

// LoginRateLimiter is a fixed-window counter per caller key (email plus
// client IP). Redis TTL expires the window; an unreachable redis fails
// open so an outage cannot lock out every tenant.
type LoginRateLimiter struct {
	client *redis.Client
	max    int
	window time.Duration
	log    zerolog.Logger
}

func NewLoginRateLimiter(client *redis.Client, cfg config.RateLimitConfig, log zerolog.Logger) *LoginRateLimiter {
	return &LoginRateLimiter{
		client: client,
		max:    cfg.LoginMaxAttempts,
		window: cfg.LoginWindow,
		log:    log,
	}
}

func (l *LoginRateLimiter) Allow(ctx context.Context, key string) (bool, error) {
	if l.client == nil || l.max <= 0 {
		return true, nil
	}

	counterKey := counterKeyFor(key)
	count, err := l.client.Incr(ctx, counterKey).Result()
	if err != nil {
		l.log.Warn().Err(err).Msg("rate limiter unavailable, failing open")
		return true, nil
	}

	// Arm the window on the first increment, and re-arm whenever the key
	// has no deadline: a failed Expire otherwise leaves the counter
	// immortal and the caller locked out forever.
	arm := count == 1
	if !arm {
		if ttl, err := l.client.TTL(ctx, counterKey).Result(); err == nil && ttl < 0 {
			arm = true
		}
	}
	if arm {
		if err := l.client.Expire(ctx, counterKey, l.window).Err(); err != nil {
			l.log.Warn().Err(err).Msg("rate limiter expire failed")
		}
	}

	return count <= int64(l.max), nil
}

// Reset clears the counter after a successful login so legitimate users
// do not burn quota against their own future attempts.
func (l *LoginRateLimiter) Reset(ctx context.Context, key string) {
	if l.client == nil {
		return
	}
	if err := l.client.Del(ctx, counterKeyFor(key)).Err(); err != nil {
		l.log.Warn().Err(err).Msg("rate limiter reset failed")
	}
}

func counterKeyFor(key string) string {
	return "login:attempts:" + key
}
