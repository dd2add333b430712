package cache

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
)

const revocationKeyPrefix = "license:revoked:"

// RevocationList is a redis-backed set of revoked license keys with a TTL
// matching the session token lifetime. Tokens outlive a revocation by at
// most one redis round trip instead of their full validity window; keys
// expire once every token minted before the revocation has expired too.
type RevocationList struct {
	client *redis.Client
	ttl    time.Duration
}

func NewRevocationList(client *redis.Client, ttl time.Duration) *RevocationList {
	return &RevocationList{client: client, ttl: ttl}
}

func (r *RevocationList) Add(ctx context.Context, licenseKey string, reason string) error {
	if r == nil || r.client == nil {
		return nil
	}
	if reason == "" {
		reason = "revoked"
	}
	return r.client.Set(ctx, revocationKeyPrefix+licenseKey, reason, r.ttl).Err()
}

// Contains reports whether the license key is on the list, along with the
// stored revocation reason.
func (r *RevocationList) Contains(ctx context.Context, licenseKey string) (bool, string, error) {
	if r == nil || r.client == nil {
		return false, "", nil
	}
	reason, err := r.client.Get(ctx, revocationKeyPrefix+licenseKey).Result()
	if err == redis.Nil {
		return false, "", nil
	}
	if err != nil {
		return false, "", err
	}
	return true, reason, nil
}
