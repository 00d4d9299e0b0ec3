package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// DefaultClaimTTL bounds how long a crashed registration can hold an email.
const DefaultClaimTTL = 30 * time.Second

// RegistrationGuard holds short-lived claims on emails being registered.
// Key format: register:<email>
type RegistrationGuard struct {
	client redis.Cmdable
	ttl    time.Duration
}

// NewRegistrationGuard wraps client. A non-positive ttl uses DefaultClaimTTL.
func NewRegistrationGuard(client redis.Cmdable, ttl time.Duration) *RegistrationGuard {
	if ttl <= 0 {
		ttl = DefaultClaimTTL
	}
	return &RegistrationGuard{client: client, ttl: ttl}
}

// Claim sets the key only if it is absent. It reports false when another
// registration already holds it.
func (g *RegistrationGuard) Claim(ctx context.Context, email string) (bool, error) {
	ok, err := g.client.SetNX(ctx, key(email), "1", g.ttl).Result()
	if err != nil {
		return false, fmt.Errorf("claim %s: %w", email, err)
	}
	return ok, nil
}

func (g *RegistrationGuard) Release(ctx context.Context, email string) error {
	if err := g.client.Del(ctx, key(email)).Err(); err != nil {
		return fmt.Errorf("release %s: %w", email, err)
	}
	return nil
}

func key(email string) string {
	return "register:" + email
}
