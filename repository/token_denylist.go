package repository

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
)

// TokenDenylist records revoked token ids until their natural expiry.
type TokenDenylist struct {
	redis *redis.Client
}

// NewTokenDenylist creates a TokenDenylist. With a nil client revocation is a
// no-op and no token is ever reported revoked.
func NewTokenDenylist(client *redis.Client) *TokenDenylist {
	return &TokenDenylist{redis: client}
}

func denylistKey(jti string) string {
	return "auth:revoked:" + jti
}

// Revoke denylists jti until expiresAt.
func (d *TokenDenylist) Revoke(ctx context.Context, jti string, expiresAt time.Time) error {
	if d == nil || d.redis == nil || jti == "" {
		return nil
	}
	ttl := time.Until(expiresAt)
	if ttl <= 0 {
		return nil
	}
	return d.redis.Set(ctx, denylistKey(jti), "1", ttl).Err()
}

// IsRevoked reports whether jti was revoked.
func (d *TokenDenylist) IsRevoked(ctx context.Context, jti string) (bool, error) {
	if d == nil || d.redis == nil || jti == "" {
		return false, nil
	}
	err := d.redis.Get(ctx, denylistKey(jti)).Err()
	if errors.Is(err, redis.Nil) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}
