package repository

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// ErrLockHeld is returned when another caller holds the lock.
var ErrLockHeld = errors.New("lock already held")

// ErrLockUnavailable is returned when no lock backend is configured.
var ErrLockUnavailable = errors.New("lock backend unavailable")

// releaseScript deletes the key only when it still holds our token.
var releaseScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

// LockRepository provides short-lived mutual exclusion keyed by name.
type LockRepository struct {
	redis *redis.Client
	ttl   time.Duration
}

// NewLockRepository creates a LockRepository. A nil client makes every
// Acquire return ErrLockUnavailable.
func NewLockRepository(client *redis.Client, ttl time.Duration) *LockRepository {
	return &LockRepository{redis: client, ttl: ttl}
}

// Acquire takes lock:<name> and returns a release func.
func (l *LockRepository) Acquire(ctx context.Context, name string) (func(), error) {
	if l == nil || l.redis == nil {
		return nil, ErrLockUnavailable
	}
	key := "lock:" + name
	token := uuid.NewString()

	ok, err := l.redis.SetNX(ctx, key, token, l.ttl).Result()
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrLockHeld
	}

	return func() {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		_ = releaseScript.Run(ctx, l.redis, []string{key}, token).Err()
	}, nil
}
