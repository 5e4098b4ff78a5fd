package repository

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
)

func TestCacheRepository_DisabledWithoutClient(t *testing.T) {
	cache := NewCacheRepository(nil, 0, zap.NewNop())
	assert.False(t, cache.Enabled())

	var out map[string]interface{}
	assert.False(t, cache.GetList(context.Background(), "k", &out))
	assert.False(t, cache.GetProduct(context.Background(), "p", &out))
	assert.NoError(t, cache.InvalidateLists(context.Background()))
	cache.SetList(context.Background(), "k", map[string]int{"a": 1})
}

func TestLockRepository_UnavailableWithoutClient(t *testing.T) {
	release, err := NewLockRepository(nil, 30*time.Second).Acquire(context.Background(), "verify:tx")
	assert.ErrorIs(t, err, ErrLockUnavailable)
	assert.Nil(t, release)
}

func TestTokenDenylist_NoopWithoutClient(t *testing.T) {
	d := NewTokenDenylist(nil)
	assert.NoError(t, d.Revoke(context.Background(), "jti-1", time.Now().Add(time.Hour)))
	revoked, err := d.IsRevoked(context.Background(), "jti-1")
	assert.NoError(t, err)
	assert.False(t, revoked)
}

func TestLikePattern_EscapesWildcards(t *testing.T) {
	assert.Equal(t, `%%`, likePattern(""))
	assert.Equal(t, `%shoe%`, likePattern("  shoe "))
	assert.Equal(t, `%50\%\_off%`, likePattern("50%_off"))
}

func TestValidIDs_DropsInvalidAndDuplicates(t *testing.T) {
	id := "6f1c1f9e-2f55-4a57-9a43-2c1a3e0b7d10"
	assert.Equal(t, []string{id}, validIDs([]string{id, "nope", id}))
}
