package redis

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Adithya-Monish-Kumar-K/textsearch/pkg/config"
	apperrors "github.com/Adithya-Monish-Kumar-K/textsearch/pkg/errors"
)

// newTestClient skips the test when Redis is unavailable.
func newTestClient(t *testing.T) *Client {
	t.Helper()
	addr := os.Getenv("TEST_REDIS_ADDR")
	if addr == "" {
		addr = "localhost:6379"
	}
	c, err := NewClient(config.RedisConfig{Addr: addr, PoolSize: 2})
	if err != nil {
		t.Skipf("skipping redis test: %v", err)
	}
	t.Cleanup(func() { c.Close() })
	return c
}

func TestLock_ExclusiveUntilReleased(t *testing.T) {
	c := newTestClient(t)
	ctx := context.Background()
	lock := c.NewLock("textsearch:test:"+uuid.NewString(), time.Minute)

	release, err := lock.Acquire(ctx)
	require.NoError(t, err)

	_, err = lock.Acquire(ctx)
	assert.ErrorIs(t, err, apperrors.ErrLockHeld)

	require.NoError(t, release(ctx))

	release2, err := lock.Acquire(ctx)
	require.NoError(t, err)
	require.NoError(t, release2(ctx))
}

func TestLock_StaleReleaseKeepsNewHolder(t *testing.T) {
	c := newTestClient(t)
	ctx := context.Background()
	key := "textsearch:test:" + uuid.NewString()
	lock := c.NewLock(key, 50*time.Millisecond)

	stale, err := lock.Acquire(ctx)
	require.NoError(t, err)
	time.Sleep(100 * time.Millisecond)

	fresh, err := c.NewLock(key, time.Minute).Acquire(ctx)
	require.NoError(t, err)
	require.NoError(t, stale(ctx))

	_, err = lock.Acquire(ctx)
	assert.ErrorIs(t, err, apperrors.ErrLockHeld)
	require.NoError(t, fresh(ctx))
}
