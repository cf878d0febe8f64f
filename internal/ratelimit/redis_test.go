package ratelimit

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupTestRedis(t *testing.T) *redis.Client {
	t.Helper()
	s := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: s.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return client
}

func TestAllowBurstThenDeny(t *testing.T) {
	client := setupTestRedis(t)
	limiter := New(client, Config{
		KeyPrefix: "ratelimit:",
		Rate:      1,
		Burst:     5,
		KeyTTL:    time.Minute,
	})

	ctx := context.Background()

	for i := 0; i < 5; i++ {
		res, err := limiter.Allow(ctx, "1.2.3.4")
		require.NoError(t, err)
		assert.True(t, res.Allowed, "request %d should be allowed", i)
	}

	res, err := limiter.Allow(ctx, "1.2.3.4")
	require.NoError(t, err)
	assert.False(t, res.Allowed, "request over burst should be denied")
}

func TestAllowKeysAreIndependent(t *testing.T) {
	client := setupTestRedis(t)
	limiter := New(client, Config{
		KeyPrefix: "ratelimit:",
		Rate:      1,
		Burst:     1,
		KeyTTL:    time.Minute,
	})

	ctx := context.Background()

	res, err := limiter.Allow(ctx, "1.2.3.4")
	require.NoError(t, err)
	assert.True(t, res.Allowed)

	res, err = limiter.Allow(ctx, "1.2.3.4")
	require.NoError(t, err)
	assert.False(t, res.Allowed)

	// A different caller still has its full burst.
	res, err = limiter.Allow(ctx, "5.6.7.8")
	require.NoError(t, err)
	assert.True(t, res.Allowed)
}

func TestFailOpenWhenRedisDown(t *testing.T) {
	s := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: s.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	s.Close()

	open := New(client, Config{KeyPrefix: "rl:", Rate: 1, Burst: 1, KeyTTL: time.Minute, FailOpen: true})
	res, err := open.Allow(context.Background(), "1.2.3.4")
	require.NoError(t, err)
	assert.True(t, res.Allowed)

	closed := New(client, Config{KeyPrefix: "rl:", Rate: 1, Burst: 1, KeyTTL: time.Minute, FailOpen: false})
	res, err = closed.Allow(context.Background(), "1.2.3.4")
	assert.Error(t, err)
	assert.False(t, res.Allowed)
}

func TestPerMinute(t *testing.T) {
	cfg := PerMinute(30)
	assert.Equal(t, int64(30), cfg.Burst)
	assert.Equal(t, int64(1), cfg.Rate)
	assert.True(t, cfg.FailOpen)

	cfg = PerMinute(0)
	assert.Equal(t, int64(1), cfg.Burst)

	cfg = PerMinute(600)
	assert.Equal(t, int64(10), cfg.Rate)
}
