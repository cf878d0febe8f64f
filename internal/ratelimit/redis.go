// Package ratelimit implements distributed rate limiting over redis using
// GCRA (Generic Cell Rate Algorithm). GCRA tracks a "theoretical arrival
// time" per key instead of counting inside fixed windows, which gives smooth
// limiting that stays correct across multiple gateway instances. The check
// runs as a Lua script so it is atomic under concurrent access.
package ratelimit

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

// Config configures the limiter.
type Config struct {
	// KeyPrefix namespaces limiter state in redis.
	KeyPrefix string
	// Rate is the sustained allowance in tokens per second.
	Rate int64
	// Burst is the instantaneous allowance on a cold key.
	Burst int64
	// KeyTTL bounds how long idle limiter state lives in redis.
	KeyTTL time.Duration
	// FailOpen allows requests through when redis is unreachable.
	FailOpen bool
}

// Limiter is a redis-backed GCRA rate limiter safe for concurrent use.
type Limiter struct {
	client *redis.Client
	config Config
}

// New creates a Limiter using an existing redis client.
func New(client *redis.Client, cfg Config) *Limiter {
	if cfg.Rate < 1 {
		cfg.Rate = 1
	}
	if cfg.Burst < 1 {
		cfg.Burst = cfg.Rate
	}
	if cfg.KeyTTL < time.Second {
		cfg.KeyTTL = time.Hour
	}
	return &Limiter{client: client, config: cfg}
}

// PerMinute builds a Config for an "n requests per minute" quota: the burst
// admits n cold requests, the rate refills them over the minute.
func PerMinute(n int) Config {
	if n < 1 {
		n = 1
	}
	rate := int64(n) / 60
	if rate < 1 {
		rate = 1
	}
	return Config{
		KeyPrefix: "ratelimit:",
		Rate:      rate,
		Burst:     int64(n),
		KeyTTL:    time.Hour,
		FailOpen:  true,
	}
}

// gcraScript implements GCRA atomically. The stored value is the TAT
// (theoretical arrival time) in microseconds: each admitted request advances
// it by one emission interval, and a request is admitted while the TAT stays
// within burst_offset of now. Returns {allowed, remaining, reset_after_ms}.
var gcraScript = redis.NewScript(`
local key = KEYS[1]
local now = tonumber(ARGV[1])
local burst = tonumber(ARGV[2])
local rate = tonumber(ARGV[3])
local cost = tonumber(ARGV[4])
local ttl = tonumber(ARGV[5])

local emission_interval = 1000000 / rate
local burst_offset = burst * emission_interval

local tat = redis.call("GET", key)
if tat then
    tat = tonumber(tat)
else
    tat = now
end

local new_tat = tat + (cost * emission_interval)
local allow_at = now + burst_offset

if new_tat > allow_at then
    local remaining = math.max(0, math.floor((allow_at - tat) / emission_interval))
    local reset_after = math.ceil((tat - now) / 1000)
    return {0, remaining, reset_after}
end

if tat < now then
    new_tat = now + (cost * emission_interval)
end

redis.call("SET", key, new_tat, "EX", ttl)

local remaining = math.max(0, math.floor((allow_at - new_tat) / emission_interval))
local reset_after = math.ceil((new_tat - now) / 1000)

return {1, remaining, reset_after}
`)

// Result is the outcome of one rate-limit check.
type Result struct {
	Allowed    bool
	Remaining  int64
	ResetAfter time.Duration
}

// Allow checks whether one request under key should be admitted.
func (l *Limiter) Allow(ctx context.Context, key string) (Result, error) {
	fullKey := l.config.KeyPrefix + key
	now := time.Now().UnixMicro()
	ttlSeconds := int64(l.config.KeyTTL.Seconds())

	res, err := gcraScript.Run(ctx, l.client, []string{fullKey},
		now, l.config.Burst, l.config.Rate, 1, ttlSeconds,
	).Int64Slice()
	if err != nil {
		log.Warn().Err(err).Str("key", key).Msg("rate limit check failed")
		if l.config.FailOpen {
			return Result{Allowed: true, Remaining: l.config.Burst}, nil
		}
		return Result{Allowed: false}, err
	}

	return Result{
		Allowed:    res[0] == 1,
		Remaining:  res[1],
		ResetAfter: time.Duration(res[2]) * time.Millisecond,
	}, nil
}
