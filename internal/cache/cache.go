// Package cache keeps computed balances in Redis, keyed by the ledger
// revision they were computed at. A write to the ledger bumps the
// revision, so entries for older revisions are never read again and
// simply expire.
package cache

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/mmynk/swisscoin/internal/metrics"
	"github.com/mmynk/swisscoin/internal/money"
)

const keyPrefix = "swisscoin:balance:v1"

// Key identifies one derived balance.
type Key struct {
	// Kind is "pair", "group" or "subscription".
	Kind     string
	Self     string
	Other    string
	Scope    string
	Revision int64
}

func (k Key) String() string {
	return fmt.Sprintf("%s:%s:%d:%s:%s:%s", keyPrefix, k.Kind, k.Revision, k.Self, k.Other, k.Scope)
}

// BalanceCache stores balances. Lookups that fail report a miss.
type BalanceCache interface {
	Get(ctx context.Context, key Key) (money.Amount, bool)
	Set(ctx context.Context, key Key, balance money.Amount)
}

// Noop never hits.
type Noop struct{}

func (Noop) Get(context.Context, Key) (money.Amount, bool) { return 0, false }
func (Noop) Set(context.Context, Key, money.Amount)        {}

// Redis is a BalanceCache backed by a Redis server.
type Redis struct {
	client  redis.UniversalClient
	ttl     time.Duration
	metrics *metrics.Metrics
}

// NewRedis connects to addr and pings it. addr is either host:port or a
// redis:// URL.
func NewRedis(ctx context.Context, addr string, ttl time.Duration, m *metrics.Metrics) (*Redis, error) {
	opts, err := redis.ParseURL(addr)
	if err != nil {
		opts = &redis.Options{Addr: addr}
	}
	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to connect to redis at %s: %w", addr, err)
	}
	return NewRedisWithClient(client, ttl, m), nil
}

// NewRedisWithClient wraps an existing client.
func NewRedisWithClient(client redis.UniversalClient, ttl time.Duration, m *metrics.Metrics) *Redis {
	return &Redis{client: client, ttl: ttl, metrics: m}
}

func (r *Redis) Get(ctx context.Context, key Key) (money.Amount, bool) {
	raw, err := r.client.Get(ctx, key.String()).Result()
	if errors.Is(err, redis.Nil) {
		r.metrics.CacheLookup("miss")
		return 0, false
	}
	if err != nil {
		slog.Warn("Balance cache read failed", "key", key.String(), "error", err)
		r.metrics.CacheLookup("error")
		return 0, false
	}

	cents, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		slog.Warn("Balance cache entry corrupt", "key", key.String(), "value", raw)
		r.metrics.CacheLookup("error")
		return 0, false
	}
	r.metrics.CacheLookup("hit")
	return money.Amount(cents), true
}

func (r *Redis) Set(ctx context.Context, key Key, balance money.Amount) {
	if err := r.client.Set(ctx, key.String(), strconv.FormatInt(int64(balance), 10), r.ttl).Err(); err != nil {
		slog.Warn("Balance cache write failed", "key", key.String(), "error", err)
	}
}

// Close releases the client.
func (r *Redis) Close() error {
	return r.client.Close()
}
