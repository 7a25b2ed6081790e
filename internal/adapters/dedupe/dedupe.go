// Package dedupe remembers which trace ids were already notified
package dedupe

import (
	"context"
	"time"

	"contextual/internal/platform/config"
	perr "contextual/internal/platform/errors"

	"github.com/redis/go-redis/v9"
)

// Set answers whether a trace id was seen and records new ones
type Set interface {
	Seen(ctx context.Context, traceID string) (bool, error)
	Mark(ctx context.Context, traceID string) error
}

// Config holds redis settings; an empty Addr disables the set
type Config struct {
	Addr     string
	Password string
	DB       int
	TTL      time.Duration
	Prefix   string
}

// FromConf reads DEDUPE_* style keys from an already prefixed view
func FromConf(c config.Conf) Config {
	return Config{
		Addr:     c.MayString("REDIS_ADDR", ""),
		Password: c.MayString("REDIS_PASSWORD", ""),
		DB:       c.MayInt("REDIS_DB", 0),
		TTL:      c.MayDuration("TTL", 72*time.Hour),
		Prefix:   c.MayString("PREFIX", "contextual:notified:"),
	}
}

// Nop never reports a duplicate
type Nop struct{}

// Seen always reports false
func (Nop) Seen(context.Context, string) (bool, error) { return false, nil }

// Mark does nothing
func (Nop) Mark(context.Context, string) error { return nil }

// kv is the slice of redis.Cmdable the set uses
type kv interface {
	Exists(ctx context.Context, keys ...string) *redis.IntCmd
	Set(ctx context.Context, key string, value any, expiration time.Duration) *redis.StatusCmd
}

// Redis is a Set backed by expiring keys
type Redis struct {
	kv     kv
	ttl    time.Duration
	prefix string
	close  func() error
}

// Open returns Nop when cfg.Addr is empty, else a pinged redis set
func Open(ctx context.Context, cfg Config) (Set, func() error, error) {
	if cfg.Addr == "" {
		return Nop{}, func() error { return nil }, nil
	}
	rc := redis.NewClient(&redis.Options{Addr: cfg.Addr, Password: cfg.Password, DB: cfg.DB})
	if err := rc.Ping(ctx).Err(); err != nil {
		_ = rc.Close()
		return nil, nil, perr.Wrapf(err, perr.ErrorCodeUnavailable, "redis ping %s", cfg.Addr)
	}
	r := newRedis(rc, cfg)
	r.close = rc.Close
	return r, r.Close, nil
}

func newRedis(c kv, cfg Config) *Redis {
	if cfg.TTL <= 0 {
		cfg.TTL = 72 * time.Hour
	}
	return &Redis{kv: c, ttl: cfg.TTL, prefix: cfg.Prefix}
}

// Seen reports whether traceID was marked within the TTL
func (r *Redis) Seen(ctx context.Context, traceID string) (bool, error) {
	n, err := r.kv.Exists(ctx, r.prefix+traceID).Result()
	if err != nil {
		return false, perr.Wrap(err, perr.ErrorCodeUnavailable, "dedupe seen")
	}
	return n > 0, nil
}

// Mark records traceID for the TTL
func (r *Redis) Mark(ctx context.Context, traceID string) error {
	if err := r.kv.Set(ctx, r.prefix+traceID, time.Now().UTC().Format(time.RFC3339), r.ttl).Err(); err != nil {
		return perr.Wrap(err, perr.ErrorCodeUnavailable, "dedupe mark")
	}
	return nil
}

// Close releases the client
func (r *Redis) Close() error {
	if r.close == nil {
		return nil
	}
	return r.close()
}
