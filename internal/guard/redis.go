package guard

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/google/uuid"
	goredis "github.com/redis/go-redis/v9"

	"github.com/aiborg-ai/aiborg-learn-sphere-sub002/internal/logger"
)

// releaseScript deletes the lock only if it still holds our token, so an
// expired lock re-acquired by someone else is left alone.
var releaseScript = goredis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

// Redis is a Guard backed by SET NX PX. Locks expire after TTL so a crashed
// holder cannot wedge a session.
type Redis struct {
	log    *logger.Logger
	rdb    *goredis.Client
	prefix string
	ttl    time.Duration
}

// RedisOptions configures NewRedis.
type RedisOptions struct {
	Addr   string
	Prefix string
	TTL    time.Duration
}

// RedisOptionsFromEnv reads AIBORG_REDIS_ADDR, AIBORG_REDIS_PREFIX and
// AIBORG_REDIS_LOCK_TTL. Addr is empty when Redis is not configured.
func RedisOptionsFromEnv() RedisOptions {
	opts := RedisOptions{
		Addr:   strings.TrimSpace(os.Getenv("AIBORG_REDIS_ADDR")),
		Prefix: strings.TrimSpace(os.Getenv("AIBORG_REDIS_PREFIX")),
	}
	if v := strings.TrimSpace(os.Getenv("AIBORG_REDIS_LOCK_TTL")); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			opts.TTL = d
		}
	}
	return opts
}

// NewRedis connects to Redis and verifies the connection.
func NewRedis(ctx context.Context, log *logger.Logger, opts RedisOptions) (*Redis, error) {
	if log == nil {
		log = logger.Nop()
	}
	if opts.Addr == "" {
		return nil, fmt.Errorf("missing redis address")
	}
	if opts.Prefix == "" {
		opts.Prefix = "aiborg:cat:lock:"
	}
	if opts.TTL <= 0 {
		opts.TTL = 30 * time.Second
	}

	rdb := goredis.NewClient(&goredis.Options{
		Addr:        opts.Addr,
		DialTimeout: 5 * time.Second,
	})

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := rdb.Ping(pingCtx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("redis ping: %w", err)
	}

	return &Redis{
		log:    log.With("component", "redis_guard"),
		rdb:    rdb,
		prefix: opts.Prefix,
		ttl:    opts.TTL,
	}, nil
}

// Acquire implements Guard.
func (r *Redis) Acquire(ctx context.Context, sessionID string) (func(), error) {
	key := r.prefix + sessionID
	token := uuid.NewString()

	ok, err := r.rdb.SetNX(ctx, key, token, r.ttl).Result()
	if err != nil {
		return nil, fmt.Errorf("redis lock: %w", err)
	}
	if !ok {
		return nil, ErrHeld
	}

	return func() {
		// Release must not depend on the request context, which may be
		// cancelled by the time the caller unwinds.
		relCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := releaseScript.Run(relCtx, r.rdb, []string{key}, token).Err(); err != nil {
			r.log.Warn("redis unlock failed", "session_id", sessionID, "error", err)
		}
	}, nil
}

// Close closes the Redis client.
func (r *Redis) Close() error {
	if r == nil || r.rdb == nil {
		return nil
	}
	return r.rdb.Close()
}
