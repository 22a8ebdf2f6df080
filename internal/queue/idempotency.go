package queue

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
)

// idempotencyTTL bounds how long a processed notice is remembered.
// At-least-once redelivery happens within minutes; 24 hours is ample.
const idempotencyTTL = 24 * time.Hour

const idempotencyKeyPrefix = "queue:notice:processed:"

// IdempotencyGuard remembers which notices already produced their side
// effects so a redelivered message does not repeat them.  Seat
// restoration itself is idempotent either way; the guard protects the
// downstream effects (cache eviction noise, eventual notifications).
type IdempotencyGuard interface {
	// FirstDelivery claims the notice and reports whether this is the
	// first time it is seen.
	FirstDelivery(ctx context.Context, noticeID string) (bool, error)
	// Release forgets a claim after a failed attempt so the redelivery
	// is processed instead of skipped.
	Release(ctx context.Context, noticeID string)
}

// RedisIdempotencyGuard implements IdempotencyGuard with SETNX and a TTL.
type RedisIdempotencyGuard struct {
	rdb *redis.Client
}

// NewRedisIdempotencyGuard returns a guard backed by rdb.
func NewRedisIdempotencyGuard(rdb *redis.Client) *RedisIdempotencyGuard {
	if rdb == nil {
		panic("nil redis client passed to NewRedisIdempotencyGuard")
	}
	return &RedisIdempotencyGuard{rdb: rdb}
}

// FirstDelivery claims the notice with SETNX.
func (g *RedisIdempotencyGuard) FirstDelivery(ctx context.Context, noticeID string) (bool, error) {
	return g.rdb.SetNX(ctx, idempotencyKeyPrefix+noticeID,
		time.Now().UTC().Format(time.RFC3339), idempotencyTTL).Result()
}

// Release drops the claim.
func (g *RedisIdempotencyGuard) Release(ctx context.Context, noticeID string) {
	g.rdb.Del(ctx, idempotencyKeyPrefix+noticeID)
}
