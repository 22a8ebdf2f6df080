package lock

import (
	"context"
	"log"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// How often a waiting caller re-attempts SET NX while the lock is held
// by someone else.
const acquireRetryInterval = 50 * time.Millisecond

// releaseScript deletes the lock key only when it still carries this
// holder's fencing value.  Without the compare, a holder whose lease
// already expired could delete a lock that now belongs to someone else.
var releaseScript = redis.NewScript(`
    if redis.call('GET', KEYS[1]) == ARGV[1] then
        return redis.call('DEL', KEYS[1])
    end
    return 0
`)

// RedisExecutor implements Executor on a single Redis instance.  Each
// acquisition stores a unique fencing value under the lock key with a
// PX lease so a crashed or paused holder can never wedge the lock.
type RedisExecutor struct {
	rdb *redis.Client
}

// NewRedisExecutor returns an executor bound to the given client.  The
// client must be non-nil; unlike the cache, the lock service cannot
// degrade gracefully.
func NewRedisExecutor(rdb *redis.Client) *RedisExecutor {
	if rdb == nil {
		panic("nil redis client passed to NewRedisExecutor")
	}
	return &RedisExecutor{rdb: rdb}
}

// Execute acquires lockKey and runs action with guaranteed release.
func (e *RedisExecutor) Execute(ctx context.Context, lockKey string, wait, lease time.Duration, action func() error) error {
	token := uuid.NewString()

	if err := e.acquire(ctx, lockKey, token, wait, lease); err != nil {
		return err
	}

	// Release is deferred before the action runs so it fires on normal
	// return, error and panic alike.
	defer e.release(lockKey, token)

	return action()
}

// acquire polls SET NX until it wins, the wait window lapses or the
// context is cancelled.
func (e *RedisExecutor) acquire(ctx context.Context, lockKey, token string, wait, lease time.Duration) error {
	deadline := time.Now().Add(wait)
	for {
		ok, err := e.rdb.SetNX(ctx, lockKey, token, lease).Result()
		if err != nil {
			if ctx.Err() != nil {
				return interruptedError(lockKey)
			}
			return err
		}
		if ok {
			return nil
		}
		if time.Now().After(deadline) {
			log.Printf("lock: failed to acquire: key=%s wait=%s", lockKey, wait)
			return acquisitionError(lockKey)
		}
		select {
		case <-ctx.Done():
			return interruptedError(lockKey)
		case <-time.After(acquireRetryInterval):
		}
	}
}

// release runs the compare-and-delete script on a fresh context: the
// request context may already be cancelled, and an abandoned key would
// otherwise block other callers until the lease expires.
func (e *RedisExecutor) release(lockKey, token string) {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := releaseScript.Run(ctx, e.rdb, []string{lockKey}, token).Err(); err != nil && err != redis.Nil {
		log.Printf("lock: failed to release: key=%s err=%v", lockKey, err)
	}
}
