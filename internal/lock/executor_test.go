package lock

import (
	"context"
	"fmt"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// testExecutor connects to the Redis instance named by REDIS_ADDR.
// These tests exercise real lock semantics and are skipped when no
// instance is reachable.
func testExecutor(t *testing.T) *RedisExecutor {
	t.Helper()
	addr := os.Getenv("REDIS_ADDR")
	if addr == "" {
		t.Skip("REDIS_ADDR not set")
	}
	rdb := redis.NewClient(&redis.Options{Addr: addr})
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		t.Skipf("redis unreachable at %s: %v", addr, err)
	}
	t.Cleanup(func() { rdb.Close() })
	return NewRedisExecutor(rdb)
}

func testKey(t *testing.T) string {
	return fmt.Sprintf("lock:test:%s:%d", t.Name(), time.Now().UnixNano())
}

func TestExecuteMutualExclusion(t *testing.T) {
	e := testExecutor(t)
	key := testKey(t)

	var mu sync.Mutex
	inSection := 0
	maxInSection := 0

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			err := e.Execute(context.Background(), key, 5*time.Second, 5*time.Second, func() error {
				mu.Lock()
				inSection++
				if inSection > maxInSection {
					maxInSection = inSection
				}
				mu.Unlock()

				time.Sleep(20 * time.Millisecond)

				mu.Lock()
				inSection--
				mu.Unlock()
				return nil
			})
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, maxInSection)
}

func TestExecuteWaitTimeout(t *testing.T) {
	e := testExecutor(t)
	key := testKey(t)

	held := make(chan struct{})
	releaseHold := make(chan struct{})
	go func() {
		_ = e.Execute(context.Background(), key, time.Second, 10*time.Second, func() error {
			close(held)
			<-releaseHold
			return nil
		})
	}()
	<-held
	defer close(releaseHold)

	err := e.Execute(context.Background(), key, 200*time.Millisecond, time.Second, func() error {
		t.Error("action must not run without the lock")
		return nil
	})
	assert.ErrorIs(t, err, ErrAcquisitionFailed)
}

func TestExecuteReleasesOnError(t *testing.T) {
	e := testExecutor(t)
	key := testKey(t)

	wantErr := fmt.Errorf("action failed")
	err := e.Execute(context.Background(), key, time.Second, 5*time.Second, func() error {
		return wantErr
	})
	require.ErrorIs(t, err, wantErr)

	// The key must be free immediately, not after the lease.
	err = e.Execute(context.Background(), key, 100*time.Millisecond, time.Second, func() error { return nil })
	assert.NoError(t, err)
}

func TestExecuteReleasesOnPanic(t *testing.T) {
	e := testExecutor(t)
	key := testKey(t)

	require.Panics(t, func() {
		_ = e.Execute(context.Background(), key, time.Second, 5*time.Second, func() error {
			panic("boom")
		})
	})

	err := e.Execute(context.Background(), key, 100*time.Millisecond, time.Second, func() error { return nil })
	assert.NoError(t, err)
}

func TestExecuteInterruptedByContext(t *testing.T) {
	e := testExecutor(t)
	key := testKey(t)

	held := make(chan struct{})
	releaseHold := make(chan struct{})
	go func() {
		_ = e.Execute(context.Background(), key, time.Second, 10*time.Second, func() error {
			close(held)
			<-releaseHold
			return nil
		})
	}()
	<-held
	defer close(releaseHold)

	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()
	err := e.Execute(ctx, key, 5*time.Second, time.Second, func() error { return nil })
	assert.ErrorIs(t, err, ErrInterrupted)
}
