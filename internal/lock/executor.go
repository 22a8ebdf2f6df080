// Package lock provides the distributed mutual-exclusion primitive used
// by the reservation workflow, the point ledger and the admission gate's
// promotion path.  The executor acquires a named lock with a bounded
// wait, holds it under a self-expiring lease and guarantees release on
// every exit path.  It performs no retries itself; retry policy belongs
// to the caller.
package lock

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// ErrAcquisitionFailed is returned when the lock could not be acquired
// within the wait window.  Callers should surface it as "try again".
var ErrAcquisitionFailed = errors.New("lock acquisition failed")

// ErrInterrupted is returned when the context is cancelled while waiting
// for the lock.
var ErrInterrupted = errors.New("lock wait interrupted")

// Executor runs an action under exclusive ownership of lockKey.  It
// blocks up to wait attempting to acquire the lock; once acquired, the
// lease auto-releases after lease even if the holder crashes.  The lock
// is released on every exit path (return, error, panic), but only while
// the current holder still owns it: a lease that already expired must
// not be force-released by a stale handle.  lease must exceed the
// expected critical-section duration with margin; wait should be short
// enough to fail fast under contention.
type Executor interface {
	Execute(ctx context.Context, lockKey string, wait, lease time.Duration, action func() error) error
}

func acquisitionError(lockKey string) error {
	return fmt.Errorf("%w: %s", ErrAcquisitionFailed, lockKey)
}

func interruptedError(lockKey string) error {
	return fmt.Errorf("%w: %s", ErrInterrupted, lockKey)
}
