package queue

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
)

// RestoreStore is the persistence surface the restorer needs.  It is
// satisfied by repository.ReservationRepo.
type RestoreStore interface {
	RestoreExpired(ctx context.Context, seatIDs []uint64) (int64, error)
}

// AvailabilityCache is satisfied by cache.SeatCache.
type AvailabilityCache interface {
	EvictAvailableSeats(ctx context.Context, scheduleID uint64)
}

// Restorer applies one expiry notice: restore the listed seats in bulk,
// then evict the availability cache for the schedule touched.  It is the
// broker-independent core of the consumer so its behavior is testable
// without a running RabbitMQ.
//
// Delivery is at-least-once, so everything here must be idempotent:
// the bulk restore only matches seats whose hold actually lapsed, and
// the guard skips notices that already completed.
type Restorer struct {
	store RestoreStore
	cache AvailabilityCache
	guard IdempotencyGuard
}

// NewRestorer wires the restoration pipeline's consumer side.
func NewRestorer(store RestoreStore, cache AvailabilityCache, guard IdempotencyGuard) *Restorer {
	if store == nil || cache == nil || guard == nil {
		panic("nil dependency passed to NewRestorer")
	}
	return &Restorer{store: store, cache: cache, guard: guard}
}

// Handle processes one raw notice body.  A nil return means the message
// may be acked; an error means the delivery should be retried or
// eventually dead-lettered, never dropped.
func (r *Restorer) Handle(ctx context.Context, body []byte) error {
	var ev SeatExpiredEvent
	if err := json.Unmarshal(body, &ev); err != nil {
		return fmt.Errorf("unmarshal notice: %w", err)
	}

	first, err := r.guard.FirstDelivery(ctx, ev.NoticeID)
	if err != nil {
		return fmt.Errorf("idempotency check: %w", err)
	}
	if !first {
		log.Printf("restore: duplicate notice skipped: notice=%s schedule=%d", ev.NoticeID, ev.ScheduleID)
		return nil
	}

	restored, err := r.store.RestoreExpired(ctx, ev.SeatIDs)
	if err != nil {
		// Give the claim back so the redelivery actually retries.
		r.guard.Release(ctx, ev.NoticeID)
		return fmt.Errorf("restore seats: %w", err)
	}

	// Best-effort: a stale availability snapshot self-heals via TTL.
	r.cache.EvictAvailableSeats(ctx, ev.ScheduleID)

	log.Printf("restore: notice=%s schedule=%d expired=%d restored=%d",
		ev.NoticeID, ev.ScheduleID, len(ev.SeatIDs), restored)
	return nil
}
