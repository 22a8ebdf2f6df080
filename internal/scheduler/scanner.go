// Package scheduler holds the periodic background loops: the expiration
// scanner that feeds the restoration pipeline and the promoter that
// tops up admission slots.
package scheduler

import (
	"context"
	"log"
	"time"

	"github.com/google/uuid"

	"github.com/jihoon-dev/concert-reservation/internal/queue"
	"github.com/jihoon-dev/concert-reservation/internal/repository"
)

// ExpiredFinder is satisfied by repository.ReservationRepo.
type ExpiredFinder interface {
	FindExpiredTemporary(ctx context.Context, now time.Time) ([]repository.ExpiredGroup, error)
}

// ExpiryPublisher is satisfied by queue.Publisher.
type ExpiryPublisher interface {
	PublishSeatExpired(ctx context.Context, event queue.SeatExpiredEvent) error
}

// ExpirationScanner periodically finds lapsed temporary reservations
// and publishes one batched expiry notice per affected schedule.  It
// performs no seat mutation itself: tying restoration to the scan loop
// would serialize large restorations against the ticker and couple scan
// frequency to write throughput.  The consumer does the writing.
//
// Publish failures are logged and retried on the next tick; re-scanning
// the same still-expired rows is safe because the consumer's restore is
// idempotent.
type ExpirationScanner struct {
	reservations ExpiredFinder
	publisher    ExpiryPublisher
	interval     time.Duration

	now func() time.Time
}

// NewExpirationScanner wires the scanner.
func NewExpirationScanner(reservations ExpiredFinder, publisher ExpiryPublisher, interval time.Duration) *ExpirationScanner {
	if reservations == nil || publisher == nil {
		panic("nil dependency passed to NewExpirationScanner")
	}
	return &ExpirationScanner{
		reservations: reservations,
		publisher:    publisher,
		interval:     interval,
		now:          time.Now,
	}
}

// Run ticks until ctx is cancelled.
func (s *ExpirationScanner) Run(ctx context.Context) {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.Tick(ctx)
		}
	}
}

// Tick runs one scan-and-publish pass.
func (s *ExpirationScanner) Tick(ctx context.Context) {
	now := s.now()
	groups, err := s.reservations.FindExpiredTemporary(ctx, now)
	if err != nil {
		log.Printf("scanner: find expired failed: %v", err)
		return
	}
	for _, g := range groups {
		ev := queue.SeatExpiredEvent{
			NoticeID:   uuid.NewString(),
			ScheduleID: g.ScheduleID,
			SeatIDs:    g.SeatIDs,
			ExpiredAt:  now,
		}
		if err := s.publisher.PublishSeatExpired(ctx, ev); err != nil {
			// Next tick re-finds these rows and publishes again.
			log.Printf("scanner: publish failed: schedule=%d seats=%d err=%v",
				g.ScheduleID, len(g.SeatIDs), err)
			continue
		}
		log.Printf("scanner: published expiry notice: schedule=%d seats=%d", g.ScheduleID, len(g.SeatIDs))
	}
}
