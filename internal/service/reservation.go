// Package service implements the application workflows on top of the
// lock executor, the admission gate and the repositories.  Services
// depend on small interfaces so the concurrency-sensitive flows can be
// exercised in tests without MySQL or Redis.
package service

import (
	"context"
	"time"

	"github.com/jihoon-dev/concert-reservation/internal/lock"
	"github.com/jihoon-dev/concert-reservation/internal/model"
)

// QueueGate is the slice of the admission gate the workflows need.
type QueueGate interface {
	ValidateActive(ctx context.Context, token string) (model.QueueToken, error)
	GetStatus(ctx context.Context, token string) (model.QueueToken, error)
	ExpireToken(ctx context.Context, t model.QueueToken) error
}

// ScheduleReader is satisfied by repository.ConcertRepo.
type ScheduleReader interface {
	GetSchedule(ctx context.Context, id uint64) (model.ConcertSchedule, error)
}

// ReservationStore is satisfied by repository.ReservationRepo.
type ReservationStore interface {
	ReserveSeat(ctx context.Context, userID, scheduleID, seatID uint64, token string, now time.Time, hold time.Duration) (model.Reservation, error)
	GetByID(ctx context.Context, id uint64) (model.Reservation, error)
	FindAllByUser(ctx context.Context, userID uint64) ([]model.Reservation, error)
}

// AvailabilityCache is satisfied by cache.SeatCache.
type AvailabilityCache interface {
	EvictAvailableSeats(ctx context.Context, scheduleID uint64)
}

// ReservationService runs the lock-guarded reservation workflow.
type ReservationService struct {
	gate      QueueGate
	schedules ScheduleReader
	store     ReservationStore
	cache     AvailabilityCache
	locks     lock.Executor

	lockWait  time.Duration
	lockLease time.Duration
	hold      time.Duration

	now func() time.Time
}

// NewReservationService wires the workflow.  lockLease must comfortably
// bound the in-lock revalidation plus the reservation transaction.
func NewReservationService(gate QueueGate, schedules ScheduleReader, store ReservationStore, cache AvailabilityCache, locks lock.Executor, lockWait, lockLease, hold time.Duration) *ReservationService {
	if gate == nil || schedules == nil || store == nil || cache == nil || locks == nil {
		panic("nil dependency passed to NewReservationService")
	}
	return &ReservationService{
		gate:      gate,
		schedules: schedules,
		store:     store,
		cache:     cache,
		locks:     locks,
		lockWait:  lockWait,
		lockLease: lockLease,
		hold:      hold,
		now:       time.Now,
	}
}

// Create places a temporary hold on a seat for the caller.
//
// Preconditions run before the lock so doomed requests never contend:
// the queue token must be ACTIVE and the schedule still open.  The
// token is then revalidated inside the lock, since it could have
// expired or been consumed while the caller waited, before the atomic
// seat/reservation/token transition commits.  Lock acquisition failure
// is surfaced to the caller as-is; the workflow never retries.
func (s *ReservationService) Create(ctx context.Context, userID, scheduleID, seatID uint64, token string) (model.Reservation, error) {
	if _, err := s.gate.ValidateActive(ctx, token); err != nil {
		return model.Reservation{}, err
	}
	schedule, err := s.schedules.GetSchedule(ctx, scheduleID)
	if err != nil {
		return model.Reservation{}, err
	}
	if err := schedule.ValidateAvailable(s.now()); err != nil {
		return model.Reservation{}, err
	}

	var reservation model.Reservation
	err = s.locks.Execute(ctx, lock.SeatKey(scheduleID, seatID), s.lockWait, s.lockLease, func() error {
		// Close the check-to-use gap before touching seat state.
		if _, err := s.gate.ValidateActive(ctx, token); err != nil {
			return err
		}
		var err error
		reservation, err = s.store.ReserveSeat(ctx, userID, scheduleID, seatID, token, s.now(), s.hold)
		return err
	})
	if err != nil {
		return model.Reservation{}, err
	}

	// Outside the lock: a stale snapshot degrades UX, not safety.
	s.cache.EvictAvailableSeats(ctx, scheduleID)
	return reservation, nil
}

// ListByUser returns the caller's reservations.
func (s *ReservationService) ListByUser(ctx context.Context, userID uint64) ([]model.Reservation, error) {
	return s.store.FindAllByUser(ctx, userID)
}
