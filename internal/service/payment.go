package service

import (
	"context"
	"time"

	"github.com/jihoon-dev/concert-reservation/internal/lock"
	"github.com/jihoon-dev/concert-reservation/internal/model"
)

// SeatReader is satisfied by repository.SeatRepo.
type SeatReader interface {
	GetByID(ctx context.Context, id uint64) (model.Seat, error)
}

// PaymentStore is satisfied by repository.PaymentRepo.
type PaymentStore interface {
	GetByID(ctx context.Context, id uint64) (model.Payment, error)
	ConfirmPayment(ctx context.Context, userID, reservationID, seatID uint64, price int64) (model.Payment, error)
}

// PaymentService confirms temporary reservations.  It runs under the
// per-user point lock; the seat needs no lock here because it is
// already exclusively owned by the reservation being paid.  The queue
// token is expired afterwards, freeing the admission slot.
type PaymentService struct {
	gate         QueueGate
	reservations ReservationStore
	seats        SeatReader
	store        PaymentStore
	cache        AvailabilityCache
	locks        lock.Executor

	lockWait  time.Duration
	lockLease time.Duration
}

// NewPaymentService wires the payment workflow.
func NewPaymentService(gate QueueGate, reservations ReservationStore, seats SeatReader, store PaymentStore, cache AvailabilityCache, locks lock.Executor, lockWait, lockLease time.Duration) *PaymentService {
	if gate == nil || reservations == nil || seats == nil || store == nil || cache == nil || locks == nil {
		panic("nil dependency passed to NewPaymentService")
	}
	return &PaymentService{
		gate:         gate,
		reservations: reservations,
		seats:        seats,
		store:        store,
		cache:        cache,
		locks:        locks,
		lockWait:     lockWait,
		lockLease:    lockLease,
	}
}

// Get returns a payment, enforcing that the caller made it.
func (s *PaymentService) Get(ctx context.Context, userID, paymentID uint64) (model.Payment, error) {
	p, err := s.store.GetByID(ctx, paymentID)
	if err != nil {
		return model.Payment{}, err
	}
	if p.UserID != userID {
		return model.Payment{}, model.ErrNotReservationOwner
	}
	return p, nil
}

// Process validates ownership and payability, debits the seat price
// from the caller's points and finalizes reservation and seat in one
// transaction.
func (s *PaymentService) Process(ctx context.Context, userID, reservationID uint64, token string) (model.Payment, error) {
	reservation, err := s.reservations.GetByID(ctx, reservationID)
	if err != nil {
		return model.Payment{}, err
	}
	if err := reservation.ValidateOwnership(userID); err != nil {
		return model.Payment{}, err
	}
	if reservation.Status != model.ReservationTemporary {
		return model.Payment{}, model.ErrReservationNotPayable
	}

	seat, err := s.seats.GetByID(ctx, reservation.SeatID)
	if err != nil {
		return model.Payment{}, err
	}

	var payment model.Payment
	err = s.locks.Execute(ctx, lock.PointKey(userID), s.lockWait, s.lockLease, func() error {
		var err error
		payment, err = s.store.ConfirmPayment(ctx, userID, reservationID, seat.ID, seat.Price)
		return err
	})
	if err != nil {
		return model.Payment{}, err
	}

	// Consume the queue token now that the purchase is complete.  A
	// token that already lapsed is fine; the slot is free either way.
	if t, err := s.gate.GetStatus(ctx, token); err == nil && t.Status != model.TokenExpired {
		_ = s.gate.ExpireToken(ctx, t)
	}

	// The seat left the purchasable pool for good.
	s.cache.EvictAvailableSeats(ctx, seat.ScheduleID)
	return payment, nil
}
