package service

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jihoon-dev/concert-reservation/internal/model"
)

type stubReservationStore struct {
	fakeReservationStore
	byID    model.Reservation
	byIDErr error
}

func (s *stubReservationStore) GetByID(context.Context, uint64) (model.Reservation, error) {
	return s.byID, s.byIDErr
}

type fakeSeatReader struct {
	seat model.Seat
	err  error
}

func (r *fakeSeatReader) GetByID(context.Context, uint64) (model.Seat, error) {
	return r.seat, r.err
}

type fakePaymentStore struct {
	confirms int
	err      error
	gotPrice int64
	stored   model.Payment
}

func (s *fakePaymentStore) GetByID(context.Context, uint64) (model.Payment, error) {
	return s.stored, nil
}

func (s *fakePaymentStore) ConfirmPayment(_ context.Context, userID, reservationID, _ uint64, price int64) (model.Payment, error) {
	s.confirms++
	s.gotPrice = price
	if s.err != nil {
		return model.Payment{}, s.err
	}
	p := model.NewPayment(reservationID, userID, price)
	p.ID = 1
	return p, nil
}

func temporaryReservation(userID, seatID uint64) model.Reservation {
	return model.Reservation{
		ID:        7,
		UserID:    userID,
		SeatID:    seatID,
		Status:    model.ReservationTemporary,
		ExpiresAt: time.Now().UTC().Add(4 * time.Minute),
	}
}

func TestPaymentProcess(t *testing.T) {
	t.Parallel()

	gate := &fakeGate{}
	reservations := &stubReservationStore{byID: temporaryReservation(1, 10)}
	seats := &fakeSeatReader{seat: model.Seat{ID: 10, ScheduleID: 3, Price: 50000, Status: model.SeatTemporaryReserved}}
	store := &fakePaymentStore{}
	cache := &fakeCache{}
	svc := NewPaymentService(gate, reservations, seats, store, cache, newKeyedLock(), time.Second, 5*time.Second)

	p, err := svc.Process(context.Background(), 1, 7, "tok")
	require.NoError(t, err)
	assert.Equal(t, int64(50000), p.Amount)
	assert.Equal(t, uint64(7), p.ReservationID)
	assert.Equal(t, 1, store.confirms)
	assert.Equal(t, []string{"tok"}, gate.expired)
	assert.Equal(t, int32(1), atomic.LoadInt32(&cache.evictions))
}

func TestPaymentGetEnforcesOwnership(t *testing.T) {
	t.Parallel()

	store := &fakePaymentStore{stored: model.Payment{ID: 1, UserID: 1, ReservationID: 7, Amount: 50000}}
	svc := NewPaymentService(&fakeGate{}, &stubReservationStore{}, &fakeSeatReader{}, store, &fakeCache{}, newKeyedLock(), time.Second, 5*time.Second)

	p, err := svc.Get(context.Background(), 1, 1)
	require.NoError(t, err)
	assert.Equal(t, int64(50000), p.Amount)

	_, err = svc.Get(context.Background(), 2, 1)
	assert.ErrorIs(t, err, model.ErrNotReservationOwner)
}

func TestPaymentProcessNotOwner(t *testing.T) {
	t.Parallel()

	reservations := &stubReservationStore{byID: temporaryReservation(2, 10)}
	store := &fakePaymentStore{}
	svc := NewPaymentService(&fakeGate{}, reservations, &fakeSeatReader{}, store, &fakeCache{}, newKeyedLock(), time.Second, 5*time.Second)

	_, err := svc.Process(context.Background(), 1, 7, "tok")
	assert.ErrorIs(t, err, model.ErrNotReservationOwner)
	assert.Equal(t, 0, store.confirms)
}

func TestPaymentProcessNotPayable(t *testing.T) {
	t.Parallel()

	confirmed := temporaryReservation(1, 10)
	confirmed.Status = model.ReservationConfirmed
	reservations := &stubReservationStore{byID: confirmed}
	store := &fakePaymentStore{}
	svc := NewPaymentService(&fakeGate{}, reservations, &fakeSeatReader{}, store, &fakeCache{}, newKeyedLock(), time.Second, 5*time.Second)

	_, err := svc.Process(context.Background(), 1, 7, "tok")
	assert.ErrorIs(t, err, model.ErrReservationNotPayable)
	assert.Equal(t, 0, store.confirms)
}

func TestPaymentProcessInsufficientBalance(t *testing.T) {
	t.Parallel()

	gate := &fakeGate{}
	reservations := &stubReservationStore{byID: temporaryReservation(1, 10)}
	seats := &fakeSeatReader{seat: model.Seat{ID: 10, ScheduleID: 3, Price: 50000}}
	store := &fakePaymentStore{err: model.ErrInsufficientBalance}
	cache := &fakeCache{}
	svc := NewPaymentService(gate, reservations, seats, store, cache, newKeyedLock(), time.Second, 5*time.Second)

	_, err := svc.Process(context.Background(), 1, 7, "tok")
	assert.ErrorIs(t, err, model.ErrInsufficientBalance)
	// A failed debit leaves the token and the cache alone.
	assert.Empty(t, gate.expired)
	assert.Equal(t, int32(0), atomic.LoadInt32(&cache.evictions))
}
