package model

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestNewReservation(t *testing.T) {
	t.Parallel()

	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	r := NewReservation(5, 17, now, 5*time.Minute)

	assert.Equal(t, ReservationTemporary, r.Status)
	assert.Equal(t, now, r.ReservedAt)
	assert.Equal(t, now.Add(5*time.Minute), r.ExpiresAt)
}

func TestReservationValidateOwnership(t *testing.T) {
	t.Parallel()

	r := Reservation{UserID: 5}
	assert.NoError(t, r.ValidateOwnership(5))
	assert.ErrorIs(t, r.ValidateOwnership(6), ErrNotReservationOwner)
}

func TestReservationConfirmPayment(t *testing.T) {
	t.Parallel()

	r := Reservation{Status: ReservationTemporary}
	assert.NoError(t, r.ConfirmPayment())
	assert.Equal(t, ReservationConfirmed, r.Status)

	// Already confirmed or restored reservations cannot be paid.
	assert.ErrorIs(t, r.ConfirmPayment(), ErrReservationNotPayable)

	expired := Reservation{Status: ReservationExpired}
	assert.ErrorIs(t, expired.ConfirmPayment(), ErrReservationNotPayable)
}

func TestScheduleValidateAvailable(t *testing.T) {
	t.Parallel()

	show := ConcertSchedule{ShowDate: time.Date(2026, 3, 1, 19, 0, 0, 0, time.UTC)}

	assert.NoError(t, show.ValidateAvailable(time.Date(2026, 2, 28, 12, 0, 0, 0, time.UTC)))
	// Open through the end of the show date itself.
	assert.NoError(t, show.ValidateAvailable(time.Date(2026, 3, 1, 23, 0, 0, 0, time.UTC)))
	assert.ErrorIs(t, show.ValidateAvailable(time.Date(2026, 3, 2, 0, 0, 1, 0, time.UTC)), ErrScheduleClosed)
}
