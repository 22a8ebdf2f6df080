package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSeatTemporaryReserve(t *testing.T) {
	t.Parallel()

	s := Seat{Status: SeatAvailable}
	assert.NoError(t, s.TemporaryReserve())
	assert.Equal(t, SeatTemporaryReserved, s.Status)

	// A second hold attempt on the same seat must fail.
	assert.ErrorIs(t, s.TemporaryReserve(), ErrSeatNotAvailable)

	sold := Seat{Status: SeatReserved}
	assert.ErrorIs(t, sold.TemporaryReserve(), ErrSeatNotAvailable)
}

func TestSeatConfirmReservation(t *testing.T) {
	t.Parallel()

	s := Seat{Status: SeatTemporaryReserved}
	assert.NoError(t, s.ConfirmReservation())
	assert.Equal(t, SeatReserved, s.Status)

	free := Seat{Status: SeatAvailable}
	assert.ErrorIs(t, free.ConfirmReservation(), ErrSeatNotAvailable)
}

func TestSeatRestoreIdempotent(t *testing.T) {
	t.Parallel()

	s := Seat{Status: SeatTemporaryReserved}
	s.Restore()
	assert.Equal(t, SeatAvailable, s.Status)

	// Redelivered notices restore again; nothing changes.
	s.Restore()
	assert.Equal(t, SeatAvailable, s.Status)

	sold := Seat{Status: SeatReserved}
	sold.Restore()
	assert.Equal(t, SeatReserved, sold.Status)
}
