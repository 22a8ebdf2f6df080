package model

import "time"

// Seat statuses.  Transitions are monotonic
// (AVAILABLE -> TEMPORARY_RESERVED -> RESERVED) except for the
// expiry-restoration path which moves TEMPORARY_RESERVED back to
// AVAILABLE.
const (
	SeatAvailable         = "AVAILABLE"
	SeatTemporaryReserved = "TEMPORARY_RESERVED"
	SeatReserved          = "RESERVED"
)

// Seat describes a single sellable seat within a concert schedule.
// Only one writer may perform the AVAILABLE -> TEMPORARY_RESERVED
// transition for a given seat; that is enforced by the per-seat
// distributed lock, not by this struct.
//
// Fields:
//
//	ID         – primary key identifier.
//	ScheduleID – concert schedule this seat belongs to.
//	SeatNumber – seat number within the schedule.
//	Status     – AVAILABLE, TEMPORARY_RESERVED or RESERVED.
//	Price      – seat price in points.
//	CreatedAt  – creation timestamp.
//	UpdatedAt  – last update timestamp.
type Seat struct {
	ID         uint64    // seats.id
	ScheduleID uint64    // seats.schedule_id
	SeatNumber uint32    // seats.seat_number
	Status     string    // seats.status
	Price      int64     // seats.price
	CreatedAt  time.Time // seats.created_at
	UpdatedAt  time.Time // seats.updated_at
}

// TemporaryReserve moves an AVAILABLE seat into the hold state.
func (s *Seat) TemporaryReserve() error {
	if s.Status != SeatAvailable {
		return ErrSeatNotAvailable
	}
	s.Status = SeatTemporaryReserved
	return nil
}

// ConfirmReservation finalizes a held seat after payment.
func (s *Seat) ConfirmReservation() error {
	if s.Status != SeatTemporaryReserved {
		return ErrSeatNotAvailable
	}
	s.Status = SeatReserved
	return nil
}

// Restore returns a held seat to the pool.  Restoring an already
// AVAILABLE seat is a no-op so redelivered expiry notices stay harmless.
func (s *Seat) Restore() {
	if s.Status == SeatTemporaryReserved {
		s.Status = SeatAvailable
	}
}
