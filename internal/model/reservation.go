package model

import "time"

// Reservation statuses.  TEMPORARY holds lapse into EXPIRED when the
// restoration pipeline reclaims their seats; CONFIRMED is reached only
// through payment completion.
const (
	ReservationTemporary = "TEMPORARY"
	ReservationConfirmed = "CONFIRMED"
	ReservationExpired   = "EXPIRED"
)

// Reservation records a user's hold on a single seat.  It is created
// atomically with the seat's TEMPORARY_RESERVED transition.
//
// Fields:
//
//	ID         – primary key identifier.
//	UserID     – user who made the reservation.
//	SeatID     – seat being reserved.
//	Status     – TEMPORARY, CONFIRMED or EXPIRED.
//	ReservedAt – when the hold was taken.
//	ExpiresAt  – end of the hold window (ReservedAt + hold duration).
//	CreatedAt  – creation timestamp.
//	UpdatedAt  – last update timestamp.
type Reservation struct {
	ID         uint64    // reservations.id
	UserID     uint64    // reservations.user_id
	SeatID     uint64    // reservations.seat_id
	Status     string    // reservations.status
	ReservedAt time.Time // reservations.reserved_at
	ExpiresAt  time.Time // reservations.expires_at
	CreatedAt  time.Time // reservations.created_at
	UpdatedAt  time.Time // reservations.updated_at
}

// NewReservation builds a TEMPORARY reservation with its hold window
// anchored at now.
func NewReservation(userID, seatID uint64, now time.Time, hold time.Duration) Reservation {
	return Reservation{
		UserID:     userID,
		SeatID:     seatID,
		Status:     ReservationTemporary,
		ReservedAt: now,
		ExpiresAt:  now.Add(hold),
	}
}

// ValidateOwnership checks that the caller made this reservation.
func (r *Reservation) ValidateOwnership(userID uint64) error {
	if r.UserID != userID {
		return ErrNotReservationOwner
	}
	return nil
}

// ConfirmPayment transitions a TEMPORARY reservation to CONFIRMED.
func (r *Reservation) ConfirmPayment() error {
	if r.Status != ReservationTemporary {
		return ErrReservationNotPayable
	}
	r.Status = ReservationConfirmed
	return nil
}
