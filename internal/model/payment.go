package model

import "time"

// Payment records a completed point debit for a reservation.
type Payment struct {
	ID            uint64    // payments.id
	ReservationID uint64    // payments.reservation_id
	UserID        uint64    // payments.user_id
	Amount        int64     // payments.amount
	CreatedAt     time.Time // payments.created_at
}

// NewPayment builds a payment row for a confirmed reservation.
func NewPayment(reservationID, userID uint64, amount int64) Payment {
	return Payment{
		ReservationID: reservationID,
		UserID:        userID,
		Amount:        amount,
	}
}
