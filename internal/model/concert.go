package model

import "time"

// Concert is a performance with one or more dated schedules.
type Concert struct {
	ID        uint64    // concerts.id
	Title     string    // concerts.title
	CreatedAt time.Time // concerts.created_at
	UpdatedAt time.Time // concerts.updated_at
}

// ConcertSchedule is a dated occurrence of a concert.  Booking stays open
// through the schedule date itself.
type ConcertSchedule struct {
	ID        uint64    // concert_schedules.id
	ConcertID uint64    // concert_schedules.concert_id
	ShowDate  time.Time // concert_schedules.show_date
	CreatedAt time.Time // concert_schedules.created_at
	UpdatedAt time.Time // concert_schedules.updated_at
}

// ValidateAvailable reports whether the schedule still accepts
// reservations.  Bookings close at the end of the show date.
func (s *ConcertSchedule) ValidateAvailable(now time.Time) error {
	dayEnd := time.Date(s.ShowDate.Year(), s.ShowDate.Month(), s.ShowDate.Day(),
		23, 59, 59, 0, s.ShowDate.Location())
	if now.After(dayEnd) {
		return ErrScheduleClosed
	}
	return nil
}
