// Package repository defines error types that are reused across multiple
// repositories.  These sentinel values allow higher layers such as
// services and handlers to distinguish between failure scenarios and
// translate them into specific responses (typically 404 for the
// not-found family).
package repository

import "errors"

// ErrUserNotFound is returned when no user row matches the query.
var ErrUserNotFound = errors.New("user not found")

// ErrEmailExists is returned when registration collides with an
// existing email address.
var ErrEmailExists = errors.New("email already exists")

// ErrTokenNotFound is returned when an unknown queue token is presented.
var ErrTokenNotFound = errors.New("queue token not found")

// ErrConcertNotFound is returned when no concert row matches the query.
var ErrConcertNotFound = errors.New("concert not found")

// ErrScheduleNotFound is returned when no schedule row matches the query.
var ErrScheduleNotFound = errors.New("concert schedule not found")

// ErrSeatNotFound is returned when no seat row matches the query.
var ErrSeatNotFound = errors.New("seat not found")

// ErrReservationNotFound is returned when no reservation row matches
// the query.
var ErrReservationNotFound = errors.New("reservation not found")

// ErrPointNotFound is returned when a user has no point balance row.
var ErrPointNotFound = errors.New("point balance not found")

// ErrPaymentNotFound is returned when no payment row matches the query.
var ErrPaymentNotFound = errors.New("payment not found")
