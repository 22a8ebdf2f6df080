// Package model defines the domain entities and their state machines.
// This file collects the sentinel errors raised by illegal state
// transitions.  Higher layers compare against them with errors.Is and
// translate them into user-facing statuses: token errors mean "re-enter
// the queue", ErrSeatNotAvailable means "pick another seat" and is the
// expected outcome under contention rather than a bug, and
// ErrInsufficientBalance is an actionable user error.
package model

import "errors"

// ErrTokenNotActive is returned when an operation requires an ACTIVE
// queue token but the token is still WAITING or already EXPIRED.
var ErrTokenNotActive = errors.New("queue token is not active")

// ErrTokenExpired is returned when an ACTIVE token's activation window
// has lapsed.  Detecting it transitions the token to EXPIRED.
var ErrTokenExpired = errors.New("queue token has expired")

// ErrSeatNotAvailable is returned when a seat is already temporarily or
// permanently reserved.  Under contention this is the common case: of N
// concurrent attempts on one seat, N-1 end here.
var ErrSeatNotAvailable = errors.New("seat is not available")

// ErrScheduleClosed is returned when a schedule's date has passed and it
// no longer accepts reservations.
var ErrScheduleClosed = errors.New("schedule is closed for booking")

// ErrInsufficientBalance is returned when a point debit exceeds the
// current balance.  The balance is left unchanged.
var ErrInsufficientBalance = errors.New("insufficient point balance")

// ErrInvalidAmount is returned when a point mutation is attempted with a
// non-positive amount.
var ErrInvalidAmount = errors.New("amount must be positive")

// ErrNotReservationOwner is returned when a caller tries to pay for a
// reservation made by someone else.
var ErrNotReservationOwner = errors.New("reservation belongs to another user")

// ErrReservationNotPayable is returned when payment is attempted on a
// reservation that is not in the TEMPORARY state.
var ErrReservationNotPayable = errors.New("reservation is not payable")
