package model

import (
	"time"

	"github.com/google/uuid"
)

// Queue token statuses.  A token starts WAITING, is promoted to ACTIVE by
// the admission gate and ends EXPIRED, either by explicit consumption when
// a reservation completes or by its activation window lapsing.
const (
	TokenWaiting = "WAITING"
	TokenActive  = "ACTIVE"
	TokenExpired = "EXPIRED"
)

// QueueToken represents a client's place in the virtual waiting room.
// At most one non-EXPIRED token exists per user.  Position is meaningful
// only while the token is WAITING; promotion resets it to zero.
//
// Fields:
//
//	ID          – primary key identifier.
//	UserID      – owner of the token.
//	Token       – opaque unique token string handed to the client.
//	Status      – WAITING, ACTIVE or EXPIRED.
//	Position    – place in the waiting line (1-based, WAITING only).
//	ActivatedAt – when the token was promoted (nil while WAITING).
//	ExpiresAt   – end of the activation window (nil while WAITING).
//	CreatedAt   – creation timestamp; promotion order is FIFO on it.
//	UpdatedAt   – last update timestamp.
type QueueToken struct {
	ID          uint64     // queue_tokens.id
	UserID      uint64     // queue_tokens.user_id
	Token       string     // queue_tokens.token
	Status      string     // queue_tokens.status
	Position    int        // queue_tokens.position
	ActivatedAt *time.Time // queue_tokens.activated_at (nullable)
	ExpiresAt   *time.Time // queue_tokens.expires_at (nullable)
	CreatedAt   time.Time  // queue_tokens.created_at
	UpdatedAt   time.Time  // queue_tokens.updated_at
}

// NewQueueToken builds a fresh WAITING token for a user at the given
// position.  The token string is an opaque uuid; callers must not parse it.
func NewQueueToken(userID uint64, position int) QueueToken {
	return QueueToken{
		UserID:   userID,
		Token:    uuid.NewString(),
		Status:   TokenWaiting,
		Position: position,
	}
}

// Activate promotes the token to ACTIVE and grants it a fresh activation
// window.  The waiting position is reset.
func (t *QueueToken) Activate(now time.Time, window time.Duration) {
	exp := now.Add(window)
	t.Status = TokenActive
	t.Position = 0
	t.ActivatedAt = &now
	t.ExpiresAt = &exp
}

// Expire moves the token to its terminal state.  Used both for explicit
// consumption (reservation completed, slot freed immediately) and for
// lazy TTL expiry detected during validation.
func (t *QueueToken) Expire() {
	t.Status = TokenExpired
}

// UpdatePosition renumbers a WAITING token after a promotion batch so
// polling clients see monotonically shrinking positions.
func (t *QueueToken) UpdatePosition(position int) {
	t.Position = position
}

// ValidateActive reports whether the token currently grants admission.
// A token that is ACTIVE but past its activation window is NOT expired
// here: the caller is expected to persist the Expire transition and
// surface ErrTokenExpired.  This keeps the lazy expiry an explicit,
// intentional state change rather than a hidden side effect of a getter.
func (t *QueueToken) ValidateActive(now time.Time) error {
	if t.Status != TokenActive {
		return ErrTokenNotActive
	}
	if t.ExpiresAt != nil && now.After(*t.ExpiresAt) {
		return ErrTokenExpired
	}
	return nil
}
