// Package admission implements the virtual waiting room.  Clients are
// issued queue tokens that move WAITING -> ACTIVE -> EXPIRED; only
// ACTIVE tokens may touch the reservation flow, which bounds how many
// clients act concurrently regardless of how many are waiting.
//
// Issuance and promotion both mutate the shared ordering state, so both
// run under the queue:promotion distributed lock.  In a multi-instance
// deployment this gives the gate a single logical writer; two instances
// promoting overlapping token sets would otherwise double-count
// admission slots.
package admission

import (
	"context"
	"log"
	"time"

	"github.com/jihoon-dev/concert-reservation/internal/lock"
	"github.com/jihoon-dev/concert-reservation/internal/model"
)

// TokenRepository is the persistence surface the gate needs.  It is
// satisfied by repository.QueueTokenRepo.
type TokenRepository interface {
	Create(ctx context.Context, t model.QueueToken) (model.QueueToken, error)
	GetByToken(ctx context.Context, token string) (model.QueueToken, error)
	FindLiveByUser(ctx context.Context, userID uint64) (*model.QueueToken, error)
	CountByStatus(ctx context.Context, status string) (int, error)
	CountActiveLive(ctx context.Context, now time.Time) (int, error)
	FindWaitingFIFO(ctx context.Context, limit int) ([]model.QueueToken, error)
	Update(ctx context.Context, t model.QueueToken) error
}

// Service is the queue-token state machine.
type Service struct {
	tokens TokenRepository
	locks  lock.Executor

	activeWindow time.Duration // how long a promoted token stays valid
	lockWait     time.Duration
	lockLease    time.Duration

	now func() time.Time
}

// NewService constructs the admission gate.
func NewService(tokens TokenRepository, locks lock.Executor, activeWindow, lockWait, lockLease time.Duration) *Service {
	if tokens == nil || locks == nil {
		panic("nil dependency passed to admission.NewService")
	}
	return &Service{
		tokens:       tokens,
		locks:        locks,
		activeWindow: activeWindow,
		lockWait:     lockWait,
		lockLease:    lockLease,
		now:          time.Now,
	}
}

// IssueToken returns the user's live token, creating a WAITING one at
// the back of the line if none exists.  Issuance is idempotent: a
// retried request gets the identical token back instead of a duplicate
// queue entry.
func (s *Service) IssueToken(ctx context.Context, userID uint64) (model.QueueToken, error) {
	// Cheap idempotency check outside the lock.
	if existing, err := s.tokens.FindLiveByUser(ctx, userID); err != nil {
		return model.QueueToken{}, err
	} else if existing != nil {
		return *existing, nil
	}

	var issued model.QueueToken
	err := s.locks.Execute(ctx, lock.PromotionKey, s.lockWait, s.lockLease, func() error {
		// Re-check inside the lock: the same user may have raced
		// themselves through two instances.
		existing, err := s.tokens.FindLiveByUser(ctx, userID)
		if err != nil {
			return err
		}
		if existing != nil {
			issued = *existing
			return nil
		}
		waiting, err := s.tokens.CountByStatus(ctx, model.TokenWaiting)
		if err != nil {
			return err
		}
		issued, err = s.tokens.Create(ctx, model.NewQueueToken(userID, waiting+1))
		return err
	})
	if err != nil {
		return model.QueueToken{}, err
	}
	return issued, nil
}

// GetStatus returns the token for polling clients.
func (s *Service) GetStatus(ctx context.Context, token string) (model.QueueToken, error) {
	return s.tokens.GetByToken(ctx, token)
}

// ValidateActive checks that the token currently grants admission.  An
// ACTIVE token whose window lapsed is transitioned to EXPIRED here and
// the call fails with model.ErrTokenExpired.  This lazy expiry is an
// intentional state change performed by validation, which is why no
// background sweep of ACTIVE tokens exists.
func (s *Service) ValidateActive(ctx context.Context, token string) (model.QueueToken, error) {
	t, err := s.tokens.GetByToken(ctx, token)
	if err != nil {
		return model.QueueToken{}, err
	}
	if err := t.ValidateActive(s.now()); err != nil {
		if err == model.ErrTokenExpired {
			t.Expire()
			if updErr := s.tokens.Update(ctx, t); updErr != nil {
				return model.QueueToken{}, updErr
			}
		}
		return model.QueueToken{}, err
	}
	return t, nil
}

// ActivateWaiting promotes up to count of the oldest WAITING tokens to
// ACTIVE, each with a fresh activation window, then renumbers the
// remaining waiters so polling clients see shrinking positions.
func (s *Service) ActivateWaiting(ctx context.Context, count int) error {
	if count <= 0 {
		return nil
	}
	return s.locks.Execute(ctx, lock.PromotionKey, s.lockWait, s.lockLease, func() error {
		waiting, err := s.tokens.FindWaitingFIFO(ctx, count)
		if err != nil {
			return err
		}
		now := s.now()
		for _, t := range waiting {
			t.Activate(now, s.activeWindow)
			if err := s.tokens.Update(ctx, t); err != nil {
				return err
			}
		}
		if len(waiting) > 0 {
			log.Printf("admission: promoted %d token(s)", len(waiting))
		}
		return s.recomputePositions(ctx)
	})
}

// RecomputePositions renumbers all WAITING tokens by creation order.
func (s *Service) RecomputePositions(ctx context.Context) error {
	return s.locks.Execute(ctx, lock.PromotionKey, s.lockWait, s.lockLease, func() error {
		return s.recomputePositions(ctx)
	})
}

// recomputePositions must run with the promotion lock held.
func (s *Service) recomputePositions(ctx context.Context) error {
	waiting, err := s.tokens.FindWaitingFIFO(ctx, 0)
	if err != nil {
		return err
	}
	for i, t := range waiting {
		if t.Position == i+1 {
			continue
		}
		t.UpdatePosition(i + 1)
		if err := s.tokens.Update(ctx, t); err != nil {
			return err
		}
	}
	return nil
}

// ExpireToken consumes a token explicitly, freeing its admission slot
// immediately instead of waiting for the TTL.
func (s *Service) ExpireToken(ctx context.Context, t model.QueueToken) error {
	t.Expire()
	return s.tokens.Update(ctx, t)
}

// ActiveCount reports how many admission slots are currently taken.
// Lapsed ACTIVE tokens awaiting lazy expiry do not count.
func (s *Service) ActiveCount(ctx context.Context) (int, error) {
	return s.tokens.CountActiveLive(ctx, s.now())
}
