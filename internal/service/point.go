package service

import (
	"context"
	"time"

	"github.com/jihoon-dev/concert-reservation/internal/lock"
	"github.com/jihoon-dev/concert-reservation/internal/model"
)

// PointStore is satisfied by repository.PointRepo.
type PointStore interface {
	GetByUser(ctx context.Context, userID uint64) (model.Point, error)
	HistoryByUser(ctx context.Context, userID uint64) ([]model.PointHistory, error)
	Charge(ctx context.Context, userID uint64, amount int64) (model.Point, error)
	Use(ctx context.Context, userID uint64, amount int64) (model.Point, error)
}

// PointService guards balance mutations with the per-user distributed
// lock.  The lock key is scoped per user so unrelated users never
// contend; inside the lock the repository re-reads the balance under a
// row lock before applying the delta.
type PointService struct {
	store PointStore
	locks lock.Executor

	lockWait  time.Duration
	lockLease time.Duration
}

// NewPointService wires the point ledger guard.
func NewPointService(store PointStore, locks lock.Executor, lockWait, lockLease time.Duration) *PointService {
	if store == nil || locks == nil {
		panic("nil dependency passed to NewPointService")
	}
	return &PointService{store: store, locks: locks, lockWait: lockWait, lockLease: lockLease}
}

// Get returns the user's current balance.
func (s *PointService) Get(ctx context.Context, userID uint64) (model.Point, error) {
	return s.store.GetByUser(ctx, userID)
}

// History returns the user's ledger entries, newest first.
func (s *PointService) History(ctx context.Context, userID uint64) ([]model.PointHistory, error) {
	return s.store.HistoryByUser(ctx, userID)
}

// Charge adds amount to the user's balance.
func (s *PointService) Charge(ctx context.Context, userID uint64, amount int64) (model.Point, error) {
	return s.mutate(ctx, userID, amount, s.store.Charge)
}

// Use subtracts amount from the user's balance, failing with
// model.ErrInsufficientBalance when it cannot cover the amount.
func (s *PointService) Use(ctx context.Context, userID uint64, amount int64) (model.Point, error) {
	return s.mutate(ctx, userID, amount, s.store.Use)
}

func (s *PointService) mutate(ctx context.Context, userID uint64, amount int64, op func(context.Context, uint64, int64) (model.Point, error)) (model.Point, error) {
	var point model.Point
	err := s.locks.Execute(ctx, lock.PointKey(userID), s.lockWait, s.lockLease, func() error {
		var err error
		point, err = op(ctx, userID, amount)
		return err
	})
	if err != nil {
		return model.Point{}, err
	}
	return point, nil
}
