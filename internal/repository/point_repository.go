package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/jihoon-dev/concert-reservation/internal/model"
)

// PointRepo provides data access to the points and point_histories
// tables.  Charge and Use are transactional units that re-read the
// balance under a row lock, apply the delta via the domain model and
// append an immutable ledger entry.  Callers additionally hold the
// per-user distributed lock so unrelated users never contend on either
// level.
type PointRepo struct {
	db *sql.DB
}

// NewPointRepo returns a new PointRepo bound to the provided database.
func NewPointRepo(db *sql.DB) *PointRepo { return &PointRepo{db: db} }

// CreateForUser inserts a zero-balance row for a new user.
func (r *PointRepo) CreateForUser(ctx context.Context, userID uint64) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO points (user_id, balance) VALUES (?, 0)`, userID)
	return err
}

// GetByUser fetches a user's balance without locking.
func (r *PointRepo) GetByUser(ctx context.Context, userID uint64) (model.Point, error) {
	var p model.Point
	err := r.db.QueryRowContext(ctx,
		`SELECT id, user_id, balance, created_at, updated_at FROM points WHERE user_id = ? LIMIT 1`,
		userID).Scan(&p.ID, &p.UserID, &p.Balance, &p.CreatedAt, &p.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return model.Point{}, ErrPointNotFound
	}
	return p, err
}

// HistoryByUser returns the user's ledger entries, newest first.
func (r *PointRepo) HistoryByUser(ctx context.Context, userID uint64) ([]model.PointHistory, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, user_id, amount, type, created_at FROM point_histories
		 WHERE user_id = ? ORDER BY id DESC`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var histories []model.PointHistory
	for rows.Next() {
		var h model.PointHistory
		if err := rows.Scan(&h.ID, &h.UserID, &h.Amount, &h.Type, &h.CreatedAt); err != nil {
			return nil, err
		}
		histories = append(histories, h)
	}
	return histories, rows.Err()
}

// Charge adds amount to the balance and appends a CHARGE ledger entry.
func (r *PointRepo) Charge(ctx context.Context, userID uint64, amount int64) (model.Point, error) {
	return r.mutate(ctx, userID, amount, model.PointCharge)
}

// Use subtracts amount from the balance and appends a USE ledger entry.
// Fails with model.ErrInsufficientBalance when the balance cannot cover
// the amount, leaving it unchanged.
func (r *PointRepo) Use(ctx context.Context, userID uint64, amount int64) (model.Point, error) {
	return r.mutate(ctx, userID, amount, model.PointUse)
}

func (r *PointRepo) mutate(ctx context.Context, userID uint64, amount int64, txType string) (model.Point, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return model.Point{}, err
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	p, err := getPointForUpdate(ctx, tx, userID)
	if err != nil {
		return model.Point{}, err
	}

	switch txType {
	case model.PointCharge:
		err = p.Charge(amount)
	case model.PointUse:
		err = p.Use(amount)
	}
	if err != nil {
		return model.Point{}, err
	}

	if err := applyPointTx(ctx, tx, p, amount, txType); err != nil {
		return model.Point{}, err
	}

	if err := tx.Commit(); err != nil {
		return model.Point{}, err
	}
	committed = true
	return p, nil
}

// getPointForUpdate re-reads the balance row under an explicit row lock.
func getPointForUpdate(ctx context.Context, tx *sql.Tx, userID uint64) (model.Point, error) {
	var p model.Point
	err := tx.QueryRowContext(ctx,
		`SELECT id, user_id, balance, created_at, updated_at FROM points
		 WHERE user_id = ? LIMIT 1 FOR UPDATE`,
		userID).Scan(&p.ID, &p.UserID, &p.Balance, &p.CreatedAt, &p.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return model.Point{}, ErrPointNotFound
	}
	return p, err
}

// applyPointTx writes the new balance and the ledger entry inside tx.
func applyPointTx(ctx context.Context, tx *sql.Tx, p model.Point, amount int64, txType string) error {
	if _, err := tx.ExecContext(ctx,
		`UPDATE points SET balance = ? WHERE id = ?`, p.Balance, p.ID); err != nil {
		return err
	}
	_, err := tx.ExecContext(ctx,
		`INSERT INTO point_histories (user_id, amount, type) VALUES (?, ?, ?)`,
		p.UserID, amount, txType)
	return err
}
