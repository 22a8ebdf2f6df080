package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/jihoon-dev/concert-reservation/internal/model"
)

const queueTokenColumns = `id, user_id, token, status, position, activated_at, expires_at, created_at, updated_at`

// QueueTokenRepo provides data access to the queue_tokens table.  The
// admission gate is the only writer; the reservation workflow reads
// tokens for validation and consumes them inside its own transaction.
// All timestamps are UTC.
type QueueTokenRepo struct {
	db *sql.DB
}

// NewQueueTokenRepo returns a new QueueTokenRepo bound to the provided database.
func NewQueueTokenRepo(db *sql.DB) *QueueTokenRepo { return &QueueTokenRepo{db: db} }

func scanQueueToken(row interface{ Scan(...any) error }) (model.QueueToken, error) {
	var t model.QueueToken
	err := row.Scan(&t.ID, &t.UserID, &t.Token, &t.Status, &t.Position,
		&t.ActivatedAt, &t.ExpiresAt, &t.CreatedAt, &t.UpdatedAt)
	return t, err
}

// Create inserts a fresh token and returns it with its generated ID.
func (r *QueueTokenRepo) Create(ctx context.Context, t model.QueueToken) (model.QueueToken, error) {
	res, err := r.db.ExecContext(ctx,
		`INSERT INTO queue_tokens (user_id, token, status, position) VALUES (?, ?, ?, ?)`,
		t.UserID, t.Token, t.Status, t.Position)
	if err != nil {
		return model.QueueToken{}, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return model.QueueToken{}, err
	}
	t.ID = uint64(id)
	return t, nil
}

// GetByToken fetches a token by its opaque string.
func (r *QueueTokenRepo) GetByToken(ctx context.Context, token string) (model.QueueToken, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+queueTokenColumns+` FROM queue_tokens WHERE token = ? LIMIT 1`, token)
	t, err := scanQueueToken(row)
	if errors.Is(err, sql.ErrNoRows) {
		return model.QueueToken{}, ErrTokenNotFound
	}
	return t, err
}

// FindLiveByUser returns the user's WAITING or ACTIVE token, or nil when
// none exists.  The unique live-token invariant means there is at most one.
func (r *QueueTokenRepo) FindLiveByUser(ctx context.Context, userID uint64) (*model.QueueToken, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+queueTokenColumns+` FROM queue_tokens
		 WHERE user_id = ? AND status IN (?, ?) ORDER BY id LIMIT 1`,
		userID, model.TokenWaiting, model.TokenActive)
	t, err := scanQueueToken(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &t, nil
}

// CountByStatus counts tokens in the given status.
func (r *QueueTokenRepo) CountByStatus(ctx context.Context, status string) (int, error) {
	var n int
	err := r.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM queue_tokens WHERE status = ?`, status).Scan(&n)
	return n, err
}

// FindWaitingFIFO returns up to limit WAITING tokens ordered by creation.
// A non-positive limit returns all of them (used for renumbering).
func (r *QueueTokenRepo) FindWaitingFIFO(ctx context.Context, limit int) ([]model.QueueToken, error) {
	q := `SELECT ` + queueTokenColumns + ` FROM queue_tokens WHERE status = ? ORDER BY id`
	args := []any{model.TokenWaiting}
	if limit > 0 {
		q += ` LIMIT ?`
		args = append(args, limit)
	}
	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var tokens []model.QueueToken
	for rows.Next() {
		t, err := scanQueueToken(rows)
		if err != nil {
			return nil, err
		}
		tokens = append(tokens, t)
	}
	return tokens, rows.Err()
}

// CountActiveLive counts ACTIVE tokens whose activation window has not
// lapsed.  Lapsed tokens are only transitioned on their next validation,
// but they must not keep occupying admission slots in the meantime.
func (r *QueueTokenRepo) CountActiveLive(ctx context.Context, now time.Time) (int, error) {
	var n int
	err := r.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM queue_tokens WHERE status = ? AND expires_at > ?`,
		model.TokenActive, now).Scan(&n)
	return n, err
}

// Update persists the mutable fields of a token.
func (r *QueueTokenRepo) Update(ctx context.Context, t model.QueueToken) error {
	_, err := r.db.ExecContext(ctx,
		`UPDATE queue_tokens SET status = ?, position = ?, activated_at = ?, expires_at = ? WHERE id = ?`,
		t.Status, t.Position, t.ActivatedAt, t.ExpiresAt, t.ID)
	return err
}
