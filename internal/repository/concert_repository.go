package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/jihoon-dev/concert-reservation/internal/model"
)

// ConcertRepo provides read access to concerts and their schedules.
type ConcertRepo struct {
	db *sql.DB
}

// NewConcertRepo returns a new ConcertRepo bound to the provided database.
func NewConcertRepo(db *sql.DB) *ConcertRepo { return &ConcertRepo{db: db} }

// ListConcerts returns all concerts ordered by ID.
func (r *ConcertRepo) ListConcerts(ctx context.Context) ([]model.Concert, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, title, created_at, updated_at FROM concerts ORDER BY id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var concerts []model.Concert
	for rows.Next() {
		var c model.Concert
		if err := rows.Scan(&c.ID, &c.Title, &c.CreatedAt, &c.UpdatedAt); err != nil {
			return nil, err
		}
		concerts = append(concerts, c)
	}
	return concerts, rows.Err()
}

// GetConcert fetches a single concert by ID.
func (r *ConcertRepo) GetConcert(ctx context.Context, id uint64) (model.Concert, error) {
	var c model.Concert
	err := r.db.QueryRowContext(ctx,
		`SELECT id, title, created_at, updated_at FROM concerts WHERE id = ? LIMIT 1`, id).
		Scan(&c.ID, &c.Title, &c.CreatedAt, &c.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return model.Concert{}, ErrConcertNotFound
	}
	return c, err
}

// ListSchedules returns all schedules for a concert ordered by show date.
func (r *ConcertRepo) ListSchedules(ctx context.Context, concertID uint64) ([]model.ConcertSchedule, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, concert_id, show_date, created_at, updated_at
		 FROM concert_schedules WHERE concert_id = ? ORDER BY show_date`, concertID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var schedules []model.ConcertSchedule
	for rows.Next() {
		var s model.ConcertSchedule
		if err := rows.Scan(&s.ID, &s.ConcertID, &s.ShowDate, &s.CreatedAt, &s.UpdatedAt); err != nil {
			return nil, err
		}
		schedules = append(schedules, s)
	}
	return schedules, rows.Err()
}

// GetSchedule fetches a single schedule by ID.
func (r *ConcertRepo) GetSchedule(ctx context.Context, id uint64) (model.ConcertSchedule, error) {
	var s model.ConcertSchedule
	err := r.db.QueryRowContext(ctx,
		`SELECT id, concert_id, show_date, created_at, updated_at
		 FROM concert_schedules WHERE id = ? LIMIT 1`, id).
		Scan(&s.ID, &s.ConcertID, &s.ShowDate, &s.CreatedAt, &s.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return model.ConcertSchedule{}, ErrScheduleNotFound
	}
	return s, err
}
