package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/jihoon-dev/concert-reservation/internal/model"
)

const seatColumns = `id, schedule_id, seat_number, status, price, created_at, updated_at`

// SeatRepo provides data access to the seats table.  Status transitions
// on the reservation hot path happen inside ReservationRepo's
// transactional units; this repo covers reads and the confirm path.
type SeatRepo struct {
	db *sql.DB
}

// NewSeatRepo returns a new SeatRepo bound to the provided database.
func NewSeatRepo(db *sql.DB) *SeatRepo { return &SeatRepo{db: db} }

func scanSeat(row interface{ Scan(...any) error }) (model.Seat, error) {
	var s model.Seat
	err := row.Scan(&s.ID, &s.ScheduleID, &s.SeatNumber, &s.Status, &s.Price,
		&s.CreatedAt, &s.UpdatedAt)
	return s, err
}

// GetByID fetches a seat by ID.
func (r *SeatRepo) GetByID(ctx context.Context, id uint64) (model.Seat, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+seatColumns+` FROM seats WHERE id = ? LIMIT 1`, id)
	s, err := scanSeat(row)
	if errors.Is(err, sql.ErrNoRows) {
		return model.Seat{}, ErrSeatNotFound
	}
	return s, err
}

// ListAvailableBySchedule returns every AVAILABLE seat for a schedule
// ordered by seat number.  This feeds the read-through cache; the result
// is a snapshot and never authoritative.
func (r *SeatRepo) ListAvailableBySchedule(ctx context.Context, scheduleID uint64) ([]model.Seat, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+seatColumns+` FROM seats
		 WHERE schedule_id = ? AND status = ? ORDER BY seat_number`,
		scheduleID, model.SeatAvailable)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var seats []model.Seat
	for rows.Next() {
		s, err := scanSeat(rows)
		if err != nil {
			return nil, err
		}
		seats = append(seats, s)
	}
	return seats, rows.Err()
}
