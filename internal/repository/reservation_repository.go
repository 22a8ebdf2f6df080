package repository

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"github.com/jihoon-dev/concert-reservation/internal/model"
)

const reservationColumns = `id, user_id, seat_id, status, reserved_at, expires_at, created_at, updated_at`

// ReservationRepo provides data access to the reservations table and
// owns the two multi-table transactional units of the system: taking a
// temporary hold (seat + reservation + token in one transaction) and
// restoring expired holds in bulk.  Callers hold the per-seat
// distributed lock around ReserveSeat; the transaction guarantees that a
// crash mid-step never leaves seat, reservation and token inconsistent
// with each other.
type ReservationRepo struct {
	db *sql.DB
}

// NewReservationRepo returns a new ReservationRepo bound to the provided database.
func NewReservationRepo(db *sql.DB) *ReservationRepo { return &ReservationRepo{db: db} }

func scanReservation(row interface{ Scan(...any) error }) (model.Reservation, error) {
	var res model.Reservation
	err := row.Scan(&res.ID, &res.UserID, &res.SeatID, &res.Status,
		&res.ReservedAt, &res.ExpiresAt, &res.CreatedAt, &res.UpdatedAt)
	return res, err
}

// GetByID fetches a reservation by ID.
func (r *ReservationRepo) GetByID(ctx context.Context, id uint64) (model.Reservation, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+reservationColumns+` FROM reservations WHERE id = ? LIMIT 1`, id)
	res, err := scanReservation(row)
	if errors.Is(err, sql.ErrNoRows) {
		return model.Reservation{}, ErrReservationNotFound
	}
	return res, err
}

// FindAllByUser returns a user's reservations, newest first.
func (r *ReservationRepo) FindAllByUser(ctx context.Context, userID uint64) ([]model.Reservation, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+reservationColumns+` FROM reservations WHERE user_id = ? ORDER BY id DESC`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var reservations []model.Reservation
	for rows.Next() {
		res, err := scanReservation(rows)
		if err != nil {
			return nil, err
		}
		reservations = append(reservations, res)
	}
	return reservations, rows.Err()
}

// ReserveSeat atomically transitions a seat to TEMPORARY_RESERVED,
// creates the TEMPORARY reservation and consumes the caller's ACTIVE
// queue token.  All three mutations commit or roll back together.
//
// The seat status check relies on the caller holding the per-seat
// distributed lock, so the UPDATE's status guard is a safety net, not
// the primary exclusion mechanism.  ErrSeatNotAvailable is the expected
// outcome when a competing caller won the seat first;
// model.ErrTokenNotActive means the token was consumed or expired after
// the in-lock revalidation.
func (r *ReservationRepo) ReserveSeat(ctx context.Context, userID, scheduleID, seatID uint64, token string, now time.Time, hold time.Duration) (model.Reservation, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return model.Reservation{}, err
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	// Load the seat within the transaction scope.
	row := tx.QueryRowContext(ctx,
		`SELECT `+seatColumns+` FROM seats WHERE id = ? AND schedule_id = ? LIMIT 1`,
		seatID, scheduleID)
	seat, err := scanSeat(row)
	if errors.Is(err, sql.ErrNoRows) {
		return model.Reservation{}, ErrSeatNotFound
	}
	if err != nil {
		return model.Reservation{}, err
	}
	if err := seat.TemporaryReserve(); err != nil {
		return model.Reservation{}, err
	}

	// The status guard in the WHERE clause makes the transition
	// effective only if the seat is still AVAILABLE at write time.
	upd, err := tx.ExecContext(ctx,
		`UPDATE seats SET status = ? WHERE id = ? AND status = ?`,
		model.SeatTemporaryReserved, seatID, model.SeatAvailable)
	if err != nil {
		return model.Reservation{}, err
	}
	if n, err := upd.RowsAffected(); err != nil {
		return model.Reservation{}, err
	} else if n == 0 {
		return model.Reservation{}, model.ErrSeatNotAvailable
	}

	res := model.NewReservation(userID, seatID, now, hold)
	ins, err := tx.ExecContext(ctx,
		`INSERT INTO reservations (user_id, seat_id, status, reserved_at, expires_at) VALUES (?, ?, ?, ?, ?)`,
		res.UserID, res.SeatID, res.Status, res.ReservedAt, res.ExpiresAt)
	if err != nil {
		return model.Reservation{}, err
	}
	id, err := ins.LastInsertId()
	if err != nil {
		return model.Reservation{}, err
	}
	res.ID = uint64(id)

	// Consume the token, freeing the admission slot immediately.  If it
	// stopped being ACTIVE since the in-lock revalidation, abort the
	// whole unit.
	tok, err := tx.ExecContext(ctx,
		`UPDATE queue_tokens SET status = ? WHERE token = ? AND status = ?`,
		model.TokenExpired, token, model.TokenActive)
	if err != nil {
		return model.Reservation{}, err
	}
	if n, err := tok.RowsAffected(); err != nil {
		return model.Reservation{}, err
	} else if n == 0 {
		return model.Reservation{}, model.ErrTokenNotActive
	}

	if err := tx.Commit(); err != nil {
		return model.Reservation{}, err
	}
	committed = true
	return res, nil
}

// ExpiredGroup is one schedule's worth of lapsed temporary holds found
// by the scanner.  Grouping bounds message volume under bursty
// expiration: one expiry notice per schedule per tick.
type ExpiredGroup struct {
	ScheduleID uint64
	SeatIDs    []uint64
}

// FindExpiredTemporary returns all TEMPORARY reservations whose hold
// window lapsed before now, grouped by schedule.  Re-scanning the same
// still-expired rows is safe; the scanner mutates nothing.
func (r *ReservationRepo) FindExpiredTemporary(ctx context.Context, now time.Time) ([]ExpiredGroup, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT s.schedule_id, r.seat_id
		 FROM reservations r
		 JOIN seats s ON s.id = r.seat_id
		 WHERE r.status = ? AND r.expires_at < ?
		 ORDER BY s.schedule_id, r.seat_id`,
		model.ReservationTemporary, now)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var groups []ExpiredGroup
	idx := map[uint64]int{}
	for rows.Next() {
		var scheduleID, seatID uint64
		if err := rows.Scan(&scheduleID, &seatID); err != nil {
			return nil, err
		}
		i, ok := idx[scheduleID]
		if !ok {
			i = len(groups)
			idx[scheduleID] = i
			groups = append(groups, ExpiredGroup{ScheduleID: scheduleID})
		}
		groups[i].SeatIDs = append(groups[i].SeatIDs, seatID)
	}
	return groups, rows.Err()
}

// RestoreExpired returns the listed seats to AVAILABLE and marks their
// lapsed reservations EXPIRED, all in one transaction.  Both UPDATEs
// guard on the current status so redelivered notices are no-ops: a seat
// already AVAILABLE is simply not matched.  It returns how many seats
// were actually restored.
func (r *ReservationRepo) RestoreExpired(ctx context.Context, seatIDs []uint64) (int64, error) {
	if len(seatIDs) == 0 {
		return 0, nil
	}
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, err
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	placeholders := strings.TrimSuffix(strings.Repeat("?,", len(seatIDs)), ",")

	// Restore seats first, and only those whose hold actually lapsed.
	// A seat that was already restored and re-reserved by someone else
	// has no lapsed TEMPORARY reservation, so a redelivered notice
	// cannot free the new holder's seat.
	seatArgs := make([]any, 0, len(seatIDs)+4)
	seatArgs = append(seatArgs, model.SeatAvailable)
	for _, id := range seatIDs {
		seatArgs = append(seatArgs, id)
	}
	seatArgs = append(seatArgs, model.SeatTemporaryReserved, model.ReservationTemporary)

	upd, err := tx.ExecContext(ctx,
		`UPDATE seats s SET s.status = ?
		 WHERE s.id IN (`+placeholders+`) AND s.status = ?
		   AND EXISTS (
		       SELECT 1 FROM reservations r
		       WHERE r.seat_id = s.id AND r.status = ? AND r.expires_at <= UTC_TIMESTAMP()
		   )`,
		seatArgs...)
	if err != nil {
		return 0, err
	}
	restored, err := upd.RowsAffected()
	if err != nil {
		return 0, err
	}

	resArgs := make([]any, 0, len(seatIDs)+2)
	resArgs = append(resArgs, model.ReservationExpired)
	for _, id := range seatIDs {
		resArgs = append(resArgs, id)
	}
	resArgs = append(resArgs, model.ReservationTemporary)

	if _, err := tx.ExecContext(ctx,
		`UPDATE reservations SET status = ?
		 WHERE seat_id IN (`+placeholders+`) AND status = ? AND expires_at <= UTC_TIMESTAMP()`,
		resArgs...); err != nil {
		return 0, err
	}

	if err := tx.Commit(); err != nil {
		return 0, err
	}
	committed = true
	return restored, nil
}
