package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/jihoon-dev/concert-reservation/internal/model"
)

// PaymentRepo provides data access to the payments table and owns the
// payment confirmation transactional unit: point debit, ledger entry,
// payment record, seat RESERVED and reservation CONFIRMED commit or
// roll back as one.  The caller holds the per-user point lock; no seat
// lock is needed because the seat is already exclusively owned by the
// reservation being paid.
type PaymentRepo struct {
	db *sql.DB
}

// NewPaymentRepo returns a new PaymentRepo bound to the provided database.
func NewPaymentRepo(db *sql.DB) *PaymentRepo { return &PaymentRepo{db: db} }

// GetByID fetches a payment by ID.
func (r *PaymentRepo) GetByID(ctx context.Context, id uint64) (model.Payment, error) {
	var p model.Payment
	err := r.db.QueryRowContext(ctx,
		`SELECT id, reservation_id, user_id, amount, created_at FROM payments WHERE id = ? LIMIT 1`,
		id).Scan(&p.ID, &p.ReservationID, &p.UserID, &p.Amount, &p.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return model.Payment{}, ErrPaymentNotFound
	}
	return p, err
}

// ConfirmPayment debits the user's points by the seat price and
// finalizes the reservation.  Fails with model.ErrInsufficientBalance
// when the balance cannot cover the price and with
// model.ErrReservationNotPayable when the reservation stopped being
// TEMPORARY (for example, its hold lapsed and was restored while the
// caller hesitated).
func (r *PaymentRepo) ConfirmPayment(ctx context.Context, userID, reservationID, seatID uint64, price int64) (model.Payment, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return model.Payment{}, err
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	p, err := getPointForUpdate(ctx, tx, userID)
	if err != nil {
		return model.Payment{}, err
	}
	if err := p.Use(price); err != nil {
		return model.Payment{}, err
	}
	if err := applyPointTx(ctx, tx, p, price, model.PointUse); err != nil {
		return model.Payment{}, err
	}

	// Confirm the reservation; the status guard aborts the whole unit
	// when the hold is no longer payable.
	res, err := tx.ExecContext(ctx,
		`UPDATE reservations SET status = ? WHERE id = ? AND status = ?`,
		model.ReservationConfirmed, reservationID, model.ReservationTemporary)
	if err != nil {
		return model.Payment{}, err
	}
	if n, err := res.RowsAffected(); err != nil {
		return model.Payment{}, err
	} else if n == 0 {
		return model.Payment{}, model.ErrReservationNotPayable
	}

	if _, err := tx.ExecContext(ctx,
		`UPDATE seats SET status = ? WHERE id = ? AND status = ?`,
		model.SeatReserved, seatID, model.SeatTemporaryReserved); err != nil {
		return model.Payment{}, err
	}

	pay := model.NewPayment(reservationID, userID, price)
	ins, err := tx.ExecContext(ctx,
		`INSERT INTO payments (reservation_id, user_id, amount) VALUES (?, ?, ?)`,
		pay.ReservationID, pay.UserID, pay.Amount)
	if err != nil {
		return model.Payment{}, err
	}
	id, err := ins.LastInsertId()
	if err != nil {
		return model.Payment{}, err
	}
	pay.ID = uint64(id)

	if err := tx.Commit(); err != nil {
		return model.Payment{}, err
	}
	committed = true
	return pay, nil
}
