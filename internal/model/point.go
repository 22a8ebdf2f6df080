package model

import "time"

// Point transaction types recorded in the ledger.
const (
	PointCharge = "CHARGE"
	PointUse    = "USE"
)

// Point is a user's spendable balance.  All mutations go through the
// per-user distributed lock plus a row lock inside the transaction, so
// unrelated users never contend.
type Point struct {
	ID        uint64    // points.id
	UserID    uint64    // points.user_id
	Balance   int64     // points.balance
	CreatedAt time.Time // points.created_at
	UpdatedAt time.Time // points.updated_at
}

// Charge adds amount to the balance.
func (p *Point) Charge(amount int64) error {
	if amount <= 0 {
		return ErrInvalidAmount
	}
	p.Balance += amount
	return nil
}

// Use subtracts amount from the balance.  The balance is left untouched
// when it cannot cover the amount.
func (p *Point) Use(amount int64) error {
	if amount <= 0 {
		return ErrInvalidAmount
	}
	if p.Balance < amount {
		return ErrInsufficientBalance
	}
	p.Balance -= amount
	return nil
}

// PointHistory is an immutable ledger entry appended on every charge or
// use.  Rows are never updated or deleted.
type PointHistory struct {
	ID        uint64    // point_histories.id
	UserID    uint64    // point_histories.user_id
	Amount    int64     // point_histories.amount
	Type      string    // point_histories.type (CHARGE or USE)
	CreatedAt time.Time // point_histories.created_at
}
