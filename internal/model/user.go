package model

import "time"

// User represents an application user record as stored in the `users`
// table.  Handlers define their own response types with JSON tags; this
// struct is used by the repository and service layers only.
type User struct {
	ID           uint64    // users.id
	Email        string    // users.email
	PasswordHash string    // users.password_hash
	IsActive     bool      // users.is_active
	CreatedAt    time.Time // users.created_at
	UpdatedAt    time.Time // users.updated_at
}
