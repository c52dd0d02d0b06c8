package domain

import "time"

// User represents a user identity record.
// PasswordHash is nil for accounts provisioned without a password; such
// accounts can never complete password login.
type User struct {
	ID            string    `json:"id" db:"id"`
	Email         string    `json:"email" db:"email"`
	PasswordHash  *string   `json:"-" db:"password_hash"`
	Name          *string   `json:"name" db:"name"`
	EmailVerified bool      `json:"email_verified" db:"email_verified"`
	CreatedAt     time.Time `json:"created_at" db:"created_at"`
}
