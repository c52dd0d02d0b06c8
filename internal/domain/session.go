package domain

import "time"

// Session represents one active refresh credential. Only the SHA-256 digest
// of the refresh secret is ever stored; the plaintext secret is handed to the
// client exactly once and cannot be recovered from the row.
type Session struct {
	ID        string    `json:"id" db:"id"`
	UserID    string    `json:"user_id" db:"user_id"`
	TokenHash string    `json:"-" db:"token_hash"`
	ExpiresAt time.Time `json:"expires_at" db:"expires_at"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}

// IsExpired reports whether the session's refresh secret may no longer be
// exchanged for a new access token.
func (s Session) IsExpired() bool {
	return time.Now().After(s.ExpiresAt)
}
