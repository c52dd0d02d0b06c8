package repository

import "errors"

// Common repository errors
var (
	// ErrNotFound is returned when a record is not found. The session
	// repository also returns it when a conditional rotation matched no row,
	// which is how the loser of a concurrent refresh race observes that the
	// secret it presented has already been rotated away.
	ErrNotFound = errors.New("record not found")

	// ErrDuplicateEmail is returned when trying to create a user with an existing email
	ErrDuplicateEmail = errors.New("user with this email already exists")

	// ErrDuplicateToken is returned when trying to create a session with an existing hash
	ErrDuplicateToken = errors.New("session with this token hash already exists")
)
