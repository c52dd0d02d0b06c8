package repository

import (
	"github.com/instaloan/auth-service/pkg/database"
)

// Repositories holds all repository interfaces
type Repositories struct {
	User         UserRepository
	Session      SessionRepository
	Verification VerificationRepository
}

// NewRepositories creates all repositories. Users and sessions live in
// Postgres; verification challenges live in Redis because their lifetime is
// minutes and Redis TTLs give expiry for free.
func NewRepositories(db *database.Postgres, redis *database.Redis) *Repositories {
	return &Repositories{
		User:         NewUserRepository(db),
		Session:      NewSessionRepository(db),
		Verification: NewVerificationRepository(redis),
	}
}
