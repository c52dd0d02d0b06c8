package repository

import (
	"context"
	"time"

	"github.com/instaloan/auth-service/internal/domain"
)

// UserRepository defines methods for user operations
type UserRepository interface {
	Create(ctx context.Context, user *domain.User) error
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
	GetByID(ctx context.Context, id string) (*domain.User, error)
	MarkEmailVerified(ctx context.Context, userID string) error
}

// SessionRepository defines methods for refresh-session operations
type SessionRepository interface {
	Create(ctx context.Context, session *domain.Session) error
	GetByTokenHash(ctx context.Context, tokenHash string) (*domain.Session, error)
	// Rotate replaces the stored hash and expiry in place, keyed on the old
	// hash. It returns ErrNotFound when no live row matched, which makes a
	// concurrent double-rotation resolve to exactly one winner.
	Rotate(ctx context.Context, oldTokenHash, newTokenHash string, expiresAt time.Time) error
	// DeleteByTokenHash is idempotent: deleting an absent session succeeds.
	DeleteByTokenHash(ctx context.Context, tokenHash string) error
	DeleteExpired(ctx context.Context) (int64, error)
}

// VerificationRepository defines methods for email-verification challenges
type VerificationRepository interface {
	// Create stores hash(token) -> userID with the given TTL and returns the
	// plaintext token, retrievable exactly once here and never again.
	Create(ctx context.Context, userID string, ttl time.Duration) (string, error)
	// Consume atomically looks up and deletes a challenge by the plaintext
	// token's hash. Missing and expired challenges are indistinguishable;
	// both return ErrNotFound.
	Consume(ctx context.Context, token string) (string, error)
}
