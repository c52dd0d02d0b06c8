package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/instaloan/auth-service/internal/domain"
	"github.com/instaloan/auth-service/pkg/database"
	"github.com/lib/pq"
)

// sessionRepository implements SessionRepository interface
type sessionRepository struct {
	db *database.Postgres
}

// NewSessionRepository creates a new session repository
func NewSessionRepository(db *database.Postgres) SessionRepository {
	return &sessionRepository{db: db}
}

// Create creates a new session row. The token_hash column carries a unique
// constraint; two sessions can never share a secret.
func (r *sessionRepository) Create(ctx context.Context, session *domain.Session) error {
	query := `
		INSERT INTO sessions (id, user_id, token_hash, expires_at, created_at)
		VALUES ($1, $2, $3, $4, $5)
	`

	if session.ID == "" {
		session.ID = uuid.New().String()
	}
	if session.CreatedAt.IsZero() {
		session.CreatedAt = time.Now()
	}

	_, err := r.db.DB.ExecContext(ctx, query,
		session.ID,
		session.UserID,
		session.TokenHash,
		session.ExpiresAt,
		session.CreatedAt,
	)

	if err != nil {
		if pqErr, ok := err.(*pq.Error); ok {
			if pqErr.Code == "23505" { // unique_violation
				return fmt.Errorf("session with hash already exists: %w", ErrDuplicateToken)
			}
		}
		return fmt.Errorf("failed to create session: %w", err)
	}

	return nil
}

// GetByTokenHash retrieves a session by its token hash
func (r *sessionRepository) GetByTokenHash(ctx context.Context, tokenHash string) (*domain.Session, error) {
	query := `
		SELECT id, user_id, token_hash, expires_at, created_at
		FROM sessions
		WHERE token_hash = $1
	`

	session := &domain.Session{}
	err := r.db.DB.QueryRowContext(ctx, query, tokenHash).Scan(
		&session.ID,
		&session.UserID,
		&session.TokenHash,
		&session.ExpiresAt,
		&session.CreatedAt,
	)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("session not found: %w", ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get session by hash: %w", err)
	}

	return session, nil
}

// Rotate overwrites the session's hash and expiry in place, keeping the same
// row identity. The update is keyed on the old hash, so of two concurrent
// rotations of the same secret exactly one matches a row; the other sees
// ErrNotFound.
func (r *sessionRepository) Rotate(ctx context.Context, oldTokenHash, newTokenHash string, expiresAt time.Time) error {
	query := `
		UPDATE sessions
		SET token_hash = $2, expires_at = $3
		WHERE token_hash = $1
	`

	result, err := r.db.DB.ExecContext(ctx, query, oldTokenHash, newTokenHash, expiresAt)
	if err != nil {
		if pqErr, ok := err.(*pq.Error); ok {
			if pqErr.Code == "23505" { // unique_violation
				return fmt.Errorf("session with hash already exists: %w", ErrDuplicateToken)
			}
		}
		return fmt.Errorf("failed to rotate session: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}

	if rowsAffected == 0 {
		return fmt.Errorf("session not found: %w", ErrNotFound)
	}

	return nil
}

// DeleteByTokenHash deletes a session by its token hash. Deleting a session
// that does not exist is not an error; logout is idempotent.
func (r *sessionRepository) DeleteByTokenHash(ctx context.Context, tokenHash string) error {
	query := `DELETE FROM sessions WHERE token_hash = $1`

	_, err := r.db.DB.ExecContext(ctx, query, tokenHash)
	if err != nil {
		return fmt.Errorf("failed to delete session by hash: %w", err)
	}

	return nil
}

// DeleteExpired deletes all expired sessions and returns how many rows were
// reaped. Expired sessions are otherwise only reaped lazily on refresh.
func (r *sessionRepository) DeleteExpired(ctx context.Context) (int64, error) {
	query := `DELETE FROM sessions WHERE expires_at < $1`

	result, err := r.db.DB.ExecContext(ctx, query, time.Now())
	if err != nil {
		return 0, fmt.Errorf("failed to delete expired sessions: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to get rows affected: %w", err)
	}

	return rowsAffected, nil
}
