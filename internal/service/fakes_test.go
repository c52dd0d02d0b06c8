package service

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/instaloan/auth-service/internal/domain"
	"github.com/instaloan/auth-service/internal/repository"
	"github.com/instaloan/auth-service/internal/utils"
)

// In-memory repository fakes. The session fake mirrors the conditional
// single-row rotation of the Postgres implementation: rotation is keyed on
// the old hash under one lock, so concurrent rotations of the same secret
// resolve to exactly one winner.

// userWithoutPassword models an externally-authenticated account that has no
// password hash on record.
func userWithoutPassword(email string) *domain.User {
	return &domain.User{
		Email:         email,
		EmailVerified: true,
	}
}

type fakeUserRepo struct {
	mu    sync.Mutex
	users map[string]*domain.User // by id
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{users: make(map[string]*domain.User)}
}

func (r *fakeUserRepo) Create(_ context.Context, user *domain.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, u := range r.users {
		if u.Email == user.Email {
			return fmt.Errorf("duplicate: %w", repository.ErrDuplicateEmail)
		}
	}

	if user.ID == "" {
		user.ID = uuid.New().String()
	}
	if user.CreatedAt.IsZero() {
		user.CreatedAt = time.Now()
	}

	cp := *user
	r.users[user.ID] = &cp
	return nil
}

func (r *fakeUserRepo) GetByEmail(_ context.Context, email string) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, u := range r.users {
		if u.Email == email {
			cp := *u
			return &cp, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (r *fakeUserRepo) GetByID(_ context.Context, id string) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	u, ok := r.users[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	cp := *u
	return &cp, nil
}

func (r *fakeUserRepo) MarkEmailVerified(_ context.Context, userID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	u, ok := r.users[userID]
	if !ok {
		return repository.ErrNotFound
	}
	u.EmailVerified = true
	return nil
}

type fakeSessionRepo struct {
	mu       sync.Mutex
	sessions map[string]*domain.Session // by token hash
}

func newFakeSessionRepo() *fakeSessionRepo {
	return &fakeSessionRepo{sessions: make(map[string]*domain.Session)}
}

func (r *fakeSessionRepo) Create(_ context.Context, session *domain.Session) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.sessions[session.TokenHash]; exists {
		return repository.ErrDuplicateToken
	}

	if session.ID == "" {
		session.ID = uuid.New().String()
	}
	if session.CreatedAt.IsZero() {
		session.CreatedAt = time.Now()
	}

	cp := *session
	r.sessions[session.TokenHash] = &cp
	return nil
}

func (r *fakeSessionRepo) GetByTokenHash(_ context.Context, tokenHash string) (*domain.Session, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	s, ok := r.sessions[tokenHash]
	if !ok {
		return nil, repository.ErrNotFound
	}
	cp := *s
	return &cp, nil
}

func (r *fakeSessionRepo) Rotate(_ context.Context, oldTokenHash, newTokenHash string, expiresAt time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	s, ok := r.sessions[oldTokenHash]
	if !ok {
		return repository.ErrNotFound
	}

	delete(r.sessions, oldTokenHash)
	s.TokenHash = newTokenHash
	s.ExpiresAt = expiresAt
	r.sessions[newTokenHash] = s
	return nil
}

func (r *fakeSessionRepo) DeleteByTokenHash(_ context.Context, tokenHash string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	delete(r.sessions, tokenHash)
	return nil
}

func (r *fakeSessionRepo) DeleteExpired(_ context.Context) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var reaped int64
	now := time.Now()
	for hash, s := range r.sessions {
		if s.ExpiresAt.Before(now) {
			delete(r.sessions, hash)
			reaped++
		}
	}
	return reaped, nil
}

func (r *fakeSessionRepo) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.sessions)
}

type verificationEntry struct {
	userID    string
	expiresAt time.Time
}

type fakeVerificationRepo struct {
	mu      sync.Mutex
	entries map[string]verificationEntry // by token hash
}

func newFakeVerificationRepo() *fakeVerificationRepo {
	return &fakeVerificationRepo{entries: make(map[string]verificationEntry)}
}

func (r *fakeVerificationRepo) Create(_ context.Context, userID string, ttl time.Duration) (string, error) {
	token, err := utils.GenerateToken()
	if err != nil {
		return "", err
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	r.entries[utils.HashToken(token)] = verificationEntry{
		userID:    userID,
		expiresAt: time.Now().Add(ttl),
	}
	return token, nil
}

func (r *fakeVerificationRepo) Consume(_ context.Context, token string) (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	hash := utils.HashToken(token)
	entry, ok := r.entries[hash]
	if !ok {
		return "", repository.ErrNotFound
	}
	delete(r.entries, hash)

	if time.Now().After(entry.expiresAt) {
		return "", repository.ErrNotFound
	}

	return entry.userID, nil
}

type fakeSender struct {
	mu       sync.Mutex
	sent     []sentEmail
	failWith error
}

type sentEmail struct {
	email string
	token string
}

func (s *fakeSender) SendVerificationEmail(_ context.Context, email, token string) error {
	if s.failWith != nil {
		return s.failWith
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.sent = append(s.sent, sentEmail{email: email, token: token})
	return nil
}

func (s *fakeSender) lastToken() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.sent) == 0 {
		return ""
	}
	return s.sent[len(s.sent)-1].token
}
