package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/instaloan/auth-service/internal/domain"
	"github.com/instaloan/auth-service/internal/dto"
	"github.com/instaloan/auth-service/internal/repository"
	"github.com/instaloan/auth-service/internal/utils"
	"go.uber.org/zap"
)

// authService implements AuthService interface
type authService struct {
	userRepo         repository.UserRepository
	sessionRepo      repository.SessionRepository
	verificationRepo repository.VerificationRepository
	jwtManager       *utils.JWTManager
	sender           VerificationSender
	logger           *zap.Logger
	bcryptCost       int
	sessionTTL       time.Duration
	verificationTTL  time.Duration
}

// NewAuthService creates a new auth service
func NewAuthService(
	userRepo repository.UserRepository,
	sessionRepo repository.SessionRepository,
	verificationRepo repository.VerificationRepository,
	jwtManager *utils.JWTManager,
	sender VerificationSender,
	logger *zap.Logger,
	bcryptCost int,
	sessionTTL time.Duration,
	verificationTTL time.Duration,
) AuthService {
	return &authService{
		userRepo:         userRepo,
		sessionRepo:      sessionRepo,
		verificationRepo: verificationRepo,
		jwtManager:       jwtManager,
		sender:           sender,
		logger:           logger,
		bcryptCost:       bcryptCost,
		sessionTTL:       sessionTTL,
		verificationTTL:  verificationTTL,
	}
}

// Signup registers a new, unverified user and dispatches a verification
// email. A send failure is surfaced to the caller but the user row is kept;
// a created-but-unverified account is benign and can be re-verified later.
func (s *authService) Signup(ctx context.Context, email, password string) error {
	// Hash before any store write; bcrypt is deliberately slow and must not
	// sit inside anything holding a connection.
	passwordHash, err := utils.HashPassword(password, s.bcryptCost)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}

	user := &domain.User{
		Email:         email,
		PasswordHash:  &passwordHash,
		EmailVerified: false,
	}

	if err := s.userRepo.Create(ctx, user); err != nil {
		if errors.Is(err, repository.ErrDuplicateEmail) {
			return ErrEmailAlreadyRegistered
		}
		return fmt.Errorf("failed to create user: %w", err)
	}

	token, err := s.verificationRepo.Create(ctx, user.ID, s.verificationTTL)
	if err != nil {
		return fmt.Errorf("failed to create verification challenge: %w", err)
	}

	if err := s.sender.SendVerificationEmail(ctx, user.Email, token); err != nil {
		s.logger.Error("Failed to send verification email",
			zap.String("user_id", user.ID),
			zap.Error(err),
		)
		return fmt.Errorf("failed to send verification email: %w", err)
	}

	return nil
}

// Login authenticates a user and opens a new session. Credentials are
// checked before the verification flag so an unverified-account response
// never reveals whether a password was correct for some other account.
func (s *authService) Login(ctx context.Context, email, password string) (*TokenPair, error) {
	user, err := s.userRepo.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}

	if !utils.CheckPasswordHash(password, user.PasswordHash) {
		return nil, ErrInvalidCredentials
	}

	if !user.EmailVerified {
		return nil, ErrEmailNotVerified
	}

	return s.openSession(ctx, user.ID)
}

// Refresh exchanges a live refresh secret for a new access token, rotating
// the session's secret in place. A secret is single-use: the first
// successful rotation invalidates it, and any replay observes
// ErrInvalidRefreshToken.
func (s *authService) Refresh(ctx context.Context, refreshToken string) (*TokenPair, error) {
	tokenHash := utils.HashToken(refreshToken)

	session, err := s.sessionRepo.GetByTokenHash(ctx, tokenHash)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrInvalidRefreshToken
		}
		return nil, fmt.Errorf("failed to get session: %w", err)
	}

	if session.IsExpired() {
		// Lazy reaping: the dead row goes away the moment it is presented.
		if err := s.sessionRepo.DeleteByTokenHash(ctx, tokenHash); err != nil {
			s.logger.Error("Failed to delete expired session", zap.Error(err))
		}
		return nil, ErrRefreshTokenExpired
	}

	newRefreshToken, err := utils.GenerateToken()
	if err != nil {
		return nil, fmt.Errorf("failed to generate refresh token: %w", err)
	}

	err = s.sessionRepo.Rotate(ctx, tokenHash, utils.HashToken(newRefreshToken), time.Now().Add(s.sessionTTL))
	if err != nil {
		// The row vanished between lookup and update: a concurrent refresh
		// with the same secret won the race and already rotated it.
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrInvalidRefreshToken
		}
		return nil, fmt.Errorf("failed to rotate session: %w", err)
	}

	accessToken, err := s.jwtManager.Generate(session.UserID)
	if err != nil {
		return nil, fmt.Errorf("failed to generate access token: %w", err)
	}

	return &TokenPair{
		AccessToken:  accessToken,
		RefreshToken: newRefreshToken,
	}, nil
}

// Logout revokes the session matching the given refresh secret. Revoking an
// absent session succeeds; logout is always idempotent.
func (s *authService) Logout(ctx context.Context, refreshToken string) error {
	if refreshToken == "" {
		return nil
	}

	if err := s.sessionRepo.DeleteByTokenHash(ctx, utils.HashToken(refreshToken)); err != nil {
		return fmt.Errorf("failed to revoke session: %w", err)
	}

	return nil
}

// VerifyEmail consumes a verification challenge and flips the owning user's
// verified flag. The challenge is single-use; a second presentation fails.
func (s *authService) VerifyEmail(ctx context.Context, token string) error {
	userID, err := s.verificationRepo.Consume(ctx, token)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrInvalidVerificationToken
		}
		return fmt.Errorf("failed to consume verification challenge: %w", err)
	}

	if err := s.userRepo.MarkEmailVerified(ctx, userID); err != nil {
		return fmt.Errorf("failed to mark email verified: %w", err)
	}

	return nil
}

// GetUser returns profile information for the authenticated user
func (s *authService) GetUser(ctx context.Context, userID string) (*dto.UserResponse, error) {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}

	return &dto.UserResponse{
		ID:        user.ID,
		Email:     user.Email,
		Name:      user.Name,
		CreatedAt: user.CreatedAt.Format(time.RFC3339),
	}, nil
}

// VerifyAccessToken validates an access token and returns its user ID
func (s *authService) VerifyAccessToken(token string) (string, error) {
	return s.jwtManager.Verify(token)
}

// SweepExpiredSessions deletes expired session rows. Correctness does not
// depend on it; refresh reaps lazily. It only keeps the table tidy.
func (s *authService) SweepExpiredSessions(ctx context.Context) (int64, error) {
	return s.sessionRepo.DeleteExpired(ctx)
}

// openSession issues an access token and creates a session row for userID,
// returning the plaintext refresh secret exactly once. Concurrent logins
// create independent sessions; one per device is intentional.
func (s *authService) openSession(ctx context.Context, userID string) (*TokenPair, error) {
	accessToken, err := s.jwtManager.Generate(userID)
	if err != nil {
		return nil, fmt.Errorf("failed to generate access token: %w", err)
	}

	refreshToken, err := utils.GenerateToken()
	if err != nil {
		return nil, fmt.Errorf("failed to generate refresh token: %w", err)
	}

	session := &domain.Session{
		UserID:    userID,
		TokenHash: utils.HashToken(refreshToken),
		ExpiresAt: time.Now().Add(s.sessionTTL),
	}

	if err := s.sessionRepo.Create(ctx, session); err != nil {
		return nil, fmt.Errorf("failed to create session: %w", err)
	}

	return &TokenPair{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
	}, nil
}
