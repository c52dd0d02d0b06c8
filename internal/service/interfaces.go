package service

import (
	"context"

	"github.com/instaloan/auth-service/internal/dto"
)

// TokenPair carries the result of a successful login or refresh. The access
// token goes into the response body; the refresh secret goes into an
// HTTP-only cookie and is never returned again.
type TokenPair struct {
	AccessToken  string
	RefreshToken string
}

// AuthService defines methods for authentication operations. It is the only
// boundary other code may call; no store is reachable directly.
type AuthService interface {
	Signup(ctx context.Context, email, password string) error
	Login(ctx context.Context, email, password string) (*TokenPair, error)
	Refresh(ctx context.Context, refreshToken string) (*TokenPair, error)
	Logout(ctx context.Context, refreshToken string) error
	VerifyEmail(ctx context.Context, token string) error
	GetUser(ctx context.Context, userID string) (*dto.UserResponse, error)
	VerifyAccessToken(token string) (string, error)
	SweepExpiredSessions(ctx context.Context) (int64, error)
}

// VerificationSender dispatches a verification secret to a user's registered
// email address. It is an external collaborator; the auth service never
// inspects its transport.
type VerificationSender interface {
	SendVerificationEmail(ctx context.Context, email, token string) error
}
