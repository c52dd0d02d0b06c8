package service

import "errors"

// Service-level error taxonomy. Handlers map these onto HTTP status codes;
// everything else surfaces as an internal error with no details leaked.
var (
	// ErrEmailAlreadyRegistered is returned on signup with a taken email.
	ErrEmailAlreadyRegistered = errors.New("email already registered")

	// ErrInvalidCredentials covers unknown email, missing password hash and
	// wrong password alike, so login failures cannot be used to enumerate
	// accounts.
	ErrInvalidCredentials = errors.New("invalid email or password")

	// ErrEmailNotVerified is returned on login with correct credentials but
	// an unverified email address.
	ErrEmailNotVerified = errors.New("email not verified")

	// ErrInvalidRefreshToken is returned when the presented refresh secret
	// matches no live session, including a secret already rotated away by a
	// concurrent refresh.
	ErrInvalidRefreshToken = errors.New("invalid refresh token")

	// ErrRefreshTokenExpired is returned when the matching session has
	// expired; the session row is reaped as part of the same call.
	ErrRefreshTokenExpired = errors.New("refresh token expired")

	// ErrInvalidVerificationToken is returned for a missing, expired or
	// already-consumed email-verification token.
	ErrInvalidVerificationToken = errors.New("invalid or expired verification token")
)
