package dto

// SignupRequest represents a signup request
type SignupRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// LoginRequest represents a login request
type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// TokenResponse carries the access token returned on login and refresh. The
// refresh secret is never part of the body; it travels only in the cookie.
type TokenResponse struct {
	AccessToken string `json:"accessToken"`
}

// UserResponse represents the authenticated user's profile
type UserResponse struct {
	ID        string  `json:"id"`
	Email     string  `json:"email"`
	Name      *string `json:"name"`
	CreatedAt string  `json:"createdAt"`
}

// MessageResponse represents a success message
type MessageResponse struct {
	Message string `json:"message"`
}

// ErrorResponse represents an error response. All client-facing errors share
// this shape.
type ErrorResponse struct {
	Message string `json:"message"`
}
