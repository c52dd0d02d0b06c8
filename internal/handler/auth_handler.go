package handler

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/instaloan/auth-service/internal/dto"
	"github.com/instaloan/auth-service/internal/service"
)

const refreshCookieName = "refresh_token"

// refreshCookiePath scopes the refresh cookie to the auth routes; the
// browser never attaches the refresh secret anywhere else.
const refreshCookiePath = "/auth"

// CookieOptions controls the attributes of the refresh cookie.
type CookieOptions struct {
	// MaxAge equals the session TTL.
	MaxAge time.Duration
	// CrossOrigin relaxes SameSite to None for deployments where front end
	// and back end live on different origins. Secure is then mandatory.
	CrossOrigin bool
	// Secure marks the cookie HTTPS-only. Forced on when CrossOrigin is set.
	Secure bool
}

// AuthHandler handles authentication requests
type AuthHandler struct {
	authService service.AuthService
	cookies     CookieOptions
}

// NewAuthHandler creates a new auth handler
func NewAuthHandler(authService service.AuthService, cookies CookieOptions) *AuthHandler {
	if cookies.CrossOrigin {
		cookies.Secure = true
	}
	return &AuthHandler{
		authService: authService,
		cookies:     cookies,
	}
}

// Signup handles user registration. No session is opened; the user must
// verify their email and then log in.
func (h *AuthHandler) Signup(c *gin.Context) {
	var req dto.SignupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{Message: "Email and password required"})
		return
	}

	err := h.authService.Signup(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		if errors.Is(err, service.ErrEmailAlreadyRegistered) {
			c.JSON(http.StatusConflict, dto.ErrorResponse{Message: "User already exists"})
			return
		}
		internalError(c, err)
		return
	}

	c.JSON(http.StatusCreated, dto.MessageResponse{
		Message: "Signup successful. Please verify your email.",
	})
}

// Login handles user login. The access token goes into the body; the
// refresh secret goes into an HTTP-only cookie.
func (h *AuthHandler) Login(c *gin.Context) {
	var req dto.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{Message: "Email and password required"})
		return
	}

	pair, err := h.authService.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrInvalidCredentials):
			c.JSON(http.StatusUnauthorized, dto.ErrorResponse{Message: "Invalid credentials"})
		case errors.Is(err, service.ErrEmailNotVerified):
			c.JSON(http.StatusForbidden, dto.ErrorResponse{Message: "Please verify your email before logging in"})
		default:
			internalError(c, err)
		}
		return
	}

	h.setRefreshCookie(c, pair.RefreshToken)
	c.JSON(http.StatusOK, dto.TokenResponse{AccessToken: pair.AccessToken})
}

// Refresh exchanges the refresh cookie for a new access token and rotates
// the cookie value.
func (h *AuthHandler) Refresh(c *gin.Context) {
	refreshToken, err := c.Cookie(refreshCookieName)
	if err != nil {
		c.JSON(http.StatusUnauthorized, dto.ErrorResponse{Message: "Missing refresh token"})
		return
	}

	pair, err := h.authService.Refresh(c.Request.Context(), refreshToken)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrInvalidRefreshToken):
			h.clearRefreshCookie(c)
			c.JSON(http.StatusUnauthorized, dto.ErrorResponse{Message: "Invalid refresh token"})
		case errors.Is(err, service.ErrRefreshTokenExpired):
			h.clearRefreshCookie(c)
			c.JSON(http.StatusUnauthorized, dto.ErrorResponse{Message: "Refresh token expired"})
		default:
			internalError(c, err)
		}
		return
	}

	h.setRefreshCookie(c, pair.RefreshToken)
	c.JSON(http.StatusOK, dto.TokenResponse{AccessToken: pair.AccessToken})
}

// Logout revokes the current session. A missing cookie means the client is
// already logged out, which is a success.
func (h *AuthHandler) Logout(c *gin.Context) {
	refreshToken, err := c.Cookie(refreshCookieName)
	if err != nil {
		c.JSON(http.StatusOK, dto.MessageResponse{Message: "Already logged out"})
		return
	}

	if err := h.authService.Logout(c.Request.Context(), refreshToken); err != nil {
		internalError(c, err)
		return
	}

	h.clearRefreshCookie(c)
	c.JSON(http.StatusOK, dto.MessageResponse{Message: "Logged out successfully"})
}

// VerifyEmail consumes the emailed verification token.
func (h *AuthHandler) VerifyEmail(c *gin.Context) {
	token := c.Query("token")
	if token == "" {
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{Message: "Invalid token"})
		return
	}

	if err := h.authService.VerifyEmail(c.Request.Context(), token); err != nil {
		if errors.Is(err, service.ErrInvalidVerificationToken) {
			c.JSON(http.StatusBadRequest, dto.ErrorResponse{Message: "Token expired or invalid"})
			return
		}
		internalError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.MessageResponse{Message: "Email verified successfully"})
}

func (h *AuthHandler) setRefreshCookie(c *gin.Context, token string) {
	c.SetSameSite(h.sameSite())
	c.SetCookie(refreshCookieName, token, int(h.cookies.MaxAge.Seconds()), refreshCookiePath, "", h.cookies.Secure, true)
}

func (h *AuthHandler) clearRefreshCookie(c *gin.Context) {
	c.SetSameSite(h.sameSite())
	c.SetCookie(refreshCookieName, "", -1, refreshCookiePath, "", h.cookies.Secure, true)
}

func (h *AuthHandler) sameSite() http.SameSite {
	if h.cookies.CrossOrigin {
		return http.SameSiteNoneMode
	}
	return http.SameSiteStrictMode
}

// internalError hides storage and hashing failures from the client. The
// wrapped cause has already been logged by the request middleware.
func internalError(c *gin.Context, err error) {
	_ = c.Error(err)
	c.JSON(http.StatusInternalServerError, dto.ErrorResponse{Message: "Internal server error"})
}
