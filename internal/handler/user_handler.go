package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/instaloan/auth-service/internal/dto"
	"github.com/instaloan/auth-service/internal/service"
)

// UserHandler handles user profile requests
type UserHandler struct {
	authService service.AuthService
}

// NewUserHandler creates a new user handler
func NewUserHandler(authService service.AuthService) *UserHandler {
	return &UserHandler{authService: authService}
}

// GetMe returns the profile of the authenticated user.
func (h *UserHandler) GetMe(c *gin.Context) {
	userID, exists := c.Get(ContextUserIDKey)
	if !exists {
		c.JSON(http.StatusUnauthorized, dto.ErrorResponse{Message: "Unauthorized"})
		return
	}

	user, err := h.authService.GetUser(c.Request.Context(), userID.(string))
	if err != nil {
		internalError(c, err)
		return
	}

	c.JSON(http.StatusOK, user)
}
