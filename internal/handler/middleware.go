package handler

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/instaloan/auth-service/internal/dto"
	"github.com/instaloan/auth-service/internal/service"
)

// ContextUserIDKey is the gin context key under which AuthMiddleware stores
// the authenticated user's ID.
const ContextUserIDKey = "user_id"

// AuthMiddleware validates the bearer access token and adds the user ID to
// the request context. Tampered, expired and missing tokens all produce the
// same 401.
func AuthMiddleware(authService service.AuthService) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			c.JSON(http.StatusUnauthorized, dto.ErrorResponse{Message: "Unauthorized"})
			c.Abort()
			return
		}

		parts := strings.Split(authHeader, " ")
		if len(parts) != 2 || parts[0] != "Bearer" {
			c.JSON(http.StatusUnauthorized, dto.ErrorResponse{Message: "Unauthorized"})
			c.Abort()
			return
		}

		userID, err := authService.VerifyAccessToken(parts[1])
		if err != nil {
			c.JSON(http.StatusUnauthorized, dto.ErrorResponse{Message: "Invalid or expired token"})
			c.Abort()
			return
		}

		c.Set(ContextUserIDKey, userID)
		c.Next()
	}
}
