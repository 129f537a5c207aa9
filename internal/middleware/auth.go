package middleware

import (
	"net/http"
	"strings"

	"github.com/Tapananshu17/HCI/config"
	"github.com/Tapananshu17/HCI/internal/dto"
	"github.com/Tapananshu17/HCI/internal/token"
	"github.com/gin-gonic/gin"
)

const userIDKey = "userID"

// AuthMiddleware validates the Bearer token and stores the authenticated
// user id in the request context.
func AuthMiddleware(cfg *config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if header == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, dto.ErrorResponse{Message: "authorization header required"})
			return
		}
		parts := strings.SplitN(header, " ", 2)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
			c.AbortWithStatusJSON(http.StatusUnauthorized, dto.ErrorResponse{Message: "authorization header must be of the form 'Bearer <token>'"})
			return
		}

		claims, err := token.Parse(cfg, parts[1])
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, dto.ErrorResponse{Message: "invalid or expired token"})
			return
		}

		c.Set(userIDKey, claims.UserID)
		c.Next()
	}
}

// CurrentUserID reads the user id set by AuthMiddleware.
func CurrentUserID(c *gin.Context) uint {
	id, _ := c.Get(userIDKey)
	userID, _ := id.(uint)
	return userID
}
