package api

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/nekogravitycat/stadium-booking-backend/internal/auth"
	"github.com/nekogravitycat/stadium-booking-backend/internal/pkg/response"
	"github.com/nekogravitycat/stadium-booking-backend/internal/user"
)

// UserGetter loads the account behind an access token.
type UserGetter interface {
	GetByID(ctx context.Context, id string) (*user.User, error)
}

// RequireActiveUser rejects tokens whose account was deleted or deactivated
// after the token was issued.
// It MUST be used after auth.AuthRequired middleware.
func RequireActiveUser(users UserGetter) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID := auth.GetUserID(c)
		if userID == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
			return
		}

		u, err := users.GetByID(c.Request.Context(), userID)
		if err != nil {
			if errors.Is(err, user.ErrNotFound) {
				c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "user not found"})
				return
			}
			response.Error(c, err)
			c.Abort()
			return
		}

		if !u.IsActive {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": user.ErrInactiveUser.Message})
			return
		}

		c.Next()
	}
}
