package middleware

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"lessons-api/internal/domain/users"

	"github.com/gin-gonic/gin"
)

type AccountLookup interface {
	FindByEmail(ctx context.Context, email string) (*users.User, error)
}

// RequirePremium reads the entitlement from the account row on every request.
func RequirePremium(accounts AccountLookup) gin.HandlerFunc {
	return func(c *gin.Context) {
		email := c.GetString("email")
		if email == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
			return
		}

		user, err := accounts.FindByEmail(c.Request.Context(), email)
		if errors.Is(err, users.ErrUserNotFound) {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "Account not found"})
			return
		}
		if err != nil {
			slog.Error("premium guard lookup failed", "email", email, "error", err)
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "Failed to load account"})
			return
		}

		if !user.IsPremium {
			c.AbortWithStatusJSON(http.StatusPaymentRequired, gin.H{
				"error": "Premium membership required",
			})
			return
		}

		c.Set("account", user)
		c.Next()
	}
}
