package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"tripsplit/internal/apperr"
	"tripsplit/internal/auth"
)

const (
	// UserIDKey is the gin context key for the authenticated user ID.
	UserIDKey = "user_id"
	// EmailKey is the gin context key for the authenticated user's email.
	EmailKey = "email"
)

// UserID extracts the authenticated user ID from the gin context.
// Returns empty string if not set.
func UserID(c *gin.Context) string {
	userID, _ := c.Get(UserIDKey)
	s, _ := userID.(string)
	return s
}

// RequireAuth returns a middleware that validates the Bearer token and
// stores the user ID and email on the request context. Requests without
// a valid token are rejected with 401 before any handler runs.
func RequireAuth(jwtManager *auth.JWTManager) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if header == "" {
			abortUnauthorized(c, auth.ErrMissingToken.Error())
			return
		}

		parts := strings.Split(header, " ")
		if len(parts) != 2 || parts[0] != "Bearer" {
			abortUnauthorized(c, auth.ErrInvalidToken.Error())
			return
		}

		claims, err := jwtManager.Validate(parts[1])
		if err != nil {
			abortUnauthorized(c, auth.ErrInvalidToken.Error())
			return
		}

		c.Set(UserIDKey, claims.UserID)
		c.Set(EmailKey, claims.Email)
		c.Next()
	}
}

func abortUnauthorized(c *gin.Context, msg string) {
	c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
		"code":    apperr.CodeUnauthorized,
		"message": msg,
	})
}
