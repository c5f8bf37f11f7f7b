package middleware

import (
	"context"
	"errors"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/sunflower-post/backend/internal/service"
	"github.com/sunflower-post/backend/pkg/response"
)

const userIDKey = "user_id"

// TokenParser resolves a bearer token to the id of a live account.
type TokenParser interface {
	Authenticate(ctx context.Context, token string) (string, error)
}

func bearerToken(c *gin.Context) string {
	h := c.GetHeader("Authorization")
	if len(h) < 7 || !strings.EqualFold(h[:7], "Bearer ") {
		return ""
	}
	return strings.TrimSpace(h[7:])
}

// Auth rejects requests without a valid bearer token.
func Auth(tokens TokenParser) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := bearerToken(c)
		if token == "" {
			response.Unauthorized(c, "missing bearer token")
			return
		}
		userID, err := tokens.Authenticate(c.Request.Context(), token)
		if err != nil {
			if !errors.Is(err, service.ErrUnauthorized) {
				response.InternalError(c, err)
				return
			}
			response.Unauthorized(c, "invalid or expired token")
			return
		}
		c.Set(userIDKey, userID)
		c.Next()
	}
}

// OptionalAuth sets the user when a valid token is present and otherwise
// lets the request through anonymously.
func OptionalAuth(tokens TokenParser) gin.HandlerFunc {
	return func(c *gin.Context) {
		if token := bearerToken(c); token != "" {
			if userID, err := tokens.Authenticate(c.Request.Context(), token); err == nil {
				c.Set(userIDKey, userID)
			}
		}
		c.Next()
	}
}

// UserID returns the authenticated user id, or "" for anonymous requests.
func UserID(c *gin.Context) string { return c.GetString(userIDKey) }
