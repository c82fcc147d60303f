package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/codebaseshow/codebaseshow/internal/models"
)

const userContextKey = "user"

// UserResolver resolves a bearer token to a user. Invalid or expired tokens
// resolve to nil.
type UserResolver interface {
	GetAuthenticatedUser(token string) *models.User
}

// SessionMiddleware resolves the Authorization header into the calling user
// and stores it in the request context. Requests without a valid token are
// treated as anonymous; route guards decide whether that matters.
func SessionMiddleware(resolver UserResolver) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := bearerToken(c)
		if token != "" {
			if user := resolver.GetAuthenticatedUser(token); user != nil {
				c.Set(userContextKey, user)
			}
		}
		c.Next()
	}
}

func bearerToken(c *gin.Context) string {
	header := c.GetHeader("Authorization")
	if header == "" {
		return ""
	}

	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return ""
	}

	return strings.TrimSpace(parts[1])
}

// GetUser retrieves the authenticated user from the request context, or nil
// for anonymous requests.
func GetUser(c *gin.Context) *models.User {
	value, exists := c.Get(userContextKey)
	if !exists {
		return nil
	}

	if user, ok := value.(*models.User); ok {
		return user
	}

	return nil
}
