// Package middleware provides HTTP middleware for the API.
package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/vahan-ai/chat-gateway/internal/services/auth"
)

const subjectContextKey = "subject_id"

// AuthMiddleware verifies access credentials against the auth service.
type AuthMiddleware struct {
	auth *auth.Service
}

// NewAuthMiddleware creates a new AuthMiddleware.
func NewAuthMiddleware(authService *auth.Service) *AuthMiddleware {
	return &AuthMiddleware{auth: authService}
}

// Authenticate returns a gin middleware that verifies the Bearer token and
// stores the authenticated subject in the context. Every rejection looks the
// same to the caller.
func (m *AuthMiddleware) Authenticate() gin.HandlerFunc {
	return func(c *gin.Context) {
		token := BearerToken(c)
		subjectID, err := m.auth.Authorize(c.Request.Context(), token)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"code":    "UNAUTHORIZED",
				"message": "invalid or expired credentials",
			})
			return
		}

		c.Set(subjectContextKey, subjectID)
		c.Next()
	}
}

// BearerToken extracts the Bearer token from the Authorization header, or
// returns an empty string.
func BearerToken(c *gin.Context) string {
	header := c.GetHeader("Authorization")
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
		return ""
	}
	return parts[1]
}

// GetSubjectID retrieves the authenticated subject from the gin context.
func GetSubjectID(c *gin.Context) string {
	if subject, exists := c.Get(subjectContextKey); exists {
		return subject.(string)
	}
	return ""
}
