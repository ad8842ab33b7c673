package middleware

import (
	"context"
	"net/http"
	"strings"

	"anoa.com/alienvault/internal/entity"
	"anoa.com/alienvault/pkg/response"
	"anoa.com/alienvault/pkg/token"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type UserFinder interface {
	FindByID(ctx context.Context, id uuid.UUID) (*entity.User, error)
}

type AuthMiddleware struct {
	tokens  *token.Manager
	users   UserFinder
	isAdmin func(email string) bool
}

func NewAuthMiddleware(tokens *token.Manager, users UserFinder, isAdmin func(email string) bool) *AuthMiddleware {
	if isAdmin == nil {
		isAdmin = func(string) bool { return false }
	}
	return &AuthMiddleware{
		tokens:  tokens,
		users:   users,
		isAdmin: isAdmin,
	}
}

func bearerToken(c *gin.Context) string {
	authHeader := c.GetHeader("Authorization")
	if authHeader != "" {
		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) == 2 && strings.EqualFold(parts[0], "Bearer") {
			return strings.TrimSpace(parts[1])
		}
	}

	// Fallback to query parameter "token" (useful for WebSockets)
	return c.Query("token")
}

// authenticate resolves the token to a live user and stores it on the context.
func (m *AuthMiddleware) authenticate(c *gin.Context) (*entity.User, string) {
	tokenString := bearerToken(c)
	if tokenString == "" {
		return nil, "authorization required"
	}

	userID, err := m.tokens.Parse(tokenString)
	if err != nil {
		return nil, "invalid or expired token"
	}

	user, err := m.users.FindByID(c.Request.Context(), userID)
	if err != nil {
		return nil, "user not found"
	}

	c.Set(response.ContextUserID, user.ID.String())
	c.Set(response.ContextUsername, user.Username)
	c.Set(response.ContextEmail, user.Email)
	return user, ""
}

func (m *AuthMiddleware) RequireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		if _, msg := m.authenticate(c); msg != "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": msg})
			return
		}
		c.Next()
	}
}

// OptionalAuth identifies the caller when a valid token is present and lets
// anonymous requests through otherwise.
func (m *AuthMiddleware) OptionalAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		if bearerToken(c) != "" {
			m.authenticate(c)
		}
		c.Next()
	}
}

// RequireAdmin must run after RequireAuth.
func (m *AuthMiddleware) RequireAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		if _, exists := c.Get(response.ContextUserID); !exists {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "user not authenticated"})
			return
		}

		if !m.isAdmin(c.GetString(response.ContextEmail)) {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "admin access required"})
			return
		}
		c.Next()
	}
}
