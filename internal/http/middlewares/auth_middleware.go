package middlewares

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/geocoder89/blogapi/internal/actorctx"
	"github.com/geocoder89/blogapi/internal/auth"
	"github.com/geocoder89/blogapi/internal/domain/user"
	"github.com/gin-gonic/gin"
)

// Keep this small interface so tests can fake it easily.
type TokenVerifier interface {
	VerifyAccessToken(token string) (*auth.Claims, error)
}

// UserLookup resolves the token subject to a live user record.
type UserLookup interface {
	GetByID(ctx context.Context, id int64) (user.User, error)
}

type AuthMiddleware struct {
	jwt   TokenVerifier
	users UserLookup
}

func NewAuthMiddleware(jwt TokenVerifier, users UserLookup) *AuthMiddleware {
	return &AuthMiddleware{jwt: jwt, users: users}
}

// RequireAuth rejects the request unless it carries a valid bearer token for
// an existing user.
func (m *AuthMiddleware) RequireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.GetHeader("Authorization") == "" {
			abortUnauthorized(c, "Missing or invalid Authorization header")
			return
		}

		if m.authenticate(c) {
			c.Next()
		}
	}
}

// OptionalAuth lets anonymous requests through. A present but unusable token
// is still rejected so clients notice an expired session.
func (m *AuthMiddleware) OptionalAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.GetHeader("Authorization") == "" {
			c.Next()
			return
		}

		if m.authenticate(c) {
			c.Next()
		}
	}
}

func (m *AuthMiddleware) authenticate(c *gin.Context) bool {
	authHeader := c.GetHeader("Authorization")
	if !strings.HasPrefix(authHeader, "Bearer ") {
		abortUnauthorized(c, "Missing or invalid Authorization header")
		return false
	}

	raw := strings.TrimSpace(strings.TrimPrefix(authHeader, "Bearer"))
	if raw == "" {
		abortUnauthorized(c, "Missing or invalid access token")
		return false
	}

	claims, err := m.jwt.VerifyAccessToken(raw)
	if err != nil {
		abortUnauthorized(c, "Invalid or expired access token")
		return false
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
	defer cancel()

	u, err := m.users.GetByID(ctx, claims.UserID)
	if err != nil {
		if errors.Is(err, user.ErrNotFound) {
			abortUnauthorized(c, "User no longer exists")
			return false
		}

		slog.Default().ErrorContext(c.Request.Context(), "auth user lookup failed", "err", err, "user_id", claims.UserID)
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{
			"error": gin.H{
				"code":    "internal_error",
				"message": "Could not verify identity",
			},
		})
		return false
	}

	SetIdentity(c, u)
	return true
}

func abortUnauthorized(c *gin.Context, message string) {
	c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
		"error": gin.H{
			"code":    "unauthorized",
			"message": message,
		},
	})
}

// SetIdentity stashes the authenticated user on the gin context and on the
// request context.
func SetIdentity(c *gin.Context, u user.User) {
	c.Set(ctxUserIDKey, u.ID)
	c.Set(ctxEmailKey, u.Email)
	c.Set(ctxRoleKey, u.Role)
	c.Set(ctxUsernameKey, u.Username)

	c.Request = c.Request.WithContext(actorctx.WithUserID(c.Request.Context(), u.ID))
}

// Optional helpers so handlers don't need to know the magic keys.

func UserIDFromContext(c *gin.Context) (int64, bool) {
	v, ok := c.Get(ctxUserIDKey)
	if !ok {
		return 0, false
	}
	id, ok := v.(int64)
	return id, ok && id > 0
}

func RoleFromContext(c *gin.Context) (string, bool) {
	v, ok := c.Get(ctxRoleKey)
	if !ok {
		return "", false
	}
	role, ok := v.(string)
	return role, ok
}

func UsernameFromContext(c *gin.Context) (string, bool) {
	v, ok := c.Get(ctxUsernameKey)
	if !ok {
		return "", false
	}
	name, ok := v.(string)
	return name, ok
}
