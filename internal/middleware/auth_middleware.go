package middleware

import (
	"errors"
	"fmt"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	apperrors "github.com/yourusername/reviewbot-api/internal/pkg/errors"
	"github.com/yourusername/reviewbot-api/pkg/session"
)

// Gin context keys set by the session middleware.
const (
	ContextUserID          = "user_id"
	ContextIsAuthenticated = "is_authenticated"
)

// AuthMiddleware gates requests on session state. Every protected route
// goes through RequireAuth; routes with optional-auth behavior use
// CheckAuth and read the is_authenticated flag.
type AuthMiddleware struct {
	sessions *session.Manager
}

// NewAuthMiddleware creates the session-gating middleware.
func NewAuthMiddleware(sessions *session.Manager) (*AuthMiddleware, error) {
	if sessions == nil {
		return nil, fmt.Errorf("session Manager is required for AuthMiddleware")
	}
	return &AuthMiddleware{sessions: sessions}, nil
}

// isUnauthenticated reports whether a Resolve error is an auth outcome:
// no session cookie on the request, or a binding that is unknown or
// expired. Anything else is a store fault, not a statement about the
// session.
func isUnauthenticated(err error) bool {
	return errors.Is(err, http.ErrNoCookie) || errors.Is(err, apperrors.ErrNotFound)
}

// RequireAuth rejects the request with a uniform 401 before any protected
// handler runs unless the session cookie resolves to a bound identity.
// A session-store fault is not an auth outcome and surfaces as a logged
// 500 instead. On success the user ID is available in the gin context.
func (m *AuthMiddleware) RequireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, err := m.sessions.Resolve(c.Request.Context(), c.Request)
		if err != nil {
			if isUnauthenticated(err) {
				c.JSON(http.StatusUnauthorized, gin.H{
					"error":   "Unauthorized",
					"message": "You must be logged in to access this resource",
				})
				c.Abort()
				return
			}
			log.Printf("[AuthMiddleware] Session lookup failed on %s %s: %v", c.Request.Method, c.Request.URL.Path, err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
			c.Abort()
			return
		}

		c.Set(ContextUserID, userID)
		c.Set(ContextIsAuthenticated, true)
		c.Next()
	}
}

// CheckAuth never blocks on authentication state. It annotates the context
// with the authentication state and, when present, the bound user ID, so
// handlers can branch without redoing the session lookup. A store fault
// still aborts with a 500: an anonymous default would silently downgrade
// every request for the duration of an outage.
func (m *AuthMiddleware) CheckAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, err := m.sessions.Resolve(c.Request.Context(), c.Request)
		if err != nil {
			if isUnauthenticated(err) {
				c.Set(ContextIsAuthenticated, false)
				c.Next()
				return
			}
			log.Printf("[AuthMiddleware] Session lookup failed on %s %s: %v", c.Request.Method, c.Request.URL.Path, err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
			c.Abort()
			return
		}

		c.Set(ContextIsAuthenticated, true)
		c.Set(ContextUserID, userID)
		c.Next()
	}
}
