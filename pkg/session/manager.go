package session

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/yourusername/reviewbot-api/internal/domain/repository"
)

// SessionCookie is the name of the cookie carrying the opaque session token.
const SessionCookie = "session_id"

// Manager binds opaque session tokens to user IDs and carries them in an
// HttpOnly cookie. The token is 256 bits of randomness in hex; it means
// nothing outside the session store. Expiry belongs to the store's TTL;
// the cookie MaxAge only mirrors it for the browser's benefit.
//
// Concurrent Bind/Unbind against one session is last-write-wins; the store
// offers no ordering guarantee and none is needed for session state.
type Manager struct {
	sessions repository.SessionRepository
	ttl      time.Duration

	cookiePath     string
	cookieDomain   string
	cookieSecure   bool
	cookieHTTPOnly bool
	cookieSameSite http.SameSite
}

// NewManager creates a session manager with the given binding TTL.
func NewManager(sessions repository.SessionRepository, ttl time.Duration) (*Manager, error) {
	if sessions == nil {
		return nil, fmt.Errorf("SessionRepository is required for session Manager")
	}
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &Manager{
		sessions:       sessions,
		ttl:            ttl,
		cookiePath:     "/",
		cookieHTTPOnly: true,
		cookieSameSite: http.SameSiteLaxMode,
	}, nil
}

// SetCookieAttributes configures the attributes of the session cookie.
// SameSiteNoneMode requires Secure=true to be honored by browsers.
func (m *Manager) SetCookieAttributes(path, domain string, secure, httpOnly bool, sameSite http.SameSite) {
	m.cookiePath = path
	m.cookieDomain = domain
	m.cookieSecure = secure
	m.cookieHTTPOnly = httpOnly
	m.cookieSameSite = sameSite
}

// TTL returns the configured session lifetime.
func (m *Manager) TTL() time.Duration {
	return m.ttl
}

// Bind creates a fresh session token for the user, stores the binding and
// sets the session cookie. Local login, signup auto-login and the OAuth
// callbacks all come through here.
func (m *Manager) Bind(ctx context.Context, w http.ResponseWriter, userID uuid.UUID) (string, error) {
	token, err := generateToken()
	if err != nil {
		return "", err
	}
	if err := m.sessions.Bind(ctx, token, userID, m.ttl); err != nil {
		return "", fmt.Errorf("failed to bind session: %w", err)
	}
	m.setCookie(w, token, int(m.ttl.Seconds()))
	return token, nil
}

// Resolve returns the user ID bound to the request's session cookie.
// Returns repository errors unchanged; a missing cookie or an expired
// binding both surface as ErrNotFound from the store layer's point of view.
func (m *Manager) Resolve(ctx context.Context, r *http.Request) (uuid.UUID, error) {
	cookie, err := r.Cookie(SessionCookie)
	if err != nil || cookie.Value == "" {
		return uuid.Nil, http.ErrNoCookie
	}
	return m.sessions.Resolve(ctx, cookie.Value)
}

// Unbind destroys the session binding and expires the cookie. Idempotent:
// a request without a session cookie, or with an already-removed binding,
// succeeds.
func (m *Manager) Unbind(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	cookie, err := r.Cookie(SessionCookie)
	if err == nil && cookie.Value != "" {
		if err := m.sessions.Unbind(ctx, cookie.Value); err != nil {
			return fmt.Errorf("failed to unbind session: %w", err)
		}
	}
	m.setCookie(w, "", -1)
	return nil
}

func (m *Manager) setCookie(w http.ResponseWriter, value string, maxAge int) {
	http.SetCookie(w, &http.Cookie{
		Name:     SessionCookie,
		Value:    value,
		Path:     m.cookiePath,
		Domain:   m.cookieDomain,
		HttpOnly: m.cookieHTTPOnly,
		Secure:   m.cookieSecure,
		SameSite: m.cookieSameSite,
		MaxAge:   maxAge,
	})
}

// generateToken returns 32 random bytes in hex form.
func generateToken() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("failed to generate session token: %w", err)
	}
	return hex.EncodeToString(b), nil
}
