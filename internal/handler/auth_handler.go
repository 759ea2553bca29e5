package handler

import (
	"errors"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/yourusername/reviewbot-api/internal/config"
	"github.com/yourusername/reviewbot-api/internal/domain/entity"
	"github.com/yourusername/reviewbot-api/internal/middleware"
	apperrors "github.com/yourusername/reviewbot-api/internal/pkg/errors"
	"github.com/yourusername/reviewbot-api/internal/service"
	"github.com/yourusername/reviewbot-api/pkg/session"
)

// AuthHandler handles local signup/login/logout, the OAuth redirect
// endpoints and the current-user route. All three login paths bind the
// session through the same session.Manager.Bind.
type AuthHandler struct {
	authService  *service.AuthService
	oauthService *service.OAuthService
	userService  *service.UserService
	sessions     *session.Manager
	client       config.ClientConfig
}

// NewAuthHandler creates the auth handler.
func NewAuthHandler(
	authService *service.AuthService,
	oauthService *service.OAuthService,
	userService *service.UserService,
	sessions *session.Manager,
	client config.ClientConfig,
) *AuthHandler {
	return &AuthHandler{
		authService:  authService,
		oauthService: oauthService,
		userService:  userService,
		sessions:     sessions,
		client:       client,
	}
}

// SignUpRequest is the local signup payload. Email syntax and password
// strength are validated by the service, not by binding tags, so the error
// shape stays uniform.
type SignUpRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// LoginRequest is the local login payload.
type LoginRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// SignUp handles POST /api/signup. Auto-login: the new identity is bound
// to a fresh session before the 201 goes out.
func (h *AuthHandler) SignUp(c *gin.Context) {
	var req SignUpRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Missing required fields", "message": "Email and password are required"})
		return
	}

	user, err := h.authService.SignUp(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		handleServiceError(c, err)
		return
	}

	if _, err := h.sessions.Bind(c.Request.Context(), c.Writer, user.ID); err != nil {
		log.Printf("[AuthHandler] Failed to bind session after signup for %s: %v", user.Email, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}

	c.JSON(http.StatusCreated, gin.H{"message": "Account created successfully", "user": user})
}

// Login handles POST /api/login.
func (h *AuthHandler) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Missing required fields", "message": "Email and password are required"})
		return
	}

	user, err := h.authService.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		handleServiceError(c, err)
		return
	}

	if _, err := h.sessions.Bind(c.Request.Context(), c.Writer, user.ID); err != nil {
		log.Printf("[AuthHandler] Failed to bind session after login for %s: %v", user.Email, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Login successful", "user": user})
}

// Logout handles POST /api/logout. Idempotent: logging out an anonymous
// session is still a 200.
func (h *AuthHandler) Logout(c *gin.Context) {
	if err := h.sessions.Unbind(c.Request.Context(), c.Writer, c.Request); err != nil {
		log.Printf("[AuthHandler] Failed to unbind session: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Logged out successfully"})
}

// Me handles GET /api/me behind RequireAuth.
func (h *AuthHandler) Me(c *gin.Context) {
	userID := c.MustGet(middleware.ContextUserID).(uuid.UUID)

	user, err := h.userService.GetByID(c.Request.Context(), userID)
	if err != nil {
		handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"user": user})
}

// OAuthBegin handles GET /api/auth/:provider. Redirects to the provider's
// authorize URL.
func (h *AuthHandler) OAuthBegin(c *gin.Context) {
	provider, ok := h.provider(c)
	if !ok {
		return
	}

	authURL, err := h.oauthService.AuthURL(c.Request.Context(), provider)
	if err != nil {
		handleServiceError(c, err)
		return
	}
	c.Redirect(http.StatusFound, authURL)
}

// OAuthCallback handles GET /api/auth/:provider/callback. Success binds the
// session and redirects to the client success URL. Expected flow outcomes,
// a bad state, a malformed callback, a profile without an email, redirect
// to the failure URL; anything else is a server fault and answers 500.
func (h *AuthHandler) OAuthCallback(c *gin.Context) {
	provider, ok := h.provider(c)
	if !ok {
		return
	}

	user, err := h.oauthService.HandleCallback(c.Request.Context(), provider, c.Query("state"), c.Query("code"))
	if err != nil {
		if isExpectedCallbackFailure(err) {
			log.Printf("[AuthHandler] %s callback rejected: %v", provider, err)
			c.Redirect(http.StatusFound, h.client.AuthFailure)
			return
		}
		log.Printf("[AuthHandler] %s callback failed: %v", provider, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}

	if _, err := h.sessions.Bind(c.Request.Context(), c.Writer, user.ID); err != nil {
		log.Printf("[AuthHandler] Failed to bind session after %s callback for %s: %v", provider, user.Email, err)
		c.Redirect(http.StatusFound, h.client.AuthFailure)
		return
	}

	c.Redirect(http.StatusFound, h.client.AuthSuccess)
}

// isExpectedCallbackFailure separates user-flow failures from server
// faults. A failed store read or a provider outage is not a rejected
// login and must not be dressed up as one.
func isExpectedCallbackFailure(err error) bool {
	return errors.Is(err, service.ErrMissingEmail) ||
		errors.Is(err, service.ErrInvalidOAuthState) ||
		errors.Is(err, apperrors.ErrValidation)
}

// provider parses and validates the :provider URL parameter, and checks
// the provider is actually configured.
func (h *AuthHandler) provider(c *gin.Context) (entity.AuthProvider, bool) {
	provider := entity.AuthProvider(c.Param("provider"))
	if !provider.Valid() {
		c.JSON(http.StatusNotFound, gin.H{"error": "Unknown auth provider"})
		return "", false
	}
	if !h.oauthService.Enabled(provider) {
		c.JSON(http.StatusNotFound, gin.H{"error": "Auth provider is not configured"})
		return "", false
	}
	return provider, true
}
