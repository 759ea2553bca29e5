package handler

import (
	"errors"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/yourusername/reviewbot-api/internal/domain/repository"
	apperrors "github.com/yourusername/reviewbot-api/internal/pkg/errors"
	"github.com/yourusername/reviewbot-api/internal/service"
)

// handleServiceError maps service errors to HTTP statuses. Validation and
// auth outcomes are expected control flow; anything unclassified is logged
// in full and surfaced as a bare 500.
func handleServiceError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, apperrors.ErrValidation):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, service.ErrInvalidCredentials):
		// Uniform body regardless of the underlying cause.
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Authentication failed", "message": "Invalid email or password"})
	case errors.Is(err, apperrors.ErrUnauthorized):
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
	case errors.Is(err, apperrors.ErrForbidden):
		c.JSON(http.StatusForbidden, gin.H{"error": "Forbidden"})
	case errors.Is(err, apperrors.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "Not found"})
	case errors.Is(err, repository.ErrEmailTaken):
		c.JSON(http.StatusConflict, gin.H{"error": "User already exists", "message": "An account with this email already exists"})
	case errors.Is(err, repository.ErrProviderIDTaken), errors.Is(err, apperrors.ErrConflict):
		c.JSON(http.StatusConflict, gin.H{"error": "Conflict"})
	default:
		log.Printf("[Handler] Unexpected error on %s %s: %v", c.Request.Method, c.Request.URL.Path, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
	}
}
