package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/yourusername/reviewbot-api/internal/middleware"
	"github.com/yourusername/reviewbot-api/internal/service"
)

// UserHandler handles account read and administrative routes.
type UserHandler struct {
	userService *service.UserService
	authService *service.AuthService
}

// NewUserHandler creates the user handler.
func NewUserHandler(userService *service.UserService, authService *service.AuthService) *UserHandler {
	return &UserHandler{
		userService: userService,
		authService: authService,
	}
}

// ChangePasswordRequest is the credential-update payload.
type ChangePasswordRequest struct {
	OldPassword string `json:"old_password"`
	NewPassword string `json:"new_password" binding:"required"`
}

// GetUser handles GET /api/users/:id. The UUID is validated by the param
// middleware before this runs.
func (h *UserHandler) GetUser(c *gin.Context) {
	userID := c.MustGet("userID").(uuid.UUID)

	user, err := h.userService.GetByID(c.Request.Context(), userID)
	if err != nil {
		handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"user": user})
}

// ListUsers handles GET /api/users with limit/offset pagination.
func (h *UserHandler) ListUsers(c *gin.Context) {
	limit, offset := paginationParams(c)

	users, err := h.userService.List(c.Request.Context(), limit, offset)
	if err != nil {
		handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"users": users})
}

// DeleteUser handles DELETE /api/users/:id.
func (h *UserHandler) DeleteUser(c *gin.Context) {
	userID := c.MustGet("userID").(uuid.UUID)

	if err := h.userService.Delete(c.Request.Context(), userID); err != nil {
		handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "User deleted"})
}

// ChangePassword handles PUT /api/me/password for the authenticated
// user.
func (h *UserHandler) ChangePassword(c *gin.Context) {
	requesterID := c.MustGet(middleware.ContextUserID).(uuid.UUID)

	var req ChangePasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Missing required fields", "message": "new_password is required"})
		return
	}

	if err := h.authService.ChangePassword(c.Request.Context(), requesterID, req.OldPassword, req.NewPassword); err != nil {
		handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Password updated"})
}

// paginationParams reads limit/offset query parameters with sane bounds.
func paginationParams(c *gin.Context) (limit, offset int) {
	limit, err := strconv.Atoi(c.DefaultQuery("limit", "20"))
	if err != nil || limit < 1 {
		limit = 20
	} else if limit > 100 {
		limit = 100
	}
	offset, err = strconv.Atoi(c.DefaultQuery("offset", "0"))
	if err != nil || offset < 0 {
		offset = 0
	}
	return limit, offset
}
