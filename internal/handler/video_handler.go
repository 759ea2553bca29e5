package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/yourusername/reviewbot-api/internal/middleware"
	"github.com/yourusername/reviewbot-api/internal/service"
)

// VideoHandler handles video upload and metadata routes. All routes sit
// behind RequireAuth.
type VideoHandler struct {
	videoService *service.VideoService
}

// NewVideoHandler creates the video handler.
func NewVideoHandler(videoService *service.VideoService) *VideoHandler {
	return &VideoHandler{videoService: videoService}
}

// Upload handles POST /api/videos. Multipart form: "video" file
// part plus optional "title" and "description" fields. The file streams
// through to the bucket without buffering it whole in memory.
func (h *VideoHandler) Upload(c *gin.Context) {
	userID := c.MustGet(middleware.ContextUserID).(uuid.UUID)

	fileHeader, err := c.FormFile("video")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "No video file provided"})
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Could not read video file"})
		return
	}
	defer file.Close()

	video, err := h.videoService.Upload(c.Request.Context(), service.UploadVideoInput{
		UserID:      userID,
		Title:       c.PostForm("title"),
		Description: c.PostForm("description"),
		FileName:    fileHeader.Filename,
		MimeType:    fileHeader.Header.Get("Content-Type"),
		Size:        fileHeader.Size,
		Reader:      file,
	})
	if err != nil {
		handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"message": "Video uploaded successfully", "video": video})
}

// GetVideo handles GET /api/videos/:id.
func (h *VideoHandler) GetVideo(c *gin.Context) {
	videoID := c.MustGet("videoID").(uuid.UUID)

	video, err := h.videoService.GetByID(c.Request.Context(), videoID)
	if err != nil {
		handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"video": video})
}

// ListVideos handles GET /api/videos. ?mine=true narrows the listing to
// the requester's own videos.
func (h *VideoHandler) ListVideos(c *gin.Context) {
	limit, offset := paginationParams(c)

	var owner *uuid.UUID
	if c.Query("mine") == "true" {
		userID := c.MustGet(middleware.ContextUserID).(uuid.UUID)
		owner = &userID
	}

	videos, err := h.videoService.List(c.Request.Context(), owner, limit, offset)
	if err != nil {
		handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"videos": videos})
}

// DeleteVideo handles DELETE /api/videos/:id, owner only.
func (h *VideoHandler) DeleteVideo(c *gin.Context) {
	videoID := c.MustGet("videoID").(uuid.UUID)
	requesterID := c.MustGet(middleware.ContextUserID).(uuid.UUID)

	if err := h.videoService.Delete(c.Request.Context(), videoID, requesterID); err != nil {
		handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Video deleted"})
}
