package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"path"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/yourusername/reviewbot-api/internal/domain/entity"
	"github.com/yourusername/reviewbot-api/internal/domain/repository"
	apperrors "github.com/yourusername/reviewbot-api/internal/pkg/errors"
)

// MaxVideoSize is the upload cap in bytes.
const MaxVideoSize = 500 << 20 // 500 MB

// allowedVideoMimeTypes is the upload whitelist.
var allowedVideoMimeTypes = map[string]bool{
	"video/mp4":        true,
	"video/mpeg":       true,
	"video/quicktime":  true,
	"video/x-msvideo":  true,
	"video/x-ms-wmv":   true,
	"video/webm":       true,
	"video/x-flv":      true,
	"video/x-matroska": true,
}

// UploadVideoInput carries one multipart upload through the service.
type UploadVideoInput struct {
	UserID      uuid.UUID
	Title       string
	Description string
	FileName    string
	MimeType    string
	Size        int64
	Reader      io.Reader
}

// VideoService streams uploads into the bucket and manages their metadata
// rows. The blob store is a plain pass-through; the service owns naming,
// validation and ownership checks.
type VideoService struct {
	videoRepo repository.VideoRepository
	storage   repository.BlobStorage
}

// NewVideoService creates a video service.
func NewVideoService(videoRepo repository.VideoRepository, storage repository.BlobStorage) (*VideoService, error) {
	if videoRepo == nil {
		return nil, fmt.Errorf("VideoRepository is required for VideoService")
	}
	if storage == nil {
		return nil, fmt.Errorf("BlobStorage is required for VideoService")
	}
	return &VideoService{videoRepo: videoRepo, storage: storage}, nil
}

// Upload validates the file, streams it into the bucket under a
// per-user key and records the metadata row.
func (s *VideoService) Upload(ctx context.Context, input UploadVideoInput) (*entity.Video, error) {
	if input.Reader == nil || input.Size == 0 {
		return nil, fmt.Errorf("%w: no video file provided", apperrors.ErrValidation)
	}
	if input.Size > MaxVideoSize {
		return nil, fmt.Errorf("%w: file exceeds the %d byte limit", apperrors.ErrValidation, int64(MaxVideoSize))
	}
	if !allowedVideoMimeTypes[input.MimeType] {
		return nil, fmt.Errorf("%w: invalid file type %q, only video files are allowed", apperrors.ErrValidation, input.MimeType)
	}

	key := objectKey(input.UserID, input.FileName)
	url, err := s.storage.Upload(ctx, key, input.Reader, input.Size, input.MimeType)
	if err != nil {
		return nil, fmt.Errorf("failed to upload video: %w", err)
	}

	title := strings.TrimSpace(input.Title)
	if title == "" {
		title = input.FileName
	}
	video := &entity.Video{
		Title:       title,
		Description: strings.TrimSpace(input.Description),
		URL:         url,
		ObjectKey:   key,
		FileSize:    &input.Size,
		MimeType:    input.MimeType,
		Status:      entity.VideoStatusCompleted,
		UserID:      input.UserID,
	}
	if err := s.videoRepo.Create(ctx, video); err != nil {
		// The blob is already in the bucket; drop it so a failed row never
		// leaves an orphan behind.
		if delErr := s.storage.Delete(ctx, key); delErr != nil {
			log.Printf("[VideoService] Failed to clean up orphaned object %s: %v", key, delErr)
		}
		return nil, fmt.Errorf("failed to save video metadata: %w", err)
	}

	return video, nil
}

// GetByID returns a single video's metadata.
func (s *VideoService) GetByID(ctx context.Context, id uuid.UUID) (*entity.Video, error) {
	return s.videoRepo.GetByID(ctx, id)
}

// List returns videos with pagination, optionally filtered to one owner.
func (s *VideoService) List(ctx context.Context, userID *uuid.UUID, limit, offset int) ([]entity.Video, error) {
	if limit <= 0 {
		limit = 20
	} else if limit > 100 {
		limit = 100
	}
	if offset < 0 {
		offset = 0
	}
	if userID != nil {
		return s.videoRepo.ListByUser(ctx, *userID, limit, offset)
	}
	return s.videoRepo.List(ctx, limit, offset)
}

// Delete removes a video, owner only. The object is removed first; a row
// without a blob is worse than a blob without a row.
func (s *VideoService) Delete(ctx context.Context, id, requesterID uuid.UUID) error {
	video, err := s.videoRepo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if video.UserID != requesterID {
		return fmt.Errorf("%w: video belongs to another user", apperrors.ErrForbidden)
	}

	if video.ObjectKey != "" {
		if err := s.storage.Delete(ctx, video.ObjectKey); err != nil {
			return fmt.Errorf("failed to delete video object: %w", err)
		}
	}
	if err := s.videoRepo.Delete(ctx, id); err != nil && !errors.Is(err, apperrors.ErrNotFound) {
		return err
	}
	return nil
}

// objectKey builds the bucket key: user-scoped folder, timestamp plus
// random suffix, original extension preserved.
func objectKey(userID uuid.UUID, fileName string) string {
	ext := strings.ToLower(path.Ext(fileName))
	suffix := strings.ReplaceAll(uuid.NewString(), "-", "")[:8]
	return fmt.Sprintf("%s/%d-%s%s", userID, time.Now().UnixMilli(), suffix, ext)
}
