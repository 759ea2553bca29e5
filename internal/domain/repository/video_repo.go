package repository

import (
	"context"

	"github.com/google/uuid"

	"github.com/yourusername/reviewbot-api/internal/domain/entity"
)

// VideoRepository stores video metadata rows. The blobs themselves live in
// object storage and are managed by the video service.
type VideoRepository interface {
	Create(ctx context.Context, video *entity.Video) error
	GetByID(ctx context.Context, id uuid.UUID) (*entity.Video, error)
	List(ctx context.Context, limit, offset int) ([]entity.Video, error)
	ListByUser(ctx context.Context, userID uuid.UUID, limit, offset int) ([]entity.Video, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, status entity.VideoStatus) error
	Delete(ctx context.Context, id uuid.UUID) error
}
