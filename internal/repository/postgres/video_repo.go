package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/yourusername/reviewbot-api/internal/domain/entity"
	apperrors "github.com/yourusername/reviewbot-api/internal/pkg/errors"
)

// VideoRepo implements repository.VideoRepository.
type VideoRepo struct {
	db *gorm.DB
}

// NewVideoRepo creates a video metadata repository.
func NewVideoRepo(db *gorm.DB) (*VideoRepo, error) {
	if db == nil {
		return nil, fmt.Errorf("gorm DB is required for VideoRepo")
	}
	return &VideoRepo{db: db}, nil
}

// Create inserts a new video row, generating the ID if unset.
func (r *VideoRepo) Create(ctx context.Context, video *entity.Video) error {
	if video.ID == uuid.Nil {
		video.ID = uuid.New()
	}
	return r.db.WithContext(ctx).Create(video).Error
}

// GetByID returns the video with the given ID.
func (r *VideoRepo) GetByID(ctx context.Context, id uuid.UUID) (*entity.Video, error) {
	var video entity.Video
	err := r.db.WithContext(ctx).First(&video, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrNotFound
		}
		return nil, err
	}
	return &video, nil
}

// List returns videos with pagination, newest first.
func (r *VideoRepo) List(ctx context.Context, limit, offset int) ([]entity.Video, error) {
	var videos []entity.Video
	err := r.db.WithContext(ctx).
		Limit(limit).Offset(offset).Order("created_at DESC").
		Find(&videos).Error
	return videos, err
}

// ListByUser returns one user's videos with pagination, newest first.
func (r *VideoRepo) ListByUser(ctx context.Context, userID uuid.UUID, limit, offset int) ([]entity.Video, error) {
	var videos []entity.Video
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Limit(limit).Offset(offset).Order("created_at DESC").
		Find(&videos).Error
	return videos, err
}

// UpdateStatus moves a video through its lifecycle.
func (r *VideoRepo) UpdateStatus(ctx context.Context, id uuid.UUID, status entity.VideoStatus) error {
	result := r.db.WithContext(ctx).Model(&entity.Video{}).
		Where("id = ?", id).
		Update("status", status)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}

// Delete removes a video row.
func (r *VideoRepo) Delete(ctx context.Context, id uuid.UUID) error {
	result := r.db.WithContext(ctx).Delete(&entity.Video{}, "id = ?", id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}
