package entity

import (
	"time"

	"github.com/google/uuid"
)

// VideoStatus tracks the lifecycle of an uploaded video.
type VideoStatus string

const (
	VideoStatusPending    VideoStatus = "pending"
	VideoStatusProcessing VideoStatus = "processing"
	VideoStatusCompleted  VideoStatus = "completed"
	VideoStatusFailed     VideoStatus = "failed"
)

// Video holds metadata for a video stored in the object-storage bucket.
// The blob itself lives at URL; the row only describes it.
type Video struct {
	ID           uuid.UUID   `gorm:"type:uuid;primaryKey" json:"id"`
	Title        string      `gorm:"size:255;not null" json:"title"`
	Description  string      `gorm:"type:text" json:"description,omitempty"`
	URL          string      `gorm:"size:512;not null" json:"url"`
	ObjectKey    string      `gorm:"size:512;not null;default:''" json:"-"`
	ThumbnailURL string      `gorm:"size:512" json:"thumbnail_url,omitempty"`
	Duration     *int        `json:"duration,omitempty"`  // seconds
	FileSize     *int64      `json:"file_size,omitempty"` // bytes
	MimeType     string      `gorm:"size:100" json:"mime_type,omitempty"`
	Status       VideoStatus `gorm:"size:20;not null;default:'pending'" json:"status"`
	UserID       uuid.UUID   `gorm:"type:uuid;not null;index" json:"user_id"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// TableName sets the GORM table name.
func (Video) TableName() string {
	return "videos"
}
