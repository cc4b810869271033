package model

import (
	"time"

	"github.com/google/uuid"
)

// Processing status values for a photo. A record starts in StatusProcessing
// right after the original is stored and moves exactly once to either
// StatusCompleted or StatusFailed when derivation finishes.
const (
	StatusPending    = "pending"
	StatusProcessing = "processing"
	StatusCompleted  = "completed"
	StatusFailed     = "failed"
)

// Photo represents one uploaded image and its derived thumbnail.
type Photo struct {
	ID               uuid.UUID   `json:"id"`
	OwnerID          uuid.UUID   `json:"owner_id"`
	Title            string      `json:"title"`
	Description      string      `json:"description,omitempty"`
	OriginalFilename string      `json:"original_filename"`
	MimeType         string      `json:"mime_type"`
	SizeBytes        int64       `json:"size_bytes"`
	OriginalKey      string      `json:"original_key"`
	ThumbnailKey     *string     `json:"thumbnail_key"`
	Status           string      `json:"status"`
	ProcessError     *string     `json:"process_error,omitempty"`
	Width            int         `json:"width,omitempty"`
	Height           int         `json:"height,omitempty"`
	Format           string      `json:"format,omitempty"`
	AlbumIDs         []uuid.UUID `json:"album_ids"`
	Views            int64       `json:"views"`
	CreatedAt        time.Time   `json:"created_at"`
	UpdatedAt        time.Time   `json:"updated_at"`
}
