package model

import (
	"time"

	"github.com/google/uuid"
)

// Activity names recorded by the pipeline.
const (
	ActivityPhotoUploaded    = "photo_uploaded"
	ActivityPhotoReprocessed = "photo_reprocessed"
	ActivityPhotoDeleted     = "photo_deleted"
	ActivityAlbumCreated     = "album_created"
	ActivityAlbumDeleted     = "album_deleted"
)

// Activity is a best-effort, append-only record of a user action.
type Activity struct {
	ActivityID uuid.UUID         `json:"activity_id"`
	UserID     uuid.UUID         `json:"user_id"`
	Activity   string            `json:"activity"`
	Metadata   map[string]string `json:"metadata,omitempty"`
	Timestamp  time.Time         `json:"timestamp"`
	ExpiresAt  time.Time         `json:"expires_at"`
}
