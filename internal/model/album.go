package model

import (
	"time"

	"github.com/google/uuid"
)

// Album is a named collection of photos ordered by insertion time.
// CoverPhotoID, when set, always refers to a current member.
type Album struct {
	ID           uuid.UUID   `json:"id"`
	OwnerID      uuid.UUID   `json:"owner_id"`
	Title        string      `json:"title"`
	Description  string      `json:"description,omitempty"`
	PhotoIDs     []uuid.UUID `json:"photo_ids"`
	CoverPhotoID *uuid.UUID  `json:"cover_photo_id"`
	CreatedAt    time.Time   `json:"created_at"`
	UpdatedAt    time.Time   `json:"updated_at"`
}
