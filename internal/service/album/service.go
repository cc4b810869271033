package album

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/aliskhannn/photoshare/internal/apperr"
	"github.com/aliskhannn/photoshare/internal/model"
)

// albumRepo defines the album store operations the service needs.
type albumRepo interface {
	Create(ctx context.Context, a model.Album) (uuid.UUID, error)
	GetByID(ctx context.Context, id uuid.UUID) (model.Album, error)
	ListByOwner(ctx context.Context, ownerID uuid.UUID) ([]model.Album, error)
	Delete(ctx context.Context, id uuid.UUID) error
	AddPhotos(ctx context.Context, albumID uuid.UUID, photoIDs []uuid.UUID) error
	RemovePhotos(ctx context.Context, albumID uuid.UUID, photoIDs []uuid.UUID) error
	SetCover(ctx context.Context, albumID uuid.UUID, coverID *uuid.UUID) error
	Members(ctx context.Context, albumID uuid.UUID) ([]uuid.UUID, error)
}

// photoRepo covers the ownership check over member candidates.
type photoRepo interface {
	CountOwned(ctx context.Context, ownerID uuid.UUID, ids []uuid.UUID) (int, error)
}

// activityLogger is the non-blocking activity side channel.
type activityLogger interface {
	Log(userID uuid.UUID, activity string, metadata map[string]string)
}

// Service maintains albums and their photo membership. Every mutation is
// owner-only, and adding photos requires the requester to own all of them:
// partial ownership fails the whole call with no mutation.
type Service struct {
	albums   albumRepo
	photos   photoRepo
	activity activityLogger
}

// NewService creates an album Service.
func NewService(albums albumRepo, photos photoRepo, activity activityLogger) *Service {
	return &Service{albums: albums, photos: photos, activity: activity}
}

// Create makes a new album for the owner with an optional initial photo set.
func (s *Service) Create(ctx context.Context, ownerID uuid.UUID, title, description string, photoIDs []uuid.UUID) (model.Album, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return model.Album{}, fmt.Errorf("%w: title is required", apperr.ErrValidation)
	}

	photoIDs = dedupe(photoIDs)
	if err := s.requireOwned(ctx, ownerID, photoIDs); err != nil {
		return model.Album{}, err
	}

	id, err := s.albums.Create(ctx, model.Album{
		OwnerID:     ownerID,
		Title:       title,
		Description: strings.TrimSpace(description),
	})
	if err != nil {
		return model.Album{}, fmt.Errorf("%w: create album: %v", apperr.ErrDependency, err)
	}

	if len(photoIDs) > 0 {
		if err := s.albums.AddPhotos(ctx, id, photoIDs); err != nil {
			return model.Album{}, fmt.Errorf("%w: add initial photos: %v", apperr.ErrDependency, err)
		}
		if err := s.albums.SetCover(ctx, id, &photoIDs[0]); err != nil {
			return model.Album{}, fmt.Errorf("%w: set cover: %v", apperr.ErrDependency, err)
		}
	}

	s.activity.Log(ownerID, model.ActivityAlbumCreated, map[string]string{
		"album_id": id.String(),
		"title":    title,
	})

	return s.albums.GetByID(ctx, id)
}

// Get returns one album with its ordered members.
func (s *Service) Get(ctx context.Context, id uuid.UUID) (model.Album, error) {
	return s.albums.GetByID(ctx, id)
}

// ListOwn returns the requester's albums, newest first.
func (s *Service) ListOwn(ctx context.Context, ownerID uuid.UUID) ([]model.Album, error) {
	return s.albums.ListByOwner(ctx, ownerID)
}

// AddPhotos adds the photos to the album. Idempotent with respect to
// already-present members; sets the cover photo if unset.
func (s *Service) AddPhotos(ctx context.Context, albumID, requesterID uuid.UUID, photoIDs []uuid.UUID) (model.Album, error) {
	a, err := s.ownedAlbum(ctx, albumID, requesterID)
	if err != nil {
		return model.Album{}, err
	}

	photoIDs = dedupe(photoIDs)
	if len(photoIDs) == 0 {
		return a, nil
	}

	if err := s.requireOwned(ctx, requesterID, photoIDs); err != nil {
		return model.Album{}, err
	}

	if err := s.albums.AddPhotos(ctx, albumID, photoIDs); err != nil {
		return model.Album{}, fmt.Errorf("%w: add photos: %v", apperr.ErrDependency, err)
	}

	if a.CoverPhotoID == nil {
		if err := s.albums.SetCover(ctx, albumID, &photoIDs[0]); err != nil {
			return model.Album{}, fmt.Errorf("%w: set cover: %v", apperr.ErrDependency, err)
		}
	}

	return s.albums.GetByID(ctx, albumID)
}

// RemovePhotos removes the photos from the album, re-deriving the cover if
// it pointed at a removed photo (first remaining member, or null).
func (s *Service) RemovePhotos(ctx context.Context, albumID, requesterID uuid.UUID, photoIDs []uuid.UUID) (model.Album, error) {
	a, err := s.ownedAlbum(ctx, albumID, requesterID)
	if err != nil {
		return model.Album{}, err
	}

	photoIDs = dedupe(photoIDs)
	if len(photoIDs) == 0 {
		return a, nil
	}

	if err := s.albums.RemovePhotos(ctx, albumID, photoIDs); err != nil {
		return model.Album{}, fmt.Errorf("%w: remove photos: %v", apperr.ErrDependency, err)
	}

	if a.CoverPhotoID != nil && contains(photoIDs, *a.CoverPhotoID) {
		members, err := s.albums.Members(ctx, albumID)
		if err != nil {
			return model.Album{}, fmt.Errorf("%w: list members: %v", apperr.ErrDependency, err)
		}

		var cover *uuid.UUID
		if len(members) > 0 {
			cover = &members[0]
		}

		if err := s.albums.SetCover(ctx, albumID, cover); err != nil {
			return model.Album{}, fmt.Errorf("%w: re-derive cover: %v", apperr.ErrDependency, err)
		}
	}

	return s.albums.GetByID(ctx, albumID)
}

// Delete removes the album, pulling its reference out of every member photo
// first. Owner-only.
func (s *Service) Delete(ctx context.Context, albumID, requesterID uuid.UUID) error {
	if _, err := s.ownedAlbum(ctx, albumID, requesterID); err != nil {
		return err
	}

	if err := s.albums.Delete(ctx, albumID); err != nil {
		return err
	}

	s.activity.Log(requesterID, model.ActivityAlbumDeleted, map[string]string{
		"album_id": albumID.String(),
	})

	return nil
}

// ownedAlbum loads the album and verifies the requester owns it.
func (s *Service) ownedAlbum(ctx context.Context, albumID, requesterID uuid.UUID) (model.Album, error) {
	a, err := s.albums.GetByID(ctx, albumID)
	if err != nil {
		return model.Album{}, err
	}

	if a.OwnerID != requesterID {
		return model.Album{}, apperr.ErrForbidden
	}

	return a, nil
}

// requireOwned fails unless every photo belongs to the owner.
func (s *Service) requireOwned(ctx context.Context, ownerID uuid.UUID, photoIDs []uuid.UUID) error {
	if len(photoIDs) == 0 {
		return nil
	}

	n, err := s.photos.CountOwned(ctx, ownerID, photoIDs)
	if err != nil {
		return fmt.Errorf("%w: check photo ownership: %v", apperr.ErrDependency, err)
	}

	if n != len(photoIDs) {
		return fmt.Errorf("%w: some photos are not owned by the requester", apperr.ErrForbidden)
	}

	return nil
}

func contains(ids []uuid.UUID, id uuid.UUID) bool {
	for _, v := range ids {
		if v == id {
			return true
		}
	}

	return false
}

func dedupe(ids []uuid.UUID) []uuid.UUID {
	seen := make(map[uuid.UUID]struct{}, len(ids))
	out := make([]uuid.UUID, 0, len(ids))

	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}

	return out
}
