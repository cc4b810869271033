package photo

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	"github.com/wb-go/wbf/zlog"

	"github.com/aliskhannn/photoshare/internal/apperr"
	"github.com/aliskhannn/photoshare/internal/deriver"
	"github.com/aliskhannn/photoshare/internal/model"
	photorepo "github.com/aliskhannn/photoshare/internal/repository/photo"
	"github.com/aliskhannn/photoshare/internal/storage/blob"
)

// MaxUploadSize is the upper bound on an uploaded original. A file of
// exactly this size is accepted.
const MaxUploadSize = 10 << 20

const (
	maxTitleLen       = 100
	maxDescriptionLen = 500
)

// photoRepo defines the metadata store operations the pipeline needs.
type photoRepo interface {
	Create(ctx context.Context, p model.Photo) (model.Photo, error)
	GetByID(ctx context.Context, id uuid.UUID) (model.Photo, error)
	ListByOwner(ctx context.Context, ownerID uuid.UUID) ([]model.Photo, error)
	ListAll(ctx context.Context, limit, offset int) ([]model.Photo, error)
	UpdateThumbnail(ctx context.Context, id uuid.UUID, upd photorepo.ThumbnailUpdate) (time.Time, error)
	Delete(ctx context.Context, id uuid.UUID) error
	IncrementViews(ctx context.Context, id uuid.UUID) error
}

// albumRepo covers the membership cleanup a photo delete cascades into.
type albumRepo interface {
	DetachPhoto(ctx context.Context, photoID uuid.UUID) error
}

// blobStorage defines the blob backend operations (MinIO in production).
type blobStorage interface {
	Put(ctx context.Context, key string, src io.Reader, size int64, contentType string) (string, error)
	Get(ctx context.Context, key string) (io.ReadCloser, error)
	Delete(ctx context.Context, key string) error
	PresignedURL(ctx context.Context, key string, ttl time.Duration) (string, error)
}

// thumbDeriver derives a thumbnail from original image bytes in-process.
type thumbDeriver interface {
	Derive(ctx context.Context, imageBytes []byte, opts deriver.Options) ([]byte, deriver.Meta, error)
}

// remoteInvoker asks an external service to derive against the shared bucket.
type remoteInvoker interface {
	Invoke(ctx context.Context, imageKey string, opts deriver.Options) (string, deriver.Meta, error)
}

// photoCache is the best-effort metadata cache.
type photoCache interface {
	Get(ctx context.Context, id uuid.UUID) (model.Photo, bool, error)
	Set(ctx context.Context, p model.Photo) error
	Delete(ctx context.Context, id uuid.UUID) error
}

// activityLogger is the non-blocking activity side channel.
type activityLogger interface {
	Log(userID uuid.UUID, activity string, metadata map[string]string)
}

// Service implements the photo ingestion pipeline: validate, store the
// original, derive a thumbnail, persist the record, and the follow-up
// operations (reprocess, delete, reads).
type Service struct {
	photos   photoRepo
	albums   albumRepo
	blob     blobStorage
	deriver  thumbDeriver
	remote   remoteInvoker // nil in local mode
	cache    photoCache
	activity activityLogger

	opts   deriver.Options
	urlTTL time.Duration
}

// NewService creates a photo Service. remote may be nil, in which case
// thumbnails are derived in-process.
func NewService(
	photos photoRepo,
	albums albumRepo,
	bs blobStorage,
	d thumbDeriver,
	remote remoteInvoker,
	cache photoCache,
	activity activityLogger,
	opts deriver.Options,
	urlTTL time.Duration,
) *Service {
	return &Service{
		photos:   photos,
		albums:   albums,
		blob:     bs,
		deriver:  d,
		remote:   remote,
		cache:    cache,
		activity: activity,
		opts:     opts,
		urlTTL:   urlTTL,
	}
}

// IngestInput carries one upload through the pipeline.
type IngestInput struct {
	Title       string
	Description string
	Filename    string
	ContentType string
	Data        []byte
}

// Ingest validates the upload, stores the original, derives a thumbnail and
// persists the metadata record. A derivation failure does not fail the call:
// the record persists in failed status with a null thumbnail key.
func (s *Service) Ingest(ctx context.Context, ownerID uuid.UUID, in IngestInput) (model.Photo, error) {
	title := strings.TrimSpace(in.Title)

	if err := validate(title, in.Description, in.ContentType, len(in.Data)); err != nil {
		return model.Photo{}, err
	}

	// Store the original first; nothing is persisted if this fails.
	originalKey := blob.OriginalKey(in.Filename)
	if _, err := s.blob.Put(ctx, originalKey, bytes.NewReader(in.Data), int64(len(in.Data)), in.ContentType); err != nil {
		return model.Photo{}, fmt.Errorf("%w: store original: %v", apperr.ErrStorage, err)
	}

	p := model.Photo{
		OwnerID:          ownerID,
		Title:            title,
		Description:      strings.TrimSpace(in.Description),
		OriginalFilename: in.Filename,
		MimeType:         in.ContentType,
		SizeBytes:        int64(len(in.Data)),
		OriginalKey:      originalKey,
		Status:           model.StatusProcessing,
	}

	p, err := s.photos.Create(ctx, p)
	if err != nil {
		// The original blob is orphaned otherwise; clean it up best-effort.
		if derr := s.blob.Delete(ctx, originalKey); derr != nil {
			zlog.Logger.Err(derr).Str("key", originalKey).Msg("failed to remove orphaned original")
		}
		return model.Photo{}, fmt.Errorf("%w: create photo record: %v", apperr.ErrDependency, err)
	}

	upd := photorepo.ThumbnailUpdate{Status: model.StatusCompleted}

	thumbKey, meta, derr := s.deriveThumbnail(ctx, in.Data, originalKey)
	if derr != nil {
		// Swallowed: the upload stays successful without a thumbnail.
		zlog.Logger.Warn().Err(derr).
			Str("photo_id", p.ID.String()).
			Msg("thumbnail derivation failed, continuing without thumbnail")

		msg := derr.Error()
		upd = photorepo.ThumbnailUpdate{Status: model.StatusFailed, ProcessError: &msg}
	} else {
		upd.Key = &thumbKey
		upd.Width = meta.Width
		upd.Height = meta.Height
		upd.Format = meta.Format
	}

	if updatedAt, err := s.photos.UpdateThumbnail(ctx, p.ID, upd); err != nil {
		zlog.Logger.Err(err).
			Str("photo_id", p.ID.String()).
			Msg("failed to record derivation outcome")
	} else {
		p.UpdatedAt = updatedAt
	}

	p.ThumbnailKey = upd.Key
	p.Status = upd.Status
	p.ProcessError = upd.ProcessError
	p.Width = upd.Width
	p.Height = upd.Height
	p.Format = upd.Format

	s.activity.Log(ownerID, model.ActivityPhotoUploaded, map[string]string{
		"photo_id": p.ID.String(),
		"title":    title,
	})

	return p, nil
}

// Reprocess re-runs derivation against the already-stored original.
// Unlike initial ingestion, a derivation failure is surfaced to the caller.
func (s *Service) Reprocess(ctx context.Context, photoID, requesterID uuid.UUID) (model.Photo, error) {
	p, err := s.photos.GetByID(ctx, photoID)
	if err != nil {
		return model.Photo{}, err
	}

	if p.OwnerID != requesterID {
		return model.Photo{}, apperr.ErrForbidden
	}

	var original []byte
	if s.remote == nil {
		rc, err := s.blob.Get(ctx, p.OriginalKey)
		if err != nil {
			return model.Photo{}, fmt.Errorf("%w: load original: %v", apperr.ErrStorage, err)
		}
		original, err = io.ReadAll(rc)
		rc.Close()
		if err != nil {
			return model.Photo{}, fmt.Errorf("%w: read original: %v", apperr.ErrStorage, err)
		}
	}

	newKey, meta, err := s.deriveThumbnail(ctx, original, p.OriginalKey)
	if err != nil {
		return model.Photo{}, err
	}

	oldKey := p.ThumbnailKey

	upd := photorepo.ThumbnailUpdate{
		Key:    &newKey,
		Status: model.StatusCompleted,
		Width:  meta.Width,
		Height: meta.Height,
		Format: meta.Format,
	}
	updatedAt, err := s.photos.UpdateThumbnail(ctx, photoID, upd)
	if err != nil {
		return model.Photo{}, fmt.Errorf("%w: record new thumbnail: %v", apperr.ErrDependency, err)
	}

	if oldKey != nil && *oldKey != newKey {
		if err := s.blob.Delete(ctx, *oldKey); err != nil {
			zlog.Logger.Err(err).Str("key", *oldKey).Msg("failed to delete previous thumbnail")
		}
	}

	s.invalidate(ctx, photoID)

	s.activity.Log(requesterID, model.ActivityPhotoReprocessed, map[string]string{
		"photo_id": photoID.String(),
	})

	p.ThumbnailKey = &newKey
	p.Status = model.StatusCompleted
	p.ProcessError = nil
	p.Width = meta.Width
	p.Height = meta.Height
	p.Format = meta.Format
	p.UpdatedAt = updatedAt

	return p, nil
}

// Delete removes the photo's blobs (best-effort), detaches it from every
// album, deletes the record and logs the activity. Owner-only.
func (s *Service) Delete(ctx context.Context, photoID, requesterID uuid.UUID) error {
	p, err := s.photos.GetByID(ctx, photoID)
	if err != nil {
		return err
	}

	if p.OwnerID != requesterID {
		return apperr.ErrForbidden
	}

	// Blob deletes are best-effort: a failure is logged and must not
	// abort the record deletion.
	if err := s.blob.Delete(ctx, p.OriginalKey); err != nil {
		zlog.Logger.Err(err).Str("key", p.OriginalKey).Msg("failed to delete original blob")
	}
	if p.ThumbnailKey != nil {
		if err := s.blob.Delete(ctx, *p.ThumbnailKey); err != nil {
			zlog.Logger.Err(err).Str("key", *p.ThumbnailKey).Msg("failed to delete thumbnail blob")
		}
	}

	if err := s.albums.DetachPhoto(ctx, photoID); err != nil {
		return fmt.Errorf("%w: detach photo from albums: %v", apperr.ErrDependency, err)
	}

	if err := s.photos.Delete(ctx, photoID); err != nil {
		return err
	}

	s.invalidate(ctx, photoID)

	s.activity.Log(requesterID, model.ActivityPhotoDeleted, map[string]string{
		"photo_id": photoID.String(),
	})

	return nil
}

// Get returns the photo metadata and bumps its view counter.
func (s *Service) Get(ctx context.Context, id uuid.UUID) (model.Photo, error) {
	if err := s.photos.IncrementViews(ctx, id); err != nil {
		zlog.Logger.Err(err).Str("photo_id", id.String()).Msg("failed to increment views")
	}

	if p, ok, err := s.cache.Get(ctx, id); err != nil {
		zlog.Logger.Err(err).Msg("photo cache read failed")
	} else if ok {
		return p, nil
	}

	p, err := s.photos.GetByID(ctx, id)
	if err != nil {
		return model.Photo{}, err
	}

	if err := s.cache.Set(ctx, p); err != nil {
		zlog.Logger.Err(err).Msg("photo cache write failed")
	}

	return p, nil
}

// Open returns the photo metadata together with a reader over the original bytes.
func (s *Service) Open(ctx context.Context, id uuid.UUID) (model.Photo, io.ReadCloser, error) {
	p, err := s.photos.GetByID(ctx, id)
	if err != nil {
		return model.Photo{}, nil, err
	}

	rc, err := s.blob.Get(ctx, p.OriginalKey)
	if err != nil {
		return model.Photo{}, nil, fmt.Errorf("%w: open original: %v", apperr.ErrStorage, err)
	}

	return p, rc, nil
}

// FileURL returns a temporary presigned link to the original.
func (s *Service) FileURL(ctx context.Context, id uuid.UUID) (string, error) {
	p, err := s.photos.GetByID(ctx, id)
	if err != nil {
		return "", err
	}

	u, err := s.blob.PresignedURL(ctx, p.OriginalKey, s.urlTTL)
	if err != nil {
		return "", fmt.Errorf("%w: presign original: %v", apperr.ErrStorage, err)
	}

	return u, nil
}

// ListOwn returns the requester's photos, newest first.
func (s *Service) ListOwn(ctx context.Context, ownerID uuid.UUID) ([]model.Photo, error) {
	return s.photos.ListByOwner(ctx, ownerID)
}

// List returns a page of all photos, newest first.
func (s *Service) List(ctx context.Context, limit, offset int) ([]model.Photo, error) {
	return s.photos.ListAll(ctx, limit, offset)
}

// deriveThumbnail produces and stores the thumbnail, either via the remote
// processing service (which writes to the bucket itself) or in-process.
// Returns the key the thumbnail was stored under.
func (s *Service) deriveThumbnail(ctx context.Context, original []byte, originalKey string) (string, deriver.Meta, error) {
	if s.remote != nil {
		return s.remote.Invoke(ctx, originalKey, s.opts)
	}

	thumb, meta, err := s.deriver.Derive(ctx, original, s.opts)
	if err != nil {
		return "", deriver.Meta{}, err
	}

	key := blob.ThumbnailKey(originalKey, meta.Format)
	if _, err := s.blob.Put(ctx, key, bytes.NewReader(thumb), int64(len(thumb)), "image/"+meta.Format); err != nil {
		return "", deriver.Meta{}, fmt.Errorf("%w: store thumbnail: %v", apperr.ErrStorage, err)
	}

	return key, meta, nil
}

func (s *Service) invalidate(ctx context.Context, id uuid.UUID) {
	if err := s.cache.Delete(ctx, id); err != nil {
		zlog.Logger.Err(err).Str("photo_id", id.String()).Msg("photo cache invalidation failed")
	}
}

func validate(title, description, contentType string, size int) error {
	if !strings.HasPrefix(contentType, "image/") {
		return fmt.Errorf("%w: content type %q is not an image", apperr.ErrValidation, contentType)
	}

	if size > MaxUploadSize {
		return fmt.Errorf("%w: file too large - max 10 MiB", apperr.ErrValidation)
	}

	if title == "" {
		return fmt.Errorf("%w: title is required", apperr.ErrValidation)
	}

	if utf8.RuneCountInString(title) > maxTitleLen {
		return fmt.Errorf("%w: title exceeds %d characters", apperr.ErrValidation, maxTitleLen)
	}

	if utf8.RuneCountInString(description) > maxDescriptionLen {
		return fmt.Errorf("%w: description exceeds %d characters", apperr.ErrValidation, maxDescriptionLen)
	}

	return nil
}
