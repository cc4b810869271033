package photo

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/wb-go/wbf/dbpg"

	"github.com/aliskhannn/photoshare/internal/apperr"
	"github.com/aliskhannn/photoshare/internal/model"
)

// ThumbnailUpdate carries the single post-derivation mutation of a photo row.
type ThumbnailUpdate struct {
	Key          *string
	Status       string
	ProcessError *string
	Width        int
	Height       int
	Format       string
}

// Repository provides CRUD operations for photos in the database.
type Repository struct {
	db *dbpg.DB
}

// NewRepository creates a new Repository with the given DB connection.
func NewRepository(db *dbpg.DB) *Repository {
	return &Repository{db: db}
}

const photoColumns = `
	owner_id, title, description, original_filename, mime_type, size_bytes,
	original_key, thumbnail_key, status, process_error, width, height, format,
	views, created_at, updated_at
`

// Create inserts a new photo record and returns it with the DB-assigned
// id and timestamps. Writes always go to the master.
func (r *Repository) Create(ctx context.Context, p model.Photo) (model.Photo, error) {
	query := `
		INSERT INTO photos (owner_id, title, description, original_filename, mime_type, size_bytes, original_key, status)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id, created_at, updated_at
   `

	err := r.db.Master.QueryRowContext(
		ctx, query, p.OwnerID, p.Title, p.Description, p.OriginalFilename, p.MimeType, p.SizeBytes, p.OriginalKey, p.Status,
	).Scan(&p.ID, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return model.Photo{}, fmt.Errorf("create: failed to save photo: %w", err)
	}

	return p, nil
}

// GetByID retrieves a photo record by ID, including its album membership.
func (r *Repository) GetByID(ctx context.Context, id uuid.UUID) (model.Photo, error) {
	query := `SELECT ` + photoColumns + ` FROM photos WHERE id = $1`

	p, err := r.scanPhoto(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return model.Photo{}, apperr.ErrNotFound
		}

		return model.Photo{}, fmt.Errorf("get: failed to get photo: %w", err)
	}
	p.ID = id

	albumIDs, err := r.albumIDs(ctx, id)
	if err != nil {
		return model.Photo{}, err
	}
	p.AlbumIDs = albumIDs

	return p, nil
}

// ListByOwner returns the owner's photos, newest first.
func (r *Repository) ListByOwner(ctx context.Context, ownerID uuid.UUID) ([]model.Photo, error) {
	query := `SELECT id, ` + photoColumns + ` FROM photos WHERE owner_id = $1 ORDER BY created_at DESC`

	rows, err := r.db.Master.QueryContext(ctx, query, ownerID)
	if err != nil {
		return nil, fmt.Errorf("list: failed to query photos by owner: %w", err)
	}
	defer rows.Close()

	return scanPhotos(rows)
}

// ListAll returns a page of photos, newest first.
func (r *Repository) ListAll(ctx context.Context, limit, offset int) ([]model.Photo, error) {
	query := `SELECT id, ` + photoColumns + ` FROM photos ORDER BY created_at DESC LIMIT $1 OFFSET $2`

	rows, err := r.db.Master.QueryContext(ctx, query, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("list: failed to query photos: %w", err)
	}
	defer rows.Close()

	return scanPhotos(rows)
}

// UpdateThumbnail applies the derivation outcome to an existing photo and
// returns the server-assigned update time.
func (r *Repository) UpdateThumbnail(ctx context.Context, id uuid.UUID, upd ThumbnailUpdate) (time.Time, error) {
	query := `
		UPDATE photos
		SET thumbnail_key = $1, status = $2, process_error = $3, width = $4, height = $5, format = $6, updated_at = now()
		WHERE id = $7
		RETURNING updated_at
    `

	var updatedAt time.Time
	err := r.db.Master.QueryRowContext(
		ctx, query, upd.Key, upd.Status, upd.ProcessError, upd.Width, upd.Height, upd.Format, id,
	).Scan(&updatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return time.Time{}, apperr.ErrNotFound
	}
	if err != nil {
		return time.Time{}, fmt.Errorf("update: failed to update photo thumbnail: %w", err)
	}

	return updatedAt, nil
}

// Delete removes a photo record by ID.
func (r *Repository) Delete(ctx context.Context, id uuid.UUID) error {
	query := `DELETE FROM photos WHERE id = $1`

	res, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		return fmt.Errorf("delete: failed to delete photo: %w", err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete: failed to get number of rows affected: %w", err)
	}

	if n == 0 {
		return apperr.ErrNotFound
	}

	return nil
}

// IncrementViews bumps the view counter of a photo.
func (r *Repository) IncrementViews(ctx context.Context, id uuid.UUID) error {
	query := `UPDATE photos SET views = views + 1 WHERE id = $1`

	if _, err := r.db.ExecContext(ctx, query, id); err != nil {
		return fmt.Errorf("views: failed to increment views: %w", err)
	}

	return nil
}

// CountOwned counts how many of the given photo IDs belong to the owner.
func (r *Repository) CountOwned(ctx context.Context, ownerID uuid.UUID, ids []uuid.UUID) (int, error) {
	query := `SELECT count(*) FROM photos WHERE owner_id = $1 AND id = ANY($2)`

	var n int
	err := r.db.QueryRowContext(ctx, query, ownerID, pq.Array(uuidStrings(ids))).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("count: failed to count owned photos: %w", err)
	}

	return n, nil
}

func (r *Repository) albumIDs(ctx context.Context, photoID uuid.UUID) ([]uuid.UUID, error) {
	query := `SELECT album_id FROM album_photos WHERE photo_id = $1 ORDER BY added_at`

	rows, err := r.db.Master.QueryContext(ctx, query, photoID)
	if err != nil {
		return nil, fmt.Errorf("get: failed to query photo albums: %w", err)
	}
	defer rows.Close()

	ids := []uuid.UUID{}
	for rows.Next() {
		var id uuid.UUID
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("get: failed to scan album id: %w", err)
		}
		ids = append(ids, id)
	}

	return ids, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func (r *Repository) scanPhoto(row rowScanner) (model.Photo, error) {
	var p model.Photo
	err := row.Scan(
		&p.OwnerID, &p.Title, &p.Description, &p.OriginalFilename, &p.MimeType, &p.SizeBytes,
		&p.OriginalKey, &p.ThumbnailKey, &p.Status, &p.ProcessError, &p.Width, &p.Height, &p.Format,
		&p.Views, &p.CreatedAt, &p.UpdatedAt,
	)

	return p, err
}

func scanPhotos(rows *sql.Rows) ([]model.Photo, error) {
	photos := []model.Photo{}

	for rows.Next() {
		var p model.Photo
		err := rows.Scan(
			&p.ID,
			&p.OwnerID, &p.Title, &p.Description, &p.OriginalFilename, &p.MimeType, &p.SizeBytes,
			&p.OriginalKey, &p.ThumbnailKey, &p.Status, &p.ProcessError, &p.Width, &p.Height, &p.Format,
			&p.Views, &p.CreatedAt, &p.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("list: failed to scan photo: %w", err)
		}
		photos = append(photos, p)
	}

	return photos, rows.Err()
}

func uuidStrings(ids []uuid.UUID) []string {
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		out = append(out, id.String())
	}

	return out
}
