package album

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/wb-go/wbf/dbpg"

	"github.com/aliskhannn/photoshare/internal/apperr"
	"github.com/aliskhannn/photoshare/internal/model"
)

// Repository provides CRUD and membership operations for albums.
type Repository struct {
	db *dbpg.DB
}

// NewRepository creates a new Repository with the given DB connection.
func NewRepository(db *dbpg.DB) *Repository {
	return &Repository{db: db}
}

// Create inserts a new album record and returns its UUID.
func (r *Repository) Create(ctx context.Context, a model.Album) (uuid.UUID, error) {
	query := `
		INSERT INTO albums (owner_id, title, description)
		VALUES ($1, $2, $3)
		RETURNING id
   `

	var id uuid.UUID
	err := r.db.Master.QueryRowContext(ctx, query, a.OwnerID, a.Title, a.Description).Scan(&id)
	if err != nil {
		return uuid.Nil, fmt.Errorf("create: failed to save album: %w", err)
	}

	return id, nil
}

// GetByID retrieves an album record by ID, including its ordered members.
func (r *Repository) GetByID(ctx context.Context, id uuid.UUID) (model.Album, error) {
	query := `
		SELECT owner_id, title, description, cover_photo_id, created_at, updated_at
		FROM albums
		WHERE id = $1
    `

	var a model.Album
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&a.OwnerID, &a.Title, &a.Description, &a.CoverPhotoID, &a.CreatedAt, &a.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return model.Album{}, apperr.ErrNotFound
		}

		return model.Album{}, fmt.Errorf("get: failed to get album: %w", err)
	}
	a.ID = id

	members, err := r.Members(ctx, id)
	if err != nil {
		return model.Album{}, err
	}
	a.PhotoIDs = members

	return a, nil
}

// ListByOwner returns the owner's albums, newest first, members included.
func (r *Repository) ListByOwner(ctx context.Context, ownerID uuid.UUID) ([]model.Album, error) {
	query := `
		SELECT id, owner_id, title, description, cover_photo_id, created_at, updated_at
		FROM albums
		WHERE owner_id = $1
		ORDER BY created_at DESC
    `

	rows, err := r.db.Master.QueryContext(ctx, query, ownerID)
	if err != nil {
		return nil, fmt.Errorf("list: failed to query albums: %w", err)
	}
	defer rows.Close()

	albums := []model.Album{}
	for rows.Next() {
		var a model.Album
		err := rows.Scan(&a.ID, &a.OwnerID, &a.Title, &a.Description, &a.CoverPhotoID, &a.CreatedAt, &a.UpdatedAt)
		if err != nil {
			return nil, fmt.Errorf("list: failed to scan album: %w", err)
		}
		albums = append(albums, a)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for i := range albums {
		members, err := r.Members(ctx, albums[i].ID)
		if err != nil {
			return nil, err
		}
		albums[i].PhotoIDs = members
	}

	return albums, nil
}

// Members returns the album's photo IDs ordered by insertion time.
func (r *Repository) Members(ctx context.Context, albumID uuid.UUID) ([]uuid.UUID, error) {
	query := `SELECT photo_id FROM album_photos WHERE album_id = $1 ORDER BY added_at`

	rows, err := r.db.Master.QueryContext(ctx, query, albumID)
	if err != nil {
		return nil, fmt.Errorf("members: failed to query members: %w", err)
	}
	defer rows.Close()

	ids := []uuid.UUID{}
	for rows.Next() {
		var id uuid.UUID
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("members: failed to scan member: %w", err)
		}
		ids = append(ids, id)
	}

	return ids, rows.Err()
}

// AddPhotos inserts membership rows; photos already present are skipped.
func (r *Repository) AddPhotos(ctx context.Context, albumID uuid.UUID, photoIDs []uuid.UUID) error {
	query := `
		INSERT INTO album_photos (album_id, photo_id)
		VALUES ($1, $2)
		ON CONFLICT (album_id, photo_id) DO NOTHING
    `

	for _, photoID := range photoIDs {
		if _, err := r.db.ExecContext(ctx, query, albumID, photoID); err != nil {
			return fmt.Errorf("add: failed to add photo %s: %w", photoID, err)
		}
	}

	return nil
}

// RemovePhotos deletes membership rows for the given photos.
func (r *Repository) RemovePhotos(ctx context.Context, albumID uuid.UUID, photoIDs []uuid.UUID) error {
	query := `DELETE FROM album_photos WHERE album_id = $1 AND photo_id = $2`

	for _, photoID := range photoIDs {
		if _, err := r.db.ExecContext(ctx, query, albumID, photoID); err != nil {
			return fmt.Errorf("remove: failed to remove photo %s: %w", photoID, err)
		}
	}

	return nil
}

// SetCover updates the album's cover photo reference; nil clears it.
func (r *Repository) SetCover(ctx context.Context, albumID uuid.UUID, coverID *uuid.UUID) error {
	query := `UPDATE albums SET cover_photo_id = $1, updated_at = now() WHERE id = $2`

	res, err := r.db.ExecContext(ctx, query, coverID, albumID)
	if err != nil {
		return fmt.Errorf("cover: failed to set cover: %w", err)
	}

	rows, _ := res.RowsAffected()
	if rows == 0 {
		return apperr.ErrNotFound
	}

	return nil
}

// Delete removes the album record after pulling its reference out of every
// member photo's membership list.
func (r *Repository) Delete(ctx context.Context, id uuid.UUID) error {
	tx, err := r.db.Master.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("delete: failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM album_photos WHERE album_id = $1`, id); err != nil {
		return fmt.Errorf("delete: failed to detach members: %w", err)
	}

	res, err := tx.ExecContext(ctx, `DELETE FROM albums WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete: failed to delete album: %w", err)
	}

	n, _ := res.RowsAffected()
	if n == 0 {
		return apperr.ErrNotFound
	}

	return tx.Commit()
}

// DetachPhoto removes the photo from every album that lists it, re-deriving
// covers that pointed at it (first remaining member, or null).
func (r *Repository) DetachPhoto(ctx context.Context, photoID uuid.UUID) error {
	tx, err := r.db.Master.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("detach: failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	coverQuery := `
		UPDATE albums
		SET cover_photo_id = (
			SELECT ap.photo_id FROM album_photos ap
			WHERE ap.album_id = albums.id AND ap.photo_id <> $1
			ORDER BY ap.added_at
			LIMIT 1
		), updated_at = now()
		WHERE cover_photo_id = $1
    `

	if _, err := tx.ExecContext(ctx, coverQuery, photoID); err != nil {
		return fmt.Errorf("detach: failed to re-derive covers: %w", err)
	}

	if _, err := tx.ExecContext(ctx, `DELETE FROM album_photos WHERE photo_id = $1`, photoID); err != nil {
		return fmt.Errorf("detach: failed to remove memberships: %w", err)
	}

	return tx.Commit()
}
