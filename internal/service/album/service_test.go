package album

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/aliskhannn/photoshare/internal/apperr"
	"github.com/aliskhannn/photoshare/internal/model"
)

type fakeAlbumRepo struct {
	albums  map[uuid.UUID]model.Album
	members map[uuid.UUID][]uuid.UUID
}

func newFakeAlbumRepo() *fakeAlbumRepo {
	return &fakeAlbumRepo{
		albums:  make(map[uuid.UUID]model.Album),
		members: make(map[uuid.UUID][]uuid.UUID),
	}
}

func (r *fakeAlbumRepo) Create(ctx context.Context, a model.Album) (uuid.UUID, error) {
	id := uuid.New()
	a.ID = id
	a.CreatedAt = time.Now().UTC()
	r.albums[id] = a
	return id, nil
}

func (r *fakeAlbumRepo) GetByID(ctx context.Context, id uuid.UUID) (model.Album, error) {
	a, ok := r.albums[id]
	if !ok {
		return model.Album{}, apperr.ErrNotFound
	}
	a.PhotoIDs = append([]uuid.UUID{}, r.members[id]...)
	return a, nil
}

func (r *fakeAlbumRepo) ListByOwner(ctx context.Context, ownerID uuid.UUID) ([]model.Album, error) {
	out := []model.Album{}
	for id, a := range r.albums {
		if a.OwnerID == ownerID {
			a.PhotoIDs = append([]uuid.UUID{}, r.members[id]...)
			out = append(out, a)
		}
	}
	return out, nil
}

func (r *fakeAlbumRepo) Delete(ctx context.Context, id uuid.UUID) error {
	if _, ok := r.albums[id]; !ok {
		return apperr.ErrNotFound
	}
	delete(r.albums, id)
	delete(r.members, id)
	return nil
}

func (r *fakeAlbumRepo) AddPhotos(ctx context.Context, albumID uuid.UUID, photoIDs []uuid.UUID) error {
	existing := make(map[uuid.UUID]struct{})
	for _, id := range r.members[albumID] {
		existing[id] = struct{}{}
	}
	for _, id := range photoIDs {
		if _, ok := existing[id]; ok {
			continue
		}
		r.members[albumID] = append(r.members[albumID], id)
		existing[id] = struct{}{}
	}
	return nil
}

func (r *fakeAlbumRepo) RemovePhotos(ctx context.Context, albumID uuid.UUID, photoIDs []uuid.UUID) error {
	removed := make(map[uuid.UUID]struct{})
	for _, id := range photoIDs {
		removed[id] = struct{}{}
	}
	kept := []uuid.UUID{}
	for _, id := range r.members[albumID] {
		if _, ok := removed[id]; !ok {
			kept = append(kept, id)
		}
	}
	r.members[albumID] = kept
	return nil
}

func (r *fakeAlbumRepo) SetCover(ctx context.Context, albumID uuid.UUID, coverID *uuid.UUID) error {
	a, ok := r.albums[albumID]
	if !ok {
		return apperr.ErrNotFound
	}
	a.CoverPhotoID = coverID
	r.albums[albumID] = a
	return nil
}

func (r *fakeAlbumRepo) Members(ctx context.Context, albumID uuid.UUID) ([]uuid.UUID, error) {
	return append([]uuid.UUID{}, r.members[albumID]...), nil
}

// fakePhotoRepo owns a fixed set of photo IDs per owner.
type fakePhotoRepo struct {
	owned map[uuid.UUID]map[uuid.UUID]struct{}
}

func newFakePhotoRepo() *fakePhotoRepo {
	return &fakePhotoRepo{owned: make(map[uuid.UUID]map[uuid.UUID]struct{})}
}

func (r *fakePhotoRepo) addOwned(ownerID uuid.UUID, ids ...uuid.UUID) {
	if r.owned[ownerID] == nil {
		r.owned[ownerID] = make(map[uuid.UUID]struct{})
	}
	for _, id := range ids {
		r.owned[ownerID][id] = struct{}{}
	}
}

func (r *fakePhotoRepo) CountOwned(ctx context.Context, ownerID uuid.UUID, ids []uuid.UUID) (int, error) {
	n := 0
	for _, id := range ids {
		if _, ok := r.owned[ownerID][id]; ok {
			n++
		}
	}
	return n, nil
}

type fakeActivity struct {
	logged []string
}

func (a *fakeActivity) Log(userID uuid.UUID, activity string, metadata map[string]string) {
	a.logged = append(a.logged, activity)
}

type fixture struct {
	svc    *Service
	albums *fakeAlbumRepo
	photos *fakePhotoRepo
	owner  uuid.UUID
}

func newFixture() *fixture {
	f := &fixture{
		albums: newFakeAlbumRepo(),
		photos: newFakePhotoRepo(),
		owner:  uuid.New(),
	}
	f.svc = NewService(f.albums, f.photos, &fakeActivity{})
	return f
}

func (f *fixture) ownedPhoto(t *testing.T) uuid.UUID {
	t.Helper()
	id := uuid.New()
	f.photos.addOwned(f.owner, id)
	return id
}

func TestCreate_WithInitialPhotos(t *testing.T) {
	f := newFixture()
	p1 := f.ownedPhoto(t)
	p2 := f.ownedPhoto(t)

	a, err := f.svc.Create(context.Background(), f.owner, "Trip", "", []uuid.UUID{p1, p2})
	require.NoError(t, err)

	require.Equal(t, []uuid.UUID{p1, p2}, a.PhotoIDs)
	require.NotNil(t, a.CoverPhotoID)
	require.Equal(t, p1, *a.CoverPhotoID)
}

func TestCreate_RejectsUnownedPhotos(t *testing.T) {
	f := newFixture()
	p1 := f.ownedPhoto(t)
	stranger := uuid.New() // not owned by f.owner

	_, err := f.svc.Create(context.Background(), f.owner, "Trip", "", []uuid.UUID{p1, stranger})
	require.ErrorIs(t, err, apperr.ErrForbidden)
	require.Empty(t, f.albums.albums)
}

func TestCreate_RequiresTitle(t *testing.T) {
	f := newFixture()

	_, err := f.svc.Create(context.Background(), f.owner, "  ", "", nil)
	require.ErrorIs(t, err, apperr.ErrValidation)
}

func TestAddPhotos_SetsCoverAndIsIdempotent(t *testing.T) {
	f := newFixture()
	p := f.ownedPhoto(t)

	a, err := f.svc.Create(context.Background(), f.owner, "Trip", "", nil)
	require.NoError(t, err)
	require.Nil(t, a.CoverPhotoID)

	a, err = f.svc.AddPhotos(context.Background(), a.ID, f.owner, []uuid.UUID{p})
	require.NoError(t, err)
	require.Equal(t, []uuid.UUID{p}, a.PhotoIDs)
	require.Equal(t, p, *a.CoverPhotoID)

	// Adding the same photo again changes nothing.
	a, err = f.svc.AddPhotos(context.Background(), a.ID, f.owner, []uuid.UUID{p, p})
	require.NoError(t, err)
	require.Equal(t, []uuid.UUID{p}, a.PhotoIDs)
}

func TestAddPhotos_PartialOwnershipFailsWholeCall(t *testing.T) {
	f := newFixture()
	p := f.ownedPhoto(t)
	stranger := uuid.New()

	a, err := f.svc.Create(context.Background(), f.owner, "Trip", "", nil)
	require.NoError(t, err)

	_, err = f.svc.AddPhotos(context.Background(), a.ID, f.owner, []uuid.UUID{p, stranger})
	require.ErrorIs(t, err, apperr.ErrForbidden)

	// No partial mutation.
	current, err := f.svc.Get(context.Background(), a.ID)
	require.NoError(t, err)
	require.Empty(t, current.PhotoIDs)
}

func TestAddPhotos_OwnerOnly(t *testing.T) {
	f := newFixture()
	p := f.ownedPhoto(t)

	a, err := f.svc.Create(context.Background(), f.owner, "Trip", "", nil)
	require.NoError(t, err)

	_, err = f.svc.AddPhotos(context.Background(), a.ID, uuid.New(), []uuid.UUID{p})
	require.ErrorIs(t, err, apperr.ErrForbidden)
}

func TestRemovePhotos_ReDerivesCover(t *testing.T) {
	f := newFixture()
	p1 := f.ownedPhoto(t)
	p2 := f.ownedPhoto(t)

	a, err := f.svc.Create(context.Background(), f.owner, "Trip", "", []uuid.UUID{p1, p2})
	require.NoError(t, err)
	require.Equal(t, p1, *a.CoverPhotoID)

	// Removing the cover falls back to the first remaining member.
	a, err = f.svc.RemovePhotos(context.Background(), a.ID, f.owner, []uuid.UUID{p1})
	require.NoError(t, err)
	require.Equal(t, []uuid.UUID{p2}, a.PhotoIDs)
	require.Equal(t, p2, *a.CoverPhotoID)

	// Removing the last member clears the cover.
	a, err = f.svc.RemovePhotos(context.Background(), a.ID, f.owner, []uuid.UUID{p2})
	require.NoError(t, err)
	require.Empty(t, a.PhotoIDs)
	require.Nil(t, a.CoverPhotoID)
}

func TestRemovePhotos_CoverInBatch(t *testing.T) {
	f := newFixture()
	p1 := f.ownedPhoto(t)
	p2 := f.ownedPhoto(t)
	p3 := f.ownedPhoto(t)

	a, err := f.svc.Create(context.Background(), f.owner, "Trip", "", []uuid.UUID{p1, p2, p3})
	require.NoError(t, err)
	require.Equal(t, p1, *a.CoverPhotoID)

	// The cover sits in the middle of the removed batch.
	a, err = f.svc.RemovePhotos(context.Background(), a.ID, f.owner, []uuid.UUID{p2, p1})
	require.NoError(t, err)
	require.Equal(t, []uuid.UUID{p3}, a.PhotoIDs)
	require.Equal(t, p3, *a.CoverPhotoID)
}

func TestRemovePhotos_KeepsCoverWhenNotRemoved(t *testing.T) {
	f := newFixture()
	p1 := f.ownedPhoto(t)
	p2 := f.ownedPhoto(t)

	a, err := f.svc.Create(context.Background(), f.owner, "Trip", "", []uuid.UUID{p1, p2})
	require.NoError(t, err)

	a, err = f.svc.RemovePhotos(context.Background(), a.ID, f.owner, []uuid.UUID{p2})
	require.NoError(t, err)
	require.Equal(t, p1, *a.CoverPhotoID)
}

func TestDelete_OwnerOnlyAndDetachesMembers(t *testing.T) {
	f := newFixture()
	p := f.ownedPhoto(t)

	a, err := f.svc.Create(context.Background(), f.owner, "Trip", "", []uuid.UUID{p})
	require.NoError(t, err)

	err = f.svc.Delete(context.Background(), a.ID, uuid.New())
	require.ErrorIs(t, err, apperr.ErrForbidden)

	err = f.svc.Delete(context.Background(), a.ID, f.owner)
	require.NoError(t, err)

	_, err = f.svc.Get(context.Background(), a.ID)
	require.ErrorIs(t, err, apperr.ErrNotFound)
	require.Empty(t, f.albums.members[a.ID])
}
