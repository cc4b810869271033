package photo

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strconv"

	"github.com/google/uuid"
	"github.com/wb-go/wbf/ginext"
	"github.com/wb-go/wbf/zlog"

	"github.com/aliskhannn/photoshare/internal/api/middleware"
	"github.com/aliskhannn/photoshare/internal/api/respond"
	"github.com/aliskhannn/photoshare/internal/model"
	photosvc "github.com/aliskhannn/photoshare/internal/service/photo"
)

// service defines the interface for photo-related operations.
type service interface {
	Ingest(ctx context.Context, ownerID uuid.UUID, in photosvc.IngestInput) (model.Photo, error)
	Reprocess(ctx context.Context, photoID, requesterID uuid.UUID) (model.Photo, error)
	Delete(ctx context.Context, photoID, requesterID uuid.UUID) error
	Get(ctx context.Context, id uuid.UUID) (model.Photo, error)
	Open(ctx context.Context, id uuid.UUID) (model.Photo, io.ReadCloser, error)
	FileURL(ctx context.Context, id uuid.UUID) (string, error)
	ListOwn(ctx context.Context, ownerID uuid.UUID) ([]model.Photo, error)
	List(ctx context.Context, limit, offset int) ([]model.Photo, error)
}

// Handler provides HTTP handlers for photo-related endpoints.
// It depends on a service interface to perform the business logic.
type Handler struct {
	service service
}

// NewHandler creates a new Handler with the given service.
func NewHandler(s service) *Handler {
	return &Handler{service: s}
}

const (
	defaultPageSize = 20
	maxPageSize     = 100
)

// Upload handles the multipart photo upload. The whole pipeline runs within
// the request: validate, store the original, derive the thumbnail, persist
// the record. A failed derivation still yields 201 with a null thumbnail key.
func (h *Handler) Upload(c *ginext.Context) {
	ownerID, ok := middleware.UserID(c)
	if !ok {
		respond.Fail(c, http.StatusUnauthorized, fmt.Errorf("missing user identity"))
		return
	}

	if err := c.Request.ParseMultipartForm(photosvc.MaxUploadSize); err != nil {
		respond.Fail(c, http.StatusBadRequest, fmt.Errorf("parse multipart form failed: %v", err))
		return
	}

	file, header, err := c.Request.FormFile("image")
	if err != nil {
		zlog.Logger.Err(err).Msg("failed to retrieve the uploaded file")
		respond.Fail(c, http.StatusBadRequest, fmt.Errorf("failed to retrieve the file"))
		return
	}
	defer file.Close()

	// Read one byte past the cap so the service can reject oversized files.
	data, err := io.ReadAll(io.LimitReader(file, photosvc.MaxUploadSize+1))
	if err != nil {
		zlog.Logger.Err(err).Msg("failed to read the uploaded file")
		respond.Fail(c, http.StatusBadRequest, fmt.Errorf("failed to read the file"))
		return
	}

	contentType := header.Header.Get("Content-Type")
	if contentType == "" {
		contentType = http.DetectContentType(data)
	}

	p, err := h.service.Ingest(c.Request.Context(), ownerID, photosvc.IngestInput{
		Title:       c.PostForm("title"),
		Description: c.PostForm("description"),
		Filename:    header.Filename,
		ContentType: contentType,
		Data:        data,
	})
	if err != nil {
		respond.Err(c, err)
		return
	}

	respond.Created(c, p)
}

// List returns a page of all photos, newest first.
func (h *Handler) List(c *ginext.Context) {
	limit, err := strconv.Atoi(c.DefaultQuery("limit", strconv.Itoa(defaultPageSize)))
	if err != nil || limit < 1 || limit > maxPageSize {
		limit = defaultPageSize
	}

	page, err := strconv.Atoi(c.DefaultQuery("page", "1"))
	if err != nil || page < 1 {
		page = 1
	}

	photos, err := h.service.List(c.Request.Context(), limit, (page-1)*limit)
	if err != nil {
		respond.Err(c, err)
		return
	}

	respond.OK(c, photos)
}

// ListMine returns the authenticated user's photos, newest first.
func (h *Handler) ListMine(c *ginext.Context) {
	ownerID, ok := middleware.UserID(c)
	if !ok {
		respond.Fail(c, http.StatusUnauthorized, fmt.Errorf("missing user identity"))
		return
	}

	photos, err := h.service.ListOwn(c.Request.Context(), ownerID)
	if err != nil {
		respond.Err(c, err)
		return
	}

	respond.OK(c, photos)
}

// Get returns metadata about the photo without serving the file itself.
func (h *Handler) Get(c *ginext.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	p, err := h.service.Get(c.Request.Context(), id)
	if err != nil {
		respond.Err(c, err)
		return
	}

	respond.OK(c, p)
}

// File serves the original image bytes for a given photo ID.
func (h *Handler) File(c *ginext.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	p, reader, err := h.service.Open(c.Request.Context(), id)
	if err != nil {
		respond.Err(c, err)
		return
	}
	defer reader.Close()

	respond.Image(c, http.StatusOK, p.MimeType, reader)
}

// FileURL returns a temporary presigned download link for the original.
func (h *Handler) FileURL(c *ginext.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	u, err := h.service.FileURL(c.Request.Context(), id)
	if err != nil {
		respond.Err(c, err)
		return
	}

	respond.OK(c, map[string]string{"url": u})
}

// Reprocess re-runs thumbnail derivation against the stored original.
// Unlike upload, a derivation failure here is returned to the caller.
func (h *Handler) Reprocess(c *ginext.Context) {
	requesterID, ok := middleware.UserID(c)
	if !ok {
		respond.Fail(c, http.StatusUnauthorized, fmt.Errorf("missing user identity"))
		return
	}

	id, ok := parseID(c)
	if !ok {
		return
	}

	p, err := h.service.Reprocess(c.Request.Context(), id, requesterID)
	if err != nil {
		respond.Err(c, err)
		return
	}

	respond.OK(c, p)
}

// Delete removes a photo by ID.
func (h *Handler) Delete(c *ginext.Context) {
	requesterID, ok := middleware.UserID(c)
	if !ok {
		respond.Fail(c, http.StatusUnauthorized, fmt.Errorf("missing user identity"))
		return
	}

	id, ok := parseID(c)
	if !ok {
		return
	}

	if err := h.service.Delete(c.Request.Context(), id, requesterID); err != nil {
		respond.Err(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

func parseID(c *ginext.Context) (uuid.UUID, bool) {
	idStr := c.Param("id")
	if idStr == "" {
		respond.Fail(c, http.StatusBadRequest, fmt.Errorf("missing id"))
		return uuid.Nil, false
	}

	id, err := uuid.Parse(idStr)
	if err != nil {
		respond.Fail(c, http.StatusBadRequest, fmt.Errorf("invalid id: %v", err))
		return uuid.Nil, false
	}

	return id, true
}
