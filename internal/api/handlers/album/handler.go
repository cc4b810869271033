package album

import (
	"context"
	"fmt"
	"net/http"

	"github.com/google/uuid"
	"github.com/wb-go/wbf/ginext"

	"github.com/aliskhannn/photoshare/internal/api/middleware"
	"github.com/aliskhannn/photoshare/internal/api/respond"
	"github.com/aliskhannn/photoshare/internal/model"
)

// service defines the interface for album-related operations.
type service interface {
	Create(ctx context.Context, ownerID uuid.UUID, title, description string, photoIDs []uuid.UUID) (model.Album, error)
	Get(ctx context.Context, id uuid.UUID) (model.Album, error)
	ListOwn(ctx context.Context, ownerID uuid.UUID) ([]model.Album, error)
	AddPhotos(ctx context.Context, albumID, requesterID uuid.UUID, photoIDs []uuid.UUID) (model.Album, error)
	RemovePhotos(ctx context.Context, albumID, requesterID uuid.UUID, photoIDs []uuid.UUID) (model.Album, error)
	Delete(ctx context.Context, albumID, requesterID uuid.UUID) error
}

// Handler provides HTTP handlers for album-related endpoints.
type Handler struct {
	service service
}

// NewHandler creates a new Handler with the given service.
func NewHandler(s service) *Handler {
	return &Handler{service: s}
}

// CreateRequest is the JSON body for creating an album.
type CreateRequest struct {
	Title       string      `json:"title"`
	Description string      `json:"description"`
	PhotoIDs    []uuid.UUID `json:"photo_ids"`
}

// MembershipRequest is the JSON body for adding or removing photos.
type MembershipRequest struct {
	PhotoIDs []uuid.UUID `json:"photo_ids"`
}

// Create makes a new album, optionally with an initial photo set.
func (h *Handler) Create(c *ginext.Context) {
	ownerID, ok := requireUser(c)
	if !ok {
		return
	}

	var req CreateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respond.Fail(c, http.StatusBadRequest, fmt.Errorf("invalid request body: %v", err))
		return
	}

	a, err := h.service.Create(c.Request.Context(), ownerID, req.Title, req.Description, req.PhotoIDs)
	if err != nil {
		respond.Err(c, err)
		return
	}

	respond.Created(c, a)
}

// List returns the authenticated user's albums.
func (h *Handler) List(c *ginext.Context) {
	ownerID, ok := requireUser(c)
	if !ok {
		return
	}

	albums, err := h.service.ListOwn(c.Request.Context(), ownerID)
	if err != nil {
		respond.Err(c, err)
		return
	}

	respond.OK(c, albums)
}

// Get returns one album with its ordered members.
func (h *Handler) Get(c *ginext.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	a, err := h.service.Get(c.Request.Context(), id)
	if err != nil {
		respond.Err(c, err)
		return
	}

	respond.OK(c, a)
}

// AddPhotos adds photos to the album. Idempotent for photos already present.
func (h *Handler) AddPhotos(c *ginext.Context) {
	requesterID, ok := requireUser(c)
	if !ok {
		return
	}

	id, ok := parseID(c)
	if !ok {
		return
	}

	var req MembershipRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respond.Fail(c, http.StatusBadRequest, fmt.Errorf("invalid request body: %v", err))
		return
	}

	a, err := h.service.AddPhotos(c.Request.Context(), id, requesterID, req.PhotoIDs)
	if err != nil {
		respond.Err(c, err)
		return
	}

	respond.OK(c, a)
}

// RemovePhotos removes photos from the album, re-deriving the cover if needed.
func (h *Handler) RemovePhotos(c *ginext.Context) {
	requesterID, ok := requireUser(c)
	if !ok {
		return
	}

	id, ok := parseID(c)
	if !ok {
		return
	}

	var req MembershipRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respond.Fail(c, http.StatusBadRequest, fmt.Errorf("invalid request body: %v", err))
		return
	}

	a, err := h.service.RemovePhotos(c.Request.Context(), id, requesterID, req.PhotoIDs)
	if err != nil {
		respond.Err(c, err)
		return
	}

	respond.OK(c, a)
}

// Delete removes an album by ID.
func (h *Handler) Delete(c *ginext.Context) {
	requesterID, ok := requireUser(c)
	if !ok {
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

func requireUser(c *ginext.Context) (uuid.UUID, bool) {
	id, ok := middleware.UserID(c)
	if !ok {
		respond.Fail(c, http.StatusUnauthorized, fmt.Errorf("missing user identity"))
	}

	return id, ok
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
