package respond

import (
	"errors"
	"io"
	"net/http"

	"github.com/wb-go/wbf/ginext"
	"github.com/wb-go/wbf/zlog"

	"github.com/aliskhannn/photoshare/internal/apperr"
)

// Success represents a standard structure for successful responses.
type Success struct {
	Result interface{} `json:"result"`
}

// Error represents a standard structure for error responses.
type Error struct {
	Message string `json:"message"`
}

// Image streams image bytes directly from an io.Reader as the HTTP response.
func Image(c *ginext.Context, status int, contentType string, reader io.Reader) {
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	c.DataFromReader(status, -1, contentType, reader, nil)
}

// JSON sends a JSON response with the specified HTTP status code and data.
func JSON(c *ginext.Context, status int, data interface{}) {
	c.JSON(status, data)
}

// OK sends a 200 OK JSON response, wrapping the given result in a Success struct.
func OK(c *ginext.Context, result interface{}) {
	JSON(c, http.StatusOK, Success{Result: result})
}

// Created sends a 201 Created JSON response, wrapping the given result in a Success struct.
func Created(c *ginext.Context, result interface{}) {
	JSON(c, http.StatusCreated, Success{Result: result})
}

// Fail sends an error JSON response with the specified HTTP status code.
func Fail(c *ginext.Context, status int, err error) {
	JSON(c, status, Error{Message: err.Error()})
}

// Err maps a service error to its HTTP status. Unrecognized errors are
// logged in full and returned to the caller as a generic server error.
func Err(c *ginext.Context, err error) {
	switch {
	case errors.Is(err, apperr.ErrValidation):
		Fail(c, http.StatusBadRequest, err)
	case errors.Is(err, apperr.ErrForbidden):
		Fail(c, http.StatusForbidden, err)
	case errors.Is(err, apperr.ErrNotFound):
		Fail(c, http.StatusNotFound, err)
	case errors.Is(err, apperr.ErrDerivation):
		Fail(c, http.StatusUnprocessableEntity, err)
	case errors.Is(err, apperr.ErrStorage):
		Fail(c, http.StatusBadGateway, err)
	case errors.Is(err, apperr.ErrDependency):
		Fail(c, http.StatusServiceUnavailable, err)
	default:
		zlog.Logger.Err(err).Msg("unexpected error")
		Fail(c, http.StatusInternalServerError, errors.New("internal server error"))
	}
}
