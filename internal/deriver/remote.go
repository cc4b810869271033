package deriver

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/aliskhannn/photoshare/internal/apperr"
)

// Remote invokes an external processing service that reads the original
// from the shared bucket and writes the thumbnail itself. The call is
// bounded by the client timeout; a timeout is treated the same as any
// other derivation failure.
type Remote struct {
	url    string
	bucket string
	client *http.Client
}

// NewRemote creates a client for the remote processing endpoint.
func NewRemote(url, bucket string, timeout time.Duration) *Remote {
	return &Remote{
		url:    url,
		bucket: bucket,
		client: &http.Client{Timeout: timeout},
	}
}

type invokeRequest struct {
	ImageKey string        `json:"image_key"`
	Bucket   string        `json:"bucket"`
	Options  invokeOptions `json:"options"`
}

type invokeOptions struct {
	GenerateThumbnail bool       `json:"generate_thumbnail"`
	ThumbnailSize     invokeSize `json:"thumbnail_size"`
	Quality           int        `json:"quality"`
	Format            string     `json:"format"`
}

type invokeSize struct {
	Width  int `json:"width"`
	Height int `json:"height"`
}

type invokeResponse struct {
	ThumbnailKey string `json:"thumbnail_key"`
	Metadata     Meta   `json:"metadata"`
	Error        string `json:"error"`
	ErrorType    string `json:"error_type"`
}

// Invoke asks the remote service to derive a thumbnail for the original
// stored under imageKey. Returns the key the service wrote the thumbnail to.
func (r *Remote) Invoke(ctx context.Context, imageKey string, opts Options) (string, Meta, error) {
	reqBody := invokeRequest{
		ImageKey: imageKey,
		Bucket:   r.bucket,
		Options: invokeOptions{
			GenerateThumbnail: true,
			ThumbnailSize:     invokeSize{Width: opts.Width, Height: opts.Height},
			Quality:           opts.Quality,
			Format:            opts.Format,
		},
	}

	data, err := json.Marshal(reqBody)
	if err != nil {
		return "", Meta{}, fmt.Errorf("marshal invoke request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, r.url, bytes.NewReader(data))
	if err != nil {
		return "", Meta{}, fmt.Errorf("create invoke request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := r.client.Do(req)
	if err != nil {
		return "", Meta{}, fmt.Errorf("%w: invoke remote deriver: %v", apperr.ErrDerivation, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", Meta{}, fmt.Errorf("%w: read invoke response: %v", apperr.ErrDerivation, err)
	}

	var out invokeResponse
	if err := json.Unmarshal(raw, &out); err != nil {
		return "", Meta{}, fmt.Errorf("%w: decode invoke response: %v", apperr.ErrDerivation, err)
	}

	if resp.StatusCode != http.StatusOK || out.Error != "" {
		return "", Meta{}, fmt.Errorf("%w: remote deriver returned %d: %s (%s)",
			apperr.ErrDerivation, resp.StatusCode, out.Error, out.ErrorType)
	}

	if out.ThumbnailKey == "" {
		return "", Meta{}, fmt.Errorf("%w: remote deriver returned no thumbnail key", apperr.ErrDerivation)
	}

	return out.ThumbnailKey, out.Metadata, nil
}
