package deriver

import (
	"bytes"
	"context"
	"fmt"
	"strings"

	"github.com/disintegration/imaging"

	"github.com/aliskhannn/photoshare/internal/apperr"
)

// Options controls the size and encoding of a derived thumbnail.
type Options struct {
	Width   int
	Height  int
	Quality int    // JPEG quality, 1-100
	Format  string // "jpeg" or "png"; anything else falls back to JPEG
}

// DefaultOptions returns the standard thumbnail parameters.
func DefaultOptions() Options {
	return Options{Width: 300, Height: 300, Quality: 80, Format: "jpeg"}
}

// Meta describes the produced thumbnail.
type Meta struct {
	Width  int    `json:"width"`
	Height int    `json:"height"`
	Format string `json:"format"`
	Size   int64  `json:"size"`
}

// Local derives thumbnails in-process.
type Local struct{}

// NewLocal creates an in-process deriver.
func NewLocal() *Local {
	return &Local{}
}

// Derive decodes the original image, crops it to fill the target dimensions
// (centered cover fit), and re-encodes it. A decode failure is terminal and
// reported as apperr.ErrDerivation.
func (d *Local) Derive(ctx context.Context, imageBytes []byte, opts Options) ([]byte, Meta, error) {
	img, err := imaging.Decode(bytes.NewReader(imageBytes))
	if err != nil {
		return nil, Meta{}, fmt.Errorf("%w: decode image: %v", apperr.ErrDerivation, err)
	}

	thumb := imaging.Fill(img, opts.Width, opts.Height, imaging.Center, imaging.Lanczos)

	format, encOpts := encoding(opts)

	buf := bytes.NewBuffer(nil)
	if err := imaging.Encode(buf, thumb, format, encOpts...); err != nil {
		return nil, Meta{}, fmt.Errorf("%w: encode thumbnail: %v", apperr.ErrDerivation, err)
	}

	meta := Meta{
		Width:  thumb.Bounds().Dx(),
		Height: thumb.Bounds().Dy(),
		Format: formatName(format),
		Size:   int64(buf.Len()),
	}

	return buf.Bytes(), meta, nil
}

// encoding maps the requested output format to an imaging format.
// Unrecognized formats fall back to JPEG.
func encoding(opts Options) (imaging.Format, []imaging.EncodeOption) {
	switch strings.ToLower(opts.Format) {
	case "png":
		return imaging.PNG, nil
	case "jpeg", "jpg":
		return imaging.JPEG, []imaging.EncodeOption{imaging.JPEGQuality(opts.Quality)}
	default:
		return imaging.JPEG, []imaging.EncodeOption{imaging.JPEGQuality(opts.Quality)}
	}
}

func formatName(f imaging.Format) string {
	if f == imaging.PNG {
		return "png"
	}
	return "jpeg"
}
