package deriver

import (
	"bytes"
	"context"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/aliskhannn/photoshare/internal/apperr"
)

// testImage encodes a solid-color image of the given dimensions.
func testImage(t *testing.T, width, height int, encode func(*bytes.Buffer, image.Image) error) []byte {
	t.Helper()

	img := image.NewRGBA(image.Rect(0, 0, width, height))
	for x := 0; x < width; x++ {
		for y := 0; y < height; y++ {
			img.Set(x, y, color.RGBA{R: 200, G: 120, B: 40, A: 255})
		}
	}

	buf := bytes.NewBuffer(nil)
	require.NoError(t, encode(buf, img))

	return buf.Bytes()
}

func encodeJPEG(buf *bytes.Buffer, img image.Image) error {
	return jpeg.Encode(buf, img, nil)
}

func encodePNG(buf *bytes.Buffer, img image.Image) error {
	return png.Encode(buf, img)
}

func TestLocalDerive_CoverCrop(t *testing.T) {
	d := NewLocal()

	// Wide original, target square: cover fit must crop, not pad.
	src := testImage(t, 800, 400, encodeJPEG)

	thumb, meta, err := d.Derive(context.Background(), src, DefaultOptions())
	require.NoError(t, err)
	require.NotEmpty(t, thumb)

	decoded, format, err := image.Decode(bytes.NewReader(thumb))
	require.NoError(t, err)
	require.Equal(t, "jpeg", format)
	require.Equal(t, 300, decoded.Bounds().Dx())
	require.Equal(t, 300, decoded.Bounds().Dy())

	require.Equal(t, 300, meta.Width)
	require.Equal(t, 300, meta.Height)
	require.Equal(t, "jpeg", meta.Format)
	require.Equal(t, int64(len(thumb)), meta.Size)
}

func TestLocalDerive_PNGOutput(t *testing.T) {
	d := NewLocal()

	src := testImage(t, 400, 600, encodePNG)

	opts := DefaultOptions()
	opts.Format = "png"

	thumb, meta, err := d.Derive(context.Background(), src, opts)
	require.NoError(t, err)

	_, format, err := image.Decode(bytes.NewReader(thumb))
	require.NoError(t, err)
	require.Equal(t, "png", format)
	require.Equal(t, "png", meta.Format)
}

func TestLocalDerive_UnknownFormatFallsBackToJPEG(t *testing.T) {
	d := NewLocal()

	src := testImage(t, 320, 320, encodeJPEG)

	opts := DefaultOptions()
	opts.Format = "webp"

	thumb, meta, err := d.Derive(context.Background(), src, opts)
	require.NoError(t, err)

	_, format, err := image.Decode(bytes.NewReader(thumb))
	require.NoError(t, err)
	require.Equal(t, "jpeg", format)
	require.Equal(t, "jpeg", meta.Format)
}

func TestLocalDerive_Deterministic(t *testing.T) {
	d := NewLocal()

	src := testImage(t, 500, 500, encodeJPEG)

	first, _, err := d.Derive(context.Background(), src, DefaultOptions())
	require.NoError(t, err)

	second, _, err := d.Derive(context.Background(), src, DefaultOptions())
	require.NoError(t, err)

	require.Equal(t, first, second)
}

func TestLocalDerive_CorruptBytes(t *testing.T) {
	d := NewLocal()

	_, _, err := d.Derive(context.Background(), []byte("definitely not an image"), DefaultOptions())
	require.ErrorIs(t, err, apperr.ErrDerivation)
}
