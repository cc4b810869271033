package blob

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestOriginalKey(t *testing.T) {
	key := OriginalKey("Sunset Beach.JPG")

	require.True(t, strings.HasPrefix(key, "photos/"))
	require.True(t, strings.HasSuffix(key, ".jpg"))
	require.NotEqual(t, key, OriginalKey("Sunset Beach.JPG"))
}

func TestOriginalKey_NoExtension(t *testing.T) {
	key := OriginalKey("raw-upload")

	require.True(t, strings.HasPrefix(key, "photos/"))
	require.NotContains(t, key, ".")
}

func TestThumbnailKey(t *testing.T) {
	orig := OriginalKey("cat.png")

	key := ThumbnailKey(orig, "jpeg")
	require.True(t, strings.HasPrefix(key, "photos/thumbnails/thumb_"))
	require.True(t, strings.HasSuffix(key, ".jpg"))

	// Reprocessing must never reuse the previous thumbnail key.
	require.NotEqual(t, key, ThumbnailKey(orig, "jpeg"))
}

func TestThumbnailKey_PNGFormat(t *testing.T) {
	key := ThumbnailKey("photos/123-abcd1234.jpg", "png")

	require.True(t, strings.HasSuffix(key, ".png"))
}
