package blob

import (
	"fmt"
	"path"
	"strings"
	"time"

	"github.com/google/uuid"
)

const (
	originalsPrefix = "photos"
	thumbnailsDir   = "thumbnails"
)

// OriginalKey generates a collision-resistant key for an uploaded original,
// keeping the extension of the client filename:
// photos/{unixnano}-{shortid}{ext}.
func OriginalKey(filename string) string {
	ext := strings.ToLower(path.Ext(filename))

	return fmt.Sprintf("%s/%d-%s%s", originalsPrefix, time.Now().UnixNano(), shortID(), ext)
}

// ThumbnailKey generates a key for a thumbnail derived from the original
// stored under originalKey. Each call yields a fresh key so reprocessing
// never reuses the previous one:
// {dir}/thumbnails/thumb_{stem}-{shortid}.{format ext}.
func ThumbnailKey(originalKey, format string) string {
	dir := path.Dir(originalKey)
	base := path.Base(originalKey)
	stem := strings.TrimSuffix(base, path.Ext(base))

	return fmt.Sprintf("%s/%s/thumb_%s-%s%s", dir, thumbnailsDir, stem, shortID(), formatExt(format))
}

func shortID() string {
	return uuid.NewString()[:8]
}

func formatExt(format string) string {
	switch strings.ToLower(format) {
	case "png":
		return ".png"
	default:
		return ".jpg"
	}
}
