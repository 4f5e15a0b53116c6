package sidecar

import (
	"path/filepath"
	"strings"

	"github.com/lumierephotos/lumiere/pkg/fileutils"
)

const Suffix = ".xmp"

// Path returns the sidecar path for a media file: the full filename with
// the suffix appended ("a.jpg" -> "a.jpg.xmp").
func Path(mediaPath string) string {
	return mediaPath + Suffix
}

// AltPath returns the variant with the media extension replaced
// ("a.jpg" -> "a.xmp"). Some editors write sidecars this way.
func AltPath(mediaPath string) string {
	ext := filepath.Ext(mediaPath)
	if ext == "" {
		return mediaPath + Suffix
	}
	return strings.TrimSuffix(mediaPath, ext) + Suffix
}

// Discover looks for a readable sidecar next to the media file and returns
// its path, or nil when none exists. The appended form wins over the
// extension-swapped form.
func Discover(mediaPath string) *string {
	p := Path(mediaPath)
	if fileutils.Readable(p) {
		return &p
	}
	alt := AltPath(mediaPath)
	if alt != p && fileutils.Readable(alt) {
		return &alt
	}
	return nil
}
