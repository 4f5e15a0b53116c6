package mediafile

import (
	"path/filepath"
	"strings"

	"github.com/gabriel-vasile/mimetype"
	"github.com/lumierephotos/lumiere/pkg/errcodes"
	"github.com/lumierephotos/lumiere/pkg/models"
)

// Extension tables mirror what the media pipeline downstream can actually
// decode. Lookup is by lowercased extension only; content sniffing is a
// separate advisory check.
var imageExtensions = map[string]string{
	".avif": "image/avif",
	".bmp":  "image/bmp",
	".gif":  "image/gif",
	".heic": "image/heic",
	".heif": "image/heif",
	".jpeg": "image/jpeg",
	".jpg":  "image/jpeg",
	".jxl":  "image/jxl",
	".png":  "image/png",
	".tif":  "image/tiff",
	".tiff": "image/tiff",
	".webp": "image/webp",
	".dng":  "image/x-adobe-dng",
	".nef":  "image/x-nikon-nef",
	".cr2":  "image/x-canon-cr2",
	".arw":  "image/x-sony-arw",
	".raf":  "image/x-fuji-raf",
	".orf":  "image/x-olympus-orf",
	".rw2":  "image/x-panasonic-rw2",
}

var videoExtensions = map[string]string{
	".3gp":  "video/3gpp",
	".avi":  "video/x-msvideo",
	".flv":  "video/x-flv",
	".m2ts": "video/mp2t",
	".m4v":  "video/x-m4v",
	".mkv":  "video/x-matroska",
	".mov":  "video/quicktime",
	".mp4":  "video/mp4",
	".mpg":  "video/mpeg",
	".mts":  "video/mp2t",
	".webm": "video/webm",
	".wmv":  "video/x-ms-wmv",
}

// TypeForPath classifies a file as an image or video asset from its
// extension. Unsupported extensions return a validation error that job
// handlers treat as non-retryable.
func TypeForPath(path string) (string, error) {
	ext := strings.ToLower(filepath.Ext(path))
	if _, ok := imageExtensions[ext]; ok {
		return models.AssetTypeImage, nil
	}
	if _, ok := videoExtensions[ext]; ok {
		return models.AssetTypeVideo, nil
	}
	return "", errcodes.ValidationError("Unsupported file type " + ext + ".")
}

// IsSupported reports whether the extension maps to a known asset type.
func IsSupported(path string) bool {
	_, err := TypeForPath(path)
	return err == nil
}

// MimeForPath returns the expected mime type for the extension, or "" when
// the extension is unknown.
func MimeForPath(path string) string {
	ext := strings.ToLower(filepath.Ext(path))
	if m, ok := imageExtensions[ext]; ok {
		return m
	}
	return videoExtensions[ext]
}

// ContentMatchesExtension sniffs the file's content and compares it against
// the extension's expected mime type. Files can carry any extension, so a
// mismatch is reported to the caller for logging rather than treated as an
// error.
func ContentMatchesExtension(path string) (bool, string) {
	expected := MimeForPath(path)
	if expected == "" {
		return false, ""
	}
	mtype, err := mimetype.DetectFile(path)
	if err != nil {
		// Unreadable or unsniffable content; leave the decision to the
		// extension table.
		return true, ""
	}
	return mtype.Is(expected), mtype.String()
}
