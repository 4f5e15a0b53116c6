package fileutils

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/pkg/errors"
)

// Normalize resolves a path to its cleaned absolute form. Symlinks are
// resolved when the path exists so that two spellings of the same file
// compare equal.
func Normalize(path string) (string, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return "", errors.WithStack(err)
	}

	real, err := filepath.EvalSymlinks(abs)
	if err != nil {
		// The path may not exist yet; the cleaned absolute path is still
		// usable as a catalog key.
		return filepath.Clean(abs), nil
	}

	return real, nil
}

// IsContained reports whether path lies under root. Both arguments must
// already be normalized. The comparison is done per path element, so
// "/data/ph" does not contain "/data/photos2".
func IsContained(root, path string) bool {
	if root == "" {
		return false
	}
	root = filepath.Clean(root)
	path = filepath.Clean(path)
	if root == path {
		return true
	}
	if root == string(filepath.Separator) {
		return strings.HasPrefix(path, root)
	}
	return strings.HasPrefix(path, root+string(filepath.Separator))
}

// Readable checks that a file exists and can be opened for reading. A stat
// alone isn't enough; permission problems surface on open.
func Readable(path string) bool {
	f, err := os.Open(path)
	if err != nil {
		return false
	}
	f.Close()
	return true
}
