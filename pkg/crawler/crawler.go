package crawler

import (
	"io/fs"
	"path/filepath"
	"sort"
	"strings"

	"github.com/gobwas/glob"
	"github.com/lumierephotos/lumiere/pkg/fileutils"
	"github.com/lumierephotos/lumiere/pkg/mediafile"
	"github.com/pkg/errors"
	"github.com/robinjoseph08/golib/logger"
)

type Options struct {
	// PathsToCrawl are the library's import roots.
	PathsToCrawl []string
	// ExclusionPatterns are glob patterns; a path matching any of them (as
	// a full path or relative to its root) is skipped, directories
	// included.
	ExclusionPatterns []string
}

// Crawl walks the import roots and returns the normalized, deduplicated
// list of supported media files. A root that doesn't exist is skipped with
// a warning; enumeration of the remaining roots continues.
func Crawl(log logger.Logger, opts Options) ([]string, error) {
	globs := make([]glob.Glob, 0, len(opts.ExclusionPatterns))
	for _, pattern := range opts.ExclusionPatterns {
		g, err := glob.Compile(pattern, '/')
		if err != nil {
			return nil, errors.Wrapf(err, "invalid exclusion pattern %q", pattern)
		}
		globs = append(globs, g)
	}

	seen := map[string]struct{}{}

	for _, root := range opts.PathsToCrawl {
		normalizedRoot, err := fileutils.Normalize(root)
		if err != nil {
			return nil, errors.WithStack(err)
		}

		err = filepath.WalkDir(normalizedRoot, func(path string, entry fs.DirEntry, err error) error {
			if err != nil {
				if path == normalizedRoot {
					log.Warn("import path is not accessible", logger.Data{"path": root, "err": err.Error()})
					return filepath.SkipAll
				}
				log.Warn("skipping unreadable entry", logger.Data{"path": path, "err": err.Error()})
				if entry != nil && entry.IsDir() {
					return filepath.SkipDir
				}
				return nil
			}

			if excluded(globs, normalizedRoot, path) {
				if entry.IsDir() {
					return filepath.SkipDir
				}
				return nil
			}
			if entry.IsDir() {
				return nil
			}
			if !mediafile.IsSupported(path) {
				return nil
			}

			normalized, err := fileutils.Normalize(path)
			if err != nil {
				return errors.WithStack(err)
			}
			seen[normalized] = struct{}{}

			return nil
		})
		if err != nil {
			return nil, errors.WithStack(err)
		}
	}

	paths := make([]string, 0, len(seen))
	for path := range seen {
		paths = append(paths, path)
	}
	sort.Strings(paths)

	return paths, nil
}

func excluded(globs []glob.Glob, root, path string) bool {
	if len(globs) == 0 {
		return false
	}
	rel, err := filepath.Rel(root, path)
	if err != nil {
		rel = path
	}
	rel = filepath.ToSlash(rel)
	full := filepath.ToSlash(path)
	for _, g := range globs {
		if g.Match(full) || g.Match(rel) || g.Match(strings.TrimPrefix(full, "/")) {
			return true
		}
	}
	return false
}
