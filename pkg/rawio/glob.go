package rawio

import (
	"errors"
	"path/filepath"
)

// ErrRelativePattern is returned when Glob is given a pattern that is not
// rooted at an absolute path.
var ErrRelativePattern = errors.New("rawio: glob pattern must be absolute")

// Glob expands pattern to matching absolute paths. Only absolute roots are
// accepted - absolute-only roots, no symlink traversal by default - and
// the match never follows symlinks beyond what the
// underlying filepath.Glob itself resolves for the final path segment;
// callers that need recursive traversal compose multiple Glob calls
// themselves rather than relying on a `**` extension, since no pack
// repository or the stdlib provides one.
func Glob(pattern string) ([]string, error) {
	if !filepath.IsAbs(pattern) {
		return nil, ErrRelativePattern
	}
	return filepath.Glob(pattern)
}
