package core

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// ErrProtectedPath is returned when a removal targets a path the guard refuses to touch.
var ErrProtectedPath = errors.New("refusing to delete protected path")

// Guard decides whether a path may be removed. Only directories named like
// the scan target qualify, and never the filesystem root, the home directory
// or anything in the protected list (or an ancestor of it).
type Guard struct {
	target    string
	protected []string
}

// NewGuard builds a Guard for the given target directory name.
func NewGuard(target string, protected []string) *Guard {
	cleaned := make([]string, 0, len(protected)+1)
	for _, p := range protected {
		if p == "" {
			continue
		}
		cleaned = append(cleaned, normalize(p))
	}
	if home, err := os.UserHomeDir(); err == nil && home != "" {
		cleaned = append(cleaned, normalize(home))
	}
	return &Guard{target: target, protected: cleaned}
}

// Check returns an error wrapping ErrProtectedPath when path must not be removed.
func (g *Guard) Check(path string) error {
	if path == "" {
		return fmt.Errorf("%w: empty path", ErrProtectedPath)
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return fmt.Errorf("resolve %s: %w", path, err)
	}
	if abs == filepath.VolumeName(abs)+string(filepath.Separator) {
		return fmt.Errorf("%w: %s is a filesystem root", ErrProtectedPath, abs)
	}
	if g.target != "" && filepath.Base(abs) != g.target {
		return fmt.Errorf("%w: %s is not a %s directory", ErrProtectedPath, abs, g.target)
	}
	n := normalize(abs)
	for _, p := range g.protected {
		// The path itself or any parent of a protected location.
		if n == p || strings.HasPrefix(p, n+"/") {
			return fmt.Errorf("%w: %s", ErrProtectedPath, abs)
		}
	}
	return nil
}

// SafeDelete removes path recursively after checking it against the guard.
// A path that is already gone is not an error. In dryRun mode only the check runs.
func (g *Guard) SafeDelete(path string, dryRun bool) error {
	if err := g.Check(path); err != nil {
		return err
	}
	if dryRun {
		return nil
	}
	if err := os.RemoveAll(path); err != nil {
		return fmt.Errorf("remove %s: %w", path, err)
	}
	return nil
}

func normalize(p string) string {
	p = filepath.ToSlash(filepath.Clean(p))
	p = strings.TrimSuffix(p, "/")
	if filepath.Separator == '\\' {
		p = strings.ToLower(p)
	}
	return p
}
