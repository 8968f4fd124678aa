// Package project turns discovered target directories into entries with
// project metadata read from a sibling manifest.
package project

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"
)

// Sizer estimates the on-disk size of a directory. 0 means unknown.
type Sizer interface {
	SizeOf(ctx context.Context, path string) int64
}

// Options configures a Builder.
type Options struct {
	// Manifest is the file name read from the project directory.
	Manifest string

	// ActiveWindow is how recently the manifest must have changed for the
	// entry to count as active.
	ActiveWindow time.Duration

	Sizer Sizer

	// Now is overridable for tests.
	Now func() time.Time
}

// Builder attaches project metadata to discovered directories.
type Builder struct {
	opts Options
}

type manifest struct {
	Name    string `json:"name"`
	Version string `json:"version"`
}

// NewBuilder creates a Builder, filling unset options with defaults.
func NewBuilder(opts Options) *Builder {
	if opts.Manifest == "" {
		opts.Manifest = "package.json"
	}
	if opts.ActiveWindow == 0 {
		opts.ActiveWindow = 30 * 24 * time.Hour
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	return &Builder{opts: opts}
}

// Build returns the entry for targetPath inside projectPath, or nil when
// the target directory cannot be read and the candidate is dropped.
func (b *Builder) Build(ctx context.Context, targetPath, projectPath string) *Entry {
	info, err := os.Stat(targetPath)
	if err != nil || !info.IsDir() {
		return nil
	}

	e := &Entry{
		Path:           targetPath,
		LastModified:   info.ModTime(),
		PackageName:    filepath.Base(projectPath),
		PackageVersion: UnknownVersion,
	}

	if m, modTime, err := readManifest(filepath.Join(projectPath, b.opts.Manifest)); err == nil {
		e.IsActive = b.opts.Now().Sub(modTime) < b.opts.ActiveWindow
		if m.Name != "" {
			e.PackageName = m.Name
		}
		if m.Version != "" {
			e.PackageVersion = m.Version
		}
	}

	if b.opts.Sizer != nil {
		e.Size = b.opts.Sizer.SizeOf(ctx, targetPath)
	}
	return e
}

// readManifest returns the parsed manifest and its modification time. A
// manifest that exists but is not valid JSON still yields its mtime.
func readManifest(path string) (manifest, time.Time, error) {
	f, err := os.Open(path)
	if err != nil {
		return manifest{}, time.Time{}, err
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return manifest{}, time.Time{}, fmt.Errorf("stat manifest %s: %w", path, err)
	}
	if info.IsDir() {
		return manifest{}, time.Time{}, fmt.Errorf("manifest %s is a directory", path)
	}

	var m manifest
	if err := json.NewDecoder(f).Decode(&m); err != nil {
		m = manifest{}
	}
	return m, info.ModTime(), nil
}
