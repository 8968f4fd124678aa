// Package size estimates how much disk space a directory occupies.
package size

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os/exec"
	"path/filepath"
	"strconv"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
)

// Modes for Options.Mode.
const (
	ModeAuto = "auto" // disk-usage tool first, walk on failure
	ModeWalk = "walk" // walk only
)

// duTimeout bounds a single disk-usage invocation.
const duTimeout = 60 * time.Second

// Runner executes an external command and returns its standard output.
type Runner func(ctx context.Context, name string, args ...string) ([]byte, error)

// Options configures an Estimator.
type Options struct {
	Mode string

	// Command is the disk-usage invocation; the path is appended.
	// It must print kilobyte blocks as the first field.
	Command []string

	Run    Runner
	Logger *zap.Logger
}

// Estimator computes directory sizes. Concurrent requests for the same
// path share one computation.
type Estimator struct {
	opts  Options
	group singleflight.Group
}

// New creates an Estimator.
func New(opts Options) *Estimator {
	if opts.Mode == "" {
		opts.Mode = ModeAuto
	}
	if len(opts.Command) == 0 {
		opts.Command = []string{"du", "-sk"}
	}
	if opts.Run == nil {
		opts.Run = execRunner
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	return &Estimator{opts: opts}
}

// SizeOf returns the size of path in bytes, or 0 when it cannot be determined.
func (e *Estimator) SizeOf(ctx context.Context, path string) int64 {
	v, _, _ := e.group.Do(path, func() (interface{}, error) {
		return e.sizeOf(ctx, path), nil
	})
	return v.(int64)
}

func (e *Estimator) sizeOf(ctx context.Context, path string) int64 {
	if e.opts.Mode != ModeWalk {
		n, err := e.DiskUsage(ctx, path)
		if err == nil {
			return n
		}
		e.opts.Logger.Debug("disk usage tool failed, walking instead",
			zap.String("path", path), zap.Error(err))
	}

	n, err := Walk(path)
	if err != nil {
		e.opts.Logger.Debug("size walk aborted", zap.String("path", path), zap.Error(err))
		return 0
	}
	return n
}

// DiskUsage runs the configured disk-usage command for path and converts
// its kilobyte output to bytes.
func (e *Estimator) DiskUsage(ctx context.Context, path string) (int64, error) {
	ctx, cancel := context.WithTimeout(ctx, duTimeout)
	defer cancel()

	args := append(append([]string(nil), e.opts.Command[1:]...), path)
	out, err := e.opts.Run(ctx, e.opts.Command[0], args...)
	if err != nil {
		return 0, fmt.Errorf("%s %s: %w", e.opts.Command[0], path, err)
	}
	return ParseDiskUsage(out)
}

// ParseDiskUsage reads the leading kilobyte count from disk-usage output.
func ParseDiskUsage(out []byte) (int64, error) {
	fields := bytes.Fields(out)
	if len(fields) == 0 {
		return 0, errors.New("empty disk usage output")
	}
	kb, err := strconv.ParseInt(string(fields[0]), 10, 64)
	if err != nil {
		return 0, fmt.Errorf("parse disk usage %q: %w", fields[0], err)
	}
	if kb < 0 {
		return 0, fmt.Errorf("negative disk usage %d", kb)
	}
	return kb * 1024, nil
}

// Walk sums the apparent size of every file under root. Symlinks count by
// their own size and are not followed. Any failure aborts the walk so a
// partial sum is never reported as a real size.
func Walk(root string) (int64, error) {
	var total int64
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		info, err := d.Info()
		if err != nil {
			return err
		}
		total += info.Size()
		return nil
	})
	if err != nil {
		return 0, err
	}
	return total, nil
}

func execRunner(ctx context.Context, name string, args ...string) ([]byte, error) {
	return exec.CommandContext(ctx, name, args...).Output()
}
