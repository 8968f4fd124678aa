package scan

import (
	"context"
	"fmt"
	"os"
	"path"
	"path/filepath"
	"strings"
	"sync"

	"github.com/bmatcuk/doublestar/v4"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/lakshaymaurya-felt/depsweep/internal/core"
)

// Found is what a strategy discovered under one root.
type Found struct {
	Candidates []Candidate

	// Errors are listing failures worth showing to the operator.
	Errors []error
}

// Strategy discovers target directories under a root. An error return
// means the strategy itself could not run, not that some paths failed.
type Strategy interface {
	Name() string
	Find(ctx context.Context, root string, progress *Progress) (Found, error)
}

// ─── Glob fast path ──────────────────────────────────────────────────────────

// GlobStrategy matches **/<target> with doublestar and filters the matches.
type GlobStrategy struct {
	opts Options
}

// NewGlobStrategy creates the fast-path strategy.
func NewGlobStrategy(opts Options) *GlobStrategy {
	return &GlobStrategy{opts: opts}
}

func (g *GlobStrategy) Name() string { return StrategyGlob }

// patterns returns one pattern per allowed depth, or a single ** pattern
// when depth is unlimited.
func (g *GlobStrategy) patterns() []string {
	target := escapeMeta(g.opts.Target)
	if g.opts.Depth == 0 {
		return []string{"**/" + target}
	}
	out := make([]string, 0, g.opts.Depth)
	for n := 1; n <= g.opts.Depth; n++ {
		out = append(out, strings.Repeat("*/", n-1)+target)
	}
	return out
}

func (g *GlobStrategy) Find(ctx context.Context, root string, progress *Progress) (Found, error) {
	fsys := os.DirFS(root)
	seen := make(map[string]bool)
	var found Found

	for _, pattern := range g.patterns() {
		if err := ctx.Err(); err != nil {
			return Found{}, err
		}
		matches, err := doublestar.Glob(fsys, pattern, doublestar.WithNoFollow())
		if err != nil {
			return Found{}, fmt.Errorf("glob %s in %s: %w", pattern, root, err)
		}
		for _, rel := range matches {
			if seen[rel] {
				continue
			}
			seen[rel] = true
			abs := filepath.Join(root, filepath.FromSlash(rel))
			progress.visit(abs)

			if g.opts.nested(rel) || !g.opts.withinDepth(relDepth(rel)) {
				continue
			}
			if g.opts.prunedPath(root, rel) {
				continue
			}
			info, err := os.Lstat(abs)
			if err != nil || !info.IsDir() {
				continue
			}
			progress.foundOne()
			found.Candidates = append(found.Candidates, Candidate{Path: abs, Rel: rel})
		}
	}
	return found, nil
}

// escapeMeta quotes doublestar metacharacters in a literal name.
func escapeMeta(s string) string {
	var b strings.Builder
	for _, r := range s {
		switch r {
		case '*', '?', '[', ']', '{', '}', '\\':
			b.WriteByte('\\')
		}
		b.WriteRune(r)
	}
	return b.String()
}

// ─── Breadth-first fallback ──────────────────────────────────────────────────

// WalkStrategy lists directories level by level in bounded batches and
// never descends into a target directory.
type WalkStrategy struct {
	opts   Options
	logger *zap.Logger
}

// NewWalkStrategy creates the fallback strategy.
func NewWalkStrategy(opts Options, logger *zap.Logger) *WalkStrategy {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &WalkStrategy{opts: opts, logger: logger}
}

func (w *WalkStrategy) Name() string { return StrategyWalk }

type queued struct {
	path  string
	depth int
}

func (w *WalkStrategy) Find(ctx context.Context, root string, progress *Progress) (Found, error) {
	batchSize := w.opts.BatchSize
	if batchSize <= 0 {
		batchSize = DefaultBatchSize
	}

	var (
		mu    sync.Mutex
		found Found
		queue = []queued{{path: root, depth: 0}}
	)

	for len(queue) > 0 {
		if err := ctx.Err(); err != nil {
			return found, err
		}
		n := min(batchSize, len(queue))
		batch := queue[:n]
		queue = queue[n:]

		var next []queued
		var g errgroup.Group
		for _, item := range batch {
			g.Go(func() error {
				children, cands, err := w.list(root, item, progress)
				mu.Lock()
				defer mu.Unlock()
				if err != nil {
					found.Errors = append(found.Errors, err)
				}
				found.Candidates = append(found.Candidates, cands...)
				next = append(next, children...)
				return nil
			})
		}
		_ = g.Wait()
		queue = append(queue, next...)
	}
	return found, nil
}

// list reads one directory and splits its children into directories to
// enqueue and target candidates.
func (w *WalkStrategy) list(root string, item queued, progress *Progress) ([]queued, []Candidate, error) {
	progress.visit(item.path)

	entries, err := os.ReadDir(item.path)
	if err != nil {
		if core.IsQuietTraversalError(err) {
			w.logger.Debug("skipping unreadable directory", zap.String("path", item.path), zap.Error(err))
			return nil, nil, nil
		}
		if w.opts.HideErrors {
			w.logger.Debug("hidden traversal error", zap.String("path", item.path), zap.Error(err))
			return nil, nil, nil
		}
		w.logger.Warn("cannot list directory", zap.String("path", item.path), zap.Error(err))
		return nil, nil, fmt.Errorf("list %s: %w", item.path, err)
	}

	var children []queued
	var cands []Candidate
	depth := item.depth + 1
	for _, e := range entries {
		if !e.IsDir() {
			continue
		}
		childPath := filepath.Join(item.path, e.Name())
		rel, err := filepath.Rel(root, childPath)
		if err != nil {
			continue
		}
		rel = filepath.ToSlash(rel)
		if w.opts.pruned(root, rel) {
			continue
		}
		if e.Name() == w.opts.Target {
			progress.foundOne()
			cands = append(cands, Candidate{Path: childPath, Rel: rel})
			continue
		}
		if w.opts.canDescend(depth) {
			children = append(children, queued{path: childPath, depth: depth})
		}
	}
	return children, cands, nil
}

// relDepth counts the segments of a slash separated relative path.
func relDepth(rel string) int {
	rel = path.Clean(rel)
	if rel == "." || rel == "" {
		return 0
	}
	return strings.Count(rel, "/") + 1
}
