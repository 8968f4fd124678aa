// Package scan discovers target directories under one or more roots.
package scan

import (
	"context"
	"errors"
	"fmt"
	"os"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/lakshaymaurya-felt/depsweep/internal/project"
)

// maxErrors caps the surfaced traversal errors kept for the report.
const maxErrors = 500

// Builder turns a discovered target directory into an entry. A nil entry
// drops the candidate.
type Builder interface {
	Build(ctx context.Context, targetPath, projectPath string) *project.Entry
}

// Result is the outcome of a scan over all roots.
type Result struct {
	Entries []project.Entry

	// Errors are surfaced traversal failures; empty when errors are hidden.
	Errors []error

	// Strategies records which strategy served each root.
	Strategies map[string]string

	Elapsed time.Duration
}

// Engine runs scans. Create one per scan; it is safe to read Progress
// from another goroutine while Scan runs.
type Engine struct {
	opts     Options
	builder  Builder
	logger   *zap.Logger
	progress *Progress

	// Overridable for tests.
	glob Strategy
	walk Strategy
}

// New creates an Engine.
func New(opts Options, builder Builder, logger *zap.Logger) *Engine {
	if logger == nil {
		logger = zap.NewNop()
	}
	if opts.BatchSize <= 0 {
		opts.BatchSize = DefaultBatchSize
	}
	if opts.Strategy == "" {
		opts.Strategy = StrategyAuto
	}
	return &Engine{
		opts:     opts,
		builder:  builder,
		logger:   logger,
		progress: &Progress{},
		glob:     NewGlobStrategy(opts),
		walk:     NewWalkStrategy(opts, logger),
	}
}

// Progress returns the live progress counters.
func (e *Engine) Progress() *Progress {
	return e.progress
}

// Scan discovers entries under every root concurrently. It fails only when
// a root cannot be used at all; everything else is absorbed or reported in
// Result.Errors.
func (e *Engine) Scan(ctx context.Context) (*Result, error) {
	if e.opts.Target == "" {
		return nil, errors.New("scan: target name is empty")
	}
	if len(e.opts.Roots) == 0 {
		return nil, errors.New("scan: no roots given")
	}
	for _, root := range e.opts.Roots {
		info, err := os.Stat(root)
		if err != nil {
			return nil, fmt.Errorf("scan root %s: %w", root, err)
		}
		if !info.IsDir() {
			return nil, fmt.Errorf("scan root %s: not a directory", root)
		}
	}

	start := time.Now()
	res := &Result{Strategies: make(map[string]string, len(e.opts.Roots))}
	var mu sync.Mutex

	var g errgroup.Group
	for _, root := range e.opts.Roots {
		g.Go(func() error {
			entries, errs, strategy := e.scanRoot(ctx, root)
			mu.Lock()
			defer mu.Unlock()
			res.Entries = append(res.Entries, entries...)
			for _, err := range errs {
				if len(res.Errors) >= maxErrors {
					break
				}
				res.Errors = append(res.Errors, err)
			}
			res.Strategies[root] = strategy
			return nil
		})
	}
	_ = g.Wait()

	res.Elapsed = time.Since(start)
	e.logger.Debug("scan finished",
		zap.Int("entries", len(res.Entries)),
		zap.Int("errors", len(res.Errors)),
		zap.Duration("elapsed", res.Elapsed))
	return res, nil
}

func (e *Engine) scanRoot(ctx context.Context, root string) ([]project.Entry, []error, string) {
	found, name := e.find(ctx, root)
	errs := found.Errors
	if e.opts.HideErrors {
		errs = nil
	}
	return e.build(ctx, root, found.Candidates), errs, name
}

// find runs the configured strategy. In auto mode the glob fast path is
// tried first and the walk takes over when it cannot run. An explicitly
// chosen glob never falls back; its failure is reported instead.
func (e *Engine) find(ctx context.Context, root string) (Found, string) {
	switch e.opts.Strategy {
	case StrategyWalk:
		return e.runWalk(ctx, root), e.walk.Name()
	case StrategyGlob:
		found, err := e.glob.Find(ctx, root, e.progress)
		if err != nil {
			e.logger.Warn("glob strategy failed", zap.String("root", root), zap.Error(err))
			found.Errors = append(found.Errors, fmt.Errorf("%s strategy: %w", e.glob.Name(), err))
		}
		return found, e.glob.Name()
	case StrategyAuto:
		found, err := e.glob.Find(ctx, root, e.progress)
		if err == nil {
			return found, e.glob.Name()
		}
		e.logger.Debug("glob strategy unavailable, falling back to walk",
			zap.String("root", root), zap.Error(err))
		return e.runWalk(ctx, root), e.walk.Name()
	default:
		e.logger.Warn("unknown strategy, using walk", zap.String("strategy", e.opts.Strategy))
		return e.runWalk(ctx, root), e.walk.Name()
	}
}

func (e *Engine) runWalk(ctx context.Context, root string) Found {
	found, err := e.walk.Find(ctx, root, e.progress)
	if err != nil && !e.opts.HideErrors {
		found.Errors = append(found.Errors, fmt.Errorf("walk %s: %w", root, err))
	}
	return found
}

// build resolves candidates into entries in fixed-size concurrent batches.
// A candidate that fails to build is dropped without affecting the rest.
func (e *Engine) build(ctx context.Context, root string, cands []Candidate) []project.Entry {
	var (
		mu      sync.Mutex
		entries = make([]project.Entry, 0, len(cands))
	)
	for start := 0; start < len(cands); start += e.opts.BatchSize {
		if ctx.Err() != nil {
			break
		}
		end := min(start+e.opts.BatchSize, len(cands))

		var g errgroup.Group
		for _, c := range cands[start:end] {
			g.Go(func() error {
				entry := e.builder.Build(ctx, c.Path, c.Project())
				if entry == nil {
					e.logger.Debug("dropped candidate", zap.String("path", c.Path))
					return nil
				}
				entry.Root = root
				mu.Lock()
				entries = append(entries, *entry)
				mu.Unlock()
				return nil
			})
		}
		_ = g.Wait()
	}
	return entries
}
