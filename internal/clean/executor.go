// Package clean removes discovered target directories and reports what
// was freed.
package clean

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/lakshaymaurya-felt/depsweep/internal/core"
	"github.com/lakshaymaurya-felt/depsweep/internal/project"
)

// Remover deletes one path. core.Guard satisfies it.
type Remover interface {
	SafeDelete(path string, dryRun bool) error
}

// Options configures an Executor.
type Options struct {
	DryRun bool
	Logger *zap.Logger

	// Remover guards and performs each removal.
	Remover Remover
}

// Failure is one entry that could not be removed.
type Failure struct {
	Entry project.Entry
	Kind  core.ErrorKind
	Err   error
}

func (f Failure) Error() string {
	return fmt.Sprintf("%s (%s): %v", f.Entry.Path, f.Kind, f.Err)
}

// Outcome is the result of removing a single entry.
type Outcome struct {
	Entry   project.Entry
	Failure *Failure
}

// Report summarizes a deletion batch.
type Report struct {
	// Attempted holds every entry a removal was tried for, in order.
	Attempted []project.Entry

	Deleted  int
	Freed    int64
	Failures []Failure
	Elapsed  time.Duration
	DryRun   bool
}

// Add folds one outcome into the report.
func (r *Report) Add(o Outcome) {
	r.Attempted = append(r.Attempted, o.Entry)
	if o.Failure != nil {
		r.Failures = append(r.Failures, *o.Failure)
		return
	}
	r.Deleted++
	r.Freed += o.Entry.Size
}

// Executor removes entries. It never stops a batch because one entry failed.
type Executor struct {
	opts Options
}

// New creates an Executor. A nil Remover removes without any guard checks
// beyond refusing empty paths.
func New(opts Options) *Executor {
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	if opts.Remover == nil {
		opts.Remover = core.NewGuard("", nil)
	}
	return &Executor{opts: opts}
}

// DryRun reports whether removals are simulated.
func (x *Executor) DryRun() bool { return x.opts.DryRun }

// Delete removes one entry. A path that is already gone counts as deleted.
func (x *Executor) Delete(ctx context.Context, e project.Entry) Outcome {
	if err := ctx.Err(); err != nil {
		return Outcome{Entry: e, Failure: &Failure{Entry: e, Kind: core.KindOther, Err: err}}
	}
	if err := x.opts.Remover.SafeDelete(e.Path, x.opts.DryRun); err != nil {
		f := &Failure{Entry: e, Kind: core.Classify(err), Err: err}
		x.opts.Logger.Warn("delete failed",
			zap.String("path", e.Path),
			zap.Stringer("kind", f.Kind),
			zap.Error(err))
		return Outcome{Entry: e, Failure: f}
	}
	x.opts.Logger.Debug("deleted",
		zap.String("path", e.Path),
		zap.Int64("size", e.Size),
		zap.Bool("dry_run", x.opts.DryRun))
	return Outcome{Entry: e}
}

// DeleteBatch removes entries one after another. onStep, when set, is
// called after each entry with the number done so far.
func (x *Executor) DeleteBatch(ctx context.Context, entries []project.Entry, onStep func(done int, o Outcome)) Report {
	start := time.Now()
	rep := Report{DryRun: x.opts.DryRun}
	for i, e := range entries {
		o := x.Delete(ctx, e)
		rep.Add(o)
		if onStep != nil {
			onStep(i+1, o)
		}
	}
	rep.Elapsed = time.Since(start)
	return rep
}

// DeleteAll removes every entry concurrently, batchSize at a time, and
// waits for all of them regardless of individual failures. The attempted
// order in the report is the input order.
func (x *Executor) DeleteAll(ctx context.Context, entries []project.Entry, batchSize int) Report {
	if batchSize <= 0 {
		batchSize = 50
	}
	start := time.Now()
	outcomes := make([]Outcome, len(entries))

	var g errgroup.Group
	g.SetLimit(batchSize)
	for i, e := range entries {
		g.Go(func() error {
			outcomes[i] = x.Delete(ctx, e)
			return nil
		})
	}
	_ = g.Wait()

	rep := Report{DryRun: x.opts.DryRun}
	for _, o := range outcomes {
		rep.Add(o)
	}
	rep.Elapsed = time.Since(start)
	return rep
}
