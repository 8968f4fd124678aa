package cmd

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/lakshaymaurya-felt/depsweep/internal/analyze"
	"github.com/lakshaymaurya-felt/depsweep/internal/clean"
	"github.com/lakshaymaurya-felt/depsweep/internal/config"
	"github.com/lakshaymaurya-felt/depsweep/internal/core"
	"github.com/lakshaymaurya-felt/depsweep/internal/filter"
	"github.com/lakshaymaurya-felt/depsweep/internal/logging"
	"github.com/lakshaymaurya-felt/depsweep/internal/project"
	"github.com/lakshaymaurya-felt/depsweep/internal/scan"
	"github.com/lakshaymaurya-felt/depsweep/internal/session"
	"github.com/lakshaymaurya-felt/depsweep/internal/size"
	"github.com/lakshaymaurya-felt/depsweep/internal/update"
)

// app bundles what every scanning command needs.
type app struct {
	cfg    *config.Config
	roots  []string
	logger *zap.Logger
	engine *scan.Engine

	// interactive is set when the full-screen UI will own the terminal.
	interactive bool
}

// setup loads configuration and builds the scan pipeline. When sweeping
// interactively, logs go to a file because the terminal belongs to the UI.
func setup(cmd *cobra.Command, args []string, sweeping bool) (*app, error) {
	cfg, err := config.Load(cmd.Flags(), configPath)
	if err != nil {
		return nil, err
	}
	if len(args) > 0 {
		cfg.Directories = args
	}
	interactive := sweeping && !cfg.DeleteAll && !cfg.JSON && isTerminal(os.Stdout)

	logFile := cfg.LogFile
	if interactive && logFile == "" && cfg.Debug {
		logFile = logging.DefaultFile()
	}
	logger, err := logging.New(logging.Options{Debug: cfg.Debug, File: logFile})
	if err != nil {
		return nil, err
	}

	roots, err := cfg.Roots()
	if err != nil {
		return nil, err
	}

	estimator := size.New(size.Options{Mode: cfg.SizeMode, Logger: logger})
	builder := project.NewBuilder(project.Options{
		Manifest:     cfg.Manifest,
		ActiveWindow: cfg.ActiveWindow(),
		Sizer:        estimator,
	})
	engine := scan.New(scan.Options{
		Roots:         roots,
		Target:        cfg.Target,
		Exclude:       cfg.Exclude,
		ExcludeHidden: cfg.ExcludeHidden,
		HideErrors:    cfg.HideErrors,
		Depth:         cfg.Depth,
		Strategy:      cfg.Strategy,
		BatchSize:     cfg.BatchSize,
		Filter:        filter.New(config.DefaultPatternTables()),
	}, builder, logger)

	logger.Debug("configuration loaded",
		zap.Strings("roots", roots),
		zap.String("target", cfg.Target),
		zap.Int("depth", cfg.Depth),
		zap.String("strategy", cfg.Strategy),
		zap.String("size_mode", cfg.SizeMode))

	return &app{cfg: cfg, roots: roots, logger: logger, engine: engine, interactive: interactive}, nil
}

func (a *app) close() {
	_ = a.logger.Sync()
}

// scan runs the engine, drawing a progress line on stderr when it is a
// terminal and showProgress is set.
func (a *app) scan(ctx context.Context, showProgress bool) (*scan.Result, error) {
	if showProgress && isTerminal(os.Stderr) {
		stop := analyze.WatchProgress(os.Stderr, a.engine.Progress(), 100*time.Millisecond)
		defer stop()
	}
	res, err := a.engine.Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("scan: %w", err)
	}
	return res, nil
}

func (a *app) executor() *clean.Executor {
	return clean.New(clean.Options{
		DryRun:  a.cfg.DryRun,
		Logger:  a.logger,
		Remover: core.NewGuard(a.cfg.Target, config.GetNeverDeletePaths()),
	})
}

// runSweep is the interactive purge shared by the root and purge commands.
func runSweep(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	a, err := setup(cmd, args, true)
	if err != nil {
		return err
	}
	defer a.close()

	updates := a.checkUpdates(ctx)
	defer a.notifyUpdate(updates)

	sortKey, _ := session.ParseSortKey(a.cfg.Sort)

	switch {
	case a.cfg.DeleteAll:
		return a.deleteAll(ctx)

	case a.cfg.JSON:
		res, err := a.scan(ctx, true)
		if err != nil {
			return err
		}
		return analyze.PrintJSON(os.Stdout, a.cfg.Target, a.roots, res, sortKey, a.cfg.HideErrors)

	case !a.interactive:
		res, err := a.scan(ctx, true)
		if err != nil {
			return err
		}
		analyze.PrintStatic(os.Stdout, res, analyze.StaticOptions{
			Sort:       sortKey,
			GB:         a.cfg.GB,
			HideErrors: a.cfg.HideErrors,
		})
		return nil
	}

	sum, err := analyze.Run(ctx, analyze.Options{
		Scanner:    a.engine,
		Executor:   a.executor(),
		Sort:       sortKey,
		Roots:      a.roots,
		Target:     a.cfg.Target,
		GB:         a.cfg.GB,
		HideErrors: a.cfg.HideErrors,
		Logger:     a.logger,
	})
	if err != nil {
		return err
	}
	printSummary(sum, a.cfg.GB)
	return nil
}

// deleteAll removes every match without asking.
func (a *app) deleteAll(ctx context.Context) error {
	res, err := a.scan(ctx, true)
	if err != nil {
		return err
	}
	rep := a.executor().DeleteAll(ctx, res.Entries, a.cfg.BatchSize)

	verb := "Deleted"
	if rep.DryRun {
		verb = "Would delete"
	}
	fmt.Printf("  %s %d of %d directories in %s\n",
		verb, rep.Deleted, len(rep.Attempted), rep.Elapsed.Round(time.Millisecond))
	for _, f := range rep.Failures {
		fmt.Fprintf(os.Stderr, "  ! %s: %s: %v\n", f.Entry.Path, f.Kind, f.Err)
	}
	return nil
}

func printSummary(sum analyze.Summary, gb bool) {
	if sum.Deleted == 0 && len(sum.Failures) == 0 {
		return
	}
	analyze.PrintReport(os.Stdout, clean.Report{
		Deleted:  sum.Deleted,
		Freed:    sum.Freed,
		Failures: sum.Failures,
		DryRun:   sum.DryRun,
	}, gb)
}

// checkUpdates starts the throttled release check in the background. The
// channel yields at most one newer release.
func (a *app) checkUpdates(ctx context.Context) <-chan *update.Release {
	ch := make(chan *update.Release, 1)
	if !a.cfg.CheckUpdates || a.cfg.JSON {
		close(ch)
		return ch
	}
	go func() {
		defer close(ch)
		rel, err := update.NewChecker().Check(ctx, appVersion, time.Now())
		if err != nil {
			a.logger.Debug("update check failed", zap.Error(err))
			return
		}
		if rel != nil {
			ch <- rel
		}
	}()
	return ch
}

func (a *app) notifyUpdate(ch <-chan *update.Release) {
	select {
	case rel, ok := <-ch:
		if ok && rel != nil {
			fmt.Fprintf(os.Stderr, "\n  A new version is available: %s (current %s)\n  %s\n", rel.Version, appVersion, rel.URL)
		}
	case <-time.After(2 * time.Second):
	}
}

func isTerminal(f *os.File) bool {
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}
