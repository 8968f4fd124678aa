package analyze

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/lakshaymaurya-felt/depsweep/internal/clean"
	"github.com/lakshaymaurya-felt/depsweep/internal/core"
	"github.com/lakshaymaurya-felt/depsweep/internal/project"
	"github.com/lakshaymaurya-felt/depsweep/internal/scan"
	"github.com/lakshaymaurya-felt/depsweep/internal/session"
	"github.com/lakshaymaurya-felt/depsweep/internal/ui"
)

// StaticOptions controls the plain-text report.
type StaticOptions struct {
	Sort       session.SortKey
	GB         bool
	HideErrors bool
	Now        time.Time
}

// PrintStatic writes a plain-text listing of entries. It is used when
// stdout is not a terminal and by the analyze command.
func PrintStatic(w io.Writer, res *scan.Result, opts StaticOptions) {
	if opts.Now.IsZero() {
		opts.Now = time.Now()
	}
	view := session.NewDataset(res.Entries).SortedView(opts.Sort)

	if len(view) == 0 {
		fmt.Fprintln(w, "  No directories found.")
	}

	var total int64
	for _, e := range view {
		total += e.Size
		marker := " "
		if e.IsActive {
			marker = "*"
		}
		fmt.Fprintf(w, "  %s %10s  %-16s  %-28s  %s\n",
			marker,
			sizeLabel(e.Size, opts.GB),
			ageLabel(e, opts.Now),
			packageLabel(e),
			e.Path)
	}

	fmt.Fprintln(w, "  "+strings.Repeat("-", 58))
	fmt.Fprintf(w, "  %d director%s, total %s", len(view), plural(len(view), "y", "ies"), totalLabel(total, opts.GB))
	if res.Elapsed > 0 {
		fmt.Fprintf(w, ", scanned in %s", res.Elapsed.Round(time.Millisecond))
	}
	fmt.Fprintln(w)
	if len(view) > 0 {
		fmt.Fprintln(w, "  * active: manifest changed recently")
	}

	if !opts.HideErrors && len(res.Errors) > 0 {
		fmt.Fprintln(w)
		for _, err := range res.Errors {
			fmt.Fprintf(w, "  ! %v\n", err)
		}
	}
}

// PrintReport writes the outcome of a deletion batch.
func PrintReport(w io.Writer, r clean.Report, gb bool) {
	fmt.Fprintf(w, "  %s in %s\n", reportLine(r, gb), r.Elapsed.Round(time.Millisecond))
	for _, f := range r.Failures {
		fmt.Fprintf(w, "  ! %s: %s: %v\n", f.Entry.Path, f.Kind, f.Err)
	}
}

func ageLabel(e project.Entry, now time.Time) string {
	return core.FormatAgeAt(e.LastModified, now)
}

func packageLabel(e project.Entry) string {
	if e.PackageVersion == "" || e.PackageVersion == project.UnknownVersion {
		return e.PackageName
	}
	return e.PackageName + "@" + e.PackageVersion
}

// ─── JSON ────────────────────────────────────────────────────────────────────

type jsonReport struct {
	Target    string          `json:"target"`
	Roots     []string        `json:"roots"`
	Entries   []project.Entry `json:"entries"`
	TotalSize int64           `json:"total_size"`
	Errors    []string        `json:"errors,omitempty"`
	ElapsedMS int64           `json:"elapsed_ms"`
}

// PrintJSON writes the scan result as a single JSON document.
func PrintJSON(w io.Writer, target string, roots []string, res *scan.Result, sort session.SortKey, hideErrors bool) error {
	view := session.NewDataset(res.Entries).SortedView(sort)
	rep := jsonReport{
		Target:    target,
		Roots:     roots,
		Entries:   view,
		ElapsedMS: res.Elapsed.Milliseconds(),
	}
	for _, e := range view {
		rep.TotalSize += e.Size
	}
	if !hideErrors {
		for _, err := range res.Errors {
			rep.Errors = append(rep.Errors, err.Error())
		}
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(rep); err != nil {
		return fmt.Errorf("encode report: %w", err)
	}
	return nil
}

// ─── Progress line ───────────────────────────────────────────────────────────

// WatchProgress redraws a single progress line on w until the returned
// stop function is called. stop clears the line.
func WatchProgress(w io.Writer, p *scan.Progress, interval time.Duration) (stop func()) {
	done := make(chan struct{})
	finished := make(chan struct{})
	go func() {
		defer close(finished)
		t := time.NewTicker(interval)
		defer t.Stop()
		for {
			select {
			case <-done:
				fmt.Fprint(w, "\r\033[K")
				return
			case <-t.C:
				fmt.Fprintf(w, "\r\033[K  scanning… %d visited, %d found  %s",
					p.Visited(), p.Found(), ui.Truncate(p.Current(), 60))
			}
		}
	}()
	return func() {
		close(done)
		<-finished
	}
}
