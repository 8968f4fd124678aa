package scan

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sort"
	"testing"

	"github.com/lakshaymaurya-felt/depsweep/internal/config"
	"github.com/lakshaymaurya-felt/depsweep/internal/filter"
	"github.com/lakshaymaurya-felt/depsweep/internal/project"
	"github.com/lakshaymaurya-felt/depsweep/internal/size"
)

// writeFile creates path (and parents) with n bytes of content.
func writeFile(t *testing.T, path string, n int) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, make([]byte, n), 0o644); err != nil {
		t.Fatal(err)
	}
}

func mkdir(t *testing.T, path string) {
	t.Helper()
	if err := os.MkdirAll(path, 0o755); err != nil {
		t.Fatal(err)
	}
}

// fixture builds:
//
//	r/a/node_modules/{x,y}              100 + 50 bytes
//	r/a/node_modules/sub/node_modules   nested, empty
//	r/.git/node_modules                 pruned by the skip table
func fixture(t *testing.T) string {
	t.Helper()
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "a", "node_modules", "x"), 100)
	writeFile(t, filepath.Join(root, "a", "node_modules", "y"), 50)
	mkdir(t, filepath.Join(root, "a", "node_modules", "sub", "node_modules"))
	writeFile(t, filepath.Join(root, ".git", "node_modules", "z"), 10)
	return root
}

func walkBuilder() *project.Builder {
	return project.NewBuilder(project.Options{
		Sizer: size.New(size.Options{Mode: size.ModeWalk}),
	})
}

func testOptions(root, strategy string) Options {
	return Options{
		Roots:    []string{root},
		Target:   "node_modules",
		Strategy: strategy,
		Filter:   filter.New(config.DefaultPatternTables()),
	}
}

func paths(entries []project.Entry) []string {
	out := make([]string, 0, len(entries))
	for _, e := range entries {
		out = append(out, e.Path)
	}
	sort.Strings(out)
	return out
}

func TestScan_SingleEntryFromFixture(t *testing.T) {
	for _, strategy := range []string{StrategyGlob, StrategyWalk, StrategyAuto} {
		t.Run(strategy, func(t *testing.T) {
			root := fixture(t)
			res, err := New(testOptions(root, strategy), walkBuilder(), nil).Scan(context.Background())
			if err != nil {
				t.Fatalf("Scan() error = %v", err)
			}
			if len(res.Entries) != 1 {
				t.Fatalf("Scan() entries = %v, want exactly one", paths(res.Entries))
			}
			got := res.Entries[0]
			if want := filepath.Join(root, "a", "node_modules"); got.Path != want {
				t.Errorf("Path = %q, want %q", got.Path, want)
			}
			if got.Size != 150 {
				t.Errorf("Size = %d, want 150", got.Size)
			}
			if got.Root != root {
				t.Errorf("Root = %q, want %q", got.Root, root)
			}
			if got.PackageName != "a" || got.PackageVersion != project.UnknownVersion {
				t.Errorf("package = %s@%s, want a@%s", got.PackageName, got.PackageVersion, project.UnknownVersion)
			}
		})
	}
}

func TestScan_StrategiesAgree(t *testing.T) {
	root := t.TempDir()
	for _, rel := range []string{
		"one/node_modules/f",
		"two/deep/er/node_modules/f",
		"three/node_modules/pkg/node_modules/f",
		".hidden/node_modules/f",
		"Library/Caches/Yarn/v6/node_modules/f",
		"Library/Preferences/x/node_modules/f",
		"node_modules/f",
	} {
		writeFile(t, filepath.Join(root, filepath.FromSlash(rel)), 1)
	}

	for _, opts := range []struct {
		name   string
		depth  int
		hidden bool
	}{
		{"unbounded", 0, false},
		{"depth 2", 2, false},
		{"exclude hidden", 0, true},
	} {
		t.Run(opts.name, func(t *testing.T) {
			var results [][]string
			for _, strategy := range []string{StrategyGlob, StrategyWalk} {
				o := testOptions(root, strategy)
				o.Depth = opts.depth
				o.ExcludeHidden = opts.hidden
				res, err := New(o, walkBuilder(), nil).Scan(context.Background())
				if err != nil {
					t.Fatalf("%s: Scan() error = %v", strategy, err)
				}
				results = append(results, paths(res.Entries))
			}
			glob, walk := results[0], results[1]
			if len(glob) != len(walk) {
				t.Fatalf("glob found %v, walk found %v", glob, walk)
			}
			for i := range glob {
				if glob[i] != walk[i] {
					t.Errorf("glob[%d] = %q, walk[%d] = %q", i, glob[i], i, walk[i])
				}
			}
		})
	}
}

func TestScan_UserFoldersNamedLikeSystemPaths(t *testing.T) {
	root := t.TempDir()
	names := []string{"dev", "run", "snap", "boot", "sys", "proc", "Applications", "Library"}
	for _, name := range names {
		mkdir(t, filepath.Join(root, name, "app", "node_modules"))
	}

	for _, strategy := range []string{StrategyGlob, StrategyWalk} {
		t.Run(strategy, func(t *testing.T) {
			res, err := New(testOptions(root, strategy), walkBuilder(), nil).Scan(context.Background())
			if err != nil {
				t.Fatalf("Scan() error = %v", err)
			}
			got := make(map[string]bool)
			for _, e := range res.Entries {
				got[e.Path] = true
			}
			for _, name := range names {
				want := filepath.Join(root, name, "app", "node_modules")
				if !got[want] {
					t.Errorf("missing entry %s; found %v", want, paths(res.Entries))
				}
			}
		})
	}
}

func TestScan_Depth(t *testing.T) {
	root := t.TempDir()
	mkdir(t, filepath.Join(root, "node_modules"))
	mkdir(t, filepath.Join(root, "a", "node_modules"))
	mkdir(t, filepath.Join(root, "a", "b", "node_modules"))

	tests := []struct {
		depth int
		want  int
	}{
		{0, 3},
		{1, 1},
		{2, 2},
		{3, 3},
	}
	for _, tt := range tests {
		for _, strategy := range []string{StrategyGlob, StrategyWalk} {
			o := testOptions(root, strategy)
			o.Depth = tt.depth
			res, err := New(o, walkBuilder(), nil).Scan(context.Background())
			if err != nil {
				t.Fatalf("Scan() error = %v", err)
			}
			if len(res.Entries) != tt.want {
				t.Errorf("%s depth=%d: entries = %v, want %d", strategy, tt.depth, paths(res.Entries), tt.want)
			}
		}
	}
}

func TestScan_ExcludeAndHidden(t *testing.T) {
	root := t.TempDir()
	mkdir(t, filepath.Join(root, "keep", "node_modules"))
	mkdir(t, filepath.Join(root, "archive", "old", "node_modules"))
	mkdir(t, filepath.Join(root, ".venv", "node_modules"))

	o := testOptions(root, StrategyWalk)
	o.Exclude = []string{"archive"}
	o.ExcludeHidden = true
	res, err := New(o, walkBuilder(), nil).Scan(context.Background())
	if err != nil {
		t.Fatalf("Scan() error = %v", err)
	}
	got := paths(res.Entries)
	want := filepath.Join(root, "keep", "node_modules")
	if len(got) != 1 || got[0] != want {
		t.Errorf("entries = %v, want [%s]", got, want)
	}
}

func TestScan_HiddenTargetName(t *testing.T) {
	root := t.TempDir()
	mkdir(t, filepath.Join(root, "app", ".build"))

	o := testOptions(root, StrategyWalk)
	o.Target = ".build"
	o.ExcludeHidden = true
	res, err := New(o, walkBuilder(), nil).Scan(context.Background())
	if err != nil {
		t.Fatalf("Scan() error = %v", err)
	}
	if len(res.Entries) != 1 {
		t.Errorf("entries = %v, want the hidden target itself", paths(res.Entries))
	}
}

func TestScan_MultipleRoots(t *testing.T) {
	r1, r2 := t.TempDir(), t.TempDir()
	mkdir(t, filepath.Join(r1, "p", "node_modules"))
	mkdir(t, filepath.Join(r2, "q", "node_modules"))

	o := testOptions(r1, StrategyAuto)
	o.Roots = []string{r1, r2}
	res, err := New(o, walkBuilder(), nil).Scan(context.Background())
	if err != nil {
		t.Fatalf("Scan() error = %v", err)
	}
	if len(res.Entries) != 2 {
		t.Fatalf("entries = %v, want 2", paths(res.Entries))
	}
	for _, e := range res.Entries {
		if filepath.Dir(filepath.Dir(e.Path)) != e.Root {
			t.Errorf("entry %s has root %s", e.Path, e.Root)
		}
	}
	if len(res.Strategies) != 2 {
		t.Errorf("Strategies = %v, want one per root", res.Strategies)
	}
}

func TestScan_InvalidRoot(t *testing.T) {
	missing := filepath.Join(t.TempDir(), "nope")
	if _, err := New(testOptions(missing, StrategyAuto), walkBuilder(), nil).Scan(context.Background()); err == nil {
		t.Error("Scan() with missing root: want error")
	}

	file := filepath.Join(t.TempDir(), "file")
	writeFile(t, file, 1)
	if _, err := New(testOptions(file, StrategyAuto), walkBuilder(), nil).Scan(context.Background()); err == nil {
		t.Error("Scan() with file root: want error")
	}
}

type failingStrategy struct{}

func (failingStrategy) Name() string { return "failing" }

func (failingStrategy) Find(context.Context, string, *Progress) (Found, error) {
	return Found{}, errors.New("unavailable")
}

func TestScan_AutoFallsBackToWalk(t *testing.T) {
	root := fixture(t)
	e := New(testOptions(root, StrategyAuto), walkBuilder(), nil)
	e.glob = failingStrategy{}

	res, err := e.Scan(context.Background())
	if err != nil {
		t.Fatalf("Scan() error = %v", err)
	}
	if len(res.Entries) != 1 {
		t.Errorf("entries = %v, want 1", paths(res.Entries))
	}
	if got := res.Strategies[root]; got != StrategyWalk {
		t.Errorf("strategy = %q, want %q", got, StrategyWalk)
	}
}

func TestScan_ExplicitGlobDoesNotFallBack(t *testing.T) {
	for _, hide := range []bool{false, true} {
		root := fixture(t)
		o := testOptions(root, StrategyGlob)
		o.HideErrors = hide
		e := New(o, walkBuilder(), nil)
		e.glob = failingStrategy{}

		res, err := e.Scan(context.Background())
		if err != nil {
			t.Fatalf("Scan() error = %v", err)
		}
		if len(res.Entries) != 0 {
			t.Errorf("hide=%v: entries = %v, want none without fallback", hide, paths(res.Entries))
		}
		if got := res.Strategies[root]; got != "failing" {
			t.Errorf("hide=%v: strategy = %q, want the glob strategy", hide, got)
		}
		wantErrs := 1
		if hide {
			wantErrs = 0
		}
		if len(res.Errors) != wantErrs {
			t.Errorf("hide=%v: Errors = %v, want %d", hide, res.Errors, wantErrs)
		}
	}
}

// partialStrategy finds one candidate and reports listing failures for
// other paths, like a walk that hit unreadable directories.
type partialStrategy struct {
	cand Candidate
	errs []error
}

func (partialStrategy) Name() string { return StrategyWalk }

func (p partialStrategy) Find(context.Context, string, *Progress) (Found, error) {
	return Found{Candidates: []Candidate{p.cand}, Errors: p.errs}, nil
}

func TestScan_TraversalErrors(t *testing.T) {
	root := fixture(t)
	cand := Candidate{Path: filepath.Join(root, "a", "node_modules"), Rel: "a/node_modules"}
	listErrs := []error{
		errors.New("list /x: input/output error"),
		errors.New("list /y: too many open files"),
	}

	tests := []struct {
		name string
		hide bool
		want int
	}{
		{"shown", false, 2},
		{"hidden", true, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			o := testOptions(root, StrategyWalk)
			o.HideErrors = tt.hide
			e := New(o, walkBuilder(), nil)
			e.walk = partialStrategy{cand: cand, errs: listErrs}

			res, err := e.Scan(context.Background())
			if err != nil {
				t.Fatalf("Scan() error = %v", err)
			}
			if len(res.Entries) != 1 {
				t.Errorf("entries = %v, want the surviving candidate", paths(res.Entries))
			}
			if len(res.Errors) != tt.want {
				t.Errorf("Errors = %v, want %d", res.Errors, tt.want)
			}
		})
	}
}

func TestScan_ErrorsCapped(t *testing.T) {
	root := t.TempDir()
	errs := make([]error, maxErrors+20)
	for i := range errs {
		errs[i] = errors.New("list failed")
	}
	e := New(testOptions(root, StrategyWalk), walkBuilder(), nil)
	e.walk = partialStrategy{cand: Candidate{Path: filepath.Join(root, "gone")}, errs: errs}

	res, err := e.Scan(context.Background())
	if err != nil {
		t.Fatalf("Scan() error = %v", err)
	}
	if len(res.Errors) != maxErrors {
		t.Errorf("len(Errors) = %d, want %d", len(res.Errors), maxErrors)
	}
}

func TestWalk_PermissionDeniedIsSilent(t *testing.T) {
	if os.Geteuid() == 0 {
		t.Skip("permission bits are not enforced for root")
	}
	root := t.TempDir()
	mkdir(t, filepath.Join(root, "open", "node_modules"))
	locked := filepath.Join(root, "locked")
	mkdir(t, filepath.Join(locked, "app", "node_modules"))
	if err := os.Chmod(locked, 0o000); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { _ = os.Chmod(locked, 0o755) })

	res, err := New(testOptions(root, StrategyWalk), walkBuilder(), nil).Scan(context.Background())
	if err != nil {
		t.Fatalf("Scan() error = %v", err)
	}
	if len(res.Errors) != 0 {
		t.Errorf("Errors = %v, want none for a permission-denied directory", res.Errors)
	}
	got := paths(res.Entries)
	if want := filepath.Join(root, "open", "node_modules"); len(got) != 1 || got[0] != want {
		t.Errorf("entries = %v, want [%s]", got, want)
	}
}

type nilBuilder struct{}

func (b *nilBuilder) Build(context.Context, string, string) *project.Entry { return nil }

func TestScan_DroppedCandidates(t *testing.T) {
	root := fixture(t)
	res, err := New(testOptions(root, StrategyWalk), &nilBuilder{}, nil).Scan(context.Background())
	if err != nil {
		t.Fatalf("Scan() error = %v", err)
	}
	if len(res.Entries) != 0 {
		t.Errorf("entries = %v, want none", paths(res.Entries))
	}
}

func TestScan_Progress(t *testing.T) {
	root := fixture(t)
	e := New(testOptions(root, StrategyWalk), walkBuilder(), nil)
	if _, err := e.Scan(context.Background()); err != nil {
		t.Fatalf("Scan() error = %v", err)
	}
	if e.Progress().Visited() == 0 {
		t.Error("Visited() = 0 after scan")
	}
	if e.Progress().Found() != 1 {
		t.Errorf("Found() = %d, want 1", e.Progress().Found())
	}
}
