package analyze

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/lakshaymaurya-felt/depsweep/internal/clean"
	"github.com/lakshaymaurya-felt/depsweep/internal/core"
	"github.com/lakshaymaurya-felt/depsweep/internal/project"
	"github.com/lakshaymaurya-felt/depsweep/internal/scan"
	"github.com/lakshaymaurya-felt/depsweep/internal/session"
)

type fakeScanner struct {
	res *scan.Result
	err error
}

func (f fakeScanner) Scan(context.Context) (*scan.Result, error) { return f.res, f.err }
func (f fakeScanner) Progress() *scan.Progress                   { return &scan.Progress{} }

func fixtureEntries(t *testing.T) []project.Entry {
	t.Helper()
	root := t.TempDir()
	var entries []project.Entry
	for i, name := range []string{"a", "b", "c"} {
		dir := filepath.Join(root, name, "node_modules")
		if err := os.MkdirAll(dir, 0o755); err != nil {
			t.Fatal(err)
		}
		entries = append(entries, project.Entry{
			Path:           dir,
			Root:           root,
			Size:           int64(1000 * (i + 1)),
			LastModified:   time.Now().Add(-time.Duration(i) * time.Hour),
			PackageName:    name,
			PackageVersion: project.UnknownVersion,
		})
	}
	return entries
}

func runes(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func update(t *testing.T, m Model, msg tea.Msg) Model {
	t.Helper()
	next, _ := m.Update(msg)
	out, ok := next.(Model)
	if !ok {
		t.Fatalf("Update() returned %T", next)
	}
	return out
}

func newTestModel(t *testing.T, entries []project.Entry) (Model, *clean.Executor) {
	t.Helper()
	x := clean.New(clean.Options{Remover: core.NewGuard("node_modules", nil)})
	m := NewModel(context.Background(), Options{
		Scanner:  fakeScanner{res: &scan.Result{Entries: entries}},
		Executor: x,
		Sort:     session.SortSize,
		Target:   "node_modules",
	})
	m = update(t, m, scanDoneMsg{result: &scan.Result{Entries: entries}})
	return m, x
}

func TestModel_SelectConfirmDelete(t *testing.T) {
	entries := fixtureEntries(t)
	m, x := newTestModel(t, entries)

	// Size order: c, b, a. Select c and a.
	m = update(t, m, tea.KeyMsg{Type: tea.KeySpace, Runes: []rune{' '}})
	m = update(t, m, runes("j"))
	m = update(t, m, runes("j"))
	m = update(t, m, tea.KeyMsg{Type: tea.KeySpace, Runes: []rune{' '}})
	if got := m.sess.Selection.Len(); got != 2 {
		t.Fatalf("selected = %d, want 2", got)
	}

	m = update(t, m, runes("d"))
	if m.sess.State != session.Confirming {
		t.Fatalf("State = %v, want confirming", m.sess.State)
	}
	if !strings.Contains(m.View(), "Delete 2 directories") {
		t.Errorf("confirm view missing prompt:\n%s", m.View())
	}

	m = update(t, m, runes("y"))
	if !m.deleting || len(m.queue) != 2 {
		t.Fatalf("deleting = %v, queue = %d, want true and 2", m.deleting, len(m.queue))
	}
	for _, e := range append([]project.Entry(nil), m.queue...) {
		m = update(t, m, deleteStepMsg{outcome: x.Delete(context.Background(), e)})
	}

	if m.deleting {
		t.Error("still deleting after the last step")
	}
	if got := m.sess.Dataset.Len(); got != 1 {
		t.Errorf("remaining entries = %d, want 1", got)
	}
	if m.sess.Selection.Len() != 0 {
		t.Error("selection not cleared after deletion")
	}
	sum := m.Summary()
	if sum.Deleted != 2 || sum.Freed != 4000 {
		t.Errorf("Summary() = %+v, want 2 deleted and 4000 freed", sum)
	}
	if _, err := os.Stat(entries[1].Path); err != nil {
		t.Errorf("unselected entry was removed: %v", err)
	}
	for _, i := range []int{0, 2} {
		if _, err := os.Stat(entries[i].Path); !errors.Is(err, os.ErrNotExist) {
			t.Errorf("%s still exists", entries[i].Path)
		}
	}
}

func TestModel_CancelConfirmation(t *testing.T) {
	m, _ := newTestModel(t, fixtureEntries(t))
	m = update(t, m, runes("a"))
	m = update(t, m, runes("d"))
	m = update(t, m, runes("n"))

	if m.sess.State != session.Browsing || m.deleting {
		t.Errorf("State = %v, deleting = %v, want browsing and idle", m.sess.State, m.deleting)
	}
	if m.sess.Dataset.Len() != 3 || m.sess.Selection.Len() != 3 {
		t.Errorf("dataset = %d, selected = %d, want 3 and 3", m.sess.Dataset.Len(), m.sess.Selection.Len())
	}
	if m.lastEvent != "Deletion cancelled" {
		t.Errorf("lastEvent = %q", m.lastEvent)
	}
}

func TestModel_KeysIgnoredWhileScanning(t *testing.T) {
	m := NewModel(context.Background(), Options{
		Scanner: fakeScanner{res: &scan.Result{}},
		Target:  "node_modules",
	})
	m = update(t, m, runes("q"))
	if m.quitting {
		t.Error("q quit during scan")
	}
	if !strings.Contains(m.View(), "Scanning") {
		t.Errorf("scanning view = %q", m.View())
	}
}

func TestModel_ScanErrorQuits(t *testing.T) {
	m := NewModel(context.Background(), Options{Scanner: fakeScanner{}, Target: "node_modules"})
	boom := errors.New("root vanished")
	next, cmd := m.Update(scanDoneMsg{err: boom})
	if cmd == nil {
		t.Fatal("scan error did not quit")
	}
	if got := next.(Model).Summary().Err; !errors.Is(got, boom) {
		t.Errorf("Summary().Err = %v, want %v", got, boom)
	}
}

func TestModel_Quit(t *testing.T) {
	m, _ := newTestModel(t, fixtureEntries(t))
	m = update(t, m, runes("q"))
	if !m.quitting || m.View() != "" {
		t.Error("q did not quit")
	}
}

func TestModel_CtrlCQuitsFromConfirmation(t *testing.T) {
	m, _ := newTestModel(t, fixtureEntries(t))
	m = update(t, m, runes("a"))
	m = update(t, m, runes("d"))
	if m.sess.State != session.Confirming {
		t.Fatalf("State = %v, want %v", m.sess.State, session.Confirming)
	}

	next, cmd := m.Update(tea.KeyMsg{Type: tea.KeyCtrlC})
	m = next.(Model)
	if !m.quitting || cmd == nil {
		t.Fatal("ctrl+c on the prompt did not quit")
	}
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Errorf("cmd() = %T, want tea.QuitMsg", cmd())
	}
	if m.deleting || m.sess.Dataset.Len() != 3 {
		t.Errorf("deleting = %v, dataset = %d, want idle and untouched", m.deleting, m.sess.Dataset.Len())
	}
}

func TestPrintStatic(t *testing.T) {
	now := time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)
	res := &scan.Result{
		Entries: []project.Entry{
			{Path: "/r/small/node_modules", Size: 1024, PackageName: "small", PackageVersion: "1.0.0", LastModified: now.Add(-time.Hour)},
			{Path: "/r/big/node_modules", Size: 2048, PackageName: "big", PackageVersion: project.UnknownVersion, IsActive: true},
		},
		Errors: []error{errors.New("list /r/x: input/output error")},
	}

	var buf bytes.Buffer
	PrintStatic(&buf, res, StaticOptions{Sort: session.SortSize, Now: now})
	out := buf.String()

	big := strings.Index(out, "/r/big/node_modules")
	small := strings.Index(out, "/r/small/node_modules")
	if big < 0 || small < 0 || big > small {
		t.Errorf("entries missing or not sorted by size:\n%s", out)
	}
	for _, want := range []string{"small@1.0.0", "2 directories, total 3.0 KiB", "input/output error", "1 hour ago", "*"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}

	buf.Reset()
	PrintStatic(&buf, res, StaticOptions{HideErrors: true, Now: now})
	if strings.Contains(buf.String(), "input/output error") {
		t.Error("errors printed with HideErrors")
	}
}

func TestPrintJSON(t *testing.T) {
	res := &scan.Result{Entries: []project.Entry{
		{Path: "/r/a/node_modules", Size: 10},
		{Path: "/r/b/node_modules", Size: 30},
	}}
	var buf bytes.Buffer
	if err := PrintJSON(&buf, "node_modules", []string{"/r"}, res, session.SortSize, false); err != nil {
		t.Fatalf("PrintJSON() error = %v", err)
	}

	var got jsonReport
	if err := json.Unmarshal(buf.Bytes(), &got); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}
	if got.TotalSize != 40 || len(got.Entries) != 2 || got.Entries[0].Path != "/r/b/node_modules" {
		t.Errorf("report = %+v", got)
	}
}

func TestPrintReport(t *testing.T) {
	rep := clean.Report{
		Deleted: 1,
		Freed:   2048,
		Failures: []clean.Failure{{
			Entry: project.Entry{Path: "/r/x/node_modules"},
			Kind:  core.KindPermission,
			Err:   os.ErrPermission,
		}},
	}
	var buf bytes.Buffer
	PrintReport(&buf, rep, false)
	out := buf.String()
	for _, want := range []string{"Deleted 1 directory", "2.0 KiB", "1 failed", "/r/x/node_modules: permission denied"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
}
