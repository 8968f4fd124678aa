package update

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"
)

var now = time.Date(2024, 6, 1, 10, 0, 0, 0, time.UTC)

func newTestChecker(t *testing.T, url string) *Checker {
	t.Helper()
	return &Checker{
		Marker:   filepath.Join(t.TempDir(), "depsweep", "last-update-check"),
		URL:      url,
		Interval: 24 * time.Hour,
		Client:   http.DefaultClient,
	}
}

func TestDue(t *testing.T) {
	c := newTestChecker(t, "")

	if !c.Due(now) {
		t.Error("Due() with missing marker = false, want true")
	}

	if err := os.MkdirAll(filepath.Dir(c.Marker), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(c.Marker, []byte("garbage"), 0o644); err != nil {
		t.Fatal(err)
	}
	if !c.Due(now) {
		t.Error("Due() with unreadable marker = false, want true")
	}

	if err := c.Touch(now); err != nil {
		t.Fatalf("Touch() error = %v", err)
	}
	if c.Due(now.Add(time.Hour)) {
		t.Error("Due() one hour after a check = true, want false")
	}
	if !c.Due(now.Add(25 * time.Hour)) {
		t.Error("Due() after the interval = false, want true")
	}
	if got := c.LastCheck(); !got.Equal(now) {
		t.Errorf("LastCheck() = %v, want %v", got, now)
	}
}

func TestNewer(t *testing.T) {
	tests := []struct {
		current, latest string
		want            bool
	}{
		{"1.0.0", "v1.1.0", true},
		{"v1.2.0", "v1.1.9", false},
		{"v1.2.0", "v1.2.0", false},
		{"dev", "v9.9.9", false},
		{"v1.0.0", "not-a-version", false},
		{"1.0.0-rc.1", "1.0.0", true},
	}
	for _, tt := range tests {
		if got := Newer(tt.current, tt.latest); got != tt.want {
			t.Errorf("Newer(%q, %q) = %v, want %v", tt.current, tt.latest, got, tt.want)
		}
	}
}

func TestCheck(t *testing.T) {
	calls := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"tag_name":"v2.0.0","html_url":"https://example.com/r/v2.0.0"}`))
	}))
	defer srv.Close()

	c := newTestChecker(t, srv.URL)

	rel, err := c.Check(context.Background(), "v1.0.0", now)
	if err != nil {
		t.Fatalf("Check() error = %v", err)
	}
	if rel == nil || rel.Version != "v2.0.0" {
		t.Fatalf("Check() = %+v, want v2.0.0", rel)
	}

	// Throttled by the marker written above.
	rel, err = c.Check(context.Background(), "v1.0.0", now.Add(time.Minute))
	if err != nil || rel != nil {
		t.Errorf("second Check() = %+v, %v, want nil, nil", rel, err)
	}
	if calls != 1 {
		t.Errorf("server calls = %d, want 1", calls)
	}
}

func TestLatest_BadStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "rate limited", http.StatusForbidden)
	}))
	defer srv.Close()

	c := newTestChecker(t, srv.URL)
	if _, err := c.Latest(context.Background()); err == nil {
		t.Error("Latest() with 403 want error")
	}
	// The failed attempt still counts as a check.
	if _, err := c.Check(context.Background(), "v1.0.0", now); err == nil {
		t.Error("Check() with 403 want error")
	}
	if c.Due(now) {
		t.Error("Due() after a failed check = true, want false")
	}
}
