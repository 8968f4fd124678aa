// Package update checks GitHub releases for a newer version. The check is
// throttled through a timestamp marker in the user cache directory.
package update

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"golang.org/x/mod/semver"
)

// DefaultURL is the releases endpoint queried for the latest tag.
const DefaultURL = "https://api.github.com/repos/lakshaymaurya-felt/depsweep/releases/latest"

// DefaultInterval is the minimum time between two automatic checks.
const DefaultInterval = 7 * 24 * time.Hour

// Checker queries the release endpoint and maintains the marker file.
type Checker struct {
	Marker   string
	URL      string
	Interval time.Duration
	Client   *http.Client
}

// NewChecker returns a Checker using the default marker path and endpoint.
func NewChecker() *Checker {
	return &Checker{
		Marker:   DefaultMarker(),
		URL:      DefaultURL,
		Interval: DefaultInterval,
		Client:   &http.Client{Timeout: 10 * time.Second},
	}
}

// DefaultMarker is <UserCacheDir>/depsweep/last-update-check.
func DefaultMarker() string {
	dir, err := os.UserCacheDir()
	if err != nil {
		dir = os.TempDir()
	}
	return filepath.Join(dir, "depsweep", "last-update-check")
}

// LastCheck reads the marker. A missing or unreadable marker means the check
// never ran and is reported as the zero time without an error.
func (c *Checker) LastCheck() time.Time {
	data, err := os.ReadFile(c.Marker)
	if err != nil {
		return time.Time{}
	}
	t, err := time.Parse(time.RFC3339, strings.TrimSpace(string(data)))
	if err != nil {
		return time.Time{}
	}
	return t
}

// Due reports whether a check should run at now.
func (c *Checker) Due(now time.Time) bool {
	last := c.LastCheck()
	if last.IsZero() {
		return true
	}
	return now.Sub(last) >= c.Interval
}

// Touch records now as the time of the last check.
func (c *Checker) Touch(now time.Time) error {
	if err := os.MkdirAll(filepath.Dir(c.Marker), 0o755); err != nil {
		return fmt.Errorf("create marker directory: %w", err)
	}
	if err := os.WriteFile(c.Marker, []byte(now.UTC().Format(time.RFC3339)+"\n"), 0o644); err != nil {
		return fmt.Errorf("write marker: %w", err)
	}
	return nil
}

type release struct {
	TagName string `json:"tag_name"`
	HTMLURL string `json:"html_url"`
}

// Release describes the latest published version.
type Release struct {
	Version string
	URL     string
}

// Latest fetches the latest release.
func (c *Checker) Latest(ctx context.Context) (Release, error) {
	client := c.Client
	if client == nil {
		client = http.DefaultClient
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.URL, nil)
	if err != nil {
		return Release{}, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/vnd.github+json")

	resp, err := client.Do(req)
	if err != nil {
		return Release{}, fmt.Errorf("query releases: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return Release{}, fmt.Errorf("query releases: unexpected status %s", resp.Status)
	}
	var r release
	if err := json.NewDecoder(resp.Body).Decode(&r); err != nil {
		return Release{}, fmt.Errorf("decode release: %w", err)
	}
	if r.TagName == "" {
		return Release{}, errors.New("decode release: empty tag")
	}
	return Release{Version: r.TagName, URL: r.HTMLURL}, nil
}

// Newer reports whether latest is a higher semantic version than current.
// Development builds and unparsable versions never report an update.
func Newer(current, latest string) bool {
	cur, lat := canonical(current), canonical(latest)
	if cur == "" || lat == "" {
		return false
	}
	return semver.Compare(lat, cur) > 0
}

func canonical(v string) string {
	v = strings.TrimSpace(v)
	if v == "" {
		return ""
	}
	if !strings.HasPrefix(v, "v") {
		v = "v" + v
	}
	if !semver.IsValid(v) {
		return ""
	}
	return v
}

// Check runs a throttled check: when due it queries the endpoint, records
// the attempt and returns the release if it is newer than current.
func (c *Checker) Check(ctx context.Context, current string, now time.Time) (*Release, error) {
	if !c.Due(now) {
		return nil, nil
	}
	rel, err := c.Latest(ctx)
	if touchErr := c.Touch(now); touchErr != nil && err == nil {
		err = touchErr
	}
	if err != nil {
		return nil, err
	}
	if !Newer(current, rel.Version) {
		return nil, nil
	}
	return &rel, nil
}
