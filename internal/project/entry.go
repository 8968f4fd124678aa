package project

import "time"

// UnknownVersion marks an entry whose manifest is missing or has no version.
const UnknownVersion = "unknown"

// Entry is one discovered target directory.
type Entry struct {
	Path           string    `json:"path"`
	Root           string    `json:"root"`
	Size           int64     `json:"size"`
	LastModified   time.Time `json:"last_modified"`
	IsActive       bool      `json:"is_active"`
	PackageName    string    `json:"package_name"`
	PackageVersion string    `json:"package_version"`
}

// SizeKnown reports whether the size estimate succeeded; 0 means unknown.
func (e Entry) SizeKnown() bool {
	return e.Size > 0
}

// Age returns how long ago the target directory was last modified.
func (e Entry) Age(now time.Time) time.Duration {
	if e.LastModified.IsZero() {
		return 0
	}
	return now.Sub(e.LastModified)
}
