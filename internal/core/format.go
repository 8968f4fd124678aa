package core

import (
	"fmt"
	"time"

	"github.com/dustin/go-humanize"
)

// FormatSize renders a byte count in binary units ("1.5 GiB").
// Zero renders as "?" because size estimation reports failure as 0.
func FormatSize(bytes int64) string {
	if bytes <= 0 {
		return "?"
	}
	return humanize.IBytes(uint64(bytes))
}

// FormatSizeGB renders a byte count as fixed-point gibibytes.
func FormatSizeGB(bytes int64) string {
	if bytes <= 0 {
		return "?"
	}
	return fmt.Sprintf("%.2f GiB", float64(bytes)/float64(1<<30))
}

// FormatAge renders how long ago t was ("3 months ago").
func FormatAge(t time.Time) string {
	return FormatAgeAt(t, time.Now())
}

// FormatAgeAt renders t relative to now.
func FormatAgeAt(t, now time.Time) string {
	if t.IsZero() {
		return "unknown"
	}
	return humanize.RelTime(t, now, "ago", "from now")
}
