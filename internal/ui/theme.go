// Package ui holds the shared terminal palette, icons and small render
// helpers used by the interactive and static views.
package ui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// ─── Palette ─────────────────────────────────────────────────────────────────

var (
	ColorPrimary = lipgloss.AdaptiveColor{Light: "#5A3FD9", Dark: "#9D8CFF"}
	ColorCoral   = lipgloss.AdaptiveColor{Light: "#D9534F", Dark: "#FF7F6E"}
	ColorText    = lipgloss.AdaptiveColor{Light: "#1F1F1F", Dark: "#E6E6E6"}
	ColorTextDim = lipgloss.AdaptiveColor{Light: "#555555", Dark: "#B0B0B0"}
	ColorMuted   = lipgloss.AdaptiveColor{Light: "#8A8A8A", Dark: "#6C6C6C"}
	ColorWarning = lipgloss.AdaptiveColor{Light: "#B7791F", Dark: "#F6C177"}
	ColorError   = lipgloss.AdaptiveColor{Light: "#C53030", Dark: "#FF6B6B"}
	ColorSuccess = lipgloss.AdaptiveColor{Light: "#2F855A", Dark: "#7BD88F"}
)

// ─── Icons ───────────────────────────────────────────────────────────────────

const (
	IconDiamond  = "◆"
	IconChevron  = "›"
	IconFolder   = "▸ "
	IconBullet   = "•"
	IconBlock    = "▌"
	IconCheck    = "✓"
	IconWarning  = "⚠"
	IconError    = "✗"
	IconPipe     = "│"
	IconSelected = "◉"
	IconEmpty    = "○"
)

// ─── Styles ──────────────────────────────────────────────────────────────────

// TagWarningStyle renders a short inverse warning label.
func TagWarningStyle() lipgloss.Style {
	return lipgloss.NewStyle().
		Foreground(lipgloss.Color("#1F1F1F")).
		Background(ColorWarning).
		Bold(true)
}

// TagSuccessStyle renders a short inverse success label.
func TagSuccessStyle() lipgloss.Style {
	return lipgloss.NewStyle().
		Foreground(lipgloss.Color("#1F1F1F")).
		Background(ColorSuccess).
		Bold(true)
}

// HintBarStyle is the footer key-hint style.
func HintBarStyle() lipgloss.Style {
	return lipgloss.NewStyle().Foreground(ColorMuted)
}

// HintBar joins hints with a pipe separator and renders them as a footer.
func HintBar(hints ...string) string {
	return HintBarStyle().Render("  " + strings.Join(hints, " "+IconPipe+" "))
}

// GradientBar draws a width-cell bar filled to pct percent. The fill color
// moves from primary to coral as the share grows.
func GradientBar(pct float64, width int) string {
	if width <= 0 {
		return ""
	}
	if pct < 0 {
		pct = 0
	}
	if pct > 100 {
		pct = 100
	}
	filled := int(pct / 100 * float64(width))
	if pct > 0 && filled == 0 {
		filled = 1
	}

	color := ColorPrimary
	switch {
	case pct >= 50:
		color = ColorCoral
	case pct >= 20:
		color = ColorWarning
	}
	return lipgloss.NewStyle().Foreground(color).Render(strings.Repeat("█", filled)) +
		lipgloss.NewStyle().Foreground(ColorMuted).Render(strings.Repeat("░", width-filled))
}

// Truncate shortens s to at most max runes, keeping the tail, which is the
// informative end of a path.
func Truncate(s string, max int) string {
	r := []rune(s)
	if max <= 1 || len(r) <= max {
		return s
	}
	return "…" + string(r[len(r)-max+1:])
}
