package analyze

import (
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/lakshaymaurya-felt/depsweep/internal/clean"
	"github.com/lakshaymaurya-felt/depsweep/internal/core"
	"github.com/lakshaymaurya-felt/depsweep/internal/project"
	"github.com/lakshaymaurya-felt/depsweep/internal/session"
	"github.com/lakshaymaurya-felt/depsweep/internal/ui"
)

// ─── Color tokens ────────────────────────────────────────────────────────────

var (
	clrDim    = ui.ColorMuted
	clrTarget = ui.ColorCoral
	clrActive = ui.ColorWarning
	clrCursor = ui.ColorPrimary
	clrPicked = ui.ColorSuccess
)

// View renders the current phase.
func (m Model) View() string {
	if m.quitting {
		return ""
	}
	w := max(m.width, 40)

	var s strings.Builder
	s.WriteString(m.renderHeader(w))
	s.WriteString("\n")

	switch {
	case m.scanning:
		s.WriteString(m.renderScanning(w))
	case m.deleting:
		s.WriteString(m.renderDeleting())
	case m.sess.State == session.Confirming:
		s.WriteString(m.renderConfirm(w))
	default:
		s.WriteString(m.renderBody(w))
	}

	s.WriteString("\n")
	s.WriteString(m.renderFooter())
	return s.String()
}

// ─── Header ──────────────────────────────────────────────────────────────────

func (m Model) renderHeader(w int) string {
	title := lipgloss.NewStyle().
		Bold(true).
		Foreground(ui.ColorCoral).
		Render("  " + ui.IconDiamond + " depsweep " + ui.IconChevron + " " + m.opts.Target)

	if m.summary.DryRun {
		title += "  " + ui.TagWarningStyle().Render(" DRY RUN ")
	}

	roots := lipgloss.NewStyle().
		Foreground(ui.ColorTextDim).
		Render("  " + ui.Truncate(strings.Join(m.opts.Roots, ", "), w-6))

	view := m.sess.View()
	stats := []string{
		fmt.Sprintf("%d found", len(view)),
		"total " + totalLabel(m.sess.Dataset.TotalSize(), m.opts.GB),
		fmt.Sprintf("selected %d (%s)", m.sess.Selection.Len(),
			totalLabel(m.sess.Selection.TotalSelectedSize(view), m.opts.GB)),
		"freed " + totalLabel(m.summary.Freed, m.opts.GB),
		"sort " + m.sess.Selection.Sort.String(),
	}
	if m.hasFreeSpace {
		stats = append(stats, "free "+totalLabel(int64(m.freeSpace), m.opts.GB))
	}
	statLine := lipgloss.NewStyle().
		Foreground(ui.ColorMuted).
		Render("  " + strings.Join(stats, " "+ui.IconPipe+" "))

	inner := lipgloss.JoinVertical(lipgloss.Left, title, roots, statLine)
	return lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(ui.ColorCoral).
		Width(w - 2).
		Render(inner)
}

// ─── Scanning ────────────────────────────────────────────────────────────────

func (m Model) renderScanning(w int) string {
	p := m.opts.Scanner.Progress()
	line := fmt.Sprintf("  %s Scanning… %d directories visited, %d found",
		m.spinner.View(), p.Visited(), p.Found())
	current := lipgloss.NewStyle().
		Foreground(clrDim).
		Italic(true).
		Render("  " + ui.Truncate(p.Current(), w-4))
	return line + "\n" + current
}

// ─── Body ────────────────────────────────────────────────────────────────────

func (m Model) renderBody(w int) string {
	view := m.sess.View()
	if len(view) == 0 {
		return lipgloss.NewStyle().
			Foreground(ui.ColorMuted).
			Italic(true).
			Render(fmt.Sprintf("  No %s directories found.", m.opts.Target))
	}

	cursor := m.sess.Selection.Cursor
	start, end := session.Window(cursor, len(view), m.rows())
	now := time.Now()

	var lines []string
	for i := start; i < end; i++ {
		lines = append(lines, m.renderEntry(view[i], i == cursor, w, now))
	}
	if len(view) > end-start {
		lines = append(lines, lipgloss.NewStyle().
			Foreground(ui.ColorMuted).
			Italic(true).
			Render(fmt.Sprintf("  ── %d-%d of %d ──", start+1, end, len(view))))
	}
	return strings.Join(lines, "\n")
}

func (m Model) renderEntry(e project.Entry, atCursor bool, w int, now time.Time) string {
	mark := lipgloss.NewStyle().Foreground(clrDim).Render(ui.IconEmpty)
	if m.sess.Selection.IsSelected(e.Path) {
		mark = lipgloss.NewStyle().Foreground(clrPicked).Bold(true).Render(ui.IconSelected)
	}

	size := fmt.Sprintf("%10s", sizeLabel(e.Size, m.opts.GB))
	age := fmt.Sprintf("%-15s", core.FormatAge(e.LastModified))

	active := "        "
	if e.IsActive {
		active = lipgloss.NewStyle().Foreground(clrActive).Render(" active ")
	}

	name := e.PackageName
	if e.PackageVersion != "" && e.PackageVersion != project.UnknownVersion {
		name += "@" + e.PackageVersion
	}
	name = fmt.Sprintf("%-24s", ui.Truncate(name, 24))

	pathWidth := max(w-70, 16)
	path := lipgloss.NewStyle().Foreground(clrTarget).Render(ui.Truncate(e.Path, pathWidth))

	line := fmt.Sprintf("   %s %s  %s %s %s  %s",
		mark, size, lipgloss.NewStyle().Foreground(clrDim).Render(age), active, name, path)
	if atCursor {
		cur := lipgloss.NewStyle().Foreground(clrCursor).Bold(true).Render(ui.IconBlock)
		line = " " + cur + line[2:]
	}
	return line
}

// ─── Confirmation ────────────────────────────────────────────────────────────

func (m Model) renderConfirm(w int) string {
	pending := m.sess.Pending
	var lines []string
	lines = append(lines, lipgloss.NewStyle().
		Foreground(ui.ColorError).
		Bold(true).
		Render(fmt.Sprintf("  %s Delete %d director%s? This cannot be undone.",
			ui.IconWarning, len(pending), plural(len(pending), "y", "ies"))))
	lines = append(lines, "")

	shown := min(len(pending), m.rows())
	for _, e := range pending[:shown] {
		lines = append(lines, fmt.Sprintf("    %s %10s  %s",
			ui.IconBullet, sizeLabel(e.Size, m.opts.GB), ui.Truncate(e.Path, w-20)))
	}
	if rest := len(pending) - shown; rest > 0 {
		lines = append(lines, lipgloss.NewStyle().Foreground(clrDim).
			Render(fmt.Sprintf("    … and %d more", rest)))
	}
	lines = append(lines, "")
	lines = append(lines, fmt.Sprintf("  Total: %s", totalLabel(m.sess.PendingSize(), m.opts.GB)))
	lines = append(lines, lipgloss.NewStyle().Bold(true).Render("  Press y to delete, any other key to cancel."))
	return strings.Join(lines, "\n")
}

// ─── Deleting ────────────────────────────────────────────────────────────────

func (m Model) renderDeleting() string {
	done := len(m.report.Attempted)
	current := ""
	if done < len(m.queue) {
		current = filepath.Dir(m.queue[done].Path)
	}
	verb := "Deleting"
	if m.report.DryRun {
		verb = "Simulating"
	}
	return fmt.Sprintf("  %s %s %d/%d  %s\n  %s",
		m.spinner.View(), verb, done, len(m.queue), current, m.deleteProgress.View())
}

// ─── Footer ──────────────────────────────────────────────────────────────────

func (m Model) renderFooter() string {
	var parts []string

	if m.err != nil {
		parts = append(parts, lipgloss.NewStyle().
			Foreground(ui.ColorError).
			Render("  "+ui.IconError+" "+m.err.Error()))
	}
	if n := len(m.summary.Errors); n > 0 {
		parts = append(parts, lipgloss.NewStyle().
			Foreground(ui.ColorWarning).
			Render(fmt.Sprintf("  %s %d director%s could not be read", ui.IconWarning, n, plural(n, "y", "ies"))))
	}
	if m.lastEvent != "" {
		parts = append(parts, lipgloss.NewStyle().Foreground(ui.ColorTextDim).Render("  "+m.lastEvent))
	}

	switch {
	case m.scanning:
		parts = append(parts, ui.HintBar("ctrl+c quit"))
	case m.deleting:
		parts = append(parts, ui.HintBar("deleting, please wait"))
	case m.sess.State == session.Confirming:
		parts = append(parts, ui.HintBar("y confirm", "any key cancel"))
	default:
		parts = append(parts, "  "+m.help.View(m.keys))
	}
	return strings.Join(parts, "\n")
}

// reportLine is the one-line outcome of a deletion batch.
func reportLine(r clean.Report, gb bool) string {
	verb := "Deleted"
	if r.DryRun {
		verb = "Would delete"
	}
	line := fmt.Sprintf("%s %s %d director%s, freed %s",
		ui.IconCheck, verb, r.Deleted, plural(r.Deleted, "y", "ies"), totalLabel(r.Freed, gb))
	if n := len(r.Failures); n > 0 {
		line += fmt.Sprintf(", %d failed", n)
	}
	return line
}

// totalLabel formats an aggregate, where zero is a real value.
func totalLabel(n int64, gb bool) string {
	if n <= 0 {
		return "0 B"
	}
	return sizeLabel(n, gb)
}

func plural(n int, one, many string) string {
	if n == 1 {
		return one
	}
	return many
}
