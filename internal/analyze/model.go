// Package analyze presents scan results: an interactive bubbletea driver
// over the session state machine, a plain-text report for non-terminal
// output and a JSON report.
package analyze

import (
	"context"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"

	"github.com/lakshaymaurya-felt/depsweep/internal/clean"
	"github.com/lakshaymaurya-felt/depsweep/internal/core"
	"github.com/lakshaymaurya-felt/depsweep/internal/project"
	"github.com/lakshaymaurya-felt/depsweep/internal/scan"
	"github.com/lakshaymaurya-felt/depsweep/internal/session"
)

// progressInterval is how often scan counters are polled for display.
const progressInterval = 100 * time.Millisecond

// Scanner is the part of scan.Engine the driver needs.
type Scanner interface {
	Scan(ctx context.Context) (*scan.Result, error)
	Progress() *scan.Progress
}

// Options configures the interactive driver.
type Options struct {
	Scanner  Scanner
	Executor *clean.Executor
	Sort     session.SortKey

	// Roots are shown in the header; the first one is probed for free space.
	Roots  []string
	Target string

	GB         bool
	HideErrors bool
	Logger     *zap.Logger
}

// ─── Messages ────────────────────────────────────────────────────────────────

type scanDoneMsg struct {
	result *scan.Result
	err    error
}

type scanTickMsg struct{}

type deleteStepMsg struct {
	outcome clean.Outcome
}

type freeSpaceMsg struct {
	bytes uint64
	err   error
}

// ─── Model ───────────────────────────────────────────────────────────────────

// Model is the bubbletea model for an interactive sweep.
type Model struct {
	ctx  context.Context
	opts Options
	keys keyMap

	spinner        spinner.Model
	help           help.Model
	deleteProgress progress.Model

	width  int
	height int

	scanning bool
	result   *scan.Result
	err      error

	sess session.Session

	// Deletion in flight: queue is the confirmed snapshot, report the
	// outcomes so far.
	deleting bool
	queue    []project.Entry
	report   clean.Report

	// Totals across every batch of the session.
	summary Summary

	freeSpace    uint64
	hasFreeSpace bool
	lastEvent    string
	quitting     bool
}

// Summary is what the session did, returned once the program exits.
type Summary struct {
	Deleted  int
	Freed    int64
	Failures []clean.Failure
	Errors   []error
	Err      error
	DryRun   bool
}

// NewModel creates the driver. The scan starts from Init.
func NewModel(ctx context.Context, opts Options) Model {
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	sp := spinner.New()
	sp.Spinner = spinner.Dot

	return Model{
		ctx:            ctx,
		opts:           opts,
		keys:           newKeyMap(),
		spinner:        sp,
		help:           help.New(),
		deleteProgress: progress.New(progress.WithDefaultGradient()),
		width:          80,
		height:         24,
		scanning:       true,
		sess:           session.New(nil, opts.Sort),
		summary:        Summary{DryRun: opts.Executor != nil && opts.Executor.DryRun()},
	}
}

func (m Model) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, m.startScan(), scanTick(), m.probeFreeSpace())
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.sess.PageSize = m.rows()
		m.deleteProgress.Width = max(10, msg.Width-20)
		return m, nil

	case spinner.TickMsg:
		if !m.scanning && !m.deleting {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case progress.FrameMsg:
		updated, cmd := m.deleteProgress.Update(msg)
		if p, ok := updated.(progress.Model); ok {
			m.deleteProgress = p
		}
		return m, cmd

	case scanTickMsg:
		if m.scanning {
			return m, scanTick()
		}
		return m, nil

	case scanDoneMsg:
		m.scanning = false
		if msg.err != nil {
			m.err = msg.err
			m.summary.Err = msg.err
			m.quitting = true
			return m, tea.Quit
		}
		m.result = msg.result
		if !m.opts.HideErrors {
			m.summary.Errors = msg.result.Errors
		}
		m.sess = session.New(msg.result.Entries, m.opts.Sort)
		m.sess.PageSize = m.rows()
		m.lastEvent = ""
		return m, nil

	case freeSpaceMsg:
		if msg.err != nil {
			m.opts.Logger.Debug("free space unavailable", zap.Error(msg.err))
			return m, nil
		}
		m.freeSpace = msg.bytes
		m.hasFreeSpace = true
		return m, nil

	case deleteStepMsg:
		return m.applyStep(msg.outcome)

	case tea.KeyMsg:
		if m.scanning || m.deleting {
			if msg.String() == "ctrl+c" {
				m.quitting = true
				return m, tea.Quit
			}
			return m, nil
		}
		if m.sess.State == session.Browsing && msg.String() == "?" {
			m.help.ShowAll = !m.help.ShowAll
			return m, nil
		}
		next, effects := session.Step(m.sess, m.keys.translate(m.sess.State, msg))
		wasConfirming := m.sess.State == session.Confirming
		m.sess = next
		return m.run(effects, wasConfirming)
	}

	return m, nil
}

// run carries out the effects of one transition.
func (m Model) run(effects []session.Effect, wasConfirming bool) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd
	started := false
	for _, eff := range effects {
		switch e := eff.(type) {
		case session.Delete:
			m.lastEvent = ""
			if cmd := m.startDelete(e.Entries); cmd != nil {
				cmds = append(cmds, cmd)
				started = true
			}
		case session.Quit:
			m.quitting = true
			return m, tea.Quit
		}
	}
	if wasConfirming && !started {
		m.lastEvent = "Deletion cancelled"
	}
	return m, tea.Batch(cmds...)
}

func (m *Model) startDelete(entries []project.Entry) tea.Cmd {
	if len(entries) == 0 || m.deleting || m.opts.Executor == nil {
		return nil
	}
	m.deleting = true
	m.queue = entries
	m.report = clean.Report{DryRun: m.opts.Executor.DryRun()}
	return tea.Batch(m.deleteProgress.SetPercent(0), m.spinner.Tick, m.deleteCmd(entries[0]))
}

// applyStep records one outcome and starts the next removal. Removals run
// one at a time so the progress bar reflects real progress.
func (m Model) applyStep(o clean.Outcome) (tea.Model, tea.Cmd) {
	m.report.Add(o)
	done := len(m.report.Attempted)
	pct := m.deleteProgress.SetPercent(float64(done) / float64(len(m.queue)))

	if done < len(m.queue) {
		return m, tea.Batch(pct, m.deleteCmd(m.queue[done]))
	}

	m.deleting = false
	m.sess = m.sess.ApplyDeletion(m.report.Attempted)
	m.summary.Deleted += m.report.Deleted
	m.summary.Freed += m.report.Freed
	m.summary.Failures = append(m.summary.Failures, m.report.Failures...)
	m.lastEvent = reportLine(m.report, m.opts.GB)
	m.queue = nil
	return m, tea.Batch(pct, m.probeFreeSpace())
}

// Summary returns the totals of the session so far.
func (m Model) Summary() Summary {
	return m.summary
}

// ─── Commands ────────────────────────────────────────────────────────────────

func (m Model) startScan() tea.Cmd {
	s := m.opts.Scanner
	ctx := m.ctx
	return func() tea.Msg {
		res, err := s.Scan(ctx)
		return scanDoneMsg{result: res, err: err}
	}
}

func scanTick() tea.Cmd {
	return tea.Tick(progressInterval, func(time.Time) tea.Msg {
		return scanTickMsg{}
	})
}

func (m Model) deleteCmd(e project.Entry) tea.Cmd {
	x := m.opts.Executor
	ctx := m.ctx
	return func() tea.Msg {
		return deleteStepMsg{outcome: x.Delete(ctx, e)}
	}
}

func (m Model) probeFreeSpace() tea.Cmd {
	if len(m.opts.Roots) == 0 {
		return nil
	}
	root := m.opts.Roots[0]
	return func() tea.Msg {
		n, err := core.FreeSpace(root)
		return freeSpaceMsg{bytes: n, err: err}
	}
}

// ─── Helpers ─────────────────────────────────────────────────────────────────

// rows is the number of list rows that fit, capped at the default window.
func (m Model) rows() int {
	h := m.height - 10 // header + footer
	if h < 3 {
		h = 3
	}
	return min(h, session.DefaultRows)
}

// Run starts the full-screen program and blocks until it exits.
func Run(ctx context.Context, opts Options) (Summary, error) {
	p := tea.NewProgram(NewModel(ctx, opts), tea.WithAltScreen(), tea.WithContext(ctx))
	final, err := p.Run()
	if err != nil {
		return Summary{}, err
	}
	m, ok := final.(Model)
	if !ok {
		return Summary{}, nil
	}
	return m.Summary(), m.summary.Err
}

// sizeLabel formats a byte count honouring the GiB display mode.
func sizeLabel(n int64, gb bool) string {
	if gb && n > 0 {
		return core.FormatSizeGB(n)
	}
	return core.FormatSize(n)
}
