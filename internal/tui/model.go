// Package tui is the interactive front end: a bubbletea program whose tick
// drives the inspector.
package tui

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/mj1618/ui-inspector/internal/bridge"
	"github.com/mj1618/ui-inspector/internal/inspector"
	"github.com/mj1618/ui-inspector/internal/model"
	"github.com/mj1618/ui-inspector/internal/platform"
)

var (
	primaryColor = lipgloss.Color("#7C3AED")
	warningColor = lipgloss.Color("#F59E0B")
	errorColor   = lipgloss.Color("#EF4444")
	mutedColor   = lipgloss.Color("#6B7280")
	fgColor      = lipgloss.Color("#F9FAFB")

	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(primaryColor).
			Padding(0, 1)

	statusBarStyle = lipgloss.NewStyle().
			Background(lipgloss.Color("#374151")).
			Foreground(fgColor).
			Padding(0, 1)

	selectedStyle = lipgloss.NewStyle().
			Background(primaryColor).
			Foreground(fgColor).
			Bold(true)

	hoverStyle = lipgloss.NewStyle().Foreground(warningColor)
	errorStyle = lipgloss.NewStyle().Foreground(errorColor)
	helpStyle  = lipgloss.NewStyle().Foreground(mutedColor).Italic(true)
)

type tickMsg time.Time

// CooldownMsg changes the capture cooldown of a running program, e.g. after
// the config file was edited.
type CooldownMsg time.Duration

// Options configure the front end.
type Options struct {
	Tick time.Duration
	// Pointer is the initial virtual pointer position.
	Pointer inspector.Point
	// PointerStep is how far the pointer keys move it, in pixels.
	PointerStep int
	// WorkerErr reports the worker's exit error, or nil while it runs.
	WorkerErr func() error
}

// Model is the bubbletea model wrapping an inspector.
type Model struct {
	in   *inspector.Inspector
	opts Options
	keys Keys

	pointer inspector.Point
	cursor  int
	width   int
	height  int
	status  string
	failed  bool
	err     error
}

// New returns a front end for in.
func New(in *inspector.Inspector, opts Options) *Model {
	if opts.Tick <= 0 {
		opts.Tick = 50 * time.Millisecond
	}
	if opts.PointerStep <= 0 {
		opts.PointerStep = 10
	}
	return &Model{
		in:      in,
		opts:    opts,
		keys:    DefaultKeys(),
		pointer: opts.Pointer,
	}
}

// Err is the error that ended the program, if any.
func (m *Model) Err() error { return m.err }

// Init implements tea.Model.
func (m *Model) Init() tea.Cmd {
	return m.tickCmd()
}

func (m *Model) tickCmd() tea.Cmd {
	return tea.Tick(m.opts.Tick, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

// Update implements tea.Model.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tickMsg:
		return m, m.tick(time.Time(msg))
	case CooldownMsg:
		m.in.SetCooldown(time.Duration(msg))
		m.setStatus(fmt.Sprintf("cooldown %s", time.Duration(msg)))
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
	case tea.KeyMsg:
		return m, m.handleKey(msg)
	}
	return m, nil
}

func (m *Model) tick(now time.Time) tea.Cmd {
	if m.opts.WorkerErr != nil {
		if err := m.opts.WorkerErr(); err != nil {
			m.err = err
			return tea.Quit
		}
	}
	m.in.Update(now, &m.pointer)

	if m.in.Fresh {
		m.in.Fresh = false
		if i := indexOf(visibleRows(m.in), m.in.Focal.DrillID); i >= 0 {
			m.cursor = i
		}
	}
	if m.in.LastError != nil {
		m.setError(m.in.LastError)
		m.in.LastError = nil
	}
	if p := m.in.Patched; p != nil {
		added, removed, changed := model.CountChanges(p.Changes)
		m.setStatus(fmt.Sprintf("patched %s: +%d -%d ~%d", p.DrillID, added, removed, changed))
		m.in.Patched = nil
	}
	if m.in.Exported != nil {
		m.setStatus(fmt.Sprintf("copied %q subtree", m.in.Exported.Name))
		m.in.Exported = nil
	}
	m.clampCursor()
	return m.tickCmd()
}

func (m *Model) clampCursor() {
	n := len(visibleRows(m.in))
	if m.cursor >= n {
		m.cursor = n - 1
	}
	if m.cursor < 0 {
		m.cursor = 0
	}
}

func (m *Model) current() *model.Node {
	rows := visibleRows(m.in)
	if m.cursor < 0 || m.cursor >= len(rows) {
		return nil
	}
	return rows[m.cursor].node
}

func (m *Model) handleKey(msg tea.KeyMsg) tea.Cmd {
	switch {
	case key.Matches(msg, m.keys.Quit):
		return tea.Quit
	case key.Matches(msg, m.keys.Up):
		m.cursor--
	case key.Matches(msg, m.keys.Down):
		m.cursor++
	case key.Matches(msg, m.keys.PointerLeft):
		m.pointer.X -= m.opts.PointerStep
	case key.Matches(msg, m.keys.PointerRight):
		m.pointer.X += m.opts.PointerStep
	case key.Matches(msg, m.keys.PointerUp):
		m.pointer.Y -= m.opts.PointerStep
	case key.Matches(msg, m.keys.PointerDown):
		m.pointer.Y += m.opts.PointerStep
	case key.Matches(msg, m.keys.Pause):
		if m.in.TogglePause() {
			m.setStatus("paused")
		} else {
			m.setStatus("resumed")
		}
	case key.Matches(msg, m.keys.Refresh):
		m.in.Refresh()
		m.setStatus("refreshing")
	case key.Matches(msg, m.keys.Apps):
		m.report(m.in.ResolveApps())
	default:
		m.nodeKey(msg)
	}
	m.clampCursor()
	return nil
}

// nodeKey handles the bindings that act on the node under the cursor.
func (m *Model) nodeKey(msg tea.KeyMsg) {
	n := m.current()
	if n == nil {
		return
	}
	id := n.DrillID
	switch {
	case key.Matches(msg, m.keys.Expand):
		m.report(m.in.Expand(id))
	case key.Matches(msg, m.keys.Collapse):
		if m.in.IsOpen(id) && (len(n.Children) > 0 || !n.Expanded) {
			m.report(m.in.Collapse(id))
		} else if i := m.parentRow(); i >= 0 {
			m.cursor = i
		}
	case key.Matches(msg, m.keys.Toggle):
		if m.in.IsOpen(id) {
			m.report(m.in.Collapse(id))
		} else {
			m.report(m.in.Expand(id))
		}
	case key.Matches(msg, m.keys.PointerToNode):
		b := n.Bounds
		m.pointer = inspector.Point{X: b[0] + b[2]/2, Y: b[1] + b[3]/2}
	case key.Matches(msg, m.keys.ClickLeft):
		m.click(id, platform.MouseLeft)
	case key.Matches(msg, m.keys.ClickRight):
		m.click(id, platform.MouseRight)
	case key.Matches(msg, m.keys.ClickMiddle):
		m.click(id, platform.MouseMiddle)
	case key.Matches(msg, m.keys.Export):
		m.report(m.in.Export(id, true))
	case key.Matches(msg, m.keys.Patch):
		m.report(m.in.Patch(id))
	}
}

func (m *Model) click(id model.DrillID, button platform.MouseButton) {
	if err := m.in.Click(id, button); err != nil {
		m.report(err)
		return
	}
	m.setStatus(fmt.Sprintf("%s click sent to %s", button, id))
}

// parentRow finds the row of the cursor node's parent, or -1.
func (m *Model) parentRow() int {
	rows := visibleRows(m.in)
	if m.cursor <= 0 || m.cursor >= len(rows) {
		return -1
	}
	depth := rows[m.cursor].depth
	for i := m.cursor - 1; i >= 0; i-- {
		if rows[i].depth < depth {
			return i
		}
	}
	return -1
}

func (m *Model) report(err error) {
	switch {
	case err == nil:
	case errors.Is(err, bridge.ErrChannelFull):
		m.setStatus("busy, try again")
	default:
		m.setError(err)
	}
}

func (m *Model) setStatus(s string) {
	m.status = s
	m.failed = false
}

func (m *Model) setError(err error) {
	m.status = err.Error()
	m.failed = true
}

// View implements tea.Model.
func (m *Model) View() string {
	var b strings.Builder
	b.WriteString(titleStyle.Render("ui-inspector"))
	b.WriteByte('\n')

	rows := visibleRows(m.in)
	if len(rows) == 0 {
		b.WriteString("  waiting for the first capture…\n")
	}
	var cursorNode *model.Node
	if m.cursor >= 0 && m.cursor < len(rows) {
		cursorNode = rows[m.cursor].node
	}
	for _, r := range m.window(rows) {
		b.WriteString(m.renderRow(r, r.node == cursorNode))
		b.WriteByte('\n')
	}

	state := "live"
	if m.in.Paused {
		state = "paused"
	}
	if m.in.InFlight {
		state += " · capturing"
	}
	if m.in.PendingClick() {
		state += " · click pending"
	}
	bar := fmt.Sprintf("pointer %d,%d · %s · cooldown %s", m.pointer.X, m.pointer.Y, state, m.in.Cooldown())
	b.WriteString(statusBarStyle.Render(bar))
	b.WriteByte('\n')
	if m.status != "" {
		if m.failed {
			b.WriteString(errorStyle.Render(m.status))
		} else {
			b.WriteString(m.status)
		}
		b.WriteByte('\n')
	}
	if len(m.in.Apps) > 0 {
		names := make([]string, len(m.in.Apps))
		for i, a := range m.in.Apps {
			names[i] = fmt.Sprintf("%s (%s)", a.Name, a.Kind)
		}
		b.WriteString("apps: " + strings.Join(names, ", "))
		b.WriteByte('\n')
	}

	var help []string
	for _, k := range m.keys.help() {
		h := k.Help()
		help = append(help, h.Key+" "+h.Desc)
	}
	b.WriteString(helpStyle.Render(strings.Join(help, " · ")))
	return b.String()
}

// window returns the rows that fit the terminal, keeping the cursor in view.
func (m *Model) window(rows []row) []row {
	limit := m.height - 6
	if m.height == 0 || limit <= 0 || len(rows) <= limit {
		return rows
	}
	start := m.cursor - limit/2
	if start < 0 {
		start = 0
	}
	if start+limit > len(rows) {
		start = len(rows) - limit
	}
	return rows[start : start+limit]
}

func (m *Model) renderRow(r row, selected bool) string {
	marker := "  "
	switch {
	case r.loading:
		marker = "… "
	case r.open && r.node.Expanded && len(r.node.Children) > 0:
		marker = "▾ "
	case !r.node.Expanded || len(r.node.Children) > 0:
		marker = "▸ "
	}
	label := fmt.Sprintf("%s%s%s %q [%s]", strings.Repeat("  ", r.depth), marker, r.node.ControlType, r.node.Name, r.node.DrillID)

	if selected {
		return selectedStyle.Render(label)
	}
	if r.node.DrillID.Equal(m.in.Selected) {
		return hoverStyle.Render(label)
	}
	return label
}
