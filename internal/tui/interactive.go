package tui

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/san-kum/extrema/internal/analysis"
	"github.com/san-kum/extrema/internal/config"
	"github.com/san-kum/extrema/internal/expr"
	"github.com/san-kum/extrema/internal/plot"
	"github.com/san-kum/extrema/internal/storage"
)

var (
	cyan    = lipgloss.NewStyle().Foreground(lipgloss.Color("86"))
	white   = lipgloss.NewStyle().Foreground(lipgloss.Color("255"))
	dim     = lipgloss.NewStyle().Foreground(lipgloss.Color("242"))
	dimmer  = lipgloss.NewStyle().Foreground(lipgloss.Color("238"))
	green   = lipgloss.NewStyle().Foreground(lipgloss.Color("82"))
	yellow  = lipgloss.NewStyle().Foreground(lipgloss.Color("220"))
	magenta = lipgloss.NewStyle().Foreground(lipgloss.Color("213"))
)

type state int

const (
	stateInput state = iota
	statePresets
	stateResult
)

const (
	fieldFunction = iota
	fieldRange
)

type model struct {
	state state

	analyzer *analysis.Analyzer
	store    *storage.Store
	surface  *plot.Surface

	inputs []textinput.Model
	focus  int

	presets []string
	cursor  int

	running bool
	report  *analysis.Report
	err     error
	status  string

	width  int
	height int
}

type analysisMsg struct {
	report *analysis.Report
	err    error
}

type savedMsg struct {
	id  string
	err error
}

// NewInteractiveApp builds the front end around a ready analyzer. store may
// be nil, in which case saving is disabled.
func NewInteractiveApp(a *analysis.Analyzer, store *storage.Store, function, rng string) *model {
	fn := textinput.New()
	fn.Placeholder = "x^2 - 4x"
	fn.Prompt = "f(x) = "
	fn.CharLimit = 256
	fn.Width = 48
	fn.SetValue(function)
	fn.Focus()

	r := textinput.New()
	r.Placeholder = "-10, 10"
	r.Prompt = "range  "
	r.CharLimit = 64
	r.Width = 24
	r.SetValue(rng)

	return &model{
		state:    stateInput,
		analyzer: a,
		store:    store,
		surface:  plot.NewSurface(60, 12),
		inputs:   []textinput.Model{fn, r},
		presets:  config.ListPresets(),
		width:    80,
		height:   24,
	}
}

func (m model) Init() tea.Cmd { return textinput.Blink }

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.resizeSurface()
		return m, nil
	case analysisMsg:
		m.running = false
		m.report = msg.report
		m.err = msg.err
		m.status = ""
		m.state = stateResult
		if m.report != nil && !m.report.Degenerate {
			m.surface.Draw(m.report.Curve, m.report.Stationary)
		} else {
			m.surface.Reset()
		}
		return m, nil
	case savedMsg:
		if msg.err != nil {
			m.status = "save failed: " + msg.err.Error()
		} else {
			m.status = "saved run " + msg.id
		}
		return m, nil
	}

	if m.state == stateInput {
		var cmd tea.Cmd
		m.inputs[m.focus], cmd = m.inputs[m.focus].Update(msg)
		return m, cmd
	}
	return m, nil
}

func (m model) handleKey(msg tea.KeyMsg) (model, tea.Cmd) {
	if msg.String() == "ctrl+c" {
		return m, tea.Quit
	}
	switch m.state {
	case stateInput:
		return m.inputKey(msg)
	case statePresets:
		return m.presetKey(msg)
	case stateResult:
		return m.resultKey(msg)
	}
	return m, nil
}

func (m model) inputKey(msg tea.KeyMsg) (model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		return m, tea.Quit
	case "tab", "shift+tab", "up", "down":
		m.focus = (m.focus + 1) % len(m.inputs)
		m.updateFocus()
		return m, nil
	case "ctrl+p":
		m.state = statePresets
		return m, nil
	case "enter":
		if m.running {
			return m, nil
		}
		m.running = true
		m.status = "analyzing..."
		return m, m.analyze()
	}

	var cmd tea.Cmd
	m.inputs[m.focus], cmd = m.inputs[m.focus].Update(msg)
	return m, cmd
}

func (m model) presetKey(msg tea.KeyMsg) (model, tea.Cmd) {
	switch msg.String() {
	case "q", "esc":
		m.state = stateInput
	case "up", "k":
		if m.cursor > 0 {
			m.cursor--
		}
	case "down", "j":
		if m.cursor < len(m.presets)-1 {
			m.cursor++
		}
	case "enter", " ":
		p := config.GetPreset(m.presets[m.cursor])
		m.inputs[fieldFunction].SetValue(p.Function)
		m.inputs[fieldRange].SetValue(fmt.Sprintf("%s, %s",
			expr.FormatNumber(p.Range.Lo), expr.FormatNumber(p.Range.Hi)))
		m.state = stateInput
		m.focus = fieldFunction
		m.updateFocus()
	}
	return m, nil
}

func (m model) resultKey(msg tea.KeyMsg) (model, tea.Cmd) {
	switch msg.String() {
	case "q":
		return m, tea.Quit
	case "e", "esc", "enter":
		m.state = stateInput
		m.status = ""
		m.updateFocus()
	case "p":
		m.state = statePresets
	case "s":
		if m.store == nil || m.report == nil || m.err != nil {
			return m, nil
		}
		return m, m.save()
	}
	return m, nil
}

func (m *model) updateFocus() {
	for i := range m.inputs {
		if i == m.focus {
			m.inputs[i].Focus()
		} else {
			m.inputs[i].Blur()
		}
	}
}

func (m *model) resizeSurface() {
	w := m.width - 12
	h := m.height - 16
	if w < 30 {
		w = 30
	}
	if h < 6 {
		h = 6
	}
	m.surface.Resize(w, h)
	if m.report != nil && !m.report.Degenerate {
		m.surface.Draw(m.report.Curve, m.report.Stationary)
	}
}

// analyze captures the inputs now so later edits do not race the command.
func (m model) analyze() tea.Cmd {
	a := m.analyzer
	function := m.inputs[fieldFunction].Value()
	rng := m.inputs[fieldRange].Value()
	return func() tea.Msg {
		iv, err := analysis.ParseInterval(rng)
		if err != nil {
			return analysisMsg{err: err}
		}
		report, err := a.Run(context.Background(), analysis.Request{Function: function, Interval: &iv})
		return analysisMsg{report: report, err: err}
	}
}

func (m model) save() tea.Cmd {
	st, report := m.store, m.report
	return func() tea.Msg {
		if err := st.Init(); err != nil {
			return savedMsg{err: err}
		}
		id, err := st.Save(report)
		return savedMsg{id: id, err: err}
	}
}

func (m model) View() string {
	switch m.state {
	case stateInput:
		return m.viewInput()
	case statePresets:
		return m.viewPresets()
	case stateResult:
		return m.viewResult()
	}
	return ""
}

func (m model) header() string {
	var b strings.Builder
	b.WriteString("\n")
	b.WriteString(dimmer.Render("    ╺━━━━━━━━━━━━━━━━━━━━━━━━╸") + "\n")
	b.WriteString("           " + cyan.Render("e x t r e m a") + "\n")
	b.WriteString(dimmer.Render("    ╺━━━━━━━━━━━━━━━━━━━━━━━━╸") + "\n")
	b.WriteString("\n")
	return b.String()
}

func (m model) viewInput() string {
	var b strings.Builder
	b.WriteString(m.header())

	for i, in := range m.inputs {
		marker := "  "
		if i == m.focus {
			marker = cyan.Render("▸ ")
		}
		b.WriteString("    " + marker + in.View() + "\n")
	}

	if m.status != "" {
		b.WriteString("\n      " + yellow.Render(m.status) + "\n")
	}

	b.WriteString("\n")
	b.WriteString(dim.Render("      tab switch   enter analyze   ctrl+p presets   esc quit") + "\n")
	return b.String()
}

func (m model) viewPresets() string {
	var b strings.Builder
	b.WriteString(m.header())

	for i, name := range m.presets {
		p := config.GetPreset(name)
		if i == m.cursor {
			b.WriteString("      " + cyan.Render("▸ ") + white.Render(fmt.Sprintf("%-12s", name)) +
				magenta.Render(fmt.Sprintf("%-18s", p.Function)) + dim.Render(p.Description) + "\n")
		} else {
			b.WriteString("        " + dim.Render(fmt.Sprintf("%-12s", name)) +
				dim.Render(fmt.Sprintf("%-18s", p.Function)) + dimmer.Render(p.Description) + "\n")
		}
	}

	b.WriteString("\n")
	b.WriteString(dim.Render("      ↑↓ select   enter use   esc back") + "\n")
	return b.String()
}

func (m model) viewResult() string {
	var b strings.Builder
	b.WriteString(m.header())

	if m.err != nil {
		msg := m.err.Error()
		switch {
		case errors.Is(m.err, analysis.ErrDegenerateDerivative):
			msg = "The derivative is a constant or zero. There are no critical points. Please try a different function."
		case errors.Is(m.err, analysis.ErrInvalidInterval):
			msg = "Error: " + msg
		case errors.Is(m.err, analysis.ErrInvalidExpression):
			msg = "Invalid expression: " + msg
		default:
			msg = "An error occurred: " + msg
		}
		if m.report != nil {
			b.WriteString("      " + dim.Render("f'(x) = ") + white.Render(m.report.Derivative) + "\n\n")
		}
		b.WriteString("      " + plot.ErrorText.Render(msg) + "\n")
		b.WriteString("\n" + dim.Render("      e edit   p presets   q quit") + "\n")
		return b.String()
	}

	r := m.report
	b.WriteString("      " + dim.Render("f(x)  = ") + white.Render(r.Function) + "\n")
	b.WriteString("      " + dim.Render("f'(x) = ") + white.Render(r.Derivative) + "\n")
	b.WriteString("      " + dim.Render("range   ") + white.Render(r.Interval.String()) + "\n\n")

	for _, line := range r.Log {
		b.WriteString("      " + green.Render(line) + "\n")
	}
	for _, f := range r.Failures {
		b.WriteString("      " + yellow.Render(fmt.Sprintf("skipped x = %s: %s", expr.FormatNumber(f.Candidate), f.Reason)) + "\n")
	}
	b.WriteString("\n")

	b.WriteString(plot.Panel.Render(m.surface.Last()) + "\n")

	if m.status != "" {
		b.WriteString("      " + yellow.Render(m.status) + "\n")
	}
	hint := "      e edit   p presets   q quit"
	if m.store != nil {
		hint = "      e edit   s save   p presets   q quit"
	}
	b.WriteString(dim.Render(hint) + "\n")
	return b.String()
}

func RunInteractive(a *analysis.Analyzer, store *storage.Store, function, rng string) error {
	p := tea.NewProgram(NewInteractiveApp(a, store, function, rng), tea.WithAltScreen())
	_, err := p.Run()
	return err
}
