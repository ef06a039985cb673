package tui

import (
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/san-kum/extrema/internal/analysis"
	"github.com/san-kum/extrema/internal/calculus"
	"github.com/san-kum/extrema/internal/engine"
	"github.com/san-kum/extrema/internal/storage"
)

func newTestApp(t *testing.T, function, rng string) model {
	t.Helper()
	a := analysis.New(engine.New(nil), calculus.DefaultConfig())
	return *NewInteractiveApp(a, storage.New(t.TempDir()), function, rng)
}

func press(t *testing.T, m model, key tea.KeyMsg) (model, tea.Cmd) {
	t.Helper()
	next, cmd := m.Update(key)
	nm, ok := next.(model)
	if !ok {
		t.Fatalf("unexpected model type %T", next)
	}
	return nm, cmd
}

// run executes cmd and feeds its message back, as the program loop would.
func run(t *testing.T, m model, cmd tea.Cmd) model {
	t.Helper()
	if cmd == nil {
		t.Fatal("expected a command")
	}
	next, _ := m.Update(cmd())
	return next.(model)
}

func TestAnalyzeFlow(t *testing.T) {
	m := newTestApp(t, "x^2 - 4x", "-10, 10")

	m, cmd := press(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	if !m.running {
		t.Error("expected analysis to be running")
	}
	m = run(t, m, cmd)

	if m.state != stateResult {
		t.Fatalf("expected result state, got %v", m.state)
	}
	if m.err != nil {
		t.Fatalf("unexpected error: %v", m.err)
	}
	if m.report.Derivative != "2 * x - 4" {
		t.Errorf("expected 2 * x - 4, got %s", m.report.Derivative)
	}
	if m.surface.Last() == "" {
		t.Error("expected the curve to be drawn")
	}
	view := m.View()
	if !strings.Contains(view, "Critical point found at x = ") {
		t.Error("expected the calculation log in the view")
	}
	if !strings.Contains(view, "Maximum value: 140") {
		t.Error("expected the maximum in the view")
	}

	m, cmd = press(t, m, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("s")})
	m = run(t, m, cmd)
	if !strings.HasPrefix(m.status, "saved run ") {
		t.Errorf("expected save status, got %q", m.status)
	}

	m, _ = press(t, m, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("e")})
	if m.state != stateInput {
		t.Errorf("expected input state after edit, got %v", m.state)
	}
}

func TestDegenerateFunction(t *testing.T) {
	m := newTestApp(t, "3x + 1", "")
	m, cmd := press(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	m = run(t, m, cmd)

	if m.err == nil {
		t.Fatal("expected degenerate error")
	}
	if !strings.Contains(m.View(), "The derivative is a constant or zero") {
		t.Error("expected degenerate message")
	}
	if m.surface.Last() != "" {
		t.Error("expected a cleared surface")
	}
}

func TestInvalidRange(t *testing.T) {
	m := newTestApp(t, "x^2", "1, 2, 3")
	m, cmd := press(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	m = run(t, m, cmd)

	if !strings.Contains(m.View(), "invalid range format") {
		t.Errorf("expected range error, got %v", m.err)
	}
}

func TestPresetSelection(t *testing.T) {
	m := newTestApp(t, "", "")
	m, _ = press(t, m, tea.KeyMsg{Type: tea.KeyCtrlP})
	if m.state != statePresets {
		t.Fatalf("expected presets state, got %v", m.state)
	}

	m, _ = press(t, m, tea.KeyMsg{Type: tea.KeyDown})
	m, _ = press(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	if m.state != stateInput {
		t.Fatalf("expected input state, got %v", m.state)
	}

	want := m.presets[1]
	if got := m.inputs[fieldFunction].Value(); got == "" {
		t.Errorf("expected preset %s to fill the function", want)
	}
	if got := m.inputs[fieldRange].Value(); !strings.Contains(got, ",") {
		t.Errorf("expected a range, got %q", got)
	}
}

func TestFocusCycle(t *testing.T) {
	m := newTestApp(t, "x", "")
	m, _ = press(t, m, tea.KeyMsg{Type: tea.KeyTab})
	if m.focus != fieldRange || !m.inputs[fieldRange].Focused() || m.inputs[fieldFunction].Focused() {
		t.Error("expected focus on the range input")
	}
	m, _ = press(t, m, tea.KeyMsg{Type: tea.KeyTab})
	if m.focus != fieldFunction {
		t.Error("expected focus to wrap around")
	}
}

func TestWindowResize(t *testing.T) {
	m := newTestApp(t, "x", "")
	next, _ := m.Update(tea.WindowSizeMsg{Width: 120, Height: 40})
	m = next.(model)
	if w, h := m.surface.Size(); w != 108 || h != 24 {
		t.Errorf("expected 108x24 surface, got %dx%d", w, h)
	}
}
