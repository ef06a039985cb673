package plot

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/san-kum/extrema/internal/analysis"
)

var (
	Panel = lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color("#444466")).
		Padding(0, 1)

	Title = lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color("#00ffff"))

	Subtle = lipgloss.NewStyle().
		Foreground(lipgloss.Color("#666688"))

	Label = lipgloss.NewStyle().
		Foreground(lipgloss.Color("#888899"))

	Value = lipgloss.NewStyle().
		Foreground(lipgloss.Color("#00ccff")).
		Bold(true)

	KeyHint = lipgloss.NewStyle().
		Foreground(lipgloss.Color("#666688")).
		Italic(true)

	ErrorText = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#ff4444"))

	CurveStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#00ff88"))
	MinStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#00ccff")).Bold(true)
	MaxStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#ff00ff")).Bold(true)
	FlatStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#ffaa00")).Bold(true)
)

// KindStyle picks the highlight for a stationary point.
func KindStyle(k analysis.Kind) lipgloss.Style {
	switch k {
	case analysis.Minimum:
		return MinStyle
	case analysis.Maximum:
		return MaxStyle
	default:
		return FlatStyle
	}
}

func Separator(width int) string {
	if width < 8 {
		width = 8
	}
	mid := width / 2
	left := strings.Repeat("─", mid-3)
	right := strings.Repeat("─", width-mid-3)
	return Subtle.Render(left + " ◆ " + right)
}
