package plot

import (
	"fmt"
	"math"
	"strings"

	"github.com/san-kum/extrema/internal/analysis"
	"github.com/san-kum/extrema/internal/expr"
)

// Surface owns one drawing area. Every Draw starts from a cleared canvas so
// a new function never overlays the previous one.
type Surface struct {
	canvas *Canvas
	marks  *Canvas
	kinds  [][]analysis.Kind
	last   string
}

// NewSurface allocates a width x height character surface.
func NewSurface(width, height int) *Surface {
	s := &Surface{}
	s.Resize(width, height)
	return s
}

func (s *Surface) Size() (int, int) { return s.canvas.Width, s.canvas.Height }

// Resize replaces the canvas, dropping whatever was drawn.
func (s *Surface) Resize(width, height int) {
	s.canvas = NewCanvas(width, height)
	s.marks = NewCanvas(width, height)
	s.kinds = make([][]analysis.Kind, s.canvas.Height)
	for i := range s.kinds {
		s.kinds[i] = make([]analysis.Kind, s.canvas.Width)
	}
	s.last = ""
}

func (s *Surface) Reset() {
	s.canvas.Clear()
	s.marks.Clear()
	for i := range s.kinds {
		for j := range s.kinds[i] {
			s.kinds[i][j] = ""
		}
	}
	s.last = ""
}

// Last returns the most recent rendering, empty after Reset.
func (s *Surface) Last() string { return s.last }

// Draw renders curve with a cross at each stationary point, y-range labels
// and a legend.
func (s *Surface) Draw(curve []analysis.Point, marks []analysis.StationaryPoint) string {
	s.Reset()
	if len(curve) == 0 {
		s.last = Subtle.Render("nothing to plot")
		return s.last
	}

	b := BoundsOf(curve).Pad(0.05)
	s.canvas.PlotCurve(curve, b)

	var legend []string
	for _, m := range marks {
		x, y := s.marks.project(b, m.X, m.Y)
		s.marks.Mark(x, y)
		for _, p := range [][2]int{{x, y}, {x - 1, y}, {x + 1, y}, {x, y - 1}, {x, y + 1}} {
			col, row := p[0]/2, p[1]/4
			if p[0] >= 0 && p[1] >= 0 && row < len(s.kinds) && col < len(s.kinds[row]) {
				s.kinds[row][col] = m.Kind
			}
		}
		legend = append(legend, KindStyle(m.Kind).Render(fmt.Sprintf("● %s x = %s", m.Kind, formatTick(m.X))))
	}

	lines := []string{Label.Render(formatTick(b.MaxY))}
	lines = append(lines, s.rows()...)
	lines = append(lines,
		Label.Render(formatTick(b.MinY)),
		Label.Render(fmt.Sprintf("x: %s … %s", formatTick(b.MinX), formatTick(b.MaxX))),
	)
	if len(legend) > 0 {
		lines = append(lines, strings.Join(legend, "  "))
	}
	s.last = strings.Join(lines, "\n")
	return s.last
}

// rows merges curve and mark dots cell by cell, styling runs of cells that
// share an owner.
func (s *Surface) rows() []string {
	out := make([]string, s.canvas.Height)
	for r := 0; r < s.canvas.Height; r++ {
		var b strings.Builder
		var run []rune
		var owner analysis.Kind
		flush := func() {
			if len(run) == 0 {
				return
			}
			style := CurveStyle
			if owner != "" {
				style = KindStyle(owner)
			}
			b.WriteString(style.Render(string(run)))
			run = run[:0]
		}
		for c := 0; c < s.canvas.Width; c++ {
			k := s.kinds[r][c]
			if k != owner {
				flush()
				owner = k
			}
			run = append(run, s.canvas.Grid[r][c]|s.marks.Grid[r][c])
		}
		flush()
		out[r] = b.String()
	}
	return out
}

func formatTick(v float64) string {
	return expr.FormatNumber(math.Round(v*1000) / 1000)
}
