package plot

import (
	"fmt"

	"github.com/guptarohit/asciigraph"

	"github.com/san-kum/extrema/internal/analysis"
	"github.com/san-kum/extrema/internal/calculus"
)

type ChartOptions struct {
	Width     int
	Height    int
	Caption   string
	Precision uint
}

func DefaultChartOptions() ChartOptions {
	return ChartOptions{Width: 80, Height: 15, Precision: 2}
}

// Chart renders the sampled y values as an ASCII line chart. It returns an
// empty string when there is nothing to draw.
func Chart(curve []analysis.Point, opts ChartOptions) string {
	if len(curve) == 0 {
		return ""
	}
	data := make([]float64, len(curve))
	for i, p := range curve {
		data[i] = p.Y
	}
	if opts.Width <= 0 {
		opts.Width = DefaultChartOptions().Width
	}
	if opts.Height <= 0 {
		opts.Height = DefaultChartOptions().Height
	}
	return asciigraph.Plot(data,
		asciigraph.Height(opts.Height),
		asciigraph.Width(opts.Width),
		asciigraph.Caption(opts.Caption),
		asciigraph.Precision(opts.Precision),
	)
}

// Caption describes a report's curve for a chart footer.
func Caption(r *analysis.Report) string {
	iv := r.Interval
	if len(r.Curve) > 0 {
		iv = calculus.Interval{Lo: r.Curve[0].X, Hi: r.Curve[len(r.Curve)-1].X}
	}
	return fmt.Sprintf("f(x) = %s on %s", r.Function, iv)
}
