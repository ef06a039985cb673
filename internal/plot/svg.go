package plot

import (
	"fmt"
	"strings"

	"github.com/san-kum/extrema/internal/analysis"
)

var markColors = map[analysis.Kind]string{
	analysis.Minimum: "#00ccff",
	analysis.Maximum: "#ff00ff",
	analysis.Flat:    "#ffaa00",
}

// CurveSVG draws curve as a polyline and each stationary point as a filled
// circle. Holes in the sampled domain start a new subpath.
func CurveSVG(curve []analysis.Point, marks []analysis.StationaryPoint, width, height int, strokeColor string) string {
	if len(curve) < 2 {
		return ""
	}

	b := BoundsOf(curve).Pad(0.1)
	project := func(x, y float64) (float64, float64) {
		return (x - b.MinX) / b.spanX() * float64(width),
			float64(height) - (y-b.MinY)/b.spanY()*float64(height)
	}

	var sb strings.Builder

	sb.WriteString(fmt.Sprintf(`<?xml version="1.0" encoding="UTF-8"?>
<svg xmlns="http://www.w3.org/2000/svg" width="%d" height="%d" viewBox="0 0 %d %d">
<rect width="100%%" height="100%%" fill="#0a0a0a"/>
<path fill="none" stroke="%s" stroke-width="1.5" d="`,
		width, height, width, height, strokeColor))

	gap := 2 * (curve[1].X - curve[0].X)
	for i, p := range curve {
		x, y := project(p.X, p.Y)
		switch {
		case i == 0:
			sb.WriteString(fmt.Sprintf("M%.1f,%.1f", x, y))
		case p.X-curve[i-1].X > gap:
			sb.WriteString(fmt.Sprintf(" M%.1f,%.1f", x, y))
		default:
			sb.WriteString(fmt.Sprintf(" L%.1f,%.1f", x, y))
		}
	}
	sb.WriteString("\"/>\n")

	for _, m := range marks {
		x, y := project(m.X, m.Y)
		sb.WriteString(fmt.Sprintf(`<circle cx="%.1f" cy="%.1f" r="4" fill="%s"><title>%s at x = %g</title></circle>
`, x, y, markColors[m.Kind], m.Kind, m.X))
	}

	sb.WriteString("</svg>")
	return sb.String()
}
