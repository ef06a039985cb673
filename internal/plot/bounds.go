package plot

import (
	"gonum.org/v1/gonum/floats"

	"github.com/san-kum/extrema/internal/analysis"
)

type Bounds struct {
	MinX, MaxX float64
	MinY, MaxY float64
}

// BoundsOf returns the bounding box of pts, the zero Bounds when empty.
func BoundsOf(pts []analysis.Point) Bounds {
	if len(pts) == 0 {
		return Bounds{}
	}
	xs := make([]float64, len(pts))
	ys := make([]float64, len(pts))
	for i, p := range pts {
		xs[i], ys[i] = p.X, p.Y
	}
	return Bounds{
		MinX: floats.Min(xs), MaxX: floats.Max(xs),
		MinY: floats.Min(ys), MaxY: floats.Max(ys),
	}
}

// Pad grows each side by frac of its span.
func (b Bounds) Pad(frac float64) Bounds {
	dx, dy := b.spanX()*frac, b.spanY()*frac
	return Bounds{MinX: b.MinX - dx, MaxX: b.MaxX + dx, MinY: b.MinY - dy, MaxY: b.MaxY + dy}
}

func (b Bounds) spanX() float64 {
	if s := b.MaxX - b.MinX; s > 0 {
		return s
	}
	return 1
}

func (b Bounds) spanY() float64 {
	if s := b.MaxY - b.MinY; s > 0 {
		return s
	}
	return 1
}
