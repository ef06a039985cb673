package plot

import (
	"math"
	"strings"

	"github.com/san-kum/extrema/internal/analysis"
)

// Braille Patterns: 2x4 dots
// 1 4
// 2 5
// 3 6
// 7 8
//
// Unicode offset 0x2800
var pixelMap = [4][2]int{
	{0x1, 0x8},
	{0x2, 0x10},
	{0x4, 0x20},
	{0x40, 0x80},
}

const blank = 0x2800

// Canvas is a braille grid with Width*2 by Height*4 addressable dots.
type Canvas struct {
	Width, Height int
	Grid          [][]rune
}

func NewCanvas(w, h int) *Canvas {
	if w < 1 {
		w = 1
	}
	if h < 1 {
		h = 1
	}
	c := &Canvas{
		Width:  w,
		Height: h,
		Grid:   make([][]rune, h),
	}
	for i := range c.Grid {
		c.Grid[i] = make([]rune, w)
	}
	c.Clear()
	return c
}

// Set lights the dot at sub-pixel (x, y); out-of-range dots are ignored.
func (c *Canvas) Set(x, y int) {
	if x < 0 || y < 0 {
		return
	}
	col, row := x/2, y/4
	if col >= c.Width || row >= c.Height {
		return
	}
	c.Grid[row][col] |= rune(pixelMap[y%4][x%2])
}

func (c *Canvas) Unset(x, y int) {
	if x < 0 || y < 0 {
		return
	}
	col, row := x/2, y/4
	if col >= c.Width || row >= c.Height {
		return
	}
	c.Grid[row][col] &^= rune(pixelMap[y%4][x%2])
	if c.Grid[row][col] < blank {
		c.Grid[row][col] = blank
	}
}

func (c *Canvas) Clear() {
	for i := range c.Grid {
		for j := range c.Grid[i] {
			c.Grid[i][j] = blank
		}
	}
}

// DrawLine draws a line using Bresenham's algorithm
func (c *Canvas) DrawLine(x0, y0, x1, y1 int) {
	dx := absInt(x1 - x0)
	dy := absInt(y1 - y0)
	sx := -1
	if x0 < x1 {
		sx = 1
	}
	sy := -1
	if y0 < y1 {
		sy = 1
	}
	err := dx - dy

	for {
		c.Set(x0, y0)
		if x0 == x1 && y0 == y1 {
			break
		}
		e2 := 2 * err
		if e2 > -dy {
			err -= dy
			x0 += sx
		}
		if e2 < dx {
			err += dx
			y0 += sy
		}
	}
}

// Mark draws a small cross centred on sub-pixel (x, y).
func (c *Canvas) Mark(x, y int) {
	c.Set(x, y)
	c.Set(x-1, y)
	c.Set(x+1, y)
	c.Set(x, y-1)
	c.Set(x, y+1)
}

func (c *Canvas) String() string {
	var b strings.Builder
	for _, row := range c.Grid {
		b.WriteString(string(row) + "\n")
	}
	return b.String()
}

// project maps a point in b onto canvas sub-pixels, y growing downwards.
func (c *Canvas) project(b Bounds, x, y float64) (int, int) {
	w := float64(c.Width*2 - 1)
	h := float64(c.Height*4 - 1)
	px := (x - b.MinX) / b.spanX() * w
	py := h - (y-b.MinY)/b.spanY()*h
	return int(math.Round(px)), int(math.Round(py))
}

// PlotCurve connects consecutive samples. A jump in x wider than twice the
// first spacing marks a hole in the domain and is left open.
func (c *Canvas) PlotCurve(pts []analysis.Point, b Bounds) {
	if len(pts) == 0 {
		return
	}
	gap := math.Inf(1)
	if len(pts) > 1 {
		gap = 2 * (pts[1].X - pts[0].X)
	}
	px, py := c.project(b, pts[0].X, pts[0].Y)
	c.Set(px, py)
	for i := 1; i < len(pts); i++ {
		x, y := c.project(b, pts[i].X, pts[i].Y)
		if pts[i].X-pts[i-1].X > gap {
			c.Set(x, y)
		} else {
			c.DrawLine(px, py, x, y)
		}
		px, py = x, y
	}
}

func absInt(x int) int {
	if x < 0 {
		return -x
	}
	return x
}
