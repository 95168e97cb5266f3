// Copyright (c) 2026 Andrey Kriulin
// Licensed under the MIT License.
// See the LICENSE file in the project root for full license text.

// Package render draws grids and triangulations as SVG.
package render

import (
	"fmt"
	"io"
	"math"

	"github.com/2dChan/tessgrid"
	"github.com/2dChan/tessgrid/grid"
	svg "github.com/ajstarks/svgo"
	"github.com/golang/geo/r2"
)

const (
	margin = 20

	backgroundStyle = "fill:rgb(255,255,255)"
	polygonStyle    = "fill:none;stroke:rgb(170,170,170);stroke-width:1;stroke-opacity:1.0"
	sampleStyle     = "fill:rgb(0,0,255)"
	nullStyle       = "fill:none;stroke:rgb(200,200,200);stroke-width:1"
	filledStroke    = "stroke:rgb(0,0,0);stroke-width:1"
)

// Canvas maps world coordinates onto an SVG document. The y axis points up.
type Canvas struct {
	*svg.SVG

	bounds        r2.Rect
	scale         float64
	width, height int
}

// New starts an SVG document on w covering bounds, width pixels wide.
// Call End when done.
func New(w io.Writer, bounds r2.Rect, width int) (*Canvas, error) {
	size := bounds.Size()
	if bounds.IsEmpty() || !(size.X > 0) || !(size.Y > 0) {
		return nil, fmt.Errorf("render: empty bounds %v", bounds)
	}
	if width <= 2*margin {
		return nil, fmt.Errorf("render: width %d too small", width)
	}
	scale := float64(width-2*margin) / size.X
	height := int(math.Ceil(size.Y*scale)) + 2*margin

	c := &Canvas{
		SVG:    svg.New(w),
		bounds: bounds,
		scale:  scale,
		width:  width,
		height: height,
	}
	c.Start(width, height)
	c.Rect(0, 0, width, height, backgroundStyle)
	return c, nil
}

// Size returns the document size in pixels.
func (c *Canvas) Size() (int, int) {
	return c.width, c.height
}

func (c *Canvas) PointToScreen(p r2.Point) (int, int) {
	d := p.Sub(c.bounds.Lo())
	x := margin + d.X*c.scale
	y := float64(c.height-margin) - d.Y*c.scale
	return int(math.Round(x)), int(math.Round(y))
}

// TIN draws every facet outline and sample of tin.
func (c *Canvas) TIN(tin *tessgrid.TIN) {
	xPoints := make([]int, 3)
	yPoints := make([]int, 3)
	for i, ni := 0, tin.NumFacets(); i < ni; i++ {
		f := tin.Facet(i)
		for j, nj := 0, 3; j < nj; j++ {
			s, err := f.Vertex(j)
			if err != nil {
				panic(err)
			}
			xPoints[j], yPoints[j] = c.PointToScreen(s.P)
		}
		c.Polygon(xPoints, yPoints, polygonStyle)
	}
	for _, s := range tin.Samples {
		x, y := c.PointToScreen(s.P)
		c.Circle(x, y, 2, sampleStyle)
	}
}

// Grid draws the cells of out colored by value. Cells that are null in out
// are drawn as empty circles; cells that were null in in but not in out
// are outlined.
func (c *Canvas) Grid(in, out grid.Grid) {
	lo, hi := valueRange(out)
	r := c.cellRadius(out)
	for row, nrow := 0, out.NumRows(); row < nrow; row++ {
		for col, ncol := 0, out.NumCols(); col < ncol; col++ {
			x, y := c.PointToScreen(out.XY(row, col))
			if out.IsNull(row, col) {
				c.Circle(x, y, r, nullStyle)
				continue
			}
			style := colorStyle(out.Value(row, col), lo, hi)
			if in.IsNull(row, col) {
				style += ";" + filledStroke
			}
			c.Circle(x, y, r, style)
		}
	}
}

func (c *Canvas) cellRadius(g grid.Grid) int {
	var d float64
	if g.NumCols() > 1 {
		d = g.XY(0, 1).Sub(g.XY(0, 0)).Norm()
	}
	if g.NumRows() > 1 {
		dr := g.XY(1, 0).Sub(g.XY(0, 0)).Norm()
		if d == 0 || dr < d {
			d = dr
		}
	}
	return max(1, int(d*c.scale/2))
}

func valueRange(g grid.Grid) (float64, float64) {
	lo, hi := math.Inf(1), math.Inf(-1)
	for row, nrow := 0, g.NumRows(); row < nrow; row++ {
		for col, ncol := 0, g.NumCols(); col < ncol; col++ {
			if g.IsNull(row, col) {
				continue
			}
			v := g.Value(row, col)
			lo, hi = math.Min(lo, v), math.Max(hi, v)
		}
	}
	return lo, hi
}

// colorStyle maps v linearly from blue at lo to red at hi.
func colorStyle(v, lo, hi float64) string {
	t := 0.5
	if hi > lo {
		t = (v - lo) / (hi - lo)
	}
	red := int(math.Round(255 * t))
	return fmt.Sprintf("fill:rgb(%d,0,%d)", red, 255-red)
}

// Bounds returns the world bounding box of g's cell centers.
func Bounds(g grid.Grid) r2.Rect {
	corners := g.Corners()
	return r2.RectFromPoints(corners[:]...)
}
