// Copyright (c) 2026 Andrey Kriulin
// Licensed under the MIT License.
// See the LICENSE file in the project root for full license text.

// Package grid provides the regular 2D scalar grids consumed and produced by
// the tessellation interpolator, together with their row/col <-> x,y
// geometry and area-of-interest filters.
package grid

import (
	"errors"
	"fmt"
	"math"

	"github.com/golang/geo/r2"
	"github.com/golang/geo/s1"
)

// Transform maps grid indices to world coordinates and back.
type Transform interface {
	// XY returns the world coordinates of the center of cell (row, col).
	XY(row, col int) r2.Point
	// RowCol returns the fractional row and column of a world point.
	RowCol(p r2.Point) (row, col float64)
}

// Grid is a 2D array of scalars with a null marker.
type Grid interface {
	Transform

	NumRows() int
	NumCols() int
	Value(row, col int) float64
	IsNull(row, col int) bool
	NullValue() float64
	// Corners returns the centers of the four corner cells in the order
	// (0,0), (0,cols-1), (rows-1,cols-1), (rows-1,0).
	Corners() [4]r2.Point
}

// Geometry is an affine, possibly rotated, grid layout. Columns advance
// along the axis at Rotation from +x, rows along the axis 90 degrees
// counter-clockwise from it.
type Geometry struct {
	Origin     r2.Point
	ColSpacing float64
	RowSpacing float64
	Rotation   s1.Angle
}

// Validate reports whether the geometry can be inverted.
func (g Geometry) Validate() error {
	if g.ColSpacing == 0 || math.IsNaN(g.ColSpacing) || math.IsInf(g.ColSpacing, 0) {
		return fmt.Errorf("grid: invalid column spacing %v", g.ColSpacing)
	}
	if g.RowSpacing == 0 || math.IsNaN(g.RowSpacing) || math.IsInf(g.RowSpacing, 0) {
		return fmt.Errorf("grid: invalid row spacing %v", g.RowSpacing)
	}
	return nil
}

func (g Geometry) colAxis() r2.Point {
	rad := g.Rotation.Radians()
	return r2.Point{X: math.Cos(rad), Y: math.Sin(rad)}
}

// XY implements Transform.
func (g Geometry) XY(row, col int) r2.Point {
	u := g.colAxis()
	return g.Origin.
		Add(u.Mul(float64(col) * g.ColSpacing)).
		Add(u.Ortho().Mul(float64(row) * g.RowSpacing))
}

// RowCol implements Transform.
func (g Geometry) RowCol(p r2.Point) (row, col float64) {
	u := g.colAxis()
	d := p.Sub(g.Origin)
	return d.Dot(u.Ortho()) / g.RowSpacing, d.Dot(u) / g.ColSpacing
}

// Dense is an in-memory row-major Grid.
type Dense struct {
	Transform

	rows, cols int
	null       float64
	values     []float64
}

// NewDense returns a rows x cols grid with every cell set to null.
func NewDense(rows, cols int, xf Transform, null float64) (*Dense, error) {
	if rows <= 0 || cols <= 0 {
		return nil, fmt.Errorf("grid: invalid dimensions %dx%d", rows, cols)
	}
	if xf == nil {
		return nil, errors.New("grid: nil transform")
	}
	if geom, ok := xf.(Geometry); ok {
		if err := geom.Validate(); err != nil {
			return nil, err
		}
	}
	d := &Dense{
		Transform: xf,
		rows:      rows,
		cols:      cols,
		null:      null,
		values:    make([]float64, rows*cols),
	}
	for i := range d.values {
		d.values[i] = null
	}
	return d, nil
}

// NewDenseFromValues returns a grid backed by a copy of the row-major values.
func NewDenseFromValues(rows, cols int, xf Transform, null float64, values []float64) (*Dense, error) {
	d, err := NewDense(rows, cols, xf, null)
	if err != nil {
		return nil, err
	}
	if len(values) != rows*cols {
		return nil, fmt.Errorf("grid: got %d values, want %d", len(values), rows*cols)
	}
	copy(d.values, values)
	return d, nil
}

// Copy returns a Dense grid holding the same geometry, null marker and
// values as g.
func Copy(g Grid) *Dense {
	if d, ok := g.(*Dense); ok {
		return d.Clone()
	}
	rows, cols := g.NumRows(), g.NumCols()
	d := &Dense{
		Transform: g,
		rows:      rows,
		cols:      cols,
		null:      g.NullValue(),
		values:    make([]float64, rows*cols),
	}
	for r, nr := 0, rows; r < nr; r++ {
		for c, nc := 0, cols; c < nc; c++ {
			d.values[r*cols+c] = g.Value(r, c)
		}
	}
	return d
}

// Clone returns an independent copy of d.
func (d *Dense) Clone() *Dense {
	c := *d
	c.values = make([]float64, len(d.values))
	copy(c.values, d.values)
	return &c
}

func (d *Dense) NumRows() int { return d.rows }

func (d *Dense) NumCols() int { return d.cols }

func (d *Dense) NullValue() float64 { return d.null }

func (d *Dense) index(row, col int) int {
	if row < 0 || row >= d.rows || col < 0 || col >= d.cols {
		panic(fmt.Sprintf("grid: cell (%d, %d) out of range [0 %d)x[0 %d)", row, col, d.rows, d.cols))
	}
	return row*d.cols + col
}

func (d *Dense) Value(row, col int) float64 {
	return d.values[d.index(row, col)]
}

// IsNull reports whether the cell holds the null marker. NaN cells are
// always null.
func (d *Dense) IsNull(row, col int) bool {
	v := d.values[d.index(row, col)]
	return math.IsNaN(v) || v == d.null
}

// Set writes a cell value.
func (d *Dense) Set(row, col int, v float64) {
	d.values[d.index(row, col)] = v
}

// SetNull clears a cell to the null marker.
func (d *Dense) SetNull(row, col int) {
	d.Set(row, col, d.null)
}

// Values returns the row-major backing slice.
func (d *Dense) Values() []float64 {
	return d.values
}

func (d *Dense) Corners() [4]r2.Point {
	return Corners(d)
}

// Corners computes the corner cell centers of a rows x cols layout.
func Corners(g interface {
	Transform
	NumRows() int
	NumCols() int
}) [4]r2.Point {
	lr, lc := g.NumRows()-1, g.NumCols()-1
	return [4]r2.Point{
		g.XY(0, 0),
		g.XY(0, lc),
		g.XY(lr, lc),
		g.XY(lr, 0),
	}
}

// NullCount returns the number of null cells in g.
func NullCount(g Grid) int {
	n := 0
	for r, nr := 0, g.NumRows(); r < nr; r++ {
		for c, nc := 0, g.NumCols(); c < nc; c++ {
			if g.IsNull(r, c) {
				n++
			}
		}
	}
	return n
}
