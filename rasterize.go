// Copyright (c) 2026 Andrey Kriulin
// Licensed under the MIT License.
// See the LICENSE file in the project root for full license text.

package tessgrid

import (
	"context"
	"errors"
	"fmt"
	"math"

	"github.com/2dChan/tessgrid/grid"
	"github.com/golang/geo/r1"
	"golang.org/x/sync/errgroup"
)

// chunksPerWorker controls how finely facets are split between workers.
const chunksPerWorker = 4

var errCanceled = errors.New("tessgrid: canceled")

// Rasterizer fills null cells of a grid from the planes of TIN facets.
// A cell is written at most once: the facet with the lowest index that
// covers it wins, whatever the number of workers.
type Rasterizer struct {
	AOI            grid.AreaOfInterest
	PlaneTolerance float64
	Workers        int
	Monitor        Monitor
}

type claim struct {
	cell int
	v    float64
}

type chunk struct {
	lo, hi int
	claims []claim
	done   bool
}

// Rasterize writes into out every null cell of in that lies inside a facet
// and the AOI. out must have the dimensions of in and should start as a
// copy of it. It returns the number of cells written and whether the
// monitor canceled the pass.
func (r *Rasterizer) Rasterize(tin *TIN, in grid.Grid, out *grid.Dense) (int, bool, error) {
	if in.NumRows() != out.NumRows() || in.NumCols() != out.NumCols() {
		return 0, false, fmt.Errorf("tessgrid: output grid is %dx%d, want %dx%d",
			out.NumRows(), out.NumCols(), in.NumRows(), in.NumCols())
	}
	m := r.Monitor
	if m == nil {
		m = NopMonitor{}
	}
	m.BeginTask(TaskFill, tin.NumFacets())

	filled := make([]bool, in.NumRows()*in.NumCols())
	if r.Workers <= 1 || tin.NumFacets() < 2 {
		return r.rasterizeSequential(tin, in, out, filled, m)
	}
	return r.rasterizeParallel(tin, in, out, filled, m)
}

func (r *Rasterizer) rasterizeSequential(tin *TIN, in grid.Grid, out *grid.Dense, filled []bool, m Monitor) (int, bool, error) {
	cols := in.NumCols()
	n := 0
	for i, ni := 0, tin.NumFacets(); i < ni; i++ {
		if m.IsCanceled() {
			return n, true, nil
		}
		r.scan(tin.Facet(i), in, filled, func(cell int, v float64) {
			filled[cell] = true
			out.Set(cell/cols, cell%cols, v)
			n++
		})
		m.Worked(1)
	}
	return n, false, nil
}

func (r *Rasterizer) rasterizeParallel(tin *TIN, in grid.Grid, out *grid.Dense, filled []bool, m Monitor) (int, bool, error) {
	chunks := splitChunks(tin.NumFacets(), r.Workers*chunksPerWorker)

	g, ctx := errgroup.WithContext(context.Background())
	g.SetLimit(r.Workers)
	for ci := range chunks {
		ch := &chunks[ci]
		g.Go(func() error {
			for i := ch.lo; i < ch.hi; i++ {
				if ctx.Err() != nil || m.IsCanceled() {
					return errCanceled
				}
				// filled is only read here; it is written after Wait.
				r.scan(tin.Facet(i), in, filled, func(cell int, v float64) {
					ch.claims = append(ch.claims, claim{cell: cell, v: v})
				})
			}
			ch.done = true
			return nil
		})
	}
	err := g.Wait()
	canceled := errors.Is(err, errCanceled)
	if err != nil && !canceled {
		return 0, false, err
	}

	// Merge in facet order so the first writer matches the sequential pass.
	cols := in.NumCols()
	n := 0
	for _, ch := range chunks {
		if !ch.done {
			break
		}
		for _, c := range ch.claims {
			if filled[c.cell] {
				continue
			}
			filled[c.cell] = true
			out.Set(c.cell/cols, c.cell%cols, c.v)
			n++
		}
		m.Worked(ch.hi - ch.lo)
	}
	return n, canceled, nil
}

// scan emits every cell the facet may write.
func (r *Rasterizer) scan(f Facet, in grid.Grid, filled []bool, emit func(cell int, v float64)) {
	rows, cols := in.NumRows(), in.NumCols()
	rowIv, colIv := cellRange(f, in, rows, cols)

	var (
		plane     Plane
		planeOK   bool
		planeDone bool
	)
	for row := int(rowIv.Lo); row <= int(rowIv.Hi); row++ {
		for col := int(colIv.Lo); col <= int(colIv.Hi); col++ {
			cell := row*cols + col
			if filled[cell] || !in.IsNull(row, col) {
				continue
			}
			p := in.XY(row, col)
			if !f.Contains(p) {
				continue
			}
			if r.AOI != nil && !r.AOI.Contains(p) {
				continue
			}
			if !planeDone {
				plane, planeOK = f.Plane(r.PlaneTolerance)
				planeDone = true
			}
			if !planeOK {
				return
			}
			emit(cell, plane.At(p))
		}
	}
}

// cellRange converts the facet's world bounding box into an index range
// grown by one cell on each side and clamped to the grid.
func cellRange(f Facet, xf grid.Transform, rows, cols int) (r1.Interval, r1.Interval) {
	rowIv, colIv := r1.EmptyInterval(), r1.EmptyInterval()
	for _, v := range f.Bound().Vertices() {
		row, col := xf.RowCol(v)
		rowIv = rowIv.AddPoint(row)
		colIv = colIv.AddPoint(col)
	}
	rowBounds := r1.Interval{Lo: 0, Hi: float64(rows - 1)}
	colBounds := r1.Interval{Lo: 0, Hi: float64(cols - 1)}
	rowIv = r1.Interval{
		Lo: rowBounds.ClampPoint(math.Floor(rowIv.Lo) - 1),
		Hi: rowBounds.ClampPoint(math.Ceil(rowIv.Hi) + 1),
	}
	colIv = r1.Interval{
		Lo: colBounds.ClampPoint(math.Floor(colIv.Lo) - 1),
		Hi: colBounds.ClampPoint(math.Ceil(colIv.Hi) + 1),
	}
	return rowIv, colIv
}

// splitChunks splits [0, n) into at most parts contiguous chunks.
func splitChunks(n, parts int) []chunk {
	if parts > n {
		parts = n
	}
	if parts < 1 {
		return nil
	}
	size := (n + parts - 1) / parts
	chunks := make([]chunk, 0, parts)
	for lo := 0; lo < n; lo += size {
		chunks = append(chunks, chunk{lo: lo, hi: min(lo+size, n)})
	}
	return chunks
}
