// Copyright (c) 2026 Andrey Kriulin
// Licensed under the MIT License.
// See the LICENSE file in the project root for full license text.

package tessgrid

import (
	"fmt"
	"math"

	"github.com/2dChan/tessgrid/grid"
	"github.com/golang/geo/r2"
)

// Sample is a valid grid cell lifted to a point with value Z.
type Sample struct {
	// P is the cell center in world coordinates.
	P r2.Point
	// N is P mapped into the unit square by a Normalizer.
	N        r2.Point
	Z        float64
	Row, Col int
}

// CollectSamples returns one sample per non-null cell whose center is
// accepted by aoi, in row-major order. A nil aoi accepts every cell.
func CollectSamples(g grid.Grid, aoi grid.AreaOfInterest) []Sample {
	samples, _ := collectSamples(g, aoi, NopMonitor{})
	return samples
}

func collectSamples(g grid.Grid, aoi grid.AreaOfInterest, m Monitor) ([]Sample, bool) {
	rows, cols := g.NumRows(), g.NumCols()
	m.BeginTask(TaskExtract, rows)

	var samples []Sample
	for r, nr := 0, rows; r < nr; r++ {
		if m.IsCanceled() {
			return samples, true
		}
		for c, nc := 0, cols; c < nc; c++ {
			if g.IsNull(r, c) {
				continue
			}
			p := g.XY(r, c)
			if aoi != nil && !aoi.Contains(p) {
				continue
			}
			samples = append(samples, Sample{P: p, Z: g.Value(r, c), Row: r, Col: c})
		}
		m.Worked(1)
	}
	return samples, false
}

// Normalizer maps the bounding box of a grid onto the unit square.
type Normalizer struct {
	bounds r2.Rect
	size   r2.Point
}

// NewNormalizer bounds all four corners, so rotated grids are covered. It
// fails with ErrInvalidGeometry if the box has zero width or height.
func NewNormalizer(corners [4]r2.Point) (*Normalizer, error) {
	b := r2.RectFromPoints(corners[:]...)
	size := b.Size()
	if !(size.X > 0) || !(size.Y > 0) || math.IsInf(size.X, 0) || math.IsInf(size.Y, 0) {
		return nil, fmt.Errorf("%w: bounding box %v has extent %v", ErrInvalidGeometry, b, size)
	}
	return &Normalizer{bounds: b, size: size}, nil
}

func (n *Normalizer) Bounds() r2.Rect {
	return n.bounds
}

// Normalize maps a world point into the unit square.
func (n *Normalizer) Normalize(p r2.Point) r2.Point {
	d := p.Sub(n.bounds.Lo())
	return r2.Point{X: d.X / n.size.X, Y: d.Y / n.size.Y}
}

// Denormalize is the inverse of Normalize.
func (n *Normalizer) Denormalize(p r2.Point) r2.Point {
	return n.bounds.Lo().Add(r2.Point{X: p.X * n.size.X, Y: p.Y * n.size.Y})
}

// Normalize sets N on every sample using the bounding box of corners.
func Normalize(samples []Sample, corners [4]r2.Point) (*Normalizer, error) {
	n, err := NewNormalizer(corners)
	if err != nil {
		return nil, err
	}
	for i := range samples {
		samples[i].N = n.Normalize(samples[i].P)
	}
	return n, nil
}
