// Copyright (c) 2026 Andrey Kriulin
// Licensed under the MIT License.
// See the LICENSE file in the project root for full license text.

// Package utils provides seeded generators of planar points and synthetic
// grids for tests, benchmarks and examples.

package utils

import (
	"errors"
	"math/rand"

	"github.com/2dChan/tessgrid/grid"
	"github.com/golang/geo/r2"
)

// GenerateRandomPoints generates cnt random points in the unit square.
// The seed parameter ensures reproducibility.
func GenerateRandomPoints(cnt int, seed int64) []r2.Point {
	//nolint:gosec
	random := rand.New(rand.NewSource(seed))
	points := make([]r2.Point, cnt)

	for i, ni := 0, cnt; i < ni; i++ {
		points[i] = r2.Point{X: random.Float64(), Y: random.Float64()}
	}

	return points
}

// Plane is z = A*x + B*y + C.
type Plane struct {
	A, B, C float64
}

// At evaluates the plane at p.
func (pl Plane) At(p r2.Point) float64 {
	return pl.A*p.X + pl.B*p.Y + pl.C
}

// SyntheticGrid describes a grid whose valid cells lie on a plane.
type SyntheticGrid struct {
	Rows, Cols int
	Geometry   grid.Geometry
	Plane      Plane
	Null       float64
	// HoleFraction is the probability that a cell is nulled.
	HoleFraction float64
	Seed         int64
}

// Generate builds the grid. Cells are nulled at random with probability
// HoleFraction; every other cell holds the plane value at its center.
func (s SyntheticGrid) Generate() (*grid.Dense, error) {
	if s.HoleFraction < 0 || s.HoleFraction > 1 {
		return nil, errors.New("utils: hole fraction must be in [0, 1]")
	}
	g, err := grid.NewDense(s.Rows, s.Cols, s.Geometry, s.Null)
	if err != nil {
		return nil, err
	}

	//nolint:gosec
	random := rand.New(rand.NewSource(s.Seed))
	for r, nr := 0, s.Rows; r < nr; r++ {
		for c, nc := 0, s.Cols; c < nc; c++ {
			if random.Float64() < s.HoleFraction {
				continue
			}
			g.Set(r, c, s.Plane.At(g.XY(r, c)))
		}
	}
	return g, nil
}
