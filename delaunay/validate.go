// Copyright (c) 2026 Andrey Kriulin
// Licensed under the MIT License.
// See the LICENSE file in the project root for full license text.

package delaunay

import (
	"fmt"

	"github.com/golang/geo/r2"
	"gonum.org/v1/gonum/floats/scalar"
)

const validateTol = 1e-9

// HullSize returns the number of distinct vertices on the boundary of the
// triangulated region.
func (dt *Triangulation) HullSize() int {
	count := make(map[edge]int, 3*len(dt.Triangles))
	for _, tri := range dt.Triangles {
		count[newEdge(tri[0], tri[1])]++
		count[newEdge(tri[1], tri[2])]++
		count[newEdge(tri[2], tri[0])]++
	}
	hull := make(map[int]struct{})
	for e, n := range count {
		if n == 1 {
			hull[e.a] = struct{}{}
			hull[e.b] = struct{}{}
		}
	}
	return len(hull)
}

// Validate performs sanity checks on the triangulation: every triangle is
// counter-clockwise with positive area, the triangle count satisfies the
// Euler relation 2n-2-h, and no point lies strictly inside any
// circumcircle. It is meant for debugging and is O(n*t).
func (dt *Triangulation) Validate() error {
	used := make(map[int]struct{}, len(dt.Points))
	for i, tri := range dt.Triangles {
		for _, v := range tri {
			if v < 0 || v >= len(dt.Points) {
				return fmt.Errorf("delaunay: triangle %d references point %d out of range", i, v)
			}
			used[v] = struct{}{}
		}
		a, b, c := dt.TriangleVertices(i)
		if b.Sub(a).Cross(c.Sub(a)) <= 0 {
			return fmt.Errorf("delaunay: triangle %d is not counter-clockwise", i)
		}
	}

	n, h := len(used), dt.HullSize()
	if want := 2*n - 2 - h; len(dt.Triangles) != want {
		return fmt.Errorf("delaunay: %d triangles over %d points with %d on the hull, want %d",
			len(dt.Triangles), n, h, want)
	}

	for i := range dt.Triangles {
		a, b, c := dt.TriangleVertices(i)
		center, rsq, ok := circumcircle(a, b, c, defaultEps)
		if !ok {
			return fmt.Errorf("delaunay: triangle %d is degenerate", i)
		}
		for j, p := range dt.Points {
			if _, ok := used[j]; !ok {
				continue
			}
			d := p.Sub(center)
			dsq := d.Dot(d)
			if dsq < rsq && !scalar.EqualWithinRel(dsq, rsq, validateTol) {
				return fmt.Errorf("delaunay: point %d lies inside the circumcircle of triangle %d", j, i)
			}
		}
	}
	return nil
}

// Area returns the total area of the triangles.
func (dt *Triangulation) Area() float64 {
	var sum float64
	for i := range dt.Triangles {
		a, b, c := dt.TriangleVertices(i)
		sum += triangleArea(a, b, c)
	}
	return sum
}

func triangleArea(a, b, c r2.Point) float64 {
	return b.Sub(a).Cross(c.Sub(a)) / 2
}
