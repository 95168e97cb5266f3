// Copyright (c) 2026 Andrey Kriulin
// Licensed under the MIT License.
// See the LICENSE file in the project root for full license text.

package delaunay

import (
	"errors"

	"github.com/golang/geo/r2"
	"github.com/golang/geo/r3"
	"github.com/markus-wa/quickhull-go/v2"
)

// Reference computes the Delaunay triangulation of points in general
// position as the lower convex hull of the points lifted onto the paraboloid
// z = x^2 + y^2. It is independent of the incremental Triangulator and is
// used to cross-check it. Triangles are returned counter-clockwise.
func Reference(points []r2.Point, eps float64) ([][3]int, error) {
	if len(points) < 4 {
		return nil,
			errors.New("delaunay: insufficient points for reference triangulation (minimum 4 required)")
	}
	if eps <= 0 {
		eps = defaultEps
	}

	lifted := make([]r3.Vector, len(points))
	var centroid r3.Vector
	for i, p := range points {
		lifted[i] = r3.Vector{X: p.X, Y: p.Y, Z: p.X*p.X + p.Y*p.Y}
		centroid = centroid.Add(lifted[i])
	}
	centroid = centroid.Mul(1 / float64(len(points)))

	qh := new(quickhull.QuickHull)
	ch := qh.ConvexHull(lifted, true, true, eps)
	if len(ch.Indices)%3 != 0 {
		return nil, errors.New("delaunay: inconsistent number of indices returned from QuickHull")
	}

	var tris [][3]int
	for i := 0; i < len(ch.Indices); i += 3 {
		t := [3]int{ch.Indices[i], ch.Indices[i+1], ch.Indices[i+2]}
		a, b, c := lifted[t[0]], lifted[t[1]], lifted[t[2]]
		n := b.Sub(a).Cross(c.Sub(a))
		// Orient the normal away from the hull interior.
		if n.Dot(centroid.Sub(a)) > 0 {
			n = n.Mul(-1)
		}
		if n.Z >= 0 {
			continue
		}
		pa, pb, pc := points[t[0]], points[t[1]], points[t[2]]
		if pb.Sub(pa).Cross(pc.Sub(pa)) < 0 {
			t[1], t[2] = t[2], t[1]
		}
		tris = append(tris, t)
	}
	return tris, nil
}
