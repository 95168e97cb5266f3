// Copyright (c) 2026 Andrey Kriulin
// Licensed under the MIT License.
// See the LICENSE file in the project root for full license text.

package tessgrid

import (
	"fmt"
	"math"

	"github.com/golang/geo/r2"
	"github.com/golang/geo/r3"
)

// TIN is a triangulated irregular network over grid samples.
type TIN struct {
	Samples []Sample
	// NOTE: CCW per triangle in normalized coordinates.
	Triangles [][3]int
}

func (t *TIN) NumFacets() int {
	return len(t.Triangles)
}

func (t *TIN) Facet(i int) Facet {
	if i < 0 || i >= len(t.Triangles) {
		panic("Facet: index out of range")
	}
	return Facet{idx: i, tin: t}
}

// Facet is a view structure for accessing a triangle of a TIN.
type Facet struct {
	idx int
	tin *TIN
}

// Index returns the index of the facet in the TIN's Triangles.
func (f Facet) Index() int {
	return f.idx
}

// VertexIndices returns the indices of the facet's samples.
func (f Facet) VertexIndices() [3]int {
	return f.tin.Triangles[f.idx]
}

// Vertex returns the sample at the specified corner.
// It returns an error if the index is out of range.
func (f Facet) Vertex(i int) (Sample, error) {
	if i < 0 || i >= 3 {
		return Sample{}, fmt.Errorf("Vertex: index %d out of range [0 3)", i)
	}
	return f.tin.Samples[f.tin.Triangles[f.idx][i]], nil
}

func (f Facet) points() (r2.Point, r2.Point, r2.Point) {
	t := f.tin.Triangles[f.idx]
	s := f.tin.Samples
	return s[t[0]].P, s[t[1]].P, s[t[2]].P
}

// Bound returns the world bounding box of the facet.
func (f Facet) Bound() r2.Rect {
	a, b, c := f.points()
	return r2.RectFromPoints(a, b, c)
}

// Contains reports whether p lies inside the facet or on its boundary, in
// world coordinates.
func (f Facet) Contains(p r2.Point) bool {
	a, b, c := f.points()
	d1 := b.Sub(a).Cross(p.Sub(a))
	d2 := c.Sub(b).Cross(p.Sub(b))
	d3 := a.Sub(c).Cross(p.Sub(c))
	return (d1 >= 0 && d2 >= 0 && d3 >= 0) || (d1 <= 0 && d2 <= 0 && d3 <= 0)
}

// Plane is the plane through the three lifted vertices of a facet.
type Plane struct {
	Origin r3.Vector
	Normal r3.Vector
}

// At evaluates the plane height at p.
func (pl Plane) At(p r2.Point) float64 {
	n := pl.Normal
	return pl.Origin.Z - (n.X*(p.X-pl.Origin.X)+n.Y*(p.Y-pl.Origin.Y))/n.Z
}

// Plane returns the plane through the facet's vertices. It reports false
// when the facet is flat in plan view, that is when the z component of the
// normal is within tol of zero relative to the edge lengths.
func (f Facet) Plane(tol float64) (Plane, bool) {
	t := f.tin.Triangles[f.idx]
	s := f.tin.Samples
	a := lift(s[t[0]])
	e1 := lift(s[t[1]]).Sub(a)
	e2 := lift(s[t[2]]).Sub(a)
	n := e1.Cross(e2)
	l1 := math.Hypot(e1.X, e1.Y)
	l2 := math.Hypot(e2.X, e2.Y)
	if math.Abs(n.Z) <= tol*l1*l2 {
		return Plane{}, false
	}
	return Plane{Origin: a, Normal: n}, true
}

func lift(s Sample) r3.Vector {
	return r3.Vector{X: s.P.X, Y: s.P.Y, Z: s.Z}
}
