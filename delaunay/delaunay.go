// Copyright (c) 2026 Andrey Kriulin
// Licensed under the MIT License.
// See the LICENSE file in the project root for full license text.

// Package delaunay implements incremental (Bowyer-Watson) Delaunay
// triangulation of planar points normalized to the unit square.
package delaunay

import (
	"errors"
	"fmt"
	"math"

	"github.com/golang/geo/r2"
)

const (
	defaultEps        = 1e-12
	defaultSuperScale = 1e4
)

// ErrDegenerateGeometry is returned when a point cannot be inserted because
// it duplicates an existing vertex or would create a zero-area triangle, and
// when no triangle can be formed from the inserted points at all.
var ErrDegenerateGeometry = errors.New("delaunay: degenerate geometry")

// superTriangle is the seed triangle for points in the unit square. Its
// circumcenter is (2, 2) with squared radius 18.
var superTriangle = [3]r2.Point{{X: -1, Y: -1}, {X: 5, Y: -1}, {X: -1, Y: 5}}

// Vertex is a mesh vertex. The three seed vertices are Synthetic.
type Vertex struct {
	r2.Point
	Synthetic bool
	// Index is the position of the point among the inserted points, or -1
	// for synthetic vertices.
	Index int
}

type TriangulationOptions struct {
	Eps        float64
	SuperScale float64
}

type TriangulationOption func(*TriangulationOptions) error

// WithEps sets the relative tolerance below which a circumcircle solve is
// treated as singular.
func WithEps(eps float64) TriangulationOption {
	return func(o *TriangulationOptions) error {
		if eps <= 0 || math.IsNaN(eps) {
			return fmt.Errorf("WithEps: eps must be positive, got %v", eps)
		}
		o.Eps = eps
		return nil
	}
}

// WithSuperScale scales the seed triangle about the center of the unit
// square. A scale of 1 gives the classic (-1,-1), (5,-1), (-1,5) seed.
func WithSuperScale(scale float64) TriangulationOption {
	return func(o *TriangulationOptions) error {
		if !(scale >= 1) || math.IsInf(scale, 0) {
			return fmt.Errorf("WithSuperScale: scale must be a finite value >= 1, got %v", scale)
		}
		o.SuperScale = scale
		return nil
	}
}

// Triangulator builds a Delaunay triangulation one point at a time.
type Triangulator struct {
	opts     TriangulationOptions
	vertices []Vertex
	points   []r2.Point
	mesh     Mesh

	edges     *edgeSet
	destroyed []int
	boundary  [][2]int
	pending   []Triangle
}

// New returns a Triangulator seeded with the super-triangle.
func New(setters ...TriangulationOption) (*Triangulator, error) {
	opts := TriangulationOptions{
		Eps:        defaultEps,
		SuperScale: defaultSuperScale,
	}
	for _, set := range setters {
		if err := set(&opts); err != nil {
			return nil, err
		}
	}

	t := &Triangulator{
		opts:  opts,
		edges: newEdgeSet(),
	}
	mid := r2.Point{X: 0.5, Y: 0.5}
	for _, p := range superTriangle {
		t.vertices = append(t.vertices, Vertex{
			Point:     mid.Add(p.Sub(mid).Mul(opts.SuperScale)),
			Synthetic: true,
			Index:     -1,
		})
	}
	seed, ok := t.triangle(0, 1, 2)
	if !ok {
		return nil, fmt.Errorf("%w: singular seed triangle", ErrDegenerateGeometry)
	}
	t.mesh.add(seed)
	return t, nil
}

// Insert adds p to the triangulation and returns its index among the
// inserted points. If the point is degenerate the error wraps
// ErrDegenerateGeometry and the mesh is left unchanged.
func (t *Triangulator) Insert(p r2.Point) (int, error) {
	if math.IsNaN(p.X) || math.IsNaN(p.Y) || math.IsInf(p.X, 0) || math.IsInf(p.Y, 0) {
		return -1, fmt.Errorf("delaunay: non-finite point %v", p)
	}
	if !t.insideSeed(p) {
		return -1, fmt.Errorf("%w: point %v lies outside the seed triangle", ErrDegenerateGeometry, p)
	}

	t.edges.reset()
	t.destroyed = t.destroyed[:0]
	for h, ok := range t.mesh.alive {
		if !ok {
			continue
		}
		tri := t.mesh.tris[h]
		if !tri.CircumcircleContains(p) {
			continue
		}
		t.destroyed = append(t.destroyed, h)
		t.edges.add(tri.V[0], tri.V[1])
		t.edges.add(tri.V[1], tri.V[2])
		t.edges.add(tri.V[2], tri.V[0])
	}

	t.boundary = t.edges.boundary(t.boundary)
	if len(t.boundary) == 0 {
		return -1, fmt.Errorf("%w: point %v lies on an existing vertex", ErrDegenerateGeometry, p)
	}

	// Stage the new vertex so the cavity can be solved before anything
	// is committed.
	vi := len(t.vertices)
	t.vertices = append(t.vertices, Vertex{Point: p, Index: len(t.points)})
	t.pending = t.pending[:0]
	for _, ab := range t.boundary {
		tri, ok := t.triangle(ab[0], ab[1], vi)
		if !ok {
			t.vertices = t.vertices[:vi]
			return -1, fmt.Errorf("%w: point %v is collinear with edge (%v, %v)",
				ErrDegenerateGeometry, p, t.vertices[ab[0]].Point, t.vertices[ab[1]].Point)
		}
		t.pending = append(t.pending, tri)
	}

	for _, h := range t.destroyed {
		t.mesh.release(h)
	}
	for _, tri := range t.pending {
		t.mesh.add(tri)
	}
	t.points = append(t.points, p)
	return len(t.points) - 1, nil
}

// insideSeed reports whether p lies strictly inside the seed triangle.
func (t *Triangulator) insideSeed(p r2.Point) bool {
	a, b, c := t.vertices[0].Point, t.vertices[1].Point, t.vertices[2].Point
	d1 := b.Sub(a).Cross(p.Sub(a))
	d2 := c.Sub(b).Cross(p.Sub(b))
	d3 := a.Sub(c).Cross(p.Sub(c))
	return (d1 > 0 && d2 > 0 && d3 > 0) || (d1 < 0 && d2 < 0 && d3 < 0)
}

// triangle builds the triangle (a, b, c) with its circumcircle, where c is
// the apex shared by both bisector equations. It reports false when the
// 2x2 system is singular.
func (t *Triangulator) triangle(a, b, c int) (Triangle, bool) {
	pa, pb, pc := t.vertices[a].Point, t.vertices[b].Point, t.vertices[c].Point
	center, rsq, ok := circumcircle(pa, pb, pc, t.opts.Eps)
	if !ok {
		return Triangle{}, false
	}
	if pb.Sub(pa).Cross(pc.Sub(pa)) < 0 {
		a, b = b, a
	}
	return Triangle{V: [3]int{a, b, c}, Center: center, RadiusSq: rsq}, true
}

// circumcircle solves the perpendicular-bisector equations of (a, p) and
// (b, p) for the circumcenter, relative to p.
func circumcircle(a, b, p r2.Point, eps float64) (r2.Point, float64, bool) {
	da := a.Sub(p)
	db := b.Sub(p)
	det := da.Cross(db)
	if math.Abs(det) <= eps*da.Norm()*db.Norm() {
		return r2.Point{}, 0, false
	}
	ra := da.Dot(da) / 2
	rb := db.Dot(db) / 2
	c := r2.Point{
		X: (ra*db.Y - rb*da.Y) / det,
		Y: (da.X*rb - db.X*ra) / det,
	}
	return p.Add(c), c.Dot(c), true
}

// NumPoints returns the number of inserted points.
func (t *Triangulator) NumPoints() int {
	return len(t.points)
}

// Mesh returns the working mesh, including triangles with synthetic
// vertices.
func (t *Triangulator) Mesh() *Mesh {
	return &t.mesh
}

func (t *Triangulator) Vertex(vIdx int) Vertex {
	if vIdx < 0 || vIdx >= len(t.vertices) {
		panic("Vertex: vIdx out of range")
	}
	return t.vertices[vIdx]
}

// Triangles drops every triangle with a synthetic vertex and returns the
// rest, in ascending handle order, as indices into the inserted points.
// It fails with ErrDegenerateGeometry when three or more points were
// inserted but none of them form a triangle.
func (t *Triangulator) Triangles() ([][3]int, error) {
	var out [][3]int
	for _, h := range t.mesh.Handles() {
		tri := t.mesh.tris[h]
		var r [3]int
		keep := true
		for i, v := range tri.V {
			if t.vertices[v].Synthetic {
				keep = false
				break
			}
			r[i] = t.vertices[v].Index
		}
		if keep {
			out = append(out, r)
		}
	}
	if len(out) == 0 && len(t.points) >= 3 {
		return nil, fmt.Errorf("%w: all %d points are collinear", ErrDegenerateGeometry, len(t.points))
	}
	return out, nil
}

// Triangulation returns the finished triangulation of the inserted points.
func (t *Triangulator) Triangulation() (*Triangulation, error) {
	tris, err := t.Triangles()
	if err != nil {
		return nil, err
	}
	pts := make([]r2.Point, len(t.points))
	copy(pts, t.points)
	return &Triangulation{Points: pts, Triangles: tris}, nil
}

// Triangulation is a Delaunay triangulation over real points only.
type Triangulation struct {
	Points []r2.Point
	// NOTE: CCW per triangle.
	Triangles [][3]int
}

// NewTriangulation inserts every point in order and fails on the first
// degenerate one.
func NewTriangulation(points []r2.Point, setters ...TriangulationOption) (*Triangulation, error) {
	t, err := New(setters...)
	if err != nil {
		return nil, err
	}
	for i, p := range points {
		if _, err := t.Insert(p); err != nil {
			return nil, fmt.Errorf("point %d: %w", i, err)
		}
	}
	return t.Triangulation()
}

func (dt *Triangulation) TriangleVertices(tIdx int) (r2.Point, r2.Point, r2.Point) {
	if tIdx < 0 || tIdx >= len(dt.Triangles) {
		panic("TriangleVertices: tIdx out of bounds")
	}
	tri := dt.Triangles[tIdx]
	return dt.Points[tri[0]], dt.Points[tri[1]], dt.Points[tri[2]]
}

func PrevVertex(t [3]int, vIdx int) int {
	switch vIdx {
	case t[0]:
		return t[2]
	case t[1]:
		return t[0]
	case t[2]:
		return t[1]
	}
	panic("PrevVertex: vIdx not in triangle")
}

func NextVertex(t [3]int, vIdx int) int {
	switch vIdx {
	case t[0]:
		return t[1]
	case t[1]:
		return t[2]
	case t[2]:
		return t[0]
	}
	panic("NextVertex: vIdx not in triangle")
}
