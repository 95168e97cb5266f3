// Copyright (c) 2026 Andrey Kriulin
// Licensed under the MIT License.
// See the LICENSE file in the project root for full license text.

package delaunay

import (
	"errors"
	"fmt"
	"math"
	"slices"
	"testing"

	"github.com/2dChan/tessgrid/utils"
	"github.com/golang/geo/r2"
	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
)

// TriangulationOptions

func TestWithEps(t *testing.T) {
	tests := []struct {
		name    string
		eps     float64
		wantErr bool
	}{
		{"eps positive", 0.5, false},
		{"eps zero", 0, true},
		{"eps negative", -1, true},
		{"eps nan", math.NaN(), true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			opts := &TriangulationOptions{Eps: defaultEps}
			opt := WithEps(tt.eps)
			err := opt(opts)
			if (err != nil) != tt.wantErr {
				errValMsg := "nil"
				if tt.wantErr {
					errValMsg = "non-nil"
				}
				t.Errorf("WithEps(%v) error = %v, want %v", tt.eps, err, errValMsg)
			}
			if err == nil && opts.Eps != tt.eps {
				t.Errorf("WithEps(%v) opts.Eps = %v, want %v", tt.eps, opts.Eps, tt.eps)
			}
		})
	}
}

func TestWithSuperScale(t *testing.T) {
	tests := []struct {
		name    string
		scale   float64
		wantErr bool
	}{
		{"classic", 1, false},
		{"large", 1e6, false},
		{"too small", 0.5, true},
		{"nan", math.NaN(), true},
		{"inf", math.Inf(1), true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			opts := &TriangulationOptions{SuperScale: defaultSuperScale}
			err := WithSuperScale(tt.scale)(opts)
			if (err != nil) != tt.wantErr {
				t.Errorf("WithSuperScale(%v) error = %v, wantErr %v", tt.scale, err, tt.wantErr)
			}
			if err == nil && opts.SuperScale != tt.scale {
				t.Errorf("WithSuperScale(%v) opts.SuperScale = %v, want %v", tt.scale, opts.SuperScale, tt.scale)
			}
		})
	}
}

// Triangulator

func TestNew_SeedTriangle(t *testing.T) {
	tr, err := New(WithSuperScale(1))
	if err != nil {
		t.Fatalf("New(WithSuperScale(1)) error = %v, want nil", err)
	}

	if got := tr.Mesh().Len(); got != 1 {
		t.Fatalf("tr.Mesh().Len() = %d, want 1", got)
	}
	for i, ni := 0, 3; i < ni; i++ {
		if v := tr.Vertex(i); !v.Synthetic || v.Index != -1 {
			t.Errorf("tr.Vertex(%d) = %+v, want synthetic with Index -1", i, v)
		}
	}

	seed := tr.Mesh().Triangle(0)
	want := Triangle{V: [3]int{0, 1, 2}, Center: r2.Point{X: 2, Y: 2}, RadiusSq: 18}
	if diff := cmp.Diff(want, seed, cmpopts.EquateApprox(0, 1e-12)); diff != "" {
		t.Errorf("seed triangle mismatch (-want +got):\n%s", diff)
	}
}

func TestInsert_FirstPoint(t *testing.T) {
	tr := mustNew(t)
	idx, err := tr.Insert(r2.Point{X: 0.5, Y: 0.25})
	if err != nil {
		t.Fatalf("tr.Insert(...) error = %v, want nil", err)
	}
	if idx != 0 {
		t.Errorf("tr.Insert(...) = %d, want 0", idx)
	}
	if got := tr.Mesh().Len(); got != 3 {
		t.Errorf("tr.Mesh().Len() = %d, want 3", got)
	}

	tris, err := tr.Triangles()
	if err != nil {
		t.Fatalf("tr.Triangles() error = %v, want nil", err)
	}
	if len(tris) != 0 {
		t.Errorf("tr.Triangles() = %v, want none", tris)
	}
}

func TestInsert_MeshGrowth(t *testing.T) {
	tr := mustNew(t)
	for i, p := range utils.GenerateRandomPoints(200, 1) {
		if _, err := tr.Insert(p); err != nil {
			t.Fatalf("tr.Insert(points[%d]) error = %v, want nil", i, err)
		}
		want := 1 + 2*(i+1)
		if got := tr.Mesh().Len(); got != want {
			t.Fatalf("after %d insertions tr.Mesh().Len() = %d, want %d", i+1, got, want)
		}
		// Released handles are reused before new ones are allocated.
		if got := tr.Mesh().Cap(); got != want {
			t.Fatalf("after %d insertions tr.Mesh().Cap() = %d, want %d", i+1, got, want)
		}
	}
}

func TestInsert_DegenerateLeavesMeshUnchanged(t *testing.T) {
	tests := []struct {
		name    string
		setters []TriangulationOption
		p       r2.Point
	}{
		{"duplicate", nil, r2.Point{X: 0.3, Y: 0.6}},
		{"outside seed", nil, r2.Point{X: 1e9, Y: 1e9}},
		// Outside the classic seed but inside its circumcircle.
		{"outside seed inside circumcircle", []TriangulationOption{WithSuperScale(1)}, r2.Point{X: 5.5, Y: 0}},
		{"on seed edge", []TriangulationOption{WithSuperScale(1)}, r2.Point{X: 2, Y: -1}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tr := mustNew(t, tt.setters...)
			for _, p := range []r2.Point{{X: 0.3, Y: 0.6}, {X: 0.7, Y: 0.2}, {X: 0.9, Y: 0.9}} {
				if _, err := tr.Insert(p); err != nil {
					t.Fatalf("tr.Insert(%v) error = %v, want nil", p, err)
				}
			}
			before := snapshot(tr)

			_, err := tr.Insert(tt.p)
			if !errors.Is(err, ErrDegenerateGeometry) {
				t.Fatalf("tr.Insert(%v) error = %v, want %v", tt.p, err, ErrDegenerateGeometry)
			}
			if diff := cmp.Diff(before, snapshot(tr)); diff != "" {
				t.Errorf("mesh changed after rejected insertion (-want +got):\n%s", diff)
			}
			if got := tr.NumPoints(); got != 3 {
				t.Errorf("tr.NumPoints() = %d, want 3", got)
			}
		})
	}
}

func TestInsert_NonFinite(t *testing.T) {
	tr := mustNew(t)
	if _, err := tr.Insert(r2.Point{X: math.NaN(), Y: 0}); err == nil {
		t.Errorf("tr.Insert(NaN) error = nil, want non-nil")
	}
}

func TestTriangles_Collinear(t *testing.T) {
	tr := mustNew(t)
	for _, p := range []r2.Point{{X: 0.1, Y: 0.1}, {X: 0.5, Y: 0.5}, {X: 0.9, Y: 0.9}} {
		if _, err := tr.Insert(p); err != nil {
			t.Fatalf("tr.Insert(%v) error = %v, want nil", p, err)
		}
	}
	tris, err := tr.Triangles()
	if !errors.Is(err, ErrDegenerateGeometry) {
		t.Errorf("tr.Triangles() error = %v, want %v", err, ErrDegenerateGeometry)
	}
	if len(tris) != 0 {
		t.Errorf("tr.Triangles() = %v, want none", tris)
	}
}

func TestTriangles_NoSyntheticVertices(t *testing.T) {
	tr := mustNew(t)
	points := utils.GenerateRandomPoints(50, 7)
	for _, p := range points {
		if _, err := tr.Insert(p); err != nil {
			t.Fatalf("tr.Insert(%v) error = %v, want nil", p, err)
		}
	}
	tris, err := tr.Triangles()
	if err != nil {
		t.Fatalf("tr.Triangles() error = %v, want nil", err)
	}
	for i, tri := range tris {
		for _, v := range tri {
			if v < 0 || v >= len(points) {
				t.Errorf("tris[%d] = %v references point %d out of range", i, tri, v)
			}
		}
	}
}

// Triangulation

func TestNewTriangulation_Invariants(t *testing.T) {
	tests := []struct {
		name string
		size int
	}{
		{"minimal", 3},
		{"small", 10},
		{"medium", 100},
		{"large", 1000},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dt := mustNewTriangulation(t, tt.size)

			if err := dt.Validate(); err != nil {
				t.Errorf("dt.Validate() error = %v, want nil", err)
			}

			// Euler's formula for a planar triangulation: T = 2n - 2 - h
			want := 2*tt.size - 2 - dt.HullSize()
			if got := len(dt.Triangles); got != want {
				t.Errorf("len(dt.Triangles) = %v, want %v", got, want)
			}
		})
	}
}

func TestNewTriangulation_MatchesReference(t *testing.T) {
	for _, n := range []int{4, 10, 50, 200} {
		t.Run(fmt.Sprintf("N%d", n), func(t *testing.T) {
			points := utils.GenerateRandomPoints(n, int64(n))
			dt, err := NewTriangulation(points)
			if err != nil {
				t.Fatalf("NewTriangulation(...) error = %v, want nil", err)
			}
			ref, err := Reference(points, 0)
			if err != nil {
				t.Fatalf("Reference(...) error = %v, want nil", err)
			}
			if diff := cmp.Diff(canonical(ref), canonical(dt.Triangles)); diff != "" {
				t.Errorf("NewTriangulation(...) mismatch with reference (-want +got):\n%s", diff)
			}
		})
	}
}

func TestNewTriangulation_EmptyCircumcircles(t *testing.T) {
	dt := mustNewTriangulation(t, 60)
	for i := range dt.Triangles {
		a, b, c := dt.TriangleVertices(i)
		center, rsq, ok := circumcircle(a, b, c, defaultEps)
		if !ok {
			t.Fatalf("circumcircle(triangle %d) singular", i)
		}
		tri := Triangle{Center: center, RadiusSq: rsq * (1 - 1e-9)}
		for j, p := range dt.Points {
			if tri.CircumcircleContains(p) {
				t.Errorf("point %d lies inside the circumcircle of triangle %d", j, i)
			}
		}
	}
}

func TestNewTriangulation_Deterministic(t *testing.T) {
	a := mustNewTriangulation(t, 300)
	b := mustNewTriangulation(t, 300)
	if diff := cmp.Diff(a, b); diff != "" {
		t.Errorf("NewTriangulation(...) not deterministic (-want +got):\n%s", diff)
	}
}

func TestNewTriangulation_Duplicate(t *testing.T) {
	points := []r2.Point{{X: 0.1, Y: 0.1}, {X: 0.9, Y: 0.2}, {X: 0.5, Y: 0.8}, {X: 0.9, Y: 0.2}}
	if _, err := NewTriangulation(points); !errors.Is(err, ErrDegenerateGeometry) {
		t.Errorf("NewTriangulation(...) error = %v, want %v", err, ErrDegenerateGeometry)
	}
}

func TestNewTriangulation_JitteredLattice(t *testing.T) {
	const n = 12
	jitter := utils.GenerateRandomPoints(n*n, 5)
	var points []r2.Point
	for r, nr := 0, n; r < nr; r++ {
		for c, nc := 0, n; c < nc; c++ {
			d := jitter[r*n+c].Sub(r2.Point{X: 0.5, Y: 0.5}).Mul(1e-3)
			points = append(points, r2.Point{X: float64(c) / n, Y: float64(r) / n}.Add(d))
		}
	}
	dt, err := NewTriangulation(points)
	if err != nil {
		t.Fatalf("NewTriangulation(lattice) error = %v, want nil", err)
	}
	if err := dt.Validate(); err != nil {
		t.Errorf("dt.Validate() error = %v, want nil", err)
	}
}

func TestTriangulation_Area(t *testing.T) {
	points := []r2.Point{{X: 0, Y: 0}, {X: 1, Y: 0}, {X: 1, Y: 1}, {X: 0, Y: 0.9}}
	dt, err := NewTriangulation(points)
	if err != nil {
		t.Fatalf("NewTriangulation(...) error = %v, want nil", err)
	}
	if got := len(dt.Triangles); got != 2 {
		t.Fatalf("len(dt.Triangles) = %d, want 2", got)
	}
	if got, want := dt.Area(), 0.95; math.Abs(got-want) > 1e-12 {
		t.Errorf("dt.Area() = %v, want %v", got, want)
	}
}

func TestTriangulation_TriangleVertices(t *testing.T) {
	assertPanic := func(dt *Triangulation, in int) {
		defer func() {
			if r := recover(); r == nil {
				t.Errorf("dt.TriangleVertices(%d) did not panic, want panic", in)
			}
		}()
		dt.TriangleVertices(in)
	}

	points := utils.GenerateRandomPoints(3, 0)
	dt := &Triangulation{
		Points: points,
		Triangles: [][3]int{
			{0, 1, 2},
		},
	}

	want := [3]r2.Point{points[0], points[1], points[2]}
	a, b, c := dt.TriangleVertices(0)
	got := [3]r2.Point{a, b, c}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("dt.TriangleVertices(0) mismatch (-want +got):\n%s", diff)
	}

	assertPanic(dt, -1)
	assertPanic(dt, len(dt.Triangles))
}

func TestTriangulation_ValidateRejects(t *testing.T) {
	square := []r2.Point{{X: 0, Y: 0}, {X: 1, Y: 0}, {X: 1, Y: 1}, {X: 0, Y: 0.9}}
	tests := []struct {
		name string
		tris [][3]int
	}{
		// (0,1,2) + (0,2,3) is not Delaunay: point 3 sits inside circle(0,1,2).
		{"non delaunay", [][3]int{{0, 1, 2}, {0, 2, 3}}},
		{"clockwise", [][3]int{{0, 2, 1}, {1, 3, 0}}},
		{"extra triangle", [][3]int{{0, 1, 3}, {1, 2, 3}, {0, 1, 2}}},
		{"out of range", [][3]int{{0, 1, 7}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dt := &Triangulation{Points: square, Triangles: tt.tris}
			if err := dt.Validate(); err == nil {
				t.Errorf("dt.Validate() error = nil, want non-nil")
			}
		})
	}
}

func TestCircumcircle(t *testing.T) {
	tests := []struct {
		name    string
		a, b, p r2.Point
		want    r2.Point
		wantRsq float64
		wantOK  bool
	}{
		{"right triangle", r2.Point{X: 1, Y: 0}, r2.Point{X: 0, Y: 1}, r2.Point{X: 0, Y: 0}, r2.Point{X: 0.5, Y: 0.5}, 0.5, true},
		{"seed", r2.Point{X: -1, Y: -1}, r2.Point{X: 5, Y: -1}, r2.Point{X: -1, Y: 5}, r2.Point{X: 2, Y: 2}, 18, true},
		{"collinear", r2.Point{X: 0, Y: 0}, r2.Point{X: 2, Y: 2}, r2.Point{X: 1, Y: 1}, r2.Point{}, 0, false},
		{"duplicate", r2.Point{X: 0.5, Y: 0.5}, r2.Point{X: 1, Y: 0}, r2.Point{X: 0.5, Y: 0.5}, r2.Point{}, 0, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, rsq, ok := circumcircle(tt.a, tt.b, tt.p, defaultEps)
			if ok != tt.wantOK {
				t.Fatalf("circumcircle(...) ok = %v, want %v", ok, tt.wantOK)
			}
			if !ok {
				return
			}
			if c.Sub(tt.want).Norm() > 1e-12 || math.Abs(rsq-tt.wantRsq) > 1e-12 {
				t.Errorf("circumcircle(...) = %v, %v, want %v, %v", c, rsq, tt.want, tt.wantRsq)
			}
		})
	}
}

// Triangle Prev/Next vertex

func TestPrevVertex(t *testing.T) {
	assertPanic := func(tri [3]int, in int) {
		defer func() {
			if r := recover(); r == nil {
				t.Errorf("PrevVertex(%v, %d) did not panic, want panic", tri, in)
			}
		}()
		PrevVertex(tri, in)
	}

	tri := [3]int{1, 2, 3}
	for i, in := range tri {
		got := PrevVertex(tri, in)
		want := tri[(i+2)%len(tri)]
		if got != want {
			t.Errorf("PrevVertex(%v, %d) = %v, want %v", tri, in, got, want)
		}
	}

	assertPanic(tri, -1)
	assertPanic(tri, 4)
}

func TestNextVertex(t *testing.T) {
	assertPanic := func(tri [3]int, in int) {
		defer func() {
			if r := recover(); r == nil {
				t.Errorf("NextVertex(%v, %d) did not panic, want panic", tri, in)
			}
		}()
		NextVertex(tri, in)
	}

	tri := [3]int{1, 2, 3}
	for i, in := range tri {
		got := NextVertex(tri, in)
		want := tri[(i+1)%len(tri)]
		if got != want {
			t.Errorf("NextVertex(%v, %d) = %v, want %v", tri, in, got, want)
		}
	}

	assertPanic(tri, -1)
	assertPanic(tri, 4)
}

// Benchmarks

func BenchmarkNewTriangulation(b *testing.B) {
	sizes := []int{1e+2, 1e+3, 1e+4}
	for _, pointsCnt := range sizes {
		b.Run(fmt.Sprintf("N%d", pointsCnt), func(b *testing.B) {
			points := utils.GenerateRandomPoints(pointsCnt, 0)

			b.ReportAllocs()
			b.ResetTimer()
			for bi := 0; bi < b.N; bi++ {
				_, err := NewTriangulation(points)
				if err != nil {
					b.Fatalf("NewTriangulation(...) error = %v, want nil", err)
				}
			}
		})
	}
}

func BenchmarkReference(b *testing.B) {
	sizes := []int{1e+2, 1e+3, 1e+4}
	for _, pointsCnt := range sizes {
		b.Run(fmt.Sprintf("N%d", pointsCnt), func(b *testing.B) {
			points := utils.GenerateRandomPoints(pointsCnt, 0)

			b.ReportAllocs()
			b.ResetTimer()
			for bi := 0; bi < b.N; bi++ {
				if _, err := Reference(points, 0); err != nil {
					b.Fatalf("Reference(...) error = %v, want nil", err)
				}
			}
		})
	}
}

// Helpers

type meshSnapshot struct {
	Handles   []int
	Triangles []Triangle
	Vertices  int
}

func snapshot(tr *Triangulator) meshSnapshot {
	s := meshSnapshot{Handles: tr.Mesh().Handles(), Vertices: len(tr.vertices)}
	for _, h := range s.Handles {
		s.Triangles = append(s.Triangles, tr.Mesh().Triangle(h))
	}
	return s
}

func mustNew(t *testing.T, setters ...TriangulationOption) *Triangulator {
	t.Helper()
	tr, err := New(setters...)
	if err != nil {
		t.Fatalf("New(...) error = %v, want nil", err)
	}
	return tr
}

func mustNewTriangulation(t *testing.T, n int) *Triangulation {
	t.Helper()
	points := utils.GenerateRandomPoints(n, 0)

	dt, err := NewTriangulation(points)
	if err != nil {
		t.Fatalf("NewTriangulation(...) error = %v, want nil", err)
	}
	return dt
}

// canonical rotates each triangle so its smallest index comes first,
// keeping orientation, and sorts the list.
func canonical(tris [][3]int) [][3]int {
	out := make([][3]int, len(tris))
	for i, t := range tris {
		for t[0] > t[1] || t[0] > t[2] {
			t = [3]int{t[1], t[2], t[0]}
		}
		out[i] = t
	}
	slices.SortFunc(out, func(a, b [3]int) int {
		for k, nk := 0, 3; k < nk; k++ {
			if a[k] != b[k] {
				return a[k] - b[k]
			}
		}
		return 0
	})
	return out
}
