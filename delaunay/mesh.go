// Copyright (c) 2026 Andrey Kriulin
// Licensed under the MIT License.
// See the LICENSE file in the project root for full license text.

package delaunay

import (
	"fmt"

	"github.com/golang/geo/r2"
)

// Triangle is a mesh triangle with its cached circumcircle. Vertices are
// stored counter-clockwise.
type Triangle struct {
	V        [3]int
	Center   r2.Point
	RadiusSq float64
}

// CircumcircleContains reports whether p lies strictly inside the
// circumcircle. The comparison is exact.
func (t Triangle) CircumcircleContains(p r2.Point) bool {
	d := p.Sub(t.Center)
	return d.Dot(d) < t.RadiusSq
}

// Mesh is an arena of triangles addressed by stable integer handles.
// Handles of deleted triangles are recycled last-in first-out.
type Mesh struct {
	tris  []Triangle
	alive []bool
	free  []int
	n     int
}

// Len returns the number of active triangles.
func (m *Mesh) Len() int {
	return m.n
}

// Cap returns the number of handles ever allocated.
func (m *Mesh) Cap() int {
	return len(m.tris)
}

// Alive reports whether handle h refers to an active triangle.
func (m *Mesh) Alive(h int) bool {
	return h >= 0 && h < len(m.alive) && m.alive[h]
}

func (m *Mesh) Triangle(h int) Triangle {
	if !m.Alive(h) {
		panic(fmt.Sprintf("Triangle: handle %d is not active", h))
	}
	return m.tris[h]
}

// Handles returns the active handles in ascending order.
func (m *Mesh) Handles() []int {
	hs := make([]int, 0, m.n)
	for h, ok := range m.alive {
		if ok {
			hs = append(hs, h)
		}
	}
	return hs
}

func (m *Mesh) add(t Triangle) int {
	if k := len(m.free); k > 0 {
		h := m.free[k-1]
		m.free = m.free[:k-1]
		m.tris[h] = t
		m.alive[h] = true
		m.n++
		return h
	}
	m.tris = append(m.tris, t)
	m.alive = append(m.alive, true)
	m.n++
	return len(m.tris) - 1
}

func (m *Mesh) release(h int) {
	if !m.Alive(h) {
		panic(fmt.Sprintf("release: handle %d is not active", h))
	}
	m.alive[h] = false
	m.free = append(m.free, h)
	m.n--
}
