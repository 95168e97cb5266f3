// Copyright (c) 2026 Andrey Kriulin
// Licensed under the MIT License.
// See the LICENSE file in the project root for full license text.

package delaunay

// edge is an unordered pair of vertex indices, stored with a < b.
type edge struct {
	a, b int
}

func newEdge(a, b int) edge {
	if a > b {
		a, b = b, a
	}
	return edge{a, b}
}

// edgeSet is a counting multiset of edges that remembers the orientation
// and order in which each edge was first seen.
type edgeSet struct {
	count map[edge]int
	order [][2]int
}

func newEdgeSet() *edgeSet {
	return &edgeSet{count: make(map[edge]int)}
}

func (s *edgeSet) reset() {
	clear(s.count)
	s.order = s.order[:0]
}

func (s *edgeSet) add(a, b int) {
	e := newEdge(a, b)
	if s.count[e] == 0 {
		s.order = append(s.order, [2]int{a, b})
	}
	s.count[e]++
}

// boundary returns, in first-seen order, the edges seen exactly once.
func (s *edgeSet) boundary(dst [][2]int) [][2]int {
	dst = dst[:0]
	for _, ab := range s.order {
		if s.count[newEdge(ab[0], ab[1])] == 1 {
			dst = append(dst, ab)
		}
	}
	return dst
}
