// Package index computes, per relation, a minimum set of lexicographic
// index orders covering every search signature observed across the IR-R
// program (spec section 4.3, "Index analysis (chain cover)"). The
// algorithm — Hopcroft-Karp maximum bipartite matching followed by chain
// extraction and a merge/discharge pass — is ported from
// original_source/src/ram/analysis/RamIndexAnalysis.cpp, the one
// component of this spec that names its required algorithm explicitly.
package index

import "math"

// node identifies a vertex in the bipartite matching graph. Vertex 0 is
// reserved as the "null" vertex (unmatched), mirroring MaxMatching::Node
// in the original, where node IDs start at 1.
type node int

const nullVertex node = 0

const infiniteDistance = math.MaxInt32

// maxMatching computes a maximum matching on a bipartite graph whose A
// and B parts are (disjoint ranges of) node via Hopcroft-Karp: BFS
// layering followed by DFS augmenting paths, repeated until no augmenting
// path remains (spec section 4.3, "Compute a maximum matching by
// Hopcroft-Karp (BFS layering + DFS augmenting)").
type maxMatching struct {
	graph    map[node][]node
	match    map[node]node
	distance map[node]int
}

func newMaxMatching() *maxMatching {
	return &maxMatching{
		graph:    make(map[node][]node),
		match:    make(map[node]node),
		distance: make(map[node]int),
	}
}

func (m *maxMatching) addEdge(u, v node) {
	if u < 1 || v < 1 {
		panic("index: matching nodes must be >= 1")
	}

	for _, existing := range m.graph[u] {
		if existing == v {
			return
		}
	}

	m.graph[u] = append(m.graph[u], v)
}

func (m *maxMatching) getMatch(v node) node {
	if mv, ok := m.match[v]; ok {
		return mv
	}

	return nullVertex
}

func (m *maxMatching) getDistance(v node) int {
	if d, ok := m.distance[v]; ok {
		return d
	}

	return infiniteDistance
}

func (m *maxMatching) bfSearch() bool {
	var queue []node

	for u := range m.graph {
		if m.getMatch(u) == nullVertex {
			m.distance[u] = 0
			queue = append(queue, u)
		} else {
			m.distance[u] = infiniteDistance
		}
	}

	m.distance[nullVertex] = infiniteDistance

	for len(queue) > 0 {
		u := queue[0]
		queue = queue[1:]

		for _, v := range m.graph[u] {
			mv := m.getMatch(v)
			if m.getDistance(mv) == infiniteDistance {
				m.distance[mv] = m.getDistance(u) + 1
				if mv != nullVertex {
					queue = append(queue, mv)
				}
			}
		}
	}

	return m.getDistance(nullVertex) != infiniteDistance
}

func (m *maxMatching) dfSearch(u node) bool {
	if u == nullVertex {
		return true
	}

	for _, v := range m.graph[u] {
		if m.getDistance(m.getMatch(v)) == m.getDistance(u)+1 {
			if m.dfSearch(m.getMatch(v)) {
				m.match[u] = v
				m.match[v] = u

				return true
			}
		}
	}

	m.distance[u] = infiniteDistance

	return false
}

// solve repeatedly finds augmenting-path layers via BFS and augments via
// DFS until no augmenting path remains, returning the resulting matching
// (keyed both A->B and B->A, as original_source's Matchings map is).
func (m *maxMatching) solve() map[node]node {
	for m.bfSearch() {
		// Snapshot keys: augmenting within this layer must not be
		// disturbed by matches made earlier in the same layer pass.
		keys := make([]node, 0, len(m.graph))
		for u := range m.graph {
			keys = append(keys, u)
		}

		for _, u := range keys {
			if m.getMatch(u) == nullVertex {
				m.dfSearch(u)
			}
		}
	}

	return m.match
}
