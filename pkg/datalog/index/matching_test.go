package index

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMaxMatchingSimpleBipartiteGraph(t *testing.T) {
	m := newMaxMatching()
	m.addEdge(1, 2)
	m.addEdge(3, 2)
	m.addEdge(3, 4)

	matched := m.solve()

	// Maximum matching on this graph has size 2: {1-2, 3-4} is the only
	// way to saturate both A nodes.
	assert.Equal(t, node(2), matched[1])
	assert.Equal(t, node(1), matched[2])
	assert.Equal(t, node(4), matched[3])
	assert.Equal(t, node(3), matched[4])
}

func TestMaxMatchingDuplicateEdgesAreIgnored(t *testing.T) {
	m := newMaxMatching()
	m.addEdge(1, 2)
	m.addEdge(1, 2)

	assert.Len(t, m.graph[1], 1)
}

func TestMaxMatchingInvalidNodePanics(t *testing.T) {
	m := newMaxMatching()

	assert.Panics(t, func() { m.addEdge(0, 1) })
}

func TestMaxMatchingUnmatchedNodeReturnsNullVertex(t *testing.T) {
	m := newMaxMatching()
	m.addEdge(1, 2)

	m.solve()

	assert.Equal(t, nullVertex, m.getMatch(99))
}
