package index

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/souffle-lang/souffle-sub001/pkg/datalog/ram"
)

func TestSelectionNoSearchesDefaultsToFullOrder(t *testing.T) {
	s := NewSelection(3)

	orders, err := s.Solve()

	require.NoError(t, err)
	require.Len(t, orders, 1)
	assert.Equal(t, ram.LexOrder{0, 1, 2}, orders[0])
}

func TestSelectionSingleSearchCoveredByOneOrder(t *testing.T) {
	s := NewSelection(2)
	s.AddSearch(ram.Signature{ram.Equal, ram.None})

	orders, err := s.Solve()

	require.NoError(t, err)
	require.Len(t, orders, 1)
	assert.Equal(t, 0, orders[0][0])
}

func TestSelectionChainOfNestedSearchesMergesIntoOneOrder(t *testing.T) {
	// [1,0,0] subset-of [1,1,0] subset-of [1,1,1]: a single chain should
	// cover all three searches with one lex order.
	s := NewSelection(3)
	s.AddSearch(ram.Signature{ram.Equal, ram.None, ram.None})
	s.AddSearch(ram.Signature{ram.Equal, ram.Equal, ram.None})
	s.AddSearch(ram.Signature{ram.Equal, ram.Equal, ram.Equal})

	orders, err := s.Solve()

	require.NoError(t, err)
	require.Len(t, orders, 1)
	assert.Equal(t, ram.LexOrder{0, 1, 2}, orders[0])
}

func TestSelectionIncomparableSearchesProduceSeparateOrders(t *testing.T) {
	// [1,0] and [0,1] are incomparable (neither is a subset of the
	// other), so they cannot share a chain.
	s := NewSelection(2)
	s.AddSearch(ram.Signature{ram.Equal, ram.None})
	s.AddSearch(ram.Signature{ram.None, ram.Equal})

	orders, err := s.Solve()

	require.NoError(t, err)
	assert.Len(t, orders, 2)

	for _, order := range orders {
		assert.Len(t, order, 2)
	}
}

func TestSelectionInequalityColumnAppendedAtChainTail(t *testing.T) {
	// [1,0] subset-of [1,2]: the Inequal column must land at the tail of
	// the order, after the Equal-constrained prefix.
	s := NewSelection(2)
	s.AddSearch(ram.Signature{ram.Equal, ram.None})
	s.AddSearch(ram.Signature{ram.Equal, ram.Inequal})

	orders, err := s.Solve()

	require.NoError(t, err)
	require.Len(t, orders, 1)
	assert.Equal(t, ram.LexOrder{0, 1}, orders[0])
}

func TestSelectionDuplicateSearchesAreCoalesced(t *testing.T) {
	s := NewSelection(2)
	s.AddSearch(ram.Signature{ram.Equal, ram.None})
	s.AddSearch(ram.Signature{ram.Equal, ram.None})

	assert.Len(t, s.Searches(), 1)
}

func TestSelectionEveryColumnAppearsExactlyOnceInOrder(t *testing.T) {
	s := NewSelection(4)
	s.AddSearch(ram.Signature{ram.Equal, ram.None, ram.None, ram.None})
	s.AddSearch(ram.Signature{ram.Equal, ram.Equal, ram.None, ram.None})
	s.AddSearch(ram.Signature{ram.Equal, ram.Equal, ram.Equal, ram.Inequal})

	orders, err := s.Solve()
	require.NoError(t, err)

	for _, order := range orders {
		seen := make(map[int]bool)
		for _, col := range order {
			assert.False(t, seen[col], "column %d repeated in order %v", col, order)
			seen[col] = true
		}
		assert.Len(t, order, 4)
	}
}
