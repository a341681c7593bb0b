package domain

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSymbolTableInternsOnce(t *testing.T) {
	tab := NewSymbolTable()

	a := tab.Lookup("hello")
	b := tab.Lookup("hello")
	c := tab.Lookup("world")

	assert.Equal(t, a, b)
	assert.NotEqual(t, a, c)
	assert.Equal(t, 2, tab.Size())
}

func TestSymbolTableResolveRoundTrip(t *testing.T) {
	tab := NewSymbolTable()

	for _, s := range []string{"a", "b", "c", "a"} {
		idx := tab.Lookup(s)
		assert.Equal(t, s, tab.Resolve(idx))
	}
}

func TestSymbolTableResolveUnknownPanics(t *testing.T) {
	tab := NewSymbolTable()
	assert.Panics(t, func() { tab.Resolve(99) })
}

func TestSymbolTableConcurrentLookup(t *testing.T) {
	tab := NewSymbolTable()

	var wg sync.WaitGroup

	results := make([]SymbolIndex, 100)

	for i := 0; i < 100; i++ {
		wg.Add(1)

		go func(i int) {
			defer wg.Done()
			results[i] = tab.Lookup("shared")
		}(i)
	}

	wg.Wait()

	for _, r := range results {
		assert.Equal(t, results[0], r)
	}
}
