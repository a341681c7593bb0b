package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRecordTablePackInterning(t *testing.T) {
	tab := NewRecordTable()

	t1 := Tuple{ValueOfSigned(1), ValueOfSigned(2)}
	t2 := Tuple{ValueOfSigned(1), ValueOfSigned(2)}
	t3 := Tuple{ValueOfSigned(3), ValueOfSigned(4)}

	i1 := tab.Pack(t1)
	i2 := tab.Pack(t2)
	i3 := tab.Pack(t3)

	assert.Equal(t, i1, i2)
	assert.NotEqual(t, i1, i3)
	assert.NotEqual(t, NilRecord, i1)
}

func TestRecordTablePackUnpackRoundTrip(t *testing.T) {
	tab := NewRecordTable()
	original := Tuple{ValueOfSigned(10), ValueOfUnsigned(20), ValueOfFloat(1.5)}

	idx := tab.Pack(original)
	got := tab.Unpack(idx, len(original))

	assert.True(t, original.Equal(got))
}

func TestRecordTableArityNamespacesAreIndependent(t *testing.T) {
	tab := NewRecordTable()

	idxArity1 := tab.Pack(Tuple{ValueOfSigned(1)})
	idxArity2 := tab.Pack(Tuple{ValueOfSigned(1), ValueOfSigned(1)})

	// Both are legitimately index 1 within their own arity's namespace.
	assert.Equal(t, idxArity1, idxArity2)

	got1 := tab.Unpack(idxArity1, 1)
	got2 := tab.Unpack(idxArity2, 2)

	assert.Len(t, got1, 1)
	assert.Len(t, got2, 2)
}

func TestRecordTableUnpackUnknownPanics(t *testing.T) {
	tab := NewRecordTable()
	assert.Panics(t, func() { tab.Unpack(42, 3) })
}
