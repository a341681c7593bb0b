package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValueBitcastRoundTrips(t *testing.T) {
	assert.Equal(t, int64(-42), ValueOfSigned(-42).Signed())
	assert.Equal(t, uint64(42), ValueOfUnsigned(42).Unsigned())
	assert.Equal(t, 3.5, ValueOfFloat(3.5).Float())
	assert.Equal(t, SymbolIndex(7), ValueOfSymbol(7).Symbol())
}

func TestTupleEqual(t *testing.T) {
	a := Tuple{ValueOfSigned(1), ValueOfSigned(2)}
	b := Tuple{ValueOfSigned(1), ValueOfSigned(2)}
	c := Tuple{ValueOfSigned(1), ValueOfSigned(3)}

	assert.True(t, a.Equal(b))
	assert.False(t, a.Equal(c))
	assert.False(t, a.Equal(Tuple{ValueOfSigned(1)}))
}

func TestTupleCloneIsIndependent(t *testing.T) {
	a := Tuple{ValueOfSigned(1)}
	b := a.Clone()
	b[0] = ValueOfSigned(2)

	assert.Equal(t, ValueOfSigned(1), a[0])
}
