package relation

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/souffle-lang/souffle-sub001/pkg/datalog/domain"
	"github.com/souffle-lang/souffle-sub001/pkg/datalog/ram"
)

func tuple(vals ...uint64) domain.Tuple {
	t := make(domain.Tuple, len(vals))
	for i, v := range vals {
		t[i] = domain.ValueOfUnsigned(v)
	}

	return t
}

func TestBTreeRelationInsertContains(t *testing.T) {
	ref := ram.RelationRef{Name: "edge", Arity: 2}
	r := New(ref, []ram.LexOrder{{0, 1}})

	assert.True(t, r.Insert(tuple(1, 2)))
	assert.False(t, r.Insert(tuple(1, 2)))
	assert.True(t, r.Contains(tuple(1, 2)))
	assert.False(t, r.Contains(tuple(2, 1)))
	assert.Equal(t, 1, r.Size())
	assert.False(t, r.Empty())
}

func TestBTreeRelationPurge(t *testing.T) {
	ref := ram.RelationRef{Name: "edge", Arity: 2}
	r := New(ref, []ram.LexOrder{{0, 1}})

	r.Insert(tuple(1, 2))
	r.Purge()

	assert.True(t, r.Empty())
	assert.Equal(t, 0, r.Size())
}

func TestBTreeRelationRangeScan(t *testing.T) {
	ref := ram.RelationRef{Name: "edge", Arity: 2}
	r := New(ref, []ram.LexOrder{{0, 1}})

	r.Insert(tuple(1, 10))
	r.Insert(tuple(1, 20))
	r.Insert(tuple(2, 5))

	idx := r.Index(ram.Signature{ram.Equal, ram.None})
	it := idx.Range(tuple(1, uint64(domain.MinBound)), tuple(1, uint64(domain.MaxBound)))

	var got []domain.Tuple
	for it.Next() {
		got = append(got, it.Tuple())
	}

	require.Len(t, got, 2)
	assert.Equal(t, domain.ValueOfUnsigned(10), got[0][1])
	assert.Equal(t, domain.ValueOfUnsigned(20), got[1][1])
}

func TestBTreeRelationInsertAllUnions(t *testing.T) {
	ref := ram.RelationRef{Name: "edge", Arity: 2}
	a := New(ref, []ram.LexOrder{{0, 1}})
	b := New(ref, []ram.LexOrder{{0, 1}})

	a.Insert(tuple(1, 2))
	b.Insert(tuple(3, 4))
	b.Insert(tuple(1, 2))

	a.InsertAll(b)

	assert.Equal(t, 2, a.Size())
	assert.True(t, a.Contains(tuple(3, 4)))
}

func TestBTreeRelationExtendIsUnsupported(t *testing.T) {
	ref := ram.RelationRef{Name: "edge", Arity: 2}
	a := New(ref, []ram.LexOrder{{0, 1}})
	b := New(ref, []ram.LexOrder{{0, 1}})

	assert.ErrorIs(t, a.Extend(b), ErrNotEquivalenceRelation)
}

func TestEqRelContainsReflectsClosure(t *testing.T) {
	ref := ram.RelationRef{Name: "sameAs", Arity: 2, Representation: ram.EqRel}
	r := New(ref, []ram.LexOrder{{0, 1}})

	r.Insert(tuple(1, 2))
	r.Insert(tuple(2, 3))

	assert.True(t, r.Contains(tuple(1, 3)))
	assert.Equal(t, ram.EqRel, r.Representation())
}

func TestEqRelExtendClosesOverOtherRelation(t *testing.T) {
	ref := ram.RelationRef{Name: "sameAs", Arity: 2, Representation: ram.EqRel}
	dst := New(ref, []ram.LexOrder{{0, 1}})
	src := New(ref, []ram.LexOrder{{0, 1}})

	src.Insert(tuple(5, 6))
	require.NoError(t, dst.Extend(src))

	assert.True(t, dst.Contains(tuple(5, 6)))
}

func TestProvenanceBTreeEarlierDerivationWins(t *testing.T) {
	ref := ram.RelationRef{Name: "path", Arity: 2, AuxiliaryArity: 2, Representation: ram.ProvenanceBTree}
	r := New(ref, []ram.LexOrder{{0, 1, 2, 3}})

	// <level=5, rule=0> arrives first...
	first := tuple(1, 2, 5, 0)
	require.True(t, r.Insert(first))

	// ...then a later derivation with a larger <level, rule> pair must
	// not replace it.
	later := tuple(1, 2, 9, 0)
	r.Insert(later)

	assert.Equal(t, 1, r.Size())

	// ...but an earlier derivation must replace the stored tuple.
	earlier := tuple(1, 2, 1, 0)
	r.Insert(earlier)

	assert.Equal(t, 1, r.Size())
}

func TestBrieRelationInsertContains(t *testing.T) {
	ref := ram.RelationRef{Name: "facts", Arity: 3, Representation: ram.Brie}
	r := New(ref, []ram.LexOrder{{0, 1, 2}})

	assert.True(t, r.Insert(tuple(1, 2, 3)))
	assert.False(t, r.Insert(tuple(1, 2, 3)))
	assert.True(t, r.Contains(tuple(1, 2, 3)))
	assert.False(t, r.Contains(tuple(1, 2, 4)))
}

func TestNewDefaultsToFullOrderWhenNoOrdersGiven(t *testing.T) {
	ref := ram.RelationRef{Name: "r", Arity: 3}
	r := New(ref, nil)

	r.Insert(tuple(1, 2, 3))
	assert.True(t, r.Contains(tuple(1, 2, 3)))
}
