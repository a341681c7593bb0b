package relation

import (
	"sync"

	"github.com/google/btree"

	"github.com/souffle-lang/souffle-sub001/pkg/datalog/domain"
	"github.com/souffle-lang/souffle-sub001/pkg/datalog/ram"
)

const btreeDegree = 32

// lessFor returns a btree.LessFunc that compares two tuples column-by-
// column under order, comparing each column's raw encoded word (spec
// section 3 does not mandate a type-aware total order for indices; the
// evaluator's range queries only ever bracket a column between its own
// MinBound/MaxBound sentinels, so a raw-word order is sufficient and
// matches the uninterpreted machine-word treatment of spec section 3's
// scalar domain).
func lessFor(order ram.LexOrder) btree.LessFunc[domain.Tuple] {
	return func(a, b domain.Tuple) bool {
		for _, col := range order {
			av, bv := a[col], b[col]
			if av != bv {
				return av < bv
			}
		}

		return false
	}
}

// btreeRelation is the default B-tree representation (spec section 3,
// "physical representation tag ... default B-tree"): one btree.BTreeG
// per computed lex-order, all holding the same tuple values so any order
// can answer a range query.
type btreeRelation struct {
	mu     sync.RWMutex
	ref    ram.RelationRef
	orders []ram.LexOrder
	trees  []*btree.BTreeG[domain.Tuple]
	size   int
}

func newBTreeRelation(ref ram.RelationRef, orders []ram.LexOrder) *btreeRelation {
	trees := make([]*btree.BTreeG[domain.Tuple], len(orders))
	for i, order := range orders {
		trees[i] = btree.NewG(btreeDegree, lessFor(order))
	}

	return &btreeRelation{ref: ref, orders: orders, trees: trees}
}

func (r *btreeRelation) Insert(tuple domain.Tuple) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.trees[0].Has(tuple) {
		return false
	}

	for _, t := range r.trees {
		t.ReplaceOrInsert(tuple.Clone())
	}

	r.size++

	return true
}

func (r *btreeRelation) Contains(tuple domain.Tuple) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return r.trees[0].Has(tuple)
}

func (r *btreeRelation) Empty() bool {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return r.size == 0
}

func (r *btreeRelation) Size() int {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return r.size
}

func (r *btreeRelation) Purge() {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, t := range r.trees {
		t.Clear(false)
	}

	r.size = 0
}

func (r *btreeRelation) InsertAll(other Relation) {
	o, ok := other.(interface {
		snapshot() []domain.Tuple
	})
	if !ok {
		panic("relation: InsertAll requires a relation snapshot")
	}

	for _, tuple := range o.snapshot() {
		r.Insert(tuple)
	}
}

func (r *btreeRelation) snapshot() []domain.Tuple {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]domain.Tuple, 0, r.size)
	r.trees[0].Ascend(func(t domain.Tuple) bool {
		out = append(out, t)
		return true
	})

	return out
}

func (r *btreeRelation) Extend(other Relation) error {
	return ErrNotEquivalenceRelation
}

func (r *btreeRelation) Representation() ram.Representation {
	return ram.BTree
}

func (r *btreeRelation) Arity() int {
	return r.ref.Arity
}

func (r *btreeRelation) Index(sig ram.Signature) Index {
	order := bestOrder(r.orders, sig)
	if order == nil {
		order = r.orders[0]
	}

	for i, o := range r.orders {
		if o.Equal(order) {
			return &btreeIndex{relation: r, tree: r.trees[i], order: o}
		}
	}

	return &btreeIndex{relation: r, tree: r.trees[0], order: r.orders[0]}
}

type btreeIndex struct {
	relation *btreeRelation
	tree     *btree.BTreeG[domain.Tuple]
	order    ram.LexOrder
}

func (idx *btreeIndex) Order() ram.LexOrder {
	return idx.order
}

func (idx *btreeIndex) Range(lo, hi domain.Tuple) Iterator {
	idx.relation.mu.RLock()
	defer idx.relation.mu.RUnlock()

	less := lessFor(idx.order)

	var out []domain.Tuple

	idx.tree.AscendGreaterOrEqual(lo, func(t domain.Tuple) bool {
		if less(hi, t) {
			return false
		}

		out = append(out, t)

		return true
	})

	return &sliceIterator{tuples: out, pos: -1}
}

// sliceIterator iterates a pre-materialised slice of tuples; range
// queries snapshot under the relation's read lock, so the iterator
// itself is lock-free (matching spec section 5, "readers may proceed
// concurrently without locks").
type sliceIterator struct {
	tuples []domain.Tuple
	pos    int
}

func (it *sliceIterator) Next() bool {
	it.pos++
	return it.pos < len(it.tuples)
}

func (it *sliceIterator) Tuple() domain.Tuple {
	return it.tuples[it.pos]
}
