package relation

import (
	"sync"

	"github.com/souffle-lang/souffle-sub001/pkg/datalog/domain"
	"github.com/souffle-lang/souffle-sub001/pkg/datalog/ram"
)

// unionFind is a standard path-compressed, union-by-rank disjoint-set
// structure over domain.Value elements.
type unionFind struct {
	parent map[domain.Value]domain.Value
	rank   map[domain.Value]int
}

func newUnionFind() *unionFind {
	return &unionFind{parent: make(map[domain.Value]domain.Value), rank: make(map[domain.Value]int)}
}

func (u *unionFind) find(v domain.Value) domain.Value {
	p, ok := u.parent[v]
	if !ok {
		u.parent[v] = v
		return v
	}

	if p == v {
		return v
	}

	root := u.find(p)
	u.parent[v] = root

	return root
}

func (u *unionFind) union(a, b domain.Value) {
	ra, rb := u.find(a), u.find(b)
	if ra == rb {
		return
	}

	switch {
	case u.rank[ra] < u.rank[rb]:
		u.parent[ra] = rb
	case u.rank[ra] > u.rank[rb]:
		u.parent[rb] = ra
	default:
		u.parent[rb] = ra
		u.rank[ra]++
	}
}

func (u *unionFind) connected(a, b domain.Value) bool {
	return u.find(a) == u.find(b)
}

// eqRel is the equivalence-relation representation (spec section 3:
// "the eqrel representation maintains an equivalence closure over its
// two columns"). It stores the literal pairs ever inserted in a regular
// B-tree (so Size/iteration reflect what has been materialised) while a
// union-find tracks the closure that Extend and closure-aware Contains
// consult.
type eqRel struct {
	*btreeRelation
	mu sync.Mutex
	uf *unionFind
}

func newEqRel(ref ram.RelationRef, orders []ram.LexOrder) *eqRel {
	return &eqRel{btreeRelation: newBTreeRelation(ref, orders), uf: newUnionFind()}
}

func (e *eqRel) Insert(tuple domain.Tuple) bool {
	inserted := e.btreeRelation.Insert(tuple)

	e.mu.Lock()
	if len(tuple) == 2 {
		e.uf.union(tuple[0], tuple[1])
	}
	e.mu.Unlock()

	return inserted
}

// Contains reflects the equivalence closure, not merely literal
// membership: (a, b) is contained iff a and b are in the same class.
func (e *eqRel) Contains(tuple domain.Tuple) bool {
	if len(tuple) != 2 {
		return e.btreeRelation.Contains(tuple)
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	return e.uf.connected(tuple[0], tuple[1])
}

// Extend closes the receiver's equivalence classes under the pairs held
// by other (spec section 3, "close under the equivalence implied by
// other"; spec section 4.4, "Merge(src, dst): if dst's representation is
// equivalence-relation, dst.extend(src) first").
func (e *eqRel) Extend(other Relation) error {
	snap, ok := other.(interface{ snapshot() []domain.Tuple })
	if !ok {
		return nil
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	for _, tuple := range snap.snapshot() {
		if len(tuple) == 2 {
			e.uf.union(tuple[0], tuple[1])
		}
	}

	return nil
}

func (e *eqRel) Representation() ram.Representation {
	return ram.EqRel
}
