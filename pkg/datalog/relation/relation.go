// Package relation implements the run-time relation representations (spec
// section 3, "Relation (run-time)"): a set of tuples together with one or
// more lex-ordered indices. The default representation is a B-tree per
// index order, backed by github.com/google/btree (adopted from the
// dependency tree under _examples/hashicorp-nomad/go.mod, the one
// reusable ordered-container library anywhere in the example pack);
// eqrel and the provenance B-tree variant specialise the conflict and
// extend semantics spec section 3 calls out.
package relation

import (
	"github.com/souffle-lang/souffle-sub001/pkg/datalog/domain"
	"github.com/souffle-lang/souffle-sub001/pkg/datalog/ram"
)

// Iterator walks a range of tuples in index order.
type Iterator interface {
	Next() bool
	Tuple() domain.Tuple
}

// Index is a single ordered container over a relation's tuples, keyed by
// one lex-order.
type Index interface {
	// Range returns an iterator over tuples t with lo <= t <= hi under
	// this index's lex-order comparator (inclusive on both ends; callers
	// substitute MinBound/MaxBound sentinels for None columns, per spec
	// section 4.4 "ExistenceCheck").
	Range(lo, hi domain.Tuple) Iterator
	// Order returns the column permutation this index is keyed by.
	Order() ram.LexOrder
}

// Relation is the run-time capability set spec section 3 requires of
// every representation.
type Relation interface {
	// Insert adds tuple, returning whether it was new.
	Insert(tuple domain.Tuple) bool
	// Contains reports membership.
	Contains(tuple domain.Tuple) bool
	// Empty reports whether the relation holds no tuples.
	Empty() bool
	// Size returns the number of tuples.
	Size() int
	// Purge removes every tuple.
	Purge()
	// InsertAll unions other's tuples into the receiver.
	InsertAll(other Relation)
	// Index returns the index whose order best covers sig, choosing
	// among the orders computed by pkg/datalog/index for this relation.
	Index(sig ram.Signature) Index
	// Extend closes the receiver under the equivalence implied by other.
	// Only the eqrel representation implements this meaningfully; every
	// other representation returns ErrNotEquivalenceRelation.
	Extend(other Relation) error
	// Representation reports which concrete representation backs this
	// relation.
	Representation() ram.Representation
	// Arity reports the relation's declared (non-auxiliary) arity.
	Arity() int
}

// New constructs a Relation for ref using orders as its covering index
// set (as computed by pkg/datalog/index.Selection.Solve), dispatching on
// ref.Representation.
func New(ref ram.RelationRef, orders []ram.LexOrder) Relation {
	if len(orders) == 0 {
		orders = []ram.LexOrder{identityOrder(ref.TotalArity())}
	}

	switch ref.Representation {
	case ram.EqRel:
		return newEqRel(ref, orders)
	case ram.ProvenanceBTree:
		return newProvenanceBTree(ref, orders)
	case ram.Brie:
		return newBrie(ref, orders)
	default:
		return newBTreeRelation(ref, orders)
	}
}

func identityOrder(arity int) ram.LexOrder {
	order := make(ram.LexOrder, arity)
	for i := range order {
		order[i] = i
	}

	return order
}

// bestOrder picks, among orders, the one whose prefix covers the most
// columns sig actually constrains (spec section 4.3, "Result"); ties
// favour the earliest order; no orders ever means sig cannot be
// answered by an index and a full scan is required by the caller.
func bestOrder(orders []ram.LexOrder, sig ram.Signature) ram.LexOrder {
	if len(orders) == 0 {
		return nil
	}

	best := orders[0]
	bestScore := -1

	for _, order := range orders {
		score := prefixScore(order, sig)
		if score > bestScore {
			bestScore = score
			best = order
		}
	}

	return best
}

// prefixScore counts the leading columns of order that sig constrains
// (Equal or Inequal), stopping at the first column sig leaves None.
func prefixScore(order ram.LexOrder, sig ram.Signature) int {
	score := 0

	for _, col := range order {
		if col >= len(sig) || sig[col] == ram.None {
			break
		}

		score++
	}

	return score
}
