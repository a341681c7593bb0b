package eval

import (
	"sync"

	"github.com/souffle-lang/souffle-sub001/pkg/datalog/domain"
	"github.com/souffle-lang/souffle-sub001/pkg/datalog/ram"
	"github.com/souffle-lang/souffle-sub001/pkg/datalog/relation"
)

// Database is the evaluator's live relation store: a name-keyed map of
// relation.Relation instances, lazily constructed via relation.New using
// the index orders the program translator computed (spec section 3,
// "Relation (run-time)"; spec section 4.4, "Create/Drop").
type Database struct {
	mu        sync.RWMutex
	relations map[string]relation.Relation
	orders    map[string][]ram.LexOrder
}

func newDatabase(orders map[string][]ram.LexOrder) *Database {
	return &Database{
		relations: make(map[string]relation.Relation),
		orders:    orders,
	}
}

// Get returns the live relation for ref, constructing it on first access
// with this relation's computed index orders.
func (d *Database) Get(ref ram.RelationRef) relation.Relation {
	d.mu.RLock()
	r, ok := d.relations[ref.Name]
	d.mu.RUnlock()

	if ok {
		return r
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	if r, ok := d.relations[ref.Name]; ok {
		return r
	}

	r = relation.New(ref, d.orders[ref.Name])
	d.relations[ref.Name] = r

	return r
}

// Lookup returns the relation currently bound to name, if any, without
// constructing it. Used by a driver to read a program's output relations
// after Run returns.
func (d *Database) Lookup(name string) (relation.Relation, bool) {
	d.mu.RLock()
	defer d.mu.RUnlock()

	r, ok := d.relations[name]

	return r, ok
}

// Create instantiates ref's storage if it does not already exist (a
// repeated Create, as happens when a Sequence re-enters a loop body, is a
// no-op).
func (d *Database) Create(ref ram.RelationRef, orders []ram.LexOrder) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if _, ok := d.relations[ref.Name]; ok {
		return
	}

	if len(orders) == 0 {
		orders = d.orders[ref.Name]
	}

	d.relations[ref.Name] = relation.New(ref, orders)
}

// Drop releases ref's storage.
func (d *Database) Drop(ref ram.RelationRef) {
	d.mu.Lock()
	defer d.mu.Unlock()

	delete(d.relations, ref.Name)
}

// Swap exchanges the relation objects currently bound to a.Name and
// b.Name (spec section 4.4, "Swap(a, b)").
func (d *Database) Swap(a, b ram.RelationRef) {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.relations[a.Name], d.relations[b.Name] = d.relations[b.Name], d.relations[a.Name]
}

// allTuples enumerates every tuple currently stored in rel, via a
// full-range scan over its best available index.
func allTuples(rel relation.Relation, totalArity int) []domain.Tuple {
	idx := rel.Index(ram.NewSignature(totalArity))
	it := idx.Range(minTuple(totalArity), maxTuple(totalArity))

	var out []domain.Tuple

	for it.Next() {
		out = append(out, it.Tuple())
	}

	return out
}
