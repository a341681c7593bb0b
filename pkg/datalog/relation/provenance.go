package relation

import (
	"encoding/binary"
	"sync"

	"github.com/souffle-lang/souffle-sub001/pkg/datalog/domain"
	"github.com/souffle-lang/souffle-sub001/pkg/datalog/ram"
)

// provenanceBTree is the provenance B-tree variant (spec section 3: "the
// provenance B-tree updater, on conflicting insert, replaces the stored
// tuple iff the new tuple's <level, rule> pair is lexicographically
// smaller (earlier derivation wins)"). The relation's trailing
// AuxiliaryArity columns hold that <level, rule> pair; conflicts are
// detected on the non-auxiliary column prefix.
type provenanceBTree struct {
	*btreeRelation
	mu    sync.Mutex
	arity int
	byKey map[string]domain.Tuple
}

func newProvenanceBTree(ref ram.RelationRef, orders []ram.LexOrder) *provenanceBTree {
	return &provenanceBTree{
		btreeRelation: newBTreeRelation(ref, orders),
		arity:         ref.Arity,
		byKey:         make(map[string]domain.Tuple),
	}
}

func prefixKey(tuple domain.Tuple, arity int) string {
	buf := make([]byte, 8*arity)
	for i := 0; i < arity; i++ {
		binary.BigEndian.PutUint64(buf[i*8:], uint64(tuple[i]))
	}

	return string(buf)
}

// lexLess reports whether aux "a" is an earlier derivation than aux "b":
// strictly lexicographically smaller over the trailing <level, rule>
// columns.
func lexLess(a, b domain.Tuple) bool {
	n := len(a)
	if len(b) < n {
		n = len(b)
	}

	for i := 0; i < n; i++ {
		if a[i] != b[i] {
			return a[i] < b[i]
		}
	}

	return false
}

func (p *provenanceBTree) Insert(tuple domain.Tuple) bool {
	key := prefixKey(tuple, p.arity)

	p.mu.Lock()
	existing, found := p.byKey[key]
	p.mu.Unlock()

	if found {
		if !lexLess(tuple[p.arity:], existing[p.arity:]) {
			// The existing derivation is earlier (or equal); keep it.
			return false
		}

		p.removeTuple(existing)
	}

	inserted := p.btreeRelation.Insert(tuple)

	p.mu.Lock()
	p.byKey[key] = tuple.Clone()
	p.mu.Unlock()

	return inserted || found
}

func (p *provenanceBTree) removeTuple(tuple domain.Tuple) {
	p.btreeRelation.mu.Lock()
	defer p.btreeRelation.mu.Unlock()

	for _, t := range p.btreeRelation.trees {
		t.Delete(tuple)
	}

	p.btreeRelation.size--
}

func (p *provenanceBTree) Purge() {
	p.btreeRelation.Purge()

	p.mu.Lock()
	p.byKey = make(map[string]domain.Tuple)
	p.mu.Unlock()
}

func (p *provenanceBTree) Representation() ram.Representation {
	return ram.ProvenanceBTree
}
