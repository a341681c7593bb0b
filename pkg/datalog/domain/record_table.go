package domain

import "sync"

// RecordIndex addresses a record (a fixed-arity tuple of domain values)
// stored in a RecordTable. Index 0 is reserved for the nil record (spec
// section 3, "Record table").
type RecordIndex uint64

// NilRecord is the reserved index denoting the absence of a record.
const NilRecord RecordIndex = 0

// recordMap is a bidirectional mapping between tuples of a single fixed
// arity and record indices, directly mirroring the arity-keyed
// `RecordMap` of original_source/src/InterpreterRecords.cpp: index 0 of
// each arity's table is left unused so NilRecord never collides with a
// real tuple.
type recordMap struct {
	mu      sync.RWMutex
	toIndex map[string]RecordIndex
	tuples  []Tuple
}

func newRecordMap(arity int) *recordMap {
	return &recordMap{
		toIndex: make(map[string]RecordIndex),
		// index 0 reserved
		tuples: make([]Tuple, 1, 8),
	}
}

// RecordTable maps between fixed-arity tuples of domain values and record
// indices. Each arity has an independent namespace (spec section 3,
// "Record table"). Safe for concurrent use.
type RecordTable struct {
	mu      sync.Mutex
	byArity map[int]*recordMap
}

// NewRecordTable constructs an empty record table.
func NewRecordTable() *RecordTable {
	return &RecordTable{byArity: make(map[int]*recordMap)}
}

func (t *RecordTable) forArity(arity int) *recordMap {
	t.mu.Lock()
	defer t.mu.Unlock()

	m, ok := t.byArity[arity]
	if !ok {
		m = newRecordMap(arity)
		t.byArity[arity] = m
	}

	return m
}

// tupleKey produces a map key for a tuple's contents. Values are fixed-
// width so a simple byte encoding is injective without a separator.
func tupleKey(values Tuple) string {
	buf := make([]byte, len(values)*8)

	for i, v := range values {
		off := i * 8
		buf[off+0] = byte(v)
		buf[off+1] = byte(v >> 8)
		buf[off+2] = byte(v >> 16)
		buf[off+3] = byte(v >> 24)
		buf[off+4] = byte(v >> 32)
		buf[off+5] = byte(v >> 40)
		buf[off+6] = byte(v >> 48)
		buf[off+7] = byte(v >> 56)
	}

	return string(buf)
}

// Pack returns the record index for values, interning it (and creating a
// fresh index) if this exact tuple has not been packed before for this
// arity. Equal tuples always yield the same index (spec section 3,
// "pack(values) returns a record index").
func (t *RecordTable) Pack(values Tuple) RecordIndex {
	m := t.forArity(len(values))
	key := tupleKey(values)

	m.mu.RLock()
	if idx, ok := m.toIndex[key]; ok {
		m.mu.RUnlock()
		return idx
	}
	m.mu.RUnlock()

	m.mu.Lock()
	defer m.mu.Unlock()

	if idx, ok := m.toIndex[key]; ok {
		return idx
	}

	idx := RecordIndex(len(m.tuples))
	m.tuples = append(m.tuples, values.Clone())
	m.toIndex[key] = idx

	return idx
}

// Unpack returns the tuple addressed by idx, which must have been
// produced by Pack with the given arity. Unpacking NilRecord or an index
// never packed at this arity panics — callers are expected to guard nil
// records before unpacking (spec section 4.4, "UnpackRecord": "if ref is
// nil, skip").
func (t *RecordTable) Unpack(idx RecordIndex, arity int) Tuple {
	m := t.forArity(arity)

	m.mu.RLock()
	defer m.mu.RUnlock()

	if idx == NilRecord || int(idx) >= len(m.tuples) {
		panic("domain: unpack of unknown record index")
	}

	return m.tuples[idx]
}
