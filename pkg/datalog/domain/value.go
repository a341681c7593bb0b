// Package domain provides the shared vocabulary of the evaluator: the
// scalar value representation, the symbol table, and the record table
// (spec section 3, "Scalar domain").
package domain

import "math"

// Value is a single machine word reinterpreted as one of a signed
// integer, an unsigned integer, a float of the same width, or a symbol
// index (an index into the Symbols table). Bit-casts between the four
// views are permitted; Value itself carries no tag.
type Value uint64

// Kind identifies which of the four scalar views a Value is being
// interpreted under at a particular use site. Kind is a property of the
// static type attached to an IR-A/IR-R position, not of the Value itself.
type Kind uint8

const (
	// KindSigned marks a Value as a signed integer.
	KindSigned Kind = iota
	// KindUnsigned marks a Value as an unsigned integer.
	KindUnsigned
	// KindFloat marks a Value as an IEEE-754 double.
	KindFloat
	// KindSymbol marks a Value as an index into the symbol table.
	KindSymbol
)

// Undefined is the designated sentinel value used for open-ended range
// bounds and for absent arguments in existence checks (spec section 3).
const Undefined Value = math.MaxUint64

// MinBound and MaxBound are the sentinel bounds substituted for a `None`
// search-signature column when constructing a range scan (spec section
// 4.4, "ExistenceCheck").
const (
	MinBound Value = 0
	MaxBound Value = math.MaxUint64 - 1
)

// Signed reinterprets v as a signed integer.
func (v Value) Signed() int64 {
	return int64(v)
}

// Unsigned reinterprets v as an unsigned integer.
func (v Value) Unsigned() uint64 {
	return uint64(v)
}

// Float reinterprets v's bit pattern as an IEEE-754 double.
func (v Value) Float() float64 {
	return math.Float64frombits(uint64(v))
}

// Symbol reinterprets v as a symbol-table index.
func (v Value) Symbol() SymbolIndex {
	return SymbolIndex(v)
}

// ValueOfSigned casts a signed integer into the Value representation.
func ValueOfSigned(i int64) Value {
	return Value(i)
}

// ValueOfUnsigned casts an unsigned integer into the Value representation.
func ValueOfUnsigned(u uint64) Value {
	return Value(u)
}

// ValueOfFloat casts a float into the Value representation.
func ValueOfFloat(f float64) Value {
	return Value(math.Float64bits(f))
}

// ValueOfSymbol casts a symbol index into the Value representation.
func ValueOfSymbol(s SymbolIndex) Value {
	return Value(s)
}

// Tuple is a fixed-size sequence of domain values whose length equals a
// relation's arity. Equality is component-wise (spec section 3, "Tuple").
type Tuple []Value

// Equal reports whether t and o hold the same values in the same order.
func (t Tuple) Equal(o Tuple) bool {
	if len(t) != len(o) {
		return false
	}

	for i := range t {
		if t[i] != o[i] {
			return false
		}
	}

	return true
}

// Clone returns an independent copy of t.
func (t Tuple) Clone() Tuple {
	c := make(Tuple, len(t))
	copy(c, t)

	return c
}
