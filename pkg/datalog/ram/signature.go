// Package ram defines the relational-algebra intermediate form (IR-R):
// the statement/operation/expression/condition tree that the translator
// (pkg/datalog/translate) produces and the evaluator (pkg/datalog/eval)
// consumes (spec section 2, component 3).
package ram

import "fmt"

// ColumnConstraint is the per-column classification of a SearchSignature
// (spec section 3, "Search signature").
type ColumnConstraint uint8

const (
	// None means the column is unconstrained by this search.
	None ColumnConstraint = iota
	// Equal means the column participates in the lookup key.
	Equal
	// Inequal means the column contributes a bounded range.
	Inequal
)

func (c ColumnConstraint) String() string {
	switch c {
	case None:
		return "none"
	case Equal:
		return "equal"
	case Inequal:
		return "inequal"
	default:
		return "?"
	}
}

// Signature is a per-column constraint vector observed at a single search
// site (a Scan/IndexScan/ExistenceCheck) against a relation of some arity
// (spec section 3, "Search signature"; ported from
// original_source/src/ram/analysis/RamIndexAnalysis.cpp's SearchSignature).
type Signature []ColumnConstraint

// NewSignature constructs a signature of the given arity with every
// column unconstrained.
func NewSignature(arity int) Signature {
	return make(Signature, arity)
}

// FullSignature constructs a signature that equality-constrains every
// column (the "full-order" search every relation supports).
func FullSignature(arity int) Signature {
	s := make(Signature, arity)
	for i := range s {
		s[i] = Equal
	}

	return s
}

// Arity returns the number of columns this signature classifies.
func (s Signature) Arity() int {
	return len(s)
}

// Empty reports whether every column of s is None.
func (s Signature) Empty() bool {
	for _, c := range s {
		if c != None {
			return false
		}
	}

	return true
}

// ContainsInequality reports whether any column of s is Inequal.
func (s Signature) ContainsInequality() bool {
	for _, c := range s {
		if c == Inequal {
			return true
		}
	}

	return false
}

// Equals reports component-wise equality.
func (s Signature) Equals(o Signature) bool {
	if len(s) != len(o) {
		return false
	}

	for i := range s {
		if s[i] != o[i] {
			return false
		}
	}

	return true
}

// Key returns a value usable as a map key for s (Signature itself is a
// slice and cannot be used directly as a map key).
func (s Signature) Key() string {
	buf := make([]byte, len(s))
	for i, c := range s {
		buf[i] = byte(c)
	}

	return string(buf)
}

// IsSubset reports whether lhs is a (non-strict) subset of rhs: every
// column of lhs is either equal to the corresponding column of rhs, or
// "less constrained" under the None(0) < Equal(1) < Inequal(2) ordering.
// This ordinal test — not the stricter IsComparable below — is what the
// chain-cover edge construction in pkg/datalog/index uses; it is ported
// verbatim from SearchSignature::isSubset.
func IsSubset(lhs, rhs Signature) bool {
	if len(lhs) != len(rhs) {
		panic("ram: mismatched signature arity")
	}

	for i := range lhs {
		switch {
		case lhs[i] == rhs[i]:
			continue
		case lhs[i] < rhs[i]:
			continue
		default:
			return false
		}
	}

	return true
}

// IsStrictSubset reports whether lhs is a subset of rhs and lhs != rhs.
func IsStrictSubset(lhs, rhs Signature) bool {
	return IsSubset(lhs, rhs) && !lhs.Equals(rhs)
}

// IsComparable reports whether lhs and rhs may appear consecutively in a
// single chain: no column may hold mismatched non-None constraints, and
// one must be a strict, inequality-free subset of the other. Ported
// verbatim from SearchSignature::isComparable; this is deliberately
// stricter than IsSubset; see note in original_source: "we have 0 < 1 and
// 0 < 2 but we cannot say that 1 < 2".
func IsComparable(lhs, rhs Signature) bool {
	if len(lhs) != len(rhs) {
		panic("ram: mismatched signature arity")
	}

	for i := range lhs {
		if lhs[i] != rhs[i] && lhs[i] != None && rhs[i] != None {
			return false
		}
	}

	return (IsStrictSubset(lhs, rhs) && !lhs.ContainsInequality()) ||
		(IsStrictSubset(rhs, lhs) && !rhs.ContainsInequality())
}

// Delta returns, for two comparable signatures where lhs is the larger
// (more constrained) of a chain pair, the columns newly constrained by
// lhs relative to rhs — i.e. the columns an index order must append when
// walking from rhs to lhs in a chain.
func Delta(lhs, rhs Signature) Signature {
	if len(lhs) != len(rhs) {
		panic("ram: mismatched signature arity")
	}

	delta := make(Signature, len(lhs))

	for i := range lhs {
		if lhs[i] == rhs[i] {
			delta[i] = None
		} else {
			delta[i] = lhs[i]
		}
	}

	return delta
}

// Discharged returns a copy of s with every Inequal column reset to None.
// Used when the chain-merge pass needs to drop an indexed inequality in
// order to merge two otherwise-incomparable chains (spec section 4.3,
// "Inequality discharge").
func Discharged(s Signature) Signature {
	out := make(Signature, len(s))
	copy(out, s)

	for i, c := range out {
		if c == Inequal {
			out[i] = None
		}
	}

	return out
}

func (s Signature) String() string {
	buf := make([]byte, len(s))

	for i, c := range s {
		switch c {
		case None:
			buf[i] = '0'
		case Equal:
			buf[i] = '1'
		case Inequal:
			buf[i] = '2'
		}
	}

	return fmt.Sprintf("[%s]", string(buf))
}
