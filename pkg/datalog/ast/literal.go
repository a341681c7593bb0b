package ast

import "github.com/souffle-lang/souffle-sub001/pkg/datalog/ram"

// LitKind tags the closed set of body-literal kinds (spec section 2,
// "Literals (positive atom, negated atom, binary constraint,
// aggregator)"). Aggregators appear as Argument nodes (spec section 4.1
// walks them via the argument stack), not as body literals directly; this
// matches the spec's own component list, which names "aggregator" among
// Arguments as well as among Literals — an aggregator argument carries its
// own body as a nested literal list (ast.Aggregator.Body), consumed the
// same way a top-level literal list is.
type LitKind uint8

// Literal kinds.
const (
	LitAtom LitKind = iota
	LitNegatedAtom
	LitConstraint
)

// Literal is the closed set of IR-A body-literal nodes.
type Literal interface {
	Kind() LitKind
	isLiteral()
}

// Atom is a positive use of a relation, e.g. `parent(x, y)` (spec section
// 3, "Clause (IR-A)").
type Atom struct {
	Relation string
	Args     []Argument
}

// Kind implements Literal.
func (Atom) Kind() LitKind { return LitAtom }
func (Atom) isLiteral()    {}

// NegatedAtom is `!parent(x, y)` (spec section 4.1, "negation over atom A
// ... becomes !ExistenceCheck").
type NegatedAtom struct {
	Atom Atom
}

// Kind implements Literal.
func (NegatedAtom) Kind() LitKind { return LitNegatedAtom }
func (NegatedAtom) isLiteral()    {}

// Constraint is a binary relational/string constraint between two
// arguments (spec section 4.1, "Body constraints").
type Constraint struct {
	Op    ram.ConstraintOp
	Left  Argument
	Right Argument
}

// Kind implements Literal.
func (Constraint) Kind() LitKind { return LitConstraint }
func (Constraint) isLiteral()    {}
