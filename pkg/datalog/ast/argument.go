// Package ast defines IR-A: the declarative surface-syntax intermediate
// form this compiler accepts as input (spec section 2, component 2). IR-A
// arrives fully formed — type-checked and name-resolved by an external
// collaborator (spec section 1, "Out of scope") — so this package is a
// plain, parent-owns-children data model with no mutation helpers beyond
// construction; rewrites are expressed by the translator building fresh
// IR-R nodes, not by mutating IR-A in place (design note "Cyclic ownership
// of IR nodes").
package ast

import "github.com/souffle-lang/souffle-sub001/pkg/datalog/ram"

// ArgKind tags the closed set of argument node kinds (spec section 2,
// "Arguments (variables, constants, functors, record constructors,
// aggregators, subroutine arguments)").
type ArgKind uint8

// Argument kinds.
const (
	ArgVariable ArgKind = iota
	ArgConstant
	ArgFunctor
	ArgRecord
	ArgAggregator
	ArgSubroutineArg
	ArgWildcard
)

// Argument is the closed set of IR-A argument nodes.
type Argument interface {
	Kind() ArgKind
	isArgument()
}

// Variable names a logic variable occurrence.
type Variable struct {
	Name string
}

// Kind implements Argument.
func (Variable) Kind() ArgKind { return ArgVariable }
func (Variable) isArgument()   {}

// Constant is a ground value of a known column type (already resolved by
// the external type checker — spec section 1, "Out of scope").
type Constant struct {
	Value ram.Constant
}

// Kind implements Argument.
func (Constant) Kind() ArgKind { return ArgConstant }
func (Constant) isArgument()   {}

// Functor applies a named (intrinsic or user) function to Args, producing
// a value of ReturnType.
type Functor struct {
	Name       string
	Args       []Argument
	IsUser     bool
	ReturnType ram.ColumnType
	Params     []ram.FunctorParam
}

// Kind implements Argument.
func (Functor) Kind() ArgKind { return ArgFunctor }
func (Functor) isArgument()   {}

// RecordConstructor builds a record from Fields (spec section 4.1,
// "nested record constructor").
type RecordConstructor struct {
	Fields []Argument
}

// Kind implements Argument.
func (RecordConstructor) Kind() ArgKind { return ArgRecord }
func (RecordConstructor) isArgument()   {}

// AggregateFunc is an alias of ram.AggregateFunc: IR-A aggregators use the
// same function tags as IR-R; what differs is that an IR-A aggregator
// carries its own body literals rather than a lowered RAM condition.
type AggregateFunc = ram.AggregateFunc

// Aggregator computes Func over the bindings of Target across every
// solution of Body within Relation (spec section 2, "aggregators"; spec
// section 4.1, "Aggregator layers").
type Aggregator struct {
	Func     AggregateFunc
	Target   Argument
	Relation string
	Args     []Argument
	Body     []Literal
}

// Kind implements Argument.
func (Aggregator) Kind() ArgKind { return ArgAggregator }
func (Aggregator) isArgument()   {}

// SubroutineArg refers to the Nth argument passed into a generated
// provenance subroutine (spec section 4.2, "turns head-tuple arguments
// into subroutine arguments").
type SubroutineArg struct {
	Index int
}

// Kind implements Argument.
func (SubroutineArg) Kind() ArgKind { return ArgSubroutineArg }
func (SubroutineArg) isArgument()   {}

// Wildcard is the anonymous "_" argument: it never binds, never
// constrains, and never groundedness-checks.
type Wildcard struct{}

// Kind implements Argument.
func (Wildcard) Kind() ArgKind { return ArgWildcard }
func (Wildcard) isArgument()   {}
