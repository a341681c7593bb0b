package ast

import "github.com/souffle-lang/souffle-sub001/pkg/datalog/ram"

// ExecutionPlan maps a clause version index to a permutation of body-atom
// positions, supplied by the user to override the default left-to-right
// join order (spec section 3, "Clause (IR-A)": "optional user execution
// plan"). Only positive atoms are reordered by a plan; literals of other
// kinds stay at the same relative position between the atoms they
// originally sat between (spec section 4.1, "Reorder handling").
type ExecutionPlan map[int][]int

// Clause is a single Datalog rule: a head atom derived from a conjunction
// of body literals (spec section 3, "Clause (IR-A)").
type Clause struct {
	Head Atom
	Body []Literal
	Plan ExecutionPlan
	// Recursive is copied unchanged by the translator, but nothing in this
	// module sets or reads it: the program translator takes recursiveness
	// from precedence.SCC.Recursive and never infers it from clause shape —
	// see SPEC_FULL.md section D, "SCC-vs-program recursion".
	Recursive bool
}

// IsFact reports whether this clause has no body literals at all (spec
// section 4.1, "Facts").
func (c Clause) IsFact() bool {
	return len(c.Body) == 0
}

// RelationDecl declares a relation's shape, independent of any clause
// that defines it (spec section 6, "Each relation exposes: name, arity,
// auxiliary arity, per-attribute type names, representation tag").
type RelationDecl struct {
	Ref ram.RelationRef
	// AttributeNames has length Ref.Arity and names each application-
	// visible column (used by the reader/writer capability's
	// attributeNames directive).
	AttributeNames []string
}

// Program is the complete IR-A input: every relation declaration and
// every clause (spec section 6, "IR-A input").
type Program struct {
	Relations map[string]RelationDecl
	Clauses   []Clause
}

// ClausesFor returns every clause whose head names relation.
func (p *Program) ClausesFor(relation string) []Clause {
	var out []Clause

	for _, c := range p.Clauses {
		if c.Head.Relation == relation {
			out = append(out, c)
		}
	}

	return out
}
