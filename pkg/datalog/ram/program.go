package ram

// Subroutine is a named, independently invocable statement, used both for
// the translated program's per-SCC entry points and for provenance
// subproof/negation-subproof subroutines (spec section 4.2, "Subroutines
// for provenance").
type Subroutine struct {
	Name string
	Body Stmt
	// NumArgs is the number of subroutine arguments bound into the
	// top-level context before Body runs.
	NumArgs int
	// ReturnArity is the number of values a ReturnValue operation within
	// Body appends per invocation.
	ReturnArity int
}

// Program is the top-level translated artifact: supplemented per spec
// section C.3 (SPEC_FULL.md), grounded on original_source/src/RamProgram.h
// — rather than handing the evaluator a bare statement tree, the program
// translator (pkg/datalog/translate) exposes a manifest of subroutines and
// output relations alongside it, so that a driver (or the code-gen
// back-end named in spec section 1) does not have to re-derive which
// relations are user-visible by walking the tree.
type Program struct {
	// Main is the entry-point subroutine name (always present in
	// Subroutines).
	Main string
	// Subroutines holds the main program plus, when provenance is
	// enabled, one subproof and one negation-subproof subroutine per
	// user-visible relation.
	Subroutines map[string]*Subroutine
	// Relations lists every relation declared by the program, in the
	// order relevant to Create/Drop emission.
	Relations []RelationRef
	// Outputs names the relations whose contents are user-visible
	// results (as opposed to purely auxiliary delta/new relations).
	Outputs []string
	// Orders is the per-relation index-order list produced by the index
	// analysis pass (spec section 6, "IR-R output (to code-gen
	// back-end)": "together with the per-relation index-order list").
	Orders map[string][]LexOrder
}

// NewProgram constructs an empty program manifest.
func NewProgram() *Program {
	return &Program{
		Subroutines: make(map[string]*Subroutine),
		Orders:      make(map[string][]LexOrder),
	}
}

// RelationByName returns the declared RelationRef for name, or false if
// this program never declared it.
func (p *Program) RelationByName(name string) (RelationRef, bool) {
	for _, r := range p.Relations {
		if r.Name == name {
			return r, true
		}
	}

	return RelationRef{}, false
}
