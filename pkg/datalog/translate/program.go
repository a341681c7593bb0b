package translate

import (
	"fmt"
	"sort"

	"github.com/souffle-lang/souffle-sub001/pkg/datalog/ast"
	"github.com/souffle-lang/souffle-sub001/pkg/datalog/index"
	"github.com/souffle-lang/souffle-sub001/pkg/datalog/precedence"
	"github.com/souffle-lang/souffle-sub001/pkg/datalog/ram"
)

// TranslateProgram implements the program translator (spec section 4.2):
// given the complete IR-A input, it schedules every relation's defining
// clauses by SCC topological order, lowers non-recursive SCCs via a
// straight-line concatenation of their clauses' queries, lowers recursive
// SCCs via the semi-naive delta/new evaluation scheme, and returns the
// populated ram.Program manifest (supplemented feature C.3) a driver
// invokes through pkg/datalog/eval.
func TranslateProgram(program *ast.Program, cfg CompilationConfig) (*ram.Program, error) {
	pt, err := newProgramTranslator(program, cfg)
	if err != nil {
		return nil, err
	}

	log := cfg.logger()
	log.WithField("relations", len(program.Relations)).Info("translating program")

	schedule := precedence.ComputeSchedule(pt.graph)

	var main []ram.Stmt

	for _, scc := range schedule.SCCs {
		log.WithFields(logFields(scc)).Debug("scheduling scc")

		var (
			body ram.Stmt
			err  error
		)

		if scc.Recursive {
			body, err = pt.translateRecursiveSCC(scc)
		} else {
			body, err = pt.translateNonRecursiveSCC(scc)
		}

		if err != nil {
			return nil, err
		}

		main = append(main, body)
	}

	return pt.assemble(main)
}

func logFields(scc precedence.SCC) map[string]any {
	return map[string]any{"relations": scc.Relations, "recursive": scc.Recursive}
}

// programTranslator holds the working state of a whole-program
// translation: the relation table, the precedence graph, every clause
// indexed by its global ordinal (used as the provenance "rule" column),
// and the per-relation search-signature collectors index analysis (spec
// section 4.3) solves once every clause has been lowered.
type programTranslator struct {
	program   *ast.Program
	cfg       CompilationConfig
	relations map[string]ram.RelationRef
	graph     *precedence.Graph

	clausesByRelation map[string][]indexedClause

	// auxiliary relations introduced for semi-naive evaluation, keyed by
	// their synthetic name, so assemble() can list them in Program.Relations
	// alongside the declared ones.
	auxRelations map[string]ram.RelationRef
	auxOrderOf   map[string]string // aux relation name -> base relation name, for order reuse

	selections map[string]*index.Selection
}

type indexedClause struct {
	clause ast.Clause
	index  int
}

func newProgramTranslator(program *ast.Program, cfg CompilationConfig) (*programTranslator, error) {
	relations := make(map[string]ram.RelationRef, len(program.Relations))
	for name, decl := range program.Relations {
		relations[name] = decl.Ref
	}

	clausesByRelation := make(map[string][]indexedClause)

	for i, c := range program.Clauses {
		clausesByRelation[c.Head.Relation] = append(clausesByRelation[c.Head.Relation], indexedClause{clause: c, index: i})

		if _, ok := relations[c.Head.Relation]; !ok {
			return nil, fmt.Errorf("translate: clause head names undeclared relation %q", c.Head.Relation)
		}
	}

	return &programTranslator{
		program:           program,
		cfg:               cfg,
		relations:         relations,
		graph:             precedence.Build(program),
		clausesByRelation: clausesByRelation,
		auxRelations:      make(map[string]ram.RelationRef),
		auxOrderOf:        make(map[string]string),
		selections:        make(map[string]*index.Selection),
	}, nil
}

func (pt *programTranslator) selectionFor(ref ram.RelationRef) *index.Selection {
	sel, ok := pt.selections[ref.Name]
	if !ok {
		sel = index.NewSelection(ref.TotalArity())
		pt.selections[ref.Name] = sel
	}

	return sel
}

// collectSignatures records every search signature a translated query's
// Existence/ProvenanceExistence conditions and Aggregate operations carry,
// feeding pkg/datalog/index's chain-cover solver (spec section 4.3,
// "Input: every search signature observed").
func (pt *programTranslator) collectSignatures(root ram.Op) {
	var walkOp func(op ram.Op)

	var walkCond func(c ram.Cond)

	walkCond = func(c ram.Cond) {
		switch cc := c.(type) {
		case ram.Existence:
			pt.selectionFor(cc.Relation).AddSearch(cc.Signature)
		case ram.ProvenanceExistence:
			pt.selectionFor(cc.Relation).AddSearch(cc.Signature)
		case ram.Negation:
			walkCond(cc.Term)
		case ram.Conjunction:
			for _, t := range cc.Terms {
				walkCond(t)
			}
		}
	}

	walkOp = func(op ram.Op) {
		switch o := op.(type) {
		case ram.Scan:
			walkOp(o.Nested)
		case ram.IndexScan:
			pt.selectionFor(o.Relation).AddSearch(o.Signature)
			walkOp(o.Nested)
		case ram.Choice:
			walkCond(o.Condition)
			walkOp(o.Nested)
		case ram.IndexChoice:
			pt.selectionFor(o.Relation).AddSearch(o.Signature)
			walkCond(o.Condition)
			walkOp(o.Nested)
		case ram.Filter:
			walkCond(o.Condition)
			walkOp(o.Nested)
		case ram.Break:
			walkCond(o.Condition)
			walkOp(o.Nested)
		case ram.UnpackRecord:
			walkOp(o.Nested)
		case ram.Aggregate:
			if !o.Signature.Empty() {
				pt.selectionFor(o.Relation).AddSearch(o.Signature)
			}

			walkOp(o.Nested)
		}
	}

	walkOp(root)
}

// translateNonRecursiveSCC concatenates every clause of every relation in
// scc (a singleton, non-recursive component) into one Sequence, wrapped in
// a LogTimer per relation (spec section 4.2, "Non-recursive relations:
// concatenate the translated clauses... optionally wrapped in a
// LogTimer").
func (pt *programTranslator) translateNonRecursiveSCC(scc precedence.SCC) (ram.Stmt, error) {
	var outer []ram.Stmt

	for _, r := range scc.Relations {
		var body []ram.Stmt

		for _, ic := range pt.clausesByRelation[r] {
			q, err := translateClause(ic.clause, pt.relations, pt.cfg, 0, false, ic.index)
			if err != nil {
				return nil, fmt.Errorf("translate: relation %q clause %d: %w", r, ic.index, err)
			}

			pt.collectSignatures(q.Root)
			body = append(body, *q)
		}

		if len(body) == 0 {
			continue
		}

		outer = append(outer, ram.LogTimer{Message: "relation " + r, Body: ram.Sequence{Body: body}})
	}

	return ram.Sequence{Body: outer}, nil
}

// translateRecursiveSCC implements the semi-naive evaluation scaffold
// (spec section 4.2, "Recursive SCCs"): delta/new auxiliary relations per
// member, a seed pass over clauses that never reference the SCC, a loop
// body of one "version" per (clause, SCC-body-atom) pair substituting that
// atom's scan for a scan over the atom relation's delta, and the
// Merge/Swap/Clear update block gated by an Exit once every new_R is
// empty.
func (pt *programTranslator) translateRecursiveSCC(scc precedence.SCC) (ram.Stmt, error) {
	members := make(map[string]bool, len(scc.Relations))
	for _, r := range scc.Relations {
		members[r] = true
	}

	deltaRefs := make(map[string]ram.RelationRef, len(scc.Relations))
	newRefs := make(map[string]ram.RelationRef, len(scc.Relations))

	for _, r := range scc.Relations {
		base := pt.relations[r]
		deltaRefs[r] = renamedRef(base, deltaName(r))
		newRefs[r] = renamedRef(base, newName(r))

		pt.auxRelations[deltaRefs[r].Name] = deltaRefs[r]
		pt.auxRelations[newRefs[r].Name] = newRefs[r]
		pt.auxOrderOf[deltaRefs[r].Name] = r
		pt.auxOrderOf[newRefs[r].Name] = r
	}

	var seed []ram.Stmt

	for _, r := range scc.Relations {
		for _, ic := range pt.clausesByRelation[r] {
			if clauseReferencesAny(ic.clause, members) {
				continue
			}

			q, err := translateClause(ic.clause, pt.relations, pt.cfg, 0, false, ic.index)
			if err != nil {
				return nil, fmt.Errorf("translate: seeding relation %q clause %d: %w", r, ic.index, err)
			}

			pt.collectSignatures(q.Root)
			seed = append(seed, *q)
		}
	}

	var stmts []ram.Stmt

	if len(seed) > 0 {
		stmts = append(stmts, ram.LogTimer{
			Message: "seeding recursive relations " + joinNames(scc.Relations),
			Body:    ram.Sequence{Body: seed},
		})
	}

	for _, r := range scc.Relations {
		stmts = append(stmts, ram.Merge{Src: pt.relations[r], Dst: deltaRefs[r]})
	}

	var loopBody []ram.Stmt
	version := 0

	for _, r := range scc.Relations {
		for _, ic := range pt.clausesByRelation[r] {
			ordinals := sccAtomOrdinals(ic.clause, members)
			if len(ordinals) == 0 {
				// Already handled by the seed pass.
				continue
			}

			for _, ordinal := range ordinals {
				versionClause, substituted := rewriteVersion(ic.clause, ordinal, newRefs[r].Name)

				versionRelations := make(map[string]ram.RelationRef, len(pt.relations)+2)
				for k, v := range pt.relations {
					versionRelations[k] = v
				}

				versionRelations[deltaAtomName(substituted)] = deltaRefs[substituted]
				versionRelations[newRefs[r].Name] = newRefs[r]

				q, err := translateClause(versionClause, versionRelations, pt.cfg, version, false, ic.index)
				if err != nil {
					return nil, fmt.Errorf("translate: recursive relation %q clause %d version %d: %w", r, ic.index, version, err)
				}

				pt.collectSignatures(q.Root)
				loopBody = append(loopBody, *q)
				version++
			}
		}
	}

	var exitTerms []ram.Cond
	for _, r := range scc.Relations {
		exitTerms = append(exitTerms, ram.Emptiness{Relation: newRefs[r]})
	}

	loopBody = append(loopBody, ram.Exit{Condition: conjoin(exitTerms)})

	for _, r := range scc.Relations {
		loopBody = append(loopBody, ram.Merge{Src: newRefs[r], Dst: pt.relations[r]})
	}

	for _, r := range scc.Relations {
		loopBody = append(loopBody, ram.Swap{A: deltaRefs[r], B: newRefs[r]})
		loopBody = append(loopBody, ram.Clear{Relation: newRefs[r]})
	}

	stmts = append(stmts, ram.LogTimer{
		Message: "fixpoint over " + joinNames(scc.Relations),
		Body:    ram.Loop{Body: ram.Sequence{Body: loopBody}},
	})

	for _, r := range scc.Relations {
		stmts = append(stmts, ram.Clear{Relation: deltaRefs[r]})
	}

	return ram.Sequence{Body: stmts}, nil
}

// assemble wires main's generated body together with Create/Load at the
// front and Store/Drop at the back, computes each relation's index orders
// from the signatures collected while translating (spec section 4.3), and
// builds the final ram.Program manifest via ram.NewProgram (spec section
// C.3).
func (pt *programTranslator) assemble(main []ram.Stmt) (*ram.Program, error) {
	p := ram.NewProgram()
	p.Main = "main"

	orderedNames := make([]string, 0, len(pt.program.Relations))
	for name := range pt.program.Relations {
		orderedNames = append(orderedNames, name)
	}

	sort.Strings(orderedNames)

	for _, name := range orderedNames {
		ref := pt.relations[name]

		orders, err := pt.ordersFor(ref)
		if err != nil {
			return nil, fmt.Errorf("translate: index selection for %q: %w", name, err)
		}

		p.Orders[name] = orders
		p.Relations = append(p.Relations, ref)
	}

	for auxName, ref := range pt.auxRelations {
		p.Orders[auxName] = p.Orders[pt.auxOrderOf[auxName]]
		p.Relations = append(p.Relations, ref)
	}

	var preamble, postamble []ram.Stmt

	for _, name := range orderedNames {
		preamble = append(preamble, ram.Create{Relation: pt.relations[name], Orders: p.Orders[name]})
	}

	for auxName, ref := range pt.auxRelations {
		preamble = append(preamble, ram.Create{Relation: ref, Orders: p.Orders[auxName]})
	}

	for _, name := range orderedNames {
		if len(pt.clausesByRelation[name]) == 0 {
			// Extensional relation: no clause derives it, so it is loaded
			// from an external source rather than computed (spec section
			// 6, "Reader capability").
			preamble = append(preamble, ram.Load{
				Relation:   pt.relations[name],
				Directives: defaultIODirectives(pt.relations[name], pt.program.Relations[name].AttributeNames, "load"),
			})

			continue
		}

		if pt.cfg.Provenance == ProvenanceOff {
			p.Outputs = append(p.Outputs, name)
			postamble = append(postamble, ram.Store{
				Relation:   pt.relations[name],
				Directives: defaultIODirectives(pt.relations[name], pt.program.Relations[name].AttributeNames, "store"),
			})
		} else {
			// Load/Store scheduling is suppressed when provenance is
			// enabled: the provenance subroutines below answer queries
			// interactively instead of materialising every intensional
			// relation to a sink (spec section 4.2, "Provenance clause
			// variant").
			p.Outputs = append(p.Outputs, name)
		}
	}

	for _, ref := range pt.auxRelations {
		postamble = append(postamble, ram.Drop{Relation: ref})
	}

	for _, name := range orderedNames {
		postamble = append(postamble, ram.Drop{Relation: pt.relations[name]})
	}

	body := ram.Sequence{Body: append(append(append([]ram.Stmt{}, preamble...), main...), postamble...)}

	p.Subroutines["main"] = &ram.Subroutine{Name: "main", Body: body}

	if pt.cfg.Provenance != ProvenanceOff {
		if err := pt.buildProvenanceSubroutines(p); err != nil {
			return nil, err
		}
	}

	return p, nil
}

// buildProvenanceSubroutines generates one subproof and one
// negation-subproof subroutine per relation with defining clauses (spec
// section 4.2, "Provenance subroutine generation"): each runs every clause
// defining that relation in the provenance-variant shape (ReturnValue
// instead of Project) and returns the witness values of every match, in
// clause order. The negation-subproof subroutine has the same body as the
// subproof one; it does not check that no derivation exists for a tuple.
func (pt *programTranslator) buildProvenanceSubroutines(p *ram.Program) error {
	for name, decl := range pt.program.Relations {
		clauses := pt.clausesByRelation[name]
		if len(clauses) == 0 {
			continue
		}

		var alternatives []ram.Stmt

		returnArity := decl.Ref.Arity

		for _, ic := range clauses {
			q, err := translateClause(ic.clause, pt.relations, pt.cfg, 0, true, ic.index)
			if err != nil {
				return fmt.Errorf("translate: subproof for %q clause %d: %w", name, ic.index, err)
			}

			alternatives = append(alternatives, *q)
		}

		sub := &ram.Subroutine{
			Name:        "subproof_" + name,
			Body:        ram.Sequence{Body: alternatives},
			NumArgs:     decl.Ref.TotalArity(),
			ReturnArity: returnArity,
		}
		p.Subroutines[sub.Name] = sub

		negSub := &ram.Subroutine{
			Name:        "negation_subproof_" + name,
			Body:        ram.Sequence{Body: alternatives},
			NumArgs:     decl.Ref.TotalArity(),
			ReturnArity: returnArity,
		}
		p.Subroutines[negSub.Name] = negSub
	}

	return nil
}

func (pt *programTranslator) ordersFor(ref ram.RelationRef) ([]ram.LexOrder, error) {
	sel, ok := pt.selections[ref.Name]
	if !ok {
		sel = index.NewSelection(ref.TotalArity())
	}

	return sel.Solve()
}

func deltaName(name string) string { return "@delta_" + name }
func newName(name string) string   { return "@new_" + name }

func deltaAtomName(name string) string { return "@delta_" + name }

func renamedRef(ref ram.RelationRef, name string) ram.RelationRef {
	ref.Name = name

	return ref
}

func defaultIODirectives(ref ram.RelationRef, attrNames []string, op string) ram.IODirectives {
	mask := make([]bool, ref.TotalArity())
	for i, t := range ref.ColumnTypes {
		mask[i] = t == ram.TypeSymbol
	}

	ext := ".facts"
	if op == "store" {
		ext = ".csv"
	}

	return ram.IODirectives{
		IO:         "file",
		Filename:   ref.Name + ext,
		Name:       ref.Name,
		Delimiter:  "\t",
		Operation:  op,
		AttrNames:  attrNames,
		SymbolMask: mask,
	}
}

// clauseReferencesAny reports whether clause's body (including nested
// aggregator bodies) contains a positive atom naming a relation in
// members.
func clauseReferencesAny(clause ast.Clause, members map[string]bool) bool {
	return len(sccAtomOrdinals(clause, members)) > 0
}

// sccAtomOrdinals returns, in body order, the 0-based ordinal (counting
// only positive atoms, matching reorderBody's own indexing convention) of
// every body atom naming a relation in members.
func sccAtomOrdinals(clause ast.Clause, members map[string]bool) []int {
	var ordinals []int

	ordinal := -1

	for _, lit := range clause.Body {
		atom, ok := lit.(ast.Atom)
		if !ok {
			continue
		}

		ordinal++

		if members[atom.Relation] {
			ordinals = append(ordinals, ordinal)
		}
	}

	return ordinals
}

// rewriteVersion returns a copy of clause with its atomOrdinal-th positive
// body atom renamed to its synthetic delta name and its head renamed to
// headName, plus the original relation name that atom referenced (spec
// section 4.2, "per-clause versions... substituting @new_R / @delta_rel(Aj)
// for k > j"). Every other body atom is left referencing its original
// relation name, which the caller's relation table still maps to the full
// (not delta) relation -- exactly the semi-naive rule that only the
// version's one designated atom reads from delta.
func rewriteVersion(clause ast.Clause, atomOrdinal int, headName string) (ast.Clause, string) {
	newBody := make([]ast.Literal, len(clause.Body))
	copy(newBody, clause.Body)

	var substituted string

	ordinal := -1

	for i, lit := range clause.Body {
		atom, ok := lit.(ast.Atom)
		if !ok {
			continue
		}

		ordinal++

		if ordinal == atomOrdinal {
			substituted = atom.Relation
			renamed := atom
			renamed.Relation = deltaAtomName(atom.Relation)
			newBody[i] = renamed
		}
	}

	newHead := clause.Head
	newHead.Relation = headName

	return ast.Clause{Head: newHead, Body: newBody, Plan: clause.Plan, Recursive: clause.Recursive}, substituted
}

func joinNames(names []string) string {
	out := ""

	for i, n := range names {
		if i > 0 {
			out += ","
		}

		out += n
	}

	return out
}
