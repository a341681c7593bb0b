package translate

import (
	"fmt"

	"github.com/souffle-lang/souffle-sub001/pkg/datalog/ast"
	"github.com/souffle-lang/souffle-sub001/pkg/datalog/domain"
	"github.com/souffle-lang/souffle-sub001/pkg/datalog/ram"
)

// location names one tuple-slot position: level (nesting depth assigned
// to a body atom, record constructor, or aggregator) and column within
// that level's tuple (spec section 4.1, "Value index construction").
type location struct {
	level  int
	column int
}

// levelKind tags what a translator-assigned nesting level actually binds.
type levelKind uint8

const (
	levelAtom levelKind = iota
	levelRecord
	levelAggregator
)

// levelInfo is the per-level bookkeeping the clause translator
// accumulates during the value-index-construction walk (spec section
// 4.1, step 1) and consumes during the scan/unpack wrapping walk (step
// 7).
type levelInfo struct {
	kind  levelKind
	arity int

	// levelAtom fields.
	atom ast.Atom
	ref  ram.RelationRef

	// levelRecord fields: the record's nested UnpackRecord reads its
	// source from the parent level's column it was discovered at.
	parentLevel  int
	parentColumn int

	// levelAggregator fields, populated by buildAggregate once its own
	// sub-scan has been translated.
	aggregate *ram.Aggregate
}

// clauseTranslator holds the working state of a single clause's
// translation (spec section 4.1).
type clauseTranslator struct {
	cfg       CompilationConfig
	relations map[string]ram.RelationRef

	nextLevel int
	levels    []levelInfo

	// locations maps a variable name to every (level, column) position
	// it occurs at, in discovery order (spec section 4.1: "bind its
	// name -> set of locations").
	locations map[string][]location

	// constFilters accumulates, per atom level, the equality filters
	// against constant/functor arguments discovered while walking that
	// atom (spec section 4.1, step 7: "Emit constant-equality filters
	// against constants... appearing as arguments").
	constFilters map[int][]ram.Cond

	err error
}

func newClauseTranslator(cfg CompilationConfig, relations map[string]ram.RelationRef) *clauseTranslator {
	return &clauseTranslator{
		cfg:          cfg,
		relations:    relations,
		locations:    make(map[string][]location),
		constFilters: make(map[int][]ram.Cond),
	}
}

func (t *clauseTranslator) fail(format string, args ...any) {
	if t.err == nil {
		t.err = fmt.Errorf(format, args...)
	}
}

func (t *clauseTranslator) relationRef(name string) ram.RelationRef {
	ref, ok := t.relations[name]
	if !ok {
		t.fail("translate: unknown relation %q", name)
	}

	return ref
}

// TranslateClause implements the clause-translator contract (spec
// section 4.1): given a clause (already reordered per any user execution
// plan for this version) and a relation table, produce a single Query
// statement. provenanceVariant, when true, builds the subproof shape
// (innermost op is ReturnValue, not Project) per spec section 4.1,
// "Provenance clause variant".
// A fact (spec section 4.1, "Facts": a clause with no body literals) is
// not special-cased: with zero body atoms, step 1 assigns no levels,
// steps 4-5 find no locations to bind, and step 7's wrapping loop runs
// zero iterations, so the generic path degenerates to exactly
// Project(head, translate(args)) on its own — while still correctly
// building out any aggregator the head argument list references (a
// clause can have an empty Body and a non-constant head when its only
// argument is an aggregator whose own sub-body is nested inside the
// Aggregator argument node, not the outer clause's Body).
func TranslateClause(clause ast.Clause, relations map[string]ram.RelationRef, cfg CompilationConfig, version int, provenanceVariant bool) (*ram.Query, error) {
	return translateClause(clause, relations, cfg, version, provenanceVariant, 0)
}

// translateClause is TranslateClause plus clauseIndex, the clause's
// position in the program's overall clause list. clauseIndex only matters
// when provenance bookkeeping is on: it becomes the constant "rule"
// auxiliary column stamped onto every fact this clause derives (spec
// section 4.2, "Provenance subroutine generation" stamps each derivation
// with the rule that produced it). TranslateClause itself (clauseIndex 0)
// stays the entry point clause_test.go and any caller outside the program
// translator uses.
func translateClause(clause ast.Clause, relations map[string]ram.RelationRef, cfg CompilationConfig, version int, provenanceVariant bool, clauseIndex int) (*ram.Query, error) {
	t := newClauseTranslator(cfg, relations)

	body := reorderBody(clause, version)

	// Step 1: value index construction. Assign levels to every positive
	// atom and nested record constructor, left to right, and record
	// every variable occurrence's location. Aggregators nested directly
	// inside a body atom's arguments get their own level here too;
	// aggregators appearing in the head or in a top-level constraint are
	// instead discovered lazily by translateExprArg/translateHeadArg
	// while steps 2 and 4-5 walk those positions, since each aggregator
	// node is translated exactly once, at the one place it occurs (spec
	// section 4.1: aggregators are anonymous inline expressions, never
	// named or shared by reference the way a variable is).
	for _, lit := range body {
		if atom, ok := lit.(ast.Atom); ok {
			t.walkAtom(atom)
		}
	}

	if t.err != nil {
		return nil, t.err
	}

	// Step 2: projection (or return-value, for the provenance variant).
	headRef := t.relationRef(clause.Head.Relation)

	var innermost ram.Op

	if provenanceVariant {
		innermost = ram.ReturnValue{Args: t.collectReturnValues(clause, body)}
	} else {
		headArgs := make([]ram.Expr, len(clause.Head.Args))
		for i, a := range clause.Head.Args {
			headArgs[i] = t.translateHeadArg(a)
		}

		projectArgs := headArgs

		// Provenance auxiliary columns: <level, rule>. Level is one plus
		// the greatest level any positive body atom's own trailing level
		// column carries; rule is this clause's fixed ordinal (spec
		// section 4.2, "Provenance subroutine generation"). Relations not
		// modelling provenance (AuxiliaryArity != 2) are left untouched.
		if t.cfg.Provenance != ProvenanceOff && headRef.AuxiliaryArity == 2 {
			projectArgs = append(append([]ram.Expr{}, headArgs...),
				ram.Intrinsic{Op: ram.OpDerivationLevel, Args: t.bodyAtomLevelAccesses(body)},
				ram.Constant{Value: domain.ValueOfUnsigned(uint64(clauseIndex)), Type: ram.TypeUnsigned},
			)
		}

		project := ram.Op(ram.Project{Relation: headRef, Args: projectArgs})

		if len(clause.Head.Args) == 0 {
			// Nullary head: guard with an emptiness check for idempotence
			// (spec section 4.1 step 2: "guard the projection with an
			// emptiness check on the head relation").
			project = ram.Filter{Condition: ram.Emptiness{Relation: headRef}, Nested: project}
		}

		innermost = project

		// Step 3: provenance guard. ProvenanceExistence ignores auxiliary
		// columns regardless of Signature, but its Args slice still has
		// TotalArity length (spec section 4.4, "Args has length
		// Relation.TotalArity()"), so the core head args are padded with
		// Undefined placeholders for the trailing <level, rule> columns.
		if t.cfg.Provenance != ProvenanceOff {
			paddedArgs := make([]ram.Expr, headRef.TotalArity())
			copy(paddedArgs, headArgs)

			for i := len(headArgs); i < len(paddedArgs); i++ {
				paddedArgs[i] = ram.Constant{Value: domain.Undefined, Type: headRef.ColumnTypes[i]}
			}

			innermost = ram.Filter{
				Condition: ram.Negation{Term: ram.ProvenanceExistence{
					Relation:  headRef,
					Signature: ram.FullSignature(headRef.TotalArity()),
					Args:      paddedArgs,
				}},
				Nested: innermost,
			}
		}
	}

	if t.err != nil {
		return nil, t.err
	}

	// Steps 4-5: equality bindings and body constraints/negations.
	var conds []ram.Cond

	for _, occurrences := range t.locations {
		for i := 1; i < len(occurrences); i++ {
			conds = append(conds, ram.Constraint{
				Op:    ram.OpEq,
				Left:  ram.ElementAccess{Level: occurrences[0].level, Column: occurrences[0].column},
				Right: ram.ElementAccess{Level: occurrences[i].level, Column: occurrences[i].column},
			})
		}
	}

	for _, lit := range body {
		switch l := lit.(type) {
		case ast.Constraint:
			conds = append(conds, ram.Constraint{
				Op:    l.Op,
				Left:  t.translateExprArg(l.Left),
				Right: t.translateExprArg(l.Right),
			})
		case ast.NegatedAtom:
			conds = append(conds, t.negatedAtomCondition(l.Atom))
		}
	}

	op := innermost

	if len(conds) > 0 {
		op = ram.Filter{Condition: conjoin(conds), Nested: op}
	}

	// Step 6: aggregator layers. Wrap current op in a RamAggregate node
	// per aggregator discovered, outermost first per discovery order.
	for i := len(t.levels) - 1; i >= 0; i-- {
		if t.levels[i].kind != levelAggregator {
			continue
		}

		agg := *t.levels[i].aggregate
		agg.Nested = op
		op = agg
	}

	// Step 7: scan/unpack wrappers, innermost level outward.
	headArity := len(clause.Head.Args)

	for level := t.nextLevel - 1; level >= 0; level-- {
		info := t.levels[level]

		switch info.kind {
		case levelAtom:
			op = t.wrapAtomLevel(level, info, op, headArity == 0, headRef)
		case levelRecord:
			op = ram.UnpackRecord{
				Source: ram.ElementAccess{Level: info.parentLevel, Column: info.parentColumn},
				Arity:  info.arity,
				Level:  level,
				Nested: op,
			}
		case levelAggregator:
			// Already consumed in step 6.
		}
	}

	if t.err != nil {
		return nil, t.err
	}

	return &ram.Query{Root: op, NumSlots: t.nextLevel}, nil
}

func (t *clauseTranslator) wrapAtomLevel(level int, info levelInfo, nested ram.Op, nullaryHead bool, headRef ram.RelationRef) ram.Op {
	op := nested

	if filters := t.constFilters[level]; len(filters) > 0 {
		op = ram.Filter{Condition: conjoin(filters), Nested: op}
	}

	op = ram.Filter{Condition: ram.Negation{Term: ram.Emptiness{Relation: info.ref}}, Nested: op}

	if !allWildcard(info.atom.Args) {
		if nullaryHead {
			// Stop this level's scan as soon as the head relation becomes
			// non-empty: further tuples at this level can only re-derive
			// the same single head fact (spec section 4.1 step 7, nullary
			// head optimisation).
			op = ram.Break{Condition: ram.Negation{Term: ram.Emptiness{Relation: headRef}}, Nested: op}
		}

		op = ram.Scan{Relation: info.ref, Level: level, Nested: op}
	}

	return op
}

// reorderBody applies the clause's user execution plan for the given
// semi-naive version, if any, to its positive atoms, leaving other
// literal kinds at the same relative position between the atoms they
// originally sat between (spec section 4.1, "Reorder handling").
func reorderBody(clause ast.Clause, version int) []ast.Literal {
	perm, ok := clause.Plan[version]
	if !ok || len(perm) == 0 {
		return clause.Body
	}

	var atomIdxs []int

	for i, lit := range clause.Body {
		if _, isAtom := lit.(ast.Atom); isAtom {
			atomIdxs = append(atomIdxs, i)
		}
	}

	if len(perm) != len(atomIdxs) {
		return clause.Body
	}

	reordered := make([]ast.Literal, len(clause.Body))
	copy(reordered, clause.Body)

	for newPos, origAtomOrdinal := range perm {
		reordered[atomIdxs[newPos]] = clause.Body[atomIdxs[origAtomOrdinal]]
	}

	return reordered
}

func allWildcard(args []ast.Argument) bool {
	for _, a := range args {
		if _, ok := a.(ast.Wildcard); !ok {
			return false
		}
	}

	return true
}

func conjoin(conds []ram.Cond) ram.Cond {
	if len(conds) == 1 {
		return conds[0]
	}

	return ram.Conjunction{Terms: conds}
}

// walkAtom assigns a fresh level to a positive body atom and records
// every argument's location or nested structure (spec section 4.1, step
// 1).
func (t *clauseTranslator) walkAtom(atom ast.Atom) {
	ref := t.relationRef(atom.Relation)
	level := t.nextLevel
	t.nextLevel++

	t.levels = append(t.levels, levelInfo{kind: levelAtom, arity: len(atom.Args), atom: atom, ref: ref})

	for col, arg := range atom.Args {
		t.walkAtomArg(arg, level, col)
	}
}

func (t *clauseTranslator) walkAtomArg(arg ast.Argument, level, col int) {
	switch a := arg.(type) {
	case ast.Variable:
		t.locations[a.Name] = append(t.locations[a.Name], location{level: level, column: col})
	case ast.Wildcard:
		// Contributes no location and no constraint.
	case ast.Constant:
		t.constFilters[level] = append(t.constFilters[level], ram.Constraint{
			Op:    ram.OpEq,
			Left:  ram.ElementAccess{Level: level, Column: col},
			Right: ram.Constant{Value: a.Value.Value, Type: a.Value.Type},
		})
	case ast.Functor:
		t.constFilters[level] = append(t.constFilters[level], ram.Constraint{
			Op:    ram.OpEq,
			Left:  ram.ElementAccess{Level: level, Column: col},
			Right: t.translateExprArg(a),
		})
	case ast.RecordConstructor:
		recordLevel := t.nextLevel
		t.nextLevel++
		t.levels = append(t.levels, levelInfo{
			kind: levelRecord, arity: len(a.Fields),
			parentLevel: level, parentColumn: col,
		})

		for fieldCol, field := range a.Fields {
			t.walkAtomArg(field, recordLevel, fieldCol)
		}
	case ast.Aggregator:
		t.buildAggregate(a)
	default:
		t.fail("translate: unsupported argument kind %T in atom position", arg)
	}
}

// buildAggregate assigns a fresh level to an aggregator argument,
// translates its own body into a sub-scan condition, and records the
// resulting ram.Aggregate node for step 6 to graft onto the outer
// operation tree (spec section 4.1, step 6).
func (t *clauseTranslator) buildAggregate(a ast.Aggregator) {
	ref := t.relationRef(a.Relation)
	level := t.nextLevel
	t.nextLevel++

	for col, arg := range a.Args {
		t.walkAtomArg(arg, level, col)
	}

	var bodyConds []ram.Cond

	for _, lit := range a.Body {
		switch l := lit.(type) {
		case ast.Constraint:
			bodyConds = append(bodyConds, ram.Constraint{
				Op:    l.Op,
				Left:  t.translateExprArg(l.Left),
				Right: t.translateExprArg(l.Right),
			})
		case ast.NegatedAtom:
			bodyConds = append(bodyConds, t.negatedAtomCondition(l.Atom))
		}
	}

	target := t.translateExprArg(a.Target)

	aggregate := ram.Aggregate{
		Relation:  ref,
		Signature: ram.NewSignature(ref.TotalArity()),
		Func:      a.Func,
		Target:    target,
		Condition: conjoinOrTrue(bodyConds),
		Level:     level,
	}

	t.levels = append(t.levels, levelInfo{
		kind: levelAggregator, arity: len(a.Args),
		aggregate: &aggregate,
	})
}

// bodyAtomLevelAccesses returns, for every positive body atom whose
// relation itself carries the <level, rule> auxiliary pair, an
// ElementAccess reading that atom's own level column — the operands
// OpDerivationLevel folds over (spec section 4.2, "rule firings over
// already-derived facts take the derivation one level deeper than their
// deepest premise").
func (t *clauseTranslator) bodyAtomLevelAccesses(body []ast.Literal) []ram.Expr {
	var out []ram.Expr

	for level, info := range t.levels {
		if info.kind != levelAtom {
			continue
		}

		if info.ref.AuxiliaryArity != 2 {
			continue
		}

		out = append(out, ram.ElementAccess{Level: level, Column: info.ref.Arity})
	}

	return out
}

func conjoinOrTrue(conds []ram.Cond) ram.Cond {
	if len(conds) == 0 {
		return ram.True{}
	}

	return conjoin(conds)
}

// negatedAtomCondition implements spec section 4.1 step 5: "A negation
// over atom A with arguments (a1..ak, undefined..) becomes
// !ExistenceCheck(A, (translate(a1)..translate(ak), undef..)); a
// zero-arity negation is an EmptinessCheck."
func (t *clauseTranslator) negatedAtomCondition(atom ast.Atom) ram.Cond {
	ref := t.relationRef(atom.Relation)

	if len(atom.Args) == 0 {
		return ram.Negation{Term: ram.Emptiness{Relation: ref}}
	}

	sig := make(ram.Signature, ref.TotalArity())
	args := make([]ram.Expr, ref.TotalArity())

	for i := 0; i < ref.TotalArity(); i++ {
		if i < len(atom.Args) {
			sig[i] = ram.Equal
			args[i] = t.translateExprArg(atom.Args[i])
		} else {
			sig[i] = ram.None
			args[i] = ram.Constant{Value: domain.Undefined, Type: ref.ColumnTypes[i]}
		}
	}

	return ram.Negation{Term: ram.Existence{Relation: ref, Signature: sig, Args: args}}
}

// translateExprArg translates an argument appearing in an expression
// position (constraint operands, aggregator target/args): unlike a body
// atom position, a bare variable here must already have been bound by
// the value index, and a record constructor here is a construction
// (PackRecord), not a destructuring pattern.
func (t *clauseTranslator) translateExprArg(arg ast.Argument) ram.Expr {
	switch a := arg.(type) {
	case ast.Variable:
		locs := t.locations[a.Name]
		if len(locs) == 0 {
			t.fail("translate: variable %q used before it is bound by any body atom", a.Name)
			return ram.Constant{Value: domain.Undefined}
		}

		return ram.ElementAccess{Level: locs[0].level, Column: locs[0].column}
	case ast.Constant:
		return ram.Constant{Value: a.Value.Value, Type: a.Value.Type}
	case ast.Wildcard:
		return ram.Constant{Value: domain.Undefined}
	case ast.Functor:
		return t.translateFunctor(a)
	case ast.RecordConstructor:
		args := make([]ram.Expr, len(a.Fields))
		for i, f := range a.Fields {
			args[i] = t.translateExprArg(f)
		}

		return ram.PackRecord{Args: args}
	case ast.Aggregator:
		t.buildAggregate(a)
		level := t.levels[len(t.levels)-1].aggregate.Level

		return ram.ElementAccess{Level: level, Column: 0}
	case ast.SubroutineArg:
		return ram.ElementAccess{Level: -1, Column: a.Index}
	default:
		t.fail("translate: unsupported argument kind %T in expression position", arg)
		return ram.Constant{Value: domain.Undefined}
	}
}

// translateHeadArg is translateExprArg specialised for head-atom
// positions (identical save for naming, since IR-A does not distinguish
// them structurally).
func (t *clauseTranslator) translateHeadArg(arg ast.Argument) ram.Expr {
	return t.translateExprArg(arg)
}

func (t *clauseTranslator) translateFunctor(f ast.Functor) ram.Expr {
	args := make([]ram.Expr, len(f.Args))
	for i, a := range f.Args {
		args[i] = t.translateExprArg(a)
	}

	if !f.IsUser {
		if op, ok := intrinsicByName(f.Name); ok {
			return ram.Intrinsic{Op: op, Args: args}
		}
	}

	return ram.UserFunctor{Name: f.Name, Args: args, Params: f.Params, ReturnType: f.ReturnType}
}

func intrinsicByName(name string) (ram.IntrinsicOp, bool) {
	switch name {
	case "+":
		return ram.OpAdd, true
	case "-":
		return ram.OpSub, true
	case "*":
		return ram.OpMul, true
	case "/":
		return ram.OpDiv, true
	case "%":
		return ram.OpMod, true
	case "band":
		return ram.OpBitAnd, true
	case "bor":
		return ram.OpBitOr, true
	case "bxor":
		return ram.OpBitXor, true
	case "neg":
		return ram.OpNeg, true
	case "cat":
		return ram.OpStrCat, true
	case "strlen":
		return ram.OpStrLen, true
	case "substr":
		return ram.OpSubstr, true
	case "to_number":
		return ram.OpToNumber, true
	case "to_string":
		return ram.OpToString, true
	case "ord":
		return ram.OpOrd, true
	default:
		return 0, false
	}
}

// collectReturnValues gathers the translated expression for every head
// argument followed by every positive body-atom argument except record
// constructors, in clause order, for the provenance subproof variant's
// ReturnValue (spec section
// 4.1, "Provenance clause variant": "the sub-routine yields the concrete
// values used to derive one head fact").
func (t *clauseTranslator) collectReturnValues(clause ast.Clause, body []ast.Literal) []ram.Expr {
	var out []ram.Expr

	for _, arg := range clause.Head.Args {
		out = append(out, t.translateHeadArg(arg))
	}

	for _, lit := range body {
		atom, ok := lit.(ast.Atom)
		if !ok {
			continue
		}

		for _, arg := range atom.Args {
			if _, isRecord := arg.(ast.RecordConstructor); isRecord {
				continue
			}

			out = append(out, t.translateExprArg(arg))
		}
	}

	return out
}
