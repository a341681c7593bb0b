package translate

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/souffle-lang/souffle-sub001/pkg/datalog/ast"
	"github.com/souffle-lang/souffle-sub001/pkg/datalog/domain"
	"github.com/souffle-lang/souffle-sub001/pkg/datalog/ram"
)

func relTable(refs ...ram.RelationRef) map[string]ram.RelationRef {
	out := make(map[string]ram.RelationRef, len(refs))
	for _, r := range refs {
		out[r.Name] = r
	}

	return out
}

func countOps(op ram.Op, kind ram.OpKind) int {
	if op == nil {
		return 0
	}

	n := 0
	if op.Kind() == kind {
		n++
	}

	switch o := op.(type) {
	case ram.Scan:
		n += countOps(o.Nested, kind)
	case ram.Filter:
		n += countOps(o.Nested, kind)
	case ram.Break:
		n += countOps(o.Nested, kind)
	case ram.UnpackRecord:
		n += countOps(o.Nested, kind)
	case ram.Aggregate:
		n += countOps(o.Nested, kind)
	}

	return n
}

// edge(x, y) :- edge(x, z), edge(z, y).
func transitiveClosureClause() (ast.Clause, map[string]ram.RelationRef) {
	edge := ram.RelationRef{Name: "edge", Arity: 2, ColumnTypes: []ram.ColumnType{ram.TypeUnsigned, ram.TypeUnsigned}}

	clause := ast.Clause{
		Head: ast.Atom{Relation: "edge", Args: []ast.Argument{ast.Variable{Name: "x"}, ast.Variable{Name: "y"}}},
		Body: []ast.Literal{
			ast.Atom{Relation: "edge", Args: []ast.Argument{ast.Variable{Name: "x"}, ast.Variable{Name: "z"}}},
			ast.Atom{Relation: "edge", Args: []ast.Argument{ast.Variable{Name: "z"}, ast.Variable{Name: "y"}}},
		},
	}

	return clause, relTable(edge)
}

func TestTranslateClauseProducesOneQueryPerTwoAtomBody(t *testing.T) {
	clause, rels := transitiveClosureClause()

	q, err := TranslateClause(clause, rels, CompilationConfig{}, 0, false)
	require.NoError(t, err)
	require.NotNil(t, q)

	assert.Equal(t, 2, q.NumSlots)
	assert.Equal(t, 2, countOps(q.Root, ram.OpScan))
	assert.Equal(t, 1, countOps(q.Root, ram.OpProject))
}

func TestTranslateClauseRepeatedVariableEmitsEqualityFilter(t *testing.T) {
	// samePair(x) :- pair(x, x): x occurs twice within the single body
	// atom, so the value index must bind an explicit equality between
	// the two locations it's read from.
	pair := ram.RelationRef{Name: "pair", Arity: 2, ColumnTypes: []ram.ColumnType{ram.TypeUnsigned, ram.TypeUnsigned}}
	samePair := ram.RelationRef{Name: "samePair", Arity: 1, ColumnTypes: []ram.ColumnType{ram.TypeUnsigned}}

	clause := ast.Clause{
		Head: ast.Atom{Relation: "samePair", Args: []ast.Argument{ast.Variable{Name: "x"}}},
		Body: []ast.Literal{
			ast.Atom{Relation: "pair", Args: []ast.Argument{ast.Variable{Name: "x"}, ast.Variable{Name: "x"}}},
		},
	}

	q, err := TranslateClause(clause, relTable(pair, samePair), CompilationConfig{}, 0, false)
	require.NoError(t, err)

	// One Filter for the atom's emptiness guard, one for the x=x binding.
	assert.Equal(t, 2, countOps(q.Root, ram.OpFilter))
}

func TestTranslateClauseFactSkipsScanning(t *testing.T) {
	edge := ram.RelationRef{Name: "edge", Arity: 2, ColumnTypes: []ram.ColumnType{ram.TypeUnsigned, ram.TypeUnsigned}}

	clause := ast.Clause{
		Head: ast.Atom{Relation: "edge", Args: []ast.Argument{
			ast.Constant{Value: ram.Constant{Value: domain.ValueOfUnsigned(1), Type: ram.TypeUnsigned}},
			ast.Constant{Value: ram.Constant{Value: domain.ValueOfUnsigned(2), Type: ram.TypeUnsigned}},
		}},
	}

	require.True(t, clause.IsFact())

	q, err := TranslateClause(clause, relTable(edge), CompilationConfig{}, 0, false)
	require.NoError(t, err)
	assert.Equal(t, 0, q.NumSlots)
	assert.Equal(t, ram.OpProject, q.Root.Kind())
}

func TestTranslateClauseNegatedAtomBecomesExistenceCheck(t *testing.T) {
	// reachable(x) :- node(x), !excluded(x).
	node := ram.RelationRef{Name: "node", Arity: 1, ColumnTypes: []ram.ColumnType{ram.TypeUnsigned}}
	excluded := ram.RelationRef{Name: "excluded", Arity: 1, ColumnTypes: []ram.ColumnType{ram.TypeUnsigned}}
	reachable := ram.RelationRef{Name: "reachable", Arity: 1, ColumnTypes: []ram.ColumnType{ram.TypeUnsigned}}

	clause := ast.Clause{
		Head: ast.Atom{Relation: "reachable", Args: []ast.Argument{ast.Variable{Name: "x"}}},
		Body: []ast.Literal{
			ast.Atom{Relation: "node", Args: []ast.Argument{ast.Variable{Name: "x"}}},
			ast.NegatedAtom{Atom: ast.Atom{Relation: "excluded", Args: []ast.Argument{ast.Variable{Name: "x"}}}},
		},
	}

	q, err := TranslateClause(clause, relTable(node, excluded, reachable), CompilationConfig{}, 0, false)
	require.NoError(t, err)
	assert.Equal(t, 1, countOps(q.Root, ram.OpScan))

	// One Filter for node's emptiness guard, one for the negated existence
	// check against excluded.
	assert.Equal(t, 2, countOps(q.Root, ram.OpFilter))
}

func TestTranslateClauseNullaryHeadGuardsProjectionWithEmptinessCheck(t *testing.T) {
	// found() :- node(x).
	node := ram.RelationRef{Name: "node", Arity: 1, ColumnTypes: []ram.ColumnType{ram.TypeUnsigned}}
	found := ram.RelationRef{Name: "found", Arity: 0}

	clause := ast.Clause{
		Head: ast.Atom{Relation: "found"},
		Body: []ast.Literal{
			ast.Atom{Relation: "node", Args: []ast.Argument{ast.Variable{Name: "x"}}},
		},
	}

	q, err := TranslateClause(clause, relTable(node, found), CompilationConfig{}, 0, false)
	require.NoError(t, err)
	assert.Equal(t, 1, countOps(q.Root, ram.OpBreak))
	assert.Equal(t, 1, countOps(q.Root, ram.OpProject))
}

func TestTranslateClauseProvenanceModeWrapsProjectionInGuard(t *testing.T) {
	edge := ram.RelationRef{
		Name: "edge", Arity: 2, AuxiliaryArity: 2,
		ColumnTypes: []ram.ColumnType{ram.TypeUnsigned, ram.TypeUnsigned, ram.TypeUnsigned, ram.TypeUnsigned},
	}

	clause := ast.Clause{
		Head: ast.Atom{Relation: "edge", Args: []ast.Argument{ast.Variable{Name: "x"}, ast.Variable{Name: "y"}}},
		Body: []ast.Literal{
			ast.Atom{Relation: "edge", Args: []ast.Argument{ast.Variable{Name: "x"}, ast.Variable{Name: "y"}}},
		},
	}

	cfg := CompilationConfig{Provenance: ProvenanceNaive}

	q, err := TranslateClause(clause, relTable(edge), cfg, 0, false)
	require.NoError(t, err)

	scan, ok := q.Root.(ram.Scan)
	require.True(t, ok)

	emptinessFilter, ok := scan.Nested.(ram.Filter)
	require.True(t, ok)

	provenanceFilter, ok := emptinessFilter.Nested.(ram.Filter)
	require.True(t, ok)

	neg, ok := provenanceFilter.Condition.(ram.Negation)
	require.True(t, ok)

	_, ok = neg.Term.(ram.ProvenanceExistence)
	assert.True(t, ok)
}

func TestTranslateClauseProvenanceVariantReturnsBodyValues(t *testing.T) {
	edge := ram.RelationRef{Name: "edge", Arity: 2, ColumnTypes: []ram.ColumnType{ram.TypeUnsigned, ram.TypeUnsigned}}

	clause := ast.Clause{
		Head: ast.Atom{Relation: "edge", Args: []ast.Argument{ast.Variable{Name: "x"}, ast.Variable{Name: "y"}}},
		Body: []ast.Literal{
			ast.Atom{Relation: "edge", Args: []ast.Argument{ast.Variable{Name: "x"}, ast.Variable{Name: "y"}}},
		},
	}

	q, err := TranslateClause(clause, relTable(edge), CompilationConfig{}, 0, true)
	require.NoError(t, err)

	scan, ok := q.Root.(ram.Scan)
	require.True(t, ok)

	filter, ok := scan.Nested.(ram.Filter)
	require.True(t, ok)

	rv, ok := filter.Nested.(ram.ReturnValue)
	require.True(t, ok)
	assert.Len(t, rv.Args, 4) // 2 head args + 2 body-atom args
}

func TestTranslateClauseAggregatorWrapsBody(t *testing.T) {
	// total(s) :- s = count : { item(_) }.
	item := ram.RelationRef{Name: "item", Arity: 1, ColumnTypes: []ram.ColumnType{ram.TypeUnsigned}}
	total := ram.RelationRef{Name: "total", Arity: 1, ColumnTypes: []ram.ColumnType{ram.TypeUnsigned}}

	clause := ast.Clause{
		Head: ast.Atom{Relation: "total", Args: []ast.Argument{
			ast.Aggregator{
				Func:     ram.AggCount,
				Target:   ast.Wildcard{},
				Relation: "item",
				Args:     []ast.Argument{ast.Wildcard{}},
			},
		}},
	}

	q, err := TranslateClause(clause, relTable(item, total), CompilationConfig{}, 0, false)
	require.NoError(t, err)
	assert.Equal(t, 1, countOps(q.Root, ram.OpAggregate))
}

func TestTranslateClauseRecordConstructorUnpacksNestedLevel(t *testing.T) {
	// flat(a, b) :- pairs(#rec(a, b)).
	pairs := ram.RelationRef{Name: "pairs", Arity: 1, ColumnTypes: []ram.ColumnType{ram.TypeRecord}}
	flat := ram.RelationRef{Name: "flat", Arity: 2, ColumnTypes: []ram.ColumnType{ram.TypeUnsigned, ram.TypeUnsigned}}

	clause := ast.Clause{
		Head: ast.Atom{Relation: "flat", Args: []ast.Argument{ast.Variable{Name: "a"}, ast.Variable{Name: "b"}}},
		Body: []ast.Literal{
			ast.Atom{Relation: "pairs", Args: []ast.Argument{
				ast.RecordConstructor{Fields: []ast.Argument{ast.Variable{Name: "a"}, ast.Variable{Name: "b"}}},
			}},
		},
	}

	q, err := TranslateClause(clause, relTable(pairs, flat), CompilationConfig{}, 0, false)
	require.NoError(t, err)
	assert.Equal(t, 2, q.NumSlots) // atom level + record level
	assert.Equal(t, 1, countOps(q.Root, ram.OpUnpackRecord))
}
