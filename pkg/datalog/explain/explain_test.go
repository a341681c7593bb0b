package explain_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/souffle-lang/souffle-sub001/pkg/datalog/ast"
	"github.com/souffle-lang/souffle-sub001/pkg/datalog/domain"
	"github.com/souffle-lang/souffle-sub001/pkg/datalog/eval"
	"github.com/souffle-lang/souffle-sub001/pkg/datalog/explain"
	"github.com/souffle-lang/souffle-sub001/pkg/datalog/ram"
	"github.com/souffle-lang/souffle-sub001/pkg/datalog/translate"
)

// TestExplainerWalksOneLevelDerivation drives the translator and
// evaluator directly (rather than translate.TranslateProgram, whose
// whole-program Create/Drop scoping would drop the derived relation
// before Explain could query it) to check that a grandparent fact's
// derivation tree names both parent premises that produced it.
func TestExplainerWalksOneLevelDerivation(t *testing.T) {
	parent := ram.RelationRef{Name: "parent", Arity: 2, ColumnTypes: []ram.ColumnType{ram.TypeUnsigned, ram.TypeUnsigned}}
	grandparent := ram.RelationRef{
		Name:           "grandparent",
		Arity:          2,
		AuxiliaryArity: 2,
		ColumnTypes: []ram.ColumnType{
			ram.TypeUnsigned, ram.TypeUnsigned,
			ram.TypeSigned, ram.TypeSigned,
		},
	}

	clause := ast.Clause{
		Head: ast.Atom{Relation: "grandparent", Args: []ast.Argument{ast.Variable{Name: "x"}, ast.Variable{Name: "z"}}},
		Body: []ast.Literal{
			ast.Atom{Relation: "parent", Args: []ast.Argument{ast.Variable{Name: "x"}, ast.Variable{Name: "y"}}},
			ast.Atom{Relation: "parent", Args: []ast.Argument{ast.Variable{Name: "y"}, ast.Variable{Name: "z"}}},
		},
	}

	relations := map[string]ram.RelationRef{"parent": parent, "grandparent": grandparent}
	cfg := translate.CompilationConfig{Provenance: translate.ProvenanceNaive}

	mainQuery, err := translate.TranslateClause(clause, relations, cfg, 0, false)
	require.NoError(t, err)

	subQuery, err := translate.TranslateClause(clause, relations, cfg, 0, true)
	require.NoError(t, err)

	p := &ram.Program{
		Main: "main",
		Subroutines: map[string]*ram.Subroutine{
			"main": {Name: "main", Body: ram.Sequence{Body: []ram.Stmt{*mainQuery}}},
			"subproof_grandparent": {
				Name:        "subproof_grandparent",
				Body:        *subQuery,
				NumArgs:     grandparent.TotalArity(),
				ReturnArity: grandparent.Arity,
			},
		},
		Relations: []ram.RelationRef{parent, grandparent},
		Orders:    map[string][]ram.LexOrder{},
	}

	ev := eval.New(p, eval.Config{})

	ev.Database().Get(parent).Insert(domain.Tuple{domain.ValueOfUnsigned(1), domain.ValueOfUnsigned(2)})
	ev.Database().Get(parent).Insert(domain.Tuple{domain.ValueOfUnsigned(2), domain.ValueOfUnsigned(3)})

	require.NoError(t, ev.Run())

	rel := ev.Database().Get(grandparent)

	var fact domain.Tuple

	idx := rel.Index(ram.NewSignature(grandparent.TotalArity()))
	it := idx.Range(
		domain.Tuple{domain.MinBound, domain.MinBound, domain.MinBound, domain.MinBound},
		domain.Tuple{domain.MaxBound, domain.MaxBound, domain.MaxBound, domain.MaxBound},
	)
	require.True(t, it.Next())

	fact = it.Tuple()

	program := &ast.Program{
		Relations: map[string]ast.RelationDecl{
			"parent":      {Ref: parent, AttributeNames: []string{"x", "y"}},
			"grandparent": {Ref: grandparent, AttributeNames: []string{"x", "z"}},
		},
		Clauses: []ast.Clause{clause},
	}

	ex := explain.New(program, ev, domain.NewSymbolTable())

	tree, err := ex.Explain("grandparent", fact, explain.DefaultDepth)
	require.NoError(t, err)

	assert.Contains(t, tree.Label, "grandparent(1, 3)")
	require.Len(t, tree.Children, 2)
	assert.Contains(t, tree.Children[0].Label, "parent(1, 2)")
	assert.Contains(t, tree.Children[1].Label, "parent(2, 3)")

	rendered := explain.Render(tree)
	assert.Contains(t, rendered, "grandparent")
	assert.Contains(t, rendered, "parent(1, 2)")
}
