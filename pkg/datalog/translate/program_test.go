package translate

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/souffle-lang/souffle-sub001/pkg/datalog/ast"
	"github.com/souffle-lang/souffle-sub001/pkg/datalog/ram"
)

func decl(ref ram.RelationRef, attrs ...string) ast.RelationDecl {
	return ast.RelationDecl{Ref: ref, AttributeNames: attrs}
}

// edge(x, y). path(x, y) :- edge(x, y). path(x, y) :- path(x, z), edge(z, y).
func transitiveClosureProgram() *ast.Program {
	edge := ram.RelationRef{Name: "edge", Arity: 2, ColumnTypes: []ram.ColumnType{ram.TypeUnsigned, ram.TypeUnsigned}}
	path := ram.RelationRef{Name: "path", Arity: 2, ColumnTypes: []ram.ColumnType{ram.TypeUnsigned, ram.TypeUnsigned}}

	return &ast.Program{
		Relations: map[string]ast.RelationDecl{
			"edge": decl(edge, "x", "y"),
			"path": decl(path, "x", "y"),
		},
		Clauses: []ast.Clause{
			{
				Head: ast.Atom{Relation: "path", Args: []ast.Argument{ast.Variable{Name: "x"}, ast.Variable{Name: "y"}}},
				Body: []ast.Literal{
					ast.Atom{Relation: "edge", Args: []ast.Argument{ast.Variable{Name: "x"}, ast.Variable{Name: "y"}}},
				},
			},
			{
				Head: ast.Atom{Relation: "path", Args: []ast.Argument{ast.Variable{Name: "x"}, ast.Variable{Name: "y"}}},
				Body: []ast.Literal{
					ast.Atom{Relation: "path", Args: []ast.Argument{ast.Variable{Name: "x"}, ast.Variable{Name: "z"}}},
					ast.Atom{Relation: "edge", Args: []ast.Argument{ast.Variable{Name: "z"}, ast.Variable{Name: "y"}}},
				},
			},
		},
	}
}

func TestTranslateProgramBuildsMainSubroutine(t *testing.T) {
	program := transitiveClosureProgram()

	p, err := TranslateProgram(program, CompilationConfig{})
	require.NoError(t, err)
	require.NotNil(t, p)

	assert.Equal(t, "main", p.Main)
	require.Contains(t, p.Subroutines, "main")
	assert.NotNil(t, p.Subroutines["main"].Body)
}

func TestTranslateProgramDeclaresDeltaAndNewRelationsForRecursiveSCC(t *testing.T) {
	program := transitiveClosureProgram()

	p, err := TranslateProgram(program, CompilationConfig{})
	require.NoError(t, err)

	names := make(map[string]bool, len(p.Relations))
	for _, r := range p.Relations {
		names[r.Name] = true
	}

	assert.True(t, names["edge"])
	assert.True(t, names["path"])
	assert.True(t, names["@delta_path"])
	assert.True(t, names["@new_path"])
}

func TestTranslateProgramTreatsClauselessRelationAsLoadAndIDBAsOutput(t *testing.T) {
	program := transitiveClosureProgram()

	p, err := TranslateProgram(program, CompilationConfig{})
	require.NoError(t, err)

	assert.Contains(t, p.Outputs, "path")
	assert.NotContains(t, p.Outputs, "edge")
}

func TestTranslateProgramRejectsUndeclaredHeadRelation(t *testing.T) {
	program := &ast.Program{
		Relations: map[string]ast.RelationDecl{},
		Clauses: []ast.Clause{
			{Head: ast.Atom{Relation: "ghost"}},
		},
	}

	_, err := TranslateProgram(program, CompilationConfig{})
	assert.Error(t, err)
}

func TestTranslateProgramProvenanceModeAddsSubproofSubroutines(t *testing.T) {
	program := transitiveClosureProgram()

	p, err := TranslateProgram(program, CompilationConfig{Provenance: ProvenanceNaive})
	require.NoError(t, err)

	assert.Contains(t, p.Subroutines, "subproof_path")
	assert.Contains(t, p.Subroutines, "negation_subproof_path")
}
