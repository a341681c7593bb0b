package precedence

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/souffle-lang/souffle-sub001/pkg/datalog/ast"
	"github.com/souffle-lang/souffle-sub001/pkg/datalog/ram"
)

func atom(rel string, vars ...string) ast.Atom {
	args := make([]ast.Argument, len(vars))
	for i, v := range vars {
		args[i] = ast.Variable{Name: v}
	}

	return ast.Atom{Relation: rel, Args: args}
}

func TestSCCTransitiveClosureIsSingleRecursiveGroup(t *testing.T) {
	program := &ast.Program{
		Relations: map[string]ast.RelationDecl{
			"edge": {Ref: ram.RelationRef{Name: "edge", Arity: 2}},
			"path": {Ref: ram.RelationRef{Name: "path", Arity: 2}},
		},
		Clauses: []ast.Clause{
			{Head: atom("path", "x", "y"), Body: []ast.Literal{atom("edge", "x", "y")}},
			{Head: atom("path", "x", "z"), Body: []ast.Literal{
				atom("edge", "x", "y"), atom("path", "y", "z"),
			}},
		},
	}

	graph := Build(program)
	schedule := ComputeSchedule(graph)

	require.Len(t, schedule.SCCs, 2)
	assert.Equal(t, []string{"edge"}, schedule.SCCs[0].Relations)
	assert.False(t, schedule.SCCs[0].Recursive)
	assert.Equal(t, []string{"path"}, schedule.SCCs[1].Relations)
	assert.True(t, schedule.SCCs[1].Recursive)
}

func TestSCCSameGenerationIsSelfRecursiveAfterParent(t *testing.T) {
	program := &ast.Program{
		Relations: map[string]ast.RelationDecl{
			"parent": {Ref: ram.RelationRef{Name: "parent", Arity: 2}},
			"sg":     {Ref: ram.RelationRef{Name: "sg", Arity: 2}},
		},
		Clauses: []ast.Clause{
			{Head: atom("sg", "x", "x"), Body: []ast.Literal{atom("parent", "p", "x")}},
			{Head: atom("sg", "x", "y"), Body: []ast.Literal{
				atom("parent", "p", "x"), atom("sg", "p", "q"), atom("parent", "q", "y"),
			}},
		},
	}

	graph := Build(program)
	schedule := ComputeSchedule(graph)

	require.Len(t, schedule.SCCs, 2)
	assert.Equal(t, []string{"parent"}, schedule.SCCs[0].Relations)
	assert.Equal(t, []string{"sg"}, schedule.SCCs[1].Relations)
	assert.True(t, schedule.SCCs[1].Recursive)
}

func TestSCCSelfLoopIsRecursive(t *testing.T) {
	program := &ast.Program{
		Clauses: []ast.Clause{
			{Head: atom("closure", "x", "z"), Body: []ast.Literal{
				atom("closure", "x", "y"), atom("closure", "y", "z"),
			}},
		},
	}

	graph := Build(program)
	schedule := ComputeSchedule(graph)

	require.Len(t, schedule.SCCs, 1)
	assert.True(t, schedule.SCCs[0].Recursive)
}
