package eval_test

import (
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/souffle-lang/souffle-sub001/pkg/datalog/ast"
	"github.com/souffle-lang/souffle-sub001/pkg/datalog/domain"
	"github.com/souffle-lang/souffle-sub001/pkg/datalog/eval"
	"github.com/souffle-lang/souffle-sub001/pkg/datalog/ram"
	"github.com/souffle-lang/souffle-sub001/pkg/datalog/translate"
)

func decl(ref ram.RelationRef, attrs ...string) ast.RelationDecl {
	return ast.RelationDecl{Ref: ref, AttributeNames: attrs}
}

func uintRef(name string, arity int) ram.RelationRef {
	types := make([]ram.ColumnType, arity)
	for i := range types {
		types[i] = ram.TypeUnsigned
	}

	return ram.RelationRef{Name: name, Arity: arity, ColumnTypes: types}
}

func writeFacts(t *testing.T, dir, name string, rows [][]int) {
	t.Helper()

	var sb strings.Builder

	for _, row := range rows {
		cols := make([]string, len(row))
		for i, v := range row {
			cols[i] = strconv.Itoa(v)
		}

		sb.WriteString(strings.Join(cols, "\t"))
		sb.WriteString("\n")
	}

	require.NoError(t, os.WriteFile(filepath.Join(dir, name+".facts"), []byte(sb.String()), 0o644))
}

// readCSVRows reads a Store-produced output file (tab-delimited, no
// header, per defaultIODirectives) back into rows of integer columns.
func readCSVRows(t *testing.T, dir, name string) [][]int64 {
	t.Helper()

	data, err := os.ReadFile(filepath.Join(dir, name+".csv"))
	require.NoError(t, err)

	var rows [][]int64

	for _, line := range strings.Split(strings.TrimRight(string(data), "\n"), "\n") {
		if line == "" {
			continue
		}

		var row []int64

		for _, field := range strings.Split(line, "\t") {
			n, err := strconv.ParseInt(field, 10, 64)
			require.NoError(t, err)

			row = append(row, n)
		}

		rows = append(rows, row)
	}

	return rows
}

func containsRow(rows [][]int64, want ...int64) bool {
	for _, row := range rows {
		if len(row) != len(want) {
			continue
		}

		match := true

		for i, v := range want {
			if row[i] != v {
				match = false
				break
			}
		}

		if match {
			return true
		}
	}

	return false
}

// TestEvaluatorTransitiveClosure exercises the full semi-naive recursive
// scaffold translate.TranslateProgram builds (spec section 4.2) end to
// end: edge facts loaded from disk, path computed by fixpoint, results
// written back out (spec section 8, "transitive closure").
func TestEvaluatorTransitiveClosure(t *testing.T) {
	edge := uintRef("edge", 2)
	path := uintRef("path", 2)

	program := &ast.Program{
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

	p, err := translate.TranslateProgram(program, translate.CompilationConfig{})
	require.NoError(t, err)

	dir := t.TempDir()
	writeFacts(t, dir, "edge", [][]int{{1, 2}, {2, 3}, {3, 4}})

	ev := eval.New(p, eval.Config{Dir: dir})
	require.NoError(t, ev.Run())

	rows := readCSVRows(t, dir, "path")

	for _, want := range [][]int64{{1, 2}, {2, 3}, {3, 4}, {1, 3}, {2, 4}, {1, 4}} {
		assert.True(t, containsRow(rows, want...), "want %v in path", want)
	}

	assert.False(t, containsRow(rows, 1, 1))
	assert.Len(t, rows, 6)
}

// TestEvaluatorNegationExcludesMatchingFacts exercises a stratified
// negation clause (spec section 8, "negation with stratification").
func TestEvaluatorNegationExcludesMatchingFacts(t *testing.T) {
	person := uintRef("person", 1)
	old := uintRef("old", 1)
	young := uintRef("young", 1)

	program := &ast.Program{
		Relations: map[string]ast.RelationDecl{
			"person": decl(person, "x"),
			"old":    decl(old, "x"),
			"young":  decl(young, "x"),
		},
		Clauses: []ast.Clause{
			{
				Head: ast.Atom{Relation: "young", Args: []ast.Argument{ast.Variable{Name: "x"}}},
				Body: []ast.Literal{
					ast.Atom{Relation: "person", Args: []ast.Argument{ast.Variable{Name: "x"}}},
					ast.NegatedAtom{Atom: ast.Atom{Relation: "old", Args: []ast.Argument{ast.Variable{Name: "x"}}}},
				},
			},
		},
	}

	p, err := translate.TranslateProgram(program, translate.CompilationConfig{})
	require.NoError(t, err)

	dir := t.TempDir()
	writeFacts(t, dir, "person", [][]int{{1}, {2}, {3}})
	writeFacts(t, dir, "old", [][]int{{2}})

	ev := eval.New(p, eval.Config{Dir: dir})
	require.NoError(t, ev.Run())

	rows := readCSVRows(t, dir, "young")

	assert.True(t, containsRow(rows, 1))
	assert.False(t, containsRow(rows, 2))
	assert.True(t, containsRow(rows, 3))
}

// TestEvaluatorAggregateCount exercises a bare aggregation clause whose
// head is wholly an ast.Aggregator (spec section 8, "aggregation").
func TestEvaluatorAggregateCount(t *testing.T) {
	item := uintRef("item", 1)
	total := uintRef("total", 1)

	program := &ast.Program{
		Relations: map[string]ast.RelationDecl{
			"item":  decl(item, "x"),
			"total": decl(total, "n"),
		},
		Clauses: []ast.Clause{
			{
				Head: ast.Atom{Relation: "total", Args: []ast.Argument{
					ast.Aggregator{
						Func:     ram.AggCount,
						Target:   ast.Wildcard{},
						Relation: "item",
						Args:     []ast.Argument{ast.Wildcard{}},
					},
				}},
			},
		},
	}

	p, err := translate.TranslateProgram(program, translate.CompilationConfig{})
	require.NoError(t, err)

	dir := t.TempDir()
	writeFacts(t, dir, "item", [][]int{{10}, {20}, {30}, {40}})

	ev := eval.New(p, eval.Config{Dir: dir})
	require.NoError(t, ev.Run())

	rows := readCSVRows(t, dir, "total")

	require.Len(t, rows, 1)
	assert.Equal(t, int64(4), rows[0][0])
}

// TestEvaluatorEqRelClosesTransitivelyOnInsert drives the clause
// translator and the evaluator directly (bypassing the program
// translator's whole-program Create/Drop scoping) to inspect the live
// eqrel relation's closure after a handful of inserts (spec section 8,
// "eqrel"; spec section 3, "the eqrel representation").
func TestEvaluatorEqRelClosesTransitivelyOnInsert(t *testing.T) {
	edge := uintRef("edge", 2)
	same := ram.RelationRef{
		Name:        "same",
		Arity:       2,
		ColumnTypes: []ram.ColumnType{ram.TypeUnsigned, ram.TypeUnsigned},

		Representation: ram.EqRel,
	}

	clause := ast.Clause{
		Head: ast.Atom{Relation: "same", Args: []ast.Argument{ast.Variable{Name: "x"}, ast.Variable{Name: "y"}}},
		Body: []ast.Literal{
			ast.Atom{Relation: "edge", Args: []ast.Argument{ast.Variable{Name: "x"}, ast.Variable{Name: "y"}}},
		},
	}

	query, err := translate.TranslateClause(clause, map[string]ram.RelationRef{"edge": edge, "same": same}, translate.CompilationConfig{}, 0, false)
	require.NoError(t, err)

	p := &ram.Program{
		Main: "main",
		Subroutines: map[string]*ram.Subroutine{
			"main": {Name: "main", Body: *query},
		},
		Relations: []ram.RelationRef{edge, same},
		Orders:    map[string][]ram.LexOrder{},
	}

	ev := eval.New(p, eval.Config{})

	ev.Database().Get(edge).Insert(domain.Tuple{domain.ValueOfUnsigned(1), domain.ValueOfUnsigned(2)})
	ev.Database().Get(edge).Insert(domain.Tuple{domain.ValueOfUnsigned(2), domain.ValueOfUnsigned(3)})

	require.NoError(t, ev.Run())

	rel := ev.Database().Get(same)

	assert.Equal(t, ram.EqRel, rel.Representation())
	assert.True(t, rel.Contains(domain.Tuple{domain.ValueOfUnsigned(1), domain.ValueOfUnsigned(3)}))
}
