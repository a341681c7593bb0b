// Package precedence computes the predicate-dependency graph over a
// program's clauses, its strongly connected components, and a
// topological schedule over those components (spec section 2, component
// 4: "Precedence graph & SCC scheduler").
package precedence

import (
	"sort"

	"github.com/souffle-lang/souffle-sub001/pkg/datalog/ast"
)

// Graph is the predicate-dependency graph: an edge R -> S means some
// clause defining R has S in its body (spec section 4, "SCC node: ...
// the rule graph").
//
// The "clauses defining relation R" lookup is memoised per relation
// rather than re-scanned from Program.Clauses on every query, mirroring
// original_source/src/ast/analysis/RelationDetailCache.cpp (supplemented
// feature C.4 of SPEC_FULL.md).
type Graph struct {
	program *ast.Program
	edges   map[string]map[string]bool
	nodes   map[string]bool
	// clausesByRelation is the RelationDetailCache-style memo.
	clausesByRelation map[string][]ast.Clause
}

// Build constructs the predicate-dependency graph for program.
func Build(program *ast.Program) *Graph {
	g := &Graph{
		program:           program,
		edges:             make(map[string]map[string]bool),
		nodes:             make(map[string]bool),
		clausesByRelation: make(map[string][]ast.Clause),
	}

	for name := range program.Relations {
		g.nodes[name] = true
	}

	for _, c := range program.Clauses {
		g.nodes[c.Head.Relation] = true
		g.clausesByRelation[c.Head.Relation] = append(g.clausesByRelation[c.Head.Relation], c)

		for _, dep := range bodyRelations(c) {
			g.addEdge(c.Head.Relation, dep)
		}
	}

	return g
}

func (g *Graph) addEdge(from, to string) {
	g.nodes[from] = true
	g.nodes[to] = true

	if g.edges[from] == nil {
		g.edges[from] = make(map[string]bool)
	}

	g.edges[from][to] = true
}

// bodyRelations returns the set of relations a clause's body literals
// (and nested aggregator bodies) refer to.
func bodyRelations(c ast.Clause) []string {
	seen := make(map[string]bool)

	var walk func(lits []ast.Literal)

	walk = func(lits []ast.Literal) {
		for _, lit := range lits {
			switch l := lit.(type) {
			case ast.Atom:
				seen[l.Relation] = true
				walkArgsForAggregators(l.Args, &walk)
			case ast.NegatedAtom:
				seen[l.Atom.Relation] = true
				walkArgsForAggregators(l.Atom.Args, &walk)
			case ast.Constraint:
				walkArgForAggregators(l.Left, &walk)
				walkArgForAggregators(l.Right, &walk)
			}
		}
	}

	walk(c.Body)
	walkArgsForAggregators(c.Head.Args, &walk)

	out := make([]string, 0, len(seen))
	for r := range seen {
		out = append(out, r)
	}

	sort.Strings(out)

	return out
}

func walkArgsForAggregators(args []ast.Argument, walk *func(lits []ast.Literal)) {
	for _, a := range args {
		walkArgForAggregators(a, walk)
	}
}

func walkArgForAggregators(a ast.Argument, walk *func(lits []ast.Literal)) {
	switch v := a.(type) {
	case ast.Aggregator:
		(*walk)(v.Body)
		walkArgsForAggregators(v.Args, walk)
	case ast.Functor:
		walkArgsForAggregators(v.Args, walk)
	case ast.RecordConstructor:
		walkArgsForAggregators(v.Fields, walk)
	}
}

// ClausesFor returns, via the memoised per-relation index, every clause
// whose head names relation.
func (g *Graph) ClausesFor(relation string) []ast.Clause {
	return g.clausesByRelation[relation]
}

// Relations returns every relation node in the graph, sorted for
// deterministic iteration.
func (g *Graph) Relations() []string {
	out := make([]string, 0, len(g.nodes))
	for r := range g.nodes {
		out = append(out, r)
	}

	sort.Strings(out)

	return out
}

// successors returns relation's out-edges, sorted.
func (g *Graph) successors(relation string) []string {
	m := g.edges[relation]
	out := make([]string, 0, len(m))

	for s := range m {
		out = append(out, s)
	}

	sort.Strings(out)

	return out
}

// hasSelfEdge reports whether relation depends directly on itself.
func (g *Graph) hasSelfEdge(relation string) bool {
	return g.edges[relation][relation]
}
