package precedence

import (
	"sort"

	"github.com/bits-and-blooms/bitset"
)

// SCC is a set of relations that are mutually recursive under the rule
// graph; it is Recursive if it contains a cycle or a relation with a
// self-edge (spec section 3, "SCC node"). Recursiveness is decided solely
// from this structural test, never from clause-level heuristics — see
// SPEC_FULL.md section D, "SCC-vs-program recursion".
type SCC struct {
	Relations []string
	Recursive bool
}

// Schedule is the topologically ordered list of SCCs a program translator
// must process in turn (spec section 4.2, "Scheduling. Process SCCs in
// topological order").
type Schedule struct {
	SCCs []SCC
}

// tarjan holds the working state of Tarjan's strongly-connected-
// components algorithm. Index/lowlink maps are keyed by the dense node
// index assigned to each relation name; visited/onStack are bitsets over
// that same dense index space (wiring github.com/bits-and-blooms/bitset
// for the membership tests, as no repository in the example pack ships a
// reusable graph library for this).
type tarjan struct {
	graph    *Graph
	order    []string
	indexOf  map[string]int
	index    []int
	lowlink  []int
	onStack  *bitset.BitSet
	visited  *bitset.BitSet
	stack    []string
	counter  int
	sccs     [][]string
}

// ComputeSchedule runs Tarjan's algorithm over g and returns the SCCs in
// the order Tarjan closes them off — a valid topological order where every
// SCC's dependencies appear before it (spec section 4, "a topological
// order").
func ComputeSchedule(g *Graph) Schedule {
	relations := g.Relations()

	t := &tarjan{
		graph:   g,
		order:   relations,
		indexOf: make(map[string]int, len(relations)),
		index:   make([]int, len(relations)),
		lowlink: make([]int, len(relations)),
		onStack: bitset.New(uint(len(relations))),
		visited: bitset.New(uint(len(relations))),
	}

	for i, r := range relations {
		t.indexOf[r] = i
		t.index[i] = -1
	}

	for _, r := range relations {
		if !t.visited.Test(uint(t.indexOf[r])) {
			t.strongConnect(r)
		}
	}

	// An edge R -> S means R depends on S, and Tarjan closes off a
	// component only once every component it depends on has already been
	// closed off, so t.sccs is already dependencies-first.
	sccs := make([]SCC, len(t.sccs))
	for i, members := range t.sccs {
		sort.Strings(members)

		recursive := len(members) > 1
		if !recursive && len(members) == 1 {
			recursive = g.hasSelfEdge(members[0])
		}

		sccs[i] = SCC{Relations: members, Recursive: recursive}
	}

	return Schedule{SCCs: sccs}
}

func (t *tarjan) strongConnect(v string) {
	vi := t.indexOf[v]
	t.index[vi] = t.counter
	t.lowlink[vi] = t.counter
	t.counter++
	t.visited.Set(uint(vi))
	t.stack = append(t.stack, v)
	t.onStack.Set(uint(vi))

	for _, w := range t.graph.successors(v) {
		wi := t.indexOf[w]
		if !t.visited.Test(uint(wi)) {
			t.strongConnect(w)
			if t.lowlink[wi] < t.lowlink[vi] {
				t.lowlink[vi] = t.lowlink[wi]
			}
		} else if t.onStack.Test(uint(wi)) {
			if t.index[wi] < t.lowlink[vi] {
				t.lowlink[vi] = t.index[wi]
			}
		}
	}

	if t.lowlink[vi] == t.index[vi] {
		var members []string

		for {
			n := len(t.stack) - 1
			w := t.stack[n]
			t.stack = t.stack[:n]
			t.onStack.Clear(uint(t.indexOf[w]))
			members = append(members, w)

			if w == v {
				break
			}
		}

		t.sccs = append(t.sccs, members)
	}
}
