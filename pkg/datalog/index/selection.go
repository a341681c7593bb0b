package index

import (
	"fmt"
	"sort"

	"github.com/souffle-lang/souffle-sub001/pkg/datalog/ram"
)

// chain is a totally ordered subset of the observed search signatures
// (spec section 4.3, "Chain cover").
type chain []ram.Signature

// Selection holds the search signatures observed for one relation and
// computes its minimum covering set of index orders (spec section 4.3).
// Mirrors original_source's MinIndexSelection, one instance per relation.
type Selection struct {
	arity       int
	searches    []ram.Signature
	seen        map[string]bool
	indexToSig  map[node]ram.Signature
	sigToIndexA map[string]node
	sigToIndexB map[string]node
}

// NewSelection constructs an empty search-signature collector for a
// relation of the given arity.
func NewSelection(arity int) *Selection {
	return &Selection{
		arity:       arity,
		seen:        make(map[string]bool),
		indexToSig:  make(map[node]ram.Signature),
		sigToIndexA: make(map[string]node),
		sigToIndexB: make(map[string]node),
	}
}

// AddSearch records a search signature observed at some site in the IR-R
// program. Duplicate signatures (including repeats introduced by a swap
// sharing another relation's searches, spec section 4.3 "Result") are
// coalesced.
func (s *Selection) AddSearch(sig ram.Signature) {
	key := sig.Key()
	if s.seen[key] {
		return
	}

	s.seen[key] = true
	s.searches = append(s.searches, sig)
}

// Searches returns every distinct signature recorded so far, in a
// deterministic order (sorted by signature key).
func (s *Selection) Searches() []ram.Signature {
	out := make([]ram.Signature, len(s.searches))
	copy(out, s.searches)

	sort.Slice(out, func(i, j int) bool { return out[i].Key() < out[j].Key() })

	return out
}

// Solve computes the minimum set of lex-orders covering every recorded
// search signature (spec section 4.3, "Output"). If no non-empty search
// was ever recorded, it returns a single full-arity order, matching spec
// section 4.3's "relations that never participate in a search receive a
// single full-arity order as default".
func (s *Selection) Solve() ([]ram.LexOrder, error) {
	searches := s.Searches()

	nonEmpty := make([]ram.Signature, 0, len(searches))

	for _, sig := range searches {
		if !sig.Empty() {
			nonEmpty = append(nonEmpty, sig)
		}
	}

	if len(nonEmpty) == 0 {
		return []ram.LexOrder{fullOrder(s.arity)}, nil
	}

	matching := newMaxMatching()
	current := node(1)

	for _, sig := range nonEmpty {
		key := sig.Key()
		s.sigToIndexA[key] = current
		s.sigToIndexB[key] = current + 1
		s.indexToSig[current] = sig
		s.indexToSig[current+1] = sig
		current += 2
	}

	for _, from := range nonEmpty {
		if from.ContainsInequality() {
			// An Inequal-bearing signature is only ever a chain tail
			// (spec section 3, "A signature containing Inequal never
			// has outgoing chain edges to other signatures").
			continue
		}

		for _, to := range nonEmpty {
			if ram.IsStrictSubset(from, to) {
				matching.addEdge(s.sigToIndexA[from.Key()], s.sigToIndexB[to.Key()])
			}
		}
	}

	matched := matching.solve()
	chains := s.chainsFromMatching(matched, nonEmpty)
	chains = mergeChains(chains)

	if len(chains) == 0 {
		panic("index: chain cover produced no chains for a non-empty search set")
	}

	orders := make([]ram.LexOrder, 0, len(chains))

	for _, c := range chains {
		order, err := buildOrder(c, s.arity)
		if err != nil {
			return nil, err
		}

		orders = append(orders, order)
	}

	return orders, nil
}

func fullOrder(arity int) ram.LexOrder {
	order := make(ram.LexOrder, arity)
	for i := range order {
		order[i] = i
	}

	return order
}

// chainsFromMatching follows matched edges starting from every unmatched
// A-node to build the initial (unmerged) chain set (spec section 4.3,
// "Derive chains by following matched edges starting from unmatched
// A-nodes").
func (s *Selection) chainsFromMatching(matched map[node]node, searches []ram.Signature) []chain {
	unmatchedA := make([]ram.Signature, 0)

	for _, sig := range searches {
		a := s.sigToIndexA[sig.Key()]
		if _, ok := matched[a]; !ok {
			unmatchedA = append(unmatchedA, sig)
		}
	}

	if len(unmatchedA) == 0 {
		// Every node matched: the whole search set forms a single
		// anti-chain (no order implies another); each is its own chain.
		chains := make([]chain, len(searches))
		for i, sig := range searches {
			chains[i] = chain{sig}
		}

		return chains
	}

	var chains []chain

	for _, start := range unmatchedA {
		chains = append(chains, s.followChain(start, matched))
	}

	return chains
}

// followChain walks a single chain starting at an unmatched A-node,
// alternating sides, mirroring MinIndexSelection::getChain. The walk
// visits signatures from most to least constrained; the returned chain is
// reversed so that it runs from least to most constrained, the order
// tryMerge and buildOrder expect.
func (s *Selection) followChain(start ram.Signature, matched map[node]node) chain {
	c := chain{}
	cur := start

	for {
		c = append(c, cur)

		b := s.sigToIndexB[cur.Key()]

		matchedA, ok := matched[b]
		if !ok {
			break
		}

		cur = s.indexToSig[matchedA]
	}

	for i, j := 0, len(c)-1; i < j; i, j = i+1, j-1 {
		c[i], c[j] = c[j], c[i]
	}

	return c
}

// mergeChains repeatedly tries to merge pairs of chains whose elements
// are pairwise comparable when interleaved, reducing the number of
// indices needed (spec section 4.3, "Merge pass"). When a straightforward
// merge fails, it retries with the discharge variant, dropping an Inequal
// bit from one side when that inequality remains indexable via the other
// chain's own terminal element (spec section 4.3, "Inequality
// discharge"). Ported from MinIndexSelection::mergeChains.
func mergeChains(chains []chain) []chain {
	changed := true

	for changed {
		changed = false

		for i := 0; i < len(chains) && !changed; i++ {
			for j := 0; j < len(chains) && !changed; j++ {
				if i == j {
					continue
				}

				merged, ok := tryMerge(chains[i], chains[j])
				if !ok {
					merged, ok = tryMergeWithDischarge(chains[i], chains[j])
				}

				if !ok {
					continue
				}

				next := make([]chain, 0, len(chains)-1)

				for k, c := range chains {
					if k != i && k != j {
						next = append(next, c)
					}
				}

				next = append(next, merged)
				chains = next
				changed = true
			}
		}
	}

	return chains
}

// tryMerge attempts the standard comparable-interleave merge of two
// chains, each already internally sorted by signature generality.
func tryMerge(lhs, rhs chain) (chain, bool) {
	var (
		merged chain
		li, ri int
	)

	for li < len(lhs) && ri < len(rhs) {
		left, right := lhs[li], rhs[ri]

		if !ram.IsComparable(left, right) {
			return nil, false
		}

		switch {
		case left.Key() == right.Key():
			merged = append(merged, left)
			li++
			ri++
		case ram.IsStrictSubset(left, right):
			merged = append(merged, left)
			li++
		default:
			merged = append(merged, right)
			ri++
		}
	}

	merged = append(merged, lhs[li:]...)
	merged = append(merged, rhs[ri:]...)

	return merged, true
}

// tryMergeWithDischarge retries tryMerge after replacing every Inequal
// bit in rhs's terminal (most general) element with None, but only when
// lhs's own terminal element already indexes that same column as
// Inequal — i.e. the dropped inequality remains satisfiable via another
// chain endpoint, per the guarantee spec section 4.3 and section 9
// require implementations to assert.
func tryMergeWithDischarge(lhs, rhs chain) (chain, bool) {
	if len(lhs) == 0 || len(rhs) == 0 {
		return nil, false
	}

	lhsTail := lhs[len(lhs)-1]
	rhsTail := rhs[len(rhs)-1]

	if !rhsTail.ContainsInequality() {
		return nil, false
	}

	for i, c := range rhsTail {
		if c == ram.Inequal && lhsTail[i] != ram.Inequal {
			// The guarantee does not hold for this pairing: the
			// inequality at column i is not indexable via lhs's
			// terminal element either.
			return nil, false
		}
	}

	discharged := make(chain, len(rhs))
	copy(discharged, rhs[:len(rhs)-1])
	discharged[len(rhs)-1] = ram.Discharged(rhsTail)

	return tryMerge(lhs, discharged)
}

// buildOrder walks a chain's consecutive deltas to produce a lex-order:
// each delta contributes its newly-set columns, and the terminal
// element's inequality columns (if any) are appended at the tail (spec
// section 4.3, "Order construction").
func buildOrder(c chain, arity int) (ram.LexOrder, error) {
	if len(c) == 0 {
		panic("index: empty chain")
	}

	var order ram.LexOrder

	seen := make([]bool, arity)

	appendColumns := func(sig ram.Signature, want ram.ColumnConstraint) {
		for col, constraint := range sig {
			if constraint == want && !seen[col] {
				order = append(order, col)
				seen[col] = true
			}
		}
	}

	appendColumns(c[0], ram.Equal)

	for i := 1; i < len(c); i++ {
		delta := ram.Delta(c[i], c[i-1])
		appendColumns(delta, ram.Equal)
	}

	// The terminal element may retain one indexed inequality, appended
	// at the tail (spec section 4.3, "Inequality discharge").
	appendColumns(c[len(c)-1], ram.Inequal)

	for col := 0; col < arity; col++ {
		if !seen[col] {
			order = append(order, col)
		}
	}

	if len(order) != arity {
		return nil, fmt.Errorf("index: built order of length %d for arity %d", len(order), arity)
	}

	return order, nil
}
