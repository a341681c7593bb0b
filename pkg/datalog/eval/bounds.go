package eval

import "github.com/souffle-lang/souffle-sub001/pkg/datalog/domain"

// minTuple and maxTuple are the sentinel-filled bounds a full, unindexed
// range query substitutes for every column (spec section 4.4,
// "ExistenceCheck", generalised to a Scan/Aggregate with an all-None
// signature).
func minTuple(arity int) domain.Tuple {
	t := make(domain.Tuple, arity)
	for i := range t {
		t[i] = domain.MinBound
	}

	return t
}

func maxTuple(arity int) domain.Tuple {
	t := make(domain.Tuple, arity)
	for i := range t {
		t[i] = domain.MaxBound
	}

	return t
}
