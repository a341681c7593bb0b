package relation

import "errors"

// ErrNotEquivalenceRelation is returned by Extend on every representation
// other than eqrel (spec section 3: "extend(other) — only for
// equivalence-relation representation").
var ErrNotEquivalenceRelation = errors.New("relation: Extend is only supported by the eqrel representation")
