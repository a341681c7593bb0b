package ram

// CondKind tags the closed set of boolean-condition node kinds.
type CondKind uint8

const (
	// CondTrue is the trivially-true condition (used as a default guard).
	CondTrue CondKind = iota
	// CondEmptiness checks a relation has no tuples.
	CondEmptiness
	// CondExistence checks a relation contains a matching tuple.
	CondExistence
	// CondProvenanceExistence is CondExistence with auxiliary columns
	// always wildcarded.
	CondProvenanceExistence
	// CondConjunction is a boolean AND of sub-conditions.
	CondConjunction
	// CondNegation is a boolean NOT.
	CondNegation
	// CondConstraint is a binary relational/string operator.
	CondConstraint
)

// Cond is the closed set of IR-R condition nodes (spec section 4.4,
// "Condition evaluation").
type Cond interface {
	Kind() CondKind
	isCond()
}

// True is the trivially-satisfied condition.
type True struct{}

// Kind implements Cond.
func (True) Kind() CondKind { return CondTrue }
func (True) isCond()        {}

// Emptiness holds iff Relation.Empty() (spec section 4.4,
// "EmptinessCheck(R) <=> R.empty()").
type Emptiness struct {
	Relation RelationRef
}

// Kind implements Cond.
func (Emptiness) Kind() CondKind { return CondEmptiness }
func (Emptiness) isCond()        {}

// Existence holds iff Relation contains a tuple matching Values under
// Signature, where a None column in Signature is unconstrained (spec
// section 4.4, "ExistenceCheck(R, vals)"). Args has length
// Relation.TotalArity(); entries at None-signature positions are ignored.
type Existence struct {
	Relation  RelationRef
	Signature Signature
	Args      []Expr
}

// Kind implements Cond.
func (Existence) Kind() CondKind { return CondExistence }
func (Existence) isCond()        {}

// ProvenanceExistence is Existence but with Relation's auxiliary columns
// always wildcarded regardless of Signature (spec section 4.4,
// "ProvenanceExistenceCheck").
type ProvenanceExistence struct {
	Relation  RelationRef
	Signature Signature
	Args      []Expr
}

// Kind implements Cond.
func (ProvenanceExistence) Kind() CondKind { return CondProvenanceExistence }
func (ProvenanceExistence) isCond()        {}

// Conjunction is a boolean AND of zero or more sub-conditions (an empty
// Conjunction is vacuously true).
type Conjunction struct {
	Terms []Cond
}

// Kind implements Cond.
func (Conjunction) Kind() CondKind { return CondConjunction }
func (Conjunction) isCond()        {}

// Negation is the boolean complement of Term.
type Negation struct {
	Term Cond
}

// Kind implements Cond.
func (Negation) Kind() CondKind { return CondNegation }
func (Negation) isCond()        {}

// ConstraintOp tags the binary relational/string operators usable in a
// Constraint condition (spec section 4.4, "Constraint(op, l, r)").
type ConstraintOp uint8

// Relational and string constraint operators.
const (
	OpEq ConstraintOp = iota
	OpNe
	OpLt
	OpLe
	OpGt
	OpGe
	OpMatch
	OpNotMatch
	OpContains
	OpNotContains
)

// Constraint evaluates Left and Right and applies Op. String operators
// (OpMatch/OpNotMatch: regex; OpContains/OpNotContains: substring) are
// tolerant: a malformed pattern warns and the constraint evaluates false
// (spec section 4.4, "all tolerant").
type Constraint struct {
	Op    ConstraintOp
	Left  Expr
	Right Expr
}

// Kind implements Cond.
func (Constraint) Kind() CondKind { return CondConstraint }
func (Constraint) isCond()        {}
