package ram

// OpKind tags the closed set of operation node kinds. Operations are the
// leaves of the statement tree, nested under a Query statement (spec
// section 2, "whose leaves are relational operations").
type OpKind uint8

const (
	// OpScan iterates every tuple of a relation.
	OpScan OpKind = iota
	// OpIndexScan iterates a bounded range of an indexed relation.
	OpIndexScan
	// OpChoice is a Scan that stops after the first qualifying tuple.
	OpChoice
	// OpIndexChoice is an IndexScan that stops after the first qualifying
	// tuple.
	OpIndexChoice
	// OpUnpackRecord decodes a record reference into a nested tuple.
	OpUnpackRecord
	// OpAggregate folds a relation (or a range of it) into one value.
	OpAggregate
	// OpFilter conditionally continues into a nested operation.
	OpFilter
	// OpBreak exits the enclosing search once a condition holds.
	OpBreak
	// OpProject evaluates arguments and inserts the resulting tuple.
	OpProject
	// OpReturnValue appends evaluated arguments to the query's return
	// slice (provenance subroutines).
	OpReturnValue
)

// Op is the closed set of IR-R operation nodes (spec section 4.4,
// "Operation evaluation": each operation returns a boolean; false signals
// "break the enclosing search").
type Op interface {
	Kind() OpKind
	isOp()
}

// Scan iterates every tuple of Relation, binding it at Level, and
// recurses into Nested for each (spec section 4.4, "Scan(R, level,
// nested)").
type Scan struct {
	Relation RelationRef
	Level    int
	Nested   Op
}

// Kind implements Op.
func (Scan) Kind() OpKind { return OpScan }
func (Scan) isOp()        {}

// IndexScan iterates the range [Low, High] of Relation's index chosen by
// Signature, binding each tuple at Level (spec section 4.4,
// "IndexScan(R, sig, lo..hi, level, nested)"). A None column in Signature
// contributes domain.MinBound/domain.MaxBound to the corresponding bound
// expression.
type IndexScan struct {
	Relation  RelationRef
	Signature Signature
	Low       []Expr
	High      []Expr
	Level     int
	Nested    Op
}

// Kind implements Op.
func (IndexScan) Kind() OpKind { return OpIndexScan }
func (IndexScan) isOp()        {}

// Choice is like Scan but stops after the first tuple satisfying
// Condition (spec section 4.4, "Choice(R, condition, level, nested)").
type Choice struct {
	Relation  RelationRef
	Condition Cond
	Level     int
	Nested    Op
}

// Kind implements Op.
func (Choice) Kind() OpKind { return OpChoice }
func (Choice) isOp()        {}

// IndexChoice is like IndexScan but stops after the first tuple
// satisfying Condition.
type IndexChoice struct {
	Relation  RelationRef
	Signature Signature
	Low       []Expr
	High      []Expr
	Condition Cond
	Level     int
	Nested    Op
}

// Kind implements Op.
func (IndexChoice) Kind() OpKind { return OpIndexChoice }
func (IndexChoice) isOp()        {}

// UnpackRecord decodes the record bound by Source to a tuple of Arity
// columns and binds it at Level (spec section 4.4, "UnpackRecord(ref,
// arity, level, nested)": "if ref is nil, skip").
type UnpackRecord struct {
	Source Expr
	Arity  int
	Level  int
	Nested Op
}

// Kind implements Op.
func (UnpackRecord) Kind() OpKind { return OpUnpackRecord }
func (UnpackRecord) isOp()        {}

// AggregateFunc tags the fold operator of an Aggregate operation (spec
// section 4.4, "fold into res per op (MIN, MAX, SUM, COUNT)").
type AggregateFunc uint8

// Supported aggregate folds.
const (
	AggMin AggregateFunc = iota
	AggMax
	AggSum
	AggCount
)

// Aggregate iterates Relation (all tuples, or a range if Signature is
// non-empty), binds each qualifying tuple at Level, evaluates Target, and
// folds the results per Func into ctx[Level][0] (spec section 4.4,
// "Aggregate(R, level, op, target, condition, nested)"). When Func is
// AggMin/AggMax and no tuple qualifies, Nested is not executed.
type Aggregate struct {
	Relation  RelationRef
	Signature Signature
	Low       []Expr
	High      []Expr
	Func      AggregateFunc
	Target    Expr
	Condition Cond
	Level     int
	Nested    Op
}

// Kind implements Op.
func (Aggregate) Kind() OpKind { return OpAggregate }
func (Aggregate) isOp()        {}

// Filter recurses into Nested iff Condition holds; otherwise it continues
// the enclosing loop without signalling an error (spec section 4.4,
// "Filter(cond, nested)").
type Filter struct {
	Condition Cond
	Nested    Op
}

// Kind implements Op.
func (Filter) Kind() OpKind { return OpFilter }
func (Filter) isOp()        {}

// Break stops the enclosing search (returns false) once Condition holds;
// otherwise it recurses into Nested (spec section 4.4, "Break(cond,
// nested)").
type Break struct {
	Condition Cond
	Nested    Op
}

// Kind implements Op.
func (Break) Kind() OpKind { return OpBreak }
func (Break) isOp()        {}

// Project evaluates Args and inserts the resulting tuple into Relation
// (spec section 4.4, "Project(R, args)").
type Project struct {
	Relation RelationRef
	Args     []Expr
}

// Kind implements Op.
func (Project) Kind() OpKind { return OpProject }
func (Project) isOp()        {}

// ReturnValue evaluates each of Args and appends it to the enclosing
// query's return slice (spec section 4.4, "ReturnValue(args)"); no
// per-argument flag records whether a value was defined. Used by
// provenance subproof subroutines.
type ReturnValue struct {
	Args []Expr
}

// Kind implements Op.
func (ReturnValue) Kind() OpKind { return OpReturnValue }
func (ReturnValue) isOp()        {}
