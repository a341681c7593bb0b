package ram

import "github.com/souffle-lang/souffle-sub001/pkg/datalog/domain"

// ExprKind tags the closed set of expression node kinds (spec section 2,
// "expression/condition sub-language"). Dispatch in the evaluator is an
// exhaustive switch over Kind(), per the "tagged variants... stable tag
// range" design note rather than an open type hierarchy.
type ExprKind uint8

const (
	// ExprConstant is a literal domain value.
	ExprConstant ExprKind = iota
	// ExprElementAccess reads ctx[Level][Column].
	ExprElementAccess
	// ExprIntrinsic applies a built-in arithmetic/string/record operator.
	ExprIntrinsic
	// ExprUserFunctor calls an externally supplied function.
	ExprUserFunctor
	// ExprPackRecord evaluates arguments and interns them as a record.
	ExprPackRecord
)

// Expr is the closed set of IR-R expression nodes. Expressions are pure
// and effect-free (spec section 4.4, "Expression evaluation").
type Expr interface {
	Kind() ExprKind
	isExpr()
}

// Constant is a literal domain value of a known column type.
type Constant struct {
	Value domain.Value
	Type  ColumnType
}

// Kind implements Expr.
func (Constant) Kind() ExprKind { return ExprConstant }
func (Constant) isExpr()        {}

// ElementAccess reads the value bound to column Column of the tuple at
// nesting Level in the current context (spec section 4.4,
// "ElementAccess(level, col)").
type ElementAccess struct {
	Level  int
	Column int
}

// Kind implements Expr.
func (ElementAccess) Kind() ExprKind { return ExprElementAccess }
func (ElementAccess) isExpr()        {}

// IntrinsicOp tags the dispatch table of built-in operators (spec section
// 4.4, "Intrinsic functors implement... per a dispatch table").
type IntrinsicOp uint8

// Arithmetic, string and record intrinsics.
const (
	OpAdd IntrinsicOp = iota
	OpSub
	OpMul
	OpDiv
	OpMod
	OpBitAnd
	OpBitOr
	OpBitXor
	OpNeg
	OpStrCat
	OpStrLen
	OpSubstr
	OpToNumber
	OpToString
	OpOrd
	// OpDerivationLevel computes a provenance derivation level: one plus
	// the maximum of its (possibly zero) arguments, each normally an
	// ElementAccess reading a positive body atom's own trailing level
	// column (spec section 4.1, "Provenance guard"; a coarser stand-in
	// for original_source's per-proof-tree subtree-height numbering —
	// see DESIGN.md).
	OpDerivationLevel
)

// Intrinsic applies a built-in operator to its evaluated arguments.
type Intrinsic struct {
	Op   IntrinsicOp
	Args []Expr
}

// Kind implements Expr.
func (Intrinsic) Kind() ExprKind { return ExprIntrinsic }
func (Intrinsic) isExpr()        {}

// FunctorParam describes the declared type of one user functor parameter.
// It is carried on UserFunctor; the evaluator does not read it.
type FunctorParam struct {
	Type ColumnType
}

// UserFunctor calls the host function registered under Name with its
// evaluated Args as raw domain values. Params and ReturnType record the
// declared types only: the evaluator does not convert arguments by them,
// does not resolve symbol arguments through the symbol table, and does
// not intern a returned string.
type UserFunctor struct {
	Name       string
	Args       []Expr
	Params     []FunctorParam
	ReturnType ColumnType
}

// Kind implements Expr.
func (UserFunctor) Kind() ExprKind { return ExprUserFunctor }
func (UserFunctor) isExpr()        {}

// PackRecord evaluates Args and calls record.Pack on the result (spec
// section 4.4, "PackRecord(args)").
type PackRecord struct {
	Args []Expr
}

// Kind implements Expr.
func (PackRecord) Kind() ExprKind { return ExprPackRecord }
func (PackRecord) isExpr()        {}
