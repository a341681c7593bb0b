package ram

// StmtKind tags the closed set of statement node kinds (spec section 2,
// "A statement language (sequence, parallel, loop, exit, query, swap,
// clear, merge, I/O)").
type StmtKind uint8

// Statement kinds.
const (
	StmtSequence StmtKind = iota
	StmtParallel
	StmtLoop
	StmtExit
	StmtQuery
	StmtMerge
	StmtSwap
	StmtClear
	StmtCreate
	StmtDrop
	StmtLoad
	StmtStore
	StmtLogSize
	StmtLogTimer
	StmtDebugInfo
	StmtCall
)

// Stmt is the closed set of IR-R statement nodes.
type Stmt interface {
	Kind() StmtKind
	isStmt()
}

// Sequence executes Body in order, halting on the first statement that
// returns false (spec section 4.4, "Sequence").
type Sequence struct {
	Body []Stmt
}

// Kind implements Stmt.
func (Sequence) Kind() StmtKind { return StmtSequence }
func (Sequence) isStmt()        {}

// Parallel executes Body concurrently and is a join barrier: the
// enclosing sequence advances only once every child has returned (spec
// section 4.4, "Parallel"; section 5, "fork-join parallelism"). The
// overall result is the conjunction of the children's successes.
type Parallel struct {
	Body []Stmt
}

// Kind implements Stmt.
func (Parallel) Kind() StmtKind { return StmtParallel }
func (Parallel) isStmt()        {}

// Loop repeats Body until it returns false, which happens only via an
// enclosed Exit (spec section 4.4, "Loop(body)").
type Loop struct {
	Body Stmt
}

// Kind implements Stmt.
func (Loop) Kind() StmtKind { return StmtLoop }
func (Loop) isStmt()        {}

// Exit returns !Condition, stopping the enclosing Loop when Condition
// holds (spec section 4.4, "Exit(cond)").
type Exit struct {
	Condition Cond
}

// Kind implements Stmt.
func (Exit) Kind() StmtKind { return StmtExit }
func (Exit) isStmt()        {}

// Query establishes a fresh context and runs Root (spec section 4.4,
// "Query(op)").
type Query struct {
	Root     Op
	NumSlots int
}

// Kind implements Stmt.
func (Query) Kind() StmtKind { return StmtQuery }
func (Query) isStmt()        {}

// Merge merges Src into Dst: if Dst's representation is EqRel, Dst is
// first extended by Src's equivalence closure, then Src's tuples are
// unioned in (spec section 4.4, "Merge(src, dst)").
type Merge struct {
	Src RelationRef
	Dst RelationRef
}

// Kind implements Stmt.
func (Merge) Kind() StmtKind { return StmtMerge }
func (Merge) isStmt()        {}

// Swap exchanges the relation handles named by A and B (spec section 4.4,
// "Swap(a, b)").
type Swap struct {
	A RelationRef
	B RelationRef
}

// Kind implements Stmt.
func (Swap) Kind() StmtKind { return StmtSwap }
func (Swap) isStmt()        {}

// Clear removes all tuples from Relation.
type Clear struct {
	Relation RelationRef
}

// Kind implements Stmt.
func (Clear) Kind() StmtKind { return StmtClear }
func (Clear) isStmt()        {}

// Create instantiates Relation's run-time storage.
type Create struct {
	Relation RelationRef
	Orders   []LexOrder
}

// Kind implements Stmt.
func (Create) Kind() StmtKind { return StmtCreate }
func (Create) isStmt()        {}

// Drop releases Relation's run-time storage.
type Drop struct {
	Relation RelationRef
}

// Kind implements Stmt.
func (Drop) Kind() StmtKind { return StmtDrop }
func (Drop) isStmt()        {}

// IODirectives configures a Load/Store statement (spec section 6,
// "Reader capability"). SymbolMask has length Relation.TotalArity() and
// marks which columns hold symbol-typed values versus raw numbers.
type IODirectives struct {
	IO         string
	Filename   string
	Name       string
	Delimiter  string
	Headers    bool
	Types      string
	Operation  string
	AttrNames  []string
	SymbolMask []bool
}

// Load streams tuples from an external source into Relation via the
// reader capability (spec section 4.4, "Load(R, directives)").
type Load struct {
	Relation   RelationRef
	Directives IODirectives
}

// Kind implements Stmt.
func (Load) Kind() StmtKind { return StmtLoad }
func (Load) isStmt()        {}

// Store drains Relation to an external sink via the writer capability
// (spec section 4.4, "Store(R, directives)").
type Store struct {
	Relation   RelationRef
	Directives IODirectives
}

// Kind implements Stmt.
func (Store) Kind() StmtKind { return StmtStore }
func (Store) isStmt()        {}

// LogSize records the current size of Relation under Message in the
// profiling counters (spec section 4.4, "LogSize").
type LogSize struct {
	Relation RelationRef
	Message  string
}

// Kind implements Stmt.
func (LogSize) Kind() StmtKind { return StmtLogSize }
func (LogSize) isStmt()        {}

// LogTimer wraps Body, recording elapsed wall time under Message in the
// profiling counters (spec section 4.4, "LogTimer").
type LogTimer struct {
	Message string
	Body    Stmt
}

// Kind implements Stmt.
func (LogTimer) Kind() StmtKind { return StmtLogTimer }
func (LogTimer) isStmt()        {}

// DebugInfo records Message as the "currently executing" debug message
// for the duration of Body, so a fatal-signal handler can report it
// (spec section 7, "installs a signal handler that... prints the most
// recently set debug message").
type DebugInfo struct {
	Message string
	Body    Stmt
}

// Kind implements Stmt.
func (DebugInfo) Kind() StmtKind { return StmtDebugInfo }
func (DebugInfo) isStmt()        {}

// Call invokes a named subroutine (spec section 4.4, "Subroutine
// invocation").
type Call struct {
	Name string
}

// Kind implements Stmt.
func (Call) Kind() StmtKind { return StmtCall }
func (Call) isStmt()        {}
