// Package eval implements the tree-walking evaluator (spec section 4.4):
// a mutually recursive statement/operation/condition/expression visitor
// over pkg/datalog/ram, generalizing go-corset's lowering-pass visitor
// style (pkg/ir/mir, pkg/ir/hir) from "rewrite one IR into another" to
// "interpret an IR directly against live relation storage" — the same
// closed-tagged-switch dispatch shape, aimed at execution instead of
// translation. Runtime diagnostics go through sirupsen/logrus, matching
// go-corset's pkg/util/perfstats.go convention.
package eval

import (
	"fmt"
	"sync"

	"github.com/sirupsen/logrus"

	"github.com/souffle-lang/souffle-sub001/pkg/datalog/domain"
	"github.com/souffle-lang/souffle-sub001/pkg/datalog/ram"
)

// Config carries the shared tables and diagnostics sink an Evaluator
// needs alongside the program it runs (spec section 3, "Symbol table" /
// "Record table").
type Config struct {
	Symbols *domain.SymbolTable
	Records *domain.RecordTable
	Logger  *logrus.Logger
	// Dir is the base directory Load/Store filenames in ram.IODirectives
	// resolve against (spec section 6, "Reader/writer capability").
	Dir string
	// Functors registers the host-supplied implementations of
	// ram.UserFunctor by name (spec section 4.4, "User-defined functors").
	Functors map[string]Functor
}

// Functor is a host-supplied implementation of a user-defined functor. It
// receives the evaluated argument values unconverted: symbol arguments
// arrive as symbol-table indices, and a symbol result is returned as is,
// without interning.
type Functor func(args []domain.Value) domain.Value

// Evaluator runs a translated ram.Program against live relation storage
// (spec section 4.4).
type Evaluator struct {
	program  *ram.Program
	db       *Database
	symbols  *domain.SymbolTable
	records  *domain.RecordTable
	logger   *logrus.Entry
	dir      string
	functors map[string]Functor

	debugMu      sync.Mutex
	debugMessage string
}

// New constructs an Evaluator for program. A nil cfg.Symbols/cfg.Records
// allocates fresh tables; a nil cfg.Logger defaults to logrus's standard
// logger.
func New(program *ram.Program, cfg Config) *Evaluator {
	symbols := cfg.Symbols
	if symbols == nil {
		symbols = domain.NewSymbolTable()
	}

	records := cfg.Records
	if records == nil {
		records = domain.NewRecordTable()
	}

	logger := cfg.Logger
	if logger == nil {
		logger = logrus.StandardLogger()
	}

	return &Evaluator{
		program:  program,
		db:       newDatabase(program.Orders),
		symbols:  symbols,
		records:  records,
		logger:   logger.WithField("component", "eval"),
		dir:      cfg.Dir,
		functors: cfg.Functors,
	}
}

// Database exposes the evaluator's live relation storage, e.g. for a
// driver to inspect output relations after Run returns.
func (e *Evaluator) Database() *Database { return e.db }

// Run executes the program's Main subroutine to completion (spec section
// 4.4, "the driver invokes Main").
func (e *Evaluator) Run() error {
	_, err := e.RunSubroutine(e.program.Main, nil)
	return err
}

// RunSubroutine invokes the named subroutine with args bound as its
// subroutine-argument context (ElementAccess{Level: -1, ...}; spec section
// 4.1, "subroutine arguments") and returns whatever its ReturnValue
// operations accumulated.
func (e *Evaluator) RunSubroutine(name string, args []domain.Value) ([]domain.Value, error) {
	sub, ok := e.program.Subroutines[name]
	if !ok {
		return nil, fmt.Errorf("eval: unknown subroutine %q", name)
	}

	e.logger.WithField("subroutine", name).Debug("invoking subroutine")

	var (
		ret   []domain.Value
		retMu sync.Mutex
	)

	ctx := newContext(0, args, &ret, &retMu)

	if _, err := e.evalStmt(ctx, sub.Body); err != nil {
		return nil, fmt.Errorf("eval: subroutine %q: %w", name, err)
	}

	return ret, nil
}

func (e *Evaluator) setDebugMessage(msg string) {
	e.debugMu.Lock()
	e.debugMessage = msg
	e.debugMu.Unlock()
}

// DebugMessage returns the most recently set DebugInfo message, for a
// fatal-signal handler to report (spec section 7).
func (e *Evaluator) DebugMessage() string {
	e.debugMu.Lock()
	defer e.debugMu.Unlock()

	return e.debugMessage
}
