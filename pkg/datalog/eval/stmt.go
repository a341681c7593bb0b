package eval

import (
	"fmt"
	"sync"
	"time"

	datalogio "github.com/souffle-lang/souffle-sub001/pkg/datalog/io"
	"github.com/souffle-lang/souffle-sub001/pkg/datalog/ram"
)

// evalStmt evaluates an IR-R statement against ctx, returning the
// continuation signal spec section 4.4 assigns statements (false halts
// the enclosing Sequence/Loop).
func (e *Evaluator) evalStmt(ctx *context, stmt ram.Stmt) (bool, error) {
	switch s := stmt.(type) {
	case ram.Sequence:
		for _, child := range s.Body {
			cont, err := e.evalStmt(ctx, child)
			if err != nil {
				return false, err
			}

			if !cont {
				return false, nil
			}
		}

		return true, nil
	case ram.Parallel:
		return e.evalParallel(ctx, s)
	case ram.Loop:
		for {
			cont, err := e.evalStmt(ctx, s.Body)
			if err != nil {
				return false, err
			}

			if !cont {
				return false, nil
			}
		}
	case ram.Exit:
		return !e.evalCond(ctx, s.Condition), nil
	case ram.Query:
		qctx := newContext(s.NumSlots, ctx.args, ctx.ret, ctx.retMu)

		if _, err := e.evalOp(qctx, s.Root); err != nil {
			return false, err
		}

		return true, nil
	case ram.Merge:
		return true, e.evalMerge(s)
	case ram.Swap:
		e.db.Swap(s.A, s.B)
		return true, nil
	case ram.Clear:
		e.db.Get(s.Relation).Purge()
		return true, nil
	case ram.Create:
		e.db.Create(s.Relation, s.Orders)
		return true, nil
	case ram.Drop:
		e.db.Drop(s.Relation)
		return true, nil
	case ram.Load:
		return true, e.evalLoad(s)
	case ram.Store:
		return true, e.evalStore(s)
	case ram.LogSize:
		e.logger.WithFields(logSizeFields(s, e.db.Get(s.Relation).Size())).Info(s.Message)
		return true, nil
	case ram.LogTimer:
		start := time.Now()

		cont, err := e.evalStmt(ctx, s.Body)

		e.logger.WithField("elapsed", time.Since(start)).Info(s.Message)

		return cont, err
	case ram.DebugInfo:
		e.setDebugMessage(s.Message)
		return e.evalStmt(ctx, s.Body)
	case ram.Call:
		_, err := e.RunSubroutine(s.Name, ctx.args)
		return true, err
	default:
		panic(fmt.Sprintf("eval: unhandled statement kind %T", stmt))
	}
}

func logSizeFields(s ram.LogSize, size int) map[string]any {
	return map[string]any{"relation": s.Relation.Name, "size": size}
}

// evalParallel runs Body's statements concurrently and joins on all of
// them (spec section 4.4, "Parallel"; section 5, "fork-join
// parallelism"). Each child shares ctx's args/ret (return-slice appends
// are serialised through ctx.retMu); a child is expected to be a Query or
// a Sequence of Queries, each of which establishes its own fresh slot
// context, so concurrent children never contend over tuple-slot state.
func (e *Evaluator) evalParallel(ctx *context, p ram.Parallel) (bool, error) {
	var (
		wg       sync.WaitGroup
		mu       sync.Mutex
		allOK    = true
		firstErr error
	)

	for _, child := range p.Body {
		child := child

		wg.Add(1)

		go func() {
			defer wg.Done()

			cont, err := e.evalStmt(ctx, child)

			mu.Lock()
			defer mu.Unlock()

			if err != nil && firstErr == nil {
				firstErr = err
			}

			if !cont {
				allOK = false
			}
		}()
	}

	wg.Wait()

	return allOK, firstErr
}

// evalMerge implements Merge(src, dst): if dst is an equivalence
// relation, it is first extended by src's closure, then src's tuples are
// unioned into dst (spec section 4.4, "Merge(src, dst)").
func (e *Evaluator) evalMerge(m ram.Merge) error {
	src := e.db.Get(m.Src)
	dst := e.db.Get(m.Dst)

	if dst.Representation() == ram.EqRel {
		if err := dst.Extend(src); err != nil {
			return fmt.Errorf("eval: merge %s into %s: %w", m.Src.Name, m.Dst.Name, err)
		}
	}

	dst.InsertAll(src)

	return nil
}

func (e *Evaluator) evalLoad(s ram.Load) error {
	tuples, err := datalogio.Load(e.dir, s.Directives, s.Relation, e.symbols)
	if err != nil {
		return err
	}

	rel := e.db.Get(s.Relation)
	for _, tuple := range tuples {
		rel.Insert(tuple)
	}

	e.logger.WithFields(map[string]any{"relation": s.Relation.Name, "count": len(tuples)}).Debug("loaded relation")

	return nil
}

func (e *Evaluator) evalStore(s ram.Store) error {
	rel := e.db.Get(s.Relation)
	tuples := allTuples(rel, s.Relation.TotalArity())

	if err := datalogio.Store(e.dir, s.Directives, s.Relation, tuples, e.symbols); err != nil {
		return err
	}

	e.logger.WithFields(map[string]any{"relation": s.Relation.Name, "count": len(tuples)}).Debug("stored relation")

	return nil
}
