package eval

import (
	"fmt"

	"github.com/souffle-lang/souffle-sub001/pkg/datalog/domain"
	"github.com/souffle-lang/souffle-sub001/pkg/datalog/ram"
	"github.com/souffle-lang/souffle-sub001/pkg/datalog/relation"
)

// evalOp evaluates a relational operation. The returned bool is the
// search-continuation signal spec section 4.4 assigns each operation:
// true means "continue the enclosing search", false means "stop it"
// (used by Break and by Choice/IndexChoice once they have found their one
// qualifying tuple).
func (e *Evaluator) evalOp(ctx *context, op ram.Op) (bool, error) {
	switch o := op.(type) {
	case ram.Scan:
		return e.evalScan(ctx, o)
	case ram.IndexScan:
		return e.evalIndexScan(ctx, o)
	case ram.Choice:
		return e.evalChoice(ctx, o)
	case ram.IndexChoice:
		return e.evalIndexChoice(ctx, o)
	case ram.UnpackRecord:
		return e.evalUnpackRecord(ctx, o)
	case ram.Aggregate:
		return e.evalAggregate(ctx, o)
	case ram.Filter:
		if e.evalCond(ctx, o.Condition) {
			return e.evalOp(ctx, o.Nested)
		}

		return true, nil
	case ram.Break:
		if e.evalCond(ctx, o.Condition) {
			return false, nil
		}

		return e.evalOp(ctx, o.Nested)
	case ram.Project:
		args := make(domain.Tuple, len(o.Args))
		for i, a := range o.Args {
			args[i] = e.evalExpr(ctx, a)
		}

		e.db.Get(o.Relation).Insert(args)

		return true, nil
	case ram.ReturnValue:
		args := make([]domain.Value, len(o.Args))
		for i, a := range o.Args {
			args[i] = e.evalExpr(ctx, a)
		}

		ctx.appendReturn(args)

		return true, nil
	default:
		panic(fmt.Sprintf("eval: unhandled operation kind %T", op))
	}
}

func (e *Evaluator) evalScan(ctx *context, o ram.Scan) (bool, error) {
	arity := o.Relation.TotalArity()
	rel := e.db.Get(o.Relation)
	idx := rel.Index(ram.NewSignature(arity))
	it := idx.Range(minTuple(arity), maxTuple(arity))

	for it.Next() {
		ctx.bind(o.Level, it.Tuple())

		cont, err := e.evalOp(ctx, o.Nested)
		if err != nil {
			return false, err
		}

		if !cont {
			return false, nil
		}
	}

	return true, nil
}

func (e *Evaluator) evalChoice(ctx *context, o ram.Choice) (bool, error) {
	arity := o.Relation.TotalArity()
	rel := e.db.Get(o.Relation)
	idx := rel.Index(ram.NewSignature(arity))
	it := idx.Range(minTuple(arity), maxTuple(arity))

	for it.Next() {
		ctx.bind(o.Level, it.Tuple())

		if e.evalCond(ctx, o.Condition) {
			_, err := e.evalOp(ctx, o.Nested)
			return false, err
		}
	}

	return true, nil
}

// rangeBounds evaluates an IndexScan/IndexChoice/Aggregate's Signature,
// Low and High into concrete bound tuples. Low and High are indexed by
// column exactly as Signature is: entries at a None column are ignored in
// favour of the Min/MaxBound sentinels (spec section 4.4, "IndexScan(R,
// sig, lo..hi, level, nested)": "a None column... contributes
// domain.MinBound/domain.MaxBound").
func (e *Evaluator) rangeBounds(ctx *context, sig ram.Signature, low, high []ram.Expr) (domain.Tuple, domain.Tuple) {
	lo := make(domain.Tuple, len(sig))
	hi := make(domain.Tuple, len(sig))

	for col, c := range sig {
		if c == ram.None {
			lo[col] = domain.MinBound
			hi[col] = domain.MaxBound
			continue
		}

		lo[col] = e.evalExpr(ctx, low[col])
		hi[col] = e.evalExpr(ctx, high[col])
	}

	return lo, hi
}

func (e *Evaluator) evalIndexScan(ctx *context, o ram.IndexScan) (bool, error) {
	rel := e.db.Get(o.Relation)
	idx := rel.Index(o.Signature)
	lo, hi := e.rangeBounds(ctx, o.Signature, o.Low, o.High)
	it := idx.Range(lo, hi)

	for it.Next() {
		ctx.bind(o.Level, it.Tuple())

		cont, err := e.evalOp(ctx, o.Nested)
		if err != nil {
			return false, err
		}

		if !cont {
			return false, nil
		}
	}

	return true, nil
}

func (e *Evaluator) evalIndexChoice(ctx *context, o ram.IndexChoice) (bool, error) {
	rel := e.db.Get(o.Relation)
	idx := rel.Index(o.Signature)
	lo, hi := e.rangeBounds(ctx, o.Signature, o.Low, o.High)
	it := idx.Range(lo, hi)

	for it.Next() {
		ctx.bind(o.Level, it.Tuple())

		if e.evalCond(ctx, o.Condition) {
			_, err := e.evalOp(ctx, o.Nested)
			return false, err
		}
	}

	return true, nil
}

// evalUnpackRecord decodes the record bound by Source into a nested
// tuple; a nil record reference (domain.NilRecord) is skipped rather than
// unpacked (spec section 4.4, "UnpackRecord": "if ref is nil, skip").
func (e *Evaluator) evalUnpackRecord(ctx *context, o ram.UnpackRecord) (bool, error) {
	ref := domain.RecordIndex(e.evalExpr(ctx, o.Source).Unsigned())
	if ref == domain.NilRecord {
		return true, nil
	}

	ctx.bind(o.Level, e.records.Unpack(ref, o.Arity))

	return e.evalOp(ctx, o.Nested)
}

func (e *Evaluator) evalAggregate(ctx *context, o ram.Aggregate) (bool, error) {
	rel := e.db.Get(o.Relation)

	var it relation.Iterator

	if o.Signature.Empty() {
		arity := o.Relation.TotalArity()
		idx := rel.Index(ram.NewSignature(arity))
		it = idx.Range(minTuple(arity), maxTuple(arity))
	} else {
		idx := rel.Index(o.Signature)
		lo, hi := e.rangeBounds(ctx, o.Signature, o.Low, o.High)
		it = idx.Range(lo, hi)
	}

	var (
		acc   domain.Value
		count int64
		any   bool
	)

	for it.Next() {
		ctx.bind(o.Level, it.Tuple())

		if !e.evalCond(ctx, o.Condition) {
			continue
		}

		v := e.evalExpr(ctx, o.Target)
		count++

		switch o.Func {
		case ram.AggMin:
			if !any || v.Signed() < acc.Signed() {
				acc = v
			}
		case ram.AggMax:
			if !any || v.Signed() > acc.Signed() {
				acc = v
			}
		case ram.AggSum:
			acc = domain.ValueOfSigned(acc.Signed() + v.Signed())
		case ram.AggCount:
			acc = domain.ValueOfSigned(count)
		}

		any = true
	}

	if !any {
		switch o.Func {
		case ram.AggMin, ram.AggMax:
			return true, nil
		default:
			acc = domain.ValueOfSigned(0)
		}
	}

	ctx.bind(o.Level, domain.Tuple{acc})

	return e.evalOp(ctx, o.Nested)
}
