package eval

import (
	"fmt"
	"strconv"

	"github.com/souffle-lang/souffle-sub001/pkg/datalog/domain"
	"github.com/souffle-lang/souffle-sub001/pkg/datalog/ram"
)

// evalExpr evaluates a pure, effect-free IR-R expression against ctx
// (spec section 4.4, "Expression evaluation").
func (e *Evaluator) evalExpr(ctx *context, expr ram.Expr) domain.Value {
	switch x := expr.(type) {
	case ram.Constant:
		return x.Value
	case ram.ElementAccess:
		return ctx.get(x.Level, x.Column)
	case ram.Intrinsic:
		return e.evalIntrinsic(ctx, x)
	case ram.UserFunctor:
		return e.evalUserFunctor(ctx, x)
	case ram.PackRecord:
		args := make(domain.Tuple, len(x.Args))
		for i, a := range x.Args {
			args[i] = e.evalExpr(ctx, a)
		}

		return domain.ValueOfUnsigned(uint64(e.records.Pack(args)))
	default:
		panic(fmt.Sprintf("eval: unhandled expression kind %T", expr))
	}
}

// evalIntrinsic applies a built-in operator's dispatch table (spec
// section 4.4, "Intrinsic functors"). Arithmetic is evaluated under the
// signed view by default, matching original_source's RamDomain being a
// signed 64-bit word; bitwise operators use the unsigned view; string
// operators resolve through the symbol table.
func (e *Evaluator) evalIntrinsic(ctx *context, x ram.Intrinsic) domain.Value {
	arg := func(i int) domain.Value { return e.evalExpr(ctx, x.Args[i]) }

	switch x.Op {
	case ram.OpAdd:
		return domain.ValueOfSigned(arg(0).Signed() + arg(1).Signed())
	case ram.OpSub:
		return domain.ValueOfSigned(arg(0).Signed() - arg(1).Signed())
	case ram.OpMul:
		return domain.ValueOfSigned(arg(0).Signed() * arg(1).Signed())
	case ram.OpDiv:
		divisor := arg(1).Signed()
		if divisor == 0 {
			e.logger.Warn("intrinsic division by zero, result is zero")
			return domain.ValueOfSigned(0)
		}

		return domain.ValueOfSigned(arg(0).Signed() / divisor)
	case ram.OpMod:
		divisor := arg(1).Signed()
		if divisor == 0 {
			e.logger.Warn("intrinsic modulo by zero, result is zero")
			return domain.ValueOfSigned(0)
		}

		return domain.ValueOfSigned(arg(0).Signed() % divisor)
	case ram.OpBitAnd:
		return domain.ValueOfUnsigned(arg(0).Unsigned() & arg(1).Unsigned())
	case ram.OpBitOr:
		return domain.ValueOfUnsigned(arg(0).Unsigned() | arg(1).Unsigned())
	case ram.OpBitXor:
		return domain.ValueOfUnsigned(arg(0).Unsigned() ^ arg(1).Unsigned())
	case ram.OpNeg:
		return domain.ValueOfSigned(-arg(0).Signed())
	case ram.OpStrCat:
		return domain.ValueOfSymbol(e.symbols.Lookup(e.symbols.Resolve(arg(0).Symbol()) + e.symbols.Resolve(arg(1).Symbol())))
	case ram.OpStrLen:
		return domain.ValueOfSigned(int64(len(e.symbols.Resolve(arg(0).Symbol()))))
	case ram.OpSubstr:
		s := e.symbols.Resolve(arg(0).Symbol())
		start := int(arg(1).Signed())
		length := int(arg(2).Signed())

		return domain.ValueOfSymbol(e.symbols.Lookup(substr(s, start, length)))
	case ram.OpToNumber:
		s := e.symbols.Resolve(arg(0).Symbol())

		n, err := strconv.ParseInt(s, 10, 64)
		if err != nil {
			e.logger.WithField("input", s).Warn("to_number of non-numeric string, result is zero")
			return domain.ValueOfSigned(0)
		}

		return domain.ValueOfSigned(n)
	case ram.OpToString:
		return domain.ValueOfSymbol(e.symbols.Lookup(strconv.FormatInt(arg(0).Signed(), 10)))
	case ram.OpOrd:
		return domain.ValueOfUnsigned(uint64(arg(0).Symbol()))
	case ram.OpDerivationLevel:
		var max int64

		for i := range x.Args {
			if v := arg(i).Signed(); v > max {
				max = v
			}
		}

		return domain.ValueOfSigned(max + 1)
	default:
		panic(fmt.Sprintf("eval: unhandled intrinsic op %v", x.Op))
	}
}

func substr(s string, start, length int) string {
	if start < 0 {
		start = 0
	}

	if start > len(s) {
		start = len(s)
	}

	end := start + length
	if length < 0 || end > len(s) {
		end = len(s)
	}

	return s[start:end]
}

// evalUserFunctor invokes an externally registered functor via the
// evaluator's functor table (spec section 4.4, "User-defined functors").
// A functor with no registered implementation evaluates to zero, logged
// as a warning rather than a hard failure, matching the tolerant-operator
// posture spec section 4.4 applies to Constraint.
func (e *Evaluator) evalUserFunctor(ctx *context, x ram.UserFunctor) domain.Value {
	fn, ok := e.functors[x.Name]
	if !ok {
		e.logger.WithField("functor", x.Name).Warn("call to unregistered user functor, result is zero")
		return domain.ValueOfSigned(0)
	}

	args := make([]domain.Value, len(x.Args))
	for i, a := range x.Args {
		args[i] = e.evalExpr(ctx, a)
	}

	return fn(args)
}
