package eval

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/souffle-lang/souffle-sub001/pkg/datalog/domain"
	"github.com/souffle-lang/souffle-sub001/pkg/datalog/ram"
)

// evalCond evaluates an IR-R boolean condition against ctx (spec section
// 4.4, "Condition evaluation").
func (e *Evaluator) evalCond(ctx *context, cond ram.Cond) bool {
	switch c := cond.(type) {
	case ram.True:
		return true
	case ram.Emptiness:
		return e.db.Get(c.Relation).Empty()
	case ram.Existence:
		return e.evalExistence(ctx, c.Relation, c.Signature, c.Args)
	case ram.ProvenanceExistence:
		sig := wildcardAuxiliary(c.Signature, c.Relation)
		return e.evalExistence(ctx, c.Relation, sig, c.Args)
	case ram.Conjunction:
		for _, term := range c.Terms {
			if !e.evalCond(ctx, term) {
				return false
			}
		}

		return true
	case ram.Negation:
		return !e.evalCond(ctx, c.Term)
	case ram.Constraint:
		return e.evalConstraint(ctx, c)
	default:
		panic(fmt.Sprintf("eval: unhandled condition kind %T", cond))
	}
}

// wildcardAuxiliary returns a copy of sig with every auxiliary column
// forced to None, regardless of what the translator recorded there (spec
// section 4.4, "ProvenanceExistenceCheck": "auxiliary columns always
// wildcarded").
func wildcardAuxiliary(sig ram.Signature, ref ram.RelationRef) ram.Signature {
	out := make(ram.Signature, len(sig))
	copy(out, sig)

	for i := ref.Arity; i < len(out); i++ {
		out[i] = ram.None
	}

	return out
}

// evalExistence implements both Existence and (after wildcarding)
// ProvenanceExistence: a None column contributes Min/MaxBound to the
// range query rather than the corresponding evaluated arg, so the query
// only pins the columns the signature actually constrains.
func (e *Evaluator) evalExistence(ctx *context, ref ram.RelationRef, sig ram.Signature, args []ram.Expr) bool {
	rel := e.db.Get(ref)
	idx := rel.Index(sig)

	lo := make(domain.Tuple, len(sig))
	hi := make(domain.Tuple, len(sig))

	for i, c := range sig {
		if c == ram.None {
			lo[i] = domain.MinBound
			hi[i] = domain.MaxBound
			continue
		}

		v := e.evalExpr(ctx, args[i])
		lo[i] = v
		hi[i] = v
	}

	it := idx.Range(lo, hi)

	return it.Next()
}

func (e *Evaluator) evalConstraint(ctx *context, c ram.Constraint) bool {
	left := e.evalExpr(ctx, c.Left)

	switch c.Op {
	case ram.OpEq:
		return left == e.evalExpr(ctx, c.Right)
	case ram.OpNe:
		return left != e.evalExpr(ctx, c.Right)
	case ram.OpLt:
		return left.Signed() < e.evalExpr(ctx, c.Right).Signed()
	case ram.OpLe:
		return left.Signed() <= e.evalExpr(ctx, c.Right).Signed()
	case ram.OpGt:
		return left.Signed() > e.evalExpr(ctx, c.Right).Signed()
	case ram.OpGe:
		return left.Signed() >= e.evalExpr(ctx, c.Right).Signed()
	case ram.OpMatch, ram.OpNotMatch:
		subject := e.symbols.Resolve(left.Symbol())
		pattern := e.symbols.Resolve(e.evalExpr(ctx, c.Right).Symbol())

		re, err := regexp.Compile(pattern)
		if err != nil {
			e.logger.WithField("pattern", pattern).Warn("malformed regex in match constraint, treated as false")
			return false
		}

		matched := re.MatchString(subject)
		if c.Op == ram.OpNotMatch {
			return !matched
		}

		return matched
	case ram.OpContains, ram.OpNotContains:
		haystack := e.symbols.Resolve(left.Symbol())
		needle := e.symbols.Resolve(e.evalExpr(ctx, c.Right).Symbol())

		contains := strings.Contains(haystack, needle)
		if c.Op == ram.OpNotContains {
			return !contains
		}

		return contains
	default:
		panic(fmt.Sprintf("eval: unhandled constraint op %v", c.Op))
	}
}
