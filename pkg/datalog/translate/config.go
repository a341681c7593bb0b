// Package translate lowers IR-A (pkg/datalog/ast) into IR-R (pkg/datalog/ram):
// the clause translator (spec section 4.1) and the program translator
// (spec section 4.2), generalizing go-corset's `pkg/ir/mir/lower.go` /
// `pkg/ir/hir/lower.go` lowering-pass shape — a stateful builder struct
// that walks a source IR and accumulates a target IR — from "MIR
// statement -> AIR statement" to "IR-A clause -> IR-R query". Semi-naive
// recursive-SCC generation is additionally grounded on
// original_source/src/AstTranslator.cpp.
package translate

import "github.com/sirupsen/logrus"

// ProvenanceMode selects how much provenance bookkeeping the translator
// emits (spec section 6, "Configuration": "provenance in {off, naive,
// subtreeHeights}").
type ProvenanceMode uint8

const (
	ProvenanceOff ProvenanceMode = iota
	ProvenanceNaive
	ProvenanceSubtreeHeights
)

// CompilationConfig carries the translator options spec section 6
// recognizes, populated from cobra flags by pkg/cmd (SPEC_FULL.md section
// A, "Configuration").
type CompilationConfig struct {
	Provenance ProvenanceMode
	// SynthesizeWitnesses relaxes the groundedness invariant (spec
	// section 3, "Clause (IR-A)": "unless the translator has been
	// instructed to synthesise witnesses").
	SynthesizeWitnesses bool
	// Logger receives translator diagnostics (SCC scheduling decisions,
	// per-relation index orders chosen). Every diagnostic the translator,
	// index analysis and evaluator packages emit goes through logrus
	// rather than fmt/log, matching go-corset's pkg/util/perfstats.go
	// logging convention. A nil Logger defaults to logrus's standard
	// logger.
	Logger *logrus.Logger
}

func (c CompilationConfig) logger() *logrus.Entry {
	l := c.Logger
	if l == nil {
		l = logrus.StandardLogger()
	}

	return l.WithField("component", "translate")
}
