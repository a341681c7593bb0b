package cmd

import (
	"encoding/gob"
	"fmt"
	"os"

	"github.com/souffle-lang/souffle-sub001/pkg/datalog/ast"
	"github.com/souffle-lang/souffle-sub001/pkg/datalog/ram"
)

// IR-A and IR-R are both closed sets of concrete types behind interfaces
// (ast.Argument/Literal, ram.Stmt/Op/Cond/Expr); encoding/gob needs every
// concrete type backing an interface value registered once before it can
// encode or decode one, mirroring go-corset's pkg/binfile, which
// gob-encodes its compiled binary package the same way; the gob-encoded
// binary package is the artifact passed from `souffle compile` to
// `souffle run`.
func init() {
	gob.Register(ast.Variable{})
	gob.Register(ast.Constant{})
	gob.Register(ast.Functor{})
	gob.Register(ast.RecordConstructor{})
	gob.Register(ast.Aggregator{})
	gob.Register(ast.SubroutineArg{})
	gob.Register(ast.Wildcard{})
	gob.Register(ast.Atom{})
	gob.Register(ast.NegatedAtom{})
	gob.Register(ast.Constraint{})

	gob.Register(ram.Sequence{})
	gob.Register(ram.Parallel{})
	gob.Register(ram.Loop{})
	gob.Register(ram.Exit{})
	gob.Register(ram.Query{})
	gob.Register(ram.Merge{})
	gob.Register(ram.Swap{})
	gob.Register(ram.Clear{})
	gob.Register(ram.Create{})
	gob.Register(ram.Drop{})
	gob.Register(ram.Load{})
	gob.Register(ram.Store{})
	gob.Register(ram.LogSize{})
	gob.Register(ram.LogTimer{})
	gob.Register(ram.DebugInfo{})
	gob.Register(ram.Call{})

	gob.Register(ram.Scan{})
	gob.Register(ram.IndexScan{})
	gob.Register(ram.Choice{})
	gob.Register(ram.IndexChoice{})
	gob.Register(ram.UnpackRecord{})
	gob.Register(ram.Aggregate{})
	gob.Register(ram.Filter{})
	gob.Register(ram.Break{})
	gob.Register(ram.Project{})
	gob.Register(ram.ReturnValue{})

	gob.Register(ram.True{})
	gob.Register(ram.Emptiness{})
	gob.Register(ram.Existence{})
	gob.Register(ram.ProvenanceExistence{})
	gob.Register(ram.Conjunction{})
	gob.Register(ram.Negation{})
	gob.Register(ram.Constraint{})

	gob.Register(ram.Constant{})
	gob.Register(ram.ElementAccess{})
	gob.Register(ram.Intrinsic{})
	gob.Register(ram.UserFunctor{})
	gob.Register(ram.PackRecord{})
}

// ReadASTProgram decodes the gob-encoded IR-A program at path (the format
// `souffle compile` consumes; spec section 1, "IR-A arrives fully
// formed").
func ReadASTProgram(path string) (*ast.Program, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("cmd: read program %s: %w", path, err)
	}
	defer f.Close()

	var program ast.Program

	if err := gob.NewDecoder(f).Decode(&program); err != nil {
		return nil, fmt.Errorf("cmd: decode program %s: %w", path, err)
	}

	return &program, nil
}

// WriteRAMProgram gob-encodes a translated program to path (the binary
// package `souffle compile` produces and `souffle run` consumes).
func WriteRAMProgram(path string, program *ram.Program) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("cmd: write program %s: %w", path, err)
	}
	defer f.Close()

	if err := gob.NewEncoder(f).Encode(program); err != nil {
		return fmt.Errorf("cmd: encode program %s: %w", path, err)
	}

	return nil
}

// ReadRAMProgram decodes a binary package written by WriteRAMProgram.
func ReadRAMProgram(path string) (*ram.Program, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("cmd: read binary package %s: %w", path, err)
	}
	defer f.Close()

	program := ram.NewProgram()

	if err := gob.NewDecoder(f).Decode(program); err != nil {
		return nil, fmt.Errorf("cmd: decode binary package %s: %w", path, err)
	}

	return program, nil
}
