// Package explain renders a human-readable derivation tree for one fact
// of a relation evaluated with provenance enabled (spec section C.2,
// supplemented feature). It is a thin consumer of the subproof /
// negation-subproof subroutines pkg/datalog/translate already generates
// (spec section 4.2, "Subroutines for provenance"): it calls them and
// walks the witness values they return, the same walk
// original_source/samples/path/driver_ncurses.cpp's explain() performs
// over labelToProof/info, adapted to read the witness values directly off
// a ReturnValue call instead of a label indirection table.
package explain

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/souffle-lang/souffle-sub001/pkg/datalog/ast"
	"github.com/souffle-lang/souffle-sub001/pkg/datalog/domain"
	"github.com/souffle-lang/souffle-sub001/pkg/datalog/eval"
	"github.com/souffle-lang/souffle-sub001/pkg/datalog/ram"
)

// DefaultDepth mirrors original_source's depthLimit default (souffleprof's
// "setdepth" command starts at 4).
const DefaultDepth = 4

// Tree is one node of a derivation: Rule is empty for a leaf (an
// extensional fact), and Children holds one entry per positive body atom
// of the rule that derived Label (spec section C.2).
type Tree struct {
	Label    string
	Rule     string
	Children []*Tree
}

// Explainer derives Tree values for facts of a program evaluated with
// provenance tracking on.
type Explainer struct {
	program *ast.Program
	ev      *eval.Evaluator
	symbols *domain.SymbolTable
}

// New constructs an Explainer. program supplies each relation's clause
// shapes (needed to chop a subproof's flat witness slice back into one
// group of values per body atom); ev is an Evaluator that has already run
// the provenance-variant program program translated to.
func New(program *ast.Program, ev *eval.Evaluator, symbols *domain.SymbolTable) *Explainer {
	return &Explainer{program: program, ev: ev, symbols: symbols}
}

// Explain walks the derivation of relation(args...) up to depth levels
// deep (spec section C.2). A relation with no defining clauses is
// extensional and always renders as a leaf, regardless of depth.
func (e *Explainer) Explain(relation string, args []domain.Value, depth int) (*Tree, error) {
	decl, ok := e.program.Relations[relation]
	if !ok {
		return nil, fmt.Errorf("explain: unknown relation %q", relation)
	}

	clauses := e.program.ClausesFor(relation)
	if len(clauses) == 0 {
		return &Tree{Label: formatFact(relation, args, decl.Ref)}, nil
	}

	if depth <= 0 {
		return &Tree{Label: fmt.Sprintf("subproof %s(%s)", relation, formatArgs(args))}, nil
	}

	witness, err := e.ev.RunSubroutine("subproof_"+relation, args)
	if err != nil {
		return nil, fmt.Errorf("explain: %s: %w", relation, err)
	}

	// Every clause's ReturnValue block is appended to the same
	// subroutine body (pkg/datalog/translate's buildProvenanceSubroutines
	// runs every alternative in one Sequence) and the search is not
	// restricted to args, so the leading witness-arity window holds the
	// first witness the subroutine produced. That window is always read
	// against clauses[0]'s shape, even when several clauses define the
	// relation.
	clause := clauses[0]

	width := len(clause.Head.Args)
	for _, lit := range clause.Body {
		if atom, ok := lit.(ast.Atom); ok {
			width += len(atom.Args)
		}
	}

	if width > len(witness) {
		return nil, fmt.Errorf("explain: %s: malformed witness (want >= %d values, got %d)", relation, width, len(witness))
	}

	node := &Tree{
		Label: formatFact(relation, args, decl.Ref),
		Rule:  "R0",
	}

	cursor := len(clause.Head.Args)

	for _, lit := range clause.Body {
		atom, ok := lit.(ast.Atom)
		if !ok {
			continue
		}

		childArgs := witness[cursor : cursor+len(atom.Args)]
		cursor += len(atom.Args)

		child, err := e.Explain(atom.Relation, childArgs, depth-1)
		if err != nil {
			return nil, err
		}

		node.Children = append(node.Children, child)
	}

	return node, nil
}

// formatFact renders only the application-visible columns of args,
// dropping any trailing <level, rule> provenance auxiliary values (spec
// section C.2; matches driver_ncurses.cpp's getRepresentation(), which
// only ever sees the apparent tuple, never the internal label).
func formatFact(relation string, args []domain.Value, ref ram.RelationRef) string {
	visible := args
	if ref.Arity > 0 && ref.Arity <= len(args) {
		visible = args[:ref.Arity]
	}

	return fmt.Sprintf("%s(%s)", relation, formatTypedArgs(visible, ref))
}

func formatTypedArgs(args []domain.Value, ref ram.RelationRef) string {
	parts := make([]string, len(args))

	for i, v := range args {
		colType := ram.TypeSigned
		if i < len(ref.ColumnTypes) {
			colType = ref.ColumnTypes[i]
		}

		switch colType {
		case ram.TypeUnsigned:
			parts[i] = strconv.FormatUint(v.Unsigned(), 10)
		case ram.TypeFloat:
			parts[i] = strconv.FormatFloat(v.Float(), 'g', -1, 64)
		default:
			parts[i] = strconv.FormatInt(v.Signed(), 10)
		}
	}

	return strings.Join(parts, ", ")
}

func formatArgs(args []domain.Value) string {
	parts := make([]string, len(args))
	for i, v := range args {
		parts[i] = strconv.FormatInt(v.Signed(), 10)
	}

	return strings.Join(parts, ", ")
}

// Render prints t as an indented derivation tree (spec section C.2),
// adapted from original_source's render_tree.h box layout into a plain
// indented listing suitable for a terminal or a log file.
func Render(t *Tree) string {
	var sb strings.Builder

	renderNode(&sb, t, "", true)

	return sb.String()
}

func renderNode(sb *strings.Builder, t *Tree, prefix string, last bool) {
	branch := "├── "
	if last {
		branch = "└── "
	}

	sb.WriteString(prefix)
	sb.WriteString(branch)
	sb.WriteString(t.Label)

	if t.Rule != "" {
		sb.WriteString(" (")
		sb.WriteString(t.Rule)
		sb.WriteString(")")
	}

	sb.WriteString("\n")

	childPrefix := prefix + "    "
	if !last {
		childPrefix = prefix + "│   "
	}

	for i, child := range t.Children {
		renderNode(sb, child, childPrefix, i == len(t.Children)-1)
	}
}
