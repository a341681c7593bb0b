// Package io implements the reader/writer capability spec section 6
// describes: CSV-shaped fact files in and out of a relation, driven by a
// ram.IODirectives value. go-corset has no analogous facility (its IR
// never touches external storage), so this package is grounded directly
// on original_source/src/IOSystem.h's delimited-file reader/writer and
// built on the standard library's encoding/csv — DESIGN.md records this
// as one of the few components with no third-party library to ground on:
// every example repo that reads delimited files (hashicorp-nomad's CSV
// export, stretchr's test fixtures) does so with encoding/csv too.
package io

import (
	"encoding/csv"
	"errors"
	"fmt"
	stdio "io"
	"os"
	"path/filepath"
	"strconv"

	"github.com/souffle-lang/souffle-sub001/pkg/datalog/domain"
	"github.com/souffle-lang/souffle-sub001/pkg/datalog/ram"
)

// delimiterRune resolves an IODirectives.Delimiter string (e.g. "\t",
// ",") to the rune encoding/csv.Reader/Writer expects. An empty or
// multi-byte delimiter falls back to tab, matching original_source's
// default fact-file format.
func delimiterRune(d string) rune {
	if len(d) != 1 {
		return '\t'
	}

	return rune(d[0])
}

func resolvePath(dir string, directives ram.IODirectives) string {
	if filepath.IsAbs(directives.Filename) {
		return directives.Filename
	}

	return filepath.Join(dir, directives.Filename)
}

// Load reads ref's tuples from the source directives describes (spec
// section 6, "Reader capability"). Only the "file" IO kind is supported;
// any other directives.IO value is an error, since no example repo in
// the corpus models souffle-prog's "stdin"/"sqlite" input kinds.
func Load(dir string, directives ram.IODirectives, ref ram.RelationRef, symbols *domain.SymbolTable) ([]domain.Tuple, error) {
	if directives.IO != "" && directives.IO != "file" {
		return nil, fmt.Errorf("datalog/io: unsupported IO kind %q for relation %q", directives.IO, ref.Name)
	}

	path := resolvePath(dir, directives)

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("datalog/io: load %s: %w", ref.Name, err)
	}
	defer f.Close()

	reader := csv.NewReader(f)
	reader.Comma = delimiterRune(directives.Delimiter)
	reader.FieldsPerRecord = ref.TotalArity()
	reader.ReuseRecord = true

	if directives.Headers {
		if _, err := reader.Read(); err != nil {
			return nil, fmt.Errorf("datalog/io: load %s: reading header row: %w", ref.Name, err)
		}
	}

	var tuples []domain.Tuple

	for {
		row, err := reader.Read()
		if err != nil {
			if errors.Is(err, stdio.EOF) {
				break
			}

			return nil, fmt.Errorf("datalog/io: load %s: %w", ref.Name, err)
		}

		tuple, err := parseRow(row, ref, directives, symbols)
		if err != nil {
			return nil, fmt.Errorf("datalog/io: load %s: %w", ref.Name, err)
		}

		tuples = append(tuples, tuple)
	}

	return tuples, nil
}

// Store drains tuples to the sink directives describes (spec section 6,
// "Writer capability").
func Store(dir string, directives ram.IODirectives, ref ram.RelationRef, tuples []domain.Tuple, symbols *domain.SymbolTable) error {
	if directives.IO != "" && directives.IO != "file" {
		return fmt.Errorf("datalog/io: unsupported IO kind %q for relation %q", directives.IO, ref.Name)
	}

	path := resolvePath(dir, directives)

	if dirname := filepath.Dir(path); dirname != "." {
		if err := os.MkdirAll(dirname, 0o755); err != nil {
			return fmt.Errorf("datalog/io: store %s: %w", ref.Name, err)
		}
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("datalog/io: store %s: %w", ref.Name, err)
	}
	defer f.Close()

	writer := csv.NewWriter(f)
	writer.Comma = delimiterRune(directives.Delimiter)

	if directives.Headers && len(directives.AttrNames) > 0 {
		if err := writer.Write(directives.AttrNames); err != nil {
			return fmt.Errorf("datalog/io: store %s: writing header row: %w", ref.Name, err)
		}
	}

	for _, tuple := range tuples {
		row, err := formatRow(tuple, ref, directives, symbols)
		if err != nil {
			return fmt.Errorf("datalog/io: store %s: %w", ref.Name, err)
		}

		if err := writer.Write(row); err != nil {
			return fmt.Errorf("datalog/io: store %s: %w", ref.Name, err)
		}
	}

	writer.Flush()

	return writer.Error()
}

func parseRow(row []string, ref ram.RelationRef, directives ram.IODirectives, symbols *domain.SymbolTable) (domain.Tuple, error) {
	tuple := make(domain.Tuple, len(row))

	for i, field := range row {
		if isSymbolColumn(i, ref, directives) {
			tuple[i] = domain.ValueOfSymbol(symbols.Lookup(field))
			continue
		}

		colType := ram.TypeSigned
		if i < len(ref.ColumnTypes) {
			colType = ref.ColumnTypes[i]
		}

		switch colType {
		case ram.TypeUnsigned:
			u, err := strconv.ParseUint(field, 10, 64)
			if err != nil {
				return nil, fmt.Errorf("column %d: %w", i, err)
			}

			tuple[i] = domain.ValueOfUnsigned(u)
		case ram.TypeFloat:
			v, err := strconv.ParseFloat(field, 64)
			if err != nil {
				return nil, fmt.Errorf("column %d: %w", i, err)
			}

			tuple[i] = domain.ValueOfFloat(v)
		default:
			n, err := strconv.ParseInt(field, 10, 64)
			if err != nil {
				return nil, fmt.Errorf("column %d: %w", i, err)
			}

			tuple[i] = domain.ValueOfSigned(n)
		}
	}

	return tuple, nil
}

func formatRow(tuple domain.Tuple, ref ram.RelationRef, directives ram.IODirectives, symbols *domain.SymbolTable) ([]string, error) {
	row := make([]string, len(tuple))

	for i, v := range tuple {
		if isSymbolColumn(i, ref, directives) {
			row[i] = symbols.Resolve(v.Symbol())
			continue
		}

		colType := ram.TypeSigned
		if i < len(ref.ColumnTypes) {
			colType = ref.ColumnTypes[i]
		}

		switch colType {
		case ram.TypeUnsigned:
			row[i] = strconv.FormatUint(v.Unsigned(), 10)
		case ram.TypeFloat:
			row[i] = strconv.FormatFloat(v.Float(), 'g', -1, 64)
		default:
			row[i] = strconv.FormatInt(v.Signed(), 10)
		}
	}

	return row, nil
}

func isSymbolColumn(col int, ref ram.RelationRef, directives ram.IODirectives) bool {
	if col < len(directives.SymbolMask) {
		return directives.SymbolMask[col]
	}

	return col < len(ref.ColumnTypes) && ref.ColumnTypes[col] == ram.TypeSymbol
}
