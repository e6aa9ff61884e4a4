// Package export flattens input permutations into index-addressable records
// and writes them to sinks.
package export

//go:generate mockgen -source=export.go -destination=mocks/mocks.go -package=mocks Sink

import (
	"context"
	"encoding/json"
	"fmt"
	"io"

	"github.com/matthewbaird/permutations/internal/permutation"
)

// Arg is one field of a record. Value is a bool for Boolean fields, the
// chosen literal for Choice fields and nil otherwise.
type Arg struct {
	Name  string `json:"name"`
	Value any    `json:"value"`
}

// Record is the flat form of one input permutation.
type Record struct {
	Index int   `json:"index"`
	Args  []Arg `json:"args"`
}

// Sink receives the exported records of one run in a single write.
type Sink interface {
	Write(ctx context.Context, records []Record) error
}

// ExportError reports a failed serialization or write.
type ExportError struct {
	Op     string // "encode", "decode", "write", "open", "migrate", "insert", "commit"
	Target string // file path or database DSN
	Err    error
}

func (e *ExportError) Error() string {
	if e.Target == "" {
		return fmt.Sprintf("export %s: %v", e.Op, e.Err)
	}
	return fmt.Sprintf("export %s %s: %v", e.Op, e.Target, e.Err)
}

func (e *ExportError) Unwrap() error { return e.Err }

// Export converts input permutations to records, preserving order. Record
// indexes are the permutation positions.
func Export(inputs []permutation.InputPermutation) []Record {
	records := make([]Record, len(inputs))
	for i, in := range inputs {
		args := make([]Arg, len(in))
		for j, b := range in {
			args[j] = Arg{Name: b.Param.Name, Value: b.Value}
		}
		records[i] = Record{Index: i, Args: args}
	}
	return records
}

// WriteJSON encodes records as an indented JSON array.
func WriteJSON(w io.Writer, records []Record) error {
	if records == nil {
		records = []Record{}
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(records); err != nil {
		return &ExportError{Op: "encode", Err: err}
	}
	return nil
}

// ReadJSON decodes a JSON array written by WriteJSON.
func ReadJSON(r io.Reader) ([]Record, error) {
	var records []Record
	if err := json.NewDecoder(r).Decode(&records); err != nil {
		return nil, &ExportError{Op: "decode", Err: err}
	}
	return records, nil
}

// Index answers per-record queries over exported records.
type Index struct {
	records []Record
	pos     map[int]int
}

// NewIndex indexes records by their Index field.
func NewIndex(records []Record) *Index {
	x := &Index{records: records, pos: make(map[int]int, len(records))}
	for i, r := range records {
		x.pos[r.Index] = i
	}
	return x
}

// Len returns the number of records.
func (x *Index) Len() int {
	return len(x.records)
}

// InputsForIndex returns the args of record i.
func (x *Index) InputsForIndex(i int) ([]Arg, bool) {
	p, ok := x.pos[i]
	if !ok {
		return nil, false
	}
	return x.records[p].Args, true
}

// NamesForIndex returns the arg names of record i in order.
func (x *Index) NamesForIndex(i int) ([]string, bool) {
	args, ok := x.InputsForIndex(i)
	if !ok {
		return nil, false
	}
	names := make([]string, len(args))
	for j, a := range args {
		names[j] = a.Name
	}
	return names, true
}

// ValueOf returns the value bound to name in record i.
func (x *Index) ValueOf(i int, name string) (any, bool) {
	args, ok := x.InputsForIndex(i)
	if !ok {
		return nil, false
	}
	for _, a := range args {
		if a.Name == name {
			return a.Value, true
		}
	}
	return nil, false
}
