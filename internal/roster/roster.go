// Package roster reads and writes class roster CSV files.
//
// A roster is a header row followed by one row per student. The only column
// the grader requires is IDColumn; every other column is carried through to the
// output untouched and in its original order, with ScoreColumn appended when the
// input lacks it.
package roster

import (
	"errors"
	"fmt"
	"strings"
)

// Column names understood by the grader.
const (
	IDColumn    = "Student Num"
	NameColumn  = "Student Name"
	ScoreColumn = "Score"
)

var (
	// ErrInputNotFound is returned when the roster path does not exist.
	ErrInputNotFound = errors.New("input not found")
	// ErrEncoding is returned when the roster is not valid UTF-8.
	ErrEncoding = errors.New("roster is not valid UTF-8")
	// ErrSchema is wrapped by SchemaError.
	ErrSchema = errors.New("roster schema error")
)

// SchemaError reports a header that lacks a required column.
type SchemaError struct {
	Path   string
	Column string
	Found  []string
}

func (e *SchemaError) Error() string {
	return fmt.Sprintf("expected %q column in %s; found columns: [%s]", e.Column, e.Path, quoteAll(e.Found))
}

func (e *SchemaError) Unwrap() error { return ErrSchema }

func quoteAll(cols []string) string {
	q := make([]string, len(cols))
	for i, c := range cols {
		q[i] = fmt.Sprintf("%q", c)
	}
	return strings.Join(q, ", ")
}

// Record is one roster row keyed by column name. Column order lives on the
// owning Roster.
type Record struct {
	// Line is the 1-based line in the input file where the row starts.
	Line   int
	Fields map[string]string
}

// Get returns the raw value for col, or "" when absent.
func (r *Record) Get(col string) string { return r.Fields[col] }

// Set stores v under col.
func (r *Record) Set(col, v string) {
	if r.Fields == nil {
		r.Fields = map[string]string{}
	}
	r.Fields[col] = v
}

// ID returns the trimmed student identifier.
func (r *Record) ID() string { return strings.TrimSpace(r.Fields[IDColumn]) }

// Name returns the trimmed student name, which may be empty.
func (r *Record) Name() string { return strings.TrimSpace(r.Fields[NameColumn]) }

// DisplayName is the name, falling back to the identifier.
func (r *Record) DisplayName() string {
	if n := r.Name(); n != "" {
		return n
	}
	return r.ID()
}

// Roster is an ordered header plus ordered records.
type Roster struct {
	Path    string
	Header  []string
	Records []*Record
}

// Row returns the record's values in header order.
func (ro *Roster) Row(r *Record) []string {
	row := make([]string, len(ro.Header))
	for i, col := range ro.Header {
		row[i] = r.Fields[col]
	}
	return row
}
