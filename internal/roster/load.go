package roster

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"slices"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

// Load reads the roster at path. It fails with ErrInputNotFound when the file
// is missing and with a *SchemaError when the header lacks IDColumn. The
// returned header always ends with ScoreColumn unless the input already had it.
func Load(path string) (*Roster, error) {
	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrInputNotFound, path)
		}
		return nil, fmt.Errorf("failed to open roster: %w", err)
	}
	defer f.Close()

	ro, err := Decode(f)
	if err != nil {
		var se *SchemaError
		if errors.As(err, &se) {
			se.Path = path
			return nil, se
		}
		return nil, fmt.Errorf("failed to read roster %s: %w", path, err)
	}
	ro.Path = path
	return ro, nil
}

// Decode parses a roster from r. A leading UTF-8 byte-order mark is dropped.
// Input that is not valid UTF-8 is rejected with ErrEncoding rather than
// having the offending bytes replaced.
func Decode(r io.Reader) (*Roster, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	if _, n, err := transform.Bytes(encoding.UTF8Validator, data); err != nil {
		return nil, fmt.Errorf("%w: invalid byte on line %d", ErrEncoding, 1+bytes.Count(data[:n], []byte("\n")))
	}
	utf8r := transform.NewReader(bytes.NewReader(data), unicode.BOMOverride(unicode.UTF8.NewDecoder()))
	cr := csv.NewReader(utf8r)
	cr.FieldsPerRecord = -1

	header, err := cr.Read()
	if errors.Is(err, io.EOF) {
		return nil, &SchemaError{Column: IDColumn}
	}
	if err != nil {
		return nil, err
	}
	if !slices.Contains(header, IDColumn) {
		return nil, &SchemaError{Column: IDColumn, Found: header}
	}

	ro := &Roster{Header: header}
	for {
		row, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, err
		}
		line, _ := cr.FieldPos(0)
		rec := &Record{Line: line, Fields: make(map[string]string, len(header)+1)}
		for i, col := range header {
			if i < len(row) {
				rec.Fields[col] = row[i]
			} else {
				rec.Fields[col] = ""
			}
		}
		ro.Records = append(ro.Records, rec)
	}

	if !slices.Contains(ro.Header, ScoreColumn) {
		ro.Header = append(ro.Header, ScoreColumn)
	}
	return ro, nil
}
