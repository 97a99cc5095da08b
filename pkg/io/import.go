package io

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/xuri/excelize/v2"

	kerrors "github.com/matzehuels/kintree/pkg/errors"
	"github.com/matzehuels/kintree/pkg/persona"
)

// Supported upload extensions.
const (
	ExtJSON = ".json"
	ExtCSV  = ".csv"
	ExtXLSX = ".xlsx"

	// extXLS is the legacy binary workbook, which excelize cannot open.
	extXLS = ".xls"
)

// ReadPersonas decodes a person list from r, choosing the format from the
// extension of name. Records are converted with [persona.FromRecord]; a
// record without an id gets its zero-based position.
func ReadPersonas(name string, r io.Reader) ([]persona.Person, error) {
	switch ext := strings.ToLower(filepath.Ext(name)); ext {
	case ExtJSON:
		return ReadJSON(r)
	case ExtCSV:
		return ReadCSV(r)
	case ExtXLSX:
		return ReadXLSX(r)
	case extXLS:
		return nil, kerrors.New(kerrors.ErrCodeUnsupported, "legacy .xls workbooks are not supported, save the sheet as .xlsx or .csv")
	default:
		return nil, kerrors.New(kerrors.ErrCodeUnsupported, "unsupported file format %q", ext)
	}
}

// ImportFile reads a person list from the file at path.
func ImportFile(path string) ([]persona.Person, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()
	return ReadPersonas(path, f)
}

// ReadJSON decodes either a JSON list of records or an object holding the
// list under "personas".
func ReadJSON(r io.Reader) ([]persona.Person, error) {
	dec := json.NewDecoder(r)
	dec.UseNumber()

	var raw any
	if err := dec.Decode(&raw); err != nil {
		return nil, kerrors.Wrap(kerrors.ErrCodeInvalidFormat, err, "decode json")
	}

	var items []any
	switch v := raw.(type) {
	case []any:
		items = v
	case map[string]any:
		list, ok := v["personas"].([]any)
		if !ok {
			return nil, kerrors.New(kerrors.ErrCodeInvalidFormat, "json object has no \"personas\" list")
		}
		items = list
	default:
		return nil, kerrors.New(kerrors.ErrCodeInvalidFormat, "expected a json list or object, got %T", raw)
	}

	people := make([]persona.Person, 0, len(items))
	for i, item := range items {
		rec, ok := item.(map[string]any)
		if !ok {
			return nil, kerrors.New(kerrors.ErrCodeInvalidFormat, "record %d is not an object", i)
		}
		people = append(people, persona.FromRecord(rec, i))
	}
	return people, nil
}

// ReadCSV decodes a CSV file with a header row. A leading UTF-8 byte order
// mark, as written by spreadsheet tools, is ignored.
func ReadCSV(r io.Reader) ([]persona.Person, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read csv: %w", err)
	}
	data = bytes.TrimPrefix(data, []byte("\ufeff"))

	cr := csv.NewReader(bytes.NewReader(data))
	cr.FieldsPerRecord = -1
	rows, err := cr.ReadAll()
	if err != nil {
		return nil, kerrors.Wrap(kerrors.ErrCodeInvalidFormat, err, "decode csv")
	}
	return fromRows(rows), nil
}

// ReadXLSX decodes the first sheet of an Excel workbook. The first row holds
// the column names.
func ReadXLSX(r io.Reader) ([]persona.Person, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, kerrors.Wrap(kerrors.ErrCodeInvalidFormat, err, "open xlsx")
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return []persona.Person{}, nil
	}
	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, kerrors.Wrap(kerrors.ErrCodeInvalidFormat, err, "read sheet %s", sheets[0])
	}
	return fromRows(rows), nil
}

// fromRows maps tabular data with a header row to people. Blank rows are
// skipped but still count towards the positional id fallback, as in the
// spreadsheet the user sees.
func fromRows(rows [][]string) []persona.Person {
	people := []persona.Person{}
	if len(rows) == 0 {
		return people
	}
	header := make([]string, len(rows[0]))
	for i, h := range rows[0] {
		header[i] = strings.TrimSpace(h)
	}

	for i, row := range rows[1:] {
		if isBlank(row) {
			continue
		}
		rec := make(map[string]any, len(header))
		for j, col := range header {
			if col == "" || j >= len(row) {
				continue
			}
			rec[col] = row[j]
		}
		people = append(people, persona.FromRecord(rec, i))
	}
	return people
}

func isBlank(row []string) bool {
	for _, cell := range row {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}
