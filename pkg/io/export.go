package io

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/matzehuels/kintree/pkg/persona"
)

// CSVHeader is the column order written by [WriteCSV].
var CSVHeader = []string{"id", "nombre", "fecha_nacimiento", "genero", "padres"}

// WriteJSON writes people as an indented JSON list. HTML characters and
// non-ASCII text are written unescaped.
func WriteJSON(people []persona.Person, w io.Writer) error {
	if people == nil {
		people = []persona.Person{}
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	if err := enc.Encode(people); err != nil {
		return fmt.Errorf("encode: %w", err)
	}
	return nil
}

// WriteCSV writes people with a header row. Every field is quoted, embedded
// quotes are doubled, parent ids are joined by ";" and lines are separated
// by "\n" with no trailing newline.
func WriteCSV(people []persona.Person, w io.Writer) error {
	lines := make([]string, 0, len(people)+1)
	lines = append(lines, strings.Join(CSVHeader, ","))
	for _, p := range people {
		fields := []string{p.ID, p.Name, p.BirthDate, p.Gender, persona.JoinParents(p.Parents)}
		for i, f := range fields {
			fields[i] = quote(f)
		}
		lines = append(lines, strings.Join(fields, ","))
	}
	if _, err := io.WriteString(w, strings.Join(lines, "\n")); err != nil {
		return fmt.Errorf("write csv: %w", err)
	}
	return nil
}

// MarshalJSON returns the [WriteJSON] encoding of people.
func MarshalJSON(people []persona.Person) ([]byte, error) {
	var buf bytes.Buffer
	if err := WriteJSON(people, &buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// MarshalCSV returns the [WriteCSV] encoding of people.
func MarshalCSV(people []persona.Person) ([]byte, error) {
	var buf bytes.Buffer
	if err := WriteCSV(people, &buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// ExportFile writes people to path, as CSV when the extension is .csv and
// as JSON otherwise.
func ExportFile(people []persona.Person, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	defer f.Close()
	if strings.EqualFold(filepath.Ext(path), ExtCSV) {
		return WriteCSV(people, f)
	}
	return WriteJSON(people, f)
}

func quote(s string) string {
	return `"` + strings.ReplaceAll(s, `"`, `""`) + `"`
}
