package io

import (
	"bytes"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/xuri/excelize/v2"

	kerrors "github.com/matzehuels/kintree/pkg/errors"
	"github.com/matzehuels/kintree/pkg/persona"
)

func TestReadPersonasJSON(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  []persona.Person
	}{
		{
			name:  "list",
			input: `[{"id":"1","nombre":"Ana","padres":[]},{"id":"2","nombre":"Luis","padres":["1"]}]`,
			want: []persona.Person{
				{ID: "1", Name: "Ana", Parents: []string{}},
				{ID: "2", Name: "Luis", Parents: []string{"1"}},
			},
		},
		{
			name:  "personas object",
			input: `{"personas":[{"ID":10,"name":"Eve","parents":"3;4"}]}`,
			want:  []persona.Person{{ID: "10", Name: "Eve", Parents: []string{"3", "4"}}},
		},
		{
			name:  "missing id falls back to position",
			input: `[{"nombre":"a"},{"nombre":"b"}]`,
			want: []persona.Person{
				{ID: "0", Name: "a", Parents: []string{}},
				{ID: "1", Name: "b", Parents: []string{}},
			},
		},
		{
			name:  "large numeric id",
			input: `[{"id":12345678901234567890}]`,
			want:  []persona.Person{{ID: "12345678901234567890", Parents: []string{}}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ReadPersonas("data.JSON", strings.NewReader(tt.input))
			if err != nil {
				t.Fatalf("ReadPersonas: %v", err)
			}
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestReadPersonasErrors(t *testing.T) {
	tests := []struct {
		name  string
		file  string
		input string
		code  kerrors.Code
	}{
		{"unsupported extension", "data.txt", "x", kerrors.ErrCodeUnsupported},
		{"legacy excel", "data.xls", "x", kerrors.ErrCodeUnsupported},
		{"bad json", "data.json", "{", kerrors.ErrCodeInvalidFormat},
		{"object without personas", "data.json", `{"people":[]}`, kerrors.ErrCodeInvalidFormat},
		{"scalar json", "data.json", `42`, kerrors.ErrCodeInvalidFormat},
		{"non-object record", "data.json", `["a"]`, kerrors.ErrCodeInvalidFormat},
		{"bad csv", "data.csv", "id,nombre\n\"1,Ana\n", kerrors.ErrCodeInvalidFormat},
		{"bad xlsx", "data.xlsx", "not a zip", kerrors.ErrCodeInvalidFormat},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ReadPersonas(tt.file, strings.NewReader(tt.input))
			if !kerrors.Is(err, tt.code) {
				t.Errorf("err = %v, want code %s", err, tt.code)
			}
		})
	}
}

func TestReadPersonasLegacyExcelHint(t *testing.T) {
	_, err := ReadPersonas("Familia.XLS", strings.NewReader("x"))
	if msg := kerrors.UserMessage(err); !strings.Contains(msg, ".xlsx") {
		t.Errorf("message should suggest .xlsx, got %q", msg)
	}
}

func TestReadCSV(t *testing.T) {
	input := "\ufeffid,nombre,fecha_nacimiento,genero,padres\n" +
		"1,Ana,1950-01-01,F,\n" +
		",,,,\n" +
		"2,Luis,,M,1\n" +
		"3,Eva,,F,\"1; 2\"\n"

	got, err := ReadPersonas("familia.csv", strings.NewReader(input))
	if err != nil {
		t.Fatal(err)
	}
	want := []persona.Person{
		{ID: "1", Name: "Ana", BirthDate: "1950-01-01", Gender: "F", Parents: []string{}},
		{ID: "2", Name: "Luis", Gender: "M", Parents: []string{"1"}},
		{ID: "3", Name: "Eva", Gender: "F", Parents: []string{"1", "2"}},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("mismatch (-want +got):\n%s", diff)
	}
}

func TestReadXLSX(t *testing.T) {
	f := excelize.NewFile()
	rows := [][]any{
		{"identificador", "name", "dob", "sex", "parents"},
		{"a", "Abuelo", "1930-05-05", "m", ""},
		{"b", "Padre", "", "m", "a"},
		{"", "Sin id", "", "", "a;b"},
	}
	for i, row := range rows {
		cell, _ := excelize.CoordinatesToCellName(1, i+1)
		if err := f.SetSheetRow("Sheet1", cell, &row); err != nil {
			t.Fatal(err)
		}
	}
	buf, err := f.WriteToBuffer()
	if err != nil {
		t.Fatal(err)
	}

	got, err := ReadPersonas("familia.xlsx", buf)
	if err != nil {
		t.Fatal(err)
	}
	want := []persona.Person{
		{ID: "a", Name: "Abuelo", BirthDate: "1930-05-05", Gender: "m", Parents: []string{}},
		{ID: "b", Name: "Padre", Gender: "m", Parents: []string{"a"}},
		{ID: "2", Name: "Sin id", Parents: []string{"a", "b"}},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("mismatch (-want +got):\n%s", diff)
	}
}

func TestWriteCSV(t *testing.T) {
	people := []persona.Person{
		{ID: "1", Name: `Ana "la grande"`, BirthDate: "1950-01-01", Gender: "F"},
		{ID: "2", Name: "Luis", Parents: []string{"1", "3"}},
	}
	var buf bytes.Buffer
	if err := WriteCSV(people, &buf); err != nil {
		t.Fatal(err)
	}
	want := "id,nombre,fecha_nacimiento,genero,padres\n" +
		`"1","Ana ""la grande""","1950-01-01","F",""` + "\n" +
		`"2","Luis","","","1;3"`
	if got := buf.String(); got != want {
		t.Errorf("WriteCSV =\n%s\nwant\n%s", got, want)
	}
}

func TestWriteJSON(t *testing.T) {
	people := []persona.Person{{ID: "1", Name: "José <Pepe>", Parents: []string{}}}
	data, err := MarshalJSON(people)
	if err != nil {
		t.Fatal(err)
	}
	want := "[\n  {\n    \"id\": \"1\",\n    \"nombre\": \"José <Pepe>\",\n    \"padres\": []\n  }\n]\n"
	if string(data) != want {
		t.Errorf("WriteJSON =\n%s\nwant\n%s", data, want)
	}

	data, _ = MarshalJSON(nil)
	if string(data) != "[]\n" {
		t.Errorf("nil list encodes as %q", data)
	}
}

func TestExportImportRoundTrip(t *testing.T) {
	people := []persona.Person{
		{ID: "1", Name: "Ana", BirthDate: "1950-01-01", Gender: "F", Parents: []string{}},
		{ID: "2", Name: "Luis, hijo", Gender: "M", Parents: []string{"1"}},
	}
	dir := t.TempDir()
	for _, name := range []string{"out.json", "out.csv"} {
		path := filepath.Join(dir, name)
		if err := ExportFile(people, path); err != nil {
			t.Fatal(err)
		}
		got, err := ImportFile(path)
		if err != nil {
			t.Fatal(err)
		}
		if diff := cmp.Diff(people, got); diff != "" {
			t.Errorf("%s round trip mismatch (-want +got):\n%s", name, diff)
		}
	}
}
