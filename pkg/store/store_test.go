package store

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	kerrors "github.com/matzehuels/kintree/pkg/errors"
	"github.com/matzehuels/kintree/pkg/persona"
)

func TestFileStoreSaveLatest(t *testing.T) {
	ctx := context.Background()
	dir := filepath.Join(t.TempDir(), "data")
	s, err := NewFileStore(dir)
	if err != nil {
		t.Fatal(err)
	}

	if _, err := s.Latest(ctx); !kerrors.Is(err, kerrors.ErrCodeNotFound) {
		t.Fatalf("Latest on empty store: %v", err)
	}

	people := []persona.Person{
		{ID: "1", Name: "José Ñúñez", Parents: []string{}},
		{ID: "2", Name: "Ana", Gender: "F", Parents: []string{"1"}, Avatar: "/uploads/2.png"},
	}
	snap, err := s.Save(ctx, people)
	if err != nil {
		t.Fatal(err)
	}
	if snap.Location != filepath.Join(dir, PersonasFile) {
		t.Errorf("Location = %q", snap.Location)
	}
	if snap.ID == "" {
		t.Error("snapshot id missing")
	}

	data, err := os.ReadFile(s.Path())
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(data), "José Ñúñez") {
		t.Error("non-ASCII text should be written as-is")
	}
	if !strings.Contains(string(data), "\n  {\n    \"id\": \"1\"") {
		t.Errorf("expected 2-space indentation:\n%s", data)
	}

	got, err := s.Latest(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff(people, got.People); diff != "" {
		t.Errorf("Latest mismatch (-want +got):\n%s", diff)
	}
	if got.ID != snap.ID {
		t.Errorf("Latest id = %q, Save id = %q", got.ID, snap.ID)
	}
}

func TestFileStoreOverwrites(t *testing.T) {
	ctx := context.Background()
	s, _ := NewFileStore(t.TempDir())

	first, _ := s.Save(ctx, []persona.Person{{ID: "a", Parents: []string{}}})
	second, _ := s.Save(ctx, []persona.Person{{ID: "b", Parents: []string{}}})
	if first.ID == second.ID {
		t.Error("different contents should give different ids")
	}

	got, err := s.Latest(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if len(got.People) != 1 || got.People[0].ID != "b" {
		t.Errorf("Latest = %+v", got.People)
	}
}

func TestMongoStoreRequiresURI(t *testing.T) {
	_, err := NewMongoStore(context.Background(), MongoOptions{})
	if !kerrors.Is(err, kerrors.ErrCodeInvalidInput) {
		t.Errorf("err = %v", err)
	}
}

func TestWithParents(t *testing.T) {
	in := []persona.Person{{ID: "a"}, {ID: "b", Parents: []string{"a"}}}
	out := withParents(in)
	if out[0].Parents == nil {
		t.Error("nil parents not replaced")
	}
	out[1].Parents[0] = "x"
	if in[1].Parents[0] != "a" {
		t.Error("withParents must not share slices")
	}
}

func TestAvatarStoreSave(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	s, err := NewAvatarStore(dir, "")
	if err != nil {
		t.Fatal(err)
	}

	url, err := s.Save(ctx, "42", "Foto.PNG", strings.NewReader("png-bytes"))
	if err != nil {
		t.Fatal(err)
	}
	if url != "/uploads/42.png" {
		t.Errorf("url = %q", url)
	}
	data, err := os.ReadFile(filepath.Join(dir, "42.png"))
	if err != nil || string(data) != "png-bytes" {
		t.Errorf("stored %q, %v", data, err)
	}

	if _, err := s.Save(ctx, "42", "b.png", strings.NewReader("new")); err != nil {
		t.Fatal(err)
	}
	data, _ = os.ReadFile(filepath.Join(dir, "42.png"))
	if string(data) != "new" {
		t.Error("re-upload should replace the file")
	}
}

func TestAvatarStoreRejects(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	s, _ := NewAvatarStore(dir, "/static/avatars/")

	tests := []struct {
		name     string
		id, file string
		code     kerrors.Code
	}{
		{"traversal", "../x", "a.png", kerrors.ErrCodeInvalidPersonID},
		{"empty id", " ", "a.png", kerrors.ErrCodeInvalidPersonID},
		{"no extension", "1", "avatar", kerrors.ErrCodeInvalidFilename},
		{"not an image", "1", "run.sh", kerrors.ErrCodeInvalidFilename},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := s.Save(ctx, tt.id, tt.file, strings.NewReader("x"))
			if !kerrors.Is(err, tt.code) {
				t.Errorf("err = %v, want code %s", err, tt.code)
			}
		})
	}

	url, err := s.Save(ctx, "7", "a.jpg", strings.NewReader("x"))
	if err != nil || url != "/static/avatars/7.jpg" {
		t.Errorf("custom prefix: %q, %v", url, err)
	}

	entries, _ := os.ReadDir(dir)
	for _, e := range entries {
		if strings.HasPrefix(e.Name(), ".upload-") {
			t.Errorf("temp file left behind: %s", e.Name())
		}
	}
}
