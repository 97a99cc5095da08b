package store

import (
	"bytes"
	"context"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"sync"

	"github.com/google/uuid"

	kerrors "github.com/matzehuels/kintree/pkg/errors"
	kio "github.com/matzehuels/kintree/pkg/io"
	"github.com/matzehuels/kintree/pkg/persona"
)

// PersonasFile is the name of the file a FileStore writes.
const PersonasFile = "personas.json"

// FileStore keeps the latest person list as pretty-printed JSON in a data
// directory. Each save replaces the previous one.
type FileStore struct {
	mu   sync.RWMutex
	path string
}

// NewFileStore creates the data directory if needed.
func NewFileStore(dataDir string) (*FileStore, error) {
	if err := os.MkdirAll(dataDir, 0755); err != nil {
		return nil, kerrors.Wrap(kerrors.ErrCodeInternal, err, "create data dir")
	}
	return &FileStore{path: filepath.Join(dataDir, PersonasFile)}, nil
}

// Path returns the file the store writes.
func (s *FileStore) Path() string { return s.path }

// Save writes people to personas.json. The snapshot id is derived from the
// file contents, so Latest reports the same id for the same data.
func (s *FileStore) Save(ctx context.Context, people []persona.Person) (Snapshot, error) {
	data, err := kio.MarshalJSON(people)
	if err != nil {
		return Snapshot{}, kerrors.Wrap(kerrors.ErrCodeInternal, err, "encode personas")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0644); err != nil {
		return Snapshot{}, kerrors.Wrap(kerrors.ErrCodeInternal, err, "write %s", tmp)
	}
	if err := os.Rename(tmp, s.path); err != nil {
		os.Remove(tmp)
		return Snapshot{}, kerrors.Wrap(kerrors.ErrCodeInternal, err, "replace %s", s.path)
	}
	info, err := os.Stat(s.path)
	if err != nil {
		return Snapshot{}, kerrors.Wrap(kerrors.ErrCodeInternal, err, "stat %s", s.path)
	}

	return Snapshot{
		ID:        contentID(data),
		People:    people,
		CreatedAt: info.ModTime().UTC(),
		Location:  s.path,
	}, nil
}

// Latest reads personas.json back.
func (s *FileStore) Latest(ctx context.Context) (Snapshot, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	data, err := os.ReadFile(s.path)
	if errors.Is(err, fs.ErrNotExist) {
		return Snapshot{}, kerrors.New(kerrors.ErrCodeNotFound, "no saved personas in %s", filepath.Dir(s.path))
	}
	if err != nil {
		return Snapshot{}, kerrors.Wrap(kerrors.ErrCodeInternal, err, "read %s", s.path)
	}
	people, err := kio.ReadJSON(bytes.NewReader(data))
	if err != nil {
		return Snapshot{}, err
	}
	info, err := os.Stat(s.path)
	if err != nil {
		return Snapshot{}, kerrors.Wrap(kerrors.ErrCodeInternal, err, "stat %s", s.path)
	}

	return Snapshot{
		ID:        contentID(data),
		People:    people,
		CreatedAt: info.ModTime().UTC(),
		Location:  s.path,
	}, nil
}

// Close does nothing for file store.
func (s *FileStore) Close(context.Context) error { return nil }

func contentID(data []byte) string {
	return uuid.NewSHA1(uuid.NameSpaceOID, data).String()
}

var _ Store = (*FileStore)(nil)
