package store

import (
	"context"
	"io"
	"os"
	"path"
	"path/filepath"
	"strings"

	kerrors "github.com/matzehuels/kintree/pkg/errors"
)

// DefaultUploadsPrefix is the URL path uploaded avatars are served under.
const DefaultUploadsPrefix = "/uploads"

// MaxAvatarSize bounds a single uploaded image.
const MaxAvatarSize = 8 << 20

// AvatarStore writes uploaded avatar images to a directory.
type AvatarStore struct {
	dir    string
	prefix string
}

// NewAvatarStore creates the uploads directory if needed. An empty prefix
// means DefaultUploadsPrefix.
func NewAvatarStore(dir, prefix string) (*AvatarStore, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, kerrors.Wrap(kerrors.ErrCodeInternal, err, "create uploads dir")
	}
	if prefix == "" {
		prefix = DefaultUploadsPrefix
	}
	return &AvatarStore{dir: dir, prefix: "/" + strings.Trim(prefix, "/")}, nil
}

// Dir returns the uploads directory.
func (s *AvatarStore) Dir() string { return s.dir }

// Save stores r as "<personID><ext>", where ext is the lowercased extension
// of the client file name, replacing any earlier upload with that name. It
// returns the URL path of the stored file.
func (s *AvatarStore) Save(ctx context.Context, personID, filename string, r io.Reader) (string, error) {
	if err := kerrors.ValidatePersonID(personID); err != nil {
		return "", err
	}
	if err := kerrors.ValidateUploadFilename(filename); err != nil {
		return "", err
	}
	name := personID + strings.ToLower(filepath.Ext(filename))

	tmp, err := os.CreateTemp(s.dir, ".upload-*")
	if err != nil {
		return "", kerrors.Wrap(kerrors.ErrCodeInternal, err, "create temp file")
	}
	defer os.Remove(tmp.Name())

	n, err := io.Copy(tmp, io.LimitReader(r, MaxAvatarSize+1))
	if cerr := tmp.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		return "", kerrors.Wrap(kerrors.ErrCodeInternal, err, "write avatar")
	}
	if n > MaxAvatarSize {
		return "", kerrors.New(kerrors.ErrCodeInvalidInput, "avatar larger than %d bytes", MaxAvatarSize)
	}
	if err := os.Rename(tmp.Name(), filepath.Join(s.dir, name)); err != nil {
		return "", kerrors.Wrap(kerrors.ErrCodeInternal, err, "store avatar")
	}
	return path.Join(s.prefix, name), nil
}
