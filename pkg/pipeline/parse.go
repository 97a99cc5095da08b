package pipeline

import (
	"io"
	"os"
	"path/filepath"

	kerrors "github.com/matzehuels/kintree/pkg/errors"
	kio "github.com/matzehuels/kintree/pkg/io"
	"github.com/matzehuels/kintree/pkg/persona"
	"github.com/matzehuels/kintree/pkg/validate"
)

// Parse reads an uploaded person file, choosing the decoder by the
// extension of name, then normalizes and validates the records.
func Parse(name string, r io.Reader) (validate.Report, error) {
	people, err := kio.ReadPersonas(name, r)
	if err != nil {
		return validate.Report{}, err
	}
	return Validate(people), nil
}

// ParseFile is Parse for a file on disk.
func ParseFile(path string) (validate.Report, error) {
	f, err := os.Open(path)
	if err != nil {
		return validate.Report{}, kerrors.Wrap(kerrors.ErrCodeNotFound, err, "open %s", filepath.Base(path))
	}
	defer f.Close()
	return Parse(path, f)
}

// Validate normalizes hand-edited records and validates them.
func Validate(people []persona.Person) validate.Report {
	norm := make([]persona.Person, len(people))
	for i, p := range people {
		norm[i] = persona.Normalize(p)
	}
	return validate.Run(norm)
}
