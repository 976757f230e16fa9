package source

import (
	"context"
	"os"
	"path/filepath"

	crmerrors "github.com/matzehuels/crmmap/pkg/errors"
	"github.com/matzehuels/crmmap/pkg/hierarchy"
)

// FileSource reads snapshots from JSON or TOML files.
//
// If Path is a directory, company X is read from X.json or X.toml inside it.
// If Path is a file, it holds a single company; an empty companyID loads it
// and any other id must match the company in the file.
type FileSource struct {
	Path string
}

// NewFileSource returns a FileSource rooted at path.
func NewFileSource(path string) *FileSource { return &FileSource{Path: path} }

// Name implements Source.
func (s *FileSource) Name() string { return "file" }

// Load implements Source.
func (s *FileSource) Load(ctx context.Context, companyID string) (hierarchy.Tree, error) {
	if err := ctx.Err(); err != nil {
		return hierarchy.Tree{}, err
	}
	info, err := os.Stat(s.Path)
	if err != nil {
		if os.IsNotExist(err) {
			return hierarchy.Tree{}, crmerrors.Wrap(crmerrors.ErrCodeNotFound, err, "snapshot %s", s.Path)
		}
		return hierarchy.Tree{}, crmerrors.Wrap(crmerrors.ErrCodeInternal, err, "stat %s", s.Path)
	}

	if !info.IsDir() {
		t, err := readFile(s.Path)
		if err != nil {
			return hierarchy.Tree{}, err
		}
		if companyID != "" && t.Company.ID != companyID {
			return hierarchy.Tree{}, crmerrors.New(crmerrors.ErrCodeNotFound, "company %q not in %s", companyID, s.Path)
		}
		return t, nil
	}

	if err := crmerrors.ValidateID("company", companyID); err != nil {
		return hierarchy.Tree{}, err
	}
	for _, ext := range []string{".json", ".toml"} {
		path := filepath.Join(s.Path, companyID+ext)
		if _, err := os.Stat(path); err == nil {
			return readFile(path)
		}
	}
	return hierarchy.Tree{}, crmerrors.New(crmerrors.ErrCodeNotFound, "company %q not found in %s", companyID, s.Path)
}

func readFile(path string) (hierarchy.Tree, error) {
	t, err := hierarchy.ReadTreeFile(path)
	if err != nil {
		return hierarchy.Tree{}, crmerrors.Wrap(crmerrors.ErrCodeInvalidFormat, err, "read %s", filepath.Base(path))
	}
	return t, nil
}

var _ Source = (*FileSource)(nil)
