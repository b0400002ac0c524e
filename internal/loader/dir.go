package loader

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	apperrors "github.com/forumdb/forumdb/pkg/errors"
)

// candidateDirs are searched, nearest first, relative to the data root:
// its data subdirectory, then the root itself and two of its ancestors.
var candidateDirs = []string{
	"data",
	".",
	"..",
	filepath.Join("..", ".."),
}

// Locate returns the nearest candidate directory under root that holds the
// file of every resource. It fails with ErrResourceNotFound otherwise.
func Locate(root string, resources ...string) (string, error) {
	for _, c := range candidateDirs {
		dir := filepath.Join(root, c)
		if hasAll(dir, resources) {
			return dir, nil
		}
	}
	return "", apperrors.Newf(apperrors.ErrResourceNotFound, "no data directory under %s holds %v", root, resources)
}

func hasAll(dir string, resources []string) bool {
	for _, r := range resources {
		info, err := os.Stat(filepath.Join(dir, FileName(r)))
		if err != nil || info.IsDir() {
			return false
		}
	}
	return true
}

// DirSource opens resources from a local directory.
type DirSource struct {
	Dir string
}

// NewDirSource locates the data directory for resources under root.
func NewDirSource(root string, resources ...string) (*DirSource, error) {
	dir, err := Locate(root, resources...)
	if err != nil {
		return nil, err
	}
	return &DirSource{Dir: dir}, nil
}

func (s *DirSource) Open(ctx context.Context, name string) (io.ReadCloser, error) {
	f, err := os.Open(filepath.Join(s.Dir, name))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, apperrors.Newf(apperrors.ErrResourceNotFound, "%s in %s", name, s.Dir)
		}
		return nil, fmt.Errorf("open %s: %w", name, err)
	}
	return f, nil
}
