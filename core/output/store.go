// Package output handles artifact naming and persistence for shelfpipe.
// Per-URL artifacts live flat in one output directory, named by BaseName.
package output

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
)

// ErrExists is returned when writing a key that is already stored.
var ErrExists = fs.ErrExist

// DirStore is a write-once store backed by a directory on disk.
type DirStore struct {
	Dir string
}

// NewDirStore creates a DirStore rooted at dir, creating it and any parents.
// If dir is empty, it defaults to the current working directory.
func NewDirStore(dir string) (*DirStore, error) {
	if dir == "" {
		wd, err := os.Getwd()
		if err != nil {
			return nil, fmt.Errorf("getting working directory: %w", err)
		}
		dir = wd
	}

	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("creating output directory: %w", err)
	}

	return &DirStore{Dir: dir}, nil
}

// Has reports whether an artifact exists for key.
func (s *DirStore) Has(key string) bool {
	path, err := s.path(key)
	if err != nil {
		return false
	}
	_, err = os.Stat(path)
	return err == nil
}

// Read returns the stored bytes for key.
func (s *DirStore) Read(key string) ([]byte, error) {
	path, err := s.path(key)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading file %s: %w", path, err)
	}
	return data, nil
}

// writeData fills a staged artifact file.
var writeData = func(f *os.File, data []byte) error {
	_, err := f.Write(data)
	return err
}

// Write stores data under key. Existing artifacts are never overwritten.
// The data is staged in a temp file and hard-linked into place, so an
// interrupted write never leaves a partial artifact under key.
func (s *DirStore) Write(key string, data []byte) error {
	path, err := s.path(key)
	if err != nil {
		return err
	}

	tmp, err := os.CreateTemp(s.Dir, "."+key+".tmp-*")
	if err != nil {
		return fmt.Errorf("staging file %s: %w", path, err)
	}
	defer os.Remove(tmp.Name())

	if err := writeData(tmp, data); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("writing file %s: %w", path, err)
	}
	if err := tmp.Sync(); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("syncing file %s: %w", path, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("closing file %s: %w", path, err)
	}

	if err := os.Link(tmp.Name(), path); err != nil {
		return fmt.Errorf("writing file %s: %w", path, err)
	}
	return nil
}

func (s *DirStore) path(key string) (string, error) {
	if key == "" || key != filepath.Base(key) || key == "." || key == ".." {
		return "", fmt.Errorf("invalid artifact key %q", key)
	}
	return filepath.Join(s.Dir, key), nil
}

// EnsureParentDir creates the directory that will hold path.
func EnsureParentDir(path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("creating directory %s: %w", dir, err)
	}
	return nil
}

// IsExists reports whether err came from writing an existing key.
func IsExists(err error) bool {
	return errors.Is(err, ErrExists)
}
