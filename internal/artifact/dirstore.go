package artifact

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

var _ Store = (*DirStore)(nil)

// DirStore is the canonical Store: one file per {name, ext} pair under a
// root directory. There is no index file; the directory listing is the
// index.
type DirStore struct {
	root string
}

// NewDirStore returns a DirStore rooted at root, creating it if needed.
func NewDirStore(root string) (*DirStore, error) {
	if err := os.MkdirAll(root, 0o777); err != nil {
		return nil, fmt.Errorf("artifact.NewDirStore: %w", err)
	}
	return &DirStore{root: root}, nil
}

// Publish implements Store.
//
// It stages every artifact to a temporary file first and promotes the staged
// files with os.Rename only after all writes succeeded. A failed write
// removes the staged files and leaves the previously published artifacts
// untouched.
func (s *DirStore) Publish(ctx context.Context, artifacts []Artifact) error {
	staged := make([]string, 0, len(artifacts))
	removeStaged := func() {
		for _, f := range staged {
			_ = os.Remove(f)
		}
	}

	for _, a := range artifacts {
		if err := checkNameExt(a.Name, a.Ext); err != nil {
			removeStaged()
			return fmt.Errorf("artifact.DirStore: %w", err)
		}
		f, err := os.CreateTemp(s.root, ".stage-*")
		if err != nil {
			removeStaged()
			return fmt.Errorf("artifact.DirStore: %w", err)
		}
		staged = append(staged, f.Name())
		if _, err = f.Write(a.Data); err != nil {
			_ = f.Close()
			removeStaged()
			return fmt.Errorf("artifact.DirStore: %w", err)
		}
		if err = f.Close(); err != nil {
			removeStaged()
			return fmt.Errorf("artifact.DirStore: %w", err)
		}
	}

	for i, a := range artifacts {
		if err := os.Rename(staged[i], s.file(a.Name, a.Ext)); err != nil {
			staged = staged[i:]
			removeStaged()
			return fmt.Errorf("artifact.DirStore: %w", err)
		}
	}

	return nil
}

// Get implements Store.
func (s *DirStore) Get(ctx context.Context, name, ext string) ([]byte, error) {
	if err := checkNameExt(name, ext); err != nil {
		return nil, fmt.Errorf("artifact.DirStore: %w", err)
	}
	data, err := os.ReadFile(s.file(name, ext))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("artifact.DirStore: %w", ErrNotFound)
		}
		return nil, fmt.Errorf("artifact.DirStore: %w", err)
	}
	return data, nil
}

// List implements Store. Names come back in lexical order.
func (s *DirStore) List(ctx context.Context, ext string) ([]string, error) {
	entries, err := os.ReadDir(s.root)
	if err != nil {
		return nil, fmt.Errorf("artifact.DirStore: %w", err)
	}

	suffix := "." + ext
	names := make([]string, 0, len(entries))
	for _, entry := range entries {
		if entry.IsDir() || strings.HasPrefix(entry.Name(), ".") {
			continue
		}
		if strings.HasSuffix(entry.Name(), suffix) {
			names = append(names, strings.TrimSuffix(entry.Name(), suffix))
		}
	}
	return names, nil
}

// checkNameExt guards against keys that would escape the root directory or
// collide with staging files. The dispatcher validates output names before a
// build starts; this is the store's own last line.
func checkNameExt(name, ext string) error {
	if name == "" || ext == "" {
		return fs.ErrInvalid
	}
	if strings.HasPrefix(name, ".") {
		return fs.ErrInvalid
	}
	for _, s := range [2]string{name, ext} {
		if strings.ContainsAny(s, `/\`) || s != filepath.Base(s) {
			return fs.ErrInvalid
		}
	}
	return nil
}

func (s *DirStore) file(name, ext string) string {
	return filepath.Join(s.root, name+"."+ext)
}
