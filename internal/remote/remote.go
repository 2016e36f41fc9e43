package remote

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// ErrNotFound is returned when the named object does not exist in the store.
var ErrNotFound = errors.New("remote object not found")

// Store is the interface to a remote snapshot store.
// Implementations must be safe for concurrent use.
type Store interface {
	// Upload writes data under name, replacing any existing object.
	Upload(ctx context.Context, name string, data []byte) error

	// Download returns the object stored under name.
	// Returns ErrNotFound if the object does not exist.
	Download(ctx context.Context, name string) ([]byte, error)

	// Exists reports whether an object is stored under name.
	Exists(ctx context.Context, name string) (bool, error)

	// List returns the names of stored objects with the given prefix,
	// sorted lexically.
	List(ctx context.Context, prefix string) ([]string, error)
}

// DirStore is a Store backed by a local directory, typically one synced
// by an external tool (Syncthing, Dropbox, a mounted share).
type DirStore struct {
	root string
}

// NewDirStore creates a directory-backed store rooted at root.
// The directory is created if it does not exist.
func NewDirStore(root string) (*DirStore, error) {
	if root == "" {
		return nil, errors.New("remote directory not configured")
	}
	if err := os.MkdirAll(root, 0700); err != nil {
		return nil, fmt.Errorf("failed to create remote directory: %w", err)
	}
	return &DirStore{root: root}, nil
}

// Root returns the store's root directory.
func (s *DirStore) Root() string {
	return s.root
}

func (s *DirStore) path(name string) (string, error) {
	cleaned := filepath.Clean(filepath.FromSlash(name))
	if cleaned == "." || strings.HasPrefix(cleaned, "..") || filepath.IsAbs(cleaned) {
		return "", fmt.Errorf("invalid object name: %q", name)
	}
	return filepath.Join(s.root, cleaned), nil
}

// Upload writes data to root/name atomically (temp file + rename).
func (s *DirStore) Upload(ctx context.Context, name string, data []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	dst, err := s.path(name)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(dst), 0700); err != nil {
		return fmt.Errorf("failed to create remote subdirectory: %w", err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(dst), ".upload-*")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("failed to write remote object: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("failed to close temp file: %w", err)
	}
	if err := os.Rename(tmpName, dst); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("failed to replace remote object: %w", err)
	}
	_ = os.Chmod(dst, 0600)
	return nil
}

// Download returns the contents of root/name.
func (s *DirStore) Download(ctx context.Context, name string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	src, err := s.path(name)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(src)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, name)
		}
		return nil, fmt.Errorf("failed to read remote object: %w", err)
	}
	return data, nil
}

// Exists reports whether root/name exists.
func (s *DirStore) Exists(ctx context.Context, name string) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	p, err := s.path(name)
	if err != nil {
		return false, err
	}
	if _, err := os.Stat(p); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

// List returns names (slash-separated, relative to root) with the given
// prefix, sorted lexically. Temp files from interrupted uploads are skipped.
func (s *DirStore) List(ctx context.Context, prefix string) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	var names []string
	err := filepath.WalkDir(s.root, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		if strings.HasPrefix(d.Name(), ".upload-") {
			return nil
		}
		rel, err := filepath.Rel(s.root, path)
		if err != nil {
			return err
		}
		name := filepath.ToSlash(rel)
		if strings.HasPrefix(name, prefix) {
			names = append(names, name)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list remote objects: %w", err)
	}
	sort.Strings(names)
	return names, nil
}
