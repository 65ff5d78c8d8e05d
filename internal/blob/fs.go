package blob

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

// FSStore is a filesystem-backed Store rooted at a directory. It backs
// local development and tests; production runs use the GCS store.
type FSStore struct {
	root string
}

// NewFSStore creates a filesystem store rooted at dir, creating it if needed.
func NewFSStore(dir string) (*FSStore, error) {
	abs, err := filepath.Abs(dir)
	if err != nil {
		return nil, fmt.Errorf("resolve store root: %w", err)
	}
	if err := os.MkdirAll(abs, 0o755); err != nil {
		return nil, fmt.Errorf("create store root: %w", err)
	}
	return &FSStore{root: abs}, nil
}

// resolve maps a key or a previously returned reference to an absolute path.
func (s *FSStore) resolve(ref string) string {
	if filepath.IsAbs(ref) && strings.HasPrefix(ref, s.root) {
		return ref
	}
	return filepath.Join(s.root, filepath.FromSlash(ref))
}

// WriteImmutable writes a new object, failing if the path already exists.
func (s *FSStore) WriteImmutable(_ context.Context, key string, data []byte) (string, error) {
	path := s.resolve(key)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return "", fmt.Errorf("create object dir: %w", err)
	}

	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		if errors.Is(err, fs.ErrExist) {
			return "", fmt.Errorf("%w: %s", ErrObjectExists, key)
		}
		return "", fmt.Errorf("create object %s: %w", key, err)
	}
	if _, err := f.Write(data); err != nil {
		f.Close()
		return "", fmt.Errorf("write object %s: %w", key, err)
	}
	if err := f.Close(); err != nil {
		return "", fmt.Errorf("close object %s: %w", key, err)
	}
	return path, nil
}

// WritePointer atomically replaces the pointer object via rename, so a
// concurrent reader sees either the old or the new contents, never a mix.
func (s *FSStore) WritePointer(_ context.Context, key string, data []byte) (string, error) {
	path := s.resolve(key)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return "", fmt.Errorf("create object dir: %w", err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(path), ".pointer-*")
	if err != nil {
		return "", fmt.Errorf("create temp pointer: %w", err)
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return "", fmt.Errorf("write pointer %s: %w", key, err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return "", fmt.Errorf("close pointer %s: %w", key, err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return "", fmt.Errorf("publish pointer %s: %w", key, err)
	}
	return path, nil
}

// Read returns the contents of an object.
func (s *FSStore) Read(_ context.Context, ref string) ([]byte, error) {
	data, err := os.ReadFile(s.resolve(ref))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, ref)
		}
		return nil, fmt.Errorf("read object %s: %w", ref, err)
	}
	return data, nil
}

// Exists reports whether an object is present at the key.
func (s *FSStore) Exists(_ context.Context, key string) (bool, error) {
	_, err := os.Stat(s.resolve(key))
	if err == nil {
		return true, nil
	}
	if errors.Is(err, fs.ErrNotExist) {
		return false, nil
	}
	return false, fmt.Errorf("stat object %s: %w", key, err)
}
