package repository

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/okian/gamepulse/pkg/metrics"
)

const (
	fileBackend = "file"
	docExt      = ".json"
)

// FileStore keeps each document as <dir>/<key>.json, one directory per kind.
type FileStore struct {
	root string
	dirs map[Kind]string
}

// NewFileStore creates a FileStore rooted at root. Kinds without an explicit
// directory live in root/<kind>.
func NewFileStore(root string, opts ...FileOption) *FileStore {
	s := &FileStore{root: root, dirs: make(map[Kind]string)}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *FileStore) dir(kind Kind) string {
	if d, ok := s.dirs[kind]; ok {
		return d
	}
	return filepath.Join(s.root, string(kind))
}

// Put writes the document, creating the kind's directory when needed.
func (s *FileStore) Put(_ context.Context, kind Kind, key string, doc []byte) (err error) {
	defer func() { metrics.RecordStoreOperation(fileBackend, "put", outcome(err)) }()
	if err := validateKey(key); err != nil {
		return err
	}
	dir := s.dir(kind)
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return fmt.Errorf("%w: create %s: %w", ErrBackend, dir, err)
	}
	path := filepath.Join(dir, key+docExt)
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, doc, 0o600); err != nil {
		return fmt.Errorf("%w: write %s: %w", ErrBackend, path, err)
	}
	if err := os.Rename(tmp, path); err != nil {
		return fmt.Errorf("%w: rename %s: %w", ErrBackend, path, err)
	}
	return nil
}

// Get reads the document.
func (s *FileStore) Get(_ context.Context, kind Kind, key string) (doc []byte, err error) {
	defer func() { metrics.RecordStoreOperation(fileBackend, "get", outcome(err)) }()
	if err := validateKey(key); err != nil {
		return nil, err
	}
	path := filepath.Join(s.dir(kind), key+docExt)
	doc, err = os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("%w: %s/%s", ErrNotFound, kind, key)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: read %s: %w", ErrBackend, path, err)
	}
	return doc, nil
}

// List returns the base names of the *.json files of kind. A missing
// directory is an empty list.
func (s *FileStore) List(_ context.Context, kind Kind) (keys []string, err error) {
	defer func() { metrics.RecordStoreOperation(fileBackend, "list", outcome(err)) }()
	entries, err := os.ReadDir(s.dir(kind))
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("%w: list %s: %w", ErrBackend, kind, err)
	}
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), docExt) {
			continue
		}
		keys = append(keys, strings.TrimSuffix(e.Name(), docExt))
	}
	sort.Strings(keys)
	return keys, nil
}

// Close is a no-op.
func (s *FileStore) Close() error { return nil }
