package memory

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path"
	"sort"
	"strings"
)

// FileStore keeps each entry as a file under a directory. All access goes
// through an os.Root, so no key can reach outside the directory even through
// symlinks.
type FileStore struct {
	dir string
}

// NewFileStore creates a Store rooted at dir. The directory is created on the
// first Save.
func NewFileStore(dir string) *FileStore {
	return &FileStore{dir: dir}
}

func (s *FileStore) open(create bool) (*os.Root, error) {
	if create {
		if err := os.MkdirAll(s.dir, 0o755); err != nil {
			return nil, err
		}
	}
	return os.OpenRoot(s.dir)
}

// List walks the directory. Dot-files, including in-progress temp files, are
// skipped.
func (s *FileStore) List(_ context.Context, prefix string) ([]string, error) {
	root, err := s.open(false)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrLoadFailed, err)
	}
	defer root.Close()

	var keys []string
	err = fs.WalkDir(root.FS(), ".", func(p string, d fs.DirEntry, err error) error {
		switch {
		case err != nil:
			return err
		case p == ".":
			return nil
		case strings.HasPrefix(d.Name(), "."):
			if d.IsDir() {
				return fs.SkipDir
			}
			return nil
		case !d.IsDir() && strings.HasPrefix(p, prefix):
			keys = append(keys, p)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrLoadFailed, err)
	}

	sort.Strings(keys)
	return keys, nil
}

func (s *FileStore) Load(_ context.Context, keys ...string) ([]Entry, error) {
	for _, key := range keys {
		if err := validateKey(key); err != nil {
			return nil, err
		}
	}

	if len(keys) == 0 {
		return nil, nil
	}

	root, err := s.open(false)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("%w: %s", ErrKeyNotFound, keys[0])
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrLoadFailed, err)
	}
	defer root.Close()

	entries := make([]Entry, 0, len(keys))
	for _, key := range keys {
		data, err := root.ReadFile(key)
		switch {
		case errors.Is(err, fs.ErrNotExist):
			return nil, fmt.Errorf("%w: %s", ErrKeyNotFound, key)
		case err != nil:
			return nil, fmt.Errorf("%w: %s: %v", ErrLoadFailed, key, err)
		}
		entries = append(entries, Entry{Key: key, Value: data})
	}
	return entries, nil
}

// Save writes each entry to a temp file beside its target and renames it into
// place, so readers see either the old document or the new one.
func (s *FileStore) Save(_ context.Context, entries ...Entry) error {
	for _, e := range entries {
		if err := validateKey(e.Key); err != nil {
			return err
		}
	}

	root, err := s.open(true)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrSaveFailed, err)
	}
	defer root.Close()

	for _, e := range entries {
		if err := replace(root, e); err != nil {
			return fmt.Errorf("%w: %s: %v", ErrSaveFailed, e.Key, err)
		}
	}
	return nil
}

func replace(root *os.Root, e Entry) error {
	dir := path.Dir(e.Key)
	if err := root.MkdirAll(dir, 0o755); err != nil {
		return err
	}

	tmp := path.Join(dir, ".tmp-"+rand.Text())
	if err := root.WriteFile(tmp, e.Value, 0o644); err != nil {
		root.Remove(tmp)
		return err
	}
	if err := root.Rename(tmp, e.Key); err != nil {
		root.Remove(tmp)
		return err
	}
	return nil
}

// Delete removes entries and prunes directories left empty.
func (s *FileStore) Delete(_ context.Context, keys ...string) error {
	for _, key := range keys {
		if err := validateKey(key); err != nil {
			return err
		}
	}

	root, err := s.open(false)
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("delete failed: %w", err)
	}
	defer root.Close()

	for _, key := range keys {
		if err := root.Remove(key); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("delete failed: %s: %w", key, err)
		}
		// Remove refuses non-empty directories, which ends the climb
		for dir := path.Dir(key); dir != "."; dir = path.Dir(dir) {
			if root.Remove(dir) != nil {
				break
			}
		}
	}
	return nil
}

// Close is a no-op; roots are opened per call.
func (s *FileStore) Close() error { return nil }
