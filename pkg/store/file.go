package store

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/tiercache/tiercache/pkg/errors"
	"github.com/tiercache/tiercache/pkg/types"
)

// DefaultFileExtension is the suffix appended to entry filenames.
const DefaultFileExtension = ".cache"

// FileConfig configures a FileStore.
type FileConfig struct {
	// Directory holds the entry files. Created lazily on first write.
	Directory string `yaml:"directory"`

	// Extension is the filename suffix, DefaultFileExtension when empty.
	Extension string `yaml:"extension"`

	// Logger receives warnings about corrupt files. slog.Default when nil.
	Logger *slog.Logger `yaml:"-"`
}

// FileStore persists one JSON file per entry. Filenames are the
// base64url-encoded key plus an extension, so arbitrary keys map to safe
// filenames without an index file.
//
// A file that fails to decode is deleted and reported as a miss. A cache
// directory damaged by a crash or a partial write heals itself instead of
// making every lookup fail.
type FileStore[V any] struct {
	dir       string
	extension string
	logger    *slog.Logger

	mu      sync.Mutex
	created bool
}

// NewFileStore creates a file-backed store. The directory is not touched
// until the first write.
func NewFileStore[V any](config FileConfig) (*FileStore[V], error) {
	if config.Directory == "" {
		return nil, errors.New(errors.CodeInvalidConfig, "file store requires a directory")
	}
	ext := config.Extension
	if ext == "" {
		ext = DefaultFileExtension
	}
	logger := config.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &FileStore[V]{
		dir:       config.Directory,
		extension: ext,
		logger:    logger.With("component", "filestore", "dir", config.Directory),
	}, nil
}

// Put implements Store.
func (s *FileStore[V]) Put(ctx context.Context, key string, entry types.Entry[V]) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := s.ensureDir(); err != nil {
		return err
	}

	data, err := json.Marshal(entry)
	if err != nil {
		return errors.Wrap(errors.CodeStoreIO, "encoding entry", err).WithKey(key)
	}

	path := s.pathFor(key)
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return errors.Wrap(errors.CodeStoreIO, "writing entry file", err).WithKey(key)
	}
	if err := os.Rename(tmp, path); err != nil {
		_ = os.Remove(tmp)
		return errors.Wrap(errors.CodeStoreIO, "committing entry file", err).WithKey(key)
	}
	return nil
}

// Get implements Store. Corrupt files are removed and reported as absent.
func (s *FileStore[V]) Get(ctx context.Context, key string) (types.Entry[V], bool, error) {
	var zero types.Entry[V]
	if err := ctx.Err(); err != nil {
		return zero, false, err
	}

	path := s.pathFor(key)
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return zero, false, nil
		}
		return zero, false, errors.Wrap(errors.CodeStoreIO, "reading entry file", err).WithKey(key)
	}

	var entry types.Entry[V]
	if err := json.Unmarshal(data, &entry); err != nil {
		s.logger.Warn("removing corrupt cache file", "key", key, "error", err)
		_ = os.Remove(path)
		return zero, false, nil
	}
	return entry, true, nil
}

// Remove implements Store.
func (s *FileStore[V]) Remove(ctx context.Context, key string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := os.Remove(s.pathFor(key)); err != nil && !os.IsNotExist(err) {
		return errors.Wrap(errors.CodeStoreIO, "removing entry file", err).WithKey(key)
	}
	return nil
}

// Contains implements Store.
func (s *FileStore[V]) Contains(ctx context.Context, key string) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	_, err := os.Stat(s.pathFor(key))
	if err != nil {
		if os.IsNotExist(err) {
			return false, nil
		}
		return false, errors.Wrap(errors.CodeStoreIO, "checking entry file", err).WithKey(key)
	}
	return true, nil
}

// Keys implements Store. Files with undecodable names are skipped.
func (s *FileStore[V]) Keys(ctx context.Context) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	dirents, err := os.ReadDir(s.dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, errors.Wrap(errors.CodeStoreIO, "listing cache directory", err)
	}

	var keys []string
	for _, de := range dirents {
		if de.IsDir() || !strings.HasSuffix(de.Name(), s.extension) {
			continue
		}
		encoded := strings.TrimSuffix(de.Name(), s.extension)
		decoded, err := base64.URLEncoding.DecodeString(encoded)
		if err != nil {
			s.logger.Warn("skipping file with undecodable name", "file", de.Name())
			continue
		}
		keys = append(keys, string(decoded))
	}
	return keys, nil
}

// Len implements Store.
func (s *FileStore[V]) Len(ctx context.Context) (int, error) {
	keys, err := s.Keys(ctx)
	if err != nil {
		return 0, err
	}
	return len(keys), nil
}

// Clear implements Store. Only files carrying the store's extension are
// removed; the directory may be shared.
func (s *FileStore[V]) Clear(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	dirents, err := os.ReadDir(s.dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return errors.Wrap(errors.CodeStoreIO, "listing cache directory", err)
	}

	for _, de := range dirents {
		if de.IsDir() || !strings.HasSuffix(de.Name(), s.extension) {
			continue
		}
		if err := os.Remove(filepath.Join(s.dir, de.Name())); err != nil && !os.IsNotExist(err) {
			return errors.Wrap(errors.CodeStoreIO, "removing entry file", err)
		}
	}
	return nil
}

// Close implements Store.
func (s *FileStore[V]) Close() error {
	return nil
}

// Directory returns the configured directory.
func (s *FileStore[V]) Directory() string {
	return s.dir
}

func (s *FileStore[V]) pathFor(key string) string {
	name := base64.URLEncoding.EncodeToString([]byte(key)) + s.extension
	return filepath.Join(s.dir, name)
}

func (s *FileStore[V]) ensureDir() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.created {
		return nil
	}
	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return errors.Wrap(errors.CodeStoreIO, "creating cache directory", err)
	}
	s.created = true
	return nil
}
