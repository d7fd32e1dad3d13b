// Package filestore persists each document slot as a JSON file in a
// directory. Several processes sharing the directory see each other's writes
// through fsnotify.
package filestore

import (
	"context"
	"crypto/sha256"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/dyluth/careersync/internal/persist"
	"github.com/fsnotify/fsnotify"
	"github.com/rs/zerolog"
)

const (
	dirPerm  = 0o750
	filePerm = 0o640
	fileExt  = ".json"

	// ExternalSource tags changes written by anything other than this store.
	ExternalSource = "external"
)

// Store implements persist.Backend and persist.Watcher on a directory.
type Store struct {
	dir    string
	source string
	log    zerolog.Logger

	mu      sync.Mutex
	written map[string][sha256.Size]byte
}

// Open creates dir if needed.
func Open(dir, source string, log zerolog.Logger) (*Store, error) {
	if dir == "" {
		return nil, errors.New("directory cannot be empty")
	}
	if err := os.MkdirAll(dir, dirPerm); err != nil {
		return nil, fmt.Errorf("failed to create slot directory: %w", err)
	}
	return &Store{
		dir:     dir,
		source:  source,
		log:     log,
		written: make(map[string][sha256.Size]byte),
	}, nil
}

// Dir returns the directory holding the slot files.
func (s *Store) Dir() string {
	return s.dir
}

func (s *Store) path(key string) string {
	return filepath.Join(s.dir, key+fileExt)
}

func (s *Store) Read(_ context.Context, key string) ([]byte, error) {
	data, err := os.ReadFile(s.path(key))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, persist.ErrNotFound
		}
		return nil, fmt.Errorf("failed to read slot %s: %w", key, err)
	}
	return data, nil
}

// Write replaces the slot file atomically via a temp file and rename.
func (s *Store) Write(_ context.Context, key string, data []byte) error {
	tmp, err := os.CreateTemp(s.dir, "."+key+"-*.tmp")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("failed to write slot %s: %w", key, err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("failed to write slot %s: %w", key, err)
	}
	if err := os.Chmod(tmpName, filePerm); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("failed to write slot %s: %w", key, err)
	}

	s.mu.Lock()
	s.written[key] = sha256.Sum256(data)
	s.mu.Unlock()

	if err := os.Rename(tmpName, s.path(key)); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("failed to write slot %s: %w", key, err)
	}
	return nil
}

func (s *Store) Delete(_ context.Context, key string) error {
	s.mu.Lock()
	delete(s.written, key)
	s.mu.Unlock()

	if err := os.Remove(s.path(key)); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("failed to delete slot %s: %w", key, err)
	}
	return nil
}

// Keys lists slot names present in the directory.
func (s *Store) Keys() ([]string, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return nil, fmt.Errorf("failed to list slots: %w", err)
	}
	var keys []string
	for _, e := range entries {
		if key, ok := slotKey(e.Name()); ok && !e.IsDir() {
			keys = append(keys, key)
		}
	}
	return keys, nil
}

// slotKey maps a file name to its slot, rejecting temp files.
func slotKey(name string) (string, bool) {
	if strings.HasPrefix(name, ".") || !strings.HasSuffix(name, fileExt) {
		return "", false
	}
	return strings.TrimSuffix(name, fileExt), true
}

// sourceOf tags content this store wrote itself with its own source.
func (s *Store) sourceOf(key string, data []byte) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if sum, ok := s.written[key]; ok && sum == sha256.Sum256(data) {
		return s.source
	}
	return ExternalSource
}

// Watch streams writes and removals of slot files.
func (s *Store) Watch(ctx context.Context) (*persist.Feed, error) {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create watcher: %w", err)
	}
	if err := watcher.Add(s.dir); err != nil {
		watcher.Close()
		return nil, fmt.Errorf("failed to watch %s: %w", s.dir, err)
	}

	changes := make(chan persist.Change, 32)
	errs := make(chan error, 8)
	watchCtx, cancel := context.WithCancel(ctx)

	go func() {
		defer close(changes)
		defer close(errs)
		defer watcher.Close()

		for {
			select {
			case <-watchCtx.Done():
				return
			case err, ok := <-watcher.Errors:
				if !ok {
					return
				}
				select {
				case errs <- err:
				case <-watchCtx.Done():
					return
				}
			case event, ok := <-watcher.Events:
				if !ok {
					return
				}
				change, ok := s.toChange(event)
				if !ok {
					continue
				}
				select {
				case changes <- change:
				case <-watchCtx.Done():
					return
				}
			}
		}
	}()

	return persist.NewFeed(changes, errs, cancel), nil
}

func (s *Store) toChange(event fsnotify.Event) (persist.Change, bool) {
	key, ok := slotKey(filepath.Base(event.Name))
	if !ok {
		return persist.Change{}, false
	}

	switch {
	case event.Has(fsnotify.Remove), event.Has(fsnotify.Rename):
		if _, err := os.Stat(event.Name); err == nil {
			return persist.Change{}, false
		}
		return persist.Change{Key: key, Source: ExternalSource, At: time.Now()}, true
	case event.Has(fsnotify.Create), event.Has(fsnotify.Write):
		data, err := os.ReadFile(event.Name)
		if err != nil {
			s.log.Debug().Err(err).Str("slot", key).Msg("slot file vanished before read")
			return persist.Change{}, false
		}
		return persist.Change{Key: key, Value: data, Source: s.sourceOf(key, data), At: time.Now()}, true
	}
	return persist.Change{}, false
}

// Ping checks the directory is still present.
func (s *Store) Ping(context.Context) error {
	info, err := os.Stat(s.dir)
	if err != nil {
		return fmt.Errorf("slot directory unavailable: %w", err)
	}
	if !info.IsDir() {
		return fmt.Errorf("slot directory unavailable: %s is not a directory", s.dir)
	}
	return nil
}

func (s *Store) Close() error { return nil }
