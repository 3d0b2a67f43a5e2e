package regulatory

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/qeme/sentinel-lite/model"
	"github.com/qeme/sentinel-lite/util"
)

// FingerprintStore persists the last seen content fingerprint per source name.
type FingerprintStore interface {
	// LoadFingerprint returns the stored fingerprint and whether one exists.
	LoadFingerprint(ctx context.Context, source string) (string, bool, error)
	// SaveFingerprint overwrites the fingerprint of source.
	SaveFingerprint(ctx context.Context, source, fingerprint string) error
}

// SnapshotStore persists the single cache snapshot.
type SnapshotStore interface {
	// LoadSnapshot returns the stored snapshot, or nil when none exists.
	LoadSnapshot(ctx context.Context) (*model.CacheSnapshot, error)
	// SaveSnapshot replaces the stored snapshot.
	SaveSnapshot(ctx context.Context, snapshot model.CacheSnapshot) error
}

// FileFingerprintStore keeps one <key>.hash file per source in a directory,
// keyed by util.StoreKey of the source name.
type FileFingerprintStore struct {
	dir   string
	locks keyedMutex
}

// NewFileFingerprintStore returns a store rooted at dir. The directory is created on first write.
func NewFileFingerprintStore(dir string) *FileFingerprintStore {
	return &FileFingerprintStore{dir: dir}
}

func (s *FileFingerprintStore) path(source string) (string, error) {
	key, err := util.StoreKey(source)
	if err != nil {
		return "", fmt.Errorf("source name %q: %w", source, err)
	}
	return filepath.Join(s.dir, key+".hash"), nil
}

// LoadFingerprint implements FingerprintStore.
func (s *FileFingerprintStore) LoadFingerprint(_ context.Context, source string) (string, bool, error) {
	path, err := s.path(source)
	if err != nil {
		return "", false, err
	}

	unlock := s.locks.Lock(source)
	defer unlock()

	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}

	fp := strings.TrimSpace(string(data))
	if fp == "" {
		return "", false, nil
	}
	return fp, true, nil
}

// SaveFingerprint implements FingerprintStore.
func (s *FileFingerprintStore) SaveFingerprint(_ context.Context, source, fingerprint string) error {
	path, err := s.path(source)
	if err != nil {
		return err
	}

	unlock := s.locks.Lock(source)
	defer unlock()

	return util.WriteFileAtomic(path, []byte(fingerprint))
}

// FileSnapshotStore keeps the cache snapshot in a single JSON file.
type FileSnapshotStore struct {
	path string
	mu   sync.RWMutex
}

// NewFileSnapshotStore returns a store writing to path.
func NewFileSnapshotStore(path string) *FileSnapshotStore {
	return &FileSnapshotStore{path: path}
}

// LoadSnapshot implements SnapshotStore.
func (s *FileSnapshotStore) LoadSnapshot(_ context.Context) (*model.CacheSnapshot, error) {
	s.mu.RLock()
	data, err := os.ReadFile(s.path)
	s.mu.RUnlock()

	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	var snapshot model.CacheSnapshot
	if err := json.Unmarshal(data, &snapshot); err != nil {
		return nil, fmt.Errorf("corrupt cache file %s: %w", s.path, err)
	}
	return &snapshot, nil
}

// SaveSnapshot implements SnapshotStore.
func (s *FileSnapshotStore) SaveSnapshot(_ context.Context, snapshot model.CacheSnapshot) error {
	if snapshot.Updates == nil {
		snapshot.Updates = []model.RegulatoryUpdate{}
	}
	data, err := json.MarshalIndent(snapshot, "", "  ")
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	return util.WriteFileAtomic(s.path, data)
}

// keyedMutex serializes work per key.
type keyedMutex struct {
	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

func (k *keyedMutex) Lock(key string) func() {
	k.mu.Lock()
	if k.locks == nil {
		k.locks = make(map[string]*sync.Mutex)
	}
	l, ok := k.locks[key]
	if !ok {
		l = &sync.Mutex{}
		k.locks[key] = l
	}
	k.mu.Unlock()

	l.Lock()
	return l.Unlock
}
