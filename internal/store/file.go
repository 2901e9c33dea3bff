package store

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"

	"github.com/theirongolddev/allot/internal/alloc"
)

// FileStore keeps every record in one JSON object keyed like browser local
// storage: {"<key>": <record>, ...}. Writes replace the file atomically.
type FileStore struct {
	mu   sync.Mutex
	path string
}

// OpenFile prepares a FileStore at path, creating its directory.
func OpenFile(path string) (*FileStore, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
		return nil, fmt.Errorf("creating data dir: %w", err)
	}
	return &FileStore{path: path}, nil
}

// Path returns the backing file.
func (s *FileStore) Path() string { return s.path }

// Load returns the record stored under key. A record that is not a JSON
// object yields alloc.ErrCorruptRecord.
func (s *FileStore) Load(key string) (alloc.Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	entries, err := s.readLocked()
	if err != nil {
		return alloc.Record{}, err
	}
	raw, ok := entries[key]
	if !ok {
		return alloc.Record{}, ErrNoRecord
	}
	return alloc.Decode(raw)
}

// Save writes rec under key, keeping other keys intact. A corrupt file, or a
// corrupt record under key, is copied to <path>.corrupt before being replaced.
func (s *FileStore) Save(key string, rec alloc.Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	entries, err := s.readLocked()
	if errors.Is(err, alloc.ErrCorruptRecord) {
		if rerr := os.Rename(s.path, s.path+".corrupt"); rerr != nil {
			return fmt.Errorf("moving corrupt data file aside: %w", rerr)
		}
		entries = map[string]json.RawMessage{}
	} else if err != nil {
		return err
	}

	if old, ok := entries[key]; ok {
		if _, derr := alloc.Decode(old); derr != nil {
			if err := s.backupLocked(entries); err != nil {
				return err
			}
		}
	}

	data, err := alloc.Encode(rec)
	if err != nil {
		return fmt.Errorf("encoding record: %w", err)
	}
	entries[key] = data
	return s.writeLocked(entries)
}

// Keys lists stored record keys in sorted order.
func (s *FileStore) Keys() ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	entries, err := s.readLocked()
	if err != nil {
		return nil, err
	}
	keys := make([]string, 0, len(entries))
	for k := range entries {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys, nil
}

// Close is a no-op; the file is only open during Load and Save.
func (s *FileStore) Close() error { return nil }

// backupLocked writes the current entries to <path>.corrupt.
func (s *FileStore) backupLocked(entries map[string]json.RawMessage) error {
	data, err := json.MarshalIndent(entries, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal corrupt data: %w", err)
	}
	if err := os.WriteFile(s.path+".corrupt", append(data, '\n'), 0o600); err != nil {
		return fmt.Errorf("backing up corrupt record: %w", err)
	}
	return nil
}

func (s *FileStore) readLocked() (map[string]json.RawMessage, error) {
	data, err := os.ReadFile(s.path)
	if errors.Is(err, os.ErrNotExist) {
		return map[string]json.RawMessage{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading data file: %w", err)
	}
	if len(bytes.TrimSpace(data)) == 0 {
		return map[string]json.RawMessage{}, nil
	}

	var entries map[string]json.RawMessage
	if err := json.Unmarshal(data, &entries); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", alloc.ErrCorruptRecord, s.path, err)
	}
	if entries == nil {
		entries = map[string]json.RawMessage{}
	}
	return entries, nil
}

func (s *FileStore) writeLocked(entries map[string]json.RawMessage) error {
	data, err := json.MarshalIndent(entries, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal data: %w", err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(s.path), filepath.Base(s.path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("creating temp data file: %w", err)
	}
	tmpPath := tmp.Name()
	defer func() { _ = os.Remove(tmpPath) }()

	if _, err := tmp.Write(append(data, '\n')); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("write temp data file: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("sync temp data file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close temp data file: %w", err)
	}
	if err := os.Rename(tmpPath, s.path); err != nil {
		return fmt.Errorf("replace data file: %w", err)
	}
	return nil
}
