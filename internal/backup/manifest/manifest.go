// Package manifest is the durable record of confirmed uploads: a JSON
// document mapping each local file path to its content hash, upload time and
// owning backend. It is the single source of truth for "already backed up".
package manifest

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"sync"
	"time"

	"github.com/gofrs/flock"
	"github.com/google/uuid"

	"github.com/cloudkeep/cloudkeep/internal/utils"
)

// Entry records one confirmed upload. An entry exists only for files whose
// upload the owning backend confirmed; stale entries are tolerated and never
// deleted by the engine.
type Entry struct {
	Hash         string    `json:"hash"`
	LastUploaded time.Time `json:"last_uploaded"`
	Service      string    `json:"service"`
	Destination  string    `json:"destination"`
}

type document struct {
	UploadedFiles map[string]Entry `json:"uploaded_files"`
}

// Store owns the manifest mapping and its durable file. Record performs the
// whole read-modify-write-persist sequence under a single lock so concurrent
// upload workers cannot lose updates or corrupt the file. A file lock guards
// against concurrent CloudKeep processes sharing one manifest.
type Store struct {
	path string

	mu      sync.Mutex
	flk     *flock.Flock
	entries map[string]Entry
}

// Open loads the manifest at path. A missing or corrupt file loads as an
// empty manifest; first run and corruption are treated identically as "no
// history".
func Open(path string) *Store {
	s := &Store{
		path:    path,
		flk:     flock.New(path + ".lock"),
		entries: make(map[string]Entry),
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if !os.IsNotExist(err) {
			slog.Warn("manifest read failed, starting empty", "path", path, "error", err)
		}
		return s
	}

	var doc document
	if err := json.Unmarshal(data, &doc); err != nil {
		slog.Warn("manifest corrupt, starting empty", "path", path, "error", err)
		return s
	}
	if doc.UploadedFiles != nil {
		s.entries = doc.UploadedFiles
	}

	return s
}

// Get returns the entry for a local file path.
func (s *Store) Get(path string) (Entry, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.entries[path]
	return e, ok
}

// Entries returns a copy of the full mapping.
func (s *Store) Entries() map[string]Entry {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make(map[string]Entry, len(s.entries))
	for k, v := range s.entries {
		out[k] = v
	}
	return out
}

// Len returns the number of recorded uploads.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.entries)
}

// Record stores the entry and persists the whole manifest synchronously.
// Safe for concurrent use from upload workers.
func (s *Store) Record(path string, e Entry) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.entries[path] = e
	if err := s.persistLocked(); err != nil {
		return fmt.Errorf("persist manifest: %w", err)
	}
	return nil
}

// persistLocked rewrites the manifest file atomically: marshal, write to a
// temp file, rename over the original. Caller holds s.mu.
func (s *Store) persistLocked() error {
	data, err := json.MarshalIndent(document{UploadedFiles: s.entries}, "", "  ")
	if err != nil {
		return err
	}

	if err := utils.EnsureParent(s.path); err != nil {
		return err
	}

	if err := s.flk.Lock(); err != nil {
		return fmt.Errorf("lock manifest: %w", err)
	}
	defer s.flk.Unlock()

	tmp := fmt.Sprintf("%s.%s.tmp", s.path, uuid.NewString())
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return err
	}

	if err := os.Rename(tmp, s.path); err != nil {
		os.Remove(tmp)
		return err
	}
	return nil
}
