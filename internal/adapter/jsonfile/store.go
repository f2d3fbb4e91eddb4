// Package jsonfile implements the word store over a single JSON snapshot
// file. The full record set lives in memory behind a mutex; every mutation
// rewrites the file atomically (temp file + rename). The on-disk shape is
// exactly the export payload, so a store file is itself a valid import.
package jsonfile

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"github.com/wordfall/wordfall/internal/domain"
	"github.com/wordfall/wordfall/internal/store"
)

// Store is the local file-backed word repository.
type Store struct {
	path string
	log  *slog.Logger

	mu      sync.RWMutex
	words   map[string]domain.WordRecord
	existed bool
}

// Open loads the store at path. A missing file yields an empty store; it is
// created on the first write. A present but unreadable file is a hard error.
func Open(path string, logger *slog.Logger) (*Store, error) {
	s := &Store{
		path:  path,
		log:   logger.With("adapter", "jsonfile"),
		words: make(map[string]domain.WordRecord),
	}

	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return s, nil
	}
	if err != nil {
		return nil, fmt.Errorf("jsonfile: read %s: %w", path, err)
	}

	var snap store.Snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return nil, fmt.Errorf("jsonfile: parse %s: %w", path, err)
	}

	for _, rec := range snap.Words {
		s.words[rec.Key] = rec
	}
	s.existed = true

	s.log.Info("store loaded", slog.String("path", path), slog.Int("words", len(s.words)))
	return s, nil
}

// Upsert creates or replaces the record under rec.Key.
func (s *Store) Upsert(_ context.Context, rec domain.WordRecord) error {
	if err := rec.Validate(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.words[rec.Key] = rec.Clone()
	return s.persistLocked()
}

// Get returns the record for key, or domain.ErrNotFound.
func (s *Store) Get(_ context.Context, key string) (*domain.WordRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rec, ok := s.words[key]
	if !ok {
		return nil, fmt.Errorf("word %q: %w", key, domain.ErrNotFound)
	}
	c := rec.Clone()
	return &c, nil
}

// GetAll returns every record.
func (s *Store) GetAll(_ context.Context) ([]domain.WordRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]domain.WordRecord, 0, len(s.words))
	for _, rec := range s.words {
		out = append(out, rec.Clone())
	}
	return out, nil
}

// Update merges patch into the existing record under one lock acquisition,
// so concurrent updates to the same key cannot lose fields. A missing key
// is a no-op.
func (s *Store) Update(_ context.Context, key string, patch domain.WordPatch) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	rec, ok := s.words[key]
	if !ok {
		return nil
	}

	rec = rec.Clone()
	rec.Apply(patch)
	s.words[key] = rec
	return s.persistLocked()
}

// Delete removes the record for key.
func (s *Store) Delete(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.words[key]; !ok {
		return nil
	}
	delete(s.words, key)
	return s.persistLocked()
}

// ReplaceAll swaps in a new record set and persists it.
func (s *Store) ReplaceAll(_ context.Context, recs []domain.WordRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	words := make(map[string]domain.WordRecord, len(recs))
	for _, rec := range recs {
		words[rec.Key] = rec.Clone()
	}
	s.words = words
	return s.persistLocked()
}

// Initialized reports whether the file existed at Open or has been written
// since.
func (s *Store) Initialized(_ context.Context) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.existed, nil
}

// persistLocked writes the snapshot file. Callers hold the write lock.
func (s *Store) persistLocked() error {
	recs := make([]domain.WordRecord, 0, len(s.words))
	for _, rec := range s.words {
		recs = append(recs, rec)
	}
	sort.Slice(recs, func(i, j int) bool { return recs[i].Key < recs[j].Key })

	snap := store.NewSnapshot(recs, time.Now().UTC())

	data, err := json.MarshalIndent(snap, "", "  ")
	if err != nil {
		return fmt.Errorf("jsonfile: marshal snapshot: %w", err)
	}

	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("jsonfile: create dir %s: %w", dir, err)
	}

	tmp, err := os.CreateTemp(dir, ".words-*.json")
	if err != nil {
		return fmt.Errorf("jsonfile: create temp file: %w", err)
	}
	tmpPath := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return fmt.Errorf("jsonfile: write snapshot: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("jsonfile: close temp file: %w", err)
	}

	if err := os.Rename(tmpPath, s.path); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("jsonfile: replace %s: %w", s.path, err)
	}

	s.existed = true
	return nil
}

var _ store.Store = (*Store)(nil)
