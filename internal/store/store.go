// Package store owns the canonical pattern collection. The collection is an
// immutable snapshot loaded wholesale from a JSON document: readers always
// observe one consistent snapshot, and a refresh swaps in a new snapshot
// atomically instead of mutating records in place.
package store

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync/atomic"
	"time"

	"github.com/fsnotify/fsnotify"

	"patternhub/internal/models"
)

// Snapshot is one immutable, validated view of the catalog.
type Snapshot struct {
	Version     string
	LastUpdated time.Time
	Patterns    []models.Pattern
	LoadedAt    time.Time
}

// PatternStore holds the current catalog snapshot and knows how to reload it
// from its backing file. Single writer (Refresh), any number of readers.
type PatternStore struct {
	path    string
	current atomic.Pointer[Snapshot]
	watcher *fsnotify.Watcher
}

// New creates a store backed by the given JSON file and performs the initial
// load. The file must parse and validate or startup fails.
func New(path string) (*PatternStore, error) {
	s := &PatternStore{path: path}
	if err := s.Refresh(); err != nil {
		return nil, err
	}
	return s, nil
}

// Refresh reloads the catalog from disk and atomically swaps the snapshot.
// In-flight readers keep the snapshot they already hold.
func (s *PatternStore) Refresh() error {
	snap, err := loadFile(s.path)
	if err != nil {
		return err
	}
	s.current.Store(snap)
	slog.Info("catalog loaded", "path", s.path, "patterns", len(snap.Patterns), "version", snap.Version)
	return nil
}

// Snapshot returns the current catalog snapshot. Never nil after New.
func (s *PatternStore) Snapshot() *Snapshot {
	return s.current.Load()
}

// Patterns returns the pattern slice of the current snapshot. Callers must
// treat it as read-only.
func (s *PatternStore) Patterns() []models.Pattern {
	return s.current.Load().Patterns
}

// Count returns the number of patterns in the current snapshot.
func (s *PatternStore) Count() int {
	return len(s.current.Load().Patterns)
}

// loadFile reads and validates the catalog document.
func loadFile(path string) (*Snapshot, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read patterns file: %w", err)
	}

	var doc models.CatalogDocument
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("failed to parse patterns JSON: %w", err)
	}

	if err := Validate(doc.Patterns); err != nil {
		return nil, err
	}

	return &Snapshot{
		Version:     doc.Version,
		LastUpdated: doc.LastUpdated,
		Patterns:    doc.Patterns,
		LoadedAt:    time.Now(),
	}, nil
}

// Validate checks the catalog invariants: unique ids and closed enumerations.
// Patterns without examples are allowed here; generate rejects them per call.
func Validate(patterns []models.Pattern) error {
	seen := make(map[string]bool, len(patterns))
	for i, p := range patterns {
		if p.ID == "" {
			return fmt.Errorf("pattern at index %d has empty id", i)
		}
		if seen[p.ID] {
			return fmt.Errorf("duplicate pattern id %q", p.ID)
		}
		seen[p.ID] = true

		if !models.ValidCategory(p.Category) {
			return fmt.Errorf("pattern %q: unknown category %q", p.ID, p.Category)
		}
		if !models.ValidDifficulty(p.Difficulty) {
			return fmt.Errorf("pattern %q: unknown difficulty %q", p.ID, p.Difficulty)
		}
	}
	return nil
}

// Watch starts an fsnotify watcher on the backing file and calls onRefresh
// after every successful hot reload. Write bursts are debounced. Blocks until
// the watcher fails; run in a goroutine.
func (s *PatternStore) Watch(onRefresh func(*Snapshot)) {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		slog.Warn("failed to create file watcher", "error", err)
		return
	}
	s.watcher = watcher

	absPath, err := filepath.Abs(s.path)
	if err != nil {
		slog.Warn("failed to resolve patterns path", "path", s.path, "error", err)
		watcher.Close()
		return
	}

	// Watch the directory, not the file: editors and atomic renames replace
	// the inode and would silently detach a file-level watch.
	dir := filepath.Dir(absPath)
	filename := filepath.Base(absPath)

	if err := watcher.Add(dir); err != nil {
		slog.Warn("failed to watch directory", "dir", dir, "error", err)
		watcher.Close()
		return
	}

	slog.Info("watching patterns file for changes", "path", s.path)

	var debounceTimer *time.Timer
	debounceDuration := 500 * time.Millisecond

	for {
		select {
		case event, ok := <-watcher.Events:
			if !ok {
				return
			}
			if filepath.Base(event.Name) != filename {
				continue
			}
			if event.Op&fsnotify.Write == fsnotify.Write || event.Op&fsnotify.Create == fsnotify.Create {
				if debounceTimer != nil {
					debounceTimer.Stop()
				}
				debounceTimer = time.AfterFunc(debounceDuration, func() {
					if err := s.Refresh(); err != nil {
						slog.Error("hot reload failed, keeping previous snapshot", "error", err)
						return
					}
					if onRefresh != nil {
						onRefresh(s.Snapshot())
					}
				})
			}

		case err, ok := <-watcher.Errors:
			if !ok {
				return
			}
			slog.Warn("file watcher error", "error", err)
		}
	}
}

// Close stops the file watcher if one is running.
func (s *PatternStore) Close() {
	if s.watcher != nil {
		s.watcher.Close()
	}
}
