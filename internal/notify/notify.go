// Package notify implements the shared notification document: an
// append-only JSON file through which external tooling posts section
// updates to a running companion daemon.
//
// Writers (the `companion notify` command, scripts, other processes)
// append entries under the advisory file lock. The daemon watches the
// document and periodically drains it, applying all pending entries to
// the synchronization engine as a single scheduling unit. The document
// is written atomically (temp file + rename) so watchers never observe
// a torn file.
package notify

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"github.com/B-Whitt/redhat-ai-workflow-sub002/internal/engine"
	"github.com/B-Whitt/redhat-ai-workflow-sub002/internal/filelock"
	"github.com/B-Whitt/redhat-ai-workflow-sub002/pkg/logging"
)

// Entry is one posted notification: a partial update for one section.
type Entry struct {
	ID       string         `json:"id"`
	Section  string         `json:"section"`
	Priority string         `json:"priority,omitempty"`
	Fields   map[string]any `json:"fields"`
	PostedAt time.Time      `json:"posted_at"`
}

// Document is the on-disk shape of the notification file.
type Document struct {
	Items       []Entry   `json:"items"`
	LastUpdated time.Time `json:"last_updated"`
	Version     int       `json:"version"`
}

// Store reads and writes the notification document. All mutation happens
// under the advisory lock so concurrent writers and the draining daemon
// never interleave partial states.
type Store struct {
	path   string
	locker *filelock.Locker
}

// NewStore creates a store for the document at path. A nil locker gets
// the default lock parameters.
func NewStore(path string, locker *filelock.Locker) *Store {
	if locker == nil {
		locker = filelock.New(0, 0, 0)
	}
	return &Store{path: path, locker: locker}
}

// Path returns the document location.
func (s *Store) Path() string {
	return s.path
}

// Append adds one entry to the document and returns it with the assigned
// ID and timestamp. Returns filelock.ErrNotAcquired when the document
// stayed busy for the whole lock timeout.
func (s *Store) Append(section, priority string, fields map[string]any) (Entry, error) {
	var entry Entry
	err := s.locker.WithLock(s.path, func() error {
		doc := s.load()
		entry = Entry{
			ID:       uuid.NewString(),
			Section:  section,
			Priority: priority,
			Fields:   fields,
			PostedAt: time.Now().UTC(),
		}
		doc.Items = append(doc.Items, entry)
		doc.LastUpdated = entry.PostedAt
		doc.Version++
		return s.write(doc)
	})
	if err != nil {
		return Entry{}, err
	}
	return entry, nil
}

// Drain removes and returns all pending entries. An already empty
// document is left untouched so the drain triggered by our own write
// does not ripple into another filesystem event.
func (s *Store) Drain() ([]Entry, error) {
	var items []Entry
	err := s.locker.WithLock(s.path, func() error {
		doc := s.load()
		if len(doc.Items) == 0 {
			return nil
		}
		items = doc.Items
		doc.Items = nil
		doc.LastUpdated = time.Now().UTC()
		doc.Version++
		return s.write(doc)
	})
	if err != nil {
		return nil, err
	}
	return items, nil
}

// load reads the current document. A missing file is an empty document;
// a file that fails to parse is logged and reset rather than wedging
// every future append.
func (s *Store) load() Document {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if !os.IsNotExist(err) {
			logging.Warn("Notify", "Failed to read %s: %v", s.path, err)
		}
		return Document{}
	}

	var doc Document
	if err := json.Unmarshal(data, &doc); err != nil {
		logging.Warn("Notify", "Resetting malformed document %s: %v", s.path, err)
		return Document{}
	}
	return doc
}

// write persists the document atomically via temp file + rename.
func (s *Store) write(doc Document) error {
	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode document: %w", err)
	}

	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create directory %s: %w", dir, err)
	}

	tmp, err := os.CreateTemp(dir, ".notifications-*.json")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpPath := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return fmt.Errorf("failed to write temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("failed to close temp file: %w", err)
	}
	if err := os.Rename(tmpPath, s.path); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("failed to replace %s: %w", s.path, err)
	}
	return nil
}

// Updates converts drained entries into section updates. Entries without
// a section cannot be applied and are dropped with a warning; an
// unknown priority falls back to normal.
func Updates(entries []Entry) []engine.SectionUpdate {
	updates := make([]engine.SectionUpdate, 0, len(entries))
	for _, entry := range entries {
		if entry.Section == "" {
			logging.Warn("Notify", "Dropping entry %s: no section", entry.ID)
			continue
		}
		priority, err := engine.ParsePriority(entry.Priority)
		if err != nil {
			logging.Warn("Notify", "Entry %s for %s: %v", entry.ID, entry.Section, err)
		}
		updates = append(updates, engine.SectionUpdate{
			Section:  entry.Section,
			Fields:   entry.Fields,
			Priority: priority,
		})
	}
	return updates
}
