// Package history keeps a persistent ledger of successfully downloaded
// tracks. The ledger is a single JSON file replaced atomically on every
// mutation, so a crash never leaves it half-written. Entries are keyed
// by track ID; re-downloading a track replaces its previous entry.
package history

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/anorlov/qobuz-grabber/internal/constants"
)

// Entry records one successfully downloaded track.
type Entry struct {
	// TrackID is the catalog identifier of the track.
	TrackID string `json:"track_id"`
	// Title is the track title.
	Title string `json:"title"`
	// Artist is the display artist line.
	Artist string `json:"artist"`
	// Album is the release title.
	Album string `json:"album"`
	// Path is where the file was saved.
	Path string `json:"path"`
	// FormatID is the audio format the track was downloaded in.
	FormatID int64 `json:"format_id"`
	// DownloadedAt is when the download finished.
	DownloadedAt time.Time `json:"downloaded_at"`
}

// Ledger is a thread-safe download history backed by a JSON file.
type Ledger struct {
	// path is the backing file location.
	path string
	// mu guards entries and file writes.
	mu sync.Mutex
	// entries holds the history keyed by track ID.
	entries map[string]Entry
}

// Open loads the ledger at path, creating an empty one if the file
// does not exist yet.
func Open(path string) (*Ledger, error) {
	ledger := &Ledger{
		path:    path,
		mu:      sync.Mutex{},
		entries: make(map[string]Entry),
	}

	content, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		if os.IsNotExist(err) {
			return ledger, nil
		}

		return nil, fmt.Errorf("failed to read history file: %w", err)
	}

	var stored []Entry
	if err = json.Unmarshal(content, &stored); err != nil {
		return nil, fmt.Errorf("failed to parse history file: %w", err)
	}

	for _, entry := range stored {
		ledger.entries[entry.TrackID] = entry
	}

	return ledger, nil
}

// Add records a download, replacing any previous entry for the track.
func (l *Ledger) Add(entry Entry) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.entries[entry.TrackID] = entry

	return l.persist()
}

// Get returns the entry for a track, if one exists.
func (l *Ledger) Get(trackID string) (Entry, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()

	entry, ok := l.entries[trackID]

	return entry, ok
}

// Remove deletes the entry for a track. Removing an absent track is a no-op.
func (l *Ledger) Remove(trackID string) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if _, ok := l.entries[trackID]; !ok {
		return nil
	}

	delete(l.entries, trackID)

	return l.persist()
}

// GetAll returns all entries ordered by download time, oldest first.
func (l *Ledger) GetAll() []Entry {
	l.mu.Lock()
	defer l.mu.Unlock()

	entries := make([]Entry, 0, len(l.entries))
	for _, entry := range l.entries {
		entries = append(entries, entry)
	}

	sort.Slice(entries, func(i, j int) bool {
		return entries[i].DownloadedAt.Before(entries[j].DownloadedAt)
	})

	return entries
}

// ClearAll removes every entry.
func (l *Ledger) ClearAll() error {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.entries = make(map[string]Entry)

	return l.persist()
}

// persist writes the ledger to a temporary file and renames it over the
// backing file. Callers must hold the mutex.
func (l *Ledger) persist() error {
	entries := make([]Entry, 0, len(l.entries))
	for _, entry := range l.entries {
		entries = append(entries, entry)
	}

	sort.Slice(entries, func(i, j int) bool {
		return entries[i].DownloadedAt.Before(entries[j].DownloadedAt)
	})

	content, err := json.MarshalIndent(entries, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal history: %w", err)
	}

	tempPath := fmt.Sprintf("%s.%s.tmp", l.path, uuid.NewString())
	if err = os.WriteFile(tempPath, content, constants.DefaultFilePermissions); err != nil {
		return fmt.Errorf("failed to write history file: %w", err)
	}

	if err = os.Rename(tempPath, l.path); err != nil {
		os.Remove(tempPath) //nolint:errcheck,gosec // Best-effort cleanup.

		return fmt.Errorf("failed to replace history file: %w", err)
	}

	return nil
}
