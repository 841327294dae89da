// Package metadata reads and writes the per-category metadata file
// (playlist_metadata.json): a JSON array of {id, title, description}.
package metadata

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"

	"yt2wp/internal/fileutil"
)

// Entry describes one downloaded video.
type Entry struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	Description string `json:"description"`
}

// Load parses a metadata file. A missing file yields no entries and no
// error. Entries without an ID are dropped.
func Load(path string) ([]Entry, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("read metadata: %w", err)
	}
	var raw []Entry
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("parse metadata %s: %w", path, err)
	}
	entries := make([]Entry, 0, len(raw))
	for _, entry := range raw {
		entry.ID = strings.TrimSpace(entry.ID)
		if entry.ID == "" {
			continue
		}
		entries = append(entries, entry)
	}
	return entries, nil
}

// Save writes entries as indented JSON, replacing path atomically.
func Save(path string, entries []Entry) error {
	if entries == nil {
		entries = []Entry{}
	}
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(entries); err != nil {
		return fmt.Errorf("encode metadata: %w", err)
	}
	if err := fileutil.WriteFileAtomic(path, buf.Bytes()); err != nil {
		return fmt.Errorf("write metadata: %w", err)
	}
	return nil
}

// Merge returns current followed by every previous entry whose ID is not in
// current. Order within each slice is preserved.
func Merge(current, previous []Entry) []Entry {
	seen := make(map[string]struct{}, len(current))
	merged := make([]Entry, 0, len(current)+len(previous))
	for _, entry := range current {
		if _, ok := seen[entry.ID]; ok {
			continue
		}
		seen[entry.ID] = struct{}{}
		merged = append(merged, entry)
	}
	for _, entry := range previous {
		if _, ok := seen[entry.ID]; ok {
			continue
		}
		seen[entry.ID] = struct{}{}
		merged = append(merged, entry)
	}
	return merged
}

// Index keys entries by ID.
func Index(entries []Entry) map[string]Entry {
	index := make(map[string]Entry, len(entries))
	for _, entry := range entries {
		index[entry.ID] = entry
	}
	return index
}
