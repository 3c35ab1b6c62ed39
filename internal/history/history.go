// Package history manages the local watch history in TSV format.
// Uses atomic writes (temp+rename) to prevent data corruption.
package history

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"minnow/internal/config"
	"minnow/internal/media"
)

// TSV columns: id, title, type, season, episode, position, duration
const numColumns = 7

// Load reads the history file and returns all entries.
func Load() ([]media.HistoryEntry, error) {
	path, err := config.HistoryPath()
	if err != nil {
		return nil, err
	}

	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("opening history: %w", err)
	}
	defer f.Close()

	var entries []media.HistoryEntry
	scanner := bufio.NewScanner(f)

	for scanner.Scan() {
		line := scanner.Text()
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		entry, err := parseLine(line)
		if err != nil {
			continue // Skip malformed lines
		}
		entries = append(entries, entry)
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("reading history: %w", err)
	}

	return entries, nil
}

// Save writes or updates an entry in the history file. An entry is
// identified by content ID plus season/episode, so every episode of a
// show tracks its own position.
func Save(entry media.HistoryEntry) error {
	path, err := config.HistoryPath()
	if err != nil {
		return err
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0700); err != nil {
		return fmt.Errorf("creating history dir: %w", err)
	}

	entries, _ := Load()

	found := false
	for i, e := range entries {
		if e.ID == entry.ID && e.Season == entry.Season && e.Episode == entry.Episode {
			entries[i] = entry
			found = true
			break
		}
	}
	if !found {
		entries = append(entries, entry)
	}

	return writeAll(path, entries)
}

// Remove deletes an entry from the history.
func Remove(id string, season, episode int) error {
	entries, err := Load()
	if err != nil {
		return err
	}

	var filtered []media.HistoryEntry
	for _, e := range entries {
		if !(e.ID == id && e.Season == season && e.Episode == episode) {
			filtered = append(filtered, e)
		}
	}

	path, err := config.HistoryPath()
	if err != nil {
		return err
	}
	return writeAll(path, filtered)
}

// writeAll replaces the history file atomically: write to a temp file
// in the same directory, then rename over the original.
func writeAll(path string, entries []media.HistoryEntry) error {
	dir := filepath.Dir(path)

	tmpFile, err := os.CreateTemp(dir, "history-*.tmp")
	if err != nil {
		return fmt.Errorf("creating temp file: %w", err)
	}
	tmpPath := tmpFile.Name()

	writer := bufio.NewWriter(tmpFile)
	for _, e := range entries {
		if _, err := writer.WriteString(formatLine(e) + "\n"); err != nil {
			tmpFile.Close()
			os.Remove(tmpPath)
			return fmt.Errorf("writing history: %w", err)
		}
	}

	if err := writer.Flush(); err != nil {
		tmpFile.Close()
		os.Remove(tmpPath)
		return fmt.Errorf("flushing history: %w", err)
	}

	if err := tmpFile.Close(); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("closing temp file: %w", err)
	}

	if err := os.Rename(tmpPath, path); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("renaming history file: %w", err)
	}

	return nil
}

// Find returns the entry matching id/season/episode, or nil.
func Find(entries []media.HistoryEntry, id string, season, episode int) *media.HistoryEntry {
	for i := range entries {
		e := &entries[i]
		if e.ID == id && e.Season == season && e.Episode == episode {
			return e
		}
	}
	return nil
}

// FormatForDisplay creates display strings for picker selection.
func FormatForDisplay(entries []media.HistoryEntry) []string {
	var items []string
	for _, e := range entries {
		var display string
		if e.Type == media.TV {
			display = fmt.Sprintf("%s S%02dE%02d", e.Title, e.Season, e.Episode)
		} else {
			display = e.Title
		}
		if e.Position > 0 {
			pct := 0.0
			if e.Duration > 0 {
				pct = (e.Position / e.Duration) * 100
			}
			display += fmt.Sprintf(" [%.0f%%]", pct)
		}
		items = append(items, display)
	}
	return items
}

// parseLine parses a TSV line into a HistoryEntry.
func parseLine(line string) (media.HistoryEntry, error) {
	fields := strings.Split(line, "\t")
	if len(fields) < numColumns {
		return media.HistoryEntry{}, fmt.Errorf("expected %d columns, got %d", numColumns, len(fields))
	}

	mediaType, err := media.ParseMediaType(fields[2])
	if err != nil {
		return media.HistoryEntry{}, err
	}

	season, _ := strconv.Atoi(fields[3])
	episode, _ := strconv.Atoi(fields[4])
	position, _ := strconv.ParseFloat(fields[5], 64)
	duration, _ := strconv.ParseFloat(fields[6], 64)

	return media.HistoryEntry{
		ID:       fields[0],
		Title:    fields[1],
		Type:     mediaType,
		Season:   season,
		Episode:  episode,
		Position: position,
		Duration: duration,
	}, nil
}

// formatLine converts a HistoryEntry to a TSV line.
func formatLine(e media.HistoryEntry) string {
	return strings.Join([]string{
		e.ID,
		e.Title,
		string(e.Type),
		strconv.Itoa(e.Season),
		strconv.Itoa(e.Episode),
		strconv.FormatFloat(e.Position, 'f', 0, 64),
		strconv.FormatFloat(e.Duration, 'f', 0, 64),
	}, "\t")
}
