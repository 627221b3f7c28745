// Package archive persists daily statistics snapshots as dated JSON files
// under <root>/data/<YYYY>/<MM>/<YYYY-MM-DD>.json and locates prior
// snapshots for delta computation.
package archive

import (
	"encoding/json"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"bskystats/internal/stats"
)

const dateLayout = "2006-01-02"

// Path returns the archive file path for the UTC calendar date of t.
// Layout: <root>/data/<YYYY>/<MM>/<YYYY-MM-DD>.json
func Path(root string, t time.Time) string {
	t = t.UTC()
	return filepath.Join(root, "data", t.Format("2006"), t.Format("01"), t.Format(dateLayout)+".json")
}

// Write persists the snapshot payload at path as pretty-printed JSON with a
// trailing newline, creating parent directories as needed. Non-ASCII text in
// the payload is written literally. A re-run on the same date overwrites the
// file; there is never more than one file per calendar date.
func Write(path string, snap *stats.Snapshot) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("creating archive dir: %w", err)
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating %s: %w", path, err)
	}

	enc := json.NewEncoder(f)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	if err := enc.Encode(snap.Payload()); err != nil {
		f.Close()
		return fmt.Errorf("writing %s: %w", path, err)
	}
	return f.Close()
}

// ParseDate parses an archive filename of the form YYYY-MM-DD.json into its
// UTC calendar date. Names that do not match the pattern report ok=false and
// are never an error; stray files in the tree are simply not snapshots.
func ParseDate(name string) (time.Time, bool) {
	base := strings.TrimSuffix(name, ".json")
	if base == name {
		return time.Time{}, false
	}
	t, err := time.Parse(dateLayout, base)
	if err != nil || t.Format(dateLayout) != base {
		return time.Time{}, false
	}
	return t, true
}

// Entry is one dated snapshot file found in the archive tree.
type Entry struct {
	Date time.Time
	Path string
}

// List walks the archive tree and returns every dated snapshot file, sorted
// by date ascending. A missing data directory yields an empty list.
func List(root string) ([]Entry, error) {
	dataRoot := filepath.Join(root, "data")
	if _, err := os.Stat(dataRoot); os.IsNotExist(err) {
		return nil, nil
	}

	var entries []Entry
	err := filepath.WalkDir(dataRoot, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		date, ok := ParseDate(d.Name())
		if !ok {
			return nil
		}
		entries = append(entries, Entry{Date: date, Path: path})
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("scanning archive: %w", err)
	}

	// WalkDir visits lexically, and the YYYY/MM/YYYY-MM-DD layout makes
	// lexical order date order already. Sort anyway to not depend on it.
	sort.Slice(entries, func(i, j int) bool {
		return entries[i].Date.Before(entries[j].Date)
	})
	return entries, nil
}

// FindPrevious locates the most relevant snapshot from before today's UTC
// calendar date. It prefers the exact file for yesterday; when that is
// absent it falls back to scanning the tree for the latest strictly-earlier
// dated file. ok=false with a nil error means a legitimate first run with no
// prior snapshot.
func FindPrevious(root string, today time.Time) (path string, ok bool, err error) {
	today = today.UTC()

	yesterday := Path(root, today.AddDate(0, 0, -1))
	if _, err := os.Stat(yesterday); err == nil {
		return yesterday, true, nil
	}

	todayDate := time.Date(today.Year(), today.Month(), today.Day(), 0, 0, 0, 0, time.UTC)
	entries, err := List(root)
	if err != nil {
		return "", false, err
	}

	var best *Entry
	for i := range entries {
		e := &entries[i]
		if !e.Date.Before(todayDate) {
			continue
		}
		if best == nil || e.Date.After(best.Date) {
			best = e
		}
	}
	if best == nil {
		return "", false, nil
	}
	return best.Path, true, nil
}

// Load reads an archived snapshot from disk. Loading is lenient: history
// files missing newer fields still load, with those fields read as zero.
func Load(path string) (*stats.Snapshot, error) {
	body, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	snap, err := stats.ParseLenient(body)
	if err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}
	return snap, nil
}
