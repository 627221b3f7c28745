// Package export compiles the dated JSON snapshot archive into a single
// consolidated Parquet time series for offline analysis. The JSON files are
// read-only inputs; they are never rewritten or removed.
package export

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/parquet-go/parquet-go"

	"bskystats/internal/archive"
)

// SnapshotRecord is the Parquet schema for one archived day.
type SnapshotRecord struct {
	Date         string  `parquet:"date"`
	TotalUsers   int64   `parquet:"total_users"`
	TotalPosts   int64   `parquet:"total_posts"`
	TotalFollows int64   `parquet:"total_follows"`
	TotalLikes   int64   `parquet:"total_likes"`
	GrowthRate   float64 `parquet:"users_growth_rate_per_second"`
}

// SummaryPath returns the location of the consolidated time series.
// Layout: <root>/data/summary/daily.parquet
func SummaryPath(root string) string {
	return filepath.Join(root, "data", "summary", "daily.parquet")
}

// Generate walks the archive under root and rewrites the consolidated
// Parquet file with one row per dated snapshot, sorted by date. Snapshots
// that fail to load are skipped with a warning. Returns the number of rows
// written; zero rows means nothing was written at all.
func Generate(root string, log *slog.Logger) (int, error) {
	entries, err := archive.List(root)
	if err != nil {
		return 0, err
	}

	records := make([]SnapshotRecord, 0, len(entries))
	for _, e := range entries {
		snap, err := archive.Load(e.Path)
		if err != nil {
			log.Warn("skipping unreadable snapshot", "path", e.Path, "err", err)
			continue
		}
		records = append(records, SnapshotRecord{
			Date:         e.Date.Format("2006-01-02"),
			TotalUsers:   snap.TotalUsers,
			TotalPosts:   snap.TotalPosts,
			TotalFollows: snap.TotalFollows,
			TotalLikes:   snap.TotalLikes,
			GrowthRate:   snap.GrowthRate,
		})
	}
	if len(records) == 0 {
		return 0, nil
	}

	path := SummaryPath(root)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return 0, fmt.Errorf("creating summary dir: %w", err)
	}
	if err := parquet.WriteFile(path, records); err != nil {
		return 0, fmt.Errorf("writing %s: %w", path, err)
	}
	return len(records), nil
}

// Read loads the consolidated time series back, for tools that consume it.
func Read(root string) ([]SnapshotRecord, error) {
	return parquet.ReadFile[SnapshotRecord](SummaryPath(root))
}
