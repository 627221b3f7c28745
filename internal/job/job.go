// Package job wires the daily pipeline: fetch, archive, locate history,
// compute deltas, report, publish. Strictly sequential; one invocation does
// one run and returns.
package job

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"time"

	"bskystats/internal/archive"
	"bskystats/internal/bsky"
	"bskystats/internal/journal"
	"bskystats/internal/report"
	"bskystats/internal/stats"
)

// Fetcher retrieves the current statistics snapshot.
type Fetcher interface {
	Fetch(ctx context.Context) (*stats.Snapshot, error)
}

// Runner executes one pipeline run.
type Runner struct {
	root      string
	sourceURL string
	fetcher   Fetcher
	poster    bsky.Poster
	journal   *journal.Store // optional
	log       *slog.Logger
	out       io.Writer

	now func() time.Time
}

// NewRunner creates a Runner rooted at the given workspace directory.
// journal may be nil to run without a journal.
func NewRunner(root, sourceURL string, f Fetcher, p bsky.Poster, j *journal.Store, log *slog.Logger, out io.Writer) *Runner {
	return &Runner{
		root:      root,
		sourceURL: sourceURL,
		fetcher:   f,
		poster:    p,
		journal:   j,
		log:       log,
		out:       out,
		now:       time.Now,
	}
}

// Run performs one fetch/archive/report cycle. A returned error is fatal
// (fetch or archive failed before anything useful happened); publish and
// journal failures are demoted to warnings and the run still succeeds.
func (r *Runner) Run(ctx context.Context) error {
	now := r.now().UTC()

	snap, err := r.fetcher.Fetch(ctx)
	if err != nil {
		return err
	}

	target := archive.Path(r.root, now)
	if err := archive.Write(target, snap); err != nil {
		return fmt.Errorf("archiving snapshot: %w", err)
	}
	r.log.Info("snapshot archived", "path", target)

	previous := r.loadPrevious(now)

	deltas := report.Compute(snap, previous)
	text := report.Compose(now, snap, deltas, r.sourceURL)

	// The report always goes to stdout, whatever happens to the post.
	fmt.Fprintln(r.out, text)

	posted, postErr := r.publish(ctx, now, text)

	r.record(ctx, journal.Run{
		Date:        now.Format("2006-01-02"),
		StartedAt:   now,
		ArchivePath: target,
		HadPrevious: previous != nil,
		Posted:      posted,
		PostError:   postErr,
	})

	return nil
}

// loadPrevious resolves the reference snapshot for delta computation. Every
// failure here degrades to "no previous snapshot": a first run, an
// unreadable file, or a scan error all just mean the report carries no
// deltas.
func (r *Runner) loadPrevious(now time.Time) *stats.Snapshot {
	path, ok, err := archive.FindPrevious(r.root, now)
	if err != nil {
		r.log.Warn("history lookup failed, reporting without deltas", "err", err)
		return nil
	}
	if !ok {
		r.log.Info("no previous snapshot, reporting without deltas")
		return nil
	}

	snap, err := archive.Load(path)
	if err != nil {
		r.log.Warn("previous snapshot unreadable, reporting without deltas", "path", path, "err", err)
		return nil
	}
	r.log.Info("previous snapshot located", "path", path)
	return snap
}

// publish posts the report text, absorbing every failure as a warning.
func (r *Runner) publish(ctx context.Context, now time.Time, text string) (posted bool, postErr string) {
	if r.journal != nil {
		date := now.Format("2006-01-02")
		if already, err := r.journal.Posted(ctx, date); err == nil && already {
			r.log.Info("an earlier run already posted for this date", "date", date)
		}
	}

	if err := r.poster.Post(ctx, text); err != nil {
		r.log.Warn("failed to post to Bluesky", "err", err)
		return false, err.Error()
	}
	r.log.Info("posted to Bluesky")
	return true, ""
}

func (r *Runner) record(ctx context.Context, run journal.Run) {
	if r.journal == nil {
		return
	}
	if err := r.journal.Record(ctx, run); err != nil {
		r.log.Warn("recording run in journal", "err", err)
	}
}
