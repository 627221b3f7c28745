package job

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"bskystats/internal/archive"
	"bskystats/internal/bsky"
	"bskystats/internal/stats"
)

type fakeFetcher struct {
	body string
	err  error
}

func (f *fakeFetcher) Fetch(_ context.Context) (*stats.Snapshot, error) {
	if f.err != nil {
		return nil, f.err
	}
	return stats.Parse([]byte(f.body))
}

type fakePoster struct {
	err   error
	calls int
	text  string
}

func (p *fakePoster) Post(_ context.Context, text string) error {
	p.calls++
	p.text = text
	return p.err
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError + 1}))
}

const fetchBody = `{
	"total_users": 1000,
	"total_posts": 2000,
	"total_follows": 3000,
	"total_likes": 500,
	"users_growth_rate_per_second": 2.5,
	"last_update_time": "t0",
	"next_update_time": "t1"
}`

func newTestRunner(root string, f Fetcher, p bsky.Poster, out *bytes.Buffer, now time.Time) *Runner {
	r := NewRunner(root, "https://bsky-stats.lut.li/", f, p, nil, discardLogger(), out)
	r.now = func() time.Time { return now }
	return r
}

func TestRunHappyPath(t *testing.T) {
	root := t.TempDir()
	var out bytes.Buffer
	poster := &fakePoster{}
	now := time.Date(2024, 1, 3, 12, 0, 0, 0, time.UTC)

	r := newTestRunner(root, &fakeFetcher{body: fetchBody}, poster, &out, now)
	if err := r.Run(context.Background()); err != nil {
		t.Fatalf("Run() returned error: %v", err)
	}

	// Snapshot archived at today's dated path.
	if _, err := os.Stat(archive.Path(root, now)); err != nil {
		t.Errorf("expected archive file for today: %v", err)
	}

	// Report printed to stdout writer.
	if !strings.Contains(out.String(), "Users: 1,000") {
		t.Errorf("report missing from output:\n%s", out.String())
	}
	if !strings.Contains(out.String(), "Bluesky Daily Stats — 2024-01-03 12:00 UTC") {
		t.Errorf("report header missing:\n%s", out.String())
	}

	// Same text went to the poster.
	if poster.calls != 1 {
		t.Fatalf("poster called %d times, want 1", poster.calls)
	}
	if !strings.Contains(out.String(), poster.text) {
		t.Error("posted text should match the printed report")
	}
}

func TestRunFirstRunHasNoDeltas(t *testing.T) {
	root := t.TempDir()
	var out bytes.Buffer
	now := time.Date(2024, 1, 3, 12, 0, 0, 0, time.UTC)

	r := newTestRunner(root, &fakeFetcher{body: fetchBody}, &fakePoster{}, &out, now)
	if err := r.Run(context.Background()); err != nil {
		t.Fatal(err)
	}
	if strings.Contains(out.String(), "(↑") || strings.Contains(out.String(), "(Δ") {
		t.Errorf("first run should carry no delta annotations:\n%s", out.String())
	}
}

func TestRunComputesDeltasAgainstYesterday(t *testing.T) {
	root := t.TempDir()
	now := time.Date(2024, 1, 3, 12, 0, 0, 0, time.UTC)

	// Seed yesterday's snapshot.
	prevPath := archive.Path(root, now.AddDate(0, 0, -1))
	prev, err := stats.ParseLenient([]byte(`{"total_users": 950, "total_posts": 1900, "total_likes": 480, "users_growth_rate_per_second": 2.1}`))
	if err != nil {
		t.Fatal(err)
	}
	if err := archive.Write(prevPath, prev); err != nil {
		t.Fatal(err)
	}

	var out bytes.Buffer
	r := newTestRunner(root, &fakeFetcher{body: fetchBody}, &fakePoster{}, &out, now)
	if err := r.Run(context.Background()); err != nil {
		t.Fatal(err)
	}

	for _, want := range []string{"Users: 1,000 (↑50)", "Likes: 500 (↑20)", "Growth rate: 2.5000/s (Δ0.4000/s)"} {
		if !strings.Contains(out.String(), want) {
			t.Errorf("report missing %q:\n%s", want, out.String())
		}
	}
}

func TestRunPublishFailureStillSucceeds(t *testing.T) {
	root := t.TempDir()
	var out bytes.Buffer
	poster := &fakePoster{err: &bsky.PublishError{Err: errors.New("invalid credentials")}}
	now := time.Date(2024, 1, 3, 12, 0, 0, 0, time.UTC)

	r := newTestRunner(root, &fakeFetcher{body: fetchBody}, poster, &out, now)
	if err := r.Run(context.Background()); err != nil {
		t.Fatalf("publish failure must not fail the run, got: %v", err)
	}

	if _, err := os.Stat(archive.Path(root, now)); err != nil {
		t.Errorf("archive should exist despite publish failure: %v", err)
	}
	if !strings.Contains(out.String(), "Users: 1,000") {
		t.Errorf("report should still print despite publish failure:\n%s", out.String())
	}
}

func TestRunFetchFailureIsFatalAndArchivesNothing(t *testing.T) {
	root := t.TempDir()
	var out bytes.Buffer
	poster := &fakePoster{}
	now := time.Date(2024, 1, 3, 12, 0, 0, 0, time.UTC)

	ferr := &stats.TransportError{URL: "https://bsky-stats.lut.li/", Status: 500}
	r := newTestRunner(root, &fakeFetcher{err: ferr}, poster, &out, now)

	err := r.Run(context.Background())
	var terr *stats.TransportError
	if !errors.As(err, &terr) {
		t.Fatalf("Run() returned %v, want the TransportError to propagate", err)
	}

	if _, statErr := os.Stat(archive.Path(root, now)); !os.IsNotExist(statErr) {
		t.Error("no archive file may be written when the fetch fails")
	}
	if poster.calls != 0 {
		t.Error("nothing may be posted when the fetch fails")
	}
	if out.Len() != 0 {
		t.Error("no report may be printed when the fetch fails")
	}
}

func TestRunMalformedPreviousDegradesToNoDeltas(t *testing.T) {
	root := t.TempDir()
	now := time.Date(2024, 1, 3, 12, 0, 0, 0, time.UTC)

	prevPath := archive.Path(root, now.AddDate(0, 0, -1))
	if err := os.MkdirAll(filepath.Dir(prevPath), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(prevPath, []byte("{corrupt"), 0o644); err != nil {
		t.Fatal(err)
	}

	var out bytes.Buffer
	r := newTestRunner(root, &fakeFetcher{body: fetchBody}, &fakePoster{}, &out, now)
	if err := r.Run(context.Background()); err != nil {
		t.Fatalf("corrupt history must not fail the run: %v", err)
	}
	if strings.Contains(out.String(), "(↑") {
		t.Errorf("corrupt previous snapshot should yield a delta-free report:\n%s", out.String())
	}
}
