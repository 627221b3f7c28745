// One-shot job: fetch the daily Bluesky statistics snapshot, archive it
// under data/YYYY/MM/YYYY-MM-DD.json, compute deltas against the previous
// snapshot, print the summary, and best-effort post it to Bluesky.
//
// Exit code 0 when fetch+archive+report complete, even if posting failed;
// 1 on fetch, validation, or archive failure.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"bskystats/internal/bsky"
	"bskystats/internal/config"
	"bskystats/internal/job"
	"bskystats/internal/journal"
	"bskystats/internal/stats"
	"bskystats/internal/util"
)

func main() {
	os.Exit(run())
}

func run() int {
	cfgPath := "config/bskystats.yaml"
	if p := os.Getenv("BSKYSTATS_CONFIG"); p != "" {
		cfgPath = p
	}

	cfg, err := config.Load(cfgPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		return 1
	}

	logger := util.NewLogger(cfg.Logging.Level)
	util.SetDefault(logger)

	fetcher := stats.NewClient(cfg.Stats.URL, time.Duration(cfg.Stats.TimeoutSeconds)*time.Second)
	poster := bsky.NewClient(cfg.Bluesky.PDSHost, cfg.Bluesky.Handle, cfg.Bluesky.AppPassword)

	jstore, err := journal.Open(cfg.Storage.SQLitePath)
	if err != nil {
		logger.Warn("run journal unavailable", "path", cfg.Storage.SQLitePath, "err", err)
		jstore = nil
	} else {
		defer jstore.Close()
	}

	runner := job.NewRunner(cfg.Storage.WorkspaceRoot, cfg.Stats.URL, fetcher, poster, jstore, logger, os.Stdout)

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if err := runner.Run(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)

		// Politeness pause toward the endpoint before a transport-failure
		// exit; not a retry.
		var terr *stats.TransportError
		if errors.As(err, &terr) {
			time.Sleep(2 * time.Second)
		}
		return 1
	}
	return 0
}
