// One-shot tool: compile the dated JSON snapshot archive into a single
// consolidated Parquet time series at data/summary/daily.parquet.
//
// Usage:
//
//	go run cmd/history-export/main.go
package main

import (
	"log"
	"os"

	"bskystats/internal/config"
	"bskystats/internal/export"
	"bskystats/internal/util"
)

func main() {
	cfgPath := "config/bskystats.yaml"
	if p := os.Getenv("BSKYSTATS_CONFIG"); p != "" {
		cfgPath = p
	}

	cfg, err := config.Load(cfgPath)
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logger := util.NewLogger(cfg.Logging.Level)
	util.SetDefault(logger)

	rows, err := export.Generate(cfg.Storage.WorkspaceRoot, logger)
	if err != nil {
		log.Fatalf("error: %v", err)
	}

	if rows == 0 {
		logger.Info("no archived snapshots to export")
	} else {
		logger.Info("history export complete", "rows", rows, "path", export.SummaryPath(cfg.Storage.WorkspaceRoot))
	}
}
