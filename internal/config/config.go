package config

import (
	"os"
	"path/filepath"
	"strconv"

	"gopkg.in/yaml.v3"
)

// ---------------------------------------------------------------------------
// Configuration structs
// ---------------------------------------------------------------------------

// Config is the top-level configuration for the bskystats job.
type Config struct {
	Storage Storage `yaml:"storage"`
	Stats   Stats   `yaml:"stats"`
	Bluesky Bluesky `yaml:"bluesky"`
	Logging Logging `yaml:"logging"`
}

// Storage holds paths for data persistence. WorkspaceRoot is the directory
// the data/ archive tree lives under.
type Storage struct {
	WorkspaceRoot string `yaml:"workspace_root"`
	SQLitePath    string `yaml:"sqlite_path"`
}

// Stats holds the statistics endpoint and fetch timeout.
type Stats struct {
	URL            string `yaml:"url"`
	TimeoutSeconds int    `yaml:"timeout_seconds"`
}

// Bluesky holds credentials and the PDS entryway for posting.
type Bluesky struct {
	Handle      string `yaml:"handle"`
	AppPassword string `yaml:"app_password"`
	PDSHost     string `yaml:"pds_host"`
}

// Logging configures the application logger.
type Logging struct {
	Level string `yaml:"level"`
}

// Default returns the built-in configuration used when no config file is
// present. The job is normally driven from CI with environment overrides
// only.
func Default() *Config {
	return &Config{
		Storage: Storage{
			WorkspaceRoot: ".",
		},
		Stats: Stats{
			URL:            "https://bsky-stats.lut.li/",
			TimeoutSeconds: 20,
		},
		Bluesky: Bluesky{
			PDSHost: "https://bsky.social",
		},
		Logging: Logging{
			Level: "info",
		},
	}
}

// ---------------------------------------------------------------------------
// Loading
// ---------------------------------------------------------------------------

// Load reads the YAML configuration file at the given path into the default
// configuration and then applies environment variable overrides. A missing
// config file is not an error; defaults plus environment apply.
func Load(path string) (*Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err == nil {
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, err
		}
	} else if !os.IsNotExist(err) {
		return nil, err
	}

	applyEnvOverrides(cfg)

	if cfg.Storage.SQLitePath == "" {
		cfg.Storage.SQLitePath = filepath.Join(cfg.Storage.WorkspaceRoot, "bskystats.db")
	}

	return cfg, nil
}

// applyEnvOverrides checks well-known environment variables and overrides
// the corresponding configuration fields when they are set.
func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("GITHUB_WORKSPACE"); v != "" {
		cfg.Storage.WorkspaceRoot = v
	}

	if v := os.Getenv("SQLITE_PATH"); v != "" {
		cfg.Storage.SQLitePath = v
	}

	if v := os.Getenv("STATS_URL"); v != "" {
		cfg.Stats.URL = v
	}

	if v := os.Getenv("STATS_TIMEOUT_SECONDS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Stats.TimeoutSeconds = n
		}
	}

	if v := os.Getenv("BSKY_HANDLE"); v != "" {
		cfg.Bluesky.Handle = v
	}

	if v := os.Getenv("BSKY_APP_PASSWORD"); v != "" {
		cfg.Bluesky.AppPassword = v
	}

	if v := os.Getenv("BSKY_PDS_HOST"); v != "" {
		cfg.Bluesky.PDSHost = v
	}

	if v := os.Getenv("LOG_LEVEL"); v != "" {
		cfg.Logging.Level = v
	}
}
