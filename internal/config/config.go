package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
)

// Config holds application configuration. Matching thresholds are not
// configurable: they are a fixed behavioral contract of the engine.
type Config struct {
	// SnapshotRetention is the maximum number of reconciliation snapshots
	// kept per document. Older snapshots are pruned on insert. 0 keeps all.
	SnapshotRetention int `json:"snapshot_retention,omitempty"`

	// LogLevel is the slog level name: debug, info, warn, error.
	LogLevel string `json:"log_level,omitempty"`

	// LogFormat selects the slog handler: "text" or "json".
	LogFormat string `json:"log_format,omitempty"`

	// DBMaxOpenConns limits the maximum number of open database connections.
	// If set to 1, all database access is serialized (reduces "database is
	// locked" errors). 0 means use sql.DB default.
	DBMaxOpenConns int `json:"db_max_open_conns,omitempty"`

	// DBMaxIdleConns limits the maximum number of idle database connections.
	// 0 means use sql.DB default. Typically set equal to DBMaxOpenConns.
	DBMaxIdleConns int `json:"db_max_idle_conns,omitempty"`

	// DisabledTools is a list of MCP tool names to exclude from registration.
	// Unknown tool names are logged as warnings.
	DisabledTools []string `json:"disabled_tools,omitempty"`
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		SnapshotRetention: 50,
		LogLevel:          "info",
		LogFormat:         "text",
	}
}

// DefaultBaseDir returns ~/.marginalia, the default data directory.
func DefaultBaseDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("resolve home directory: %w", err)
	}
	return filepath.Join(home, ".marginalia"), nil
}

// Load reads baseDir/config.json, applying defaults for absent fields. A
// missing file yields the defaults; a malformed file is an error.
func Load(baseDir string) (*Config, error) {
	cfg := DefaultConfig()

	path := filepath.Join(baseDir, "config.json")
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return cfg, nil
		}
		return nil, fmt.Errorf("read config: %w", err)
	}

	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}
	if cfg.SnapshotRetention < 0 {
		return nil, fmt.Errorf("parse config %s: snapshot_retention must not be negative", path)
	}
	if cfg.LogLevel == "" {
		cfg.LogLevel = "info"
	}
	if cfg.LogFormat == "" {
		cfg.LogFormat = "text"
	}
	return cfg, nil
}
