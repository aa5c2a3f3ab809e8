package db

import (
	"path/filepath"
	"testing"

	"marginalia/internal/config"
)

func TestInit_CreatesSchemaAndWAL(t *testing.T) {
	database, err := Init(t.TempDir())
	if err != nil {
		t.Fatalf("Init failed: %v", err)
	}
	defer database.Close()

	version, err := GetUserVersion(database)
	if err != nil {
		t.Fatalf("GetUserVersion failed: %v", err)
	}
	if version != CurrentSchemaVersion {
		t.Errorf("user_version = %d, want %d", version, CurrentSchemaVersion)
	}

	for _, table := range []string{"memory_entries", "snapshots"} {
		var name string
		err := database.QueryRow(
			`SELECT name FROM sqlite_master WHERE type='table' AND name=?`, table,
		).Scan(&name)
		if err != nil {
			t.Errorf("table %s missing: %v", table, err)
		}
	}
}

func TestInit_Reopen(t *testing.T) {
	dir := t.TempDir()

	database, err := Init(dir)
	if err != nil {
		t.Fatalf("first Init failed: %v", err)
	}
	database.Close()

	database, err = Init(dir)
	if err != nil {
		t.Fatalf("second Init failed: %v", err)
	}
	defer database.Close()

	if _, err := Init(filepath.Join(dir, "nested", "deeper")); err != nil {
		t.Errorf("Init with nested dir failed: %v", err)
	}
}

func TestConfigurePool(t *testing.T) {
	database, err := Init(t.TempDir())
	if err != nil {
		t.Fatalf("Init failed: %v", err)
	}
	defer database.Close()

	cfg := config.DefaultConfig()
	cfg.DBMaxOpenConns = 1
	cfg.DBMaxIdleConns = 1
	ConfigurePool(database, cfg)

	if got := database.Stats().MaxOpenConnections; got != 1 {
		t.Errorf("MaxOpenConnections = %d, want 1", got)
	}

	// Nil config is a no-op, not a panic.
	ConfigurePool(database, nil)
}
