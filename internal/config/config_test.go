package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

// TestLoadOverridesDefaults verifies file values replace defaults and gaps keep them
func TestLoadOverridesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "forcerun.toml")
	src := `
[game]
seed = 42

[level]
row_spacing = 12.5

[pools]
max_size = 8
[pools.prefabs]
wall = 3

[loop]
tick_rate = "20ms"
max_levels = 2
`
	if err := os.WriteFile(path, []byte(src), 0o644); err != nil {
		t.Fatal(err)
	}
	cfg, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}

	if cfg.Game.Seed != 42 || cfg.Game.Name != "ForceRun" {
		t.Errorf("game = %+v", cfg.Game)
	}
	if cfg.Level.RowSpacing != 12.5 || cfg.Level.SegmentLength != 8 {
		t.Errorf("level = %+v", cfg.Level)
	}
	if cfg.Pools.MaxSize != 8 || cfg.Pools.Prewarm != 10 || cfg.Pools.Prefabs["wall"] != 3 {
		t.Errorf("pools = %+v", cfg.Pools)
	}
	if cfg.Loop.TickRate != 20*time.Millisecond || cfg.Loop.CameraMoveDuration != time.Second {
		t.Errorf("loop = %+v", cfg.Loop)
	}
	if cfg.Game.StartTime == 0 {
		t.Error("start time not stamped")
	}
}

// TestLoadErrors verifies missing and malformed files are reported
func TestLoadErrors(t *testing.T) {
	dir := t.TempDir()
	if _, err := Load(filepath.Join(dir, "absent.toml")); err == nil {
		t.Error("expected read error")
	}
	bad := filepath.Join(dir, "bad.toml")
	os.WriteFile(bad, []byte("[pools\nmax_size = 1"), 0o644)
	if _, err := Load(bad); err == nil {
		t.Error("expected parse error")
	}
}

// TestShippedConfig verifies the bundled config file parses
func TestShippedConfig(t *testing.T) {
	cfg, err := Load("../../config/forcerun.toml")
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Database.DSN != "" {
		t.Errorf("shipped config should keep preferences in memory, got %q", cfg.Database.DSN)
	}
	if cfg.Audio.MaxSoundInstances != 30 || cfg.Pools.MaxSize <= 0 {
		t.Errorf("unexpected config %+v", cfg)
	}
}
