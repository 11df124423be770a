package config

import (
	"os"
	"path/filepath"
	"testing"

	"cscan/internal/errors"
)

func TestLoadConfigDefaults(t *testing.T) {
	cfg, err := LoadConfig(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}

	if cfg.Version != 1 {
		t.Errorf("version = %d, want 1", cfg.Version)
	}
	if !cfg.Analysis.FollowIncludes {
		t.Error("defaults should follow includes")
	}
	if cfg.Analysis.Workers != 4 {
		t.Errorf("workers = %d, want 4", cfg.Analysis.Workers)
	}
	if !cfg.Cache.Enabled {
		t.Error("cache should be enabled by default")
	}
}

func TestSaveLoadRoundTrip(t *testing.T) {
	root := t.TempDir()

	cfg := DefaultConfig()
	cfg.IncludePaths = []string{"/opt/vendor/include"}
	cfg.Analysis.Workers = 8
	cfg.Cache.Enabled = false
	if err := cfg.Save(root); err != nil {
		t.Fatal(err)
	}

	loaded, err := LoadConfig(root)
	if err != nil {
		t.Fatal(err)
	}
	if len(loaded.IncludePaths) != 1 || loaded.IncludePaths[0] != "/opt/vendor/include" {
		t.Errorf("includePaths = %v", loaded.IncludePaths)
	}
	if loaded.Analysis.Workers != 8 {
		t.Errorf("workers = %d, want 8", loaded.Analysis.Workers)
	}
	if loaded.Cache.Enabled {
		t.Error("cache.enabled = true, want false")
	}
}

func TestLoadConfigInvalidJSON(t *testing.T) {
	root := t.TempDir()
	dir := filepath.Join(root, ConfigDir)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, "config.json"), []byte("{not json"), 0o644); err != nil {
		t.Fatal(err)
	}

	if _, err := LoadConfig(root); err == nil {
		t.Error("expected error for malformed config")
	}
}

func TestValidate(t *testing.T) {
	cfg := DefaultConfig()
	if err := cfg.Validate(); err != nil {
		t.Errorf("default config must validate: %v", err)
	}

	cfg.Version = 2
	err := cfg.Validate()
	if err == nil {
		t.Fatal("unsupported version must be rejected")
	}
	se, ok := err.(*errors.ScanError)
	if !ok {
		t.Fatalf("error type = %T, want *errors.ScanError", err)
	}
	if se.Code != errors.ConfigInvalid {
		t.Errorf("code = %s, want %s", se.Code, errors.ConfigInvalid)
	}
	details, ok := se.Details.(map[string]interface{})
	if !ok || details["field"] != "version" {
		t.Errorf("details = %v, want the failing field", se.Details)
	}

	cfg = DefaultConfig()
	cfg.Analysis.Workers = -1
	if err := cfg.Validate(); err == nil {
		t.Error("negative workers must be rejected")
	}
}
