package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestDefault(t *testing.T) {
	cfg := Default()
	if cfg.Apply {
		t.Error("default must be dry run")
	}
	if cfg.Concurrency != 1 {
		t.Errorf("default concurrency must be 1, got %d", cfg.Concurrency)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("default config must validate: %v", err)
	}
}

func TestValidateMutualExclusion(t *testing.T) {
	cfg := Default()
	cfg.PolicyOnly = true
	cfg.LoggingOnly = true
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected policy-only + logging-only rejection")
	}
}

func TestValidateConcurrencyBounds(t *testing.T) {
	for _, bad := range []int{0, -1, 17} {
		cfg := Default()
		cfg.Concurrency = bad
		if err := cfg.Validate(); err == nil {
			t.Errorf("expected concurrency %d to be rejected", bad)
		}
	}
	cfg := Default()
	cfg.Concurrency = 16
	if err := cfg.Validate(); err != nil {
		t.Errorf("concurrency 16 should validate: %v", err)
	}
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	content := `apply: true
profile: audit
exclude:
  - keep-this
  - and-this
concurrency: 4
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadFile(path)
	if err != nil {
		t.Fatalf("LoadFile: %v", err)
	}
	if !cfg.Apply || cfg.Profile != "audit" || cfg.Concurrency != 4 {
		t.Errorf("unexpected config %+v", cfg)
	}
	if len(cfg.Exclude) != 2 || cfg.Exclude[0] != "keep-this" {
		t.Errorf("unexpected excludes %v", cfg.Exclude)
	}
}

func TestLoadFileRejectsUnknownKeys(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte("aply: true\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := LoadFile(path); err == nil {
		t.Fatal("expected unknown key rejection")
	}
}

func TestLoadFileMissing(t *testing.T) {
	if _, err := LoadFile(filepath.Join(t.TempDir(), "absent.yaml")); err == nil {
		t.Fatal("expected error for missing file")
	}
}
