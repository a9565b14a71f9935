package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestDefaultIsValid(t *testing.T) {
	if err := Default().Validate(); err != nil {
		t.Fatalf("default config should validate, got %v", err)
	}
}

func TestLoadMissingFileReturnsDefault(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "missing.toml"))
	if err != nil {
		t.Fatal(err)
	}
	if cfg.MaxBattery != Default().MaxBattery {
		t.Fatalf("expected default max_battery on missing file")
	}
}

func TestLoadOverlaysFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cfg.toml")
	content := "min_cns_threshold = 70\nmax_battery = 300.0\n"
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}
	cfg, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.MinCNSThreshold != 70 || cfg.MaxBattery != 300.0 {
		t.Fatalf("expected overlay values, got %+v", cfg)
	}
	if cfg.RingCapacity != Default().RingCapacity {
		t.Fatalf("expected unspecified fields to keep defaults")
	}
}

func TestValidateRejectsBadDifficultyRange(t *testing.T) {
	cfg := Default()
	cfg.DifficultyMinBits = 25
	cfg.DifficultyMaxBits = 20
	if err := cfg.Validate(); err == nil {
		t.Fatalf("expected error for inverted difficulty range")
	}
}
