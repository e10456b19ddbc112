package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadDefaults(t *testing.T) {
	Reset()
	t.Cleanup(Reset)

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load with defaults failed: %v", err)
	}

	if cfg.Analysis.SegmentSize != 2000 {
		t.Errorf("SegmentSize = %d, want 2000", cfg.Analysis.SegmentSize)
	}
	if cfg.Analysis.MaxConcurrency != 4 {
		t.Errorf("MaxConcurrency = %d, want 4", cfg.Analysis.MaxConcurrency)
	}
	if cfg.Analysis.QualityThreshold != 7.0 {
		t.Errorf("QualityThreshold = %v, want 7.0", cfg.Analysis.QualityThreshold)
	}
	if !cfg.Analysis.EnableReflection {
		t.Error("EnableReflection default should be true")
	}
	if cfg.Cache.Redis.Addr != "localhost:6379" {
		t.Errorf("Redis addr = %q", cfg.Cache.Redis.Addr)
	}
}

func TestLoadFromFile(t *testing.T) {
	Reset()
	t.Cleanup(Reset)

	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	content := []byte("analysis:\n  segment_size: 3000\n  quality_threshold: 8.5\nlogging:\n  level: debug\n")
	if err := os.WriteFile(path, content, 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.Analysis.SegmentSize != 3000 {
		t.Errorf("SegmentSize = %d, want 3000", cfg.Analysis.SegmentSize)
	}
	if cfg.Analysis.QualityThreshold != 8.5 {
		t.Errorf("QualityThreshold = %v, want 8.5", cfg.Analysis.QualityThreshold)
	}
	if cfg.Logging.Level != "debug" {
		t.Errorf("Logging level = %q, want debug", cfg.Logging.Level)
	}
	// Unset keys keep their defaults.
	if cfg.Analysis.MaxReflectionRounds != 2 {
		t.Errorf("MaxReflectionRounds = %d, want default 2", cfg.Analysis.MaxReflectionRounds)
	}
}

func TestValidateConfigBounds(t *testing.T) {
	Reset()
	t.Cleanup(Reset)

	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	if err := os.WriteFile(path, []byte("analysis:\n  segment_size: 50\n"), 0644); err != nil {
		t.Fatal(err)
	}

	if _, err := Load(path); err == nil {
		t.Fatal("Expected validation error for tiny segment size")
	}
}
