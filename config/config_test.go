package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestDefaultsLoad(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("loading defaults: %v", err)
	}
	if cfg.Sampler.Threshold != 34 {
		t.Errorf("expected threshold 34, got %d", cfg.Sampler.Threshold)
	}
	if cfg.Touch.Size != 64 {
		t.Errorf("expected touch size 64, got %d", cfg.Touch.Size)
	}
	if cfg.Field.SparseTarget != 10 {
		t.Errorf("expected sparse target 10, got %d", cfg.Field.SparseTarget)
	}
	if cfg.Derived.Threshold8 != 34 {
		t.Errorf("expected derived threshold 34, got %d", cfg.Derived.Threshold8)
	}
	if len(cfg.Samples) == 0 {
		t.Error("expected at least one default sample")
	}
}

func TestOverlayOnlyOverridesPresentKeys(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	if err := os.WriteFile(path, []byte("sampler:\n  threshold: 300\n"), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("loading overlay: %v", err)
	}
	if cfg.Sampler.Threshold != 300 {
		t.Errorf("expected raw threshold 300, got %d", cfg.Sampler.Threshold)
	}
	if cfg.Derived.Threshold8 != 255 {
		t.Errorf("expected clamped threshold 255, got %d", cfg.Derived.Threshold8)
	}
	// Untouched sections keep defaults
	if cfg.Camera.Z != 300 {
		t.Errorf("expected default camera z 300, got %f", cfg.Camera.Z)
	}
}

func TestValidation(t *testing.T) {
	tests := []struct {
		name    string
		overlay string
	}{
		{"decay too high", "touch:\n  decay: 1.5\n"},
		{"zero touch size", "touch:\n  size: 0\n"},
		{"negative stride", "field:\n  sparse_stride: -1\n"},
		{"bad device", "input:\n  device: joystick\n"},
	}
	for _, tc := range tests {
		if _, err := Parse([]byte(tc.overlay)); err == nil {
			t.Errorf("%s: expected validation error", tc.name)
		}
	}
}

func TestSparseStride(t *testing.T) {
	cfg, err := Parse(nil)
	if err != nil {
		t.Fatal(err)
	}

	if got := cfg.SparseStride(100); got != 9 {
		t.Errorf("expected auto stride 9 for 100 visible, got %d", got)
	}
	if got := cfg.SparseStride(5); got != 0 {
		t.Errorf("expected stride 0 when visible < target, got %d", got)
	}

	cfg.Field.SparseStride = 4500
	if got := cfg.SparseStride(100); got != 4500 {
		t.Errorf("expected explicit stride 4500, got %d", got)
	}
}

func TestWriteYAMLRoundtrip(t *testing.T) {
	cfg, err := Parse(nil)
	if err != nil {
		t.Fatal(err)
	}
	cfg.Sampler.Threshold = 50

	path := filepath.Join(t.TempDir(), "out.yaml")
	if err := cfg.WriteYAML(path); err != nil {
		t.Fatalf("writing yaml: %v", err)
	}

	loaded, err := Load(path)
	if err != nil {
		t.Fatalf("reloading: %v", err)
	}
	if loaded.Sampler.Threshold != 50 {
		t.Errorf("expected threshold 50 after reload, got %d", loaded.Sampler.Threshold)
	}
}
