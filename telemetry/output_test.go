package telemetry

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/pthm-cable/pointfield/config"
	"github.com/pthm-cable/pointfield/field"
)

func readLines(t *testing.T, path string) []string {
	t.Helper()
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("reading %s: %v", filepath.Base(path), err)
	}
	return strings.Split(strings.TrimSpace(string(data)), "\n")
}

func TestOutputManagerDisabled(t *testing.T) {
	om, err := NewOutputManager("")
	if err != nil || om != nil {
		t.Fatalf("empty dir should disable output, got %v, %v", om, err)
	}
	// Nil manager is safe to use
	if err := om.WriteWindow(WindowStats{}); err != nil {
		t.Errorf("nil WriteWindow: %v", err)
	}
	if err := om.WriteInstall(InstallRecord{}); err != nil {
		t.Errorf("nil WriteInstall: %v", err)
	}
	if err := om.Close(); err != nil {
		t.Errorf("nil Close: %v", err)
	}
}

func TestOutputManagerWrites(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "run")
	om, err := NewOutputManager(dir)
	if err != nil {
		t.Fatalf("NewOutputManager: %v", err)
	}

	for i := 0; i < 2; i++ {
		if err := om.WriteWindow(WindowStats{Window: i, Frames: 60, Source: "a.png"}); err != nil {
			t.Fatalf("WriteWindow: %v", err)
		}
	}
	ft := FrameTiming{Window: 0, Frames: 60, Phases: map[string]PhaseTiming{
		PhaseField: {Mean: 2 * time.Millisecond, P95: 3 * time.Millisecond},
	}}
	if err := om.WriteTiming(ft); err != nil {
		t.Fatalf("WriteTiming: %v", err)
	}
	installs := []field.Install{
		{Source: "a.png", Width: 4, Height: 2, Primary: 8, Interactive: 2, Decode: 1500 * time.Microsecond},
		{Source: "b.png", Advance: true, Stride: 3, Wait: 800 * time.Millisecond},
	}
	for i, in := range installs {
		if err := om.WriteInstall(NewInstallRecord(i, float64(i), in)); err != nil {
			t.Fatalf("WriteInstall: %v", err)
		}
	}

	cfg, err := config.Load("")
	if err != nil {
		t.Fatalf("config.Load: %v", err)
	}
	if err := om.WriteConfig(cfg); err != nil {
		t.Fatalf("WriteConfig: %v", err)
	}
	if err := om.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	lines := readLines(t, filepath.Join(dir, WindowsFile))
	if len(lines) != 3 {
		t.Fatalf("expected header and 2 rows, got %d lines", len(lines))
	}
	if !strings.HasPrefix(lines[0], "window,time,source,frames") {
		t.Errorf("unexpected header %q", lines[0])
	}

	timing := readLines(t, filepath.Join(dir, TimingFile))
	if len(timing) != 2 || !strings.Contains(timing[1], ",2000,3000,") {
		t.Errorf("unexpected timing rows %q", timing)
	}

	rows := readLines(t, filepath.Join(dir, InstallsFile))
	if len(rows) != 3 {
		t.Fatalf("expected header and 2 installs, got %d lines", len(rows))
	}
	if !strings.HasPrefix(rows[0], "seq,time,source,mode") {
		t.Errorf("unexpected installs header %q", rows[0])
	}
	if !strings.Contains(rows[1], "a.png,load,4,2,8,2,0,1.5,") {
		t.Errorf("unexpected load row %q", rows[1])
	}
	if !strings.Contains(rows[2], "b.png,advance,") || !strings.HasSuffix(rows[2], ",800") {
		t.Errorf("unexpected advance row %q", rows[2])
	}

	if _, err := os.Stat(filepath.Join(dir, ConfigFile)); err != nil {
		t.Errorf("config snapshot missing: %v", err)
	}
}
