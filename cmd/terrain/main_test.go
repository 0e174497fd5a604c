package main

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/pthm-cable/terrain/config"
	"github.com/pthm-cable/terrain/imageio"
)

func TestParseLevel(t *testing.T) {
	tests := map[string]slog.Level{
		"debug": slog.LevelDebug,
		"INFO":  slog.LevelInfo,
		"warn":  slog.LevelWarn,
		"error": slog.LevelError,
		"bogus": slog.LevelInfo,
	}
	for in, want := range tests {
		if got := parseLevel(in); got != want {
			t.Errorf("parseLevel(%q) = %v, want %v", in, got, want)
		}
	}
}

func TestRunWritesImageAndTelemetry(t *testing.T) {
	dir := t.TempDir()
	cfg, err := config.Load("")
	if err != nil {
		t.Fatal(err)
	}
	cfg.Generator.SizeExponent = 4
	cfg.Derived.Side = 17
	cfg.Generator.Seed = 3
	cfg.Thermal.Iterations = 10
	cfg.Hydraulic.Iterations = 3
	cfg.Output.Path = filepath.Join(dir, "out.png")
	cfg.Output.TelemetryDir = filepath.Join(dir, "telemetry")

	if err := run(cfg); err != nil {
		t.Fatal(err)
	}

	g, err := imageio.Load(cfg.Output.Path, 0)
	if err != nil {
		t.Fatal(err)
	}
	if g.Size() != 17 {
		t.Errorf("expected 17x17 image, got %d", g.Size())
	}
	for _, name := range []string{"config.yaml", "erosion.csv", "stages.csv", "summary.csv"} {
		if _, err := os.Stat(filepath.Join(cfg.Output.TelemetryDir, name)); err != nil {
			t.Errorf("expected %s: %v", name, err)
		}
	}
}

func TestRunRejectsBadDepth(t *testing.T) {
	cfg, err := config.Load("")
	if err != nil {
		t.Fatal(err)
	}
	cfg.Output.BitDepth = "12"
	if err := run(cfg); err == nil {
		t.Error("expected error for unsupported bit depth")
	}
}
