// Command terrain generates and erodes a heightmap and writes it as an image.
package main

import (
	"context"
	"flag"
	"log/slog"
	"os"
	"os/signal"
	"runtime"
	"strings"
	"time"

	"github.com/pthm-cable/terrain/config"
	"github.com/pthm-cable/terrain/grid"
	"github.com/pthm-cable/terrain/imageio"
	"github.com/pthm-cable/terrain/pipeline"
	"github.com/pthm-cable/terrain/telemetry"
)

func main() {
	configPath := flag.String("config", "", "Path to config.yaml (empty = use defaults)")
	seed := flag.Int64("seed", 0, "RNG seed (0 = config seed, or time-based if that is 0 too)")
	outPath := flag.String("out", "", "Output image path (.png, .tif, .raw; empty = use config)")
	bitDepth := flag.String("bit-depth", "", "Output bit depth: float, 8, 16, 32 (empty = use config)")
	telemetryDir := flag.String("telemetry-dir", "", "Directory for CSV telemetry and config snapshot")
	snapshotDir := flag.String("snapshot-dir", "", "Directory for per-stage JSON grid snapshots")
	workers := flag.Int("workers", -1, "Tile executor workers (0 = one per CPU, -1 = use config)")
	logLevel := flag.String("log-level", "info", "Log level: debug, info, warn, error")

	flag.Parse()

	// Set up slog (JSON to stdout for structured logging)
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: parseLevel(*logLevel)}))
	slog.SetDefault(logger)

	if err := config.Init(*configPath); err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}
	cfg := config.Cfg()

	// CLI overrides
	if *seed != 0 {
		cfg.Generator.Seed = *seed
	}
	if cfg.Generator.Seed == 0 {
		cfg.Generator.Seed = time.Now().UnixNano()
	}
	if *outPath != "" {
		cfg.Output.Path = *outPath
	}
	if *bitDepth != "" {
		cfg.Output.BitDepth = *bitDepth
	}
	if *telemetryDir != "" {
		cfg.Output.TelemetryDir = *telemetryDir
	}
	if *snapshotDir != "" {
		cfg.Output.SnapshotDir = *snapshotDir
	}
	if *workers >= 0 {
		cfg.Executor.Workers = *workers
		cfg.Derived.Workers = *workers
		if *workers == 0 {
			cfg.Derived.Workers = runtime.GOMAXPROCS(0)
		}
	}

	if err := run(cfg); err != nil {
		slog.Error("terrain failed", "error", err)
		os.Exit(1)
	}
}

func run(cfg *config.Config) error {
	if err := cfg.Validate(); err != nil {
		return err
	}
	depth, err := imageio.ParseBitDepth(cfg.Output.BitDepth)
	if err != nil {
		return err
	}

	om, err := telemetry.NewOutputManager(cfg.Output.TelemetryDir)
	if err != nil {
		return err
	}
	defer om.Close()
	if err := om.WriteConfig(cfg); err != nil {
		return err
	}

	p, err := pipeline.FromConfig(cfg, pipeline.Options{
		Output:      om,
		SnapshotDir: cfg.Output.SnapshotDir,
		Sink: func(g *grid.Grid) error {
			return imageio.Save(cfg.Output.Path, g, depth)
		},
	})
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	g, err := p.Run(ctx)
	if err != nil {
		return err
	}
	slog.Info("heightmap written",
		"path", cfg.Output.Path,
		"bit_depth", depth.String(),
		"size", g.Size(),
		"seed", cfg.Generator.Seed,
	)
	return om.Close()
}

func parseLevel(s string) slog.Level {
	switch strings.ToLower(s) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	}
	return slog.LevelInfo
}
