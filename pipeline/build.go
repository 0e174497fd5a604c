package pipeline

import (
	"fmt"
	"log/slog"

	"github.com/pthm-cable/terrain/config"
	"github.com/pthm-cable/terrain/filter"
	"github.com/pthm-cable/terrain/generator"
	"github.com/pthm-cable/terrain/imageio"
	"github.com/pthm-cable/terrain/telemetry"
	"github.com/pthm-cable/terrain/tiled"
)

// FromConfig builds the generator and filter stages described by cfg.
// Hydraulic iterations are streamed to opts.Output.
func FromConfig(cfg *config.Config, opts Options) (*Pipeline, error) {
	opts.Seed = cfg.Generator.Seed

	gen, err := NewGenerator(cfg)
	if err != nil {
		return nil, err
	}

	exec := tiled.New(cfg.Derived.Workers)
	edge := cfg.Executor.TileEdge
	stages := make([]Stage, 0, len(cfg.Filters))
	for i, name := range cfg.Filters {
		f, err := newFilter(cfg, name, exec, edge, opts.Output)
		if err != nil {
			return nil, fmt.Errorf("filters[%d]: %w", i, err)
		}
		stages = append(stages, Stage{Name: name, Filter: f})
	}

	slog.Info("pipeline configured",
		"generator", cfg.Generator.Kind,
		"seed", cfg.Generator.Seed,
		"filters", cfg.Filters,
		"workers", exec.Workers(),
		"tile_edge", edge,
	)
	return New(gen, stages, opts), nil
}

// NewGenerator builds the configured source generator.
func NewGenerator(cfg *config.Config) (generator.Generator, error) {
	g := cfg.Generator
	switch g.Kind {
	case config.KindDiamondSquare:
		return generator.NewDiamondSquare(g.SizeExponent, g.Roughness, g.Seed), nil
	case config.KindSimplex:
		return generator.NewSimplex(cfg.Derived.Side, generator.SimplexParams{
			Scale:      g.Simplex.Scale,
			Octaves:    g.Simplex.Octaves,
			Lacunarity: g.Simplex.Lacunarity,
			Gain:       g.Simplex.Gain,
		}, g.Seed), nil
	case config.KindVoronoi:
		return generator.NewRandomVoronoi(cfg.Derived.Side, g.Voronoi.Points, g.Seed), nil
	case config.KindImage:
		return imageio.NewImageGenerator(cfg.Input.Path, cfg.Input.Resample), nil
	}
	return nil, fmt.Errorf("unknown generator kind %q", g.Kind)
}

func newFilter(cfg *config.Config, name string, exec *tiled.Executor, edge int, om *telemetry.OutputManager) (filter.Filter, error) {
	switch name {
	case config.FilterThermal:
		n, err := filter.ParseNeighborhood(cfg.Thermal.Neighborhood)
		if err != nil {
			return nil, err
		}
		t := filter.NewThermal(cfg.Thermal.Iterations, cfg.Thermal.Power, cfg.Thermal.TalusAngle, n)
		if cfg.Thermal.Tiled {
			t = t.WithExecutor(exec, edge)
		}
		return t, nil

	case config.FilterHydraulic:
		h := filter.NewHydraulic(filter.HydraulicParams{
			Iterations:  cfg.Hydraulic.Iterations,
			Rainfall:    cfg.Hydraulic.Rainfall,
			Solubility:  cfg.Hydraulic.Solubility,
			Capacity:    cfg.Hydraulic.Capacity,
			Evaporation: cfg.Hydraulic.Evaporation,
		})
		if om != nil {
			h.OnIteration(func(it filter.HydraulicIteration) {
				if err := om.WriteErosion(telemetry.NewErosionRecord(name, it)); err != nil {
					slog.Warn("erosion telemetry", "error", err)
				}
			})
		}
		return h, nil

	case config.FilterStrata:
		return filter.NewStrata(cfg.Strata.Levels, exec, edge), nil
	}
	return nil, fmt.Errorf("unknown filter %q", name)
}
