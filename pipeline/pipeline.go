// Package pipeline runs a generator followed by an ordered list of filters,
// timing each stage and recording telemetry along the way.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/pthm-cable/terrain/filter"
	"github.com/pthm-cable/terrain/generator"
	"github.com/pthm-cable/terrain/grid"
	"github.com/pthm-cable/terrain/telemetry"
)

// ErrNoGenerator is returned by Run when the pipeline has no source.
var ErrNoGenerator = errors.New("pipeline: no generator")

// Stage is a named filter step.
type Stage struct {
	Name   string
	Filter filter.Filter
}

// Options controls what a run records besides the final grid.
type Options struct {
	Seed        int64                    // recorded in snapshots
	Output      *telemetry.OutputManager // nil disables CSV output
	SnapshotDir string                   // empty disables snapshots

	// Sink receives the final grid inside the run, timed as the output phase.
	Sink func(*grid.Grid) error
}

// Pipeline is a generator followed by filter stages.
type Pipeline struct {
	gen    generator.Generator
	stages []Stage
	opts   Options

	perf      *telemetry.PerfCollector
	summaries []telemetry.Summary
}

// New assembles a pipeline from its parts.
func New(gen generator.Generator, stages []Stage, opts Options) *Pipeline {
	return &Pipeline{
		gen:    gen,
		stages: stages,
		opts:   opts,
		perf:   telemetry.NewPerfCollector(),
	}
}

// Stages returns the filter stage names in order.
func (p *Pipeline) Stages() []string {
	names := make([]string, len(p.stages))
	for i, s := range p.stages {
		names[i] = s.Name
	}
	return names
}

// Run generates a grid and passes it through every stage. The context is
// checked between stages and passed to filters that accept one.
func (p *Pipeline) Run(ctx context.Context) (*grid.Grid, error) {
	if p.gen == nil {
		return nil, ErrNoGenerator
	}
	p.summaries = p.summaries[:0]

	p.perf.StartRun()
	g, err := p.run(ctx)
	p.perf.EndRun()
	if err != nil {
		return nil, err
	}

	stats := p.perf.Stats()
	slog.Info("pipeline complete", "stages", len(p.stages)+1)
	stats.LogStats()
	if err := p.opts.Output.WriteStages(stats); err != nil {
		return nil, err
	}
	return g, nil
}

func (p *Pipeline) run(ctx context.Context) (*grid.Grid, error) {
	p.perf.StartPhase(telemetry.PhaseGenerate)
	g, err := p.gen.Generate()
	d := p.perf.EndPhase()
	if err != nil {
		return nil, fmt.Errorf("generate: %w", err)
	}
	if err := p.record(0, telemetry.PhaseGenerate, g, d); err != nil {
		return nil, err
	}

	for i, st := range p.stages {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		p.perf.StartPhase(st.Name)
		next, err := filter.ApplyContext(ctx, st.Filter, g)
		d := p.perf.EndPhase()
		if err != nil {
			return nil, fmt.Errorf("stage %d (%s): %w", i+1, st.Name, err)
		}
		g = next
		if err := p.record(i+1, st.Name, g, d); err != nil {
			return nil, err
		}
	}

	if p.opts.Sink != nil {
		p.perf.StartPhase(telemetry.PhaseOutput)
		err := p.opts.Sink(g)
		p.perf.EndPhase()
		if err != nil {
			return nil, fmt.Errorf("output: %w", err)
		}
	}
	return g, nil
}

// record summarizes the grid leaving a stage and writes it to every
// configured sink.
func (p *Pipeline) record(order int, stage string, g *grid.Grid, d time.Duration) error {
	s := telemetry.Summarize(order, stage, g)
	p.summaries = append(p.summaries, s)
	slog.Info("stage complete", "order", order, "stage", stage, "duration_ms", d.Milliseconds(), "heights", s)

	if err := p.opts.Output.WriteSummary(s); err != nil {
		return err
	}
	if p.opts.SnapshotDir != "" {
		path, err := telemetry.SaveSnapshot(telemetry.NewSnapshot(p.opts.Seed, order, stage, g), p.opts.SnapshotDir)
		if err != nil {
			return err
		}
		slog.Debug("snapshot saved", "path", path)
	}
	return nil
}

// Summaries returns the height summary of every stage of the last run,
// starting with the generator.
func (p *Pipeline) Summaries() []telemetry.Summary {
	return append([]telemetry.Summary(nil), p.summaries...)
}

// Perf returns stage timings of the last run.
func (p *Pipeline) Perf() telemetry.PerfStats {
	return p.perf.Stats()
}
