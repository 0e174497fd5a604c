package telemetry

import (
	"log/slog"
	"time"
)

// Phase names for pipeline stages. Filters use their configured name.
const (
	PhaseGenerate = "generate"
	PhaseOutput   = "output"
)

// PerfCollector times the phases of one pipeline run.
type PerfCollector struct {
	phases      map[string]time.Duration
	order       []string
	runStart    time.Time
	runDuration time.Duration
	phaseStart  time.Time
	lastPhase   string
}

// NewPerfCollector creates a new performance collector.
func NewPerfCollector() *PerfCollector {
	return &PerfCollector{phases: make(map[string]time.Duration)}
}

// StartRun begins timing a pipeline run, discarding the previous one.
func (p *PerfCollector) StartRun() {
	p.runStart = time.Now()
	p.runDuration = 0
	p.phases = make(map[string]time.Duration)
	p.order = p.order[:0]
	p.lastPhase = ""
}

// StartPhase ends the previous phase, if any, and begins timing phase.
// A repeated phase name accumulates.
func (p *PerfCollector) StartPhase(phase string) {
	now := time.Now()
	if p.lastPhase != "" {
		p.phases[p.lastPhase] += now.Sub(p.phaseStart)
	}
	if _, ok := p.phases[phase]; !ok {
		p.phases[phase] = 0
		p.order = append(p.order, phase)
	}
	p.phaseStart = now
	p.lastPhase = phase
}

// EndPhase ends the current phase and returns its duration.
func (p *PerfCollector) EndPhase() time.Duration {
	if p.lastPhase == "" {
		return 0
	}
	d := time.Since(p.phaseStart)
	p.phases[p.lastPhase] += d
	p.lastPhase = ""
	return d
}

// EndRun finishes timing the current run.
func (p *PerfCollector) EndRun() {
	p.EndPhase()
	p.runDuration = time.Since(p.runStart)
}

// PerfStats holds the timings of one run.
type PerfStats struct {
	RunDuration time.Duration

	// Phases in first-seen order
	Phases     []string
	PhaseTotal map[string]time.Duration
	PhasePct   map[string]float64
}

// Stats returns the timings of the last finished run.
func (p *PerfCollector) Stats() PerfStats {
	stats := PerfStats{
		RunDuration: p.runDuration,
		Phases:      append([]string(nil), p.order...),
		PhaseTotal:  make(map[string]time.Duration, len(p.phases)),
		PhasePct:    make(map[string]float64, len(p.phases)),
	}
	for phase, d := range p.phases {
		stats.PhaseTotal[phase] = d
		if p.runDuration > 0 {
			stats.PhasePct[phase] = float64(d) / float64(p.runDuration) * 100
		}
	}
	return stats
}

// LogStats logs performance statistics.
func (s PerfStats) LogStats() {
	attrs := []any{"run_ms", s.RunDuration.Milliseconds()}
	for _, phase := range s.Phases {
		attrs = append(attrs,
			phase+"_ms", s.PhaseTotal[phase].Milliseconds(),
			phase+"_pct", int(s.PhasePct[phase]*10)/10.0,
		)
	}
	slog.Info("perf", attrs...)
}

// StageTimingCSV is one row of stages.csv.
type StageTimingCSV struct {
	Order      int     `csv:"order"`
	Stage      string  `csv:"stage"`
	DurationUS int64   `csv:"duration_us"`
	Pct        float64 `csv:"pct"`
}

// ToCSV flattens the phase timings in stage order.
func (s PerfStats) ToCSV() []StageTimingCSV {
	rows := make([]StageTimingCSV, 0, len(s.Phases))
	for i, phase := range s.Phases {
		rows = append(rows, StageTimingCSV{
			Order:      i,
			Stage:      phase,
			DurationUS: s.PhaseTotal[phase].Microseconds(),
			Pct:        s.PhasePct[phase],
		})
	}
	return rows
}
