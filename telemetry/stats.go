package telemetry

import (
	"log/slog"
	"sort"

	"gonum.org/v1/gonum/stat"

	"github.com/pthm-cable/terrain/filter"
	"github.com/pthm-cable/terrain/grid"
)

// Summary describes the height distribution of a grid after one stage.
type Summary struct {
	Order int     `csv:"order" json:"order"`
	Stage string  `csv:"stage" json:"stage"`
	Size  int     `csv:"size" json:"size"`
	Min   float64 `csv:"min" json:"min"`
	Max   float64 `csv:"max" json:"max"`
	Mean  float64 `csv:"mean" json:"mean"`
	Std   float64 `csv:"std" json:"std"`
	P10   float64 `csv:"p10" json:"p10"`
	P50   float64 `csv:"p50" json:"p50"`
	P90   float64 `csv:"p90" json:"p90"`
}

// Summarize computes the distribution of g's heights.
func Summarize(order int, stage string, g *grid.Grid) Summary {
	sorted := g.Values()
	sort.Float64s(sorted)
	mean, std := stat.MeanStdDev(sorted, nil)
	if len(sorted) < 2 {
		std = 0
	}
	return Summary{
		Order: order,
		Stage: stage,
		Size:  g.Size(),
		Min:   sorted[0],
		Max:   sorted[len(sorted)-1],
		Mean:  mean,
		Std:   std,
		P10:   stat.Quantile(0.10, stat.LinInterp, sorted, nil),
		P50:   stat.Quantile(0.50, stat.LinInterp, sorted, nil),
		P90:   stat.Quantile(0.90, stat.LinInterp, sorted, nil),
	}
}

// LogValue implements slog.LogValuer for structured logging.
func (s Summary) LogValue() slog.Value {
	return slog.GroupValue(
		slog.Int("size", s.Size),
		slog.Float64("min", s.Min),
		slog.Float64("max", s.Max),
		slog.Float64("mean", s.Mean),
		slog.Float64("std", s.Std),
		slog.Float64("p10", s.P10),
		slog.Float64("p50", s.P50),
		slog.Float64("p90", s.P90),
	)
}

// ErosionRecord is one row of erosion.csv.
type ErosionRecord struct {
	Stage       string  `csv:"stage"`
	Iteration   int     `csv:"iteration"`
	WaterBefore float64 `csv:"water_before"`
	Rainfall    float64 `csv:"rainfall"`
	WaterAfter  float64 `csv:"water_after"`
	Sediment    float64 `csv:"sediment"`
	Deposited   float64 `csv:"deposited"`
	MeanHeight  float64 `csv:"mean_height"`
}

// NewErosionRecord flattens a hydraulic iteration report.
func NewErosionRecord(stage string, it filter.HydraulicIteration) ErosionRecord {
	return ErosionRecord{
		Stage:       stage,
		Iteration:   it.Iteration,
		WaterBefore: it.WaterBefore,
		Rainfall:    it.Rainfall,
		WaterAfter:  it.WaterAfter,
		Sediment:    it.Sediment,
		Deposited:   it.Deposited,
		MeanHeight:  it.MeanHeight,
	}
}
