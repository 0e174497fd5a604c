package filter

import (
	"log/slog"

	"gonum.org/v1/gonum/floats"

	"github.com/pthm-cable/terrain/grid"
)

// Parameter bounds for Hydraulic. Values outside are clamped.
const (
	MinHydraulicIterations = 2
	MinRainfall            = 0.001
	MaxRainfall            = 0.05
	MinEvaporation         = 0.001
	MaxEvaporation         = 0.05
	MinCapacity            = 0.1
	MaxCapacity            = 3.0
	MinSolubility          = 0.0001
	MaxSolubility          = 0.1

	// flatBias is the gradient magnitude below which a cell keeps its water.
	flatBias = 0.001
)

// HydraulicParams configures hydraulic erosion.
type HydraulicParams struct {
	Iterations  int
	Rainfall    float64 // water added to every cell per iteration
	Solubility  float64 // height dissolved into sediment per iteration
	Capacity    float64 // deposition per iteration is capacity minus the cell's sediment
	Evaporation float64 // fraction of water lost per iteration
}

// DefaultHydraulicParams returns a moderate configuration.
func DefaultHydraulicParams() HydraulicParams {
	return HydraulicParams{
		Iterations:  50,
		Rainfall:    0.012,
		Solubility:  0.01,
		Capacity:    1.0,
		Evaporation: 0.015,
	}
}

func (p HydraulicParams) clamped() HydraulicParams {
	return HydraulicParams{
		Iterations:  max(MinHydraulicIterations, p.Iterations),
		Rainfall:    max(MinRainfall, min(MaxRainfall, p.Rainfall)),
		Solubility:  max(MinSolubility, min(MaxSolubility, p.Solubility)),
		Capacity:    max(MinCapacity, min(MaxCapacity, p.Capacity)),
		Evaporation: max(MinEvaporation, min(MaxEvaporation, p.Evaporation)),
	}
}

// HydraulicIteration summarizes the state after one iteration.
type HydraulicIteration struct {
	Iteration   int
	WaterBefore float64 // total water at the start of the iteration
	Rainfall    float64 // total water added by rain
	WaterAfter  float64 // total water after evaporation
	Sediment    float64 // total suspended sediment
	Deposited   float64 // sediment returned to the terrain this iteration
	MeanHeight  float64
}

// HydraulicResult is the eroded heightmap plus diagnostic maps.
type HydraulicResult struct {
	Heights    *grid.Grid
	Difference *grid.Grid // Heights minus the input
	Sediment   *grid.Grid
	Water      *grid.Grid
}

// Hydraulic simulates rainfall, dissolution, water transport and
// evaporation. The simulation is sequential over the whole grid.
type Hydraulic struct {
	params  HydraulicParams
	observe func(HydraulicIteration)
}

// NewHydraulic configures hydraulic erosion with clamped parameters.
func NewHydraulic(p HydraulicParams) *Hydraulic {
	return &Hydraulic{params: p.clamped()}
}

// Params returns the clamped parameters.
func (h *Hydraulic) Params() HydraulicParams { return h.params }

// OnIteration registers fn to be called after every iteration.
func (h *Hydraulic) OnIteration(fn func(HydraulicIteration)) {
	h.observe = fn
}

// Apply implements Filter.
func (h *Hydraulic) Apply(g *grid.Grid) (*grid.Grid, error) {
	res, err := h.Erode(g)
	if err != nil {
		return nil, err
	}
	return res.Heights, nil
}

// Erode runs the simulation and returns the heightmap with its side maps.
func (h *Hydraulic) Erode(g *grid.Grid) (*HydraulicResult, error) {
	p := h.params
	n := g.Size()
	cells := n * n

	heights := g.Values()
	sediment := make([]float64, cells)
	water := make([]float64, cells)
	moved := make([]float64, cells)

	for it := 0; it < p.Iterations; it++ {
		slog.Debug("hydraulic erosion", "iteration", it+1, "pct", 100*it/p.Iterations)
		before := floats.Sum(water)

		// Rainfall.
		floats.AddConst(p.Rainfall, water)

		// Dissolution, never below zero.
		for i, v := range heights {
			amt := min(p.Solubility, max(0, v))
			heights[i] -= amt
			sediment[i] += amt
		}

		// Transport: all water of a cell moves to its downhill neighbour.
		clear(moved)
		for y := 0; y < n; y++ {
			for x := 0; x < n; x++ {
				i := y*n + x
				dx, dy := downhill(heights, water, n, x, y)
				if dx == 0 && dy == 0 {
					moved[i] += water[i]
					continue
				}
				moved[grid.Wrap(y+dy, n)*n+grid.Wrap(x+dx, n)] += water[i]
			}
		}
		water, moved = moved, water

		// Evaporation and deposition.
		floats.Scale(1-p.Evaporation, water)
		var deposited float64
		for i, s := range sediment {
			d := max(0, p.Capacity-s)
			sediment[i] -= d
			heights[i] += d
			deposited += d
		}

		if h.observe != nil {
			h.observe(HydraulicIteration{
				Iteration:   it + 1,
				WaterBefore: before,
				Rainfall:    p.Rainfall * float64(cells),
				WaterAfter:  floats.Sum(water),
				Sediment:    floats.Sum(sediment),
				Deposited:   deposited,
				MeanHeight:  floats.Sum(heights) / float64(cells),
			})
		}
	}

	out, err := grid.FromArray(rows(heights, n))
	if err != nil {
		return nil, err
	}
	sed, err := grid.FromArray(rows(sediment, n))
	if err != nil {
		return nil, err
	}
	wat, err := grid.FromArray(rows(water, n))
	if err != nil {
		return nil, err
	}
	return &HydraulicResult{
		Heights:    out,
		Difference: out.Sub(g),
		Sediment:   sed,
		Water:      wat,
	}, nil
}

// downhill returns the step towards the lower neighbour along each axis,
// from the central-difference gradient of the water surface.
func downhill(heights, water []float64, n, x, y int) (int, int) {
	surface := func(px, py int) float64 {
		i := grid.Wrap(py, n)*n + grid.Wrap(px, n)
		return heights[i] + water[i]
	}
	gx := (surface(x+1, y) - surface(x-1, y)) / 2
	gy := (surface(x, y+1) - surface(x, y-1)) / 2
	return -sign(gx), -sign(gy)
}

func sign(v float64) int {
	switch {
	case v > flatBias:
		return 1
	case v < -flatBias:
		return -1
	}
	return 0
}

func rows(cells []float64, n int) [][]float64 {
	out := make([][]float64, n)
	for y := range out {
		out[y] = cells[y*n : (y+1)*n]
	}
	return out
}
