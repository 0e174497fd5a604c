package filter

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/pthm-cable/terrain/grid"
	"github.com/pthm-cable/terrain/tiled"
)

// Neighborhood selects which neighbours exchange material.
type Neighborhood int

const (
	// VonNeumann uses the 4 cardinal neighbours.
	VonNeumann Neighborhood = 4
	// Moore uses the 4 cardinal and 4 diagonal neighbours.
	Moore Neighborhood = 8
)

var (
	cardinal = [][2]int{{0, -1}, {1, 0}, {0, 1}, {-1, 0}}
	moore    = [][2]int{{0, -1}, {1, -1}, {1, 0}, {1, 1}, {0, 1}, {-1, 1}, {-1, 0}, {-1, -1}}
)

// ParseNeighborhood accepts "von_neumann"/"4" and "moore"/"8".
func ParseNeighborhood(s string) (Neighborhood, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "von_neumann", "vonneumann", "cardinal", "4", "":
		return VonNeumann, nil
	case "moore", "8":
		return Moore, nil
	}
	return 0, fmt.Errorf("unknown neighborhood %q", s)
}

func (n Neighborhood) offsets() [][2]int {
	if n == Moore {
		return moore
	}
	return cardinal
}

func (n Neighborhood) String() string {
	if n == Moore {
		return "moore"
	}
	return "von_neumann"
}

// Parameter bounds for Thermal.
const (
	MinThermalIterations = 10
	MinThermalPower      = 0.01
	MaxThermalPower      = 1.0
	talusScale           = 1000.0
)

// Thermal erodes slopes steeper than the talus angle. Each pass reads only
// the previous pass's heights, so a pass can be split into tiles.
type Thermal struct {
	iterations   int
	power        float64
	talus        float64
	neighborhood Neighborhood

	exec     *tiled.Executor
	tileEdge int
}

// NewThermal configures thermal erosion. iterations is raised to at least
// 10, power is clamped to [0.01, 1] and talusAngle is divided by 1000 to
// give the critical height difference.
func NewThermal(iterations int, power, talusAngle float64, n Neighborhood) *Thermal {
	if n != Moore {
		n = VonNeumann
	}
	return &Thermal{
		iterations:   max(MinThermalIterations, iterations),
		power:        max(MinThermalPower, min(MaxThermalPower, power)),
		talus:        max(0, talusAngle) / talusScale,
		neighborhood: n,
	}
}

// WithExecutor returns a copy of t that computes every pass tile by tile.
// The result is identical to the single-threaded filter.
func (t *Thermal) WithExecutor(e *tiled.Executor, tileEdge int) *Thermal {
	c := *t
	c.exec = e
	c.tileEdge = tileEdge
	return &c
}

// Iterations returns the clamped iteration count.
func (t *Thermal) Iterations() int { return t.iterations }

// Power returns the clamped erosion power.
func (t *Thermal) Power() float64 { return t.power }

// Talus returns the critical height difference.
func (t *Thermal) Talus() float64 { return t.talus }

// Neighborhood returns the neighbour set in use.
func (t *Thermal) Neighborhood() Neighborhood { return t.neighborhood }

// Apply implements Filter.
func (t *Thermal) Apply(g *grid.Grid) (*grid.Grid, error) {
	return t.ApplyContext(context.Background(), g)
}

// ApplyContext implements ContextFilter.
func (t *Thermal) ApplyContext(ctx context.Context, g *grid.Grid) (*grid.Grid, error) {
	cur := g
	for i := 0; i < t.iterations; i++ {
		slog.Debug("thermal erosion", "iteration", i+1, "pct", 100*i/t.iterations)

		var next *grid.Grid
		if t.exec == nil {
			next = t.Pass(cur)
		} else {
			var err error
			next, err = t.exec.Run(ctx, cur, t.tileEdge, t.passTile)
			if err != nil {
				return nil, fmt.Errorf("thermal pass %d: %w", i+1, err)
			}
		}
		cur = next
	}
	return cur, nil
}

// Pass runs a single erosion step over the whole grid.
func (t *Thermal) Pass(src *grid.Grid) *grid.Grid {
	n := src.Size()
	out := grid.New(n)
	for y := 0; y < n; y++ {
		for x := 0; x < n; x++ {
			out.Set(x, y, t.erodeCell(src, x, y))
		}
	}
	return out
}

func (t *Thermal) passTile(src *grid.Grid, tile tiled.Tile) (*grid.Region, error) {
	r := grid.NewRegion(tile.W, tile.H)
	for dy := 0; dy < tile.H; dy++ {
		for dx := 0; dx < tile.W; dx++ {
			r.Set(dx, dy, t.erodeCell(src, tile.X+dx, tile.Y+dy))
		}
	}
	return r, nil
}

// erodeCell sums the downhill differences above the talus threshold and
// removes power/directions of that sum from the cell.
func (t *Thermal) erodeCell(src *grid.Grid, x, y int) float64 {
	h := src.Get(x, y)
	offsets := t.neighborhood.offsets()
	var excess float64
	for _, o := range offsets {
		d := h - src.Get(x+o[0], y+o[1])
		d = max(0, min(1, d))
		if d > t.talus {
			excess += d - t.talus
		}
	}
	return h - excess*t.power/float64(len(offsets))
}
