package generator

import (
	"errors"
	"fmt"
	"math"

	"github.com/pthm-cable/terrain/grid"
)

// Point is a feature point in grid coordinates.
type Point struct {
	X, Y float64
}

// Voronoi generates cellular terrain where each cell's height is its
// toroidal distance to the nearest feature point, normalized to [0,1].
type Voronoi struct {
	size   int
	points []Point
}

// NewVoronoi configures a generator over the given feature points.
func NewVoronoi(size int, points []Point) *Voronoi {
	p := make([]Point, len(points))
	copy(p, points)
	return &Voronoi{size: max(1, size), points: p}
}

// NewRandomVoronoi scatters count feature points uniformly using seed.
func NewRandomVoronoi(size, count int, seed int64) *Voronoi {
	r := NewRand(seed)
	size = max(1, size)
	points := make([]Point, max(1, count))
	for i := range points {
		points[i] = Point{X: r.Float64() * float64(size), Y: r.Float64() * float64(size)}
	}
	return &Voronoi{size: size, points: points}
}

// Points returns a copy of the feature points.
func (v *Voronoi) Points() []Point {
	out := make([]Point, len(v.points))
	copy(out, v.points)
	return out
}

// Generate implements Generator.
func (v *Voronoi) Generate() (*grid.Grid, error) {
	if len(v.points) == 0 {
		return nil, errors.New("voronoi: no feature points")
	}
	n := float64(v.size)
	g := grid.New(v.size)
	for y := 0; y < v.size; y++ {
		for x := 0; x < v.size; x++ {
			nearest := math.Inf(1)
			for _, p := range v.points {
				dx := torusDelta(float64(x)-p.X, n)
				dy := torusDelta(float64(y)-p.Y, n)
				nearest = min(nearest, dx*dx+dy*dy)
			}
			g.Set(x, y, math.Sqrt(nearest))
		}
	}

	out, err := g.Normalize()
	if err != nil {
		return nil, fmt.Errorf("voronoi: %w", err)
	}
	return out, nil
}

// torusDelta returns the shortest signed distance along a wrapped axis.
func torusDelta(d, n float64) float64 {
	d = math.Mod(d, n)
	if d > n/2 {
		d -= n
	} else if d < -n/2 {
		d += n
	}
	return d
}
