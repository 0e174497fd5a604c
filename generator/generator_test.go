package generator

import (
	"errors"
	"testing"

	"github.com/pthm-cable/terrain/grid"
)

func bitIdentical(a, b *grid.Grid) bool {
	if a.Size() != b.Size() {
		return false
	}
	av, bv := a.Values(), b.Values()
	for i := range av {
		if av[i] != bv[i] {
			return false
		}
	}
	return true
}

func TestDiamondSquareSize(t *testing.T) {
	g, err := NewDiamondSquare(5, 0.1, 1).Generate()
	if err != nil {
		t.Fatal(err)
	}
	if g.Size() != 33 {
		t.Errorf("expected size 33, got %d", g.Size())
	}
}

func TestDiamondSquareClampsParameters(t *testing.T) {
	tests := []struct {
		name          string
		exponent      int
		roughness     float64
		wantSide      int
		wantRoughness float64
	}{
		{"in range", 4, 0.2, 17, 0.2},
		{"exponent too small", 0, 0.2, 3, 0.2},
		{"exponent too large", 40, 0.2, 1<<MaxSizeExponent + 1, 0.2},
		{"roughness zero", 3, 0, 9, MinRoughness},
		{"roughness too large", 3, 5, 9, MaxRoughness},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := NewDiamondSquare(tt.exponent, tt.roughness, 0)
			if d.Side() != tt.wantSide {
				t.Errorf("expected side %d, got %d", tt.wantSide, d.Side())
			}
			if d.Roughness() != tt.wantRoughness {
				t.Errorf("expected roughness %v, got %v", tt.wantRoughness, d.Roughness())
			}
		})
	}
}

func TestDiamondSquareSameSeed(t *testing.T) {
	for i := 1; i <= 5; i++ {
		roughness := float64(i) / 10
		seed := int64(i * 7919)
		a, err := NewDiamondSquare(5, roughness, seed).Generate()
		if err != nil {
			t.Fatal(err)
		}
		b, err := NewDiamondSquare(5, roughness, seed).Generate()
		if err != nil {
			t.Fatal(err)
		}
		if !bitIdentical(a, b) {
			t.Errorf("roughness %v: same seed produced different output", roughness)
		}
	}
}

func TestDiamondSquareRepeatedCallsIdentical(t *testing.T) {
	d := NewDiamondSquare(6, 0.2, 99)
	a, _ := d.Generate()
	b, _ := d.Generate()
	if !bitIdentical(a, b) {
		t.Error("repeated Generate calls differ")
	}
}

func TestDiamondSquareDifferentSeeds(t *testing.T) {
	for i := 1; i <= 5; i++ {
		roughness := float64(i) / 10
		a, _ := NewDiamondSquare(5, roughness, int64(i)).Generate()
		b, _ := NewDiamondSquare(5, roughness, int64(i)+1_000_003).Generate()
		if a.Equal(b) {
			t.Errorf("roughness %v: distinct seeds produced equal output", roughness)
		}
	}
}

func TestDiamondSquareNormalized(t *testing.T) {
	for _, exp := range []int{1, 2, 5, 7} {
		g, err := NewDiamondSquare(exp, 0.3, int64(exp)).Generate()
		if err != nil {
			t.Fatalf("exponent %d: %v", exp, err)
		}
		if g.Min() != 0 {
			t.Errorf("exponent %d: expected min 0, got %v", exp, g.Min())
		}
		if g.Max() != 1 {
			t.Errorf("exponent %d: expected max 1, got %v", exp, g.Max())
		}
	}
}

func TestDiamondSquareFillsEdges(t *testing.T) {
	g, err := NewDiamondSquare(4, 0.5, 3).Generate()
	if err != nil {
		t.Fatal(err)
	}
	last := g.Size() - 1
	distinct := make(map[float64]bool)
	for i := 0; i <= last; i++ {
		distinct[g.Get(last, i)] = true
		distinct[g.Get(i, last)] = true
	}
	if len(distinct) < last {
		t.Errorf("expected varied values on the last row and column, got %d distinct", len(distinct))
	}
}

func TestDiamondEdgeReadsInGridNeighbours(t *testing.T) {
	tests := []struct {
		name string
		x, y int
	}{
		{"right edge", 2, 1},
		{"bottom edge", 1, 2},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g := grid.New(3)
			g.Set(2, 0, 10)
			g.Set(2, 2, 10)
			g.Set(0, 2, 10)
			g.Set(1, 1, 5)
			d := NewDiamondSquare(1, 0.5, 0)
			d.diamond(g, tt.x, tt.y, 1, 0, NewRand(1))
			// two corners at 10 plus the centre read once directly and once across the seam
			if got := g.Get(tt.x, tt.y); got != 7.5 {
				t.Errorf("expected 7.5, got %v", got)
			}
		})
	}

	g := grid.New(3)
	g.Set(0, 0, 4)
	g.Set(0, 2, 8)
	g.Set(1, 1, 2)
	NewDiamondSquare(1, 0.5, 0).diamond(g, 0, 1, 1, 0, NewRand(1))
	// (-1,1) wraps to (1,1)
	if got := g.Get(0, 1); got != 4 {
		t.Errorf("left edge: expected 4, got %v", got)
	}
}

func TestDiamondSquareSharedRand(t *testing.T) {
	d := NewDiamondSquare(4, 0.1, 0)
	r := NewRand(5)
	a, _ := d.GenerateRand(r)
	b, _ := d.GenerateRand(r)
	if bitIdentical(a, b) {
		t.Error("expected successive draws from one source to differ")
	}
	c, _ := d.GenerateRand(NewRand(5))
	if !bitIdentical(a, c) {
		t.Error("expected a fresh source with the same seed to reproduce the first grid")
	}
}

func TestSimplex(t *testing.T) {
	p := DefaultSimplexParams()
	a, err := NewSimplex(64, p, 11).Generate()
	if err != nil {
		t.Fatal(err)
	}
	b, _ := NewSimplex(64, p, 11).Generate()
	c, _ := NewSimplex(64, p, 12).Generate()

	if a.Size() != 64 {
		t.Errorf("expected size 64, got %d", a.Size())
	}
	if !bitIdentical(a, b) {
		t.Error("same seed produced different output")
	}
	if a.Equal(c) {
		t.Error("different seeds produced equal output")
	}
	if a.Min() != 0 || a.Max() != 1 {
		t.Errorf("expected [0,1], got [%v,%v]", a.Min(), a.Max())
	}
}

func TestSimplexDegenerate(t *testing.T) {
	if _, err := NewSimplex(1, DefaultSimplexParams(), 1).Generate(); !errors.Is(err, grid.ErrDegenerateRange) {
		t.Errorf("expected ErrDegenerateRange for a single cell, got %v", err)
	}
}

func TestVoronoi(t *testing.T) {
	v := NewVoronoi(32, []Point{{X: 8, Y: 8}, {X: 24, Y: 24}})
	g, err := v.Generate()
	if err != nil {
		t.Fatal(err)
	}
	if g.Get(8, 8) != 0 || g.Get(24, 24) != 0 {
		t.Error("expected zero height at feature points")
	}
	if g.Max() != 1 {
		t.Errorf("expected max 1, got %v", g.Max())
	}
	if g.Get(0, 0) != g.Get(16, 16) {
		t.Errorf("expected toroidal symmetry, got %v vs %v", g.Get(0, 0), g.Get(16, 16))
	}
}

func TestVoronoiNoPoints(t *testing.T) {
	if _, err := NewVoronoi(16, nil).Generate(); err == nil {
		t.Error("expected error without feature points")
	}
}

func TestRandomVoronoiSeeded(t *testing.T) {
	a, _ := NewRandomVoronoi(48, 12, 4).Generate()
	b, _ := NewRandomVoronoi(48, 12, 4).Generate()
	if !bitIdentical(a, b) {
		t.Error("same seed produced different output")
	}
	if n := len(NewRandomVoronoi(48, 12, 4).Points()); n != 12 {
		t.Errorf("expected 12 points, got %d", n)
	}
}

func TestFunc(t *testing.T) {
	var gen Generator = Func(func() (*grid.Grid, error) { return grid.New(3), nil })
	g, err := gen.Generate()
	if err != nil || g.Size() != 3 {
		t.Errorf("unexpected result %v, %v", g, err)
	}
}
