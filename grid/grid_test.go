package grid

import (
	"errors"
	"math"
	"math/rand/v2"
	"testing"
)

func randomGrid(size int, seed uint64) *Grid {
	r := rand.New(rand.NewPCG(seed, 0))
	g := New(size)
	for i := range g.cells {
		g.cells[i] = r.Float64()*2 - 1
	}
	return g
}

func filled(size int, v float64) *Grid {
	g := New(size)
	for i := range g.cells {
		g.cells[i] = v
	}
	return g
}

func TestNewIsZeroFilled(t *testing.T) {
	for _, size := range []int{1, 2, 17, 256} {
		g := New(size)
		if g.Size() != size {
			t.Fatalf("expected size %d, got %d", size, g.Size())
		}
		if len(g.Values()) != size*size {
			t.Errorf("expected %d cells, got %d", size*size, len(g.Values()))
		}
		for i, v := range g.Values() {
			if v != 0 {
				t.Fatalf("size %d: cell %d = %v, want 0", size, i, v)
			}
		}
	}
}

func TestNewClampsSize(t *testing.T) {
	if got := New(0).Size(); got != 1 {
		t.Errorf("expected size 1, got %d", got)
	}
}

func TestFromArray(t *testing.T) {
	tests := []struct {
		name    string
		rows    [][]float64
		wantErr bool
	}{
		{"square", [][]float64{{1, 2}, {3, 4}}, false},
		{"empty", nil, true},
		{"non-square", [][]float64{{1, 2, 3}, {4, 5, 6}}, true},
		{"ragged", [][]float64{{1, 2}, {3}}, true},
		{"single row of many", [][]float64{{1, 2, 3}}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g, err := FromArray(tt.rows)
			if tt.wantErr {
				if !errors.Is(err, ErrShape) {
					t.Fatalf("expected ErrShape, got %v", err)
				}
				if g != nil {
					t.Error("expected no grid on error")
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if g.Get(1, 0) != 2 || g.Get(0, 1) != 3 {
				t.Errorf("expected rows[y][x] layout, got %v", g.Rows())
			}
		})
	}
}

func TestFromArrayCopiesInput(t *testing.T) {
	rows := [][]float64{{1, 2}, {3, 4}}
	g, err := FromArray(rows)
	if err != nil {
		t.Fatal(err)
	}
	rows[0][0] = 99
	if g.Get(0, 0) != 1 {
		t.Error("grid aliases caller's slice")
	}
}

func TestWrap(t *testing.T) {
	g := New(4)
	g.Set(3, 0, 7)
	if got := g.Get(-1, 0); got != 7 {
		t.Errorf("Get(-1, 0) = %v, want 7", got)
	}
	if got := g.Get(7, 4); got != 7 {
		t.Errorf("Get(7, 4) = %v, want 7", got)
	}

	g.Set(-5, 9, 3)
	if got := g.Get(3, 1); got != 3 {
		t.Errorf("Set(-5, 9) should land on (3, 1), got %v", got)
	}

	for _, tt := range []struct{ i, n, want int }{
		{-1, 5, 4}, {5, 5, 0}, {-10, 5, 0}, {12, 5, 2}, {0, 1, 0},
	} {
		if got := Wrap(tt.i, tt.n); got != tt.want {
			t.Errorf("Wrap(%d, %d) = %d, want %d", tt.i, tt.n, got, tt.want)
		}
	}
}

func TestSetTouchesOneCell(t *testing.T) {
	g := New(8)
	g.Set(2, 5, 1.5)
	if g.Sum() != 1.5 {
		t.Errorf("expected only one cell to change, sum = %v", g.Sum())
	}
}

func TestAt(t *testing.T) {
	g, _ := FromArray([][]float64{
		{0, 1, 2},
		{3, 4, 5},
		{6, 7, 8},
	})

	tests := []struct {
		name string
		x, y float64
		want float64
	}{
		{"integer", 1, 1, 4},
		{"half x", 0.5, 0, 0.5},
		{"half y", 0, 0.5, 1.5},
		{"bilinear", 0.5, 0.5, 2},
		{"quarter", 1.25, 1, 4.25},
		{"wrap x", 2.5, 0, 1},
		{"wrap y", 0, 2.5, 3},
		{"negative", -0.5, 0, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := g.At(tt.x, tt.y); math.Abs(got-tt.want) > 1e-12 {
				t.Errorf("At(%v, %v) = %v, want %v", tt.x, tt.y, got, tt.want)
			}
		})
	}
}

func TestArithmeticIdentities(t *testing.T) {
	g := randomGrid(64, 1)

	if !g.Add(New(64)).Equal(g) {
		t.Error("g + 0 != g")
	}
	if !g.AddScalar(0).Equal(g) {
		t.Error("g + 0.0 != g")
	}
	if !g.Sub(g).Equal(New(64)) {
		t.Error("g - g != 0")
	}
	for _, s := range []float64{0.5, -3, 1e6} {
		if !g.MulScalar(s).DivScalar(s).Equal(g) {
			t.Errorf("(g * %v) / %v != g", s, s)
		}
	}
}

func TestElementwiseArithmetic(t *testing.T) {
	tests := []struct {
		name string
		op   func(a, b *Grid) *Grid
		a, b float64
		want float64
	}{
		{"add", (*Grid).Add, 0.1, 0.2, 0.3},
		{"sub", (*Grid).Sub, 0.3, 0.2, 0.1},
		{"mul", (*Grid).Mul, 2.0, 0.5, 1.0},
		{"div", (*Grid).Div, 0.5, 2.0, 0.25},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a, b := filled(128, tt.a), filled(128, tt.b)
			got := tt.op(a, b)
			if !got.Equal(filled(128, tt.want)) {
				t.Errorf("expected all cells %v, got %v at (0,0)", tt.want, got.Get(0, 0))
			}
			if a.Get(0, 0) != tt.a || b.Get(0, 0) != tt.b {
				t.Error("operands were mutated")
			}
		})
	}
}

func TestArithmeticSizeMismatchPanics(t *testing.T) {
	defer func() {
		r := recover()
		err, ok := r.(error)
		if !ok || !errors.Is(err, ErrShape) {
			t.Errorf("expected ErrShape panic, got %v", r)
		}
	}()
	New(4).Add(New(5))
}

func TestEqual(t *testing.T) {
	g := filled(8, 1)
	if !g.Equal(g.AddScalar(1e-10)) {
		t.Error("expected tolerance-based equality")
	}
	if g.Equal(g.AddScalar(1e-3)) {
		t.Error("expected grids to differ")
	}
	if g.Equal(filled(9, 1)) {
		t.Error("grids of different sizes must not be equal")
	}
	if g.Equal(nil) {
		t.Error("nil must not be equal")
	}
}

func TestNormalize(t *testing.T) {
	g := randomGrid(33, 7).MulScalar(40)
	n, err := g.Normalize()
	if err != nil {
		t.Fatal(err)
	}
	if n.Min() != 0 {
		t.Errorf("expected min 0, got %v", n.Min())
	}
	if n.Max() != 1 {
		t.Errorf("expected max 1, got %v", n.Max())
	}

	if _, err := filled(8, 3).Normalize(); !errors.Is(err, ErrDegenerateRange) {
		t.Errorf("expected ErrDegenerateRange, got %v", err)
	}
}

func TestRegionRoundTrip(t *testing.T) {
	g := randomGrid(10, 3)
	r := g.Region(8, 8, 4, 3)
	if r.W != 4 || r.H != 3 {
		t.Fatalf("expected 4x3 region, got %s", r)
	}
	if r.Get(2, 2) != g.Get(0, 0) {
		t.Error("region should wrap across the seam")
	}

	out := New(10)
	out.Paste(8, 8, r)
	if out.Get(1, 0) != g.Get(1, 0) {
		t.Error("paste should wrap across the seam")
	}
}

func TestStats(t *testing.T) {
	g, _ := FromArray([][]float64{{1, 2}, {3, 6}})
	if g.Min() != 1 || g.Max() != 6 || g.Sum() != 12 || g.Mean() != 3 {
		t.Errorf("unexpected stats min=%v max=%v sum=%v mean=%v", g.Min(), g.Max(), g.Sum(), g.Mean())
	}
}
