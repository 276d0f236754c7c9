package voxtree

import (
	"math"
	"math/rand"
	"testing"
)

// buildGrid serializes the builder and opens the result.
func buildGrid(t *testing.T, b *Builder) *Grid {
	t.Helper()
	buf, err := b.Build()
	if err != nil {
		t.Fatalf("build failed: %v", err)
	}
	g, err := NewGrid(buf)
	if err != nil {
		t.Fatalf("open failed: %v", err)
	}
	return g
}

// boxBuilder fills the inclusive box [min,max] with a uniform value.
func boxBuilder(background, v float32, min, max Coord) *Builder {
	b := NewBuilder(background)
	for z := min.Z; z <= max.Z; z++ {
		for y := min.Y; y <= max.Y; y++ {
			for x := min.X; x <= max.X; x++ {
				b.Set(Coord{x, y, z}, v)
			}
		}
	}
	return b
}

func TestGridMetadata(t *testing.T) {
	g := buildGrid(t, boxBuilder(0, 5, Coord{0, 0, 0}, Coord{9, 9, 9}))

	if got := g.MinIndex(); got != (Coord{0, 0, 0}) {
		t.Fatalf("MinIndex = %v", got)
	}
	if got := g.MaxIndex(); got != (Coord{9, 9, 9}) {
		t.Fatalf("MaxIndex = %v", got)
	}
	if g.MinValue() != 5 || g.MaxValue() != 5 {
		t.Fatalf("value bounds = [%g, %g], want [5, 5]", g.MinValue(), g.MaxValue())
	}
	if g.Background() != 0 {
		t.Fatalf("Background = %g", g.Background())
	}
	if got := g.ActiveVoxels(); got != 1000 {
		t.Fatalf("ActiveVoxels = %d, want 1000", got)
	}
}

func TestLookupInsideAndOutside(t *testing.T) {
	g := buildGrid(t, boxBuilder(0, 5, Coord{0, 0, 0}, Coord{9, 9, 9}))
	acc := g.NewAccessor()

	if got := g.LookupIndex(Coord{5, 5, 5}, acc); got != 5 {
		t.Fatalf("LookupIndex(5,5,5) = %g, want 5", got)
	}
	if got := g.LookupIndex(Coord{20, 20, 20}, acc); got != 0 {
		t.Fatalf("LookupIndex(20,20,20) = %g, want background 0", got)
	}
	if got := g.LookupIndex(Coord{-1, 0, 0}, acc); got != 0 {
		t.Fatalf("LookupIndex(-1,0,0) = %g, want background 0", got)
	}
}

func TestLookupAcrossTreeLevels(t *testing.T) {
	// Voxels chosen so consecutive lookups cross every cache level:
	// same leaf, sibling leaf, sibling lower node, another root tile, and
	// a tile at negative coordinates.
	voxels := map[Coord]float32{
		{0, 0, 0}:       1,
		{1, 1, 1}:       2,
		{100, 0, 0}:     3,
		{200, 0, 0}:     4,
		{5000, 20, 7}:   5,
		{-5, -5, -5}:    6,
		{-4096, 0, 100}: 7,
	}
	b := NewBuilder(-1)
	for c, v := range voxels {
		b.Set(c, v)
	}
	g := buildGrid(t, b)
	acc := g.NewAccessor()

	order := []Coord{
		{0, 0, 0}, {1, 1, 1}, {100, 0, 0}, {200, 0, 0},
		{5000, 20, 7}, {-5, -5, -5}, {-4096, 0, 100},
		// revisit in scrambled order to exercise warm re-descents
		{5000, 20, 7}, {0, 0, 0}, {-5, -5, -5}, {200, 0, 0},
	}
	for _, c := range order {
		if got := g.LookupIndex(c, acc); got != voxels[c] {
			t.Fatalf("LookupIndex(%v) = %g, want %g", c, got, voxels[c])
		}
	}

	if got := g.LookupIndex(Coord{50, 50, 50}, acc); got != -1 {
		t.Fatalf("miss inside populated tile = %g, want background -1", got)
	}
	if got := g.MinIndex(); got != (Coord{-4096, -5, -5}) {
		t.Fatalf("MinIndex = %v", got)
	}
	if got := g.MaxIndex(); got != (Coord{5000, 20, 100}) {
		t.Fatalf("MaxIndex = %v", got)
	}
	if g.MinValue() != 1 || g.MaxValue() != 7 {
		t.Fatalf("value bounds = [%g, %g], want [1, 7]", g.MinValue(), g.MaxValue())
	}
}

func TestAccessorReuseMatchesFreshAccessors(t *testing.T) {
	r := rand.New(rand.NewSource(7))
	b := NewBuilder(0)
	for i := 0; i < 500; i++ {
		c := Coord{r.Int31n(300) - 150, r.Int31n(300) - 150, r.Int31n(300) - 150}
		b.Set(c, r.Float32()*10)
	}
	g := buildGrid(t, b)

	shared := g.NewAccessor()
	for i := 0; i < 2000; i++ {
		c := Coord{r.Int31n(400) - 200, r.Int31n(400) - 200, r.Int31n(400) - 200}
		warm := g.LookupIndex(c, shared)
		cold := g.LookupIndex(c, g.NewAccessor())
		if warm != cold {
			t.Fatalf("lookup(%v): warm accessor %g != cold accessor %g", c, warm, cold)
		}
	}
}

func TestSetOverwrites(t *testing.T) {
	b := NewBuilder(0)
	b.Set(Coord{3, 3, 3}, 1)
	b.Set(Coord{3, 3, 3}, 9)
	g := buildGrid(t, b)
	if got := g.LookupIndex(Coord{3, 3, 3}, g.NewAccessor()); got != 9 {
		t.Fatalf("overwritten voxel = %g, want 9", got)
	}
	if got := g.ActiveVoxels(); got != 1 {
		t.Fatalf("ActiveVoxels = %d, want 1", got)
	}
}

func TestBuildEmptyFails(t *testing.T) {
	if _, err := NewBuilder(0).Build(); err == nil {
		t.Fatal("expected error building an empty grid")
	}
}

func TestNewGridRejectsGarbage(t *testing.T) {
	if _, err := NewGrid([]byte("not a grid at all........")); err == nil {
		t.Fatal("expected error for bad magic")
	}
	b := boxBuilder(0, 1, Coord{0, 0, 0}, Coord{1, 1, 1})
	buf, err := b.Build()
	if err != nil {
		t.Fatalf("build failed: %v", err)
	}
	if _, err := NewGrid(buf[:len(buf)-100]); err == nil {
		t.Fatal("expected error for truncated buffer")
	}
}

func TestForEachActiveReportsSetVoxels(t *testing.T) {
	want := map[Coord]float32{
		{0, 0, 0}:    1.5,
		{7, 7, 7}:    2.5,
		{8, 0, 0}:    3.5,
		{-1, -1, -1}: 4.5,
	}
	b := NewBuilder(0)
	for c, v := range want {
		b.Set(c, v)
	}
	g := buildGrid(t, b)

	got := make(map[Coord]float32)
	g.ForEachActive(func(c Coord, v float32) { got[c] = v })
	if len(got) != len(want) {
		t.Fatalf("ForEachActive visited %d voxels, want %d", len(got), len(want))
	}
	for c, v := range want {
		if got[c] != v {
			t.Fatalf("ForEachActive(%v) = %g, want %g", c, got[c], v)
		}
	}
}

func TestTransformRoundTrip(t *testing.T) {
	b := boxBuilder(0, 1, Coord{0, 0, 0}, Coord{3, 3, 3})
	if err := b.SetTransform(Vec3{0.5, 0.25, 2}, Vec3{10, -3, 7}); err != nil {
		t.Fatalf("SetTransform: %v", err)
	}
	g := buildGrid(t, b)

	r := rand.New(rand.NewSource(11))
	for i := 0; i < 100; i++ {
		p := Vec3{r.Float32()*200 - 100, r.Float32()*200 - 100, r.Float32()*200 - 100}
		q := g.IndexToWorldPos(g.WorldToIndexPos(p))
		if !closeV(p, q, 1e-4) {
			t.Fatalf("position round trip: %v -> %v", p, q)
		}
		d := Vec3{r.Float32()*2 - 1, r.Float32()*2 - 1, r.Float32()*2 - 1}
		if d == (Vec3{}) {
			continue
		}
		wd := g.IndexToWorldDir(d)
		if math.Abs(float64(wd.X*wd.X+wd.Y*wd.Y+wd.Z*wd.Z)-1) > 1e-5 {
			t.Fatalf("IndexToWorldDir(%v) not unit length: %v", d, wd)
		}
		id := g.WorldToIndexDir(d)
		if math.Abs(float64(id.X*id.X+id.Y*id.Y+id.Z*id.Z)-1) > 1e-5 {
			t.Fatalf("WorldToIndexDir(%v) not unit length: %v", d, id)
		}
		// The scale factors cancel inside the normalizations, so the round
		// trip lands back on the normalized input even with non-uniform scale.
		rt := g.WorldToIndexDir(g.IndexToWorldDir(d))
		if !closeV(rt, d.Normalize(), 1e-4) {
			t.Fatalf("direction round trip: %v -> %v", d.Normalize(), rt)
		}
	}

	// Known mapping: world = index*voxelSize + origin.
	w := g.IndexToWorldPos(Vec3{2, 4, 1})
	if !closeV(w, Vec3{11, -2, 9}, 1e-5) {
		t.Fatalf("IndexToWorldPos(2,4,1) = %v, want (11,-2,9)", w)
	}
}

func TestSetTransformRejectsZeroScale(t *testing.T) {
	if err := NewBuilder(0).SetTransform(Vec3{1, 0, 1}, Vec3{}); err == nil {
		t.Fatal("expected error for zero voxel size")
	}
}

func closeV(a, b Vec3, tol float64) bool {
	return math.Abs(float64(a.X-b.X)) <= tol &&
		math.Abs(float64(a.Y-b.Y)) <= tol &&
		math.Abs(float64(a.Z-b.Z)) <= tol
}
