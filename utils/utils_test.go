package utils

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/muskanmahajan37/Falcor/voxtree"
)

func TestSphereToolchain(t *testing.T) {
	dir := t.TempDir()
	vxt := filepath.Join(dir, "sphere.vxt")
	if err := RunGenSphere(vxt, 16, 0.5, voxtree.CompZstd); err != nil {
		t.Fatalf("gensphere: %v", err)
	}

	g, err := voxtree.LoadGridFile(vxt)
	if err != nil {
		t.Fatalf("load generated sphere: %v", err)
	}
	acc := g.NewAccessor()
	if got := g.LookupIndex(voxtree.Coord{X: 8, Y: 8, Z: 8}, acc); got <= 0.8 {
		t.Fatalf("sphere center density = %g, want close to 1", got)
	}
	if got := g.LookupIndex(voxtree.Coord{X: 0, Y: 0, Z: 0}, acc); got != 0 {
		t.Fatalf("sphere corner density = %g, want background 0", got)
	}

	if err := RunGridInfo(vxt); err != nil {
		t.Fatalf("info: %v", err)
	}
	for _, mode := range []string{ModeNearest, ModeLinear, ModeStochastic} {
		if err := RunSampleGrid(vxt, voxtree.Vec3{X: 8, Y: 8, Z: 8}, false, mode, 64, 1); err != nil {
			t.Fatalf("sample mode %s: %v", mode, err)
		}
	}
	if err := RunSampleGrid(vxt, voxtree.Vec3{}, true, ModeLinear, 1, 1); err != nil {
		t.Fatalf("sample world: %v", err)
	}
	if err := RunSampleGrid(vxt, voxtree.Vec3{}, false, "cubic", 1, 1); err == nil {
		t.Fatal("expected error for unknown sampling mode")
	}

	glb := filepath.Join(dir, "sphere.glb")
	if err := RunGrid2GLB(vxt, glb); err != nil {
		t.Fatalf("grid2glb: %v", err)
	}
	if fi, err := os.Stat(glb); err != nil || fi.Size() == 0 {
		t.Fatalf("glb output missing or empty: %v", err)
	}
}
