package utils

import (
	"fmt"
	"math/rand"

	"github.com/muskanmahajan37/Falcor/voxtree"
)

// Sampling modes accepted by RunSampleGrid.
const (
	ModeNearest    = "nearest"
	ModeLinear     = "linear"
	ModeStochastic = "stochastic"
)

// RunSampleGrid evaluates the grid at one position and prints the result.
// world selects world-space coordinates (index space otherwise). In
// stochastic mode the value is the average of taps single-tap samples
// driven by a rand source seeded with seed, so runs are reproducible.
func RunSampleGrid(inPath string, pos voxtree.Vec3, world bool, mode string, taps int, seed int64) error {
	g, err := voxtree.LoadGridFile(inPath)
	if err != nil {
		return err
	}
	acc := g.NewAccessor()

	var v float32
	switch mode {
	case ModeNearest:
		if world {
			v = g.LookupWorld(pos, acc)
		} else {
			v = g.LookupIndex(voxtree.Coord{X: int32(pos.X), Y: int32(pos.Y), Z: int32(pos.Z)}, acc)
		}
	case ModeLinear:
		if world {
			v = g.LookupLinearWorld(pos, acc)
		} else {
			v = g.LookupLinearIndex(pos, acc)
		}
	case ModeStochastic:
		if taps < 1 {
			taps = 1
		}
		r := rand.New(rand.NewSource(seed))
		var sum float64
		for i := 0; i < taps; i++ {
			u := voxtree.Vec3{X: r.Float32(), Y: r.Float32(), Z: r.Float32()}
			if world {
				sum += float64(g.LookupStochasticWorld(pos, u, acc))
			} else {
				sum += float64(g.LookupStochasticIndex(pos, u, acc))
			}
		}
		v = float32(sum / float64(taps))
	default:
		return fmt.Errorf("unknown sampling mode: %s", mode)
	}

	fmt.Printf("%g\n", v)
	return nil
}
