package utils

import (
	"fmt"
	"math"

	"github.com/muskanmahajan37/Falcor/voxtree"
)

// RunGenSphere writes a test volume to outPath: a solid sphere of diameter
// dim voxels whose density falls off linearly from 1 at the center to 0 at
// the surface. Useful for trying out the sampling and export commands
// without a real data set.
func RunGenSphere(outPath string, dim int, voxelSize float32, comp voxtree.Compression) error {
	if dim < 2 {
		return fmt.Errorf("sphere diameter must be at least 2 voxels")
	}
	if voxelSize <= 0 {
		voxelSize = 1
	}

	b := voxtree.NewBuilder(0)
	center := float64(dim) / 2
	if err := b.SetTransform(
		voxtree.Vec3{X: voxelSize, Y: voxelSize, Z: voxelSize},
		voxtree.Vec3{X: -float32(center) * voxelSize, Y: -float32(center) * voxelSize, Z: -float32(center) * voxelSize},
	); err != nil {
		return err
	}

	radius := center
	for z := 0; z < dim; z++ {
		for y := 0; y < dim; y++ {
			for x := 0; x < dim; x++ {
				dx := float64(x) + 0.5 - center
				dy := float64(y) + 0.5 - center
				dz := float64(z) + 0.5 - center
				d := math.Sqrt(dx*dx + dy*dy + dz*dz)
				if d >= radius {
					continue
				}
				b.Set(voxtree.Coord{X: int32(x), Y: int32(y), Z: int32(z)}, float32(1-d/radius))
			}
		}
	}

	grid, err := b.Build()
	if err != nil {
		return err
	}
	return voxtree.SaveGridFile(grid, outPath, comp)
}
