package utils

import (
	"os"

	"github.com/muskanmahajan37/Falcor/api"
)

// RunGrid2GLB converts a .vxt file into a binary glTF mesh of its active
// voxels.
func RunGrid2GLB(inPath, outPath string) error {
	data, err := os.ReadFile(inPath)
	if err != nil {
		return err
	}
	glb, err := api.GridToGLB(data)
	if err != nil {
		return err
	}
	return os.WriteFile(outPath, glb, 0644)
}
