package main

import (
	"fmt"
	"os"
	"strconv"

	"github.com/muskanmahajan37/Falcor/utils"
	"github.com/muskanmahajan37/Falcor/voxtree"
)

func usage() {
	fmt.Println("Usage: vxttool <command> [args]")
	fmt.Println("Commands:")
	fmt.Println("  info input.vxt                                   (print grid summary)")
	fmt.Println("  sample input.vxt <mode> <space> x y z [taps [seed]]")
	fmt.Println("      mode:  nearest | linear | stochastic")
	fmt.Println("      space: index | world")
	fmt.Println("  grid2glb input.vxt output.glb                    (export active voxels as a GLB mesh)")
	fmt.Println("  gensphere output.vxt <diameter> [voxelsize]      (generate a test sphere volume)")
}

func parseF32(s string) (float32, error) {
	v, err := strconv.ParseFloat(s, 32)
	return float32(v), err
}

func fail(err error) {
	fmt.Println("Error:", err)
	os.Exit(1)
}

func main() {
	if len(os.Args) < 2 {
		usage()
		os.Exit(1)
	}

	switch os.Args[1] {
	case "info":
		if len(os.Args) != 3 {
			usage()
			os.Exit(1)
		}
		if err := utils.RunGridInfo(os.Args[2]); err != nil {
			fail(err)
		}
	case "sample":
		if len(os.Args) < 8 || len(os.Args) > 10 {
			usage()
			os.Exit(1)
		}
		mode := os.Args[3]
		space := os.Args[4]
		if space != "index" && space != "world" {
			usage()
			os.Exit(1)
		}
		var pos voxtree.Vec3
		var err error
		if pos.X, err = parseF32(os.Args[5]); err != nil {
			fail(err)
		}
		if pos.Y, err = parseF32(os.Args[6]); err != nil {
			fail(err)
		}
		if pos.Z, err = parseF32(os.Args[7]); err != nil {
			fail(err)
		}
		taps := 1024
		if len(os.Args) > 8 {
			if taps, err = strconv.Atoi(os.Args[8]); err != nil {
				fail(err)
			}
		}
		seed := int64(1)
		if len(os.Args) > 9 {
			if seed, err = strconv.ParseInt(os.Args[9], 10, 64); err != nil {
				fail(err)
			}
		}
		if err := utils.RunSampleGrid(os.Args[2], pos, space == "world", mode, taps, seed); err != nil {
			fail(err)
		}
	case "grid2glb":
		if len(os.Args) != 4 {
			usage()
			os.Exit(1)
		}
		if err := utils.RunGrid2GLB(os.Args[2], os.Args[3]); err != nil {
			fail(err)
		}
	case "gensphere":
		if len(os.Args) < 4 || len(os.Args) > 5 {
			usage()
			os.Exit(1)
		}
		dim, err := strconv.Atoi(os.Args[3])
		if err != nil {
			fail(err)
		}
		voxelSize := float32(1)
		if len(os.Args) == 5 {
			if voxelSize, err = parseF32(os.Args[4]); err != nil {
				fail(err)
			}
		}
		if err := utils.RunGenSphere(os.Args[2], dim, voxelSize, voxtree.CompZstd); err != nil {
			fail(err)
		}
	default:
		usage()
		os.Exit(1)
	}
}
