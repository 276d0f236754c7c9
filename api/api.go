package api

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/qmuntal/gltf"
	"github.com/qmuntal/gltf/modeler"

	"github.com/muskanmahajan37/Falcor/voxtree"
)

// DenseToGridBytes builds a .vxt container from a dense float32 volume.
// values is indexed x + y*dim.X + z*dim.X*dim.Y; entries equal to the
// background are left out of the sparse tree.
func DenseToGridBytes(values []float32, dim voxtree.Coord, background float32, voxelSize, origin voxtree.Vec3, comp voxtree.Compression) ([]byte, error) {
	if want := int(dim.X) * int(dim.Y) * int(dim.Z); len(values) != want {
		return nil, fmt.Errorf("dense volume size mismatch: have %d values, want %d", len(values), want)
	}
	b := voxtree.NewBuilder(background)
	if err := b.SetTransform(voxelSize, origin); err != nil {
		return nil, err
	}
	i := 0
	for z := int32(0); z < dim.Z; z++ {
		for y := int32(0); y < dim.Y; y++ {
			for x := int32(0); x < dim.X; x++ {
				if v := values[i]; v != background {
					b.Set(voxtree.Coord{X: x, Y: y, Z: z}, v)
				}
				i++
			}
		}
	}
	grid, err := b.Build()
	if err != nil {
		return nil, err
	}
	return voxtree.EncodeGridFile(grid, comp)
}

// GridInfo returns a human-readable summary of a .vxt container.
func GridInfo(data []byte) (string, error) {
	g, err := voxtree.LoadGridFromBytes(data)
	if err != nil {
		return "", err
	}
	mi, ma := g.MinIndex(), g.MaxIndex()
	w0 := g.IndexToWorldPos(voxtree.Vec3{})
	w1 := g.IndexToWorldPos(voxtree.Vec3{X: 1, Y: 1, Z: 1})
	var sb strings.Builder
	fmt.Fprintf(&sb, "VXTR float grid\n")
	fmt.Fprintf(&sb, "  index bbox:    (%d,%d,%d) .. (%d,%d,%d)\n", mi.X, mi.Y, mi.Z, ma.X, ma.Y, ma.Z)
	fmt.Fprintf(&sb, "  value bounds:  [%g, %g]\n", g.MinValue(), g.MaxValue())
	fmt.Fprintf(&sb, "  background:    %g\n", g.Background())
	fmt.Fprintf(&sb, "  active voxels: %d\n", g.ActiveVoxels())
	fmt.Fprintf(&sb, "  voxel size:    (%g,%g,%g), world origin (%g,%g,%g)\n",
		w1.X-w0.X, w1.Y-w0.Y, w1.Z-w0.Z, w0.X, w0.Y, w0.Z)
	return sb.String(), nil
}

// Face table for the cube mesh: outward normal in index space, the step to
// the face-adjacent neighbor, and the four corner offsets counter-clockwise
// seen from outside.
var voxelFaces = [6]struct {
	normal     voxtree.Vec3
	dx, dy, dz int32
	corners    [4][3]int32
}{
	{voxtree.Vec3{X: 1}, 1, 0, 0, [4][3]int32{{1, 0, 0}, {1, 1, 0}, {1, 1, 1}, {1, 0, 1}}},
	{voxtree.Vec3{X: -1}, -1, 0, 0, [4][3]int32{{0, 0, 0}, {0, 0, 1}, {0, 1, 1}, {0, 1, 0}}},
	{voxtree.Vec3{Y: 1}, 0, 1, 0, [4][3]int32{{0, 1, 0}, {0, 1, 1}, {1, 1, 1}, {1, 1, 0}}},
	{voxtree.Vec3{Y: -1}, 0, -1, 0, [4][3]int32{{0, 0, 0}, {1, 0, 0}, {1, 0, 1}, {0, 0, 1}}},
	{voxtree.Vec3{Z: 1}, 0, 0, 1, [4][3]int32{{0, 0, 1}, {1, 0, 1}, {1, 1, 1}, {0, 1, 1}}},
	{voxtree.Vec3{Z: -1}, 0, 0, -1, [4][3]int32{{0, 0, 0}, {0, 1, 0}, {1, 1, 0}, {1, 0, 0}}},
}

// GridToGLB converts a .vxt container into a binary glTF mesh of its active
// voxels. Faces shared by two active voxels are dropped, vertices are in
// world space, and the voxel value drives a grayscale vertex color.
func GridToGLB(data []byte) ([]byte, error) {
	g, err := voxtree.LoadGridFromBytes(data)
	if err != nil {
		return nil, err
	}

	active := make(map[voxtree.Coord]float32)
	g.ForEachActive(func(c voxtree.Coord, v float32) { active[c] = v })
	if len(active) == 0 {
		return nil, fmt.Errorf("grid has no active voxels")
	}

	minV, maxV := g.MinValue(), g.MaxValue()
	scale := float32(1)
	if maxV > minV {
		scale = 1 / (maxV - minV)
	}

	var positions, normals [][3]float32
	var colors [][4]float32
	var indices []uint32
	for c, v := range active {
		shade := (v - minV) * scale
		rgba := [4]float32{shade, shade, shade, 1}
		for _, f := range voxelFaces {
			if _, ok := active[voxtree.Coord{X: c.X + f.dx, Y: c.Y + f.dy, Z: c.Z + f.dz}]; ok {
				continue
			}
			n := g.IndexToWorldDir(f.normal)
			base := uint32(len(positions))
			for _, o := range f.corners {
				p := g.IndexToWorldPos(voxtree.Vec3{
					X: float32(c.X + o[0]),
					Y: float32(c.Y + o[1]),
					Z: float32(c.Z + o[2]),
				})
				positions = append(positions, [3]float32{p.X, p.Y, p.Z})
				normals = append(normals, [3]float32{n.X, n.Y, n.Z})
				colors = append(colors, rgba)
			}
			indices = append(indices, base, base+1, base+2, base, base+2, base+3)
		}
	}

	doc := gltf.NewDocument()
	doc.Asset.Generator = "VXTR -> GLB"

	posAccessor := modeler.WritePosition(doc, positions)
	normalAccessor := modeler.WriteNormal(doc, normals)
	colorAccessor := modeler.WriteColor(doc, colors)
	indicesAccessor := modeler.WriteIndices(doc, indices)

	prim := &gltf.Primitive{
		Attributes: map[string]uint32{
			gltf.POSITION: uint32(posAccessor),
			gltf.NORMAL:   uint32(normalAccessor),
			gltf.COLOR_0:  uint32(colorAccessor),
		},
		Indices: gltf.Index(uint32(indicesAccessor)),
	}
	pbr := &gltf.PBRMetallicRoughness{BaseColorFactor: &[4]float32{1, 1, 1, 1}, MetallicFactor: gltf.Float(0), RoughnessFactor: gltf.Float(1)}
	doc.Materials = []*gltf.Material{{PBRMetallicRoughness: pbr, AlphaMode: gltf.AlphaOpaque}}
	prim.Material = gltf.Index(0)
	doc.Meshes = []*gltf.Mesh{{Name: "VoxelMesh", Primitives: []*gltf.Primitive{prim}}}
	doc.Nodes = []*gltf.Node{{Mesh: gltf.Index(0)}}
	doc.Scenes[0].Nodes = append(doc.Scenes[0].Nodes, uint32(0))

	var out bytes.Buffer
	enc := gltf.NewEncoder(&out)
	enc.AsBinary = true
	if err := enc.Encode(doc); err != nil {
		return nil, err
	}
	return out.Bytes(), nil
}
