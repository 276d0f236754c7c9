package voxtree

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"math"
	"sort"
)

// Builder accumulates voxel values and serializes them into a VXTR buffer.
// It lives on the construction side of the format: the sampling core never
// mutates a grid, tools and tests build one with this and then open the
// resulting bytes with NewGrid.
type Builder struct {
	background float32
	mat        [9]float32
	invMat     [9]float32
	translate  [3]float32
	leaves     map[Coord]*leafBuild
}

type leafBuild struct {
	mask   [leafMaskWords]uint64
	values [LeafValues]float32
}

// NewBuilder returns a builder with the given background value and an
// identity index-to-world transform.
func NewBuilder(background float32) *Builder {
	b := &Builder{
		background: background,
		leaves:     make(map[Coord]*leafBuild),
	}
	b.mat[0], b.mat[4], b.mat[8] = 1, 1, 1
	b.invMat[0], b.invMat[4], b.invMat[8] = 1, 1, 1
	return b
}

// SetTransform installs a scale-and-translate index-to-world transform:
// world = index*voxelSize + origin, per axis.
func (b *Builder) SetTransform(voxelSize, origin Vec3) error {
	if voxelSize.X == 0 || voxelSize.Y == 0 || voxelSize.Z == 0 {
		return fmt.Errorf("voxel size must be non-zero on every axis")
	}
	b.mat = [9]float32{voxelSize.X, 0, 0, 0, voxelSize.Y, 0, 0, 0, voxelSize.Z}
	b.invMat = [9]float32{1 / voxelSize.X, 0, 0, 0, 1 / voxelSize.Y, 0, 0, 0, 1 / voxelSize.Z}
	b.translate = [3]float32{origin.X, origin.Y, origin.Z}
	return nil
}

// Set stores v as the active value of voxel c. Setting the same coordinate
// again overwrites the previous value.
func (b *Builder) Set(c Coord, v float32) {
	key := leafOrigin(c)
	leaf := b.leaves[key]
	if leaf == nil {
		leaf = &leafBuild{}
		b.leaves[key] = leaf
	}
	n := leafOffset(c)
	leaf.mask[n>>6] |= 1 << uint(n&63)
	leaf.values[n] = v
}

// Build serializes the accumulated voxels. Children of every node are laid
// out contiguously in bitmask order so the reader can address them with a
// first-child index plus a popcount.
func (b *Builder) Build() ([]byte, error) {
	if len(b.leaves) == 0 {
		return nil, fmt.Errorf("cannot build an empty grid")
	}

	leafOrigins := make([]Coord, 0, len(b.leaves))
	for o := range b.leaves {
		leafOrigins = append(leafOrigins, o)
	}

	// Group leaves under lower nodes and lower nodes under upper nodes.
	lowerLeaves := make(map[Coord][]Coord)
	for _, o := range leafOrigins {
		k := lowerOrigin(o)
		lowerLeaves[k] = append(lowerLeaves[k], o)
	}
	upperLowers := make(map[Coord][]Coord)
	for k := range lowerLeaves {
		u := upperOrigin(k)
		upperLowers[u] = append(upperLowers[u], k)
	}
	upperOrigins := make([]Coord, 0, len(upperLowers))
	for o := range upperLowers {
		upperOrigins = append(upperOrigins, o)
	}
	sortCoords(upperOrigins)

	// Assign node indices level by level; per node, children ordered by
	// their bit offset within the parent.
	var lowerOrder, leafOrder []Coord
	for _, u := range upperOrigins {
		lowers := upperLowers[u]
		sort.Slice(lowers, func(i, j int) bool {
			return upperOffset(lowers[i]) < upperOffset(lowers[j])
		})
		for _, l := range lowers {
			lowerOrder = append(lowerOrder, l)
			leaves := lowerLeaves[l]
			sort.Slice(leaves, func(i, j int) bool {
				return lowerOffset(leaves[i]) < lowerOffset(leaves[j])
			})
			leafOrder = append(leafOrder, leaves...)
		}
	}

	bboxMin, bboxMax, minV, maxV := b.bounds()

	var out bytes.Buffer
	out.WriteString(gridMagic)
	w := func(v any) { _ = binary.Write(&out, binary.LittleEndian, v) }
	w(uint8(gridVersion))
	w(uint8(gridTypeF32))
	w(uint16(0))
	w(b.mat)
	w(b.invMat)
	w(b.translate)
	w([3]int32{bboxMin.X, bboxMin.Y, bboxMin.Z})
	w([3]int32{bboxMax.X, bboxMax.Y, bboxMax.Z})
	w(minV)
	w(maxV)
	w(b.background)
	w(uint32(len(upperOrigins)))
	w(uint32(len(upperOrigins)))
	w(uint32(len(lowerOrder)))
	w(uint32(len(leafOrder)))

	// Root tiles, one per upper node.
	for i, u := range upperOrigins {
		w([3]int32{u.X, u.Y, u.Z})
		w(uint32(i))
	}

	// Upper nodes.
	firstLower := 0
	for _, u := range upperOrigins {
		var mask [upperMaskWords]uint64
		for _, l := range upperLowers[u] {
			n := upperOffset(l)
			mask[n>>6] |= 1 << uint(n&63)
		}
		w([3]int32{u.X, u.Y, u.Z})
		w(uint32(firstLower))
		w(mask)
		firstLower += len(upperLowers[u])
	}

	// Lower nodes.
	firstLeaf := 0
	for _, l := range lowerOrder {
		var mask [lowerMaskWords]uint64
		for _, o := range lowerLeaves[l] {
			n := lowerOffset(o)
			mask[n>>6] |= 1 << uint(n&63)
		}
		w([3]int32{l.X, l.Y, l.Z})
		w(uint32(firstLeaf))
		w(mask)
		firstLeaf += len(lowerLeaves[l])
	}

	// Leaf nodes: dense value arrays, inactive slots hold the background.
	for _, o := range leafOrder {
		leaf := b.leaves[o]
		values := leaf.values
		for n := 0; n < LeafValues; n++ {
			if leaf.mask[n>>6]&(1<<uint(n&63)) == 0 {
				values[n] = b.background
			}
		}
		w([3]int32{o.X, o.Y, o.Z})
		w(uint32(0))
		w(leaf.mask)
		w(values)
	}

	return out.Bytes(), nil
}

// bounds computes the active-voxel bounding box and value range.
func (b *Builder) bounds() (bboxMin, bboxMax Coord, minV, maxV float32) {
	bboxMin = Coord{math.MaxInt32, math.MaxInt32, math.MaxInt32}
	bboxMax = Coord{math.MinInt32, math.MinInt32, math.MinInt32}
	minV = float32(math.Inf(1))
	maxV = float32(math.Inf(-1))
	for origin, leaf := range b.leaves {
		for n := 0; n < LeafValues; n++ {
			if leaf.mask[n>>6]&(1<<uint(n&63)) == 0 {
				continue
			}
			c := Coord{
				origin.X + int32(n&(LeafDim-1)),
				origin.Y + int32((n>>LeafLog2Dim)&(LeafDim-1)),
				origin.Z + int32(n>>(LeafLog2Dim+LeafLog2Dim)),
			}
			bboxMin = Coord{min(bboxMin.X, c.X), min(bboxMin.Y, c.Y), min(bboxMin.Z, c.Z)}
			bboxMax = Coord{max(bboxMax.X, c.X), max(bboxMax.Y, c.Y), max(bboxMax.Z, c.Z)}
			if v := leaf.values[n]; v < minV {
				minV = v
			}
			if v := leaf.values[n]; v > maxV {
				maxV = v
			}
		}
	}
	return bboxMin, bboxMax, minV, maxV
}

// sortCoords orders coordinates by (z, y, x), the node storage order.
func sortCoords(coords []Coord) {
	sort.Slice(coords, func(i, j int) bool {
		a, b := coords[i], coords[j]
		if a.Z != b.Z {
			return a.Z < b.Z
		}
		if a.Y != b.Y {
			return a.Y < b.Y
		}
		return a.X < b.X
	})
}
