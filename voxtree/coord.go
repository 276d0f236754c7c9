package voxtree

import "math"

// Coord is a signed integer voxel coordinate in index space.
type Coord struct {
	X, Y, Z int32
}

// Vec3 is a single-precision position or direction.
type Vec3 struct {
	X, Y, Z float32
}

// Normalize returns d scaled to unit length. The zero vector is returned as is.
func (d Vec3) Normalize() Vec3 {
	l := float32(math.Sqrt(float64(d.X*d.X + d.Y*d.Y + d.Z*d.Z)))
	if l == 0 {
		return d
	}
	return Vec3{d.X / l, d.Y / l, d.Z / l}
}

// Tree fanout, following the usual NanoVDB shape: root -> upper (32³)
// -> lower (16³) -> leaf (8³ voxels).
const (
	LeafLog2Dim  = 3
	LowerLog2Dim = 4
	UpperLog2Dim = 5

	LeafDim  = 1 << LeafLog2Dim  // 8
	LowerDim = 1 << LowerLog2Dim // 16
	UpperDim = 1 << UpperLog2Dim // 32

	// Voxels spanned along one axis by each node level.
	LeafTotalDim  = LeafDim                  // 8
	LowerTotalDim = LowerDim * LeafTotalDim  // 128
	UpperTotalDim = UpperDim * LowerTotalDim // 4096

	LeafValues    = LeafDim * LeafDim * LeafDim    // 512
	LowerChildren = LowerDim * LowerDim * LowerDim // 4096
	UpperChildren = UpperDim * UpperDim * UpperDim // 32768
)

// leafOffset converts a voxel coordinate to the linear offset of its value
// slot within the containing leaf.
func leafOffset(c Coord) int {
	x := int(c.X) & (LeafDim - 1)
	y := int(c.Y) & (LeafDim - 1)
	z := int(c.Z) & (LeafDim - 1)
	return (z << (LeafLog2Dim + LeafLog2Dim)) | (y << LeafLog2Dim) | x
}

// lowerOffset converts a voxel coordinate to the child slot within the
// containing lower internal node.
func lowerOffset(c Coord) int {
	x := (int(c.X) & (LowerTotalDim - 1)) >> LeafLog2Dim
	y := (int(c.Y) & (LowerTotalDim - 1)) >> LeafLog2Dim
	z := (int(c.Z) & (LowerTotalDim - 1)) >> LeafLog2Dim
	return (z << (LowerLog2Dim + LowerLog2Dim)) | (y << LowerLog2Dim) | x
}

// upperOffset converts a voxel coordinate to the child slot within the
// containing upper internal node.
func upperOffset(c Coord) int {
	x := (int(c.X) & (UpperTotalDim - 1)) >> (LeafLog2Dim + LowerLog2Dim)
	y := (int(c.Y) & (UpperTotalDim - 1)) >> (LeafLog2Dim + LowerLog2Dim)
	z := (int(c.Z) & (UpperTotalDim - 1)) >> (LeafLog2Dim + LowerLog2Dim)
	return (z << (UpperLog2Dim + UpperLog2Dim)) | (y << UpperLog2Dim) | x
}

// leafOrigin returns the origin of the leaf containing c.
func leafOrigin(c Coord) Coord {
	mask := int32(^(LeafTotalDim - 1))
	return Coord{c.X & mask, c.Y & mask, c.Z & mask}
}

// lowerOrigin returns the origin of the lower node containing c.
func lowerOrigin(c Coord) Coord {
	mask := int32(^(LowerTotalDim - 1))
	return Coord{c.X & mask, c.Y & mask, c.Z & mask}
}

// upperOrigin returns the origin of the upper node containing c. Upper
// origins double as root tile keys.
func upperOrigin(c Coord) Coord {
	mask := int32(^(UpperTotalDim - 1))
	return Coord{c.X & mask, c.Y & mask, c.Z & mask}
}
