package voxtree

import "fmt"

// Grid is a read-only view over a serialized sparse voxel tree. It holds no
// state besides the buffer reference; every query goes back to the buffer,
// so a Grid may be shared freely across goroutines. Lookups go through an
// Accessor, one per traversal session (see NewAccessor).
type Grid struct {
	buf []byte
}

// NewGrid validates the buffer header and returns a view over it. The
// buffer must stay alive and unmodified for as long as the Grid is used.
func NewGrid(buf []byte) (*Grid, error) {
	if len(buf) < headerSize || string(buf[offMagic:offMagic+4]) != gridMagic {
		return nil, fmt.Errorf("not a VXTR grid")
	}
	if v := buf[offVersion]; v != gridVersion {
		return nil, fmt.Errorf("unsupported VXTR version: %d", v)
	}
	if t := buf[offGridType]; t != gridTypeF32 {
		return nil, fmt.Errorf("unsupported grid value type: %d", t)
	}
	g := &Grid{buf: buf}
	if want := g.leafSectionOff() + int(readU32(buf, offLeafCount))*leafNodeSize; len(buf) < want {
		return nil, fmt.Errorf("truncated VXTR grid: have %d bytes, need %d", len(buf), want)
	}
	return g, nil
}

func (g *Grid) tileSectionOff() int { return headerSize }

func (g *Grid) upperSectionOff() int {
	return headerSize + int(readU32(g.buf, offTileCount))*tileSize
}

func (g *Grid) lowerSectionOff() int {
	return g.upperSectionOff() + int(readU32(g.buf, offUpperCount))*upperNodeSize
}

func (g *Grid) leafSectionOff() int {
	return g.lowerSectionOff() + int(readU32(g.buf, offLowerCount))*lowerNodeSize
}

// readScalar reads the float32 stored at a resolved value address.
func (g *Grid) readScalar(addr int) float32 { return readF32(g.buf, addr) }

// MinIndex returns the minimum corner of the index-space bounding box.
func (g *Grid) MinIndex() Coord { return readCoord(g.buf, offBBoxMin) }

// MaxIndex returns the maximum corner of the index-space bounding box.
func (g *Grid) MaxIndex() Coord { return readCoord(g.buf, offBBoxMax) }

// MinValue returns the smallest active value stored in the grid.
func (g *Grid) MinValue() float32 { return g.readScalar(offMinValue) }

// MaxValue returns the largest active value stored in the grid.
func (g *Grid) MaxValue() float32 { return g.readScalar(offMaxValue) }

// Background returns the value reported for coordinates outside the
// populated region.
func (g *Grid) Background() float32 { return g.readScalar(offBackground) }

// mulMat applies the 3x3 matrix stored at off to v.
func (g *Grid) mulMat(off int, v Vec3) Vec3 {
	m := g.buf
	return Vec3{
		readF32(m, off)*v.X + readF32(m, off+4)*v.Y + readF32(m, off+8)*v.Z,
		readF32(m, off+12)*v.X + readF32(m, off+16)*v.Y + readF32(m, off+20)*v.Z,
		readF32(m, off+24)*v.X + readF32(m, off+28)*v.Y + readF32(m, off+32)*v.Z,
	}
}

// IndexToWorldPos transforms a position from index space to world space.
func (g *Grid) IndexToWorldPos(p Vec3) Vec3 {
	w := g.mulMat(offMat, p)
	return Vec3{
		w.X + readF32(g.buf, offTranslate),
		w.Y + readF32(g.buf, offTranslate+4),
		w.Z + readF32(g.buf, offTranslate+8),
	}
}

// WorldToIndexPos transforms a position from world space to index space.
func (g *Grid) WorldToIndexPos(p Vec3) Vec3 {
	return g.mulMat(offInvMat, Vec3{
		p.X - readF32(g.buf, offTranslate),
		p.Y - readF32(g.buf, offTranslate+4),
		p.Z - readF32(g.buf, offTranslate+8),
	})
}

// IndexToWorldDir transforms a direction from index space to world space.
// Directions ignore translation and are returned unit length.
func (g *Grid) IndexToWorldDir(d Vec3) Vec3 {
	return g.mulMat(offMat, d).Normalize()
}

// WorldToIndexDir transforms a direction from world space to index space,
// returned unit length.
func (g *Grid) WorldToIndexDir(d Vec3) Vec3 {
	return g.mulMat(offInvMat, d).Normalize()
}

// ActiveVoxels returns the number of voxels with an explicitly stored value.
func (g *Grid) ActiveVoxels() int {
	n := 0
	g.ForEachActive(func(Coord, float32) { n++ })
	return n
}

// ForEachActive calls fn for every active voxel, in leaf storage order.
// Intended for export and inspection tooling, not the sampling hot path.
func (g *Grid) ForEachActive(fn func(c Coord, v float32)) {
	leafOff := g.leafSectionOff()
	for i := 0; i < int(readU32(g.buf, offLeafCount)); i++ {
		node := leafOff + i*leafNodeSize
		origin := readCoord(g.buf, node)
		for n := 0; n < LeafValues; n++ {
			if !maskBit(g.buf, node+nodeOriginSize, n) {
				continue
			}
			c := Coord{
				origin.X + int32(n&(LeafDim-1)),
				origin.Y + int32((n>>LeafLog2Dim)&(LeafDim-1)),
				origin.Z + int32(n>>(LeafLog2Dim+LeafLog2Dim)),
			}
			fn(c, readF32(g.buf, node+leafValuesOff+n*4))
		}
	}
}
