package voxtree

import (
	"encoding/binary"
	"math"
	"math/bits"
)

// Serialized grid layout ("VXTR" v1). Everything is little-endian.
//
//	header | root tiles | upper nodes | lower nodes | leaf nodes
//
// Nodes of each level are fixed size. A node addresses its children through
// a bitmask plus the index of its first child: child n lives at
// firstChild + popcount(mask below n), so the children of one node are
// always contiguous in the next level's array.
const (
	gridMagic    = "VXTR"
	gridVersion  = 1
	gridTypeF32  = 1

	offMagic      = 0   // 4 bytes
	offVersion    = 4   // uint8
	offGridType   = 5   // uint8, then 2 reserved bytes
	offMat        = 8   // [9]float32 index->world linear part
	offInvMat     = 44  // [9]float32 world->index linear part
	offTranslate  = 80  // [3]float32 index->world translation
	offBBoxMin    = 92  // [3]int32
	offBBoxMax    = 104 // [3]int32
	offMinValue   = 116 // float32
	offMaxValue   = 120 // float32
	offBackground = 124 // float32
	offTileCount  = 128 // uint32
	offUpperCount = 132 // uint32
	offLowerCount = 136 // uint32
	offLeafCount  = 140 // uint32
	headerSize    = 144

	// Root tile: origin [3]int32 + upper node index uint32.
	tileSize = 16

	upperMaskWords = UpperChildren / 64 // 512
	lowerMaskWords = LowerChildren / 64 // 64
	leafMaskWords  = LeafValues / 64    // 8

	// Node layouts: origin [3]int32, first-child uint32 (reserved in the
	// leaf), child/value bitmask, and for leaves a dense value array.
	upperNodeSize = 16 + upperMaskWords*8                 // 4112
	lowerNodeSize = 16 + lowerMaskWords*8                 // 528
	leafNodeSize  = 16 + leafMaskWords*8 + LeafValues*4   // 2128

	nodeOriginSize = 16
	leafValuesOff  = nodeOriginSize + leafMaskWords*8
)

func readU32(buf []byte, off int) uint32 {
	return binary.LittleEndian.Uint32(buf[off:])
}

func readU64(buf []byte, off int) uint64 {
	return binary.LittleEndian.Uint64(buf[off:])
}

func readI32(buf []byte, off int) int32 {
	return int32(binary.LittleEndian.Uint32(buf[off:]))
}

func readF32(buf []byte, off int) float32 {
	return math.Float32frombits(binary.LittleEndian.Uint32(buf[off:]))
}

func readCoord(buf []byte, off int) Coord {
	return Coord{readI32(buf, off), readI32(buf, off+4), readI32(buf, off+8)}
}

// maskBit reports whether bit n of the mask starting at off is set.
func maskBit(buf []byte, off, n int) bool {
	return readU64(buf, off+(n>>6)*8)&(1<<uint(n&63)) != 0
}

// maskCountBelow counts the set mask bits strictly below n. Combined with a
// node's first-child index this yields the child's position in the next
// level's node array.
func maskCountBelow(buf []byte, off, n int) int {
	cnt := 0
	for w := 0; w < n>>6; w++ {
		cnt += bits.OnesCount64(readU64(buf, off+w*8))
	}
	if r := uint(n & 63); r > 0 {
		cnt += bits.OnesCount64(readU64(buf, off+(n>>6)*8) & (1<<r - 1))
	}
	return cnt
}
