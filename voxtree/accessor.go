package voxtree

// Accessor caches the most recent root-to-leaf traversal so that spatially
// coherent lookups skip the full descent. It is cheap to create and meant
// to live for one traversal session (one ray, one sampling loop). An
// Accessor is bound to the grid that created it and must not be shared
// across goroutines: every lookup mutates the cache.
type Accessor struct {
	g *Grid

	// Root resolved once at creation.
	tilesOff  int
	tileCount int

	// Cached node offsets per level, -1 while cold.
	upperOff, lowerOff, leafOff    int
	upperOrig, lowerOrig, leafOrig Coord
}

// NewAccessor resolves the tree root and returns a cold accessor for g.
func (g *Grid) NewAccessor() *Accessor {
	return &Accessor{
		g:         g,
		tilesOff:  g.tileSectionOff(),
		tileCount: int(readU32(g.buf, offTileCount)),
		upperOff:  -1,
		lowerOff:  -1,
		leafOff:   -1,
	}
}

// valueAddr resolves the buffer address of the value for voxel c, reusing
// the deepest cached node that still covers c and re-descending otherwise.
// Coordinates outside the populated tree resolve to the background address,
// so the result is always readable.
func (a *Accessor) valueAddr(c Coord) int {
	if a.leafOff >= 0 && leafOrigin(c) == a.leafOrig {
		return a.leafOff + leafValuesOff + leafOffset(c)*4
	}
	if a.lowerOff >= 0 && lowerOrigin(c) == a.lowerOrig {
		return a.descendLower(c)
	}
	if a.upperOff >= 0 && upperOrigin(c) == a.upperOrig {
		return a.descendUpper(c)
	}
	return a.descendRoot(c)
}

func (a *Accessor) descendRoot(c Coord) int {
	key := upperOrigin(c)
	buf := a.g.buf
	for i := 0; i < a.tileCount; i++ {
		tile := a.tilesOff + i*tileSize
		if readCoord(buf, tile) == key {
			a.upperOrig = key
			a.upperOff = a.g.upperSectionOff() + int(readU32(buf, tile+12))*upperNodeSize
			return a.descendUpper(c)
		}
	}
	return offBackground
}

func (a *Accessor) descendUpper(c Coord) int {
	buf := a.g.buf
	n := upperOffset(c)
	mask := a.upperOff + nodeOriginSize
	if !maskBit(buf, mask, n) {
		return offBackground
	}
	child := int(readU32(buf, a.upperOff+12)) + maskCountBelow(buf, mask, n)
	a.lowerOrig = lowerOrigin(c)
	a.lowerOff = a.g.lowerSectionOff() + child*lowerNodeSize
	return a.descendLower(c)
}

func (a *Accessor) descendLower(c Coord) int {
	buf := a.g.buf
	n := lowerOffset(c)
	mask := a.lowerOff + nodeOriginSize
	if !maskBit(buf, mask, n) {
		return offBackground
	}
	child := int(readU32(buf, a.lowerOff+12)) + maskCountBelow(buf, mask, n)
	a.leafOrig = leafOrigin(c)
	a.leafOff = a.g.leafSectionOff() + child*leafNodeSize
	return a.leafOff + leafValuesOff + leafOffset(c)*4
}
