package voxtree

import "math"

func floorf(x float32) float32 { return float32(math.Floor(float64(x))) }

// fracf returns the fractional part of x, in [0,1) for any sign of x.
func fracf(x float32) float32 { return x - floorf(x) }

func lerp(a, b, t float32) float32 { return a + (b-a)*t }

// LookupIndex returns the value of the voxel at integer coordinate c.
// Coordinates outside the populated region read the background value.
func (g *Grid) LookupIndex(c Coord, a *Accessor) float32 {
	return g.readScalar(a.valueAddr(c))
}

// LookupWorld is LookupIndex at the world position p, truncated to a voxel
// coordinate after the world-to-index transform.
func (g *Grid) LookupWorld(p Vec3, a *Accessor) float32 {
	i := g.WorldToIndexPos(p)
	return g.LookupIndex(Coord{int32(i.X), int32(i.Y), int32(i.Z)}, a)
}

// LookupLinearIndex trilinearly interpolates the eight voxel centers
// surrounding the fractional index position p. Voxel (i,j,k) holds its
// value at position (i+0.5, j+0.5, k+0.5), hence the half-voxel shift
// before the lattice is derived.
func (g *Grid) LookupLinearIndex(p Vec3, a *Accessor) float32 {
	ox := p.X - 0.5
	oy := p.Y - 0.5
	oz := p.Z - 0.5
	ix := int32(floorf(ox))
	iy := int32(floorf(oy))
	iz := int32(floorf(oz))
	fx := ox - float32(ix)
	fy := oy - float32(iy)
	fz := oz - float32(iz)

	v000 := g.LookupIndex(Coord{ix, iy, iz}, a)
	v100 := g.LookupIndex(Coord{ix + 1, iy, iz}, a)
	v010 := g.LookupIndex(Coord{ix, iy + 1, iz}, a)
	v110 := g.LookupIndex(Coord{ix + 1, iy + 1, iz}, a)
	v001 := g.LookupIndex(Coord{ix, iy, iz + 1}, a)
	v101 := g.LookupIndex(Coord{ix + 1, iy, iz + 1}, a)
	v011 := g.LookupIndex(Coord{ix, iy + 1, iz + 1}, a)
	v111 := g.LookupIndex(Coord{ix + 1, iy + 1, iz + 1}, a)

	// Blend x, then y, then z. The order is part of the contract: it fixes
	// the floating-point rounding of the result.
	y0 := lerp(lerp(v000, v100, fx), lerp(v010, v110, fx), fy)
	y1 := lerp(lerp(v001, v101, fx), lerp(v011, v111, fx), fy)
	return lerp(y0, y1, fz)
}

// LookupLinearWorld is LookupLinearIndex at the world position p.
func (g *Grid) LookupLinearWorld(p Vec3, a *Accessor) float32 {
	return g.LookupLinearIndex(g.WorldToIndexPos(p), a)
}

// LookupStochasticIndex samples the grid with a single lookup whose
// expectation over uniform u in [0,1)³ equals LookupLinearIndex at p.
// Per axis, the query steps to the neighboring voxel with probability
// equal to that axis' interpolation weight; the selection is independent
// across axes. u must come from the caller — the function itself is a
// pure deterministic mapping, which keeps renders reproducible.
func (g *Grid) LookupStochasticIndex(p, u Vec3, a *Accessor) float32 {
	dx := fracf(p.X) - 0.5
	dy := fracf(p.Y) - 0.5
	dz := fracf(p.Z) - 0.5
	c := Coord{
		int32(p.X) + stochasticStep(dx, u.X),
		int32(p.Y) + stochasticStep(dy, u.Y),
		int32(p.Z) + stochasticStep(dz, u.Z),
	}
	return g.LookupIndex(c, a)
}

// LookupStochasticWorld is LookupStochasticIndex at the world position p.
func (g *Grid) LookupStochasticWorld(p, u Vec3, a *Accessor) float32 {
	return g.LookupStochasticIndex(g.WorldToIndexPos(p), u, a)
}

// stochasticStep decides the one-voxel offset along a single axis: step
// toward the sign of d with probability |d|, else stay.
func stochasticStep(d, u float32) int32 {
	if u < d || u < -d {
		if d < 0 {
			return -1
		}
		return 1
	}
	return 0
}
