// Package grid implements the reactor's 3D cell storage: a flat
// row-major array of typed cells with bounds-checked accessors and the
// 6-neighbor adjacency primitives the simulator walks.
package grid

import "github.com/pthm-cable/reactor-opt/blocks"

// Offset is one of the six axis-aligned unit steps.
type Offset struct{ DX, DY, DZ int }

// Offsets enumerates the six unit neighbor steps: +x, -x, +y, -y, +z, -z.
var Offsets = [6]Offset{
	{1, 0, 0}, {-1, 0, 0},
	{0, 1, 0}, {0, -1, 0},
	{0, 0, 1}, {0, 0, -1},
}

// Cell holds the typed contents of one grid position.
type Cell struct {
	Kind      blocks.Kind
	Cooler    blocks.CoolerVariant
	Moderator blocks.ModeratorVariant
	Source    blocks.NeutronSourceVariant
	Reflector blocks.ReflectorVariant
}

// Grid is a flat, row-major 3D array of cells bounded by an implicit
// casing: reads outside [0,X)×[0,Y)×[0,Z) report BlockKind=Casing.
type Grid struct {
	X, Y, Z int
	cells   []Cell
	dirty   bool
}

// New creates a zero-filled (all Air) grid of the given dimensions.
func New(x, y, z int) *Grid {
	if x < 1 {
		x = 1
	}
	if y < 1 {
		y = 1
	}
	if z < 1 {
		z = 1
	}
	return &Grid{
		X: x, Y: y, Z: z,
		cells: make([]Cell, x*y*z),
		dirty: true,
	}
}

// Clone returns a deep, independent copy of the grid.
func (g *Grid) Clone() *Grid {
	out := &Grid{X: g.X, Y: g.Y, Z: g.Z, dirty: g.dirty}
	out.cells = make([]Cell, len(g.cells))
	copy(out.cells, g.cells)
	return out
}

func (g *Grid) inBounds(x, y, z int) bool {
	return x >= 0 && y >= 0 && z >= 0 && x < g.X && y < g.Y && z < g.Z
}

// Index returns the flat index for an in-bounds coordinate.
func (g *Grid) Index(x, y, z int) int {
	return x*(g.Y*g.Z) + y*g.Z + z
}

// Coord returns the (x,y,z) coordinate for a flat index.
func (g *Grid) Coord(idx int) (x, y, z int) {
	x = idx / (g.Y * g.Z)
	rem := idx % (g.Y * g.Z)
	y = rem / g.Z
	z = rem % g.Z
	return
}

// Len returns the total number of cells.
func (g *Grid) Len() int { return len(g.cells) }

// Dirty reports whether the grid has been mutated since the last clean mark.
func (g *Grid) Dirty() bool { return g.dirty }

// MarkClean clears the dirty flag; called by the simulator after evaluation.
func (g *Grid) MarkClean() { g.dirty = false }

// At returns the cell contents at (x,y,z). Out-of-bounds reads report the
// implicit casing boundary (Kind=Casing, all variants Air).
func (g *Grid) At(x, y, z int) Cell {
	if !g.inBounds(x, y, z) {
		return Cell{Kind: blocks.Casing}
	}
	return g.cells[g.Index(x, y, z)]
}

// AtIndex returns the cell at a flat index known to be in bounds.
func (g *Grid) AtIndex(idx int) Cell { return g.cells[idx] }

// KindAt returns just the block kind at (x,y,z), Casing if out of bounds.
func (g *Grid) KindAt(x, y, z int) blocks.Kind {
	if !g.inBounds(x, y, z) {
		return blocks.Casing
	}
	return g.cells[g.Index(x, y, z)].Kind
}

// SetCell mutates a cell, silently ignoring out-of-bounds coordinates.
// Off-kind variants are zeroed to preserve the invariant that a variant
// field is non-Air only when Kind matches it.
func (g *Grid) SetCell(x, y, z int, kind blocks.Kind, cooler blocks.CoolerVariant, moderator blocks.ModeratorVariant, source blocks.NeutronSourceVariant, reflector blocks.ReflectorVariant) {
	if !g.inBounds(x, y, z) {
		return
	}
	c := Cell{Kind: kind}
	if kind == blocks.Cooler {
		c.Cooler = cooler
	}
	if kind == blocks.Moderator {
		c.Moderator = moderator
	}
	if kind == blocks.Reflector {
		c.Reflector = reflector
	}
	if kind == blocks.FuelCell {
		c.Source = source
	}
	g.cells[g.Index(x, y, z)] = c
	g.dirty = true
}

// SetCellAt is a convenience for setting just the kind, zeroing all variants.
func (g *Grid) SetCellAt(x, y, z int, kind blocks.Kind) {
	g.SetCell(x, y, z, kind, blocks.CoolerAir, blocks.ModeratorAir, blocks.SourceUnprimed, blocks.ReflectorAir)
}

// Each calls fn for every in-bounds cell in grid-scan order (x outer,
// y mid, z inner), the order flux broadcasting relies on for
// reproducible traversal.
func (g *Grid) Each(fn func(x, y, z, idx int, c Cell)) {
	idx := 0
	for x := 0; x < g.X; x++ {
		for y := 0; y < g.Y; y++ {
			for z := 0; z < g.Z; z++ {
				fn(x, y, z, idx, g.cells[idx])
				idx++
			}
		}
	}
}

// CountKindAdjacent returns how many of the 6 neighbors of (x,y,z) have
// the given block kind (0..6). Casing counts as a kind like any other.
func (g *Grid) CountKindAdjacent(x, y, z int, kind blocks.Kind) int {
	n := 0
	for _, o := range Offsets {
		if g.KindAt(x+o.DX, y+o.DY, z+o.DZ) == kind {
			n++
		}
	}
	return n
}

// LineOfSightToCasing reports whether, along at least one of the six
// axis directions, the casing boundary lies within maxSteps steps with
// only non-obstructing cells (at most maxSteps-1 of them) before it.
// obstructs decides whether a given cell kind blocks the line.
func (g *Grid) LineOfSightToCasing(x, y, z, maxSteps int, obstructs func(blocks.Kind) bool) bool {
	for _, o := range Offsets {
		cx, cy, cz := x, y, z
		reached := false
		for step := 0; step < maxSteps; step++ {
			cx += o.DX
			cy += o.DY
			cz += o.DZ
			k := g.KindAt(cx, cy, cz)
			if k == blocks.Casing {
				reached = true
				break
			}
			if obstructs(k) {
				break
			}
		}
		if reached {
			return true
		}
	}
	return false
}

// HasAxialPair reports whether any of the three axis pairs around
// (x,y,z) both satisfy pred (typically "is this neighbor an active
// cooler/reflector of variant V").
func (g *Grid) HasAxialPair(x, y, z int, pred func(nx, ny, nz int) bool) bool {
	pairs := [3][2]Offset{
		{{1, 0, 0}, {-1, 0, 0}},
		{{0, 1, 0}, {0, -1, 0}},
		{{0, 0, 1}, {0, 0, -1}},
	}
	for _, pair := range pairs {
		a, b := pair[0], pair[1]
		if pred(x+a.DX, y+a.DY, z+a.DZ) && pred(x+b.DX, y+b.DY, z+b.DZ) {
			return true
		}
	}
	return false
}
