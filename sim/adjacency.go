package sim

import (
	"github.com/pthm-cable/reactor-opt/blocks"
	"github.com/pthm-cable/reactor-opt/grid"
)

// The 6-neighbor adjacency predicates. All of them read the
// active/valid caches as currently populated; callers are responsible
// for the pipeline ordering that makes the reads meaningful. Reads past
// the grid boundary report the Casing sentinel via grid.Grid.At/KindAt,
// so these never need their own bounds checks.

func (s *Simulator) countActiveFuelCellsAdjacent(x, y, z int) int {
	n := 0
	for _, o := range grid.Offsets {
		nx, ny, nz := x+o.DX, y+o.DY, z+o.DZ
		if s.g.KindAt(nx, ny, nz) == blocks.FuelCell && s.isActive(s.g.Index(nx, ny, nz)) {
			n++
		}
	}
	return n
}

func (s *Simulator) countValidModeratorsAdjacent(x, y, z int) int {
	n := 0
	for _, o := range grid.Offsets {
		nx, ny, nz := x+o.DX, y+o.DY, z+o.DZ
		if s.g.KindAt(nx, ny, nz) == blocks.Moderator && s.valid[s.g.Index(nx, ny, nz)] == isTrue {
			n++
		}
	}
	return n
}

func (s *Simulator) countActiveReflectorsAdjacent(x, y, z int) int {
	n := 0
	for _, o := range grid.Offsets {
		nx, ny, nz := x+o.DX, y+o.DY, z+o.DZ
		if s.g.KindAt(nx, ny, nz) == blocks.Reflector && s.isActive(s.g.Index(nx, ny, nz)) {
			n++
		}
	}
	return n
}

func (s *Simulator) countActiveCoolersOfVariantAdjacent(x, y, z int, v blocks.CoolerVariant) int {
	n := 0
	for _, o := range grid.Offsets {
		nx, ny, nz := x+o.DX, y+o.DY, z+o.DZ
		c := s.g.At(nx, ny, nz)
		if c.Kind == blocks.Cooler && c.Cooler == v && s.isActive(s.g.Index(nx, ny, nz)) {
			n++
		}
	}
	return n
}

func (s *Simulator) countActiveCoolersAdjacent(x, y, z int) int {
	n := 0
	for _, o := range grid.Offsets {
		nx, ny, nz := x+o.DX, y+o.DY, z+o.DZ
		c := s.g.At(nx, ny, nz)
		if c.Kind == blocks.Cooler && s.isActive(s.g.Index(nx, ny, nz)) {
			n++
		}
	}
	return n
}

func (s *Simulator) countCasingsAdjacent(x, y, z int) int {
	return s.g.CountKindAdjacent(x, y, z, blocks.Casing)
}

// hasAxialPairOfCooler reports whether an axis pair of neighbors are
// both active coolers of variant v.
func (s *Simulator) hasAxialPairOfCooler(x, y, z int, v blocks.CoolerVariant) bool {
	return s.g.HasAxialPair(x, y, z, func(nx, ny, nz int) bool {
		c := s.g.At(nx, ny, nz)
		return c.Kind == blocks.Cooler && c.Cooler == v && s.isActive(s.g.Index(nx, ny, nz))
	})
}

// hasAxialPairOfActiveReflector reports whether an axis pair of
// neighbors are both active reflectors.
func (s *Simulator) hasAxialPairOfActiveReflector(x, y, z int) bool {
	return s.g.HasAxialPair(x, y, z, func(nx, ny, nz int) bool {
		c := s.g.At(nx, ny, nz)
		return c.Kind == blocks.Reflector && s.isActive(s.g.Index(nx, ny, nz))
	})
}

// hasAxialPairOfCoolerAndCasing reports whether one axis direction
// holds an active cooler of variant v and the opposite direction is
// casing, as lithium's placement predicate requires.
func (s *Simulator) hasAxialPairOfCoolerAndCasing(x, y, z int, v blocks.CoolerVariant) bool {
	type off struct{ dx, dy, dz int }
	axes := [3][2]off{
		{{1, 0, 0}, {-1, 0, 0}},
		{{0, 1, 0}, {0, -1, 0}},
		{{0, 0, 1}, {0, 0, -1}},
	}
	coolerAt := func(nx, ny, nz int) bool {
		c := s.g.At(nx, ny, nz)
		return c.Kind == blocks.Cooler && c.Cooler == v && s.isActive(s.g.Index(nx, ny, nz))
	}
	casingAt := func(nx, ny, nz int) bool {
		return s.g.KindAt(nx, ny, nz) == blocks.Casing
	}
	for _, pair := range axes {
		a, b := pair[0], pair[1]
		if coolerAt(x+a.dx, y+a.dy, z+a.dz) && casingAt(x+b.dx, y+b.dy, z+b.dz) {
			return true
		}
		if coolerAt(x+b.dx, y+b.dy, z+b.dz) && casingAt(x+a.dx, y+a.dy, z+a.dz) {
			return true
		}
	}
	return false
}
