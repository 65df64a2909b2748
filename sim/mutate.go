package sim

import (
	"github.com/pthm-cable/reactor-opt/blocks"
	"github.com/pthm-cable/reactor-opt/grid"
)

// PruneInactives replaces with Air any
// non-Air, non-Conductor cell that is neither active, valid, primed (with
// a surviving line-of-sight to an active cell), nor a fluxed moderator.
// Conductors belonging to an invalid group are also removed unless
// keepConductors is set.
func (s *Simulator) PruneInactives(fuelIndex int, keepConductors bool) {
	s.ensure(fuelIndex)
	maxSteps := s.rs.NeutronReach + 1

	var toClear [][3]int
	s.g.Each(func(x, y, z, idx int, c grid.Cell) {
		switch c.Kind {
		case blocks.Air:
			return
		case blocks.Conductor:
			if !keepConductors && !s.conductorValidSet[int(s.conductorID[idx])] {
				toClear = append(toClear, [3]int{x, y, z})
			}
			return
		}

		if s.active[idx] == isTrue || s.valid[idx] == isTrue {
			return
		}
		if c.Kind == blocks.Moderator && s.fluxedModerator[idx] {
			return
		}
		if c.Kind == blocks.FuelCell && c.Source.Primed() && s.reachesActiveFuelCell(x, y, z, maxSteps) {
			return
		}
		toClear = append(toClear, [3]int{x, y, z})
	})

	for _, p := range toClear {
		s.g.SetCellAt(p[0], p[1], p[2], blocks.Air)
	}
}

// reachesActiveFuelCell is the line-of-sight probe applied to a
// primed-but-inactive cell: true if an active fuel cell is reachable
// along any axis through a run of transparent (cell/moderator) blocks.
func (s *Simulator) reachesActiveFuelCell(x, y, z, maxSteps int) bool {
	for _, o := range grid.Offsets {
		cx, cy, cz := x, y, z
		for step := 0; step < maxSteps; step++ {
			cx += o.DX
			cy += o.DY
			cz += o.DZ
			k := s.g.KindAt(cx, cy, cz)
			if k == blocks.FuelCell {
				idx2 := s.g.Index(cx, cy, cz)
				if s.active[idx2] == isTrue {
					return true
				}
				continue
			}
			if k == blocks.Moderator {
				continue
			}
			break
		}
	}
	return false
}

// ClearInfeasibleClusters wipes clusters that can never run: any
// cluster that is either not in the valid set or produces no cooling is
// wiped to Air, since it can only ever drag duty cycle to zero.
func (s *Simulator) ClearInfeasibleClusters(fuelIndex int) {
	s.ensure(fuelIndex)
	for id, stats := range s.clusters {
		if stats.Valid && stats.Cooling > 0 {
			continue
		}
		for _, idx := range s.clusterMembers[id] {
			x, y, z := s.g.Coord(idx)
			s.g.SetCellAt(x, y, z, blocks.Air)
		}
	}
}

// FloodFillWithConductors replaces
// every Air cell with Conductor, a probe edit used to densely test
// conductivity (invalid conductor groups are pruned on the next
// evaluation pass).
func (s *Simulator) FloodFillWithConductors() {
	n := s.g.Len()
	for idx := 0; idx < n; idx++ {
		if s.g.AtIndex(idx).Kind != blocks.Air {
			continue
		}
		x, y, z := s.g.Coord(idx)
		s.g.SetCellAt(x, y, z, blocks.Conductor)
	}
}
