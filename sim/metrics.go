package sim

import (
	"gonum.org/v1/gonum/floats"

	"github.com/pthm-cable/reactor-opt/blocks"
	"github.com/pthm-cable/reactor-opt/grid"
)

// AvgEfficiency is the mean fuel-cell efficiency across valid
// clusters, used by both search objective stages.
func (s *Simulator) AvgEfficiency(fuelIndex int) float64 {
	s.ensure(fuelIndex)
	sumEffs := make([]float64, 0, len(s.clusters))
	var count int
	for _, cl := range s.clusters {
		if !cl.Valid {
			continue
		}
		sumEffs = append(sumEffs, cl.SumEfficiency)
		count += cl.CellCount
	}
	if count == 0 {
		return 0
	}
	return floats.Sum(sumEffs) / float64(count)
}

// NumSandwichedModerators counts moderators that terminated a flux line
// in another cell or a reflector.
func (s *Simulator) NumSandwichedModerators(fuelIndex int) int {
	s.ensure(fuelIndex)
	n := 0
	for _, idx := range s.moderatorPositions {
		if s.sandwichedModerator[idx] {
			n++
		}
	}
	return n
}

// NumFluxedModerators counts moderators touched by any flux line,
// whether or not that line terminated meaningfully.
func (s *Simulator) NumFluxedModerators(fuelIndex int) int {
	s.ensure(fuelIndex)
	n := 0
	for _, idx := range s.moderatorPositions {
		if s.fluxedModerator[idx] {
			n++
		}
	}
	return n
}

// NumModerators is the raw moderator block count, independent of state.
func (s *Simulator) NumModerators(fuelIndex int) int {
	s.ensure(fuelIndex)
	return len(s.moderatorPositions)
}

// NumTrappedCells counts fuel cells whose six neighbors are all solid
// (cell/moderator/reflector/casing), i.e. with no Air, Cooler or
// Conductor neighbor.
func (s *Simulator) NumTrappedCells(fuelIndex int) int {
	s.ensure(fuelIndex)
	n := 0
	for _, idx := range s.fuelCellPositions {
		x, y, z := s.g.Coord(idx)
		if s.isTrapped(x, y, z) {
			n++
		}
	}
	return n
}

func (s *Simulator) isTrapped(x, y, z int) bool {
	for _, o := range grid.Offsets {
		k := s.g.KindAt(x+o.DX, y+o.DY, z+o.DZ)
		switch k {
		case blocks.FuelCell, blocks.Moderator, blocks.Reflector, blocks.Casing:
			continue
		default:
			return false
		}
	}
	return true
}

// NumEmptyBlocks counts Air plus Conductor plus inactive blocks.
func (s *Simulator) NumEmptyBlocks(fuelIndex int) int {
	s.ensure(fuelIndex)
	air, conductor := 0, 0
	for idx := 0; idx < s.g.Len(); idx++ {
		switch s.g.AtIndex(idx).Kind {
		case blocks.Air:
			air++
		case blocks.Conductor:
			conductor++
		}
	}
	return air + conductor + s.inactiveBlocks
}

// PowerPerCell divides effective power by the fuel cell count, guarding
// the zero-cell case.
func (s *Simulator) PowerPerCell(fuelIndex int) float64 {
	s.ensure(fuelIndex)
	n := len(s.fuelCellPositions)
	if n == 0 {
		return 0
	}
	return s.effectivePower / float64(n)
}

// HeatBalance returns totalHeating - totalCooling, the raw imbalance
// used by the stage-1 objective's heat-balance term.
func (s *Simulator) HeatBalance(fuelIndex int) float64 {
	s.ensure(fuelIndex)
	return s.totalHeating - s.totalCooling
}
