package sim

import (
	"github.com/pthm-cable/reactor-opt/blocks"
	"github.com/pthm-cable/reactor-opt/grid"
)

// revertCaches clears every derived cache and rescans the grid to
// repopulate the per-kind position caches (pipeline step 1).
func (s *Simulator) revertCaches() {
	n := s.g.Len()
	s.active = newTriStateSlice(n)
	s.valid = newTriStateSlice(n)
	s.visited = make([]bool, n)
	s.posEff = make([]float64, n)
	s.modFlux = make([]float64, n)
	s.fluxedModerator = make([]bool, n)
	s.sandwichedModerator = make([]bool, n)
	s.clusterID = make([]int32, n)
	s.conductorID = make([]int32, n)
	for i := range s.clusterID {
		s.clusterID[i] = -1
		s.conductorID[i] = -1
	}
	s.cellAdjacency = make(map[int][]int)
	s.reflectorAdjacency = make(map[int][]int)
	s.clusters = make(map[int]*ClusterStats)
	s.clusterMembers = make(map[int][]int)
	s.conductorValidSet = make(map[int]bool)

	s.fuelCellPositions = s.fuelCellPositions[:0]
	s.moderatorPositions = s.moderatorPositions[:0]
	s.reflectorPositions = s.reflectorPositions[:0]
	s.coolerPositions = s.coolerPositions[:0]
	s.conductorPositions = s.conductorPositions[:0]
	s.primedPositions = s.primedPositions[:0]

	maxSteps := s.rs.NeutronReach + 1
	s.g.Each(func(x, y, z, idx int, c grid.Cell) {
		switch c.Kind {
		case blocks.FuelCell:
			s.fuelCellPositions = append(s.fuelCellPositions, idx)
			if c.Source.Primed() && s.g.LineOfSightToCasing(x, y, z, maxSteps, obstructsFlux) {
				s.primedPositions = append(s.primedPositions, idx)
			}
		case blocks.Moderator:
			s.moderatorPositions = append(s.moderatorPositions, idx)
		case blocks.Reflector:
			s.reflectorPositions = append(s.reflectorPositions, idx)
		case blocks.Cooler:
			s.coolerPositions = append(s.coolerPositions, idx)
		case blocks.Conductor:
			s.conductorPositions = append(s.conductorPositions, idx)
		}
	})
}

// obstructsFlux decides which block kinds break the line-of-sight-to-casing
// scan that gates primed cells. Air and Moderator are transparent;
// everything solid stops it. (broadcastFlux itself stops on Air.)
func obstructsFlux(k blocks.Kind) bool {
	return k != blocks.Air && k != blocks.Moderator
}

func addAdjacency(m map[int][]int, a, b int) {
	if !containsInt(m[a], b) {
		m[a] = append(m[a], b)
	}
}

func containsInt(s []int, v int) bool {
	for _, x := range s {
		if x == v {
			return true
		}
	}
	return false
}
