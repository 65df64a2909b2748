package sim

import (
	"github.com/pthm-cable/reactor-opt/blocks"
	"github.com/pthm-cable/reactor-opt/grid"
)

// runFluxBroadcast seeds the work queue with every primed, line-of-sight
// cell in grid-scan order and drains it. Recursion is translated into
// an explicit queue so deep neighbor chains don't grow the call stack.
func (s *Simulator) runFluxBroadcast(fuelIndex int) {
	queue := append([]int(nil), s.primedPositions...)
	for len(queue) > 0 {
		idx := queue[0]
		queue = queue[1:]
		s.broadcastFlux(idx, fuelIndex, &queue)
	}
}

// broadcastFlux walks the six axis lines out of one fuel cell,
// accumulating moderator flux. It runs only once per cell per
// evaluation (guarded by the visited flag, set before any recursive
// enqueue to guarantee termination).
func (s *Simulator) broadcastFlux(pos, fuelIndex int, queue *[]int) {
	c := s.g.AtIndex(pos)
	if c.Kind != blocks.FuelCell {
		return
	}
	if s.visited[pos] {
		return
	}
	s.visited[pos] = true

	// A primed cell seeds flux on its own: it is active and valid
	// regardless of any incoming flux, since its neutron source supplies
	// criticality by itself. Non-primed cells only reach this point via
	// the *queue enqueue in the FuelCell branch below, which already set
	// active/valid before pushing, so this is a no-op for them.
	if c.Source.Primed() {
		s.active[pos] = isTrue
		s.valid[pos] = isTrue
	}

	fuel, ok := s.rs.FuelAt(fuelIndex)
	if !ok {
		return
	}
	maxSteps := s.rs.NeutronReach + 1
	halfReach := s.rs.NeutronReach / 2
	x, y, z := s.g.Coord(pos)

	for _, o := range grid.Offsets {
		cx, cy, cz := x, y, z
		sumModFlux := 0.0
		sumModEff := 0.0
		modsInLine := 0
		var touched []int

	stepLoop:
		for step := 1; step <= maxSteps; step++ {
			cx += o.DX
			cy += o.DY
			cz += o.DZ
			k := s.g.KindAt(cx, cy, cz)

			switch k {
			case blocks.Moderator:
				cell := s.g.At(cx, cy, cz)
				idx2 := s.g.Index(cx, cy, cz)
				sumModFlux += s.rs.ModeratorFluxOf(cell.Moderator)
				sumModEff += s.rs.ModeratorEfficiencyOf(cell.Moderator)
				modsInLine++
				touched = append(touched, idx2)
				continue stepLoop

			case blocks.FuelCell:
				farIdx := s.g.Index(cx, cy, cz)
				for _, m := range touched {
					s.sandwichedModerator[m] = true
				}
				if !containsInt(s.cellAdjacency[pos], farIdx) {
					addAdjacency(s.cellAdjacency, pos, farIdx)
					addAdjacency(s.cellAdjacency, farIdx, pos)
					effAdd := 0.0
					if modsInLine > 0 {
						effAdd = sumModEff / float64(modsInLine)
					}
					s.posEff[farIdx] += effAdd
					s.modFlux[farIdx] += sumModFlux
					if s.modFlux[farIdx] >= fuel.Criticality {
						s.active[farIdx] = isTrue
						s.valid[farIdx] = isTrue
						if !s.visited[farIdx] {
							*queue = append(*queue, farIdx)
						}
					}
				}
				break stepLoop

			case blocks.Reflector:
				if step > 0 && step <= halfReach {
					reflIdx := s.g.Index(cx, cy, cz)
					reflCell := s.g.At(cx, cy, cz)
					reflectivity := s.rs.ReflectorReflectivityOf(reflCell.Reflector)
					s.modFlux[pos] += 2 * sumModFlux * reflectivity
					if modsInLine > 0 {
						s.posEff[pos] += s.rs.ReflectorEfficiencyOf(reflCell.Reflector) * sumModEff / float64(modsInLine)
					}
					addAdjacency(s.reflectorAdjacency, reflIdx, pos)
					for _, m := range touched {
						s.sandwichedModerator[m] = true
					}
					if s.modFlux[pos] >= fuel.Criticality {
						s.active[pos] = isTrue
						s.valid[pos] = isTrue
						s.active[reflIdx] = isTrue
					}
				}
				break stepLoop

			default:
				break stepLoop
			}
		}

		for _, m := range touched {
			s.fluxedModerator[m] = true
		}
	}
}
