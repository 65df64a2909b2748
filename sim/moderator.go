package sim

import (
	"github.com/pthm-cable/reactor-opt/blocks"
	"github.com/pthm-cable/reactor-opt/grid"
)

// broadcastModeratorActivations is pipeline step 4: for each active fuel
// cell, walk each axis line through consecutive moderators; if the line
// terminates in another valid fuel cell or a reflector, every moderator
// touched along the way becomes both active and valid.
func (s *Simulator) broadcastModeratorActivations() {
	maxSteps := s.rs.NeutronReach + 1
	for _, origin := range s.fuelCellPositions {
		if s.active[origin] != isTrue {
			continue
		}
		x, y, z := s.g.Coord(origin)
		for _, o := range grid.Offsets {
			cx, cy, cz := x, y, z
			var touched []int
			terminated := false

		stepLoop:
			for step := 1; step <= maxSteps; step++ {
				cx += o.DX
				cy += o.DY
				cz += o.DZ
				k := s.g.KindAt(cx, cy, cz)
				switch k {
				case blocks.Moderator:
					touched = append(touched, s.g.Index(cx, cy, cz))
					continue stepLoop
				case blocks.FuelCell:
					farIdx := s.g.Index(cx, cy, cz)
					if farIdx != origin && s.valid[farIdx] == isTrue {
						terminated = true
					}
					break stepLoop
				case blocks.Reflector:
					terminated = true
					break stepLoop
				default:
					break stepLoop
				}
			}

			if terminated {
				for _, m := range touched {
					s.active[m] = isTrue
					s.valid[m] = isTrue
				}
			}
		}
	}
}
