package sim

import (
	"github.com/pthm-cable/reactor-opt/blocks"
	"github.com/pthm-cable/reactor-opt/grid"
)

// floodFillConductors is pipeline step 2: label
// conductor groups, then mark every cell of a casing-touching group both
// active and valid.
func (s *Simulator) floodFillConductors() {
	var nextID int32
	for _, start := range s.conductorPositions {
		if s.conductorID[start] != -1 {
			continue
		}
		id := nextID
		nextID++
		s.conductorID[start] = id
		queue := []int{start}
		touchesCasing := false

		for len(queue) > 0 {
			cur := queue[0]
			queue = queue[1:]
			x, y, z := s.g.Coord(cur)
			if s.countCasingsAdjacent(x, y, z) > 0 {
				touchesCasing = true
			}
			for _, o := range grid.Offsets {
				nx, ny, nz := x+o.DX, y+o.DY, z+o.DZ
				if s.g.KindAt(nx, ny, nz) != blocks.Conductor {
					continue
				}
				nIdx := s.g.Index(nx, ny, nz)
				if s.conductorID[nIdx] != -1 {
					continue
				}
				s.conductorID[nIdx] = id
				queue = append(queue, nIdx)
			}
		}
		if touchesCasing {
			s.conductorValidSet[int(id)] = true
		}
	}

	for _, idx := range s.conductorPositions {
		if s.conductorValidSet[int(s.conductorID[idx])] {
			s.active[idx] = isTrue
			s.valid[idx] = isTrue
		}
	}
}

// floodFillClusters is pipeline step 7: group valid
// fuel cells and active coolers into clusters, and decide each
// cluster's validity (casing-adjacent, or bridged by an active
// conductor group).
func (s *Simulator) floodFillClusters() {
	var nextID int32
	for _, start := range s.fuelCellPositions {
		if s.valid[start] != isTrue || s.clusterID[start] != -1 {
			continue
		}
		id := nextID
		nextID++
		s.clusterID[start] = id
		queue := []int{start}
		members := []int{start}
		touchesCasing := false
		touchesActiveConductor := false

		for len(queue) > 0 {
			cur := queue[0]
			queue = queue[1:]
			x, y, z := s.g.Coord(cur)
			if s.countCasingsAdjacent(x, y, z) > 0 {
				touchesCasing = true
			}
			for _, o := range grid.Offsets {
				nx, ny, nz := x+o.DX, y+o.DY, z+o.DZ
				k := s.g.KindAt(nx, ny, nz)
				if k == blocks.Conductor {
					if s.isActive(s.g.Index(nx, ny, nz)) {
						touchesActiveConductor = true
					}
					continue
				}
				if k != blocks.FuelCell && k != blocks.Cooler {
					continue
				}
				nIdx := s.g.Index(nx, ny, nz)
				if s.clusterID[nIdx] != -1 {
					continue
				}
				member := (k == blocks.FuelCell && s.valid[nIdx] == isTrue) ||
					(k == blocks.Cooler && s.isActive(nIdx))
				if !member {
					continue
				}
				s.clusterID[nIdx] = id
				queue = append(queue, nIdx)
				members = append(members, nIdx)
			}
		}

		s.clusters[int(id)] = &ClusterStats{
			ID:    int(id),
			Valid: touchesCasing || touchesActiveConductor,
		}
		s.clusterMembers[int(id)] = members
	}
}
