package sim

import (
	"math"

	"github.com/pthm-cable/reactor-opt/blocks"
	"github.com/pthm-cable/reactor-opt/grid"
)

// OracleMode selects which family of edits SuggestedBlocksAt proposes.
type OracleMode int

const (
	ComputeCooling OracleMode = iota
	OptimizeModerators
)

// Suggestion is one candidate edit the oracle proposes at a coordinate,
// with a weight the search driver folds into its sampling distribution.
type Suggestion struct {
	Kind      blocks.Kind
	Cooler    blocks.CoolerVariant
	Moderator blocks.ModeratorVariant
	Source    blocks.NeutronSourceVariant
	Reflector blocks.ReflectorVariant
	Weight    float64
}

// SuggestPrincipledLocations returns the coordinates worth mutating: every
// coordinate collinear with a fuel cell, every cooler coordinate and its
// neighbors, and every neighbor of a valid moderator.
func (s *Simulator) SuggestPrincipledLocations(fuelIndex int) [][3]int {
	s.ensure(fuelIndex)
	seen := make(map[int]bool)
	var out [][3]int

	add := func(x, y, z int) {
		if x < 0 || y < 0 || z < 0 || x >= s.g.X || y >= s.g.Y || z >= s.g.Z {
			return
		}
		idx := s.g.Index(x, y, z)
		if seen[idx] {
			return
		}
		seen[idx] = true
		out = append(out, [3]int{x, y, z})
	}

	for _, idx := range s.fuelCellPositions {
		fx, fy, fz := s.g.Coord(idx)
		for x := 0; x < s.g.X; x++ {
			add(x, fy, fz)
		}
		for y := 0; y < s.g.Y; y++ {
			add(fx, y, fz)
		}
		for z := 0; z < s.g.Z; z++ {
			add(fx, fy, z)
		}
	}

	for _, idx := range s.coolerPositions {
		cx, cy, cz := s.g.Coord(idx)
		add(cx, cy, cz)
		for _, o := range grid.Offsets {
			add(cx+o.DX, cy+o.DY, cz+o.DZ)
		}
	}

	for _, idx := range s.moderatorPositions {
		if s.valid[idx] != isTrue {
			continue
		}
		mx, my, mz := s.g.Coord(idx)
		for _, o := range grid.Offsets {
			add(mx+o.DX, my+o.DY, mz+o.DZ)
		}
	}

	return out
}

// SuggestedBlocksAt proposes promising mutations at one coordinate.
func (s *Simulator) SuggestedBlocksAt(x, y, z int, mode OracleMode, fuelIndex int) []Suggestion {
	s.ensure(fuelIndex)
	current := s.g.At(x, y, z)
	var out []Suggestion

	switch mode {
	case ComputeCooling:
		for _, v := range blocks.AllCoolerVariants() {
			if current.Kind == blocks.Cooler && current.Cooler == v {
				continue
			}
			if s.coolerPredicate(x, y, z, v) {
				w := 1 + s.maxClusterCoolingRatioNear(x, y, z)
				out = append(out, Suggestion{Kind: blocks.Cooler, Cooler: v, Weight: w})
			}
		}
		if s.adjacentToActiveOrCasing(x, y, z) {
			out = append(out, Suggestion{Kind: blocks.Conductor, Weight: 1})
		}
		if s.inOvercooledCluster(x, y, z) {
			out = append(out, Suggestion{Kind: blocks.Air, Weight: 1})
		}

	case OptimizeModerators:
		if current.Kind == blocks.Moderator {
			for _, v := range blocks.AllModeratorVariants() {
				if v == current.Moderator {
					continue
				}
				out = append(out, Suggestion{Kind: blocks.Moderator, Moderator: v, Weight: 0.2})
			}
		}
		if current.Kind == blocks.FuelCell {
			for _, v := range blocks.AllSourceVariants() {
				if v == current.Source {
					continue
				}
				out = append(out, Suggestion{Kind: blocks.FuelCell, Source: v, Weight: 0.2})
			}
		}
		if current.Kind == blocks.Reflector {
			for _, v := range blocks.AllReflectorVariants() {
				if v == current.Reflector {
					continue
				}
				out = append(out, Suggestion{Kind: blocks.Reflector, Reflector: v, Weight: 0.2})
			}
		}
	}

	return out
}

func (s *Simulator) maxClusterCoolingRatioNear(x, y, z int) float64 {
	best := 0.0
	for _, o := range grid.Offsets {
		nx, ny, nz := x+o.DX, y+o.DY, z+o.DZ
		if nx < 0 || ny < 0 || nz < 0 || nx >= s.g.X || ny >= s.g.Y || nz >= s.g.Z {
			continue
		}
		cid := s.clusterID[s.g.Index(nx, ny, nz)]
		if cid == -1 {
			continue
		}
		stats := s.clusters[int(cid)]
		ratio := math.Min(stats.Heating/math.Max(stats.Cooling, 1), 2)
		if ratio > best {
			best = ratio
		}
	}
	return best
}

func (s *Simulator) adjacentToActiveOrCasing(x, y, z int) bool {
	if s.countCasingsAdjacent(x, y, z) > 0 {
		return true
	}
	for _, o := range grid.Offsets {
		nx, ny, nz := x+o.DX, y+o.DY, z+o.DZ
		c := s.g.At(nx, ny, nz)
		switch c.Kind {
		case blocks.FuelCell, blocks.Cooler, blocks.Conductor:
			if s.isActive(s.g.Index(nx, ny, nz)) {
				return true
			}
		}
	}
	return false
}

func (s *Simulator) inOvercooledCluster(x, y, z int) bool {
	cid := s.clusterID[s.g.Index(x, y, z)]
	if cid == -1 {
		return false
	}
	stats := s.clusters[int(cid)]
	return stats.Cooling > stats.Heating
}
