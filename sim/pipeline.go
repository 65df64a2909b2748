package sim

// evaluate runs the full evaluation pipeline in its load-bearing
// order. Nothing here may be reordered without breaking
// reproducibility: step 5 (filterAdjacency) must follow step 3
// (broadcastFlux) because flux records adjacency before the far
// endpoint's criticality is known.
func (s *Simulator) evaluate(fuelIndex int) {
	s.revertCaches()                  // 1
	s.floodFillConductors()           // 2
	s.runFluxBroadcast(fuelIndex)     // 3
	s.broadcastModeratorActivations() // 4
	s.filterAdjacency()               // 5
	s.activateReflectors()            // 6
	s.floodFillClusters()             // 7
	s.aggregate(fuelIndex)            // 8
	s.globalTotals()                  // 9

	s.inactiveBlocks = s.countInactiveBlocks()
	s.evaluated = true
	s.evaluatedFuel = fuelIndex
	s.g.MarkClean()
}

// filterAdjacency is pipeline step 5: drop cell-cell adjacency edges where
// either endpoint is not active (a primed cell counts as active).
func (s *Simulator) filterAdjacency() {
	for idx, neighbors := range s.cellAdjacency {
		if s.active[idx] != isTrue {
			delete(s.cellAdjacency, idx)
			continue
		}
		kept := neighbors[:0]
		for _, n := range neighbors {
			if s.active[n] == isTrue {
				kept = append(kept, n)
			}
		}
		if len(kept) == 0 {
			delete(s.cellAdjacency, idx)
		} else {
			s.cellAdjacency[idx] = kept
		}
	}
}

// activateReflectors is pipeline step 6: a reflector is active iff any cell
// in its recorded adjacency set is a valid fuel cell at this point.
func (s *Simulator) activateReflectors() {
	for reflIdx, cells := range s.reflectorAdjacency {
		for _, cellIdx := range cells {
			if s.valid[cellIdx] == isTrue {
				s.active[reflIdx] = isTrue
				break
			}
		}
	}
}
