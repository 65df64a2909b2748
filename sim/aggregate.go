package sim

import (
	"math"

	"github.com/pthm-cable/reactor-opt/blocks"
)

// fuelCellEfficiency is the per-cell efficiency: positional
// efficiency times base efficiency times a logistic penalty for
// over-fluxing past double criticality, scaled by the neutron source
// multiplier when the cell is primed.
func (s *Simulator) fuelCellEfficiency(idx, fuelIndex int) float64 {
	fuel, ok := s.rs.FuelAt(fuelIndex)
	if !ok {
		return 0
	}
	flux := s.modFlux[idx]
	sigmoid := 1 / (1 + math.Exp(2*(flux-2*fuel.Criticality)))
	eff := s.posEff[idx] * fuel.BaseEfficiency * sigmoid

	c := s.g.AtIndex(idx)
	if c.Source.Primed() {
		eff *= s.rs.NeutronSourceEfficiencyOf(c.Source)
	}
	return eff
}

// aggregate is pipeline step 8: per-cell and per-cooler sums into the
// cluster each belongs to.
func (s *Simulator) aggregate(fuelIndex int) {
	fuel, _ := s.rs.FuelAt(fuelIndex)

	for _, idx := range s.fuelCellPositions {
		c := s.clusterID[idx]
		if c == -1 {
			continue
		}
		stats := s.clusters[int(c)]
		heatMult := float64(len(s.cellAdjacency[idx]))
		eff := s.fuelCellEfficiency(idx, fuelIndex)

		stats.Heating += heatMult * fuel.BaseHeat
		stats.Output += eff * fuel.BaseHeat
		stats.SumEfficiency += eff
		stats.SumHeatMult += heatMult
		stats.CellCount++
	}

	for _, idx := range s.coolerPositions {
		if !s.isActive(idx) {
			continue
		}
		c := s.clusterID[idx]
		if c == -1 {
			continue
		}
		cell := s.g.AtIndex(idx)
		s.clusters[int(c)].Cooling += s.rs.CoolerStrengthOf(cell.Cooler)
	}
}

// globalTotals is pipeline step 9: the headline totalPower/dutyCycle/effectivePower.
func (s *Simulator) globalTotals() {
	var totalPower, totalHeating, totalCooling float64
	dutyCycle := 1.0
	leniency := s.rs.CoolingLeniency

	for _, cl := range s.clusters {
		totalHeating += cl.Heating
		totalCooling += cl.Cooling

		denom := cl.Cooling + leniency
		penalty := 1.0
		if denom > 0 {
			penalty = math.Min(1, cl.Heating/denom)
		}
		totalPower += cl.Output * penalty

		if !cl.Valid && cl.Heating > 0 {
			dutyCycle = 0
		} else if cl.Heating > cl.Cooling {
			ratio := cl.Cooling / math.Max(cl.Heating, 1)
			if ratio < dutyCycle {
				dutyCycle = ratio
			}
		}
	}

	s.totalPower = totalPower
	s.totalHeating = totalHeating
	s.totalCooling = totalCooling
	s.dutyCycle = dutyCycle
	s.effectivePower = totalPower * dutyCycle
}

// countInactiveBlocks counts non-Air blocks that ended evaluation neither
// active nor valid nor primed nor a fluxed moderator.
func (s *Simulator) countInactiveBlocks() int {
	n := 0
	for idx := 0; idx < s.g.Len(); idx++ {
		c := s.g.AtIndex(idx)
		if c.Kind == blocks.Air {
			continue
		}
		if c.Kind == blocks.Moderator && s.fluxedModerator[idx] {
			continue
		}
		if s.active[idx] == isTrue || s.valid[idx] == isTrue {
			continue
		}
		if c.Source.Primed() {
			continue
		}
		n++
	}
	return n
}
