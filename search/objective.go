package search

import (
	"math"

	"github.com/pthm-cable/reactor-opt/sim"
)

// Objective coefficients are tuned to reward the right shape of
// solution, not to hit any particular absolute score.
const (
	stage1CellWeight       = 1.0
	stage1EffWeight        = 0.5
	stage1SandwichWeight   = 0.3
	stage1ModeratorWeight  = 0.1
	stage1TrappedWeight    = 2.0
	stage1HeatBalanceScale = 10.0

	stage2EffWeight    = 0.2
	keepCellWeight     = 1.0
	keepCoolingDivisor = 50.0
	keepEffWeight      = 0.5
)

// stage1Objective rewards raw cell count, moderator sandwiching and
// count, while heavily penalizing trapped cells and heat imbalance.
func stage1Objective(s *sim.Simulator, fuelIndex int) float64 {
	cells := float64(s.CellCount(fuelIndex))
	avgEff := s.AvgEfficiency(fuelIndex)
	sandwiched := float64(s.NumSandwichedModerators(fuelIndex))
	numMods := float64(s.NumModerators(fuelIndex))
	heatBalance := s.HeatBalance(fuelIndex)
	empty := float64(s.NumEmptyBlocks(fuelIndex))
	trapped := float64(s.NumTrappedCells(fuelIndex))

	numerator := cells*stage1CellWeight + avgEff*stage1EffWeight +
		sandwiched*stage1SandwichWeight + numMods*stage1ModeratorWeight
	decay := math.Pow(0.8, math.Abs(heatBalance/stage1HeatBalanceScale-empty))
	denom := 0.1 + trapped*trapped*stage1TrappedWeight
	return 1 + numerator*decay/denom
}

// stage2Objective rewards effective power weighted by duty-cycle cubed
// plus total cooling, once the search has a self-sustaining core.
func stage2Objective(s *sim.Simulator, fuelIndex int) float64 {
	eff := s.EffectivePower(fuelIndex)
	duty := s.DutyCycle(fuelIndex)
	avgEff := s.AvgEfficiency(fuelIndex)
	cooling := s.TotalCooling(fuelIndex)
	return 1 + eff*100*math.Pow(duty, 3) + avgEff*stage2EffWeight + cooling
}

// keepObjective is the separate "is this worth remembering as best"
// metric; duty-cycle to the fourth power makes it stricter than the
// stage-2 search objective about punishing unstable reactors.
func keepObjective(s *sim.Simulator, fuelIndex int) float64 {
	eff := s.EffectivePower(fuelIndex)
	duty := s.DutyCycle(fuelIndex)
	cells := float64(s.CellCount(fuelIndex))
	cooling := s.TotalCooling(fuelIndex)
	avgEff := s.AvgEfficiency(fuelIndex)
	return 1 + eff*100*math.Pow(duty, 4) + cells*keepCellWeight + cooling/keepCoolingDivisor + avgEff*keepEffWeight
}

func objectiveFor(stage, fuelIndex int, s *sim.Simulator) float64 {
	if stage == 1 {
		return stage1Objective(s, fuelIndex)
	}
	return stage2Objective(s, fuelIndex)
}
