// Package sim implements the deterministic reactor evaluator: flux
// propagation, cooler-activation fixed-point resolution, flood fill,
// per-cluster aggregation, and the introspection the search driver
// consumes. See pipeline.go for the fixed evaluation order.
package sim

import (
	"github.com/pthm-cable/reactor-opt/grid"
	"github.com/pthm-cable/reactor-opt/ruleset"
)

// triState mirrors the source's {0,1,-1} cache: 0 = not yet computed, 1 =
// active/valid, -1 = inactive/invalid. Never collapse this to a bool:
// cooler-activation predicates recurse through the cache and rely on
// telling "not computed" apart from "computed false" to terminate.
type triState int8

const (
	unset   triState = 0
	isTrue  triState = 1
	isFalse triState = -1
)

func (t triState) bool() bool { return t == isTrue }

// ClusterStats holds the per-cluster aggregates computed in step 8.
type ClusterStats struct {
	ID            int
	CellCount     int
	Heating       float64
	Cooling       float64
	Output        float64
	SumEfficiency float64
	SumHeatMult   float64
	Valid         bool
}

// Simulator evaluates a Grid against a Ruleset for a chosen fuel. All
// derived state is cached and recomputed only when the grid is dirty or
// the evaluated fuel index changes.
type Simulator struct {
	g  *grid.Grid
	rs *ruleset.Ruleset

	evaluated     bool
	evaluatedFuel int

	active triStateSlice
	valid  triStateSlice

	visited []bool

	posEff  []float64
	modFlux []float64

	fluxedModerator     []bool
	sandwichedModerator []bool

	clusterID   []int32
	conductorID []int32

	cellAdjacency      map[int][]int
	reflectorAdjacency map[int][]int

	clusters          map[int]*ClusterStats
	clusterMembers    map[int][]int
	conductorValidSet map[int]bool

	fuelCellPositions  []int
	moderatorPositions []int
	reflectorPositions []int
	coolerPositions    []int
	conductorPositions []int
	primedPositions    []int

	inactiveBlocks int

	totalPower     float64
	totalHeating   float64
	totalCooling   float64
	dutyCycle      float64
	effectivePower float64
}

type triStateSlice []triState

func newTriStateSlice(n int) triStateSlice { return make(triStateSlice, n) }

// New creates a Simulator bound to g and rs. The simulator never mutates
// g's contents on its own; callers mutate via g.SetCell and call an
// accessor to trigger re-evaluation.
func New(g *grid.Grid, rs *ruleset.Ruleset) *Simulator {
	return &Simulator{g: g, rs: rs, evaluatedFuel: -1}
}

// Grid returns the underlying grid.
func (s *Simulator) Grid() *grid.Grid { return s.g }

// Ruleset returns the bound ruleset.
func (s *Simulator) Ruleset() *ruleset.Ruleset { return s.rs }

// ensure runs the full evaluation pipeline if the grid is dirty or the
// requested fuel differs from the last evaluated one.
func (s *Simulator) ensure(fuelIndex int) {
	if s.evaluated && !s.g.Dirty() && s.evaluatedFuel == fuelIndex {
		return
	}
	s.evaluate(fuelIndex)
}

// Evaluate forces a (re-)evaluation for fuelIndex regardless of dirtiness.
func (s *Simulator) Evaluate(fuelIndex int) {
	s.evaluate(fuelIndex)
}

// TotalPower returns the penalty-weighted output sum across clusters.
func (s *Simulator) TotalPower(fuelIndex int) float64 {
	s.ensure(fuelIndex)
	return s.totalPower
}

// DutyCycle returns the global duty cycle.
func (s *Simulator) DutyCycle(fuelIndex int) float64 {
	s.ensure(fuelIndex)
	return s.dutyCycle
}

// EffectivePower returns TotalPower times DutyCycle exactly.
func (s *Simulator) EffectivePower(fuelIndex int) float64 {
	s.ensure(fuelIndex)
	return s.effectivePower
}

// TotalHeating returns Σ heating[c] across clusters.
func (s *Simulator) TotalHeating(fuelIndex int) float64 {
	s.ensure(fuelIndex)
	return s.totalHeating
}

// TotalCooling returns Σ cooling[c] across clusters.
func (s *Simulator) TotalCooling(fuelIndex int) float64 {
	s.ensure(fuelIndex)
	return s.totalCooling
}

// InactiveBlocks returns the number of non-Air blocks that are neither
// active, valid, nor otherwise load-bearing.
func (s *Simulator) InactiveBlocks(fuelIndex int) int {
	s.ensure(fuelIndex)
	return s.inactiveBlocks
}

// CellCount returns the number of FuelCell blocks on the grid.
func (s *Simulator) CellCount(fuelIndex int) int {
	s.ensure(fuelIndex)
	return len(s.fuelCellPositions)
}

// ValidClusterCount returns the number of clusters deemed valid.
func (s *Simulator) ValidClusterCount(fuelIndex int) int {
	s.ensure(fuelIndex)
	n := 0
	for _, c := range s.clusters {
		if c.Valid {
			n++
		}
	}
	return n
}

// Clusters returns a snapshot of every cluster's aggregates, sorted by ID.
func (s *Simulator) Clusters(fuelIndex int) []ClusterStats {
	s.ensure(fuelIndex)
	out := make([]ClusterStats, 0, len(s.clusters))
	for _, c := range s.clusters {
		out = append(out, *c)
	}
	sortClusterStats(out)
	return out
}

func sortClusterStats(cs []ClusterStats) {
	for i := 1; i < len(cs); i++ {
		for j := i; j > 0 && cs[j].ID < cs[j-1].ID; j-- {
			cs[j], cs[j-1] = cs[j-1], cs[j]
		}
	}
}

// IsActive reports whether the cell at idx is active, triggering
// whatever lazy cooler-activation resolution is needed.
func (s *Simulator) IsActive(fuelIndex, idx int) bool {
	s.ensure(fuelIndex)
	return s.isActive(idx)
}

// IsValid reports whether the cell at idx is valid.
func (s *Simulator) IsValid(fuelIndex, idx int) bool {
	s.ensure(fuelIndex)
	return s.valid[idx] == isTrue
}

// SelfSustaining reports whether at least one active fuel cell carries
// no neutron source, i.e. was brought to criticality by flux alone. It
// does not look at power output or duty cycle.
func (s *Simulator) SelfSustaining(fuelIndex int) bool {
	s.ensure(fuelIndex)
	for _, idx := range s.fuelCellPositions {
		c := s.g.AtIndex(idx)
		if s.active[idx] == isTrue && !c.Source.Primed() {
			return true
		}
	}
	return false
}
