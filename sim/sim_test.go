package sim

import (
	"math"
	"testing"

	"github.com/pthm-cable/reactor-opt/blocks"
	"github.com/pthm-cable/reactor-opt/grid"
	"github.com/pthm-cable/reactor-opt/ruleset"
)

func ensureRuleset(t *testing.T) *ruleset.Ruleset {
	t.Helper()
	rs, err := ruleset.Load("")
	if err != nil {
		t.Fatalf("loading ruleset: %v", err)
	}
	return rs
}

func genericFuelIndex(t *testing.T, rs *ruleset.Ruleset) int {
	t.Helper()
	idx := rs.FuelIndexByName("Generic")
	if idx < 0 {
		t.Fatal("embedded ruleset must carry a \"Generic\" fuel (criticality 1) for test scenarios")
	}
	return idx
}

// A single primed cell with line-of-sight to casing and no neighbors
// is active, but contributes zero heating (no cell-cell adjacency) and
// zero positional efficiency.
func TestSinglePrimedCellIsActive(t *testing.T) {
	rs := ensureRuleset(t)
	fuelIdx := rs.FuelIndexByName("LEU235O")
	g := grid.New(3, 3, 3)
	g.SetCell(1, 1, 1, blocks.FuelCell, blocks.CoolerAir, blocks.ModeratorAir, blocks.SourceRaBe, blocks.ReflectorAir)

	s := New(g, rs)
	if !s.IsActive(fuelIdx, g.Index(1, 1, 1)) {
		t.Error("a primed cell with line-of-sight to casing should be active")
	}
	if s.DutyCycle(fuelIdx) != 1 {
		t.Errorf("DutyCycle = %v, want 1 (no cooling shortfall with zero heating)", s.DutyCycle(fuelIdx))
	}
	if s.TotalHeating(fuelIdx) != 0 {
		t.Errorf("TotalHeating = %v, want 0 (no cell-cell adjacency)", s.TotalHeating(fuelIdx))
	}
}

// Two fuel cells separated by one graphite moderator accumulate flux
// and positional efficiency, and become cell-adjacent.
func TestTwoCellsThroughModerator(t *testing.T) {
	rs := ensureRuleset(t)
	fuelIdx := genericFuelIndex(t, rs)
	g := grid.New(5, 1, 1)
	g.SetCell(0, 0, 0, blocks.FuelCell, blocks.CoolerAir, blocks.ModeratorAir, blocks.SourceRaBe, blocks.ReflectorAir)
	g.SetCellAt(1, 0, 0, blocks.Moderator)
	g.SetCell(1, 0, 0, blocks.Moderator, blocks.CoolerAir, blocks.ModeratorGraphite, blocks.SourceUnprimed, blocks.ReflectorAir)
	g.SetCell(2, 0, 0, blocks.FuelCell, blocks.CoolerAir, blocks.ModeratorAir, blocks.SourceUnprimed, blocks.ReflectorAir)

	s := New(g, rs)
	idx0 := g.Index(0, 0, 0)
	idx2 := g.Index(2, 0, 0)

	if !s.IsActive(fuelIdx, idx2) {
		t.Error("the far cell should reach criticality through one graphite moderator under the Generic fuel (crit=1)")
	}
	if got := s.cellAdjacency[idx0]; len(got) == 0 {
		t.Error("expected cell-cell adjacency to be recorded between the two fuel cells")
	}
}

// The cooler activation chain: water needs an adjacent active cell;
// redstone needs an active cell plus a valid moderator; quartz needs
// an adjacent active redstone.
func TestCoolerActivationChain(t *testing.T) {
	rs := ensureRuleset(t)
	fuelIdx := genericFuelIndex(t, rs)
	g := grid.New(5, 5, 5)
	// A primed cell, a graphite moderator, and a second cell give the
	// moderator validity; a second primed cell next to the redstone
	// satisfies its active-cell requirement.
	g.SetCell(0, 2, 2, blocks.FuelCell, blocks.CoolerAir, blocks.ModeratorAir, blocks.SourceRaBe, blocks.ReflectorAir)
	g.SetCell(1, 2, 2, blocks.Moderator, blocks.CoolerAir, blocks.ModeratorGraphite, blocks.SourceUnprimed, blocks.ReflectorAir)
	g.SetCell(2, 2, 2, blocks.FuelCell, blocks.CoolerAir, blocks.ModeratorAir, blocks.SourceUnprimed, blocks.ReflectorAir)
	g.SetCell(0, 2, 1, blocks.FuelCell, blocks.CoolerAir, blocks.ModeratorAir, blocks.SourceRaBe, blocks.ReflectorAir)
	g.SetCell(1, 2, 1, blocks.Cooler, blocks.CoolerRedstone, blocks.ModeratorAir, blocks.SourceUnprimed, blocks.ReflectorAir)
	g.SetCell(1, 2, 0, blocks.Cooler, blocks.CoolerQuartz, blocks.ModeratorAir, blocks.SourceUnprimed, blocks.ReflectorAir)
	g.SetCell(2, 2, 3, blocks.Cooler, blocks.CoolerWater, blocks.ModeratorAir, blocks.SourceUnprimed, blocks.ReflectorAir)

	s := New(g, rs)
	if !s.IsActive(fuelIdx, g.Index(2, 2, 3)) {
		t.Error("water next to an active cell should be active")
	}
	if !s.IsActive(fuelIdx, g.Index(1, 2, 1)) {
		t.Error("redstone next to an active cell and a valid moderator should be active")
	}
	if !s.IsActive(fuelIdx, g.Index(1, 2, 0)) {
		t.Error("quartz next to an active redstone should be active")
	}
}

// A fully enclosed heating cluster with no casing contact and no
// conductor bridge is invalid, forcing the duty cycle to zero.
func TestEnclosedClusterInvalidated(t *testing.T) {
	rs := ensureRuleset(t)
	fuelIdx := genericFuelIndex(t, rs)
	g := grid.New(5, 5, 5)
	g.SetCell(2, 2, 2, blocks.FuelCell, blocks.CoolerAir, blocks.ModeratorAir, blocks.SourceRaBe, blocks.ReflectorAir)
	g.SetCell(2, 2, 1, blocks.FuelCell, blocks.CoolerAir, blocks.ModeratorAir, blocks.SourceRaBe, blocks.ReflectorAir)

	s := New(g, rs)
	if got := len(s.Clusters(fuelIdx)); got != 1 {
		t.Fatalf("expected the two touching cells to form one cluster, got %d", got)
	}
	if s.ValidClusterCount(fuelIdx) != 0 {
		t.Error("an enclosed cluster with no casing contact should not be valid")
	}
	if s.TotalHeating(fuelIdx) <= 0 {
		t.Fatal("two adjacent cells should heat each other")
	}
	if s.DutyCycle(fuelIdx) != 0 {
		t.Errorf("DutyCycle = %v, want 0 for an invalid heating cluster", s.DutyCycle(fuelIdx))
	}
}

// Adding a casing-adjacent conductor next to an invalid cluster turns
// it valid, never the reverse.
func TestConductorValidityMonotone(t *testing.T) {
	rs := ensureRuleset(t)
	fuelIdx := genericFuelIndex(t, rs)
	g := grid.New(5, 5, 5)
	g.SetCell(2, 2, 2, blocks.FuelCell, blocks.CoolerAir, blocks.ModeratorAir, blocks.SourceRaBe, blocks.ReflectorAir)
	g.SetCell(2, 2, 1, blocks.FuelCell, blocks.CoolerAir, blocks.ModeratorAir, blocks.SourceRaBe, blocks.ReflectorAir)

	s := New(g, rs)
	if s.ValidClusterCount(fuelIdx) != 0 {
		t.Fatal("cluster should start invalid")
	}

	// A conductor at z=0 touches the casing and bridges the cluster out.
	g.SetCellAt(2, 2, 0, blocks.Conductor)
	if s.ValidClusterCount(fuelIdx) != 1 {
		t.Error("a casing-adjacent conductor bridge should validate the cluster")
	}
}

// A reflector within half the neutron reach doubles flux back to the
// originating cell.
func TestReflectorDoublesFluxBack(t *testing.T) {
	rs := ensureRuleset(t)
	fuelIdx := genericFuelIndex(t, rs)
	g := grid.New(3, 1, 1)
	g.SetCell(0, 0, 0, blocks.FuelCell, blocks.CoolerAir, blocks.ModeratorAir, blocks.SourceRaBe, blocks.ReflectorAir)
	g.SetCell(1, 0, 0, blocks.Moderator, blocks.CoolerAir, blocks.ModeratorGraphite, blocks.SourceUnprimed, blocks.ReflectorAir)
	g.SetCell(2, 0, 0, blocks.Reflector, blocks.CoolerAir, blocks.ModeratorAir, blocks.SourceUnprimed, blocks.ReflectorLeadSteel)

	s := New(g, rs)
	idx0 := g.Index(0, 0, 0)
	s.ensure(fuelIdx)

	want := 2 * rs.ModeratorFluxOf(blocks.ModeratorGraphite) * rs.ReflectorReflectivityOf(blocks.ReflectorLeadSteel)
	if got := s.modFlux[idx0]; math.Abs(got-want) > 1e-9 {
		t.Errorf("origin flux = %v, want %v (2·modFlux·reflectivity)", got, want)
	}
	if !s.IsActive(fuelIdx, idx0) {
		t.Error("origin cell should be active once reflected flux crosses criticality")
	}
}

// A 1x1x1 grid evaluates cleanly with nothing placed on it.
func TestTrivialGridHasNoFuelCells(t *testing.T) {
	rs := ensureRuleset(t)
	fuelIdx := genericFuelIndex(t, rs)
	g := grid.New(1, 1, 1)
	s := New(g, rs)
	if s.CellCount(fuelIdx) != 0 {
		t.Fatalf("CellCount = %d, want 0", s.CellCount(fuelIdx))
	}
	if s.TotalPower(fuelIdx) != 0 {
		t.Errorf("TotalPower = %v, want 0", s.TotalPower(fuelIdx))
	}
	if s.DutyCycle(fuelIdx) != 1 {
		t.Errorf("DutyCycle = %v, want 1", s.DutyCycle(fuelIdx))
	}
}

// evaluate is idempotent: re-running without mutation changes nothing.
func TestEvaluateIdempotent(t *testing.T) {
	rs := ensureRuleset(t)
	fuelIdx := genericFuelIndex(t, rs)
	g := buildSmallReactor(rs, fuelIdx)
	s := New(g, rs)

	p1 := s.TotalPower(fuelIdx)
	d1 := s.DutyCycle(fuelIdx)
	s.Evaluate(fuelIdx)
	p2 := s.TotalPower(fuelIdx)
	d2 := s.DutyCycle(fuelIdx)

	if p1 != p2 || d1 != d2 {
		t.Errorf("re-evaluating without mutation changed metrics: (%v,%v) -> (%v,%v)", p1, d1, p2, d2)
	}
}

// SetCell to the existing value is a no-op on metrics.
func TestSetCellSameValueIsNoOp(t *testing.T) {
	rs := ensureRuleset(t)
	fuelIdx := genericFuelIndex(t, rs)
	g := buildSmallReactor(rs, fuelIdx)
	s := New(g, rs)
	before := s.TotalPower(fuelIdx)

	c := g.At(1, 1, 1)
	g.SetCell(1, 1, 1, c.Kind, c.Cooler, c.Moderator, c.Source, c.Reflector)
	after := s.TotalPower(fuelIdx)

	if before != after {
		t.Errorf("re-setting a cell to its existing value changed TotalPower: %v -> %v", before, after)
	}
}

// Zero fuel cells means zero power and duty cycle 1.
func TestNoFuelCellsZeroPower(t *testing.T) {
	rs := ensureRuleset(t)
	fuelIdx := genericFuelIndex(t, rs)
	g := grid.New(4, 4, 4)
	g.SetCellAt(1, 1, 1, blocks.Conductor)
	s := New(g, rs)
	if s.TotalPower(fuelIdx) != 0 {
		t.Errorf("TotalPower = %v, want 0", s.TotalPower(fuelIdx))
	}
	if s.DutyCycle(fuelIdx) != 1 {
		t.Errorf("DutyCycle = %v, want 1", s.DutyCycle(fuelIdx))
	}
}

// Air -> Air is a no-op on all metrics.
func TestAirToAirNoOp(t *testing.T) {
	rs := ensureRuleset(t)
	fuelIdx := genericFuelIndex(t, rs)
	g := buildSmallReactor(rs, fuelIdx)
	s := New(g, rs)
	before := s.TotalPower(fuelIdx)

	g.SetCellAt(0, 0, 0, blocks.Air) // already Air
	after := s.TotalPower(fuelIdx)

	if before != after {
		t.Errorf("Air->Air changed TotalPower: %v -> %v", before, after)
	}
}

// An unprimed, isolated fuel cell is inactive with zero positional
// efficiency.
func TestIsolatedUnprimedCellInactive(t *testing.T) {
	rs := ensureRuleset(t)
	fuelIdx := genericFuelIndex(t, rs)
	g := grid.New(3, 3, 3)
	g.SetCell(1, 1, 1, blocks.FuelCell, blocks.CoolerAir, blocks.ModeratorAir, blocks.SourceUnprimed, blocks.ReflectorAir)
	s := New(g, rs)
	idx := g.Index(1, 1, 1)
	if s.IsActive(fuelIdx, idx) {
		t.Error("an isolated unprimed cell should be inactive")
	}
	s.ensure(fuelIdx)
	if s.posEff[idx] != 0 {
		t.Errorf("posEff = %v, want 0", s.posEff[idx])
	}
}

// effectivePower = power * dutyCycle exactly.
func TestEffectivePowerExact(t *testing.T) {
	rs := ensureRuleset(t)
	fuelIdx := genericFuelIndex(t, rs)
	g := buildSmallReactor(rs, fuelIdx)
	s := New(g, rs)
	want := s.TotalPower(fuelIdx) * s.DutyCycle(fuelIdx)
	if got := s.EffectivePower(fuelIdx); got != want {
		t.Errorf("EffectivePower = %v, want power·dutyCycle = %v", got, want)
	}
}

// PruneInactives is idempotent after one application.
func TestPruneInactivesIdempotent(t *testing.T) {
	rs := ensureRuleset(t)
	fuelIdx := genericFuelIndex(t, rs)
	g := buildSmallReactor(rs, fuelIdx)
	// Scatter some junk blocks that should get pruned.
	g.SetCellAt(3, 3, 3, blocks.Conductor)
	g.SetCell(3, 2, 3, blocks.FuelCell, blocks.CoolerAir, blocks.ModeratorAir, blocks.SourceUnprimed, blocks.ReflectorAir)

	s := New(g, rs)
	s.PruneInactives(fuelIdx, false)
	snapshot := snapshotGrid(g)

	s2 := New(g, rs)
	s2.PruneInactives(fuelIdx, false)
	if snapshot != snapshotGrid(g) {
		t.Error("a second PruneInactives pass changed the grid")
	}
}

// Reflecting the grid across an axis should not change the headline
// totals, since the simulator has no inherent coordinate bias.
func TestAxisSymmetry(t *testing.T) {
	rs := ensureRuleset(t)
	fuelIdx := genericFuelIndex(t, rs)
	g := buildSmallReactor(rs, fuelIdx)
	mirrored := mirrorGridX(g)

	s1 := New(g, rs)
	s2 := New(mirrored, rs)

	if math.Abs(s1.TotalPower(fuelIdx)-s2.TotalPower(fuelIdx)) > 1e-6 {
		t.Errorf("TotalPower not symmetric under x-mirroring: %v vs %v", s1.TotalPower(fuelIdx), s2.TotalPower(fuelIdx))
	}
	if math.Abs(s1.DutyCycle(fuelIdx)-s2.DutyCycle(fuelIdx)) > 1e-6 {
		t.Errorf("DutyCycle not symmetric under x-mirroring: %v vs %v", s1.DutyCycle(fuelIdx), s2.DutyCycle(fuelIdx))
	}
}

func buildSmallReactor(rs *ruleset.Ruleset, fuelIdx int) *grid.Grid {
	g := grid.New(5, 5, 5)
	g.SetCell(1, 2, 2, blocks.FuelCell, blocks.CoolerAir, blocks.ModeratorAir, blocks.SourceRaBe, blocks.ReflectorAir)
	g.SetCellAt(2, 2, 2, blocks.Moderator)
	g.SetCell(2, 2, 2, blocks.Moderator, blocks.CoolerAir, blocks.ModeratorGraphite, blocks.SourceUnprimed, blocks.ReflectorAir)
	g.SetCell(3, 2, 2, blocks.FuelCell, blocks.CoolerAir, blocks.ModeratorAir, blocks.SourceUnprimed, blocks.ReflectorAir)
	g.SetCell(0, 2, 2, blocks.Cooler, blocks.CoolerWater, blocks.ModeratorAir, blocks.SourceUnprimed, blocks.ReflectorAir)
	return g
}

func snapshotGrid(g *grid.Grid) string {
	buf := make([]byte, 0, g.Len()*5)
	for i := 0; i < g.Len(); i++ {
		c := g.AtIndex(i)
		buf = append(buf, byte(c.Kind), byte(c.Cooler), byte(c.Moderator), byte(c.Source), byte(c.Reflector))
	}
	return string(buf)
}

func mirrorGridX(g *grid.Grid) *grid.Grid {
	out := grid.New(g.X, g.Y, g.Z)
	for x := 0; x < g.X; x++ {
		for y := 0; y < g.Y; y++ {
			for z := 0; z < g.Z; z++ {
				c := g.At(x, y, z)
				out.SetCell(g.X-1-x, y, z, c.Kind, c.Cooler, c.Moderator, c.Source, c.Reflector)
			}
		}
	}
	return out
}
