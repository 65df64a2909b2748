package search

import (
	"math/rand"
	"testing"

	"github.com/pthm-cable/reactor-opt/blocks"
	"github.com/pthm-cable/reactor-opt/grid"
	"github.com/pthm-cable/reactor-opt/ruleset"
	"github.com/pthm-cable/reactor-opt/sim"
)

func ensureRuleset(t *testing.T) *ruleset.Ruleset {
	t.Helper()
	rs, err := ruleset.Load("")
	if err != nil {
		t.Fatalf("loading ruleset: %v", err)
	}
	return rs
}

func deterministicRand(t *testing.T) *rand.Rand {
	t.Helper()
	return rand.New(rand.NewSource(1))
}

func simNew(t *testing.T, g *grid.Grid, rs *ruleset.Ruleset) *sim.Simulator {
	t.Helper()
	return sim.New(g, rs)
}

func TestTabuMemoryContainsAndPush(t *testing.T) {
	tm := newTabuMemory(10)
	g := grid.New(2, 2, 2)
	if tm.contains(g) {
		t.Fatal("an empty tabu memory should not contain anything")
	}
	tm.push(g)
	if !tm.contains(g) {
		t.Error("pushed grid should be contained")
	}
	g2 := g.Clone()
	g2.SetCellAt(0, 0, 0, blocks.FuelCell)
	if tm.contains(g2) {
		t.Error("a grid with different cell contents should not be contained")
	}
}

func TestTabuMemoryFIFOEvictsAtCap(t *testing.T) {
	tm := newTabuMemory(2)
	g1 := grid.New(1, 1, 1)
	g2 := grid.New(1, 1, 1)
	g2.SetCellAt(0, 0, 0, blocks.FuelCell)
	g3 := grid.New(1, 1, 1)
	g3.SetCellAt(0, 0, 0, blocks.Conductor)

	tm.push(g1)
	tm.push(g2)
	tm.push(g3) // evicts g1

	if tm.contains(g1) {
		t.Error("g1 should have been evicted once capacity was exceeded")
	}
	if !tm.contains(g2) || !tm.contains(g3) {
		t.Error("g2 and g3 should both still be present")
	}
}

func TestTabuMemoryPushIsIdempotent(t *testing.T) {
	tm := newTabuMemory(5)
	g := grid.New(1, 1, 1)
	tm.push(g)
	tm.push(g)
	if len(tm.order) != 1 {
		t.Errorf("pushing the same grid twice should not duplicate the FIFO order, got len=%d", len(tm.order))
	}
}

func TestGridKeyStableAndDistinguishing(t *testing.T) {
	g1 := grid.New(2, 2, 2)
	g2 := grid.New(2, 2, 2)
	if gridKey(g1) != gridKey(g2) {
		t.Error("two identical empty grids should produce the same key")
	}
	g2.SetCellAt(0, 0, 0, blocks.FuelCell)
	if gridKey(g1) == gridKey(g2) {
		t.Error("grids differing by one cell should produce different keys")
	}
}

func TestPickVocabularyRespectsZeroWeightFloor(t *testing.T) {
	vocab := []editTemplate{
		{Kind: blocks.Air, Weight: 0},
		{Kind: blocks.FuelCell, Weight: 1},
	}
	rng := deterministicRand(t)
	for i := 0; i < 20; i++ {
		got := pickVocabulary(rng, vocab)
		if got.Kind != blocks.FuelCell {
			t.Fatalf("with Air at weight 0, pickVocabulary should never return it, got %v", got.Kind)
		}
	}
}

func TestMirrorEditReflectsAcrossAxis(t *testing.T) {
	e := edit{X: 1, Y: 2, Z: 3, Kind: blocks.Conductor}
	dims := [3]int{5, 5, 5}

	mx := mirrorEdit(e, 0, dims)
	if mx.X != 3 || mx.Y != 2 || mx.Z != 3 {
		t.Errorf("mirrorEdit(axis=0) = %+v, want X mirrored to 3", mx)
	}
	my := mirrorEdit(e, 1, dims)
	if my.Y != 2 || my.X != 1 {
		t.Errorf("mirrorEdit(axis=1) = %+v, want Y mirrored to 2", my)
	}
	mz := mirrorEdit(e, 2, dims)
	if mz.Z != 1 {
		t.Errorf("mirrorEdit(axis=2) = %+v, want Z mirrored to 1", mz)
	}
}

func TestMirrorAppendDoublesEdits(t *testing.T) {
	edits := []edit{{X: 0, Y: 0, Z: 0, Kind: blocks.FuelCell}}
	dims := [3]int{3, 3, 3}
	out := mirrorAppend(edits, 0, dims)
	if len(out) != 2 {
		t.Fatalf("mirrorAppend should double the edit count, got %d", len(out))
	}
	if out[1].X != 2 {
		t.Errorf("mirrored edit X = %d, want 2", out[1].X)
	}
}

func TestKeepObjectiveRewardsMoreCellsAtEqualDuty(t *testing.T) {
	rs := ensureRuleset(t)
	fuelIdx := rs.FuelIndexByName("Generic")
	if fuelIdx < 0 {
		t.Fatal("embedded ruleset missing \"Generic\" fuel")
	}

	empty := grid.New(3, 3, 3)
	oneCell := grid.New(3, 3, 3)
	oneCell.SetCell(1, 1, 1, blocks.FuelCell, blocks.CoolerAir, blocks.ModeratorAir, blocks.SourceRaBe, blocks.ReflectorAir)

	emptyScore := keepObjective(simNew(t, empty, rs), fuelIdx)
	oneCellScore := keepObjective(simNew(t, oneCell, rs), fuelIdx)

	if oneCellScore <= emptyScore {
		t.Errorf("adding an active fuel cell should raise keepObjective: empty=%v one=%v", emptyScore, oneCellScore)
	}
}

func TestDriverRunOnTrivialGridTerminatesWithoutPanicking(t *testing.T) {
	rs := ensureRuleset(t)
	fuelIdx := rs.FuelIndexByName("Generic")
	g := grid.New(1, 1, 1)
	d := NewDriver(g, rs, fuelIdx, 42)

	d.Run(25, nil)

	best, _ := d.Best()
	if best.X != 1 || best.Y != 1 || best.Z != 1 {
		t.Errorf("best grid dimensions changed: %d,%d,%d", best.X, best.Y, best.Z)
	}
}

func TestDriverCancelStopsRunEarly(t *testing.T) {
	rs := ensureRuleset(t)
	fuelIdx := rs.FuelIndexByName("Generic")
	g := grid.New(4, 4, 4)
	d := NewDriver(g, rs, fuelIdx, 7)

	steps := 0
	d.Cancel() // cancel before the first iteration
	d.Run(1000, func(Stats) { steps++ })

	if steps != 0 {
		t.Errorf("Run after Cancel should not report any progress, got %d callbacks", steps)
	}
}
