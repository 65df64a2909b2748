package search

import (
	"math/rand"

	"github.com/pthm-cable/reactor-opt/blocks"
	"github.com/pthm-cable/reactor-opt/grid"
	"github.com/pthm-cable/reactor-opt/sim"
)

// edit is one concrete cell write a candidate move applies to a grid
// clone before re-evaluation.
type edit struct {
	X, Y, Z   int
	Kind      blocks.Kind
	Cooler    blocks.CoolerVariant
	Moderator blocks.ModeratorVariant
	Source    blocks.NeutronSourceVariant
	Reflector blocks.ReflectorVariant
}

func (e edit) apply(g *grid.Grid) {
	g.SetCell(e.X, e.Y, e.Z, e.Kind, e.Cooler, e.Moderator, e.Source, e.Reflector)
}

// pickVocabulary does weighted selection from an editTemplate list.
func pickVocabulary(rng *rand.Rand, vocab []editTemplate) editTemplate {
	total := 0.0
	for _, t := range vocab {
		total += t.Weight
	}
	r := rng.Float64() * total
	for _, t := range vocab {
		r -= t.Weight
		if r <= 0 {
			return t
		}
	}
	return vocab[len(vocab)-1]
}

// randomEdit draws a uniformly random in-bounds coordinate and a
// weighted-random block kind from the stage's short vocabulary.
func randomEdit(rng *rand.Rand, g *grid.Grid, vocab []editTemplate) edit {
	x := rng.Intn(g.X)
	y := rng.Intn(g.Y)
	z := rng.Intn(g.Z)
	t := pickVocabulary(rng, vocab)
	return edit{X: x, Y: y, Z: z, Kind: t.Kind, Cooler: t.Cooler, Moderator: t.Moderator, Source: t.Source, Reflector: t.Reflector}
}

// principledEdit draws a coordinate from the oracle's principled
// location list and a suggestion at that coordinate, falling back to a
// random edit (weight 1) when the oracle has nothing to offer there.
// The returned weight is the suggestion's, folded into the candidate's
// sampling score by the driver.
func principledEdit(rng *rand.Rand, s *sim.Simulator, fuelIndex int, mode sim.OracleMode, vocab []editTemplate) (edit, float64) {
	locs := s.SuggestPrincipledLocations(fuelIndex)
	if len(locs) == 0 {
		return randomEdit(rng, s.Grid(), vocab), 1
	}
	loc := locs[rng.Intn(len(locs))]
	suggestions := s.SuggestedBlocksAt(loc[0], loc[1], loc[2], mode, fuelIndex)
	if len(suggestions) == 0 {
		return randomEdit(rng, s.Grid(), vocab), 1
	}
	total := 0.0
	for _, sg := range suggestions {
		total += sg.Weight
	}
	r := rng.Float64() * total
	chosen := suggestions[len(suggestions)-1]
	for _, sg := range suggestions {
		r -= sg.Weight
		if r <= 0 {
			chosen = sg
			break
		}
	}
	return edit{
		X: loc[0], Y: loc[1], Z: loc[2],
		Kind: chosen.Kind, Cooler: chosen.Cooler, Moderator: chosen.Moderator,
		Source: chosen.Source, Reflector: chosen.Reflector,
	}, chosen.Weight
}

// mirrorEdit reflects an edit across one of the three axes, used to
// build symmetry-mirrored compound moves.
func mirrorEdit(e edit, axis int, dims [3]int) edit {
	out := e
	switch axis {
	case 0:
		out.X = dims[0] - 1 - e.X
	case 1:
		out.Y = dims[1] - 1 - e.Y
	case 2:
		out.Z = dims[2] - 1 - e.Z
	}
	return out
}

// move is one candidate mutation: a set of edits applied atomically,
// plus the suggestion weight the driver multiplies into the candidate's
// sampling score (1 for purely random moves).
type move struct {
	edits  []edit
	weight float64
}

func (m move) apply(g *grid.Grid) {
	for _, e := range m.edits {
		e.apply(g)
	}
}

// generateMove builds one candidate move. Before the stage switch the
// move is a single random draw from the stage-1 vocabulary; afterwards
// it mixes oracle-principled edits with 1-4 edit compound random moves.
// Early iterations are additionally mirrored across the x, z and y axes
// (in that order, while the iteration is under each axis threshold and
// the axis is wide enough for the mirror to land elsewhere) so the
// search explores symmetric cores first.
func generateMove(rng *rand.Rand, s *sim.Simulator, fuelIndex, stage, iteration int) move {
	weight := 1.0
	var edits []edit

	if stage == 1 {
		edits = append(edits, randomEdit(rng, s.Grid(), stage1Vocabulary()))
	} else {
		vocab := stage2Vocabulary()
		if rng.Float64() < 0.5 {
			mode := sim.ComputeCooling
			if rng.Float64() < 0.3 {
				mode = sim.OptimizeModerators
			}
			e, w := principledEdit(rng, s, fuelIndex, mode, vocab)
			edits = append(edits, e)
			weight = w
		} else {
			n := 1 + rng.Intn(4)
			for i := 0; i < n; i++ {
				edits = append(edits, randomEdit(rng, s.Grid(), vocab))
			}
		}
	}

	g := s.Grid()
	dims := [3]int{g.X, g.Y, g.Z}
	if iteration < 1000 && dims[0] >= 3 {
		edits = mirrorAppend(edits, 0, dims)
	}
	if iteration < 500 && dims[2] >= 3 {
		edits = mirrorAppend(edits, 2, dims)
	}
	if iteration < 200 && dims[1] >= 3 {
		edits = mirrorAppend(edits, 1, dims)
	}

	return move{edits: edits, weight: weight}
}

func mirrorAppend(edits []edit, axis int, dims [3]int) []edit {
	out := make([]edit, len(edits), len(edits)*2)
	copy(out, edits)
	for _, e := range edits {
		out = append(out, mirrorEdit(e, axis, dims))
	}
	return out
}
