package search

import (
	"math"
	"math/rand"
	"runtime"
	"sync"

	gonumrand "golang.org/x/exp/rand"
	"gonum.org/v1/gonum/stat/distuv"

	"github.com/pthm-cable/reactor-opt/grid"
	"github.com/pthm-cable/reactor-opt/ruleset"
	"github.com/pthm-cable/reactor-opt/sim"
)

// tabuCapacity is the FIFO cap on remembered grid fingerprints.
const tabuCapacity = 10000

// candidateCount is how many neighbor grids each step generates and
// scores in parallel before sampling one acceptance.
const candidateCount = 400

// Stats is a snapshot of driver progress for the report package to render.
type Stats struct {
	Iteration      int
	Stage          int
	Objective      float64
	BestCellCount  int
	BestPower      float64
	BestPowerCell  float64
	BestDutyCycle  float64
	BestHeatDelta  float64
	BestEmptyCount int
}

// Driver runs the guided Metropolis-style search: a
// staged objective, tabu memory over visited grid fingerprints, and
// parallel candidate generation sampled through a weighted categorical
// distribution.
type Driver struct {
	rs        *ruleset.Ruleset
	fuelIndex int

	current *grid.Grid
	best    *grid.Grid

	rng      *rand.Rand
	tabu     *tabuMemory
	stage    int
	iter     int
	bestKeep float64

	switchThreshold int
	candidates      int

	cancel chan struct{}
}

// NewDriver builds a driver over g (mutated in place as the search's
// "current" state) for the given fuel index.
func NewDriver(g *grid.Grid, rs *ruleset.Ruleset, fuelIndex int, seed int64) *Driver {
	x, y, z := g.X, g.Y, g.Z
	threshold := 20 * (x + y + z)
	if threshold < 1000 {
		threshold = 1000
	}
	return &Driver{
		rs:              rs,
		fuelIndex:       fuelIndex,
		current:         g,
		best:            g.Clone(),
		rng:             rand.New(rand.NewSource(seed)),
		tabu:            newTabuMemory(tabuCapacity),
		stage:           1,
		switchThreshold: threshold,
		candidates:      candidateCount,
		cancel:          make(chan struct{}),
	}
}

// Cancel requests a cooperative stop; Run returns at the next step
// boundary. Safe to call concurrently with Run (e.g. from a SIGINT
// handler).
func (d *Driver) Cancel() {
	select {
	case <-d.cancel:
	default:
		close(d.cancel)
	}
}

func (d *Driver) cancelled() bool {
	select {
	case <-d.cancel:
		return true
	default:
		return false
	}
}

// Best returns the best grid found so far and its keep-objective score.
func (d *Driver) Best() (*grid.Grid, float64) { return d.best, d.bestKeep }

// Run drives the search for up to maxSteps iterations (or until
// cancelled), calling report after every step with a progress snapshot.
func (d *Driver) Run(maxSteps int, report func(Stats)) {
	s := sim.New(d.current, d.rs)
	bestSim := sim.New(d.best, d.rs)
	d.bestKeep = keepObjective(bestSim, d.fuelIndex)

	for d.iter = 0; d.iter < maxSteps; d.iter++ {
		if d.cancelled() {
			return
		}

		if d.stage == 1 && d.iter >= d.switchThreshold {
			d.stage = 2
		}

		candidates := d.generateCandidates(s)
		chosen := d.scoreAndApply(candidates)
		if chosen == nil {
			// Even the tabu exemption produced nothing scoreable:
			// re-seed from best and try again next step.
			d.current = d.best.Clone()
			s = sim.New(d.current, d.rs)
		} else {
			chosen.move.apply(d.current)
			s = sim.New(d.current, d.rs)
			d.tabu.push(d.current)
		}

		keep := keepObjective(s, d.fuelIndex)
		if keep > d.bestKeep {
			d.bestKeep = keep
			d.best = d.current.Clone()
			bestSim = sim.New(d.best, d.rs)
		}

		resetEvery := 50
		if d.iter < d.switchThreshold {
			resetEvery = 200
		}
		if d.iter > 0 && d.iter%resetEvery == 0 {
			d.current = d.best.Clone()
			s = sim.New(d.current, d.rs)
			s.PruneInactives(d.fuelIndex, true)
			s.FloodFillWithConductors()
		}
		if d.iter > 0 && d.iter%4000 == 0 &&
			(d.iter == 4000 || bestSim.EffectivePower(d.fuelIndex) == 0) {
			s.ClearInfeasibleClusters(d.fuelIndex)
			s.PruneInactives(d.fuelIndex, false)
			s.FloodFillWithConductors()
		}

		if report != nil {
			report(Stats{
				Iteration:      d.iter,
				Stage:          d.stage,
				Objective:      objectiveFor(d.stage, d.fuelIndex, s),
				BestCellCount:  bestSim.CellCount(d.fuelIndex),
				BestPower:      bestSim.EffectivePower(d.fuelIndex),
				BestPowerCell:  bestSim.PowerPerCell(d.fuelIndex),
				BestDutyCycle:  bestSim.DutyCycle(d.fuelIndex),
				BestHeatDelta:  bestSim.HeatBalance(d.fuelIndex),
				BestEmptyCount: bestSim.NumEmptyBlocks(d.fuelIndex),
			})
		}
	}
}

// candidateResult pairs an evaluated move with its objective score.
type candidateResult struct {
	move      move
	objective float64
}

// generateCandidates produces d.candidates independent moves. Cheap,
// so done serially before the parallel scoring phase.
func (d *Driver) generateCandidates(s *sim.Simulator) []move {
	out := make([]move, d.candidates)
	for i := range out {
		out[i] = generateMove(d.rng, s, d.fuelIndex, d.stage, d.iter)
	}
	return out
}

// scoreAndApply evaluates each candidate on its own grid clone in
// parallel, then samples one acceptance from a weighted categorical
// distribution over the non-tabu candidates. The first candidate is
// admitted regardless of tabu so the distribution can never be
// empty. Candidate scores anneal: the objective is raised to a power
// that climbs with the step index, sharpening the distribution around
// the current leaders as the search matures.
func (d *Driver) scoreAndApply(candidates []move) *candidateResult {
	n := len(candidates)
	if n == 0 {
		return nil
	}
	results := make([]candidateResult, n)
	valid := make([]bool, n)

	numWorkers := runtime.GOMAXPROCS(0)
	chunk := (n + numWorkers - 1) / numWorkers

	var wg sync.WaitGroup
	for w := 0; w < numWorkers; w++ {
		start := w * chunk
		end := start + chunk
		if end > n {
			end = n
		}
		if start >= end {
			continue
		}
		wg.Add(1)
		go func(i0, i1 int) {
			defer wg.Done()
			for i := i0; i < i1; i++ {
				cand := d.current.Clone()
				candidates[i].apply(cand)
				if i != 0 && d.tabu.contains(cand) {
					continue
				}
				candSim := sim.New(cand, d.rs)
				results[i] = candidateResult{move: candidates[i], objective: objectiveFor(d.stage, d.fuelIndex, candSim)}
				valid[i] = true
			}
		}(start, end)
	}
	wg.Wait()

	exponent := 1 + float64(d.iter%10000)/5000
	var weights []float64
	var indices []int
	for i, ok := range valid {
		if !ok {
			continue
		}
		w := math.Max(math.Pow(results[i].objective, exponent), 0.01)
		w *= results[i].move.weight
		weights = append(weights, w)
		indices = append(indices, i)
	}
	if len(weights) == 0 {
		return nil
	}

	dist := distuv.NewCategorical(weights, gonumrand.NewSource(uint64(d.rng.Int63())))
	pick := int(dist.Rand())
	chosen := results[indices[pick]]
	return &chosen
}
