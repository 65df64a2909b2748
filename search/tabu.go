// Package search implements the guided Metropolis-style sampler: tabu
// memory, staged objective functions, symmetry-mirrored and
// oracle-principled edits, and parallel candidate scoring.
package search

import "github.com/pthm-cable/reactor-opt/grid"

// tabuMemory is a FIFO-capped set of previously visited grid states,
// keyed by a byte-exact serialization of cell contents.
type tabuMemory struct {
	cap   int
	set   map[string]struct{}
	order []string
}

func newTabuMemory(cap int) *tabuMemory {
	return &tabuMemory{cap: cap, set: make(map[string]struct{}, cap)}
}

func (t *tabuMemory) contains(g *grid.Grid) bool {
	_, ok := t.set[gridKey(g)]
	return ok
}

func (t *tabuMemory) push(g *grid.Grid) {
	k := gridKey(g)
	if _, ok := t.set[k]; ok {
		return
	}
	t.set[k] = struct{}{}
	t.order = append(t.order, k)
	if len(t.order) > t.cap {
		evict := t.order[0]
		t.order = t.order[1:]
		delete(t.set, evict)
	}
}

// gridKey produces a byte-exact fingerprint of a grid's cell contents.
func gridKey(g *grid.Grid) string {
	n := g.Len()
	buf := make([]byte, 0, n*5)
	for idx := 0; idx < n; idx++ {
		c := g.AtIndex(idx)
		buf = append(buf, byte(c.Kind), byte(c.Cooler), byte(c.Moderator), byte(c.Source), byte(c.Reflector))
	}
	return string(buf)
}
