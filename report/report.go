// Package report renders the optimizer's two human-facing surfaces:
// a periodic single-line stderr progress refresh, and the two-block
// stdout final report (one block per grid snapshot: the initial "best so
// far" and, conventionally, the final best). Both are pure text
// formatting over a Simulator snapshot, with no state of their own.
package report

import (
	"fmt"
	"io"
	"strings"

	"github.com/pthm-cable/reactor-opt/blocks"
	"github.com/pthm-cable/reactor-opt/grid"
	"github.com/pthm-cable/reactor-opt/ruleset"
	"github.com/pthm-cable/reactor-opt/search"
	"github.com/pthm-cable/reactor-opt/sim"
)

// Progress writes one stderr refresh line for a search.Stats snapshot:
// carriage-return-prefixed so successive calls overwrite the same
// terminal line, space-padded so a shorter line doesn't leave stray
// trailing characters from a longer one.
func Progress(w io.Writer, st search.Stats) {
	line := fmt.Sprintf(
		"step %7d  obj %10.3f  cells %4d  power %10.3f  power/cell %8.3f  duty %5.3f  heatΔ %10.3f  empty %5d",
		st.Iteration, st.Objective, st.BestCellCount, st.BestPower, st.BestPowerCell,
		st.BestDutyCycle, st.BestHeatDelta, st.BestEmptyCount,
	)
	fmt.Fprintf(w, "\r%-120s", line)
	// Every 2000 steps let the line scroll so progress history survives
	// in redirected logs.
	if st.Iteration > 0 && st.Iteration%2000 == 0 {
		fmt.Fprintln(w)
	}
}

// Block renders one final-report block for a grid evaluated at
// fuelIndex: summary line, the visual "describe" dump, and the
// per-cluster stats table.
func Block(w io.Writer, label string, g *grid.Grid, s *sim.Simulator, rs *ruleset.Ruleset, fuelIndex int) {
	fuel, _ := rs.FuelAt(fuelIndex)

	fmt.Fprintf(w, "%s\n", label)
	fmt.Fprintf(w, "cells=%d validClusters=%d objective=%.3f inactive=%d selfSustaining=%t\n",
		s.CellCount(fuelIndex), s.ValidClusterCount(fuelIndex), s.EffectivePower(fuelIndex),
		s.InactiveBlocks(fuelIndex), s.SelfSustaining(fuelIndex))
	fmt.Fprintf(w, "fuel=%s power=%.3f effectivePower=%.3f dutyCycle=%.3f\n",
		fuel.Name, s.TotalPower(fuelIndex), s.EffectivePower(fuelIndex), s.DutyCycle(fuelIndex))

	fmt.Fprintln(w)
	Describe(w, g, s, fuelIndex)

	fmt.Fprintln(w)
	ClusterTable(w, s, fuelIndex)
}

// Separator divides the two final report blocks.
const Separator = "-------------------------"

// Describe renders one character per block kind, with a two-character
// variant code appended where applicable, one blank line between
// z-slices.
func Describe(w io.Writer, g *grid.Grid, s *sim.Simulator, fuelIndex int) {
	for z := 0; z < g.Z; z++ {
		for x := 0; x < g.X; x++ {
			for y := 0; y < g.Y; y++ {
				c := g.At(x, y, z)
				fmt.Fprintf(w, "%c%s ", c.Kind.Short(), variantCode(c))
			}
			fmt.Fprintln(w)
		}
		if z != g.Z-1 {
			fmt.Fprintln(w)
		}
	}
}

func variantCode(c grid.Cell) string {
	switch c.Kind {
	case blocks.Cooler:
		return c.Cooler.Short()
	case blocks.Moderator:
		return c.Moderator.Short()
	case blocks.Reflector:
		return c.Reflector.Short()
	default:
		return "  "
	}
}

// ClusterTable renders the per-cluster stats table: id, validity, cell
// count, heating, cooling, output and efficiency sums.
func ClusterTable(w io.Writer, s *sim.Simulator, fuelIndex int) {
	clusters := s.Clusters(fuelIndex)
	fmt.Fprintln(w, "cluster  valid  cells     heating     cooling      output   sumEff")
	for _, c := range clusters {
		fmt.Fprintf(w, "%7d  %5t  %5d  %10.3f  %10.3f  %10.3f  %7.3f\n",
			c.ID, c.Valid, c.CellCount, c.Heating, c.Cooling, c.Output, c.SumEfficiency)
	}
	if len(clusters) == 0 {
		fmt.Fprintln(w, strings.Repeat(" ", 10), "(no clusters)")
	}
}
