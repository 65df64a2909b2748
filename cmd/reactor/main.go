// Command reactor is the headless CLI entry point for the reactor
// layout optimizer. It takes up to four positional arguments, wires
// Grid + Ruleset + Simulator + search.Driver together, reports
// progress to stderr, prints the final two-block report to stdout, and
// writes the JSON save file and CSV append log.
package main

import (
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"runtime"
	"strconv"
	"syscall"
	"time"

	"github.com/pthm-cable/reactor-opt/export"
	"github.com/pthm-cable/reactor-opt/grid"
	"github.com/pthm-cable/reactor-opt/report"
	"github.com/pthm-cable/reactor-opt/ruleset"
	"github.com/pthm-cable/reactor-opt/search"
	"github.com/pthm-cable/reactor-opt/sim"
)

const (
	defaultDim       = 5
	defaultFuelName  = "LEU235O" // "LEU-235 oxide"
	searchIterations = 20000
)

func main() {
	x, y, z, fuelIndex, err := parseArgs(os.Args[1:])
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	if err := ruleset.Init(""); err != nil {
		fmt.Fprintln(os.Stderr, "loading ruleset:", err)
		os.Exit(1)
	}
	rs := ruleset.Cfg()

	if fuelIndex < 0 {
		fuelIndex = rs.FuelIndexByName(defaultFuelName)
		if fuelIndex < 0 {
			fuelIndex = 0
		}
	}
	if fuelIndex >= rs.NumFuels() {
		fmt.Fprintf(os.Stderr, "fuel index %d out of range (0..%d)\n", fuelIndex, rs.NumFuels()-1)
		os.Exit(1)
	}

	applyThreadOverride()

	g := grid.New(x, y, z)
	driver := search.NewDriver(g, rs, fuelIndex, time.Now().UnixNano())

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigCh
		driver.Cancel()
	}()

	initialGrid := g.Clone()
	initialSim := sim.New(initialGrid, rs)

	driver.Run(searchIterations, func(st search.Stats) {
		report.Progress(os.Stderr, st)
	})
	fmt.Fprintln(os.Stderr)

	best, _ := driver.Best()
	bestSim := sim.New(best, rs)

	report.Block(os.Stdout, "initial", initialGrid, initialSim, rs, fuelIndex)
	fmt.Println(report.Separator)
	report.Block(os.Stdout, "best", best, bestSim, rs, fuelIndex)

	writeArtifacts(best, bestSim, rs, fuelIndex)
}

// parseArgs implements the `<program> [X Y Z [fuelIndex]]` convention:
// X, Y, Z default to 5; fuelIndex defaults to -1 (resolved against the
// ruleset once it's loaded). A malformed or non-positive dimension is a
// hard CLI error; a missing trailing fuelIndex falls back permissively.
func parseArgs(args []string) (x, y, z, fuelIndex int, err error) {
	x, y, z = defaultDim, defaultDim, defaultDim
	fuelIndex = -1

	dims := []*int{&x, &y, &z}
	for i, d := range dims {
		if i >= len(args) {
			break
		}
		v, convErr := strconv.Atoi(args[i])
		if convErr != nil {
			return 0, 0, 0, 0, fmt.Errorf("invalid dimension %q: must be an integer", args[i])
		}
		if v <= 0 {
			return 0, 0, 0, 0, fmt.Errorf("invalid dimension %d: must be positive", v)
		}
		*d = v
	}

	if len(args) > 3 {
		v, convErr := strconv.Atoi(args[3])
		if convErr != nil {
			return 0, 0, 0, 0, fmt.Errorf("invalid fuel index %q: must be an integer", args[3])
		}
		if v < 0 {
			return 0, 0, 0, 0, fmt.Errorf("invalid fuel index %d: must be non-negative", v)
		}
		fuelIndex = v
	}

	return x, y, z, fuelIndex, nil
}

// applyThreadOverride honors an OMP_NUM_THREADS-style convention for
// capping search parallelism, defaulting to half of the available
// cores.
func applyThreadOverride() {
	if v := os.Getenv("OMP_NUM_THREADS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			runtime.GOMAXPROCS(n)
			return
		}
	}
	half := runtime.NumCPU() / 2
	if half < 1 {
		half = 1
	}
	runtime.GOMAXPROCS(half)
}

// writeArtifacts writes the JSON save file and appends the CSV log row
// for the best grid found.
func writeArtifacts(best *grid.Grid, s *sim.Simulator, rs *ruleset.Ruleset, fuelIndex int) {
	now := time.Now().Unix()
	effective := s.EffectivePower(fuelIndex)

	name := export.FileName(now, best.X, best.Y, best.Z, effective)
	doc := export.BuildDocument(best, s, rs, fuelIndex)
	export.WriteDocument(name, doc)

	export.AppendLogRow("log.csv", export.LogRow{
		OutFile:        name,
		EffectivePower: effective,
		TotalHeating:   s.TotalHeating(fuelIndex),
		TotalCooling:   s.TotalCooling(fuelIndex),
	})

	slog.Info("reactor search complete", "outfile", name, "effective_power", effective)
}
