// Package export writes the two on-disk artifacts a completed search
// run leaves behind: the save-compatible JSON layout file and a
// one-row-per-run CSV append log. Both are best-effort: a failure to
// open either file is logged and otherwise ignored, so a finished
// search is never lost over an unwritable artifact.
package export

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/gocarina/gocsv"

	"github.com/pthm-cable/reactor-opt/blocks"
	"github.com/pthm-cable/reactor-opt/grid"
	"github.com/pthm-cable/reactor-opt/ruleset"
	"github.com/pthm-cable/reactor-opt/sim"
)

// Coord is a 1-based exported position: interior block (x,y,z) exports
// as X=x+1, Y=y+1, Z=z+1.
type Coord struct {
	X int `json:"X"`
	Y int `json:"Y"`
	Z int `json:"Z"`
}

// SaveVersion is the fixed save-format version this writer targets:
// "SaveVersion 2", the newer shape with a reflector map and struct
// coordinates rather than the pre-2 "x,y,z" string keys.
type SaveVersion struct {
	Major         int `json:"Major"`
	Minor         int `json:"Minor"`
	Build         int `json:"Build"`
	Revision      int `json:"Revision"`
	MajorRevision int `json:"MajorRevision"`
	MinorRevision int `json:"MinorRevision"`
}

// Dimensions is the exported InteriorDimensions block.
type Dimensions struct {
	X int `json:"X"`
	Y int `json:"Y"`
	Z int `json:"Z"`
}

// Document is the full shape of the output JSON file.
type Document struct {
	SaveVersion        SaveVersion          `json:"SaveVersion"`
	HeatSinks          map[string][]Coord   `json:"HeatSinks,omitempty"`
	Moderators         map[string][]Coord   `json:"Moderators,omitempty"`
	Conductors         []Coord              `json:"Conductors,omitempty"`
	Reflectors         map[string][]Coord   `json:"Reflectors,omitempty"`
	FuelCells          map[string][]Coord   `json:"FuelCells,omitempty"`
	InteriorDimensions Dimensions           `json:"InteriorDimensions"`
}

// currentSaveVersion is the version stamp every export carries; the
// reactor format doesn't vary with this module's own version, so it is
// a fixed constant rather than something derived at build time.
var currentSaveVersion = SaveVersion{Major: 2, Minor: 0, Build: 0, Revision: 0, MajorRevision: 0, MinorRevision: 0}

// BuildDocument walks g and produces the exported Document for the
// given fuel index, querying s for each fuel cell's active state so the
// FuelCells key can carry the "<FuelName>;<True|False>;<SourceName>" tag.
func BuildDocument(g *grid.Grid, s *sim.Simulator, rs *ruleset.Ruleset, fuelIndex int) Document {
	doc := Document{
		SaveVersion:        currentSaveVersion,
		HeatSinks:          map[string][]Coord{},
		Moderators:         map[string][]Coord{},
		Reflectors:         map[string][]Coord{},
		FuelCells:          map[string][]Coord{},
		InteriorDimensions: Dimensions{X: g.X, Y: g.Y, Z: g.Z},
	}

	fuel, _ := rs.FuelAt(fuelIndex)

	g.Each(func(x, y, z, idx int, c grid.Cell) {
		coord := Coord{X: x + 1, Y: y + 1, Z: z + 1}
		switch c.Kind {
		case blocks.Cooler:
			name := c.Cooler.String()
			doc.HeatSinks[name] = append(doc.HeatSinks[name], coord)
		case blocks.Moderator:
			name := c.Moderator.String()
			doc.Moderators[name] = append(doc.Moderators[name], coord)
		case blocks.Conductor:
			doc.Conductors = append(doc.Conductors, coord)
		case blocks.Reflector:
			name := c.Reflector.String()
			doc.Reflectors[name] = append(doc.Reflectors[name], coord)
		case blocks.FuelCell:
			activeTag := "False"
			if s.IsActive(fuelIndex, idx) {
				activeTag = "True"
			}
			key := fmt.Sprintf("%s;%s;%s", fuel.Name, activeTag, c.Source.String())
			doc.FuelCells[key] = append(doc.FuelCells[key], coord)
		}
	})

	for k, v := range doc.HeatSinks {
		if len(v) == 0 {
			delete(doc.HeatSinks, k)
		}
	}
	for k, v := range doc.Moderators {
		if len(v) == 0 {
			delete(doc.Moderators, k)
		}
	}
	for k, v := range doc.Reflectors {
		if len(v) == 0 {
			delete(doc.Reflectors, k)
		}
	}
	for k, v := range doc.FuelCells {
		if len(v) == 0 {
			delete(doc.FuelCells, k)
		}
	}
	if len(doc.HeatSinks) == 0 {
		doc.HeatSinks = nil
	}
	if len(doc.Moderators) == 0 {
		doc.Moderators = nil
	}
	if len(doc.Reflectors) == 0 {
		doc.Reflectors = nil
	}
	if len(doc.FuelCells) == 0 {
		doc.FuelCells = nil
	}

	return doc
}

// FileName builds the "out_<unix>_<X>_<Y>_<Z>_<effectivePower>.json"
// output name.
func FileName(unixTime int64, x, y, z int, effectivePower float64) string {
	return fmt.Sprintf("out_%d_%d_%d_%d_%.4f.json", unixTime, x, y, z, effectivePower)
}

// WriteDocument marshals doc to path. A failure is logged and
// swallowed; an unwritable output file must not abort the run.
func WriteDocument(path string, doc Document) {
	data, err := json.MarshalIndent(doc, "", " ")
	if err != nil {
		slog.Error("marshaling reactor export", "path", path, "error", err)
		return
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		slog.Error("writing reactor export", "path", path, "error", err)
		return
	}
}

// RestoreGrid rebuilds a Grid from a previously exported Document, the
// inverse of BuildDocument, shifting coordinates back to 0-based. Group
// names that don't resolve against the block vocabulary are an error;
// the fuel name and active tag inside a FuelCells key are informational
// and ignored (only the source variant round-trips into the grid).
func RestoreGrid(doc Document) (*grid.Grid, error) {
	dims := doc.InteriorDimensions
	g := grid.New(dims.X, dims.Y, dims.Z)

	for name, coords := range doc.HeatSinks {
		v, ok := blocks.CoolerVariantByName(name)
		if !ok {
			return nil, fmt.Errorf("unknown heat sink %q", name)
		}
		for _, c := range coords {
			g.SetCell(c.X-1, c.Y-1, c.Z-1, blocks.Cooler, v, blocks.ModeratorAir, blocks.SourceUnprimed, blocks.ReflectorAir)
		}
	}
	for name, coords := range doc.Moderators {
		v, ok := blocks.ModeratorVariantByName(name)
		if !ok {
			return nil, fmt.Errorf("unknown moderator %q", name)
		}
		for _, c := range coords {
			g.SetCell(c.X-1, c.Y-1, c.Z-1, blocks.Moderator, blocks.CoolerAir, v, blocks.SourceUnprimed, blocks.ReflectorAir)
		}
	}
	for _, c := range doc.Conductors {
		g.SetCellAt(c.X-1, c.Y-1, c.Z-1, blocks.Conductor)
	}
	for name, coords := range doc.Reflectors {
		v, ok := blocks.ReflectorVariantByName(name)
		if !ok {
			return nil, fmt.Errorf("unknown reflector %q", name)
		}
		for _, c := range coords {
			g.SetCell(c.X-1, c.Y-1, c.Z-1, blocks.Reflector, blocks.CoolerAir, blocks.ModeratorAir, blocks.SourceUnprimed, v)
		}
	}
	for key, coords := range doc.FuelCells {
		parts := strings.Split(key, ";")
		if len(parts) != 3 {
			return nil, fmt.Errorf("malformed fuel-cell key %q", key)
		}
		src, ok := blocks.SourceVariantByName(parts[2])
		if !ok {
			return nil, fmt.Errorf("unknown neutron source %q in key %q", parts[2], key)
		}
		for _, c := range coords {
			g.SetCell(c.X-1, c.Y-1, c.Z-1, blocks.FuelCell, blocks.CoolerAir, blocks.ModeratorAir, src, blocks.ReflectorAir)
		}
	}

	return g, nil
}

// LogRow is one append-only record written to log.csv: the output file
// name, effective power, and the heating/cooling totals that produced
// it. Field order matches the gocsv struct-tag column order.
type LogRow struct {
	OutFile        string  `csv:"outfile"`
	EffectivePower float64 `csv:"effective_power"`
	TotalHeating   float64 `csv:"total_heating"`
	TotalCooling   float64 `csv:"total_cooling"`
}

// AppendLogRow appends one row to path, writing a header only when
// the file doesn't already exist. A failure to open the file is logged
// and swallowed, same as WriteDocument.
func AppendLogRow(path string, row LogRow) {
	_, statErr := os.Stat(path)
	needsHeader := os.IsNotExist(statErr)

	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		slog.Error("opening reactor log", "path", path, "error", err)
		return
	}
	defer f.Close()

	rows := []LogRow{row}
	if needsHeader {
		if err := gocsv.Marshal(rows, f); err != nil {
			slog.Error("writing reactor log header", "path", path, "error", err)
		}
		return
	}
	if err := gocsv.MarshalWithoutHeaders(rows, f); err != nil {
		slog.Error("writing reactor log row", "path", path, "error", err)
	}
}
