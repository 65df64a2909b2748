// Package ruleset provides the reactor's static, swappable coefficient
// tables: cooler strengths, moderator/reflector scalars, neutron source
// efficiencies, and the fuel table. The tables are parameters, not
// logic; cooler activation predicates live in package sim, keyed off
// these tables' variant identifiers.
//
// An embedded "vanilla" ruleset is parsed first; an optional file on
// disk can then override individual fields.
package ruleset

import (
	_ "embed"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/pthm-cable/reactor-opt/blocks"
)

//go:embed ruleset_v2.yaml
var defaultsYAML []byte

// FuelSpec describes one entry of the fuel table.
type FuelSpec struct {
	Name           string  `yaml:"name"`
	BaseHeat       float64 `yaml:"base_heat"`
	BaseEfficiency float64 `yaml:"base_efficiency"`
	Criticality    float64 `yaml:"criticality"`
}

// Ruleset holds every coefficient the simulator consults. Generation is
// the newest supported ("v2": moderator flux, reflectors, neutron
// sources); see DESIGN.md for why earlier generations aren't mixed in.
type Ruleset struct {
	Generation string `yaml:"generation"`

	NeutronReach      int     `yaml:"neutron_reach"`
	ReflectorBaseline float64 `yaml:"reflector_efficiency_baseline"`
	CoolingLeniency   float64 `yaml:"cooling_leniency"`

	CoolerStrength map[string]float64 `yaml:"cooler_strength"`

	ModeratorFlux       map[string]float64 `yaml:"moderator_flux"`
	ModeratorEfficiency map[string]float64 `yaml:"moderator_efficiency"`

	ReflectorReflectivity map[string]float64 `yaml:"reflector_reflectivity"`
	ReflectorEfficiency   map[string]float64 `yaml:"reflector_efficiency"`

	NeutronSourceEfficiency map[string]float64 `yaml:"neutron_source_efficiency"`

	Fuels []FuelSpec `yaml:"fuels"`

	// Resolved lookup tables, built by resolve() after loading.
	coolerStrength  [256]float64
	moderatorFlux   [256]float64
	moderatorEff    [256]float64
	reflectorRefl   [256]float64
	reflectorEff    [256]float64
	sourceEff       [256]float64
	fuelByIndex     []FuelSpec
	fuelNameToIndex map[string]int
}

var global *Ruleset

// Init loads the ruleset from path, or the embedded vanilla v2 table if
// path is empty. Must be called before Cfg().
func Init(path string) error {
	rs, err := Load(path)
	if err != nil {
		return err
	}
	global = rs
	return nil
}

// MustInit is like Init but panics on error.
func MustInit(path string) {
	if err := Init(path); err != nil {
		panic(fmt.Sprintf("ruleset: failed to initialize: %v", err))
	}
}

// Cfg returns the active ruleset. Panics if Init was not called.
func Cfg() *Ruleset {
	if global == nil {
		panic("ruleset: Cfg() called before Init()")
	}
	return global
}

// Load parses the embedded vanilla defaults, then merges an optional
// override file (only fields present in the file are overwritten).
func Load(path string) (*Ruleset, error) {
	rs := &Ruleset{}
	if err := yaml.Unmarshal(defaultsYAML, rs); err != nil {
		return nil, fmt.Errorf("parsing embedded ruleset: %w", err)
	}

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading ruleset file: %w", err)
		}
		if err := yaml.Unmarshal(data, rs); err != nil {
			return nil, fmt.Errorf("parsing ruleset file: %w", err)
		}
	}

	rs.resolve()
	return rs, nil
}

// resolve converts the name-keyed YAML maps into enum-indexed arrays for
// O(1) lookup during evaluation.
func (rs *Ruleset) resolve() {
	for _, v := range blocks.AllCoolerVariants() {
		rs.coolerStrength[v] = rs.CoolerStrength[v.String()]
	}
	for _, v := range blocks.AllModeratorVariants() {
		rs.moderatorFlux[v] = rs.ModeratorFlux[v.String()]
		rs.moderatorEff[v] = rs.ModeratorEfficiency[v.String()]
	}
	for _, v := range blocks.AllReflectorVariants() {
		rs.reflectorRefl[v] = rs.ReflectorReflectivity[v.String()]
		if eff, ok := rs.ReflectorEfficiency[v.String()]; ok {
			rs.reflectorEff[v] = eff
		} else {
			rs.reflectorEff[v] = rs.ReflectorBaseline
		}
	}
	for _, v := range blocks.AllSourceVariants() {
		rs.sourceEff[v] = rs.NeutronSourceEfficiency[v.String()]
	}

	rs.fuelByIndex = rs.Fuels
	rs.fuelNameToIndex = make(map[string]int, len(rs.Fuels))
	for i, f := range rs.Fuels {
		rs.fuelNameToIndex[f.Name] = i
	}
}

// CoolerStrengthOf returns the cooling strength for a cooler variant.
func (rs *Ruleset) CoolerStrengthOf(v blocks.CoolerVariant) float64 { return rs.coolerStrength[v] }

// ModeratorFluxOf returns the flux contribution of a moderator variant.
func (rs *Ruleset) ModeratorFluxOf(v blocks.ModeratorVariant) float64 { return rs.moderatorFlux[v] }

// ModeratorEfficiencyOf returns the positional efficiency contribution of a moderator variant.
func (rs *Ruleset) ModeratorEfficiencyOf(v blocks.ModeratorVariant) float64 { return rs.moderatorEff[v] }

// ReflectorReflectivityOf returns the reflectivity coefficient for a reflector variant.
func (rs *Ruleset) ReflectorReflectivityOf(v blocks.ReflectorVariant) float64 {
	return rs.reflectorRefl[v]
}

// ReflectorEfficiencyOf returns the positional-efficiency coefficient for a reflector variant.
func (rs *Ruleset) ReflectorEfficiencyOf(v blocks.ReflectorVariant) float64 { return rs.reflectorEff[v] }

// NeutronSourceEfficiencyOf returns the power multiplier for a primed fuel cell's source.
func (rs *Ruleset) NeutronSourceEfficiencyOf(v blocks.NeutronSourceVariant) float64 {
	if v == blocks.SourceUnprimed {
		return 1.0
	}
	return rs.sourceEff[v]
}

// NumFuels returns the number of entries in the fuel table.
func (rs *Ruleset) NumFuels() int { return len(rs.fuelByIndex) }

// FuelAt returns the fuel spec at index i and whether i was in range.
func (rs *Ruleset) FuelAt(i int) (FuelSpec, bool) {
	if i < 0 || i >= len(rs.fuelByIndex) {
		return FuelSpec{}, false
	}
	return rs.fuelByIndex[i], true
}

// FuelIndexByName returns the fuel table index for a fuel name, or -1.
func (rs *Ruleset) FuelIndexByName(name string) int {
	if i, ok := rs.fuelNameToIndex[name]; ok {
		return i
	}
	return -1
}
