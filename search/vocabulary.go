package search

import "github.com/pthm-cable/reactor-opt/blocks"

// editTemplate is one entry of the short vocabulary of block-kind
// templates random mutation draws from.
type editTemplate struct {
	Kind      blocks.Kind
	Cooler    blocks.CoolerVariant
	Moderator blocks.ModeratorVariant
	Source    blocks.NeutronSourceVariant
	Reflector blocks.ReflectorVariant
	Weight    float64
}

// stage1Vocabulary is heavily weighted toward moderator/conductor/reflector
// placement; the early search is about building a self-sustaining core.
// A primed fuel-cell template is carried so the random phase can seed
// flux at all; without at least one primed cell nothing ever activates.
func stage1Vocabulary() []editTemplate {
	return []editTemplate{
		{Kind: blocks.Air, Weight: 1},
		{Kind: blocks.FuelCell, Weight: 2},
		{Kind: blocks.FuelCell, Source: blocks.SourceRaBe, Weight: 2},
		{Kind: blocks.Moderator, Moderator: blocks.ModeratorGraphite, Weight: 4},
		{Kind: blocks.Moderator, Moderator: blocks.ModeratorBeryllium, Weight: 2},
		{Kind: blocks.Moderator, Moderator: blocks.ModeratorHeavyWater, Weight: 2},
		{Kind: blocks.Conductor, Weight: 3},
		{Kind: blocks.Reflector, Reflector: blocks.ReflectorBerylliumCarbon, Weight: 2},
		{Kind: blocks.Reflector, Reflector: blocks.ReflectorLeadSteel, Weight: 2},
	}
}

// stage2Vocabulary is heavily weighted toward coolers; the late search
// is about balancing heat once a self-sustaining core exists.
func stage2Vocabulary() []editTemplate {
	list := []editTemplate{
		{Kind: blocks.Air, Weight: 1},
		{Kind: blocks.Conductor, Weight: 1},
	}
	for _, v := range blocks.AllCoolerVariants() {
		list = append(list, editTemplate{Kind: blocks.Cooler, Cooler: v, Weight: 3})
	}
	return list
}
