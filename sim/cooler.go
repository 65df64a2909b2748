package sim

import "github.com/pthm-cable/reactor-opt/blocks"

// isActive resolves the active flag for any cell, triggering the
// cooler-activation fixed-point lazily. Fuel cells, moderators,
// reflectors and conductors are set directly by earlier pipeline stages;
// if queried before that stage ran, they read as not-yet-active rather
// than recursing, since only coolers have a recursive predicate.
func (s *Simulator) isActive(idx int) bool {
	switch s.active[idx] {
	case isTrue:
		return true
	case isFalse:
		return false
	}

	c := s.g.AtIndex(idx)
	if c.Kind != blocks.Cooler {
		return false
	}

	// Tentative sentinel before recursing: the predicate graph is a DAG
	// in the v2 ruleset, but this guards against an accidental cycle
	// turning into infinite recursion instead of a wrong-but-terminating answer.
	s.active[idx] = isFalse
	x, y, z := s.g.Coord(idx)
	result := s.coolerPredicate(x, y, z, c.Cooler)
	if result {
		s.active[idx] = isTrue
	}
	return result
}

// coolerPredicate is the per-variant placement predicate table. The
// long-established variants (water through magnesium here) keep their
// classic activation conditions; the newer variants generalize the
// same categorical patterns. See DESIGN.md for the
// boron/helium/enderium rows that needed a judgment call.
func (s *Simulator) coolerPredicate(x, y, z int, v blocks.CoolerVariant) bool {
	switch v {
	case blocks.CoolerWater:
		return s.countActiveFuelCellsAdjacent(x, y, z) >= 1

	case blocks.CoolerRedstone:
		return s.countActiveFuelCellsAdjacent(x, y, z) >= 1 && s.countValidModeratorsAdjacent(x, y, z) >= 1

	case blocks.CoolerQuartz:
		return s.countActiveCoolersOfVariantAdjacent(x, y, z, blocks.CoolerRedstone) >= 1

	case blocks.CoolerGold:
		return s.countActiveCoolersOfVariantAdjacent(x, y, z, blocks.CoolerIron) >= 2

	case blocks.CoolerGlowstone:
		return s.countValidModeratorsAdjacent(x, y, z) >= 2

	case blocks.CoolerLapis:
		return s.countActiveFuelCellsAdjacent(x, y, z) >= 1 && s.countCasingsAdjacent(x, y, z) >= 1

	case blocks.CoolerDiamond:
		return s.countActiveFuelCellsAdjacent(x, y, z) >= 1 && s.countActiveCoolersOfVariantAdjacent(x, y, z, blocks.CoolerGold) >= 1

	case blocks.CoolerHelium:
		// exactly two redstones, not a casing count; see DESIGN.md.
		return s.countActiveCoolersOfVariantAdjacent(x, y, z, blocks.CoolerRedstone) == 2

	case blocks.CoolerEnderium:
		// exactly three casings; see DESIGN.md.
		return s.countCasingsAdjacent(x, y, z) == 3

	case blocks.CoolerCryotheum:
		return s.countActiveFuelCellsAdjacent(x, y, z) >= 3

	case blocks.CoolerIron:
		return s.countValidModeratorsAdjacent(x, y, z) >= 1

	case blocks.CoolerEmerald:
		return s.countActiveCoolersOfVariantAdjacent(x, y, z, blocks.CoolerDiamond) >= 1

	case blocks.CoolerCopper:
		return s.countActiveFuelCellsAdjacent(x, y, z) >= 1

	case blocks.CoolerTin:
		return s.hasAxialPairOfCooler(x, y, z, blocks.CoolerLapis)

	case blocks.CoolerMagnesium:
		return s.countCasingsAdjacent(x, y, z) >= 2

	// --- v2-only variants ---

	case blocks.CoolerObsidian:
		return s.hasAxialPairOfCooler(x, y, z, blocks.CoolerGlowstone)

	case blocks.CoolerPrismarine:
		return s.countActiveFuelCellsAdjacent(x, y, z) >= 1 && s.countCasingsAdjacent(x, y, z) >= 1

	case blocks.CoolerPurpur:
		return s.countActiveCoolersOfVariantAdjacent(x, y, z, blocks.CoolerObsidian) >= 1 &&
			s.countActiveCoolersOfVariantAdjacent(x, y, z, blocks.CoolerPrismarine) >= 1

	case blocks.CoolerLead:
		return s.countActiveFuelCellsAdjacent(x, y, z) >= 1

	case blocks.CoolerBoron:
		// exactly one quartz; see DESIGN.md.
		return s.countActiveCoolersOfVariantAdjacent(x, y, z, blocks.CoolerQuartz) == 1

	case blocks.CoolerLithium:
		return s.hasAxialPairOfCoolerAndCasing(x, y, z, blocks.CoolerLead)

	case blocks.CoolerManganese:
		return s.countActiveFuelCellsAdjacent(x, y, z) >= 2

	case blocks.CoolerAluminum:
		return s.countActiveCoolersOfVariantAdjacent(x, y, z, blocks.CoolerQuartz) >= 1 &&
			s.countActiveCoolersOfVariantAdjacent(x, y, z, blocks.CoolerTin) >= 1

	case blocks.CoolerSilver:
		return s.countActiveCoolersOfVariantAdjacent(x, y, z, blocks.CoolerAluminum) >= 1

	case blocks.CoolerCarobbite:
		return s.countCasingsAdjacent(x, y, z) >= 2

	case blocks.CoolerFluorite:
		return s.countActiveCoolersOfVariantAdjacent(x, y, z, blocks.CoolerGold) >= 1 &&
			s.countActiveCoolersOfVariantAdjacent(x, y, z, blocks.CoolerPrismarine) >= 1

	case blocks.CoolerVilliaumite:
		return s.countActiveReflectorsAdjacent(x, y, z) >= 1 &&
			s.countActiveCoolersOfVariantAdjacent(x, y, z, blocks.CoolerRedstone) >= 1

	case blocks.CoolerArsenic:
		return s.hasAxialPairOfActiveReflector(x, y, z)

	case blocks.CoolerNitrogen:
		// tcalloy's successor; the old hasVertex condition has no
		// 6-adjacency equivalent, so nitrogen uses a cell-count tier.
		return s.countActiveFuelCellsAdjacent(x, y, z) >= 4

	case blocks.CoolerEndstone:
		return s.countActiveReflectorsAdjacent(x, y, z) >= 1

	case blocks.CoolerSlime:
		return s.countActiveReflectorsAdjacent(x, y, z) >= 1 &&
			s.countActiveCoolersOfVariantAdjacent(x, y, z, blocks.CoolerLead) >= 2

	case blocks.CoolerNetherbrick:
		return s.countActiveFuelCellsAdjacent(x, y, z) >= 1 &&
			s.countActiveCoolersOfVariantAdjacent(x, y, z, blocks.CoolerQuartz) >= 1

	default:
		return false
	}
}
