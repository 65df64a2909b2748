package blocks

import "testing"

func TestKindShort(t *testing.T) {
	cases := map[Kind]byte{
		Air:       '_',
		FuelCell:  'F',
		Moderator: 'M',
		Cooler:    'C',
		Conductor: 'D',
		Reflector: 'R',
		Casing:    '#',
	}
	for k, want := range cases {
		if got := k.Short(); got != want {
			t.Errorf("Kind(%d).Short() = %q, want %q", k, got, want)
		}
	}
}

func TestAllCoolerVariantsExcludesAir(t *testing.T) {
	all := AllCoolerVariants()
	if len(all) != NumCoolerVariants() {
		t.Fatalf("len(AllCoolerVariants()) = %d, want %d", len(all), NumCoolerVariants())
	}
	for _, v := range all {
		if v == CoolerAir {
			t.Fatal("AllCoolerVariants() included the Air sentinel")
		}
	}
}

func TestAllCoolerVariantsCoversExpectedCount(t *testing.T) {
	// the cooler alphabet carries roughly 33 named variants.
	if n := NumCoolerVariants(); n < 30 {
		t.Errorf("NumCoolerVariants() = %d, expected at least 30", n)
	}
}

func TestModeratorVariantStringAndShort(t *testing.T) {
	for _, v := range AllModeratorVariants() {
		if v.String() == "Unknown" {
			t.Errorf("ModeratorVariant(%d) has no name", v)
		}
		if v.Short() == "??" {
			t.Errorf("ModeratorVariant(%d) has no short code", v)
		}
	}
}

func TestNeutronSourcePrimed(t *testing.T) {
	if SourceUnprimed.Primed() {
		t.Error("SourceUnprimed.Primed() = true, want false")
	}
	for _, v := range AllSourceVariants() {
		if !v.Primed() {
			t.Errorf("source variant %v should be primed", v)
		}
	}
}

func TestReflectorVariantsHaveNames(t *testing.T) {
	for _, v := range AllReflectorVariants() {
		if v.String() == "Unknown" {
			t.Errorf("ReflectorVariant(%d) has no name", v)
		}
	}
}
