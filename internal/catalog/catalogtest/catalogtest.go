// Package catalogtest provides catalogs for tests.
package catalogtest

import (
	"testing"

	"github.com/aurceive/plate_combos/internal/catalog"
)

func lb(label string, v float64) catalog.PlateSpec {
	return catalog.PlateSpec{Label: label, Mass: catalog.LbToMass(v), Family: catalog.FamilyLb}
}

func kg(label string, v float64) catalog.PlateSpec {
	return catalog.PlateSpec{Label: label, Mass: catalog.KgToMass(v), Family: catalog.FamilyKg}
}

// GymSpecs is the mixed lb/kg plate set of a typical commercial gym.
func GymSpecs() []catalog.PlateSpec {
	return []catalog.PlateSpec{
		lb("45lb", 45), lb("35lb", 35), lb("25lb", 25), lb("15lb", 15), lb("10lb", 10),
		kg("25kg", 25), kg("20kg", 20), kg("15kg", 15), kg("10kg", 10), kg("5kg", 5),
		kg("2.5kg", 2.5), kg("1.25kg", 1.25), kg("1.14kg", 1.14),
	}
}

func GymLimits() catalog.Limits {
	return catalog.Limits{Default: 2, Overrides: map[string]int{
		"45lb": 8, "25kg": 8, "20kg": 8, "1.25kg": 1, "1.14kg": 1,
	}}
}

func Gym(tb testing.TB) *catalog.Catalog {
	tb.Helper()
	c, err := catalog.New(GymSpecs(), GymLimits())
	if err != nil {
		tb.Fatalf("gym catalog: %v", err)
	}
	return c
}

// TwoPlates is 20kg and 10kg, two of each per side.
func TwoPlates(tb testing.TB) *catalog.Catalog {
	tb.Helper()
	c, err := catalog.New([]catalog.PlateSpec{kg("20kg", 20), kg("10kg", 10)}, catalog.Limits{Default: 2})
	if err != nil {
		tb.Fatalf("two-plate catalog: %v", err)
	}
	return c
}
