// Package units holds the weight grid and unit conversion helpers shared by
// the progression and import code.
package units

import (
	"math"

	"github.com/meltforce/liftlog/internal/models"
)

const kgPerLb = 0.45359237

// Valid reports whether u is a supported weight unit.
func Valid(u string) bool {
	return u == models.UnitsLb || u == models.UnitsKg
}

// Step returns the rounding increment for an equipment type in the given units.
//
//	barbell  5 lb / 2.5 kg
//	dumbbell 2.5 lb / 1.25 kg
//	other    1
func Step(equip, u string) float64 {
	switch equip {
	case models.EquipBarbell:
		if u == models.UnitsKg {
			return 2.5
		}
		return 5
	case models.EquipDumbbell:
		if u == models.UnitsKg {
			return 1.25
		}
		return 2.5
	default:
		return 1
	}
}

// Round rounds v to the nearest multiple of step, halves rounding up.
// The small bias absorbs float error on values that are meant to sit exactly
// on a half step (e.g. 102.49999999 from percentage math).
func Round(v, step float64) float64 {
	if step <= 0 {
		return v
	}
	return math.Floor(v/step+0.5+1e-9) * step
}

// BarWeight is the empty Olympic bar in the given units.
func BarWeight(u string) float64 {
	if u == models.UnitsKg {
		return 20
	}
	return 45
}

// LbToKg converts pounds to kilograms.
func LbToKg(lb float64) float64 { return lb * kgPerLb }

// KgToLb converts kilograms to pounds.
func KgToLb(kg float64) float64 { return kg / kgPerLb }

// Convert converts w between units. Unknown or equal units return w unchanged.
func Convert(w float64, from, to string) float64 {
	switch {
	case from == to:
		return w
	case from == models.UnitsKg && to == models.UnitsLb:
		return KgToLb(w)
	case from == models.UnitsLb && to == models.UnitsKg:
		return LbToKg(w)
	}
	return w
}
