package progression

import (
	"github.com/meltforce/liftlog/internal/models"
	"github.com/meltforce/liftlog/internal/units"
)

// warmupRamp is the percentage/reps ladder leading up to the working weight.
var warmupRamp = []struct {
	pct  float64
	reps int
}{
	{0.40, 8},
	{0.60, 5},
	{0.80, 3},
}

// WarmupPlan returns ramp-up sets for a working weight, each on the equipment
// grid. Barbell plans start with the empty bar and never go below it. Sets at
// or above the working weight and repeated weights are left out.
func WarmupPlan(work float64, equip, u string) []models.WarmupSet {
	plan := []models.WarmupSet{}
	if work <= 0 {
		return plan
	}
	step := units.Step(equip, u)

	last := 0.0
	add := func(w float64, reps int) {
		if w <= 0 || w >= work || w <= last {
			return
		}
		plan = append(plan, models.WarmupSet{Weight: w, Reps: reps})
		last = w
	}

	floor := 0.0
	if equip == models.EquipBarbell {
		floor = units.BarWeight(u)
		add(floor, 10)
	}
	for _, r := range warmupRamp {
		w := units.Round(work*r.pct, step)
		if w < floor {
			w = floor
		}
		add(w, r.reps)
	}
	return plan
}

// RestSeconds is the suggested rest before the next set: longer for compound
// movements, plus 30 s after a set taken to failure.
func RestSeconds(meta models.ExerciseMeta, lastSetFailed bool) int {
	var rest int
	switch meta.Category {
	case models.CategoryLowerCompound:
		rest = 180
	case models.CategoryUpperCompound:
		rest = 150
	default:
		rest = 90
	}
	if lastSetFailed {
		rest += 30
	}
	return rest
}
