package progression

import (
	"errors"
	"math"
	"testing"

	"github.com/meltforce/liftlog/internal/models"
	"github.com/meltforce/liftlog/internal/units"
)

func sets(pairs ...float64) []models.SetRecord {
	var out []models.SetRecord
	for i := 0; i+1 < len(pairs); i += 2 {
		out = append(out, models.SetRecord{Weight: pairs[i], Reps: int(pairs[i+1])})
	}
	return out
}

func history(s ...[]models.SetRecord) []models.ExerciseHistoryEntry {
	var h []models.ExerciseHistoryEntry
	for _, set := range s {
		h = append(h, models.ExerciseHistoryEntry{Sets: set})
	}
	return h
}

var (
	benchMeta = models.ExerciseMeta{Category: models.CategoryUpperCompound, Equipment: models.EquipBarbell, Low: 6, High: 8}
	squatMeta = models.ExerciseMeta{Category: models.CategoryLowerCompound, Equipment: models.EquipBarbell, Low: 6, High: 8}
	curlMeta  = models.ExerciseMeta{Category: models.CategoryOther, Equipment: models.EquipDumbbell, Low: 8, High: 12}
	squat58   = models.ExerciseMeta{Category: models.CategoryLowerCompound, Equipment: models.EquipBarbell, Low: 5, High: 8}
)

// TestHeuristic covers the three decision branches and the failure multiplier.
func TestHeuristic(t *testing.T) {
	failedSets := sets(135, 8, 135, 8, 135, 8)
	failedSets[1].Failed = true
	failedSets[2].Failed = true

	oneFailed := sets(200, 8, 200, 8, 200, 7)
	oneFailed[2].Failed = true

	tests := []struct {
		name  string
		meta  models.ExerciseMeta
		hist  []models.ExerciseHistoryEntry
		units string
		want  float64
	}{
		// 135 + 135*0.0225*1.25 = 138.80 -> 140
		{"clean session at top of range", benchMeta, history(sets(135, 8, 135, 8, 135, 8)), models.UnitsLb, 140},
		// 135 + 135*0.0225*0.5 = 136.52 -> 135
		{"mostly failed session", benchMeta, history(failedSets), models.UnitsLb, 135},
		// 200 + 200*0.0225*1.0 = 204.5 -> 205
		{"some failures", benchMeta, history(oneFailed), models.UnitsLb, 205},
		// 100 - 100*0.035*1.25 = 95.625 -> 95
		{"below range regresses", squatMeta, history(sets(100, 5, 100, 5)), models.UnitsKg, 95},
		// 137 -> 135
		{"hold snaps to grid", benchMeta, history(sets(137, 7)), models.UnitsLb, 135},
		// 22 + 22*0.015*1.25 = 22.41 -> 22.5
		{"dumbbell kg", curlMeta, history(sets(22, 12, 20, 12)), models.UnitsKg, 22.5},
		{"only most recent entry counts", benchMeta, history(sets(135, 7), sets(500, 20)), models.UnitsLb, 135},
		{"empty units default to lb", benchMeta, history(sets(135, 7)), "", 135},
		{"regress floors at zero", squatMeta, history(sets(0, 2)), models.UnitsLb, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Heuristic(tt.meta, tt.hist, tt.units)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if math.Abs(got-tt.want) > 1e-9 {
				t.Errorf("Heuristic = %v, want %v", got, tt.want)
			}
		})
	}
}

// TestTopSetTieBreak verifies the heaviest set wins and ties go to more reps.
func TestTopSetTieBreak(t *testing.T) {
	top, ok := TopSet(sets(100, 10, 110, 5, 110, 6, 90, 12))
	if !ok {
		t.Fatal("expected a top set")
	}
	if top.Weight != 110 || top.Reps != 6 {
		t.Errorf("top = %+v, want 110x6", top)
	}
	if _, ok := TopSet(nil); ok {
		t.Error("TopSet(nil) should report !ok")
	}
}

// TestMonotonicDirection checks that progressing never lowers and regressing
// never raises the weight, across categories, equipment and units.
func TestMonotonicDirection(t *testing.T) {
	for _, cat := range []string{models.CategoryLowerCompound, models.CategoryUpperCompound, models.CategoryOther} {
		for _, equip := range []string{models.EquipBarbell, models.EquipDumbbell, models.EquipOther} {
			for _, u := range []string{models.UnitsLb, models.UnitsKg} {
				meta := models.ExerciseMeta{Category: cat, Equipment: equip, Low: 8, High: 12}
				step := units.Step(equip, u)
				for w := 0.0; w <= 300; w += 7.5 {
					top := units.Round(w, step)

					up, err := Heuristic(meta, history(sets(top, 12)), u)
					if err != nil {
						t.Fatal(err)
					}
					if up < top {
						t.Errorf("%s/%s/%s: progress from %v gave %v", cat, equip, u, top, up)
					}

					down, err := Heuristic(meta, history(sets(top, 5)), u)
					if err != nil {
						t.Fatal(err)
					}
					if down > top || down < 0 {
						t.Errorf("%s/%s/%s: regress from %v gave %v", cat, equip, u, top, down)
					}
				}
			}
		}
	}
}

// TestRoundingGrid checks every output is an exact multiple of the step.
func TestRoundingGrid(t *testing.T) {
	for _, equip := range []string{models.EquipBarbell, models.EquipDumbbell, models.EquipOther} {
		for _, u := range []string{models.UnitsLb, models.UnitsKg} {
			step := units.Step(equip, u)
			meta := models.ExerciseMeta{Category: models.CategoryUpperCompound, Equipment: equip, Low: 6, High: 10}
			for w := 1.0; w < 250; w += 3.3 {
				for _, reps := range []int{4, 6, 8, 10, 12} {
					got, err := Heuristic(meta, history(sets(w, float64(reps))), u)
					if err != nil {
						t.Fatal(err)
					}
					if q := got / step; math.Abs(q-math.Round(q)) > 1e-9 {
						t.Errorf("%s/%s: %v x %d -> %v not a multiple of %v", equip, u, w, reps, got, step)
					}
				}
			}
		}
	}
}

// TestIdempotentHold checks reps == low (< high) returns round(topWeight).
func TestIdempotentHold(t *testing.T) {
	for _, w := range []float64{135, 137.5, 141, 225} {
		got, err := Heuristic(benchMeta, history(sets(w, float64(benchMeta.Low))), models.UnitsLb)
		if err != nil {
			t.Fatal(err)
		}
		if want := units.Round(w, 5); got != want {
			t.Errorf("hold at %v = %v, want %v", w, got, want)
		}
	}
}

// TestHeuristicErrors verifies empty and malformed input.
func TestHeuristicErrors(t *testing.T) {
	if _, err := Heuristic(benchMeta, nil, models.UnitsLb); !errors.Is(err, ErrNoHistory) {
		t.Errorf("empty history err = %v, want ErrNoHistory", err)
	}

	tests := []struct {
		name  string
		meta  models.ExerciseMeta
		hist  []models.ExerciseHistoryEntry
		units string
	}{
		{"no sets in latest entry", benchMeta, history(nil, sets(100, 5)), models.UnitsLb},
		{"unknown units", benchMeta, history(sets(100, 5)), "stone"},
		{"zero low", models.ExerciseMeta{Equipment: models.EquipBarbell}, history(sets(100, 5)), models.UnitsLb},
		{"inverted range", models.ExerciseMeta{Low: 10, High: 6}, history(sets(100, 5)), models.UnitsLb},
		{"NaN weight", benchMeta, history(sets(math.NaN(), 5)), models.UnitsLb},
		{"negative reps", benchMeta, history(sets(100, -1)), models.UnitsLb},
		{"negative weight", squat58, history(sets(-100, 10)), models.UnitsLb},
		{"zero reps", squat58, history(sets(100, 0)), models.UnitsLb},
		{"zero reps in back-off set", benchMeta, history(sets(135, 8, 115, 0)), models.UnitsLb},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := Heuristic(tt.meta, tt.hist, tt.units); !errors.Is(err, ErrMalformed) {
				t.Errorf("err = %v, want ErrMalformed", err)
			}
		})
	}
}

func TestEstimate1RM(t *testing.T) {
	tests := []struct {
		w    float64
		reps int
		want float64
	}{
		{100, 1, 100},
		{100, 5, 116.7},
		{225, 10, 300},
		{0, 5, 0},
		{100, 0, 0},
	}
	for _, tt := range tests {
		if got := Estimate1RM(tt.w, tt.reps); math.Abs(got-tt.want) > 0.05 {
			t.Errorf("Estimate1RM(%v, %d) = %v, want %v", tt.w, tt.reps, got, tt.want)
		}
	}
}
