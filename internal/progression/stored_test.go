package progression

import (
	"math"
	"testing"

	"github.com/meltforce/liftlog/internal/models"
)

func TestFromHistoryConvertsUnits(t *testing.T) {
	stored := &models.ExerciseHistory{
		Exercise: "Squat",
		Meta:     &models.ExerciseMeta{Category: models.CategoryLowerCompound, Equipment: models.EquipBarbell, Low: 5, High: 8},
		Entries: []models.ExerciseHistoryEntry{
			{Units: models.UnitsKg, Sets: []models.SetRecord{{Weight: 100, Reps: 5}}},
			{Units: models.UnitsLb, Sets: []models.SetRecord{{Weight: 215, Reps: 5, Failed: true}}},
		},
	}

	req := FromHistory(stored, nil, models.UnitsLb)

	if req.Exercise != "Squat" || req.Units != models.UnitsLb {
		t.Errorf("request = %+v", req)
	}
	if req.Meta != *stored.Meta {
		t.Errorf("meta = %+v, want stored meta", req.Meta)
	}
	if got := req.History[0].Sets[0].Weight; math.Abs(got-220.462) > 0.01 {
		t.Errorf("converted weight = %v, want ~220.46", got)
	}
	if got := req.History[1].Sets[0]; got.Weight != 215 || !got.Failed {
		t.Errorf("lb entry = %+v, want unchanged", got)
	}
	if stored.Entries[0].Sets[0].Weight != 100 {
		t.Error("stored history was modified")
	}

	// 220.46 lb x5 in a 5-8 range holds on the 5 lb grid.
	next, err := Heuristic(req.Meta, req.History, req.Units)
	if err != nil {
		t.Fatalf("heuristic: %v", err)
	}
	if next != 220 {
		t.Errorf("next = %v, want 220", next)
	}
}

func TestFromHistoryOverride(t *testing.T) {
	stored := &models.ExerciseHistory{Exercise: "Curl", Entries: []models.ExerciseHistoryEntry{}}
	override := &models.ExerciseMeta{Category: models.CategoryOther, Equipment: models.EquipDumbbell, Low: 10, High: 12}

	req := FromHistory(stored, override, models.UnitsKg)
	if req.Meta != *override {
		t.Errorf("meta = %+v, want override", req.Meta)
	}
	if req.History == nil || len(req.History) != 0 {
		t.Errorf("history = %#v, want empty", req.History)
	}
}
