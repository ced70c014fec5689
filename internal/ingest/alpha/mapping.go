package alpha

import (
	"regexp"
	"strings"

	"github.com/meltforce/liftlog/internal/models"
)

// Source is the session source recorded for Alpha Progression imports.
const Source = "alpha"

// targetSpread widens Alpha's single rep target into a range.
const targetSpread = 2

var (
	lowerCompoundRe = regexp.MustCompile(`(?i)\b(squat|deadlift|leg press|lunge|hip thrust)`)
	upperCompoundRe = regexp.MustCompile(`(?i)\b(bench|press\b|rows?\b|pull[\s-]?ups?\b|chin[\s-]?ups?\b|dips?\b)`)
)

// Category infers the progression category from an exercise name.
func Category(name string) string {
	switch {
	case lowerCompoundRe.MatchString(name):
		return models.CategoryLowerCompound
	case upperCompoundRe.MatchString(name):
		return models.CategoryUpperCompound
	default:
		return models.CategoryOther
	}
}

// Equipment maps Alpha's equipment label onto the rounding grids.
func Equipment(label string) string {
	l := strings.ToLower(label)
	switch {
	case strings.Contains(l, "barbell"), strings.Contains(l, "smith"), strings.Contains(l, "ez bar"), strings.Contains(l, "trap bar"):
		return models.EquipBarbell
	case strings.Contains(l, "dumbbell"):
		return models.EquipDumbbell
	default:
		return models.EquipOther
	}
}

// ToSession converts a parsed export session into a LoggedSession in
// kilograms. Warm-ups are dropped, a set with 0 RIR is a failure set, and the
// last N sets of an exercise with an N-dropsets modifier are drop sets.
// Exercises without working sets are left out. The second return value is the
// number of warm-up sets dropped.
func ToSession(a models.AlphaSession, userID int) (models.LoggedSession, int) {
	s := models.LoggedSession{
		UserID:    userID,
		Name:      a.Name,
		Date:      a.Date,
		Units:     models.UnitsKg,
		Source:    Source,
		Exercises: []models.LoggedExercise{},
	}
	warmups := 0
	for _, ex := range a.Exercises {
		var working []models.AlphaSet
		for _, set := range ex.Sets {
			if set.IsWarmup {
				warmups++
				continue
			}
			working = append(working, set)
		}
		if len(working) == 0 {
			continue
		}

		drops := min(ex.DropSets, len(working)-1)
		sets := make([]models.SetRecord, len(working))
		for i, set := range working {
			sets[i] = models.SetRecord{
				Weight: set.WeightKg,
				Reps:   set.Reps,
				Failed: set.RIR == 0,
				Drop:   i >= len(working)-drops,
			}
		}
		s.Exercises = append(s.Exercises, models.LoggedExercise{
			Name: ex.Name,
			Meta: models.ExerciseMeta{
				Category:  Category(ex.Name),
				Equipment: Equipment(ex.Equipment),
				Low:       ex.TargetReps,
				High:      ex.TargetReps + targetSpread,
			},
			Sets: sets,
		})
	}
	return s, warmups
}
