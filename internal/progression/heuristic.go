// Package progression computes the next working weight for an exercise from
// its most recent session, plus the deterministic warm-up and rest helpers.
package progression

import (
	"errors"
	"math"

	"github.com/meltforce/liftlog/internal/models"
	"github.com/meltforce/liftlog/internal/units"
)

var (
	// ErrNoHistory means there is nothing to progress from.
	ErrNoHistory = errors.New("no history")
	// ErrMalformed means the request cannot be evaluated.
	ErrMalformed = errors.New("malformed progression input")
)

// Base percentage steps by category.
const (
	stepLowerCompound = 0.035
	stepUpperCompound = 0.0225
	stepIsolation     = 0.015
)

// BaseStep returns the percentage step for a category. Unknown categories are
// treated as isolation movements.
func BaseStep(category string) float64 {
	switch category {
	case models.CategoryLowerCompound:
		return stepLowerCompound
	case models.CategoryUpperCompound:
		return stepUpperCompound
	default:
		return stepIsolation
	}
}

// TopSet returns the heaviest set, ties broken by more reps. ok is false for
// an empty slice.
func TopSet(sets []models.SetRecord) (top models.SetRecord, ok bool) {
	for i, s := range sets {
		if i == 0 || s.Weight > top.Weight || (s.Weight == top.Weight && s.Reps > top.Reps) {
			top = s
		}
	}
	return top, len(sets) > 0
}

// FailedRate is the fraction of sets taken to failure; 0 for no sets.
func FailedRate(sets []models.SetRecord) float64 {
	if len(sets) == 0 {
		return 0
	}
	failed := 0
	for _, s := range sets {
		if s.Failed {
			failed++
		}
	}
	return float64(failed) / float64(len(sets))
}

// multiplier scales the increment: half after a mostly-failed session, a
// quarter more after a clean one.
func multiplier(failedRate float64) float64 {
	switch {
	case failedRate > 0.5:
		return 0.5
	case failedRate == 0:
		return 1.25
	default:
		return 1.0
	}
}

// Heuristic returns the deterministic next weight for the most recent entry
// of history (most recent first). The result always sits on the
// equipment/unit rounding grid.
func Heuristic(meta models.ExerciseMeta, history []models.ExerciseHistoryEntry, u string) (float64, error) {
	if len(history) == 0 {
		return 0, ErrNoHistory
	}
	meta, u, err := normalize(meta, u)
	if err != nil {
		return 0, err
	}

	sets := history[0].Sets
	top, ok := TopSet(sets)
	if !ok {
		return 0, errors.Join(ErrMalformed, errors.New("most recent entry has no sets"))
	}
	for _, s := range sets {
		if math.IsNaN(s.Weight) || math.IsInf(s.Weight, 0) || s.Weight < 0 || s.Reps <= 0 {
			return 0, errors.Join(ErrMalformed, errors.New("invalid set"))
		}
	}

	increment := math.Max(top.Weight, 0) * BaseStep(meta.Category) * multiplier(FailedRate(sets))
	step := units.Step(meta.Equipment, u)

	switch {
	case top.Reps >= meta.High:
		return units.Round(top.Weight+increment, step), nil
	case top.Reps < meta.Low:
		return units.Round(math.Max(0, top.Weight-increment), step), nil
	default:
		// Hold, still snapped to the grid.
		return units.Round(top.Weight, step), nil
	}
}

// normalize defaults empty units to lb and a missing high bound to low.
func normalize(meta models.ExerciseMeta, u string) (models.ExerciseMeta, string, error) {
	if u == "" {
		u = models.UnitsLb
	}
	if !units.Valid(u) {
		return meta, u, errors.Join(ErrMalformed, errors.New("unknown units "+u))
	}
	if meta.High == 0 {
		meta.High = meta.Low
	}
	if meta.Low <= 0 || meta.High < meta.Low {
		return meta, u, errors.Join(ErrMalformed, errors.New("invalid rep range"))
	}
	return meta, u, nil
}

// Estimate1RM estimates a one-rep max with the Epley formula.
func Estimate1RM(weight float64, reps int) float64 {
	if weight <= 0 || reps <= 0 {
		return 0
	}
	if reps == 1 {
		return weight
	}
	return math.Round(weight*(1+float64(reps)/30)*10) / 10
}
