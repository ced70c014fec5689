package progression

import (
	"context"
	"errors"
	"log/slog"

	"github.com/meltforce/liftlog/internal/models"
	"github.com/meltforce/liftlog/internal/oracle"
)

// Request is the input of a suggestion: exercise name and programming, past
// sessions most recent first, and the weight units.
type Request struct {
	Exercise string                        `json:"exName"`
	Meta     models.ExerciseMeta           `json:"meta"`
	History  []models.ExerciseHistoryEntry `json:"history"`
	Units    string                        `json:"units"`
}

// Advisor produces progression suggestions, optionally refined by an oracle.
type Advisor struct {
	oracle oracle.Refiner
	log    *slog.Logger
}

// NewAdvisor creates an Advisor. A nil refiner behaves like oracle.Unavailable.
func NewAdvisor(refiner oracle.Refiner, log *slog.Logger) *Advisor {
	if refiner == nil {
		refiner = oracle.Unavailable{}
	}
	return &Advisor{oracle: refiner, log: log}
}

// Suggest returns the next working weight. The heuristic result is computed
// first; when settings enable the oracle and history is non-empty, a numeric
// oracle reply replaces it. Oracle errors are logged and otherwise ignored.
func (a *Advisor) Suggest(ctx context.Context, req Request, settings oracle.Settings) models.ProgressionSuggestion {
	next, err := Heuristic(req.Meta, req.History, req.Units)
	if errors.Is(err, ErrNoHistory) {
		return models.ProgressionSuggestion{OK: true, Rationale: models.RationaleFallback}
	}
	if err != nil {
		a.log.Debug("progression input rejected", "exercise", req.Exercise, "error", err)
		return models.ProgressionSuggestion{OK: false, Rationale: models.RationaleError}
	}

	result := models.ProgressionSuggestion{
		OK:        true,
		Next:      &next,
		Rationale: models.RationaleFallback,
	}
	if top, ok := TopSet(req.History[0].Sets); ok {
		if e1rm := Estimate1RM(top.Weight, top.Reps); e1rm > 0 {
			result.E1RM = &e1rm
		}
	}

	if !settings.Enabled {
		return result
	}

	fallback := next
	ref, err := a.oracle.Refine(ctx, oracle.RefineRequest{
		Exercise: req.Exercise,
		Meta:     req.Meta,
		Units:    req.Units,
		History:  req.History,
		Fallback: &fallback,
	})
	if err != nil {
		a.log.Warn("oracle refine failed, keeping fallback", "exercise", req.Exercise, "error", err)
		return result
	}

	refined := ref.Next
	result.Next = &refined
	result.Rationale = models.RationaleAI
	result.Note = ref.Rationale
	return result
}
