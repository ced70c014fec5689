package progression

import (
	"github.com/meltforce/liftlog/internal/models"
	"github.com/meltforce/liftlog/internal/units"
)

// FromHistory builds a Request from stored history, converting every entry to
// u. A non-nil override replaces the stored programming.
func FromHistory(h *models.ExerciseHistory, override *models.ExerciseMeta, u string) Request {
	req := Request{Exercise: h.Exercise, Units: u}
	switch {
	case override != nil:
		req.Meta = *override
	case h.Meta != nil:
		req.Meta = *h.Meta
	}

	req.History = make([]models.ExerciseHistoryEntry, len(h.Entries))
	for i, e := range h.Entries {
		sets := make([]models.SetRecord, len(e.Sets))
		for j, set := range e.Sets {
			if e.Units != "" {
				set.Weight = units.Convert(set.Weight, e.Units, u)
			}
			sets[j] = set
		}
		req.History[i] = models.ExerciseHistoryEntry{Date: e.Date, Units: u, Sets: sets}
	}
	return req
}
