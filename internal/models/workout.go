package models

import "time"

// Weight units accepted by the API.
const (
	UnitsLb = "lb"
	UnitsKg = "kg"
)

// Exercise categories. The category selects the base progression step.
const (
	CategoryLowerCompound = "lower_comp"
	CategoryUpperCompound = "upper_comp"
	CategoryOther         = "other"
)

// Equipment types. The equipment selects the rounding grid.
const (
	EquipBarbell  = "barbell"
	EquipDumbbell = "dumbbell"
	EquipOther    = "other"
)

// SetRecord is one completed working set.
type SetRecord struct {
	Weight float64 `json:"w"`
	Reps   int     `json:"r"`
	Failed bool    `json:"failed"`
	Drop   bool    `json:"drop,omitempty"`
}

// ExerciseMeta describes how an exercise is programmed.
type ExerciseMeta struct {
	Category  string `json:"cat"`
	Equipment string `json:"equip"`
	Low       int    `json:"low"`
	High      int    `json:"high"`
}

// ExerciseHistoryEntry holds one exercise's sets from one past session, in performed order.
// Units is set on stored history, where sessions may have been logged in different units.
type ExerciseHistoryEntry struct {
	Date  *time.Time  `json:"date,omitempty"`
	Units string      `json:"units,omitempty"`
	Sets  []SetRecord `json:"sets"`
}

// ExerciseHistory is the stored history of one exercise, most recent session first.
type ExerciseHistory struct {
	Exercise string                 `json:"exercise"`
	Meta     *ExerciseMeta          `json:"meta,omitempty"`
	Entries  []ExerciseHistoryEntry `json:"history"`
}

// Suggestion rationales.
const (
	RationaleFallback = "fallback"
	RationaleAI       = "ai"
	RationaleError    = "error"
)

// ProgressionSuggestion is the suggested next working weight for an exercise.
// Next is nil when no suggestion could be made.
type ProgressionSuggestion struct {
	OK        bool     `json:"ok"`
	Next      *float64 `json:"next"`
	Rationale string   `json:"rationale"`
	Note      string   `json:"note,omitempty"`
	E1RM      *float64 `json:"e1rm,omitempty"`
}

// WarmupSet is one ramp-up set before the working weight.
type WarmupSet struct {
	Weight float64 `json:"w"`
	Reps   int     `json:"r"`
}

// LoggedSession is a persisted workout session.
type LoggedSession struct {
	ID        string           `json:"id"`
	UserID    int              `json:"-"`
	Name      string           `json:"name"`
	Date      time.Time        `json:"date"`
	Units     string           `json:"units"`
	Source    string           `json:"source"`
	Exercises []LoggedExercise `json:"exercises"`
}

// LoggedExercise is one exercise within a logged session.
type LoggedExercise struct {
	Name string       `json:"name"`
	Meta ExerciseMeta `json:"meta"`
	Sets []SetRecord  `json:"sets"`
}

// WorkoutSetRow is a row for the workout_sets table.
type WorkoutSetRow struct {
	SessionID      string
	UserID         int
	ExerciseNumber int
	ExerciseName   string
	Category       string
	Equipment      string
	TargetLow      int
	TargetHigh     int
	SetNumber      int
	Weight         float64
	Reps           int
	Failed         bool
	Drop           bool
}

// Rows flattens a session into workout_sets rows, preserving exercise and set order.
func (s LoggedSession) Rows() []WorkoutSetRow {
	var rows []WorkoutSetRow
	for i, ex := range s.Exercises {
		for j, set := range ex.Sets {
			rows = append(rows, WorkoutSetRow{
				SessionID:      s.ID,
				UserID:         s.UserID,
				ExerciseNumber: i + 1,
				ExerciseName:   ex.Name,
				Category:       ex.Meta.Category,
				Equipment:      ex.Meta.Equipment,
				TargetLow:      ex.Meta.Low,
				TargetHigh:     ex.Meta.High,
				SetNumber:      j + 1,
				Weight:         set.Weight,
				Reps:           set.Reps,
				Failed:         set.Failed,
				Drop:           set.Drop,
			})
		}
	}
	return rows
}
