package models

import "time"

// AlphaSession is one parsed workout from an Alpha Progression export,
// before it is mapped to a LoggedSession.
type AlphaSession struct {
	Name      string
	Date      time.Time
	Duration  string // as exported, e.g. "1:02 hr"
	Exercises []AlphaExercise
}

// AlphaExercise is one numbered exercise block. TargetReps seeds the target
// range on import and DropSets counts the trailing sets marked as drop sets.
type AlphaExercise struct {
	Number     int
	Name       string
	Equipment  string
	TargetReps int
	DropSets   int
	Sets       []AlphaSet
}

// AlphaSet is one row of an exercise block. Warm-up rows are kept here and
// dropped during mapping.
type AlphaSet struct {
	Number           int
	WeightKg         float64
	IsBodyweightPlus bool
	Reps             int
	RIR              float64 // -1 when the export has no RIR column value
	IsWarmup         bool
}
