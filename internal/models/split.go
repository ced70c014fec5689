package models

import (
	"strconv"
	"time"
)

// ParsedExercise is one programmed exercise of a training day.
type ParsedExercise struct {
	Name string `json:"name"`
	Sets int    `json:"sets"`
	Low  int    `json:"low"`
	High int    `json:"high"`
}

// ParsedDay is a named training day.
type ParsedDay struct {
	Name      string           `json:"name"`
	Exercises []ParsedExercise `json:"exercises"`
}

// ParsedSplit is an ordered list of training days, in source order.
type ParsedSplit struct {
	Days []ParsedDay `json:"days"`
}

// EmptySplit returns a split that encodes as {"days":[]}.
func EmptySplit() ParsedSplit {
	return ParsedSplit{Days: []ParsedDay{}}
}

// Normalize fixes up a split that came from outside the heuristic parser:
// nil slices become empty, blank day names get a positional name, and every
// exercise ends up with high >= low.
func (p *ParsedSplit) Normalize() {
	if p.Days == nil {
		p.Days = []ParsedDay{}
	}
	for i := range p.Days {
		d := &p.Days[i]
		if d.Name == "" {
			d.Name = DefaultDayName(i + 1)
		}
		if d.Exercises == nil {
			d.Exercises = []ParsedExercise{}
		}
		for j := range d.Exercises {
			ex := &d.Exercises[j]
			if ex.High == 0 {
				ex.High = ex.Low
			}
			if ex.High < ex.Low {
				ex.Low, ex.High = ex.High, ex.Low
			}
		}
	}
}

// DefaultDayName is the name given to a day with no heading.
func DefaultDayName(n int) string {
	return "DAY " + strconv.Itoa(n)
}

// SavedSplit is the split a user keeps on the server.
type SavedSplit struct {
	Text      string      `json:"text"`
	Split     ParsedSplit `json:"split"`
	UpdatedAt time.Time   `json:"updated_at"`
}
