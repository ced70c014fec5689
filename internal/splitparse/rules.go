package splitparse

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/meltforce/liftlog/internal/models"
)

var (
	// headingRe matches day headings: "Push A", "LEGS", "Day 3 - arms", "Monday",
	// "Thu". Abbreviated weekdays need a word boundary so "Sunflower" is not one.
	headingRe = regexp.MustCompile(`(?i)^(?:push|pull|legs|upper|lower|rest|day\s*\d|monday|tuesday|wednesday|thursday|friday|saturday|sunday|(?:mon|tue|tues|wed|thu|thur|thurs|fri|sat|sun)\b)`)

	// exerciseRe matches: "Bench Press — 3x8-10", "Squat: 4 × 5 to 8", "Curl - 3X12".
	exerciseRe = regexp.MustCompile(`(?i)^(.+?)\s*(?:—|–|-|:)\s*(\d+)\s*(?:x|×)\s*(\d+)(?:\s*(?:-|–|to)\s*(\d+))?\s*$`)
)

// lineKind is what a rule recognized.
type lineKind int

const (
	kindHeading lineKind = iota + 1
	kindExercise
)

// match is the extracted content of a recognized line.
type match struct {
	kind     lineKind
	day      string
	exercise models.ParsedExercise
}

// rule is a pure predicate+extractor over one preprocessed line.
type rule struct {
	name  string
	apply func(line string) (match, bool)
}

// rules are evaluated top to bottom; the first match wins. The exercise rule
// runs first so "Legs Press - 3x10" or "Pull-ups: 3x8" stay exercises even
// though they start with a heading keyword.
var rules = []rule{
	{name: "exercise", apply: matchExercise},
	{name: "heading", apply: matchHeading},
}

func matchHeading(line string) (match, bool) {
	if !headingRe.MatchString(line) {
		return match{}, false
	}
	return match{kind: kindHeading, day: strings.ToUpper(line)}, true
}

func matchExercise(line string) (match, bool) {
	m := exerciseRe.FindStringSubmatch(line)
	if m == nil {
		return match{}, false
	}
	name := strings.TrimSpace(m[1])
	if name == "" {
		return match{}, false
	}
	sets, err1 := strconv.Atoi(m[2])
	low, err2 := strconv.Atoi(m[3])
	if err1 != nil || err2 != nil {
		return match{}, false
	}
	high := low
	if m[4] != "" {
		if h, err := strconv.Atoi(m[4]); err == nil {
			high = h
		}
	}
	if high < low {
		low, high = high, low
	}
	return match{
		kind:     kindExercise,
		exercise: models.ParsedExercise{Name: name, Sets: sets, Low: low, High: high},
	}, true
}
