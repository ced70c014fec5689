// Package splitparse turns pasted workout-split text into training days and
// exercises. The heuristic is lenient: lines it does not recognize are
// skipped, and it never fails.
package splitparse

import (
	"context"
	"log/slog"
	"strings"

	"github.com/meltforce/liftlog/internal/models"
	"github.com/meltforce/liftlog/internal/oracle"
)

// bulletMarkers are stripped once from the start of a line.
var bulletMarkers = []string{"•", "-", "*"}

// Lines normalizes line endings and returns the non-empty trimmed lines with
// one leading bullet marker removed.
func Lines(raw string) []string {
	raw = strings.ReplaceAll(raw, "\r\n", "\n")
	raw = strings.ReplaceAll(raw, "\r", "\n")

	var lines []string
	for _, line := range strings.Split(raw, "\n") {
		line = strings.TrimSpace(line)
		for _, b := range bulletMarkers {
			if rest, ok := strings.CutPrefix(line, b); ok {
				line = strings.TrimSpace(rest)
				break
			}
		}
		if line != "" {
			lines = append(lines, line)
		}
	}
	return lines
}

// Parse runs the heuristic pass over raw text.
func Parse(raw string) models.ParsedSplit {
	split := models.EmptySplit()
	var current *models.ParsedDay

	for _, line := range Lines(raw) {
		m, ok := classify(line)
		if !ok {
			continue
		}
		switch m.kind {
		case kindHeading:
			split.Days = append(split.Days, models.ParsedDay{Name: m.day, Exercises: []models.ParsedExercise{}})
			current = &split.Days[len(split.Days)-1]
		case kindExercise:
			if current == nil {
				split.Days = append(split.Days, models.ParsedDay{Name: models.DefaultDayName(1), Exercises: []models.ParsedExercise{}})
				current = &split.Days[len(split.Days)-1]
			}
			current.Exercises = append(current.Exercises, m.exercise)
		}
	}
	return split
}

// classify applies the rules in order and returns the first match.
func classify(line string) (match, bool) {
	for _, r := range rules {
		if m, ok := r.apply(line); ok {
			return m, true
		}
	}
	return match{}, false
}

// Parser runs the heuristic and falls back to an oracle when it finds nothing.
type Parser struct {
	oracle oracle.SplitParser
	log    *slog.Logger
}

// NewParser creates a Parser. A nil oracle behaves like oracle.Unavailable.
func NewParser(o oracle.SplitParser, log *slog.Logger) *Parser {
	if o == nil {
		o = oracle.Unavailable{}
	}
	return &Parser{oracle: o, log: log}
}

// ParseWithFallback returns the heuristic split, or the oracle's split when
// the heuristic found no days and settings enable the oracle. Any oracle
// failure yields an empty split.
func (p *Parser) ParseWithFallback(ctx context.Context, raw string, settings oracle.Settings) models.ParsedSplit {
	split := Parse(raw)
	if len(split.Days) > 0 || !settings.Enabled || strings.TrimSpace(raw) == "" {
		return split
	}

	parsed, err := p.oracle.ParseSplit(ctx, raw)
	if err != nil || parsed == nil {
		p.log.Warn("oracle split parse failed", "error", err)
		return models.EmptySplit()
	}
	parsed.Normalize()
	return *parsed
}
