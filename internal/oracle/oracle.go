// Package oracle is the optional language-model collaborator that may refine
// a deterministic progression suggestion or parse a split the heuristic
// parser could not read. Every caller treats any error as "keep the
// deterministic result".
package oracle

import (
	"context"
	"errors"

	"github.com/meltforce/liftlog/internal/models"
)

var (
	// ErrUnavailable is returned when no oracle is configured.
	ErrUnavailable = errors.New("oracle: unavailable")
	// ErrNoSuggestion is returned when the reply carried no usable numeric value.
	ErrNoSuggestion = errors.New("oracle: no numeric suggestion in reply")
	// ErrRateLimited is returned when the local call budget is exhausted.
	ErrRateLimited = errors.New("oracle: rate limited")
)

// Settings gates whether a component attempts the oracle at all. It is passed
// into each call explicitly.
type Settings struct {
	Enabled bool
}

// RefineRequest is the context handed to the oracle for a progression suggestion.
type RefineRequest struct {
	Exercise string                        `json:"exName"`
	Meta     models.ExerciseMeta           `json:"meta"`
	Units    string                        `json:"units"`
	History  []models.ExerciseHistoryEntry `json:"history"`
	Fallback *float64                      `json:"fallback"`
}

// Refinement is a numeric suggestion produced by the oracle.
type Refinement struct {
	Next      float64
	Rationale string
}

// Refiner may replace a deterministic progression suggestion.
type Refiner interface {
	Refine(ctx context.Context, req RefineRequest) (*Refinement, error)
}

// SplitParser turns free text into a split when the heuristic parser found nothing.
type SplitParser interface {
	ParseSplit(ctx context.Context, text string) (*models.ParsedSplit, error)
}

// Oracle is both capabilities, which is what the networked client provides.
type Oracle interface {
	Refiner
	SplitParser
}

// Unavailable is the oracle used when no credential is configured.
type Unavailable struct{}

// Compile-time check: Unavailable satisfies Oracle.
var _ Oracle = Unavailable{}

func (Unavailable) Refine(context.Context, RefineRequest) (*Refinement, error) {
	return nil, ErrUnavailable
}

func (Unavailable) ParseSplit(context.Context, string) (*models.ParsedSplit, error) {
	return nil, ErrUnavailable
}
