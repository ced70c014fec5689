package progression

import (
	"context"
	"errors"
	"log/slog"
	"testing"

	"github.com/meltforce/liftlog/internal/models"
	"github.com/meltforce/liftlog/internal/oracle"
)

// stubRefiner returns a fixed refinement or error and counts calls.
type stubRefiner struct {
	next  float64
	err   error
	calls int
	got   oracle.RefineRequest
}

func (s *stubRefiner) Refine(_ context.Context, req oracle.RefineRequest) (*oracle.Refinement, error) {
	s.calls++
	s.got = req
	if s.err != nil {
		return nil, s.err
	}
	return &oracle.Refinement{Next: s.next, Rationale: "stub"}, nil
}

func benchRequest() Request {
	return Request{
		Exercise: "Bench Press",
		Meta:     benchMeta,
		History:  history(sets(135, 8, 135, 8, 135, 8)),
		Units:    models.UnitsLb,
	}
}

var enabled = oracle.Settings{Enabled: true}

// TestSuggestEmptyHistory verifies empty history yields a null fallback and
// never consults the oracle.
func TestSuggestEmptyHistory(t *testing.T) {
	stub := &stubRefiner{next: 999}
	a := NewAdvisor(stub, slog.Default())

	req := benchRequest()
	req.History = nil
	got := a.Suggest(context.Background(), req, enabled)

	if got.Next != nil {
		t.Errorf("next = %v, want nil", *got.Next)
	}
	if got.Rationale != models.RationaleFallback {
		t.Errorf("rationale = %q, want fallback", got.Rationale)
	}
	if !got.OK {
		t.Error("ok = false, want true")
	}
	if stub.calls != 0 {
		t.Errorf("oracle called %d times for empty history", stub.calls)
	}
}

// TestSuggestFallbackOnly verifies the heuristic result when the oracle is disabled.
func TestSuggestFallbackOnly(t *testing.T) {
	stub := &stubRefiner{next: 999}
	got := NewAdvisor(stub, slog.Default()).Suggest(context.Background(), benchRequest(), oracle.Settings{})

	if got.Next == nil || *got.Next != 140 {
		t.Fatalf("next = %v, want 140", got.Next)
	}
	if got.Rationale != models.RationaleFallback {
		t.Errorf("rationale = %q, want fallback", got.Rationale)
	}
	if stub.calls != 0 {
		t.Errorf("oracle called %d times while disabled", stub.calls)
	}
	if got.E1RM == nil || *got.E1RM != 171 {
		t.Errorf("e1rm = %v, want 171", got.E1RM)
	}
}

// TestSuggestOracleOverride verifies a numeric oracle reply replaces the
// heuristic value regardless of what the heuristic computed.
func TestSuggestOracleOverride(t *testing.T) {
	stub := &stubRefiner{next: 135}
	got := NewAdvisor(stub, slog.Default()).Suggest(context.Background(), benchRequest(), enabled)

	if got.Next == nil || *got.Next != 135 {
		t.Fatalf("next = %v, want 135", got.Next)
	}
	if got.Rationale != models.RationaleAI {
		t.Errorf("rationale = %q, want ai", got.Rationale)
	}
	if got.Note != "stub" {
		t.Errorf("note = %q, want stub", got.Note)
	}
	if stub.got.Fallback == nil || *stub.got.Fallback != 140 {
		t.Errorf("oracle fallback context = %v, want 140", stub.got.Fallback)
	}
	if stub.got.Exercise != "Bench Press" || len(stub.got.History) != 1 {
		t.Errorf("oracle context = %+v", stub.got)
	}
}

// TestSuggestOracleFailure verifies oracle errors leave the fallback intact.
func TestSuggestOracleFailure(t *testing.T) {
	for _, err := range []error{
		context.DeadlineExceeded,
		oracle.ErrNoSuggestion,
		oracle.ErrRateLimited,
		errors.New("connection refused"),
	} {
		stub := &stubRefiner{err: err}
		got := NewAdvisor(stub, slog.Default()).Suggest(context.Background(), benchRequest(), enabled)

		if got.Next == nil || *got.Next != 140 {
			t.Errorf("%v: next = %v, want 140", err, got.Next)
		}
		if got.Rationale != models.RationaleFallback {
			t.Errorf("%v: rationale = %q, want fallback", err, got.Rationale)
		}
		if stub.calls != 1 {
			t.Errorf("%v: oracle called %d times, want exactly 1", err, stub.calls)
		}
	}
}

// TestSuggestMalformed verifies malformed input yields an error rationale
// without an oracle call.
func TestSuggestMalformed(t *testing.T) {
	squat := models.ExerciseMeta{Category: models.CategoryLowerCompound, Equipment: models.EquipBarbell, Low: 5, High: 8}
	tests := []struct {
		name   string
		mutate func(*Request)
	}{
		{"unknown units", func(r *Request) { r.Units = "stone" }},
		{"negative weight", func(r *Request) { r.Meta, r.History = squat, history(sets(-100, 10)) }},
		{"zero reps", func(r *Request) { r.Meta, r.History = squat, history(sets(100, 0)) }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			stub := &stubRefiner{next: 100}
			req := benchRequest()
			tt.mutate(&req)
			got := NewAdvisor(stub, slog.Default()).Suggest(context.Background(), req, enabled)

			if got.Next != nil || got.Rationale != models.RationaleError || got.OK {
				t.Errorf("got %+v, want {ok:false next:nil rationale:error}", got)
			}
			if stub.calls != 0 {
				t.Errorf("oracle called %d times for malformed input", stub.calls)
			}
		})
	}
}

// TestNewAdvisorNilRefiner verifies a nil refiner is treated as unavailable.
func TestNewAdvisorNilRefiner(t *testing.T) {
	got := NewAdvisor(nil, slog.Default()).Suggest(context.Background(), benchRequest(), enabled)
	if got.Next == nil || *got.Next != 140 || got.Rationale != models.RationaleFallback {
		t.Errorf("got %+v, want fallback 140", got)
	}
}
