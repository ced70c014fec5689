package oracle

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/meltforce/liftlog/internal/models"
)

// newMessagesServer fakes the Messages API, replying with text as the
// assistant's only content block. Every request body is passed to inspect.
func newMessagesServer(t *testing.T, status int, text string, inspect func(body map[string]any)) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !strings.HasSuffix(r.URL.Path, "/v1/messages") {
			t.Errorf("unexpected request path: %s", r.URL.Path)
			http.NotFound(w, r)
			return
		}
		if inspect != nil {
			raw, _ := io.ReadAll(r.Body)
			var body map[string]any
			assert.NoError(t, json.Unmarshal(raw, &body))
			inspect(body)
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		if status != http.StatusOK {
			_, _ = w.Write([]byte(`{"type":"error","error":{"type":"api_error","message":"boom"}}`))
			return
		}
		_ = json.NewEncoder(w).Encode(map[string]any{
			"id":            "msg_test",
			"type":          "message",
			"role":          "assistant",
			"model":         DefaultModel,
			"content":       []map[string]any{{"type": "text", "text": text}},
			"stop_reason":   "end_turn",
			"stop_sequence": nil,
			"usage":         map[string]any{"input_tokens": 12, "output_tokens": 7},
		})
	}))
}

func testOracle(url string) *Anthropic {
	return NewAnthropic(Config{APIKey: "test-key", BaseURL: url, Timeout: 5 * time.Second}, slog.Default())
}

func refineRequest() RefineRequest {
	fallback := 140.0
	return RefineRequest{
		Exercise: "Bench Press",
		Meta:     models.ExerciseMeta{Category: models.CategoryUpperCompound, Equipment: models.EquipBarbell, Low: 6, High: 8},
		Units:    models.UnitsLb,
		History:  []models.ExerciseHistoryEntry{{Sets: []models.SetRecord{{Weight: 135, Reps: 8}}}},
		Fallback: &fallback,
	}
}

// TestRefineNumeric verifies a plain JSON reply becomes a refinement and that
// the prompt carries the exercise and the fallback value.
func TestRefineNumeric(t *testing.T) {
	ts := newMessagesServer(t, http.StatusOK, `{"next": 135, "rationale": "hold"}`, func(body map[string]any) {
		assert.Equal(t, DefaultModel, body["model"])
		msgs, _ := json.Marshal(body["messages"])
		assert.Contains(t, string(msgs), "Bench Press")
		assert.Contains(t, string(msgs), "fallback")
	})
	defer ts.Close()

	got, err := testOracle(ts.URL).Refine(context.Background(), refineRequest())
	require.NoError(t, err)
	assert.Equal(t, 135.0, got.Next)
	assert.Equal(t, "hold", got.Rationale)
}

// TestRefineFencedReply verifies replies wrapped in prose and code fences are accepted.
func TestRefineFencedReply(t *testing.T) {
	reply := "Here you go:\n```json\n{\"next\": 142.5, \"rationale\": \"clean session\"}\n```"
	ts := newMessagesServer(t, http.StatusOK, reply, nil)
	defer ts.Close()

	got, err := testOracle(ts.URL).Refine(context.Background(), refineRequest())
	require.NoError(t, err)
	assert.Equal(t, 142.5, got.Next)
}

// TestRefineNonNumeric verifies a missing or non-numeric next is rejected.
func TestRefineNonNumeric(t *testing.T) {
	for _, reply := range []string{
		`{"next": "more", "rationale": "?"}`,
		`{"rationale": "no idea"}`,
		`{"next": null}`,
		`{"next": -5}`,
	} {
		ts := newMessagesServer(t, http.StatusOK, reply, nil)
		_, err := testOracle(ts.URL).Refine(context.Background(), refineRequest())
		assert.ErrorIs(t, err, ErrNoSuggestion, "reply %s", reply)
		ts.Close()
	}
}

// TestRefineNotJSON verifies prose-only replies fail instead of guessing.
func TestRefineNotJSON(t *testing.T) {
	ts := newMessagesServer(t, http.StatusOK, "I would add five pounds.", nil)
	defer ts.Close()

	_, err := testOracle(ts.URL).Refine(context.Background(), refineRequest())
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrNoSuggestion)
}

// TestRefineServerError verifies a non-2xx reply is a single failed attempt.
func TestRefineServerError(t *testing.T) {
	calls := 0
	ts := newMessagesServer(t, http.StatusInternalServerError, "", func(map[string]any) { calls++ })
	defer ts.Close()

	_, err := testOracle(ts.URL).Refine(context.Background(), refineRequest())
	require.Error(t, err)
	assert.Equal(t, 1, calls, "oracle must not retry")
}

// TestParseSplit verifies the split reply is decoded and normalized.
func TestParseSplit(t *testing.T) {
	reply := `{"days":[{"name":"PUSH","exercises":[{"name":"Bench","sets":3,"low":8}]},{"name":"","exercises":null}]}`
	ts := newMessagesServer(t, http.StatusOK, reply, nil)
	defer ts.Close()

	split, err := testOracle(ts.URL).ParseSplit(context.Background(), "push day: bench three sets of eight")
	require.NoError(t, err)
	require.Len(t, split.Days, 2)
	assert.Equal(t, "PUSH", split.Days[0].Name)
	assert.Equal(t, models.ParsedExercise{Name: "Bench", Sets: 3, Low: 8, High: 8}, split.Days[0].Exercises[0])
	assert.Equal(t, "DAY 2", split.Days[1].Name)
	assert.NotNil(t, split.Days[1].Exercises)
}

// TestParseSplitGarbage verifies a non-JSON reply is an error.
func TestParseSplitGarbage(t *testing.T) {
	ts := newMessagesServer(t, http.StatusOK, "sorry, I can't read that", nil)
	defer ts.Close()

	_, err := testOracle(ts.URL).ParseSplit(context.Background(), "???")
	assert.Error(t, err)
}

// TestNewWithoutKey verifies a missing credential yields the unavailable oracle.
func TestNewWithoutKey(t *testing.T) {
	o := New(Config{}, slog.Default())
	_, err := o.Refine(context.Background(), refineRequest())
	assert.ErrorIs(t, err, ErrUnavailable)
	_, err = o.ParseSplit(context.Background(), "x")
	assert.ErrorIs(t, err, ErrUnavailable)
}
