package splitparse

import (
	"context"
	"errors"
	"log/slog"
	"reflect"
	"testing"

	"github.com/meltforce/liftlog/internal/models"
	"github.com/meltforce/liftlog/internal/oracle"
)

// TestParseHeadingAndExercises verifies a heading followed by exercise lines
// with different separators and rep formats.
func TestParseHeadingAndExercises(t *testing.T) {
	text := "PUSH A\nBench Press — 3x8-10\nIncline DB Press - 3x10\n"

	split := Parse(text)
	want := []models.ParsedDay{{
		Name: "PUSH A",
		Exercises: []models.ParsedExercise{
			{Name: "Bench Press", Sets: 3, Low: 8, High: 10},
			{Name: "Incline DB Press", Sets: 3, Low: 10, High: 10},
		},
	}}
	if !reflect.DeepEqual(split.Days, want) {
		t.Errorf("days = %+v\nwant %+v", split.Days, want)
	}
}

// TestParseNoHeading verifies an exercise before any heading lands in "DAY 1".
func TestParseNoHeading(t *testing.T) {
	split := Parse("Squat - 4x5-8")
	if len(split.Days) != 1 {
		t.Fatalf("days = %d, want 1", len(split.Days))
	}
	day := split.Days[0]
	if day.Name != "DAY 1" {
		t.Errorf("name = %q, want DAY 1", day.Name)
	}
	want := []models.ParsedExercise{{Name: "Squat", Sets: 4, Low: 5, High: 8}}
	if !reflect.DeepEqual(day.Exercises, want) {
		t.Errorf("exercises = %+v, want %+v", day.Exercises, want)
	}
}

// TestParseFullSplit covers CRLF input, bullets, weekday headings, empty days,
// "to" ranges, the × sign and skipped notes.
func TestParseFullSplit(t *testing.T) {
	text := "My 4 day split\r\n" +
		"Monday - Upper\r\n" +
		"• Bench Press: 4 × 6 to 8\r\n" +
		"* Row – 3X10-12\r\n" +
		"\r\n" +
		"notes: go heavy\r\n" +
		"Tuesday\r\n" +
		"- Squat — 5x5\r\n" +
		"- Leg Curl : 3x12\r\n" +
		"rest\r\n" +
		"Day 4\r"

	split := Parse(text)
	var names []string
	for _, d := range split.Days {
		names = append(names, d.Name)
	}
	wantNames := []string{"MONDAY - UPPER", "TUESDAY", "REST", "DAY 4"}
	if !reflect.DeepEqual(names, wantNames) {
		t.Fatalf("day names = %v, want %v", names, wantNames)
	}

	wantMon := []models.ParsedExercise{
		{Name: "Bench Press", Sets: 4, Low: 6, High: 8},
		{Name: "Row", Sets: 3, Low: 10, High: 12},
	}
	if !reflect.DeepEqual(split.Days[0].Exercises, wantMon) {
		t.Errorf("monday = %+v, want %+v", split.Days[0].Exercises, wantMon)
	}
	wantTue := []models.ParsedExercise{
		{Name: "Squat", Sets: 5, Low: 5, High: 5},
		{Name: "Leg Curl", Sets: 3, Low: 12, High: 12},
	}
	if !reflect.DeepEqual(split.Days[1].Exercises, wantTue) {
		t.Errorf("tuesday = %+v, want %+v", split.Days[1].Exercises, wantTue)
	}
	if len(split.Days[2].Exercises) != 0 || split.Days[2].Exercises == nil {
		t.Errorf("rest day exercises = %#v, want empty non-nil", split.Days[2].Exercises)
	}
}

// TestParseNothing verifies unrecognizable text yields an empty, non-nil day list.
func TestParseNothing(t *testing.T) {
	for _, text := range []string{"", "   \n\n", "just do some curls\nand eat"} {
		split := Parse(text)
		if split.Days == nil || len(split.Days) != 0 {
			t.Errorf("Parse(%q).Days = %#v, want empty", text, split.Days)
		}
	}
}

func TestMatchHeading(t *testing.T) {
	tests := []struct {
		line string
		want string
		ok   bool
	}{
		{"Push A", "PUSH A", true},
		{"pull", "PULL", true},
		{"Legs (quad focus)", "LEGS (QUAD FOCUS)", true},
		{"Upper 1", "UPPER 1", true},
		{"lower", "LOWER", true},
		{"Rest day", "REST DAY", true},
		{"Day 2", "DAY 2", true},
		{"day3: arms", "DAY3: ARMS", true},
		{"Wednesday", "WEDNESDAY", true},
		{"Thu - pull", "THU - PULL", true},
		{"Day off", "", false},
		{"Sunflower seeds", "", false},
		{"Bench Press", "", false},
	}
	for _, tt := range tests {
		m, ok := matchHeading(tt.line)
		if ok != tt.ok {
			t.Errorf("matchHeading(%q) ok = %v, want %v", tt.line, ok, tt.ok)
			continue
		}
		if ok && m.day != tt.want {
			t.Errorf("matchHeading(%q) = %q, want %q", tt.line, m.day, tt.want)
		}
	}
}

func TestMatchExercise(t *testing.T) {
	tests := []struct {
		line string
		want models.ParsedExercise
		ok   bool
	}{
		{"Bench Press — 3x8-10", models.ParsedExercise{Name: "Bench Press", Sets: 3, Low: 8, High: 10}, true},
		{"Incline DB Press - 3x10", models.ParsedExercise{Name: "Incline DB Press", Sets: 3, Low: 10, High: 10}, true},
		{"Squat: 4 X 5 to 8", models.ParsedExercise{Name: "Squat", Sets: 4, Low: 5, High: 8}, true},
		{"OHP – 3×6–8", models.ParsedExercise{Name: "OHP", Sets: 3, Low: 6, High: 8}, true},
		{"T-Bar Row - 3x10", models.ParsedExercise{Name: "T-Bar Row", Sets: 3, Low: 10, High: 10}, true},
		{"Pull-ups: 3x8", models.ParsedExercise{Name: "Pull-ups", Sets: 3, Low: 8, High: 8}, true},
		{"Curl - 3x12-8", models.ParsedExercise{Name: "Curl", Sets: 3, Low: 8, High: 12}, true},
		{"Bench Press 3x8", models.ParsedExercise{}, false},
		{"Bench Press - three sets", models.ParsedExercise{}, false},
		{"- 3x8", models.ParsedExercise{}, false},
	}
	for _, tt := range tests {
		m, ok := matchExercise(tt.line)
		if ok != tt.ok {
			t.Errorf("matchExercise(%q) ok = %v, want %v", tt.line, ok, tt.ok)
			continue
		}
		if ok && m.exercise != tt.want {
			t.Errorf("matchExercise(%q) = %+v, want %+v", tt.line, m.exercise, tt.want)
		}
	}
}

// TestExerciseRuleBeforeHeading verifies exercise-shaped lines that start with
// a heading keyword are exercises.
func TestExerciseRuleBeforeHeading(t *testing.T) {
	split := Parse("LEGS\nLegs Press - 3x10\nPull-ups: 3x8")
	if len(split.Days) != 1 || len(split.Days[0].Exercises) != 2 {
		t.Fatalf("got %+v, want one day with two exercises", split.Days)
	}
}

func TestLines(t *testing.T) {
	got := Lines("  • one \r\n\r\n- two\r* three\n-- four\n   ")
	want := []string{"one", "two", "three", "- four"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Lines = %q, want %q", got, want)
	}
}

type stubSplitOracle struct {
	split *models.ParsedSplit
	err   error
	calls int
}

func (s *stubSplitOracle) ParseSplit(context.Context, string) (*models.ParsedSplit, error) {
	s.calls++
	return s.split, s.err
}

// TestParseWithFallbackSkipsOracle verifies the oracle is not consulted when
// the heuristic found days or when it is disabled.
func TestParseWithFallbackSkipsOracle(t *testing.T) {
	stub := &stubSplitOracle{}
	p := NewParser(stub, slog.Default())

	split := p.ParseWithFallback(context.Background(), "Squat - 4x5", oracle.Settings{Enabled: true})
	if len(split.Days) != 1 {
		t.Errorf("days = %d, want 1", len(split.Days))
	}
	split = p.ParseWithFallback(context.Background(), "squat heavy on mondays", oracle.Settings{})
	if len(split.Days) != 0 {
		t.Errorf("days = %d, want 0", len(split.Days))
	}
	if stub.calls != 0 {
		t.Errorf("oracle called %d times, want 0", stub.calls)
	}
}

// TestParseWithFallbackUsesOracle verifies the oracle result is returned when
// the heuristic finds nothing.
func TestParseWithFallbackUsesOracle(t *testing.T) {
	stub := &stubSplitOracle{split: &models.ParsedSplit{Days: []models.ParsedDay{{
		Name:      "FULL BODY",
		Exercises: []models.ParsedExercise{{Name: "Squat", Sets: 3, Low: 5, High: 5}},
	}}}}
	p := NewParser(stub, slog.Default())

	split := p.ParseWithFallback(context.Background(), "squat three fives", oracle.Settings{Enabled: true})
	if stub.calls != 1 {
		t.Fatalf("oracle called %d times, want 1", stub.calls)
	}
	if len(split.Days) != 1 || split.Days[0].Name != "FULL BODY" {
		t.Errorf("days = %+v, want the oracle's split", split.Days)
	}
}

// TestParseWithFallbackOracleFailure verifies oracle failure degrades to no days.
func TestParseWithFallbackOracleFailure(t *testing.T) {
	stub := &stubSplitOracle{err: errors.New("reply is not JSON")}
	split := NewParser(stub, slog.Default()).ParseWithFallback(context.Background(), "squat three fives", oracle.Settings{Enabled: true})
	if split.Days == nil || len(split.Days) != 0 {
		t.Errorf("days = %#v, want empty", split.Days)
	}

	split = NewParser(nil, slog.Default()).ParseWithFallback(context.Background(), "squat three fives", oracle.Settings{Enabled: true})
	if len(split.Days) != 0 {
		t.Errorf("nil oracle days = %d, want 0", len(split.Days))
	}
}
