package mcp

import (
	"context"
	"time"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/meltforce/liftlog/internal/models"
	"github.com/meltforce/liftlog/internal/progression"
	"github.com/meltforce/liftlog/internal/units"
)

// defaultTimeRange returns start/end defaulting to the last 7 days.
func defaultTimeRange(startStr, endStr string) (time.Time, time.Time, error) {
	var start, end time.Time
	var err error

	if endStr != "" {
		end, err = parseFlexTime(endStr)
		if err != nil {
			return time.Time{}, time.Time{}, err
		}
	} else {
		end = time.Now()
	}

	if startStr != "" {
		start, err = parseFlexTime(startStr)
		if err != nil {
			return time.Time{}, time.Time{}, err
		}
	} else {
		start = end.AddDate(0, 0, -7)
	}

	return start, end, nil
}

func parseFlexTime(s string) (time.Time, error) {
	t, err := time.Parse(time.RFC3339, s)
	if err == nil {
		return t, nil
	}
	t, err = time.Parse("2006-01-02", s)
	if err == nil {
		return t, nil
	}
	return time.Time{}, err
}

// --- Tool definitions ---

var toolSuggestNextWeight = mcp.NewTool("suggest_next_weight",
	mcp.WithDescription("Suggest the next working weight for an exercise from its logged history. Uses the stored rep range unless overridden. Returns next (null when there is no history), rationale ('fallback' for the deterministic rule, 'ai' when refined) and an estimated 1RM."),
	mcp.WithString("exercise", mcp.Required(), mcp.Description("Exercise name as logged (case-insensitive, e.g. 'Bench Press')")),
	mcp.WithString("units", mcp.Description("Weight units for the answer. Defaults to lb."), mcp.Enum(models.UnitsLb, models.UnitsKg)),
	mcp.WithString("category", mcp.Description("Override the exercise category"), mcp.Enum(models.CategoryLowerCompound, models.CategoryUpperCompound, models.CategoryOther)),
	mcp.WithString("equipment", mcp.Description("Override the equipment"), mcp.Enum(models.EquipBarbell, models.EquipDumbbell, models.EquipOther)),
	mcp.WithNumber("low", mcp.Description("Override the bottom of the target rep range")),
	mcp.WithNumber("high", mcp.Description("Override the top of the target rep range")),
)

var toolParseSplit = mcp.NewTool("parse_split",
	mcp.WithDescription("Parse a free-text training split (e.g. 'PUSH A\\nBench Press - 3x8-10') into days with exercises, sets and rep ranges. Returns {days: []} when nothing is recognized."),
	mcp.WithString("text", mcp.Required(), mcp.Description("Split text, one exercise or day heading per line")),
)

var toolWarmupPlan = mcp.NewTool("warmup_plan",
	mcp.WithDescription("Plan warm-up sets leading up to a working weight. Barbell plans start with the empty bar."),
	mcp.WithNumber("weight", mcp.Required(), mcp.Description("Working weight")),
	mcp.WithString("equipment", mcp.Description("Equipment. Defaults to barbell."), mcp.Enum(models.EquipBarbell, models.EquipDumbbell, models.EquipOther)),
	mcp.WithString("units", mcp.Description("Weight units. Defaults to lb."), mcp.Enum(models.UnitsLb, models.UnitsKg)),
)

var toolRestTime = mcp.NewTool("rest_time",
	mcp.WithDescription("Suggested rest in seconds before the next set."),
	mcp.WithString("category", mcp.Description("Exercise category. Defaults to other."), mcp.Enum(models.CategoryLowerCompound, models.CategoryUpperCompound, models.CategoryOther)),
	mcp.WithBoolean("failed", mcp.Description("Whether the last set was taken to failure")),
)

var toolGetExerciseHistory = mcp.NewTool("get_exercise_history",
	mcp.WithDescription("Sets of one exercise from the most recent sessions that included it, most recent first, with the session's units."),
	mcp.WithString("exercise", mcp.Required(), mcp.Description("Exercise name (case-insensitive)")),
	mcp.WithNumber("limit", mcp.Description("Number of sessions. Defaults to 10.")),
)

var toolGetSessions = mcp.NewTool("get_sessions",
	mcp.WithDescription("Logged workout sessions with their exercises and sets."),
	mcp.WithString("start", mcp.Description("Start date (ISO 8601 or YYYY-MM-DD). Defaults to 7 days ago.")),
	mcp.WithString("end", mcp.Description("End date (ISO 8601 or YYYY-MM-DD). Defaults to now.")),
)

var toolGetTrainingSummary = mcp.NewTool("get_training_summary",
	mcp.WithDescription("Monthly/weekly aggregated strength training volume: sessions, sets, failed and drop sets, reps and tonnage (kg) per period."),
	mcp.WithString("start", mcp.Description("Start date. Defaults to 6 months ago.")),
	mcp.WithString("end", mcp.Description("End date. Defaults to now.")),
	mcp.WithString("bucket", mcp.Description("Aggregation period. Defaults to '1 month'."), mcp.Enum("1 week", "1 month")),
)

// --- Tool handlers ---

func (h *handlers) suggestNextWeight(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	exercise, err := req.RequireString("exercise")
	if err != nil {
		return mcp.NewToolResultError("exercise parameter is required"), nil
	}
	u := req.GetString("units", models.UnitsLb)
	if !units.Valid(u) {
		return mcp.NewToolResultError("units must be lb or kg"), nil
	}

	hist, err := h.ds.ExerciseHistory(ctx, UserIDFromContext(ctx), exercise, 0)
	if err != nil {
		h.log.Error("mcp suggest_next_weight", "error", err)
		return mcp.NewToolResultError("query failed: " + err.Error()), nil
	}

	pr := progression.FromHistory(hist, metaOverride(req, hist.Meta), u)
	return jsonResult(h.advisor.Suggest(ctx, pr, h.settings))
}

// metaOverride applies the optional category/equipment/low/high arguments
// over the stored meta. Returns nil when none are given.
func metaOverride(req mcp.CallToolRequest, stored *models.ExerciseMeta) *models.ExerciseMeta {
	args := req.GetArguments()
	_, hasCat := args["category"]
	_, hasEquip := args["equipment"]
	_, hasLow := args["low"]
	_, hasHigh := args["high"]
	if !hasCat && !hasEquip && !hasLow && !hasHigh {
		return nil
	}
	var m models.ExerciseMeta
	if stored != nil {
		m = *stored
	}
	m.Category = req.GetString("category", m.Category)
	m.Equipment = req.GetString("equipment", m.Equipment)
	m.Low = req.GetInt("low", m.Low)
	m.High = req.GetInt("high", m.High)
	return &m
}

func (h *handlers) parseSplit(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	text, err := req.RequireString("text")
	if err != nil {
		return mcp.NewToolResultError("text parameter is required"), nil
	}
	return jsonResult(h.parser.ParseWithFallback(ctx, text, h.settings))
}

func (h *handlers) warmupPlan(_ context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	weight, err := req.RequireFloat("weight")
	if err != nil || weight <= 0 {
		return mcp.NewToolResultError("weight must be a positive number"), nil
	}
	u := req.GetString("units", models.UnitsLb)
	if !units.Valid(u) {
		return mcp.NewToolResultError("units must be lb or kg"), nil
	}
	equip := req.GetString("equipment", models.EquipBarbell)
	return jsonResult(progression.WarmupPlan(weight, equip, u))
}

func (h *handlers) restTime(_ context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	meta := models.ExerciseMeta{Category: req.GetString("category", models.CategoryOther)}
	seconds := progression.RestSeconds(meta, req.GetBool("failed", false))
	return jsonResult(map[string]int{"seconds": seconds})
}

func (h *handlers) getExerciseHistory(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	exercise, err := req.RequireString("exercise")
	if err != nil {
		return mcp.NewToolResultError("exercise parameter is required"), nil
	}

	hist, err := h.ds.ExerciseHistory(ctx, UserIDFromContext(ctx), exercise, req.GetInt("limit", 0))
	if err != nil {
		h.log.Error("mcp get_exercise_history", "error", err)
		return mcp.NewToolResultError("query failed: " + err.Error()), nil
	}
	return jsonResult(hist)
}

func (h *handlers) getSessions(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	start, end, err := defaultTimeRange(req.GetString("start", ""), req.GetString("end", ""))
	if err != nil {
		return mcp.NewToolResultError("invalid date format: " + err.Error()), nil
	}

	sessions, err := h.ds.QuerySessions(ctx, start, end, UserIDFromContext(ctx))
	if err != nil {
		h.log.Error("mcp get_sessions", "error", err)
		return mcp.NewToolResultError("query failed: " + err.Error()), nil
	}
	return jsonResult(sessions)
}

func (h *handlers) getTrainingSummary(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	startStr := req.GetString("start", "")
	start, end, err := defaultTimeRange(startStr, req.GetString("end", ""))
	if err != nil {
		return mcp.NewToolResultError("invalid date format: " + err.Error()), nil
	}
	if startStr == "" {
		start = end.AddDate(0, -6, 0)
	}

	bucket := req.GetString("bucket", "1 month")
	summary, err := h.ds.GetTrainingSummary(ctx, start, end, bucket, UserIDFromContext(ctx))
	if err != nil {
		h.log.Error("mcp get_training_summary", "error", err)
		return mcp.NewToolResultError("query failed: " + err.Error()), nil
	}
	return jsonResult(summary)
}

func jsonResult(v any) (*mcp.CallToolResult, error) {
	result, err := mcp.NewToolResultJSON(v)
	if err != nil {
		return mcp.NewToolResultError("serialization failed"), nil
	}
	return result, nil
}
