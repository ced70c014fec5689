package storage

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/meltforce/liftlog/internal/models"
)

// DefaultHistoryLimit is the number of sessions returned when no limit is given.
const DefaultHistoryLimit = 10

// historyRow is one stored set joined with its session date.
type historyRow struct {
	Date  time.Time
	Units string
	models.WorkoutSetRow
}

// ExerciseHistory returns the user's most recent sessions containing the named
// exercise (case-insensitive), newest first, with sets in performed order. Meta
// is the programming stored with the newest entry, or nil without history.
func (db *DB) ExerciseHistory(ctx context.Context, userID int, exercise string, limit int) (*models.ExerciseHistory, error) {
	if limit <= 0 {
		limit = DefaultHistoryLimit
	}
	rows, err := db.Pool.Query(ctx,
		`WITH recent AS (
			SELECT DISTINCT s.id, s.session_date, s.created_at, s.units
			FROM sessions s
			JOIN workout_sets w ON w.session_id = s.id
			WHERE s.user_id = $1 AND lower(w.exercise_name) = lower($2)
			ORDER BY s.session_date DESC, s.created_at DESC
			LIMIT $3
		)
		SELECT r.id, r.session_date, r.units, w.exercise_number, w.exercise_name, w.category, w.equipment,
		       w.target_low, w.target_high, w.set_number, w.weight, w.reps, w.failed, w.is_drop
		FROM recent r
		JOIN workout_sets w ON w.session_id = r.id
		WHERE lower(w.exercise_name) = lower($2)
		ORDER BY r.session_date DESC, r.created_at DESC, w.exercise_number ASC, w.set_number ASC`,
		userID, exercise, limit)
	if err != nil {
		return nil, fmt.Errorf("querying exercise history: %w", err)
	}
	hist, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (historyRow, error) {
		var h historyRow
		err := row.Scan(&h.SessionID, &h.Date, &h.Units, &h.ExerciseNumber, &h.ExerciseName,
			&h.Category, &h.Equipment, &h.TargetLow, &h.TargetHigh,
			&h.SetNumber, &h.Weight, &h.Reps, &h.Failed, &h.Drop)
		return h, err
	})
	if err != nil {
		return nil, fmt.Errorf("scanning exercise history: %w", err)
	}
	return groupHistory(exercise, hist), nil
}

// groupHistory folds ordered history rows into one entry per session. An
// exercise logged twice in a session contributes both blocks to the entry.
func groupHistory(exercise string, rows []historyRow) *models.ExerciseHistory {
	h := &models.ExerciseHistory{Exercise: exercise, Entries: []models.ExerciseHistoryEntry{}}
	lastSession := ""
	for _, r := range rows {
		if h.Meta == nil {
			h.Exercise = r.ExerciseName
			h.Meta = &models.ExerciseMeta{
				Category:  r.Category,
				Equipment: r.Equipment,
				Low:       r.TargetLow,
				High:      r.TargetHigh,
			}
		}
		if r.SessionID != lastSession {
			date := r.Date
			h.Entries = append(h.Entries, models.ExerciseHistoryEntry{Date: &date, Units: r.Units, Sets: []models.SetRecord{}})
			lastSession = r.SessionID
		}
		e := &h.Entries[len(h.Entries)-1]
		e.Sets = append(e.Sets, models.SetRecord{Weight: r.Weight, Reps: r.Reps, Failed: r.Failed, Drop: r.Drop})
	}
	return h
}
