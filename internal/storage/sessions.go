package storage

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/meltforce/liftlog/internal/models"
)

const setColumns = 13

// InsertSession stores a session and its sets in one transaction. A missing
// ID is filled with a new UUID. Returns the session ID.
func (db *DB) InsertSession(ctx context.Context, s models.LoggedSession) (string, error) {
	return db.writeSession(ctx, s, false)
}

// ReplaceSession stores a session after deleting any session of the same user,
// source, name and date. Imports use it so re-importing an export is idempotent.
func (db *DB) ReplaceSession(ctx context.Context, s models.LoggedSession) (string, error) {
	return db.writeSession(ctx, s, true)
}

func (db *DB) writeSession(ctx context.Context, s models.LoggedSession, replace bool) (string, error) {
	if s.ID == "" {
		s.ID = uuid.NewString()
	}

	tx, err := db.Pool.Begin(ctx)
	if err != nil {
		return "", fmt.Errorf("beginning session tx: %w", err)
	}
	defer tx.Rollback(ctx) //nolint:errcheck

	if replace {
		if _, err := tx.Exec(ctx,
			`DELETE FROM sessions WHERE user_id = $1 AND source = $2 AND name = $3 AND session_date = $4`,
			s.UserID, s.Source, s.Name, s.Date); err != nil {
			return "", fmt.Errorf("deleting replaced session: %w", err)
		}
	}

	if _, err := tx.Exec(ctx,
		`INSERT INTO sessions (id, user_id, name, session_date, units, source)
		 VALUES ($1,$2,$3,$4,$5,$6)`,
		s.ID, s.UserID, s.Name, s.Date, s.Units, s.Source); err != nil {
		return "", fmt.Errorf("inserting session: %w", err)
	}

	if rows := s.Rows(); len(rows) > 0 {
		query, args := setInsertQuery(rows)
		if _, err := tx.Exec(ctx, query, args...); err != nil {
			return "", fmt.Errorf("inserting workout sets: %w", err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return "", fmt.Errorf("committing session: %w", err)
	}
	return s.ID, nil
}

// setInsertQuery builds one multi-row INSERT for workout_sets.
func setInsertQuery(rows []models.WorkoutSetRow) (string, []any) {
	query := `INSERT INTO workout_sets (session_id, user_id, exercise_number, exercise_name,
		category, equipment, target_low, target_high, set_number, weight, reps, failed, is_drop) VALUES `
	args := make([]any, 0, len(rows)*setColumns)
	valueStrings := make([]string, 0, len(rows))

	for i, r := range rows {
		base := i * setColumns
		valueStrings = append(valueStrings, fmt.Sprintf(
			"($%d,$%d,$%d,$%d,$%d,$%d,$%d,$%d,$%d,$%d,$%d,$%d,$%d)",
			base+1, base+2, base+3, base+4, base+5, base+6, base+7,
			base+8, base+9, base+10, base+11, base+12, base+13,
		))
		args = append(args, r.SessionID, r.UserID, r.ExerciseNumber, r.ExerciseName,
			r.Category, r.Equipment, r.TargetLow, r.TargetHigh,
			r.SetNumber, r.Weight, r.Reps, r.Failed, r.Drop)
	}
	return query + strings.Join(valueStrings, ","), args
}

// QuerySessions returns a user's sessions in [start, end), newest first, with
// exercises and sets in logged order.
func (db *DB) QuerySessions(ctx context.Context, start, end time.Time, userID int) ([]models.LoggedSession, error) {
	rows, err := db.Pool.Query(ctx,
		`SELECT id, user_id, name, session_date, units, source
		 FROM sessions
		 WHERE session_date >= $1 AND session_date < $2 AND user_id = $3
		 ORDER BY session_date DESC, created_at DESC`,
		start, end, userID)
	if err != nil {
		return nil, fmt.Errorf("querying sessions: %w", err)
	}
	defer rows.Close()

	var sessions []models.LoggedSession
	for rows.Next() {
		var s models.LoggedSession
		if err := rows.Scan(&s.ID, &s.UserID, &s.Name, &s.Date, &s.Units, &s.Source); err != nil {
			return nil, fmt.Errorf("scanning session: %w", err)
		}
		sessions = append(sessions, s)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if len(sessions) == 0 {
		return []models.LoggedSession{}, nil
	}

	ids := make([]string, len(sessions))
	for i, s := range sessions {
		ids[i] = s.ID
	}
	setRows, err := db.Pool.Query(ctx,
		`SELECT session_id, user_id, exercise_number, exercise_name, category, equipment,
		 target_low, target_high, set_number, weight, reps, failed, is_drop
		 FROM workout_sets
		 WHERE session_id = ANY($1::uuid[])
		 ORDER BY exercise_number ASC, set_number ASC`,
		ids)
	if err != nil {
		return nil, fmt.Errorf("querying session sets: %w", err)
	}
	sets, err := pgx.CollectRows(setRows, scanSetRow)
	if err != nil {
		return nil, fmt.Errorf("scanning session sets: %w", err)
	}
	return attachSets(sessions, sets), nil
}

// DeleteSession removes one of the user's sessions and its sets.
func (db *DB) DeleteSession(ctx context.Context, id string, userID int) error {
	if _, err := uuid.Parse(id); err != nil {
		return ErrNotFound
	}
	tag, err := db.Pool.Exec(ctx, `DELETE FROM sessions WHERE id = $1 AND user_id = $2`, id, userID)
	if err != nil {
		return fmt.Errorf("deleting session %s: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func scanSetRow(row pgx.CollectableRow) (models.WorkoutSetRow, error) {
	var r models.WorkoutSetRow
	err := row.Scan(&r.SessionID, &r.UserID, &r.ExerciseNumber, &r.ExerciseName,
		&r.Category, &r.Equipment, &r.TargetLow, &r.TargetHigh,
		&r.SetNumber, &r.Weight, &r.Reps, &r.Failed, &r.Drop)
	return r, err
}

// attachSets groups set rows into the exercises of their sessions. Rows must be
// ordered by exercise_number then set_number.
func attachSets(sessions []models.LoggedSession, rows []models.WorkoutSetRow) []models.LoggedSession {
	index := make(map[string]int, len(sessions))
	for i := range sessions {
		index[sessions[i].ID] = i
		sessions[i].Exercises = []models.LoggedExercise{}
	}

	lastExercise := make(map[string]int)
	for _, r := range rows {
		i, ok := index[r.SessionID]
		if !ok {
			continue
		}
		s := &sessions[i]
		if n, seen := lastExercise[r.SessionID]; !seen || n != r.ExerciseNumber {
			s.Exercises = append(s.Exercises, models.LoggedExercise{
				Name: r.ExerciseName,
				Meta: models.ExerciseMeta{
					Category:  r.Category,
					Equipment: r.Equipment,
					Low:       r.TargetLow,
					High:      r.TargetHigh,
				},
				Sets: []models.SetRecord{},
			})
			lastExercise[r.SessionID] = r.ExerciseNumber
		}
		ex := &s.Exercises[len(s.Exercises)-1]
		ex.Sets = append(ex.Sets, models.SetRecord{Weight: r.Weight, Reps: r.Reps, Failed: r.Failed, Drop: r.Drop})
	}
	return sessions
}

// isNoRows reports whether err means the query matched nothing.
func isNoRows(err error) bool {
	return errors.Is(err, pgx.ErrNoRows)
}
