package storage

import (
	"context"
	"fmt"
	"time"
)

// TrainingSummaryPeriod holds aggregated set volume for one time period.
// Tonnage is normalized to kilograms regardless of the session units.
type TrainingSummaryPeriod struct {
	Period            string  `json:"period"`
	Sessions          int     `json:"sessions"`
	Sets              int     `json:"sets"`
	FailedSets        int     `json:"failed_sets"`
	DropSets          int     `json:"drop_sets"`
	TotalReps         int     `json:"total_reps"`
	TonnageKg         float64 `json:"tonnage_kg"`
	AvgSetsPerSession float64 `json:"avg_sets_per_session"`
}

// GetTrainingSummary returns set volume per week or month, newest first.
func (db *DB) GetTrainingSummary(ctx context.Context, start, end time.Time, bucket string, userID int) ([]TrainingSummaryPeriod, error) {
	rows, err := db.Pool.Query(ctx,
		`SELECT date_trunc($1, s.session_date)::date AS period,
		        COUNT(DISTINCT s.id)::int,
		        COUNT(*)::int,
		        COUNT(*) FILTER (WHERE w.failed)::int,
		        COUNT(*) FILTER (WHERE w.is_drop)::int,
		        COALESCE(SUM(w.reps), 0)::int,
		        COALESCE(SUM(w.reps * CASE WHEN s.units = 'lb' THEN w.weight * 0.45359237 ELSE w.weight END), 0)
		 FROM sessions s
		 JOIN workout_sets w ON w.session_id = s.id
		 WHERE s.session_date >= $2 AND s.session_date < $3 AND s.user_id = $4
		 GROUP BY period
		 ORDER BY period DESC`,
		truncInterval(bucket), start, end, userID)
	if err != nil {
		return nil, fmt.Errorf("querying training summary: %w", err)
	}
	defer rows.Close()

	result := []TrainingSummaryPeriod{}
	for rows.Next() {
		var (
			periodTime time.Time
			p          TrainingSummaryPeriod
		)
		if err := rows.Scan(&periodTime, &p.Sessions, &p.Sets, &p.FailedSets, &p.DropSets,
			&p.TotalReps, &p.TonnageKg); err != nil {
			return nil, fmt.Errorf("scanning training summary: %w", err)
		}
		p.Period = periodTime.Format("2006-01-02")
		if p.Sessions > 0 {
			p.AvgSetsPerSession = float64(p.Sets) / float64(p.Sessions)
		}
		result = append(result, p)
	}
	return result, rows.Err()
}

// truncInterval converts bucket strings like "1 month" to the interval name
// that date_trunc expects (e.g. "month", "week").
func truncInterval(bucket string) string {
	switch bucket {
	case "1 week", "week":
		return "week"
	case "1 month", "month":
		return "month"
	default:
		return "month"
	}
}

// DataStats holds aggregate statistics about a user's stored training data.
type DataStats struct {
	TotalSessions int64          `json:"total_sessions"`
	TotalSets     int64          `json:"total_sets"`
	EarliestData  *time.Time     `json:"earliest_data"`
	LatestData    *time.Time     `json:"latest_data"`
	TopExercises  []ExerciseStat `json:"top_exercises"`
	HasSplit      bool           `json:"has_split"`
}

// ExerciseStat counts how often one exercise was logged.
type ExerciseStat struct {
	Name     string `json:"name"`
	Sessions int64  `json:"sessions"`
	Sets     int64  `json:"sets"`
}

// GetDataStats returns aggregate statistics for a user's stored data.
func (db *DB) GetDataStats(ctx context.Context, userID int) (*DataStats, error) {
	stats := &DataStats{TopExercises: []ExerciseStat{}}

	err := db.Pool.QueryRow(ctx,
		`SELECT COUNT(*), MIN(session_date), MAX(session_date) FROM sessions WHERE user_id = $1`, userID,
	).Scan(&stats.TotalSessions, &stats.EarliestData, &stats.LatestData)
	if err != nil {
		return nil, fmt.Errorf("counting sessions: %w", err)
	}

	err = db.Pool.QueryRow(ctx,
		`SELECT COUNT(*) FROM workout_sets WHERE user_id = $1`, userID,
	).Scan(&stats.TotalSets)
	if err != nil {
		return nil, fmt.Errorf("counting sets: %w", err)
	}

	err = db.Pool.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM splits WHERE user_id = $1)`, userID,
	).Scan(&stats.HasSplit)
	if err != nil {
		return nil, fmt.Errorf("checking split: %w", err)
	}

	rows, err := db.Pool.Query(ctx,
		`SELECT exercise_name, COUNT(DISTINCT session_id), COUNT(*)
		 FROM workout_sets
		 WHERE user_id = $1
		 GROUP BY exercise_name
		 ORDER BY COUNT(DISTINCT session_id) DESC, exercise_name
		 LIMIT 20`, userID)
	if err != nil {
		return nil, fmt.Errorf("querying exercise stats: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var s ExerciseStat
		if err := rows.Scan(&s.Name, &s.Sessions, &s.Sets); err != nil {
			return nil, fmt.Errorf("scanning exercise stat: %w", err)
		}
		stats.TopExercises = append(stats.TopExercises, s)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	return stats, nil
}
