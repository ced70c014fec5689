package mcp

import (
	"context"
	"time"

	"github.com/meltforce/liftlog/internal/models"
	"github.com/meltforce/liftlog/internal/storage"
)

// DataSource abstracts the data layer for MCP tools. Both *storage.DB (local)
// and HTTPClient (remote via REST API) satisfy this interface.
type DataSource interface {
	ExerciseHistory(ctx context.Context, userID int, exercise string, limit int) (*models.ExerciseHistory, error)
	GetSplit(ctx context.Context, userID int) (*models.SavedSplit, error)
	QuerySessions(ctx context.Context, start, end time.Time, userID int) ([]models.LoggedSession, error)
	GetTrainingSummary(ctx context.Context, start, end time.Time, bucket string, userID int) ([]storage.TrainingSummaryPeriod, error)
	GetDataStats(ctx context.Context, userID int) (*storage.DataStats, error)
}

// Compile-time check: *storage.DB satisfies DataSource.
var _ DataSource = (*storage.DB)(nil)
