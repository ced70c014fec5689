package alpha

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/meltforce/liftlog/internal/ingest"
	"github.com/meltforce/liftlog/internal/models"
)

// SessionStore is the storage the provider writes to.
type SessionStore interface {
	ReplaceSession(ctx context.Context, s models.LoggedSession) (string, error)
}

// Provider processes Alpha Progression CSV exports.
type Provider struct {
	db  SessionStore
	log *slog.Logger
}

// NewProvider creates a new Alpha Progression ingest provider.
func NewProvider(db SessionStore, log *slog.Logger) *Provider {
	return &Provider{db: db, log: log}
}

// Ingest parses a CSV export and stores each session, replacing earlier
// imports of the same session.
func (p *Provider) Ingest(ctx context.Context, r io.Reader, userID int) (*ingest.Result, error) {
	parsed, err := Parse(r)
	if err != nil {
		return nil, fmt.Errorf("parsing CSV: %w", err)
	}

	result := &ingest.Result{SessionsReceived: len(parsed)}
	for _, a := range parsed {
		s, warmups := ToSession(a, userID)
		result.WarmupsDropped += warmups
		if len(s.Exercises) == 0 {
			result.SessionsSkipped++
			p.log.Debug("skipping session without working sets", "name", a.Name, "date", a.Date)
			continue
		}

		sets := len(s.Rows())
		result.SetsReceived += sets
		if _, err := p.db.ReplaceSession(ctx, s); err != nil {
			return result, fmt.Errorf("storing session %s %s: %w", a.Name, a.Date.Format("2006-01-02"), err)
		}
		result.SessionsInserted++
		result.SetsInserted += int64(sets)
	}

	p.log.Info("alpha import complete",
		"sessions", result.SessionsInserted, "skipped", result.SessionsSkipped, "sets", result.SetsInserted)
	return result, nil
}
