package server

import (
	"context"
	"net/http"
	"time"

	"github.com/meltforce/liftlog/internal/ingest"
	"github.com/meltforce/liftlog/internal/ingest/alpha"
	"github.com/meltforce/liftlog/internal/storage"
)

// maxImportBytes bounds an uploaded CSV export.
const maxImportBytes = 32 << 20

// handleAlphaImport ingests an Alpha Progression CSV export for the local user.
func (s *Server) handleAlphaImport(w http.ResponseWriter, r *http.Request) {
	if s.alpha == nil {
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{"error": "alpha import not configured"})
		return
	}
	uid := storage.LocalUserID
	start := time.Now()
	logID := s.startImportLog(r.Context(), uid, alpha.Source)

	result, err := s.alpha.Ingest(r.Context(), http.MaxBytesReader(w, r.Body, maxImportBytes), uid)
	s.finishImportLog(logID, uid, alpha.Source, result, err, int(time.Since(start).Milliseconds()))
	if err != nil {
		s.log.Error("alpha import error", "error", err)
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func (s *Server) handleImportLogs(w http.ResponseWriter, r *http.Request) {
	logs, err := s.db.QueryImportLogs(r.Context(), userIDFromContext(r), queryInt(r, "limit", 50))
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, logs)
}

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	stats, err := s.db.GetDataStats(r.Context(), userIDFromContext(r))
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, stats)
}

func (s *Server) handleTrainingSummary(w http.ResponseWriter, r *http.Request) {
	start, end, err := parseTimeRange(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}
	if r.URL.Query().Get("start") == "" {
		start = end.AddDate(0, -6, 0)
	}
	bucket := r.URL.Query().Get("bucket")
	summary, err := s.db.GetTrainingSummary(r.Context(), start, end, bucket, userIDFromContext(r))
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, summary)
}

// startImportLog records a running import and returns its log ID, or 0 when
// the row could not be written.
func (s *Server) startImportLog(ctx context.Context, uid int, source string) int64 {
	id, err := s.db.InsertImportLog(ctx, storage.ImportLog{UserID: uid, Source: source, Status: storage.ImportRunning})
	if err != nil {
		s.log.Error("failed to log import start", "source", source, "error", err)
		return 0
	}
	return id
}

// finishImportLog records an import's result. It uses its own context so a
// cancelled request still gets logged.
func (s *Server) finishImportLog(id int64, uid int, source string, result *ingest.Result, importErr error, durationMs int) {
	if result == nil {
		result = &ingest.Result{}
	}
	status := storage.ImportSuccess
	var errMsg *string
	if importErr != nil {
		status = storage.ImportError
		msg := importErr.Error()
		errMsg = &msg
	}

	entry := storage.ImportLog{
		UserID:           uid,
		Source:           source,
		Status:           status,
		SessionsReceived: result.SessionsReceived,
		SessionsInserted: result.SessionsInserted,
		SetsReceived:     result.SetsReceived,
		SetsInserted:     result.SetsInserted,
		DurationMs:       &durationMs,
		ErrorMessage:     errMsg,
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	var err error
	if id == 0 {
		_, err = s.db.InsertImportLog(ctx, entry)
	} else {
		err = s.db.UpdateImportLog(ctx, id, entry)
	}
	if err != nil {
		s.log.Error("failed to log import", "source", source, "error", err)
	}
}
