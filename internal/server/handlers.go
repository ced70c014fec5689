package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/meltforce/liftlog/internal/models"
	"github.com/meltforce/liftlog/internal/progression"
	"github.com/meltforce/liftlog/internal/storage"
	"github.com/meltforce/liftlog/internal/units"
)

// SourceApp marks sessions logged through the API.
const SourceApp = "app"

func (s *Server) handleMe(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, userInfoFromContext(r))
}

type saveSplitRequest struct {
	Text  string              `json:"text"`
	Split *models.ParsedSplit `json:"split"`
}

func (s *Server) handleGetSplit(w http.ResponseWriter, r *http.Request) {
	saved, err := s.db.GetSplit(r.Context(), userIDFromContext(r))
	if errors.Is(err, storage.ErrNotFound) {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "no split saved"})
		return
	}
	if err != nil {
		s.log.Error("get split", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, saved)
}

// handleSaveSplit stores a split. Without an explicit split the text is
// parsed the same way the parse endpoint does it.
func (s *Server) handleSaveSplit(w http.ResponseWriter, r *http.Request) {
	var req saveSplitRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON: " + err.Error()})
		return
	}
	var split models.ParsedSplit
	if req.Split != nil {
		split = *req.Split
	} else {
		split = s.parser.ParseWithFallback(r.Context(), req.Text, s.settings)
	}

	saved, err := s.db.SaveSplit(r.Context(), userIDFromContext(r), req.Text, split)
	if err != nil {
		s.log.Error("save split", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, saved)
}

func (s *Server) handleLogSession(w http.ResponseWriter, r *http.Request) {
	var sess models.LoggedSession
	if err := decodeJSON(w, r, &sess); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON: " + err.Error()})
		return
	}
	if err := prepareSession(&sess, time.Now()); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}
	sess.UserID = userIDFromContext(r)

	id, err := s.db.InsertSession(r.Context(), sess)
	if err != nil {
		s.log.Error("insert session", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	writeJSON(w, http.StatusCreated, map[string]string{"id": id})
}

// prepareSession validates a client-logged session and fills defaults.
func prepareSession(s *models.LoggedSession, now time.Time) error {
	if s.ID != "" {
		if _, err := uuid.Parse(s.ID); err != nil {
			return fmt.Errorf("id must be a UUID")
		}
	}
	if s.Units == "" {
		s.Units = models.UnitsLb
	}
	if !units.Valid(s.Units) {
		return fmt.Errorf("units must be lb or kg")
	}
	if s.Date.IsZero() {
		s.Date = now
	}
	s.Source = SourceApp
	if s.Exercises == nil {
		s.Exercises = []models.LoggedExercise{}
	}
	for i := range s.Exercises {
		ex := &s.Exercises[i]
		if ex.Name == "" {
			return fmt.Errorf("exercise %d: name is required", i+1)
		}
		if ex.Meta.Category == "" {
			ex.Meta.Category = models.CategoryOther
		}
		if ex.Meta.Equipment == "" {
			ex.Meta.Equipment = models.EquipOther
		}
		if ex.Meta.High == 0 {
			ex.Meta.High = ex.Meta.Low
		}
		for j, set := range ex.Sets {
			if set.Weight < 0 || math.IsInf(set.Weight, 0) || set.Reps <= 0 {
				return fmt.Errorf("exercise %d set %d: weight must be >= 0 and reps > 0", i+1, j+1)
			}
		}
	}
	return nil
}

func (s *Server) handleQuerySessions(w http.ResponseWriter, r *http.Request) {
	start, end, err := parseTimeRange(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}
	sessions, err := s.db.QuerySessions(r.Context(), start, end, userIDFromContext(r))
	if err != nil {
		s.log.Error("query sessions", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, sessions)
}

func (s *Server) handleDeleteSession(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	err := s.db.DeleteSession(r.Context(), id, userIDFromContext(r))
	if errors.Is(err, storage.ErrNotFound) {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "session not found"})
		return
	}
	if err != nil {
		s.log.Error("delete session", "id", id, "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"deleted": id})
}

func (s *Server) handleExerciseHistory(w http.ResponseWriter, r *http.Request) {
	hist, err := s.db.ExerciseHistory(r.Context(), userIDFromContext(r), exerciseParam(r), queryInt(r, "limit", 0))
	if err != nil {
		s.log.Error("exercise history", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, hist)
}

// handleExerciseSuggestion runs the advisor over stored history. Query
// parameters units, cat, equip, low and high override the defaults and the
// stored programming.
func (s *Server) handleExerciseSuggestion(w http.ResponseWriter, r *http.Request) {
	hist, err := s.db.ExerciseHistory(r.Context(), userIDFromContext(r), exerciseParam(r), queryInt(r, "limit", 0))
	if err != nil {
		s.log.Error("exercise history", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}

	q := r.URL.Query()
	u := q.Get("units")
	if u == "" {
		u = models.UnitsLb
	}
	req := progression.FromHistory(hist, metaOverride(q, hist.Meta), u)
	writeJSON(w, http.StatusOK, s.advisor.Suggest(r.Context(), req, s.settings))
}

// metaOverride applies cat/equip/low/high query parameters over the stored
// meta. Returns nil when none are given.
func metaOverride(q url.Values, stored *models.ExerciseMeta) *models.ExerciseMeta {
	if q.Get("cat") == "" && q.Get("equip") == "" && q.Get("low") == "" && q.Get("high") == "" {
		return nil
	}
	var m models.ExerciseMeta
	if stored != nil {
		m = *stored
	}
	if v := q.Get("cat"); v != "" {
		m.Category = v
	}
	if v := q.Get("equip"); v != "" {
		m.Equipment = v
	}
	if v, err := strconv.Atoi(q.Get("low")); err == nil {
		m.Low = v
	}
	if v, err := strconv.Atoi(q.Get("high")); err == nil {
		m.High = v
	}
	return &m
}

func exerciseParam(r *http.Request) string {
	name := chi.URLParam(r, "name")
	if decoded, err := url.PathUnescape(name); err == nil {
		return decoded
	}
	return name
}

func queryInt(r *http.Request, key string, def int) int {
	if v, err := strconv.Atoi(r.URL.Query().Get(key)); err == nil && v > 0 {
		return v
	}
	return def
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v) //nolint:errcheck
}

func parseTimeRange(r *http.Request) (start, end time.Time, err error) {
	startStr := r.URL.Query().Get("start")
	endStr := r.URL.Query().Get("end")

	if startStr == "" {
		// Default: last 30 days
		end = time.Now()
		start = end.AddDate(0, 0, -30)
		return
	}

	start, err = parseFlexTime(startStr)
	if err != nil {
		return time.Time{}, time.Time{}, fmt.Errorf("invalid start: %w", err)
	}

	if endStr == "" {
		return start, time.Now(), nil
	}
	end, err = time.Parse(time.RFC3339, endStr)
	if err != nil {
		end, err = time.Parse("2006-01-02", endStr)
		if err != nil {
			return time.Time{}, time.Time{}, fmt.Errorf("invalid end: %w", err)
		}
		// End of day for date-only
		end = end.Add(24 * time.Hour)
	}
	return start, end, nil
}

func parseFlexTime(s string) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t, nil
	}
	return time.Parse("2006-01-02", s)
}
