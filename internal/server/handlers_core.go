package server

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/meltforce/liftlog/internal/models"
	"github.com/meltforce/liftlog/internal/progression"
	"github.com/meltforce/liftlog/internal/units"
)

// maxBodyBytes bounds JSON request bodies.
const maxBodyBytes = 1 << 20

// The handlers in this file back the stateless cores. They answer 200 with an
// ok flag in the body for every input, including bodies that are not JSON.

type splitParseRequest struct {
	Text string `json:"text"`
}

type splitParseResponse struct {
	OK bool `json:"ok"`
	models.ParsedSplit
}

type warmupRequest struct {
	Weight    float64 `json:"weight"`
	Equipment string  `json:"equip"`
	Units     string  `json:"units"`
}

type warmupResponse struct {
	OK   bool               `json:"ok"`
	Sets []models.WarmupSet `json:"sets"`
}

type restRequest struct {
	Meta   models.ExerciseMeta `json:"meta"`
	Failed bool                `json:"failed"`
}

type restResponse struct {
	OK      bool `json:"ok"`
	Seconds int  `json:"seconds"`
}

func (s *Server) handleSuggest(w http.ResponseWriter, r *http.Request) {
	var req progression.Request
	if err := decodeJSON(w, r, &req); err != nil {
		s.log.Debug("suggest: bad request body", "error", err)
		writeJSON(w, http.StatusOK, models.ProgressionSuggestion{OK: false, Rationale: models.RationaleError})
		return
	}
	writeJSON(w, http.StatusOK, s.advisor.Suggest(r.Context(), req, s.settings))
}

func (s *Server) handleSplitParse(w http.ResponseWriter, r *http.Request) {
	var req splitParseRequest
	if err := decodeJSON(w, r, &req); err != nil {
		s.log.Debug("split parse: bad request body", "error", err)
		writeJSON(w, http.StatusOK, splitParseResponse{OK: false, ParsedSplit: models.EmptySplit()})
		return
	}
	split := s.parser.ParseWithFallback(r.Context(), req.Text, s.settings)
	writeJSON(w, http.StatusOK, splitParseResponse{OK: true, ParsedSplit: split})
}

func (s *Server) handleWarmup(w http.ResponseWriter, r *http.Request) {
	var req warmupRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeJSON(w, http.StatusOK, warmupResponse{OK: false, Sets: []models.WarmupSet{}})
		return
	}
	if req.Units == "" {
		req.Units = models.UnitsLb
	}
	if !units.Valid(req.Units) || req.Weight <= 0 {
		writeJSON(w, http.StatusOK, warmupResponse{OK: false, Sets: []models.WarmupSet{}})
		return
	}
	writeJSON(w, http.StatusOK, warmupResponse{OK: true, Sets: progression.WarmupPlan(req.Weight, req.Equipment, req.Units)})
}

func (s *Server) handleRest(w http.ResponseWriter, r *http.Request) {
	var req restRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeJSON(w, http.StatusOK, restResponse{OK: false})
		return
	}
	writeJSON(w, http.StatusOK, restResponse{OK: true, Seconds: progression.RestSeconds(req.Meta, req.Failed)})
}

// decodeJSON decodes a bounded request body. An empty body is an error.
func decodeJSON(w http.ResponseWriter, r *http.Request, v any) error {
	if r.Body == nil {
		return fmt.Errorf("empty body")
	}
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(v); err != nil {
		return fmt.Errorf("decoding body: %w", err)
	}
	return nil
}
