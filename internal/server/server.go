package server

import (
	"context"
	"io/fs"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/meltforce/liftlog/internal/ingest/alpha"
	lmcp "github.com/meltforce/liftlog/internal/mcp"
	"github.com/meltforce/liftlog/internal/models"
	"github.com/meltforce/liftlog/internal/oracle"
	"github.com/meltforce/liftlog/internal/progression"
	"github.com/meltforce/liftlog/internal/splitparse"
	"github.com/meltforce/liftlog/internal/storage"
)

// Store is the persistence the HTTP API needs.
type Store interface {
	UserResolver
	alpha.SessionStore
	InsertSession(ctx context.Context, s models.LoggedSession) (string, error)
	QuerySessions(ctx context.Context, start, end time.Time, userID int) ([]models.LoggedSession, error)
	DeleteSession(ctx context.Context, id string, userID int) error
	ExerciseHistory(ctx context.Context, userID int, exercise string, limit int) (*models.ExerciseHistory, error)
	SaveSplit(ctx context.Context, userID int, text string, split models.ParsedSplit) (*models.SavedSplit, error)
	GetSplit(ctx context.Context, userID int) (*models.SavedSplit, error)
	InsertImportLog(ctx context.Context, log storage.ImportLog) (int64, error)
	UpdateImportLog(ctx context.Context, id int64, log storage.ImportLog) error
	QueryImportLogs(ctx context.Context, userID, limit int) ([]storage.ImportLog, error)
	GetTrainingSummary(ctx context.Context, start, end time.Time, bucket string, userID int) ([]storage.TrainingSummaryPeriod, error)
	GetDataStats(ctx context.Context, userID int) (*storage.DataStats, error)
}

// Compile-time check: *storage.DB satisfies Store.
var _ Store = (*storage.DB)(nil)

// Deps are the collaborators a Server is built from.
type Deps struct {
	DB       Store
	Advisor  *progression.Advisor
	Parser   *splitparse.Parser
	Alpha    *alpha.Provider
	Settings oracle.Settings
	APIKey   string
	Log      *slog.Logger
}

// Server holds dependencies for HTTP handlers.
type Server struct {
	db       Store
	advisor  *progression.Advisor
	parser   *splitparse.Parser
	alpha    *alpha.Provider
	settings oracle.Settings
	log      *slog.Logger
	apiKey   string
	router   chi.Router
	identity func(http.Handler) http.Handler
	mcp      http.Handler
}

// New creates a new Server with all routes configured. Identity defaults to
// the local dev user until SetTailscale is called.
func New(d Deps) *Server {
	if d.Advisor == nil {
		d.Advisor = progression.NewAdvisor(nil, d.Log)
	}
	if d.Parser == nil {
		d.Parser = splitparse.NewParser(nil, d.Log)
	}
	s := &Server{
		db:       d.DB,
		advisor:  d.Advisor,
		parser:   d.Parser,
		alpha:    d.Alpha,
		settings: d.Settings,
		log:      d.Log,
		apiKey:   d.APIKey,
		router:   chi.NewRouter(),
		identity: DevIdentity,
	}
	s.routes()
	return s
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

func (s *Server) routes() {
	s.router.Use(RequestLogging(s.log))
	s.router.Use(CORS)

	// Import endpoint (API key required, acts as the local user)
	s.router.Route("/api/v1/import", func(r chi.Router) {
		r.With(APIKeyAuth(s.apiKey)).Post("/alpha", s.handleAlphaImport)
		r.With(s.withIdentity).Get("/logs", s.handleImportLogs)
	})

	s.router.Group(func(r chi.Router) {
		r.Use(s.withIdentity)

		// Stateless cores: always 200 with ok in the body.
		r.Post("/api/v1/suggest", s.handleSuggest)
		r.Post("/api/v1/split/parse", s.handleSplitParse)
		r.Post("/api/v1/warmup", s.handleWarmup)
		r.Post("/api/v1/rest", s.handleRest)

		r.Get("/api/v1/me", s.handleMe)
		r.Get("/api/v1/split", s.handleGetSplit)
		r.Put("/api/v1/split", s.handleSaveSplit)
		r.Post("/api/v1/sessions", s.handleLogSession)
		r.Get("/api/v1/sessions", s.handleQuerySessions)
		r.Delete("/api/v1/sessions/{id}", s.handleDeleteSession)
		r.Get("/api/v1/exercises/{name}/history", s.handleExerciseHistory)
		r.Get("/api/v1/exercises/{name}/suggestion", s.handleExerciseSuggestion)
		r.Get("/api/v1/training/summary", s.handleTrainingSummary)
		r.Get("/api/v1/stats", s.handleStats)

		r.Handle("/mcp", http.HandlerFunc(s.handleMCP))
	})
}

// withIdentity applies the current identity middleware. It is resolved per
// request so SetTailscale takes effect after routes are built.
func (s *Server) withIdentity(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s.identity(next).ServeHTTP(w, r)
	})
}

// SetTailscale switches caller identity from the dev user to tailnet WhoIs.
func (s *Server) SetTailscale(who WhoIser) {
	s.identity = TailscaleIdentity(who, s.db, s.log)
}

// SetMCP mounts the MCP streamable HTTP handler at /mcp.
func (s *Server) SetMCP(h http.Handler) {
	s.mcp = h
}

func (s *Server) handleMCP(w http.ResponseWriter, r *http.Request) {
	if s.mcp == nil {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "mcp not enabled"})
		return
	}
	ctx := lmcp.WithUserID(r.Context(), userIDFromContext(r))
	s.mcp.ServeHTTP(w, r.WithContext(ctx))
}

// SetFrontend mounts a static frontend filesystem.
// Unmatched routes serve index.html for client-side routing.
func (s *Server) SetFrontend(webFS fs.FS) {
	fileServer := http.FileServerFS(webFS)

	s.router.NotFound(func(w http.ResponseWriter, r *http.Request) {
		f, err := webFS.Open(r.URL.Path[1:])
		if err == nil {
			f.Close()
			fileServer.ServeHTTP(w, r)
			return
		}
		r.URL.Path = "/"
		fileServer.ServeHTTP(w, r)
	})
}
