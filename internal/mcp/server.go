package mcp

import (
	"context"
	"log/slog"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/meltforce/liftlog/internal/oracle"
	"github.com/meltforce/liftlog/internal/progression"
	"github.com/meltforce/liftlog/internal/splitparse"
	"github.com/meltforce/liftlog/internal/storage"
)

type contextKey int

const userIDKey contextKey = iota

// UserIDFromContext extracts the user ID injected by the transport layer.
func UserIDFromContext(ctx context.Context) int {
	if id, ok := ctx.Value(userIDKey).(int); ok {
		return id
	}
	return storage.LocalUserID
}

// WithUserID returns a context with the given user ID.
func WithUserID(ctx context.Context, userID int) context.Context {
	return context.WithValue(ctx, userIDKey, userID)
}

// Deps are the collaborators the MCP handlers use.
type Deps struct {
	Data     DataSource
	Advisor  *progression.Advisor
	Parser   *splitparse.Parser
	Settings oracle.Settings
	Log      *slog.Logger
}

// New creates an MCP server with all tools and resources registered.
func New(d Deps, version string) *server.MCPServer {
	s := server.NewMCPServer("LiftLog", version,
		server.WithToolCapabilities(false),
		server.WithResourceCapabilities(false, false),
		server.WithInstructions("LiftLog strength training server. Suggest next working weights, parse training splits, plan warm-ups, and query logged sessions. All data is scoped to the authenticated user."),
	)

	h := newHandlers(d)

	s.AddTools(
		server.ServerTool{Tool: toolSuggestNextWeight, Handler: h.suggestNextWeight},
		server.ServerTool{Tool: toolParseSplit, Handler: h.parseSplit},
		server.ServerTool{Tool: toolWarmupPlan, Handler: h.warmupPlan},
		server.ServerTool{Tool: toolRestTime, Handler: h.restTime},
		server.ServerTool{Tool: toolGetExerciseHistory, Handler: h.getExerciseHistory},
		server.ServerTool{Tool: toolGetSessions, Handler: h.getSessions},
		server.ServerTool{Tool: toolGetTrainingSummary, Handler: h.getTrainingSummary},
	)

	s.AddResources(
		server.ServerResource{Resource: resSplit, Handler: h.split},
		server.ServerResource{Resource: resRecentSessions, Handler: h.recentSessions},
		server.ServerResource{Resource: resStats, Handler: h.stats},
	)

	return s
}

// handlers holds dependencies for MCP tool/resource handlers.
type handlers struct {
	ds       DataSource
	advisor  *progression.Advisor
	parser   *splitparse.Parser
	settings oracle.Settings
	log      *slog.Logger
}

func newHandlers(d Deps) *handlers {
	if d.Advisor == nil {
		d.Advisor = progression.NewAdvisor(nil, d.Log)
	}
	if d.Parser == nil {
		d.Parser = splitparse.NewParser(nil, d.Log)
	}
	return &handlers{ds: d.Data, advisor: d.Advisor, parser: d.Parser, settings: d.Settings, log: d.Log}
}

// --- Resource definitions ---

var resSplit = mcp.NewResource(
	"liftlog://split",
	"Training Split",
	mcp.WithResourceDescription("The saved training split: days with their programmed exercises, sets and rep ranges"),
	mcp.WithMIMEType("application/json"),
)

var resRecentSessions = mcp.NewResource(
	"liftlog://recent_sessions",
	"Recent Sessions",
	mcp.WithResourceDescription("Logged sessions from the last 14 days"),
	mcp.WithMIMEType("application/json"),
)

var resStats = mcp.NewResource(
	"liftlog://stats",
	"Data Stats",
	mcp.WithResourceDescription("Session and set totals, data range and most trained exercises"),
	mcp.WithMIMEType("application/json"),
)
