package mcp

import (
	"log/slog"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

// New creates an MCP server with all tools and resources registered.
func New(ds DataSource, version string, log *slog.Logger) *server.MCPServer {
	s := server.NewMCPServer("Vizofit", version,
		server.WithToolCapabilities(false),
		server.WithResourceCapabilities(false, false),
		server.WithInstructions("Vizofit routine library. Browse saved equipment routines, read one at any intensity level and unit system, and review completed workouts."),
	)

	h := &handlers{ds: ds, log: log}

	// Tools
	s.AddTools(
		server.ServerTool{Tool: toolListSavedWorkouts, Handler: h.listSavedWorkouts},
		server.ServerTool{Tool: toolGetWorkout, Handler: h.getWorkout},
		server.ServerTool{Tool: toolGetActivitySummary, Handler: h.getActivitySummary},
	)

	// Resources
	s.AddResources(
		server.ServerResource{Resource: resLibrary, Handler: h.library},
	)

	return s
}

// handlers holds dependencies for MCP tool/resource handlers.
type handlers struct {
	ds  DataSource
	log *slog.Logger
}

// --- Resource definitions ---

var resLibrary = mcp.NewResource(
	"vizofit://library",
	"Routine Library",
	mcp.WithResourceDescription("All saved routines, favorites first, at their stored (baseline) intensity"),
	mcp.WithMIMEType("application/json"),
)
