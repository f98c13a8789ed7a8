package mcp

import (
	"context"
	"log/slog"
	"time"

	"github.com/claude/simplestrength/internal/models"
	"github.com/claude/simplestrength/internal/storage"
	"github.com/google/uuid"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

type contextKey int

const userIDKey contextKey = iota

// UserIDFromContext extracts the user ID injected by the transport layer.
func UserIDFromContext(ctx context.Context) int {
	if id, ok := ctx.Value(userIDKey).(int); ok {
		return id
	}
	return 1
}

// WithUserID returns a context with the given user ID.
func WithUserID(ctx context.Context, userID int) context.Context {
	return context.WithValue(ctx, userIDKey, userID)
}

// DataSource abstracts the data layer for MCP tools. *storage.DB satisfies
// it directly.
type DataSource interface {
	ListExercisesByUser(ctx context.Context, userID int, includeArchived bool) ([]models.Exercise, error)
	ListWorkoutsByUser(ctx context.Context, userID, limit int) ([]models.Workout, error)
	GetWorkoutWithSets(ctx context.Context, id uuid.UUID, userID int) (models.WorkoutWithSets, error)
	ListCompletedWorkouts(ctx context.Context, userID int) ([]models.WorkoutWithSets, error)
}

// Compile-time check: *storage.DB satisfies DataSource.
var _ DataSource = (*storage.DB)(nil)

// New creates an MCP server with all tools and resources registered.
func New(ds DataSource, version string, log *slog.Logger) *server.MCPServer {
	s := server.NewMCPServer("SimpleStrength", version,
		server.WithToolCapabilities(false),
		server.WithResourceCapabilities(false, false),
		server.WithInstructions("SimpleStrength workout tracking server. Query the exercise library, workout history, personal records, progress trends, and training streaks. All data is scoped to the authenticated user."),
	)

	h := &handlers{ds: ds, log: log}

	s.AddTools(
		server.ServerTool{Tool: toolListExercises, Handler: h.listExercises},
		server.ServerTool{Tool: toolGetWorkouts, Handler: h.getWorkouts},
		server.ServerTool{Tool: toolGetWorkoutDetail, Handler: h.getWorkoutDetail},
		server.ServerTool{Tool: toolGetExerciseRecords, Handler: h.getExerciseRecords},
		server.ServerTool{Tool: toolGetExerciseProgress, Handler: h.getExerciseProgress},
		server.ServerTool{Tool: toolGetTrainingStreak, Handler: h.getTrainingStreak},
	)

	s.AddResources(
		server.ServerResource{Resource: resRecentWorkouts, Handler: h.recentWorkouts},
		server.ServerResource{Resource: resExerciseLibrary, Handler: h.exerciseLibrary},
	)

	return s
}

// handlers holds dependencies for MCP tool/resource handlers.
type handlers struct {
	ds  DataSource
	log *slog.Logger
}

// --- Resource definitions ---

var resRecentWorkouts = mcp.NewResource(
	"simplestrength://recent_workouts",
	"Recent Workouts",
	mcp.WithResourceDescription("Workouts from the last 14 days with their sets"),
	mcp.WithMIMEType("application/json"),
)

var resExerciseLibrary = mcp.NewResource(
	"simplestrength://exercise_library",
	"Exercise Library",
	mcp.WithResourceDescription("All active exercises with their tracked attributes"),
	mcp.WithMIMEType("application/json"),
)

func (h *handlers) recentWorkouts(ctx context.Context, req mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	uid := UserIDFromContext(ctx)
	completed, err := h.ds.ListCompletedWorkouts(ctx, uid)
	if err != nil {
		return nil, err
	}

	cutoff := time.Now().AddDate(0, 0, -14)
	var recent []models.WorkoutWithSets
	for _, w := range completed {
		if w.EndTime != nil && w.EndTime.After(cutoff) {
			recent = append(recent, w)
		}
	}
	return jsonResource(req.Params.URI, recent)
}

func (h *handlers) exerciseLibrary(ctx context.Context, req mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	uid := UserIDFromContext(ctx)
	exercises, err := h.ds.ListExercisesByUser(ctx, uid, false)
	if err != nil {
		return nil, err
	}
	return jsonResource(req.Params.URI, exercises)
}
