package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/claude/simplestrength/internal/history"
	"github.com/claude/simplestrength/internal/models"
	"github.com/google/uuid"
	"github.com/mark3labs/mcp-go/mcp"
)

// --- Tool definitions ---

var toolListExercises = mcp.NewTool("get_exercises",
	mcp.WithDescription("List the user's exercises with their tracked attributes (weight, reps, time, distance)."),
	mcp.WithBoolean("include_archived", mcp.Description("Include archived exercises. Defaults to false.")),
)

var toolGetWorkouts = mcp.NewTool("get_workouts",
	mcp.WithDescription("List recent workouts, newest first. Returns name, start/end times, and duration."),
	mcp.WithNumber("limit", mcp.Description("Maximum number of workouts to return. Defaults to 20.")),
)

var toolGetWorkoutDetail = mcp.NewTool("get_workout_detail",
	mcp.WithDescription("Retrieve one workout with all of its sets and the exercises they belong to."),
	mcp.WithString("workout_id", mcp.Required(), mcp.Description("Workout UUID, as returned by get_workouts")),
)

var toolGetExerciseRecords = mcp.NewTool("get_exercise_records",
	mcp.WithDescription("Personal records for one exercise: heaviest weight, most reps, highest workout volume, and best estimated one-rep max."),
	mcp.WithString("exercise", mcp.Required(), mcp.Description("Exercise name (partial match, e.g. 'bench press')")),
)

var toolGetExerciseProgress = mcp.NewTool("get_exercise_progress",
	mcp.WithDescription("Per-workout volume and estimated one-rep max trend for one exercise, oldest first."),
	mcp.WithString("exercise", mcp.Required(), mcp.Description("Exercise name (partial match)")),
)

var toolGetTrainingStreak = mcp.NewTool("get_training_streak",
	mcp.WithDescription("Current training streak in consecutive days plus the number of workouts completed in the last 7 days."),
)

// --- Tool handlers ---

func (h *handlers) listExercises(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	includeArchived := req.GetBool("include_archived", false)
	uid := UserIDFromContext(ctx)

	exercises, err := h.ds.ListExercisesByUser(ctx, uid, includeArchived)
	if err != nil {
		h.log.Error("mcp get_exercises", "error", err)
		return mcp.NewToolResultError("query failed: " + err.Error()), nil
	}

	result, err := mcp.NewToolResultJSON(exercises)
	if err != nil {
		return mcp.NewToolResultError("serialization failed"), nil
	}
	return result, nil
}

func (h *handlers) getWorkouts(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	limit := req.GetInt("limit", 20)
	uid := UserIDFromContext(ctx)

	workouts, err := h.ds.ListWorkoutsByUser(ctx, uid, limit)
	if err != nil {
		h.log.Error("mcp get_workouts", "error", err)
		return mcp.NewToolResultError("query failed: " + err.Error()), nil
	}

	result, err := mcp.NewToolResultJSON(workouts)
	if err != nil {
		return mcp.NewToolResultError("serialization failed"), nil
	}
	return result, nil
}

func (h *handlers) getWorkoutDetail(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	idStr, err := req.RequireString("workout_id")
	if err != nil {
		return mcp.NewToolResultError("workout_id parameter is required"), nil
	}
	id, err := uuid.Parse(idStr)
	if err != nil {
		return mcp.NewToolResultError("invalid workout_id: " + err.Error()), nil
	}

	uid := UserIDFromContext(ctx)
	detail, err := h.ds.GetWorkoutWithSets(ctx, id, uid)
	if err != nil {
		h.log.Error("mcp get_workout_detail", "error", err)
		return mcp.NewToolResultError("query failed: " + err.Error()), nil
	}

	result, err := mcp.NewToolResultJSON(detail)
	if err != nil {
		return mcp.NewToolResultError("serialization failed"), nil
	}
	return result, nil
}

func (h *handlers) getExerciseRecords(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	name, err := req.RequireString("exercise")
	if err != nil {
		return mcp.NewToolResultError("exercise parameter is required"), nil
	}

	uid := UserIDFromContext(ctx)
	ex, err := h.findExercise(ctx, uid, name)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	completed, err := h.ds.ListCompletedWorkouts(ctx, uid)
	if err != nil {
		h.log.Error("mcp get_exercise_records", "error", err)
		return mcp.NewToolResultError("query failed: " + err.Error()), nil
	}

	result, err := mcp.NewToolResultJSON(map[string]any{
		"exercise": ex,
		"records":  history.Records(completed, ex),
	})
	if err != nil {
		return mcp.NewToolResultError("serialization failed"), nil
	}
	return result, nil
}

func (h *handlers) getExerciseProgress(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	name, err := req.RequireString("exercise")
	if err != nil {
		return mcp.NewToolResultError("exercise parameter is required"), nil
	}

	uid := UserIDFromContext(ctx)
	ex, err := h.findExercise(ctx, uid, name)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	completed, err := h.ds.ListCompletedWorkouts(ctx, uid)
	if err != nil {
		h.log.Error("mcp get_exercise_progress", "error", err)
		return mcp.NewToolResultError("query failed: " + err.Error()), nil
	}

	result, err := mcp.NewToolResultJSON(map[string]any{
		"exercise": ex,
		"progress": history.BuildProgress(completed, ex),
	})
	if err != nil {
		return mcp.NewToolResultError("serialization failed"), nil
	}
	return result, nil
}

func (h *handlers) getTrainingStreak(ctx context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	uid := UserIDFromContext(ctx)

	workouts, err := h.ds.ListWorkoutsByUser(ctx, uid, 365)
	if err != nil {
		h.log.Error("mcp get_training_streak", "error", err)
		return mcp.NewToolResultError("query failed: " + err.Error()), nil
	}

	now := time.Now()
	result, err := mcp.NewToolResultJSON(map[string]int{
		"streak":             history.Streak(workouts, now, time.Local),
		"workouts_this_week": history.CompletedThisWeek(workouts, now, time.Local),
	})
	if err != nil {
		return mcp.NewToolResultError("serialization failed"), nil
	}
	return result, nil
}

// findExercise resolves a name query to a single exercise. LLM callers work
// with names, not UUIDs, so matching is case-insensitive: an exact name match
// wins, otherwise a unique substring match. Archived exercises stay
// resolvable so historical records remain queryable.
func (h *handlers) findExercise(ctx context.Context, userID int, query string) (models.Exercise, error) {
	exercises, err := h.ds.ListExercisesByUser(ctx, userID, true)
	if err != nil {
		return models.Exercise{}, fmt.Errorf("query failed: %w", err)
	}

	q := strings.ToLower(strings.TrimSpace(query))
	var matches []models.Exercise
	for _, ex := range exercises {
		name := strings.ToLower(ex.Name)
		if name == q {
			return ex, nil
		}
		if strings.Contains(name, q) {
			matches = append(matches, ex)
		}
	}

	switch len(matches) {
	case 0:
		return models.Exercise{}, fmt.Errorf("no exercise matching %q", query)
	case 1:
		return matches[0], nil
	default:
		names := make([]string, len(matches))
		for i, ex := range matches {
			names[i] = ex.Name
		}
		return models.Exercise{}, fmt.Errorf("ambiguous exercise %q, candidates: %s", query, strings.Join(names, ", "))
	}
}

func jsonResource(uri string, v any) ([]mcp.ResourceContents, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      uri,
			MIMEType: "application/json",
			Text:     string(data),
		},
	}, nil
}
