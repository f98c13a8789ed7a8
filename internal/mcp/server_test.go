package mcp

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"testing"

	"github.com/claude/simplestrength/internal/models"
	"github.com/google/uuid"
)

// TestUserIDFromContextDefault verifies the default user ID (1) when no value
// is set in the context.
func TestUserIDFromContextDefault(t *testing.T) {
	ctx := context.Background()
	if id := UserIDFromContext(ctx); id != 1 {
		t.Errorf("UserIDFromContext(empty) = %d, want 1", id)
	}
}

// TestUserIDFromContextSet verifies the user ID is extracted from context
// after being set by WithUserID.
func TestUserIDFromContextSet(t *testing.T) {
	ctx := WithUserID(context.Background(), 42)
	if id := UserIDFromContext(ctx); id != 42 {
		t.Errorf("UserIDFromContext = %d, want 42", id)
	}
}

// fakeDataSource serves canned data for handler tests.
type fakeDataSource struct {
	exercises []models.Exercise
	workouts  []models.Workout
	completed []models.WorkoutWithSets
}

func (f *fakeDataSource) ListExercisesByUser(_ context.Context, _ int, includeArchived bool) ([]models.Exercise, error) {
	if includeArchived {
		return f.exercises, nil
	}
	var active []models.Exercise
	for _, ex := range f.exercises {
		if !ex.IsArchived {
			active = append(active, ex)
		}
	}
	return active, nil
}

func (f *fakeDataSource) ListWorkoutsByUser(_ context.Context, _, _ int) ([]models.Workout, error) {
	return f.workouts, nil
}

func (f *fakeDataSource) GetWorkoutWithSets(_ context.Context, _ uuid.UUID, _ int) (models.WorkoutWithSets, error) {
	if len(f.completed) == 0 {
		return models.WorkoutWithSets{}, errors.New("workout not found")
	}
	return f.completed[0], nil
}

func (f *fakeDataSource) ListCompletedWorkouts(_ context.Context, _ int) ([]models.WorkoutWithSets, error) {
	return f.completed, nil
}

func exerciseNamed(name string, archived bool) models.Exercise {
	return models.Exercise{
		ID:         models.PersistedID(uuid.New()),
		Name:       name,
		IsArchived: archived,
		Tracking:   models.TrackingComponents{Weight: true, Reps: true},
	}
}

// TestFindExercise verifies name resolution: case-insensitive exact match
// wins over substring matches, a unique substring match resolves, and
// ambiguous or unknown names error.
func TestFindExercise(t *testing.T) {
	ds := &fakeDataSource{exercises: []models.Exercise{
		exerciseNamed("Bench Press", false),
		exerciseNamed("Incline Bench Press", false),
		exerciseNamed("Deadlift", true),
		exerciseNamed("Squat", false),
	}}
	h := &handlers{ds: ds, log: slog.Default()}
	ctx := context.Background()

	tests := []struct {
		query    string
		wantName string
		wantErr  string
	}{
		{query: "bench press", wantName: "Bench Press"},
		{query: "BENCH PRESS", wantName: "Bench Press"},
		{query: "incline", wantName: "Incline Bench Press"},
		{query: "squat", wantName: "Squat"},
		// Archived exercises stay resolvable for historical queries.
		{query: "deadlift", wantName: "Deadlift"},
		{query: "bench", wantErr: "ambiguous"},
		{query: "curl", wantErr: "no exercise"},
	}

	for _, tt := range tests {
		ex, err := h.findExercise(ctx, 1, tt.query)
		if tt.wantErr != "" {
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("findExercise(%q) error = %v, want containing %q", tt.query, err, tt.wantErr)
			}
			continue
		}
		if err != nil {
			t.Errorf("findExercise(%q) unexpected error: %v", tt.query, err)
			continue
		}
		if ex.Name != tt.wantName {
			t.Errorf("findExercise(%q) = %q, want %q", tt.query, ex.Name, tt.wantName)
		}
	}
}
