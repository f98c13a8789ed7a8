package storage

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/claude/simplestrength/internal/models"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

const exerciseColumns = `id, user_id, name, track_weight, track_reps, track_time, track_distance, track_notes, is_archived, created_at`

// CreateExercise inserts a new exercise for a user. The creation workflow
// enforces the entity invariants here: a non-empty name and at least one
// enabled tracking component.
func (db *DB) CreateExercise(ctx context.Context, userID int, name string, tracking models.TrackingComponents) (models.Exercise, error) {
	name = strings.TrimSpace(name)
	if name == "" || !tracking.Any() {
		return models.Exercise{}, ErrInvalidExercise
	}

	row := models.ExerciseRow{ID: uuid.New(), UserID: userID, Name: name, Tracking: tracking}
	err := db.Pool.QueryRow(ctx,
		`INSERT INTO exercises (id, user_id, name, track_weight, track_reps, track_time, track_distance, track_notes)
		 VALUES ($1,$2,$3,$4,$5,$6,$7,$8)
		 RETURNING created_at`,
		row.ID, row.UserID, row.Name,
		tracking.Weight, tracking.Reps, tracking.Time, tracking.Distance, tracking.Notes,
	).Scan(&row.CreatedAt)
	if err != nil {
		return models.Exercise{}, fmt.Errorf("inserting exercise: %w", err)
	}
	return row.Domain(), nil
}

// ListExercisesByUser retrieves a user's exercises, oldest first. Archived
// exercises are excluded unless includeArchived is set; they stay in the
// table either way so historical sets keep a valid reference.
func (db *DB) ListExercisesByUser(ctx context.Context, userID int, includeArchived bool) ([]models.Exercise, error) {
	query := `SELECT ` + exerciseColumns + ` FROM exercises WHERE user_id = $1`
	if !includeArchived {
		query += ` AND NOT is_archived`
	}
	query += ` ORDER BY created_at ASC`

	rows, err := db.Pool.Query(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("querying exercises: %w", err)
	}
	defer rows.Close()

	return scanExercises(rows)
}

// GetExercise retrieves a single exercise by ID.
func (db *DB) GetExercise(ctx context.Context, id uuid.UUID, userID int) (models.Exercise, error) {
	row := db.Pool.QueryRow(ctx,
		`SELECT `+exerciseColumns+` FROM exercises WHERE id = $1 AND user_id = $2`,
		id, userID)

	ex, err := scanExercise(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return models.Exercise{}, ErrNotFound
	}
	if err != nil {
		return models.Exercise{}, fmt.Errorf("querying exercise: %w", err)
	}
	return ex, nil
}

// UpdateExercise changes an exercise's name and/or tracking components. Nil
// arguments leave the current value in place.
func (db *DB) UpdateExercise(ctx context.Context, id uuid.UUID, userID int, name *string, tracking *models.TrackingComponents) (models.Exercise, error) {
	if name != nil {
		trimmed := strings.TrimSpace(*name)
		if trimmed == "" {
			return models.Exercise{}, ErrInvalidExercise
		}
		name = &trimmed
	}
	if tracking != nil && !tracking.Any() {
		return models.Exercise{}, ErrInvalidExercise
	}

	var trackCols []*bool
	if tracking != nil {
		trackCols = []*bool{&tracking.Weight, &tracking.Reps, &tracking.Time, &tracking.Distance, &tracking.Notes}
	} else {
		trackCols = make([]*bool, 5)
	}

	row := db.Pool.QueryRow(ctx,
		`UPDATE exercises SET
			name = COALESCE($3, name),
			track_weight = COALESCE($4, track_weight),
			track_reps = COALESCE($5, track_reps),
			track_time = COALESCE($6, track_time),
			track_distance = COALESCE($7, track_distance),
			track_notes = COALESCE($8, track_notes)
		 WHERE id = $1 AND user_id = $2
		 RETURNING `+exerciseColumns,
		id, userID, name, trackCols[0], trackCols[1], trackCols[2], trackCols[3], trackCols[4])

	ex, err := scanExercise(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return models.Exercise{}, ErrNotFound
	}
	if err != nil {
		return models.Exercise{}, fmt.Errorf("updating exercise: %w", err)
	}
	return ex, nil
}

// ArchiveExercise hides an exercise from active selection without touching
// its historical sets.
func (db *DB) ArchiveExercise(ctx context.Context, id uuid.UUID, userID int) error {
	tag, err := db.Pool.Exec(ctx,
		`UPDATE exercises SET is_archived = TRUE WHERE id = $1 AND user_id = $2`,
		id, userID)
	if err != nil {
		return fmt.Errorf("archiving exercise: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// DeleteExercise removes an exercise permanently. Exercises referenced by
// any set cannot be deleted — archive them instead.
func (db *DB) DeleteExercise(ctx context.Context, id uuid.UUID, userID int) error {
	var inUse bool
	err := db.Pool.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM sets WHERE exercise_id = $1)`, id,
	).Scan(&inUse)
	if err != nil {
		return fmt.Errorf("checking exercise references: %w", err)
	}
	if inUse {
		return ErrExerciseInUse
	}

	tag, err := db.Pool.Exec(ctx,
		`DELETE FROM exercises WHERE id = $1 AND user_id = $2`, id, userID)
	if err != nil {
		return fmt.Errorf("deleting exercise: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// ListExercisesWithLastSet returns the user's active exercises, each paired
// with the most recent set the user recorded for it across all workouts.
// This is the read model backing the "last time" context during a session.
func (db *DB) ListExercisesWithLastSet(ctx context.Context, userID int) ([]models.ExerciseWithLastSet, error) {
	exercises, err := db.ListExercisesByUser(ctx, userID, false)
	if err != nil {
		return nil, err
	}

	out := make([]models.ExerciseWithLastSet, 0, len(exercises))
	for _, ex := range exercises {
		last, err := db.GetMostRecentSetForExerciseAndUser(ctx, ex.ID.Server, userID)
		if err != nil && !errors.Is(err, ErrNotFound) {
			return nil, err
		}
		out = append(out, models.ExerciseWithLastSet{Exercise: ex, LastSet: last})
	}
	return out, nil
}

func scanExercise(row pgx.Row) (models.Exercise, error) {
	var r models.ExerciseRow
	err := row.Scan(&r.ID, &r.UserID, &r.Name,
		&r.Tracking.Weight, &r.Tracking.Reps, &r.Tracking.Time, &r.Tracking.Distance, &r.Tracking.Notes,
		&r.IsArchived, &r.CreatedAt)
	if err != nil {
		return models.Exercise{}, err
	}
	return r.Domain(), nil
}

func scanExercises(rows pgx.Rows) ([]models.Exercise, error) {
	var result []models.Exercise
	for rows.Next() {
		ex, err := scanExercise(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning exercise: %w", err)
		}
		result = append(result, ex)
	}
	return result, rows.Err()
}
