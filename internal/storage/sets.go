package storage

import (
	"context"
	"errors"
	"fmt"

	"github.com/claude/simplestrength/internal/models"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

const setColumns = `id, workout_id, exercise_id, weight, reps, time_sec, distance_m, notes, set_order, created_at`

// CreateSet records a set against a workout. The order is auto-assigned as
// the current count of the workout's sets, inside the insert itself so
// concurrent creates cannot collide.
func (db *DB) CreateSet(ctx context.Context, workoutID, exerciseID uuid.UUID, input models.SetInput) (models.Set, error) {
	notes := ""
	if input.Notes != nil {
		notes = *input.Notes
	}

	row := db.Pool.QueryRow(ctx,
		`INSERT INTO sets (id, workout_id, exercise_id, weight, reps, time_sec, distance_m, notes, set_order)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8,
		         (SELECT COUNT(*) FROM sets WHERE workout_id = $2))
		 RETURNING `+setColumns,
		uuid.New(), workoutID, exerciseID,
		input.Weight, input.Reps, input.Time, input.Distance, notes)

	set, err := scanSet(row)
	if err != nil {
		return models.Set{}, fmt.Errorf("inserting set: %w", err)
	}
	return set, nil
}

// ListSetsByWorkout retrieves a workout's sets in display order. Order
// values may have gaps after deletions; sorting by them stays correct.
func (db *DB) ListSetsByWorkout(ctx context.Context, workoutID uuid.UUID) ([]models.Set, error) {
	rows, err := db.Pool.Query(ctx,
		`SELECT `+setColumns+` FROM sets
		 WHERE workout_id = $1
		 ORDER BY set_order ASC`,
		workoutID)
	if err != nil {
		return nil, fmt.Errorf("querying workout sets: %w", err)
	}
	defer rows.Close()

	return scanSets(rows)
}

// ListSetsByExercise retrieves a user's sets for one exercise.
func (db *DB) ListSetsByExercise(ctx context.Context, exerciseID uuid.UUID, userID, limit int, mostRecentFirst bool) ([]models.Set, error) {
	if limit <= 0 {
		limit = 50
	}
	direction := "ASC"
	if mostRecentFirst {
		direction = "DESC"
	}

	rows, err := db.Pool.Query(ctx,
		`SELECT s.id, s.workout_id, s.exercise_id, s.weight, s.reps, s.time_sec, s.distance_m, s.notes, s.set_order, s.created_at
		 FROM sets s
		 JOIN workouts w ON w.id = s.workout_id
		 WHERE s.exercise_id = $1 AND w.user_id = $2
		 ORDER BY s.created_at `+direction+`
		 LIMIT $3`,
		exerciseID, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("querying exercise sets: %w", err)
	}
	defer rows.Close()

	return scanSets(rows)
}

// GetMostRecentSetForExerciseAndUser returns the latest set the user
// recorded for an exercise across all workouts, or ErrNotFound.
func (db *DB) GetMostRecentSetForExerciseAndUser(ctx context.Context, exerciseID uuid.UUID, userID int) (*models.Set, error) {
	row := db.Pool.QueryRow(ctx,
		`SELECT s.id, s.workout_id, s.exercise_id, s.weight, s.reps, s.time_sec, s.distance_m, s.notes, s.set_order, s.created_at
		 FROM sets s
		 JOIN workouts w ON w.id = s.workout_id
		 WHERE s.exercise_id = $1 AND w.user_id = $2
		 ORDER BY s.created_at DESC
		 LIMIT 1`,
		exerciseID, userID)

	set, err := scanSet(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("querying most recent set: %w", err)
	}
	return &set, nil
}

// UpdateSet merges the provided field values into an existing set. Identity
// and order are immutable here.
func (db *DB) UpdateSet(ctx context.Context, id uuid.UUID, input models.SetInput) (models.Set, error) {
	row := db.Pool.QueryRow(ctx,
		`UPDATE sets SET
			weight = COALESCE($2, weight),
			reps = COALESCE($3, reps),
			time_sec = COALESCE($4, time_sec),
			distance_m = COALESCE($5, distance_m),
			notes = COALESCE($6, notes)
		 WHERE id = $1
		 RETURNING `+setColumns,
		id, input.Weight, input.Reps, input.Time, input.Distance, input.Notes)

	set, err := scanSet(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return models.Set{}, ErrNotFound
	}
	if err != nil {
		return models.Set{}, fmt.Errorf("updating set: %w", err)
	}
	return set, nil
}

// DeleteSet removes a single set. Remaining order values are deliberately
// not renumbered.
func (db *DB) DeleteSet(ctx context.Context, id uuid.UUID) error {
	tag, err := db.Pool.Exec(ctx, `DELETE FROM sets WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("deleting set: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func scanSet(row pgx.Row) (models.Set, error) {
	var r models.SetRow
	err := row.Scan(&r.ID, &r.WorkoutID, &r.ExerciseID,
		&r.Weight, &r.Reps, &r.Time, &r.Distance, &r.Notes, &r.Order, &r.CreatedAt)
	if err != nil {
		return models.Set{}, err
	}
	return r.Domain(), nil
}

func scanSets(rows pgx.Rows) ([]models.Set, error) {
	var result []models.Set
	for rows.Next() {
		set, err := scanSet(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning set: %w", err)
		}
		result = append(result, set)
	}
	return result, rows.Err()
}
