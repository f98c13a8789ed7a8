package storage

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/claude/simplestrength/internal/models"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

const workoutColumns = `id, user_id, name, start_time, end_time, duration_sec, created_at`

// CreateWorkout starts a new workout. The partial unique index on active
// workouts enforces at-most-one-active per user; a violation surfaces as
// ErrActiveWorkoutExists.
func (db *DB) CreateWorkout(ctx context.Context, userID int, name string, startTime time.Time) (models.Workout, error) {
	row := models.WorkoutRow{ID: uuid.New(), UserID: userID, Name: name, StartTime: startTime}
	err := db.Pool.QueryRow(ctx,
		`INSERT INTO workouts (id, user_id, name, start_time)
		 VALUES ($1,$2,$3,$4)
		 RETURNING created_at`,
		row.ID, row.UserID, row.Name, row.StartTime,
	).Scan(&row.CreatedAt)
	if isUniqueViolation(err) {
		return models.Workout{}, ErrActiveWorkoutExists
	}
	if err != nil {
		return models.Workout{}, fmt.Errorf("inserting workout: %w", err)
	}
	return row.Domain(), nil
}

// FinishWorkout stamps the end time and derived duration on an active
// workout. Finishing twice is an error: the update only matches rows with
// no end time, and a zero-row result is disambiguated against existence.
func (db *DB) FinishWorkout(ctx context.Context, id uuid.UUID, userID int, endTime time.Time) (models.Workout, error) {
	row := db.Pool.QueryRow(ctx,
		`UPDATE workouts
		 SET end_time = $3,
		     duration_sec = FLOOR(EXTRACT(EPOCH FROM ($3 - start_time)))
		 WHERE id = $1 AND user_id = $2 AND end_time IS NULL
		 RETURNING `+workoutColumns,
		id, userID, endTime)

	w, err := scanWorkout(row)
	if errors.Is(err, pgx.ErrNoRows) {
		var exists bool
		if exErr := db.Pool.QueryRow(ctx,
			`SELECT EXISTS (SELECT 1 FROM workouts WHERE id = $1 AND user_id = $2)`,
			id, userID,
		).Scan(&exists); exErr != nil {
			return models.Workout{}, fmt.Errorf("checking workout: %w", exErr)
		}
		if exists {
			return models.Workout{}, ErrWorkoutFinished
		}
		return models.Workout{}, ErrNotFound
	}
	if err != nil {
		return models.Workout{}, fmt.Errorf("finishing workout: %w", err)
	}
	return w, nil
}

// ListWorkoutsByUser retrieves a user's workouts, most recent first.
func (db *DB) ListWorkoutsByUser(ctx context.Context, userID, limit int) ([]models.Workout, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := db.Pool.Query(ctx,
		`SELECT `+workoutColumns+` FROM workouts
		 WHERE user_id = $1
		 ORDER BY start_time DESC
		 LIMIT $2`,
		userID, limit)
	if err != nil {
		return nil, fmt.Errorf("querying workouts: %w", err)
	}
	defer rows.Close()

	return scanWorkouts(rows)
}

// GetActiveWorkout returns the user's single unfinished workout, or
// ErrNotFound when there is none.
func (db *DB) GetActiveWorkout(ctx context.Context, userID int) (models.Workout, error) {
	row := db.Pool.QueryRow(ctx,
		`SELECT `+workoutColumns+` FROM workouts
		 WHERE user_id = $1 AND end_time IS NULL`,
		userID)

	w, err := scanWorkout(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return models.Workout{}, ErrNotFound
	}
	if err != nil {
		return models.Workout{}, fmt.Errorf("querying active workout: %w", err)
	}
	return w, nil
}

// GetWorkoutWithSets retrieves a workout with its sets in display order and
// the exercises those sets reference.
func (db *DB) GetWorkoutWithSets(ctx context.Context, id uuid.UUID, userID int) (models.WorkoutWithSets, error) {
	row := db.Pool.QueryRow(ctx,
		`SELECT `+workoutColumns+` FROM workouts WHERE id = $1 AND user_id = $2`,
		id, userID)

	w, err := scanWorkout(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return models.WorkoutWithSets{}, ErrNotFound
	}
	if err != nil {
		return models.WorkoutWithSets{}, fmt.Errorf("querying workout: %w", err)
	}

	detail := models.WorkoutWithSets{Workout: w}
	detail.Sets, err = db.ListSetsByWorkout(ctx, id)
	if err != nil {
		return models.WorkoutWithSets{}, err
	}

	detail.Exercises, err = db.exercisesForSets(ctx, detail.Sets)
	if err != nil {
		return models.WorkoutWithSets{}, err
	}
	return detail, nil
}

// ListCompletedWorkouts retrieves all of a user's finished workouts with
// their sets resolved, oldest first. This is the history analyzer's input.
func (db *DB) ListCompletedWorkouts(ctx context.Context, userID int) ([]models.WorkoutWithSets, error) {
	rows, err := db.Pool.Query(ctx,
		`SELECT `+workoutColumns+` FROM workouts
		 WHERE user_id = $1 AND end_time IS NOT NULL
		 ORDER BY end_time ASC`,
		userID)
	if err != nil {
		return nil, fmt.Errorf("querying completed workouts: %w", err)
	}
	defer rows.Close()

	workouts, err := scanWorkouts(rows)
	if err != nil {
		return nil, err
	}

	out := make([]models.WorkoutWithSets, 0, len(workouts))
	for _, w := range workouts {
		sets, err := db.ListSetsByWorkout(ctx, w.ID.Server)
		if err != nil {
			return nil, err
		}
		out = append(out, models.WorkoutWithSets{Workout: w, Sets: sets})
	}
	return out, nil
}

// DeleteWorkout removes a workout; its sets go with it via the cascade.
func (db *DB) DeleteWorkout(ctx context.Context, id uuid.UUID, userID int) error {
	tag, err := db.Pool.Exec(ctx,
		`DELETE FROM workouts WHERE id = $1 AND user_id = $2`, id, userID)
	if err != nil {
		return fmt.Errorf("deleting workout: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// SaveFinishedWorkout persists a completed session bundle in one
// transaction: the finished workout row plus all its sets, keeping the
// session-assigned order values. Server UUIDs are minted here; the returned
// workout and sets carry them so the caller can reconcile its local IDs.
func (db *DB) SaveFinishedWorkout(ctx context.Context, w models.Workout, sets []models.Set) (models.Workout, []models.Set, error) {
	if w.EndTime == nil || w.Duration == nil {
		return models.Workout{}, nil, fmt.Errorf("saving workout: missing end time")
	}

	tx, err := db.Pool.Begin(ctx)
	if err != nil {
		return models.Workout{}, nil, fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	workoutID := uuid.New()
	err = tx.QueryRow(ctx,
		`INSERT INTO workouts (id, user_id, name, start_time, end_time, duration_sec)
		 VALUES ($1,$2,$3,$4,$5,$6)
		 RETURNING created_at`,
		workoutID, w.UserID, w.Name, w.StartTime, w.EndTime, w.Duration,
	).Scan(&w.CreatedAt)
	if err != nil {
		return models.Workout{}, nil, fmt.Errorf("inserting finished workout: %w", err)
	}
	w.ID.Reconcile(workoutID)

	saved := make([]models.Set, 0, len(sets))
	for _, set := range sets {
		if !set.ExerciseID.IsPersisted() {
			return models.Workout{}, nil, fmt.Errorf("saving set: exercise %s has no server identity", set.ExerciseID)
		}
		setID := uuid.New()
		_, err = tx.Exec(ctx,
			`INSERT INTO sets (id, workout_id, exercise_id, weight, reps, time_sec, distance_m, notes, set_order, created_at)
			 VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10)`,
			setID, workoutID, set.ExerciseID.Server,
			set.Weight, set.Reps, set.Time, set.Distance, set.Notes, set.Order, set.CreatedAt)
		if err != nil {
			return models.Workout{}, nil, fmt.Errorf("inserting set: %w", err)
		}
		set.ID.Reconcile(setID)
		set.WorkoutID.Reconcile(workoutID)
		saved = append(saved, set)
	}

	if err := tx.Commit(ctx); err != nil {
		return models.Workout{}, nil, fmt.Errorf("committing workout: %w", err)
	}
	return w, saved, nil
}

func (db *DB) exercisesForSets(ctx context.Context, sets []models.Set) ([]models.Exercise, error) {
	seen := make(map[uuid.UUID]bool)
	var ids []uuid.UUID
	for _, set := range sets {
		id := set.ExerciseID.Server
		if !seen[id] {
			seen[id] = true
			ids = append(ids, id)
		}
	}
	if len(ids) == 0 {
		return nil, nil
	}

	rows, err := db.Pool.Query(ctx,
		`SELECT `+exerciseColumns+` FROM exercises WHERE id = ANY($1)`, ids)
	if err != nil {
		return nil, fmt.Errorf("querying set exercises: %w", err)
	}
	defer rows.Close()

	return scanExercises(rows)
}

func scanWorkout(row pgx.Row) (models.Workout, error) {
	var r models.WorkoutRow
	err := row.Scan(&r.ID, &r.UserID, &r.Name, &r.StartTime, &r.EndTime, &r.Duration, &r.CreatedAt)
	if err != nil {
		return models.Workout{}, err
	}
	return r.Domain(), nil
}

func scanWorkouts(rows pgx.Rows) ([]models.Workout, error) {
	var result []models.Workout
	for rows.Next() {
		w, err := scanWorkout(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning workout: %w", err)
		}
		result = append(result, w)
	}
	return result, rows.Err()
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}
