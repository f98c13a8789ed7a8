package models

import (
	"time"

	"github.com/google/uuid"
)

// User is an account identified by a Tailscale login.
type User struct {
	ID          int       `json:"id"`
	Login       string    `json:"login"`
	DisplayName string    `json:"display_name"`
	CreatedAt   time.Time `json:"created_at"`
}

// TrackingComponents declares which attributes an exercise records. At least
// one component must be enabled at creation time; the creation workflow
// enforces this, the struct itself does not.
type TrackingComponents struct {
	Weight   bool `json:"weight"`
	Reps     bool `json:"reps"`
	Time     bool `json:"time"`
	Distance bool `json:"distance"`
	Notes    bool `json:"notes"`
}

// Any reports whether at least one component is enabled.
func (tc TrackingComponents) Any() bool {
	return tc.Weight || tc.Reps || tc.Time || tc.Distance || tc.Notes
}

// Exercise is a user-defined movement with configurable tracked attributes.
// Archived exercises are hidden from active selection but retained for
// historical set references; an exercise referenced by any set can only be
// archived, never deleted.
type Exercise struct {
	ID         ID                 `json:"id"`
	UserID     int                `json:"user_id"`
	Name       string             `json:"name"`
	Tracking   TrackingComponents `json:"tracking"`
	IsArchived bool               `json:"is_archived"`
	CreatedAt  time.Time          `json:"created_at"`
}

// Workout is one training session. EndTime and Duration stay nil while the
// workout is active; at most one workout per user may be active at a time.
type Workout struct {
	ID        ID         `json:"id"`
	UserID    int        `json:"user_id"`
	Name      string     `json:"name,omitempty"`
	StartTime time.Time  `json:"start_time"`
	EndTime   *time.Time `json:"end_time,omitempty"`
	// Duration is endTime − startTime in whole seconds, set when finished.
	Duration  *int      `json:"duration,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// Active reports whether the workout has not been finished yet.
func (w Workout) Active() bool {
	return w.EndTime == nil
}

// Set is one recorded performance instance of an exercise within a workout.
// Only fields enabled by the parent exercise's tracking components are
// meaningful, though nothing forbids storing others. Order is the canonical
// display sort key: zero-based, assigned at creation, never renumbered, so
// gaps are permitted after deletions.
type Set struct {
	ID         ID       `json:"id"`
	WorkoutID  ID       `json:"workout_id"`
	ExerciseID ID       `json:"exercise_id"`
	Weight     *float64 `json:"weight,omitempty"`
	Reps       *int     `json:"reps,omitempty"`
	// Time is in seconds, Distance in meters.
	Time      *int      `json:"time,omitempty"`
	Distance  *float64  `json:"distance,omitempty"`
	Notes     string    `json:"notes,omitempty"`
	Order     int       `json:"order"`
	CreatedAt time.Time `json:"created_at"`
}

// SetInput carries the mutable field values for creating or updating a set.
// Nil means "not provided" and leaves the existing value untouched on update.
type SetInput struct {
	Weight   *float64 `json:"weight,omitempty"`
	Reps     *int     `json:"reps,omitempty"`
	Time     *int     `json:"time,omitempty"`
	Distance *float64 `json:"distance,omitempty"`
	Notes    *string  `json:"notes,omitempty"`
}

// ExerciseWithLastSet pairs an exercise with the most recent set the user
// recorded for it across all workouts. Computed at read time, never stored.
type ExerciseWithLastSet struct {
	Exercise
	LastSet *Set `json:"last_set,omitempty"`
}

// WorkoutWithSets is a workout with its sets and the exercises they
// reference resolved.
type WorkoutWithSets struct {
	Workout
	Sets      []Set      `json:"sets,omitempty"`
	Exercises []Exercise `json:"exercises,omitempty"`
}

// RecordKind names a personal-record category.
type RecordKind string

const (
	RecordHeaviestWeight RecordKind = "heaviest_weight"
	RecordMostReps       RecordKind = "most_reps"
	RecordHighestVolume  RecordKind = "highest_volume"
	RecordBest1RM        RecordKind = "best_1rm"
)

// PersonalRecord is the best-ever observed value for one record category on
// one exercise. Derived from completed workouts, not separately persisted.
type PersonalRecord struct {
	Kind  RecordKind `json:"kind"`
	Value float64    `json:"value"`
	Date  time.Time  `json:"date"`
	// Details carries contextual info, e.g. the reps accompanying a
	// heaviest-weight record.
	Details string `json:"details,omitempty"`
}

// ExerciseRow and friends are rows ready for the exercises/workouts/sets
// tables, with server-side identities resolved.
type ExerciseRow struct {
	ID         uuid.UUID
	UserID     int
	Name       string
	Tracking   TrackingComponents
	IsArchived bool
	CreatedAt  time.Time
}

// WorkoutRow is a row ready for insertion into the workouts table.
type WorkoutRow struct {
	ID        uuid.UUID
	UserID    int
	Name      string
	StartTime time.Time
	EndTime   *time.Time
	Duration  *int
	CreatedAt time.Time
}

// SetRow is a row ready for insertion into the sets table.
type SetRow struct {
	ID         uuid.UUID
	WorkoutID  uuid.UUID
	ExerciseID uuid.UUID
	Weight     *float64
	Reps       *int
	Time       *int
	Distance   *float64
	Notes      string
	Order      int
	CreatedAt  time.Time
}

// Domain converts a persisted exercise row to its domain form.
func (r ExerciseRow) Domain() Exercise {
	return Exercise{
		ID:         PersistedID(r.ID),
		UserID:     r.UserID,
		Name:       r.Name,
		Tracking:   r.Tracking,
		IsArchived: r.IsArchived,
		CreatedAt:  r.CreatedAt,
	}
}

// Domain converts a persisted workout row to its domain form.
func (r WorkoutRow) Domain() Workout {
	return Workout{
		ID:        PersistedID(r.ID),
		UserID:    r.UserID,
		Name:      r.Name,
		StartTime: r.StartTime,
		EndTime:   r.EndTime,
		Duration:  r.Duration,
		CreatedAt: r.CreatedAt,
	}
}

// Domain converts a persisted set row to its domain form.
func (r SetRow) Domain() Set {
	return Set{
		ID:         PersistedID(r.ID),
		WorkoutID:  PersistedID(r.WorkoutID),
		ExerciseID: PersistedID(r.ExerciseID),
		Weight:     r.Weight,
		Reps:       r.Reps,
		Time:       r.Time,
		Distance:   r.Distance,
		Notes:      r.Notes,
		Order:      r.Order,
		CreatedAt:  r.CreatedAt,
	}
}
