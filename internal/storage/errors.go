package storage

import "errors"

// Sentinel errors distinguishing the failure kinds callers act on. Handlers
// map these to HTTP statuses; everything else is a plain internal failure.
var (
	// ErrNotFound means the identified row does not exist (or belongs to
	// another user). The storage layer is the authority on existence, so
	// unlike the in-memory session it always reports this explicitly.
	ErrNotFound = errors.New("not found")

	// ErrWorkoutFinished means finish was called on a workout that already
	// has an end time. A workout transitions to finished exactly once.
	ErrWorkoutFinished = errors.New("workout already finished")

	// ErrActiveWorkoutExists means the user already has a workout without
	// an end time. At most one workout per user may be active.
	ErrActiveWorkoutExists = errors.New("active workout already exists")

	// ErrExerciseInUse means the exercise is referenced by at least one
	// set and can only be archived, not deleted.
	ErrExerciseInUse = errors.New("exercise is referenced by sets")

	// ErrInvalidExercise means the exercise fails its creation invariants:
	// empty name or no tracking component enabled.
	ErrInvalidExercise = errors.New("invalid exercise")
)
