// Package session owns the single active workout: its lifecycle, exercise
// membership, and set sequencing. A Session is an explicitly constructed
// value the host injects wherever it is needed; there is no package-level
// state, so tests and multi-user hosts can run as many instances as they
// want.
package session

import (
	"errors"
	"sync"
	"time"

	"github.com/claude/simplestrength/internal/models"
)

var (
	// ErrNoActiveWorkout is returned by operations that require an active
	// workout when the session is idle.
	ErrNoActiveWorkout = errors.New("no active workout")
	// ErrExerciseNotInWorkout is returned when a set targets an exercise
	// that has not been added to the session. Rejecting here keeps the
	// invariant that every set belongs to a currently-present exercise.
	ErrExerciseNotInWorkout = errors.New("exercise not in workout")
)

// Session is the workout session state machine. Two states: idle (no active
// workout) and active. There is no paused state; elapsed time is always
// wall clock since start.
//
// All operations run synchronously to completion under one mutex. The only
// concurrent reader in practice is the elapsed-time ticker, which never
// mutates; the lock keeps that read safe without any further coordination
// from the host.
type Session struct {
	mu  sync.Mutex
	now func() time.Time

	workout   *models.Workout
	sets      []models.Set
	exercises []models.ExerciseWithLastSet
}

// Option configures a Session.
type Option func(*Session)

// WithClock replaces the wall clock, for tests.
func WithClock(now func() time.Time) Option {
	return func(s *Session) { s.now = now }
}

// New returns an idle session.
func New(opts ...Option) *Session {
	s := &Session{now: time.Now}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Active reports whether a workout is in progress.
func (s *Session) Active() bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.workout != nil
}

// Workout returns a copy of the active workout, or nil when idle.
func (s *Session) Workout() *models.Workout {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.workout == nil {
		return nil
	}
	w := *s.workout
	return &w
}

// Sets returns the session's sets across all exercises, in insertion order.
func (s *Session) Sets() []models.Set {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]models.Set, len(s.sets))
	copy(out, s.sets)
	return out
}

// Exercises returns the exercises added to this session, in the order they
// were added, each enriched with its most recent historical set.
func (s *Session) Exercises() []models.ExerciseWithLastSet {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]models.ExerciseWithLastSet, len(s.exercises))
	copy(out, s.exercises)
	return out
}

// Elapsed is the whole seconds since the workout started, recomputed from
// the start anchor on every call so missed ticks self-correct. Zero when
// idle.
func (s *Session) Elapsed() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.workout == nil {
		return 0
	}
	return int(s.now().Sub(s.workout.StartTime) / time.Second)
}

// Start begins a new workout with startTime = now and empty collections.
//
// Precondition: the session is idle. Start does not re-validate this;
// calling it while a workout is active silently replaces the session and
// loses its data, so hosts must guard with Active() first.
func (s *Session) Start(userID int) models.Workout {
	s.mu.Lock()
	defer s.mu.Unlock()

	w := models.Workout{
		ID:        models.NewLocalID(),
		UserID:    userID,
		StartTime: s.now(),
		CreatedAt: s.now(),
	}
	s.workout = &w
	s.sets = nil
	s.exercises = nil
	return w
}

// Summary is the finished workout bundle End hands back to the host. The
// session gives up ownership: the host must persist the bundle before
// treating the workout as durably saved, and is free to retry on failure —
// the data lives here, not in the session.
type Summary struct {
	Workout   models.Workout               `json:"workout"`
	Sets      []models.Set                 `json:"sets"`
	Exercises []models.ExerciseWithLastSet `json:"exercises"`
}

// End finishes the active workout: stamps endTime, computes the duration in
// whole seconds, clears the in-memory state, and returns everything the
// session accumulated. Returns ErrNoActiveWorkout when idle.
func (s *Session) End() (*Summary, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.workout == nil {
		return nil, ErrNoActiveWorkout
	}

	end := s.now()
	duration := int(end.Sub(s.workout.StartTime) / time.Second)
	w := *s.workout
	w.EndTime = &end
	w.Duration = &duration

	sum := &Summary{Workout: w, Sets: s.sets, Exercises: s.exercises}
	s.clear()
	return sum, nil
}

// Clear force-resets to idle, discarding all in-memory state. Used for
// abandon flows; unlike End it hands nothing back.
func (s *Session) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.clear()
}

func (s *Session) clear() {
	s.workout = nil
	s.sets = nil
	s.exercises = nil
}

// AddExercise appends an exercise to the session. Idempotent by exercise
// identity: adding an already-present exercise is a no-op.
func (s *Session) AddExercise(ex models.ExerciseWithLastSet) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.workout == nil {
		return ErrNoActiveWorkout
	}
	for _, e := range s.exercises {
		if e.ID.Equal(ex.ID) {
			return nil
		}
	}
	s.exercises = append(s.exercises, ex)
	return nil
}

// RemoveExercise removes an exercise from the session and cascades to every
// set recorded for it. The cascade is mandatory: no set may outlive its
// exercise's membership in the session.
func (s *Session) RemoveExercise(exerciseID models.ID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.workout == nil {
		return ErrNoActiveWorkout
	}

	kept := s.exercises[:0]
	for _, e := range s.exercises {
		if !e.ID.Equal(exerciseID) {
			kept = append(kept, e)
		}
	}
	s.exercises = kept

	keptSets := s.sets[:0]
	for _, set := range s.sets {
		if !set.ExerciseID.Equal(exerciseID) {
			keptSets = append(keptSets, set)
		}
	}
	s.sets = keptSets
	return nil
}

// AddSet records a set for an exercise already present in the session. The
// set's order is the count of existing sets for that exercise, so the first
// set gets order 0. Sets for exercises the session does not contain are
// rejected rather than silently orphaned.
func (s *Session) AddSet(exerciseID models.ID, input models.SetInput) (models.Set, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.workout == nil {
		return models.Set{}, ErrNoActiveWorkout
	}

	present := false
	for _, e := range s.exercises {
		if e.ID.Equal(exerciseID) {
			present = true
			break
		}
	}
	if !present {
		return models.Set{}, ErrExerciseNotInWorkout
	}

	order := 0
	for _, set := range s.sets {
		if set.ExerciseID.Equal(exerciseID) {
			order++
		}
	}

	set := models.Set{
		ID:         models.NewLocalID(),
		WorkoutID:  s.workout.ID,
		ExerciseID: exerciseID,
		Order:      order,
		CreatedAt:  s.now(),
	}
	applyInput(&set, input)
	s.sets = append(s.sets, set)
	return set, nil
}

// RemoveSet deletes exactly one set by identity. Remaining sets keep their
// order values — gaps are fine, display sorts by order regardless. Removing
// a set that is already gone is a safe no-op, since the UI may race a
// removal against an edit.
func (s *Session) RemoveSet(setID models.ID) {
	s.mu.Lock()
	defer s.mu.Unlock()

	kept := s.sets[:0]
	for _, set := range s.sets {
		if !set.ID.Equal(setID) {
			kept = append(kept, set)
		}
	}
	s.sets = kept
}

// UpdateSet merges the provided fields into an existing set in place.
// Identity, workout, exercise, and order are immutable through this
// operation. Updating a missing set is a safe no-op.
func (s *Session) UpdateSet(setID models.ID, input models.SetInput) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.sets {
		if s.sets[i].ID.Equal(setID) {
			applyInput(&s.sets[i], input)
			return
		}
	}
}

func applyInput(set *models.Set, input models.SetInput) {
	if input.Weight != nil {
		set.Weight = input.Weight
	}
	if input.Reps != nil {
		set.Reps = input.Reps
	}
	if input.Time != nil {
		set.Time = input.Time
	}
	if input.Distance != nil {
		set.Distance = input.Distance
	}
	if input.Notes != nil {
		set.Notes = *input.Notes
	}
}
