package session

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/claude/simplestrength/internal/localstore"
	"github.com/claude/simplestrength/internal/models"
)

func fptr(v float64) *float64 { return &v }
func iptr(v int) *int         { return &v }
func sptr(v string) *string   { return &v }

// fixedClock returns a clock function pinned to t plus an advance knob.
type fixedClock struct {
	t time.Time
}

func (c *fixedClock) now() time.Time          { return c.t }
func (c *fixedClock) advance(d time.Duration) { c.t = c.t.Add(d) }

func newClock() *fixedClock {
	return &fixedClock{t: time.Date(2026, 3, 14, 18, 0, 0, 0, time.UTC)}
}

func exercise(name string) models.ExerciseWithLastSet {
	return models.ExerciseWithLastSet{
		Exercise: models.Exercise{
			ID:       models.NewLocalID(),
			Name:     name,
			Tracking: models.TrackingComponents{Weight: true, Reps: true},
		},
	}
}

// TestLifecycle verifies the idle → active → idle transitions: Start stamps
// the workout, End stamps endTime/duration, clears state, and hands the
// accumulated data back.
func TestLifecycle(t *testing.T) {
	clock := newClock()
	s := New(WithClock(clock.now))

	if s.Active() {
		t.Fatal("new session should be idle")
	}
	if _, err := s.End(); !errors.Is(err, ErrNoActiveWorkout) {
		t.Fatalf("End on idle session: err = %v, want ErrNoActiveWorkout", err)
	}

	w := s.Start(1)
	if !s.Active() {
		t.Fatal("session should be active after Start")
	}
	if w.StartTime != clock.t {
		t.Errorf("StartTime = %v, want %v", w.StartTime, clock.t)
	}
	if w.ID.IsZero() {
		t.Error("Start should assign a local ID")
	}

	ex := exercise("Bench Press")
	if err := s.AddExercise(ex); err != nil {
		t.Fatal(err)
	}
	if _, err := s.AddSet(ex.ID, models.SetInput{Weight: fptr(100), Reps: iptr(5)}); err != nil {
		t.Fatal(err)
	}

	clock.advance(45 * time.Minute)
	sum, err := s.End()
	if err != nil {
		t.Fatal(err)
	}
	if sum.Workout.EndTime == nil || !sum.Workout.EndTime.Equal(clock.t) {
		t.Errorf("EndTime = %v, want %v", sum.Workout.EndTime, clock.t)
	}
	if sum.Workout.Duration == nil || *sum.Workout.Duration != 2700 {
		t.Errorf("Duration = %v, want 2700", sum.Workout.Duration)
	}
	if len(sum.Sets) != 1 || len(sum.Exercises) != 1 {
		t.Errorf("summary carries %d sets, %d exercises, want 1 each", len(sum.Sets), len(sum.Exercises))
	}

	if s.Active() {
		t.Error("session should be idle after End")
	}
	if len(s.Sets()) != 0 || len(s.Exercises()) != 0 {
		t.Error("End should clear session collections")
	}
}

// TestElapsed verifies elapsed seconds derive from the start anchor and read
// zero when idle.
func TestElapsed(t *testing.T) {
	clock := newClock()
	s := New(WithClock(clock.now))

	if got := s.Elapsed(); got != 0 {
		t.Errorf("Elapsed idle = %d, want 0", got)
	}

	s.Start(1)
	clock.advance(95 * time.Second)
	if got := s.Elapsed(); got != 95 {
		t.Errorf("Elapsed = %d, want 95", got)
	}

	// A big jump self-corrects, no tick accumulation involved.
	clock.advance(30 * time.Minute)
	if got := s.Elapsed(); got != 95+1800 {
		t.Errorf("Elapsed = %d, want %d", got, 95+1800)
	}
}

// TestAddExerciseIdempotent verifies adding an already-present exercise is a
// no-op, keyed by exercise identity.
func TestAddExerciseIdempotent(t *testing.T) {
	s := New()
	s.Start(1)

	ex := exercise("Squat")
	if err := s.AddExercise(ex); err != nil {
		t.Fatal(err)
	}
	if err := s.AddExercise(ex); err != nil {
		t.Fatal(err)
	}
	if got := len(s.Exercises()); got != 1 {
		t.Errorf("exercises = %d, want 1", got)
	}
}

// TestAddExerciseIdle verifies exercises cannot join an idle session.
func TestAddExerciseIdle(t *testing.T) {
	s := New()
	if err := s.AddExercise(exercise("Squat")); !errors.Is(err, ErrNoActiveWorkout) {
		t.Errorf("err = %v, want ErrNoActiveWorkout", err)
	}
}

// TestSetOrdering verifies per-exercise zero-based order assignment and that
// removal leaves gaps: remaining orders never renumber, and a set added after
// a removal continues from the per-exercise count.
func TestSetOrdering(t *testing.T) {
	s := New()
	s.Start(1)

	bench := exercise("Bench Press")
	squat := exercise("Squat")
	if err := s.AddExercise(bench); err != nil {
		t.Fatal(err)
	}
	if err := s.AddExercise(squat); err != nil {
		t.Fatal(err)
	}

	var benchSets []models.Set
	for i := 0; i < 3; i++ {
		set, err := s.AddSet(bench.ID, models.SetInput{Weight: fptr(100), Reps: iptr(5)})
		if err != nil {
			t.Fatal(err)
		}
		if set.Order != i {
			t.Errorf("bench set %d: order = %d, want %d", i, set.Order, i)
		}
		benchSets = append(benchSets, set)
	}

	// Orders count per exercise, not across the whole session.
	squatSet, err := s.AddSet(squat.ID, models.SetInput{Weight: fptr(140), Reps: iptr(3)})
	if err != nil {
		t.Fatal(err)
	}
	if squatSet.Order != 0 {
		t.Errorf("first squat set: order = %d, want 0", squatSet.Order)
	}

	// Remove the middle bench set: survivors keep orders 0 and 2.
	s.RemoveSet(benchSets[1].ID)
	var orders []int
	for _, set := range s.Sets() {
		if set.ExerciseID.Equal(bench.ID) {
			orders = append(orders, set.Order)
		}
	}
	if len(orders) != 2 || orders[0] != 0 || orders[1] != 2 {
		t.Errorf("bench orders after removal = %v, want [0 2]", orders)
	}

	// The next set takes the current count (2), duplicating an existing
	// order is acceptable; order is a sort key, not a unique index.
	next, err := s.AddSet(bench.ID, models.SetInput{Weight: fptr(100), Reps: iptr(5)})
	if err != nil {
		t.Fatal(err)
	}
	if next.Order != 2 {
		t.Errorf("order after gap = %d, want 2", next.Order)
	}
}

// TestAddSetRejectsAbsentExercise verifies sets cannot target exercises the
// session does not contain.
func TestAddSetRejectsAbsentExercise(t *testing.T) {
	s := New()
	s.Start(1)

	_, err := s.AddSet(models.NewLocalID(), models.SetInput{Reps: iptr(10)})
	if !errors.Is(err, ErrExerciseNotInWorkout) {
		t.Errorf("err = %v, want ErrExerciseNotInWorkout", err)
	}
}

// TestRemoveExerciseCascades verifies removing an exercise drops all of its
// sets and only its sets.
func TestRemoveExerciseCascades(t *testing.T) {
	s := New()
	s.Start(1)

	bench := exercise("Bench Press")
	squat := exercise("Squat")
	s.AddExercise(bench)
	s.AddExercise(squat)
	s.AddSet(bench.ID, models.SetInput{Reps: iptr(5)})
	s.AddSet(bench.ID, models.SetInput{Reps: iptr(5)})
	s.AddSet(squat.ID, models.SetInput{Reps: iptr(3)})

	if err := s.RemoveExercise(bench.ID); err != nil {
		t.Fatal(err)
	}

	if got := len(s.Exercises()); got != 1 {
		t.Errorf("exercises = %d, want 1", got)
	}
	sets := s.Sets()
	if len(sets) != 1 {
		t.Fatalf("sets = %d, want 1", len(sets))
	}
	if !sets[0].ExerciseID.Equal(squat.ID) {
		t.Error("surviving set should belong to the remaining exercise")
	}
}

// TestUpdateSet verifies field merging: provided fields overwrite, absent
// fields survive, and identity/order stay immutable. Updating a missing set
// is a no-op.
func TestUpdateSet(t *testing.T) {
	s := New()
	s.Start(1)

	ex := exercise("Row")
	s.AddExercise(ex)
	set, err := s.AddSet(ex.ID, models.SetInput{Weight: fptr(60), Reps: iptr(12), Notes: sptr("warmup")})
	if err != nil {
		t.Fatal(err)
	}

	s.UpdateSet(set.ID, models.SetInput{Weight: fptr(65)})

	got := s.Sets()[0]
	if got.Weight == nil || *got.Weight != 65 {
		t.Errorf("weight = %v, want 65", got.Weight)
	}
	if got.Reps == nil || *got.Reps != 12 {
		t.Errorf("reps = %v, want 12 (untouched)", got.Reps)
	}
	if got.Notes != "warmup" {
		t.Errorf("notes = %q, want %q", got.Notes, "warmup")
	}
	if !got.ID.Equal(set.ID) || got.Order != set.Order {
		t.Error("identity and order must not change on update")
	}

	// Missing set: no-op, no panic.
	s.UpdateSet(models.NewLocalID(), models.SetInput{Reps: iptr(1)})
	if got := len(s.Sets()); got != 1 {
		t.Errorf("sets = %d, want 1", got)
	}
}

// TestRemoveSetMissing verifies removing an unknown set is a safe no-op.
func TestRemoveSetMissing(t *testing.T) {
	s := New()
	s.Start(1)

	ex := exercise("Row")
	s.AddExercise(ex)
	s.AddSet(ex.ID, models.SetInput{Reps: iptr(10)})

	s.RemoveSet(models.NewLocalID())
	if got := len(s.Sets()); got != 1 {
		t.Errorf("sets = %d, want 1", got)
	}
}

// TestClear verifies a force reset discards everything without a summary.
func TestClear(t *testing.T) {
	s := New()
	s.Start(1)
	ex := exercise("Row")
	s.AddExercise(ex)
	s.AddSet(ex.ID, models.SetInput{Reps: iptr(10)})

	s.Clear()

	if s.Active() {
		t.Error("session should be idle after Clear")
	}
	if len(s.Sets()) != 0 || len(s.Exercises()) != 0 {
		t.Error("Clear should discard all state")
	}
}

// TestSnapshotRoundtrip verifies an active session survives Save/Restore
// through the local store and that an idle Save removes the snapshot.
func TestSnapshotRoundtrip(t *testing.T) {
	store := localstore.NewMemory()
	clock := newClock()

	s := New(WithClock(clock.now))
	s.Start(7)
	ex := exercise("Deadlift")
	s.AddExercise(ex)
	s.AddSet(ex.ID, models.SetInput{Weight: fptr(180), Reps: iptr(2)})

	if err := s.Save(store, SnapshotKey); err != nil {
		t.Fatal(err)
	}

	restored := New(WithClock(clock.now))
	ok, err := restored.Restore(store, SnapshotKey)
	if err != nil {
		t.Fatal(err)
	}
	if !ok {
		t.Fatal("Restore reported no snapshot")
	}
	if !restored.Active() {
		t.Fatal("restored session should be active")
	}
	if got := restored.Workout(); got.UserID != 7 {
		t.Errorf("restored userID = %d, want 7", got.UserID)
	}
	if got := len(restored.Sets()); got != 1 {
		t.Errorf("restored sets = %d, want 1", got)
	}
	if got := len(restored.Exercises()); got != 1 {
		t.Errorf("restored exercises = %d, want 1", got)
	}

	// Idle sessions delete their snapshot instead of storing one.
	s.Clear()
	if err := s.Save(store, SnapshotKey); err != nil {
		t.Fatal(err)
	}
	fresh := New()
	ok, err = fresh.Restore(store, SnapshotKey)
	if err != nil {
		t.Fatal(err)
	}
	if ok {
		t.Error("Restore after idle Save should find nothing")
	}
}

// TestRestoreWithoutSnapshot verifies Restore leaves an untouched session on
// an empty store.
func TestRestoreWithoutSnapshot(t *testing.T) {
	s := New()
	ok, err := s.Restore(localstore.NewMemory(), SnapshotKey)
	if err != nil {
		t.Fatal(err)
	}
	if ok {
		t.Error("Restore on empty store should report false")
	}
	if s.Active() {
		t.Error("session should remain idle")
	}
}

// TestWatchStopsOnCancel verifies the ticker channel closes when the context
// is cancelled.
func TestWatchStopsOnCancel(t *testing.T) {
	s := New()
	s.Start(1)

	ctx, cancel := context.WithCancel(context.Background())
	ch := s.Watch(ctx)
	cancel()

	select {
	case _, open := <-ch:
		if open {
			// A buffered tick may still be in flight; the close follows.
			if _, open := <-ch; open {
				t.Error("channel should close after cancel")
			}
		}
	case <-time.After(2 * time.Second):
		t.Error("channel did not close after cancel")
	}
}

// TestWatchStopsWhenIdle verifies the ticker channel closes once the session
// goes idle.
func TestWatchStopsWhenIdle(t *testing.T) {
	s := New()
	s.Start(1)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	ch := s.Watch(ctx)

	s.Clear()

	deadline := time.After(3 * time.Second)
	for {
		select {
		case _, open := <-ch:
			if !open {
				return
			}
		case <-deadline:
			t.Fatal("channel did not close after session went idle")
		}
	}
}
