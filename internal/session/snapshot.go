package session

import (
	"encoding/json"
	"fmt"

	"github.com/claude/simplestrength/internal/localstore"
	"github.com/claude/simplestrength/internal/models"
)

// SnapshotKey is the default key the active-workout snapshot is stored
// under. Multi-user hosts append their own suffix per user.
const SnapshotKey = "workout-storage"

type snapshot struct {
	Workout   *models.Workout              `json:"workout"`
	Sets      []models.Set                 `json:"sets"`
	Exercises []models.ExerciseWithLastSet `json:"exercises"`
}

// Save writes the session's current state to the store so an in-progress
// workout survives a restart. An idle session removes the snapshot instead.
func (s *Session) Save(store localstore.Store, key string) error {
	s.mu.Lock()
	snap := snapshot{Workout: s.workout, Sets: s.sets, Exercises: s.exercises}
	s.mu.Unlock()

	if snap.Workout == nil {
		return store.Delete(key)
	}

	data, err := json.Marshal(snap)
	if err != nil {
		return fmt.Errorf("encoding session snapshot: %w", err)
	}
	return store.Set(key, string(data))
}

// Restore loads a previously saved snapshot into the session. Without a
// stored snapshot the session is left untouched. Restore reports whether a
// workout was recovered.
func (s *Session) Restore(store localstore.Store, key string) (bool, error) {
	data, ok, err := store.Get(key)
	if err != nil {
		return false, fmt.Errorf("reading session snapshot: %w", err)
	}
	if !ok {
		return false, nil
	}

	var snap snapshot
	if err := json.Unmarshal([]byte(data), &snap); err != nil {
		return false, fmt.Errorf("decoding session snapshot: %w", err)
	}
	if snap.Workout == nil {
		return false, nil
	}

	s.mu.Lock()
	s.workout = snap.Workout
	s.sets = snap.Sets
	s.exercises = snap.Exercises
	s.mu.Unlock()
	return true, nil
}
