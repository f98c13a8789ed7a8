package server

import (
	"net/http"
	"time"

	"github.com/claude/simplestrength/internal/history"
	"github.com/claude/simplestrength/internal/models"
)

func (s *Server) handleListWorkouts(w http.ResponseWriter, r *http.Request) {
	workouts, err := s.db.ListWorkoutsByUser(r.Context(), userIDFromContext(r), parseLimit(r))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, workouts)
}

func (s *Server) handleCreateWorkout(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name string `json:"name"`
	}
	if r.ContentLength > 0 {
		if err := decodeJSON(r, &req); err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON: " + err.Error()})
			return
		}
	}

	workout, err := s.db.CreateWorkout(r.Context(), userIDFromContext(r), req.Name, time.Now())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, workout)
}

// handleCompletedWorkouts returns finished workouts with their sets resolved,
// oldest first. The progress and records views consume this shape directly.
func (s *Server) handleCompletedWorkouts(w http.ResponseWriter, r *http.Request) {
	workouts, err := s.db.ListCompletedWorkouts(r.Context(), userIDFromContext(r))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, workouts)
}

func (s *Server) handleActiveWorkout(w http.ResponseWriter, r *http.Request) {
	workout, err := s.db.GetActiveWorkout(r.Context(), userIDFromContext(r))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, workout)
}

func (s *Server) handleGetWorkout(w http.ResponseWriter, r *http.Request) {
	id, err := uuidParam(r, "id")
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid workout ID"})
		return
	}

	detail, err := s.db.GetWorkoutWithSets(r.Context(), id, userIDFromContext(r))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, detail)
}

func (s *Server) handleFinishWorkout(w http.ResponseWriter, r *http.Request) {
	id, err := uuidParam(r, "id")
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid workout ID"})
		return
	}

	workout, err := s.db.FinishWorkout(r.Context(), id, userIDFromContext(r), time.Now())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, workout)
}

func (s *Server) handleDeleteWorkout(w http.ResponseWriter, r *http.Request) {
	id, err := uuidParam(r, "id")
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid workout ID"})
		return
	}

	if err := s.db.DeleteWorkout(r.Context(), id, userIDFromContext(r)); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}

func (s *Server) handleListWorkoutSets(w http.ResponseWriter, r *http.Request) {
	id, err := uuidParam(r, "id")
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid workout ID"})
		return
	}

	sets, err := s.db.ListSetsByWorkout(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, sets)
}

func (s *Server) handleCreateSet(w http.ResponseWriter, r *http.Request) {
	workoutID, err := uuidParam(r, "id")
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid workout ID"})
		return
	}

	var req struct {
		ExerciseID string `json:"exercise_id"`
		models.SetInput
	}
	if err := decodeJSON(r, &req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON: " + err.Error()})
		return
	}
	exerciseID, err := parseUUIDString(req.ExerciseID)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid exercise ID"})
		return
	}

	set, err := s.db.CreateSet(r.Context(), workoutID, exerciseID, req.SetInput)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, set)
}

func (s *Server) handleUpdateSet(w http.ResponseWriter, r *http.Request) {
	id, err := uuidParam(r, "id")
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid set ID"})
		return
	}

	var input models.SetInput
	if err := decodeJSON(r, &input); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON: " + err.Error()})
		return
	}

	set, err := s.db.UpdateSet(r.Context(), id, input)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, set)
}

func (s *Server) handleDeleteSet(w http.ResponseWriter, r *http.Request) {
	id, err := uuidParam(r, "id")
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid set ID"})
		return
	}

	if err := s.db.DeleteSet(r.Context(), id); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}

func (s *Server) handleHomeStats(w http.ResponseWriter, r *http.Request) {
	workouts, err := s.db.ListWorkoutsByUser(r.Context(), userIDFromContext(r), 365)
	if err != nil {
		writeError(w, err)
		return
	}

	now := time.Now()
	writeJSON(w, http.StatusOK, map[string]int{
		"streak":             history.Streak(workouts, now, time.Local),
		"workouts_this_week": history.CompletedThisWeek(workouts, now, time.Local),
	})
}
