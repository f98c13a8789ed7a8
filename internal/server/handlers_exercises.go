package server

import (
	"net/http"

	"github.com/claude/simplestrength/internal/history"
	"github.com/claude/simplestrength/internal/models"
)

func (s *Server) handleListExercises(w http.ResponseWriter, r *http.Request) {
	userID := userIDFromContext(r)
	includeArchived := r.URL.Query().Get("include_archived") == "true"

	if r.URL.Query().Get("with_last_set") == "true" {
		exercises, err := s.db.ListExercisesWithLastSet(r.Context(), userID)
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, exercises)
		return
	}

	exercises, err := s.db.ListExercisesByUser(r.Context(), userID, includeArchived)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, exercises)
}

func (s *Server) handleCreateExercise(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name     string                    `json:"name"`
		Tracking models.TrackingComponents `json:"tracking"`
	}
	if err := decodeJSON(r, &req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON: " + err.Error()})
		return
	}

	ex, err := s.db.CreateExercise(r.Context(), userIDFromContext(r), req.Name, req.Tracking)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, ex)
}

func (s *Server) handleGetExercise(w http.ResponseWriter, r *http.Request) {
	id, err := uuidParam(r, "id")
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid exercise ID"})
		return
	}

	ex, err := s.db.GetExercise(r.Context(), id, userIDFromContext(r))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, ex)
}

func (s *Server) handleUpdateExercise(w http.ResponseWriter, r *http.Request) {
	id, err := uuidParam(r, "id")
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid exercise ID"})
		return
	}

	var req struct {
		Name     *string                    `json:"name"`
		Tracking *models.TrackingComponents `json:"tracking"`
	}
	if err := decodeJSON(r, &req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON: " + err.Error()})
		return
	}

	ex, err := s.db.UpdateExercise(r.Context(), id, userIDFromContext(r), req.Name, req.Tracking)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, ex)
}

func (s *Server) handleArchiveExercise(w http.ResponseWriter, r *http.Request) {
	id, err := uuidParam(r, "id")
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid exercise ID"})
		return
	}

	if err := s.db.ArchiveExercise(r.Context(), id, userIDFromContext(r)); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "archived"})
}

func (s *Server) handleDeleteExercise(w http.ResponseWriter, r *http.Request) {
	id, err := uuidParam(r, "id")
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid exercise ID"})
		return
	}

	if err := s.db.DeleteExercise(r.Context(), id, userIDFromContext(r)); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}

func (s *Server) handleListExerciseSets(w http.ResponseWriter, r *http.Request) {
	id, err := uuidParam(r, "id")
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid exercise ID"})
		return
	}

	mostRecentFirst := r.URL.Query().Get("order") != "oldest"
	sets, err := s.db.ListSetsByExercise(r.Context(), id, userIDFromContext(r), parseLimit(r), mostRecentFirst)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, sets)
}

func (s *Server) handleLastSet(w http.ResponseWriter, r *http.Request) {
	id, err := uuidParam(r, "id")
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid exercise ID"})
		return
	}

	set, err := s.db.GetMostRecentSetForExerciseAndUser(r.Context(), id, userIDFromContext(r))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, set)
}

func (s *Server) handleExerciseProgress(w http.ResponseWriter, r *http.Request) {
	id, err := uuidParam(r, "id")
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid exercise ID"})
		return
	}
	userID := userIDFromContext(r)

	ex, err := s.db.GetExercise(r.Context(), id, userID)
	if err != nil {
		writeError(w, err)
		return
	}
	completed, err := s.db.ListCompletedWorkouts(r.Context(), userID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, history.BuildProgress(completed, ex))
}

func (s *Server) handleExerciseRecords(w http.ResponseWriter, r *http.Request) {
	id, err := uuidParam(r, "id")
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid exercise ID"})
		return
	}
	userID := userIDFromContext(r)

	ex, err := s.db.GetExercise(r.Context(), id, userID)
	if err != nil {
		writeError(w, err)
		return
	}
	completed, err := s.db.ListCompletedWorkouts(r.Context(), userID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, history.Records(completed, ex))
}
