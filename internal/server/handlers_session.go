package server

import (
	"errors"
	"net/http"

	"github.com/claude/simplestrength/internal/models"
	"github.com/claude/simplestrength/internal/session"
	"github.com/claude/simplestrength/internal/storage"
	"github.com/go-chi/chi/v5"
)

// sessionState is the full session view the UI polls: the active workout,
// its sets and exercises, and the derived elapsed seconds.
type sessionState struct {
	Active         bool                         `json:"active"`
	Workout        *models.Workout              `json:"workout,omitempty"`
	Sets           []models.Set                 `json:"sets"`
	Exercises      []models.ExerciseWithLastSet `json:"exercises"`
	ElapsedSeconds int                          `json:"elapsed_seconds"`
}

func stateOf(sess *session.Session) sessionState {
	return sessionState{
		Active:         sess.Active(),
		Workout:        sess.Workout(),
		Sets:           sess.Sets(),
		Exercises:      sess.Exercises(),
		ElapsedSeconds: sess.Elapsed(),
	}
}

func (s *Server) handleSessionState(w http.ResponseWriter, r *http.Request) {
	sess := s.sessions.get(userIDFromContext(r))
	writeJSON(w, http.StatusOK, stateOf(sess))
}

func (s *Server) handleSessionStart(w http.ResponseWriter, r *http.Request) {
	userID := userIDFromContext(r)
	sess := s.sessions.get(userID)

	// Start would silently replace a running session, so guard here.
	if sess.Active() {
		writeJSON(w, http.StatusConflict, map[string]string{"error": "workout already in progress"})
		return
	}

	sess.Start(userID)
	s.sessions.persist(userID, sess)
	writeJSON(w, http.StatusCreated, stateOf(sess))
}

// handleSessionEnd finishes the session and persists the bundle. The
// session hands the finished workout back and forgets it; a persistence
// failure is reported to the client with the full bundle so nothing is
// silently lost.
func (s *Server) handleSessionEnd(w http.ResponseWriter, r *http.Request) {
	userID := userIDFromContext(r)
	sess := s.sessions.get(userID)

	summary, err := sess.End()
	if err != nil {
		writeError(w, err)
		return
	}
	s.sessions.persist(userID, sess)

	workout, sets, err := s.db.SaveFinishedWorkout(r.Context(), summary.Workout, summary.Sets)
	if err != nil {
		s.log.Error("saving finished workout failed", "user_id", userID, "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]any{
			"error":   "workout could not be saved",
			"summary": summary,
		})
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"workout": workout,
		"sets":    sets,
	})
}

func (s *Server) handleSessionClear(w http.ResponseWriter, r *http.Request) {
	userID := userIDFromContext(r)
	sess := s.sessions.get(userID)
	sess.Clear()
	s.sessions.persist(userID, sess)
	writeJSON(w, http.StatusOK, stateOf(sess))
}

func (s *Server) handleSessionAddExercise(w http.ResponseWriter, r *http.Request) {
	userID := userIDFromContext(r)
	sess := s.sessions.get(userID)

	var req struct {
		ExerciseID string `json:"exercise_id"`
	}
	if err := decodeJSON(r, &req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON: " + err.Error()})
		return
	}
	id, err := parseUUIDString(req.ExerciseID)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid exercise ID"})
		return
	}

	ex, err := s.db.GetExercise(r.Context(), id, userID)
	if err != nil {
		writeError(w, err)
		return
	}
	last, err := s.db.GetMostRecentSetForExerciseAndUser(r.Context(), id, userID)
	if err != nil && !errors.Is(err, storage.ErrNotFound) {
		writeError(w, err)
		return
	}

	if err := sess.AddExercise(models.ExerciseWithLastSet{Exercise: ex, LastSet: last}); err != nil {
		writeError(w, err)
		return
	}
	s.sessions.persist(userID, sess)
	writeJSON(w, http.StatusOK, stateOf(sess))
}

func (s *Server) handleSessionRemoveExercise(w http.ResponseWriter, r *http.Request) {
	userID := userIDFromContext(r)
	sess := s.sessions.get(userID)

	if err := sess.RemoveExercise(sessionID(r)); err != nil {
		writeError(w, err)
		return
	}
	s.sessions.persist(userID, sess)
	writeJSON(w, http.StatusOK, stateOf(sess))
}

func (s *Server) handleSessionAddSet(w http.ResponseWriter, r *http.Request) {
	userID := userIDFromContext(r)
	sess := s.sessions.get(userID)

	var req struct {
		ExerciseID string `json:"exercise_id"`
		models.SetInput
	}
	if err := decodeJSON(r, &req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON: " + err.Error()})
		return
	}
	id, err := parseUUIDString(req.ExerciseID)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid exercise ID"})
		return
	}

	set, err := sess.AddSet(models.PersistedID(id), req.SetInput)
	if err != nil {
		writeError(w, err)
		return
	}
	s.sessions.persist(userID, sess)
	writeJSON(w, http.StatusCreated, set)
}

func (s *Server) handleSessionUpdateSet(w http.ResponseWriter, r *http.Request) {
	userID := userIDFromContext(r)
	sess := s.sessions.get(userID)

	var input models.SetInput
	if err := decodeJSON(r, &input); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON: " + err.Error()})
		return
	}

	sess.UpdateSet(sessionID(r), input)
	s.sessions.persist(userID, sess)
	writeJSON(w, http.StatusOK, stateOf(sess))
}

func (s *Server) handleSessionRemoveSet(w http.ResponseWriter, r *http.Request) {
	userID := userIDFromContext(r)
	sess := s.sessions.get(userID)

	sess.RemoveSet(sessionID(r))
	s.sessions.persist(userID, sess)
	writeJSON(w, http.StatusOK, stateOf(sess))
}

// sessionID interprets a path ID as either a server UUID or a local token,
// since session entities may not have been persisted yet.
func sessionID(r *http.Request) models.ID {
	raw := chi.URLParam(r, "id")
	if u, err := parseUUIDString(raw); err == nil {
		return models.PersistedID(u)
	}
	return models.ID{Local: raw}
}
