package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/claude/simplestrength/internal/session"
	"github.com/claude/simplestrength/internal/storage"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
)

func (s *Server) handleMe(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, userInfoFromContext(r))
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// writeError maps the storage/session error taxonomy onto HTTP statuses:
// rejected preconditions become 409, missing rows 404, bad input 400.
func writeError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, storage.ErrNotFound):
		status = http.StatusNotFound
	case errors.Is(err, storage.ErrInvalidExercise):
		status = http.StatusBadRequest
	case errors.Is(err, storage.ErrWorkoutFinished),
		errors.Is(err, storage.ErrActiveWorkoutExists),
		errors.Is(err, storage.ErrExerciseInUse),
		errors.Is(err, session.ErrNoActiveWorkout),
		errors.Is(err, session.ErrExerciseNotInWorkout):
		status = http.StatusConflict
	}
	writeJSON(w, status, map[string]string{"error": err.Error()})
}

func decodeJSON(r *http.Request, v any) error {
	return json.NewDecoder(r.Body).Decode(v)
}

func uuidParam(r *http.Request, name string) (uuid.UUID, error) {
	return uuid.Parse(chi.URLParam(r, name))
}

func parseUUIDString(s string) (uuid.UUID, error) {
	return uuid.Parse(s)
}

func parseLimit(r *http.Request) int {
	if v := r.URL.Query().Get("limit"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return 0
}
