package server

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/claude/simplestrength/internal/localstore"
	"github.com/claude/simplestrength/internal/session"
	"github.com/claude/simplestrength/internal/storage"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
)

// withURLParam injects a chi URL parameter for handler-level tests that
// bypass the router.
func withURLParam(r *http.Request, key, value string) *http.Request {
	rctx := chi.NewRouteContext()
	rctx.URLParams.Add(key, value)
	return r.WithContext(context.WithValue(r.Context(), chi.RouteCtxKey, rctx))
}

// newTestServer builds a Server with an in-memory local store and no
// database. Handlers under test here never reach storage: the session state
// machine guards its preconditions first.
func newTestServer(apiKey string) *Server {
	return New(nil, localstore.NewMemory(), apiKey, slog.Default())
}

func doJSON(t *testing.T, s *Server, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	var rd *strings.Reader
	if body == "" {
		rd = strings.NewReader("")
	} else {
		rd = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, rd)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	s.ServeHTTP(rec, req)
	return rec
}

// TestHandleMe verifies the identity endpoint reflects the dev user when no
// Tailscale client is configured.
func TestHandleMe(t *testing.T) {
	s := newTestServer("")
	rec := doJSON(t, s, http.MethodGet, "/api/v1/me", "")

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	var info UserInfo
	if err := json.Unmarshal(rec.Body.Bytes(), &info); err != nil {
		t.Fatal(err)
	}
	if info.Login != "local" {
		t.Errorf("login = %q, want %q", info.Login, "local")
	}
}

// TestAPIKeyEnforcement verifies the optional API key gate: missing key 401,
// wrong key 403, correct key passes.
func TestAPIKeyEnforcement(t *testing.T) {
	s := newTestServer("secret")

	rec := doJSON(t, s, http.MethodGet, "/api/v1/me", "")
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("no key: status = %d, want 401", rec.Code)
	}

	req := httptest.NewRequest(http.MethodGet, "/api/v1/me", nil)
	req.Header.Set("X-API-Key", "wrong")
	rec = httptest.NewRecorder()
	s.ServeHTTP(rec, req)
	if rec.Code != http.StatusForbidden {
		t.Errorf("wrong key: status = %d, want 403", rec.Code)
	}

	req = httptest.NewRequest(http.MethodGet, "/api/v1/me", nil)
	req.Header.Set("X-API-Key", "secret")
	rec = httptest.NewRecorder()
	s.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Errorf("correct key: status = %d, want 200", rec.Code)
	}
}

// TestSessionStateIdle verifies the session view before any workout starts.
func TestSessionStateIdle(t *testing.T) {
	s := newTestServer("")
	rec := doJSON(t, s, http.MethodGet, "/api/v1/session", "")

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	var state sessionState
	if err := json.Unmarshal(rec.Body.Bytes(), &state); err != nil {
		t.Fatal(err)
	}
	if state.Active {
		t.Error("fresh session should be idle")
	}
	if state.ElapsedSeconds != 0 {
		t.Errorf("elapsed = %d, want 0", state.ElapsedSeconds)
	}
}

// TestSessionStartAndDoubleStart verifies starting a workout and the 409
// guard against replacing a running one.
func TestSessionStartAndDoubleStart(t *testing.T) {
	s := newTestServer("")

	rec := doJSON(t, s, http.MethodPost, "/api/v1/session/start", "")
	if rec.Code != http.StatusCreated {
		t.Fatalf("start: status = %d, want 201", rec.Code)
	}
	var state sessionState
	if err := json.Unmarshal(rec.Body.Bytes(), &state); err != nil {
		t.Fatal(err)
	}
	if !state.Active {
		t.Error("session should be active after start")
	}

	rec = doJSON(t, s, http.MethodPost, "/api/v1/session/start", "")
	if rec.Code != http.StatusConflict {
		t.Errorf("double start: status = %d, want 409", rec.Code)
	}
}

// TestSessionEndIdle verifies ending without an active workout conflicts.
func TestSessionEndIdle(t *testing.T) {
	s := newTestServer("")
	rec := doJSON(t, s, http.MethodPost, "/api/v1/session/end", "")
	if rec.Code != http.StatusConflict {
		t.Errorf("status = %d, want 409", rec.Code)
	}
}

// TestSessionAddSetAbsentExercise verifies sets for exercises the session
// does not contain are rejected with a conflict.
func TestSessionAddSetAbsentExercise(t *testing.T) {
	s := newTestServer("")
	doJSON(t, s, http.MethodPost, "/api/v1/session/start", "")

	body := `{"exercise_id":"` + uuid.NewString() + `","reps":10}`
	rec := doJSON(t, s, http.MethodPost, "/api/v1/session/sets", body)
	if rec.Code != http.StatusConflict {
		t.Errorf("status = %d, want 409", rec.Code)
	}
}

// TestSessionClear verifies the abandon flow resets to idle.
func TestSessionClear(t *testing.T) {
	s := newTestServer("")
	doJSON(t, s, http.MethodPost, "/api/v1/session/start", "")

	rec := doJSON(t, s, http.MethodDelete, "/api/v1/session", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	var state sessionState
	if err := json.Unmarshal(rec.Body.Bytes(), &state); err != nil {
		t.Fatal(err)
	}
	if state.Active {
		t.Error("session should be idle after clear")
	}
}

// TestSessionSnapshotSurvivesRegistry verifies the snapshot round trip at the
// server level: a second Server sharing the local store sees the started
// workout.
func TestSessionSnapshotSurvivesRegistry(t *testing.T) {
	local := localstore.NewMemory()
	first := New(nil, local, "", slog.Default())
	doJSON(t, first, http.MethodPost, "/api/v1/session/start", "")

	second := New(nil, local, "", slog.Default())
	rec := doJSON(t, second, http.MethodGet, "/api/v1/session", "")
	var state sessionState
	if err := json.Unmarshal(rec.Body.Bytes(), &state); err != nil {
		t.Fatal(err)
	}
	if !state.Active {
		t.Error("restarted server should restore the active workout")
	}
}

// TestWriteErrorMapping verifies the error taxonomy maps onto HTTP statuses.
func TestWriteErrorMapping(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"not found", storage.ErrNotFound, http.StatusNotFound},
		{"invalid exercise", storage.ErrInvalidExercise, http.StatusBadRequest},
		{"workout finished", storage.ErrWorkoutFinished, http.StatusConflict},
		{"active workout exists", storage.ErrActiveWorkoutExists, http.StatusConflict},
		{"exercise in use", storage.ErrExerciseInUse, http.StatusConflict},
		{"no active workout", session.ErrNoActiveWorkout, http.StatusConflict},
		{"exercise not in workout", session.ErrExerciseNotInWorkout, http.StatusConflict},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			writeError(rec, tt.err)
			if rec.Code != tt.want {
				t.Errorf("status = %d, want %d", rec.Code, tt.want)
			}
		})
	}
}

// TestSessionIDParsing verifies path IDs resolve to server UUIDs when they
// parse and to local tokens otherwise.
func TestSessionIDParsing(t *testing.T) {
	u := uuid.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req = withURLParam(req, "id", u.String())
	if id := sessionID(req); !id.IsPersisted() || id.Server != u {
		t.Errorf("sessionID(uuid) = %v, want persisted %v", id, u)
	}

	req = httptest.NewRequest(http.MethodGet, "/", nil)
	req = withURLParam(req, "id", "abc123")
	if id := sessionID(req); id.IsPersisted() || id.Local != "abc123" {
		t.Errorf("sessionID(token) = %v, want local token", id)
	}
}
