package server

import (
	"log/slog"
	"net/http"

	"github.com/claude/simplestrength/internal/localstore"
	"github.com/claude/simplestrength/internal/storage"
	"github.com/go-chi/chi/v5"
	"tailscale.com/client/tailscale"
)

// Server holds dependencies for HTTP handlers.
type Server struct {
	db       *storage.DB
	sessions *sessionRegistry
	log      *slog.Logger
	apiKey   string
	router   chi.Router
	ts       *tailscale.LocalClient
}

// New creates a new Server with all routes configured. The local store
// backs active-session snapshots so an in-progress workout survives a
// restart. An empty apiKey disables the write-API key check.
func New(db *storage.DB, local localstore.Store, apiKey string, log *slog.Logger) *Server {
	s := &Server{
		db:       db,
		sessions: newSessionRegistry(local, log),
		log:      log,
		apiKey:   apiKey,
		router:   chi.NewRouter(),
	}
	s.routes()
	return s
}

// SetTailscale enables Tailscale identity resolution for incoming requests.
func (s *Server) SetTailscale(lc *tailscale.LocalClient) {
	s.ts = lc
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

func (s *Server) routes() {
	s.router.Use(RequestLogging(s.log))
	s.router.Use(CORS)
	s.router.Use(s.identity)

	s.router.Route("/api/v1", func(r chi.Router) {
		if s.apiKey != "" {
			r.Use(APIKeyAuth(s.apiKey))
		}

		r.Get("/me", s.handleMe)

		// Exercise library
		r.Route("/exercises", func(r chi.Router) {
			r.Get("/", s.handleListExercises)
			r.Post("/", s.handleCreateExercise)
			r.Route("/{id}", func(r chi.Router) {
				r.Get("/", s.handleGetExercise)
				r.Patch("/", s.handleUpdateExercise)
				r.Delete("/", s.handleDeleteExercise)
				r.Post("/archive", s.handleArchiveExercise)
				r.Get("/sets", s.handleListExerciseSets)
				r.Get("/last-set", s.handleLastSet)
				r.Get("/progress", s.handleExerciseProgress)
				r.Get("/records", s.handleExerciseRecords)
			})
		})

		// Workout history
		r.Route("/workouts", func(r chi.Router) {
			r.Get("/", s.handleListWorkouts)
			r.Post("/", s.handleCreateWorkout)
			r.Get("/active", s.handleActiveWorkout)
			r.Get("/completed", s.handleCompletedWorkouts)
			r.Route("/{id}", func(r chi.Router) {
				r.Get("/", s.handleGetWorkout)
				r.Delete("/", s.handleDeleteWorkout)
				r.Post("/finish", s.handleFinishWorkout)
				r.Get("/sets", s.handleListWorkoutSets)
				r.Post("/sets", s.handleCreateSet)
			})
		})

		r.Patch("/sets/{id}", s.handleUpdateSet)
		r.Delete("/sets/{id}", s.handleDeleteSet)

		// Active workout session (in-memory state machine, one per user)
		r.Route("/session", func(r chi.Router) {
			r.Get("/", s.handleSessionState)
			r.Delete("/", s.handleSessionClear)
			r.Post("/start", s.handleSessionStart)
			r.Post("/end", s.handleSessionEnd)
			r.Post("/exercises", s.handleSessionAddExercise)
			r.Delete("/exercises/{id}", s.handleSessionRemoveExercise)
			r.Post("/sets", s.handleSessionAddSet)
			r.Patch("/sets/{id}", s.handleSessionUpdateSet)
			r.Delete("/sets/{id}", s.handleSessionRemoveSet)
		})

		// Home screen aggregates
		r.Get("/stats/home", s.handleHomeStats)
	})
}
