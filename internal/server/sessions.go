package server

import (
	"fmt"
	"log/slog"
	"sync"

	"github.com/claude/simplestrength/internal/localstore"
	"github.com/claude/simplestrength/internal/session"
)

// sessionRegistry hands out one workout session per user and mirrors every
// state change into the local store, so an in-progress workout survives a
// server restart.
type sessionRegistry struct {
	mu       sync.Mutex
	sessions map[int]*session.Session
	local    localstore.Store
	log      *slog.Logger
}

func newSessionRegistry(local localstore.Store, log *slog.Logger) *sessionRegistry {
	return &sessionRegistry{
		sessions: make(map[int]*session.Session),
		local:    local,
		log:      log,
	}
}

func snapshotKey(userID int) string {
	return fmt.Sprintf("%s:%d", session.SnapshotKey, userID)
}

// get returns the user's session, restoring a persisted snapshot the first
// time the user is seen after a restart.
func (r *sessionRegistry) get(userID int) *session.Session {
	r.mu.Lock()
	defer r.mu.Unlock()

	if s, ok := r.sessions[userID]; ok {
		return s
	}

	s := session.New()
	restored, err := s.Restore(r.local, snapshotKey(userID))
	if err != nil {
		r.log.Warn("session snapshot restore failed", "user_id", userID, "error", err)
	} else if restored {
		r.log.Info("restored active workout from snapshot", "user_id", userID)
	}
	r.sessions[userID] = s
	return s
}

// persist saves the session's current state. Snapshot failures are logged,
// not surfaced: the in-memory session stays authoritative.
func (r *sessionRegistry) persist(userID int, s *session.Session) {
	if err := s.Save(r.local, snapshotKey(userID)); err != nil {
		r.log.Warn("session snapshot save failed", "user_id", userID, "error", err)
	}
}
