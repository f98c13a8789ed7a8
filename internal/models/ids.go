package models

import (
	"crypto/rand"
	"encoding/hex"

	"github.com/google/uuid"
)

// ID identifies an entity that may exist only on this device, only on the
// server, or both. A freshly created entity carries a local token; after the
// create call succeeds the server UUID is filled in via Reconcile. The local
// token is kept so in-flight references (e.g. sets pointing at a workout that
// is still being persisted) stay valid across reconciliation.
type ID struct {
	Server uuid.UUID `json:"server,omitempty"`
	Local  string    `json:"local,omitempty"`
}

// NewLocalID returns an ID with a random local token and no server half.
func NewLocalID() ID {
	var b [8]byte
	rand.Read(b[:])
	return ID{Local: hex.EncodeToString(b[:])}
}

// PersistedID returns an ID backed by a server-assigned UUID.
func PersistedID(u uuid.UUID) ID {
	return ID{Server: u}
}

// IsPersisted reports whether the entity has a server identity.
func (id ID) IsPersisted() bool {
	return id.Server != uuid.Nil
}

// IsZero reports whether the ID identifies nothing at all.
func (id ID) IsZero() bool {
	return id.Server == uuid.Nil && id.Local == ""
}

// Equal reports whether two IDs refer to the same entity. Server identity
// wins when both sides have one; otherwise the local tokens are compared.
func (id ID) Equal(other ID) bool {
	if id.IsPersisted() && other.IsPersisted() {
		return id.Server == other.Server
	}
	return id.Local != "" && id.Local == other.Local
}

// Reconcile records the server identity after a successful create call.
func (id *ID) Reconcile(u uuid.UUID) {
	id.Server = u
}

// String renders the server UUID when present, the local token otherwise.
func (id ID) String() string {
	if id.IsPersisted() {
		return id.Server.String()
	}
	return id.Local
}
