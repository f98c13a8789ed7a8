package models

import (
	"encoding/json"
	"testing"

	"github.com/google/uuid"
)

// TestNewLocalID verifies fresh local IDs are non-zero, unpersisted, and
// distinct from each other.
func TestNewLocalID(t *testing.T) {
	a := NewLocalID()
	b := NewLocalID()

	if a.IsZero() || a.IsPersisted() {
		t.Errorf("NewLocalID = %+v, want local-only identity", a)
	}
	if a.Equal(b) {
		t.Error("two fresh local IDs should not be equal")
	}
	if !a.Equal(a) {
		t.Error("an ID should equal itself")
	}
}

// TestEqualServerWins verifies server identity decides equality when both
// sides are persisted, regardless of local tokens.
func TestEqualServerWins(t *testing.T) {
	u := uuid.New()

	a := ID{Server: u, Local: "token-a"}
	b := ID{Server: u, Local: "token-b"}
	if !a.Equal(b) {
		t.Error("same server UUID should be equal despite different tokens")
	}

	c := ID{Server: uuid.New(), Local: "token-a"}
	if a.Equal(c) {
		t.Error("different server UUIDs should not be equal despite same token")
	}
}

// TestEqualLocalFallback verifies local tokens compare when either side
// lacks a server identity, and that empty tokens never match.
func TestEqualLocalFallback(t *testing.T) {
	a := ID{Local: "tok"}
	b := ID{Server: uuid.New(), Local: "tok"}
	if !a.Equal(b) {
		t.Error("matching local tokens should be equal when one side is unpersisted")
	}

	if (ID{}).Equal(ID{}) {
		t.Error("two zero IDs must not be equal")
	}
}

// TestReconcile verifies recording the server identity keeps the local token
// so pre-reconciliation references still resolve.
func TestReconcile(t *testing.T) {
	id := NewLocalID()
	before := id

	u := uuid.New()
	id.Reconcile(u)

	if !id.IsPersisted() || id.Server != u {
		t.Errorf("Reconcile: server half = %v, want %v", id.Server, u)
	}
	if id.Local != before.Local {
		t.Error("Reconcile must keep the local token")
	}
	if !id.Equal(before) {
		t.Error("reconciled ID should still equal its pre-reconciliation form")
	}
}

// TestIDString verifies the server UUID renders when present, the local
// token otherwise.
func TestIDString(t *testing.T) {
	u := uuid.New()
	if got := PersistedID(u).String(); got != u.String() {
		t.Errorf("String = %q, want %q", got, u.String())
	}

	local := ID{Local: "abc123"}
	if got := local.String(); got != "abc123" {
		t.Errorf("String = %q, want %q", got, "abc123")
	}
}

// TestIDJSONRoundtrip verifies an ID survives JSON encoding, which the
// session snapshot depends on.
func TestIDJSONRoundtrip(t *testing.T) {
	id := NewLocalID()
	id.Reconcile(uuid.New())

	data, err := json.Marshal(id)
	if err != nil {
		t.Fatal(err)
	}
	var back ID
	if err := json.Unmarshal(data, &back); err != nil {
		t.Fatal(err)
	}
	if !back.Equal(id) || back.Local != id.Local || back.Server != id.Server {
		t.Errorf("roundtrip = %+v, want %+v", back, id)
	}
}
