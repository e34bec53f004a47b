package core

import (
	"testing"
	"time"
)

func TestPresenceLastSeenNullUntilFirstDisconnect(t *testing.T) {
	p := NewPresence()

	p.MarkOnline("alice")
	if !p.Online("alice") {
		t.Fatal("alice should be online")
	}
	if p.LastSeen("alice") != nil {
		t.Fatal("lastSeen should be nil before any disconnect")
	}

	at := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	p.MarkOffline("alice", at)
	if p.Online("alice") {
		t.Fatal("alice should be offline")
	}
	if got := p.LastSeen("alice"); got == nil || !got.Equal(at) {
		t.Fatalf("unexpected lastSeen: %v", got)
	}

	// Coming back online keeps the old stamp.
	p.MarkOnline("alice")
	if got := p.LastSeen("alice"); got == nil || !got.Equal(at) {
		t.Fatalf("reconnect must not touch lastSeen, got %v", got)
	}
}

func TestPresenceLastSeenOnlyMovesForward(t *testing.T) {
	p := NewPresence()
	later := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	earlier := later.Add(-time.Hour)

	p.MarkOnline("alice")
	p.MarkOffline("alice", later)
	p.MarkOffline("alice", earlier)

	if got := p.LastSeen("alice"); got == nil || !got.Equal(later) {
		t.Fatalf("lastSeen moved backwards: %v", got)
	}
}

func TestPresenceSnapshotSorted(t *testing.T) {
	p := NewPresence()
	p.MarkOnline("carol")
	p.MarkOnline("alice")
	p.MarkOnline("bob")

	got := p.Snapshot()
	want := []string{"alice", "bob", "carol"}
	if len(got) != len(want) {
		t.Fatalf("unexpected snapshot: %v", got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("unexpected snapshot order: %v", got)
		}
	}
}
