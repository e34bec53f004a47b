package core

import "testing"

func TestRegistryLastWriterWins(t *testing.T) {
	r := NewRegistry()
	old := NewClient("old")
	fresh := NewClient("fresh")

	r.Register("alice", old)
	r.Register("alice", fresh)

	if got := r.Resolve("alice"); got != fresh {
		t.Fatalf("expected fresh connection, got %v", got)
	}
	if r.Len() != 1 {
		t.Fatalf("expected one identity, got %d", r.Len())
	}
}

func TestRegistryGuardedUnregister(t *testing.T) {
	r := NewRegistry()
	old := NewClient("old")
	fresh := NewClient("fresh")

	r.Register("alice", old)
	r.Register("alice", fresh)

	if r.Unregister("alice", old) {
		t.Fatal("stale connection must not unregister its successor")
	}
	if r.Resolve("alice") != fresh {
		t.Fatal("fresh connection lost")
	}

	if !r.Unregister("alice", fresh) {
		t.Fatal("owning connection should unregister")
	}
	if r.Resolve("alice") != nil {
		t.Fatal("identity still resolvable after unregister")
	}
}
