package core

import (
	"sort"
	"time"
)

// Presence tracks which identities are online and when each was last seen.
//
// Not safe for concurrent use; the Gateway serializes all access.
type Presence struct {
	online   map[string]struct{}
	lastSeen map[string]*time.Time
}

// NewPresence constructs an empty presence tracker.
func NewPresence() *Presence {
	return &Presence{
		online:   make(map[string]struct{}),
		lastSeen: make(map[string]*time.Time),
	}
}

// MarkOnline adds identity to the online set. An identity that has never
// disconnected keeps a null last-seen value; connecting never touches it.
func (p *Presence) MarkOnline(identity string) {
	p.online[identity] = struct{}{}
	if _, ok := p.lastSeen[identity]; !ok {
		p.lastSeen[identity] = nil
	}
}

// MarkOffline removes identity from the online set and stamps last-seen.
// The stamp only ever moves forward in time.
func (p *Presence) MarkOffline(identity string, now time.Time) {
	delete(p.online, identity)
	if prev := p.lastSeen[identity]; prev != nil && prev.After(now) {
		return
	}
	t := now
	p.lastSeen[identity] = &t
}

// Online reports whether identity is currently in the online set.
func (p *Presence) Online(identity string) bool {
	_, ok := p.online[identity]
	return ok
}

// LastSeen returns the last disconnect time, or nil if the identity has
// never disconnected.
func (p *Presence) LastSeen(identity string) *time.Time {
	return p.lastSeen[identity]
}

// Snapshot returns the full online set, sorted for stable output.
func (p *Presence) Snapshot() []string {
	out := make([]string, 0, len(p.online))
	for identity := range p.online {
		out = append(out, identity)
	}
	sort.Strings(out)
	return out
}
