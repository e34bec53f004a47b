package core

// Rooms maintains per-chat broadcast groups. Membership is a pure
// routing relation: nothing is persisted and everything is dropped when
// the connection goes away. There is no authorization on join; the REST
// layer owns chat membership rules.
//
// Not safe for concurrent use; the Gateway serializes all access.
type Rooms struct {
	rooms    map[string]map[*Client]struct{}
	byClient map[*Client]map[string]struct{}
}

// NewRooms constructs an empty membership table.
func NewRooms() *Rooms {
	return &Rooms{
		rooms:    make(map[string]map[*Client]struct{}),
		byClient: make(map[*Client]map[string]struct{}),
	}
}

// Join adds c to the room's broadcast set. Idempotent.
func (r *Rooms) Join(c *Client, roomID string) {
	room, ok := r.rooms[roomID]
	if !ok {
		room = make(map[*Client]struct{})
		r.rooms[roomID] = room
	}
	room[c] = struct{}{}

	joined, ok := r.byClient[c]
	if !ok {
		joined = make(map[string]struct{})
		r.byClient[c] = joined
	}
	joined[roomID] = struct{}{}
}

// Leave removes c from the room. Idempotent; no error if absent.
func (r *Rooms) Leave(c *Client, roomID string) {
	if room, ok := r.rooms[roomID]; ok {
		delete(room, c)
		if len(room) == 0 {
			delete(r.rooms, roomID)
		}
	}
	if joined, ok := r.byClient[c]; ok {
		delete(joined, roomID)
		if len(joined) == 0 {
			delete(r.byClient, c)
		}
	}
}

// LeaveAll removes c from every room it joined.
func (r *Rooms) LeaveAll(c *Client) {
	for roomID := range r.byClient[c] {
		if room, ok := r.rooms[roomID]; ok {
			delete(room, c)
			if len(room) == 0 {
				delete(r.rooms, roomID)
			}
		}
	}
	delete(r.byClient, c)
}

// Broadcast delivers ev to every member of the room except exclude.
// Pass a nil exclude to reach all members.
func (r *Rooms) Broadcast(roomID string, ev Event, exclude *Client) {
	for member := range r.rooms[roomID] {
		if member == exclude {
			continue
		}
		member.send(ev)
	}
}

// MemberCount returns the number of connections in the room.
func (r *Rooms) MemberCount(roomID string) int {
	return len(r.rooms[roomID])
}
