package core

// Registry maps a user identity to its single live connection.
// At most one connection per identity: a later identify overwrites the
// earlier mapping without closing the superseded connection.
//
// Not safe for concurrent use; the Gateway serializes all access.
type Registry struct {
	conns map[string]*Client
}

// NewRegistry constructs an empty registry.
func NewRegistry() *Registry {
	return &Registry{conns: make(map[string]*Client)}
}

// Register binds identity to c, unconditionally overwriting any
// existing mapping (last writer wins).
func (r *Registry) Register(identity string, c *Client) {
	r.conns[identity] = c
}

// Resolve returns the connection currently bound to identity, or nil.
func (r *Registry) Resolve(identity string) *Client {
	return r.conns[identity]
}

// Unregister removes the mapping only if c is still the registered
// connection for identity. Reports whether the entry was removed, so a
// stale disconnect from a superseded connection never evicts its successor.
func (r *Registry) Unregister(identity string, c *Client) bool {
	if r.conns[identity] != c {
		return false
	}
	delete(r.conns, identity)
	return true
}

// Len returns the number of registered identities.
func (r *Registry) Len() int {
	return len(r.conns)
}
