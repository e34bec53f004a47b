package core

// Client is a live transport connection as seen by the coordinator.
// Its identity is empty until the client sends an identify event.
type Client struct {
	ID       string
	Events   chan Event
	identity string
}

// NewClient constructs a client with an initialized event channel.
func NewClient(id string) *Client {
	return &Client{
		ID:     id,
		Events: make(chan Event, 32),
	}
}

// Identity returns the identity bound at identify time, or "" if the
// connection never identified itself.
func (c *Client) Identity() string {
	return c.identity
}

// send delivers an event to the client without blocking.
func (c *Client) send(ev Event) {
	select {
	case c.Events <- ev:
	default:
		// Drop if slow consumer.
	}
}
