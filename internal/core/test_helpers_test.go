package core

import (
	"testing"

	"github.com/rs/zerolog"
)

func nopLogger() *zerolog.Logger {
	l := zerolog.Nop()
	return &l
}

// mustEvent pops the next buffered event from c and checks its name.
// The gateway dispatches synchronously, so the event is already there
// (or the test fails).
func mustEvent(t *testing.T, c *Client, name string) Event {
	t.Helper()
	select {
	case ev := <-c.Events:
		if ev.Name != name {
			t.Fatalf("expected event %q, got %q (%+v)", name, ev.Name, ev.Data)
		}
		return ev
	default:
		t.Fatalf("expected event %q, channel empty", name)
		return Event{}
	}
}

// noEvent asserts c has nothing buffered.
func noEvent(t *testing.T, c *Client) {
	t.Helper()
	select {
	case ev := <-c.Events:
		t.Fatalf("expected no event, got %q (%+v)", ev.Name, ev.Data)
	default:
	}
}

// drain empties c's buffered events.
func drain(c *Client) {
	for {
		select {
		case <-c.Events:
		default:
			return
		}
	}
}
