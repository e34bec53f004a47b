package http

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"
	"github.com/stretchr/testify/require"

	"github.com/Steve1314/ChatBackend/internal/proto"
)

func dialWS(t *testing.T, env *testEnv) *websocket.Conn {
	t.Helper()

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	conn, _, err := websocket.Dial(ctx, env.ts.URL+"/ws", nil)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close(websocket.StatusNormalClosure, "done") })
	return conn
}

func sendWS(t *testing.T, conn *websocket.Conn, typ string, data any) {
	t.Helper()

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	raw, err := json.Marshal(data)
	require.NoError(t, err)
	require.NoError(t, wsjson.Write(ctx, conn, proto.Inbound{Type: typ, Data: raw}))
}

func readWS(t *testing.T, conn *websocket.Conn) proto.Outbound {
	t.Helper()

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	var out proto.Outbound
	require.NoError(t, wsjson.Read(ctx, conn, &out))
	return out
}

func TestWebSocketIdentifyAnnouncesPresence(t *testing.T) {
	env := newTestEnv(t)
	conn := dialWS(t, env)

	sendWS(t, conn, proto.InboundTypeIdentify, proto.IdentifyData{Identity: "alice@example.com"})

	status := readWS(t, conn)
	require.Equal(t, "userStatus", status.Event)

	presence := readWS(t, conn)
	require.Equal(t, "presence", presence.Event)

	require.Eventually(t, func() bool {
		online := env.gateway.OnlineIdentities()
		return len(online) == 1 && online[0] == "alice@example.com"
	}, time.Second, 10*time.Millisecond)
}

func TestWebSocketMalformedEventsAreDropped(t *testing.T) {
	env := newTestEnv(t)
	conn := dialWS(t, env)

	// Unknown type and broken payload must not close the connection.
	sendWS(t, conn, "no-such-type", map[string]string{"x": "y"})

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	require.NoError(t, wsjson.Write(ctx, conn, proto.Inbound{Type: proto.InboundTypeIdentify, Data: json.RawMessage(`"not-an-object"`)}))

	// A well-formed identify afterwards still works.
	sendWS(t, conn, proto.InboundTypeIdentify, proto.IdentifyData{Identity: "alice@example.com"})
	status := readWS(t, conn)
	require.Equal(t, "userStatus", status.Event)
}

func TestWebSocketRoomRelayBetweenConnections(t *testing.T) {
	env := newTestEnv(t)

	alice := dialWS(t, env)
	bob := dialWS(t, env)

	sendWS(t, alice, proto.InboundTypeIdentify, proto.IdentifyData{Identity: "alice@example.com"})
	readWS(t, alice) // own userStatus
	readWS(t, alice) // own presence

	sendWS(t, bob, proto.InboundTypeIdentify, proto.IdentifyData{Identity: "bob@example.com"})
	// Alice sees bob come online, bob sees his own announcements.
	readWS(t, alice)
	readWS(t, alice)
	readWS(t, bob)
	readWS(t, bob)

	sendWS(t, alice, proto.InboundTypeJoinChat, proto.RoomData{RoomID: "room1"})
	// Round-trip on alice's connection: once the re-identify echoes back,
	// her join has been processed too.
	sendWS(t, alice, proto.InboundTypeIdentify, proto.IdentifyData{Identity: "alice@example.com"})
	readWS(t, alice)
	readWS(t, alice)
	readWS(t, bob)
	readWS(t, bob)

	sendWS(t, bob, proto.InboundTypeJoinChat, proto.RoomData{RoomID: "room1"})
	sendWS(t, bob, proto.InboundTypeTyping, proto.TypingData{RoomID: "room1", Identity: "bob@example.com"})

	ev := readWS(t, alice)
	require.Equal(t, "typing", ev.Event)
}
