package http

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/Steve1314/ChatBackend/internal/core"
)

func TestCreatePrivateChatDeduplicates(t *testing.T) {
	env := newTestEnv(t)
	aliceToken, _ := env.register(t, "Alice", "alice@example.com")
	_, bob := env.register(t, "Bob", "bob@example.com")

	var first ChatView
	resp := env.do(t, http.MethodPost, "/chats", aliceToken, CreateChatRequest{
		MemberIDs: []string{bob.ID},
	}, &first)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	require.Equal(t, "private", first.Type)
	require.Len(t, first.Members, 2)

	var second ChatView
	resp = env.do(t, http.MethodPost, "/chats", aliceToken, CreateChatRequest{
		MemberIDs: []string{bob.ID},
	}, &second)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Equal(t, first.ID, second.ID)
}

func TestChatAccessRequiresMembership(t *testing.T) {
	env := newTestEnv(t)
	aliceToken, _ := env.register(t, "Alice", "alice@example.com")
	_, bob := env.register(t, "Bob", "bob@example.com")
	carolToken, _ := env.register(t, "Carol", "carol@example.com")

	var chat ChatView
	env.do(t, http.MethodPost, "/chats", aliceToken, CreateChatRequest{MemberIDs: []string{bob.ID}}, &chat)

	resp := env.do(t, http.MethodGet, "/chats/"+chat.ID, carolToken, nil, nil)
	require.Equal(t, http.StatusForbidden, resp.StatusCode)

	resp = env.do(t, http.MethodPost, "/chats/"+chat.ID+"/messages", carolToken, SendMessageRequest{Text: "hi"}, nil)
	require.Equal(t, http.StatusForbidden, resp.StatusCode)
}

func TestSendMessagePushesToRoom(t *testing.T) {
	env := newTestEnv(t)
	aliceToken, alice := env.register(t, "Alice", "alice@example.com")
	_, bob := env.register(t, "Bob", "bob@example.com")

	var chat ChatView
	env.do(t, http.MethodPost, "/chats", aliceToken, CreateChatRequest{MemberIDs: []string{bob.ID}}, &chat)

	observer := env.joinRoom(chat.ID)

	var msg MessageView
	resp := env.do(t, http.MethodPost, "/chats/"+chat.ID+"/messages", aliceToken, SendMessageRequest{Text: "hello"}, &msg)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	require.Equal(t, "hello", msg.Text)
	require.Equal(t, alice.ID, msg.Sender.ID)
	require.Equal(t, "sent", msg.Status)

	ev := nextEvent(t, observer)
	require.Equal(t, core.EventNewMessage, ev.Name)
	pushed := ev.Data.(MessageView)
	require.Equal(t, msg.ID, pushed.ID)

	// The chat's activity stamp moved.
	require.Equal(t, msg.ID, env.store.chats[chat.ID].LastMessageID)
}

func TestListMessagesPopulatesSenders(t *testing.T) {
	env := newTestEnv(t)
	aliceToken, alice := env.register(t, "Alice", "alice@example.com")
	_, bob := env.register(t, "Bob", "bob@example.com")

	var chat ChatView
	env.do(t, http.MethodPost, "/chats", aliceToken, CreateChatRequest{MemberIDs: []string{bob.ID}}, &chat)
	env.do(t, http.MethodPost, "/chats/"+chat.ID+"/messages", aliceToken, SendMessageRequest{Text: "one"}, nil)
	env.do(t, http.MethodPost, "/chats/"+chat.ID+"/messages", aliceToken, SendMessageRequest{Text: "two"}, nil)

	var res struct {
		Messages []MessageView `json:"messages"`
	}
	resp := env.do(t, http.MethodGet, "/chats/"+chat.ID+"/messages", aliceToken, nil, &res)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Len(t, res.Messages, 2)
	require.Equal(t, "one", res.Messages[0].Text)
	require.Equal(t, "Alice", res.Messages[0].Sender.Name)
	require.Equal(t, alice.ID, res.Messages[1].Sender.ID)
}

func TestDeleteMessageOnlyBySender(t *testing.T) {
	env := newTestEnv(t)
	aliceToken, _ := env.register(t, "Alice", "alice@example.com")
	bobToken, bob := env.register(t, "Bob", "bob@example.com")

	var chat ChatView
	env.do(t, http.MethodPost, "/chats", aliceToken, CreateChatRequest{MemberIDs: []string{bob.ID}}, &chat)

	var msg MessageView
	env.do(t, http.MethodPost, "/chats/"+chat.ID+"/messages", aliceToken, SendMessageRequest{Text: "hello"}, &msg)

	resp := env.do(t, http.MethodDelete, "/messages/"+msg.ID, bobToken, nil, nil)
	require.Equal(t, http.StatusForbidden, resp.StatusCode)

	observer := env.joinRoom(chat.ID)
	resp = env.do(t, http.MethodDelete, "/messages/"+msg.ID, aliceToken, nil, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.True(t, env.store.messages[msg.ID].Deleted)

	ev := nextEvent(t, observer)
	require.Equal(t, core.EventMessageDeleted, ev.Name)
}

func TestListChatsOrderedByActivity(t *testing.T) {
	env := newTestEnv(t)
	aliceToken, _ := env.register(t, "Alice", "alice@example.com")
	_, bob := env.register(t, "Bob", "bob@example.com")
	_, carol := env.register(t, "Carol", "carol@example.com")

	var withBob, withCarol ChatView
	env.do(t, http.MethodPost, "/chats", aliceToken, CreateChatRequest{MemberIDs: []string{bob.ID}}, &withBob)
	env.do(t, http.MethodPost, "/chats", aliceToken, CreateChatRequest{MemberIDs: []string{carol.ID}}, &withCarol)

	// Messaging bob makes that chat the most recent.
	env.do(t, http.MethodPost, "/chats/"+withBob.ID+"/messages", aliceToken, SendMessageRequest{Text: "hi"}, nil)

	var res struct {
		Chats []ChatView `json:"chats"`
	}
	resp := env.do(t, http.MethodGet, "/chats", aliceToken, nil, &res)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Len(t, res.Chats, 2)
	require.Equal(t, withBob.ID, res.Chats[0].ID)
}
