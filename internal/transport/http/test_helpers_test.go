package http

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sort"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/Steve1314/ChatBackend/internal/auth"
	"github.com/Steve1314/ChatBackend/internal/config"
	"github.com/Steve1314/ChatBackend/internal/core"
	"github.com/Steve1314/ChatBackend/internal/store"
)

// fakeStore is an in-memory store.Store for handler tests.
type fakeStore struct {
	seq           int
	users         map[string]*store.User
	chats         map[string]*store.Chat
	messages      map[string]*store.Message
	media         map[string]*store.Media
	calls         map[string]*store.Call
	notifications map[string]*store.Notification
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		users:         make(map[string]*store.User),
		chats:         make(map[string]*store.Chat),
		messages:      make(map[string]*store.Message),
		media:         make(map[string]*store.Media),
		calls:         make(map[string]*store.Call),
		notifications: make(map[string]*store.Notification),
	}
}

func (f *fakeStore) nextID() string {
	f.seq++
	return fmt.Sprintf("id%d", f.seq)
}

func (f *fakeStore) CreateUser(_ context.Context, u *store.User) (*store.User, error) {
	created := *u
	created.ID = f.nextID()
	created.CreatedAt = time.Now()
	f.users[created.ID] = &created
	return &created, nil
}

func (f *fakeStore) GetUserByID(_ context.Context, id string) (*store.User, error) {
	if u, ok := f.users[id]; ok {
		return u, nil
	}
	return nil, store.ErrNotFound
}

func (f *fakeStore) GetUserByEmail(_ context.Context, email string) (*store.User, error) {
	for _, u := range f.users {
		if u.Email == email {
			return u, nil
		}
	}
	return nil, store.ErrNotFound
}

func (f *fakeStore) ListUsersByEmails(_ context.Context, emails []string) ([]*store.User, error) {
	var out []*store.User
	for _, email := range emails {
		for _, u := range f.users {
			if u.Email == email {
				out = append(out, u)
			}
		}
	}
	return out, nil
}

func (f *fakeStore) ListUsersByIDs(_ context.Context, ids []string) ([]*store.User, error) {
	var out []*store.User
	for _, id := range ids {
		if u, ok := f.users[id]; ok {
			out = append(out, u)
		}
	}
	return out, nil
}

func (f *fakeStore) UpdateUserProfile(_ context.Context, email string, name, avatarURL, status *string) (*store.User, error) {
	for _, u := range f.users {
		if u.Email != email {
			continue
		}
		if name != nil {
			u.Name = *name
		}
		if avatarURL != nil {
			u.AvatarURL = *avatarURL
		}
		if status != nil {
			u.Status = *status
		}
		return u, nil
	}
	return nil, store.ErrNotFound
}

func (f *fakeStore) UpdateUserActivity(_ context.Context, userID, typingIn string) (*store.User, error) {
	if u, ok := f.users[userID]; ok {
		u.TypingIn = typingIn
		u.LastSeen = time.Now()
		return u, nil
	}
	return nil, store.ErrNotFound
}

func (f *fakeStore) CreateChat(_ context.Context, c *store.Chat) (*store.Chat, error) {
	created := *c
	created.ID = f.nextID()
	created.CreatedAt = time.Now()
	f.chats[created.ID] = &created
	return &created, nil
}

func (f *fakeStore) GetChatByID(_ context.Context, id string) (*store.Chat, error) {
	if c, ok := f.chats[id]; ok {
		return c, nil
	}
	return nil, store.ErrNotFound
}

func (f *fakeStore) GetPrivateChat(_ context.Context, userA, userB string) (*store.Chat, error) {
	want := []string{userA, userB}
	sort.Strings(want)
	for _, c := range f.chats {
		if c.Type != store.ChatTypePrivate || len(c.MemberIDs) != 2 {
			continue
		}
		got := append([]string(nil), c.MemberIDs...)
		sort.Strings(got)
		if got[0] == want[0] && got[1] == want[1] {
			return c, nil
		}
	}
	return nil, store.ErrNotFound
}

func (f *fakeStore) ListChatsForUser(_ context.Context, userID string) ([]*store.Chat, error) {
	var out []*store.Chat
	for _, c := range f.chats {
		for _, id := range c.MemberIDs {
			if id == userID {
				out = append(out, c)
				break
			}
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].LastMessageAt.After(out[j].LastMessageAt) })
	return out, nil
}

func (f *fakeStore) IsChatMember(_ context.Context, chatID, userID string) (bool, error) {
	c, ok := f.chats[chatID]
	if !ok {
		return false, store.ErrNotFound
	}
	for _, id := range c.MemberIDs {
		if id == userID {
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeStore) TouchChat(_ context.Context, chatID, lastMessageID string, at time.Time) error {
	c, ok := f.chats[chatID]
	if !ok {
		return store.ErrNotFound
	}
	c.LastMessageID = lastMessageID
	c.LastMessageAt = at
	return nil
}

func (f *fakeStore) CreateMessage(_ context.Context, m *store.Message) (*store.Message, error) {
	created := *m
	created.ID = f.nextID()
	created.CreatedAt = time.Now()
	f.messages[created.ID] = &created
	return &created, nil
}

func (f *fakeStore) GetMessageByID(_ context.Context, id string) (*store.Message, error) {
	if m, ok := f.messages[id]; ok {
		return m, nil
	}
	return nil, store.ErrNotFound
}

func (f *fakeStore) ListMessagesForChat(_ context.Context, chatID string) ([]*store.Message, error) {
	var out []*store.Message
	for _, m := range f.messages {
		if m.ChatID == chatID {
			out = append(out, m)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

func (f *fakeStore) MarkMessageDeleted(_ context.Context, id string, at time.Time) error {
	m, ok := f.messages[id]
	if !ok {
		return store.ErrNotFound
	}
	m.Deleted = true
	m.DeletedAt = &at
	return nil
}

func (f *fakeStore) CreateMedia(_ context.Context, m *store.Media) (*store.Media, error) {
	created := *m
	created.ID = f.nextID()
	created.CreatedAt = time.Now()
	f.media[created.ID] = &created
	return &created, nil
}

func (f *fakeStore) ListMediaByIDs(_ context.Context, ids []string) ([]*store.Media, error) {
	var out []*store.Media
	for _, id := range ids {
		if m, ok := f.media[id]; ok {
			out = append(out, m)
		}
	}
	return out, nil
}

func (f *fakeStore) CreateCall(_ context.Context, c *store.Call) (*store.Call, error) {
	created := *c
	created.ID = f.nextID()
	created.CreatedAt = time.Now()
	f.calls[created.ID] = &created
	return &created, nil
}

func (f *fakeStore) GetCallByID(_ context.Context, id string) (*store.Call, error) {
	if c, ok := f.calls[id]; ok {
		return c, nil
	}
	return nil, store.ErrNotFound
}

func (f *fakeStore) UpdateCall(_ context.Context, c *store.Call) error {
	if _, ok := f.calls[c.ID]; !ok {
		return store.ErrNotFound
	}
	updated := *c
	f.calls[c.ID] = &updated
	return nil
}

func (f *fakeStore) ListCallsForChat(_ context.Context, chatID string, limit int) ([]*store.Call, error) {
	var out []*store.Call
	for _, c := range f.calls {
		if c.ChatID == chatID {
			out = append(out, c)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (f *fakeStore) DeleteCall(_ context.Context, id string) error {
	if _, ok := f.calls[id]; !ok {
		return store.ErrNotFound
	}
	delete(f.calls, id)
	return nil
}

func (f *fakeStore) CreateNotification(_ context.Context, n *store.Notification) (*store.Notification, error) {
	created := *n
	created.ID = f.nextID()
	created.CreatedAt = time.Now()
	f.notifications[created.ID] = &created
	return &created, nil
}

func (f *fakeStore) ListNotificationsForUser(_ context.Context, userID string) ([]*store.Notification, error) {
	var out []*store.Notification
	for _, n := range f.notifications {
		if n.UserID == userID {
			out = append(out, n)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (f *fakeStore) Close(context.Context) error { return nil }

// testEnv bundles a running server with direct access to its guts.
type testEnv struct {
	ts      *httptest.Server
	store   *fakeStore
	gateway *core.Gateway
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	logger := zerolog.Nop()
	st := newFakeStore()
	gateway := core.NewGateway(&logger)

	authService := auth.NewService(st, &auth.JWTConfig{
		Secret:   []byte("testsecret"),
		Issuer:   "chatbackend",
		Audience: "chatbackend-clients",
		TTL:      time.Hour,
	})

	cfg := config.Default()
	cfg.UploadDir = t.TempDir()

	server := NewServer(ServerDeps{
		Store:       st,
		Gateway:     gateway,
		AuthService: authService,
		OTPService:  nil,
		Publisher:   nil,
		RateLimiter: nil,
	}, cfg, &logger)

	ts := httptest.NewServer(server.Handler)
	t.Cleanup(ts.Close)

	return &testEnv{ts: ts, store: st, gateway: gateway}
}

// do issues a JSON request and decodes the response body into out (when
// out is non-nil).
func (e *testEnv) do(t *testing.T, method, path, token string, body, out any) *http.Response {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req, err := http.NewRequest(method, e.ts.URL+path, &buf)
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	t.Cleanup(func() { resp.Body.Close() })

	if out != nil {
		require.NoError(t, json.NewDecoder(resp.Body).Decode(out))
	}
	return resp
}

// register creates an account through the API and returns its token and view.
func (e *testEnv) register(t *testing.T, name, email string) (string, UserSummary) {
	t.Helper()

	var res AuthResponse
	resp := e.do(t, http.MethodPost, "/auth/register", "", RegisterRequest{
		Name:     name,
		Email:    email,
		Password: "secret1",
	}, &res)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	return res.Token, res.User
}

// joinRoom attaches a bare coordinator client to a room so tests can
// observe what the REST layer pushes over the event channel.
func (e *testEnv) joinRoom(roomID string) *core.Client {
	c := core.NewClient("test-observer-" + roomID)
	e.gateway.Attach(c)
	e.gateway.JoinChat(c, roomID)
	return c
}

// nextEvent pops the next buffered event from c, failing if none arrived.
func nextEvent(t *testing.T, c *core.Client) core.Event {
	t.Helper()
	select {
	case ev := <-c.Events:
		return ev
	case <-time.After(time.Second):
		t.Fatal("no event received")
		return core.Event{}
	}
}
