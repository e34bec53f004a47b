package http

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestGetUserProfile(t *testing.T) {
	env := newTestEnv(t)
	aliceToken, _ := env.register(t, "Alice", "alice@example.com")
	_, bob := env.register(t, "Bob", "bob@example.com")

	var view UserView
	resp := env.do(t, http.MethodGet, "/users/"+bob.ID, aliceToken, nil, &view)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Equal(t, "Bob", view.Name)

	resp = env.do(t, http.MethodGet, "/users/missing", aliceToken, nil, nil)
	require.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestUpdateProfilePartialFields(t *testing.T) {
	env := newTestEnv(t)
	token, _ := env.register(t, "Alice", "alice@example.com")

	name := "Alice B"
	var view UserView
	resp := env.do(t, http.MethodPut, "/users/me", token, UpdateProfileRequest{Name: &name}, &view)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Equal(t, "Alice B", view.Name)

	status := "busy"
	resp = env.do(t, http.MethodPut, "/users/me", token, UpdateProfileRequest{Status: &status}, &view)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Equal(t, "busy", view.Status)
	require.Equal(t, "Alice B", view.Name)

	resp = env.do(t, http.MethodPut, "/users/me", token, UpdateProfileRequest{}, nil)
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestUpdateActivityRecordsTyping(t *testing.T) {
	env := newTestEnv(t)
	token, alice := env.register(t, "Alice", "alice@example.com")

	var view UserView
	resp := env.do(t, http.MethodPost, "/users/activity", token, UpdateActivityRequest{TypingIn: "chat42"}, &view)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Equal(t, "chat42", view.TypingIn)
	require.False(t, view.LastSeen.IsZero())

	view = UserView{}
	resp = env.do(t, http.MethodPost, "/users/activity", token, UpdateActivityRequest{}, &view)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Empty(t, view.TypingIn)
	require.Equal(t, alice.ID, view.ID)
}

func TestOnlineReflectsGateway(t *testing.T) {
	env := newTestEnv(t)
	token, _ := env.register(t, "Alice", "alice@example.com")

	var res struct {
		Online []string `json:"online"`
	}
	resp := env.do(t, http.MethodGet, "/users/online", token, nil, &res)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Empty(t, res.Online)

	c := env.joinRoom("whatever")
	env.gateway.Identify(c, "alice@example.com")

	resp = env.do(t, http.MethodGet, "/users/online", token, nil, &res)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Equal(t, []string{"alice@example.com"}, res.Online)
}
