package http

import (
	"bytes"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"testing"

	"github.com/stretchr/testify/require"
)

func uploadFile(t *testing.T, env *testEnv, token, filename, content string) MediaView {
	t.Helper()

	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	part, err := w.CreateFormFile("files", filename)
	require.NoError(t, err)
	_, err = part.Write([]byte(content))
	require.NoError(t, err)
	require.NoError(t, w.Close())

	req, err := http.NewRequest(http.MethodPost, env.ts.URL+"/media/upload", &buf)
	require.NoError(t, err)
	req.Header.Set("Content-Type", w.FormDataContentType())
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	var res struct {
		Media []MediaView `json:"media"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&res))
	require.Len(t, res.Media, 1)
	return res.Media[0]
}

func TestMediaUploadAndServe(t *testing.T) {
	env := newTestEnv(t)
	token, _ := env.register(t, "Alice", "alice@example.com")

	media := uploadFile(t, env, token, "photo.png", "png-bytes")
	require.Equal(t, "photo.png", media.Filename)
	require.EqualValues(t, len("png-bytes"), media.Size)
	// Stored under a generated name, not the client's.
	require.NotEqual(t, "photo.png", media.Path)

	req, err := http.NewRequest(http.MethodGet, env.ts.URL+"/media/"+media.Path, nil)
	require.NoError(t, err)
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	require.Equal(t, "png-bytes", string(body))
}

func TestMediaUploadRequiresFiles(t *testing.T) {
	env := newTestEnv(t)
	token, _ := env.register(t, "Alice", "alice@example.com")

	resp := env.do(t, http.MethodPost, "/media/upload", token, nil, nil)
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)
}
