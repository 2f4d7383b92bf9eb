package upload

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nightdrive/showcase/pkg/core"
)

func TestNew_TrimsTrailingSlash(t *testing.T) {
	c := New("http://localhost:5000/", "secret123")
	assert.Equal(t, "http://localhost:5000", c.baseURL)
	assert.Equal(t, "secret123", c.apiKey)
	assert.NotNil(t, c.httpClient)
}

func TestHealthcheck(t *testing.T) {
	var status atomic.Int32
	status.Store(http.StatusOK)
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/healthcheck", r.URL.Path)
		w.WriteHeader(int(status.Load()))
	}))
	defer server.Close()

	c := New(server.URL, "")
	require.NoError(t, c.Healthcheck(context.Background()))

	status.Store(http.StatusInternalServerError)
	assert.ErrorContains(t, c.Healthcheck(context.Background()), "status 500")
}

func TestHealthcheck_ServerDown(t *testing.T) {
	c := New("http://127.0.0.1:1", "")
	assert.Error(t, c.Healthcheck(context.Background()))
}

func TestUpload_Success(t *testing.T) {
	var form map[string]string
	var content []byte

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/v1/recordings/add", r.URL.Path)
		assert.Equal(t, http.MethodPost, r.Method)
		if !assert.NoError(t, r.ParseMultipartForm(10<<20)) {
			w.WriteHeader(http.StatusBadRequest)
			return
		}

		form = map[string]string{}
		for _, k := range []string{"secret", "filename", "sessionName", "startScene", "duration", "frames", "tag"} {
			form[k] = r.FormValue(k)
		}
		file, _, err := r.FormFile("file")
		if assert.NoError(t, err) {
			defer file.Close()
			content, _ = io.ReadAll(file)
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	testFile := filepath.Join(t.TempDir(), "night_20260102_030405.json.gz")
	require.NoError(t, os.WriteFile(testFile, []byte("test content"), 0o644))

	c := New(server.URL, "mysecret")
	meta := MetadataFor(
		&core.Session{Name: "night", StartScene: "1. City"},
		core.FrameState{Frame: 720, TotalTime: 12.5},
		"demo",
	)
	require.NoError(t, c.Upload(context.Background(), testFile, meta))

	assert.Equal(t, map[string]string{
		"secret":      "mysecret",
		"filename":    "night_20260102_030405.json.gz",
		"sessionName": "night",
		"startScene":  "1. City",
		"duration":    "12.500",
		"frames":      "720",
		"tag":         "demo",
	}, form)
	assert.Equal(t, "test content", string(content))
}

func TestUpload_FileNotFound(t *testing.T) {
	c := New("http://localhost:5000", "secret")
	err := c.Upload(context.Background(), "/nonexistent/file.json.gz", Metadata{})
	assert.ErrorContains(t, err, "failed to open file")
}

func TestUpload_ServerError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.Copy(io.Discard, r.Body)
		w.WriteHeader(http.StatusForbidden)
	}))
	defer server.Close()

	testFile := filepath.Join(t.TempDir(), "test.json.gz")
	require.NoError(t, os.WriteFile(testFile, []byte("content"), 0o644))

	c := New(server.URL, "wrong-secret")
	assert.ErrorContains(t, c.Upload(context.Background(), testFile, Metadata{}), "status 403")
}
