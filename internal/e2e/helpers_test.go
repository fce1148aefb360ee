package e2e

import (
	"bytes"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"glbview/internal/httpapi"
	"glbview/internal/manager"
	"glbview/internal/registry"
	"glbview/pkg/types"
)

// createTempModelsDir creates a temporary directory populated with small
// files and returns its path.
func createTempModelsDir(t *testing.T, names ...string) string {
	t.Helper()
	dir := t.TempDir()
	for _, n := range names {
		require.NoError(t, os.WriteFile(filepath.Join(dir, n), []byte("glTF"+n), 0o644))
	}
	return dir
}

// newServerForDir wires the full stack the way serve does and returns the
// running test server.
func newServerForDir(t *testing.T, modelsDir string, cfg manager.ManagerConfig) (*httptest.Server, *manager.Manager) {
	t.Helper()
	httpapi.SetModelsDir(modelsDir, "/models")
	hub := httpapi.NewHub()
	cfg.Directory = registry.NewService(modelsDir, "/models", zerolog.Nop())
	cfg.Publisher = hub
	cfg.Attached = hub.Attached
	cfg.Logger = zerolog.Nop()
	mgr := manager.NewWithConfig(cfg)
	srv := httptest.NewServer(httpapi.NewMux(mgr, hub))
	t.Cleanup(func() {
		mgr.CloseAll()
		srv.Close()
	})
	return srv, mgr
}

type client struct {
	t   *testing.T
	srv *httptest.Server
}

func (c client) do(method, path string, body io.Reader, ct string) (*http.Response, []byte) {
	c.t.Helper()
	req, err := http.NewRequest(method, c.srv.URL+path, body)
	require.NoError(c.t, err)
	if ct != "" {
		req.Header.Set("Content-Type", ct)
	}
	resp, err := c.srv.Client().Do(req)
	require.NoError(c.t, err)
	defer resp.Body.Close()
	b, err := io.ReadAll(resp.Body)
	require.NoError(c.t, err)
	return resp, b
}

func (c client) postJSON(path string, v any) (*http.Response, []byte) {
	c.t.Helper()
	b, err := json.Marshal(v)
	require.NoError(c.t, err)
	return c.do(http.MethodPost, path, bytes.NewReader(b), "application/json")
}

func (c client) upload(sessionID, filename string, data []byte) (*http.Response, []byte) {
	c.t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	fw, err := mw.CreateFormFile("file", filename)
	require.NoError(c.t, err)
	_, _ = fw.Write(data)
	require.NoError(c.t, mw.Close())
	return c.do(http.MethodPost, "/api/sessions/"+sessionID+"/upload", &buf, mw.FormDataContentType())
}

func (c client) state(sessionID string) types.ViewerState {
	c.t.Helper()
	resp, b := c.do(http.MethodGet, "/api/sessions/"+sessionID, nil, "")
	require.Equal(c.t, http.StatusOK, resp.StatusCode, string(b))
	return decode[types.ViewerState](c.t, b)
}

// open creates a session and waits for background discovery to land.
func (c client) open(wantCatalog int) types.ViewerState {
	c.t.Helper()
	resp, b := c.do(http.MethodPost, "/api/sessions", nil, "")
	require.Equal(c.t, http.StatusCreated, resp.StatusCode, string(b))
	st := decode[types.ViewerState](c.t, b)
	require.Eventually(c.t, func() bool {
		return len(c.state(st.SessionID).Catalog) == wantCatalog
	}, 2*time.Second, 10*time.Millisecond)
	return c.state(st.SessionID)
}

func decode[T any](t *testing.T, b []byte) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(b, &v), string(b))
	return v
}
