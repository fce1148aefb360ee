package httpapi

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	"glbview/internal/manager"
	"glbview/internal/registry"
	"glbview/internal/viewer"
	"glbview/pkg/types"
)

// newBlockingEnv serves sessions whose discovery query blocks until its
// context ends. Canceling the returned func simulates process shutdown.
func newBlockingEnv(t *testing.T) (*testEnv, chan struct{}, context.CancelFunc) {
	t.Helper()
	base, stop := context.WithCancel(context.Background())
	SetBaseContext(base)
	t.Cleanup(func() {
		stop()
		SetBaseContext(nil)
	})
	entered := make(chan struct{}, 8)
	lister := viewer.ListerFunc(func(ctx context.Context) ([]types.ModelDescriptor, error) {
		entered <- struct{}{}
		<-ctx.Done()
		return nil, ctx.Err()
	})
	dir := t.TempDir()
	hub := NewHub()
	mgr := manager.NewWithConfig(manager.ManagerConfig{
		Directory:   registry.NewService(dir, "/models", zerolog.Nop()),
		Lister:      lister,
		Publisher:   hub,
		Logger:      zerolog.Nop(),
		BaseContext: base,
	})
	t.Cleanup(mgr.CloseAll)
	return &testEnv{dir: dir, mgr: mgr, hub: hub, h: NewMux(mgr, hub)}, entered, stop
}

func openBlockedSession(t *testing.T, env *testEnv) string {
	t.Helper()
	w := env.do(t, http.MethodPost, "/api/sessions", nil, "")
	if w.Code != http.StatusCreated {
		t.Fatalf("create status=%d body=%s", w.Code, w.Body.String())
	}
	return decodeState(t, w).SessionID
}

func TestRefresh_CanceledAtShutdown(t *testing.T) {
	env, entered, shutdown := newBlockingEnv(t)
	id := openBlockedSession(t, env)
	<-entered // background discovery started by the session

	done := make(chan *httptest.ResponseRecorder, 1)
	go func() { done <- env.do(t, http.MethodPost, "/api/sessions/"+id+"/refresh", nil, "") }()
	select {
	case <-entered:
	case <-time.After(2 * time.Second):
		t.Fatal("refresh never reached discovery")
	}
	shutdown()

	var w *httptest.ResponseRecorder
	select {
	case w = <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("refresh still blocked after shutdown")
	}
	if w.Code != http.StatusGone {
		t.Fatalf("status=%d body=%s", w.Code, w.Body.String())
	}
	var e types.ErrorResponse
	if err := json.Unmarshal(w.Body.Bytes(), &e); err != nil || e.Error != manager.ErrShuttingDown.Error() {
		t.Fatalf("body=%s err=%v", w.Body.String(), err)
	}
	// The catalog is left as it was.
	if st := env.do(t, http.MethodGet, "/api/sessions/"+id, nil, ""); st.Code == http.StatusOK {
		if got := decodeState(t, st); len(got.Catalog) != 0 {
			t.Fatalf("catalog changed by a canceled refresh: %+v", got.Catalog)
		}
	}
}

func TestRefresh_EndsWithRequest(t *testing.T) {
	env, entered, _ := newBlockingEnv(t)
	id := openBlockedSession(t, env)
	<-entered

	ctx, cancel := context.WithCancel(context.Background())
	req := httptest.NewRequest(http.MethodPost, "/api/sessions/"+id+"/refresh", nil).WithContext(ctx)
	w := httptest.NewRecorder()
	done := make(chan struct{})
	go func() {
		env.h.ServeHTTP(w, req)
		close(done)
	}()
	<-entered
	cancel()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("refresh outlived its request")
	}
	if w.Body.Len() != 0 {
		t.Fatalf("nothing should be written for a gone client, got %s", w.Body.String())
	}
}

func TestWebsocket_GoingAwayAtShutdown(t *testing.T) {
	env, entered, shutdown := newBlockingEnv(t)
	srv := httptest.NewServer(env.h)
	defer srv.Close()
	id := openBlockedSession(t, env)
	<-entered

	wsURL := "ws" + strings.TrimPrefix(srv.URL, "http") + "/api/sessions/" + id + "/ws"
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer conn.Close()
	_ = conn.SetReadDeadline(time.Now().Add(5 * time.Second))
	var snap types.ViewerState
	if err := conn.ReadJSON(&snap); err != nil {
		t.Fatalf("read snapshot: %v", err)
	}

	shutdown()
	for {
		var s types.ViewerState
		err := conn.ReadJSON(&s)
		if err == nil {
			continue
		}
		if !websocket.IsCloseError(err, websocket.CloseGoingAway) {
			t.Fatalf("expected going away, got %v", err)
		}
		return
	}
}
