package httpapi

import (
	"context"
	"net/http"
	"net/url"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"glbview/internal/viewer"
	"glbview/pkg/types"
)

const (
	wsWriteWait  = 10 * time.Second
	wsPongWait   = 60 * time.Second
	wsPingPeriod = wsPongWait * 9 / 10
	wsReadLimit  = 512
)

// Hub pushes session state to websocket clients. It implements
// viewer.EventPublisher; Publish never blocks on the network. Each client
// keeps only the newest undelivered state, so a slow page skips
// intermediate snapshots instead of stalling the controller.
type Hub struct {
	mu       sync.Mutex
	clients  map[string]map[*wsClient]struct{}
	upgrader websocket.Upgrader
}

// NewHub returns an empty hub.
func NewHub() *Hub {
	h := &Hub{clients: make(map[string]map[*wsClient]struct{})}
	h.upgrader = websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 4096,
		CheckOrigin:     checkOrigin,
	}
	return h
}

// checkOrigin accepts same-origin pages, plus the configured CORS origins.
func checkOrigin(r *http.Request) bool {
	origin := r.Header.Get("Origin")
	if origin == "" {
		return true
	}
	u, err := url.Parse(origin)
	if err == nil && u.Host == r.Host {
		return true
	}
	return originAllowed(origin)
}

type wsClient struct {
	conn   *websocket.Conn
	mu     sync.Mutex
	latest *types.ViewerState
	high   uint64
	notify chan struct{}
	done   chan struct{}
	once   sync.Once
}

func newWSClient(conn *websocket.Conn) *wsClient {
	return &wsClient{conn: conn, notify: make(chan struct{}, 1), done: make(chan struct{})}
}

// offer queues s unless a state at least as new was already queued or sent.
func (c *wsClient) offer(s types.ViewerState) {
	c.mu.Lock()
	if c.high > 0 && s.Version <= c.high {
		c.mu.Unlock()
		return
	}
	c.high = s.Version
	if c.latest != nil {
		wsDroppedTotal.Inc()
	}
	c.latest = &s
	c.mu.Unlock()
	select {
	case c.notify <- struct{}{}:
	default:
	}
}

func (c *wsClient) take() *types.ViewerState {
	c.mu.Lock()
	defer c.mu.Unlock()
	s := c.latest
	c.latest = nil
	return s
}

func (c *wsClient) shutdown() { c.once.Do(func() { close(c.done) }) }

// Publish implements viewer.EventPublisher.
func (h *Hub) Publish(e viewer.Event) {
	switch e.Name {
	case viewer.EventState:
		if e.State == nil {
			return
		}
		h.mu.Lock()
		for c := range h.clients[e.SessionID] {
			c.offer(*e.State)
		}
		h.mu.Unlock()
	case viewer.EventClosed:
		h.mu.Lock()
		cs := h.clients[e.SessionID]
		delete(h.clients, e.SessionID)
		h.mu.Unlock()
		for c := range cs {
			c.shutdown()
		}
	}
}

// Clients returns the number of connections attached to sessionID.
func (h *Hub) Clients(sessionID string) int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.clients[sessionID])
}

// Attached reports whether a page is still connected to sessionID. The
// session manager uses it to spare open pages from idle reaping.
func (h *Hub) Attached(sessionID string) bool { return h.Clients(sessionID) > 0 }

func (h *Hub) add(sessionID string, c *wsClient) {
	h.mu.Lock()
	if h.clients[sessionID] == nil {
		h.clients[sessionID] = make(map[*wsClient]struct{})
	}
	h.clients[sessionID][c] = struct{}{}
	h.mu.Unlock()
	wsClients.Inc()
}

func (h *Hub) remove(sessionID string, c *wsClient) {
	h.mu.Lock()
	if cs := h.clients[sessionID]; cs != nil {
		delete(cs, c)
		if len(cs) == 0 {
			delete(h.clients, sessionID)
		}
	}
	h.mu.Unlock()
	wsClients.Dec()
}

// Watched is the session side of a websocket: the source of the first
// snapshot and the activity clock the idle reaper reads.
type Watched interface {
	State() types.ViewerState
	Touch()
}

// Serve upgrades the request and streams state for sessionID until the
// client goes away, the session closes or ctx is done. The first snapshot is
// read after the client is registered, so no push can fall between the two.
// An open connection keeps the session active: it is touched on connect and
// on every pong.
func (h *Hub) Serve(ctx context.Context, w http.ResponseWriter, r *http.Request, sessionID string, s Watched) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade has already replied to the client.
		logDebug("websocket upgrade failed", "session", sessionID, "error", err.Error())
		return
	}
	c := newWSClient(conn)
	h.add(sessionID, c)
	defer func() {
		h.remove(sessionID, c)
		_ = conn.Close()
	}()
	s.Touch()
	c.offer(s.State())

	go c.readLoop(s.Touch)
	c.writeLoop(ctx)
}

// readLoop discards client messages; it exists to process control frames
// and notice disconnects.
func (c *wsClient) readLoop(alive func()) {
	defer c.shutdown()
	c.conn.SetReadLimit(wsReadLimit)
	_ = c.conn.SetReadDeadline(time.Now().Add(wsPongWait))
	c.conn.SetPongHandler(func(string) error {
		alive()
		return c.conn.SetReadDeadline(time.Now().Add(wsPongWait))
	})
	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			return
		}
	}
}

func (c *wsClient) writeLoop(ctx context.Context) {
	ping := time.NewTicker(wsPingPeriod)
	defer ping.Stop()
	for {
		select {
		case <-ctx.Done():
			if shuttingDown(ctx) {
				c.closeWith(websocket.CloseGoingAway, "server shutting down")
			}
			return
		case <-c.done:
			c.closeWith(websocket.CloseNormalClosure, "session closed")
			return
		case <-c.notify:
			s := c.take()
			if s == nil {
				continue
			}
			_ = c.conn.SetWriteDeadline(time.Now().Add(wsWriteWait))
			if err := c.conn.WriteJSON(s); err != nil {
				return
			}
		case <-ping.C:
			if err := c.conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(wsWriteWait)); err != nil {
				return
			}
		}
	}
}

func (c *wsClient) closeWith(code int, text string) {
	msg := websocket.FormatCloseMessage(code, text)
	_ = c.conn.WriteControl(websocket.CloseMessage, msg, time.Now().Add(wsWriteWait))
}
