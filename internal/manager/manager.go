package manager

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"glbview/internal/registry"
	"glbview/internal/viewer"
	"glbview/pkg/types"
)

// Session is one page's viewer state.
type Session struct {
	ID         string
	Controller *viewer.Controller
	Widget     *viewer.RemoteWidget
}

type Manager struct {
	mu       sync.RWMutex
	sessions map[string]*Session
	closed   bool

	dir     *registry.Service
	lister  viewer.Lister
	blobs   *viewer.BlobStore
	assets  *viewer.Assets
	script  string
	timeout time.Duration
	ttl     time.Duration
	builtin []types.ModelDescriptor
	clock   viewer.Clock
	pub     viewer.EventPublisher
	log     zerolog.Logger
	baseCtx context.Context
	// attached may be nil.
	attached func(string) bool

	startTime time.Time
}

// New builds a Manager over a models directory with package defaults.
func New(dir *registry.Service, widgetScript string, log zerolog.Logger) *Manager {
	return NewWithConfig(ManagerConfig{Directory: dir, WidgetScript: widgetScript, Logger: log})
}

// Ready reports whether new sessions can be opened.
func (m *Manager) Ready() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return !m.closed
}

// ListModels answers the discovery query. It never fails.
func (m *Manager) ListModels() []types.ModelDescriptor {
	if m.dir == nil {
		return []types.ModelDescriptor{}
	}
	return m.dir.ListModels()
}

// Blob returns uploaded bytes by id.
func (m *Manager) Blob(id string) (*viewer.Blob, bool) { return m.blobs.Get(id) }

// Create opens and starts a new session.
func (m *Manager) Create() (*Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return nil, ErrShuttingDown
	}
	id := uuid.NewString()
	w := viewer.NewRemoteWidget()
	ctl := viewer.New(viewer.Options{
		SessionID:    id,
		Widget:       w,
		Lister:       m.lister,
		Blobs:        m.blobs,
		Assets:       m.assets,
		WidgetScript: m.script,
		Publisher:    m.pub,
		Clock:        m.clock,
		LoadTimeout:  m.timeout,
		Builtin:      m.builtin,
		Logger:       m.log.With().Str("session", id).Logger(),
	})
	s := &Session{ID: id, Controller: ctl, Widget: w}
	m.sessions[id] = s
	sessionsActive.Inc()
	ctl.Start(m.baseCtx)
	m.log.Debug().Str("session", id).Msg("session opened")
	return s, nil
}

// Get returns the session with the given id.
func (m *Manager) Get(id string) (*Session, error) {
	m.mu.RLock()
	s, ok := m.sessions[id]
	m.mu.RUnlock()
	if !ok {
		return nil, ErrSessionNotFound(id)
	}
	return s, nil
}

// Close tears down one session and releases its uploads.
func (m *Manager) Close(id string) error {
	m.mu.Lock()
	s, ok := m.sessions[id]
	if ok {
		delete(m.sessions, id)
	}
	m.mu.Unlock()
	if !ok {
		return ErrSessionNotFound(id)
	}
	sessionsActive.Dec()
	m.log.Debug().Str("session", id).Msg("session closed")
	return s.Controller.Close()
}

// CloseAll closes every session and refuses new ones.
func (m *Manager) CloseAll() {
	m.mu.Lock()
	m.closed = true
	all := make([]*Session, 0, len(m.sessions))
	for id, s := range m.sessions {
		all = append(all, s)
		delete(m.sessions, id)
	}
	m.mu.Unlock()
	for _, s := range all {
		sessionsActive.Dec()
		_ = s.Controller.Close()
	}
}

// Count returns the number of open sessions.
func (m *Manager) Count() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.sessions)
}
