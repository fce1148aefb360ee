package manager

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"glbview/internal/registry"
	"glbview/internal/viewer"
	"glbview/pkg/types"
)

// Defaults applied when corresponding ManagerConfig fields are unset.
const (
	defaultBlobPrefix   = "/blobs"
	defaultJanitorEvery = time.Minute
)

// ManagerConfig encapsulates all tunables for Manager construction.
type ManagerConfig struct {
	// Directory answers the discovery query. Required.
	Directory *registry.Service
	// Lister overrides the discovery source used by sessions. Defaults to the
	// in-process Directory.
	Lister         viewer.Lister
	Blobs          *viewer.BlobStore
	MaxUploadBytes int64
	Assets         *viewer.Assets
	WidgetScript   string
	LoadTimeout    time.Duration
	// SessionTTL closes sessions idle for longer. Zero disables reaping.
	SessionTTL time.Duration
	Builtin    []types.ModelDescriptor
	Publisher  viewer.EventPublisher
	Clock      viewer.Clock
	Logger     zerolog.Logger
	// BaseContext bounds background work started by sessions (discovery).
	BaseContext context.Context
	// Attached reports sessions a page is still connected to. Those are
	// never reaped, whatever their idle time.
	Attached func(sessionID string) bool
}

// NewWithConfig constructs a Manager from ManagerConfig.
func NewWithConfig(cfg ManagerConfig) *Manager {
	m := &Manager{
		dir:       cfg.Directory,
		lister:    cfg.Lister,
		blobs:     cfg.Blobs,
		assets:    cfg.Assets,
		script:    cfg.WidgetScript,
		timeout:   cfg.LoadTimeout,
		ttl:       cfg.SessionTTL,
		builtin:   cfg.Builtin,
		clock:     cfg.Clock,
		log:       cfg.Logger,
		baseCtx:   cfg.BaseContext,
		attached:  cfg.Attached,
		sessions:  make(map[string]*Session),
		startTime: time.Now(),
	}
	if m.lister == nil && m.dir != nil {
		m.lister = viewer.RegistryLister{Service: m.dir}
	}
	if m.blobs == nil {
		m.blobs = viewer.NewBlobStore(defaultBlobPrefix, cfg.MaxUploadBytes)
	}
	if m.assets == nil {
		m.assets = viewer.DefaultAssets
	}
	if m.baseCtx == nil {
		m.baseCtx = context.Background()
	}
	m.pub = viewer.MultiPublisher{metricsPublisher{}, cfg.Publisher}
	return m
}
