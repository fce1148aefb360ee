package viewer

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"glbview/pkg/types"
)

// DefaultLoadTimeout bounds how long a selection may stay loading without a
// signal from the widget.
const DefaultLoadTimeout = 8 * time.Second

// Status is the loading state of the current selection.
type Status string

const (
	StatusIdle    Status = "idle"
	StatusLoading Status = "loading"
	StatusReady   Status = "ready"
	StatusError   Status = "error"
)

// Options configures a Controller. Widget and Lister are required.
type Options struct {
	SessionID    string
	Widget       Widget
	Lister       Lister
	Blobs        *BlobStore
	Assets       *Assets
	WidgetScript string
	Publisher    EventPublisher
	Clock        Clock
	LoadTimeout  time.Duration
	Builtin      []types.ModelDescriptor
	Logger       zerolog.Logger
}

// Controller owns the catalog, the selection and the widget it drives.
type Controller struct {
	mu      sync.Mutex
	id      string
	widget  Widget
	lister  Lister
	blobs   *BlobStore
	assets  *Assets
	script  Script
	pub     EventPublisher
	clock   Clock
	timeout time.Duration
	log     zerolog.Logger

	catalog  *Catalog
	selKey   string
	selURL   string
	selName  string
	status   Status
	errMsg   string
	timedOut bool
	version  uint64

	// per-selection resources
	gen    uint64
	timer  Timer
	detach []func()

	autoSelected bool
	blobIDs      []string
	started      bool
	closed       bool
	lastActive   time.Time
}

// New builds a Controller. It does nothing until Start.
func New(opts Options) *Controller {
	c := &Controller{
		id:      opts.SessionID,
		widget:  opts.Widget,
		lister:  opts.Lister,
		blobs:   opts.Blobs,
		assets:  opts.Assets,
		pub:     opts.Publisher,
		clock:   opts.Clock,
		timeout: opts.LoadTimeout,
		log:     opts.Logger,
		catalog: NewCatalog(opts.Builtin),
		status:  StatusIdle,
	}
	if c.pub == nil {
		c.pub = noopPublisher{}
	}
	if c.clock == nil {
		c.clock = SystemClock
	}
	if c.timeout <= 0 {
		c.timeout = DefaultLoadTimeout
	}
	if c.assets == nil {
		c.assets = DefaultAssets
	}
	if c.blobs == nil {
		c.blobs = NewBlobStore("/blobs", 0)
	}
	if opts.WidgetScript != "" {
		c.script = Script{Name: WidgetScriptName, Src: opts.WidgetScript, Module: true}
	}
	c.lastActive = time.Now()
	return c
}

// ID returns the session id the controller was built with.
func (c *Controller) ID() string { return c.id }

// Start activates the controller: registers the widget script, applies the
// widget flags, selects the first built-in model if any and starts discovery
// in the background. Calling Start more than once has no effect.
func (c *Controller) Start(ctx context.Context) {
	c.mu.Lock()
	if c.started || c.closed {
		c.mu.Unlock()
		return
	}
	c.started = true
	if c.script.Src != "" {
		c.assets.Register(c.script)
	}
	c.widget.SetFlags(DefaultFlags)
	c.autoSelectLocked()
	c.publishStateLocked()
	c.mu.Unlock()

	go func() {
		if err := c.Refresh(ctx); err != nil && err != ErrClosed {
			c.log.Warn().Err(err).Str("session", c.id).Msg("failed to load local models")
		}
	}()
}

// Refresh runs the discovery query and replaces the discovered section.
// On failure the catalog is left as it was.
func (c *Controller) Refresh(ctx context.Context) error {
	models, err := c.lister.ListModels(ctx)
	if err != nil {
		return err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return ErrClosed
	}
	c.catalog.SetDiscovered(models)
	c.publishLocked(EventDiscovered, map[string]any{"count": len(models)})
	c.autoSelectLocked()
	c.publishStateLocked()
	return nil
}

// Select makes the catalog entry with the given key current.
func (c *Controller) Select(key string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return ErrClosed
	}
	d, ok := c.catalog.Lookup(key)
	if !ok {
		return ErrUnknownModel(key)
	}
	c.selectLocked(d)
	c.publishStateLocked()
	return nil
}

// State returns a snapshot of the controller.
func (c *Controller) State() types.ViewerState {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.snapshotLocked()
}

// LastActive reports when the controller last handled a user action or
// widget signal.
func (c *Controller) LastActive() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.lastActive
}

// Touch marks the controller as active.
func (c *Controller) Touch() {
	c.mu.Lock()
	c.lastActive = time.Now()
	c.mu.Unlock()
}

// Close tears the controller down: disarms the timer, detaches widget
// handlers, unregisters the widget script and releases uploaded blobs.
func (c *Controller) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return nil
	}
	c.closed = true
	c.disarmLocked()
	if c.started && c.script.Src != "" {
		c.assets.Unregister(c.script.Name)
	}
	c.blobs.Release(c.blobIDs...)
	released := len(c.blobIDs)
	c.blobIDs = nil
	c.publishLocked(EventClosed, map[string]any{"released_blobs": released})
	return nil
}

// selectLocked runs the selection protocol for d.
func (c *Controller) selectLocked(d types.ModelDescriptor) {
	c.disarmLocked()
	c.gen++
	gen := c.gen

	c.selKey, c.selURL, c.selName = d.Key(), d.URL, d.Name
	c.status = StatusLoading
	c.errMsg = ""
	c.timedOut = false
	c.lastActive = time.Now()

	c.detach = append(c.detach,
		c.widget.On(WidgetLoad, func() { c.onLoad(gen) }),
		c.widget.On(WidgetError, func() { c.onError(gen) }),
	)
	c.widget.SetSource(d.URL)
	c.timer = c.clock.AfterFunc(c.timeout, func() { c.onTimeout(gen) })
	c.publishLocked(EventSelected, map[string]any{"key": c.selKey, "name": d.Name})
}

// disarmLocked stops the selection timer and detaches widget handlers.
func (c *Controller) disarmLocked() {
	if c.timer != nil {
		c.timer.Stop()
		c.timer = nil
	}
	for _, fn := range c.detach {
		fn()
	}
	c.detach = nil
}

func (c *Controller) autoSelectLocked() {
	if c.autoSelected || c.selKey != "" || c.catalog.Len() == 0 {
		return
	}
	c.autoSelected = true
	c.selectLocked(c.catalog.All()[0])
}

func (c *Controller) onLoad(gen uint64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed || gen != c.gen {
		return
	}
	c.status = StatusReady
	c.errMsg = ""
	c.timedOut = false
	c.lastActive = time.Now()
	c.publishLocked(EventLoaded, map[string]any{"key": c.selKey})
	c.publishStateLocked()
}

func (c *Controller) onError(gen uint64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed || gen != c.gen {
		return
	}
	c.status = StatusError
	c.errMsg = MsgLoadFailed
	c.timedOut = false
	c.lastActive = time.Now()
	c.publishLocked(EventLoadFailed, map[string]any{"key": c.selKey})
	c.publishStateLocked()
}

// onTimeout leaves loading without an error message. An explicit widget
// error is the only path that sets MsgLoadFailed.
func (c *Controller) onTimeout(gen uint64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed || gen != c.gen || c.status != StatusLoading {
		return
	}
	c.status = StatusReady
	c.timedOut = true
	c.log.Debug().Str("session", c.id).Str("model", c.selKey).Dur("timeout", c.timeout).Msg("widget did not report, leaving loading")
	c.publishLocked(EventLoadTimeout, map[string]any{"key": c.selKey})
	c.publishStateLocked()
}

func (c *Controller) publishLocked(name string, fields map[string]any) {
	c.pub.Publish(Event{Name: name, SessionID: c.id, Fields: fields})
}

func (c *Controller) publishStateLocked() {
	c.version++
	s := c.snapshotLocked()
	c.pub.Publish(Event{Name: EventState, SessionID: c.id, State: &s})
}

func (c *Controller) snapshotLocked() types.ViewerState {
	all := c.catalog.All()
	entries := make([]types.CatalogEntry, 0, len(all))
	for _, d := range all {
		entries = append(entries, types.CatalogEntry{ModelDescriptor: d, Key: d.Key(), Source: d.Source})
	}
	_, _, uploaded := c.catalog.Counts()
	var scripts []string
	for _, s := range c.assets.Scripts() {
		scripts = append(scripts, s.Src)
	}
	return types.ViewerState{
		SessionID:     c.id,
		Catalog:       entries,
		SelectedKey:   c.selKey,
		SelectedURL:   c.selURL,
		SelectedName:  c.selName,
		Status:        string(c.status),
		Error:         c.errMsg,
		TimedOut:      c.timedOut,
		UploadedCount: uploaded,
		Widget: types.WidgetState{
			Src:            c.selURL,
			AutoRotate:     DefaultFlags.AutoRotate,
			CameraControls: DefaultFlags.CameraControls,
			Scripts:        scripts,
		},
		Version: c.version,
	}
}
