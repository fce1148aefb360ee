package viewer

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"glbview/pkg/types"
)

// manualClock fires timers only when Advance is called.
type manualClock struct {
	mu     sync.Mutex
	now    time.Duration
	timers []*manualTimer
}

type manualTimer struct {
	c       *manualClock
	at      time.Duration
	f       func()
	stopped bool
	fired   bool
}

func (t *manualTimer) Stop() bool {
	t.c.mu.Lock()
	defer t.c.mu.Unlock()
	if t.stopped || t.fired {
		return false
	}
	t.stopped = true
	return true
}

func (c *manualClock) AfterFunc(d time.Duration, f func()) Timer {
	c.mu.Lock()
	defer c.mu.Unlock()
	t := &manualTimer{c: c, at: c.now + d, f: f}
	c.timers = append(c.timers, t)
	return t
}

func (c *manualClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now += d
	var due []func()
	for _, t := range c.timers {
		if !t.stopped && !t.fired && t.at <= c.now {
			t.fired = true
			due = append(due, t.f)
		}
	}
	c.mu.Unlock()
	for _, f := range due {
		f()
	}
}

// Active returns the number of armed timers.
func (c *manualClock) Active() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	n := 0
	for _, t := range c.timers {
		if !t.stopped && !t.fired {
			n++
		}
	}
	return n
}

// recordingWidget keeps every handler ever registered, detached or not, so
// tests can invoke a stale one as if it had raced its detachment.
type recordingWidget struct {
	*RemoteWidget
	mu  sync.Mutex
	all map[EventKind][]func()
}

func newRecordingWidget() *recordingWidget {
	return &recordingWidget{RemoteWidget: NewRemoteWidget(), all: make(map[EventKind][]func())}
}

func (w *recordingWidget) On(kind EventKind, fn func()) func() {
	w.mu.Lock()
	w.all[kind] = append(w.all[kind], fn)
	w.mu.Unlock()
	return w.RemoteWidget.On(kind, fn)
}

// handler returns the i-th handler ever registered for kind.
func (w *recordingWidget) handler(kind EventKind, i int) func() {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.all[kind][i]
}

func staticLister(models ...types.ModelDescriptor) Lister {
	return ListerFunc(func(context.Context) ([]types.ModelDescriptor, error) {
		return models, nil
	})
}

func failingLister() Lister {
	return ListerFunc(func(context.Context) ([]types.ModelDescriptor, error) {
		return nil, errors.New("connection refused")
	})
}

func glb(name string) types.ModelDescriptor {
	return types.ModelDescriptor{Name: name, URL: "/models/" + name + ".glb", Description: "local", IsLocal: true}
}

type fixture struct {
	ctl    *Controller
	widget *recordingWidget
	clock  *manualClock
	pub    *MemoryPublisher
	blobs  *BlobStore
	assets *Assets
}

func newFixture(t *testing.T, lister Lister, builtin ...types.ModelDescriptor) *fixture {
	t.Helper()
	f := &fixture{
		widget: newRecordingWidget(),
		clock:  &manualClock{},
		pub:    NewMemoryPublisher(),
		blobs:  NewBlobStore("/blobs", 1<<20),
		assets: NewAssets(),
	}
	f.ctl = New(Options{
		SessionID:    "s1",
		Widget:       f.widget,
		Lister:       lister,
		Blobs:        f.blobs,
		Assets:       f.assets,
		WidgetScript: "https://cdn.example/model-viewer.js",
		Publisher:    f.pub,
		Clock:        f.clock,
		Builtin:      builtin,
		Logger:       zerolog.Nop(),
	})
	t.Cleanup(func() { _ = f.ctl.Close() })
	return f
}
