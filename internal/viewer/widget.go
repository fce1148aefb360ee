package viewer

import (
	"fmt"
	"sync"
)

// EventKind is a lifecycle signal emitted by the rendering widget.
type EventKind string

const (
	WidgetLoad  EventKind = "load"
	WidgetError EventKind = "error"
)

// ParseEventKind validates a widget event name.
func ParseEventKind(s string) (EventKind, error) {
	switch EventKind(s) {
	case WidgetLoad, WidgetError:
		return EventKind(s), nil
	}
	return "", fmt.Errorf("unknown widget event %q", s)
}

// Flags are the behavioral switches applied to the widget.
type Flags struct {
	AutoRotate     bool
	CameraControls bool
}

// DefaultFlags enables rotation and user orbit/zoom.
var DefaultFlags = Flags{AutoRotate: true, CameraControls: true}

// Widget is the rendering component. The controller knows nothing about it
// beyond this contract.
//
// Handlers registered with On may be invoked from any goroutine, but never
// synchronously from inside SetSource, SetFlags or On.
type Widget interface {
	SetSource(src string)
	SetFlags(f Flags)
	// On subscribes fn to kind and returns the function that detaches it.
	On(kind EventKind, fn func()) (unsubscribe func())
}

// RemoteWidget is a Widget rendered by a browser page. The page reads the
// source and flags from the session state and reports lifecycle signals back
// through Fire.
type RemoteWidget struct {
	mu       sync.Mutex
	src      string
	flags    Flags
	nextID   int
	handlers map[EventKind]map[int]func()
}

// NewRemoteWidget returns a widget with no source and no subscribers.
func NewRemoteWidget() *RemoteWidget {
	return &RemoteWidget{handlers: make(map[EventKind]map[int]func())}
}

func (w *RemoteWidget) SetSource(src string) {
	w.mu.Lock()
	w.src = src
	w.mu.Unlock()
}

func (w *RemoteWidget) SetFlags(f Flags) {
	w.mu.Lock()
	w.flags = f
	w.mu.Unlock()
}

func (w *RemoteWidget) On(kind EventKind, fn func()) func() {
	w.mu.Lock()
	defer w.mu.Unlock()
	id := w.nextID
	w.nextID++
	if w.handlers[kind] == nil {
		w.handlers[kind] = make(map[int]func())
	}
	w.handlers[kind][id] = fn
	var once sync.Once
	return func() {
		once.Do(func() {
			w.mu.Lock()
			delete(w.handlers[kind], id)
			w.mu.Unlock()
		})
	}
}

// Source returns the source currently bound to the widget.
func (w *RemoteWidget) Source() string {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.src
}

// Flags returns the flags currently applied.
func (w *RemoteWidget) Flags() Flags {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.flags
}

// Subscribers returns the number of attached handlers for kind.
func (w *RemoteWidget) Subscribers(kind EventKind) int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return len(w.handlers[kind])
}

// Fire delivers kind to the attached handlers. src names the source the page
// was showing; a signal for any other source is stale and dropped. An empty
// src is taken to mean the current source. Reports whether it was delivered.
func (w *RemoteWidget) Fire(kind EventKind, src string) bool {
	w.mu.Lock()
	if src != "" && src != w.src {
		w.mu.Unlock()
		return false
	}
	fns := make([]func(), 0, len(w.handlers[kind]))
	for _, fn := range w.handlers[kind] {
		fns = append(fns, fn)
	}
	w.mu.Unlock()
	for _, fn := range fns {
		fn()
	}
	return len(fns) > 0
}
