package viewer

import "glbview/pkg/types"

// Event names published by the controller.
const (
	EventState          = "state"
	EventSelected       = "selected"
	EventLoaded         = "loaded"
	EventLoadFailed     = "load_failed"
	EventLoadTimeout    = "load_timeout"
	EventUploaded       = "uploaded"
	EventUploadRejected = "upload_rejected"
	EventDiscovered     = "discovered"
	EventClosed         = "closed"
)

// Event represents a viewer lifecycle event.
// Minimal and stable: name + session ID and optional fields via key/values.
// State carries the snapshot for EventState.
type Event struct {
	Name      string
	SessionID string
	Fields    map[string]any
	State     *types.ViewerState
}

// EventPublisher receives events from a controller. Publish is called while
// the controller state is locked: implementations must be non-blocking, must
// not panic and must not call back into the controller.
type EventPublisher interface {
	Publish(Event)
}

// noopPublisher is the default; it drops events.
type noopPublisher struct{}

func (noopPublisher) Publish(Event) {}

// MultiPublisher fans an event out to several publishers in order.
type MultiPublisher []EventPublisher

func (m MultiPublisher) Publish(e Event) {
	for _, p := range m {
		if p != nil {
			p.Publish(e)
		}
	}
}
