// Package viewer implements the model viewer session: the merged catalog of
// .glb models, the current selection and its loading status, and the
// rendering widget that the selection drives.
//
// Files by concern:
//
//   - controller.go: Controller, selection protocol, widget lifecycle handling.
//   - upload.go: upload protocol and the in-memory BlobStore behind it.
//   - catalog.go: built-in, discovered and uploaded sections.
//   - widget.go: Widget contract and RemoteWidget (events reported by the page).
//   - assets.go: process-wide registry of widget scripts.
//   - lister.go: discovery sources (in-process registry, HTTP client).
//   - events.go, eventpub_memory.go: event publishing.
//   - clock.go: timer abstraction for the load timeout.
//
// All controller transitions are serialized on one mutex, which plays the
// role of the page's event loop. Widget handlers and timer callbacks carry
// the generation of the selection that armed them and are ignored once a
// newer selection exists.
package viewer
