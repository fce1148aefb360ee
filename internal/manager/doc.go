// Package manager owns viewer sessions. Each page load opens a session with
// its own viewer.Controller and RemoteWidget; the session is closed when the
// page goes away, when it idles past the configured TTL, or on shutdown.
//
//   - manager.go: Manager type, constructor, session lookup.
//   - config.go: ManagerConfig and package defaults.
//   - errors.go: error types and helpers (IsSessionNotFound).
//   - evict.go: idle-session reaping.
//   - events.go: publisher wiring and metrics fed from controller events.
//   - status_report.go: Status reporting.
package manager
