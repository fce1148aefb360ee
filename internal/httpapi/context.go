package httpapi

import (
	"context"
	"net/http"

	"glbview/internal/manager"
)

// serverBaseCtx is canceled when the process begins shutting down.
var serverBaseCtx = context.Background()

// SetBaseContext sets the process-level context that session work started by
// a request is bound to. nil restores Background.
func SetBaseContext(ctx context.Context) {
	if ctx == nil {
		serverBaseCtx = context.Background()
		return
	}
	serverBaseCtx = ctx
}

// sessionContext bounds work a request drives on a session (discovery, the
// websocket stream). It ends with the request, or with cause
// manager.ErrShuttingDown once the base context is done.
func sessionContext(r *http.Request) (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancelCause(r.Context())
	stop := context.AfterFunc(serverBaseCtx, func() { cancel(manager.ErrShuttingDown) })
	return ctx, func() {
		stop()
		cancel(context.Canceled)
	}
}

// shuttingDown reports whether ctx ended because the server is stopping.
func shuttingDown(ctx context.Context) bool {
	return context.Cause(ctx) == manager.ErrShuttingDown
}
