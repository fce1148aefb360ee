package types

// ModelsResponse wraps the list of models returned by GET /api/models.
type ModelsResponse struct {
	// Discovered models. Always present, empty when the models directory is unavailable.
	Models []ModelDescriptor `json:"models"`
}

// ErrorResponse is a consistent JSON error payload.
type ErrorResponse struct {
	// Error message.
	// example: only .glb files are supported
	Error string `json:"error" example:"only .glb files are supported"`
	// HTTP status code.
	// example: 400
	Code int `json:"code" example:"400"`
}

// CatalogEntry is a descriptor together with its selection key.
type CatalogEntry struct {
	ModelDescriptor
	// Unique selection key (source + url).
	// example: discovered:/models/helmet.glb
	Key string `json:"key" example:"discovered:/models/helmet.glb"`
	// Catalog section.
	// example: discovered
	Source Source `json:"source" example:"discovered"`
}

// WidgetState mirrors what the page must apply to the rendering widget.
type WidgetState struct {
	Src            string `json:"src"`
	AutoRotate     bool   `json:"auto_rotate"`
	CameraControls bool   `json:"camera_controls"`
	// Scripts the page must load once before the widget can render.
	Scripts []string `json:"scripts,omitempty"`
}

// ViewerState is a snapshot of one viewer session.
type ViewerState struct {
	// example: 5b0e3c1e-3f4f-4bb1-9a55-3c2f3d9a8c11
	SessionID string         `json:"session_id" example:"5b0e3c1e-3f4f-4bb1-9a55-3c2f3d9a8c11"`
	Catalog   []CatalogEntry `json:"catalog"`
	// example: discovered:/models/helmet.glb
	SelectedKey string `json:"selected_key,omitempty" example:"discovered:/models/helmet.glb"`
	// example: /models/helmet.glb
	SelectedURL string `json:"selected_url,omitempty" example:"/models/helmet.glb"`
	// example: helmet
	SelectedName string `json:"selected_name,omitempty" example:"helmet"`
	// One of idle, loading, ready, error.
	// example: loading
	Status string `json:"status" example:"loading"`
	// User-facing error text, empty when there is none.
	Error string `json:"error,omitempty"`
	// Set when the last selection left loading because the widget never answered.
	TimedOut      bool        `json:"timed_out"`
	UploadedCount int         `json:"uploaded_count"`
	Widget        WidgetState `json:"widget"`
	// Monotonic per session; clients drop pushes older than what they have.
	// example: 7
	Version uint64 `json:"version" example:"7"`
}

// SelectRequest asks a session to select a catalog entry.
type SelectRequest struct {
	// example: discovered:/models/helmet.glb
	Key string `json:"key" example:"discovered:/models/helmet.glb"`
}

// WidgetEventRequest reports a lifecycle signal emitted by the page's widget.
type WidgetEventRequest struct {
	// Either "load" or "error".
	// example: load
	Event string `json:"event" example:"load"`
	// Source the widget was showing when it fired.
	// example: /models/helmet.glb
	Src string `json:"src" example:"/models/helmet.glb"`
}

// StatusResponse is returned by GET /status.
type StatusResponse struct {
	// Open viewer sessions.
	// example: 2
	Sessions int `json:"sessions" example:"2"`
	// Uploaded files currently held in memory.
	// example: 1
	Blobs int `json:"blobs" example:"1"`
	// Configured models directory.
	// example: public/models
	ModelsDir string `json:"models_dir" example:"public/models"`
	// One of ok, empty, absent, unreadable.
	// example: ok
	ModelsDirState string `json:"models_dir_state" example:"ok"`
	// Uptime of the server in seconds.
	// example: 3600
	UptimeSeconds int64 `json:"uptime_seconds" example:"3600"`
	// Server time in unix seconds.
	// example: 1700000000
	ServerTimeUnix int64 `json:"server_time_unix" example:"1700000000"`
}

// WidgetEventResponse is returned by POST /api/sessions/{id}/widget.
type WidgetEventResponse struct {
	// False when the event was for a source the widget no longer shows.
	Delivered bool        `json:"delivered"`
	State     ViewerState `json:"state"`
}
