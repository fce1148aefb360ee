package httpapi

import "strings"

// maxBodyBytes controls the maximum allowed request body size for JSON endpoints.
var maxBodyBytes int64 = 1 << 20

// SetMaxBodyBytes allows configuring the maximum request body size.
func SetMaxBodyBytes(n int64) {
	if n <= 0 {
		maxBodyBytes = 1 << 20
		return
	}
	maxBodyBytes = n
}

// maxUploadBytes bounds multipart uploads. The multipart envelope gets an
// extra MiB on top.
var maxUploadBytes int64 = 256 << 20

// SetMaxUploadBytes configures the upload limit (<= 0 restores the default).
func SetMaxUploadBytes(n int64) {
	if n <= 0 {
		maxUploadBytes = 256 << 20
		return
	}
	maxUploadBytes = n
}

// Static model files.
var (
	modelsDir  = "public/models"
	modelsPath = "/models"
)

// SetModelsDir sets the directory served under urlPath.
func SetModelsDir(dir, urlPath string) {
	if dir != "" {
		modelsDir = dir
	}
	if urlPath != "" {
		modelsPath = "/" + strings.Trim(urlPath, "/")
	}
}

// CORS configuration (opt-in). If disabled, no CORS middleware is added.
var (
	corsEnabled        bool
	corsAllowedOrigins []string
	corsAllowedMethods []string
	corsAllowedHeaders []string
)

// SetCORSOptions configures CORS behavior for the HTTP server.
func SetCORSOptions(enabled bool, origins, methods, headers []string) {
	corsEnabled = enabled
	corsAllowedOrigins = append([]string(nil), origins...)
	corsAllowedMethods = append([]string(nil), methods...)
	corsAllowedHeaders = append([]string(nil), headers...)
}

// originAllowed reports whether a cross-origin websocket may connect.
func originAllowed(origin string) bool {
	if !corsEnabled {
		return false
	}
	for _, o := range corsAllowedOrigins {
		if o == "*" || strings.EqualFold(o, origin) {
			return true
		}
	}
	return false
}
