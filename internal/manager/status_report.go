package manager

import (
	"time"

	"glbview/pkg/types"
)

// Status builds the response for /status.
func (m *Manager) Status() types.StatusResponse {
	resp := types.StatusResponse{
		Sessions:       m.Count(),
		Blobs:          m.blobs.Len(),
		UptimeSeconds:  int64(time.Since(m.startTime).Seconds()),
		ServerTimeUnix: time.Now().Unix(),
	}
	if m.dir != nil {
		resp.ModelsDir = m.dir.Dir()
		resp.ModelsDirState = string(m.dir.Probe())
	}
	return resp
}
