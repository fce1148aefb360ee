package manager

import (
	"context"
	"time"
)

// ReapIdle closes sessions whose controller has been inactive for longer
// than the TTL and that no page is attached to. Returns the number of
// sessions closed.
func (m *Manager) ReapIdle(now time.Time) int {
	if m.ttl <= 0 {
		return 0
	}
	m.mu.RLock()
	var stale []string
	for id, s := range m.sessions {
		if m.attached != nil && m.attached(id) {
			continue
		}
		if now.Sub(s.Controller.LastActive()) > m.ttl {
			stale = append(stale, id)
		}
	}
	m.mu.RUnlock()

	n := 0
	for _, id := range stale {
		if err := m.Close(id); err == nil {
			n++
		}
	}
	if n > 0 {
		m.log.Info().Int("sessions", n).Dur("ttl", m.ttl).Msg("reaped idle sessions")
	}
	return n
}

// RunJanitor reaps idle sessions every interval until ctx is done.
func (m *Manager) RunJanitor(ctx context.Context, interval time.Duration) {
	if m.ttl <= 0 {
		return
	}
	if interval <= 0 {
		interval = defaultJanitorEvery
	}
	t := time.NewTicker(interval)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case now := <-t.C:
			m.ReapIdle(now)
		}
	}
}
