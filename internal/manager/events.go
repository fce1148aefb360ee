package manager

import (
	"github.com/prometheus/client_golang/prometheus"

	"glbview/internal/viewer"
)

var (
	sessionsActive = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "glbview",
			Subsystem: "viewer",
			Name:      "sessions_active",
			Help:      "Open viewer sessions",
		},
	)

	selectionsTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "glbview",
			Subsystem: "viewer",
			Name:      "selections_total",
			Help:      "Total number of model selections",
		},
	)

	loadOutcomesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "glbview",
			Subsystem: "viewer",
			Name:      "load_outcomes_total",
			Help:      "Terminal outcomes of model loads reported by the widget",
		},
		[]string{"outcome"},
	)

	uploadsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "glbview",
			Subsystem: "viewer",
			Name:      "uploads_total",
			Help:      "Total number of uploads by result",
		},
		[]string{"result"},
	)
)

func init() {
	prometheus.MustRegister(sessionsActive, selectionsTotal, loadOutcomesTotal, uploadsTotal)
}

// metricsPublisher turns controller events into counters.
type metricsPublisher struct{}

func (metricsPublisher) Publish(e viewer.Event) {
	switch e.Name {
	case viewer.EventSelected:
		selectionsTotal.Inc()
	case viewer.EventLoaded:
		loadOutcomesTotal.WithLabelValues("load").Inc()
	case viewer.EventLoadFailed:
		loadOutcomesTotal.WithLabelValues("error").Inc()
	case viewer.EventLoadTimeout:
		loadOutcomesTotal.WithLabelValues("timeout").Inc()
	case viewer.EventUploaded:
		uploadsTotal.WithLabelValues("accepted").Inc()
	case viewer.EventUploadRejected:
		uploadsTotal.WithLabelValues("rejected").Inc()
	}
}
