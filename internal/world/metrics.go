package world

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

// worldMetrics mirrors the eventbus/middleware exporter pattern: a
// small set of package-level Prometheus collectors, registered once.
type worldMetrics struct {
	chunksGenerated prometheus.Counter
	chunksLoaded    prometheus.Counter
	chunksSaved     prometheus.Counter
	chunksLoadedGauge prometheus.Gauge
}

var (
	metricsOnce sync.Once
	wm          *worldMetrics
)

func worldMetricsInstance() *worldMetrics {
	metricsOnce.Do(func() {
		wm = &worldMetrics{
			chunksGenerated: prometheus.NewCounter(prometheus.CounterOpts{
				Namespace: "world",
				Name:      "chunks_generated_total",
				Help:      "Chunks produced by terrain generation rather than loaded from disk.",
			}),
			chunksLoaded: prometheus.NewCounter(prometheus.CounterOpts{
				Namespace: "world",
				Name:      "chunks_loaded_total",
				Help:      "Chunks loaded from the store.",
			}),
			chunksSaved: prometheus.NewCounter(prometheus.CounterOpts{
				Namespace: "world",
				Name:      "chunks_saved_total",
				Help:      "Chunks flushed to the store.",
			}),
			chunksLoadedGauge: prometheus.NewGauge(prometheus.GaugeOpts{
				Namespace: "world",
				Name:      "chunks_resident",
				Help:      "Chunks currently resident in memory.",
			}),
		}
		prometheus.MustRegister(wm.chunksGenerated, wm.chunksLoaded, wm.chunksSaved, wm.chunksLoadedGauge)
	})
	return wm
}
