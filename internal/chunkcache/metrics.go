package chunkcache

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds the chunk cache's Prometheus instruments. Construct
// exactly one per process.
type Metrics struct {
	Cached         prometheus.Gauge
	TotalGenerated prometheus.Counter
	Hits           prometheus.Counter
	Misses         prometheus.Counter
}

func NewMetrics() *Metrics {
	return &Metrics{
		Cached: promauto.NewGauge(prometheus.GaugeOpts{
			Name: "voxelserver_chunkcache_cached",
			Help: "Chunks currently resident in the cache",
		}),
		TotalGenerated: promauto.NewCounter(prometheus.CounterOpts{
			Name: "voxelserver_chunkcache_generated_total",
			Help: "Chunks produced by the generation pipeline since start",
		}),
		Hits: promauto.NewCounter(prometheus.CounterOpts{
			Name: "voxelserver_chunkcache_hits_total",
			Help: "Cache lookups satisfied without generation",
		}),
		Misses: promauto.NewCounter(prometheus.CounterOpts{
			Name: "voxelserver_chunkcache_misses_total",
			Help: "Cache lookups that triggered generation",
		}),
	}
}
