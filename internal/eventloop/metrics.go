package eventloop

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds the event loop's Prometheus instruments. Construct
// exactly one per process; a second NewMetrics call would attempt to
// register the same metric names twice and panic.
type Metrics struct {
	TickDuration     prometheus.Histogram
	ActionsProcessed *prometheus.CounterVec
	SlowActionsTotal prometheus.Counter
	TickResets       prometheus.Counter
}

func NewMetrics() *Metrics {
	return &Metrics{
		TickDuration: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "voxelserver_eventloop_tick_duration_seconds",
			Help:    "Event loop tick processing duration",
			Buckets: []float64{0.0001, 0.0005, 0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1},
		}),
		ActionsProcessed: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "voxelserver_eventloop_actions_processed_total",
				Help: "Actions drained from the event loop queues, by priority",
			},
			[]string{"priority"},
		),
		SlowActionsTotal: promauto.NewCounter(prometheus.CounterOpts{
			Name: "voxelserver_eventloop_slow_actions_total",
			Help: "Actions whose execution exceeded the configured slow-action threshold",
		}),
		TickResets: promauto.NewCounter(prometheus.CounterOpts{
			Name: "voxelserver_eventloop_tick_resets_total",
			Help: "Times the tick sequence counter wrapped around",
		}),
	}
}
