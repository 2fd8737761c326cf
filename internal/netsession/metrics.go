package netsession

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds the session manager's Prometheus instruments. Construct
// exactly one per process.
type Metrics struct {
	SessionsActive        prometheus.Gauge
	SessionsTotal         prometheus.Counter
	MessagesDispatched    *prometheus.CounterVec
	ListenerErrorsTotal   *prometheus.CounterVec
	ListenerPanicsTotal   *prometheus.CounterVec
	MessagesThrottled     prometheus.Counter
	MessagesBackpressured prometheus.Counter
}

func NewMetrics() *Metrics {
	return &Metrics{
		SessionsActive: promauto.NewGauge(prometheus.GaugeOpts{
			Name: "voxelserver_sessions_active",
			Help: "Currently connected sessions",
		}),
		SessionsTotal: promauto.NewCounter(prometheus.CounterOpts{
			Name: "voxelserver_sessions_total",
			Help: "Total sessions accepted since start",
		}),
		MessagesDispatched: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "voxelserver_messages_dispatched_total",
				Help: "Inbound messages dispatched to listeners, by message kind",
			},
			[]string{"kind"},
		),
		ListenerErrorsTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "voxelserver_listener_errors_total",
				Help: "Listener invocations that returned an error, by listener name",
			},
			[]string{"listener"},
		),
		ListenerPanicsTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "voxelserver_listener_panics_total",
				Help: "Listener invocations that panicked, by listener name",
			},
			[]string{"listener"},
		),
		MessagesThrottled: promauto.NewCounter(prometheus.CounterOpts{
			Name: "voxelserver_messages_throttled_total",
			Help: "Inbound messages dropped by the per-session rate limiter",
		}),
		MessagesBackpressured: promauto.NewCounter(prometheus.CounterOpts{
			Name: "voxelserver_messages_backpressured_total",
			Help: "Inbound messages dropped because the event loop's ready queues exceeded maxQueueDepth",
		}),
	}
}
