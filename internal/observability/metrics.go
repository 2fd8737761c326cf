package observability

import (
	"net/http"
	"sync/atomic"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds process-wide Prometheus metrics that don't belong to any
// single subsystem package: session lifecycle, account activity, keystore
// crypto operations, entity store I/O, and disk usage. Subsystem packages
// (eventloop, chunkcache, streaming, netsession) register their own
// narrower metrics directly.
type Metrics struct {
	// Session metrics
	SessionsTotal   *prometheus.CounterVec
	SessionsActive  prometheus.Gauge
	SessionDuration prometheus.Histogram

	// Network transport metrics
	NetworkConnectionsTotal *prometheus.CounterVec
	NetworkBytesTotal       *prometheus.CounterVec

	// Account metrics
	AccountLoginsTotal      *prometheus.CounterVec
	AccountsRegisteredTotal prometheus.Counter

	// Crypto metrics (keystore + password hashing)
	CryptoOperationsTotal   *prometheus.CounterVec
	CryptoOperationDuration prometheus.Histogram

	// Entity store metrics
	EntityStoreOperationsTotal *prometheus.CounterVec

	// Storage metrics
	DiskSpaceUsedBytes prometheus.Gauge

	activeSessions int64
}

// NewMetrics creates and registers all Prometheus metrics.
func NewMetrics() *Metrics {
	return &Metrics{
		SessionsTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "voxelserver_session_total",
				Help: "Total sessions opened, by how they ended",
			},
			[]string{"result"},
		),

		SessionsActive: promauto.NewGauge(
			prometheus.GaugeOpts{
				Name: "voxelserver_session_active",
				Help: "Currently connected sessions",
			},
		),

		SessionDuration: promauto.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "voxelserver_session_duration_seconds",
				Help:    "Session lifetime distribution",
				Buckets: []float64{1, 5, 30, 60, 300, 900, 3600, 14400},
			},
		),

		NetworkConnectionsTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "voxelserver_network_connections_total",
				Help: "Inbound transport connection attempts",
			},
			[]string{"result"},
		),

		NetworkBytesTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "voxelserver_network_bytes_total",
				Help: "Bytes moved over the session transport",
			},
			[]string{"direction"},
		),

		AccountLoginsTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "voxelserver_account_logins_total",
				Help: "Login attempts, by outcome",
			},
			[]string{"result"},
		),

		AccountsRegisteredTotal: promauto.NewCounter(
			prometheus.CounterOpts{
				Name: "voxelserver_account_registered_total",
				Help: "Accounts created",
			},
		),

		CryptoOperationsTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "voxelserver_crypto_operations_total",
				Help: "Cryptographic operations performed (keystore seal/open, password hash)",
			},
			[]string{"operation"},
		),

		CryptoOperationDuration: promauto.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "voxelserver_crypto_operation_duration_seconds",
				Help:    "Crypto operation latency",
				Buckets: []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1.0},
			},
		),

		EntityStoreOperationsTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "voxelserver_entitystore_operations_total",
				Help: "Entity store operation count",
			},
			[]string{"entity_type", "operation"},
		),

		DiskSpaceUsedBytes: promauto.NewGauge(
			prometheus.GaugeOpts{
				Name: "voxelserver_disk_space_used_bytes",
				Help: "Disk space used by entity store database files",
			},
		),
	}
}

// RecordSessionStart increments the active session gauge.
func (m *Metrics) RecordSessionStart() {
	atomic.AddInt64(&m.activeSessions, 1)
	m.SessionsActive.Set(float64(atomic.LoadInt64(&m.activeSessions)))
}

// RecordSessionEnd records session completion metrics.
func (m *Metrics) RecordSessionEnd(result string, durationSeconds float64) {
	atomic.AddInt64(&m.activeSessions, -1)
	m.SessionsActive.Set(float64(atomic.LoadInt64(&m.activeSessions)))

	m.SessionsTotal.WithLabelValues(result).Inc()
	m.SessionDuration.Observe(durationSeconds)
}

// RecordNetworkBytes updates transport byte counters.
func (m *Metrics) RecordNetworkBytes(direction string, n int) {
	m.NetworkBytesTotal.WithLabelValues(direction).Add(float64(n))
}

// RecordNetworkConnection logs inbound connection attempts.
func (m *Metrics) RecordNetworkConnection(success bool) {
	result := "success"
	if !success {
		result = "failure"
	}
	m.NetworkConnectionsTotal.WithLabelValues(result).Inc()
}

// RecordAccountLogin records a login attempt outcome.
func (m *Metrics) RecordAccountLogin(success bool) {
	result := "success"
	if !success {
		result = "failure"
	}
	m.AccountLoginsTotal.WithLabelValues(result).Inc()
}

// RecordAccountRegistered increments the accounts-created counter.
func (m *Metrics) RecordAccountRegistered() {
	m.AccountsRegisteredTotal.Inc()
}

// RecordCryptoOperation records cryptographic operation duration.
func (m *Metrics) RecordCryptoOperation(operation string, durationSeconds float64) {
	m.CryptoOperationsTotal.WithLabelValues(operation).Inc()
	m.CryptoOperationDuration.Observe(durationSeconds)
}

// RecordEntityStoreOperation increments per-entity-type operation counters.
func (m *Metrics) RecordEntityStoreOperation(entityType, operation string) {
	m.EntityStoreOperationsTotal.WithLabelValues(entityType, operation).Inc()
}

// Handler exposes the Prometheus metrics endpoint.
func (m *Metrics) Handler() http.Handler {
	return promhttp.Handler()
}
