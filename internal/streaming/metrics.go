package streaming

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds the chunk streamer's Prometheus instruments. Construct
// exactly one per process.
type Metrics struct {
	ChunksStreamed     prometheus.Counter
	BatchesSent        prometheus.Counter
	GenerationFailures prometheus.Counter
}

func NewMetrics() *Metrics {
	return &Metrics{
		ChunksStreamed: promauto.NewCounter(prometheus.CounterOpts{
			Name: "voxelserver_streaming_chunks_streamed_total",
			Help: "Chunks delivered to players via ChunkResponse",
		}),
		BatchesSent: promauto.NewCounter(prometheus.CounterOpts{
			Name: "voxelserver_streaming_batches_sent_total",
			Help: "ChunkResponse frames sent",
		}),
		GenerationFailures: promauto.NewCounter(prometheus.CounterOpts{
			Name: "voxelserver_streaming_generation_failures_total",
			Help: "Chunk generation failures encountered while streaming, left unsent for retry",
		}),
	}
}
