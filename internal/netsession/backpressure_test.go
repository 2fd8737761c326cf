package netsession

import (
	"io"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/voxelcore/voxelserver/internal/codec"
	"github.com/voxelcore/voxelserver/internal/eventloop"
	"github.com/voxelcore/voxelserver/internal/protocol"
	"github.com/voxelcore/voxelserver/internal/transport"
)

// TestHandleDataDropsDispatchUnderBackpressureButResolvesCorrelator exercises
// the SPEC_FULL §5 backpressure policy directly against handleData: once the
// loop's ready queues are at MaxQueueDepth, the listener-dispatch enqueue is
// dropped and counted, but a pending request/response correlation still
// resolves.
func TestHandleDataDropsDispatchUnderBackpressureButResolvesCorrelator(t *testing.T) {
	adapter, err := transport.Listen("127.0.0.1:0", nil)
	require.NoError(t, err)
	defer adapter.Close()

	processor := protocol.NewProcessor(codec.Transform{}, nil, nil)
	protocol.RegisterDefaults(processor)

	loop := eventloop.New(eventloop.Config{MaxActionsPerTick: 64, MaxQueueDepth: 1}, zerolog.New(io.Discard), nil)
	metrics := NewMetrics()
	manager := NewManager(adapter, processor, loop, nil, zerolog.New(io.Discard), metrics)

	const peerID = uint64(7)
	manager.handleConnected(peerID)
	loop.Tick(time.Now())

	session, ok := manager.store.getByPeer(peerID)
	require.True(t, ok)

	requestID := uuid.New()
	await := session.Correlator().Await(requestID, time.Second)

	// Saturate the queue so handleData's backpressure check trips.
	loop.Enqueue(eventloop.Normal, func() {})
	require.Equal(t, 1, loop.QueueDepth())

	pongBytes, err := processor.Serialize(protocol.Message{
		Type:      protocol.Pong,
		RequestID: requestID,
		Body:      &protocol.PongBody{Timestamp: 1},
	})
	require.NoError(t, err)

	manager.handleData(peerID, pongBytes)

	msg, err := await()
	require.NoError(t, err)
	require.Equal(t, protocol.Pong, msg.Type)

	require.Equal(t, 1, loop.QueueDepth(), "dispatch enqueue must have been dropped, not queued")
	require.Equal(t, float64(1), testutil.ToFloat64(metrics.MessagesBackpressured))
}
