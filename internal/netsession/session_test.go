package netsession

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/voxelcore/voxelserver/internal/protocol"
	"github.com/voxelcore/voxelserver/internal/world"
)

func TestSetPositionIsNoOpForIdenticalValue(t *testing.T) {
	s := newSession(1, 100, DefaultRateLimitPerSecond, DefaultRateLimitBurst)
	p := protocol.Vec3F{X: 1, Y: 2, Z: 3}
	s.SetPosition(p)
	s.SetPosition(p)
	require.Equal(t, p, s.Position())
}

func TestSetRotationNormalizesAndDerivesFacing(t *testing.T) {
	s := newSession(1, 100, DefaultRateLimitPerSecond, DefaultRateLimitBurst)
	s.SetRotation(protocol.Vec3F{X: 2, Y: 0, Z: 0})
	require.InDelta(t, 1.0, s.Rotation().X, 1e-9)
	require.Equal(t, FacingEast, s.Facing())
}

func TestSetRotationZeroVectorStaysZero(t *testing.T) {
	s := newSession(1, 100, DefaultRateLimitPerSecond, DefaultRateLimitBurst)
	s.SetRotation(protocol.Vec3F{})
	require.Equal(t, protocol.Vec3F{}, s.Rotation())
}

func TestSentChunkTracking(t *testing.T) {
	s := newSession(1, 100, DefaultRateLimitPerSecond, DefaultRateLimitBurst)
	pos := world.Vec3{X: 1, Y: 0, Z: 1}

	require.False(t, s.HasSentChunk(pos))
	s.MarkChunkSent(pos)
	require.True(t, s.HasSentChunk(pos))
	require.Equal(t, 1, s.SentChunkCount())
}

func TestDisposeClearsSentChunksAndCancelsCorrelator(t *testing.T) {
	s := newSession(1, 100, DefaultRateLimitPerSecond, DefaultRateLimitBurst)
	s.MarkChunkSent(world.Vec3{X: 1, Y: 0, Z: 1})

	await := s.Correlator().Await(uuid.New(), 0)

	s.dispose()

	require.Equal(t, 0, s.SentChunkCount())
	_, err := await()
	require.ErrorIs(t, err, protocol.ErrNotConnected)
}
