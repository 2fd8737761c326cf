package protocol

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/voxelcore/voxelserver/internal/codec"
	"github.com/voxelcore/voxelserver/internal/world"
)

func newTestProcessor(t *testing.T) *Processor {
	t.Helper()
	key, err := codec.GenerateKey(codec.EncryptionChaCha20Poly1305)
	require.NoError(t, err)

	transform := codec.Transform{Compression: codec.CompressionGZip, Encryption: codec.EncryptionChaCha20Poly1305}
	p := NewProcessor(transform, key, nil)
	RegisterDefaults(p)
	return p
}

func TestPacketRoundTripAllKinds(t *testing.T) {
	p := newTestProcessor(t)

	cases := []Message{
		{Type: Ping, Body: &PingBody{}},
		{Type: Pong, Body: &PongBody{Timestamp: 1234}},
		{Type: LoginRequest, Body: &LoginRequestBody{Email: "admin@x", Password: "p"}},
		{Type: LoginResponse, Body: &LoginResponseBody{Success: true}},
		{Type: SystemChat, Body: &SystemChatBody{Text: "hello world"}},
		{Type: VersionRequest, Body: &VersionRequestBody{}},
		{Type: VersionResponse, Body: &VersionResponseBody{Version: "1.2.3"}},
		{Type: AssetRequest, Body: &AssetRequestBody{Name: "grass.png"}},
		{Type: AssetResponse, Body: &AssetResponseBody{Name: "grass.png", Data: []byte{1, 2, 3}}},
		{Type: AssetListRequest, Body: &AssetListRequestBody{}},
		{Type: AssetListResponse, Body: &AssetListResponseBody{Names: []string{"a", "b"}}},
		{Type: PlayerPositionRequest, Body: &PlayerPositionRequestBody{Position: Vec3F{1, 2, 3}, Rotation: Vec3F{0, 1, 0}}},
		{Type: PlayerPositionResponse, Body: &PlayerPositionResponseBody{Position: Vec3F{1, 1, 1}}},
		{Type: ChunkRequest, Body: &ChunkRequestBody{Position: world.Vec3{X: 16, Y: 0, Z: -16}}},
		{
			Type: ChunkResponse,
			Body: &ChunkResponseBody{Chunks: []ChunkPayload{
				{Position: world.Vec3{X: 0, Y: 0, Z: 0}, Blocks: []byte{0, 1, 2}},
			}},
		},
	}

	for _, msg := range cases {
		msg := msg
		t.Run(msg.Type.String(), func(t *testing.T) {
			frameBytes, err := p.Serialize(msg)
			require.NoError(t, err)

			decoded, err := p.Deserialize(frameBytes)
			require.NoError(t, err)
			require.Equal(t, msg.Type, decoded.Type)
			require.Equal(t, msg.Body, decoded.Body)
		})
	}
}

func TestDeserializeUnknownMessageKindFails(t *testing.T) {
	p := NewProcessor(codec.Transform{}, nil, nil)
	msgBytes, err := p.Serialize(Message{Type: Ping, Body: &PingBody{}})
	require.NoError(t, err)

	_, err = p.Deserialize(msgBytes)
	require.ErrorIs(t, err, ErrUnknownMessageKind)
}

func TestRegisterIsIdempotent(t *testing.T) {
	warned := 0
	p := NewProcessor(codec.Transform{}, nil, func(kind MessageKind) { warned++ })

	p.Register(Ping, func() Body { return &PingBody{} })
	require.Equal(t, 0, warned)

	p.Register(Ping, func() Body { return &PingBody{} })
	require.Equal(t, 1, warned, "re-registering the same kind should warn, not error")
}

func TestRequestIDRoundTrips(t *testing.T) {
	p := newTestProcessor(t)
	id := uuid.New()

	frameBytes, err := p.Serialize(Message{Type: Ping, RequestID: id, Body: &PingBody{}})
	require.NoError(t, err)

	decoded, err := p.Deserialize(frameBytes)
	require.NoError(t, err)
	require.Equal(t, id, decoded.RequestID)
}

func TestCorrelatorResolve(t *testing.T) {
	c := NewCorrelator()
	id := uuid.New()
	await := c.Await(id, time.Second)

	c.Resolve(Message{Type: Pong, RequestID: id, Body: &PongBody{Timestamp: 42}})

	msg, err := await()
	require.NoError(t, err)
	require.Equal(t, id, msg.RequestID)
}

func TestCorrelatorTimeout(t *testing.T) {
	c := NewCorrelator()
	id := uuid.New()
	await := c.Await(id, 10*time.Millisecond)

	_, err := await()
	require.ErrorIs(t, err, ErrTimeout)
}

func TestCorrelatorCancelAllOnDisconnect(t *testing.T) {
	c := NewCorrelator()
	id := uuid.New()
	await := c.Await(id, time.Second)

	c.CancelAll()

	_, err := await()
	require.ErrorIs(t, err, ErrNotConnected)
}
