package netsession

import (
	"context"
	"encoding/binary"
	"io"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
	kcp "github.com/xtaci/kcp-go/v5"

	"github.com/voxelcore/voxelserver/internal/codec"
	"github.com/voxelcore/voxelserver/internal/eventloop"
	"github.com/voxelcore/voxelserver/internal/protocol"
	"github.com/voxelcore/voxelserver/internal/transport"
)

func newTestManager(t *testing.T, hello HelloFunc) (*Manager, *transport.Adapter, func()) {
	t.Helper()

	adapter, err := transport.Listen("127.0.0.1:0", nil)
	require.NoError(t, err)

	processor := protocol.NewProcessor(codec.Transform{}, nil, nil)
	protocol.RegisterDefaults(processor)

	loop := eventloop.New(eventloop.Config{MaxActionsPerTick: 64}, zerolog.New(io.Discard), nil)
	manager := NewManager(adapter, processor, loop, hello, zerolog.New(io.Discard), nil)

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		ticker := time.NewTicker(2 * time.Millisecond)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case now := <-ticker.C:
				manager.Poll()
				loop.Tick(now)
			}
		}
	}()

	return manager, adapter, func() {
		cancel()
		adapter.Close()
	}
}

func dialClient(t *testing.T, addr string) *kcp.UDPSession {
	t.Helper()
	client, err := kcp.DialWithOptions(addr, nil, 0, 0)
	require.NoError(t, err)
	return client
}

func readFrame(t *testing.T, client *kcp.UDPSession) []byte {
	t.Helper()
	client.SetReadDeadline(time.Now().Add(2 * time.Second))

	lengthBuf := make([]byte, 4)
	_, err := io.ReadFull(client, lengthBuf)
	require.NoError(t, err)
	n := binary.LittleEndian.Uint32(lengthBuf)

	frame := make([]byte, n)
	_, err = io.ReadFull(client, frame)
	require.NoError(t, err)
	return frame
}

func writeFrame(t *testing.T, client *kcp.UDPSession, frame []byte) {
	t.Helper()
	prefixed := make([]byte, 4+len(frame))
	binary.LittleEndian.PutUint32(prefixed[:4], uint32(len(frame)))
	copy(prefixed[4:], frame)
	_, err := client.Write(prefixed)
	require.NoError(t, err)
}

func TestHelloMessagesSentOnConnect(t *testing.T) {
	hello := func(sessionID uint64) []protocol.Message {
		return []protocol.Message{{Type: protocol.VersionResponse, Body: &protocol.VersionResponseBody{Version: "1.0.0"}}}
	}
	manager, adapter, closeAll := newTestManager(t, hello)
	defer closeAll()

	processor := protocol.NewProcessor(codec.Transform{}, nil, nil)
	protocol.RegisterDefaults(processor)

	client := dialClient(t, adapter.Addr())
	defer client.Close()

	frame := readFrame(t, client)
	msg, err := processor.Deserialize(frame)
	require.NoError(t, err)
	require.Equal(t, protocol.VersionResponse, msg.Type)
	require.Equal(t, "1.0.0", msg.Body.(*protocol.VersionResponseBody).Version)

	require.Equal(t, 1, manager.SessionCount())
}

func TestListenerFanOutAndReply(t *testing.T) {
	manager, adapter, closeAll := newTestManager(t, nil)
	defer closeAll()

	received := make(chan uint64, 1)
	manager.OnKind(protocol.Ping, "reply-pong", func(session *Session, msg protocol.Message) error {
		received <- session.ID
		return manager.Send(session.ID, protocol.Message{Type: protocol.Pong, Body: &protocol.PongBody{Timestamp: 42}})
	})

	processor := protocol.NewProcessor(codec.Transform{}, nil, nil)
	protocol.RegisterDefaults(processor)

	client := dialClient(t, adapter.Addr())
	defer client.Close()

	pingBytes, err := processor.Serialize(protocol.Message{Type: protocol.Ping, Body: &protocol.PingBody{}})
	require.NoError(t, err)
	writeFrame(t, client, pingBytes)

	var sessionID uint64
	select {
	case sessionID = <-received:
	case <-time.After(2 * time.Second):
		t.Fatal("listener never fired")
	}
	require.NotZero(t, sessionID)

	reply := readFrame(t, client)
	msg, err := processor.Deserialize(reply)
	require.NoError(t, err)
	require.Equal(t, protocol.Pong, msg.Type)
	require.EqualValues(t, 42, msg.Body.(*protocol.PongBody).Timestamp)
}

func TestDisconnectClearsSession(t *testing.T) {
	manager, adapter, closeAll := newTestManager(t, nil)
	defer closeAll()

	client := dialClient(t, adapter.Addr())

	require.Eventually(t, func() bool {
		return manager.SessionCount() == 1
	}, 2*time.Second, 10*time.Millisecond)

	client.Close()

	require.Eventually(t, func() bool {
		return manager.SessionCount() == 0
	}, 2*time.Second, 10*time.Millisecond)
}
