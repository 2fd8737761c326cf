package transport

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	kcp "github.com/xtaci/kcp-go/v5"
)

func TestAdapterAcceptAndExchange(t *testing.T) {
	adapter, err := Listen("127.0.0.1:0", nil)
	require.NoError(t, err)
	defer adapter.Close()

	addr := adapter.listener.Addr().String()

	client, err := kcp.DialWithOptions(addr, nil, 0, 0)
	require.NoError(t, err)
	defer client.Close()

	var connected Event
	require.Eventually(t, func() bool {
		found := false
		adapter.Poll(func(e Event) {
			if e.Kind == PeerConnected {
				connected = e
				found = true
			}
		})
		return found
	}, 2*time.Second, 10*time.Millisecond)

	require.NoError(t, adapter.Send(connected.PeerID, []byte("hello")))

	buf := make([]byte, 64)
	client.SetReadDeadline(time.Now().Add(2 * time.Second))
	n, err := client.Read(buf)
	require.NoError(t, err)
	require.True(t, n >= 4)
}

func TestAdapterRejectsConnection(t *testing.T) {
	adapter, err := Listen("127.0.0.1:0", func(addr string) bool { return false })
	require.NoError(t, err)
	defer adapter.Close()

	addr := adapter.listener.Addr().String()
	client, err := kcp.DialWithOptions(addr, nil, 0, 0)
	require.NoError(t, err)
	defer client.Close()

	require.Never(t, func() bool {
		found := false
		adapter.Poll(func(e Event) {
			if e.Kind == PeerConnected {
				found = true
			}
		})
		return found
	}, 300*time.Millisecond, 10*time.Millisecond)
}
