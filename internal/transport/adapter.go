package transport

import (
	"bufio"
	"encoding/binary"
	"fmt"
	"net"
	"sync"
	"sync/atomic"

	kcp "github.com/xtaci/kcp-go/v5"
)

// AcceptHook decides whether to accept an inbound connection from addr.
// Returning false immediately closes the underlying session.
type AcceptHook func(addr string) bool

// Adapter is the core's sole transport dependency: it owns the listening
// socket and every accepted peer, feeding received bytes and lifecycle
// events onto a queue the core drains once per tick via Poll.
type Adapter struct {
	listener *kcp.Listener
	accept   AcceptHook

	nextID uint64

	mu    sync.RWMutex
	peers map[uint64]*peer

	events chan Event
	closed chan struct{}
}

// Listen opens a KCP listener on addr ("host:port" or ":port"). If accept
// is nil every inbound connection is accepted.
func Listen(addr string, accept AcceptHook) (*Adapter, error) {
	listener, err := kcp.ListenWithOptions(addr, nil, 0, 0)
	if err != nil {
		return nil, fmt.Errorf("transport: listen %s: %w", addr, err)
	}
	if accept == nil {
		accept = func(string) bool { return true }
	}

	a := &Adapter{
		listener: listener,
		accept:   accept,
		peers:    make(map[uint64]*peer),
		events:   make(chan Event, 1024),
		closed:   make(chan struct{}),
	}
	go a.acceptLoop()
	return a, nil
}

func (a *Adapter) acceptLoop() {
	for {
		conn, err := a.listener.AcceptKCP()
		if err != nil {
			select {
			case <-a.closed:
				return
			default:
				return
			}
		}

		if !a.accept(conn.RemoteAddr().String()) {
			conn.Close()
			continue
		}

		id := atomic.AddUint64(&a.nextID, 1)
		p := &peer{id: id, conn: conn}

		a.mu.Lock()
		a.peers[id] = p
		a.mu.Unlock()

		a.enqueue(Event{Kind: PeerConnected, PeerID: id})
		go a.readLoop(p)
	}
}

func (a *Adapter) readLoop(p *peer) {
	reader := bufio.NewReader(p.conn)
	lengthBuf := make([]byte, 4)

	for {
		if _, err := readFull(reader, lengthBuf); err != nil {
			a.disconnect(p)
			return
		}
		frameLen := binary.LittleEndian.Uint32(lengthBuf)
		frameBytes := make([]byte, frameLen)
		if _, err := readFull(reader, frameBytes); err != nil {
			a.disconnect(p)
			return
		}
		a.enqueue(Event{Kind: DataReceived, PeerID: p.id, Data: frameBytes})
	}
}

func readFull(r *bufio.Reader, buf []byte) (int, error) {
	total := 0
	for total < len(buf) {
		n, err := r.Read(buf[total:])
		total += n
		if err != nil {
			return total, err
		}
	}
	return total, nil
}

func (a *Adapter) disconnect(p *peer) {
	a.mu.Lock()
	_, existed := a.peers[p.id]
	delete(a.peers, p.id)
	a.mu.Unlock()

	if !existed {
		return
	}
	p.close()
	a.enqueue(Event{Kind: PeerDisconnected, PeerID: p.id})
}

func (a *Adapter) enqueue(e Event) {
	select {
	case a.events <- e:
	default:
		// Event queue full: drop rather than block the peer's read loop.
		// netsession.Manager.handleData's MaxQueueDepth check governs
		// drops from network receipt into the event loop; this is the
		// transport-side analogue, guarding the handoff one layer below.
	}
}

// Poll drains every event queued since the last call and invokes onEvent
// for each, in arrival order. The core calls Poll once per event-loop tick.
func (a *Adapter) Poll(onEvent func(Event)) {
	for {
		select {
		case e := <-a.events:
			onEvent(e)
		default:
			return
		}
	}
}

// Send writes a length-prefixed frame to the given peer. Returns an error
// if the peer is unknown or its connection has closed.
func (a *Adapter) Send(peerID uint64, frameBytes []byte) error {
	a.mu.RLock()
	p, ok := a.peers[peerID]
	a.mu.RUnlock()
	if !ok {
		return fmt.Errorf("transport: unknown peer %d", peerID)
	}

	prefixed := make([]byte, 4+len(frameBytes))
	binary.LittleEndian.PutUint32(prefixed[:4], uint32(len(frameBytes)))
	copy(prefixed[4:], frameBytes)
	return p.send(prefixed)
}

// Disconnect forcibly closes a peer's connection, as if the remote end had
// dropped. Used by session timeout handling.
func (a *Adapter) Disconnect(peerID uint64) {
	a.mu.RLock()
	p, ok := a.peers[peerID]
	a.mu.RUnlock()
	if ok {
		a.disconnect(p)
	}
}

// Addr returns the address the listener is bound to.
func (a *Adapter) Addr() string {
	return a.listener.Addr().String()
}

// Close stops accepting new connections and closes every peer.
func (a *Adapter) Close() error {
	close(a.closed)
	err := a.listener.Close()

	a.mu.Lock()
	peers := a.peers
	a.peers = make(map[uint64]*peer)
	a.mu.Unlock()

	for _, p := range peers {
		p.close()
	}
	return err
}
