package netsession

import (
	"bytes"
	"sync"
	"sync/atomic"

	"github.com/rs/zerolog"

	"github.com/voxelcore/voxelserver/internal/eventloop"
	"github.com/voxelcore/voxelserver/internal/protocol"
	"github.com/voxelcore/voxelserver/internal/transport"
)

// HelloFunc returns the messages to send a newly connected session,
// e.g. a VersionResponse or an initial SystemChat greeting.
type HelloFunc func(sessionID uint64) []protocol.Message

// Manager accepts inbound connections (accept-all by default — the
// transport's own AcceptHook is where real admission control lives),
// assigns monotonically increasing sessionIds, and fans deserialized
// messages out to registered listeners through the event loop. Every
// Session mutation it triggers runs as a loop action, preserving the
// single-writer invariant over session state.
type Manager struct {
	transport *transport.Adapter
	processor *protocol.Processor
	loop      *eventloop.Loop
	store     *sessionStore
	registry  *listenerRegistry
	lifecycle *eventPublisher
	hello     HelloFunc

	nextID atomic.Uint64

	bufPool sync.Pool

	rateLimit float64
	rateBurst int

	log     zerolog.Logger
	metrics *Metrics
}

// Default per-session inbound rate limit: generous enough for normal
// play (movement, block edits, chat) while still bounding a single
// misbehaving or compromised client's ability to flood the loop.
const (
	DefaultRateLimitPerSecond = 100
	DefaultRateLimitBurst     = 200
)

// NewManager wires a Manager around an already-listening transport
// Adapter, a configured Processor, and the event loop every handler
// runs on. hello and metrics may be nil.
func NewManager(adapter *transport.Adapter, processor *protocol.Processor, loop *eventloop.Loop, hello HelloFunc, log zerolog.Logger, metrics *Metrics) *Manager {
	return &Manager{
		transport: adapter,
		processor: processor,
		loop:      loop,
		store:     newSessionStore(),
		registry:  newListenerRegistry(),
		lifecycle: newEventPublisher(32),
		hello:     hello,
		bufPool:   sync.Pool{New: func() any { return new(bytes.Buffer) }},
		rateLimit: DefaultRateLimitPerSecond,
		rateBurst: DefaultRateLimitBurst,
		log:       log,
		metrics:   metrics,
	}
}

// SetRateLimit overrides the per-session inbound message budget applied
// to sessions connecting from this point on; already-connected sessions
// keep whatever limit was in effect when they connected.
func (m *Manager) SetRateLimit(perSecond float64, burst int) {
	m.rateLimit = perSecond
	m.rateBurst = burst
}

// Poll drains every transport event queued since the last call. Safe to
// call from any goroutine; the actual session/world mutation each event
// triggers is always deferred onto the event loop.
func (m *Manager) Poll() {
	m.transport.Poll(func(e transport.Event) {
		switch e.Kind {
		case transport.PeerConnected:
			m.handleConnected(e.PeerID)
		case transport.PeerDisconnected:
			m.handleDisconnected(e.PeerID)
		case transport.DataReceived:
			m.handleData(e.PeerID, e.Data)
		}
	})
}

func (m *Manager) handleConnected(peerID uint64) {
	m.loop.Enqueue(eventloop.High, func() {
		id := m.nextID.Add(1)
		session := newSession(id, peerID, m.rateLimit, m.rateBurst)
		m.store.add(session)

		if m.metrics != nil {
			m.metrics.SessionsActive.Inc()
			m.metrics.SessionsTotal.Inc()
		}

		if m.hello != nil {
			for _, msg := range m.hello(id) {
				if err := m.sendMessage(session, msg); err != nil {
					m.log.Warn().Err(err).Uint64("sessionId", id).Msg("failed to send hello message")
				}
			}
		}

		m.lifecycle.publish(ConnectionEvent{SessionID: id, Kind: SessionConnected})
	})
}

func (m *Manager) handleDisconnected(peerID uint64) {
	m.loop.Enqueue(eventloop.High, func() {
		session, ok := m.store.getByPeer(peerID)
		if !ok {
			return
		}
		session.dispose()
		m.store.remove(session.ID)

		if m.metrics != nil {
			m.metrics.SessionsActive.Dec()
		}

		m.lifecycle.publish(ConnectionEvent{SessionID: session.ID, Kind: SessionDisconnected})
	})
}

// handleData decodes one inbound frame and, unless the event loop is
// backed up past its configured MaxQueueDepth, enqueues its dispatch.
// Decoding and correlator resolution happen unconditionally, off the
// loop, before that check: a pending request/response pair must resolve
// even while the loop is too far behind to take on more listener work.
func (m *Manager) handleData(peerID uint64, data []byte) {
	session, ok := m.store.getByPeer(peerID)
	if !ok {
		return
	}

	if !session.AllowMessage() {
		if m.metrics != nil {
			m.metrics.MessagesThrottled.Inc()
		}
		m.log.Warn().Uint64("sessionId", session.ID).Msg("inbound message rate limit exceeded, dropping frame")
		return
	}

	msg, err := m.processor.Deserialize(data)
	if err != nil {
		m.log.Warn().Err(err).Uint64("sessionId", session.ID).Msg("failed to decode inbound frame")
		return
	}

	if msg.HasRequestID() {
		session.Correlator().Resolve(msg)
	}

	if max := m.loop.MaxQueueDepth(); max > 0 && m.loop.QueueDepth() >= max {
		if m.metrics != nil {
			m.metrics.MessagesBackpressured.Inc()
		}
		m.log.Warn().
			Uint64("sessionId", session.ID).
			Str("type", msg.Type.String()).
			Msg("event loop backpressure exceeded, dropping inbound message")
		return
	}

	m.loop.Enqueue(eventloop.Normal, func() {
		session.Touch()

		if m.metrics != nil {
			m.metrics.MessagesDispatched.WithLabelValues(msg.Type.String()).Inc()
		}

		for _, l := range m.registry.listenersFor(msg.Type) {
			l := l
			m.loop.Enqueue(eventloop.Normal, func() {
				m.invokeListener(session, msg, l)
			})
		}
	})
}

// invokeListener runs one listener, catching both its returned error and
// any panic so a single bad handler never affects its siblings or the
// loop itself.
func (m *Manager) invokeListener(session *Session, msg protocol.Message, l namedListener) {
	defer func() {
		if r := recover(); r != nil {
			if m.metrics != nil {
				m.metrics.ListenerPanicsTotal.WithLabelValues(l.name).Inc()
			}
			m.log.Error().
				Interface("panic", r).
				Str("listener", l.name).
				Uint64("sessionId", session.ID).
				Msg("session listener panicked")
		}
	}()

	if err := l.fn(session, msg); err != nil {
		if m.metrics != nil {
			m.metrics.ListenerErrorsTotal.WithLabelValues(l.name).Inc()
		}
		m.log.Warn().
			Err(err).
			Str("listener", l.name).
			Uint64("sessionId", session.ID).
			Msg("session listener returned an error")
	}
}

// Send encodes and delivers msg to one session.
func (m *Manager) Send(sessionID uint64, msg protocol.Message) error {
	session, ok := m.store.get(sessionID)
	if !ok {
		return ErrSessionNotFound
	}
	return m.sendMessage(session, msg)
}

// Broadcast delivers msg to every currently connected session, logging
// (rather than failing outright on) any individual send error.
func (m *Manager) Broadcast(msg protocol.Message) {
	for _, session := range m.store.all() {
		if err := m.sendMessage(session, msg); err != nil {
			m.log.Warn().Err(err).Uint64("sessionId", session.ID).Msg("broadcast send failed")
		}
	}
}

func (m *Manager) sendMessage(session *Session, msg protocol.Message) error {
	buf := m.bufPool.Get().(*bytes.Buffer)
	defer m.bufPool.Put(buf)

	if err := m.processor.SerializeInto(buf, msg); err != nil {
		return err
	}
	return m.transport.Send(session.peerID, buf.Bytes())
}

// Disconnect forcibly drops a session's transport connection.
func (m *Manager) Disconnect(sessionID uint64) {
	session, ok := m.store.get(sessionID)
	if !ok {
		return
	}
	m.transport.Disconnect(session.peerID)
}

// Session looks up a currently connected session by id.
func (m *Manager) Session(sessionID uint64) (*Session, bool) {
	return m.store.get(sessionID)
}

// SessionCount reports how many sessions are currently connected.
func (m *Manager) SessionCount() int {
	return m.store.count()
}

// Subscribe returns a channel of connection lifecycle events and an id
// to pass to Unsubscribe.
func (m *Manager) Subscribe() (uint64, <-chan ConnectionEvent) {
	return m.lifecycle.subscribe()
}

// Unsubscribe stops and closes the channel returned by Subscribe.
func (m *Manager) Unsubscribe(id uint64) {
	m.lifecycle.unsubscribe(id)
}
