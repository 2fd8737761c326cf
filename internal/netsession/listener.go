package netsession

import (
	"fmt"
	"sync"

	"github.com/voxelcore/voxelserver/internal/protocol"
)

// KindListener handles a decoded message addressed to a session,
// identified only by its MessageKind.
type KindListener func(session *Session, msg protocol.Message) error

// TypedListener is the strongly-typed form used by the game layer: it
// receives the message body already asserted to its concrete type.
type TypedListener[T protocol.Body] func(session *Session, body T) error

type namedListener struct {
	name string
	fn   KindListener
}

// listenerRegistry holds every registered listener, grouped by the
// MessageKind it handles. Fan-out enqueues one action per listener so
// a failing or panicking listener never stops its siblings from running.
type listenerRegistry struct {
	mu     sync.RWMutex
	byKind map[protocol.MessageKind][]namedListener
}

func newListenerRegistry() *listenerRegistry {
	return &listenerRegistry{byKind: make(map[protocol.MessageKind][]namedListener)}
}

func (r *listenerRegistry) onKind(kind protocol.MessageKind, name string, fn KindListener) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.byKind[kind] = append(r.byKind[kind], namedListener{name: name, fn: fn})
}

func (r *listenerRegistry) listenersFor(kind protocol.MessageKind) []namedListener {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]namedListener, len(r.byKind[kind]))
	copy(out, r.byKind[kind])
	return out
}

// OnKind registers fn for every message of kind, named for metrics and
// panic logs.
func (m *Manager) OnKind(kind protocol.MessageKind, name string, fn KindListener) {
	m.registry.onKind(kind, name, fn)
}

// OnType registers the strongly-typed form: fn receives the message
// body already asserted to T. kind must be the MessageKind whose
// factory produces a T; a mismatch at dispatch time is logged and
// skipped rather than panicking the loop.
func OnType[T protocol.Body](m *Manager, kind protocol.MessageKind, name string, fn TypedListener[T]) {
	m.registry.onKind(kind, name, func(session *Session, msg protocol.Message) error {
		body, ok := msg.Body.(T)
		if !ok {
			var zero T
			return fmt.Errorf("netsession: listener %s expected %T, got %T", name, zero, msg.Body)
		}
		return fn(session, body)
	})
}
