package netsession

import (
	"sync"
	"time"

	"github.com/voxelcore/voxelserver/internal/netratelimit"
	"github.com/voxelcore/voxelserver/internal/protocol"
	"github.com/voxelcore/voxelserver/internal/world"
)

// Session is one connected peer's authoritative server-side state.
// Every mutation below must only ever be called from the event loop's
// own goroutine — the single-writer discipline lives one layer up, in
// how the manager enqueues handlers, not in locking inside Session.
// The mutex here guards reads that legitimately happen off-loop (HTTP
// diagnostics, metrics scraping), not concurrent writers.
type Session struct {
	ID     uint64
	peerID uint64

	correlator *protocol.Correlator
	limiter    *netratelimit.TokenBucket

	mu         sync.RWMutex
	loggedIn   bool
	lastPing   time.Time
	position   protocol.Vec3F
	rotation   protocol.Vec3F
	facing     FacingSide
	sentChunks map[world.Vec3]struct{}
}

func newSession(id, peerID uint64, rateLimit float64, rateBurst int) *Session {
	return &Session{
		ID:         id,
		peerID:     peerID,
		correlator: protocol.NewCorrelator(),
		limiter:    netratelimit.NewTokenBucket(rateLimit, rateBurst),
		lastPing:   time.Now(),
		sentChunks: make(map[world.Vec3]struct{}),
	}
}

// AllowMessage consumes one token from this session's inbound rate
// limiter, reporting false when the session is sending faster than its
// configured budget allows.
func (s *Session) AllowMessage() bool {
	return s.limiter.Allow(1)
}

// Correlator returns the session's private request/response correlator.
// Each session owns one because requestId uniqueness only holds within
// a single session's outstanding requests.
func (s *Session) Correlator() *protocol.Correlator { return s.correlator }

// Touch records a ping received just now. Always a change (time-valued),
// so unlike the other setters it is never a no-op.
func (s *Session) Touch() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lastPing = time.Now()
}

func (s *Session) LastPing() time.Time {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.lastPing
}

// SetLoggedIn is a guarded setter: assigning the same value is a no-op.
func (s *Session) SetLoggedIn(v bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.loggedIn == v {
		return
	}
	s.loggedIn = v
}

func (s *Session) LoggedIn() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.loggedIn
}

// SetPosition is a guarded setter: assigning the same value is a no-op.
func (s *Session) SetPosition(p protocol.Vec3F) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.position == p {
		return
	}
	s.position = p
}

func (s *Session) Position() protocol.Vec3F {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.position
}

// SetRotation normalizes r (unless it is the zero vector) and assigns it
// and the derived facing side. A no-op if the normalized value is
// unchanged from the current rotation.
func (s *Session) SetRotation(r protocol.Vec3F) {
	normalized := normalizeRotation(r)

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.rotation == normalized {
		return
	}
	s.rotation = normalized
	s.facing = deriveFacing(normalized)
}

func (s *Session) Rotation() protocol.Vec3F {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.rotation
}

func (s *Session) Facing() FacingSide {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.facing
}

// HasSentChunk reports whether pos has already been streamed to this
// session.
func (s *Session) HasSentChunk(pos world.Vec3) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.sentChunks[pos]
	return ok
}

// MarkChunkSent records pos as streamed.
func (s *Session) MarkChunkSent(pos world.Vec3) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sentChunks[pos] = struct{}{}
}

// SentChunkCount reports how many chunks have been streamed so far.
func (s *Session) SentChunkCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.sentChunks)
}

// dispose clears sentChunkSet and cancels any outstanding correlated
// requests. Called once, by the manager, on disconnect.
func (s *Session) dispose() {
	s.mu.Lock()
	s.sentChunks = make(map[world.Vec3]struct{})
	s.mu.Unlock()
	s.correlator.CancelAll()
}
