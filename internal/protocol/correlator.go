package protocol

import (
	"sync"
	"time"

	"github.com/google/uuid"
)

// DefaultTimeout is the correlator's default future expiry.
const DefaultTimeout = 5 * time.Second

// AssetFetchTimeout is the longer expiry used for asset-fetch requests.
const AssetFetchTimeout = 10 * time.Second

// pendingEntry is one outstanding request awaiting its response.
type pendingEntry struct {
	resultCh chan correlatorResult
	timer    *time.Timer
}

type correlatorResult struct {
	msg Message
	err error
}

// Correlator maps a session's outstanding requestIds to pending futures.
// requestId uniqueness holds only within one session's outstanding
// requests, so each session owns its own Correlator instance.
type Correlator struct {
	mu      sync.Mutex
	pending map[uuid.UUID]*pendingEntry
}

// NewCorrelator builds an empty per-session correlator.
func NewCorrelator() *Correlator {
	return &Correlator{pending: make(map[uuid.UUID]*pendingEntry)}
}

// Await registers requestID as pending and returns a function that blocks
// until either a matching Resolve call arrives or timeout elapses. timeout
// of zero uses DefaultTimeout.
func (c *Correlator) Await(requestID uuid.UUID, timeout time.Duration) func() (Message, error) {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}

	entry := &pendingEntry{resultCh: make(chan correlatorResult, 1)}
	c.mu.Lock()
	c.pending[requestID] = entry
	c.mu.Unlock()

	entry.timer = time.AfterFunc(timeout, func() {
		c.fail(requestID, ErrTimeout)
	})

	return func() (Message, error) {
		result := <-entry.resultCh
		return result.msg, result.err
	}
}

// Resolve completes the pending future for msg.RequestID, if one exists.
// No-op if requestID is not outstanding (e.g. it already timed out).
func (c *Correlator) Resolve(msg Message) {
	c.mu.Lock()
	entry, ok := c.pending[msg.RequestID]
	if ok {
		delete(c.pending, msg.RequestID)
	}
	c.mu.Unlock()

	if !ok {
		return
	}
	entry.timer.Stop()
	entry.resultCh <- correlatorResult{msg: msg}
}

// fail delivers err to the pending entry for requestID, if still outstanding.
func (c *Correlator) fail(requestID uuid.UUID, err error) {
	c.mu.Lock()
	entry, ok := c.pending[requestID]
	if ok {
		delete(c.pending, requestID)
	}
	c.mu.Unlock()

	if !ok {
		return
	}
	entry.resultCh <- correlatorResult{err: err}
}

// CancelAll fails every outstanding request with ErrNotConnected. Called on
// session disconnect, since a disconnected session can never receive a
// matching response.
func (c *Correlator) CancelAll() {
	c.mu.Lock()
	entries := c.pending
	c.pending = make(map[uuid.UUID]*pendingEntry)
	c.mu.Unlock()

	for _, entry := range entries {
		entry.timer.Stop()
		entry.resultCh <- correlatorResult{err: ErrNotConnected}
	}
}
