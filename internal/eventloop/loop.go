package eventloop

import (
	"container/heap"
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

// Config controls tick pacing and per-tick diagnostics.
type Config struct {
	TickInterval          time.Duration
	MaxActionsPerTick     int
	SlowActionThreshold   time.Duration
	EnableDetailedMetrics bool

	// MaxQueueDepth bounds how many actions may sit ready across every
	// priority queue at once. Zero disables the limit. Enforcement is
	// the caller's responsibility (see netsession's network-receipt
	// path) — Loop itself only ever exposes QueueDepth so a caller can
	// check it before enqueuing.
	MaxQueueDepth int
}

// Loop is the core's single-threaded cooperative scheduler. Enqueue,
// EnqueueDelayed, and Cancel are safe to call from any goroutine; Tick
// and Run must only ever be driven by the loop's own owning goroutine.
type Loop struct {
	cfg     Config
	log     zerolog.Logger
	metrics *Metrics

	mu      sync.Mutex
	queues  map[Priority][]*Action
	delay   delayQueue
	actions map[ActionID]*Action
	nextID  uint64
	tickSeq uint32

	onTick      []func(time.Duration)
	onTickReset []func()
}

// New constructs a Loop. metrics may be nil, which disables metric
// recording (tests typically pass nil to avoid duplicate Prometheus
// registration across cases).
func New(cfg Config, log zerolog.Logger, metrics *Metrics) *Loop {
	if cfg.MaxActionsPerTick <= 0 {
		cfg.MaxActionsPerTick = 256
	}
	return &Loop{
		cfg:     cfg,
		log:     log,
		metrics: metrics,
		queues:  map[Priority][]*Action{High: nil, Normal: nil, Low: nil},
		actions: make(map[ActionID]*Action),
	}
}

// Enqueue schedules fn to run at the given priority on a future tick.
func (l *Loop) Enqueue(priority Priority, fn func()) ActionID {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.enqueueLocked(priority, fn)
}

func (l *Loop) enqueueLocked(priority Priority, fn func()) ActionID {
	l.nextID++
	id := ActionID(l.nextID)
	a := newAction(id, priority, fn)
	l.queues[priority] = append(l.queues[priority], a)
	l.actions[id] = a
	return id
}

// EnqueueDelayed schedules fn to become eligible to run once delay has
// elapsed. It is promoted into its priority queue on the first Tick
// whose fire-time check is satisfied.
func (l *Loop) EnqueueDelayed(priority Priority, delay time.Duration, fn func()) ActionID {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.nextID++
	id := ActionID(l.nextID)
	a := newAction(id, priority, fn)
	l.actions[id] = a
	heap.Push(&l.delay, &delayedItem{fireAt: time.Now().Add(delay), action: a})
	return id
}

// Cancel succeeds if the action is still sitting in a priority queue or
// the delay heap. Returns false if it already started running, already
// finished, was already cancelled, or the id is unknown.
func (l *Loop) Cancel(id ActionID) bool {
	l.mu.Lock()
	a, ok := l.actions[id]
	l.mu.Unlock()
	if !ok {
		return false
	}
	return a.cancel()
}

// OnTick registers a listener invoked at the end of every tick with the
// tick's processing duration.
func (l *Loop) OnTick(fn func(time.Duration)) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.onTick = append(l.onTick, fn)
}

// OnTickReset registers a listener invoked whenever the internal tick
// sequence counter wraps around.
func (l *Loop) OnTickReset(fn func()) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.onTickReset = append(l.onTickReset, fn)
}

// Tick promotes due delayed actions, then drains up to
// MaxActionsPerTick actions in strict High, Normal, Low order.
func (l *Loop) Tick(now time.Time) {
	l.promoteDue(now)

	remaining := l.cfg.MaxActionsPerTick
	for _, p := range priorityOrder {
		for remaining > 0 {
			a, ok := l.pop(p)
			if !ok {
				break
			}
			if l.runAction(a) {
				remaining--
			}
		}
	}

	elapsed := time.Since(now)
	if l.metrics != nil {
		l.metrics.TickDuration.Observe(elapsed.Seconds())
	}
	l.fireOnTick(elapsed)

	l.tickSeq++
	if l.tickSeq == 0 {
		if l.metrics != nil {
			l.metrics.TickResets.Inc()
		}
		l.fireOnTickReset()
	}
}

// Run drives Tick on cfg.TickInterval until ctx is cancelled.
func (l *Loop) Run(ctx context.Context) {
	ticker := time.NewTicker(l.cfg.TickInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case now := <-ticker.C:
			l.Tick(now)
		}
	}
}

func (l *Loop) promoteDue(now time.Time) {
	l.mu.Lock()
	defer l.mu.Unlock()
	for l.delay.Len() > 0 && !l.delay[0].fireAt.After(now) {
		item := heap.Pop(&l.delay).(*delayedItem)
		l.queues[item.action.Priority] = append(l.queues[item.action.Priority], item.action)
	}
}

func (l *Loop) pop(p Priority) (*Action, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	q := l.queues[p]
	if len(q) == 0 {
		return nil, false
	}
	a := q[0]
	l.queues[p] = q[1:]
	delete(l.actions, a.ID)
	return a, true
}

func (l *Loop) runAction(a *Action) bool {
	started := time.Now()
	ran := a.run(func(r any) {
		l.log.Error().
			Interface("panic", r).
			Uint64("actionId", uint64(a.ID)).
			Str("priority", a.Priority.String()).
			Msg("event loop action panicked")
	})
	if !ran {
		return false
	}

	if l.metrics != nil {
		l.metrics.ActionsProcessed.WithLabelValues(a.Priority.String()).Inc()
	}

	if l.cfg.SlowActionThreshold > 0 {
		if elapsed := time.Since(started); elapsed > l.cfg.SlowActionThreshold {
			if l.metrics != nil {
				l.metrics.SlowActionsTotal.Inc()
			}
			l.log.Warn().
				Dur("elapsed", elapsed).
				Uint64("actionId", uint64(a.ID)).
				Str("priority", a.Priority.String()).
				Msg("slow event loop action")
		}
	}
	return true
}

func (l *Loop) fireOnTick(elapsed time.Duration) {
	l.mu.Lock()
	listeners := append([]func(time.Duration){}, l.onTick...)
	l.mu.Unlock()
	for _, fn := range listeners {
		fn(elapsed)
	}
}

func (l *Loop) fireOnTickReset() {
	l.mu.Lock()
	listeners := append([]func(){}, l.onTickReset...)
	l.mu.Unlock()
	for _, fn := range listeners {
		fn()
	}
}

// QueueLength reports how many actions are currently waiting at p,
// excluding anything still sitting in the delay heap.
func (l *Loop) QueueLength(p Priority) int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.queues[p])
}

// MaxQueueDepth reports the configured backpressure ceiling, or zero if
// none was configured.
func (l *Loop) MaxQueueDepth() int {
	return l.cfg.MaxQueueDepth
}

// QueueDepth reports how many actions are currently waiting across
// every priority, excluding anything still sitting in the delay heap.
// Callers use this against a configured ceiling to decide whether the
// loop is backed up enough that new work should be refused rather than
// queued.
func (l *Loop) QueueDepth() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	total := 0
	for _, p := range priorityOrder {
		total += len(l.queues[p])
	}
	return total
}

// PendingDelayed reports how many actions are still in the delay heap.
func (l *Loop) PendingDelayed() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.delay.Len()
}
