package eventloop

import (
	"io"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
)

func testLoop(cfg Config) *Loop {
	if cfg.MaxActionsPerTick == 0 {
		cfg.MaxActionsPerTick = 256
	}
	return New(cfg, zerolog.New(io.Discard), nil)
}

func TestTickDrainsHighBeforeNormalBeforeLow(t *testing.T) {
	l := testLoop(Config{})

	var order []string
	var mu sync.Mutex
	record := func(name string) func() {
		return func() {
			mu.Lock()
			order = append(order, name)
			mu.Unlock()
		}
	}

	l.Enqueue(Low, record("low"))
	l.Enqueue(Normal, record("normal"))
	l.Enqueue(High, record("high"))

	l.Tick(time.Now())

	require.Equal(t, []string{"high", "normal", "low"}, order)
}

func TestTickRespectsMaxActionsPerTick(t *testing.T) {
	l := testLoop(Config{MaxActionsPerTick: 2})

	ran := 0
	for i := 0; i < 5; i++ {
		l.Enqueue(Normal, func() { ran++ })
	}

	l.Tick(time.Now())
	require.Equal(t, 2, ran)
	require.Equal(t, 3, l.QueueLength(Normal))

	l.Tick(time.Now())
	require.Equal(t, 4, ran)
}

func TestCancelBeforeFirstTickPreventsExecution(t *testing.T) {
	l := testLoop(Config{})

	ran := false
	id := l.Enqueue(Normal, func() { ran = true })

	require.True(t, l.Cancel(id))
	l.Tick(time.Now())

	require.False(t, ran)
}

func TestCancelAfterExecutionFails(t *testing.T) {
	l := testLoop(Config{})

	id := l.Enqueue(Normal, func() {})
	l.Tick(time.Now())

	require.False(t, l.Cancel(id))
}

func TestCancelUnknownIDFails(t *testing.T) {
	l := testLoop(Config{})
	require.False(t, l.Cancel(ActionID(9999)))
}

func TestDelayedActionPromotesOnceDue(t *testing.T) {
	l := testLoop(Config{})

	ran := false
	l.EnqueueDelayed(High, 0, func() { ran = true })

	l.Tick(time.Now().Add(time.Millisecond))
	require.True(t, ran)
}

func TestDelayedActionNotPromotedEarly(t *testing.T) {
	l := testLoop(Config{})

	ran := false
	l.EnqueueDelayed(High, time.Hour, func() { ran = true })

	l.Tick(time.Now())
	require.False(t, ran)
	require.Equal(t, 1, l.PendingDelayed())
}

func TestCancelDelayedBeforePromotion(t *testing.T) {
	l := testLoop(Config{})

	ran := false
	id := l.EnqueueDelayed(Low, time.Hour, func() { ran = true })
	require.True(t, l.Cancel(id))

	l.Tick(time.Now())
	require.False(t, ran)
}

func TestPanickingActionIsSwallowed(t *testing.T) {
	l := testLoop(Config{})

	l.Enqueue(High, func() { panic("boom") })
	after := false
	l.Enqueue(Normal, func() { after = true })

	require.NotPanics(t, func() {
		l.Tick(time.Now())
	})
	require.True(t, after)
}

func TestOnTickFiresWithDuration(t *testing.T) {
	l := testLoop(Config{})

	fired := false
	l.OnTick(func(d time.Duration) { fired = true })

	l.Tick(time.Now())
	require.True(t, fired)
}

func TestOnTickResetFiresWhenSequenceWraps(t *testing.T) {
	l := testLoop(Config{})
	l.tickSeq = ^uint32(0) // one Tick call away from wrapping to 0

	reset := false
	l.OnTickReset(func() { reset = true })

	l.Tick(time.Now())
	require.True(t, reset)
}

func TestEnqueueAsyncResolvesOnLoop(t *testing.T) {
	l := testLoop(Config{})

	done := make(chan struct{})
	EnqueueAsync(l, Normal, func() (int, error) {
		return 42, nil
	}, func(result int, err error) {
		require.NoError(t, err)
		require.Equal(t, 42, result)
		close(done)
	})

	l.Tick(time.Now()) // starts the goroutine

	require.Eventually(t, func() bool {
		l.Tick(time.Now()) // drains the completion action once it lands
		select {
		case <-done:
			return true
		default:
			return false
		}
	}, time.Second, time.Millisecond)
}
