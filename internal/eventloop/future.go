package eventloop

// AsyncFunc is CPU-heavy work dispatched off the loop's own goroutine —
// chunk generation is the motivating case. It must not touch session or
// world state directly; its result is folded back in via onComplete.
type AsyncFunc[T any] func() (T, error)

// EnqueueAsync schedules a single loop action that, once dequeued,
// starts fn in its own goroutine and returns immediately so the loop
// continues with the next item. When fn finishes, onComplete is
// re-enqueued at the same priority as a synchronous action — the only
// point at which it is safe for the result to touch session or world
// state. EnqueueAsync is a package function rather than a method
// because Go methods cannot carry their own type parameters.
func EnqueueAsync[T any](l *Loop, priority Priority, fn AsyncFunc[T], onComplete func(T, error)) ActionID {
	return l.Enqueue(priority, func() {
		go func() {
			result, err := fn()
			l.Enqueue(priority, func() {
				onComplete(result, err)
			})
		}()
	})
}
