package eventloop

import (
	"container/heap"
	"time"
)

// delayedItem is one entry in the fire-time min-heap.
type delayedItem struct {
	fireAt time.Time
	action *Action
	index  int
}

// delayQueue implements container/heap.Interface, ordered by fireAt.
type delayQueue []*delayedItem

func (q delayQueue) Len() int { return len(q) }

func (q delayQueue) Less(i, j int) bool { return q[i].fireAt.Before(q[j].fireAt) }

func (q delayQueue) Swap(i, j int) {
	q[i], q[j] = q[j], q[i]
	q[i].index = i
	q[j].index = j
}

func (q *delayQueue) Push(x any) {
	item := x.(*delayedItem)
	item.index = len(*q)
	*q = append(*q, item)
}

func (q *delayQueue) Pop() any {
	old := *q
	n := len(old)
	item := old[n-1]
	old[n-1] = nil
	*q = old[:n-1]
	return item
}

var _ = heap.Interface(&delayQueue{})
