package dfu

import (
	"context"
	"sync"
)

// eventQueue is an unbounded FIFO of raw notifications. push never blocks so
// it is safe to call from transport callbacks; pop is called by the single
// session goroutine.
type eventQueue struct {
	mu    sync.Mutex
	items [][]byte
	wake  chan struct{}
}

func newEventQueue() *eventQueue {
	return &eventQueue{wake: make(chan struct{}, 1)}
}

func (q *eventQueue) push(raw []byte) {
	item := make([]byte, len(raw))
	copy(item, raw)

	q.mu.Lock()
	q.items = append(q.items, item)
	q.mu.Unlock()

	select {
	case q.wake <- struct{}{}:
	default:
	}
}

// pop returns the oldest notification, waiting until one arrives or ctx is done.
func (q *eventQueue) pop(ctx context.Context) ([]byte, error) {
	for {
		q.mu.Lock()
		if len(q.items) > 0 {
			item := q.items[0]
			q.items[0] = nil
			q.items = q.items[1:]
			q.mu.Unlock()
			return item, nil
		}
		q.mu.Unlock()

		select {
		case <-q.wake:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
}
