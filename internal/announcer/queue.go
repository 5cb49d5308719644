package announcer

import "sync"

// commandQueue is an unbounded multi-producer single-consumer FIFO.
// Producers never block; the consumer blocks in Pop until an item
// arrives or the queue is closed and drained.
type commandQueue struct {
	mu     sync.Mutex
	cond   *sync.Cond
	items  []Command
	closed bool
}

func newCommandQueue() *commandQueue {
	q := &commandQueue{}
	q.cond = sync.NewCond(&q.mu)
	return q
}

// Push appends c. It reports false when the queue is already closed.
func (q *commandQueue) Push(c Command) bool {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.closed {
		return false
	}
	q.items = append(q.items, c)
	q.cond.Signal()
	return true
}

// Pop removes the oldest item, blocking while the queue is empty.
// ok is false once the queue is closed and fully drained.
func (q *commandQueue) Pop() (c Command, ok bool) {
	q.mu.Lock()
	defer q.mu.Unlock()
	for len(q.items) == 0 && !q.closed {
		q.cond.Wait()
	}
	if len(q.items) == 0 {
		return Command{}, false
	}
	c = q.items[0]
	q.items = q.items[1:]
	return c, true
}

// Close ends the producer side. Queued items remain poppable.
func (q *commandQueue) Close() {
	q.mu.Lock()
	q.closed = true
	q.mu.Unlock()
	q.cond.Broadcast()
}
