package frame

import (
	"sync"
	"time"
)

// Handle identifies a requested frame. The zero Handle is never issued.
type Handle uint64

// Callback receives the time the frame fired.
type Callback func(now time.Time)

type Scheduler interface {
	RequestFrame(fn Callback) Handle
	CancelFrame(h Handle)
}

type pending struct {
	handle Handle
	fn     Callback
}

// Queue is a manually fired Scheduler.
type Queue struct {
	mu     sync.Mutex
	fire   sync.Mutex
	next   Handle
	queued []pending
	// firing holds the handles of the batch currently being run so that a
	// callback can still cancel a later one in the same batch.
	firing map[Handle]struct{}
}

func NewQueue() *Queue {
	return &Queue{}
}

func (q *Queue) RequestFrame(fn Callback) Handle {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.next++
	q.queued = append(q.queued, pending{handle: q.next, fn: fn})
	return q.next
}

// CancelFrame drops h if it has not started running. Cancelling an unknown
// or already fired handle is a no-op.
func (q *Queue) CancelFrame(h Handle) {
	q.mu.Lock()
	defer q.mu.Unlock()
	delete(q.firing, h)
	for i, p := range q.queued {
		if p.handle == h {
			q.queued = append(q.queued[:i], q.queued[i+1:]...)
			return
		}
	}
}

// Pending reports how many callbacks are waiting.
func (q *Queue) Pending() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.queued)
}

// Fire runs every callback queued before the call, one at a time, and
// returns how many ran.
func (q *Queue) Fire(now time.Time) int {
	q.fire.Lock()
	defer q.fire.Unlock()

	q.mu.Lock()
	batch := q.queued
	q.queued = nil
	q.firing = make(map[Handle]struct{}, len(batch))
	for _, p := range batch {
		q.firing[p.handle] = struct{}{}
	}
	q.mu.Unlock()

	ran := 0
	for _, p := range batch {
		if !q.take(p.handle) {
			continue
		}
		p.fn(now)
		ran++
	}

	q.mu.Lock()
	q.firing = nil
	q.mu.Unlock()
	return ran
}

func (q *Queue) take(h Handle) bool {
	q.mu.Lock()
	defer q.mu.Unlock()
	if _, ok := q.firing[h]; !ok {
		return false
	}
	delete(q.firing, h)
	return true
}
