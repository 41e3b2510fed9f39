package frame

import (
	"context"
	"sync"
	"time"
)

const DefaultFPS = 60

// Ticker fires a Queue at a fixed rate from its own goroutine. Frames that
// take longer than the interval delay the next fire instead of overlapping.
type Ticker struct {
	*Queue
	interval time.Duration
	cancel   context.CancelFunc
	done     chan struct{}
	once     sync.Once
}

// NewTicker starts firing at fps frames per second until ctx is done or
// Close is called. fps <= 0 selects DefaultFPS.
func NewTicker(ctx context.Context, fps int) *Ticker {
	if fps <= 0 {
		fps = DefaultFPS
	}
	ctx, cancel := context.WithCancel(ctx)
	t := &Ticker{
		Queue:    NewQueue(),
		interval: time.Second / time.Duration(fps),
		cancel:   cancel,
		done:     make(chan struct{}),
	}
	go t.loop(ctx)
	return t
}

func (t *Ticker) Interval() time.Duration { return t.interval }

func (t *Ticker) loop(ctx context.Context) {
	defer close(t.done)
	tick := time.NewTicker(t.interval)
	defer tick.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case now := <-tick.C:
			t.Fire(now)
		}
	}
}

// Close stops the ticker and waits for an in-flight frame to finish.
func (t *Ticker) Close() {
	t.once.Do(t.cancel)
	<-t.done
}
