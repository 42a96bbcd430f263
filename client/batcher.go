package client

import (
	"sync"
	"time"

	"inkwell/internal/event"
)

// batcher coalesces high-frequency pointer samples into at most one flush
// per interval. The first Add after a drain arms the timer; a forced Flush
// drains synchronously and disarms it. Buffer order is sample order.
type batcher struct {
	interval time.Duration
	flush    func(points []event.Point)

	mu    sync.Mutex
	buf   []event.Point
	timer *time.Timer
}

func newBatcher(interval time.Duration, flush func(points []event.Point)) *batcher {
	return &batcher{interval: interval, flush: flush}
}

func (b *batcher) Add(p event.Point) {
	b.mu.Lock()
	b.buf = append(b.buf, p)
	if b.timer == nil {
		b.timer = time.AfterFunc(b.interval, b.fire)
	}
	b.mu.Unlock()
}

// Flush drains immediately, bypassing the timer. Used on stroke end so the
// tail of the stroke is never left behind.
func (b *batcher) Flush() {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.timer != nil {
		b.timer.Stop()
		b.timer = nil
	}
	b.drainLocked()
}

// Reset discards buffered points without sending them.
func (b *batcher) Reset() {
	b.mu.Lock()
	if b.timer != nil {
		b.timer.Stop()
		b.timer = nil
	}
	b.buf = nil
	b.mu.Unlock()
}

func (b *batcher) fire() {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.timer = nil
	b.drainLocked()
}

// drainLocked hands the buffer to the flush callback while still holding
// mu, so batches leave in the same order they were drained even when a
// timer fire races a forced flush. The callback must not reenter the
// batcher.
func (b *batcher) drainLocked() {
	if len(b.buf) == 0 {
		return
	}
	points := b.buf
	b.buf = nil
	b.flush(points)
}
