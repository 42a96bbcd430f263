package client

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"inkwell/internal/event"
)

type batchCollector struct {
	mu      sync.Mutex
	batches [][]event.Point
}

func (c *batchCollector) collect(points []event.Point) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.batches = append(c.batches, points)
}

func (c *batchCollector) getBatches() [][]event.Point {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.batches
}

func (c *batchCollector) allPoints() []event.Point {
	c.mu.Lock()
	defer c.mu.Unlock()
	var all []event.Point
	for _, b := range c.batches {
		all = append(all, b...)
	}
	return all
}

func TestBatcher_ForcedFlushDrainsInOrder(t *testing.T) {
	col := &batchCollector{}
	b := newBatcher(time.Hour, col.collect) // timer never fires in this test

	points := []event.Point{{X: 1, Y: 1}, {X: 2, Y: 2}, {X: 3, Y: 3}}
	for _, p := range points {
		b.Add(p)
	}
	b.Flush()

	batches := col.getBatches()
	require.Len(t, batches, 1)
	assert.Equal(t, points, batches[0])
}

func TestBatcher_EmptyFlushSendsNothing(t *testing.T) {
	col := &batchCollector{}
	b := newBatcher(time.Hour, col.collect)

	b.Flush()
	b.Add(event.Point{X: 1, Y: 1})
	b.Flush()
	b.Flush() // already drained

	assert.Len(t, col.getBatches(), 1)
}

func TestBatcher_TimerFlushes(t *testing.T) {
	col := &batchCollector{}
	b := newBatcher(5*time.Millisecond, col.collect)

	b.Add(event.Point{X: 1, Y: 1})
	b.Add(event.Point{X: 2, Y: 2})

	require.Eventually(t, func() bool {
		return len(col.getBatches()) == 1
	}, time.Second, time.Millisecond)
	assert.Equal(t, []event.Point{{X: 1, Y: 1}, {X: 2, Y: 2}}, col.getBatches()[0])

	// the next sample re-arms a fresh timer
	b.Add(event.Point{X: 3, Y: 3})
	require.Eventually(t, func() bool {
		return len(col.getBatches()) == 2
	}, time.Second, time.Millisecond)
	assert.Equal(t, []event.Point{{X: 3, Y: 3}}, col.getBatches()[1])
}

// Every sampled point ends up in exactly one batch, in order, regardless of
// how timer flushes interleave with the forced flush on stroke end.
func TestBatcher_NoPointDropped(t *testing.T) {
	col := &batchCollector{}
	b := newBatcher(2*time.Millisecond, col.collect)

	var sent []event.Point
	for i := 0; i < 200; i++ {
		p := event.Point{X: float64(i), Y: float64(i)}
		sent = append(sent, p)
		b.Add(p)
		if i%50 == 0 {
			time.Sleep(3 * time.Millisecond)
		}
	}
	b.Flush()

	assert.Equal(t, sent, col.allPoints())
}

func TestBatcher_ResetDiscards(t *testing.T) {
	col := &batchCollector{}
	b := newBatcher(time.Hour, col.collect)

	b.Add(event.Point{X: 1, Y: 1})
	b.Reset()
	b.Flush()

	assert.Empty(t, col.getBatches())
}
