package audio

import (
	"sync"
	"sync/atomic"
)

// PlayoutQueue is a bounded frame buffer between the model's audio
// deltas and the room playout track. When the consumer falls behind,
// the oldest frames are discarded so playback stays near realtime
// instead of drifting further and further late.
type PlayoutQueue struct {
	mu      sync.Mutex
	frames  chan Frame
	closed  bool
	dropped atomic.Int64
}

func NewPlayoutQueue(depth int) *PlayoutQueue {
	if depth <= 0 {
		depth = 256
	}
	return &PlayoutQueue{
		frames: make(chan Frame, depth),
	}
}

// Push enqueues a frame without blocking. If the queue is full the
// oldest frame is dropped to make room.
func (q *PlayoutQueue) Push(f Frame) {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.closed {
		return
	}

	for {
		select {
		case q.frames <- f:
			return
		default:
		}
		select {
		case <-q.frames:
			q.dropped.Add(1)
		default:
		}
	}
}

// Frames is the consumer side. The channel closes after Close.
func (q *PlayoutQueue) Frames() <-chan Frame {
	return q.frames
}

// Drain discards all buffered frames and reports how many were removed.
func (q *PlayoutQueue) Drain() int {
	q.mu.Lock()
	defer q.mu.Unlock()

	count := 0
	for {
		select {
		case _, ok := <-q.frames:
			if !ok {
				return count
			}
			count++
		default:
			return count
		}
	}
}

func (q *PlayoutQueue) Dropped() int64 {
	return q.dropped.Load()
}

func (q *PlayoutQueue) Close() {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.closed {
		return
	}
	q.closed = true
	close(q.frames)
}
