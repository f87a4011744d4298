// Copyright (c) 2026 Javier Podavini (YindSoft)
// Licensed under the MIT License. See LICENSE file in the project root.

package webbridge

import "sync"

// FrameQueueStats counts queue traffic since creation.
type FrameQueueStats struct {
	Enqueued uint64
	Consumed uint64
	Dropped  uint64 // replaced before being consumed
	Flushed  uint64 // discarded by RequestFlush
}

// FrameQueue hands the most recent frames from the render-thread producer to
// the consumer. When full, Enqueue replaces the oldest pending frame; frames
// are never reordered. Dropped frames go back through the release hook.
type FrameQueue struct {
	mu      sync.Mutex
	depth   int
	pending []*FrameSample
	seq     uint64
	stats   FrameQueueStats
	release func(*FrameSample)
}

// NewFrameQueue returns a queue holding at most depth pending frames.
// release may be nil.
func NewFrameQueue(depth int, release func(*FrameSample)) *FrameQueue {
	if depth < 1 {
		depth = 1
	}
	return &FrameQueue{
		depth:   depth,
		pending: make([]*FrameSample, 0, depth),
		release: release,
	}
}

// Enqueue appends s, dropping the oldest pending frame when the queue is full.
func (q *FrameQueue) Enqueue(s *FrameSample) {
	if s == nil {
		return
	}
	var dropped *FrameSample

	q.mu.Lock()
	if len(q.pending) == q.depth {
		dropped = q.pending[0]
		copy(q.pending, q.pending[1:])
		q.pending = q.pending[:len(q.pending)-1]
		q.stats.Dropped++
	}
	q.seq++
	s.Seq = q.seq
	q.pending = append(q.pending, s)
	q.stats.Enqueued++
	q.mu.Unlock()

	q.recycle(dropped)
}

// Peek returns the newest pending frame without consuming it.
func (q *FrameQueue) Peek() (*FrameSample, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()
	if len(q.pending) == 0 {
		return nil, false
	}
	return q.pending[len(q.pending)-1], true
}

// Dequeue removes and returns the oldest pending frame. The caller owns the
// sample and must hand it back to the pool.
func (q *FrameQueue) Dequeue() (*FrameSample, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()
	if len(q.pending) == 0 {
		return nil, false
	}
	s := q.pending[0]
	copy(q.pending, q.pending[1:])
	q.pending[len(q.pending)-1] = nil
	q.pending = q.pending[:len(q.pending)-1]
	q.stats.Consumed++
	return s, true
}

// RequestFlush discards every pending frame.
func (q *FrameQueue) RequestFlush() {
	q.mu.Lock()
	flushed := q.pending
	q.pending = make([]*FrameSample, 0, q.depth)
	q.stats.Flushed += uint64(len(flushed))
	q.mu.Unlock()

	for _, s := range flushed {
		q.recycle(s)
	}
}

// Len returns the number of pending frames.
func (q *FrameQueue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.pending)
}

// Stats returns a snapshot of the counters.
func (q *FrameQueue) Stats() FrameQueueStats {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.stats
}

func (q *FrameQueue) recycle(s *FrameSample) {
	if s != nil && q.release != nil {
		q.release(s)
	}
}
