// Copyright (c) 2026 Javier Podavini (YindSoft)
// Licensed under the MIT License. See LICENSE file in the project root.

package webbridge

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFrameQueueKeepsOrderAndAssignsSeq(t *testing.T) {
	q := NewFrameQueue(3, nil)
	a, b := &FrameSample{}, &FrameSample{}
	q.Enqueue(a)
	q.Enqueue(b)
	q.Enqueue(nil)

	newest, ok := q.Peek()
	require.True(t, ok)
	assert.Same(t, b, newest)
	assert.Equal(t, 2, q.Len(), "peek does not consume")

	first, ok := q.Dequeue()
	require.True(t, ok)
	assert.Same(t, a, first)
	assert.Less(t, a.Seq, b.Seq)

	second, ok := q.Dequeue()
	require.True(t, ok)
	assert.Same(t, b, second)

	_, ok = q.Dequeue()
	assert.False(t, ok)
	assert.Equal(t, uint64(2), q.Stats().Consumed)
}

func TestFrameQueueDropsOldestWhenFull(t *testing.T) {
	var released []*FrameSample
	q := NewFrameQueue(1, func(s *FrameSample) { released = append(released, s) })

	a, b, c := &FrameSample{}, &FrameSample{}, &FrameSample{}
	q.Enqueue(a)
	q.Enqueue(b)
	q.Enqueue(c)

	assert.Equal(t, []*FrameSample{a, b}, released)
	got, ok := q.Peek()
	require.True(t, ok)
	assert.Same(t, c, got)

	stats := q.Stats()
	assert.Equal(t, uint64(3), stats.Enqueued)
	assert.Equal(t, uint64(2), stats.Dropped)
}

func TestFrameQueueFlushEmptiesQueue(t *testing.T) {
	pool := NewFrameSamplePool(4)
	q := NewFrameQueue(2, pool.Release)
	q.Enqueue(pool.Acquire())
	q.Enqueue(pool.Acquire())

	q.RequestFlush()

	_, ok := q.Peek()
	assert.False(t, ok)
	assert.Equal(t, 0, q.Len())
	assert.Equal(t, 2, pool.Len())
	assert.Equal(t, uint64(2), q.Stats().Flushed)

	q.Enqueue(pool.Acquire())
	assert.Equal(t, 1, q.Len())
}

func TestNewFrameQueueClampsDepth(t *testing.T) {
	q := NewFrameQueue(0, nil)
	q.Enqueue(&FrameSample{})
	q.Enqueue(&FrameSample{})
	assert.Equal(t, 1, q.Len())
}
