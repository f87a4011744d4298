// Copyright (c) 2026 Javier Podavini (YindSoft)
// Licensed under the MIT License. See LICENSE file in the project root.

package webbridge

import (
	"sync"

	"github.com/rs/zerolog"
)

type renderTask struct {
	name string
	fn   func()
}

// RenderQueue is the render-thread task queue: a single goroutine executing
// tasks in submission order. Enqueue never blocks the caller.
type RenderQueue struct {
	mu     sync.Mutex
	tasks  []renderTask
	closed bool

	wake chan struct{}
	done chan struct{}
	log  zerolog.Logger
}

// NewRenderQueue starts the render goroutine.
func NewRenderQueue(logger zerolog.Logger) *RenderQueue {
	q := &RenderQueue{
		wake: make(chan struct{}, 1),
		done: make(chan struct{}),
		log:  logger.With().Str("component", "render-queue").Logger(),
	}
	go q.loop()
	return q
}

// Enqueue schedules fn. It reports false once the queue is closed.
func (q *RenderQueue) Enqueue(name string, fn func()) bool {
	if fn == nil {
		return false
	}
	q.mu.Lock()
	if q.closed {
		q.mu.Unlock()
		return false
	}
	q.tasks = append(q.tasks, renderTask{name: name, fn: fn})
	q.mu.Unlock()

	select {
	case q.wake <- struct{}{}:
	default:
	}
	return true
}

// Barrier blocks until every task enqueued before it has run. The frame
// pipeline never calls it; it exists for teardown and tests.
func (q *RenderQueue) Barrier() {
	reached := make(chan struct{})
	if !q.Enqueue("barrier", func() { close(reached) }) {
		<-q.done
		return
	}
	<-reached
}

// Close runs the remaining tasks and stops the goroutine.
func (q *RenderQueue) Close() {
	q.mu.Lock()
	if q.closed {
		q.mu.Unlock()
		<-q.done
		return
	}
	q.closed = true
	q.mu.Unlock()

	select {
	case q.wake <- struct{}{}:
	default:
	}
	<-q.done
}

func (q *RenderQueue) loop() {
	defer close(q.done)
	for range q.wake {
		for {
			q.mu.Lock()
			batch := q.tasks
			q.tasks = nil
			closed := q.closed
			q.mu.Unlock()

			if len(batch) == 0 {
				if closed {
					return
				}
				break
			}
			for _, t := range batch {
				q.run(t)
			}
		}
	}
}

func (q *RenderQueue) run(t renderTask) {
	defer func() {
		if r := recover(); r != nil {
			q.log.Error().Str("task", t.name).Interface("panic", r).Msg("render task panicked")
		}
	}()
	t.fn()
}
