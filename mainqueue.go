// Copyright (c) 2026 Javier Podavini (YindSoft)
// Licensed under the MIT License. See LICENSE file in the project root.

package webbridge

import (
	"sync"
	"sync/atomic"

	"github.com/rs/zerolog"
)

// mainTask is a unit of work for the host main thread. drop is called
// instead of run when the queue closes with the task still pending.
type mainTask interface {
	run()
	drop()
}

type funcTask func()

func (f funcTask) run()  { f() }
func (f funcTask) drop() {}

// MainQueue collects work posted from engine threads for the host main
// thread. The host calls Drain once per tick from its update loop.
type MainQueue struct {
	mu     sync.Mutex
	tasks  []mainTask
	closed bool
	log    zerolog.Logger

	// held while the main thread is parked or a parked call runs inline
	inline sync.Mutex
	parked atomic.Bool
}

// NewMainQueue returns an open queue.
func NewMainQueue(logger zerolog.Logger) *MainQueue {
	return &MainQueue{log: logger.With().Str("component", "main-queue").Logger()}
}

// Post schedules fn for the next Drain. It reports false once closed.
func (q *MainQueue) Post(fn func()) bool {
	if fn == nil {
		return false
	}
	return q.post(funcTask(fn))
}

func (q *MainQueue) post(t mainTask) bool {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.closed {
		return false
	}
	q.tasks = append(q.tasks, t)
	return true
}

// Drain runs the tasks pending at the time of the call, in posting order.
// Tasks posted while draining run on the next Drain. It returns the number
// of tasks executed.
func (q *MainQueue) Drain() int {
	q.mu.Lock()
	batch := q.tasks
	q.tasks = nil
	q.mu.Unlock()

	for _, t := range batch {
		q.run(t)
	}
	return len(batch)
}

// Park runs fn on the main thread with the main thread marked as parked.
// Use it around calls that block inside native code, such as a message
// pump that fires engine callbacks. While fn runs, synchronous bridge calls
// execute inline, one at a time, instead of waiting for a Drain that cannot
// happen before fn returns. Calls must not nest Park.
func (q *MainQueue) Park(fn func()) {
	q.inline.Lock()
	q.parked.Store(true)
	q.inline.Unlock()
	defer func() {
		q.inline.Lock()
		q.parked.Store(false)
		q.inline.Unlock()
	}()
	fn()
}

// Parked reports whether the main thread is inside Park.
func (q *MainQueue) Parked() bool { return q.parked.Load() }

// runParked runs t inline if the main thread is parked. It reports false
// when the caller has to queue t instead.
func (q *MainQueue) runParked(t mainTask) bool {
	if !q.parked.Load() {
		return false
	}
	q.inline.Lock()
	defer q.inline.Unlock()
	if !q.parked.Load() {
		return false
	}
	q.run(t)
	return true
}

// Len returns the number of pending tasks.
func (q *MainQueue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.tasks)
}

// Close rejects further posts and drops pending tasks, releasing any caller
// waiting on them.
func (q *MainQueue) Close() {
	q.mu.Lock()
	if q.closed {
		q.mu.Unlock()
		return
	}
	q.closed = true
	batch := q.tasks
	q.tasks = nil
	q.mu.Unlock()

	for _, t := range batch {
		t.drop()
	}
}

func (q *MainQueue) run(t mainTask) {
	defer func() {
		if r := recover(); r != nil {
			q.log.Error().Interface("panic", r).Msg("main-thread task panicked")
		}
	}()
	t.run()
}
