// Copyright (c) 2026 Javier Podavini (YindSoft)
// Licensed under the MIT License. See LICENSE file in the project root.

package webbridge

import (
	"sync/atomic"
	"time"
	"weak"

	"github.com/rs/zerolog"
)

const (
	callPending int32 = iota
	callRunning
	callDone
	callAbandoned
)

// PendingCall is one synchronous request from an engine thread to the host
// main thread. It is run at most once and completes exactly once, either
// with the work's result or with the fallback.
type PendingCall[T any] struct {
	state    atomic.Int32
	work     func() T
	fallback T
	result   T
	done     chan struct{}
	log      *zerolog.Logger
}

func newPendingCall[T any](fallback T, work func() T, log *zerolog.Logger) *PendingCall[T] {
	return &PendingCall[T]{
		work:     work,
		fallback: fallback,
		done:     make(chan struct{}),
		log:      log,
	}
}

// Done is closed once the result is available.
func (c *PendingCall[T]) Done() <-chan struct{} { return c.done }

// Result returns the outcome. Valid only after Done is closed.
func (c *PendingCall[T]) Result() T { return c.result }

func (c *PendingCall[T]) run() {
	if !c.state.CompareAndSwap(callPending, callRunning) {
		return
	}
	defer func() {
		if r := recover(); r != nil {
			c.result = c.fallback
			if c.log != nil {
				c.log.Error().Interface("panic", r).Msg("host handler panicked, using default")
			}
		}
		c.state.Store(callDone)
		close(c.done)
	}()
	c.result = c.work()
}

func (c *PendingCall[T]) drop() {
	c.abandon()
}

// abandon resolves a call that has not started with its fallback. It
// reports false if the main thread already picked the call up.
func (c *PendingCall[T]) abandon() bool {
	if !c.state.CompareAndSwap(callPending, callAbandoned) {
		return false
	}
	c.result = c.fallback
	close(c.done)
	return true
}

// EventBridge marshals questions from engine threads onto the host main
// thread. One bridge exists per widget and targets that widget's window.
type EventBridge struct {
	main     *MainQueue
	window   weak.Pointer[BrowserWindow]
	timeout  time.Duration
	detached atomic.Bool
	log      zerolog.Logger
}

// NewEventBridge returns a bridge delivering to window through main. A zero
// timeout waits for as long as the main thread takes.
func NewEventBridge(main *MainQueue, window *BrowserWindow, timeout time.Duration, logger zerolog.Logger) *EventBridge {
	b := &EventBridge{
		main:    main,
		timeout: timeout,
		log:     logger.With().Str("component", "event-bridge").Logger(),
	}
	if window != nil {
		b.window = weak.Make(window)
	}
	return b
}

// Detach drops the window reference. Work scheduled afterwards sees no host.
func (b *EventBridge) Detach() {
	b.detached.Store(true)
}

// target resolves the window, or nil when it is gone.
func (b *EventBridge) target() *BrowserWindow {
	if b.detached.Load() {
		return nil
	}
	w := b.window.Value()
	if w == nil || w.Released() {
		return nil
	}
	return w
}

// CallSync runs work on the host main thread and blocks the calling engine
// thread until it has produced a result. If the window is gone when the work
// would run, the work is skipped and fallback is returned. The same happens
// when the main queue is closed or the configured timeout expires before the
// main thread picks the call up. While the main thread is inside
// MainQueue.Park the work runs inline on the calling thread.
func CallSync[T any](b *EventBridge, fallback T, work func(w *BrowserWindow) T) T {
	if b == nil || b.main == nil {
		return fallback
	}
	call := newPendingCall(fallback, func() T {
		w := b.target()
		if w == nil {
			b.log.Debug().Err(ErrHostUnavailable).Msg("using default")
			return fallback
		}
		return work(w)
	}, &b.log)

	if b.main.runParked(call) {
		return call.result
	}
	if !b.main.post(call) {
		b.log.Debug().Err(ErrQueueClosed).Msg("main queue closed, using default")
		return fallback
	}

	if b.timeout <= 0 {
		<-call.done
		return call.result
	}

	timer := time.NewTimer(b.timeout)
	defer timer.Stop()
	select {
	case <-call.done:
		return call.result
	case <-timer.C:
		if call.abandon() {
			b.log.Warn().Dur("timeout", b.timeout).Msg("main thread did not answer, using default")
			return fallback
		}
		<-call.done
		return call.result
	}
}

// CallAsync schedules work on the host main thread without waiting. It
// reports false if the main queue no longer accepts work.
func CallAsync(b *EventBridge, work func(w *BrowserWindow)) bool {
	if b == nil || b.main == nil {
		return false
	}
	return b.main.Post(func() {
		w := b.target()
		if w == nil {
			return
		}
		work(w)
	})
}
