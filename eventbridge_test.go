// Copyright (c) 2026 Javier Podavini (YindSoft)
// Licensed under the MIT License. See LICENSE file in the project root.

package webbridge

import (
	"runtime"
	"sync/atomic"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// callFromEngine runs CallSync on its own goroutine and drains main until it
// returns.
func callFromEngine(t *testing.T, main *MainQueue, b *EventBridge, fallback string, work func(*BrowserWindow) string) string {
	t.Helper()
	done := make(chan string, 1)
	go func() { done <- CallSync(b, fallback, work) }()

	deadline := time.After(timeoutShort)
	for {
		select {
		case v := <-done:
			return v
		case <-deadline:
			t.Fatal("CallSync did not return")
			return ""
		case <-time.After(tickShort):
			main.Drain()
		}
	}
}

func TestCallSyncRunsOnMainThread(t *testing.T) {
	main := NewMainQueue(zerolog.Nop())
	win := NewBrowserWindow(10, 10)
	b := NewEventBridge(main, win, 0, zerolog.Nop())

	got := callFromEngine(t, main, b, "fallback", func(w *BrowserWindow) string {
		assert.Same(t, win, w)
		return "answer"
	})
	assert.Equal(t, "answer", got)
	runtime.KeepAlive(win)
}

func TestCallSyncFallbackWhenWindowGone(t *testing.T) {
	tests := []struct {
		name   string
		bridge func(main *MainQueue, win *BrowserWindow) *EventBridge
	}{
		{
			name: "released window",
			bridge: func(main *MainQueue, win *BrowserWindow) *EventBridge {
				win.Release()
				return NewEventBridge(main, win, 0, zerolog.Nop())
			},
		},
		{
			name: "nil window",
			bridge: func(main *MainQueue, _ *BrowserWindow) *EventBridge {
				return NewEventBridge(main, nil, 0, zerolog.Nop())
			},
		},
		{
			name: "detached bridge",
			bridge: func(main *MainQueue, win *BrowserWindow) *EventBridge {
				b := NewEventBridge(main, win, 0, zerolog.Nop())
				b.Detach()
				return b
			},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			main := NewMainQueue(zerolog.Nop())
			win := NewBrowserWindow(10, 10)
			b := tt.bridge(main, win)

			called := false
			got := callFromEngine(t, main, b, "fallback", func(*BrowserWindow) string {
				called = true
				return "answer"
			})
			assert.Equal(t, "fallback", got)
			assert.False(t, called)
			runtime.KeepAlive(win)
		})
	}
}

func TestCallSyncClosedQueueReturnsFallback(t *testing.T) {
	main := NewMainQueue(zerolog.Nop())
	win := NewBrowserWindow(10, 10)
	b := NewEventBridge(main, win, 0, zerolog.Nop())
	main.Close()

	assert.Equal(t, "fallback", CallSync(b, "fallback", func(*BrowserWindow) string { return "answer" }))
	assert.Equal(t, "fallback", CallSync[string](nil, "fallback", nil))
	runtime.KeepAlive(win)
}

func TestCallSyncCloseReleasesWaitingCaller(t *testing.T) {
	main := NewMainQueue(zerolog.Nop())
	win := NewBrowserWindow(10, 10)
	b := NewEventBridge(main, win, 0, zerolog.Nop())

	done := make(chan string, 1)
	go func() {
		done <- CallSync(b, "fallback", func(*BrowserWindow) string { return "answer" })
	}()
	require.Eventually(t, func() bool { return main.Len() == 1 }, timeoutShort, tickShort)

	main.Close()
	select {
	case v := <-done:
		assert.Equal(t, "fallback", v)
	case <-time.After(timeoutShort):
		t.Fatal("caller still blocked after Close")
	}
	runtime.KeepAlive(win)
}

func TestCallSyncTimeoutAbandonsCall(t *testing.T) {
	main := NewMainQueue(zerolog.Nop())
	win := NewBrowserWindow(10, 10)
	b := NewEventBridge(main, win, 20*time.Millisecond, zerolog.Nop())

	var called atomic.Bool
	got := CallSync(b, "fallback", func(*BrowserWindow) string {
		called.Store(true)
		return "answer"
	})
	assert.Equal(t, "fallback", got)

	// The abandoned call is still queued but must not run.
	assert.Equal(t, 1, main.Drain())
	assert.False(t, called.Load())
	runtime.KeepAlive(win)
}

func TestCallSyncPanicYieldsFallback(t *testing.T) {
	main := NewMainQueue(zerolog.Nop())
	win := NewBrowserWindow(10, 10)
	b := NewEventBridge(main, win, 0, zerolog.Nop())

	got := callFromEngine(t, main, b, "fallback", func(*BrowserWindow) string {
		panic("host bug")
	})
	assert.Equal(t, "fallback", got)

	got = callFromEngine(t, main, b, "fallback", func(*BrowserWindow) string { return "answer" })
	assert.Equal(t, "answer", got)
	runtime.KeepAlive(win)
}

func TestPendingCallCompletesOnce(t *testing.T) {
	runs := 0
	c := newPendingCall("fallback", func() string {
		runs++
		return "answer"
	}, nil)

	c.run()
	c.run()
	assert.False(t, c.abandon())
	c.drop()

	<-c.Done()
	assert.Equal(t, 1, runs)
	assert.Equal(t, "answer", c.Result())

	d := newPendingCall("fallback", func() string { return "answer" }, nil)
	require.True(t, d.abandon())
	d.run()
	<-d.Done()
	assert.Equal(t, "fallback", d.Result())
}

func TestCallAsync(t *testing.T) {
	main := NewMainQueue(zerolog.Nop())
	win := NewBrowserWindow(10, 10)
	b := NewEventBridge(main, win, 0, zerolog.Nop())

	runs := 0
	require.True(t, CallAsync(b, func(*BrowserWindow) { runs++ }))
	main.Drain()
	assert.Equal(t, 1, runs)

	require.True(t, CallAsync(b, func(*BrowserWindow) { runs++ }))
	win.Release()
	main.Drain()
	assert.Equal(t, 1, runs, "work is skipped when the window went away before it ran")

	main.Close()
	assert.False(t, CallAsync(b, func(*BrowserWindow) { runs++ }))
	assert.False(t, CallAsync(nil, func(*BrowserWindow) {}))
	runtime.KeepAlive(win)
}

func TestCallSyncRunsInlineWhileMainIsParked(t *testing.T) {
	main := NewMainQueue(zerolog.Nop())
	win := NewBrowserWindow(10, 10)
	b := NewEventBridge(main, win, 0, zerolog.Nop())

	// A callback fired on the pumping thread itself.
	var same string
	main.Park(func() {
		assert.True(t, main.Parked())
		same = CallSync(b, "fallback", func(*BrowserWindow) string { return "same thread" })
	})
	assert.Equal(t, "same thread", same)
	assert.False(t, main.Parked())
	assert.Zero(t, main.Len(), "nothing was queued")

	// A callback fired from an engine thread while the main thread pumps.
	var other string
	main.Park(func() {
		done := make(chan string, 1)
		go func() { done <- CallSync(b, "fallback", func(*BrowserWindow) string { return "engine thread" }) }()
		select {
		case other = <-done:
		case <-time.After(timeoutShort):
			t.Fatal("CallSync blocked while the main thread was parked")
		}
	})
	assert.Equal(t, "engine thread", other)
	runtime.KeepAlive(win)
}

func TestCallSyncQueuesAgainAfterPark(t *testing.T) {
	main := NewMainQueue(zerolog.Nop())
	win := NewBrowserWindow(10, 10)
	b := NewEventBridge(main, win, 0, zerolog.Nop())
	main.Park(func() {})

	ran := make(chan struct{})
	go func() {
		CallSync(b, "", func(*BrowserWindow) string { close(ran); return "" })
	}()
	require.Eventually(t, func() bool { return main.Len() == 1 }, timeoutShort, tickShort)
	select {
	case <-ran:
		t.Fatal("work ran before Drain")
	default:
	}
	main.Drain()
	<-ran
	runtime.KeepAlive(win)
}
