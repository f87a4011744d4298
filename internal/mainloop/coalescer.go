// Derived from the main-loop coalescer in github.com/bnema/dumber
// (internal/ui/mainloop). Changes licensed under the MIT License. See
// LICENSE file in the project root.

// Package mainloop holds helpers for work scheduled onto the host main thread.
package mainloop

import "sync"

// Coalescer merges bursts of same-key main-thread tasks so that only the
// latest callback for a key runs once the host drains its queue.
type Coalescer struct {
	mu        sync.Mutex
	pending   map[string]bool
	callbacks map[string]func()
	post      func(func()) bool
	destroyed bool
}

// NewCoalescer wraps post, which schedules a function on the main thread and
// reports whether it was accepted.
func NewCoalescer(post func(func()) bool) *Coalescer {
	if post == nil {
		panic("mainloop.NewCoalescer: post function cannot be nil")
	}

	return &Coalescer{
		pending:   make(map[string]bool),
		callbacks: make(map[string]func()),
		post:      post,
	}
}

// Post records fn as the latest callback for key and schedules a single
// main-thread run for the key if none is pending.
func (c *Coalescer) Post(key string, fn func()) bool {
	if fn == nil || key == "" {
		return false
	}

	c.mu.Lock()
	if c.destroyed {
		c.mu.Unlock()
		return false
	}
	c.callbacks[key] = fn
	if c.pending[key] {
		c.mu.Unlock()
		return true
	}
	c.pending[key] = true
	post := c.post
	c.mu.Unlock()

	ok := post(func() {
		c.mu.Lock()
		if c.destroyed {
			c.mu.Unlock()
			return
		}
		fn := c.callbacks[key]
		delete(c.pending, key)
		delete(c.callbacks, key)
		c.mu.Unlock()

		if fn != nil {
			fn()
		}
	})
	if !ok {
		c.mu.Lock()
		delete(c.pending, key)
		delete(c.callbacks, key)
		c.mu.Unlock()
	}
	return ok
}

// Destroy drops all pending callbacks. Later Posts are ignored.
func (c *Coalescer) Destroy() {
	c.mu.Lock()
	c.destroyed = true
	c.pending = map[string]bool{}
	c.callbacks = map[string]func(){}
	c.mu.Unlock()
}
