// Copyright (c) 2026 Javier Podavini (YindSoft)
// Licensed under the MIT License. See LICENSE file in the project root.

package webbridge

import (
	"sync"
	"sync/atomic"
	"weak"
)

// Handle is the opaque key native callbacks carry back into the bridge.
// Handles are generated, never derived from an object address, and never 0.
type Handle uint64

var lastHandle atomic.Uint64

// NewHandle returns a process-unique handle.
func NewHandle() Handle {
	return Handle(lastHandle.Add(1))
}

// destroyer is implemented by registry targets that can be torn down while a
// weak entry is still present.
type destroyer interface {
	Destroyed() bool
}

// HandleRegistry maps handles to weakly held objects. All operations take a
// single lock for the duration of one map operation and are safe from any
// goroutine.
type HandleRegistry[T any] struct {
	mu      sync.Mutex
	entries map[Handle]weak.Pointer[T]
}

// NewHandleRegistry returns an empty registry.
func NewHandleRegistry[T any]() *HandleRegistry[T] {
	return &HandleRegistry[T]{entries: make(map[Handle]weak.Pointer[T])}
}

// Register stores a weak reference to v under h, replacing any stale entry.
func (r *HandleRegistry[T]) Register(h Handle, v *T) {
	if v == nil {
		return
	}
	wp := weak.Make(v)
	r.mu.Lock()
	r.pruneLocked()
	r.entries[h] = wp
	r.mu.Unlock()
}

// Lookup resolves h. It reports false for unknown handles, for targets that
// have been collected and for targets that report themselves destroyed.
// Entries of collected targets are removed.
func (r *HandleRegistry[T]) Lookup(h Handle) (*T, bool) {
	r.mu.Lock()
	wp, ok := r.entries[h]
	r.mu.Unlock()
	if !ok {
		return nil, false
	}

	v := wp.Value()
	if v == nil {
		r.mu.Lock()
		if r.entries[h] == wp {
			delete(r.entries, h)
		}
		r.mu.Unlock()
		return nil, false
	}
	if d, ok := any(v).(destroyer); ok && d.Destroyed() {
		return nil, false
	}
	return v, true
}

// Unregister removes h. Unknown handles are ignored.
func (r *HandleRegistry[T]) Unregister(h Handle) {
	r.mu.Lock()
	delete(r.entries, h)
	r.mu.Unlock()
}

// Len returns the number of entries whose target has not been collected.
// Destroyed targets count until they are unregistered.
func (r *HandleRegistry[T]) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.pruneLocked()
	return len(r.entries)
}

// pruneLocked drops entries whose target was collected without Unregister.
func (r *HandleRegistry[T]) pruneLocked() {
	for h, wp := range r.entries {
		if wp.Value() == nil {
			delete(r.entries, h)
		}
	}
}

// widgets is the process-wide table native entry points resolve against.
var widgets = NewHandleRegistry[Widget]()

// LookupWidget resolves a native handle to a live widget.
func LookupWidget(h Handle) (*Widget, bool) {
	return widgets.Lookup(h)
}
