// Copyright (c) 2026 Javier Podavini (YindSoft)
// Licensed under the MIT License. See LICENSE file in the project root.

package webbridge

import (
	"runtime"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/sync/errgroup"
)

type registryTarget struct {
	name      string
	destroyed atomic.Bool
}

func (t *registryTarget) Destroyed() bool { return t.destroyed.Load() }

func TestNewHandleIsUniqueAndNonZero(t *testing.T) {
	seen := make(map[Handle]bool)
	for i := 0; i < 100; i++ {
		h := NewHandle()
		require.NotZero(t, h)
		require.False(t, seen[h], "handle %d issued twice", h)
		seen[h] = true
	}
}

func TestHandleRegistryLookup(t *testing.T) {
	r := NewHandleRegistry[registryTarget]()
	target := &registryTarget{name: "a"}
	h := NewHandle()
	r.Register(h, target)

	got, ok := r.Lookup(h)
	require.True(t, ok)
	assert.Same(t, target, got)

	_, ok = r.Lookup(NewHandle())
	assert.False(t, ok)

	r.Unregister(h)
	_, ok = r.Lookup(h)
	assert.False(t, ok)
	assert.Equal(t, 0, r.Len())

	runtime.KeepAlive(target)
}

func TestHandleRegistryDestroyedTargetIsNotFound(t *testing.T) {
	r := NewHandleRegistry[registryTarget]()
	target := &registryTarget{}
	h := NewHandle()
	r.Register(h, target)

	target.destroyed.Store(true)
	_, ok := r.Lookup(h)
	assert.False(t, ok)
	assert.Equal(t, 1, r.Len(), "entry stays until unregistered")

	runtime.KeepAlive(target)
}

func TestHandleRegistryCollectedTargetIsNotFound(t *testing.T) {
	r := NewHandleRegistry[registryTarget]()
	h := NewHandle()
	func() {
		r.Register(h, &registryTarget{name: "short-lived"})
	}()

	require.Eventually(t, func() bool {
		runtime.GC()
		_, ok := r.Lookup(h)
		return !ok
	}, timeoutShort, tickShort)
	assert.Zero(t, r.Len(), "lookup removes the collected entry")
}

func TestHandleRegistryPrunesCollectedEntries(t *testing.T) {
	r := NewHandleRegistry[registryTarget]()
	kept := &registryTarget{name: "kept"}
	r.Register(NewHandle(), kept)
	func() {
		for range 8 {
			r.Register(NewHandle(), &registryTarget{name: "leaked"})
		}
	}()

	// Never looked up and never unregistered.
	require.Eventually(t, func() bool {
		runtime.GC()
		return r.Len() == 1
	}, timeoutShort, tickShort)

	r.Register(NewHandle(), kept)
	assert.Equal(t, 2, r.Len())
	runtime.KeepAlive(kept)
}

func TestHandleRegistryRegisterReplacesStaleEntry(t *testing.T) {
	r := NewHandleRegistry[registryTarget]()
	h := NewHandle()
	first := &registryTarget{name: "first"}
	second := &registryTarget{name: "second"}

	r.Register(h, first)
	r.Register(h, second)
	r.Register(h, nil)

	got, ok := r.Lookup(h)
	require.True(t, ok)
	assert.Equal(t, "second", got.name)
	assert.Equal(t, 1, r.Len())

	runtime.KeepAlive(first)
	runtime.KeepAlive(second)
}

func TestHandleRegistryConcurrentAccess(t *testing.T) {
	r := NewHandleRegistry[registryTarget]()
	targets := make([]*registryTarget, 64)
	handles := make([]Handle, len(targets))
	for i := range targets {
		targets[i] = &registryTarget{}
		handles[i] = NewHandle()
	}

	var g errgroup.Group
	for i := range targets {
		g.Go(func() error {
			r.Register(handles[i], targets[i])
			for j := 0; j < 100; j++ {
				r.Lookup(handles[(i+j)%len(handles)])
			}
			if i%2 == 0 {
				r.Unregister(handles[i])
			}
			return nil
		})
	}
	require.NoError(t, g.Wait())

	assert.Equal(t, len(targets)/2, r.Len())
	for i, h := range handles {
		_, ok := r.Lookup(h)
		assert.Equal(t, i%2 != 0, ok)
	}
	runtime.KeepAlive(targets)
}
