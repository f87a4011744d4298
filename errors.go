// Copyright (c) 2026 Javier Podavini (YindSoft)
// Licensed under the MIT License. See LICENSE file in the project root.

package webbridge

import "errors"

var (
	// ErrClosed is returned by widget operations after Close.
	ErrClosed = errors.New("webbridge: widget closed")
	// ErrNoEngine is returned when the engine factory yields no browser instance.
	ErrNoEngine = errors.New("webbridge: no engine instance")
	// ErrInvalidMessage marks a tagged request whose payload carries no command.
	ErrInvalidMessage = errors.New("webbridge: invalid message")
	// ErrSampleSize marks a frame buffer smaller than the expected frame size.
	ErrSampleSize = errors.New("webbridge: sample size mismatch")
	// ErrHostUnavailable is reported when the host window is gone during a call.
	ErrHostUnavailable = errors.New("webbridge: host unavailable")
	// ErrQueueClosed is returned when posting to a closed task queue.
	ErrQueueClosed = errors.New("webbridge: queue closed")
)
