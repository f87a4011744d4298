// Copyright (c) 2026 Javier Podavini (YindSoft)
// Licensed under the MIT License. See LICENSE file in the project root.

package webbridge

import "sync"

// NavigationRequest carries the parameters of a "should this navigation
// proceed" question.
type NavigationRequest struct {
	URL         string
	IsRedirect  bool
	IsMainFrame bool
}

// PopupRequest carries the parameters of a window.open style request.
type PopupRequest struct {
	URL       string
	FrameName string
}

// DialogType identifies a JavaScript dialog.
type DialogType int

const (
	DialogAlert DialogType = iota
	DialogConfirm
	DialogPrompt
	DialogUnload
)

func (t DialogType) String() string {
	switch t {
	case DialogAlert:
		return "alert"
	case DialogConfirm:
		return "confirm"
	case DialogPrompt:
		return "prompt"
	case DialogUnload:
		return "unload"
	default:
		return "unknown"
	}
}

// DialogResponse is the host's decision for a dialog.
type DialogResponse int

const (
	// DialogUnhandled lets the engine show its default dialog.
	DialogUnhandled DialogResponse = iota
	// DialogHandled means the host shows the dialog and will call Continue itself.
	DialogHandled
	// DialogContinue accepts immediately, with the default prompt for prompts.
	DialogContinue
	// DialogIgnore cancels immediately.
	DialogIgnore
)

// DialogContinuation resumes the engine after a dialog. The engine side
// implements it; the bridge guarantees it is invoked at most once.
type DialogContinuation interface {
	Continue(accept bool, promptText string)
}

// DialogContinuationFunc adapts a function to DialogContinuation.
type DialogContinuationFunc func(accept bool, promptText string)

// Continue calls f.
func (f DialogContinuationFunc) Continue(accept bool, promptText string) { f(accept, promptText) }

// DialogRequest is a JavaScript dialog awaiting a host decision.
type DialogRequest struct {
	Type          DialogType
	URL           string
	Message       string
	DefaultPrompt string

	once sync.Once
	cont DialogContinuation
}

// NewDialogRequest wraps the engine continuation.
func NewDialogRequest(typ DialogType, url, message, defaultPrompt string, cont DialogContinuation) *DialogRequest {
	return &DialogRequest{
		Type:          typ,
		URL:           url,
		Message:       message,
		DefaultPrompt: defaultPrompt,
		cont:          cont,
	}
}

// Continue resumes the engine. Only the first call has an effect; it reports
// whether this call was the one that resumed it.
func (d *DialogRequest) Continue(accept bool, promptText string) bool {
	resumed := false
	d.once.Do(func() {
		resumed = true
		if d.cont != nil {
			d.cont.Continue(accept, promptText)
		}
	})
	return resumed
}

// resolve applies a host response, returning true when the dialog counts as
// handled by the host.
func (d *DialogRequest) resolve(resp DialogResponse) bool {
	switch resp {
	case DialogHandled:
		return true
	case DialogContinue:
		text := ""
		if d.Type == DialogPrompt {
			text = d.DefaultPrompt
		}
		d.Continue(true, text)
		return true
	case DialogIgnore:
		d.Continue(false, "")
		return true
	default:
		return false
	}
}

// LoadResponse is the answer to an intercepted request: Override false means
// the engine performs the real load.
type LoadResponse struct {
	Body     []byte
	Override bool
}

// TerminationStatus is why the renderer process went away.
type TerminationStatus int

const (
	TerminationAbnormal TerminationStatus = iota
	TerminationKilled
	TerminationCrashed
	TerminationOutOfMemory
)

func (s TerminationStatus) String() string {
	switch s {
	case TerminationAbnormal:
		return "abnormal"
	case TerminationKilled:
		return "killed"
	case TerminationCrashed:
		return "crashed"
	case TerminationOutOfMemory:
		return "out-of-memory"
	default:
		return "unknown"
	}
}

// ConsoleLevel is the severity of a page console message.
type ConsoleLevel int

const (
	ConsoleDebug ConsoleLevel = iota
	ConsoleInfo
	ConsoleWarning
	ConsoleError
)
