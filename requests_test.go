// Copyright (c) 2026 Javier Podavini (YindSoft)
// Licensed under the MIT License. See LICENSE file in the project root.

package webbridge

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

type continuation struct {
	calls  int
	accept bool
	text   string
}

func (c *continuation) Continue(accept bool, text string) {
	c.calls++
	c.accept, c.text = accept, text
}

func TestDialogRequestContinuesOnce(t *testing.T) {
	c := &continuation{}
	d := NewDialogRequest(DialogConfirm, "https://app.local/", "sure?", "", c)

	assert.True(t, d.Continue(true, ""))
	assert.False(t, d.Continue(false, "ignored"))
	assert.Equal(t, 1, c.calls)
	assert.True(t, c.accept)
}

func TestDialogRequestResolve(t *testing.T) {
	tests := []struct {
		name    string
		typ     DialogType
		resp    DialogResponse
		handled bool
		calls   int
		accept  bool
		text    string
	}{
		{"unhandled", DialogAlert, DialogUnhandled, false, 0, false, ""},
		{"host shows it", DialogAlert, DialogHandled, true, 0, false, ""},
		{"continue alert", DialogAlert, DialogContinue, true, 1, true, ""},
		{"continue prompt uses default", DialogPrompt, DialogContinue, true, 1, true, "guest"},
		{"ignore", DialogConfirm, DialogIgnore, true, 1, false, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := &continuation{}
			d := NewDialogRequest(tt.typ, "", "", "guest", c)
			assert.Equal(t, tt.handled, d.resolve(tt.resp))
			assert.Equal(t, tt.calls, c.calls)
			assert.Equal(t, tt.accept, c.accept)
			assert.Equal(t, tt.text, c.text)
		})
	}
}

func TestDialogTypeString(t *testing.T) {
	assert.Equal(t, "alert", DialogAlert.String())
	assert.Equal(t, "prompt", DialogPrompt.String())
	assert.Equal(t, "unload", DialogUnload.String())
	assert.Equal(t, "unknown", DialogType(-1).String())
}

func TestTerminationStatusString(t *testing.T) {
	assert.Equal(t, "crashed", TerminationCrashed.String())
	assert.Equal(t, "out-of-memory", TerminationOutOfMemory.String())
	assert.Equal(t, "unknown", TerminationStatus(9).String())
}
