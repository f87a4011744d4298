// Copyright (c) 2026 Javier Podavini (YindSoft)
// Licensed under the MIT License. See LICENSE file in the project root.

package webbridge

import (
	"bytes"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
)

func TestNativeEntryPointsIgnoreUnknownHandles(t *testing.T) {
	var logs bytes.Buffer
	SetNativeLogger(zerolog.New(&logs).Level(zerolog.DebugLevel))
	t.Cleanup(func() { SetNativeLogger(zerolog.Nop()) })

	h := NewHandle()
	continued := false
	dialog := NewDialogRequest(DialogConfirm, "https://app.local/", "sure?", "",
		DialogContinuationFunc(func(bool, string) { continued = true }))

	assert.Equal(t, LoadResponse{}, InterceptRequest(h, "https://app.local/"+DefaultMessageTag+"cmd"))
	assert.False(t, OverrideURLLoading(h, NavigationRequest{URL: "https://app.local/"}))
	assert.True(t, BeforePopup(h, PopupRequest{URL: "https://popup.local/"}))
	assert.False(t, JSDialog(h, dialog))
	assert.False(t, continued)

	assert.NotPanics(t, func() {
		PageLoad(h, "https://app.local/", true, 1, 0)
		ReceivedError(h, -2, "https://app.local/")
		ReceivedTitle(h, "title")
		ConsoleMessage(h, ConsoleError, "oops", "app.js", 1)
		AddressChange(h, "https://app.local/next")
		RenderProcessTerminated(h, TerminationKilled)
	})

	assert.Contains(t, logs.String(), "stale handle")
	assert.Contains(t, logs.String(), `"callback":"before-popup"`)
	assert.Contains(t, logs.String(), `"callback":"render-process-terminated"`)
}
