// Copyright (c) 2026 Javier Podavini (YindSoft)
// Licensed under the MIT License. See LICENSE file in the project root.

package webbridge

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseMessageURL(t *testing.T) {
	const tag = DefaultMessageTag
	tests := []struct {
		name    string
		url     string
		tagged  bool
		wantErr bool
		want    Message
	}{
		{
			name:   "command with encoded args",
			url:    "https://app.local/" + tag + "cmd/%41/%42",
			tagged: true,
			want:   Message{Command: "cmd", Args: []string{"A", "B"}, Origin: "https://app.local/"},
		},
		{
			name:   "command only",
			url:    "https://app.local/" + tag + "greet",
			tagged: true,
			want:   Message{Command: "greet", Args: []string{}, Origin: "https://app.local/"},
		},
		{
			name:   "empty args are kept",
			url:    "https://app.local/" + tag + "set//x",
			tagged: true,
			want:   Message{Command: "set", Args: []string{"", "x"}, Origin: "https://app.local/"},
		},
		{
			name: "untagged request",
			url:  "https://app.local/index.html",
		},
		{
			name:    "empty payload",
			url:     "https://app.local/" + tag,
			tagged:  true,
			wantErr: true,
		},
		{
			name:    "missing command",
			url:     "https://app.local/" + tag + "/a",
			tagged:  true,
			wantErr: true,
		},
		{
			name:    "bad escape",
			url:     "https://app.local/" + tag + "cmd/%zz",
			tagged:  true,
			wantErr: true,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			msg, tagged, err := ParseMessageURL(tt.url, tag)
			assert.Equal(t, tt.tagged, tagged)
			if tt.wantErr {
				require.ErrorIs(t, err, ErrInvalidMessage)
				return
			}
			require.NoError(t, err)
			if tt.tagged {
				assert.Equal(t, tt.want, msg)
			}
		})
	}
}

func TestParseMessageURLEmptyTagNeverMatches(t *testing.T) {
	_, tagged, err := ParseMessageURL("https://app.local/anything", "")
	assert.False(t, tagged)
	assert.NoError(t, err)
}

func TestEncodeMessageURLRoundTrip(t *testing.T) {
	raw := EncodeMessageURL("https://app.local/", DefaultMessageTag, "save", "a/b c", `{"k":1}`)
	assert.NotContains(t, strings.TrimPrefix(raw, "https://app.local/"+DefaultMessageTag), "a/b")

	msg, tagged, err := ParseMessageURL(raw, DefaultMessageTag)
	require.NoError(t, err)
	require.True(t, tagged)
	assert.Equal(t, "save", msg.Command)
	assert.Equal(t, []string{"a/b c", `{"k":1}`}, msg.Args)
}

func TestBridgeScriptEmbedsTag(t *testing.T) {
	script := BridgeScript(`my"tag/`)
	assert.Contains(t, script, `var tag="my\"tag/";`)
	assert.Contains(t, script, "w.webbridge.send=")
	assert.Contains(t, script, "w.webbridge.receive=")
}

func TestReceiveScriptEscapesPayload(t *testing.T) {
	script, err := receiveScript(map[string]string{"text": "line\nbreak \"quoted\" \u2028"})
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(script, "if(window.webbridge&&"))
	assert.True(t, strings.HasSuffix(script, `"));`))
	assert.NotContains(t, script, "\n")
	assert.NotContains(t, script, "\u2028")
	assert.Contains(t, script, `\\\"quoted\\\"`)

	_, err = receiveScript(make(chan int))
	assert.Error(t, err)
}

func TestDecodeJSONArg(t *testing.T) {
	v, err := DecodeJSONArg(`{"a":1}`)
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"a": float64(1)}, v)

	v, err = DecodeJSONArg(" [1,2] ")
	require.NoError(t, err)
	assert.Equal(t, []any{float64(1), float64(2)}, v)

	v, err = DecodeJSONArg("plain")
	require.NoError(t, err)
	assert.Equal(t, "plain", v)

	v, err = DecodeJSONArg("")
	require.NoError(t, err)
	assert.Nil(t, v)

	_, err = DecodeJSONArg("{broken}")
	assert.Error(t, err)
}
