// Copyright (c) 2026 Javier Podavini (YindSoft)
// Licensed under the MIT License. See LICENSE file in the project root.

package webbridge

import (
	"encoding/json"
	"fmt"
	"net/url"
	"strings"
)

// DefaultMessageTag is the sentinel that marks a request as a page message.
const DefaultMessageTag = "__webbridge_msg__/"

// Message is a decoded page -> host message.
type Message struct {
	Command string
	Args    []string
	Origin  string
}

// ParseMessageURL splits a tagged request URL into a Message. tagged reports
// whether the tag occurs in rawURL at all; when it does not, the request is a
// genuine load. A tagged URL whose payload yields no command returns
// ErrInvalidMessage.
//
// Wire format: <origin><tag><cmd>/<arg1>/<arg2>/... with each token
// percent-encoded independently.
func ParseMessageURL(rawURL, tag string) (msg Message, tagged bool, err error) {
	if tag == "" {
		return Message{}, false, nil
	}
	pos := strings.Index(rawURL, tag)
	if pos < 0 {
		return Message{}, false, nil
	}

	payload := rawURL[pos+len(tag):]
	if payload == "" {
		return Message{}, true, fmt.Errorf("%w: empty payload", ErrInvalidMessage)
	}

	tokens := strings.Split(payload, "/")
	for i, tok := range tokens {
		decoded, derr := url.PathUnescape(tok)
		if derr != nil {
			return Message{}, true, fmt.Errorf("%w: token %d: %v", ErrInvalidMessage, i, derr)
		}
		tokens[i] = decoded
	}
	if tokens[0] == "" {
		return Message{}, true, fmt.Errorf("%w: missing command in %q", ErrInvalidMessage, payload)
	}

	return Message{
		Command: tokens[0],
		Args:    tokens[1:],
		Origin:  rawURL[:pos],
	}, true, nil
}

// EncodeMessageURL is the inverse of ParseMessageURL.
func EncodeMessageURL(origin, tag, command string, args ...string) string {
	var sb strings.Builder
	sb.WriteString(origin)
	sb.WriteString(tag)
	sb.WriteString(url.PathEscape(command))
	for _, a := range args {
		sb.WriteByte('/')
		sb.WriteString(escapeToken(a))
	}
	return sb.String()
}

// escapeToken percent-encodes a token so it contains no '/'.
func escapeToken(s string) string {
	return strings.ReplaceAll(url.PathEscape(s), "/", "%2F")
}

// BridgeScript returns the page-side helper injected after each load. It
// defines window.webbridge.send(cmd, ...args), which encodes the message into
// a request the bridge intercepts, and an overridable receive hook for Send.
func BridgeScript(tag string) string {
	quotedTag, _ := json.Marshal(tag)
	return "(function(){var w=window;w.webbridge=w.webbridge||{};" +
		"if(w.webbridge.send)return;var tag=" + string(quotedTag) + ";" +
		"w.webbridge.send=function(){var p=[];for(var i=0;i<arguments.length;i++){" +
		"var a=arguments[i];if(typeof a!=='string')a=JSON.stringify(a);p.push(encodeURIComponent(a));}" +
		"var r=new XMLHttpRequest();r.open('GET',location.origin+'/'+tag+p.join('/'),true);r.send();};" +
		"w.webbridge.receive=w.webbridge.receive||function(){};})();"
}

// DecodeJSONArg parses arg as JSON if it looks like JSON (starts with '{' or
// '['). Otherwise it returns the raw string.
func DecodeJSONArg(arg string) (any, error) {
	arg = strings.TrimSpace(arg)
	if arg == "" {
		return nil, nil
	}
	if (strings.HasPrefix(arg, "{") && strings.HasSuffix(arg, "}")) ||
		(strings.HasPrefix(arg, "[") && strings.HasSuffix(arg, "]")) {
		var v any
		if err := json.Unmarshal([]byte(arg), &v); err != nil {
			return nil, err
		}
		return v, nil
	}
	return arg, nil
}

// receiveScript builds the script delivering data to window.webbridge.receive.
func receiveScript(data any) (string, error) {
	jsonBytes, err := json.Marshal(data)
	if err != nil {
		return "", fmt.Errorf("Send: %w", err)
	}
	var sb strings.Builder
	sb.WriteString("if(window.webbridge&&typeof window.webbridge.receive==='function')window.webbridge.receive(JSON.parse(\"")
	for _, c := range string(jsonBytes) {
		switch c {
		case '\\':
			sb.WriteString(`\\`)
		case '"':
			sb.WriteString(`\"`)
		case '\n':
			sb.WriteString(`\n`)
		case '\r':
			sb.WriteString(`\r`)
		case '\u2028':
			sb.WriteString(`\u2028`)
		case '\u2029':
			sb.WriteString(`\u2029`)
		default:
			sb.WriteRune(c)
		}
	}
	sb.WriteString("\"));")
	return sb.String(), nil
}
