package transport

import json "github.com/goccy/go-json"

// Frame is the WebSocket envelope. Requests carry Command and Body; replies
// carry either Response or Errors. ID correlates a reply with its request.
type Frame struct {
	ID       string          `json:"id"`
	Command  string          `json:"command,omitempty"`
	Body     *Request        `json:"body,omitempty"`
	Response json.RawMessage `json:"response,omitempty"`
	Errors   []ErrorEntry    `json:"errors,omitempty"`
}
