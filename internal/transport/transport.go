// Package transport carries a request body {query, variables} to a host and
// returns the raw response. The host may be in-process, HTTP or a WebSocket.
package transport

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

// Command is the name of the one remote procedure the client calls.
const Command = "graphql"

// ErrClosed is returned by adapters that were closed before or during a call.
var ErrClosed = errors.New("transport closed")

// Request is the structured body of an invocation.
type Request struct {
	Query     string         `json:"query"`
	Variables map[string]any `json:"variables"`
}

// Transport invokes a named command and returns the raw response document
// ({"data": ...}). It fails on delivery errors and on host-reported errors.
type Transport interface {
	Invoke(ctx context.Context, command string, req Request) ([]byte, error)
}

// Func adapts a function to Transport.
type Func func(ctx context.Context, command string, req Request) ([]byte, error)

func (f Func) Invoke(ctx context.Context, command string, req Request) ([]byte, error) {
	return f(ctx, command, req)
}

// ErrorEntry is one entry of a GraphQL "errors" array.
type ErrorEntry struct {
	Message    string         `json:"message"`
	Extensions map[string]any `json:"extensions,omitempty"`
}

// RemoteError is a failure reported by the host rather than by the wire.
type RemoteError struct {
	Status int // HTTP status when known, 0 otherwise
	Errors []ErrorEntry
}

func (e *RemoteError) Error() string {
	msgs := make([]string, 0, len(e.Errors))
	for _, it := range e.Errors {
		msgs = append(msgs, it.Message)
	}
	if len(msgs) == 0 {
		msgs = append(msgs, "unknown error")
	}
	if e.Status != 0 {
		return fmt.Sprintf("remote error (%d): %s", e.Status, strings.Join(msgs, "; "))
	}
	return "remote error: " + strings.Join(msgs, "; ")
}

// Errorf builds a RemoteError with a single message.
func Errorf(format string, args ...any) *RemoteError {
	return &RemoteError{Errors: []ErrorEntry{{Message: fmt.Sprintf(format, args...)}}}
}
