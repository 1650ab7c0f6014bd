// Package query issues the fixed set of list/mutation operations over a
// transport and unwraps the "data" envelope of each response.
//
// The client does no input validation; callers guard empty descriptions and
// missing ids before invoking it. Calls are never retried.
package query

import (
	"context"
	"errors"
	"fmt"

	json "github.com/goccy/go-json"

	"github.com/idilsaglam/tada/internal/model"
	"github.com/idilsaglam/tada/internal/transport"
)

// ErrMalformedResponse reports a response that is not a usable {"data": ...} document.
var ErrMalformedResponse = errors.New("malformed response")

// Client is the query layer over one transport.
type Client struct {
	t transport.Transport
}

func New(t transport.Transport) *Client {
	return &Client{t: t}
}

type envelope struct {
	Data   json.RawMessage        `json:"data"`
	Errors []transport.ErrorEntry `json:"errors"`
}

// call performs one round-trip and decodes data.<field> into out.
func (c *Client) call(ctx context.Context, field, doc string, vars map[string]any, out any) error {
	if vars == nil {
		vars = map[string]any{}
	}
	raw, err := c.t.Invoke(ctx, transport.Command, transport.Request{Query: doc, Variables: vars})
	if err != nil {
		return fmt.Errorf("%s: %w", field, err)
	}
	var env envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return fmt.Errorf("%s: %w: %v", field, ErrMalformedResponse, err)
	}
	if len(env.Errors) > 0 {
		return fmt.Errorf("%s: %w", field, &transport.RemoteError{Errors: env.Errors})
	}
	if len(env.Data) == 0 || string(env.Data) == "null" {
		return fmt.Errorf("%s: %w: missing data", field, ErrMalformedResponse)
	}
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(env.Data, &fields); err != nil {
		return fmt.Errorf("%s: %w: %v", field, ErrMalformedResponse, err)
	}
	v, ok := fields[field]
	if !ok || string(v) == "null" {
		return fmt.Errorf("%s: %w: missing field", field, ErrMalformedResponse)
	}
	if err := json.Unmarshal(v, out); err != nil {
		return fmt.Errorf("%s: %w: %v", field, ErrMalformedResponse, err)
	}
	return nil
}

// ListTodos fetches one page of the list. Unset paging arguments are omitted.
func (c *Client) ListTodos(ctx context.Context, p model.Page) (model.Connection[model.Todo], error) {
	vars := map[string]any{}
	if p.First != nil {
		vars["first"] = *p.First
	}
	if p.After != nil {
		vars["after"] = *p.After
	}
	if p.Last != nil {
		vars["last"] = *p.Last
	}
	if p.Before != nil {
		vars["before"] = *p.Before
	}
	var conn model.Connection[model.Todo]
	if err := c.call(ctx, "listTodos", listTodosQuery, vars, &conn); err != nil {
		return model.Connection[model.Todo]{}, err
	}
	return conn, nil
}

// AddTodo creates a record and returns its id.
func (c *Client) AddTodo(ctx context.Context, description string) (string, error) {
	var id string
	err := c.call(ctx, "addTodo", addTodoMutation, map[string]any{"description": description}, &id)
	return id, err
}

// CompleteTodo sets the done flag of one record.
func (c *Client) CompleteTodo(ctx context.Context, id string, done bool) (bool, error) {
	var ack bool
	err := c.call(ctx, "completeTodo", completeTodoMutation, map[string]any{"id": id, "done": done}, &ack)
	return ack, err
}

// ToggleAll sets the done flag of every record.
func (c *Client) ToggleAll(ctx context.Context, done bool) (bool, error) {
	var ack bool
	err := c.call(ctx, "toggleAll", toggleAllMutation, map[string]any{"done": done}, &ack)
	return ack, err
}

// ClearCompleted removes every done record.
func (c *Client) ClearCompleted(ctx context.Context) (bool, error) {
	var ack bool
	err := c.call(ctx, "clearCompleted", clearCompletedMutation, nil, &ack)
	return ack, err
}

// EditTodo replaces a description and returns the description the server stored.
func (c *Client) EditTodo(ctx context.Context, id, description string) (string, error) {
	var echo string
	err := c.call(ctx, "editTodo", editTodoMutation, map[string]any{"id": id, "description": description}, &echo)
	return echo, err
}

// RemoveTodo deletes one record.
func (c *Client) RemoveTodo(ctx context.Context, id string) (bool, error) {
	var ack bool
	err := c.call(ctx, "removeTodo", removeTodoMutation, map[string]any{"id": id}, &ack)
	return ack, err
}
