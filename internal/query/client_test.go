package query

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/idilsaglam/tada/internal/model"
	"github.com/idilsaglam/tada/internal/transport"
)

type recorder struct {
	calls []transport.Request
	reply string
	err   error
}

func (r *recorder) Invoke(_ context.Context, command string, req transport.Request) ([]byte, error) {
	if command != transport.Command {
		return nil, errors.New("unexpected command " + command)
	}
	r.calls = append(r.calls, req)
	if r.err != nil {
		return nil, r.err
	}
	return []byte(r.reply), nil
}

func (r *recorder) last(t *testing.T) transport.Request {
	t.Helper()
	if len(r.calls) != 1 {
		t.Fatalf("expected exactly one call; got %d", len(r.calls))
	}
	return r.calls[0]
}

func TestListTodosOmitsUnsetArguments(t *testing.T) {
	rec := &recorder{reply: `{"data":{"listTodos":{
		"edges":[
			{"node":{"id":"b","description":"second","done":true,"createdAt":"2024-01-02T00:00:00Z"},"cursor":"cb"},
			{"node":{"id":"a","description":"first","done":false,"createdAt":"2024-01-01T00:00:00Z"},"cursor":"ca"}],
		"pageInfo":{"hasPreviousPage":false,"hasNextPage":true,"startCursor":"cb","endCursor":"ca"}}}}`}
	c := New(rec)

	conn, err := c.ListTodos(context.Background(), model.FirstN(999))
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	req := rec.last(t)
	if !strings.Contains(req.Query, "listTodos(first: $first") {
		t.Fatalf("unexpected document: %s", req.Query)
	}
	if len(req.Variables) != 1 || req.Variables["first"] != 999 {
		t.Fatalf("expected only first=999; got %v", req.Variables)
	}
	nodes := conn.Nodes()
	if len(nodes) != 2 || nodes[0].ID != "b" || nodes[1].ID != "a" {
		t.Fatalf("expected server order b,a; got %+v", nodes)
	}
	if !conn.PageInfo.HasNextPage || *conn.PageInfo.EndCursor != "ca" {
		t.Fatalf("unexpected page info %+v", conn.PageInfo)
	}
}

func TestMutationsSendDocumentAndVariables(t *testing.T) {
	ctx := context.Background()
	cases := []struct {
		name  string
		reply string
		call  func(c *Client) (any, error)
		field string
		vars  map[string]any
		want  any
	}{
		{"add", `{"data":{"addTodo":"id1"}}`,
			func(c *Client) (any, error) { return c.AddTodo(ctx, "milk") },
			"addTodo(description: $description)", map[string]any{"description": "milk"}, "id1"},
		{"complete", `{"data":{"completeTodo":true}}`,
			func(c *Client) (any, error) { return c.CompleteTodo(ctx, "id1", true) },
			"completeTodo(id: $id, done: $done)", map[string]any{"id": "id1", "done": true}, true},
		{"toggleAll", `{"data":{"toggleAll":false}}`,
			func(c *Client) (any, error) { return c.ToggleAll(ctx, false) },
			"toggleAll(done: $done)", map[string]any{"done": false}, false},
		{"clear", `{"data":{"clearCompleted":true}}`,
			func(c *Client) (any, error) { return c.ClearCompleted(ctx) },
			"clearCompleted", map[string]any{}, true},
		{"edit", `{"data":{"editTodo":"oat milk"}}`,
			func(c *Client) (any, error) { return c.EditTodo(ctx, "id1", "oat milk") },
			"editTodo(id: $id, description: $description)", map[string]any{"id": "id1", "description": "oat milk"}, "oat milk"},
		{"remove", `{"data":{"removeTodo":true}}`,
			func(c *Client) (any, error) { return c.RemoveTodo(ctx, "id1") },
			"removeTodo(id: $id)", map[string]any{"id": "id1"}, true},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rec := &recorder{reply: tc.reply}
			got, err := tc.call(New(rec))
			if err != nil {
				t.Fatalf("call: %v", err)
			}
			if got != tc.want {
				t.Fatalf("expected %v; got %v", tc.want, got)
			}
			req := rec.last(t)
			if !strings.HasPrefix(strings.TrimSpace(req.Query), "mutation") || !strings.Contains(req.Query, tc.field) {
				t.Fatalf("unexpected document: %s", req.Query)
			}
			if len(req.Variables) != len(tc.vars) {
				t.Fatalf("expected variables %v; got %v", tc.vars, req.Variables)
			}
			for k, v := range tc.vars {
				if req.Variables[k] != v {
					t.Fatalf("variable %s: expected %v; got %v", k, v, req.Variables[k])
				}
			}
		})
	}
}

func TestCallErrors(t *testing.T) {
	ctx := context.Background()
	boom := errors.New("connection refused")

	_, err := New(&recorder{err: boom}).RemoveTodo(ctx, "x")
	if !errors.Is(err, boom) {
		t.Fatalf("expected transport error to pass through; got %v", err)
	}

	_, err = New(&recorder{reply: `{"data":null,"errors":[{"message":"nope"}]}`}).RemoveTodo(ctx, "x")
	var re *transport.RemoteError
	if !errors.As(err, &re) || re.Errors[0].Message != "nope" {
		t.Fatalf("expected remote error; got %v", err)
	}

	for _, reply := range []string{`not json`, `{}`, `{"data":null}`, `{"data":{"other":true}}`, `{"data":{"removeTodo":"yes"}}`} {
		_, err = New(&recorder{reply: reply}).RemoveTodo(ctx, "x")
		if !errors.Is(err, ErrMalformedResponse) {
			t.Fatalf("%s: expected ErrMalformedResponse; got %v", reply, err)
		}
	}
}
