// Package backend is a reference host for the todo operations: it resolves
// the listTodos query and the six mutations against a Store and answers
// with GraphQL-shaped {"data": ...} documents.
//
// It is not a general GraphQL engine. The root field of the document picks
// the resolver, variables are decoded per field, and results are returned
// whole regardless of the selection set (only totalCount is computed on
// demand).
package backend

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"regexp"
	"strings"

	json "github.com/goccy/go-json"

	"github.com/idilsaglam/tada/internal/transport"
)

// rootField matches an optional operation header and the first field of the selection set.
var rootField = regexp.MustCompile(`(?s)^\s*(?:(query|mutation)\b[^{]*)?\{\s*([_A-Za-z][_0-9A-Za-z]*)`)

type field struct {
	kind    string // query | mutation
	resolve func(r *Resolver, ctx context.Context, req transport.Request) (any, error)
}

var fields = map[string]field{
	"listTodos":      {kind: "query", resolve: (*Resolver).listTodos},
	"addTodo":        {kind: "mutation", resolve: (*Resolver).addTodo},
	"completeTodo":   {kind: "mutation", resolve: (*Resolver).completeTodo},
	"toggleAll":      {kind: "mutation", resolve: (*Resolver).toggleAll},
	"clearCompleted": {kind: "mutation", resolve: (*Resolver).clearCompleted},
	"editTodo":       {kind: "mutation", resolve: (*Resolver).editTodo},
	"removeTodo":     {kind: "mutation", resolve: (*Resolver).removeTodo},
}

// Resolver executes requests against a store. It implements
// transport.Transport so it can be invoked in-process.
type Resolver struct {
	store Store
	log   *slog.Logger
}

func NewResolver(store Store, log *slog.Logger) *Resolver {
	if log == nil {
		log = slog.Default()
	}
	return &Resolver{store: store, log: log}
}

// Invoke runs one request. Execution failures come back as *transport.RemoteError.
func (r *Resolver) Invoke(ctx context.Context, command string, req transport.Request) ([]byte, error) {
	if command != transport.Command {
		return nil, transport.Errorf("unknown command %q", command)
	}
	m := rootField.FindStringSubmatch(req.Query)
	if m == nil {
		return nil, transport.Errorf("cannot parse operation")
	}
	kind, name := m[1], m[2]
	if kind == "" {
		kind = "query"
	}
	f, ok := fields[name]
	if !ok || f.kind != kind {
		return nil, transport.Errorf("unknown field %q on type %s", name, rootType(kind))
	}

	v, err := f.resolve(r, ctx, req)
	if err != nil {
		r.log.Debug("resolve failed", "field", name, "err", err)
		return nil, toRemote(err)
	}
	out, err := json.Marshal(map[string]any{"data": map[string]any{name: v}})
	if err != nil {
		return nil, transport.Errorf("encode response: %v", err)
	}
	return out, nil
}

func rootType(kind string) string {
	if kind == "mutation" {
		return "Mutation"
	}
	return "Query"
}

func toRemote(err error) *transport.RemoteError {
	var re *transport.RemoteError
	if errors.As(err, &re) {
		return re
	}
	entry := transport.ErrorEntry{Message: err.Error()}
	var pe *PaginationError
	switch {
	case errors.As(err, &pe):
		entry.Extensions = map[string]any{"code": pe.Code}
	case errors.Is(err, ErrNotFound):
		entry.Extensions = map[string]any{"code": "NOT_FOUND"}
	case errors.Is(err, ErrInvalidID), errors.Is(err, ErrInvalidCursor):
		entry.Extensions = map[string]any{"code": "BAD_USER_INPUT"}
	}
	return &transport.RemoteError{Errors: []transport.ErrorEntry{entry}}
}

// decodeVars copies the request variables into a typed argument struct.
func decodeVars(req transport.Request, out any) error {
	if len(req.Variables) == 0 {
		return nil
	}
	b, err := json.Marshal(req.Variables)
	if err != nil {
		return fmt.Errorf("variables: %w", err)
	}
	if err := json.Unmarshal(b, out); err != nil {
		return fmt.Errorf("variables: %w", err)
	}
	return nil
}

func requireDescription(s *string) (string, error) {
	if s == nil {
		return "", errors.New(`variable "$description" of required type "String!" was not provided`)
	}
	return *s, nil
}

func requireID(s *string) (int64, error) {
	if s == nil {
		return 0, errors.New(`variable "$id" of required type "ID!" was not provided`)
	}
	return DecodeID(*s)
}

func requireDone(b *bool) (bool, error) {
	if b == nil {
		return false, errors.New(`variable "$done" of required type "Boolean!" was not provided`)
	}
	return *b, nil
}

func (r *Resolver) listTodos(ctx context.Context, req transport.Request) (any, error) {
	var args struct {
		First  *int    `json:"first"`
		After  *string `json:"after"`
		Last   *int    `json:"last"`
		Before *string `json:"before"`
	}
	if err := decodeVars(req, &args); err != nil {
		return nil, err
	}
	p := Pagination{First: args.First, Last: args.Last}
	if args.After != nil {
		c, err := ParseCursor(*args.After)
		if err != nil {
			return nil, err
		}
		p.After = &c
	}
	if args.Before != nil {
		c, err := ParseCursor(*args.Before)
		if err != nil {
			return nil, err
		}
		p.Before = &c
	}
	if err := p.Validate(); err != nil {
		return nil, err
	}
	rows, err := r.store.List(ctx, p)
	if err != nil {
		return nil, err
	}
	conn := BuildConnection(p, rows)
	if strings.Contains(req.Query, "totalCount") {
		n, err := r.store.Total(ctx)
		if err != nil {
			return nil, err
		}
		conn.TotalCount = &n
	}
	return conn, nil
}

func (r *Resolver) addTodo(ctx context.Context, req transport.Request) (any, error) {
	var args struct {
		Description *string `json:"description"`
	}
	if err := decodeVars(req, &args); err != nil {
		return nil, err
	}
	desc, err := requireDescription(args.Description)
	if err != nil {
		return nil, err
	}
	id, err := r.store.Add(ctx, desc)
	if err != nil {
		return nil, err
	}
	return EncodeID(id), nil
}

func (r *Resolver) completeTodo(ctx context.Context, req transport.Request) (any, error) {
	var args struct {
		ID   *string `json:"id"`
		Done *bool   `json:"done"`
	}
	if err := decodeVars(req, &args); err != nil {
		return nil, err
	}
	id, err := requireID(args.ID)
	if err != nil {
		return nil, err
	}
	done, err := requireDone(args.Done)
	if err != nil {
		return nil, err
	}
	return r.store.Complete(ctx, id, done)
}

func (r *Resolver) toggleAll(ctx context.Context, req transport.Request) (any, error) {
	var args struct {
		Done *bool `json:"done"`
	}
	if err := decodeVars(req, &args); err != nil {
		return nil, err
	}
	done, err := requireDone(args.Done)
	if err != nil {
		return nil, err
	}
	return r.store.ToggleAll(ctx, done)
}

func (r *Resolver) clearCompleted(ctx context.Context, _ transport.Request) (any, error) {
	return r.store.ClearCompleted(ctx)
}

func (r *Resolver) editTodo(ctx context.Context, req transport.Request) (any, error) {
	var args struct {
		ID          *string `json:"id"`
		Description *string `json:"description"`
	}
	if err := decodeVars(req, &args); err != nil {
		return nil, err
	}
	id, err := requireID(args.ID)
	if err != nil {
		return nil, err
	}
	desc, err := requireDescription(args.Description)
	if err != nil {
		return nil, err
	}
	ok, err := r.store.Edit(ctx, id, desc)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, *args.ID)
	}
	return desc, nil
}

func (r *Resolver) removeTodo(ctx context.Context, req transport.Request) (any, error) {
	var args struct {
		ID *string `json:"id"`
	}
	if err := decodeVars(req, &args); err != nil {
		return nil, err
	}
	id, err := requireID(args.ID)
	if err != nil {
		return nil, err
	}
	return r.store.Remove(ctx, id)
}
