// Package cache holds the client's copy of the todo list. The only way the
// copy changes is Refresh, which replaces it wholesale with what the server
// returns; nothing is ever patched in place.
package cache

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/idilsaglam/tada/internal/model"
	"github.com/idilsaglam/tada/internal/observe"
)

// DefaultPageSize is requested on every refresh. It is meant to exceed any
// realistic list so one page covers the whole collection.
const DefaultPageSize = 999

// Lister is the read half of the query layer.
type Lister interface {
	ListTodos(ctx context.Context, p model.Page) (model.Connection[model.Todo], error)
}

// Cache is a single-writer snapshot of the list.
type Cache struct {
	lister   Lister
	pageSize int
	log      *slog.Logger

	mu      sync.RWMutex
	todos   []model.Todo
	version uint64

	hub observe.Hub
}

// Option configures a Cache.
type Option func(*Cache)

// WithPageSize overrides DefaultPageSize.
func WithPageSize(n int) Option {
	return func(c *Cache) {
		if n > 0 {
			c.pageSize = n
		}
	}
}

// WithLogger sets the logger used for refresh diagnostics.
func WithLogger(l *slog.Logger) Option {
	return func(c *Cache) {
		if l != nil {
			c.log = l
		}
	}
}

func New(l Lister, opts ...Option) *Cache {
	c := &Cache{
		lister:   l,
		pageSize: DefaultPageSize,
		log:      slog.Default(),
		todos:    []model.Todo{},
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

// Refresh fetches one oversized page and replaces the snapshot with its
// nodes in server order. On any failure the snapshot is left as it was.
//
// Concurrent refreshes are not ordered: whichever resolves last wins.
func (c *Cache) Refresh(ctx context.Context) error {
	conn, err := c.lister.ListTodos(ctx, model.FirstN(c.pageSize))
	if err != nil {
		return fmt.Errorf("refresh: %w", err)
	}
	todos := conn.Nodes()
	seen := make(map[string]struct{}, len(todos))
	for _, t := range todos {
		if _, dup := seen[t.ID]; dup {
			return fmt.Errorf("refresh: duplicate id %q in response", t.ID)
		}
		seen[t.ID] = struct{}{}
	}

	c.mu.Lock()
	c.todos = todos
	c.version++
	c.mu.Unlock()

	c.log.Debug("cache refreshed", "count", len(todos), "hasNextPage", conn.PageInfo.HasNextPage)
	c.hub.Notify()
	return nil
}

// Snapshot returns a copy of the current records.
func (c *Cache) Snapshot() []model.Todo {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]model.Todo, len(c.todos))
	copy(out, c.todos)
	return out
}

// View returns the current records and their version without copying.
// The returned slice must not be modified.
func (c *Cache) View() ([]model.Todo, uint64) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.todos, c.version
}

// Version increases by one on every successful refresh.
func (c *Cache) Version() uint64 {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.version
}

// Len is the number of cached records.
func (c *Cache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.todos)
}

// Subscribe registers fn to run after every successful refresh.
func (c *Cache) Subscribe(fn func()) (cancel func()) {
	return c.hub.Subscribe(fn)
}
