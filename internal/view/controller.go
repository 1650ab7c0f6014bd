// Package view is the interaction state of the list view: active filter,
// editing target, new-item draft and the handlers that turn user input into
// a mutation followed by a cache refresh.
//
// Every mutating handler has the same shape: guard the input, perform the
// mutation, and only after it succeeded refresh the cache. A failed mutation
// is logged and returned; the cache is not touched. Handlers may run
// concurrently; there is no request queue and no de-duplication apart from
// the submitting flag on SubmitNew.
package view

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"github.com/idilsaglam/tada/internal/cache"
	"github.com/idilsaglam/tada/internal/model"
	"github.com/idilsaglam/tada/internal/observe"
)

// Mutator is the write half of the query layer.
type Mutator interface {
	AddTodo(ctx context.Context, description string) (string, error)
	CompleteTodo(ctx context.Context, id string, done bool) (bool, error)
	ToggleAll(ctx context.Context, done bool) (bool, error)
	ClearCompleted(ctx context.Context) (bool, error)
	EditTodo(ctx context.Context, id, description string) (string, error)
	RemoveTodo(ctx context.Context, id string) (bool, error)
}

// Service is the full query layer.
type Service interface {
	cache.Lister
	Mutator
}

type Controller struct {
	api      Mutator
	cache    *cache.Cache
	log      *slog.Logger
	pageSize int

	mu         sync.Mutex
	filter     model.Filter
	editing    string
	draft      string
	submitting bool

	// memoized filteredTodos, valid while cache version and filter match
	memoOK      bool
	memoVersion uint64
	memoFilter  model.Filter
	memo        []model.Todo

	hub         observe.Hub
	cancelCache func()
}

// Option configures a Controller.
type Option func(*Controller)

// WithLogger sets the logger for handler failures.
func WithLogger(l *slog.Logger) Option {
	return func(c *Controller) {
		if l != nil {
			c.log = l
		}
	}
}

// WithPageSize sets the page size of every refresh.
func WithPageSize(n int) Option {
	return func(c *Controller) {
		c.pageSize = n
	}
}

// New builds a controller and the cache it owns.
func New(svc Service, opts ...Option) *Controller {
	c := &Controller{
		api:      svc,
		log:      slog.Default(),
		pageSize: cache.DefaultPageSize,
		filter:   model.FilterAll,
	}
	for _, o := range opts {
		o(c)
	}
	c.cache = cache.New(svc, cache.WithPageSize(c.pageSize), cache.WithLogger(c.log))
	c.cancelCache = c.cache.Subscribe(c.hub.Notify)
	return c
}

// Subscribe registers fn to run after any state change: cache refresh,
// filter, editing target, draft or submitting flag.
func (c *Controller) Subscribe(fn func()) (cancel func()) {
	return c.hub.Subscribe(fn)
}

// Close detaches the controller from its cache.
func (c *Controller) Close() {
	if c.cancelCache != nil {
		c.cancelCache()
	}
}

// Mount performs the initial load of the view.
func (c *Controller) Mount(ctx context.Context) error {
	if err := c.cache.Refresh(ctx); err != nil {
		c.log.Error("initial load failed", "err", err)
		return err
	}
	return nil
}

// Refresh reloads the cache from the server.
func (c *Controller) Refresh(ctx context.Context) error {
	if err := c.cache.Refresh(ctx); err != nil {
		c.log.Error("refresh failed", "err", err)
		return err
	}
	return nil
}

// afterMutation refreshes once a mutation has succeeded.
func (c *Controller) afterMutation(ctx context.Context, op string) error {
	if err := c.cache.Refresh(ctx); err != nil {
		c.log.Error("refresh after mutation failed", "op", op, "err", err)
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

func (c *Controller) mutationFailed(op string, err error) error {
	c.log.Error("mutation failed", "op", op, "err", err)
	return err
}

// ---- reads ----

// Todos is a copy of the cached records.
func (c *Controller) Todos() []model.Todo {
	return c.cache.Snapshot()
}

// Len is the number of cached records.
func (c *Controller) Len() int {
	return c.cache.Len()
}

// Filter is the active filter.
func (c *Controller) Filter() model.Filter {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.filter
}

// FilteredTodos is the cache seen through the active filter. The result is
// recomputed only when the cache or the filter changed since the last call.
func (c *Controller) FilteredTodos() []model.Todo {
	todos, version := c.cache.View()
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.memoOK || c.memoVersion != version || c.memoFilter != c.filter {
		c.memo = FilterTodos(todos, c.filter)
		c.memoVersion = version
		c.memoFilter = c.filter
		c.memoOK = true
	}
	out := make([]model.Todo, len(c.memo))
	copy(out, c.memo)
	return out
}

// RemainingCount is the number of cached records not done.
func (c *Controller) RemainingCount() int {
	todos, _ := c.cache.View()
	return RemainingCount(todos)
}

// AllDone drives the toggle-all checkbox: checked when nothing remains.
func (c *Controller) AllDone() bool {
	return c.RemainingCount() == 0
}

// ShowClearCompleted reports whether at least one cached record is done.
func (c *Controller) ShowClearCompleted() bool {
	todos, _ := c.cache.View()
	return RemainingCount(todos) != len(todos)
}

// Editing returns the id whose editor is open.
func (c *Controller) Editing() (string, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.editing, c.editing != ""
}

// Draft is the text of the new-item input.
func (c *Controller) Draft() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.draft
}

// Submitting is true while a new item is being added.
func (c *Controller) Submitting() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.submitting
}

// ---- local state ----

// SetFilter switches the view. It never touches the cache.
func (c *Controller) SetFilter(f model.Filter) {
	if !f.Valid() {
		f = model.FilterAll
	}
	c.mu.Lock()
	changed := c.filter != f
	c.filter = f
	c.mu.Unlock()
	if changed {
		c.hub.Notify()
	}
}

// SetDraft records the new-item input text.
func (c *Controller) SetDraft(text string) {
	c.mu.Lock()
	changed := c.draft != text
	c.draft = text
	c.mu.Unlock()
	if changed {
		c.hub.Notify()
	}
}

// BeginEdit opens the editor for id. An editor open on another record is
// abandoned without saving.
func (c *Controller) BeginEdit(id string) {
	c.setEditing(id)
}

// CancelEdit closes the editor without saving.
func (c *Controller) CancelEdit() {
	c.setEditing("")
}

func (c *Controller) setEditing(id string) {
	c.mu.Lock()
	changed := c.editing != id
	c.editing = id
	c.mu.Unlock()
	if changed {
		c.hub.Notify()
	}
}

func (c *Controller) setSubmitting(v bool) {
	c.mu.Lock()
	c.submitting = v
	c.mu.Unlock()
	c.hub.Notify()
}

// ---- handlers ----

// SubmitNew adds the draft as a new record when key commits and the trimmed
// draft is not empty. The draft is cleared only when the add succeeded.
// While one submission is in flight further submissions are ignored.
func (c *Controller) SubmitNew(ctx context.Context, key Key) error {
	if !key.IsCommit() {
		return nil
	}
	c.mu.Lock()
	description := strings.TrimSpace(c.draft)
	if description == "" || c.submitting {
		c.mu.Unlock()
		return nil
	}
	c.submitting = true
	c.mu.Unlock()
	c.hub.Notify()
	defer c.setSubmitting(false)

	if _, err := c.api.AddTodo(ctx, description); err != nil {
		return c.mutationFailed("addTodo", err)
	}
	c.SetDraft("")
	return c.afterMutation(ctx, "addTodo")
}

// ToggleOne sets the done flag of one record.
func (c *Controller) ToggleOne(ctx context.Context, id string, done bool) error {
	if id == "" {
		return nil
	}
	if _, err := c.api.CompleteTodo(ctx, id, done); err != nil {
		return c.mutationFailed("completeTodo", err)
	}
	return c.afterMutation(ctx, "completeTodo")
}

// ToggleAll sets the done flag of every record.
func (c *Controller) ToggleAll(ctx context.Context, done bool) error {
	if _, err := c.api.ToggleAll(ctx, done); err != nil {
		return c.mutationFailed("toggleAll", err)
	}
	return c.afterMutation(ctx, "toggleAll")
}

// CommitEdit saves text as the description of id when id is the editing
// target and the trimmed text is not empty. It is what a blur does. The
// editor closes only after the edit and the refresh succeeded.
func (c *Controller) CommitEdit(ctx context.Context, id, text string) error {
	description := strings.TrimSpace(text)
	c.mu.Lock()
	target := c.editing
	c.mu.Unlock()
	if id == "" || target != id || description == "" {
		return nil
	}
	if _, err := c.api.EditTodo(ctx, id, description); err != nil {
		return c.mutationFailed("editTodo", err)
	}
	if err := c.afterMutation(ctx, "editTodo"); err != nil {
		return err
	}
	c.mu.Lock()
	if c.editing == id {
		c.editing = ""
	}
	c.mu.Unlock()
	c.hub.Notify()
	return nil
}

// EditKey handles a keystroke in the editor of id: commit saves, cancel
// closes the editor and discards the text, anything else is ignored.
func (c *Controller) EditKey(ctx context.Context, id string, key Key, text string) error {
	switch {
	case key.IsCommit():
		return c.CommitEdit(ctx, id, text)
	case key.IsCancel():
		c.CancelEdit()
	}
	return nil
}

// RemoveOne deletes one record.
func (c *Controller) RemoveOne(ctx context.Context, id string) error {
	if id == "" {
		return nil
	}
	if _, err := c.api.RemoveTodo(ctx, id); err != nil {
		return c.mutationFailed("removeTodo", err)
	}
	return c.afterMutation(ctx, "removeTodo")
}

// ClearCompleted removes every done record.
func (c *Controller) ClearCompleted(ctx context.Context) error {
	if _, err := c.api.ClearCompleted(ctx); err != nil {
		return c.mutationFailed("clearCompleted", err)
	}
	return c.afterMutation(ctx, "clearCompleted")
}
