package cache

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"

	"pgregory.net/rapid"

	"github.com/idilsaglam/tada/internal/model"
)

type listerFunc func(ctx context.Context, p model.Page) (model.Connection[model.Todo], error)

func (f listerFunc) ListTodos(ctx context.Context, p model.Page) (model.Connection[model.Todo], error) {
	return f(ctx, p)
}

func connOf(todos ...model.Todo) model.Connection[model.Todo] {
	var c model.Connection[model.Todo]
	for i, t := range todos {
		c.Edges = append(c.Edges, model.Edge[model.Todo]{Node: t, Cursor: fmt.Sprintf("c%d", i)})
	}
	return c
}

func TestRefreshRequestsOneOversizedPage(t *testing.T) {
	var got model.Page
	c := New(listerFunc(func(_ context.Context, p model.Page) (model.Connection[model.Todo], error) {
		got = p
		return connOf(), nil
	}))
	if err := c.Refresh(context.Background()); err != nil {
		t.Fatalf("Refresh: %v", err)
	}
	if got.First == nil || *got.First != DefaultPageSize {
		t.Fatalf("expected first=%d; got %+v", DefaultPageSize, got)
	}
	if got.After != nil || got.Last != nil || got.Before != nil {
		t.Fatalf("expected only first to be set; got %+v", got)
	}

	c = New(listerFunc(func(_ context.Context, p model.Page) (model.Connection[model.Todo], error) {
		got = p
		return connOf(), nil
	}), WithPageSize(50))
	_ = c.Refresh(context.Background())
	if *got.First != 50 {
		t.Fatalf("expected first=50; got %d", *got.First)
	}
}

func TestRefreshReplacesInServerOrder(t *testing.T) {
	pages := [][]model.Todo{
		{{ID: "b"}, {ID: "a"}},
		{{ID: "c", Done: true}},
	}
	n := 0
	c := New(listerFunc(func(context.Context, model.Page) (model.Connection[model.Todo], error) {
		p := pages[n]
		n++
		return connOf(p...), nil
	}))
	notified := 0
	c.Subscribe(func() { notified++ })

	if err := c.Refresh(context.Background()); err != nil {
		t.Fatalf("Refresh: %v", err)
	}
	snap := c.Snapshot()
	if len(snap) != 2 || snap[0].ID != "b" || snap[1].ID != "a" {
		t.Fatalf("unexpected snapshot: %+v", snap)
	}
	if err := c.Refresh(context.Background()); err != nil {
		t.Fatalf("Refresh: %v", err)
	}
	snap = c.Snapshot()
	if len(snap) != 1 || snap[0].ID != "c" || !snap[0].Done {
		t.Fatalf("expected full replacement; got %+v", snap)
	}
	if c.Version() != 2 || notified != 2 {
		t.Fatalf("expected version 2 and 2 notifications; got %d/%d", c.Version(), notified)
	}
}

func TestRefreshFailureLeavesSnapshot(t *testing.T) {
	fail := false
	c := New(listerFunc(func(context.Context, model.Page) (model.Connection[model.Todo], error) {
		if fail {
			return model.Connection[model.Todo]{}, errors.New("boom")
		}
		return connOf(model.Todo{ID: "a"}), nil
	}))
	if err := c.Refresh(context.Background()); err != nil {
		t.Fatalf("Refresh: %v", err)
	}
	fail = true
	notified := 0
	c.Subscribe(func() { notified++ })
	if err := c.Refresh(context.Background()); err == nil {
		t.Fatalf("expected error")
	}
	if snap := c.Snapshot(); len(snap) != 1 || snap[0].ID != "a" {
		t.Fatalf("expected previous snapshot; got %+v", snap)
	}
	if c.Version() != 1 || notified != 0 {
		t.Fatalf("failed refresh must not bump version or notify; got %d/%d", c.Version(), notified)
	}
}

func TestRefreshRejectsDuplicateIDs(t *testing.T) {
	c := New(listerFunc(func(context.Context, model.Page) (model.Connection[model.Todo], error) {
		return connOf(model.Todo{ID: "a"}, model.Todo{ID: "a"}), nil
	}))
	if err := c.Refresh(context.Background()); err == nil {
		t.Fatalf("expected duplicate id error")
	}
	if c.Len() != 0 {
		t.Fatalf("expected empty cache; got %d", c.Len())
	}
}

func TestSnapshotIsACopy(t *testing.T) {
	c := New(listerFunc(func(context.Context, model.Page) (model.Connection[model.Todo], error) {
		return connOf(model.Todo{ID: "a", Description: "x"}), nil
	}))
	_ = c.Refresh(context.Background())
	snap := c.Snapshot()
	snap[0].Description = "mutated"
	if got := c.Snapshot()[0].Description; got != "x" {
		t.Fatalf("cache changed through snapshot: %q", got)
	}
}

// Readers running alongside refreshes only ever see one whole generation.
func TestRefreshIsAtomicForReaders(t *testing.T) {
	var mu sync.Mutex
	gen := 0
	c := New(listerFunc(func(context.Context, model.Page) (model.Connection[model.Todo], error) {
		mu.Lock()
		gen++
		g := gen
		mu.Unlock()
		var todos []model.Todo
		for i := 0; i < g%7+1; i++ {
			todos = append(todos, model.Todo{ID: fmt.Sprintf("%d-%d", g, i), Description: fmt.Sprint(g)})
		}
		return connOf(todos...), nil
	}))

	ctx := context.Background()
	var wg sync.WaitGroup
	for w := 0; w < 4; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < 50; i++ {
				_ = c.Refresh(ctx)
			}
		}()
	}
	errs := make(chan string, 1)
	for r := 0; r < 4; r++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < 500; i++ {
				snap := c.Snapshot()
				for _, td := range snap {
					if td.Description != snap[0].Description {
						select {
						case errs <- fmt.Sprintf("mixed generations in snapshot: %+v", snap):
						default:
						}
						return
					}
				}
			}
		}()
	}
	wg.Wait()
	select {
	case msg := <-errs:
		t.Fatal(msg)
	default:
	}
}

func TestRefreshSnapshotEqualsResponse(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		n := rapid.IntRange(0, 30).Draw(t, "n")
		var todos []model.Todo
		for i := 0; i < n; i++ {
			todos = append(todos, model.Todo{
				ID:          fmt.Sprintf("id-%d", i),
				Description: rapid.StringMatching(`[a-z ]{1,12}`).Draw(t, "desc"),
				Done:        rapid.Bool().Draw(t, "done"),
			})
		}
		c := New(listerFunc(func(context.Context, model.Page) (model.Connection[model.Todo], error) {
			return connOf(todos...), nil
		}))
		if err := c.Refresh(context.Background()); err != nil {
			t.Fatalf("Refresh: %v", err)
		}
		snap := c.Snapshot()
		if len(snap) != len(todos) {
			t.Fatalf("len %d; want %d", len(snap), len(todos))
		}
		for i := range todos {
			if snap[i] != todos[i] {
				t.Fatalf("record %d: got %+v; want %+v", i, snap[i], todos[i])
			}
		}
	})
}
