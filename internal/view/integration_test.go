package view_test

import (
	"context"
	"testing"

	"github.com/idilsaglam/tada/internal/backend"
	"github.com/idilsaglam/tada/internal/model"
	"github.com/idilsaglam/tada/internal/query"
	"github.com/idilsaglam/tada/internal/view"
)

func TestControllerAgainstResolver(t *testing.T) {
	ctx := context.Background()
	c := view.New(query.New(backend.NewResolver(backend.NewMemStore(), nil)))
	defer c.Close()
	if err := c.Mount(ctx); err != nil {
		t.Fatalf("mount: %v", err)
	}

	for _, d := range []string{"buy milk", "walk dog", "write report"} {
		c.SetDraft(d)
		if err := c.SubmitNew(ctx, view.KeyEnter); err != nil {
			t.Fatalf("submit %q: %v", d, err)
		}
	}
	todos := c.Todos()
	if len(todos) != 3 || todos[0].Description != "buy milk" {
		t.Fatalf("unexpected list %+v", todos)
	}

	if err := c.ToggleOne(ctx, todos[1].ID, true); err != nil {
		t.Fatalf("toggle: %v", err)
	}
	c.SetFilter(model.FilterCompleted)
	if got := c.FilteredTodos(); len(got) != 1 || got[0].Description != "walk dog" {
		t.Fatalf("unexpected completed view %+v", got)
	}

	c.BeginEdit(todos[2].ID)
	if err := c.EditKey(ctx, todos[2].ID, view.KeyEnter, "write the report"); err != nil {
		t.Fatalf("edit: %v", err)
	}
	if err := c.ToggleAll(ctx, !c.AllDone()); err != nil {
		t.Fatalf("toggle all: %v", err)
	}
	if c.RemainingCount() != 0 || !c.AllDone() {
		t.Fatalf("expected everything done")
	}
	if err := c.ClearCompleted(ctx); err != nil {
		t.Fatalf("clear: %v", err)
	}
	if c.Len() != 0 || c.ShowClearCompleted() {
		t.Fatalf("expected empty list")
	}
}
