package view

import (
	"fmt"
	"slices"
	"testing"

	"pgregory.net/rapid"

	"github.com/idilsaglam/tada/internal/model"
)

func drawTodos(t *rapid.T) []model.Todo {
	n := rapid.IntRange(0, 25).Draw(t, "n")
	todos := make([]model.Todo, 0, n)
	for i := 0; i < n; i++ {
		todos = append(todos, model.Todo{
			ID:          fmt.Sprintf("t%d", i),
			Description: rapid.StringMatching(`[a-z]{1,8}`).Draw(t, "desc"),
			Done:        rapid.Bool().Draw(t, "done"),
		})
	}
	return todos
}

func TestRemainingCountProperty(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		todos := drawTodos(t)
		done := 0
		for _, td := range todos {
			if td.Done {
				done++
			}
		}
		if got := RemainingCount(todos); got != len(todos)-done {
			t.Fatalf("remaining %d; want %d", got, len(todos)-done)
		}
		active := FilterTodos(todos, model.FilterActive)
		completed := FilterTodos(todos, model.FilterCompleted)
		if len(active) != RemainingCount(todos) || len(active)+len(completed) != len(todos) {
			t.Fatalf("active %d + completed %d do not partition %d", len(active), len(completed), len(todos))
		}
	})
}

func TestFilterTodosIsPure(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		todos := drawTodos(t)
		orig := slices.Clone(todos)
		f := rapid.SampledFrom(model.Filters).Draw(t, "filter")

		once := FilterTodos(todos, f)
		twice := FilterTodos(once, f)
		if !slices.Equal(once, twice) {
			t.Fatalf("filter %s is not idempotent", f)
		}
		if !slices.Equal(todos, orig) {
			t.Fatalf("filter %s modified its input", f)
		}
		if f == model.FilterAll && !slices.Equal(once, todos) {
			t.Fatalf("all must keep every record")
		}
	})
}

func TestKeys(t *testing.T) {
	for _, k := range []Key{KeyEnter, KeyNumpadEnter} {
		if !k.IsCommit() || k.IsCancel() {
			t.Fatalf("%s should commit", k)
		}
	}
	if !KeyEscape.IsCancel() || KeyEscape.IsCommit() {
		t.Fatalf("esc should cancel")
	}
	if Key("tab").IsCommit() || Key("tab").IsCancel() {
		t.Fatalf("tab should do neither")
	}
}
