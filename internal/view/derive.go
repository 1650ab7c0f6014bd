package view

import "github.com/idilsaglam/tada/internal/model"

// FilterTodos returns the records of todos selected by f, in order.
// It never modifies todos.
func FilterTodos(todos []model.Todo, f model.Filter) []model.Todo {
	out := make([]model.Todo, 0, len(todos))
	for _, t := range todos {
		if f.Match(t) {
			out = append(out, t)
		}
	}
	return out
}

// RemainingCount is the number of records not yet done.
func RemainingCount(todos []model.Todo) int {
	n := 0
	for _, t := range todos {
		if !t.Done {
			n++
		}
	}
	return n
}
