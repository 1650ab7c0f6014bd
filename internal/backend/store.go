package backend

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

// ErrNotFound is returned when an id names no record.
var ErrNotFound = errors.New("todo not found")

// Store is the record storage behind the resolver. Boolean results report
// whether any row was affected.
type Store interface {
	Add(ctx context.Context, description string) (int64, error)
	Complete(ctx context.Context, id int64, done bool) (bool, error)
	ToggleAll(ctx context.Context, done bool) (bool, error)
	Remove(ctx context.Context, id int64) (bool, error)
	ClearCompleted(ctx context.Context) (bool, error)
	Edit(ctx context.Context, id int64, description string) (bool, error)
	// List returns up to p.Limit()+1 rows inside the cursor bounds, ascending
	// by id, or descending when p.Backward().
	List(ctx context.Context, p Pagination) ([]Record, error)
	Total(ctx context.Context) (int, error)
	Close() error
}

// Open picks a store from a location: "memory" (or empty) keeps records in
// memory, a path ending in .json uses a JSON file, anything else is a
// SQLite database path.
func Open(ctx context.Context, location string) (Store, error) {
	loc := strings.TrimSpace(location)
	switch {
	case loc == "" || loc == "memory" || loc == ":memory:":
		return NewMemStore(), nil
	case strings.HasSuffix(strings.ToLower(loc), ".json"):
		return OpenFileStore(loc)
	}
	s, err := OpenSQLite(ctx, loc)
	if err != nil {
		return nil, fmt.Errorf("open store: %w", err)
	}
	return s, nil
}
