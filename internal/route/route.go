// Package route maps location fragments ("#/", "#/active", "#/completed")
// to list filters and keeps a view's filter in step with navigation.
package route

import (
	"strings"
	"sync"

	"github.com/idilsaglam/tada/internal/model"
	"github.com/idilsaglam/tada/internal/observe"
)

var fragments = map[string]model.Filter{
	"":          model.FilterAll,
	"active":    model.FilterActive,
	"completed": model.FilterCompleted,
}

// ParseFragment returns the filter a fragment selects. The name follows a
// "#/" prefix; anything else, including "#active" or a bare "active",
// selects all.
func ParseFragment(fragment string) model.Filter {
	s, ok := strings.CutPrefix(fragment, "#/")
	if !ok {
		return model.FilterAll
	}
	if f, ok := fragments[s]; ok {
		return f
	}
	return model.FilterAll
}

// FragmentFor is the canonical fragment of f.
func FragmentFor(f model.Filter) string {
	switch f {
	case model.FilterActive:
		return "#/active"
	case model.FilterCompleted:
		return "#/completed"
	}
	return "#/"
}

// Navigator is the source of fragment changes.
type Navigator interface {
	Fragment() string
	// Subscribe registers fn to run with the new fragment on every change.
	Subscribe(fn func(fragment string)) (cancel func())
}

// History is an in-process Navigator.
type History struct {
	mu       sync.Mutex
	fragment string
	changes  observe.Topic[string]
}

func NewHistory(initial string) *History {
	return &History{fragment: initial}
}

func (h *History) Fragment() string {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.fragment
}

// Navigate moves to fragment and tells every listener, even when the
// fragment did not change.
func (h *History) Navigate(fragment string) {
	h.mu.Lock()
	h.fragment = fragment
	h.mu.Unlock()
	h.changes.Publish(fragment)
}

func (h *History) Subscribe(fn func(string)) (cancel func()) {
	return h.changes.Subscribe(fn)
}

// Listeners is the number of registered listeners.
func (h *History) Listeners() int {
	return h.changes.Len()
}

// FilterSetter receives the filter a fragment selects.
type FilterSetter interface {
	SetFilter(f model.Filter)
}

// Bridge applies navigation to a view between Start and Stop.
type Bridge struct {
	nav  Navigator
	view FilterSetter

	mu     sync.Mutex
	cancel func()
}

func NewBridge(nav Navigator, view FilterSetter) *Bridge {
	return &Bridge{nav: nav, view: view}
}

// Start applies the current fragment and listens for changes. Calling it
// again while started does nothing.
func (b *Bridge) Start() {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.cancel != nil {
		return
	}
	b.view.SetFilter(ParseFragment(b.nav.Fragment()))
	b.cancel = b.nav.Subscribe(func(fragment string) {
		b.view.SetFilter(ParseFragment(fragment))
	})
}

// Stop removes the listener. It is safe to call more than once.
func (b *Bridge) Stop() {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.cancel != nil {
		b.cancel()
		b.cancel = nil
	}
}
