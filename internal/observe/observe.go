// Package observe is a minimal observer list: callbacks registered with
// Subscribe run on every publish until their cancel func is called.
package observe

import (
	"sort"
	"sync"
)

// Topic delivers values of type T to its subscribers. The zero value is ready to use.
type Topic[T any] struct {
	mu   sync.Mutex
	next int
	subs map[int]func(T)
}

// Subscribe registers fn and returns a func that removes it. Calling the
// returned func more than once is harmless.
func (t *Topic[T]) Subscribe(fn func(T)) (cancel func()) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.subs == nil {
		t.subs = map[int]func(T){}
	}
	id := t.next
	t.next++
	t.subs[id] = fn

	var once sync.Once
	return func() {
		once.Do(func() {
			t.mu.Lock()
			delete(t.subs, id)
			t.mu.Unlock()
		})
	}
}

// Publish calls every subscriber with v in registration order. Callbacks run
// outside the lock, so they may subscribe or cancel.
func (t *Topic[T]) Publish(v T) {
	t.mu.Lock()
	ids := make([]int, 0, len(t.subs))
	for id := range t.subs {
		ids = append(ids, id)
	}
	sort.Ints(ids)
	fns := make([]func(T), 0, len(ids))
	for _, id := range ids {
		fns = append(fns, t.subs[id])
	}
	t.mu.Unlock()

	for _, fn := range fns {
		fn(v)
	}
}

// Len is the number of live subscribers.
func (t *Topic[T]) Len() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.subs)
}

// Hub is a Topic that carries no value, only the fact that something changed.
type Hub struct {
	topic Topic[struct{}]
}

func (h *Hub) Subscribe(fn func()) (cancel func()) {
	return h.topic.Subscribe(func(struct{}) { fn() })
}

func (h *Hub) Notify() {
	h.topic.Publish(struct{}{})
}

func (h *Hub) Len() int {
	return h.topic.Len()
}
