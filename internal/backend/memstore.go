package backend

import (
	"context"
	"sort"
	"sync"
	"time"
)

// MemStore keeps records in memory, ordered by id.
type MemStore struct {
	mu      sync.Mutex
	nextID  int64
	records []Record
	now     func() time.Time
}

func NewMemStore() *MemStore {
	return &MemStore{nextID: 1, now: time.Now}
}

// newMemStoreFrom seeds a store with existing records.
func newMemStoreFrom(records []Record) *MemStore {
	m := NewMemStore()
	m.records = append(m.records, records...)
	sort.Slice(m.records, func(i, j int) bool { return m.records[i].ID < m.records[j].ID })
	for _, r := range m.records {
		if r.ID >= m.nextID {
			m.nextID = r.ID + 1
		}
	}
	return m
}

// SetClock replaces the creation-time source. Intended for tests.
func (m *MemStore) SetClock(now func() time.Time) {
	m.mu.Lock()
	m.now = now
	m.mu.Unlock()
}

func (m *MemStore) snapshot() []Record {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]Record, len(m.records))
	copy(out, m.records)
	return out
}

func (m *MemStore) Add(_ context.Context, description string) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	id := m.nextID
	m.nextID++
	m.records = append(m.records, Record{ID: id, Description: description, CreatedAt: m.now().Unix()})
	return id, nil
}

func (m *MemStore) update(fn func(r *Record) bool) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	changed := false
	for i := range m.records {
		if fn(&m.records[i]) {
			changed = true
		}
	}
	return changed
}

func (m *MemStore) Complete(_ context.Context, id int64, done bool) (bool, error) {
	return m.update(func(r *Record) bool {
		if r.ID != id {
			return false
		}
		r.Done = done
		return true
	}), nil
}

func (m *MemStore) ToggleAll(_ context.Context, done bool) (bool, error) {
	return m.update(func(r *Record) bool {
		if r.Done == done {
			return false
		}
		r.Done = done
		return true
	}), nil
}

func (m *MemStore) Edit(_ context.Context, id int64, description string) (bool, error) {
	return m.update(func(r *Record) bool {
		if r.ID != id {
			return false
		}
		r.Description = description
		return true
	}), nil
}

func (m *MemStore) remove(keep func(r Record) bool) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := m.records[:0]
	for _, r := range m.records {
		if keep(r) {
			out = append(out, r)
		}
	}
	removed := len(out) != len(m.records)
	m.records = out
	return removed
}

func (m *MemStore) Remove(_ context.Context, id int64) (bool, error) {
	return m.remove(func(r Record) bool { return r.ID != id }), nil
}

func (m *MemStore) ClearCompleted(_ context.Context) (bool, error) {
	return m.remove(func(r Record) bool { return !r.Done }), nil
}

func (m *MemStore) List(_ context.Context, p Pagination) ([]Record, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var in []Record
	for _, r := range m.records {
		if p.After != nil && !r.after(*p.After) {
			continue
		}
		if p.Before != nil && !r.before(*p.Before) {
			continue
		}
		in = append(in, r)
	}
	want := p.Limit() + 1
	var out []Record
	if p.Backward() {
		for i := len(in) - 1; i >= 0 && len(out) < want; i-- {
			out = append(out, in[i])
		}
		return out, nil
	}
	for i := 0; i < len(in) && len(out) < want; i++ {
		out = append(out, in[i])
	}
	return out, nil
}

func (m *MemStore) Total(context.Context) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.records), nil
}

func (m *MemStore) Close() error { return nil }
