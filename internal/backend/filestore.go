package backend

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	json "github.com/goccy/go-json"
)

// FileStore is a MemStore persisted to one human-readable JSON file after
// every write. No locking across processes; fine for a single local user.
type FileStore struct {
	*MemStore
	path string
	mu   sync.Mutex
}

// OpenFileStore loads path, or starts empty when it does not exist yet.
func OpenFileStore(path string) (*FileStore, error) {
	records, err := loadRecords(path)
	if err != nil {
		return nil, err
	}
	return &FileStore{MemStore: newMemStoreFrom(records), path: path}, nil
}

func loadRecords(path string) ([]Record, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return []Record{}, nil
		}
		return nil, fmt.Errorf("read file: %w", err)
	}
	var records []Record
	if err := json.Unmarshal(b, &records); err != nil {
		return nil, fmt.Errorf("json unmarshal: %w", err)
	}
	return records, nil
}

func (f *FileStore) save() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	b, err := json.MarshalIndent(f.MemStore.snapshot(), "", "  ")
	if err != nil {
		return fmt.Errorf("json marshal: %w", err)
	}
	if dir := filepath.Dir(f.path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("mkdir: %w", err)
		}
	}
	tmp := f.path + ".tmp"
	if err := os.WriteFile(tmp, b, 0o644); err != nil {
		return fmt.Errorf("write file: %w", err)
	}
	if err := os.Rename(tmp, f.path); err != nil {
		return fmt.Errorf("rename: %w", err)
	}
	return nil
}

func (f *FileStore) Add(ctx context.Context, description string) (int64, error) {
	id, err := f.MemStore.Add(ctx, description)
	if err != nil {
		return 0, err
	}
	return id, f.save()
}

// persisted runs a write and saves when it changed anything.
func (f *FileStore) persisted(changed bool, err error) (bool, error) {
	if err != nil || !changed {
		return changed, err
	}
	return changed, f.save()
}

func (f *FileStore) Complete(ctx context.Context, id int64, done bool) (bool, error) {
	return f.persisted(f.MemStore.Complete(ctx, id, done))
}

func (f *FileStore) ToggleAll(ctx context.Context, done bool) (bool, error) {
	return f.persisted(f.MemStore.ToggleAll(ctx, done))
}

func (f *FileStore) Remove(ctx context.Context, id int64) (bool, error) {
	return f.persisted(f.MemStore.Remove(ctx, id))
}

func (f *FileStore) ClearCompleted(ctx context.Context) (bool, error) {
	return f.persisted(f.MemStore.ClearCompleted(ctx))
}

func (f *FileStore) Edit(ctx context.Context, id int64, description string) (bool, error) {
	return f.persisted(f.MemStore.Edit(ctx, id, description))
}
