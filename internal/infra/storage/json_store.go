package storage

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
)

// JSONSaveRepository implements SaveRepository on a single JSON file.
// It exists for environments where even SQLite is too much (tests,
// throwaway sessions); the whole save state is tiny, so it rewrites the
// file on every mutation.
type JSONSaveRepository struct {
	mu   sync.Mutex
	path string
	data map[string]json.RawMessage
}

func NewJSONSaveRepository(path string) (*JSONSaveRepository, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("failed to create save directory: %w", err)
	}

	r := &JSONSaveRepository{
		path: path,
		data: make(map[string]json.RawMessage),
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return r, nil
		}
		return nil, fmt.Errorf("failed to read save file: %w", err)
	}

	if len(raw) > 0 {
		if err := json.Unmarshal(raw, &r.data); err != nil {
			// Corrupt save files fall back to an empty state rather than
			// blocking startup; the caller surfaces a notification.
			return r, fmt.Errorf("corrupt save file %s: %w", path, err)
		}
	}

	return r, nil
}

func (r *JSONSaveRepository) Put(ctx context.Context, key string, value []byte) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.data[key] = json.RawMessage(value)
	return r.flushLocked()
}

func (r *JSONSaveRepository) Get(ctx context.Context, key string) ([]byte, bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	value, ok := r.data[key]
	if !ok {
		return nil, false, nil
	}
	out := make([]byte, len(value))
	copy(out, value)
	return out, true, nil
}

func (r *JSONSaveRepository) Delete(ctx context.Context, key string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.data[key]; !ok {
		return nil
	}
	delete(r.data, key)
	return r.flushLocked()
}

func (r *JSONSaveRepository) Close() error {
	return nil
}

// flushLocked rewrites the save file atomically. Callers hold r.mu.
func (r *JSONSaveRepository) flushLocked() error {
	raw, err := json.MarshalIndent(r.data, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal save state: %w", err)
	}

	tmp := r.path + ".tmp"
	if err := os.WriteFile(tmp, raw, 0644); err != nil {
		return fmt.Errorf("failed to write save file: %w", err)
	}
	if err := os.Rename(tmp, r.path); err != nil {
		return fmt.Errorf("failed to replace save file: %w", err)
	}
	return nil
}
