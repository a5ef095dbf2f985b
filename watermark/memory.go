package watermark

import (
	"context"
	"fmt"
	"sync"
)

// MemoryStore is an in-process Store used by tests and dry runs.
type MemoryStore struct {
	mu      sync.Mutex
	cursors map[string]Cursor
}

var _ Store = (*MemoryStore)(nil)

// NewMemoryStore creates an empty in-memory cursor store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{cursors: make(map[string]Cursor)}
}

// Load retrieves the cursor for a pipeline.
func (s *MemoryStore) Load(ctx context.Context, pipeline string) (Cursor, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.cursors[pipeline]
	return c, ok, nil
}

// Save persists a cursor, refusing to move it backwards.
func (s *MemoryStore) Save(ctx context.Context, pipeline string, cursor Cursor) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if existing, ok := s.cursors[pipeline]; ok && existing.Regresses(cursor) {
		return fmt.Errorf("%w: pipeline %s", ErrCursorRegression, pipeline)
	}
	s.cursors[pipeline] = cursor
	return nil
}

// Reset overwrites the cursor unconditionally.
func (s *MemoryStore) Reset(ctx context.Context, pipeline string, cursor Cursor) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cursors[pipeline] = cursor
	return nil
}

// Close is a no-op.
func (s *MemoryStore) Close() error { return nil }
