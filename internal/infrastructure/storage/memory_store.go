// Package storage provides the external key-addressed stores a feed is published to.
package storage

import (
	"context"
	"slices"
	"sync"

	"github.com/Huseyinctnkaya/Wallify-IG-sub000/internal/domain/integration"
)

// MemoryMetafieldStore keeps published records in process memory.
// Use this for development and tests; records do not survive a restart.
type MemoryMetafieldStore struct {
	mu      sync.RWMutex
	records map[string][]integration.PublishRecord
	puts    int
}

// NewMemoryMetafieldStore creates an empty store
func NewMemoryMetafieldStore() *MemoryMetafieldStore {
	return &MemoryMetafieldStore{
		records: make(map[string][]integration.PublishRecord),
	}
}

// Ensure MemoryMetafieldStore implements MetafieldStore
var _ integration.MetafieldStore = (*MemoryMetafieldStore)(nil)

// Put swaps the namespace's record set in one step
func (s *MemoryMetafieldStore) Put(ctx context.Context, tenantKey, namespace string, records []integration.PublishRecord) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := integration.ValidateRecords(records); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.records[namespaceKey(tenantKey, namespace)] = slices.Clone(records)
	s.puts++
	return nil
}

// Get returns a copy of the namespace's records, or an empty slice
func (s *MemoryMetafieldStore) Get(_ context.Context, tenantKey, namespace string) ([]integration.PublishRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	records, ok := s.records[namespaceKey(tenantKey, namespace)]
	if !ok {
		return []integration.PublishRecord{}, nil
	}
	return slices.Clone(records), nil
}

// Delete removes the namespace
func (s *MemoryMetafieldStore) Delete(_ context.Context, tenantKey, namespace string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.records, namespaceKey(tenantKey, namespace))
	return nil
}

// PutCount returns the number of successful Put calls (for testing)
func (s *MemoryMetafieldStore) PutCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.puts
}

func namespaceKey(tenantKey, namespace string) string {
	return tenantKey + "/" + namespace
}
