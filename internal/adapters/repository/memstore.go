package repository

import (
	"context"
	"strings"
	"sync"

	"github.com/okian/fitfindr/internal/domain/model"
	"github.com/okian/fitfindr/pkg/metrics"
)

// MemStore is the in-memory Store implementation. Items are indexed by id
// and by the lowercased search keyword they were fetched under; insertion
// order is preserved for deterministic listing and for the ranker's stable
// tie-break, which relies on catalog order.
type MemStore struct {
	mu        sync.RWMutex
	byID      map[string]model.Item
	order     []string            // item ids, insertion order
	byKeyword map[string][]string // keyword -> item ids, insertion order
}

// NewMemStore creates an empty in-memory catalog store.
func NewMemStore() *MemStore {
	return &MemStore{
		byID:      make(map[string]model.Item),
		byKeyword: make(map[string][]string),
	}
}

// Upsert inserts or replaces an item under a search keyword.
func (s *MemStore) Upsert(_ context.Context, keyword string, item model.Item) bool {
	if item.ID == "" {
		return false
	}
	key := normalizeKeyword(keyword)

	s.mu.Lock()
	defer s.mu.Unlock()

	_, exists := s.byID[item.ID]
	s.byID[item.ID] = item
	if !exists {
		s.order = append(s.order, item.ID)
	}
	if key != "" && !containsID(s.byKeyword[key], item.ID) {
		s.byKeyword[key] = append(s.byKeyword[key], item.ID)
	}
	metrics.UpdateCatalogSize(len(s.byID))
	return !exists
}

// Get returns the item with the given id.
func (s *MemStore) Get(_ context.Context, id string) (model.Item, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	item, ok := s.byID[id]
	return item, ok
}

// List returns all items in insertion order.
func (s *MemStore) List(_ context.Context) []model.Item {
	s.mu.RLock()
	defer s.mu.RUnlock()
	items := make([]model.Item, 0, len(s.order))
	for _, id := range s.order {
		items = append(items, s.byID[id])
	}
	return items
}

// ListByKeyword returns the items stored under a keyword in insertion order.
func (s *MemStore) ListByKeyword(_ context.Context, keyword string) []model.Item {
	s.mu.RLock()
	defer s.mu.RUnlock()
	ids := s.byKeyword[normalizeKeyword(keyword)]
	items := make([]model.Item, 0, len(ids))
	for _, id := range ids {
		items = append(items, s.byID[id])
	}
	return items
}

// Count returns the number of items tracked.
func (s *MemStore) Count(_ context.Context) int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.byID)
}

func normalizeKeyword(keyword string) string {
	return strings.ToLower(strings.TrimSpace(keyword))
}

func containsID(ids []string, id string) bool {
	for _, existing := range ids {
		if existing == id {
			return true
		}
	}
	return false
}
