// Package repository defines the catalog store interface and its in-memory
// implementation.
package repository

import (
	"context"

	"github.com/okian/fitfindr/internal/domain/model"
)

// Store provides read/write access to the catalog. The catalog is
// authoritative for item existence; ranking state is never stored here, it
// is recomputed fresh on every request.
type Store interface {
	// Upsert inserts or replaces an item by id under a search keyword.
	// Returns true when the item was newly inserted.
	Upsert(ctx context.Context, keyword string, item model.Item) bool

	// Get returns the item with the given id.
	Get(ctx context.Context, id string) (model.Item, bool)

	// List returns all items in insertion order.
	List(ctx context.Context) []model.Item

	// ListByKeyword returns the items stored under a search keyword, in
	// insertion order.
	ListByKeyword(ctx context.Context, keyword string) []model.Item

	// Count returns the number of items tracked.
	Count(ctx context.Context) int
}
