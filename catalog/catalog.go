// Package catalog defines the place catalog collaborator: the ID-to-record
// resolution primitive behind hydration. Catalog CRUD itself lives outside
// this system.
package catalog

import (
	"context"
	"sort"
	"sync"

	placechat "github.com/wayfare-labs/place-chat-sdk"
)

// Catalog resolves place IDs into displayable records.
type Catalog interface {
	// Get returns the place or nil when it does not exist.
	Get(ctx context.Context, id string) (*placechat.Place, error)

	// GetBatch resolves many IDs at once. Unknown IDs are absent from the
	// result; the order of found records follows the requested order.
	GetBatch(ctx context.Context, ids []string) ([]placechat.Place, error)

	// All returns every place, used as the candidate set for ranking.
	All(ctx context.Context) ([]placechat.Place, error)
}

// memoryCatalog is an in-memory catalog.
type memoryCatalog struct {
	mu     sync.RWMutex
	places map[string]placechat.Place
}

// NewMemory creates an in-memory catalog seeded with the given places.
func NewMemory(places ...placechat.Place) Catalog {
	m := &memoryCatalog{places: make(map[string]placechat.Place, len(places))}
	for _, p := range places {
		m.places[p.ID] = p
	}
	return m
}

// Get returns the place or nil when it does not exist.
func (m *memoryCatalog) Get(ctx context.Context, id string) (*placechat.Place, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	p, ok := m.places[id]
	if !ok {
		return nil, nil
	}
	return &p, nil
}

// GetBatch resolves many IDs at once, skipping unknown ones.
func (m *memoryCatalog) GetBatch(ctx context.Context, ids []string) ([]placechat.Place, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	places := make([]placechat.Place, 0, len(ids))
	for _, id := range ids {
		if p, ok := m.places[id]; ok {
			places = append(places, p)
		}
	}
	return places, nil
}

// All returns every place, ordered by ID for determinism.
func (m *memoryCatalog) All(ctx context.Context) ([]placechat.Place, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	places := make([]placechat.Place, 0, len(m.places))
	for _, p := range m.places {
		places = append(places, p)
	}
	sort.Slice(places, func(i, j int) bool { return places[i].ID < places[j].ID })
	return places, nil
}
