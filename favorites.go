package placechat

import (
	"context"
	"log/slog"
	"sync"
)

// Favorites mirrors the user's collections locally and toggles a place's
// membership in the default saved collection optimistically, reconciling the
// cache against the server's authoritative response once the toggle settles.
type Favorites struct {
	backend Backend
	logger  *slog.Logger

	mu          sync.Mutex
	collections []Collection
	inFlight    bool
}

// NewFavorites creates a favorites reconciler over the given backend.
func NewFavorites(backend Backend, logger *slog.Logger) *Favorites {
	if logger == nil {
		logger = slog.Default()
	}
	return &Favorites{backend: backend, logger: logger}
}

// SetCollections replaces the cached collection set, e.g. from a profile
// refresh. Writers treat the cache as last-write-wins; no merging.
func (f *Favorites) SetCollections(collections []Collection) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.collections = make([]Collection, len(collections))
	copy(f.collections, collections)
}

// Collections returns a copy of the cached collection set.
func (f *Favorites) Collections() []Collection {
	f.mu.Lock()
	defer f.mu.Unlock()

	out := make([]Collection, len(f.collections))
	copy(out, f.collections)
	return out
}

// IsFavorite reports whether the place appears in any cached collection.
// Purely derived from the cache; no network call.
func (f *Favorites) IsFavorite(placeID string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()

	for _, c := range f.collections {
		if c.Contains(placeID) {
			return true
		}
	}
	return false
}

// Toggle flips the place's saved state. The cache flips immediately for UI
// feedback; the server then decides add versus remove from its own state and
// its response replaces the cache wholesale, superseding the optimistic
// guess even when the guess was right.
//
// While a toggle is in flight further calls are dropped with ErrBusy - one
// global in-flight mutation, no queueing. On a failed call the optimistic
// flip is left standing (original behavior, kept deliberately) and the error
// is returned for surfacing.
func (f *Favorites) Toggle(ctx context.Context, placeID string) error {
	f.mu.Lock()
	if f.inFlight {
		f.mu.Unlock()
		return ErrBusy
	}
	f.inFlight = true
	f.flipLocked(placeID)
	f.mu.Unlock()

	collections, err := f.backend.ToggleFavorite(ctx, placeID)

	f.mu.Lock()
	defer f.mu.Unlock()
	f.inFlight = false

	if err != nil {
		f.logger.Error("favorite toggle failed", "placeId", placeID, "error", err)
		return NewTransportError("toggle favorite", err)
	}

	f.collections = collections
	return nil
}

// flipLocked applies the optimistic membership flip to the cached default
// collection, creating a local placeholder when the user has none yet.
func (f *Favorites) flipLocked(placeID string) {
	for i := range f.collections {
		if f.collections[i].Name != DefaultCollectionName {
			continue
		}
		c := &f.collections[i]
		for j, id := range c.PlacesIDs {
			if id == placeID {
				c.PlacesIDs = append(c.PlacesIDs[:j], c.PlacesIDs[j+1:]...)
				return
			}
		}
		c.PlacesIDs = append(c.PlacesIDs, placeID)
		return
	}

	// No default collection cached yet; the server will create the real one.
	f.collections = append(f.collections, Collection{
		Name:      DefaultCollectionName,
		PlacesIDs: []string{placeID},
	})
}
