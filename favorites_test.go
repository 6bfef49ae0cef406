package placechat

import (
	"context"
	"errors"
	"testing"
)

func TestFavorites(t *testing.T) {
	ctx := context.Background()

	t.Run("is-favorite derives from the cache only", func(t *testing.T) {
		backend := &mockBackend{}
		f := NewFavorites(backend, nil)
		f.SetCollections([]Collection{
			{ID: "c1", Name: DefaultCollectionName, PlacesIDs: []string{"p1"}},
			{ID: "c2", Name: "Weekend Trip", PlacesIDs: []string{"p2"}},
		})

		if !f.IsFavorite("p1") {
			t.Error("IsFavorite(p1) = false, want true")
		}
		if !f.IsFavorite("p2") {
			t.Error("IsFavorite(p2) = false, want true for a non-default collection")
		}
		if f.IsFavorite("p3") {
			t.Error("IsFavorite(p3) = true, want false")
		}
	})

	t.Run("toggle flips optimistically and adopts the server state", func(t *testing.T) {
		var sawFlip bool
		var f *Favorites
		backend := &mockBackend{}
		backend.toggleFunc = func(ctx context.Context, placeID string) ([]Collection, error) {
			// The optimistic flip is already visible while the call runs.
			sawFlip = f.IsFavorite(placeID)
			return []Collection{
				{ID: "c1", Name: DefaultCollectionName, OwnerID: "u1", PlacesIDs: []string{placeID}},
			}, nil
		}
		f = NewFavorites(backend, nil)

		if err := f.Toggle(ctx, "p1"); err != nil {
			t.Fatalf("Toggle: %v", err)
		}
		if !sawFlip {
			t.Error("optimistic flip not visible during the call")
		}
		if !f.IsFavorite("p1") {
			t.Error("IsFavorite(p1) = false after confirmed toggle")
		}
		collections := f.Collections()
		if len(collections) != 1 || collections[0].ID != "c1" {
			t.Errorf("collections = %+v, want the server's list verbatim", collections)
		}
	})

	t.Run("server response wins even against the optimistic guess", func(t *testing.T) {
		backend := &mockBackend{
			toggleFunc: func(ctx context.Context, placeID string) ([]Collection, error) {
				// The server saw the place as already saved and removed it.
				return []Collection{
					{ID: "c1", Name: DefaultCollectionName, PlacesIDs: []string{}},
				}, nil
			},
		}
		f := NewFavorites(backend, nil)

		if err := f.Toggle(ctx, "p1"); err != nil {
			t.Fatalf("Toggle: %v", err)
		}
		if f.IsFavorite("p1") {
			t.Error("IsFavorite(p1) = true, want the server's removal to stick")
		}
	})

	t.Run("second toggle while one is in flight is dropped", func(t *testing.T) {
		var f *Favorites
		var busyErr error
		calls := 0
		backend := &mockBackend{}
		backend.toggleFunc = func(ctx context.Context, placeID string) ([]Collection, error) {
			calls++
			busyErr = f.Toggle(ctx, "p2")
			return nil, nil
		}
		f = NewFavorites(backend, nil)

		if err := f.Toggle(ctx, "p1"); err != nil {
			t.Fatalf("Toggle: %v", err)
		}
		if !errors.Is(busyErr, ErrBusy) {
			t.Errorf("concurrent Toggle error = %v, want ErrBusy", busyErr)
		}
		if calls != 1 {
			t.Errorf("backend called %d times, want 1", calls)
		}
	})

	t.Run("failed toggle leaves the flip standing", func(t *testing.T) {
		backend := &mockBackend{
			toggleFunc: func(ctx context.Context, placeID string) ([]Collection, error) {
				return nil, errors.New("boom")
			},
		}
		f := NewFavorites(backend, nil)

		if err := f.Toggle(ctx, "p1"); err == nil {
			t.Fatal("expected error")
		}
		if !f.IsFavorite("p1") {
			t.Error("optimistic flip rolled back on failure")
		}

		// The guard releases; the next toggle goes through.
		backend.toggleFunc = func(ctx context.Context, placeID string) ([]Collection, error) {
			return []Collection{}, nil
		}
		if err := f.Toggle(ctx, "p1"); err != nil {
			t.Fatalf("Toggle after failure: %v", err)
		}
		if f.IsFavorite("p1") {
			t.Error("IsFavorite(p1) = true, want the server's empty list adopted")
		}
	})

	t.Run("toggle without a cached default collection creates a placeholder", func(t *testing.T) {
		var f *Favorites
		var placeholderSeen bool
		backend := &mockBackend{}
		backend.toggleFunc = func(ctx context.Context, placeID string) ([]Collection, error) {
			placeholderSeen = f.IsFavorite(placeID)
			return []Collection{
				{ID: "c1", Name: DefaultCollectionName, OwnerID: "u1", PlacesIDs: []string{placeID}},
			}, nil
		}
		f = NewFavorites(backend, nil)

		if err := f.Toggle(ctx, "p1"); err != nil {
			t.Fatalf("Toggle: %v", err)
		}
		if !placeholderSeen {
			t.Error("placeholder collection not visible during the call")
		}
		collections := f.Collections()
		if len(collections) != 1 || collections[0].ID != "c1" {
			t.Errorf("collections = %+v, want the server-created collection", collections)
		}
	})
}
