package store

import (
	"context"
	"sort"
	"sync"

	placechat "github.com/wayfare-labs/place-chat-sdk"
)

// memoryConversationStore is an in-memory conversation store.
type memoryConversationStore struct {
	mu            sync.RWMutex
	conversations map[string]*placechat.RawConversation
}

// NewMemoryConversationStore creates a new in-memory conversation store.
func NewMemoryConversationStore() ConversationStore {
	return &memoryConversationStore{
		conversations: make(map[string]*placechat.RawConversation),
	}
}

// Get retrieves a conversation by ID.
func (s *memoryConversationStore) Get(ctx context.Context, id string) (*placechat.RawConversation, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	conv, ok := s.conversations[id]
	if !ok {
		return nil, nil
	}
	clone := cloneConversation(conv)
	return &clone, nil
}

// Save inserts or replaces a conversation.
func (s *memoryConversationStore) Save(ctx context.Context, conv *placechat.RawConversation) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	clone := cloneConversation(conv)
	s.conversations[conv.ID] = &clone
	return nil
}

// Delete removes a conversation.
func (s *memoryConversationStore) Delete(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.conversations, id)
	return nil
}

// ListByOwner returns one page of the owner's conversations, newest first.
func (s *memoryConversationStore) ListByOwner(ctx context.Context, ownerID string, page, size int) ([]*placechat.RawConversation, int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var owned []*placechat.RawConversation
	for _, conv := range s.conversations {
		if conv.OwnerID == ownerID {
			clone := cloneConversation(conv)
			owned = append(owned, &clone)
		}
	}

	sort.Slice(owned, func(i, j int) bool {
		return owned[i].CreatedAt.After(owned[j].CreatedAt)
	})

	total := len(owned)
	start := page * size
	if start >= total {
		return nil, total, nil
	}
	end := min(start+size, total)
	return owned[start:end], total, nil
}

// memoryCollectionStore is an in-memory collection store.
type memoryCollectionStore struct {
	mu          sync.RWMutex
	collections map[string]placechat.Collection
}

// NewMemoryCollectionStore creates a new in-memory collection store.
func NewMemoryCollectionStore() CollectionStore {
	return &memoryCollectionStore{
		collections: make(map[string]placechat.Collection),
	}
}

// ListByOwner returns all collections owned by the user.
func (s *memoryCollectionStore) ListByOwner(ctx context.Context, ownerID string) ([]placechat.Collection, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var owned []placechat.Collection
	for _, c := range s.collections {
		if c.OwnerID == ownerID {
			c.PlacesIDs = append([]string(nil), c.PlacesIDs...)
			owned = append(owned, c)
		}
	}

	sort.Slice(owned, func(i, j int) bool {
		return owned[i].CreatedAt.Before(owned[j].CreatedAt)
	})
	return owned, nil
}

// Save inserts or replaces a collection.
func (s *memoryCollectionStore) Save(ctx context.Context, collection *placechat.Collection) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	c := *collection
	c.PlacesIDs = append([]string(nil), c.PlacesIDs...)
	s.collections[c.ID] = c
	return nil
}

func cloneConversation(conv *placechat.RawConversation) placechat.RawConversation {
	clone := *conv
	clone.Messages = make([]placechat.RawMessage, len(conv.Messages))
	for i, msg := range conv.Messages {
		msg.Content = append([]string(nil), msg.Content...)
		clone.Messages[i] = msg
	}
	return clone
}
