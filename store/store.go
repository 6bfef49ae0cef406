// Package store defines persistence for conversations and collections and
// provides in-memory implementations. Postgres implementations live in the
// postgres subpackage.
package store

import (
	"context"

	placechat "github.com/wayfare-labs/place-chat-sdk"
)

// ConversationStore persists raw conversations.
type ConversationStore interface {
	// Get returns the conversation or nil when it does not exist.
	Get(ctx context.Context, id string) (*placechat.RawConversation, error)

	// Save inserts or replaces a conversation.
	Save(ctx context.Context, conv *placechat.RawConversation) error

	// Delete removes a conversation. Deleting a missing conversation is not
	// an error.
	Delete(ctx context.Context, id string) error

	// ListByOwner returns one page of the owner's conversations ordered
	// most recent first, plus the owner's total count.
	ListByOwner(ctx context.Context, ownerID string, page, size int) ([]*placechat.RawConversation, int, error)
}

// CollectionStore persists place collections.
type CollectionStore interface {
	// ListByOwner returns all collections owned by the user.
	ListByOwner(ctx context.Context, ownerID string) ([]placechat.Collection, error)

	// Save inserts or replaces a collection.
	Save(ctx context.Context, collection *placechat.Collection) error
}
