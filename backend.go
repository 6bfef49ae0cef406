package placechat

import "context"

// SearchRequest is the payload of a search call. An empty ConversationID
// starts a new conversation; otherwise the prompt continues an existing one.
type SearchRequest struct {
	Prompt         string `json:"prompt"`
	ConversationID string `json:"conversationId,omitempty"`
}

// Backend is the session layer's view of the place-search API. HTTPBackend
// implements it over the REST endpoints; tests and embedded deployments can
// wire the server package in-process instead.
type Backend interface {
	// Search persists the prompt (creating the conversation if needed) and
	// returns the raw conversation including the new assistant turn.
	Search(ctx context.Context, req SearchRequest) (*RawConversation, error)

	// HydrateChat resolves every assistant turn of a raw conversation into
	// place records server-side.
	HydrateChat(ctx context.Context, conv *RawConversation) (*Conversation, error)

	// ResolvePlaces resolves place IDs into records. Unknown IDs are simply
	// absent from the result.
	ResolvePlaces(ctx context.Context, ids []string) ([]Place, error)

	// ListConversations returns one page of the caller's conversations,
	// most recent first.
	ListConversations(ctx context.Context, page, size int) (Page[RawConversation], error)

	// GetConversation fetches a single conversation by ID.
	GetConversation(ctx context.Context, id string) (*RawConversation, error)

	// DeleteConversation removes a conversation.
	DeleteConversation(ctx context.Context, id string) error

	// ToggleFavorite flips the place's membership in the caller's default
	// collection. The server decides add versus remove from its own current
	// state and responds with the authoritative collection list.
	ToggleFavorite(ctx context.Context, placeID string) ([]Collection, error)
}
