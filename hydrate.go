package placechat

import (
	"context"
	"log/slog"
)

// Hydrator resolves the place-ID lists carried by a raw conversation's
// assistant turns into full place records.
type Hydrator struct {
	backend Backend
	logger  *slog.Logger
}

// NewHydrator creates a hydrator resolving places through the given backend.
func NewHydrator(backend Backend, logger *slog.Logger) *Hydrator {
	if logger == nil {
		logger = slog.Default()
	}
	return &Hydrator{backend: backend, logger: logger}
}

// Hydrate turns a raw conversation into a hydrated one. All place IDs
// referenced across every assistant turn are deduplicated into a single
// resolution call. Within each turn the original ID order is preserved: it
// encodes the relevance ranking from the search step.
//
// A turn whose resolution partially or fully fails degrades to empty content;
// sibling turns and user turns are unaffected. Only a failure of the
// resolution call itself is returned as an error.
func (h *Hydrator) Hydrate(ctx context.Context, raw *RawConversation) (*Conversation, error) {
	byID := make(map[string]Place)

	if ids := raw.PlaceIDs(); len(ids) > 0 {
		places, err := h.backend.ResolvePlaces(ctx, ids)
		if err != nil {
			return nil, NewHydrationError(err)
		}
		for _, p := range places {
			byID[p.ID] = p
		}
	}

	conv := &Conversation{
		ID:        raw.ID,
		Title:     raw.Title,
		OwnerID:   raw.OwnerID,
		CreatedAt: raw.CreatedAt,
		Messages:  make([]Message, 0, len(raw.Messages)),
	}

	for _, msg := range raw.Messages {
		switch msg.Sender {
		case SenderAssistant:
			conv.Messages = append(conv.Messages, AssistantMessage{
				Places: h.remap(raw.ID, msg.Content, byID),
			})
		default:
			var text string
			if len(msg.Content) > 0 {
				text = msg.Content[0]
			}
			conv.Messages = append(conv.Messages, UserMessage{Text: text})
		}
	}

	return conv, nil
}

// remap maps one assistant turn's IDs back onto resolved records. Any
// unresolved ID empties the whole turn rather than rendering a partial list.
func (h *Hydrator) remap(conversationID string, ids []string, byID map[string]Place) []Place {
	places := make([]Place, 0, len(ids))
	for _, id := range ids {
		place, ok := byID[id]
		if !ok {
			h.logger.Warn("assistant turn references unresolved place",
				"conversationId", conversationID,
				"placeId", id,
			)
			return []Place{}
		}
		places = append(places, place)
	}
	return places
}
