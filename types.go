package placechat

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Sender identifies which side of the conversation produced a message.
type Sender string

const (
	// SenderUser marks a message written by the user.
	SenderUser Sender = "USER"

	// SenderAssistant marks a message produced by the search assistant.
	SenderAssistant Sender = "AI"
)

// DefaultCollectionName is the reserved name of the user's saved-places
// collection. The collection is created lazily on the first favorite toggle.
const DefaultCollectionName = "Saved Places"

// Coordinate is a geographic point.
type Coordinate struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// Location describes where a place is.
type Location struct {
	Address    string     `json:"address"`
	City       string     `json:"city"`
	Country    string     `json:"country"`
	Coordinate Coordinate `json:"coordinate"`
}

// Tag is a localized label attached to a place.
type Tag struct {
	Lang string `json:"lang"`
	Name string `json:"name"`
}

// Place is a displayable catalog record. The session layer treats it as
// opaque: it is resolved by hydration and rendered by the app.
type Place struct {
	ID          string   `json:"id"`
	Name        string   `json:"name"`
	Description string   `json:"description,omitempty"`
	Location    Location `json:"location"`
	CategoryID  string   `json:"categoryId,omitempty"`
	Tags        []Tag    `json:"tags,omitempty"`
	Pictures    []string `json:"pictures,omitempty"`
	Rating      float64  `json:"rating"`
}

// Collection is a named set of saved places owned by one user.
type Collection struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	OwnerID   string    `json:"ownerId"`
	PlacesIDs []string  `json:"placesIds"`
	CreatedAt time.Time `json:"createdAt"`
}

// Contains reports whether the collection holds the given place.
func (c Collection) Contains(placeID string) bool {
	for _, id := range c.PlacesIDs {
		if id == placeID {
			return true
		}
	}
	return false
}

// RawMessage is the persisted form of a conversation turn. User turns carry a
// single-element array holding the prompt text; assistant turns carry place
// IDs in relevance order.
type RawMessage struct {
	Sender  Sender   `json:"sender"`
	Content []string `json:"content"`
}

// RawConversation is a conversation as the backend stores and returns it,
// before hydration. ID is empty until the server assigns one.
type RawConversation struct {
	ID        string       `json:"id"`
	Title     string       `json:"title"`
	OwnerID   string       `json:"ownerId,omitempty"`
	Messages  []RawMessage `json:"messages"`
	CreatedAt time.Time    `json:"createdAt"`
}

// PlaceIDs returns the deduplicated place IDs referenced by all assistant
// turns, in first-seen order.
func (c *RawConversation) PlaceIDs() []string {
	seen := make(map[string]struct{})
	var ids []string
	for _, msg := range c.Messages {
		if msg.Sender != SenderAssistant {
			continue
		}
		for _, id := range msg.Content {
			if _, ok := seen[id]; ok {
				continue
			}
			seen[id] = struct{}{}
			ids = append(ids, id)
		}
	}
	return ids
}

// Message is one hydrated conversation turn: either a UserMessage or an
// AssistantMessage. The type is sealed so every consumer switches over the
// two concrete forms.
type Message interface {
	Sender() Sender

	sealed()
}

// UserMessage is a prompt written by the user.
type UserMessage struct {
	Text string
}

// Sender implements Message.
func (UserMessage) Sender() Sender { return SenderUser }

func (UserMessage) sealed() {}

// MarshalJSON writes the wire form {"sender":"USER","content":["..."]}.
func (m UserMessage) MarshalJSON() ([]byte, error) {
	return json.Marshal(wireMessage{Sender: SenderUser, Content: []string{m.Text}})
}

// AssistantMessage is a resolved assistant turn: full place records in the
// relevance order produced by the search step.
type AssistantMessage struct {
	Places []Place
}

// Sender implements Message.
func (AssistantMessage) Sender() Sender { return SenderAssistant }

func (AssistantMessage) sealed() {}

// MarshalJSON writes the wire form {"sender":"AI","content":[<places>]}.
func (m AssistantMessage) MarshalJSON() ([]byte, error) {
	places := m.Places
	if places == nil {
		places = []Place{}
	}
	return json.Marshal(wireMessage{Sender: SenderAssistant, Content: places})
}

type wireMessage struct {
	Sender  Sender `json:"sender"`
	Content any    `json:"content"`
}

// Conversation is a fully hydrated conversation: every assistant turn holds
// place records instead of place IDs. A conversation value is either fully
// raw (RawConversation) or fully hydrated; the two never mix.
type Conversation struct {
	ID        string
	Title     string
	OwnerID   string
	Messages  []Message
	CreatedAt time.Time
}

// MarshalJSON writes the batch-chat wire format.
func (c Conversation) MarshalJSON() ([]byte, error) {
	type wire struct {
		ID        string    `json:"id"`
		Title     string    `json:"title"`
		OwnerID   string    `json:"ownerId,omitempty"`
		Messages  []Message `json:"messages"`
		CreatedAt time.Time `json:"createdAt"`
	}
	messages := c.Messages
	if messages == nil {
		messages = []Message{}
	}
	return json.Marshal(wire{
		ID:        c.ID,
		Title:     c.Title,
		OwnerID:   c.OwnerID,
		Messages:  messages,
		CreatedAt: c.CreatedAt,
	})
}

// UnmarshalJSON reads the batch-chat wire format, dispatching each message on
// its sender tag.
func (c *Conversation) UnmarshalJSON(data []byte) error {
	var wire struct {
		ID        string            `json:"id"`
		Title     string            `json:"title"`
		OwnerID   string            `json:"ownerId"`
		Messages  []json.RawMessage `json:"messages"`
		CreatedAt time.Time         `json:"createdAt"`
	}
	if err := json.Unmarshal(data, &wire); err != nil {
		return err
	}

	c.ID = wire.ID
	c.Title = wire.Title
	c.OwnerID = wire.OwnerID
	c.CreatedAt = wire.CreatedAt
	c.Messages = make([]Message, 0, len(wire.Messages))

	for i, raw := range wire.Messages {
		var probe struct {
			Sender  Sender          `json:"sender"`
			Content json.RawMessage `json:"content"`
		}
		if err := json.Unmarshal(raw, &probe); err != nil {
			return fmt.Errorf("decoding message %d: %w", i, err)
		}

		switch probe.Sender {
		case SenderUser:
			var texts []string
			if err := json.Unmarshal(probe.Content, &texts); err != nil {
				return fmt.Errorf("decoding user message %d: %w", i, err)
			}
			var text string
			if len(texts) > 0 {
				text = texts[0]
			}
			c.Messages = append(c.Messages, UserMessage{Text: text})

		case SenderAssistant:
			var places []Place
			if err := json.Unmarshal(probe.Content, &places); err != nil {
				return fmt.Errorf("decoding assistant message %d: %w", i, err)
			}
			c.Messages = append(c.Messages, AssistantMessage{Places: places})

		default:
			return fmt.Errorf("message %d: unknown sender %q", i, probe.Sender)
		}
	}

	return nil
}

// LastAssistantMessage returns the conversation's final assistant turn, or
// false when there is none. Only this turn is paginated by the revealer.
func (c *Conversation) LastAssistantMessage() (AssistantMessage, bool) {
	for i := len(c.Messages) - 1; i >= 0; i-- {
		if msg, ok := c.Messages[i].(AssistantMessage); ok {
			return msg, true
		}
	}
	return AssistantMessage{}, false
}

// ConversationSummary is the directory's projection of a conversation. A
// summary with an empty ID is pending: it represents an optimistic
// conversation the server has not yet assigned an ID to.
type ConversationSummary struct {
	ID    string `json:"id"`
	Title string `json:"title"`
}

// Pending reports whether the summary still awaits a server-assigned ID.
func (s ConversationSummary) Pending() bool { return s.ID == "" }

// Page is the pagination envelope used by list endpoints.
type Page[T any] struct {
	Payload []T `json:"payload"`
	Number  int `json:"page"`
	Size    int `json:"size"`
	Total   int `json:"total"`
}

// NewConversationID generates a new conversation ID.
func NewConversationID() string {
	return uuid.New().String()
}

// NewCollectionID generates a new collection ID.
func NewCollectionID() string {
	return uuid.New().String()
}
