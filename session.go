// Package placechat is a session layer for conversational place search. A
// Session optimistically renders prompts, turns them into persisted
// conversations through a Backend, hydrates assistant turns from place IDs
// into records, reveals results page by page, and keeps the sidebar directory
// and the user's saved-places collections reconciled with server state.
package placechat

import (
	"context"
	"log/slog"
	"sort"
	"strings"
	"sync"
)

// SessionState is the controller's lifecycle state.
type SessionState string

const (
	// StateIdle means no mutation is in flight.
	StateIdle SessionState = "idle"

	// StateSending means a prompt has been submitted and the search call is
	// outstanding.
	StateSending SessionState = "sending"

	// StateHydrating means the search returned and place resolution is
	// outstanding.
	StateHydrating SessionState = "hydrating"
)

// directoryPageSize is how many conversations one sidebar fetch requests.
const directoryPageSize = 20

// Session orchestrates one user's conversational search: it owns the active
// conversation's message list, drives prompt submission and hydration, and
// keeps the sidebar directory reconciled with conversation creation and
// deletion.
//
// Prompt submission is serialized per session: a new prompt is dropped while
// a previous one is sending or hydrating. Responses that arrive after the
// session moved on (conversation switched or reset) are discarded instead of
// mutating state for a dead view.
type Session struct {
	backend  Backend
	hydrator *Hydrator
	dir      *Directory
	revealer *Revealer
	navigate NavigateFunc
	logger   *slog.Logger

	mu             sync.Mutex
	state          SessionState
	conversationID string
	messages       []Message
	generation     uint64
	lastErr        error
}

// NewSession creates a session from the given config.
func NewSession(cfg Config) (*Session, error) {
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	cfg = cfg.withDefaults()

	return &Session{
		backend:  cfg.Backend,
		hydrator: NewHydrator(cfg.Backend, cfg.Logger),
		dir:      NewDirectory(),
		revealer: NewRevealer(cfg.PageSize),
		navigate: cfg.Navigate,
		logger:   cfg.Logger,
		state:    StateIdle,
	}, nil
}

// State returns the current lifecycle state.
func (s *Session) State() SessionState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// LastError returns the error surfaced by the most recent failed submission,
// or nil. Cleared on the next submission.
func (s *Session) LastError() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastErr
}

// ConversationID returns the active conversation's server ID, empty while the
// conversation is still pending or no conversation is selected.
func (s *Session) ConversationID() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.conversationID
}

// Messages returns a copy of the active conversation's message list.
func (s *Session) Messages() []Message {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]Message, len(s.messages))
	copy(out, s.messages)
	return out
}

// Directory returns the sidebar directory owned by this session.
func (s *Session) Directory() *Directory { return s.dir }

// SendPrompt submits a prompt for the active conversation. A blank prompt is
// a no-op: no network call, no state change. While a previous submission is
// in flight the call is dropped with ErrBusy.
//
// The user message is appended optimistically before any I/O, and for a
// brand-new conversation a pending sidebar summary titled with the prompt
// appears at the same moment. On success the whole local message list is
// replaced with the server's hydrated conversation - no merging - so the
// optimistic copy is superseded by the authoritative one. On failure the
// optimistic user message stays visible; the original product never rolled
// it back and this keeps that behavior.
func (s *Session) SendPrompt(ctx context.Context, text string) error {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil
	}

	s.mu.Lock()
	if s.state != StateIdle {
		s.mu.Unlock()
		return ErrBusy
	}

	wasNew := s.conversationID == ""
	s.messages = append(s.messages, UserMessage{Text: text})
	if wasNew {
		s.dir.UpsertPending(text, "")
	}
	s.state = StateSending
	s.lastErr = nil
	gen := s.generation
	conversationID := s.conversationID
	s.mu.Unlock()

	raw, err := s.backend.Search(ctx, SearchRequest{
		Prompt:         text,
		ConversationID: conversationID,
	})
	if err != nil {
		return s.fail(gen, "search", err)
	}

	s.mu.Lock()
	if gen != s.generation {
		s.mu.Unlock()
		return nil
	}
	s.state = StateHydrating
	s.mu.Unlock()

	conv, err := s.hydrator.Hydrate(ctx, raw)
	if err != nil {
		return s.fail(gen, "hydrate", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if gen != s.generation {
		return nil
	}

	s.adoptLocked(conv)
	if wasNew {
		s.dir.ReconcilePending(conv.ID)
	}
	s.state = StateIdle
	return nil
}

// LoadConversation fetches, hydrates and activates a stored conversation,
// e.g. when the user opens one from the sidebar.
func (s *Session) LoadConversation(ctx context.Context, id string) error {
	s.mu.Lock()
	if s.state != StateIdle {
		s.mu.Unlock()
		return ErrBusy
	}
	s.state = StateHydrating
	s.lastErr = nil
	s.generation++
	gen := s.generation
	s.mu.Unlock()

	raw, err := s.backend.GetConversation(ctx, id)
	if err != nil {
		return s.fail(gen, "load conversation", err)
	}

	conv, err := s.hydrator.Hydrate(ctx, raw)
	if err != nil {
		return s.fail(gen, "hydrate", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if gen != s.generation {
		return nil
	}

	s.adoptLocked(conv)
	s.state = StateIdle
	return nil
}

// DeleteConversation removes a conversation. The sidebar summary is only
// dropped once the server confirms; a failed delete leaves it in place and
// returns the error. Deleting the active conversation clears the session and
// triggers navigation to the conversation-less search route.
func (s *Session) DeleteConversation(ctx context.Context, id string) error {
	if err := s.backend.DeleteConversation(ctx, id); err != nil {
		s.logger.Error("conversation delete failed", "conversationId", id, "error", err)
		return NewTransportError("delete conversation", err)
	}

	s.dir.Delete(id)

	s.mu.Lock()
	active := s.conversationID == id
	if active {
		s.resetLocked()
	}
	s.mu.Unlock()

	if active {
		s.navigate()
	}
	return nil
}

// RefreshDirectory seeds the sidebar from the server, most recent first.
func (s *Session) RefreshDirectory(ctx context.Context) error {
	page, err := s.backend.ListConversations(ctx, 0, directoryPageSize)
	if err != nil {
		return NewTransportError("list conversations", err)
	}

	conversations := page.Payload
	sort.SliceStable(conversations, func(i, j int) bool {
		return conversations[i].CreatedAt.After(conversations[j].CreatedAt)
	})

	summaries := make([]ConversationSummary, 0, len(conversations))
	for _, conv := range conversations {
		summaries = append(summaries, ConversationSummary{ID: conv.ID, Title: conv.Title})
	}

	s.dir.Seed(summaries)
	return nil
}

// Reset clears the active conversation, returning the session to the
// conversation-less "new search" state. Any in-flight response for the old
// conversation is discarded when it lands.
func (s *Session) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.resetLocked()
}

// RevealMore exposes one more page of the latest assistant turn.
func (s *Session) RevealMore() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.revealer.RevealMore()
}

// CanRevealMore reports whether more of the latest assistant turn remains
// hidden.
func (s *Session) CanRevealMore() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.revealer.CanRevealMore()
}

// VisiblePlaces returns the exposed places of the message at the given index.
// Earlier assistant turns render fully; only the last one is paginated. User
// messages yield nil.
func (s *Session) VisiblePlaces(index int) []Place {
	s.mu.Lock()
	defer s.mu.Unlock()

	if index < 0 || index >= len(s.messages) {
		return nil
	}
	msg, ok := s.messages[index].(AssistantMessage)
	if !ok {
		return nil
	}
	return s.revealer.VisibleSlice(msg, index == s.lastAssistantIndexLocked())
}

func (s *Session) lastAssistantIndexLocked() int {
	for i := len(s.messages) - 1; i >= 0; i-- {
		if _, ok := s.messages[i].(AssistantMessage); ok {
			return i
		}
	}
	return -1
}

// adoptLocked replaces local state with the canonical hydrated conversation
// and re-arms the reveal cursor for its latest assistant turn.
func (s *Session) adoptLocked(conv *Conversation) {
	s.conversationID = conv.ID
	s.messages = conv.Messages

	if last, ok := conv.LastAssistantMessage(); ok {
		s.revealer.Reset(len(last.Places))
	} else {
		s.revealer.Reset(0)
	}
}

func (s *Session) resetLocked() {
	s.conversationID = ""
	s.messages = nil
	s.state = StateIdle
	s.lastErr = nil
	s.generation++
	s.revealer.Reset(0)
}

// fail records a submission failure and returns the surfaced error. Late
// failures for a superseded generation are swallowed.
func (s *Session) fail(gen uint64, operation string, err error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if gen != s.generation {
		return nil
	}

	s.state = StateIdle
	s.lastErr = NewTransportError(operation, err)
	s.logger.Error("prompt submission failed", "operation", operation, "error", err)
	return s.lastErr
}
