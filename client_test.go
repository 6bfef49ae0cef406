package placechat

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestHTTPBackend(t *testing.T) {
	ctx := context.Background()

	t.Run("search posts the prompt and decodes the raw conversation", func(t *testing.T) {
		ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.Method != http.MethodPost || r.URL.Path != "/places/search" {
				t.Errorf("got %s %s, want POST /places/search", r.Method, r.URL.Path)
			}
			var req SearchRequest
			if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
				t.Fatalf("decoding request: %v", err)
			}
			if req.Prompt != "tapas" || req.ConversationID != "42" {
				t.Errorf("request = %+v", req)
			}
			json.NewEncoder(w).Encode(RawConversation{
				ID:    "42",
				Title: "tapas",
				Messages: []RawMessage{
					{Sender: SenderUser, Content: []string{"tapas"}},
					{Sender: SenderAssistant, Content: []string{"p1"}},
				},
			})
		}))
		defer ts.Close()

		backend := NewHTTPBackend(ts.URL)
		conv, err := backend.Search(ctx, SearchRequest{Prompt: "tapas", ConversationID: "42"})
		if err != nil {
			t.Fatalf("Search: %v", err)
		}
		if conv.ID != "42" || len(conv.Messages) != 2 {
			t.Errorf("conversation = %+v", conv)
		}
	})

	t.Run("resolve places builds the comma-joined ids query", func(t *testing.T) {
		ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.URL.Path != "/places/batch" {
				t.Errorf("path = %s, want /places/batch", r.URL.Path)
			}
			if got := r.URL.Query().Get("ids"); got != "p1,p2" {
				t.Errorf("ids = %q, want p1,p2", got)
			}
			json.NewEncoder(w).Encode([]Place{{ID: "p1"}, {ID: "p2"}})
		}))
		defer ts.Close()

		backend := NewHTTPBackend(ts.URL)
		places, err := backend.ResolvePlaces(ctx, []string{"p1", "p2"})
		if err != nil {
			t.Fatalf("ResolvePlaces: %v", err)
		}
		if len(places) != 2 {
			t.Errorf("len(places) = %d, want 2", len(places))
		}
	})

	t.Run("resolve places with no ids skips the network", func(t *testing.T) {
		backend := NewHTTPBackend("http://unreachable.invalid")
		places, err := backend.ResolvePlaces(ctx, nil)
		if err != nil {
			t.Fatalf("ResolvePlaces: %v", err)
		}
		if places != nil {
			t.Errorf("places = %v, want nil", places)
		}
	})

	t.Run("hydrate chat round-trips the tagged message union", func(t *testing.T) {
		ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.URL.Path != "/places/batch-chat" {
				t.Errorf("path = %s, want /places/batch-chat", r.URL.Path)
			}
			var req struct {
				Chat *RawConversation `json:"chat"`
			}
			if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Chat == nil {
				t.Fatalf("decoding request: %v", err)
			}
			json.NewEncoder(w).Encode(Conversation{
				ID: req.Chat.ID,
				Messages: []Message{
					UserMessage{Text: "tapas"},
					AssistantMessage{Places: []Place{{ID: "p1", Name: "Bar Uno"}}},
				},
			})
		}))
		defer ts.Close()

		backend := NewHTTPBackend(ts.URL)
		conv, err := backend.HydrateChat(ctx, &RawConversation{ID: "42"})
		if err != nil {
			t.Fatalf("HydrateChat: %v", err)
		}
		user, ok := conv.Messages[0].(UserMessage)
		if !ok || user.Text != "tapas" {
			t.Errorf("messages[0] = %+v, want user message", conv.Messages[0])
		}
		assistant, ok := conv.Messages[1].(AssistantMessage)
		if !ok || assistant.Places[0].Name != "Bar Uno" {
			t.Errorf("messages[1] = %+v, want assistant message", conv.Messages[1])
		}
	})

	t.Run("toggle favorite returns the collection list", func(t *testing.T) {
		ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.URL.Path != "/places/toggle-favorite" {
				t.Errorf("path = %s, want /places/toggle-favorite", r.URL.Path)
			}
			var req struct {
				PlaceID string `json:"placeId"`
			}
			json.NewDecoder(r.Body).Decode(&req)
			if req.PlaceID != "p1" {
				t.Errorf("placeId = %q, want p1", req.PlaceID)
			}
			json.NewEncoder(w).Encode([]Collection{{ID: "c1", Name: DefaultCollectionName, PlacesIDs: []string{"p1"}}})
		}))
		defer ts.Close()

		backend := NewHTTPBackend(ts.URL)
		collections, err := backend.ToggleFavorite(ctx, "p1")
		if err != nil {
			t.Fatalf("ToggleFavorite: %v", err)
		}
		if len(collections) != 1 || !collections[0].Contains("p1") {
			t.Errorf("collections = %+v", collections)
		}
	})

	t.Run("error envelope decodes into a coded error", func(t *testing.T) {
		ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusNotFound)
			json.NewEncoder(w).Encode(ErrorResponse{Error: "conversation not found", Code: ErrCodeNotFound})
		}))
		defer ts.Close()

		backend := NewHTTPBackend(ts.URL)
		_, err := backend.GetConversation(ctx, "missing")
		if err == nil {
			t.Fatal("expected error")
		}
		var coded *Error
		if !errors.As(err, &coded) {
			t.Fatalf("error = %v, want *Error", err)
		}
		if coded.Code != ErrCodeNotFound {
			t.Errorf("code = %q, want %q", coded.Code, ErrCodeNotFound)
		}
	})

	t.Run("bare error statuses map to default codes", func(t *testing.T) {
		ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusBadRequest)
		}))
		defer ts.Close()

		backend := NewHTTPBackend(ts.URL)
		_, err := backend.Search(ctx, SearchRequest{Prompt: "x"})
		var coded *Error
		if !errors.As(err, &coded) || coded.Code != ErrCodeValidation {
			t.Errorf("error = %v, want validation-coded error", err)
		}
	})

	t.Run("request decorator runs on every call", func(t *testing.T) {
		ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if got := r.Header.Get("X-User-ID"); got != "u1" {
				t.Errorf("X-User-ID = %q, want u1", got)
			}
			w.WriteHeader(http.StatusNoContent)
		}))
		defer ts.Close()

		backend := NewHTTPBackend(ts.URL, WithRequestDecorator(func(req *http.Request) {
			req.Header.Set("X-User-ID", "u1")
		}))
		if err := backend.DeleteConversation(ctx, "42"); err != nil {
			t.Fatalf("DeleteConversation: %v", err)
		}
	})
}
