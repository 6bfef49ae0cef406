package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	placechat "github.com/wayfare-labs/place-chat-sdk"
	"github.com/wayfare-labs/place-chat-sdk/ranker"
)

func (s *Server) healthHandler(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "healthy"})
}

// searchHandler persists the prompt and answers with the raw conversation:
// the new assistant turn carries place IDs, not records. A missing
// conversationId starts a new conversation titled with the prompt; the title
// never changes afterwards.
func (s *Server) searchHandler(w http.ResponseWriter, r *http.Request) {
	userID, ok := s.authenticate(w, r)
	if !ok {
		return
	}

	var req placechat.SearchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, placechat.ErrCodeValidation, "invalid request body")
		return
	}

	prompt := strings.TrimSpace(req.Prompt)
	if prompt == "" {
		writeError(w, http.StatusBadRequest, placechat.ErrCodeValidation, "prompt is required")
		return
	}

	var conv *placechat.RawConversation
	if req.ConversationID != "" {
		existing, err := s.conversations.Get(r.Context(), req.ConversationID)
		if err != nil {
			s.handleError(w, err)
			return
		}
		if existing == nil || existing.OwnerID != userID {
			writeError(w, http.StatusNotFound, placechat.ErrCodeNotFound, "conversation not found")
			return
		}
		conv = existing
	} else {
		conv = &placechat.RawConversation{
			ID:        placechat.NewConversationID(),
			Title:     prompt,
			OwnerID:   userID,
			CreatedAt: time.Now(),
		}
	}

	history := userPrompts(conv)
	conv.Messages = append(conv.Messages, placechat.RawMessage{
		Sender:  placechat.SenderUser,
		Content: []string{prompt},
	})

	candidates, err := s.catalog.All(r.Context())
	if err != nil {
		s.handleError(w, err)
		return
	}

	ids, err := s.ranker.Rank(r.Context(), ranker.Query{
		Prompt:     prompt,
		History:    history,
		Candidates: candidates,
		Limit:      s.searchLimit,
	})
	if err != nil {
		s.logger.Error("ranking failed", "conversationId", conv.ID, "error", err)
		writeError(w, http.StatusBadGateway, placechat.ErrCodeRanking, "place ranking failed")
		return
	}
	if ids == nil {
		ids = []string{}
	}

	conv.Messages = append(conv.Messages, placechat.RawMessage{
		Sender:  placechat.SenderAssistant,
		Content: ids,
	})

	if err := s.conversations.Save(r.Context(), conv); err != nil {
		s.handleError(w, err)
		return
	}

	s.metrics.searches.Inc()
	writeJSON(w, http.StatusOK, conv)
}

// batchChatHandler hydrates every assistant turn of the submitted
// conversation. A turn whose places cannot all be resolved degrades to empty
// content; sibling turns and user turns are unaffected.
func (s *Server) batchChatHandler(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Chat *placechat.RawConversation `json:"chat"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Chat == nil {
		writeError(w, http.StatusBadRequest, placechat.ErrCodeValidation, "chat is required")
		return
	}

	raw := req.Chat
	conv := placechat.Conversation{
		ID:        raw.ID,
		Title:     raw.Title,
		OwnerID:   raw.OwnerID,
		CreatedAt: raw.CreatedAt,
		Messages:  make([]placechat.Message, 0, len(raw.Messages)),
	}

	for _, msg := range raw.Messages {
		switch msg.Sender {
		case placechat.SenderAssistant:
			conv.Messages = append(conv.Messages, placechat.AssistantMessage{
				Places: s.resolveTurn(r, raw.ID, msg.Content),
			})
		default:
			var text string
			if len(msg.Content) > 0 {
				text = msg.Content[0]
			}
			conv.Messages = append(conv.Messages, placechat.UserMessage{Text: text})
		}
	}

	writeJSON(w, http.StatusOK, conv)
}

// resolveTurn resolves one assistant turn's IDs, degrading the whole turn to
// empty on any failure.
func (s *Server) resolveTurn(r *http.Request, conversationID string, ids []string) []placechat.Place {
	places, err := s.catalog.GetBatch(r.Context(), ids)
	if err != nil || len(places) != len(ids) {
		s.logger.Warn("assistant turn degraded to empty",
			"conversationId", conversationID,
			"requested", len(ids),
			"resolved", len(places),
			"error", err,
		)
		return []placechat.Place{}
	}
	return places
}

func (s *Server) batchHandler(w http.ResponseWriter, r *http.Request) {
	raw := r.URL.Query().Get("ids")
	if raw == "" {
		writeError(w, http.StatusBadRequest, placechat.ErrCodeValidation, "ids is required")
		return
	}

	places, err := s.catalog.GetBatch(r.Context(), strings.Split(raw, ","))
	if err != nil {
		s.handleError(w, err)
		return
	}
	if places == nil {
		places = []placechat.Place{}
	}

	writeJSON(w, http.StatusOK, places)
}

func (s *Server) listConversationsHandler(w http.ResponseWriter, r *http.Request) {
	userID, ok := s.authenticate(w, r)
	if !ok {
		return
	}

	page := queryInt(r, "page", 0)
	size := queryInt(r, "size", 20)

	conversations, total, err := s.conversations.ListByOwner(r.Context(), userID, page, size)
	if err != nil {
		s.handleError(w, err)
		return
	}

	payload := make([]placechat.RawConversation, 0, len(conversations))
	for _, conv := range conversations {
		payload = append(payload, *conv)
	}

	writeJSON(w, http.StatusOK, placechat.Page[placechat.RawConversation]{
		Payload: payload,
		Number:  page,
		Size:    size,
		Total:   total,
	})
}

func (s *Server) getConversationHandler(w http.ResponseWriter, r *http.Request) {
	userID, ok := s.authenticate(w, r)
	if !ok {
		return
	}

	id := chi.URLParam(r, "id")
	conv, err := s.conversations.Get(r.Context(), id)
	if err != nil {
		s.handleError(w, err)
		return
	}
	if conv == nil || conv.OwnerID != userID {
		writeError(w, http.StatusNotFound, placechat.ErrCodeNotFound, "conversation not found")
		return
	}

	writeJSON(w, http.StatusOK, conv)
}

func (s *Server) deleteConversationHandler(w http.ResponseWriter, r *http.Request) {
	userID, ok := s.authenticate(w, r)
	if !ok {
		return
	}

	id := chi.URLParam(r, "id")
	conv, err := s.conversations.Get(r.Context(), id)
	if err != nil {
		s.handleError(w, err)
		return
	}
	if conv == nil || conv.OwnerID != userID {
		writeError(w, http.StatusNotFound, placechat.ErrCodeNotFound, "conversation not found")
		return
	}

	if err := s.conversations.Delete(r.Context(), id); err != nil {
		s.handleError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// toggleFavoriteHandler flips the place's membership in the caller's default
// collection. The decision is made against the collection's current stored
// state - the client's optimistic guess is advisory only. The collection is
// created lazily on first use. The response is the caller's full collection
// list, the authoritative post-toggle state.
func (s *Server) toggleFavoriteHandler(w http.ResponseWriter, r *http.Request) {
	userID, ok := s.authenticate(w, r)
	if !ok {
		return
	}

	var req struct {
		PlaceID string `json:"placeId"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.PlaceID == "" {
		writeError(w, http.StatusBadRequest, placechat.ErrCodeValidation, "placeId is required")
		return
	}

	collections, err := s.collections.ListByOwner(r.Context(), userID)
	if err != nil {
		s.handleError(w, err)
		return
	}

	var target *placechat.Collection
	for i := range collections {
		if collections[i].Name == placechat.DefaultCollectionName {
			target = &collections[i]
			break
		}
	}

	if target == nil {
		created := placechat.Collection{
			ID:        placechat.NewCollectionID(),
			Name:      placechat.DefaultCollectionName,
			OwnerID:   userID,
			PlacesIDs: []string{req.PlaceID},
			CreatedAt: time.Now(),
		}
		if err := s.collections.Save(r.Context(), &created); err != nil {
			s.handleError(w, err)
			return
		}
	} else {
		if target.Contains(req.PlaceID) {
			kept := make([]string, 0, len(target.PlacesIDs))
			for _, id := range target.PlacesIDs {
				if id != req.PlaceID {
					kept = append(kept, id)
				}
			}
			target.PlacesIDs = kept
		} else {
			target.PlacesIDs = append(target.PlacesIDs, req.PlaceID)
		}
		if err := s.collections.Save(r.Context(), target); err != nil {
			s.handleError(w, err)
			return
		}
	}

	updated, err := s.collections.ListByOwner(r.Context(), userID)
	if err != nil {
		s.handleError(w, err)
		return
	}
	if updated == nil {
		updated = []placechat.Collection{}
	}

	s.metrics.toggles.Inc()
	writeJSON(w, http.StatusOK, updated)
}

// authenticate resolves the calling user, writing a 401 on failure.
func (s *Server) authenticate(w http.ResponseWriter, r *http.Request) (string, bool) {
	userID, err := s.auth(r)
	if err != nil {
		writeError(w, http.StatusUnauthorized, placechat.ErrCodeUnauthorized, "unauthorized")
		return "", false
	}
	return userID, true
}

func (s *Server) handleError(w http.ResponseWriter, err error) {
	var coded *placechat.Error
	if errors.As(err, &coded) {
		writeError(w, codeToStatus(coded.Code), coded.Code, coded.Message)
		return
	}

	s.logger.Error("request failed", "error", err)
	writeError(w, http.StatusInternalServerError, placechat.ErrCodeInternal, "internal error")
}

func codeToStatus(code string) int {
	switch code {
	case placechat.ErrCodeValidation:
		return http.StatusBadRequest
	case placechat.ErrCodeNotFound:
		return http.StatusNotFound
	case placechat.ErrCodeUnauthorized:
		return http.StatusUnauthorized
	case placechat.ErrCodeRanking:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

// userPrompts collects the conversation's earlier user prompts, oldest first.
func userPrompts(conv *placechat.RawConversation) []string {
	var prompts []string
	for _, msg := range conv.Messages {
		if msg.Sender == placechat.SenderUser && len(msg.Content) > 0 {
			prompts = append(prompts, msg.Content[0])
		}
	}
	return prompts
}

func queryInt(r *http.Request, key string, fallback int) int {
	raw := r.URL.Query().Get(key)
	if raw == "" {
		return fallback
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 0 {
		return fallback
	}
	return n
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, placechat.ErrorResponse{Error: message, Code: code})
}
