package placechat

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// ErrorResponse is the error envelope returned by the HTTP API.
type ErrorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code,omitempty"`
}

// HTTPBackend implements Backend against the REST API.
type HTTPBackend struct {
	baseURL    string
	httpClient *http.Client
	decorate   func(*http.Request)
}

// BackendOption configures an HTTPBackend.
type BackendOption func(*HTTPBackend)

// WithHTTPClient overrides the underlying HTTP client.
func WithHTTPClient(client *http.Client) BackendOption {
	return func(b *HTTPBackend) {
		b.httpClient = client
	}
}

// WithRequestDecorator registers a hook run on every outgoing request, e.g.
// to attach session credentials. Identity issuance itself lives outside this
// SDK.
func WithRequestDecorator(decorate func(*http.Request)) BackendOption {
	return func(b *HTTPBackend) {
		b.decorate = decorate
	}
}

// NewHTTPBackend creates a backend talking to the API at baseURL.
func NewHTTPBackend(baseURL string, opts ...BackendOption) *HTTPBackend {
	b := &HTTPBackend{
		baseURL:    strings.TrimSuffix(baseURL, "/"),
		httpClient: &http.Client{Timeout: 60 * time.Second},
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Search implements Backend.
func (b *HTTPBackend) Search(ctx context.Context, req SearchRequest) (*RawConversation, error) {
	var conv RawConversation
	if err := b.post(ctx, "/places/search", req, &conv); err != nil {
		return nil, err
	}
	return &conv, nil
}

// HydrateChat implements Backend.
func (b *HTTPBackend) HydrateChat(ctx context.Context, conv *RawConversation) (*Conversation, error) {
	body := struct {
		Chat *RawConversation `json:"chat"`
	}{Chat: conv}

	var hydrated Conversation
	if err := b.post(ctx, "/places/batch-chat", body, &hydrated); err != nil {
		return nil, err
	}
	return &hydrated, nil
}

// ResolvePlaces implements Backend.
func (b *HTTPBackend) ResolvePlaces(ctx context.Context, ids []string) ([]Place, error) {
	if len(ids) == 0 {
		return nil, nil
	}

	var places []Place
	path := "/places/batch?ids=" + url.QueryEscape(strings.Join(ids, ","))
	if err := b.get(ctx, path, &places); err != nil {
		return nil, err
	}
	return places, nil
}

// ListConversations implements Backend.
func (b *HTTPBackend) ListConversations(ctx context.Context, page, size int) (Page[RawConversation], error) {
	var result Page[RawConversation]
	path := fmt.Sprintf("/chat-histories/users/me?page=%d&size=%d", page, size)
	if err := b.get(ctx, path, &result); err != nil {
		return Page[RawConversation]{}, err
	}
	return result, nil
}

// GetConversation implements Backend.
func (b *HTTPBackend) GetConversation(ctx context.Context, id string) (*RawConversation, error) {
	var conv RawConversation
	if err := b.get(ctx, "/chat-histories/"+url.PathEscape(id), &conv); err != nil {
		return nil, err
	}
	return &conv, nil
}

// DeleteConversation implements Backend.
func (b *HTTPBackend) DeleteConversation(ctx context.Context, id string) error {
	req, err := b.newRequest(ctx, http.MethodDelete, "/chat-histories/"+url.PathEscape(id), nil)
	if err != nil {
		return err
	}
	return b.do(req, nil)
}

// ToggleFavorite implements Backend.
func (b *HTTPBackend) ToggleFavorite(ctx context.Context, placeID string) ([]Collection, error) {
	body := struct {
		PlaceID string `json:"placeId"`
	}{PlaceID: placeID}

	var collections []Collection
	if err := b.post(ctx, "/places/toggle-favorite", body, &collections); err != nil {
		return nil, err
	}
	return collections, nil
}

func (b *HTTPBackend) post(ctx context.Context, path string, body, out any) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := b.newRequest(ctx, http.MethodPost, path, bytes.NewReader(payload))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	return b.do(req, out)
}

func (b *HTTPBackend) get(ctx context.Context, path string, out any) error {
	req, err := b.newRequest(ctx, http.MethodGet, path, nil)
	if err != nil {
		return err
	}
	return b.do(req, out)
}

func (b *HTTPBackend) newRequest(ctx context.Context, method, path string, body io.Reader) (*http.Request, error) {
	req, err := http.NewRequestWithContext(ctx, method, b.baseURL+path, body)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	if b.decorate != nil {
		b.decorate(req)
	}
	return req, nil
}

func (b *HTTPBackend) do(req *http.Request, out any) error {
	resp, err := b.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		var errResp ErrorResponse
		json.NewDecoder(resp.Body).Decode(&errResp)
		if errResp.Error == "" {
			errResp.Error = fmt.Sprintf("status %d", resp.StatusCode)
		}
		return NewError(codeOrDefault(errResp.Code, resp.StatusCode), errResp.Error, nil)
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}

func codeOrDefault(code string, status int) string {
	if code != "" {
		return code
	}
	switch status {
	case http.StatusBadRequest:
		return ErrCodeValidation
	case http.StatusNotFound:
		return ErrCodeNotFound
	default:
		return ErrCodeTransport
	}
}
