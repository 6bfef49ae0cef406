// Package openai provides a ranker backed by OpenAI chat completions.
package openai

import (
	"context"
	"encoding/json"
	"fmt"

	oai "github.com/sashabaranov/go-openai"
	"github.com/wayfare-labs/place-chat-sdk/ranker"
)

const defaultModel = "gpt-4o"

const systemPrompt = `You rank travel places by relevance to a user's search prompt.
You are given candidate places as JSON. Pick the places that best match the
prompt, best match first, and respond ONLY with JSON in this format:
{"placeIds": ["id1", "id2", ...]}
Use only IDs from the candidate list. Earlier prompts in the conversation give
additional context about what the user is looking for.`

// Ranker ranks places through the OpenAI API.
type Ranker struct {
	client *oai.Client
	model  string
}

// Option configures the ranker.
type Option func(*Ranker)

// WithModel overrides the model.
func WithModel(model string) Option {
	return func(r *Ranker) {
		r.model = model
	}
}

// New creates a ranker using the given OpenAI client.
func New(client *oai.Client, opts ...Option) *Ranker {
	r := &Ranker{client: client, model: defaultModel}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Rank implements ranker.Ranker.
func (r *Ranker) Rank(ctx context.Context, q ranker.Query) ([]string, error) {
	candidatesJSON, err := json.Marshal(candidateDocs(q))
	if err != nil {
		return nil, fmt.Errorf("marshaling candidates: %w", err)
	}

	messages := []oai.ChatCompletionMessage{
		{Role: oai.ChatMessageRoleSystem, Content: systemPrompt},
		{Role: oai.ChatMessageRoleSystem, Content: "Candidate places:\n" + string(candidatesJSON)},
	}
	for _, prompt := range q.History {
		messages = append(messages, oai.ChatCompletionMessage{
			Role:    oai.ChatMessageRoleUser,
			Content: prompt,
		})
	}
	messages = append(messages, oai.ChatCompletionMessage{
		Role:    oai.ChatMessageRoleUser,
		Content: q.Prompt,
	})

	resp, err := r.client.CreateChatCompletion(ctx, oai.ChatCompletionRequest{
		Model:    r.model,
		Messages: messages,
		ResponseFormat: &oai.ChatCompletionResponseFormat{
			Type: oai.ChatCompletionResponseFormatTypeJSONObject,
		},
	})
	if err != nil {
		return nil, fmt.Errorf("openai chat completion failed: %w", err)
	}
	if len(resp.Choices) == 0 {
		return nil, fmt.Errorf("openai returned no choices")
	}

	var result struct {
		PlaceIDs []string `json:"placeIds"`
	}
	if err := json.Unmarshal([]byte(resp.Choices[0].Message.Content), &result); err != nil {
		return nil, fmt.Errorf("decoding ranking response: %w", err)
	}

	return ranker.Clamp(q, result.PlaceIDs), nil
}

// candidateDoc is the compact place projection shown to the model.
type candidateDoc struct {
	ID          string   `json:"id"`
	Name        string   `json:"name"`
	Description string   `json:"description,omitempty"`
	City        string   `json:"city"`
	Country     string   `json:"country"`
	Tags        []string `json:"tags,omitempty"`
	Rating      float64  `json:"rating"`
}

func candidateDocs(q ranker.Query) []candidateDoc {
	docs := make([]candidateDoc, 0, len(q.Candidates))
	for _, p := range q.Candidates {
		doc := candidateDoc{
			ID:          p.ID,
			Name:        p.Name,
			Description: p.Description,
			City:        p.Location.City,
			Country:     p.Location.Country,
			Rating:      p.Rating,
		}
		for _, tag := range p.Tags {
			doc.Tags = append(doc.Tags, tag.Name)
		}
		docs = append(docs, doc)
	}
	return docs
}
