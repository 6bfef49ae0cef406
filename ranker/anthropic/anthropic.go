// Package anthropic provides a ranker backed by Anthropic's messages API.
package anthropic

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
	"github.com/wayfare-labs/place-chat-sdk/ranker"
)

const defaultModel = "claude-sonnet-4-5"

const systemPrompt = `You rank travel places by relevance to a user's search prompt.
You are given candidate places as JSON. Pick the places that best match the
prompt, best match first, and respond ONLY with JSON in this format:
{"placeIds": ["id1", "id2", ...]}
Use only IDs from the candidate list.`

// Ranker ranks places through the Anthropic API.
type Ranker struct {
	client anthropic.Client
	model  string
}

// Config for the ranker.
type Config struct {
	APIKey  string
	BaseURL string
	Model   string
}

// New creates a ranker with the given config.
func New(cfg Config) *Ranker {
	var opts []option.RequestOption
	if cfg.APIKey != "" {
		opts = append(opts, option.WithAPIKey(cfg.APIKey))
	}
	if cfg.BaseURL != "" {
		opts = append(opts, option.WithBaseURL(cfg.BaseURL))
	}

	model := cfg.Model
	if model == "" {
		model = defaultModel
	}

	return &Ranker{
		client: anthropic.NewClient(opts...),
		model:  model,
	}
}

// NewFromEnv creates a ranker using the ANTHROPIC_API_KEY environment
// variable.
func NewFromEnv() *Ranker {
	return New(Config{APIKey: os.Getenv("ANTHROPIC_API_KEY")})
}

// Rank implements ranker.Ranker.
func (r *Ranker) Rank(ctx context.Context, q ranker.Query) ([]string, error) {
	candidatesJSON, err := json.Marshal(candidateDocs(q))
	if err != nil {
		return nil, fmt.Errorf("marshaling candidates: %w", err)
	}

	var prompt strings.Builder
	prompt.WriteString("Candidate places:\n")
	prompt.Write(candidatesJSON)
	for _, earlier := range q.History {
		prompt.WriteString("\nEarlier prompt: ")
		prompt.WriteString(earlier)
	}
	prompt.WriteString("\nSearch prompt: ")
	prompt.WriteString(q.Prompt)

	resp, err := r.client.Messages.New(ctx, anthropic.MessageNewParams{
		Model:     anthropic.Model(r.model),
		MaxTokens: 1024,
		System: []anthropic.TextBlockParam{
			{Text: systemPrompt},
		},
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(prompt.String())),
		},
	})
	if err != nil {
		return nil, fmt.Errorf("anthropic message failed: %w", err)
	}

	var text string
	for _, block := range resp.Content {
		if block.Type == "text" {
			text += block.Text
		}
	}

	var result struct {
		PlaceIDs []string `json:"placeIds"`
	}
	if err := json.Unmarshal([]byte(text), &result); err != nil {
		return nil, fmt.Errorf("decoding ranking response: %w", err)
	}

	return ranker.Clamp(q, result.PlaceIDs), nil
}

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
