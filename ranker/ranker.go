// Package ranker defines the search-relevance collaborator. The ranking
// algorithm itself is outside this system; adapters for OpenAI and Anthropic
// models live in subpackages.
package ranker

import (
	"context"

	placechat "github.com/wayfare-labs/place-chat-sdk"
)

// Query is one ranking request.
type Query struct {
	// Prompt is the user's latest search prompt.
	Prompt string

	// History holds the conversation's earlier user prompts, oldest first,
	// for context-aware ranking.
	History []string

	// Candidates is the pool of places to rank from.
	Candidates []placechat.Place

	// Limit caps how many IDs the ranker returns. Zero means no cap.
	Limit int
}

// Ranker orders candidate places by relevance to a prompt. The returned IDs
// are a subset of the candidates, best match first; that order is what the
// session layer later preserves through hydration.
type Ranker interface {
	Rank(ctx context.Context, q Query) ([]string, error)
}

// Func adapts a plain function to the Ranker interface.
type Func func(ctx context.Context, q Query) ([]string, error)

// Rank implements Ranker.
func (f Func) Rank(ctx context.Context, q Query) ([]string, error) {
	return f(ctx, q)
}

// Clamp trims ids to the query's limit and to IDs actually present in the
// candidate set, keeping the given order. Shared by the model adapters, whose
// output is advisory until filtered.
func Clamp(q Query, ids []string) []string {
	known := make(map[string]struct{}, len(q.Candidates))
	for _, c := range q.Candidates {
		known[c.ID] = struct{}{}
	}

	seen := make(map[string]struct{}, len(ids))
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		if _, ok := known[id]; !ok {
			continue
		}
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
		if q.Limit > 0 && len(out) == q.Limit {
			break
		}
	}
	return out
}
