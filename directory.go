package placechat

import "sync"

// Directory holds the sidebar's conversation summaries, most recent first.
// At most one summary may be pending (without a server-assigned ID) at any
// time.
type Directory struct {
	mu        sync.RWMutex
	summaries []ConversationSummary
}

// NewDirectory creates an empty directory.
func NewDirectory() *Directory {
	return &Directory{}
}

// Seed replaces the directory wholesale from a server fetch.
func (d *Directory) Seed(summaries []ConversationSummary) {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.summaries = make([]ConversationSummary, len(summaries))
	copy(d.summaries, summaries)
}

// UpsertPending records an optimistic conversation. With a conversation ID it
// retitles the matching summary; otherwise it overwrites the existing pending
// summary in place, or prepends a new one. This keeps the at-most-one-pending
// invariant: a second optimistic conversation supersedes the first.
func (d *Directory) UpsertPending(title, conversationID string) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if conversationID != "" {
		for i := range d.summaries {
			if d.summaries[i].ID == conversationID {
				d.summaries[i].Title = title
				return
			}
		}
	}

	for i := range d.summaries {
		if d.summaries[i].Pending() {
			d.summaries[i].Title = title
			return
		}
	}

	d.summaries = append([]ConversationSummary{{Title: title}}, d.summaries...)
}

// ReconcilePending assigns the server ID to the pending summary. A no-op when
// nothing is pending.
func (d *Directory) ReconcilePending(assignedID string) {
	d.mu.Lock()
	defer d.mu.Unlock()

	for i := range d.summaries {
		if d.summaries[i].Pending() {
			d.summaries[i].ID = assignedID
			return
		}
	}
}

// Delete removes the summary with the given ID. Navigating away from a
// deleted active conversation is the caller's contract, not handled here.
func (d *Directory) Delete(id string) {
	d.mu.Lock()
	defer d.mu.Unlock()

	for i := range d.summaries {
		if d.summaries[i].ID == id {
			d.summaries = append(d.summaries[:i], d.summaries[i+1:]...)
			return
		}
	}
}

// Summaries returns a copy of the current summaries.
func (d *Directory) Summaries() []ConversationSummary {
	d.mu.RLock()
	defer d.mu.RUnlock()

	out := make([]ConversationSummary, len(d.summaries))
	copy(out, d.summaries)
	return out
}

// Len returns the number of summaries.
func (d *Directory) Len() int {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return len(d.summaries)
}
