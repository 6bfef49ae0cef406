package placechat

// Revealer tracks how many already-hydrated results of the latest assistant
// turn are exposed to the UI. Earlier assistant turns are fixed history and
// always render fully; only the last turn is paginated.
type Revealer struct {
	pageSize int
	cursor   int
	length   int
}

// NewRevealer creates a revealer with the given page size.
func NewRevealer(pageSize int) *Revealer {
	if pageSize <= 0 {
		pageSize = DefaultPageSize
	}
	return &Revealer{pageSize: pageSize, cursor: pageSize}
}

// Reset re-initializes the cursor to one page. Called whenever a new
// assistant turn is appended or a conversation is (re)loaded.
func (r *Revealer) Reset(contentLength int) {
	r.cursor = r.pageSize
	r.length = contentLength
}

// RevealMore advances the cursor by one page, clamped to the content length.
// Idempotent once everything is visible.
func (r *Revealer) RevealMore() {
	r.cursor = min(r.cursor+r.pageSize, r.length)
}

// CanRevealMore reports whether the "generate more" affordance should be
// offered.
func (r *Revealer) CanRevealMore() bool {
	return r.cursor < r.length
}

// Cursor returns the current reveal cursor.
func (r *Revealer) Cursor() int { return r.cursor }

// VisibleSlice returns the exposed prefix of an assistant turn's places.
// Pass last=true only for the conversation's final assistant turn.
func (r *Revealer) VisibleSlice(msg AssistantMessage, last bool) []Place {
	if !last {
		return msg.Places
	}
	if r.cursor >= len(msg.Places) {
		return msg.Places
	}
	return msg.Places[:r.cursor]
}
