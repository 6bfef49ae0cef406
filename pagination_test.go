package placechat

import "testing"

func TestRevealer(t *testing.T) {
	t.Run("starts with one page visible", func(t *testing.T) {
		r := NewRevealer(6)
		r.Reset(9)

		if got := r.Cursor(); got != 6 {
			t.Errorf("Cursor() = %d, want 6", got)
		}
		if !r.CanRevealMore() {
			t.Error("CanRevealMore() = false with results hidden")
		}
	})

	t.Run("reveal clamps to the content length", func(t *testing.T) {
		r := NewRevealer(6)
		r.Reset(9)

		r.RevealMore()
		if got := r.Cursor(); got != 9 {
			t.Errorf("Cursor() = %d, want 9", got)
		}
		if r.CanRevealMore() {
			t.Error("CanRevealMore() = true at the end")
		}

		r.RevealMore()
		if got := r.Cursor(); got != 9 {
			t.Errorf("Cursor() = %d after extra reveal, want 9", got)
		}
	})

	t.Run("short content never offers more", func(t *testing.T) {
		r := NewRevealer(6)
		r.Reset(4)

		if r.CanRevealMore() {
			t.Error("CanRevealMore() = true with everything on the first page")
		}
	})

	t.Run("reset re-arms the cursor for a new turn", func(t *testing.T) {
		r := NewRevealer(6)
		r.Reset(9)
		r.RevealMore()

		r.Reset(8)
		if got := r.Cursor(); got != 6 {
			t.Errorf("Cursor() = %d after reset, want 6", got)
		}
		if !r.CanRevealMore() {
			t.Error("CanRevealMore() = false for the new turn")
		}
	})

	t.Run("non-positive page size falls back to the default", func(t *testing.T) {
		r := NewRevealer(0)
		r.Reset(10)
		if got := r.Cursor(); got != DefaultPageSize {
			t.Errorf("Cursor() = %d, want %d", got, DefaultPageSize)
		}
	})

	t.Run("visible slice paginates only the last turn", func(t *testing.T) {
		r := NewRevealer(2)
		r.Reset(4)

		msg := AssistantMessage{Places: []Place{{ID: "a"}, {ID: "b"}, {ID: "c"}, {ID: "d"}}}

		if got := len(r.VisibleSlice(msg, false)); got != 4 {
			t.Errorf("earlier turn shows %d, want 4", got)
		}
		if got := len(r.VisibleSlice(msg, true)); got != 2 {
			t.Errorf("last turn shows %d, want 2", got)
		}
	})
}
