// internal/automation/conversation/history.go
package conversation

import (
	"sync"

	"taskpilot/internal/models"
)

// DefaultHistorySize is the bounded rolling window of retained entries.
const DefaultHistorySize = 10

// History is the rolling conversation window. Older entries are
// discarded, not summarized.
type History struct {
	mu      sync.Mutex
	entries []models.ConversationEntry
	max     int
}

func NewHistory(max int) *History {
	if max <= 0 {
		max = DefaultHistorySize
	}
	return &History{max: max}
}

// Append adds an entry, evicting the oldest entries beyond the window.
func (h *History) Append(role models.Role, content string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.entries = append(h.entries, models.ConversationEntry{Role: role, Content: content})
	if len(h.entries) > h.max {
		h.entries = h.entries[len(h.entries)-h.max:]
	}
}

// AppendToLast mutates the most recent entry in place, appending text
// to its content. Background execution patches outcomes this way; the
// position is taken at the moment of mutation, which is an accepted
// limitation when turns interleave.
func (h *History) AppendToLast(text string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if len(h.entries) == 0 {
		return
	}
	h.entries[len(h.entries)-1].Content += text
}

// Entries returns a copy of the retained window.
func (h *History) Entries() []models.ConversationEntry {
	h.mu.Lock()
	defer h.mu.Unlock()
	out := make([]models.ConversationEntry, len(h.entries))
	copy(out, h.entries)
	return out
}

func (h *History) Len() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.entries)
}
