package rag

import (
	"sync"
	"time"

	"github.com/podsage/podsage/engine/domain"
)

// Entry is one answered question kept for later export.
type Entry struct {
	Result domain.QueryResult
	At     time.Time
}

// History is a bounded, newest-first record of answered questions. It
// exists for the export endpoint; the ask pipeline itself is stateless.
type History struct {
	mu      sync.Mutex
	entries []Entry
	max     int
}

// NewHistory creates a History holding at most max entries. max <= 0 means
// unbounded.
func NewHistory(max int) *History {
	return &History{max: max}
}

// Add records a result as the newest entry, evicting the oldest past max.
func (h *History) Add(res domain.QueryResult) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.entries = append([]Entry{{Result: res, At: time.Now()}}, h.entries...)
	if h.max > 0 && len(h.entries) > h.max {
		h.entries = h.entries[:h.max]
	}
}

// At returns the i-th newest entry, 0 being the most recent.
func (h *History) At(i int) (Entry, bool) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if i < 0 || i >= len(h.entries) {
		return Entry{}, false
	}
	return h.entries[i], true
}

// Len returns the number of stored entries.
func (h *History) Len() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.entries)
}
