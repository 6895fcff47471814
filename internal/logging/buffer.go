package logging

import (
	"strconv"
	"sync"
	"time"
)

// LogEntry is one buffered log record. Card and Control are lifted out of
// the attributes so history can be filtered per sound card.
type LogEntry struct {
	Seq        uint64         `json:"seq"`
	Timestamp  time.Time      `json:"timestamp"`
	Level      string         `json:"level"`
	Module     string         `json:"module"`
	Message    string         `json:"message"`
	Card       *int           `json:"card,omitempty"`
	Control    string         `json:"control,omitempty"`
	Attributes map[string]any `json:"attributes,omitempty"`
}

// Filter selects buffered entries. Zero fields match everything; Limit keeps
// the newest matches.
type Filter struct {
	Level   string
	Module  string
	Card    *int
	Control string
	Limit   int
}

// Match reports whether entry passes every set field of f.
func (f Filter) Match(entry LogEntry) bool {
	switch {
	case f.Level != "" && entry.Level != f.Level:
		return false
	case f.Module != "" && entry.Module != f.Module:
		return false
	case f.Control != "" && entry.Control != f.Control:
		return false
	case f.Card != nil && (entry.Card == nil || *entry.Card != *f.Card):
		return false
	}
	return true
}

// RingBuffer keeps the newest log entries. Each write is stamped with a
// sequence number that increases across wraps.
type RingBuffer struct {
	mu      sync.RWMutex
	entries []LogEntry
	next    uint64
}

// NewRingBuffer creates a buffer holding up to size entries.
func NewRingBuffer(size int) *RingBuffer {
	if size < 1 {
		size = 1
	}
	return &RingBuffer{entries: make([]LogEntry, size)}
}

// Write stores entry over the oldest one when full and returns it with its
// sequence number set. Sequence numbers start at 1.
func (rb *RingBuffer) Write(entry LogEntry) LogEntry {
	rb.mu.Lock()
	defer rb.mu.Unlock()

	rb.next++
	entry.Seq = rb.next
	rb.entries[rb.next%uint64(len(rb.entries))] = entry
	return entry
}

// ReadAll returns every buffered entry, oldest first.
func (rb *RingBuffer) ReadAll() []LogEntry {
	return rb.Query(Filter{})
}

// Query returns the buffered entries matching f, oldest first.
func (rb *RingBuffer) Query(f Filter) []LogEntry {
	rb.mu.RLock()
	defer rb.mu.RUnlock()

	var out []LogEntry
	size := uint64(len(rb.entries))
	for seq := rb.oldest(); seq != 0 && seq <= rb.next; seq++ {
		if entry := rb.entries[seq%size]; f.Match(entry) {
			out = append(out, entry)
		}
	}
	if f.Limit > 0 && len(out) > f.Limit {
		out = out[len(out)-f.Limit:]
	}
	return out
}

// Count returns the number of entries in the buffer.
func (rb *RingBuffer) Count() int {
	rb.mu.RLock()
	defer rb.mu.RUnlock()
	if rb.next == 0 {
		return 0
	}
	return int(rb.next - rb.oldest() + 1)
}

// LastSeq returns the sequence number of the newest entry, 0 when empty.
func (rb *RingBuffer) LastSeq() uint64 {
	rb.mu.RLock()
	defer rb.mu.RUnlock()
	return rb.next
}

func (rb *RingBuffer) oldest() uint64 {
	if rb.next == 0 {
		return 0
	}
	size := uint64(len(rb.entries))
	if rb.next <= size {
		return 1
	}
	return rb.next - size + 1
}

// cardAttr reads the "card" attribute as logged by the mixer: an int from
// slog, or a numeric string from callers that format it.
func cardAttr(v any) *int {
	var card int
	switch n := v.(type) {
	case int64:
		card = int(n)
	case int:
		card = n
	case uint64:
		card = int(n)
	case string:
		parsed, err := strconv.Atoi(n)
		if err != nil {
			return nil
		}
		card = parsed
	default:
		return nil
	}
	return &card
}
