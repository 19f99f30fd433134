// Package history stores the bounded analytics history. Every backend
// enforces the same cap: after an append only the most recent cap
// entries remain.
package history

import (
	"context"
	"sync"

	"go.uber.org/zap"

	"github.com/mailmind/mailmind/internal/core"
)

// MemoryHistory keeps the history in process memory.
type MemoryHistory struct {
	mu      sync.Mutex
	entries []core.AnalyticsEntry
	cap     int
	logger  *zap.Logger
}

// NewMemoryHistory creates an in-memory history bounded to cap entries.
func NewMemoryHistory(cap int, logger *zap.Logger) *MemoryHistory {
	return &MemoryHistory{cap: cap, logger: logger}
}

// Append adds entries in order and truncates the oldest past the cap.
func (h *MemoryHistory) Append(_ context.Context, entries []core.AnalyticsEntry) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.entries = append(h.entries, entries...)
	if excess := len(h.entries) - h.cap; excess > 0 {
		h.entries = append([]core.AnalyticsEntry(nil), h.entries[excess:]...)
		h.logger.Debug("History truncated", zap.Int("dropped", excess))
	}
	return nil
}

// Recent returns up to limit entries, oldest first.
func (h *MemoryHistory) Recent(_ context.Context, limit int) ([]core.AnalyticsEntry, error) {
	h.mu.Lock()
	defer h.mu.Unlock()

	start := 0
	if limit > 0 && len(h.entries) > limit {
		start = len(h.entries) - limit
	}
	out := make([]core.AnalyticsEntry, len(h.entries)-start)
	copy(out, h.entries[start:])
	return out, nil
}

// Count returns the number of retained entries.
func (h *MemoryHistory) Count(_ context.Context) (int, error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.entries), nil
}

// Close is a no-op for the in-memory backend.
func (h *MemoryHistory) Close() error { return nil }
