package envelope

import "sync"

// Holder publishes a fitted model atomically: a refit builds the replacement
// completely before it is swapped in, so concurrent readers never observe a
// partially fitted surface.
type Holder struct {
	mu sync.RWMutex
	m  *Model
}

// Swap publishes a newly fitted model and returns the previous one.
func (h *Holder) Swap(m *Model) *Model {
	h.mu.Lock()
	defer h.mu.Unlock()
	old := h.m
	h.m = m
	return old
}

// Current returns the last published model, or nil before the first fit.
func (h *Holder) Current() *Model {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.m
}
