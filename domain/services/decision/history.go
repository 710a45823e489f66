package decision

import (
	"sync"

	"archintel/domain/core/valueobjects"
)

// History is an append-only record of decision results. Reads filter and
// never modify the stored results.
type History struct {
	mu      sync.RWMutex
	results []*Result
}

// NewHistory creates an empty history
func NewHistory() *History {
	return &History{results: []*Result{}}
}

// Append adds a result to the end of the history
func (h *History) Append(result *Result) {
	if result == nil {
		return
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	h.results = append(h.results, result)
}

// All returns every result in append order
func (h *History) All() []*Result {
	return h.filter(func(*Result) bool { return true })
}

// ByPhase returns the results decided in a phase
func (h *History) ByPhase(phase valueobjects.Phase) []*Result {
	return h.filter(func(r *Result) bool { return r.Context.Phase == phase })
}

// ByType returns the results of one decision type
func (h *History) ByType(t valueobjects.DecisionType) []*Result {
	return h.filter(func(r *Result) bool { return r.Context.Type == t })
}

// Len returns the number of recorded results
func (h *History) Len() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.results)
}

func (h *History) filter(keep func(*Result) bool) []*Result {
	h.mu.RLock()
	defer h.mu.RUnlock()

	matched := []*Result{}
	for _, r := range h.results {
		if keep(r) {
			matched = append(matched, r)
		}
	}
	return matched
}
