package lifecycle

import (
	"context"
	"sync"
)

// CaptureHook records events for assertions in tests. A non-empty Verbs
// list keeps only matching events, so a run's skips can be watched without
// wading through the running/finished pairs.
type CaptureHook struct {
	Verbs  []string
	Events []Event
	Err    error
	mu     sync.Mutex
}

// Notify records the event when it passes the verb filter and returns any
// configured error.
func (h *CaptureHook) Notify(_ context.Context, event Event) error {
	if !h.wants(event.Verb) {
		return nil
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	h.Events = append(h.Events, NormalizeEvent(event))
	return h.Err
}

func (h *CaptureHook) wants(verb string) bool {
	if len(h.Verbs) == 0 {
		return true
	}
	for _, candidate := range h.Verbs {
		if candidate == verb {
			return true
		}
	}
	return false
}

// Indices reports the global permutation indices captured for one case, in
// arrival order.
func (h *CaptureHook) Indices(caseID string) []int {
	h.mu.Lock()
	defer h.mu.Unlock()
	var indices []int
	for _, event := range h.Events {
		if event.CaseID == caseID {
			indices = append(indices, event.Index)
		}
	}
	return indices
}
