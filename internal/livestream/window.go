package livestream

import "sync"

// DefaultWindowSize is the bounded retention cap for live records.
const DefaultWindowSize = 5000

// Window is an ordered, capacity-bounded sequence of normalized records.
// Insertion preserves arrival order; when the cap is exceeded the oldest
// entries are evicted from the front.
type Window struct {
	mu      sync.RWMutex
	cap     int
	records []Record
}

// NewWindow returns a Window with the given cap. Non-positive selects
// DefaultWindowSize.
func NewWindow(capacity int) *Window {
	if capacity <= 0 {
		capacity = DefaultWindowSize
	}
	return &Window{cap: capacity}
}

// Replace swaps the entire window contents, keeping only the last cap
// records when the replacement is larger. Used by the initial batch.
func (w *Window) Replace(records []Record) {
	if len(records) > w.cap {
		records = records[len(records)-w.cap:]
	}
	w.mu.Lock()
	w.records = append([]Record(nil), records...)
	w.mu.Unlock()
}

// Append adds records at the tail, then trims from the front to the cap.
func (w *Window) Append(records ...Record) {
	if len(records) == 0 {
		return
	}
	w.mu.Lock()
	w.records = append(w.records, records...)
	if len(w.records) > w.cap {
		w.records = append([]Record(nil), w.records[len(w.records)-w.cap:]...)
	}
	w.mu.Unlock()
}

// Snapshot returns a copy of the window in arrival order.
func (w *Window) Snapshot() []Record {
	w.mu.RLock()
	defer w.mu.RUnlock()
	out := make([]Record, len(w.records))
	copy(out, w.records)
	return out
}

// Len returns the current number of retained records.
func (w *Window) Len() int {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return len(w.records)
}
