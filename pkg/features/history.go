package features

import "gonum.org/v1/gonum/stat"

// HistorySize is the rolling window length shared by the density and
// temperature trackers: 12 entries, e.g. three hours at 15-minute cycles.
const HistorySize = 12

// History is a bounded FIFO of scalar readings from successive capture
// cycles. It is plain session state: create one per long-lived session and
// mutate it from a single goroutine only.
type History struct {
	values []float64
	limit  int
}

// NewHistory creates a tracker holding at most HistorySize entries.
func NewHistory() *History {
	return NewHistoryWithLimit(HistorySize)
}

// NewHistoryWithLimit creates a tracker with a custom capacity.
func NewHistoryWithLimit(limit int) *History {
	return &History{values: make([]float64, 0, limit), limit: limit}
}

// Update appends a reading, evicting the oldest entry once the window is full.
func (h *History) Update(value float64) {
	h.values = append(h.values, value)
	if len(h.values) > h.limit {
		h.values = h.values[1:]
	}
}

// Mean returns the rolling average, or 1.0 for an empty window. The 1.0
// default keeps the first spike-ratio computation well-defined.
func (h *History) Mean() float64 {
	if len(h.values) == 0 {
		return 1.0
	}
	return stat.Mean(h.values, nil)
}

// Variance returns the population variance of the window, or 0 with fewer
// than two entries.
func (h *History) Variance() float64 {
	if len(h.values) < 2 {
		return 0.0
	}
	return stat.PopVariance(h.values, nil)
}

// Len returns the number of entries currently held.
func (h *History) Len() int {
	return len(h.values)
}

// Values returns a copy of the current window, oldest first.
func (h *History) Values() []float64 {
	out := make([]float64, len(h.values))
	copy(out, h.values)
	return out
}

// Clear empties the window for a fresh parity run.
func (h *History) Clear() {
	h.values = h.values[:0]
}
