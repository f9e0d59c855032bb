package stats

import (
	"sort"
	"time"
)

// Window keeps the timestamps seen within a fixed retention horizon.
//
// Timestamps are kept sorted. Wire timestamps normally arrive in order, so Add is
// an append; out-of-order or skewed timestamps are inserted at their sorted
// position so that eviction from the front stays correct.
type Window struct {
	horizon time.Duration
	times   []time.Time
}

// NewWindow creates an empty window with the given retention horizon.
func NewWindow(horizon time.Duration) *Window {
	return &Window{horizon: horizon}
}

// Add records one timestamp.
func (w *Window) Add(ts time.Time) {
	n := len(w.times)
	if n == 0 || !ts.Before(w.times[n-1]) {
		w.times = append(w.times, ts)
		return
	}
	i := sort.Search(n, func(i int) bool { return w.times[i].After(ts) })
	w.times = append(w.times, time.Time{})
	copy(w.times[i+1:], w.times[i:])
	w.times[i] = ts
}

// Evict drops every timestamp older than the horizon relative to now and
// returns how many were removed.
func (w *Window) Evict(now time.Time) int {
	cutoff := now.Add(-w.horizon)
	i := sort.Search(len(w.times), func(i int) bool { return !w.times[i].Before(cutoff) })
	if i == 0 {
		return 0
	}
	remaining := len(w.times) - i
	// Compact instead of reslicing so the backing array does not grow without bound.
	copy(w.times, w.times[i:])
	clear(w.times[remaining:])
	w.times = w.times[:remaining]
	return i
}

// Len returns the number of retained timestamps.
func (w *Window) Len() int { return len(w.times) }

// Horizon returns the retention horizon.
func (w *Window) Horizon() time.Duration { return w.horizon }
