// Package pacing spaces backend requests with a sliding window.
package pacing

import (
	"sort"
	"sync"
	"time"
)

// Window admits at most limit requests in any span-long interval.
// A nil Window, or one with a non-positive limit, never waits.
type Window struct {
	limit int
	span  time.Duration

	mu       sync.Mutex
	reserved []time.Time // ascending
}

// NewWindow creates a Window. span defaults to one minute.
func NewWindow(limit int, span time.Duration) *Window {
	if span <= 0 {
		span = time.Minute
	}
	return &Window{limit: limit, span: span}
}

// PerMinute returns a Window admitting n requests per minute, or nil when n
// is not positive.
func PerMinute(n int) *Window {
	if n <= 0 {
		return nil
	}
	return NewWindow(n, time.Minute)
}

// Reserve books the earliest slot at or after now and returns how long the
// caller must wait for it.
func (w *Window) Reserve(now time.Time) time.Duration {
	if w == nil || w.limit <= 0 {
		return 0
	}
	w.mu.Lock()
	defer w.mu.Unlock()

	// Slots older than one span can no longer crowd a new one.
	drop := 0
	for drop < len(w.reserved) && now.Sub(w.reserved[drop]) >= w.span {
		drop++
	}
	w.reserved = w.reserved[drop:]

	at := now
	if len(w.reserved) >= w.limit {
		if next := w.reserved[len(w.reserved)-w.limit].Add(w.span); next.After(at) {
			at = next
		}
	}
	w.reserved = append(w.reserved, at)
	return at.Sub(now)
}

// Peak returns the largest number of times falling in any span-long
// interval. Input order does not matter; times is not modified.
func Peak(times []time.Time, span time.Duration) int {
	if len(times) == 0 {
		return 0
	}

	sorted := make([]time.Time, len(times))
	copy(sorted, times)
	if !isSortedAscending(sorted) {
		sort.Slice(sorted, func(i, j int) bool {
			return sorted[i].Before(sorted[j])
		})
	}

	// Two-pointer sliding window: O(n) once sorted.
	peak := 1
	left := 0
	for right := range sorted {
		for sorted[right].Sub(sorted[left]) >= span {
			left++
		}
		if n := right - left + 1; n > peak {
			peak = n
		}
	}
	return peak
}

func isSortedAscending(times []time.Time) bool {
	for i := 1; i < len(times); i++ {
		if times[i].Before(times[i-1]) {
			return false
		}
	}
	return true
}
