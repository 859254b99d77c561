package pacing

import (
	"testing"
	"time"
)

var base = time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)

func TestWindow_NilNeverWaits(t *testing.T) {
	var w *Window
	for i := 0; i < 5; i++ {
		if d := w.Reserve(base); d != 0 {
			t.Fatalf("nil window waited %v", d)
		}
	}
	if PerMinute(0) != nil || PerMinute(-3) != nil {
		t.Errorf("PerMinute with a non-positive limit should be nil")
	}
}

func TestWindow_Reserve(t *testing.T) {
	w := NewWindow(2, time.Minute)

	tests := []struct {
		name string
		at   time.Duration
		wait time.Duration
	}{
		{name: "First", at: 0, wait: 0},
		{name: "Second fits", at: time.Second, wait: 0},
		{name: "Third waits for the first to age out", at: 2 * time.Second, wait: 58 * time.Second},
		{name: "Fourth queues behind the third", at: 3 * time.Second, wait: 58 * time.Second},
		{name: "Much later", at: 10 * time.Minute, wait: 0},
	}

	for _, tt := range tests {
		if got := w.Reserve(base.Add(tt.at)); got != tt.wait {
			t.Errorf("%s: Reserve = %v, want %v", tt.name, got, tt.wait)
		}
	}
}

func TestNewWindow_DefaultSpan(t *testing.T) {
	w := NewWindow(1, 0)
	w.Reserve(base)
	if got := w.Reserve(base); got != time.Minute {
		t.Errorf("Reserve = %v, want 1m", got)
	}
}

func TestPeak(t *testing.T) {
	tests := []struct {
		name     string
		offsets  []time.Duration
		expected int
	}{
		{name: "Empty", expected: 0},
		{name: "Single", offsets: []time.Duration{0}, expected: 1},
		{name: "All in one span", offsets: []time.Duration{0, 10 * time.Second, 20 * time.Second}, expected: 3},
		{name: "Spread out", offsets: []time.Duration{0, time.Minute, 2 * time.Minute}, expected: 1},
		{name: "Unsorted", offsets: []time.Duration{50 * time.Second, 0, 2 * time.Minute, 30 * time.Second}, expected: 3},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			times := make([]time.Time, len(tt.offsets))
			for i, o := range tt.offsets {
				times[i] = base.Add(o)
			}
			if got := Peak(times, time.Minute); got != tt.expected {
				t.Errorf("Peak = %d, expected %d", got, tt.expected)
			}
		})
	}
}

func TestPeak_DoesNotMutateInput(t *testing.T) {
	times := []time.Time{base.Add(time.Hour), base}
	Peak(times, time.Minute)
	if !times[0].Equal(base.Add(time.Hour)) {
		t.Errorf("Peak reordered its input")
	}
}
