package entropy

import (
	"math"
	"testing"

	"github.com/masmgr/git-bard/internal/git"
)

func TestNormalized(t *testing.T) {
	tests := []struct {
		name     string
		weights  []int
		expected float64
	}{
		{name: "Empty", weights: nil, expected: 0},
		{name: "Single bucket", weights: []int{15}, expected: 0},
		{name: "Two equal", weights: []int{20, 20}, expected: 1},
		{name: "Four equal", weights: []int{5, 5, 5, 5}, expected: 1},
		{name: "All zero", weights: []int{0, 0, 0}, expected: 1},
		{name: "One dominant", weights: []int{100, 0}, expected: 0},
		// p = 0.75, 0.25 → H = 0.8113, max = 1
		{name: "Skewed pair", weights: []int{30, 10}, expected: 0.8113},
		{name: "Negative ignored", weights: []int{-5, 10}, expected: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Normalized(tt.weights)
			if math.Abs(got-tt.expected) > 0.001 {
				t.Errorf("Normalized(%v) = %f, expected %f", tt.weights, got, tt.expected)
			}
		})
	}
}

func TestOfFiles(t *testing.T) {
	focused := []git.FileDiff{
		{Path: "a.go", LinesAdded: 200, LinesDeleted: 50},
		{Path: "b.go", LinesAdded: 1},
		{Path: "c.go", LinesDeleted: 1},
	}
	spread := []git.FileDiff{
		{Path: "a.go", LinesAdded: 10},
		{Path: "b.go", LinesAdded: 5, LinesDeleted: 5},
		{Path: "c.go", LinesDeleted: 10},
	}

	if f, s := OfFiles(focused), OfFiles(spread); f >= s {
		t.Errorf("focused entropy %f should be below spread entropy %f", f, s)
	}
	if got := OfFiles(spread); math.Abs(got-1) > 1e-9 {
		t.Errorf("OfFiles(spread) = %f, expected 1", got)
	}
}

func TestOfGroups(t *testing.T) {
	if got := OfGroups(map[string]int{"git": 40}); got != 0 {
		t.Errorf("single group = %f, expected 0", got)
	}
	if got := OfGroups(map[string]int{"git": 40, "cmd": 40}); math.Abs(got-1) > 1e-9 {
		t.Errorf("two equal groups = %f, expected 1", got)
	}
}
